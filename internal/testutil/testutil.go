// internal/testutil/testutil.go
package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/your-org/pharmacy-backend/internal/config"
	"github.com/your-org/pharmacy-backend/internal/domain/inventory"
	"github.com/your-org/pharmacy-backend/internal/domain/product"
	"github.com/your-org/pharmacy-backend/internal/domain/supplier"
	"github.com/your-org/pharmacy-backend/internal/domain/user"
	"github.com/your-org/pharmacy-backend/internal/infrastructure/database/postgres"
	"github.com/your-org/pharmacy-backend/internal/pkg/auth"
	applogger "github.com/your-org/pharmacy-backend/internal/pkg/logger"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config returns a configuration suitable for tests
func Config() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "Pharmacy Test",
			Version:     "test",
			Environment: "test",
		},
		Server: config.ServerConfig{
			Port:           "0",
			RequestTimeout: 5 * time.Second,
		},
		JWT: config.JWTConfig{
			Secret:            "test-secret-that-is-at-least-32-characters",
			AccessTokenExpiry: time.Hour,
		},
		Security: config.SecurityConfig{
			BcryptCost:         bcrypt.MinCost,
			CORSAllowedOrigins: []string{"*"},
			CORSAllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			CORSAllowedHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		},
		Forecast: config.ForecastConfig{
			Timeout:     time.Second,
			Concurrency: 2,
		},
		Pharmacy: config.PharmacyConfig{
			Name:    "Test Pharmacy",
			Address: "1 Test Street",
		},
		Logging: config.LoggingConfig{
			Level:  "error",
			Format: "text",
		},
	}
}

// Logger returns a logger that discards output
func Logger() *logrus.Logger {
	return applogger.Discard()
}

// NewDB opens a private in-memory SQLite database with every model migrated
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(postgres.Models()...))
	return db
}

// Actor returns an authenticated actor with a fresh id
func Actor(role user.Role) user.Actor {
	return user.Actor{UserID: uuid.NewString(), Role: role}
}

// CreateUser stores a staff account with the given password
func CreateUser(t testing.TB, db *gorm.DB, role user.Role, email, password string) *user.User {
	t.Helper()

	hash, err := auth.NewPasswordManager(Config()).HashPassword(password)
	require.NoError(t, err)

	u := &user.User{Name: string(role) + " user", Email: email, Password: hash, Role: role}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreateSupplier stores a supplier
func CreateSupplier(t testing.TB, db *gorm.DB, name string) *supplier.Supplier {
	t.Helper()

	s := &supplier.Supplier{Name: name, Contact: "Jane Doe"}
	require.NoError(t, db.Create(s).Error)
	return s
}

// CreateProduct stores a product without batches
func CreateProduct(t testing.TB, db *gorm.DB, supplierID, name, category, cost, selling string, minStock int) *product.Product {
	t.Helper()

	p := &product.Product{
		Name:          name,
		Category:      category,
		MinStockLevel: minStock,
		Price:         decimal.RequireFromString(cost),
		SellingPrice:  decimal.RequireFromString(selling),
		SupplierID:    supplierID,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

// CreateBatch stores a batch
func CreateBatch(t testing.TB, db *gorm.DB, productID, number string, qty int, expiry time.Time) *inventory.Batch {
	t.Helper()

	b := &inventory.Batch{ProductID: productID, BatchNumber: number, Quantity: qty, ExpiryDate: expiry.UTC()}
	require.NoError(t, db.Create(b).Error)
	return b
}

// BatchQuantity reloads the quantity of a batch
func BatchQuantity(t testing.TB, db *gorm.DB, batchID string) int {
	t.Helper()

	var b inventory.Batch
	require.NoError(t, db.First(&b, "id = ?", batchID).Error)
	return b.Quantity
}
