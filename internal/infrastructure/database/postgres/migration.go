// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/pharmacy-backend/internal/domain/inventory"
	"github.com/your-org/pharmacy-backend/internal/domain/product"
	"github.com/your-org/pharmacy-backend/internal/domain/returns"
	"github.com/your-org/pharmacy-backend/internal/domain/sale"
	"github.com/your-org/pharmacy-backend/internal/domain/supplier"
	"github.com/your-org/pharmacy-backend/internal/domain/user"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db  *gorm.DB
	log *logrus.Logger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, log *logrus.Logger) *Migration {
	return &Migration{
		db:  db,
		log: log,
	}
}

// Models lists every persisted model in dependency order
func Models() []interface{} {
	return []interface{}{
		&user.User{},
		&supplier.Supplier{},
		&product.Product{},
		&inventory.Batch{},
		&inventory.StockMovement{},
		&sale.Sale{},
		&sale.SaleItem{},
		&returns.ReturnRecord{},
		&returns.ReturnItem{},
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.log.Info("Running database auto-migrations")

	for _, model := range Models() {
		m.log.Debugf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.log.Info("Database auto-migrations completed")
	return nil
}

// CreateIndexes creates the composite indexes used by reports and lookups
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_users_created_at ON users(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_products_supplier_name ON products(supplier_id, name)",
		"CREATE INDEX IF NOT EXISTS idx_batches_product_expiry ON batches(product_id, expiry_date)",
		"CREATE INDEX IF NOT EXISTS idx_sales_created_at ON sales(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_sale_items_sale_batch ON sale_items(sale_id, batch_id)",
		"CREATE INDEX IF NOT EXISTS idx_return_records_sale ON return_records(sale_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_return_items_record_batch ON return_items(return_record_id, batch_id)",
		"CREATE INDEX IF NOT EXISTS idx_stock_movements_batch_created ON stock_movements(batch_id, created_at DESC)",
	}

	failed := 0
	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			m.log.WithError(err).Warn("Failed to create index")
			failed++
		}
	}

	m.log.Infof("Created %d indexes (%d failed)", len(indexes)-failed, failed)
	return nil
}

// SeedInitialData creates one account per role and a demo catalog entry
func (m *Migration) SeedInitialData() error {
	if err := m.seedStaff(); err != nil {
		return fmt.Errorf("failed to seed staff: %w", err)
	}
	if err := m.seedCatalog(); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}
	return nil
}

func (m *Migration) seedStaff() error {
	staff := []user.User{
		{Name: "Admin User", Email: "admin@pharmalytix.com", Role: user.RoleAdmin},
		{Name: "Pharmacist User", Email: "pharmacist@pharmalytix.com", Role: user.RolePharmacist},
		{Name: "Cashier User", Email: "cashier@pharmalytix.com", Role: user.RoleCashier},
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	for _, u := range staff {
		var count int64
		if err := m.db.Model(&user.User{}).Where("email = ?", u.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		u.Password = string(hashed)
		if err := m.db.Create(&u).Error; err != nil {
			return fmt.Errorf("failed to create %s: %w", u.Email, err)
		}
		m.log.WithFields(logrus.Fields{"email": u.Email, "role": u.Role}).Info("Seeded staff account")
	}
	return nil
}

func (m *Migration) seedCatalog() error {
	var count int64
	if err := m.db.Model(&supplier.Supplier{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return m.db.Transaction(func(tx *gorm.DB) error {
		sup := supplier.Supplier{
			Name:    "Dummy Supplier",
			Contact: "Test Contact",
			Email:   "dummy@test.com",
			Address: "123 Test Lane, Dummy City",
		}
		if err := tx.Create(&sup).Error; err != nil {
			return err
		}

		med := product.Product{
			Name:          "Dummy Medicine",
			Category:      "Testing",
			Manufacturer:  "Test Pharma",
			MinStockLevel: 5,
			Price:         decimal.NewFromInt(10),
			SellingPrice:  decimal.NewFromInt(15),
			SupplierID:    sup.ID,
		}
		if err := tx.Create(&med).Error; err != nil {
			return err
		}

		batch := inventory.Batch{
			ProductID:   med.ID,
			BatchNumber: "DUMMY-BATCH-001",
			Quantity:    100,
			ExpiryDate:  time.Now().UTC().AddDate(1, 0, 0),
		}
		if _, err := inventory.Receive(tx, &batch, ""); err != nil {
			return err
		}

		m.log.WithField("product", med.Name).Info("Seeded demo catalog")
		return nil
	})
}

// GetTableInfo logs the row count of every public table
func (m *Migration) GetTableInfo() error {
	var tables []string
	if err := m.db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public' ORDER BY tablename").Scan(&tables).Error; err != nil {
		return err
	}

	for _, table := range tables {
		var count int64
		m.db.Table(table).Count(&count)
		m.log.WithFields(logrus.Fields{"table": table, "records": count}).Info("Table info")
	}
	return nil
}
