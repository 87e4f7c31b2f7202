// internal/domain/product/service_test.go
package product_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/pharmacy-backend/internal/domain/inventory"
	"github.com/your-org/pharmacy-backend/internal/domain/product"
	"github.com/your-org/pharmacy-backend/internal/domain/sale"
	"github.com/your-org/pharmacy-backend/internal/domain/user"
	"github.com/your-org/pharmacy-backend/internal/pkg/apperror"
	"github.com/your-org/pharmacy-backend/internal/testutil"
)

func createRequest(supplierID string) *product.CreateRequest {
	return &product.CreateRequest{
		DetailsRequest: product.DetailsRequest{
			Name:          "Paracetamol 500mg",
			Category:      "Analgesic",
			Manufacturer:  "Acme Pharma",
			MinStockLevel: 10,
			Price:         decimal.RequireFromString("1.20"),
			SellingPrice:  decimal.RequireFromString("2.50"),
			SupplierID:    supplierID,
		},
		InitialBatch: product.BatchRequest{
			BatchNumber: "PCM-001",
			Quantity:    50,
			ExpiryDate:  time.Now().AddDate(1, 0, 0).Format("2006-01-02"),
		},
	}
}

func TestCreateProduct(t *testing.T) {
	db := testutil.NewDB(t)
	svc := product.NewService(db)
	ctx := context.Background()
	sup := testutil.CreateSupplier(t, db, "Acme")
	pharmacist := testutil.Actor(user.RolePharmacist)

	t.Run("creates the product with its first batch", func(t *testing.T) {
		created, err := svc.CreateProduct(ctx, pharmacist, createRequest(sup.ID))
		require.NoError(t, err)
		require.Len(t, created.Batches, 1)

		summary, err := svc.GetProduct(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, 50, summary.TotalStock)
		assert.False(t, summary.LowStock)
		assert.Equal(t, "Acme", summary.Supplier.Name)

		var movements []inventory.StockMovement
		require.NoError(t, db.Find(&movements, "batch_id = ?", created.Batches[0].ID).Error)
		require.Len(t, movements, 1)
		assert.Equal(t, inventory.ReasonRestock, movements[0].Reason)
		assert.Equal(t, pharmacist.UserID, movements[0].CreatedBy)
	})

	t.Run("cashier is forbidden", func(t *testing.T) {
		_, err := svc.CreateProduct(ctx, testutil.Actor(user.RoleCashier), createRequest(sup.ID))
		assert.True(t, apperror.Is(err, apperror.KindForbidden))
	})

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name    string
			mutate  func(r *product.CreateRequest)
			message string
		}{
			{"negative cost", func(r *product.CreateRequest) { r.Price = decimal.NewFromInt(-1) }, "Cost price must be positive"},
			{"negative selling", func(r *product.CreateRequest) { r.SellingPrice = decimal.NewFromInt(-1) }, "Selling price must be positive"},
			{"past expiry", func(r *product.CreateRequest) { r.InitialBatch.ExpiryDate = "2001-01-01" }, "Expiry date must be in the future"},
			{"unknown supplier", func(r *product.CreateRequest) { r.SupplierID = "missing" }, "Supplier not found"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				req := createRequest(sup.ID)
				tt.mutate(req)

				_, err := svc.CreateProduct(ctx, pharmacist, req)
				assert.True(t, apperror.Is(err, apperror.KindValidation))
				assert.Equal(t, tt.message, apperror.MessageOf(err))
			})
		}

		var count int64
		require.NoError(t, db.Model(&product.Product{}).Where("supplier_id = ?", "missing").Count(&count).Error)
		assert.Zero(t, count)
	})
}

func TestListProducts(t *testing.T) {
	db := testutil.NewDB(t)
	svc := product.NewService(db)
	ctx := context.Background()
	sup := testutil.CreateSupplier(t, db, "Acme")
	now := time.Now().UTC()

	low := testutil.CreateProduct(t, db, sup.ID, "Aspirin", "Analgesic", "1.00", "2.00", 10)
	testutil.CreateBatch(t, db, low.ID, "ASP-1", 4, now.AddDate(1, 0, 0))

	expiring := testutil.CreateProduct(t, db, sup.ID, "Betadine", "Antiseptic", "3.00", "5.00", 5)
	testutil.CreateBatch(t, db, expiring.ID, "BET-1", 40, now.AddDate(0, 0, 10))

	healthy := testutil.CreateProduct(t, db, sup.ID, "Cough Syrup", "Respiratory", "2.00", "4.00", 5)
	testutil.CreateBatch(t, db, healthy.ID, "CS-1", 100, now.AddDate(2, 0, 0))

	tests := []struct {
		name string
		req  product.ListRequest
		want []string
	}{
		{"all", product.ListRequest{}, []string{"Aspirin", "Betadine", "Cough Syrup"}},
		{"query matches category", product.ListRequest{Query: "antisep"}, []string{"Betadine"}},
		{"category", product.ListRequest{Category: "Respiratory"}, []string{"Cough Syrup"}},
		{"low stock", product.ListRequest{Status: product.StatusLow}, []string{"Aspirin"}},
		{"expiring", product.ListRequest{Status: product.StatusExpiring}, []string{"Betadine"}},
		{"second page", product.ListRequest{Page: 2, Limit: 2}, []string{"Cough Syrup"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			resp, err := svc.List(ctx, &req)
			require.NoError(t, err)

			names := make([]string, 0, len(resp.Products))
			for _, p := range resp.Products {
				names = append(names, p.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}

	t.Run("unknown status", func(t *testing.T) {
		_, err := svc.List(ctx, &product.ListRequest{Status: "gone"})
		assert.True(t, apperror.Is(err, apperror.KindValidation))
	})

	t.Run("categories", func(t *testing.T) {
		categories, err := svc.Categories(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Analgesic", "Antiseptic", "Respiratory"}, categories)
	})
}

func TestDeleteProduct(t *testing.T) {
	db := testutil.NewDB(t)
	svc := product.NewService(db)
	ctx := context.Background()
	sup := testutil.CreateSupplier(t, db, "Acme")
	admin := testutil.Actor(user.RoleAdmin)

	t.Run("removes batches and movements", func(t *testing.T) {
		created, err := svc.CreateProduct(ctx, admin, createRequest(sup.ID))
		require.NoError(t, err)

		require.NoError(t, svc.DeleteProduct(ctx, admin, created.ID))

		var batches, movements int64
		require.NoError(t, db.Model(&inventory.Batch{}).Where("product_id = ?", created.ID).Count(&batches).Error)
		require.NoError(t, db.Model(&inventory.StockMovement{}).Where("batch_id = ?", created.Batches[0].ID).Count(&movements).Error)
		assert.Zero(t, batches)
		assert.Zero(t, movements)

		_, err = svc.GetProduct(ctx, created.ID)
		assert.True(t, apperror.Is(err, apperror.KindNotFound))
	})

	t.Run("keeps products with sales history", func(t *testing.T) {
		created, err := svc.CreateProduct(ctx, admin, createRequest(sup.ID))
		require.NoError(t, err)
		batch := created.Batches[0]

		sales := sale.NewService(db, testutil.Logger())
		_, err = sales.ProcessSale(ctx, admin, &sale.CreateRequest{
			Items:         []sale.ItemRequest{{BatchID: batch.ID, Quantity: 1, Price: decimal.RequireFromString("2.50")}},
			TotalAmount:   decimal.RequireFromString("2.50"),
			PaymentMethod: sale.PaymentMethodCash,
		})
		require.NoError(t, err)

		err = svc.DeleteProduct(ctx, admin, created.ID)
		assert.True(t, apperror.Is(err, apperror.KindBusiness))
		assert.Equal(t, "Cannot delete product. It has 1 recorded sale lines.", apperror.MessageOf(err))
	})
}

func TestRestock(t *testing.T) {
	db := testutil.NewDB(t)
	svc := product.NewService(db)
	ctx := context.Background()
	sup := testutil.CreateSupplier(t, db, "Acme")
	admin := testutil.Actor(user.RoleAdmin)

	created, err := svc.CreateProduct(ctx, admin, createRequest(sup.ID))
	require.NoError(t, err)

	batch, err := svc.Restock(ctx, admin, created.ID, &product.BatchRequest{
		BatchNumber: "PCM-002",
		Quantity:    25,
		ExpiryDate:  time.Now().AddDate(0, 8, 0).Format(time.RFC3339),
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, batch.ProductID)

	summary, err := svc.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 75, summary.TotalStock)
	assert.Equal(t, 2, summary.BatchesCount)
	assert.Equal(t, "PCM-002", summary.Batches[0].BatchNumber, "batches come back soonest expiry first")

	_, err = svc.Restock(ctx, admin, "missing", &product.BatchRequest{
		BatchNumber: "X", Quantity: 1, ExpiryDate: time.Now().AddDate(1, 0, 0).Format("2006-01-02"),
	})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestParseDate(t *testing.T) {
	got, err := product.ParseDate("2026-05-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), got)

	got, err = product.ParseDate("2026-05-01T10:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC), got)

	_, err = product.ParseDate("01/05/2026")
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

type countingListener struct{ calls int }

func (l *countingListener) StockChanged(context.Context) { l.calls++ }

func TestStockListeners(t *testing.T) {
	db := testutil.NewDB(t)
	listener := &countingListener{}
	svc := product.NewService(db, listener)
	ctx := context.Background()
	sup := testutil.CreateSupplier(t, db, "Acme")
	admin := testutil.Actor(user.RoleAdmin)

	created, err := svc.CreateProduct(ctx, admin, createRequest(sup.ID))
	require.NoError(t, err)
	assert.Equal(t, 1, listener.calls)

	details := createRequest(sup.ID).DetailsRequest
	details.Category = "Antipyretic"
	_, err = svc.UpdateProduct(ctx, admin, created.ID, &details)
	require.NoError(t, err)
	assert.Equal(t, 2, listener.calls)

	_, err = svc.Restock(ctx, admin, created.ID, &product.BatchRequest{
		BatchNumber: "PCM-009", Quantity: 5, ExpiryDate: time.Now().AddDate(1, 0, 0).Format("2006-01-02"),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, listener.calls)

	_, err = svc.Restock(ctx, admin, "missing", &product.BatchRequest{
		BatchNumber: "X", Quantity: 1, ExpiryDate: time.Now().AddDate(1, 0, 0).Format("2006-01-02"),
	})
	require.Error(t, err)
	assert.Equal(t, 3, listener.calls, "failed writes notify nobody")

	require.NoError(t, svc.DeleteProduct(ctx, admin, created.ID))
	assert.Equal(t, 4, listener.calls)
}
