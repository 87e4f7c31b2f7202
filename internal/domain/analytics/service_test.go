// internal/domain/analytics/service_test.go
package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/pharmacy-backend/internal/domain/analytics"
	"github.com/your-org/pharmacy-backend/internal/domain/inventory"
	"github.com/your-org/pharmacy-backend/internal/domain/product"
	"github.com/your-org/pharmacy-backend/internal/domain/sale"
	"github.com/your-org/pharmacy-backend/internal/domain/user"
	"github.com/your-org/pharmacy-backend/internal/testutil"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestBuildDetailedReport(t *testing.T) {
	products := map[string]product.Product{
		"p1": {ID: "p1", Name: "Paracetamol", Category: "Analgesic", Price: dec("6.00")},
		"p2": {ID: "p2", Name: "Amoxicillin", Category: "Antibiotic", Price: dec("20.00")},
	}
	b1 := &inventory.Batch{ID: "b1", ProductID: "p1"}
	b2 := &inventory.Batch{ID: "b2", ProductID: "p2"}

	sales := []sale.Sale{
		{TotalAmount: dec("50.00"), Items: []sale.SaleItem{
			{BatchID: "b1", Quantity: 5, Price: dec("10.00"), Batch: b1},
		}},
		{TotalAmount: dec("80.00"), Items: []sale.SaleItem{
			{BatchID: "b1", Quantity: 2, Price: dec("10.00"), Batch: b1},
			{BatchID: "b2", Quantity: 2, Price: dec("30.00"), Batch: b2},
		}},
	}

	report := analytics.BuildDetailedReport(sales, products)

	// cost = 7 × 6 + 2 × 20 = 82
	assert.Equal(t, "130.00", report.Financials.Revenue.StringFixed(2))
	assert.Equal(t, "48.00", report.Financials.Profit.StringFixed(2))
	assert.Equal(t, "36.9", report.Financials.Margin.StringFixed(1))

	require.Len(t, report.CategoryData, 2)
	assert.Equal(t, "Analgesic", report.CategoryData[0].Name)
	assert.Equal(t, "70.00", report.CategoryData[0].Value.StringFixed(2))
	assert.Equal(t, "Antibiotic", report.CategoryData[1].Name)

	require.Len(t, report.TopProducts, 2)
	assert.Equal(t, "Paracetamol", report.TopProducts[0].Name)
	assert.Equal(t, 7, report.TopProducts[0].Quantity)
	assert.Equal(t, "Amoxicillin", report.TopProducts[1].Name)

	empty := analytics.BuildDetailedReport(nil, products)
	assert.True(t, empty.Financials.Margin.IsZero())
	assert.Empty(t, empty.TopProducts)
}

func TestRevenueByDay(t *testing.T) {
	d1 := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	d2 := time.Date(2025, 3, 2, 23, 30, 0, 0, time.UTC)

	series := analytics.RevenueByDay([]sale.Sale{
		{TotalAmount: dec("5.00"), CreatedAt: d2},
		{TotalAmount: dec("10.00"), CreatedAt: d1},
		{TotalAmount: dec("2.50"), CreatedAt: d1.Add(time.Hour)},
	})

	require.Len(t, series, 2)
	assert.Equal(t, "2025-03-01", series[0].Date)
	assert.Equal(t, "12.50", series[0].Value.StringFixed(2))
	assert.Equal(t, "2025-03-02", series[1].Date)
	assert.Equal(t, "5.00", series[1].Value.StringFixed(2))
}

func TestGetDashboardStats(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	now := time.Now().UTC()
	sup := testutil.CreateSupplier(t, db, "Acme")

	low := testutil.CreateProduct(t, db, sup.ID, "Aspirin", "Analgesic", "1.00", "2.00", 10)
	lowBatch := testutil.CreateBatch(t, db, low.ID, "A-1", 8, now.AddDate(1, 0, 0))

	expiring := testutil.CreateProduct(t, db, sup.ID, "Betadine", "Antiseptic", "3.00", "5.00", 5)
	testutil.CreateBatch(t, db, expiring.ID, "B-1", 20, now.AddDate(0, 0, 7))

	sales := sale.NewService(db, testutil.Logger())
	_, err := sales.ProcessSale(ctx, testutil.Actor(user.RoleCashier), &sale.CreateRequest{
		Items:         []sale.ItemRequest{{BatchID: lowBatch.ID, Quantity: 3, Price: dec("2.00")}},
		TotalAmount:   dec("6.00"),
		PaymentMethod: sale.PaymentMethodCash,
	})
	require.NoError(t, err)

	stats, err := analytics.NewService(db).GetDashboardStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, "6.00", stats.TotalRevenue.StringFixed(2))
	assert.Equal(t, 25, stats.TotalStock)
	assert.Equal(t, 1, stats.LowStockCount)
	assert.Equal(t, 1, stats.ExpiringSoonCount)

	require.Len(t, stats.RecentSales, 1)
	assert.Equal(t, "Aspirin (x3)", stats.RecentSales[0].ItemsList)
	assert.Equal(t, 1, stats.RecentSales[0].ItemsCount)
	require.Len(t, stats.RevenueByDay, 1)
	assert.Equal(t, now.Format("2006-01-02"), stats.RevenueByDay[0].Date)
}
