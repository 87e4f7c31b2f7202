// internal/domain/analytics/service.go
package analytics

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/pharmacy-backend/internal/domain/product"
	"github.com/your-org/pharmacy-backend/internal/domain/sale"
	"github.com/your-org/pharmacy-backend/internal/pkg/apperror"
	"gorm.io/gorm"
)

const (
	// chartSampleSize is how many of the latest sales feed the revenue chart
	chartSampleSize = 100
	recentSalesSize = 5
	topProductsSize = 5
)

// Service handles read-only report aggregation
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

// NewService creates a new analytics service
func NewService(db *gorm.DB) *Service {
	return &Service{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// DashboardStats represents the landing page figures
type DashboardStats struct {
	TotalRevenue      decimal.Decimal  `json:"total_revenue"`
	TotalStock        int              `json:"total_stock"`
	LowStockCount     int              `json:"low_stock_count"`
	ExpiringSoonCount int              `json:"expiring_soon_count"`
	RecentSales       []RecentSale     `json:"recent_sales"`
	RevenueByDay      []TimeSeriesData `json:"revenue_by_day"`
}

// RecentSale summarizes one of the latest sales
type RecentSale struct {
	ID         string          `json:"id"`
	Amount     decimal.Decimal `json:"amount"`
	Date       time.Time       `json:"date"`
	ItemsCount int             `json:"items_count"`
	ItemsList  string          `json:"items_list"`
}

// TimeSeriesData represents revenue for one calendar day
type TimeSeriesData struct {
	Date  string          `json:"date"`
	Value decimal.Decimal `json:"value"`
}

// DetailedReport represents profitability figures over all sales
type DetailedReport struct {
	Financials   Financials         `json:"financials"`
	CategoryData []CategoryData     `json:"category_data"`
	TopProducts  []ProductSalesData `json:"top_selling_products"`
}

// Financials holds revenue, profit and margin
type Financials struct {
	Revenue decimal.Decimal `json:"revenue"`
	Profit  decimal.Decimal `json:"profit"`
	Margin  decimal.Decimal `json:"margin"` // percentage, one decimal place
}

// CategoryData represents revenue per product category
type CategoryData struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// ProductSalesData represents one product's sales performance
type ProductSalesData struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// GetDashboardStats computes the dashboard figures
func (s *Service) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	db := s.db.WithContext(ctx)
	now := s.now()

	var products []product.Product
	if err := db.Preload("Batches").Find(&products).Error; err != nil {
		return nil, apperror.Internal("failed to load products", err)
	}

	stats := &DashboardStats{
		TotalRevenue: decimal.Zero,
		RecentSales:  []RecentSale{},
		RevenueByDay: []TimeSeriesData{},
	}
	for _, p := range products {
		summary := product.Summarize(p, now)
		stats.TotalStock += summary.TotalStock
		if summary.LowStock {
			stats.LowStockCount++
		}
		if summary.NearExpiry {
			stats.ExpiringSoonCount++
		}
	}

	var amounts []decimal.Decimal
	if err := db.Model(&sale.Sale{}).Pluck("total_amount", &amounts).Error; err != nil {
		return nil, apperror.Internal("failed to load sale totals", err)
	}
	for _, a := range amounts {
		stats.TotalRevenue = stats.TotalRevenue.Add(a)
	}

	var sales []sale.Sale
	if err := db.Preload("Items").Preload("Items.Batch").
		Order("created_at DESC").
		Limit(chartSampleSize).
		Find(&sales).Error; err != nil {
		return nil, apperror.Internal("failed to load recent sales", err)
	}

	names := make(map[string]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}

	for i, sl := range sales {
		if i >= recentSalesSize {
			break
		}
		stats.RecentSales = append(stats.RecentSales, RecentSale{
			ID:         sl.ID,
			Amount:     sl.TotalAmount,
			Date:       sl.CreatedAt,
			ItemsCount: len(sl.Items),
			ItemsList:  itemsList(sl.Items, names),
		})
	}

	stats.RevenueByDay = RevenueByDay(sales)
	return stats, nil
}

// RevenueByDay buckets sale totals by UTC calendar day, oldest first
func RevenueByDay(sales []sale.Sale) []TimeSeriesData {
	buckets := make(map[string]decimal.Decimal)
	for _, sl := range sales {
		day := sl.CreatedAt.UTC().Format("2006-01-02")
		buckets[day] = buckets[day].Add(sl.TotalAmount)
	}

	series := make([]TimeSeriesData, 0, len(buckets))
	for day, value := range buckets {
		series = append(series, TimeSeriesData{Date: day, Value: value})
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Date < series[j].Date
	})
	return series
}

func itemsList(items []sale.SaleItem, names map[string]string) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		name := "Unknown"
		if item.Batch != nil {
			if n, ok := names[item.Batch.ProductID]; ok {
				name = n
			}
		}
		parts = append(parts, fmt.Sprintf("%s (x%d)", name, item.Quantity))
	}
	return strings.Join(parts, ", ")
}

// GetDetailedReport computes profit, category revenue and top products over all sales
func (s *Service) GetDetailedReport(ctx context.Context) (*DetailedReport, error) {
	db := s.db.WithContext(ctx)

	var products []product.Product
	if err := db.Find(&products).Error; err != nil {
		return nil, apperror.Internal("failed to load products", err)
	}
	byID := make(map[string]product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var sales []sale.Sale
	if err := db.Preload("Items").Preload("Items.Batch").Find(&sales).Error; err != nil {
		return nil, apperror.Internal("failed to load sales", err)
	}

	return BuildDetailedReport(sales, byID), nil
}

// BuildDetailedReport aggregates sales against the product catalog
func BuildDetailedReport(sales []sale.Sale, products map[string]product.Product) *DetailedReport {
	revenue := decimal.Zero
	cost := decimal.Zero
	categories := make(map[string]decimal.Decimal)
	performance := make(map[string]*ProductSalesData)

	for _, sl := range sales {
		revenue = revenue.Add(sl.TotalAmount)

		for _, item := range sl.Items {
			if item.Batch == nil {
				continue
			}
			p, ok := products[item.Batch.ProductID]
			if !ok {
				continue
			}

			qty := decimal.NewFromInt(int64(item.Quantity))
			lineRevenue := item.LineTotal()
			cost = cost.Add(p.Price.Mul(qty))
			categories[p.Category] = categories[p.Category].Add(lineRevenue)

			perf, ok := performance[p.ID]
			if !ok {
				perf = &ProductSalesData{ProductID: p.ID, Name: p.Name, Revenue: decimal.Zero}
				performance[p.ID] = perf
			}
			perf.Quantity += item.Quantity
			perf.Revenue = perf.Revenue.Add(lineRevenue)
		}
	}

	profit := revenue.Sub(cost)
	margin := decimal.Zero
	if revenue.IsPositive() {
		margin = profit.Div(revenue).Mul(decimal.NewFromInt(100)).Round(1)
	}

	categoryData := make([]CategoryData, 0, len(categories))
	for name, value := range categories {
		categoryData = append(categoryData, CategoryData{Name: name, Value: value})
	}
	sort.Slice(categoryData, func(i, j int) bool {
		return categoryData[i].Name < categoryData[j].Name
	})

	top := make([]ProductSalesData, 0, len(performance))
	for _, perf := range performance {
		top = append(top, *perf)
	}
	sort.Slice(top, func(i, j int) bool {
		if cmp := top[i].Revenue.Cmp(top[j].Revenue); cmp != 0 {
			return cmp > 0
		}
		return top[i].Name < top[j].Name
	})
	if len(top) > topProductsSize {
		top = top[:topProductsSize]
	}

	return &DetailedReport{
		Financials: Financials{
			Revenue: revenue,
			Profit:  profit,
			Margin:  margin,
		},
		CategoryData: categoryData,
		TopProducts:  top,
	}
}
