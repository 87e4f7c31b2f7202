// internal/pkg/export/tables.go
package export

import (
	"strconv"

	"github.com/your-org/pharmacy-backend/internal/domain/analytics"
	"github.com/your-org/pharmacy-backend/internal/domain/forecast"
)

// Table is a titled grid of cells, rendered as one sheet or one HTML table
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Report is a named set of tables
type Report struct {
	Name   string
	Title  string
	Tables []Table
}

// ForecastReport lays out the forecast rows
func ForecastReport(rows []forecast.Row) Report {
	table := Table{
		Title: "Forecast",
		Headers: []string{"Product", "Category", "Current Stock", "Sold (30d)", "Daily Rate",
			"Predicted Demand", "Status", "Suggested Reorder", "Explanation"},
	}
	for _, r := range rows {
		table.Rows = append(table.Rows, []string{
			r.Name,
			r.Category,
			strconv.Itoa(r.CurrentStock),
			strconv.Itoa(r.SoldLast30Days),
			strconv.FormatFloat(r.DailyRate, 'f', 2, 64),
			strconv.Itoa(r.PredictedDemand),
			string(r.Status),
			strconv.Itoa(r.Suggestion),
			r.Explanation,
		})
	}
	return Report{Name: "forecast", Title: "Demand Forecast", Tables: []Table{table}}
}

// DashboardReport lays out the dashboard figures
func DashboardReport(stats *analytics.DashboardStats) Report {
	summary := Table{
		Title:   "Summary",
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Total Revenue", stats.TotalRevenue.StringFixed(2)},
			{"Total Stock", strconv.Itoa(stats.TotalStock)},
			{"Low Stock Products", strconv.Itoa(stats.LowStockCount)},
			{"Expiring Soon", strconv.Itoa(stats.ExpiringSoonCount)},
		},
	}

	daily := Table{Title: "Revenue By Day", Headers: []string{"Date", "Revenue"}}
	for _, point := range stats.RevenueByDay {
		daily.Rows = append(daily.Rows, []string{point.Date, point.Value.StringFixed(2)})
	}

	recent := Table{Title: "Recent Sales", Headers: []string{"Sale", "Date", "Amount", "Items"}}
	for _, sale := range stats.RecentSales {
		recent.Rows = append(recent.Rows, []string{
			sale.ID,
			sale.Date.UTC().Format("2006-01-02 15:04"),
			sale.Amount.StringFixed(2),
			sale.ItemsList,
		})
	}

	return Report{Name: "dashboard", Title: "Dashboard", Tables: []Table{summary, daily, recent}}
}

// DetailedReport lays out profitability, categories and top products
func DetailedReport(report *analytics.DetailedReport) Report {
	financials := Table{
		Title:   "Financials",
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Revenue", report.Financials.Revenue.StringFixed(2)},
			{"Gross Profit", report.Financials.Profit.StringFixed(2)},
			{"Margin %", report.Financials.Margin.StringFixed(1)},
		},
	}

	categories := Table{Title: "Categories", Headers: []string{"Category", "Revenue"}}
	for _, c := range report.CategoryData {
		categories.Rows = append(categories.Rows, []string{c.Name, c.Value.StringFixed(2)})
	}

	top := Table{Title: "Top Products", Headers: []string{"Product", "Units", "Revenue"}}
	for _, p := range report.TopProducts {
		top.Rows = append(top.Rows, []string{p.Name, strconv.Itoa(p.Quantity), p.Revenue.StringFixed(2)})
	}

	return Report{Name: "detailed", Title: "Detailed Report", Tables: []Table{financials, categories, top}}
}
