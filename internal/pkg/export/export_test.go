// internal/pkg/export/export_test.go
package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"github.com/your-org/pharmacy-backend/internal/config"
	"github.com/your-org/pharmacy-backend/internal/domain/analytics"
	"github.com/your-org/pharmacy-backend/internal/domain/forecast"
)

func sampleForecast() Report {
	return ForecastReport([]forecast.Row{
		{Name: "Cetirizine", Category: "Antihistamine", CurrentStock: 0, SoldLast30Days: 10, DailyRate: 0.33,
			PredictedDemand: 10, Status: forecast.StatusCritical, Suggestion: 12, Explanation: "Based on 30-day simple moving average."},
		{Name: "Dolo <500>", Category: "Analgesic", CurrentStock: 95, SoldLast30Days: 30, DailyRate: 1,
			PredictedDemand: 30, Status: forecast.StatusHealthy},
	})
}

func TestWriteXLSX(t *testing.T) {
	stats := &analytics.DashboardStats{
		TotalRevenue: decimal.RequireFromString("130.5"),
		TotalStock:   42,
		RevenueByDay: []analytics.TimeSeriesData{{Date: "2025-03-01", Value: decimal.RequireFromString("130.5")}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, DashboardReport(stats)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "Revenue By Day", "Recent Sales"}, f.GetSheetList())

	value, err := f.GetCellValue("Summary", "B2")
	require.NoError(t, err)
	assert.Equal(t, "130.50", value)

	header, err := f.GetCellValue("Recent Sales", "D1")
	require.NoError(t, err)
	assert.Equal(t, "Items", header)

	day, err := f.GetCellValue("Revenue By Day", "A2")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01", day)
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Sheet3", sheetName("", 2))
	assert.Len(t, sheetName(strings.Repeat("x", 40), 0), 31)
}

func TestRenderHTML(t *testing.T) {
	cfg := &config.Config{Pharmacy: config.PharmacyConfig{Name: "Green Cross", Phone: "555-0100"}}
	svc := NewPDFService(cfg)

	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	html, err := svc.RenderHTML(sampleForecast(), at)
	require.NoError(t, err)

	assert.Contains(t, html, "Green Cross")
	assert.Contains(t, html, "555-0100")
	assert.Contains(t, html, "<h1>Demand Forecast</h1>")
	assert.Contains(t, html, "<td>CRITICAL</td>")
	assert.Contains(t, html, "Dolo &lt;500&gt;")
	assert.Contains(t, html, "Generated March 1, 2025 10:00 UTC")

	empty, err := svc.RenderHTML(Report{Title: "Empty", Tables: []Table{{Title: "Nothing", Headers: []string{"A", "B"}}}}, at)
	require.NoError(t, err)
	assert.Contains(t, empty, `colspan="2">No data`)
}

func TestDetailedReportLayout(t *testing.T) {
	report := DetailedReport(&analytics.DetailedReport{
		Financials: analytics.Financials{
			Revenue: decimal.RequireFromString("130"),
			Profit:  decimal.RequireFromString("48"),
			Margin:  decimal.RequireFromString("36.9"),
		},
		TopProducts: []analytics.ProductSalesData{{Name: "Paracetamol", Quantity: 7, Revenue: decimal.RequireFromString("70")}},
	})

	require.Len(t, report.Tables, 3)
	assert.Equal(t, []string{"Margin %", "36.9"}, report.Tables[0].Rows[2])
	assert.Equal(t, []string{"Paracetamol", "7", "70.00"}, report.Tables[2].Rows[0])
}
