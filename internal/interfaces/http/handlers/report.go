// internal/interfaces/http/handlers/report.go
package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/pharmacy-backend/internal/domain/analytics"
	"github.com/your-org/pharmacy-backend/internal/domain/forecast"
	"github.com/your-org/pharmacy-backend/internal/pkg/export"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler handles forecast and analytics endpoints
type ReportHandler struct {
	forecastService  *forecast.Service
	analyticsService *analytics.Service
	pdfService       *export.PDFService
	log              *logrus.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(forecastService *forecast.Service, analyticsService *analytics.Service, pdfService *export.PDFService, log *logrus.Logger) *ReportHandler {
	return &ReportHandler{
		forecastService:  forecastService,
		analyticsService: analyticsService,
		pdfService:       pdfService,
		log:              log,
	}
}

// GetForecast handles GET /reports/forecast
func (h *ReportHandler) GetForecast(c *gin.Context) {
	rows, err := h.forecastService.Generate(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Forecast generated successfully", rows)
}

// GetDashboard handles GET /reports/dashboard
func (h *ReportHandler) GetDashboard(c *gin.Context) {
	stats, err := h.analyticsService.GetDashboardStats(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Dashboard stats retrieved successfully", stats)
}

// GetDetailed handles GET /reports/detailed
func (h *ReportHandler) GetDetailed(c *gin.Context) {
	report, err := h.analyticsService.GetDetailedReport(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Detailed report retrieved successfully", report)
}

// Export handles GET /reports/:name/export?format=xlsx|pdf
func (h *ReportHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "xlsx")
	if format != "xlsx" && format != "pdf" {
		respondBadRequest(c, "Format must be xlsx or pdf")
		return
	}

	report, ok := h.buildReport(c)
	if !ok {
		return
	}

	filename := fmt.Sprintf("%s-%s.%s", report.Name, time.Now().UTC().Format("2006-01-02"), format)

	var (
		buf         *bytes.Buffer
		contentType string
	)
	switch format {
	case "pdf":
		pdf, err := h.pdfService.GeneratePDF(report)
		if err != nil {
			h.log.WithError(err).WithField("report", report.Name).Error("PDF export failed")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to generate PDF"})
			return
		}
		buf, contentType = pdf, "application/pdf"
	default:
		buf = new(bytes.Buffer)
		if err := export.WriteXLSX(buf, report); err != nil {
			h.log.WithError(err).WithField("report", report.Name).Error("Spreadsheet export failed")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to generate spreadsheet"})
			return
		}
		contentType = xlsxContentType
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Length", strconv.Itoa(buf.Len()))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func (h *ReportHandler) buildReport(c *gin.Context) (export.Report, bool) {
	ctx := c.Request.Context()

	switch c.Param("name") {
	case "forecast":
		rows, err := h.forecastService.Generate(ctx)
		if err != nil {
			respondError(c, h.log, err)
			return export.Report{}, false
		}
		return export.ForecastReport(rows), true
	case "dashboard":
		stats, err := h.analyticsService.GetDashboardStats(ctx)
		if err != nil {
			respondError(c, h.log, err)
			return export.Report{}, false
		}
		return export.DashboardReport(stats), true
	case "detailed":
		report, err := h.analyticsService.GetDetailedReport(ctx)
		if err != nil {
			respondError(c, h.log, err)
			return export.Report{}, false
		}
		return export.DetailedReport(report), true
	default:
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Unknown report"})
		return export.Report{}, false
	}
}
