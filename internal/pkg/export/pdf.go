// internal/pkg/export/pdf.go
package export

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/your-org/pharmacy-backend/internal/config"
)

// PDFService renders reports to PDF through wkhtmltopdf
type PDFService struct {
	config *config.Config
	tmpl   *template.Template
}

// NewPDFService creates a new PDF service
func NewPDFService(cfg *config.Config) *PDFService {
	return &PDFService{
		config: cfg,
		tmpl:   template.Must(template.New("report").Parse(reportTemplate)),
	}
}

// ReportData represents the data passed to the report template
type ReportData struct {
	Report      Report
	GeneratedAt string
	Pharmacy    PharmacyInfo
}

// PharmacyInfo represents the pharmacy letterhead
type PharmacyInfo struct {
	Name    string
	Address string
	Phone   string
}

// GeneratePDF renders the report and converts it to PDF
func (s *PDFService) GeneratePDF(report Report) (*bytes.Buffer, error) {
	htmlContent, err := s.RenderHTML(report, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationLandscape)
	pdfg.Grayscale.Set(false)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader([]byte(htmlContent)))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	page.Zoom.Set(0.95)

	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

// RenderHTML renders the page that is fed to wkhtmltopdf
func (s *PDFService) RenderHTML(report Report, at time.Time) (string, error) {
	data := ReportData{
		Report:      report,
		GeneratedAt: at.Format("January 2, 2006 15:04 MST"),
		Pharmacy: PharmacyInfo{
			Name:    s.config.Pharmacy.Name,
			Address: s.config.Pharmacy.Address,
			Phone:   s.config.Pharmacy.Phone,
		},
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

const reportTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Report.Title}}</title>
    <style>
        body {
            font-family: Arial, sans-serif;
            margin: 0;
            padding: 20px;
            color: #333;
        }
        .header {
            margin-bottom: 24px;
            border-bottom: 2px solid #eee;
            padding-bottom: 12px;
        }
        .pharmacy-name {
            font-size: 24px;
            font-weight: bold;
            color: #047857;
        }
        .meta {
            font-size: 12px;
            color: #6b7280;
        }
        h2 {
            font-size: 16px;
            color: #374151;
            margin: 24px 0 8px;
        }
        table {
            width: 100%;
            border-collapse: collapse;
        }
        th, td {
            border: 1px solid #ddd;
            padding: 8px 6px;
            text-align: left;
            font-size: 12px;
        }
        th {
            background-color: #f8f9fa;
        }
    </style>
</head>
<body>
    <div class="header">
        <div class="pharmacy-name">{{.Pharmacy.Name}}</div>
        {{if .Pharmacy.Address}}<div class="meta">{{.Pharmacy.Address}}</div>{{end}}
        {{if .Pharmacy.Phone}}<div class="meta">{{.Pharmacy.Phone}}</div>{{end}}
        <h1>{{.Report.Title}}</h1>
        <div class="meta">Generated {{.GeneratedAt}}</div>
    </div>
    {{range .Report.Tables}}
    <h2>{{.Title}}</h2>
    <table>
        <thead>
            <tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr>
        </thead>
        <tbody>
            {{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
            {{else}}<tr><td colspan="{{len .Headers}}">No data</td></tr>{{end}}
        </tbody>
    </table>
    {{end}}
</body>
</html>
`
