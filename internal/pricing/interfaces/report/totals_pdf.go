package report

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/jung-kurt/gofpdf"

	pricing "tariff-cloud/internal/pricing/domain"
)

const unicodeFamily = "report"

// PDFOption configures report rendering.
type PDFOption func(*pdfConfig)

type pdfConfig struct {
	fontFile string
	month    int
}

// WithFontFile embeds a TrueType font so CJK station names render. Without
// it the core Arial font is used.
func WithFontFile(path string) PDFOption {
	return func(c *pdfConfig) {
		c.fontFile = path
	}
}

// WithMonth prints the billing month in the summary.
func WithMonth(month int) PDFOption {
	return func(c *pdfConfig) {
		c.month = month
	}
}

// BuildTotalsPDF renders merged station prices: a summary block and one
// table row per merged segment.
func BuildTotalsPDF(report pricing.TotalReport, generatedAt time.Time, opts ...PDFOption) ([]byte, error) {
	var cfg pdfConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	family := "Arial"
	if cfg.fontFile != "" {
		if _, err := os.Stat(cfg.fontFile); err != nil {
			return nil, fmt.Errorf("report: font: %w", err)
		}
		pdf.AddUTF8Font(unicodeFamily, "", cfg.fontFile)
		pdf.AddUTF8Font(unicodeFamily, "B", cfg.fontFile)
		family = unicodeFamily
	}
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("report: font: %w", err)
	}
	pdf.SetFont(family, "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Charging Price Report")
	pdf.Ln(10)
	pdf.SetFont(family, "", 10)
	if cfg.month > 0 {
		pdf.Cell(0, 6, fmt.Sprintf("Month: %d", cfg.month))
		pdf.Ln(5)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Stations: %d", len(report.Results)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Energy only: %d  Service only: %d", len(report.EnergyOnly), len(report.ServiceOnly)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", generatedAt.Format(time.RFC3339)))
	pdf.Ln(8)

	pdf.SetFont(family, "B", 10)
	pdf.CellFormat(60, 6, "Station", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Interval", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Energy", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Service", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Total", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont(family, "", 10)
	for _, result := range report.Results {
		if len(result.Segments) == 0 {
			pdf.CellFormat(60, 6, result.Station, "1", 0, "L", false, 0, "")
			pdf.CellFormat(125, 6, "merge failed", "1", 0, "C", false, 0, "")
			pdf.Ln(-1)
			continue
		}
		for _, seg := range result.Segments {
			pdf.CellFormat(60, 6, result.Station, "1", 0, "L", false, 0, "")
			pdf.CellFormat(35, 6, seg.Interval().String(), "1", 0, "C", false, 0, "")
			pdf.CellFormat(30, 6, seg.Energy.StringFixed(4), "1", 0, "R", false, 0, "")
			pdf.CellFormat(30, 6, seg.Service.StringFixed(4), "1", 0, "R", false, 0, "")
			pdf.CellFormat(30, 6, seg.Total.StringFixed(4), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
