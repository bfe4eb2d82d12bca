package services

import (
	"bytes"
	"regexp"
	"time"

	"github.com/jung-kurt/gofpdf"
)

var filenameSanitizer = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// PDFService renders date plans as downloadable PDF documents.
type PDFService struct{}

func NewPDFService() *PDFService {
	return &PDFService{}
}

// GenerateDatePlan renders a plan document: a titled header, the plan body,
// and a branded footer. userName is optional.
func (s *PDFService) GenerateDatePlan(dateName, content, userName string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(153, 153, 153)
		pdf.CellFormat(0, 10, "Created with wingMan - Your AI Dating Assistant", "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	// Header
	pdf.SetFont("Helvetica", "B", 24)
	pdf.SetTextColor(229, 62, 62)
	pdf.CellFormat(0, 12, dateName, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(102, 102, 102)
	subtitle := time.Now().Format("Monday, January 2, 2006")
	if userName != "" {
		subtitle = "Planned for " + userName + " - " + subtitle
	}
	pdf.CellFormat(0, 8, subtitle, "", 1, "L", false, 0, "")

	pdf.SetDrawColor(229, 62, 62)
	pdf.SetLineWidth(0.6)
	y := pdf.GetY() + 2
	pdf.Line(20, y, 190, y)
	pdf.Ln(8)

	// Plan body
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(68, 68, 68)
	pdf.MultiCell(0, 6, content, "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SanitizeFilename reduces a date name to a safe attachment filename stem.
func SanitizeFilename(name string) string {
	sanitized := filenameSanitizer.ReplaceAllString(name, "_")
	if sanitized == "" {
		sanitized = "date_plan"
	}
	return sanitized
}
