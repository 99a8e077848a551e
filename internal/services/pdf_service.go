package services

import (
	"bytes"
	"fmt"

	"staffhub-report/internal/models"
	"staffhub-report/internal/utils"

	"github.com/jung-kurt/gofpdf/v2"
)

// PDFService renders report data as a paginated PDF table
type PDFService struct{}

// NewPDFService creates a new PDF service
func NewPDFService() *PDFService {
	return &PDFService{}
}

// Render produces a PDF with a header block, a styled table, an automatic
// page break when the vertical cursor exceeds the page bound, and one
// section per group when the data is grouped
func (s *PDFService) Render(data *ReportData) ([]byte, error) {
	fields := data.Template.VisibleFields()
	if len(fields) == 0 {
		return nil, fmt.Errorf("template %q has no visible fields", data.Template.Name)
	}

	orientation := "P"
	pageBound := 260.0
	tableWidth := 180.0
	if data.Template.Layout.Orientation == "landscape" {
		orientation = "L"
		pageBound = 175.0
		tableWidth = 267.0
	}
	r, g, b := utils.ParseHexColor(data.Template.Layout.PrimaryColor)

	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AliasNbPages("{nb}")

	if data.Template.Layout.ShowFooter {
		pdf.SetFooterFunc(func() {
			pdf.SetY(-15)
			pdf.SetFont("Arial", "", 9)
			pdf.SetTextColor(108, 117, 125)
			pdf.SetX(15)
			pdf.CellFormat(0, 10, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
		})
	}

	pdf.AddPage()

	// Header block: template name, description, generation timestamp
	pdf.SetFont("Arial", "B", 18)
	pdf.SetTextColor(33, 37, 41)
	pdf.CellFormat(0, 10, data.Template.Name, "", 1, "L", false, 0, "")
	if data.Template.Description != "" {
		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(108, 117, 125)
		pdf.CellFormat(0, 6, data.Template.Description, "", 1, "L", false, 0, "")
	}
	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(108, 117, 125)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated: %s", data.GeneratedAt.Format("Jan 2, 2006 15:04 MST")), "", 1, "L", false, 0, "")

	pdf.Ln(4)
	pdf.SetLineWidth(0.5)
	pdf.SetDrawColor(r, g, b)
	pdf.Line(15, pdf.GetY(), 15+tableWidth, pdf.GetY())
	pdf.Ln(6)

	colWidth := tableWidth / float64(len(fields))

	drawHeader := func() {
		pdf.SetFillColor(r, g, b)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Arial", "B", 9)
		for _, f := range fields {
			pdf.CellFormat(colWidth, 8, f.Label, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetTextColor(33, 37, 41)
		pdf.SetFont("Arial", "", 9)
	}

	rowIndex := 0
	drawRow := func(rec models.Record) {
		if pdf.GetY() > pageBound {
			pdf.AddPage()
			drawHeader()
		}
		if rowIndex%2 == 0 {
			pdf.SetFillColor(255, 255, 255)
		} else {
			pdf.SetFillColor(248, 249, 250)
		}
		for _, f := range fields {
			v, _ := utils.Resolve(rec, f.SourcePath)
			pdf.CellFormat(colWidth, 7, utils.FormatValue(v, f.ValueType), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		rowIndex++
	}

	if data.Grouped {
		for _, group := range data.Groups {
			if pdf.GetY() > pageBound-15 {
				pdf.AddPage()
			}
			pdf.Ln(3)
			pdf.SetFont("Arial", "B", 11)
			pdf.SetTextColor(r, g, b)
			pdf.CellFormat(0, 8, group.Key, "", 1, "L", false, 0, "")
			pdf.SetTextColor(33, 37, 41)
			drawHeader()
			rowIndex = 0
			for _, rec := range group.Records {
				drawRow(rec)
			}
		}
	} else {
		drawHeader()
		for _, rec := range data.Rows {
			drawRow(rec)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}
