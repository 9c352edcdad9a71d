package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Document defines a sectioned key/value export, used for assessment
// summaries where a flat table does not fit.
type Document struct {
	Title    string
	Sections []DocumentSection
}

// DocumentSection groups labelled fields under a heading.
type DocumentSection struct {
	Heading string
	Fields  []DocumentField
}

// DocumentField is a single labelled value.
type DocumentField struct {
	Label string
	Value string
}

// PDFExporter renders datasets and documents into PDF bytes.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with an optional title and table body.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	pdf.SetFont("Arial", "B", 10)
	colWidth := 190.0 / float64(len(data.Headers))
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range data.Rows {
		for _, header := range data.Headers {
			value := row[header]
			pdf.CellFormat(colWidth, 7, value, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderDocument creates a sectioned PDF from label/value groups.
func (e *PDFExporter) RenderDocument(doc Document) ([]byte, error) {
	if len(doc.Sections) == 0 {
		return nil, fmt.Errorf("pdf document requires at least one section")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if doc.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, doc.Title, "", 1, "C", false, 0, "")
		pdf.Ln(4)
	}

	for _, section := range doc.Sections {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 8, section.Heading, "B", 1, "L", false, 0, "")
		pdf.Ln(1)

		for _, field := range section.Fields {
			pdf.SetFont("Arial", "B", 9)
			pdf.CellFormat(55, 6, field.Label, "", 0, "L", false, 0, "")
			pdf.SetFont("Arial", "", 9)
			pdf.MultiCell(135, 6, field.Value, "", "L", false)
		}
		pdf.Ln(3)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf document: %w", err)
	}
	return buf.Bytes(), nil
}
