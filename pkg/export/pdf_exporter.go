package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageWidth   = 190.0
	headerColor = 0xD4
)

// Fact is a labelled figure shown above the tables.
type Fact struct {
	Label string
	Value string
}

// Section is a titled table.
type Section struct {
	Title string
	Data  Dataset
}

// Document is the content of a rendered overview.
type Document struct {
	Title    string
	Subtitle string
	Facts    []Fact
	Sections []Section
}

// PDFExporter renders overview documents with gofpdf.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates an A4 document. Text is translated to cp1252 so Spanish
// month names and accented classroom names survive the core fonts.
func (e *PDFExporter) Render(doc Document) ([]byte, error) {
	if doc.Title == "" && len(doc.Facts) == 0 && len(doc.Sections) == 0 {
		return nil, fmt.Errorf("pdf requires content")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if doc.Title != "" {
		pdf.SetFont("Arial", "B", 16)
		pdf.CellFormat(0, 10, tr(doc.Title), "", 1, "C", false, 0, "")
	}
	if doc.Subtitle != "" {
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(0, 7, tr(doc.Subtitle), "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	if len(doc.Facts) > 0 {
		pdf.SetFillColor(headerColor, 0xE6, 0xF1)
		for _, fact := range doc.Facts {
			pdf.SetFont("Arial", "B", 10)
			pdf.CellFormat(pageWidth/2, 7, tr(fact.Label), "1", 0, "L", true, 0, "")
			pdf.SetFont("Arial", "", 10)
			pdf.CellFormat(pageWidth/2, 7, tr(fact.Value), "1", 1, "R", false, 0, "")
		}
		pdf.Ln(6)
	}

	for _, section := range doc.Sections {
		if len(section.Data.Headers) == 0 {
			continue
		}
		if section.Title != "" {
			pdf.SetFont("Arial", "B", 12)
			pdf.CellFormat(0, 8, tr(section.Title), "", 1, "L", false, 0, "")
		}

		colWidth := pageWidth / float64(len(section.Data.Headers))
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(headerColor, 0xE6, 0xF1)
		for _, header := range section.Data.Headers {
			pdf.CellFormat(colWidth, 8, tr(header), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 9)
		for _, row := range section.Data.Rows {
			for i := range section.Data.Headers {
				value := ""
				if i < len(row) {
					value = row[i]
				}
				pdf.CellFormat(colWidth, 7, tr(value), "1", 0, "", false, 0, "")
			}
			pdf.Ln(-1)
		}
		pdf.Ln(6)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
