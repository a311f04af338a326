package report

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

const (
	pdfMargin    = 10.0
	pdfRowHeight = 4.2
)

// Renderer draws a Document into a file body.
type Renderer interface {
	Render(doc Document) ([]byte, error)
	ContentType() string
	Extension() string
}

type PDFRenderer struct {
	// FontFamily is one of the core PDF fonts; defaults to Helvetica.
	FontFamily string
}

func (PDFRenderer) ContentType() string { return "application/pdf" }
func (PDFRenderer) Extension() string   { return "pdf" }

func (r PDFRenderer) Render(doc Document) ([]byte, error) {
	family := r.FontFamily
	if family == "" {
		family = "Helvetica"
	}

	pdf := fpdf.New(string(doc.Orientation), "mm", doc.PageSize, "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("water-chiller-check", true)
	pdf.AddPage()
	// core fonts are cp1252; convert the °C in column titles
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 2*pdfMargin

	pdf.SetFont(family, "B", 14)
	pdf.CellFormat(contentW, 8, tr(doc.Title), "", 1, "C", false, 0, "")
	pdf.Ln(1)

	// metadata: two label/value pairs per line
	pdf.SetFont(family, "", 9)
	for i, f := range doc.Meta {
		pdf.SetFont(family, "B", 9)
		pdf.CellFormat(25, 5, tr(f.Label+":"), "", 0, "L", false, 0, "")
		pdf.SetFont(family, "", 9)
		ln := 0
		if i%2 == 1 || i == len(doc.Meta)-1 {
			ln = 1
		}
		pdf.CellFormat(contentW/2-25, 5, tr(f.Value), "", ln, "L", false, 0, "")
	}
	pdf.Ln(2)

	pdf.SetFont(family, "B", 6.5)
	pdf.SetFillColor(230, 243, 255)
	for _, c := range doc.Columns {
		pdf.CellFormat(c.Width, 7, tr(c.Title), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(family, "", 7)
	for _, row := range doc.Rows {
		for i, c := range doc.Columns {
			v := ""
			if i < len(row) {
				v = row[i]
			}
			pdf.CellFormat(c.Width, pdfRowHeight, tr(v), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if doc.Notes != "" {
		pdf.Ln(2)
		pdf.SetFont(family, "B", 8)
		pdf.CellFormat(15, 4, tr("Notes:"), "", 0, "L", false, 0, "")
		pdf.SetFont(family, "", 8)
		pdf.MultiCell(contentW-15, 4, tr(doc.Notes), "", "L", false)
	}

	pdf.Ln(3)
	const sigW = 60.0
	pdf.SetFont(family, "B", 8)
	for _, s := range doc.Signatures {
		pdf.CellFormat(sigW, 5, tr(s.Label), "LTR", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	for range doc.Signatures {
		pdf.CellFormat(sigW, 8, "", "LR", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont(family, "", 8)
	for _, s := range doc.Signatures {
		pdf.CellFormat(sigW, 5, tr(s.Value), "LBR", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
