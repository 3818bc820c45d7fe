package export

import (
	"bytes"

	"github.com/go-pdf/fpdf"
)

const (
	pdfRowHeight = 7.0
	pdfFontSize  = 8.0
)

func renderPDF(table Table) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 10)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	header, body := records(table)

	pageW, pageH := pdf.GetPageSize()
	left, top, right, bottom := pdf.GetMargins()
	colW := 0.0
	if len(header) > 0 {
		colW = (pageW - left - right) / float64(len(header))
	}

	drawHeader := func() {
		pdf.SetFont("Helvetica", "B", pdfFontSize)
		pdf.SetFillColor(239, 68, 68)
		pdf.SetTextColor(255, 255, 255)
		for _, h := range header {
			pdf.CellFormat(colW, pdfRowHeight, tr(h), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", pdfFontSize)
		pdf.SetTextColor(0, 0, 0)
	}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, tr(table.Title), "", 1, "L", false, 0, "")
	pdf.SetY(top + 12)
	drawHeader()

	for i, line := range body {
		if pdf.GetY()+pdfRowHeight > pageH-bottom {
			pdf.AddPage()
			drawHeader()
		}
		fill := i%2 == 1
		pdf.SetFillColor(245, 245, 245)
		for _, cell := range line {
			pdf.CellFormat(colW, pdfRowHeight, tr(cell), "1", 0, "L", fill, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
