// Package export renders a board snapshot to PDF.
package export

import (
	"errors"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/ayusman/airsketch/internal/canvas"
)

// Background is the page color behind the strokes; it matches the board.
const Background canvas.Color = "#0f172a"

// pxToPt converts surface pixels to PDF points at 96 dpi.
const pxToPt = 72.0 / 96.0

// ErrEmptySurface is returned when the surface has no area.
var ErrEmptySurface = errors.New("surface has no area")

// Page describes the drawing surface being exported.
type Page struct {
	Width  float64
	Height float64
	Title  string
}

// build lays out one page the size of the surface with every stroke drawn
// in its own color, in creation order.
func build(page Page, strokes []canvas.Stroke) (*gofpdf.Fpdf, error) {
	if page.Width <= 0 || page.Height <= 0 {
		return nil, ErrEmptySurface
	}

	w, h := page.Width*pxToPt, page.Height*pxToPt
	orientation := "P"
	if w > h {
		orientation = "L"
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: orientation,
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: w, Ht: h},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	if page.Title != "" {
		pdf.SetTitle(page.Title, true)
	}
	pdf.SetCreator("airsketch", true)
	pdf.AddPage()

	r, g, b := Background.RGB()
	pdf.SetFillColor(r, g, b)
	pdf.Rect(0, 0, w, h, "F")

	pdf.SetLineCapStyle("round")
	pdf.SetLineJoinStyle("round")
	pdf.SetLineWidth(canvas.LineWidth * pxToPt)

	for _, st := range strokes {
		if len(st.Points) == 0 {
			continue
		}
		r, g, b := st.Color.RGB()
		pdf.SetDrawColor(r, g, b)
		pdf.SetFillColor(r, g, b)

		if len(st.Points) == 1 {
			p := st.Points[0]
			pdf.Circle(p.X*pxToPt, p.Y*pxToPt, canvas.LineWidth/2*pxToPt, "F")
			continue
		}
		for i := 1; i < len(st.Points); i++ {
			from, to := st.Points[i-1], st.Points[i]
			pdf.Line(from.X*pxToPt, from.Y*pxToPt, to.X*pxToPt, to.Y*pxToPt)
		}
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return pdf, nil
}

// WritePDF renders strokes onto a page and writes the document to w.
func WritePDF(w io.Writer, page Page, strokes []canvas.Stroke) error {
	pdf, err := build(page, strokes)
	if err != nil {
		return err
	}
	return pdf.Output(w)
}

// WriteFile renders strokes onto a page and saves the document at path.
func WriteFile(path string, page Page, strokes []canvas.Stroke) error {
	pdf, err := build(page, strokes)
	if err != nil {
		return err
	}
	return pdf.OutputFileAndClose(path)
}
