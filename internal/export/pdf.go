// Package export writes a rendered scene to a PDF page.
package export

import (
	"fmt"
	"image/color"
	"io"
	"log"
	"strconv"

	"GoBoardOverlay/internal/colors"
	"GoBoardOverlay/internal/render"
	"GoBoardOverlay/internal/state"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageWidth  = 297.0
	pageHeight = 210.0
	mmPerPoint = 25.4 / 72
)

var (
	black = color.NRGBA{A: 0xff}
	white = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	wood  = color.NRGBA{R: 0xdc, G: 0xb3, B: 0x5c, A: 0xff}
)

// page maps canvas pixels onto a landscape A4 page, letterboxed.
type page struct {
	scale, offX, offY float64
}

func newPage(width, height float64) page {
	scale := min(pageWidth/width, pageHeight/height)
	return page{
		scale: scale,
		offX:  (pageWidth - width*scale) / 2,
		offY:  (pageHeight - height*scale) / 2,
	}
}

func (p page) at(x, y float64) (float64, float64) {
	return p.offX + x*p.scale, p.offY + y*p.scale
}

func (p page) mm(v float64) float64 { return v * p.scale }

// PDF writes sc to path.
func PDF(path string, sc render.Scene) error {
	pdf := draw(sc)
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write PDF %s: %w", path, err)
	}
	log.Printf("[EXPORT] Wrote %s", path)
	return nil
}

// Write renders sc as a PDF into w.
func Write(w io.Writer, sc render.Scene) error {
	pdf := draw(sc)
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render PDF: %w", err)
	}
	return nil
}

func setFill(pdf *gofpdf.Fpdf, c color.NRGBA) { pdf.SetFillColor(int(c.R), int(c.G), int(c.B)) }
func setDraw(pdf *gofpdf.Fpdf, c color.NRGBA) { pdf.SetDrawColor(int(c.R), int(c.G), int(c.B)) }
func setText(pdf *gofpdf.Fpdf, c color.NRGBA) { pdf.SetTextColor(int(c.R), int(c.G), int(c.B)) }

func text(pdf *gofpdf.Fpdf, p page, x, y, size float64, s string, align render.Align, c color.NRGBA) {
	pts := p.mm(size) / mmPerPoint
	pdf.SetFont("Helvetica", "", pts)
	setText(pdf, c)
	px, py := p.at(x, y)
	w := pdf.GetStringWidth(s)
	if align == render.AlignRight {
		px -= w
	} else {
		px -= w / 2
	}
	pdf.Text(px, py+p.mm(size)/3, s)
}

func draw(sc render.Scene) *gofpdf.Fpdf {
	p := newPage(sc.Width, sc.Height)
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Go board annotations", true)
	pdf.AddPage()

	for _, d := range sc.Dots {
		x, y := p.at(d.X-d.Size/2, d.Y-d.Size/2)
		setFill(pdf, black)
		pdf.Rect(x, y, p.mm(d.Size), p.mm(d.Size), "F")
	}
	for _, l := range sc.Labels {
		text(pdf, p, l.X, l.Y, l.Size, l.Text, l.Align, colors.Parse(l.Color, black))
	}

	for _, s := range sc.BoardStones {
		stone(pdf, p, s)
	}
	for _, s := range sc.Stones {
		stone(pdf, p, s)
	}
	for _, m := range sc.Markers {
		marker(pdf, p, m)
	}

	for _, m := range sc.Marks {
		mark(pdf, p, m)
	}

	for _, st := range sc.Strokes {
		setDraw(pdf, colors.Parse(st.Color, black))
		pdf.SetLineWidth(p.mm(st.Width))
		pdf.SetLineCapStyle("round")
		for i := 1; i < len(st.Points); i++ {
			x1, y1 := p.at(st.Points[i-1].X, st.Points[i-1].Y)
			x2, y2 := p.at(st.Points[i].X, st.Points[i].Y)
			pdf.Line(x1, y1, x2, y2)
		}
	}
	return pdf
}

func stone(pdf *gofpdf.Fpdf, p page, s render.Stone) {
	fill := black
	switch s.Color {
	case state.White:
		fill = white
	case state.BoardColor:
		fill = wood
	}
	x, y := p.at(s.X, s.Y)
	if s.Alpha > 0 && s.Alpha < 1 {
		pdf.SetAlpha(s.Alpha, "Normal")
		defer pdf.SetAlpha(1, "Normal")
	}
	setFill(pdf, fill)
	setDraw(pdf, black)
	pdf.SetLineWidth(0.1)
	style := "FD"
	if s.Color == state.BoardColor {
		style = "F"
	}
	pdf.Circle(x, y, p.mm(s.Diameter/2), style)
}

func marker(pdf *gofpdf.Fpdf, p page, m render.Marker) {
	c := colors.Parse(m.Color, black)
	if m.Style == state.MarkerTriangle {
		pts := make([]gofpdf.PointType, 0, 3)
		for _, v := range m.Triangle {
			x, y := p.at(v.X, v.Y)
			pts = append(pts, gofpdf.PointType{X: x, Y: y})
		}
		setFill(pdf, c)
		pdf.Polygon(pts, "F")
		return
	}
	text(pdf, p, m.X, m.Y, m.Size, strconv.Itoa(m.Number), render.AlignCenter, c)
}

func mark(pdf *gofpdf.Fpdf, p page, m render.Mark) {
	c := colors.Parse(m.Color, black)
	setDraw(pdf, c)
	pdf.SetLineWidth(p.mm(3))
	x, y := p.at(m.X, m.Y)
	r := p.mm(m.Size / 2)

	switch m.Type {
	case state.Circle:
		pdf.Circle(x, y, r, "D")
	case state.Square:
		pdf.Rect(x-r, y-r, 2*r, 2*r, "D")
	case state.Triangle:
		pdf.Polygon([]gofpdf.PointType{
			{X: x, Y: y - r},
			{X: x - r, Y: y + r*0.8},
			{X: x + r, Y: y + r*0.8},
		}, "D")
	case state.Letter:
		text(pdf, p, m.X, m.Y, m.Size, m.Text, render.AlignCenter, c)
	}
}
