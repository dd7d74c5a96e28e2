// Package keepsake renders a printable parchment-style PDF of a journey:
// each chapter is a stop on a winding path, followed by the riddles that
// were solved and the closing note.
package keepsake

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"journey/internal/catalog"
	"journey/internal/journey"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageW     = 595
	pageH     = 842
	margin    = 40
	stopSize  = 44.0
	pathStep  = 110.0
	perRow    = 4
	fontSize  = 9
	titleSize = 18
	labelSize = 7

	firstRowY = margin + 120
	nextRowY  = margin + 70
	// bottomY is the lowest point content may reach; the footer sits below.
	bottomY = pageH - margin - 40
	textW   = pageW - 2*margin - 40
)

// Generate returns PDF bytes for the keepsake. Locked chapters appear as
// sealed stops and their riddles are left out. Long journeys continue on
// further pages.
func Generate(cat *catalog.Catalog, st journey.State, closing string, date time.Time) ([]byte, error) {
	pdf, err := render(cat, st, closing, date)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func render(cat *catalog.Catalog, st journey.State, closing string, date time.Time) (*gofpdf.Fpdf, error) {
	if cat == nil || cat.Count() == 0 {
		return nil, errors.New("keepsake: catalog has no chapters")
	}
	if strings.TrimSpace(closing) == "" {
		closing = cat.Closing()
	}

	pdf := gofpdf.New("P", "pt", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, 0)
	footer := "Preserved on " + date.Format("January 2, 2006")
	newPage(pdf, footer)

	title := cat.Title()
	if title == "" {
		title = "Our Journey"
	}
	pdf.SetFont("Helvetica", "B", titleSize)
	pdf.SetXY(margin, margin+14)
	pdf.CellFormat(pageW-2*margin-70, 20, tr(title), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "I", fontSize)
	pdf.SetXY(margin, margin+36)
	pdf.CellFormat(pageW-2*margin-70, 12, "A keepsake of every riddle along the way", "", 0, "L", false, 0, "")
	drawCompassRose(pdf, pageW-margin-45, margin+45)

	stops := layout(cat.Count())
	for from := 0; from < len(stops); {
		to := from
		for to < len(stops) && stops[to].page == stops[from].page {
			to++
		}
		if stops[from].page > 0 {
			newPage(pdf, footer)
		}
		drawPath(pdf, stops[from:to])
		for i := from; i < to; i++ {
			ch, _ := cat.Get(i)
			drawChapterStop(pdf, tr, st, ch, stops[i])
		}
		from = to
	}

	y := stops[len(stops)-1].y + stopSize/2 + 40
	pdf.SetTextColor(80, 50, 30)
	for i := 0; i < cat.Count(); i++ {
		if !unlocked(st, i) {
			continue
		}
		ch, _ := cat.Get(i)
		answered := solved(st, i, cat.Count())
		pdf.SetFont("Helvetica", "", fontSize)
		h := 14 + 12*float64(len(pdf.SplitLines([]byte(tr("Riddle: "+ch.Riddle)), textW))) + 8
		if answered {
			h += 12
		}
		if y+h > bottomY {
			newPage(pdf, footer)
			y = nextRowY - 30
		}
		pdf.SetXY(margin+20, y)
		pdf.SetFont("Helvetica", "B", fontSize+1)
		pdf.CellFormat(textW, 14, tr(ch.Title), "", 1, "L", false, 0, "")
		pdf.SetX(margin + 20)
		pdf.SetFont("Helvetica", "", fontSize)
		pdf.MultiCell(textW, 12, tr("Riddle: "+ch.Riddle), "", "L", false)
		if answered {
			pdf.SetX(margin + 20)
			pdf.SetFont("Helvetica", "I", fontSize)
			pdf.CellFormat(textW, 12, tr("Answer: "+ch.Passphrase), "", 1, "L", false, 0, "")
		}
		y = pdf.GetY() + 8
	}

	if closing != "" {
		pdf.SetFont("Helvetica", "I", fontSize+1)
		h := 6 + 14*float64(len(pdf.SplitLines([]byte(tr(closing)), textW)))
		if y+h > bottomY {
			newPage(pdf, footer)
			y = nextRowY - 30
		}
		pdf.SetXY(margin+20, y+6)
		pdf.MultiCell(textW, 14, tr(closing), "", "C", false)
	}
	return pdf, pdf.Error()
}

func newPage(pdf *gofpdf.Fpdf, footer string) {
	pdf.AddPage()
	drawParchment(pdf)
	pdf.SetFont("Helvetica", "", labelSize+1)
	pdf.SetXY(margin, pageH-margin-24)
	pdf.CellFormat(pageW-2*margin, 10, footer, "", 0, "C", false, 0, "")
}

// drawPath joins consecutive stops on one page with a dashed red line.
func drawPath(pdf *gofpdf.Fpdf, stops []stop) {
	pdf.SetDrawColor(180, 40, 40)
	pdf.SetLineWidth(2)
	pdf.SetDashPattern([]float64{10, 6}, 0)
	for i := 0; i < len(stops)-1; i++ {
		pdf.Line(stops[i].x, stops[i].y, stops[i+1].x, stops[i+1].y)
	}
	pdf.SetDashPattern([]float64{}, 0)
	pdf.SetLineWidth(1)
}

func drawChapterStop(pdf *gofpdf.Fpdf, tr func(string) string, st journey.State, ch catalog.Chapter, s stop) {
	open := unlocked(st, ch.Index)
	current := (st.Screen == journey.ScreenViewing || st.Screen == journey.ScreenAwaitingRiddle) && st.Chapter == ch.Index
	drawStop(pdf, s.x, s.y, ch.Index, open, current)

	label := "SEALED"
	if open {
		label = truncate(strings.ToUpper(ch.Title), 28)
	}
	pdf.SetFont("Helvetica", "B", labelSize)
	pdf.SetTextColor(40, 25, 15)
	pdf.SetXY(s.x-pathStep/2+4, s.y+stopSize/2+6)
	pdf.CellFormat(pathStep-8, 10, tr(label), "", 0, "C", false, 0, "")
	if current {
		pdf.SetFont("Helvetica", "I", labelSize)
		pdf.SetXY(s.x-stopSize/2, s.y+stopSize/2+16)
		pdf.CellFormat(stopSize, 8, "You are here", "", 0, "C", false, 0, "")
	}
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func unlocked(st journey.State, i int) bool {
	return i < len(st.Unlocked) && st.Unlocked[i]
}

// solved reports whether chapter i's passphrase has been accepted: the
// next chapter is open, or the last chapter led to the celebration.
func solved(st journey.State, i, n int) bool {
	if i == n-1 {
		return st.Screen == journey.ScreenCelebration
	}
	return unlocked(st, i+1)
}

type stop struct {
	page int
	x, y float64
}

// layout places stops on a snake path so the journey zig-zags across the
// page, starting a new page when a row would run into the footer.
func layout(n int) []stop {
	stops := make([]stop, n)
	x0 := float64(margin) + pathStep/2 + 10
	page, y := 0, float64(firstRowY)
	for i := range stops {
		row := i / perRow
		col := i % perRow
		if col == 0 && row > 0 {
			y += pathStep
			if y+stopSize/2+30 > bottomY {
				page++
				y = nextRowY
			}
		}
		if row%2 == 1 {
			col = perRow - 1 - col
		}
		stops[i] = stop{page: page, x: x0 + float64(col)*pathStep, y: y}
	}
	return stops
}

func drawParchment(pdf *gofpdf.Fpdf) {
	pdf.SetFillColor(245, 235, 210)
	pdf.Rect(0, 0, pageW, pageH, "F")
	pts := wavyRectPoints(margin/2, margin/2, pageW-margin, pageH-margin, 14, 4)
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(2)
	pdf.Polygon(pts, "D")
	pdf.SetLineWidth(1)
	pdf.SetDrawColor(80, 50, 30)
	pdf.SetTextColor(80, 50, 30)
}

// wavyRectPoints returns polygon points for a rectangle with sinusoidal wobble on each side.
func wavyRectPoints(x, y, w, h float64, steps int, amp float64) []gofpdf.PointType {
	pts := make([]gofpdf.PointType, 0, steps*4+4)
	// Top edge (left to right)
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		pts = append(pts, gofpdf.PointType{
			X: x + t*w + amp*math.Sin(float64(i)*0.7),
			Y: y + amp*math.Cos(float64(i)*0.5),
		})
	}
	// Right edge (top to bottom)
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		pts = append(pts, gofpdf.PointType{
			X: x + w + amp*math.Sin(float64(i)*0.6),
			Y: y + t*h + amp*math.Cos(float64(i)*0.4),
		})
	}
	// Bottom edge (right to left)
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		pts = append(pts, gofpdf.PointType{
			X: x + w - t*w + amp*math.Sin(float64(i)*0.8),
			Y: y + h + amp*math.Cos(float64(i)*0.3),
		})
	}
	// Left edge (bottom to top), ending at (x,y) so polygon closes
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		pts = append(pts, gofpdf.PointType{
			X: x + amp*math.Sin(float64(i)*0.5),
			Y: y + h - t*h + amp*math.Cos(float64(i)*0.6),
		})
	}
	return pts
}

func drawCompassRose(pdf *gofpdf.Fpdf, cx, cy float64) {
	const rad = 20.0
	pdf.SetDrawColor(101, 67, 33)
	pdf.Circle(cx, cy, rad, "D")
	for i := 0; i < 8; i++ {
		angle := float64(i)*45.0*math.Pi/180 - math.Pi/2
		if i%2 == 0 {
			pdf.SetDrawColor(180, 40, 40)
			pdf.SetLineWidth(1.5)
		} else {
			pdf.SetDrawColor(180, 140, 60)
			pdf.SetLineWidth(1)
		}
		pdf.Line(cx, cy, cx+rad*math.Cos(angle), cy+rad*math.Sin(angle))
	}
	pdf.SetLineWidth(1)
	pdf.SetDrawColor(80, 50, 30)
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetXY(cx-4, cy-rad-13)
	pdf.CellFormat(8, 6, "N", "", 0, "C", false, 0, "")
}

// drawStop draws a numbered seal: filled gold when unlocked, a crossed
// grey seal when locked.
func drawStop(pdf *gofpdf.Fpdf, x, y float64, i int, open, current bool) {
	r := stopSize / 2
	if current {
		pdf.SetDrawColor(80, 50, 20)
		pdf.SetLineWidth(2)
		pdf.Circle(x, y, r+5, "D")
	}
	pdf.SetLineWidth(1.2)
	pdf.SetDrawColor(0, 0, 0)
	if open {
		pdf.SetFillColor(222, 184, 96)
	} else {
		pdf.SetFillColor(190, 180, 165)
	}
	pdf.Circle(x, y, r, "FD")
	if !open {
		pdf.Line(x-r*0.5, y-r*0.5, x+r*0.5, y+r*0.5)
		pdf.Line(x-r*0.5, y+r*0.5, x+r*0.5, y-r*0.5)
	} else {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetTextColor(60, 35, 15)
		pdf.SetXY(x-r, y-7)
		pdf.CellFormat(stopSize, 14, roman(i+1), "", 0, "C", false, 0, "")
	}
	pdf.SetLineWidth(1)
	pdf.SetDrawColor(80, 50, 30)
}

func roman(n int) string {
	if n <= 0 || n >= 4000 {
		return fmt.Sprint(n)
	}
	vals := []int{1000, 900, 500, 400, 100, 90, 50, 40, 10, 9, 5, 4, 1}
	syms := []string{"M", "CM", "D", "CD", "C", "XC", "L", "XL", "X", "IX", "V", "IV", "I"}
	var b strings.Builder
	for i, v := range vals {
		for n >= v {
			b.WriteString(syms[i])
			n -= v
		}
	}
	return b.String()
}
