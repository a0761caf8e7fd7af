package layout

import (
	"math"
	"strings"
)

const (
	ptToMM = 0.3528
	// Average Helvetica glyph width as a fraction of the font size.
	avgGlyphWidth = 0.5
	lineSpacing   = 1.25
	cellPadding   = 1.5
)

// Geometry describes the printable page.
type Geometry struct {
	PageWidth    float64
	PageHeight   float64
	Margin       float64
	FooterHeight float64
	// Slack absorbs rounding differences between the estimate and the painter.
	Slack float64
}

// A4 is the default geometry with 10mm margins.
func A4() Geometry {
	return Geometry{
		PageWidth:    210,
		PageHeight:   297,
		Margin:       10,
		FooterHeight: 6,
		Slack:        2,
	}
}

// ContentWidth is the printable width.
func (g Geometry) ContentWidth() float64 {
	return g.PageWidth - 2*g.Margin
}

// BodyHeight is the height available to document rows on each page.
func (g Geometry) BodyHeight() float64 {
	return g.PageHeight - 2*g.Margin - g.FooterHeight - g.Slack
}

func (g Geometry) columnWidth(span int) float64 {
	return g.ContentWidth() * float64(span) / GridColumns
}

// lineHeight is the vertical advance of one line of text in mm.
func lineHeight(size float64) float64 {
	return size * ptToMM * lineSpacing
}

// wrapLines estimates how many lines a text needs inside a column of the
// given width, breaking on spaces.
func wrapLines(value string, size, width float64) int {
	usable := width - 2*cellPadding
	if usable <= 0 {
		return 1
	}
	perLine := int(math.Floor(usable / (size * ptToMM * avgGlyphWidth)))
	if perLine < 1 {
		perLine = 1
	}

	lines := 0
	for _, para := range strings.Split(value, "\n") {
		lines++
		col := 0
		for _, word := range strings.Fields(para) {
			w := len([]rune(word))
			switch {
			case col == 0:
				col = w
			case col+1+w <= perLine:
				col += 1 + w
			default:
				lines++
				col = w
			}
			for col > perLine {
				lines++
				col -= perLine
			}
		}
	}
	return lines
}

// textHeight is the height a text occupies in a column.
func textHeight(t Text, width float64) float64 {
	return float64(wrapLines(t.Value, t.Size, width)) * lineHeight(t.Size)
}

// fitRow grows a row so every cell's stacked texts fit.
func fitRow(g Geometry, r Row, min float64) Row {
	h := min
	for _, c := range r.Cells {
		w := g.columnWidth(c.Span)
		for _, t := range c.Texts {
			bottom := t.Top + textHeight(t, w) + cellPadding
			if bottom > h {
				h = bottom
			}
		}
	}
	r.Height = math.Ceil(h*10) / 10
	return r
}

// stack places texts one under another starting at top, returning them with
// their Top set. Widths are needed to account for wrapping.
func stack(g Geometry, span int, top float64, texts ...Text) []Text {
	w := g.columnWidth(span)
	out := make([]Text, 0, len(texts))
	cursor := top
	for _, t := range texts {
		if t.Value == "" {
			continue
		}
		t.Top = cursor
		cursor += textHeight(t, w)
		out = append(out, t)
	}
	return out
}
