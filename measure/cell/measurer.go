// Package cellmeasure measures text in terminal cells, counting East Asian wide
// characters as two cells. It needs no fonts, which makes it the deterministic choice
// for tests and terminal front ends.
package cellmeasure

import (
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/lchau1017/KaraokeLyrics-sub001/layout"
)

type Measurer struct {
	CellWidth  float64
	CellHeight float64
	cond       *runewidth.Condition
}

var _ layout.Measurer = (*Measurer)(nil)

// New returns a measurer with the given cell size in pixels; non-positive sizes become 1.
func New(cellWidth, cellHeight float64) *Measurer {
	if cellWidth <= 0 {
		cellWidth = 1
	}
	if cellHeight <= 0 {
		cellHeight = 1
	}
	cond := runewidth.NewCondition()
	cond.EastAsianWidth = false
	return &Measurer{CellWidth: cellWidth, CellHeight: cellHeight, cond: cond}
}

// Measure ignores the style: every glyph occupies whole cells.
func (m *Measurer) Measure(text string, _ layout.TextStyle) layout.Metrics {
	out := layout.Metrics{
		Height:        m.CellHeight,
		FirstBaseline: m.CellHeight * 0.8,
	}
	cells := 0
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		cells += m.cond.StringWidth(g.Str())
		out.CharBounds = append(out.CharBounds, float64(cells)*m.CellWidth)
	}
	out.Width = float64(cells) * m.CellWidth
	return out
}
