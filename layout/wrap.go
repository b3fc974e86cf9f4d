package layout

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lchau1017/KaraokeLyrics-sub001/lyrics"
)

// Wrap 使用贪心算法把单词装入不超过 maxWidth 的行。
// 单词整体无法放入空行时退化为按音节拆分；maxWidth <= 0 时每个单词独占一行。
func Wrap(words []Word, maxWidth float64, measure MetricsFunc) []Row {
	if len(words) == 0 {
		return nil
	}
	m := newRowMeasurer(measure)

	var rows []Row
	var cur Row
	emit := func() {
		if len(cur.Cells) == 0 {
			return
		}
		if row, ok := m.closeRow(cur); ok {
			rows = append(rows, row)
		}
		cur = Row{}
	}
	push := func(c Cell) {
		cur.Cells = append(cur.Cells, c)
		cur.TotalWidth += c.Width
	}

	for _, w := range words {
		cells := m.cells(w)
		width := 0.0
		for _, c := range cells {
			width += c.Width
		}

		if maxWidth <= 0 {
			emit()
			for _, c := range cells {
				push(c)
			}
			emit()
			continue
		}

		if len(cur.Cells) > 0 && cur.TotalWidth+width > maxWidth {
			emit()
		}
		if len(cur.Cells) == 0 && width > maxWidth {
			// 超长单词：在音节粒度上使用同样的阈值拆分
			for _, c := range cells {
				if len(cur.Cells) > 0 && cur.TotalWidth+c.Width > maxWidth {
					emit()
				}
				push(c)
			}
			continue
		}
		for _, c := range cells {
			push(c)
		}
	}
	emit()
	return rows
}

// rowMeasurer 在一次 Wrap 调用内缓存测量结果，不跨调用保留状态。
type rowMeasurer struct {
	measure    MetricsFunc
	cache      map[string]Metrics
	spaceWidth float64
	space      Metrics
}

func newRowMeasurer(measure MetricsFunc) *rowMeasurer {
	m := &rowMeasurer{measure: measure, cache: map[string]Metrics{}}
	m.space = m.metrics(" ")
	m.spaceWidth = m.space.Width
	if m.spaceWidth <= 0 {
		// 部分排版后端会折叠单独空格的宽度
		m.spaceWidth = max(m.metrics("x x").Width-m.metrics("xx").Width, 0)
	}
	return m
}

func (m *rowMeasurer) metrics(text string) Metrics {
	if v, ok := m.cache[text]; ok {
		return v
	}
	v := m.measure(text)
	if v.Width < 0 || v.Width != v.Width {
		v.Width = 0
	}
	m.cache[text] = v
	return v
}

// cellFor 测量音节：去掉尾部空白后测量，再按空格宽度补回尾部空白。
func (m *rowMeasurer) cellFor(content string, keepTrailing bool) (width, height, baseline float64) {
	trimmed := strings.TrimRightFunc(content, unicode.IsSpace)
	trailing := utf8.RuneCountInString(content) - utf8.RuneCountInString(trimmed)
	mt := m.space
	if trimmed != "" {
		mt = m.metrics(trimmed)
		width = mt.Width
	}
	if keepTrailing {
		width += m.spaceWidth * float64(trailing)
	}
	return width, mt.Height, mt.FirstBaseline
}

func (m *rowMeasurer) cells(w Word) []Cell {
	cells := make([]Cell, len(w.Syllables))
	for i, s := range w.Syllables {
		width, height, baseline := m.cellFor(s.Content, true)
		cells[i] = Cell{
			Syllable:    s,
			SourceIndex: w.Sources[i],
			WordID:      w.ID,
			Width:       width,
			Height:      height,
			Baseline:    baseline,
		}
	}
	return cells
}

// closeRow 去掉行尾空白音节，并在不含尾部空格的情况下重新测量新的末尾音节。
func (m *rowMeasurer) closeRow(row Row) (Row, bool) {
	cells := row.Cells
	for len(cells) > 0 && strings.TrimSpace(cells[len(cells)-1].Syllable.Content) == "" {
		cells = cells[:len(cells)-1]
	}
	if len(cells) == 0 {
		return Row{}, false
	}
	out := make([]Cell, len(cells))
	copy(out, cells)
	last := &out[len(out)-1]
	last.Width, _, _ = m.cellFor(last.Syllable.Content, false)

	total := 0.0
	for _, c := range out {
		total += c.Width
	}
	return Row{Words: wordsOf(out), Cells: out, TotalWidth: total}, true
}

// wordsOf 按 WordID 将行内连续的音节重新归组；被拆到多行的单词在每行各保留一段。
func wordsOf(cells []Cell) []Word {
	var words []Word
	for _, c := range cells {
		if n := len(words); n > 0 && words[n-1].ID == c.WordID {
			words[n-1].Syllables = append(words[n-1].Syllables, c.Syllable)
			words[n-1].Sources = append(words[n-1].Sources, c.SourceIndex)
			continue
		}
		words = append(words, Word{ID: c.WordID, Syllables: []lyrics.Syllable{c.Syllable}, Sources: []int{c.SourceIndex}})
	}
	return words
}
