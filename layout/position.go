package layout

import (
	"math"

	"github.com/rivo/uniseg"
)

// PositionOptions 控制行内定位。
type PositionOptions struct {
	Align       HAlign
	CanvasWidth float64
	RowHeight   float64
	RTL         bool
	Windows     map[int]Window // 需要逐字动画的单词 -> 时间窗口
}

// Position 把折行结果转换为绝对坐标：同一行按最大基线对齐，RTL 行从右向左排列。
// 之后跨行按 WordID 汇总，计算单词动画支点、动画窗口与字内偏移。该步骤不再测量文本。
func Position(rows []Row, opts PositionOptions) [][]PositionedSyllable {
	out := make([][]PositionedSyllable, 0, len(rows))
	lineChar := 0
	for ri, row := range rows {
		maxBaseline := 0.0
		for _, c := range row.Cells {
			maxBaseline = math.Max(maxBaseline, c.Baseline)
		}
		top := float64(ri) * opts.RowHeight

		x := alignOffset(opts.CanvasWidth, row.TotalWidth, opts.Align)
		if opts.RTL {
			x += row.TotalWidth
		}
		placed := make([]PositionedSyllable, len(row.Cells))
		for ci, c := range row.Cells {
			if opts.RTL {
				x -= c.Width
			}
			n := uniseg.GraphemeClusterCount(c.Syllable.Content)
			placed[ci] = PositionedSyllable{
				Syllable:       c.Syllable,
				SourceIndex:    c.SourceIndex,
				WordID:         c.WordID,
				Width:          c.Width,
				Height:         c.Height,
				Position:       Point{X: x, Y: top + maxBaseline - c.Baseline},
				Baseline:       top + maxBaseline,
				CharCount:      n,
				LineCharOffset: lineChar,
			}
			lineChar += n
			if !opts.RTL {
				x += c.Width
			}
		}
		out = append(out, placed)
	}
	annotateWords(out, opts.Windows)
	return out
}

type wordExtent struct {
	minX, maxX, maxY float64
	chars            int
}

func annotateWords(rows [][]PositionedSyllable, windows map[int]Window) {
	extents := map[int]*wordExtent{}
	for _, row := range rows {
		for _, ps := range row {
			e, ok := extents[ps.WordID]
			if !ok {
				e = &wordExtent{minX: math.Inf(1), maxX: math.Inf(-1), maxY: math.Inf(-1)}
				extents[ps.WordID] = e
			}
			e.minX = math.Min(e.minX, ps.Position.X)
			e.maxX = math.Max(e.maxX, ps.Position.X+ps.Width)
			e.maxY = math.Max(e.maxY, ps.Position.Y+ps.Height)
			e.chars += ps.CharCount
		}
	}

	offsets := map[int]int{}
	for ri := range rows {
		for ci := range rows[ri] {
			ps := &rows[ri][ci]
			e := extents[ps.WordID]
			ps.WordPivot = Point{X: (e.minX + e.maxX) / 2, Y: e.maxY}
			ps.WordCharCount = e.chars
			ps.CharOffsetInWord = offsets[ps.WordID]
			offsets[ps.WordID] += ps.CharCount
			if w, ok := windows[ps.WordID]; ok {
				win := w
				ps.WordAnimWindow = &win
			}
		}
	}
}

func alignOffset(container, width float64, align HAlign) float64 {
	if container <= width {
		return 0
	}
	switch align {
	case AlignCenter:
		return (container - width) / 2
	case AlignRight:
		return container - width
	default:
		return 0
	}
}
