package layout

import (
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"github.com/lchau1017/KaraokeLyrics-sub001/lyrics"
	"github.com/lchau1017/KaraokeLyrics-sub001/script"
)

// Build 依次执行分词、折行与定位，生成一行歌词的静态布局。
// 同样的输入总是得到相同的结果，可按 (行, 样式, 宽度, 配置) 缓存。
func Build(line lyrics.Line, opts BuildOptions) (*Layout, error) {
	if opts.Measurer == nil {
		return nil, ErrNoMeasurer
	}

	rtl := script.IsRTL(line.Text())
	align := ResolveAlign(line.Alignment, rtl)
	words := Segment(line.Syllables)

	style := opts.Style
	rows := Wrap(words, opts.MaxWidth, func(text string) Metrics {
		return opts.Measurer.Measure(text, style)
	})

	rowHeight := opts.RowHeight
	if rowHeight <= 0 {
		rowHeight = inferRowHeight(rows, style)
	}
	canvasWidth := opts.CanvasWidth
	if canvasWidth <= 0 {
		canvasWidth = opts.MaxWidth
	}

	positioned := Position(rows, PositionOptions{
		Align:       align,
		CanvasWidth: canvasWidth,
		RowHeight:   rowHeight,
		RTL:         rtl,
		Windows:     CharAnimWindows(line, words, opts.CharAnim),
	})

	res := &Layout{
		Rows:      positioned,
		RowWidths: make([]float64, len(rows)),
		Height:    rowHeight * float64(len(rows)),
		RowHeight: rowHeight,
		RTL:       rtl,
		Align:     align,
	}
	for i, r := range rows {
		res.RowWidths[i] = r.TotalWidth
		res.Width = max(res.Width, r.TotalWidth)
	}
	return res, nil
}

// CharAnimWindows 选出需要逐字动画的单词：伴唱行与纯标点/空白单词除外，
// 且单词时长与字素数之比必须超过阈值（唱得越“拖”越需要强调）。
func CharAnimWindows(line lyrics.Line, words []Word, opts CharAnimOptions) map[int]Window {
	if !opts.Enabled || line.IsAccompaniment {
		return nil
	}
	windows := map[int]Window{}
	for _, w := range words {
		text := strings.TrimSpace(w.Text())
		if text == "" || script.IsPunctuation(text) {
			continue
		}
		n := uniseg.GraphemeClusterCount(text)
		if n == 0 {
			continue
		}
		win := Window{StartMs: w.StartMs(), EndMs: w.EndMs()}
		if float64(win.EndMs-win.StartMs)/float64(n) > opts.ThresholdMsPerChar {
			windows[w.ID] = win
		}
	}
	return windows
}

func inferRowHeight(rows []Row, style TextStyle) float64 {
	tallest := 0.0
	for _, r := range rows {
		for _, c := range r.Cells {
			tallest = max(tallest, c.Height)
		}
	}
	if tallest <= 0 {
		tallest = style.Size
	}
	if tallest <= 0 {
		tallest = 16
	}
	return tallest * DefaultRowHeightFactor
}

// EstimateMetrics 在没有可用字体时给出粗略度量，保证布局仍可继续。
func EstimateMetrics(content string, style TextStyle) Metrics {
	size := style.Size
	if size <= 0 {
		size = 16
	}
	return Metrics{
		Width:         size * 0.55 * float64(utf8.RuneCountInString(content)),
		Height:        size * 1.2,
		FirstBaseline: size * 0.95,
	}
}
