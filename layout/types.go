package layout

import (
	"strings"

	"github.com/lchau1017/KaraokeLyrics-sub001/lyrics"
)

// 该文件定义分词、折行与定位的中间结果及最终布局结果，供帧计算与调试 JSON 共用。

// Point 为画布坐标（像素，左上角为原点）。
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Window 是一个以毫秒表示的时间窗口。
type Window struct {
	StartMs int64 `json:"startMs"`
	EndMs   int64 `json:"endMs"`
}

// Duration 至少为 1ms。
func (w Window) Duration() int64 { return max(w.EndMs-w.StartMs, 1) }

// Word 是分词得到的一组连续音节，仅在布局过程中短暂存在。
// Sources[i] 记录 Syllables[i] 在原始行中的下标（被空格拆开的音节两部分共享同一下标）。
type Word struct {
	ID        int               `json:"id"`
	Syllables []lyrics.Syllable `json:"syllables"`
	Sources   []int             `json:"sources"`
}

// Text 拼接所有音节内容。
func (w Word) Text() string {
	var b strings.Builder
	for _, s := range w.Syllables {
		b.WriteString(s.Content)
	}
	return b.String()
}

func (w Word) StartMs() int64 {
	if len(w.Syllables) == 0 {
		return 0
	}
	return w.Syllables[0].StartMs
}

func (w Word) EndMs() int64 {
	if len(w.Syllables) == 0 {
		return 0
	}
	end := w.Syllables[0].EndMs
	for _, s := range w.Syllables[1:] {
		end = max(end, s.EndMs)
	}
	return end
}

// Cell 是折行结果中已测量的单个音节。
type Cell struct {
	Syllable    lyrics.Syllable `json:"syllable"`
	SourceIndex int             `json:"sourceIndex"`
	WordID      int             `json:"wordId"`
	Width       float64         `json:"width"`
	Height      float64         `json:"height"`
	Baseline    float64         `json:"baseline"`
}

// Row 表示折行后的一行，宽度为所有 Cell 宽度之和。
type Row struct {
	Words      []Word  `json:"words"`
	Cells      []Cell  `json:"cells"`
	TotalWidth float64 `json:"totalWidth"`
}

// PositionedSyllable 是定位完成、可直接交给渲染层的音节。
type PositionedSyllable struct {
	Syllable         lyrics.Syllable `json:"syllable"`
	SourceIndex      int             `json:"sourceIndex"`
	WordID           int             `json:"wordId"`
	Width            float64         `json:"width"`
	Height           float64         `json:"height"`
	Position         Point           `json:"position"`
	Baseline         float64         `json:"baseline"`
	WordPivot        Point           `json:"wordPivot"`
	CharOffsetInWord int             `json:"charOffsetInWord"`
	CharCount        int             `json:"charCount"`
	WordCharCount    int             `json:"wordCharCount"`
	LineCharOffset   int             `json:"lineCharOffset"`
	WordAnimWindow   *Window         `json:"wordAnimWindow,omitempty"`
}

// Layout 是一行歌词在给定宽度与样式下的完整静态布局，构建后不可修改。
type Layout struct {
	Rows      [][]PositionedSyllable `json:"rows"`
	RowWidths []float64              `json:"rowWidths"`
	Width     float64                `json:"width"`
	Height    float64                `json:"height"`
	RowHeight float64                `json:"rowHeight"`
	RTL       bool                   `json:"rtl"`
	Align     HAlign                 `json:"align"`
}

// HAlign 为解析 RTL 之后的物理水平对齐方式。
type HAlign int

const (
	AlignLeft HAlign = iota
	AlignCenter
	AlignRight
)

func (a HAlign) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "left"
	}
}

func (a HAlign) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// ResolveAlign 将作者指定的逻辑对齐（start/end）映射为物理对齐。
func ResolveAlign(a lyrics.Alignment, rtl bool) HAlign {
	switch a {
	case lyrics.AlignCenter:
		return AlignCenter
	case lyrics.AlignEnd:
		if rtl {
			return AlignLeft
		}
		return AlignRight
	default:
		if rtl {
			return AlignRight
		}
		return AlignLeft
	}
}
