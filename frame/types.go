package frame

import (
	"github.com/lchau1017/KaraokeLyrics-sub001/anim"
	"github.com/lchau1017/KaraokeLyrics-sub001/gradient"
	"github.com/lchau1017/KaraokeLyrics-sub001/layout"
	"github.com/lchau1017/KaraokeLyrics-sub001/timing"
	"github.com/lchau1017/KaraokeLyrics-sub001/visual"
)

// Frame is everything a renderer needs to draw one tick.
type Frame struct {
	Generation   uint64      `json:"generation"`
	SongID       string      `json:"songId"`
	NowMs        int64       `json:"nowMs"`
	AdjustedMs   int64       `json:"adjustedMs"`
	Width        float64     `json:"width"`
	ScrollTarget int         `json:"scrollTarget"`
	ScrollY      float64     `json:"scrollY"`
	Lines        []LineFrame `json:"lines"`
}

// LineFrame is one visible line. Top is the line's y offset from the top of the song.
type LineFrame struct {
	Index  int            `json:"index"`
	Timing timing.Context `json:"timing"`
	Visual visual.Props   `json:"visual"`
	Top    float64        `json:"top"`
	Layout *layout.Layout `json:"layout"`
	Rows   []RowFrame     `json:"rows"`
}

type RowFrame struct {
	Gradient  gradient.Spec   `json:"gradient"`
	Syllables []SyllableFrame `json:"syllables"`
}

// SyllableFrame carries the dynamic state of a positioned syllable. CharProgress holds
// one entry per grapheme cluster; Chars is set only for words animated per character.
type SyllableFrame struct {
	Content      string        `json:"content"`
	SourceIndex  int           `json:"sourceIndex"`
	Progress     float64       `json:"progress"`
	CharProgress []float64     `json:"charProgress"`
	Lift         anim.Effect   `json:"lift"`
	Chars        []anim.Effect `json:"chars,omitempty"`
}

// State returns the timing state of line index, or false if it is not visible.
func (f *Frame) State(index int) (timing.State, bool) {
	for _, l := range f.Lines {
		if l.Index == index {
			return l.Timing.State, true
		}
	}
	return timing.Upcoming, false
}
