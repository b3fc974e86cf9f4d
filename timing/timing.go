// Package timing classifies lyric lines against the playback clock.
//
// Nothing here is stored between ticks: every Context is recomputed from
// (line, currentTimeMs, Options), so callers can evaluate any line at any time.
package timing

import (
	"github.com/rivo/uniseg"

	"github.com/lchau1017/KaraokeLyrics-sub001/lyrics"
)

// State is the timing tier of a line at one instant.
type State int

const (
	Upcoming State = iota
	Active
	Recent
	Past
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Recent:
		return "recent"
	case Past:
		return "past"
	default:
		return "upcoming"
	}
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Options tune classification.
type Options struct {
	// OffsetMs is added to the clock so visuals lead the audio.
	OffsetMs       int64
	RecentWindowMs int64
	// DistanceBucketsMs are ascending time-until-start thresholds; an upcoming line
	// starting sooner than DistanceBucketsMs[i] is in bucket i+1.
	DistanceBucketsMs []int64
}

// DefaultOptions returns the standard 1s recent window and 2s distance buckets.
func DefaultOptions() Options {
	return Options{
		RecentWindowMs:    1000,
		DistanceBucketsMs: []int64{2000, 4000, 6000, 8000},
	}
}

// Context is the per-tick classification of one line.
type Context struct {
	State        State   `json:"state"`
	Progress     float64 `json:"progress"`
	AdjustedMs   int64   `json:"adjustedMs"`
	MsUntilStart int64   `json:"msUntilStart"`
	MsSinceEnd   int64   `json:"msSinceEnd"`
	// Distance is the bucket of an upcoming line (1 is next); 0 for other states.
	Distance int  `json:"distance"`
	Far      bool `json:"far"`
}

// Classify assigns line its timing state at nowMs.
func Classify(line lyrics.Line, nowMs int64, opts Options) Context {
	t := nowMs + opts.OffsetMs
	ctx := Context{
		AdjustedMs:   t,
		MsUntilStart: line.StartMs - t,
		MsSinceEnd:   t - line.EndMs,
	}
	switch {
	case t < line.StartMs:
		ctx.State = Upcoming
		ctx.Distance, ctx.Far = bucket(ctx.MsUntilStart, opts.DistanceBucketsMs)
	case t <= line.EndMs:
		ctx.State = Active
		ctx.Progress = Progress(line.StartMs, line.EndMs, t)
	case t-line.EndMs < opts.RecentWindowMs:
		ctx.State = Recent
		ctx.Progress = 1
	default:
		ctx.State = Past
		ctx.Progress = 1
	}
	return ctx
}

// ClassifyAll classifies every line at the same instant.
func ClassifyAll(lines []lyrics.Line, nowMs int64, opts Options) []Context {
	out := make([]Context, len(lines))
	for i, l := range lines {
		out[i] = Classify(l, nowMs, opts)
	}
	return out
}

func bucket(untilStart int64, thresholds []int64) (int, bool) {
	for i, th := range thresholds {
		if untilStart < th {
			return i + 1, false
		}
	}
	return len(thresholds) + 1, true
}

// Progress is the clamped linear position of t in [start, end], with the span floored
// to 1ms.
func Progress(startMs, endMs, t int64) float64 {
	if t <= startMs {
		return 0
	}
	if t >= endMs {
		return 1
	}
	span := max(endMs-startMs, 1)
	p := float64(t-startMs) / float64(span)
	return min(max(p, 0), 1)
}

// SyllableProgress is 0 before the syllable starts, 1 at or after its end.
func SyllableProgress(s lyrics.Syllable, adjustedMs int64) float64 {
	return Progress(s.StartMs, s.EndMs, adjustedMs)
}

// CharacterProgress splits the syllable window evenly over its grapheme clusters and
// returns the progress of the character at index.
func CharacterProgress(s lyrics.Syllable, index int, adjustedMs int64) float64 {
	n := uniseg.GraphemeClusterCount(s.Content)
	if n <= 1 {
		return SyllableProgress(s, adjustedMs)
	}
	span := float64(s.Duration())
	start := float64(s.StartMs) + span*float64(index)/float64(n)
	end := float64(s.StartMs) + span*float64(index+1)/float64(n)
	t := float64(adjustedMs)
	switch {
	case t <= start:
		return 0
	case t >= end:
		return 1
	}
	return (t - start) / max(end-start, 1e-9)
}

// ScrollTarget picks the line the view should follow: the first Active line, else the
// Upcoming line closest to starting, else the last line. It is -1 when there are no lines.
func ScrollTarget(ctxs []Context) int {
	if len(ctxs) == 0 {
		return -1
	}
	next := -1
	for i, c := range ctxs {
		switch c.State {
		case Active:
			return i
		case Upcoming:
			if next < 0 || c.MsUntilStart < ctxs[next].MsUntilStart {
				next = i
			}
		}
	}
	if next >= 0 {
		return next
	}
	return len(ctxs) - 1
}
