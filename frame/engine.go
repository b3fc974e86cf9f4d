// Package frame drives the per-tick pipeline: it classifies lines, lays out the visible
// ones through a memoizing cache, and attaches gradients, visual tiers and animations.
package frame

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/lchau1017/KaraokeLyrics-sub001/anim"
	"github.com/lchau1017/KaraokeLyrics-sub001/gradient"
	"github.com/lchau1017/KaraokeLyrics-sub001/layout"
	"github.com/lchau1017/KaraokeLyrics-sub001/lyrics"
	"github.com/lchau1017/KaraokeLyrics-sub001/timing"
	"github.com/lchau1017/KaraokeLyrics-sub001/visual"
)

var ErrNoSong = errors.New("frame: no song loaded")

// Options collects the engine configuration; config.Config.FrameOptions builds one.
type Options struct {
	Timing   timing.Options
	Anim     anim.Options
	CharAnim layout.CharAnimOptions
	Visual   visual.Tiers

	Style     layout.TextStyle
	RowHeight float64 // px, 0 infers from the tallest syllable
	LineGap   float64 // px between lines

	Active   colorful.Color
	Inactive colorful.Color

	PinMaxAgeMs        int64
	PinSweepIntervalMs int64

	VisibleBefore int
	VisibleAfter  int

	ScrollFPS       int
	ScrollFrequency float64
	ScrollDamping   float64

	CacheLimit int
}

func DefaultOptions() Options {
	return Options{
		Timing:             timing.DefaultOptions(),
		Anim:               anim.DefaultOptions(),
		CharAnim:           layout.CharAnimOptions{Enabled: true, ThresholdMsPerChar: 200},
		Visual:             visual.DefaultTiers(),
		Style:              layout.TextStyle{Font: "embed:lmroman10-regular", Size: 32},
		LineGap:            12,
		Active:             colorful.Color{R: 1, G: 1, B: 1},
		Inactive:           colorful.Color{R: 0.55, G: 0.55, B: 0.6},
		PinMaxAgeMs:        10000,
		PinSweepIntervalMs: 1000,
		VisibleBefore:      2,
		VisibleAfter:       4,
		ScrollFPS:          60,
		ScrollFrequency:    6,
		ScrollDamping:      1,
		CacheLimit:         512,
	}
}

// Engine owns the per-song mutable state (layout cache, pin table, scroll spring).
// It is driven from a single update loop; hand results to other goroutines through a
// Publisher.
type Engine struct {
	measurer layout.Measurer
	opts     Options
	log      *log.Logger

	song       lyrics.Song
	loaded     bool
	generation uint64

	cache     *layout.Cache
	pins      *anim.Pins
	lastSweep int64
	swept     bool

	scroller   *Scroller
	lastTarget int
}

// Stats summarizes the engine's caches.
type Stats struct {
	Generation  uint64 `json:"generation"`
	Layouts     int    `json:"layouts"`
	CacheHits   int    `json:"cacheHits"`
	CacheMisses int    `json:"cacheMisses"`
	Pins        int    `json:"pins"`
}

// New creates an engine. logger may be nil.
func New(m layout.Measurer, opts Options, logger *log.Logger) (*Engine, error) {
	if m == nil {
		return nil, fmt.Errorf("frame: %w", layout.ErrNoMeasurer)
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{
		measurer:   m,
		opts:       opts,
		log:        logger,
		cache:      layout.NewCache(opts.CacheLimit),
		pins:       anim.NewPins(),
		scroller:   NewScroller(opts.ScrollFPS, opts.ScrollFrequency, opts.ScrollDamping),
		lastTarget: -1,
	}, nil
}

// Load replaces the current song. It bumps the generation and discards every layout,
// pin and scroll position that belonged to the previous one.
func (e *Engine) Load(song lyrics.Song) uint64 {
	e.generation++
	e.song = song
	e.loaded = true
	e.cache.Reset()
	e.pins.Reset()
	e.swept = false
	e.scroller.Reset()
	e.lastTarget = -1
	e.log.Debug("song loaded", "id", song.ID, "title", song.Title, "lines", len(song.Lines), "generation", e.generation)
	return e.generation
}

func (e *Engine) Generation() uint64 { return e.generation }

func (e *Engine) Stats() Stats {
	hits, misses := e.cache.Stats()
	return Stats{
		Generation:  e.generation,
		Layouts:     e.cache.Len(),
		CacheHits:   hits,
		CacheMisses: misses,
		Pins:        e.pins.Len(),
	}
}

func (e *Engine) buildOptions(width float64) layout.BuildOptions {
	return layout.BuildOptions{
		Measurer:    e.measurer,
		Style:       e.opts.Style,
		MaxWidth:    width,
		CanvasWidth: width,
		RowHeight:   e.opts.RowHeight,
		CharAnim:    e.opts.CharAnim,
	}
}

// Layout returns the (cached) static layout of line index at width.
func (e *Engine) Layout(index int, width float64) (*layout.Layout, error) {
	if !e.loaded {
		return nil, ErrNoSong
	}
	if index < 0 || index >= len(e.song.Lines) {
		return nil, fmt.Errorf("frame: line %d out of range [0,%d)", index, len(e.song.Lines))
	}
	line := e.song.Lines[index]
	opts := e.buildOptions(width)
	l, err := e.cache.Get(layout.KeyFor(e.generation, index, line, opts), func() (*layout.Layout, error) {
		return layout.Build(line, opts)
	})
	if err != nil {
		return nil, fmt.Errorf("frame: layout line %d: %w", index, err)
	}
	return l, nil
}

// Frame computes the frame for playback position nowMs on a canvas of the given width.
func (e *Engine) Frame(nowMs int64, width float64) (*Frame, error) {
	if !e.loaded {
		return nil, ErrNoSong
	}
	ctxs := timing.ClassifyAll(e.song.Lines, nowMs, e.opts.Timing)
	adjusted := nowMs + e.opts.Timing.OffsetMs
	e.sweepPins(adjusted)

	f := &Frame{
		Generation:   e.generation,
		SongID:       e.song.ID,
		NowMs:        nowMs,
		AdjustedMs:   adjusted,
		Width:        width,
		ScrollTarget: timing.ScrollTarget(ctxs),
	}
	if f.ScrollTarget < 0 {
		return f, nil
	}
	if f.ScrollTarget != e.lastTarget {
		e.log.Debug("scroll target", "line", f.ScrollTarget, "at", adjusted)
		e.lastTarget = f.ScrollTarget
	}

	lo := max(f.ScrollTarget-e.opts.VisibleBefore, 0)
	hi := min(f.ScrollTarget+e.opts.VisibleAfter, len(e.song.Lines)-1)

	// 目标行之前的所有行都参与纵向偏移计算
	top := 0.0
	for i := 0; i <= hi; i++ {
		l, err := e.Layout(i, width)
		if err != nil {
			return nil, err
		}
		if i == f.ScrollTarget {
			f.ScrollY = e.scroller.Step(top)
		}
		if i >= lo {
			f.Lines = append(f.Lines, e.lineFrame(i, l, ctxs[i], top, adjusted))
		}
		top += l.Height + e.opts.LineGap
	}
	return f, nil
}

func (e *Engine) sweepPins(adjusted int64) {
	interval := e.opts.PinSweepIntervalMs
	if e.swept && adjusted >= e.lastSweep && adjusted-e.lastSweep < interval {
		return
	}
	e.swept = true
	e.lastSweep = adjusted
	if n := e.pins.Sweep(adjusted, e.opts.PinMaxAgeMs); n > 0 {
		e.log.Debug("pins swept", "removed", n, "remaining", e.pins.Len())
	}
}

func (e *Engine) lineFrame(index int, l *layout.Layout, ctx timing.Context, top float64, adjusted int64) LineFrame {
	lf := LineFrame{
		Index:  index,
		Timing: ctx,
		Visual: visual.Decide(ctx.State, ctx.Distance, ctx.Far, ctx.MsSinceEnd, e.opts.Visual),
		Top:    top,
		Layout: l,
		Rows:   make([]RowFrame, len(l.Rows)),
	}
	active := ctx.State == timing.Active
	for ri, row := range l.Rows {
		rf := RowFrame{
			Gradient:  gradient.ForRow(row, adjusted, active, l.RTL, e.opts.Active, e.opts.Inactive),
			Syllables: make([]SyllableFrame, len(row)),
		}
		for si, ps := range row {
			rf.Syllables[si] = e.syllableFrame(index, ps, adjusted)
		}
		lf.Rows[ri] = rf
	}
	return lf
}

func (e *Engine) syllableFrame(line int, ps layout.PositionedSyllable, adjusted int64) SyllableFrame {
	s := ps.Syllable
	sf := SyllableFrame{
		Content:     s.Content,
		SourceIndex: ps.SourceIndex,
		Progress:    timing.SyllableProgress(s, adjusted),
		Lift:        anim.Rest,
	}
	sf.CharProgress = make([]float64, ps.CharCount)
	for c := range ps.CharCount {
		sf.CharProgress[c] = timing.CharacterProgress(s, c, adjusted)
	}
	hash := anim.ContentHash(s.Content)
	if ps.WordAnimWindow == nil {
		key := anim.Key{Line: line, StartMs: s.StartMs, EndMs: s.EndMs, Content: hash}
		sf.Lift = anim.Syllable(e.pins, key, e.opts.Anim, layout.Window{StartMs: s.StartMs, EndMs: s.EndMs}, adjusted)
		return sf
	}
	win := *ps.WordAnimWindow
	sf.Chars = make([]anim.Effect, ps.CharCount)
	for c := range ps.CharCount {
		i := ps.CharOffsetInWord + c
		key := anim.Key{Line: line, StartMs: win.StartMs, EndMs: win.EndMs, Content: hash, Char: i}
		sf.Chars[c] = anim.Character(e.pins, key, e.opts.Anim, win, i, ps.WordCharCount, adjusted)
	}
	return sf
}
