// Package anim computes per-character and per-syllable float/scale/blur effects.
//
// The math is pure; the only state is the caller-owned Pins table that remembers when
// each character started animating.
package anim

import (
	"github.com/lchau1017/KaraokeLyrics-sub001/layout"
)

// Options configure the effects.
type Options struct {
	Enabled bool
	// WindowFraction is the share of the word duration each character animates for.
	WindowFraction float64
	// DurationBaseMs is the word duration at which effects reach full amplitude.
	DurationBaseMs float64
	MaxFloatOffset float64 // px
	MaxScale       float64
	MaxBlur        float64 // px
	EnableBlur     bool
	FloatStyle     Style
	ScaleStyle     Style
	BlurStyle      Style
}

func DefaultOptions() Options {
	return Options{
		Enabled:        true,
		WindowFraction: 0.8,
		DurationBaseMs: 1000,
		MaxFloatOffset: 6,
		MaxScale:       1.15,
		MaxBlur:        2,
		EnableBlur:     false,
		FloatStyle:     DipAndRise,
		ScaleStyle:     Swell,
		BlurStyle:      Bounce,
	}
}

// Effect is the visual offset of one character or syllable at one tick.
type Effect struct {
	OffsetY    float64 `json:"offsetY"`
	Scale      float64 `json:"scale"`
	BlurRadius float64 `json:"blurRadius"`
	Progress   float64 `json:"progress"`
	Animating  bool    `json:"animating"`
}

// Rest is the neutral effect.
var Rest = Effect{Scale: 1}

// CharacterWindow returns when character i of n ideally starts animating inside the
// word window, and for how long it animates.
func CharacterWindow(word layout.Window, i, n int, fraction float64) (idealStart int64, length float64) {
	duration := float64(word.Duration())
	length = duration * fraction
	ratio := 0.5
	if n > 1 {
		ratio = float64(i) / float64(n-1)
	}
	idealStart = word.StartMs + int64(ratio*(float64(word.EndMs)-length-float64(word.StartMs)))
	return idealStart, length
}

// CharacterAt evaluates the effect of a character whose animation started at pinnedMs.
// durationMs is the word duration and scales the amplitude.
func CharacterAt(opts Options, durationMs int64, length float64, pinnedMs, nowMs int64) Effect {
	t := float64(nowMs - pinnedMs)
	if length <= 0 {
		length = 1
	}
	e := Rest
	e.Progress = clamp01(t / length)
	if t < 0 || t > length {
		return e
	}
	e.Animating = true

	f := 1.0
	if opts.DurationBaseMs > 0 {
		f = clamp01(float64(durationMs) / opts.DurationBaseMs)
	}
	p := e.Progress
	e.OffsetY = -opts.MaxFloatOffset * f * Ease(opts.FloatStyle, p)
	e.Scale = 1 + (opts.MaxScale-1)*f*Ease(opts.ScaleStyle, p)
	if opts.EnableBlur {
		e.BlurRadius = max(opts.MaxBlur*f*Ease(opts.BlurStyle, p), 0)
	}
	return e
}

// Character evaluates character i of n in word, pinning its start the first tick it is
// eligible (idealStart <= now <= word end).
func Character(pins *Pins, key Key, opts Options, word layout.Window, i, n int, nowMs int64) Effect {
	if !opts.Enabled || n <= 0 {
		return Rest
	}
	ideal, length := CharacterWindow(word, i, n, opts.WindowFraction)
	return pinned(pins, key, opts, word, ideal, length, nowMs)
}

// Syllable evaluates the whole-syllable lift used when a word is not animated per
// character. It shares the pin table under Char == -1.
func Syllable(pins *Pins, key Key, opts Options, window layout.Window, nowMs int64) Effect {
	if !opts.Enabled {
		return Rest
	}
	key.Char = -1
	length := float64(window.Duration()) * opts.WindowFraction
	return pinned(pins, key, opts, window, window.StartMs, length, nowMs)
}

func pinned(pins *Pins, key Key, opts Options, window layout.Window, ideal int64, length float64, nowMs int64) Effect {
	start, ok := pins.Lookup(key)
	if !ok {
		if nowMs < ideal || nowMs > window.EndMs {
			e := Rest
			if nowMs > window.EndMs {
				e.Progress = 1
			}
			return e
		}
		start = pins.Pin(key, nowMs)
	}
	return CharacterAt(opts, window.Duration(), length, start, nowMs)
}
