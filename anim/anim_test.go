package anim

import (
	"math"
	"testing"

	"github.com/lchau1017/KaraokeLyrics-sub001/layout"
)

func TestEasingEndpoints(t *testing.T) {
	for _, s := range []Style{Simple, Bounce, Swell, DipAndRise} {
		if v := Ease(s, 0); math.Abs(v) > 1e-9 {
			t.Errorf("%v: ease(0) = %g", s, v)
		}
		if v := Ease(s, 1); math.Abs(v) > 1e-9 {
			t.Errorf("%v: ease(1) = %g", s, v)
		}
	}
	if math.Abs(Ease(Simple, 0.5)-1) > 1e-9 {
		t.Fatalf("simple should peak at the midpoint")
	}
	if Ease(DipAndRise, 0.1) >= 0 {
		t.Fatalf("dip-and-rise should dip below zero first")
	}
	if Ease(Style(42), 0.5) != Ease(Simple, 0.5) {
		t.Fatalf("unknown style should fall back to simple")
	}
}

func TestParseStyle(t *testing.T) {
	cases := map[string]Style{"": Simple, "bounce": Bounce, "Swell": Swell, "dip_and_rise": DipAndRise}
	for in, want := range cases {
		got, err := ParseStyle(in)
		if err != nil || got != want {
			t.Errorf("ParseStyle(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseStyle("wobble"); err == nil {
		t.Fatalf("expected error for unknown style")
	}
}

func TestCharacterWindow(t *testing.T) {
	word := layout.Window{StartMs: 1000, EndMs: 2000}
	ideal, length := CharacterWindow(word, 0, 5, 0.8)
	if ideal != 1000 || length != 800 {
		t.Fatalf("first char: ideal=%d length=%g", ideal, length)
	}
	ideal, _ = CharacterWindow(word, 4, 5, 0.8)
	if ideal != 1200 {
		t.Fatalf("last char should start at end-length, got %d", ideal)
	}
	ideal, _ = CharacterWindow(word, 0, 1, 0.8)
	if ideal != 1100 {
		t.Fatalf("single char uses ratio 0.5, got %d", ideal)
	}
}

func TestCharacterPinIsWriteOnce(t *testing.T) {
	pins := NewPins()
	opts := DefaultOptions()
	word := layout.Window{StartMs: 1000, EndMs: 2000}
	key := Key{Line: 0, StartMs: 1000, EndMs: 2000, Content: ContentHash("hello"), Char: 2}

	// ideal start of char 2/5 is 1100
	if e := Character(pins, key, opts, word, 2, 5, 1050); e.Animating || pins.Len() != 0 {
		t.Fatalf("char should not be eligible before its ideal start: %+v", e)
	}
	// the first eligible tick arrives late; the animation still starts from zero
	e := Character(pins, key, opts, word, 2, 5, 1500)
	if !e.Animating || e.Progress != 0 {
		t.Fatalf("late first tick should start the animation: %+v", e)
	}
	if v, _ := pins.Lookup(key); v != 1500 {
		t.Fatalf("pin = %d, want 1500", v)
	}
	e = Character(pins, key, opts, word, 2, 5, 1900)
	if v, _ := pins.Lookup(key); v != 1500 {
		t.Fatalf("pin overwritten: %d", v)
	}
	if math.Abs(e.Progress-0.5) > 1e-9 {
		t.Fatalf("progress = %g, want 0.5", e.Progress)
	}
	// past the end of its own window the effect is at rest even after the word ended
	e = Character(pins, key, opts, word, 2, 5, 2400)
	if e.Animating || e.Scale != 1 || e.OffsetY != 0 || e.Progress != 1 {
		t.Fatalf("finished char should be at rest: %+v", e)
	}
}

func TestCharacterMissedEntirely(t *testing.T) {
	pins := NewPins()
	word := layout.Window{StartMs: 0, EndMs: 1000}
	e := Character(pins, Key{Char: 0}, DefaultOptions(), word, 0, 3, 5000)
	if e.Animating || e.Progress != 1 || pins.Len() != 0 {
		t.Fatalf("char seen only after the word ended should not pin: %+v", e)
	}
}

func TestCharacterAtAmplitude(t *testing.T) {
	opts := DefaultOptions()
	opts.EnableBlur = true
	opts.FloatStyle, opts.ScaleStyle, opts.BlurStyle = Simple, Simple, Simple
	full := CharacterAt(opts, 1000, 800, 0, 400)
	half := CharacterAt(opts, 500, 800, 0, 400)
	if math.Abs(full.OffsetY+opts.MaxFloatOffset) > 1e-9 {
		t.Fatalf("full amplitude offset = %g", full.OffsetY)
	}
	if math.Abs(half.OffsetY-full.OffsetY/2) > 1e-9 {
		t.Fatalf("amplitude should scale with duration: %g vs %g", half.OffsetY, full.OffsetY)
	}
	if math.Abs(full.Scale-opts.MaxScale) > 1e-9 || math.Abs(full.BlurRadius-opts.MaxBlur) > 1e-9 {
		t.Fatalf("peak scale/blur wrong: %+v", full)
	}
	opts.EnableBlur = false
	if e := CharacterAt(opts, 1000, 800, 0, 400); e.BlurRadius != 0 {
		t.Fatalf("blur disabled but radius = %g", e.BlurRadius)
	}
}

func TestDisabledIsRest(t *testing.T) {
	opts := DefaultOptions()
	opts.Enabled = false
	pins := NewPins()
	if e := Character(pins, Key{}, opts, layout.Window{EndMs: 100}, 0, 1, 50); e != Rest {
		t.Fatalf("disabled effect = %+v", e)
	}
	if e := Syllable(pins, Key{}, opts, layout.Window{EndMs: 100}, 50); e != Rest {
		t.Fatalf("disabled syllable effect = %+v", e)
	}
}

func TestSyllableSharesTableUnderNegativeChar(t *testing.T) {
	pins := NewPins()
	key := Key{Line: 3, StartMs: 0, EndMs: 500, Content: ContentHash("la"), Char: 7}
	Syllable(pins, key, DefaultOptions(), layout.Window{StartMs: 0, EndMs: 500}, 100)
	key.Char = -1
	if v, ok := pins.Lookup(key); !ok || v != 100 {
		t.Fatalf("syllable pin = %d, %v", v, ok)
	}
}

func TestPinsSweep(t *testing.T) {
	pins := NewPins()
	pins.Pin(Key{Char: 0, EndMs: 1000}, 0)
	pins.Pin(Key{Char: 1, EndMs: 5000}, 4000)
	pins.Pin(Key{Char: 2, EndMs: 30000}, 20000)
	if n := pins.Sweep(12000, 10000); n != 2 {
		t.Fatalf("swept %d, want 2", n)
	}
	if _, ok := pins.Lookup(Key{Char: 1, EndMs: 5000}); !ok {
		t.Fatalf("pin of a recently ended element was swept")
	}
}

func TestSweepKeepsRunningAnimation(t *testing.T) {
	pins := NewPins()
	opts := DefaultOptions()
	word := layout.Window{StartMs: 0, EndMs: 20000}
	key := Key{StartMs: 0, EndMs: 20000, Content: ContentHash("long"), Char: 0}

	// single char: ideal start 2000, animates for 16000 ms
	if e := Character(pins, key, opts, word, 0, 1, 2000); !e.Animating {
		t.Fatalf("char should start animating: %+v", e)
	}
	if n := pins.Sweep(13000, 10000); n != 0 {
		t.Fatalf("swept %d pins of a word still being sung", n)
	}
	e := Character(pins, key, opts, word, 0, 1, 13000)
	if want := 11000.0 / 16000; math.Abs(e.Progress-want) > 1e-9 {
		t.Fatalf("progress = %g, want %g (animation restarted?)", e.Progress, want)
	}
	if n := pins.Sweep(30001, 10000); n != 1 {
		t.Fatalf("pin should expire once the word ended long ago, swept %d", n)
	}
}

func TestDefaultCurves(t *testing.T) {
	opts := DefaultOptions()
	if opts.FloatStyle != DipAndRise || opts.ScaleStyle != Swell || opts.BlurStyle != Bounce {
		t.Fatalf("default curves: float=%v scale=%v blur=%v", opts.FloatStyle, opts.ScaleStyle, opts.BlurStyle)
	}
}

func TestContentHashNormalizes(t *testing.T) {
	if ContentHash("caf\u00e9") != ContentHash("cafe\u0301") {
		t.Fatalf("composed and decomposed forms should hash equally")
	}
	if ContentHash("a") == ContentHash("b") {
		t.Fatalf("distinct content collided")
	}
}
