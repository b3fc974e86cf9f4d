package layout

import (
	"errors"
	"reflect"
	"testing"

	"github.com/lchau1017/KaraokeLyrics-sub001/lyrics"
)

func stubOptions(width float64) BuildOptions {
	return BuildOptions{
		Measurer: MeasureFunc(func(text string, _ TextStyle) Metrics { return fixedMetrics(text) }),
		Style:    TextStyle{Font: "stub", Size: 16},
		MaxWidth: width,
		CharAnim: CharAnimOptions{Enabled: true, ThresholdMsPerChar: 200},
	}
}

func TestBuildRequiresMeasurer(t *testing.T) {
	_, err := Build(lyrics.Line{}, BuildOptions{})
	if !errors.Is(err, ErrNoMeasurer) {
		t.Fatalf("expected ErrNoMeasurer, got %v", err)
	}
}

func TestBuildEmptyLine(t *testing.T) {
	l, err := Build(lyrics.NewLine(nil, lyrics.AlignUnspecified, false, nil), stubOptions(300))
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if len(l.Rows) != 0 || l.Height != 0 {
		t.Fatalf("empty line produced %+v", l)
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	line := lyrics.NewLine([]lyrics.Syllable{syl("Hel", 0, 200), syl("lo ", 200, 500), syl("World", 600, 2000)}, lyrics.AlignCenter, false, nil)
	a, err := Build(line, stubOptions(80))
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	b, _ := Build(line, stubOptions(80))
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("two builds with identical inputs differ")
	}
	if len(a.Rows) != 2 || a.Align != AlignCenter {
		t.Fatalf("unexpected layout: rows=%d align=%v", len(a.Rows), a.Align)
	}
	if a.RowHeight != 24 || a.Height != 48 {
		t.Fatalf("inferred row height = %g, height = %g", a.RowHeight, a.Height)
	}
}

func TestBuildRTL(t *testing.T) {
	line := lyrics.NewLine([]lyrics.Syllable{syl("שָׁלוֹם", 0, 500)}, lyrics.AlignStart, false, nil)
	l, err := Build(line, stubOptions(300))
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if !l.RTL || l.Align != AlignRight {
		t.Fatalf("Hebrew start-aligned line should be RTL and right aligned, got rtl=%v align=%v", l.RTL, l.Align)
	}
	ps := l.Rows[0][0]
	if ps.Position.X+ps.Width != 300 {
		t.Fatalf("RTL syllable should end at the right edge, got x=%g w=%g", ps.Position.X, ps.Width)
	}
}

func TestCharAnimWindows(t *testing.T) {
	line := lyrics.NewLine([]lyrics.Syllable{syl("Hi ", 0, 1000), syl("there", 1000, 1200), syl("!", 1200, 2000)}, lyrics.AlignStart, false, nil)
	words := Segment(line.Syllables)
	opts := CharAnimOptions{Enabled: true, ThresholdMsPerChar: 200}

	windows := CharAnimWindows(line, words, opts)
	if w, ok := windows[0]; !ok || w.StartMs != 0 || w.EndMs != 1000 {
		t.Fatalf("slow word \"Hi \" should animate, got %v", windows)
	}
	if _, ok := windows[1]; ok {
		t.Fatalf("fast word \"there!\" (1000ms / 6 chars) should not animate")
	}

	if got := CharAnimWindows(line.WithAccompaniment(true), words, opts); len(got) != 0 {
		t.Fatalf("accompaniment lines never animate per character")
	}
	if got := CharAnimWindows(line, words, CharAnimOptions{}); len(got) != 0 {
		t.Fatalf("disabled options still produced windows")
	}
	punct := lyrics.NewLine([]lyrics.Syllable{syl("...", 0, 3000)}, lyrics.AlignStart, false, nil)
	if got := CharAnimWindows(punct, Segment(punct.Syllables), opts); len(got) != 0 {
		t.Fatalf("punctuation words never animate")
	}
}
