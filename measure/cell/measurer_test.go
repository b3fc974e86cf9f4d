package cellmeasure

import (
	"testing"

	"github.com/lchau1017/KaraokeLyrics-sub001/layout"
	"github.com/lchau1017/KaraokeLyrics-sub001/lyrics"
)

func TestMeasureCells(t *testing.T) {
	m := New(1, 1)
	cases := map[string]float64{
		"abc":     3,
		"日本":      4,
		"e\u0301": 1,
		"":        0,
		"hi 世界":   7,
	}
	for in, want := range cases {
		if got := m.Measure(in, layout.TextStyle{}).Width; got != want {
			t.Errorf("Measure(%q) = %g, want %g", in, got, want)
		}
	}
}

func TestCharBoundsPerGrapheme(t *testing.T) {
	m := New(8, 16)
	got := m.Measure("a日e\u0301", layout.TextStyle{}).CharBounds
	want := []float64{8, 24, 32}
	if len(got) != len(want) {
		t.Fatalf("bounds = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("bounds = %v, want %v", got, want)
		}
	}
}

func TestCJKLineWrapsPerCharacter(t *testing.T) {
	line := lyrics.NewLine([]lyrics.Syllable{
		{Content: "你", StartMs: 0, EndMs: 300},
		{Content: "好", StartMs: 300, EndMs: 600},
		{Content: "世", StartMs: 600, EndMs: 900},
		{Content: "界", StartMs: 900, EndMs: 1200},
	}, lyrics.AlignStart, false, nil)
	res, err := layout.Build(line, layout.BuildOptions{Measurer: New(1, 1), MaxWidth: 5})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(res.Rows) != 2 || len(res.Rows[0]) != 2 {
		t.Fatalf("expected 2x2 characters, got %d rows", len(res.Rows))
	}
}
