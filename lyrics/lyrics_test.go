package lyrics

import "testing"

func TestNewLineDerivesBounds(t *testing.T) {
	src := []Syllable{{"Hel", 100, 200}, {"lo", 200, 450}}
	l := NewLine(src, AlignCenter, false, nil)
	if l.StartMs != 100 || l.EndMs != 450 {
		t.Fatalf("bounds = [%d,%d], want [100,450]", l.StartMs, l.EndMs)
	}
	src[0].Content = "X"
	if l.Syllables[0].Content != "Hel" {
		t.Fatalf("line aliases the caller's slice")
	}
	if got := l.Text(); got != "Hello" {
		t.Fatalf("Text() = %q", got)
	}
}

func TestEmptyLine(t *testing.T) {
	l := NewLine(nil, AlignUnspecified, false, nil)
	if l.StartMs != 0 || l.EndMs != 0 || l.Duration() != 1 {
		t.Fatalf("unexpected empty line %+v", l)
	}
}

func TestZeroDurationSyllable(t *testing.T) {
	if d := (Syllable{"a", 500, 500}).Duration(); d != 1 {
		t.Fatalf("Duration() = %d, want 1", d)
	}
	if d := (Syllable{"a", 500, 400}).Duration(); d != 1 {
		t.Fatalf("inverted Duration() = %d, want 1", d)
	}
}

func TestWithMethodsDoNotMutate(t *testing.T) {
	orig := NewLine([]Syllable{{"a", 0, 10}}, AlignStart, false, map[string]string{"agent": "v1"})
	tagged := orig.WithMetadata("agent", "v2")
	if orig.Metadata["agent"] != "v1" || tagged.Metadata["agent"] != "v2" {
		t.Fatalf("WithMetadata leaked: orig=%v tagged=%v", orig.Metadata, tagged.Metadata)
	}
	moved := orig.WithAlignment(AlignEnd)
	moved.Syllables[0].Content = "b"
	if orig.Syllables[0].Content != "a" || orig.Alignment != AlignStart {
		t.Fatalf("WithAlignment shares state with the receiver")
	}
	re := orig.WithSyllables([]Syllable{{"x", 40, 90}, {"y", 90, 120}})
	if re.StartMs != 40 || re.EndMs != 120 || orig.EndMs != 10 {
		t.Fatalf("WithSyllables did not renormalize: %+v", re)
	}
	if !orig.WithAccompaniment(true).IsAccompaniment || orig.IsAccompaniment {
		t.Fatalf("WithAccompaniment mutated the receiver")
	}
}

func TestParseAlignment(t *testing.T) {
	cases := map[string]Alignment{"": AlignUnspecified, "left": AlignStart, "Center": AlignCenter, "end": AlignEnd}
	for in, want := range cases {
		got, err := ParseAlignment(in)
		if err != nil || got != want {
			t.Fatalf("ParseAlignment(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseAlignment("diagonal"); err == nil {
		t.Fatalf("expected error for unknown alignment")
	}
}

func TestNewSongAssignsID(t *testing.T) {
	a := NewSong("", "t", []Line{{Syllables: []Syllable{{"a", 5, 9}}}}, nil)
	b := NewSong("", "t", nil, nil)
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("expected distinct generated ids, got %q and %q", a.ID, b.ID)
	}
	if a.Lines[0].StartMs != 5 || a.Lines[0].EndMs != 9 {
		t.Fatalf("song lines not normalized: %+v", a.Lines[0])
	}
	if c := NewSong("fixed", "", nil, nil); c.ID != "fixed" {
		t.Fatalf("explicit id replaced: %q", c.ID)
	}
}
