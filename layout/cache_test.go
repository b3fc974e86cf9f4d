package layout

import (
	"testing"

	"github.com/lchau1017/KaraokeLyrics-sub001/lyrics"
)

func TestCacheMemoizesByKey(t *testing.T) {
	c := NewCache(0)
	line := lyrics.NewLine([]lyrics.Syllable{syl("la", 0, 100)}, lyrics.AlignStart, false, nil)
	opts := stubOptions(200)
	builds := 0
	build := func() (*Layout, error) {
		builds++
		return Build(line, opts)
	}

	a, err := c.Get(KeyFor(1, 0, line, opts), build)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	b, _ := c.Get(KeyFor(1, 0, line, opts), build)
	if builds != 1 || a != b {
		t.Fatalf("expected a single build and shared result, builds=%d", builds)
	}

	wider := opts
	wider.MaxWidth = 400
	if _, err := c.Get(KeyFor(1, 0, line, wider), build); err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if _, err := c.Get(KeyFor(2, 0, line, opts), build); err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if builds != 3 {
		t.Fatalf("width and generation changes must rebuild, builds=%d", builds)
	}
	if hits, misses := c.Stats(); hits != 1 || misses != 3 {
		t.Fatalf("stats = %d hits, %d misses", hits, misses)
	}

	c.Reset()
	if c.Len() != 0 {
		t.Fatalf("Reset left %d entries", c.Len())
	}
}

func TestCacheLimit(t *testing.T) {
	c := NewCache(2)
	opts := stubOptions(100)
	for i := 0; i < 5; i++ {
		line := lyrics.NewLine([]lyrics.Syllable{syl("x", int64(i), int64(i+1))}, lyrics.AlignStart, false, nil)
		if _, err := c.Get(KeyFor(1, i, line, opts), func() (*Layout, error) { return Build(line, opts) }); err != nil {
			t.Fatalf("Get error: %v", err)
		}
	}
	if c.Len() > 2 {
		t.Fatalf("cache grew past its limit: %d", c.Len())
	}
}
