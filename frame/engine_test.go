package frame

import (
	"errors"
	"math"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/lchau1017/KaraokeLyrics-sub001/layout"
	"github.com/lchau1017/KaraokeLyrics-sub001/lyrics"
	"github.com/lchau1017/KaraokeLyrics-sub001/timing"
)

func stubMeasurer() layout.Measurer {
	return layout.MeasureFunc(func(text string, _ layout.TextStyle) layout.Metrics {
		n := utf8.RuneCountInString(text)
		return layout.Metrics{Width: 10 * float64(n), Height: 20, FirstBaseline: 16}
	})
}

func syl(content string, start, end int64) lyrics.Syllable {
	return lyrics.Syllable{Content: content, StartMs: start, EndMs: end}
}

func testSong() lyrics.Song {
	return lyrics.NewSong("song-1", "test", []lyrics.Line{
		lyrics.NewLine([]lyrics.Syllable{syl("Hel", 0, 200), syl("lo ", 200, 500), syl("World", 600, 2000)}, lyrics.AlignCenter, false, nil),
		lyrics.NewLine([]lyrics.Syllable{syl("second ", 3000, 3500), syl("line", 3500, 4000)}, lyrics.AlignStart, false, nil),
		lyrics.NewLine([]lyrics.Syllable{syl("third", 6000, 7000)}, lyrics.AlignStart, false, nil),
	}, nil)
}

func newEngine(t *testing.T) *Engine {
	t.Helper()
	opts := DefaultOptions()
	opts.RowHeight = 24
	e, err := New(stubMeasurer(), opts, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func TestNewRequiresMeasurer(t *testing.T) {
	if _, err := New(nil, DefaultOptions(), nil); !errors.Is(err, layout.ErrNoMeasurer) {
		t.Fatalf("expected ErrNoMeasurer, got %v", err)
	}
}

func TestFrameWithoutSong(t *testing.T) {
	e := newEngine(t)
	if _, err := e.Frame(0, 300); !errors.Is(err, ErrNoSong) {
		t.Fatalf("expected ErrNoSong, got %v", err)
	}
}

func TestFrameStatesAndTarget(t *testing.T) {
	e := newEngine(t)
	e.Load(testSong())

	f, err := e.Frame(1000, 300)
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if f.ScrollTarget != 0 || f.SongID != "song-1" {
		t.Fatalf("target=%d song=%q", f.ScrollTarget, f.SongID)
	}
	if len(f.Lines) != 3 {
		t.Fatalf("expected all 3 lines visible, got %d", len(f.Lines))
	}
	if s, _ := f.State(0); s != timing.Active {
		t.Fatalf("line 0 state = %v", s)
	}
	if s, _ := f.State(1); s != timing.Upcoming {
		t.Fatalf("line 1 state = %v", s)
	}
	if f.Lines[0].Visual.Opacity != 1 || f.Lines[1].Visual.Opacity != 0.45 {
		t.Fatalf("visual tiers not applied: %+v %+v", f.Lines[0].Visual, f.Lines[1].Visual)
	}
	// line 0 is a single 110px row of 24px, gap 12
	if f.Lines[1].Top != 36 {
		t.Fatalf("line 1 top = %g, want 36", f.Lines[1].Top)
	}
	row := f.Lines[0].Rows[0]
	if row.Gradient.Flat || row.Gradient.Progress <= 0 || row.Gradient.Progress >= 1 {
		t.Fatalf("active row should sweep, got %+v", row.Gradient)
	}
	if got := row.Syllables[0].Progress; got != 1 {
		t.Fatalf("first syllable progress = %g", got)
	}
}

func TestFrameScrollFollowsTarget(t *testing.T) {
	e := newEngine(t)
	e.Load(testSong())
	f, _ := e.Frame(3200, 300)
	if f.ScrollTarget != 1 || f.ScrollY != 36 {
		t.Fatalf("first frame should jump: target=%d y=%g", f.ScrollTarget, f.ScrollY)
	}
	f, _ = e.Frame(6500, 300)
	if f.ScrollTarget != 2 {
		t.Fatalf("target = %d", f.ScrollTarget)
	}
	if f.ScrollY <= 36 || f.ScrollY >= 72 {
		t.Fatalf("scroll should move toward 72 smoothly, got %g", f.ScrollY)
	}
	var y float64
	for range 600 {
		f, _ = e.Frame(6500, 300)
		y = f.ScrollY
	}
	if math.Abs(y-72) > 0.5 {
		t.Fatalf("scroll did not settle: %g", y)
	}
}

func TestCharacterAnimationPinsAndReload(t *testing.T) {
	e := newEngine(t)
	e.Load(testSong())
	// "World" lasts 1400ms over 5 chars, above the 200ms/char threshold
	f, err := e.Frame(700, 300)
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	var world *SyllableFrame
	for i := range f.Lines[0].Rows[0].Syllables {
		if s := &f.Lines[0].Rows[0].Syllables[i]; s.Content == "World" {
			world = s
		}
	}
	if world == nil || len(world.Chars) != 5 {
		t.Fatalf("World should animate per character: %+v", world)
	}
	if !world.Chars[0].Animating {
		t.Fatalf("first char should be animating at 700ms")
	}
	if e.Stats().Pins == 0 {
		t.Fatalf("expected pins to be recorded")
	}

	gen := e.Generation()
	if e.Load(testSong()) != gen+1 {
		t.Fatalf("Load should bump the generation")
	}
	if st := e.Stats(); st.Pins != 0 || st.Layouts != 0 {
		t.Fatalf("reload should discard caches: %+v", st)
	}
}

func TestSungRowStaysActiveWhileLineIsSung(t *testing.T) {
	e := newEngine(t)
	e.Load(lyrics.NewSong("wrap", "", []lyrics.Line{
		lyrics.NewLine([]lyrics.Syllable{syl("first ", 0, 1000), syl("second", 1000, 2000)}, lyrics.AlignStart, false, nil),
	}, nil))

	f, err := e.Frame(1500, 70)
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	lf := f.Lines[0]
	if lf.Timing.State != timing.Active || len(lf.Rows) != 2 {
		t.Fatalf("state=%v rows=%d", lf.Timing.State, len(lf.Rows))
	}
	if g := lf.Rows[0].Gradient; !g.Flat || g.ColorAt(0) != e.opts.Active {
		t.Fatalf("sung row should keep the active colour: %+v", g)
	}
	if g := lf.Rows[1].Gradient; g.Flat || math.Abs(g.Progress-0.5) > 1e-9 {
		t.Fatalf("second row should sweep at 0.5: %+v", g)
	}
	cp := lf.Rows[1].Syllables[0].CharProgress
	if len(cp) != 6 || cp[2] != 1 || cp[3] != 0 {
		t.Fatalf("per-character progress of \"second\" at its midpoint: %v", cp)
	}

	// after the line ends both rows return to the inactive colour
	f, err = e.Frame(2500, 70)
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	for ri, row := range f.Lines[0].Rows {
		if !row.Gradient.Flat || row.Gradient.ColorAt(0) != e.opts.Inactive {
			t.Fatalf("row %d of a finished line: %+v", ri, row.Gradient)
		}
	}
}

func TestLayoutIsCached(t *testing.T) {
	e := newEngine(t)
	e.Load(testSong())
	a, err := e.Layout(0, 300)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	b, _ := e.Layout(0, 300)
	if a != b {
		t.Fatalf("expected cached layout pointer")
	}
	c, _ := e.Layout(0, 80)
	if c == a || len(c.Rows) != 2 {
		t.Fatalf("narrower width should rebuild and wrap, rows=%d", len(c.Rows))
	}
	if _, err := e.Layout(9, 300); err == nil {
		t.Fatalf("expected out of range error")
	}
}

func TestPinsSweptAfterMaxAge(t *testing.T) {
	e := newEngine(t)
	e.Load(testSong())
	if _, err := e.Frame(700, 300); err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if e.Stats().Pins == 0 {
		t.Fatalf("expected pins")
	}
	if _, err := e.Frame(30000, 300); err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if n := e.Stats().Pins; n != 0 {
		t.Fatalf("old pins should be swept, %d left", n)
	}
}

func TestPublisherLastWriterWins(t *testing.T) {
	var p Publisher
	if p.Latest() != nil {
		t.Fatalf("empty publisher should return nil")
	}
	if !p.Publish(&Frame{Generation: 2, NowMs: 1}) {
		t.Fatalf("first publish rejected")
	}
	if p.Publish(&Frame{Generation: 1, NowMs: 2}) {
		t.Fatalf("older generation accepted")
	}
	if !p.Publish(&Frame{Generation: 2, NowMs: 3}) || p.Latest().NowMs != 3 {
		t.Fatalf("same generation should replace")
	}

	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Publish(&Frame{Generation: uint64(g + 3)})
		}()
	}
	wg.Wait()
	if p.Latest().Generation != 10 {
		t.Fatalf("newest generation should win, got %d", p.Latest().Generation)
	}
}
