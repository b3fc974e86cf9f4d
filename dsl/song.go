package dsl

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/lchau1017/KaraokeLyrics-sub001/binding"
	"github.com/lchau1017/KaraokeLyrics-sub001/lyrics"
)

// ErrTiming marks a syllable that ends before it starts.
var ErrTiming = errors.New("invalid syllable timing")

// Song converts a parsed document into a lyrics.Song. ${path} placeholders in the
// title, metadata and syllable text are resolved against data. The song id is taken
// from `meta id: "..."` and generated when absent.
func Song(doc *Document, data any) (lyrics.Song, error) {
	if doc == nil {
		return lyrics.Song{}, fmt.Errorf("dsl: nil document")
	}
	meta := map[string]string{}
	var lines []lyrics.Line
	for _, it := range doc.Items {
		switch {
		case it.Meta != nil:
			meta[it.Meta.Key] = string(it.Meta.Value)
		case it.Line != nil:
			l, err := convertLine(it.Line, data)
			if err != nil {
				return lyrics.Song{}, err
			}
			lines = append(lines, l)
		}
	}
	meta = binding.InterpolateMap(meta, data)
	id := meta["id"]
	delete(meta, "id")
	if len(meta) == 0 {
		meta = nil
	}
	return lyrics.NewSong(id, binding.Interpolate(string(doc.Title), data), lines, meta), nil
}

func convertLine(block *LineBlock, data any) (lyrics.Line, error) {
	var (
		align lyrics.Alignment
		bg    bool
		md    map[string]string
	)
	for _, opt := range block.Options {
		switch {
		case opt.Align != nil:
			a, err := lyrics.ParseAlignment(*opt.Align)
			if err != nil {
				return lyrics.Line{}, fmt.Errorf("%s: %w", block.Pos, err)
			}
			align = a
		case opt.Background:
			bg = true
		case opt.Attr != nil:
			if md == nil {
				md = map[string]string{}
			}
			md[opt.Attr.Key] = string(opt.Attr.Value)
		}
	}
	syllables := make([]lyrics.Syllable, 0, len(block.Syllables))
	for _, s := range block.Syllables {
		if s.End < s.Start {
			return lyrics.Line{}, fmt.Errorf("%s: %q ends at %d before it starts at %d: %w",
				s.Pos, string(s.Text), s.End, s.Start, ErrTiming)
		}
		syllables = append(syllables, lyrics.Syllable{
			Content: binding.Interpolate(string(s.Text), data),
			StartMs: int64(s.Start),
			EndMs:   int64(s.End),
		})
	}
	return lyrics.NewLine(syllables, align, bg, binding.InterpolateMap(md, data)), nil
}

// Load parses a script and converts it in one step.
func Load(r io.Reader, data any) (lyrics.Song, error) {
	doc, err := Parse(r)
	if err != nil {
		return lyrics.Song{}, fmt.Errorf("parse lyric script: %w", err)
	}
	return Song(doc, data)
}

// Format writes song back out as a lyric script. Metadata keys are emitted in sorted
// order so output is stable.
func Format(w io.Writer, song lyrics.Song) error {
	var b strings.Builder
	fmt.Fprintf(&b, "song %s {\n", strconv.Quote(song.Title))
	if song.ID != "" {
		fmt.Fprintf(&b, "  meta id: %s\n", strconv.Quote(song.ID))
	}
	for _, k := range sortedKeys(song.Metadata) {
		fmt.Fprintf(&b, "  meta %s: %s\n", k, strconv.Quote(song.Metadata[k]))
	}
	for _, l := range song.Lines {
		b.WriteString("\n  line")
		if l.Alignment != lyrics.AlignUnspecified {
			fmt.Fprintf(&b, " align %s", l.Alignment)
		}
		if l.IsAccompaniment {
			b.WriteString(" bg")
		}
		for _, k := range sortedKeys(l.Metadata) {
			fmt.Fprintf(&b, " %s=%s", k, strconv.Quote(l.Metadata[k]))
		}
		b.WriteString(" {\n")
		for _, s := range l.Syllables {
			fmt.Fprintf(&b, "    %s %s %s\n", strconv.Quote(s.Content), FormatTimestamp(s.StartMs), FormatTimestamp(s.EndMs))
		}
		b.WriteString("  }\n")
	}
	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}
