package lyrics

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Syllable is the smallest timed unit of lyric text.
type Syllable struct {
	Content string `json:"content"`
	StartMs int64  `json:"startMs"`
	EndMs   int64  `json:"endMs"`
}

// Duration returns the syllable length in milliseconds, floored to 1 so progress math
// never divides by zero.
func (s Syllable) Duration() int64 {
	return max(s.EndMs-s.StartMs, 1)
}

// Alignment is the authored horizontal placement of a line.
type Alignment int

const (
	AlignUnspecified Alignment = iota
	AlignStart
	AlignCenter
	AlignEnd
)

func (a Alignment) String() string {
	switch a {
	case AlignStart:
		return "start"
	case AlignCenter:
		return "center"
	case AlignEnd:
		return "end"
	default:
		return "unspecified"
	}
}

// ParseAlignment accepts start/left, center, end/right and the empty string.
func ParseAlignment(s string) (Alignment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unspecified":
		return AlignUnspecified, nil
	case "start", "left":
		return AlignStart, nil
	case "center", "centre":
		return AlignCenter, nil
	case "end", "right":
		return AlignEnd, nil
	}
	return AlignUnspecified, fmt.Errorf("unknown alignment %q", s)
}

func (a Alignment) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Alignment) UnmarshalText(b []byte) error {
	v, err := ParseAlignment(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Line is an ordered run of syllables highlighted together. Lines are shared across many
// ticks and must be treated as immutable; the With* methods return modified copies.
type Line struct {
	Syllables       []Syllable        `json:"syllables"`
	StartMs         int64             `json:"startMs"`
	EndMs           int64             `json:"endMs"`
	IsAccompaniment bool              `json:"isAccompaniment,omitempty"`
	Alignment       Alignment         `json:"alignment"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// NewLine copies syllables and derives the line bounds from the first and last syllable.
func NewLine(syllables []Syllable, align Alignment, accompaniment bool, metadata map[string]string) Line {
	l := Line{
		Syllables:       slices.Clone(syllables),
		IsAccompaniment: accompaniment,
		Alignment:       align,
		Metadata:        maps.Clone(metadata),
	}
	return l.normalized()
}

func (l Line) normalized() Line {
	if len(l.Syllables) == 0 {
		l.StartMs, l.EndMs = 0, 0
		return l
	}
	l.StartMs = l.Syllables[0].StartMs
	l.EndMs = l.Syllables[len(l.Syllables)-1].EndMs
	return l
}

// Duration mirrors Syllable.Duration for the whole line.
func (l Line) Duration() int64 {
	return max(l.EndMs-l.StartMs, 1)
}

// Text concatenates the syllable contents.
func (l Line) Text() string {
	var b strings.Builder
	for _, s := range l.Syllables {
		b.WriteString(s.Content)
	}
	return b.String()
}

func (l Line) WithSyllables(syllables []Syllable) Line {
	l.Syllables = slices.Clone(syllables)
	l.Metadata = maps.Clone(l.Metadata)
	return l.normalized()
}

func (l Line) WithAlignment(a Alignment) Line {
	l.Syllables = slices.Clone(l.Syllables)
	l.Metadata = maps.Clone(l.Metadata)
	l.Alignment = a
	return l
}

func (l Line) WithAccompaniment(v bool) Line {
	l.Syllables = slices.Clone(l.Syllables)
	l.Metadata = maps.Clone(l.Metadata)
	l.IsAccompaniment = v
	return l
}

// WithMetadata returns a copy with key set to value.
func (l Line) WithMetadata(key, value string) Line {
	l.Syllables = slices.Clone(l.Syllables)
	md := make(map[string]string, len(l.Metadata)+1)
	maps.Copy(md, l.Metadata)
	md[key] = value
	l.Metadata = md
	return l
}

// Song groups the lines of one set of loaded lyrics.
type Song struct {
	ID       string            `json:"id"`
	Title    string            `json:"title,omitempty"`
	Lines    []Line            `json:"lines"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// NewSong normalizes every line and assigns a fresh id when none is given.
func NewSong(id, title string, lines []Line, metadata map[string]string) Song {
	if id == "" {
		id = uuid.NewString()
	}
	out := make([]Line, len(lines))
	for i, l := range lines {
		out[i] = l.WithSyllables(l.Syllables)
	}
	return Song{ID: id, Title: title, Lines: out, Metadata: maps.Clone(metadata)}
}
