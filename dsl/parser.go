package dsl

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	dslLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Time", Pattern: `\d+:\d{1,2}(?:\.\d{1,3})?`},
		{Name: "Number", Pattern: `\d+`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[=:;,]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	documentParser = participle.MustBuild[Document](
		participle.Lexer(dslLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
	)
)

// Document is the root AST node of a lyric script:
//
//	song "Title" {
//	  meta artist: "Someone"
//	  line align center {
//	    "Hel" 0 200
//	    "lo " 0:00.200 0:00.500
//	  }
//	}
type Document struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Title StringLiteral  `parser:"Newline* 'song' @String"`
	Items []*Item        `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}' Newline*"`
}

// Item is one top-level statement inside the song block.
type Item struct {
	Meta *Meta      `parser:"  @@"`
	Line *LineBlock `parser:"| @@"`
}

// Kind returns the human-readable item type.
func (it *Item) Kind() string {
	switch {
	case it == nil:
		return "unknown"
	case it.Meta != nil:
		return "meta"
	case it.Line != nil:
		return "line"
	default:
		return "unknown"
	}
}

// Meta is a song-level metadata assignment (`meta key: "value"`).
type Meta struct {
	Key   string        `parser:"'meta' @Ident"`
	Value StringLiteral `parser:"':' @String"`
}

// LineBlock is one lyric line with its header options and timed syllables.
type LineBlock struct {
	Pos       lexer.Position  `parser:"" json:"-"`
	Options   []*LineOption   `parser:"'line' @@*"`
	Syllables []*SyllableStmt `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// LineOption is a header token: `align <start|center|end>`, `bg`, or `key="value"`.
type LineOption struct {
	Align      *string `parser:"  'align' @Ident"`
	Background bool    `parser:"| @( 'bg' | 'accompaniment' )"`
	Attr       *Attr   `parser:"| @@"`
}

// Attr is a line metadata entry.
type Attr struct {
	Key   string        `parser:"@Ident"`
	Value StringLiteral `parser:"'=' @String"`
}

// SyllableStmt is `"text" start end`.
type SyllableStmt struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Text  StringLiteral  `parser:"@String"`
	Start Timestamp      `parser:"@( Time | Number )"`
	End   Timestamp      `parser:"@( Time | Number )"`
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Timestamp is a time in milliseconds, written either as an integer number of
// milliseconds or as m:ss(.mmm).
type Timestamp int64

// Capture implements participle.Capture.
func (t *Timestamp) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("timestamp capture requires value")
	}
	ms, err := ParseTimestamp(values[0])
	if err != nil {
		return err
	}
	*t = Timestamp(ms)
	return nil
}

// ParseTimestamp converts "1234", "1:02" or "1:02.5" to milliseconds.
func ParseTimestamp(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	minutes, rest, ok := strings.Cut(raw, ":")
	if !ok {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid timestamp %q: %w", raw, err)
		}
		return v, nil
	}
	m, err := strconv.ParseInt(minutes, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q: %w", raw, err)
	}
	secs, frac, _ := strings.Cut(rest, ".")
	s, err := strconv.ParseInt(secs, 10, 64)
	if err != nil || s >= 60 {
		return 0, fmt.Errorf("invalid timestamp %q: seconds out of range", raw)
	}
	ms := int64(0)
	if frac != "" {
		// .5 == 500ms, .05 == 50ms
		frac = (frac + "00")[:3]
		if ms, err = strconv.ParseInt(frac, 10, 64); err != nil {
			return 0, fmt.Errorf("invalid timestamp %q: %w", raw, err)
		}
	}
	return m*60_000 + s*1000 + ms, nil
}

// FormatTimestamp renders ms as m:ss.mmm.
func FormatTimestamp(ms int64) string {
	if ms < 0 {
		return strconv.FormatInt(ms, 10)
	}
	return fmt.Sprintf("%d:%02d.%03d", ms/60_000, ms/1000%60, ms%1000)
}

// Parse parses a lyric script from an io.Reader.
func Parse(r io.Reader) (*Document, error) {
	return documentParser.Parse("", r)
}

// ParseString parses a lyric script from a string.
func ParseString(input string) (*Document, error) {
	return documentParser.ParseString("", input)
}
