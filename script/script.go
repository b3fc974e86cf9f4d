// Package script classifies lyric text by writing system. Every function here is pure.
package script

import "unicode"

// Script is the dominant writing system of a piece of text.
type Script int

const (
	Latin Script = iota
	CJK
	Arabic
	Devanagari
	Hebrew
)

func (s Script) String() string {
	switch s {
	case CJK:
		return "cjk"
	case Arabic:
		return "arabic"
	case Devanagari:
		return "devanagari"
	case Hebrew:
		return "hebrew"
	default:
		return "latin"
	}
}

type runeRange struct{ lo, hi rune }

var cjkRanges = []runeRange{
	{0x3000, 0x303F},   // symbols and punctuation
	{0x3040, 0x309F},   // hiragana
	{0x30A0, 0x30FF},   // katakana
	{0x31F0, 0x31FF},   // katakana phonetic extensions
	{0x3300, 0x33FF},   // compatibility
	{0x3400, 0x4DBF},   // extension A
	{0x4E00, 0x9FFF},   // unified ideographs
	{0xF900, 0xFAFF},   // compatibility ideographs
	{0xFE30, 0xFE4F},   // compatibility forms
	{0x1F200, 0x1F2FF}, // enclosed ideographic supplement
	{0x20000, 0x2EBEF}, // extensions B-F
	{0x2F800, 0x2FA1F}, // compatibility ideographs supplement
}

var arabicRanges = []runeRange{
	{0x0600, 0x06FF},
	{0x0750, 0x077F},
	{0x08A0, 0x08FF},
	{0xFB50, 0xFDFF},
	{0xFE70, 0xFEFF},
}

var devanagariRanges = []runeRange{
	{0x0900, 0x097F},
	{0xA8E0, 0xA8FF},
}

var hebrewRanges = []runeRange{
	{0x0590, 0x05FF},
	{0xFB1D, 0xFB4F},
}

func inRanges(r rune, ranges []runeRange) bool {
	for _, rg := range ranges {
		if r >= rg.lo && r <= rg.hi {
			return true
		}
	}
	return false
}

// IsCJK reports whether r lies in one of the CJK blocks.
func IsCJK(r rune) bool { return inRanges(r, cjkRanges) }

func IsArabic(r rune) bool { return inRanges(r, arabicRanges) }

func IsDevanagari(r rune) bool { return inRanges(r, devanagariRanges) }

func IsHebrew(r rune) bool { return inRanges(r, hebrewRanges) }

// IsPunctuation reports whether every rune of text is ASCII punctuation or in the
// Unicode "other punctuation" category. Empty text is not punctuation.
func IsPunctuation(text string) bool {
	if text == "" {
		return false
	}
	for _, r := range text {
		if r < 0x80 && isASCIIPunct(r) {
			continue
		}
		if unicode.Is(unicode.Po, r) {
			continue
		}
		return false
	}
	return true
}

func isASCIIPunct(r rune) bool {
	return (r >= '!' && r <= '/') || (r >= ':' && r <= '@') || (r >= '[' && r <= '`') || (r >= '{' && r <= '~')
}

// IsPureCJK reports whether every rune of a non-empty text is CJK.
func IsPureCJK(text string) bool {
	if text == "" {
		return false
	}
	for _, r := range text {
		if !IsCJK(r) {
			return false
		}
	}
	return true
}

// IsRTL reports whether text contains any Arabic or Hebrew rune.
func IsRTL(text string) bool {
	for _, r := range text {
		if IsArabic(r) || IsHebrew(r) {
			return true
		}
	}
	return false
}

// Classify picks the script of text: CJK wins over Arabic, then Devanagari, then Hebrew.
func Classify(text string) Script {
	var arabic, devanagari, hebrew bool
	for _, r := range text {
		switch {
		case IsCJK(r):
			return CJK
		case IsArabic(r):
			arabic = true
		case IsDevanagari(r):
			devanagari = true
		case IsHebrew(r):
			hebrew = true
		}
	}
	switch {
	case arabic:
		return Arabic
	case devanagari:
		return Devanagari
	case hebrew:
		return Hebrew
	}
	return Latin
}
