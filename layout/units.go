package layout

import (
	"strconv"
	"strings"
)

// This file defines unit-safe lengths used for font sizes and row heights in config and
// lyric scripts. Layout itself works in pixels.

// Unit represents the original unit of a length value.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers, treated as pixels
	UnitPX
	UnitPT
	UnitEM // relative to the base font size
	UnitMM
)

// Conversion constants at the CSS reference density of 96 px per inch.
const (
	PtToPx = 96.0 / 72.0
	MmToPx = 96.0 / 25.4
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitPX:
		return "px"
	case UnitPT:
		return "pt"
	case UnitEM:
		return "em"
	case UnitMM:
		return "mm"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// ToPx converts to pixels; base is the font size em lengths are relative to.
func (l Length) ToPx(base float64) float64 {
	switch l.Unit {
	case UnitPT:
		return l.Value * PtToPx
	case UnitEM:
		return l.Value * base
	case UnitMM:
		return l.Value * MmToPx
	default:
		return l.Value
	}
}

func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + UnitToString(l.Unit)
}

// ParseLength parses strings like "32px", "24pt", "1.5em" or "40". Invalid input yields
// a zero length.
func ParseLength(value string) Length {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}
	}
	unit := UnitNone
	num := v
	for _, suf := range []struct {
		s string
		u Unit
	}{{"px", UnitPX}, {"pt", UnitPT}, {"em", UnitEM}, {"mm", UnitMM}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}
	}
	return Length{Value: f, Unit: unit}
}
