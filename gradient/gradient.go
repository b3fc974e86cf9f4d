// Package gradient computes the horizontal sung/unsung colour sweep of a laid-out row.
package gradient

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/lchau1017/KaraokeLyrics-sub001/layout"
	"github.com/lchau1017/KaraokeLyrics-sub001/timing"
)

// FadeBand is half the width of the soft edge between sung and unsung colour, as a
// fraction of the row width.
const FadeBand = 0.02

// Stop is one colour stop of a horizontal gradient across a row.
type Stop struct {
	Offset float64
	Color  colorful.Color
}

type stopJSON struct {
	Offset float64 `json:"offset"`
	Color  string  `json:"color"`
}

func (s Stop) MarshalJSON() ([]byte, error) {
	return json.Marshal(stopJSON{Offset: s.Offset, Color: s.Color.Clamped().Hex()})
}

func (s *Stop) UnmarshalJSON(b []byte) error {
	var v stopJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	c, err := colorful.Hex(v.Color)
	if err != nil {
		return fmt.Errorf("gradient stop colour: %w", err)
	}
	s.Offset, s.Color = v.Offset, c
	return nil
}

// Spec describes the gradient for one row. Progress is the sweep position in [0, 1]
// measured from the left edge.
type Spec struct {
	Progress float64 `json:"progress"`
	Flat     bool    `json:"flat"`
	Stops    []Stop  `json:"stops"`
}

// Flat returns a single-colour gradient.
func Flat(c colorful.Color) Spec {
	return Spec{Flat: true, Stops: []Stop{{0, c}, {1, c}}}
}

// ComputeSweep places the sweep inside row at nowMs. Rows that are not being sung
// (empty, not started, or fully sung) get a flat inactive gradient.
func ComputeSweep(row []layout.PositionedSyllable, nowMs int64, rtl bool, active, inactive colorful.Color) Spec {
	if len(row) == 0 {
		return Flat(inactive)
	}
	minX, maxX := math.Inf(1), math.Inf(-1)
	first, last := row[0].Syllable.StartMs, row[0].Syllable.EndMs
	for _, ps := range row {
		minX = math.Min(minX, ps.Position.X)
		maxX = math.Max(maxX, ps.Position.X+ps.Width)
		first = min(first, ps.Syllable.StartMs)
		last = max(last, ps.Syllable.EndMs)
	}
	width := maxX - minX
	if width <= 0 || nowMs < first || nowMs >= last {
		return Flat(inactive)
	}

	x, ok := sweepX(row, nowMs, rtl)
	if !ok {
		x = minX
		if rtl {
			x = maxX
		}
	}
	p := clamp01((x - minX) / width)

	sung, unsung := active, inactive
	if rtl {
		sung, unsung = inactive, active
	}
	return Spec{
		Progress: p,
		Stops: []Stop{
			{0, sung},
			{clamp01(p - FadeBand), sung},
			{clamp01(p + FadeBand), unsung},
			{1, unsung},
		},
	}
}

// ForRow computes the gradient of one row of a line. While the line is still being sung,
// a row whose syllables have all ended keeps the active colour; once the line is no
// longer active its rows fall back to ComputeSweep's flat inactive gradient.
func ForRow(row []layout.PositionedSyllable, nowMs int64, lineActive, rtl bool, active, inactive colorful.Color) Spec {
	if lineActive && len(row) > 0 && nowMs >= rowEnd(row) {
		return Flat(active)
	}
	return ComputeSweep(row, nowMs, rtl, active, inactive)
}

func rowEnd(row []layout.PositionedSyllable) int64 {
	end := row[0].Syllable.EndMs
	for _, ps := range row[1:] {
		end = max(end, ps.Syllable.EndMs)
	}
	return end
}

// sweepX finds the sweep position: inside the syllable being sung, or at the trailing
// edge of the most recently completed one when between syllables.
func sweepX(row []layout.PositionedSyllable, nowMs int64, rtl bool) (float64, bool) {
	var done *layout.PositionedSyllable
	for i := range row {
		ps := &row[i]
		s := ps.Syllable
		if nowMs >= s.StartMs && nowMs < s.EndMs {
			p := timing.SyllableProgress(s, nowMs)
			if rtl {
				return ps.Position.X + ps.Width*(1-p), true
			}
			return ps.Position.X + ps.Width*p, true
		}
		if s.EndMs <= nowMs && (done == nil || s.EndMs >= done.Syllable.EndMs) {
			done = ps
		}
	}
	if done == nil {
		return 0, false
	}
	if rtl {
		return done.Position.X, true
	}
	return done.Position.X + done.Width, true
}

// ColorAt blends the two stops surrounding offset in CIE-Lab space.
func (s Spec) ColorAt(offset float64) colorful.Color {
	if len(s.Stops) == 0 {
		return colorful.Color{}
	}
	offset = clamp01(offset)
	if offset <= s.Stops[0].Offset {
		return s.Stops[0].Color
	}
	for i := 1; i < len(s.Stops); i++ {
		a, b := s.Stops[i-1], s.Stops[i]
		if offset > b.Offset {
			continue
		}
		span := b.Offset - a.Offset
		if span <= 0 || offset == b.Offset || a.Color == b.Color {
			return b.Color
		}
		return a.Color.BlendLab(b.Color, (offset-a.Offset)/span).Clamped()
	}
	return s.Stops[len(s.Stops)-1].Color
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}
