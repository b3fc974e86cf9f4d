// Package visual maps a line's timing state to opacity, scale and blur.
package visual

import (
	"fmt"
	"math"
	"strings"

	"github.com/lchau1017/KaraokeLyrics-sub001/timing"
)

// Props are the presentation properties of one line at one tick.
type Props struct {
	Opacity float64 `json:"opacity"`
	Scale   float64 `json:"scale"`
	Blur    float64 `json:"blur"`
}

// DecayPreset selects how a Recent line fades.
type DecayPreset int

const (
	DecayStepped DecayPreset = iota
	DecayContinuous
)

func (d DecayPreset) String() string {
	if d == DecayContinuous {
		return "continuous"
	}
	return "stepped"
}

func (d DecayPreset) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func ParseDecayPreset(s string) (DecayPreset, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "stepped":
		return DecayStepped, nil
	case "continuous":
		return DecayContinuous, nil
	}
	return DecayStepped, fmt.Errorf("unknown decay preset %q", s)
}

// Step holds Factor × ActiveOpacity while the elapsed share of the decay window is
// below Until.
type Step struct {
	Until  float64 `json:"until" yaml:"until"`
	Factor float64 `json:"factor" yaml:"factor"`
}

// Tiers is the full table of visual values per timing state.
type Tiers struct {
	ActiveOpacity float64
	ActiveScale   float64
	IdleScale     float64

	RecentDecay   DecayPreset
	RecentDecayMs int64
	RecentSteps   []Step
	PlayedFloor   float64

	// UpcomingOpacity[i] applies to distance bucket i+1; later buckets use UpcomingFloor.
	UpcomingOpacity []float64
	UpcomingFloor   float64

	EnableBlur     bool
	BlurFromBucket int
	BlurStep       float64
	MaxBlur        float64

	PastOpacity float64
}

func DefaultTiers() Tiers {
	return Tiers{
		ActiveOpacity:   1.0,
		ActiveScale:     1.05,
		IdleScale:       1.0,
		RecentDecay:     DecayStepped,
		RecentDecayMs:   1000,
		RecentSteps:     []Step{{1.0 / 3, 0.8}, {2.0 / 3, 0.6}, {1, 0.5}},
		PlayedFloor:     0.25,
		UpcomingOpacity: []float64{0.6, 0.45, 0.35},
		UpcomingFloor:   0.25,
		EnableBlur:      true,
		BlurFromBucket:  4,
		BlurStep:        1.5,
		MaxBlur:         4,
		PastOpacity:     0.25,
	}
}

// Decide looks up the properties for a line. distance and far come from the timing
// context of upcoming lines; msSincePlayed is the time since the line ended.
func Decide(state timing.State, distance int, far bool, msSincePlayed int64, t Tiers) Props {
	idle := t.IdleScale
	if idle == 0 {
		idle = 1
	}
	switch state {
	case timing.Active:
		return Props{Opacity: t.ActiveOpacity, Scale: t.ActiveScale}
	case timing.Recent:
		return Props{Opacity: recentOpacity(msSincePlayed, t), Scale: idle}
	case timing.Past:
		return Props{Opacity: t.PastOpacity, Scale: idle}
	}

	p := Props{Opacity: t.UpcomingFloor, Scale: idle}
	if !far && distance >= 1 && distance <= len(t.UpcomingOpacity) {
		p.Opacity = t.UpcomingOpacity[distance-1]
	}
	if t.EnableBlur && t.BlurFromBucket > 0 && distance >= t.BlurFromBucket {
		p.Blur = min(float64(distance-t.BlurFromBucket+1)*t.BlurStep, t.MaxBlur)
	}
	return p
}

func recentOpacity(ms int64, t Tiers) float64 {
	window := t.RecentDecayMs
	if window <= 0 {
		return t.PlayedFloor
	}
	if t.RecentDecay == DecayContinuous {
		start := 0.8 * t.ActiveOpacity
		v := t.PlayedFloor + (start-t.PlayedFloor)*math.Exp(-3*float64(ms)/float64(window))
		return max(v, t.PlayedFloor)
	}
	frac := float64(max(ms, 0)) / float64(window)
	for _, s := range t.RecentSteps {
		if frac < s.Until {
			return max(s.Factor*t.ActiveOpacity, t.PlayedFloor)
		}
	}
	return t.PlayedFloor
}
