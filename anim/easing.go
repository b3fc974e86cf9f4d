package anim

import (
	"fmt"
	"math"
	"strings"
)

// Style selects an easing curve. Every curve starts and ends at 0 so an effect settles
// back to rest when its window closes.
type Style int

const (
	Simple Style = iota
	Bounce
	Swell
	DipAndRise
)

var styleNames = [...]string{
	Simple:     "simple",
	Bounce:     "bounce",
	Swell:      "swell",
	DipAndRise: "dip-and-rise",
}

var easings = [...]func(float64) float64{
	Simple:     easeSimple,
	Bounce:     easeBounce,
	Swell:      easeSwell,
	DipAndRise: easeDipAndRise,
}

func (s Style) String() string {
	if s < 0 || int(s) >= len(styleNames) {
		return styleNames[Simple]
	}
	return styleNames[s]
}

func (s Style) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Style) UnmarshalText(b []byte) error {
	v, err := ParseStyle(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseStyle maps a configuration name to a Style. The empty string is Simple.
func ParseStyle(name string) (Style, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return Simple, nil
	}
	n = strings.ReplaceAll(n, "_", "-")
	for i, s := range styleNames {
		if s == n {
			return Style(i), nil
		}
	}
	return Simple, fmt.Errorf("unknown easing style %q", name)
}

// Ease evaluates the curve at p, clamped to [0, 1]. Unknown styles fall back to Simple.
func Ease(s Style, p float64) float64 {
	p = clamp01(p)
	if s < 0 || int(s) >= len(easings) {
		s = Simple
	}
	return easings[s](p)
}

func easeSimple(p float64) float64 { return math.Sin(math.Pi * p) }

// two humps, the second one smaller
func easeBounce(p float64) float64 {
	return math.Abs(math.Sin(2*math.Pi*p)) * (1 - p/2)
}

func easeSwell(p float64) float64 {
	s := math.Sin(math.Pi * p)
	return s * s
}

func easeDipAndRise(p float64) float64 {
	const dip = 0.2
	if p < dip {
		return -0.3 * math.Sin(math.Pi*p/dip)
	}
	return math.Sin(math.Pi * (p - dip) / (1 - dip))
}

func clamp01(v float64) float64 {
	if v != v {
		return 0
	}
	return min(max(v, 0), 1)
}
