package frame

import "github.com/charmbracelet/harmonica"

// Scroller smooths the view's vertical offset toward the scroll target with a damped
// spring. One Step is one frame at the configured fps.
type Scroller struct {
	spring  harmonica.Spring
	pos     float64
	vel     float64
	started bool
}

func NewScroller(fps int, frequency, damping float64) *Scroller {
	if fps <= 0 {
		fps = 60
	}
	if frequency <= 0 {
		frequency = 6
	}
	if damping <= 0 {
		damping = 1
	}
	return &Scroller{spring: harmonica.NewSpring(harmonica.FPS(fps), frequency, damping)}
}

// Step advances one frame toward target. The first step after a reset jumps there.
func (s *Scroller) Step(target float64) float64 {
	if !s.started {
		s.Jump(target)
		return s.pos
	}
	s.pos, s.vel = s.spring.Update(s.pos, s.vel, target)
	return s.pos
}

func (s *Scroller) Jump(target float64) {
	s.pos, s.vel, s.started = target, 0, true
}

func (s *Scroller) Reset() {
	s.pos, s.vel, s.started = 0, 0, false
}
