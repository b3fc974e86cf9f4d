package frame

import "sync/atomic"

// Publisher hands frames from the update loop to readers (a render goroutine, an HTTP
// handler). A frame from an older song generation never replaces a newer one.
type Publisher struct {
	cur atomic.Pointer[Frame]
}

// Publish stores f unless a frame of a newer generation is already published.
func (p *Publisher) Publish(f *Frame) bool {
	if f == nil {
		return false
	}
	for {
		old := p.cur.Load()
		if old != nil && old.Generation > f.Generation {
			return false
		}
		if p.cur.CompareAndSwap(old, f) {
			return true
		}
	}
}

// Latest returns the most recently published frame, or nil.
func (p *Publisher) Latest() *Frame { return p.cur.Load() }
