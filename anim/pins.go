package anim

import (
	"github.com/mitchellh/hashstructure/v2"
	"golang.org/x/text/unicode/norm"
)

// Key identifies one animated character (or a syllable, with Char == -1) across ticks.
type Key struct {
	Line    int    `json:"line"`
	StartMs int64  `json:"startMs"`
	EndMs   int64  `json:"endMs"`
	Content uint64 `json:"content"`
	Char    int    `json:"char"`
}

// ContentHash fingerprints text after NFC normalization, so composed and decomposed
// forms of the same syllable share pins.
func ContentHash(content string) uint64 {
	h, err := hashstructure.Hash(norm.NFC.String(content), hashstructure.FormatV2, nil)
	if err != nil {
		return 0
	}
	return h
}

// Pins records the tick at which each character first became eligible to animate.
// An entry is written once and never overwritten, so a late or stalled first tick
// still plays the animation from its beginning. Pins is owned by a single update
// loop and is not safe for concurrent use.
type Pins struct {
	m map[Key]int64
}

func NewPins() *Pins { return &Pins{m: map[Key]int64{}} }

// Pin returns the recorded start for key, recording nowMs if there is none yet.
func (p *Pins) Pin(key Key, nowMs int64) int64 {
	if p.m == nil {
		p.m = map[Key]int64{}
	}
	if v, ok := p.m[key]; ok {
		return v
	}
	p.m[key] = nowMs
	return nowMs
}

func (p *Pins) Lookup(key Key) (int64, bool) {
	v, ok := p.m[key]
	return v, ok
}

// Sweep drops pins whose element ended more than maxAgeMs before nowMs, and pins
// recorded after nowMs (the clock was seeked backwards). A pin of an element that is
// still running survives however old it is. It returns the number removed.
func (p *Pins) Sweep(nowMs, maxAgeMs int64) int {
	n := 0
	for k, v := range p.m {
		if nowMs-k.EndMs > maxAgeMs || v > nowMs {
			delete(p.m, k)
			n++
		}
	}
	return n
}

func (p *Pins) Len() int { return len(p.m) }

func (p *Pins) Reset() { clear(p.m) }
