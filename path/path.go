// Package path implements the Path component: a deque of Segments split
// into past (finished) and future (pending/current) halves. Only the
// future half is ever mutated; past segments are append-only history.
package path

import (
	"fmt"

	"github.com/orbitalcombat/simcore/segment"
)

// Path holds a vessel's trajectory as two ordered slices of Segment:
// past segments are immutable history, future segments are the pending
// plan with index 0 always the currently active segment.
type Path struct {
	pastSegments   []segment.Segment
	futureSegments []segment.Segment
}

// New returns an empty Path; the first segment (always an Orbit) must
// be added with AddSegment before ticking.
func New() *Path {
	return &Path{}
}

// Restore rebuilds a Path from previously reconstructed past/future
// segment slices, used by package persist when loading a saved Model:
// the segments themselves are rebuilt by persist from their recorded
// construction parameters, and this just re-assembles the split deque
// around them.
func Restore(pastSegments, futureSegments []segment.Segment) *Path {
	return &Path{pastSegments: pastSegments, futureSegments: futureSegments}
}

// PastSegments returns the immutable finished history, oldest first.
func (p *Path) PastSegments() []segment.Segment { return p.pastSegments }

// FutureSegments returns the pending plan, current segment first.
func (p *Path) FutureSegments() []segment.Segment { return p.futureSegments }

// Current returns the active segment, or nil if the path is empty.
func (p *Path) Current() segment.Segment {
	if len(p.futureSegments) == 0 {
		return nil
	}
	return p.futureSegments[0]
}

// AddSegment appends a new segment to the end of the future plan.
func (p *Path) AddSegment(s segment.Segment) {
	p.futureSegments = append(p.futureSegments, s)
}

// RemoveSegmentsAfter discards every future segment starting at or after
// time t. A non-Orbit segment may never be split mid-manoeuvre: if t falls
// strictly inside a Burn, Turn, or Guidance segment this panics rather
// than silently truncating a manoeuvre.
func (p *Path) RemoveSegmentsAfter(t float64) {
	cut := len(p.futureSegments)
	for i, s := range p.futureSegments {
		if s.StartTime() >= t {
			cut = i
			break
		}
		if typed, ok := s.(segment.Typed); ok && typed.Kind() != segment.KindOrbit {
			if t > s.StartTime() && t < s.EndTime() {
				panic(fmt.Sprintf("path: cannot split non-orbit segment (kind %d) at time %v", typed.Kind(), t))
			}
		}
	}
	p.futureSegments = p.futureSegments[:cut]
	if len(p.futureSegments) > 0 {
		if orb, ok := p.futureSegments[len(p.futureSegments)-1].(interface{ EndAt(float64) }); ok {
			orb.EndAt(t)
		}
	}
}

// TruncateAfter discards every future segment strictly after s, keeping s
// itself. s must currently be one of the future segments. Used when an
// already-spliced manoeuvre is adjusted in place and everything predicted
// downstream of its (now-stale) end state must be rebuilt, without the
// "never split a non-orbit segment" restriction RemoveSegmentsAfter
// enforces getting in the way of discarding a manoeuvre's own successors.
func (p *Path) TruncateAfter(s segment.Segment) {
	for i, seg := range p.futureSegments {
		if seg == s {
			p.futureSegments = p.futureSegments[:i+1]
			return
		}
	}
}

// FutureSegmentAtTime returns the first future segment whose
// [StartTime, EndTime] window contains t, or nil if none does. The end
// bound is inclusive so an exact boundary time resolves to the earlier
// of the two adjacent segments.
func (p *Path) FutureSegmentAtTime(t float64) segment.Segment {
	for _, s := range p.futureSegments {
		if t >= s.StartTime() && t <= s.EndTime() {
			return s
		}
	}
	return nil
}

// FutureSegmentStartingAtTime returns the future segment whose StartTime
// exactly equals t, or nil if none does.
func (p *Path) FutureSegmentStartingAtTime(t float64) segment.Segment {
	for _, s := range p.futureSegments {
		if s.StartTime() == t {
			return s
		}
	}
	return nil
}

// OnSegmentFinished pops the current segment into past history and
// advances the new current segment's clock by the popped segment's
// overshoot (carrying clock drift forward rather than losing or
// double-counting it). Returns false if there was no current segment or
// it had not finished.
func (p *Path) OnSegmentFinished(t float64) bool {
	if len(p.futureSegments) == 0 {
		return false
	}
	current := p.futureSegments[0]
	if !current.IsFinished() {
		return false
	}
	overshoot := current.OvershotTime(t)
	p.pastSegments = append(p.pastSegments, current)
	p.futureSegments = p.futureSegments[1:]
	if len(p.futureSegments) > 0 {
		p.futureSegments[0].Next(overshoot)
	}
	return true
}

