// Package snapshot provides a non-owning, observer-gated read view over
// a Model at one instant: a thin wrapper struct exposing read-only
// accessor methods over the shared owner, never copying state.
package snapshot

import (
	"github.com/orbitalcombat/simcore/entity"
	"github.com/orbitalcombat/simcore/model"
	"github.com/orbitalcombat/simcore/segment"
	"github.com/orbitalcombat/simcore/vector2"
)

// View answers every read query a renderer or AI controller needs at a
// fixed (time, observer) pair, substituting each hidden entity's
// perceived path for its real one.
type View struct {
	model    *model.Model
	time     float64
	observer *model.Faction // nil: omniscient, nothing is hidden
}

// New returns a View onto m at time, gated by observer. Pass a nil
// observer for an omniscient view (the renderer's free-camera / replay
// mode, or tests that need ground truth).
func New(m *model.Model, time float64, observer *model.Faction) *View {
	return &View{model: m, time: time, observer: observer}
}

// Time returns the instant this View is parameterised at.
func (v *View) Time() float64 { return v.time }

// hidden reports whether e's faction is concealed from this View's
// observer: the observer is set, e is a vessel, and e's faction differs.
func (v *View) hidden(e entity.Entity) bool {
	if v.observer == nil {
		return false
	}
	vessel, ok := v.model.Vessel(e)
	if !ok {
		return false // celestial bodies are never hidden
	}
	return vessel.Faction != *v.observer
}

// Position returns e's parent-relative position at this View's time: the
// real one if visible, the perceived (manoeuvre-blind) one if hidden.
func (v *View) Position(e entity.Entity) vector2.Vec2 {
	return v.point(e).Position
}

// Velocity returns e's parent-relative velocity, gated the same way as Position.
func (v *View) Velocity(e entity.Entity) vector2.Vec2 {
	return v.point(e).Velocity
}

// Mass returns e's instantaneous mass, gated the same way as Position.
func (v *View) Mass(e entity.Entity) float64 {
	return v.point(e).Mass
}

func (v *View) point(e entity.Entity) segment.Point {
	if v.hidden(e) {
		return v.model.PerceivedPointAtTime(e, v.time)
	}
	return v.model.StateAtTime(e, v.time)
}

// AbsolutePosition returns e's position in the stationary root's frame,
// recursively summing each ancestor's offset, substituting
// e's own perceived position (but never an ancestor's, since celestial
// bodies are never hidden) when e itself is concealed.
func (v *View) AbsolutePosition(e entity.Entity) vector2.Vec2 {
	pos, _ := v.absolute(e)
	return pos
}

// AbsoluteVelocity is AbsolutePosition's velocity counterpart.
func (v *View) AbsoluteVelocity(e entity.Entity) vector2.Vec2 {
	_, vel := v.absolute(e)
	return vel
}

func (v *View) absolute(e entity.Entity) (vector2.Vec2, vector2.Vec2) {
	here := v.point(e)
	parent := v.Parent(e)
	if parent.IsNil() {
		return here.Position, here.Velocity
	}
	parentPos, parentVel := v.model.AbsolutePositionVelocityAtTime(parent, v.time)
	return parentPos.Add(here.Position), parentVel.Add(here.Velocity)
}

// Parent returns e's immediate parent (the body its position/velocity
// are relative to): a vessel's current segment's parent, or a celestial
// body's fixed orbit's parent, or entity.Nil for the stationary root. A
// hidden vessel's parent is read off its perceived orbit chain rather
// than its real Path, since an observer without intel on a real SOI
// transition must not see the real post-transition parent either.
func (v *View) Parent(e entity.Entity) entity.Entity {
	if o, ok := v.model.Orbitable(e); ok {
		if o.Physics.Stationary {
			return entity.Nil
		}
		return o.Physics.Orbit.Parent()
	}
	if v.hidden(e) {
		orbits := v.model.PerceivedFutureOrbits(e)
		for _, o := range orbits {
			if v.time >= o.StartTime() && v.time < o.EndTime() {
				return o.Parent()
			}
		}
		if len(orbits) > 0 {
			return orbits[len(orbits)-1].Parent()
		}
		return entity.Nil
	}
	if p, ok := v.model.Path(e); ok {
		if s := p.FutureSegmentAtTime(v.time); s != nil {
			return s.Parent()
		}
		if c := p.Current(); c != nil {
			return c.Parent()
		}
	}
	return entity.Nil
}

// Fuel returns e's remaining fuel mass, or (0, false) if e is hidden
// from this View's observer: revealing a hidden vessel's fuel load
// would leak intel on its remaining manoeuvre budget.
func (v *View) Fuel(e entity.Entity) (float64, bool) {
	if v.hidden(e) {
		return 0, false
	}
	vessel, ok := v.model.Vessel(e)
	if !ok || vessel.FuelTank == nil {
		return 0, false
	}
	return vessel.FuelTank.MassKg, true
}

// Target returns e's locked target, or (entity.Nil, false) if e is
// hidden; revealing a hidden vessel's lock would leak its intent.
func (v *View) Target(e entity.Entity) (entity.Entity, bool) {
	if v.hidden(e) {
		return entity.Nil, false
	}
	vessel, ok := v.model.Vessel(e)
	if !ok || vessel.Target.IsNil() {
		return entity.Nil, false
	}
	return vessel.Target, true
}

// FutureSegments returns e's pending plan: the real one if visible, or
// the perceived coast-only orbit chain if hidden.
func (v *View) FutureSegments(e entity.Entity) []segment.Segment {
	if v.hidden(e) {
		orbits := v.model.PerceivedFutureOrbits(e)
		out := make([]segment.Segment, len(orbits))
		for i, o := range orbits {
			out[i] = o
		}
		return out
	}
	p, ok := v.model.Path(e)
	if !ok {
		return nil
	}
	return p.FutureSegments()
}

// FutureOrbits returns just the Orbit-kind segments of e's future plan,
// real or perceived.
func (v *View) FutureOrbits(e entity.Entity) []*segment.Orbit {
	if v.hidden(e) {
		return v.model.PerceivedFutureOrbits(e)
	}
	var out []*segment.Orbit
	p, ok := v.model.Path(e)
	if !ok {
		return nil
	}
	for _, s := range p.FutureSegments() {
		if o, ok := s.(*segment.Orbit); ok {
			out = append(out, o)
		}
	}
	return out
}

// Name forwards to the Model, never observer-gated (a vessel's display
// name is never treated as intel).
func (v *View) Name(e entity.Entity) string { return v.model.Name(e) }

// Vessels returns every vessel entity in the underlying Model, except
// ghost torpedoes, which are not real until their creating FireTorpedo
// event fires. Which of the rest are actually renderable to this View's
// observer is a rendering concern (typically: always render, but gate
// the detail level via the other accessors above), not something this
// query gates itself.
func (v *View) Vessels() []entity.Entity {
	var out []entity.Entity
	for _, e := range v.model.Vessels() {
		if vessel, ok := v.model.Vessel(e); ok && vessel.Ghost {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Orbitables forwards to the Model; celestial bodies are never gated.
func (v *View) Orbitables() []entity.Entity { return v.model.Orbitables() }
