// Package trajectory drives the encounter solver to extend a vessel's
// predicted Path up to a bounded number of SOI transitions ahead,
// splicing each new Orbit in behind the last.
package trajectory

import (
	"github.com/orbitalcombat/simcore/encounter"
	"github.com/orbitalcombat/simcore/entity"
	"github.com/orbitalcombat/simcore/path"
	"github.com/orbitalcombat/simcore/segment"
)

// DefaultMaxEncounters is how many predicted segments recompute keeps
// past the most recent manoeuvre.
const DefaultMaxEncounters = 3

// DefaultHorizon is the far time bound handed to the encounter solver on
// each iteration.
const DefaultHorizon = 1e10

// World is the narrow read surface trajectory needs from the entity
// store, kept independent of package model to avoid an import cycle
// (model imports trajectory, not the reverse).
type World interface {
	Mass(e entity.Entity) float64
	SphereOfInfluence(e entity.Entity) float64
	Grandparent(e entity.Entity) entity.Entity
	Siblings(parent, exclude entity.Entity) []encounter.Sibling
	// StateAtTime returns e's position/velocity relative to e's own
	// parent at absolute time t (zero for a stationary root body).
	StateAtTime(e entity.Entity, t float64) segment.Point
}

// RecomputeTrajectory ensures p has at least maxEncounters predicted
// Orbit segments past its most recent non-orbit segment, repeatedly
// calling the encounter solver on the trailing Orbit and splicing in the
// result. Already-predicted trailing orbits count toward the target, so
// re-invoking on an unchanged path is cheap rather than extending the
// plan further every call. If the trailing segment is not an Orbit (a
// manoeuvre is still pending re-prediction) this is a no-op; callers
// always leave the tail on an Orbit before invoking recompute.
func RecomputeTrajectory(child entity.Entity, p *path.Path, world World, maxEncounters int) {
	// The freshly-appended final orbit has zero duration, hence the +1.
	toPredict := maxEncounters + 1 - trailingOrbitCount(p)
	for i := 0; i < toPredict; i++ {
		future := p.FutureSegments()
		if len(future) == 0 {
			return
		}
		last, ok := future[len(future)-1].(*segment.Orbit)
		if !ok {
			return
		}
		if last.EndTime() == DefaultHorizon {
			// A vessel with no encounters at all would otherwise rediscover
			// the same horizon-bounded orbit on every call.
			return
		}

		parent := last.Parent()
		parentSOI := world.SphereOfInfluence(parent)
		grandparent := world.Grandparent(parent)
		siblings := world.Siblings(parent, child)

		enc := encounter.Solve(child, last, parentSOI, grandparent, siblings, last.StartTime(), DefaultHorizon)
		if enc == nil {
			last.EndAt(DefaultHorizon)
			return
		}

		// On exit, the offset needed is the old parent's position relative
		// to ITS parent (the grandparent), i.e. StateAtTime(parent, ...).
		// On entrance, it's the new sibling's position relative to the
		// (shared) old parent, i.e. StateAtTime(enc.NewParent, ...).
		entering := enc.Type == encounter.TypeEntrance
		frameSource := parent
		if entering {
			frameSource = enc.NewParent
		}
		newParentMass := world.Mass(enc.NewParent)
		newParentState := world.StateAtTime(frameSource, enc.Time)

		next := encounter.Apply(enc, last, newParentMass, newParentState, entering)
		p.AddSegment(next)
	}
}

// trailingOrbitCount counts the contiguous run of Orbit segments at the
// end of the future plan (the already-predicted lookahead past the most
// recent non-orbit segment).
func trailingOrbitCount(p *path.Path) int {
	future := p.FutureSegments()
	n := 0
	for i := len(future) - 1; i >= 0; i-- {
		if _, ok := future[i].(*segment.Orbit); !ok {
			break
		}
		n++
	}
	return n
}

// RecomputeEntireTrajectory discards every future segment after the
// vessel's current segment and rebuilds the prediction from scratch,
// starting from the current segment's current state. Used when a past
// manoeuvre is adjusted or deleted and the whole downstream plan is
// stale.
func RecomputeEntireTrajectory(child entity.Entity, p *path.Path, world World, maxEncounters int) {
	current := p.Current()
	if current == nil {
		return
	}
	fresh := segment.NewOrbit(current.Parent(), current.CurrentMass(), world.Mass(current.Parent()), current.CurrentPosition(), current.CurrentVelocity(), current.CurrentTime())
	p.RemoveSegmentsAfter(current.CurrentTime())
	p.AddSegment(fresh)
	RecomputeTrajectory(child, p, world, maxEncounters)
}

// NextOrbit is the read-only counterpart to RecomputeTrajectory's
// per-step splice, used by package snapshot to materialise a perceived
// path without mutating the real one: given a trailing Orbit, returns
// the next Orbit an observer without manoeuvre intel would predict, or
// nil if none occurs before DefaultHorizon.
func NextOrbit(child entity.Entity, last *segment.Orbit, world World) *segment.Orbit {
	parent := last.Parent()
	parentSOI := world.SphereOfInfluence(parent)
	grandparent := world.Grandparent(parent)
	siblings := world.Siblings(parent, child)

	enc := encounter.Solve(child, last, parentSOI, grandparent, siblings, last.StartTime(), DefaultHorizon)
	if enc == nil {
		return nil
	}

	entering := enc.Type == encounter.TypeEntrance
	frameSource := parent
	if entering {
		frameSource = enc.NewParent
	}
	newParentMass := world.Mass(enc.NewParent)
	newParentState := world.StateAtTime(frameSource, enc.Time)

	clone := segment.NewOrbit(last.Parent(), last.MassAtTime(last.StartTime()), world.Mass(last.Parent()), last.StartPosition(), last.StartVelocity(), last.StartTime())
	return encounter.Apply(enc, clone, newParentMass, newParentState, entering)
}
