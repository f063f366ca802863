package model

import (
	"errors"
	"math"

	"github.com/orbitalcombat/simcore/entity"
	"github.com/orbitalcombat/simcore/guidance"
	"github.com/orbitalcombat/simcore/path"
	"github.com/orbitalcombat/simcore/segment"
	"github.com/orbitalcombat/simcore/trajectory"
	"github.com/orbitalcombat/simcore/vector2"
)

// Resource-exhaustion / structural errors returned at command-creation
// time: the command layer is expected to check
// CanCreate* predicates first and never issue an impossible command, but
// ApplyCommand still reports the failure rather than panicking, since a
// rejected command is "cannot create manoeuvre" feedback, not a
// programmer error.
var (
	ErrUnknownEntity     = errors.New("model: unknown entity")
	ErrNotAVessel        = errors.New("model: entity has no Vessel component")
	ErrNoEngine          = errors.New("model: vessel has no engine")
	ErrNoFuelTank        = errors.New("model: vessel has no fuel tank")
	ErrNoRCS             = errors.New("model: vessel has no RCS")
	ErrNoLauncher        = errors.New("model: vessel has no torpedo launcher")
	ErrLauncherReloading = errors.New("model: torpedo launcher still reloading")
	ErrNoTorpedoes       = errors.New("model: vessel has no torpedoes remaining")
	ErrNoTarget          = errors.New("model: vessel has no target set")
	ErrNoTimelineEvent   = errors.New("model: no timeline event at that time")
	ErrNoCurrentSegment  = errors.New("model: vessel has no current segment")
	ErrInsideManoeuvre   = errors.New("model: cannot start a manoeuvre inside another manoeuvre")
)

// torpedoMassKg is the fixed mass assigned to a torpedo's own Vessel
// component; it belongs to the Torpedo vessel class, not to the
// launching ship's configuration.
const torpedoMassKg = 50.0

// CanCreateBurn reports whether e can accept a CreateBurn command.
func (m *Model) CanCreateBurn(e entity.Entity) bool {
	v, ok := m.vessels.Get(e)
	return ok && v.Engine != nil && v.FuelTank != nil && v.FuelTank.MassKg > 0
}

// CanCreateTurn reports whether e can accept a CreateTurn command.
func (m *Model) CanCreateTurn(e entity.Entity) bool {
	v, ok := m.vessels.Get(e)
	return ok && v.RCS != nil
}

// CanFireTorpedo reports whether e can accept a CreateFireTorpedo command.
func (m *Model) CanFireTorpedo(e entity.Entity) bool {
	v, ok := m.vessels.Get(e)
	if !ok || v.Launcher == nil || v.Torpedoes == nil {
		return false
	}
	return v.Launcher.ReloadTimer <= 0 && v.Torpedoes.Count > 0
}

// CanCreateGuidance reports whether e can accept a CreateGuidance command.
func (m *Model) CanCreateGuidance(e entity.Entity) bool {
	v, ok := m.vessels.Get(e)
	return ok && v.Engine != nil && v.FuelTank != nil && !v.Target.IsNil()
}

// appendTimelineEvent inserts ev into events keeping the slice ordered by
// Time ascending.
func appendTimelineEvent(events []TimelineEvent, ev TimelineEvent) []TimelineEvent {
	i := len(events)
	for i > 0 && events[i-1].Time > ev.Time {
		i--
	}
	out := make([]TimelineEvent, 0, len(events)+1)
	out = append(out, events[:i]...)
	out = append(out, ev)
	out = append(out, events[i:]...)
	return out
}

// rebuildFutureFrom re-predicts e's future past whatever its last future
// segment currently is, inserting a fresh coasting Orbit first if that
// segment is a bounded non-terminal Orbit (e.g. immediately after a
// manoeuvre was cancelled and RemoveSegmentsAfter truncated back to it).
func (m *Model) rebuildFutureFrom(e entity.Entity, p *path.Path) {
	future := p.FutureSegments()
	if len(future) == 0 {
		return
	}
	last := future[len(future)-1]
	if orb, ok := last.(*segment.Orbit); ok && math.IsInf(orb.EndTime(), 1) {
		trajectory.RecomputeTrajectory(e, p, m, trajectory.DefaultMaxEncounters)
		return
	}
	parent := last.Parent()
	fresh := segment.NewOrbit(parent, last.EndMass(), m.Mass(parent), last.EndPosition(), last.EndVelocity(), last.EndTime())
	p.AddSegment(fresh)
	trajectory.RecomputeTrajectory(e, p, m, trajectory.DefaultMaxEncounters)
}

func (m *Model) createBurn(e entity.Entity, time float64, deltaV vector2.Vec2) error {
	v, ok := m.vessels.Get(e)
	if !ok {
		return ErrNotAVessel
	}
	p, ok := m.paths.Get(e)
	if !ok {
		return ErrUnknownEntity
	}
	if v.Engine == nil {
		return ErrNoEngine
	}
	if v.FuelTank == nil || v.FuelTank.MassKg <= 0 {
		return ErrNoFuelTank
	}

	orbit, ok := p.FutureSegmentAtTime(time).(*segment.Orbit)
	if !ok {
		return ErrInsideManoeuvre
	}

	parent := orbit.Parent()
	parentMass := m.Mass(parent)
	position := orbit.PositionAtTime(time)
	velocity := orbit.VelocityAtTime(time)

	p.RemoveSegmentsAfter(time)

	rocketEq := segment.NewRocketEquationFunction(v.DryMassKg, v.FuelTank.MassKg, v.Engine.FuelConsumptionKgPerSec, v.Engine.SpecificImpulse, 0)
	burn := segment.NewBurn(parent, parentMass, velocity, deltaV, time, rocketEq, position, velocity)
	p.AddSegment(burn)

	coast := segment.NewOrbit(parent, burn.EndMass(), parentMass, burn.EndPosition(), burn.EndVelocity(), burn.EndTime())
	p.AddSegment(coast)

	v.Timeline = appendTimelineEvent(v.Timeline, TimelineEvent{Kind: TimelineStartBurn, Time: time, DeltaV: deltaV})
	m.vessels.Set(e, v)

	trajectory.RecomputeTrajectory(e, p, m, trajectory.DefaultMaxEncounters)
	m.emit(Event{Kind: EventBurnCreated, Entity: e})
	return nil
}

func (m *Model) adjustBurn(e entity.Entity, time float64, amount vector2.Vec2) error {
	p, ok := m.paths.Get(e)
	if !ok {
		return ErrUnknownEntity
	}
	burn, ok := p.FutureSegmentStartingAtTime(time).(*segment.Burn)
	if !ok {
		return ErrNoTimelineEvent
	}
	burn.Adjust(amount)
	p.TruncateAfter(burn)
	coast := segment.NewOrbit(burn.Parent(), burn.EndMass(), m.Mass(burn.Parent()), burn.EndPosition(), burn.EndVelocity(), burn.EndTime())
	p.AddSegment(coast)

	if v, ok := m.vessels.Get(e); ok {
		for i := range v.Timeline {
			if v.Timeline[i].Kind == TimelineStartBurn && v.Timeline[i].Time == time {
				v.Timeline[i].DeltaV = v.Timeline[i].DeltaV.Add(amount)
				break
			}
		}
		m.vessels.Set(e, v)
	}

	trajectory.RecomputeTrajectory(e, p, m, trajectory.DefaultMaxEncounters)
	return nil
}

func (m *Model) createTurn(e entity.Entity, time, targetRotation float64) error {
	v, ok := m.vessels.Get(e)
	if !ok {
		return ErrNotAVessel
	}
	p, ok := m.paths.Get(e)
	if !ok {
		return ErrUnknownEntity
	}
	if v.RCS == nil {
		return ErrNoRCS
	}

	orbit, ok := p.FutureSegmentAtTime(time).(*segment.Orbit)
	if !ok {
		return ErrInsideManoeuvre
	}

	parent := orbit.Parent()
	parentMass := m.Mass(parent)
	position := orbit.PositionAtTime(time)
	velocity := orbit.VelocityAtTime(time)
	mass := orbit.MassAtTime(time)
	startHeading := orbit.RotationAtTime(time)

	p.RemoveSegmentsAfter(time)

	turn := segment.NewTurn(parent, parentMass, time, mass, position, velocity, startHeading, targetRotation, v.RCS.TurnRateRadPerSec)
	p.AddSegment(turn)

	coast := segment.NewOrbit(parent, turn.EndMass(), parentMass, turn.EndPosition(), turn.EndVelocity(), turn.EndTime())
	p.AddSegment(coast)

	v.Timeline = appendTimelineEvent(v.Timeline, TimelineEvent{Kind: TimelineStartTurn, Time: time, TargetRotation: targetRotation})
	m.vessels.Set(e, v)

	trajectory.RecomputeTrajectory(e, p, m, trajectory.DefaultMaxEncounters)
	m.emit(Event{Kind: EventTurnCreated, Entity: e})
	return nil
}

func (m *Model) adjustTurn(e entity.Entity, time, amount float64) error {
	v, ok := m.vessels.Get(e)
	if !ok {
		return ErrNotAVessel
	}
	p, ok := m.paths.Get(e)
	if !ok {
		return ErrUnknownEntity
	}
	if v.RCS == nil {
		return ErrNoRCS
	}
	turn, ok := p.FutureSegmentStartingAtTime(time).(*segment.Turn)
	if !ok {
		return ErrNoTimelineEvent
	}

	newTarget := turn.TargetHeading() + amount
	startHeading := turn.RotationAtTime(turn.StartTime())
	parent := turn.Parent()
	rebuilt := segment.NewTurn(parent, m.Mass(parent), turn.StartTime(), turn.StartMass(), turn.StartPosition(), turn.StartVelocity(), startHeading, newTarget, v.RCS.TurnRateRadPerSec)

	p.RemoveSegmentsAfter(turn.StartTime())
	p.AddSegment(rebuilt)
	coast := segment.NewOrbit(parent, rebuilt.EndMass(), m.Mass(parent), rebuilt.EndPosition(), rebuilt.EndVelocity(), rebuilt.EndTime())
	p.AddSegment(coast)

	for i := range v.Timeline {
		if v.Timeline[i].Kind == TimelineStartTurn && v.Timeline[i].Time == time {
			v.Timeline[i].TargetRotation = newTarget
			break
		}
	}
	m.vessels.Set(e, v)

	trajectory.RecomputeTrajectory(e, p, m, trajectory.DefaultMaxEncounters)
	return nil
}

func (m *Model) createFireTorpedo(e entity.Entity, time float64) error {
	v, ok := m.vessels.Get(e)
	if !ok {
		return ErrNotAVessel
	}
	p, ok := m.paths.Get(e)
	if !ok {
		return ErrUnknownEntity
	}
	if v.Launcher == nil {
		return ErrNoLauncher
	}
	if v.Launcher.ReloadTimer > 0 {
		return ErrLauncherReloading
	}
	if v.Torpedoes == nil || v.Torpedoes.Count <= 0 {
		return ErrNoTorpedoes
	}

	seg := p.FutureSegmentAtTime(time)
	if seg == nil {
		return ErrNoCurrentSegment
	}
	parent := seg.Parent()
	parentMass := m.Mass(parent)
	position := seg.PositionAtTime(time)
	velocity := seg.VelocityAtTime(time)

	ghost := m.allocator.Allocate()
	ghostPath := path.New()
	ghostPath.AddSegment(segment.NewOrbit(parent, torpedoMassKg, parentMass, position, velocity, time))
	m.names.Set(ghost, Name{Value: m.Name(e) + "-torpedo"})
	m.paths.Set(ghost, ghostPath)
	m.vessels.Set(ghost, Vessel{Class: ClassTorpedo, Faction: v.Faction, DryMassKg: torpedoMassKg, Target: e, Ghost: true})
	trajectory.RecomputeTrajectory(ghost, ghostPath, m, trajectory.DefaultMaxEncounters)

	v.Timeline = appendTimelineEvent(v.Timeline, TimelineEvent{Kind: TimelineFireTorpedo, Time: time, GhostTorpedo: ghost})
	v.Torpedoes.Count--
	m.vessels.Set(e, v)
	return nil
}

func (m *Model) adjustFireTorpedo(e entity.Entity, time, amount float64) error {
	v, ok := m.vessels.Get(e)
	if !ok {
		return ErrNotAVessel
	}
	idx := -1
	for i, ev := range v.Timeline {
		if ev.Kind == TimelineFireTorpedo && ev.Time == time {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNoTimelineEvent
	}
	ghost := v.Timeline[idx].GhostTorpedo
	v.Timeline = append(v.Timeline[:idx], v.Timeline[idx+1:]...)
	v.Torpedoes.Count++ // returned to storage; re-issued by createFireTorpedo below
	m.vessels.Set(e, v)

	m.deallocateEntity(ghost)

	return m.createFireTorpedo(e, time+amount)
}

func (m *Model) deallocateEntity(e entity.Entity) {
	m.names.Remove(e)
	m.orbitables.Remove(e)
	m.paths.Remove(e)
	m.vessels.Remove(e)
	m.allocator.Deallocate(e)
}

func (m *Model) createGuidance(e entity.Entity, time float64) error {
	v, ok := m.vessels.Get(e)
	if !ok {
		return ErrNotAVessel
	}
	p, ok := m.paths.Get(e)
	if !ok {
		return ErrUnknownEntity
	}
	if v.Engine == nil {
		return ErrNoEngine
	}
	if v.FuelTank == nil {
		return ErrNoFuelTank
	}
	if v.Target.IsNil() {
		return ErrNoTarget
	}

	orbit, ok := p.FutureSegmentAtTime(time).(*segment.Orbit)
	if !ok {
		return ErrInsideManoeuvre
	}

	parent := orbit.Parent()
	parentMass := m.Mass(parent)
	position := orbit.PositionAtTime(time)
	velocity := orbit.VelocityAtTime(time)

	p.RemoveSegmentsAfter(time)

	rocketEq := segment.NewRocketEquationFunction(v.DryMassKg, v.FuelTank.MassKg, v.Engine.FuelConsumptionKgPerSec, v.Engine.SpecificImpulse, 0)
	target := targetProvider{model: m, target: v.Target, observer: v.Faction}
	engineAccel := func(eq segment.RocketEquationFunction) float64 { return eq.Acceleration() }

	g, willIntercept := guidance.Guide(parent, e, v.Target, target, parentMass, time, position, velocity, rocketEq, engineAccel)
	if !willIntercept {
		m.logger.Log("level", "warn", "subsys", "timeline", "msg", "guidance solution does not intercept", "entity", e, "target", v.Target)
	}
	p.AddSegment(g)
	guidance.ResumeOrbit(e, g, p, m, trajectory.DefaultMaxEncounters)

	v.Timeline = appendTimelineEvent(v.Timeline, TimelineEvent{Kind: TimelineEnableGuidance, Time: time, Target: v.Target})
	m.vessels.Set(e, v)
	m.emit(Event{Kind: EventEnableGuidance, Entity: e})
	return nil
}

// targetProvider implements guidance.TargetProvider against Model: a
// guided vessel sees its own
// faction's targets exactly and every other faction's target only via its
// perceived (manoeuvre-blind) path, mirroring package snapshot's
// observer-gating rule without creating a model<->snapshot import cycle.
// Scope reduction: the target is assumed to share the guided vessel's
// immediate parent (the common torpedo-intercept case), since both states
// must be compared in the same frame and Model's StateAtTime/
// PerceivedPointAtTime are parent-relative; a target orbiting a different
// parent is out of scope here.
type targetProvider struct {
	model    *Model
	target   entity.Entity
	observer Faction
}

func (t targetProvider) PositionVelocityAtTime(time float64) (vector2.Vec2, vector2.Vec2) {
	v, isVessel := t.model.vessels.Get(t.target)
	var pt segment.Point
	if !isVessel || v.Faction == t.observer {
		pt = t.model.StateAtTime(t.target, time)
	} else {
		pt = t.model.PerceivedPointAtTime(t.target, time)
	}
	return pt.Position, pt.Velocity
}

func (m *Model) cancelTimelineEventAt(e entity.Entity, time float64) error {
	v, ok := m.vessels.Get(e)
	if !ok {
		return ErrNotAVessel
	}
	p, ok := m.paths.Get(e)
	if !ok {
		return ErrUnknownEntity
	}
	idx := -1
	for i, ev := range v.Timeline {
		if ev.Time == time {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNoTimelineEvent
	}
	ev := v.Timeline[idx]
	v.Timeline = append(v.Timeline[:idx], v.Timeline[idx+1:]...)
	if ev.Kind == TimelineFireTorpedo {
		v.Torpedoes.Count++
		m.deallocateEntity(ev.GhostTorpedo)
	}
	m.vessels.Set(e, v)

	if ev.Kind != TimelineFireTorpedo {
		p.RemoveSegmentsAfter(time)
		m.rebuildFutureFrom(e, p)
	}
	return nil
}

func (m *Model) cancelLastTimelineEvent(e entity.Entity) error {
	v, ok := m.vessels.Get(e)
	if !ok {
		return ErrNotAVessel
	}
	if len(v.Timeline) == 0 {
		return ErrNoTimelineEvent
	}
	last := v.Timeline[len(v.Timeline)-1]
	return m.cancelTimelineEventAt(e, last.Time)
}

func (m *Model) cancelCurrentSegment(e entity.Entity) error {
	v, ok := m.vessels.Get(e)
	if !ok {
		return ErrNotAVessel
	}
	p, ok := m.paths.Get(e)
	if !ok {
		return ErrUnknownEntity
	}
	current := p.Current()
	if current == nil {
		return ErrNoCurrentSegment
	}
	typed, isTyped := current.(segment.Typed)
	if isTyped && typed.Kind() == segment.KindOrbit {
		return errors.New("model: current segment is already a coast, nothing to cancel")
	}

	cutTime := current.StartTime()
	p.RemoveSegmentsAfter(cutTime)
	for i, ev := range v.Timeline {
		if ev.Time == cutTime {
			v.Timeline = append(v.Timeline[:i], v.Timeline[i+1:]...)
			break
		}
	}
	m.vessels.Set(e, v)
	m.rebuildFutureFrom(e, p)
	return nil
}

func (m *Model) setTarget(e, target entity.Entity) error {
	v, ok := m.vessels.Get(e)
	if !ok {
		return ErrNotAVessel
	}
	v.Target = target
	m.vessels.Set(e, v)
	return nil
}

// PerceivedPointAtTime returns e's parent-relative position/velocity/mass
// at absolute time t as if none of its scheduled timeline events had ever
// been applied: a pure ballistic extrapolation from its last real state,
// walking forward through whatever SOI transitions the encounter solver
// predicts along the way. Recomputed eagerly on every call; a per-
// observer cache keyed on the last real state would be the next step.
func (m *Model) PerceivedPointAtTime(e entity.Entity, t float64) segment.Point {
	p, ok := m.paths.Get(e)
	if !ok {
		return m.StateAtTime(e, t)
	}
	current := p.Current()
	if current == nil {
		return segment.Point{Time: t}
	}
	orbit := segment.NewOrbit(current.Parent(), current.CurrentMass(), m.Mass(current.Parent()), current.CurrentPosition(), current.CurrentVelocity(), current.CurrentTime())
	for i := 0; i < trajectory.DefaultMaxEncounters; i++ {
		next := trajectory.NextOrbit(e, orbit, m)
		if next == nil {
			break
		}
		orbit.EndAt(next.StartTime())
		if next.StartTime() > t {
			// The transition happens after the queried instant; the
			// current orbit still governs t.
			break
		}
		orbit = next
	}
	return orbit.PointAtTime(t)
}

// PerceivedFutureOrbits returns the chain of Orbit segments an observer
// without manoeuvre intel on e would predict from its last real state,
// up to trajectory.DefaultMaxEncounters transitions ahead. Used by
// package snapshot to answer "future orbits" queries against a hidden
// vessel, mirroring PerceivedPointAtTime's walk but collecting the
// whole chain instead of sampling one instant of it.
func (m *Model) PerceivedFutureOrbits(e entity.Entity) []*segment.Orbit {
	p, ok := m.paths.Get(e)
	if !ok {
		return nil
	}
	current := p.Current()
	if current == nil {
		return nil
	}
	orbit := segment.NewOrbit(current.Parent(), current.CurrentMass(), m.Mass(current.Parent()), current.CurrentPosition(), current.CurrentVelocity(), current.CurrentTime())
	out := []*segment.Orbit{orbit}
	for i := 0; i < trajectory.DefaultMaxEncounters; i++ {
		next := trajectory.NextOrbit(e, orbit, m)
		if next == nil {
			break
		}
		orbit.EndAt(next.StartTime())
		orbit = next
		out = append(out, orbit)
	}
	return out
}
