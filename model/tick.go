package model

import (
	"github.com/orbitalcombat/simcore/entity"
	"github.com/orbitalcombat/simcore/guidance"
	"github.com/orbitalcombat/simcore/segment"
	"github.com/orbitalcombat/simcore/trajectory"
)

// Update runs one deterministic tick and returns the story events queued
// during it. The stages always run in the same order: advance the warp
// and clock, fire due timeline events, advance segments, run docking
// transfers, tick launcher cooldowns, accrue fuel, re-predict changed
// tails, refresh guidance intercepts, drain events.
func (m *Model) Update(dt float64) []Event {
	m.Clock.advance(dt) // stages 1-2

	m.fireTimelineEvents() // stage 3

	changedTails := m.advanceSegments() // stage 4

	m.updateDocking(dt) // stage 5

	m.tickLaunchers(dt) // stage 6

	m.accrueFuel() // stage 7

	for _, e := range changedTails {
		m.repredict(e) // stage 8
	}

	m.refreshGuidanceIntercepts() // stage 9

	return m.events.drain() // stage 10
}

// fireTimelineEvents materialises every TimelineEvent whose time has been
// reached: a ghost torpedo becomes real (its creating FireTorpedo event
// fires an outbound story event and clears its Ghost flag).
func (m *Model) fireTimelineEvents() {
	for _, e := range m.vessels.Entities() {
		v, ok := m.vessels.Get(e)
		if !ok || len(v.Timeline) == 0 {
			continue
		}
		fired := 0
		for fired < len(v.Timeline) && v.Timeline[fired].Time <= m.Clock.Time {
			ev := v.Timeline[fired]
			switch ev.Kind {
			case TimelineFireTorpedo:
				if ghost, ok := m.vessels.Get(ev.GhostTorpedo); ok && ghost.Ghost {
					ghost.Ghost = false
					m.vessels.Set(ev.GhostTorpedo, ghost)
					m.logger.Log("level", "info", "subsys", "timeline", "msg", "torpedo launched", "vessel", e, "torpedo", ev.GhostTorpedo)
					m.emit(Event{Kind: EventFireTorpedo, Entity: ev.GhostTorpedo})
				}
			}
			fired++
		}
		if fired > 0 {
			v.Timeline = v.Timeline[fired:]
			m.vessels.Set(e, v)
		}
	}
}

// advanceSegments pops each vessel's finished segments into the past,
// carrying the overshoot
// into the new current segment. Returns, in the same deterministic
// entity order as m.paths.Entities(), the vessels whose tail manoeuvre
// changed (the segment that just finished was not an Orbit), which the
// re-prediction stage must extend past. A plain slice (not a map) keeps
// that stage's iteration order reproducible.
func (m *Model) advanceSegments() []entity.Entity {
	var changed []entity.Entity
	for _, e := range m.paths.Entities() {
		p, ok := m.paths.Get(e)
		if !ok {
			continue
		}
		for {
			current := p.Current()
			if current == nil {
				break
			}
			current.Next(m.Clock.Time - current.CurrentTime())
			if !current.IsFinished() {
				break
			}
			if typed, ok := current.(segment.Typed); ok && typed.Kind() != segment.KindOrbit {
				changed = append(changed, e)
				if g, ok := current.(*segment.Guidance); ok && g.WillIntercept() {
					m.emit(Event{Kind: EventIntercept, Entity: e, Victim: g.TargetEntity()})
				}
			}
			if !p.OnSegmentFinished(m.Clock.Time) {
				break
			}
		}
	}
	return changed
}

// repredict extends one vessel's prediction: the trailing segment
// is always an Orbit by this point (advanceSegments only just finished a
// manoeuvre, whose creation path always appends a coast Orbit behind it),
// so a plain re-prediction extends the tail back up to the default
// lookahead.
func (m *Model) repredict(e entity.Entity) {
	p, ok := m.paths.Get(e)
	if !ok {
		return
	}
	trajectory.RecomputeTrajectory(e, p, m, trajectory.DefaultMaxEncounters)
}

// refreshGuidanceIntercepts re-solves every vessel currently
// mid-Guidance from its current point forward and splices the result
// onto the table from now on. The target may
// have manoeuvred since the table currently in effect was built, so the
// intercept determination it recorded past the current instant can be
// stale. Re-solving from the current point rather than from scratch
// keeps the already-flown prefix of the table untouched.
func (m *Model) refreshGuidanceIntercepts() {
	for _, e := range m.vessels.Entities() {
		v, ok := m.vessels.Get(e)
		if !ok || v.Engine == nil || v.FuelTank == nil {
			continue
		}
		p, ok := m.paths.Get(e)
		if !ok {
			continue
		}
		g, ok := p.Current().(*segment.Guidance)
		if !ok {
			continue
		}

		remainingFuel := g.CurrentMass() - v.DryMassKg
		if remainingFuel < 0 {
			remainingFuel = 0
		}
		rocketEq := segment.NewRocketEquationFunction(v.DryMassKg, remainingFuel, v.Engine.FuelConsumptionKgPerSec, v.Engine.SpecificImpulse, 0)
		engineAccel := func(eq segment.RocketEquationFunction) float64 { return eq.Acceleration() }
		target := targetProvider{model: m, target: g.TargetEntity(), observer: v.Faction}
		parentMass := m.Mass(g.Parent())

		resolved, _ := guidance.Guide(g.Parent(), e, g.TargetEntity(), target, parentMass, g.CurrentTime(), g.CurrentPosition(), g.CurrentVelocity(), rocketEq, engineAccel)
		g.Adjust(g.CurrentTime(), resolved.Points())
	}
}

// tickLaunchers decrements every torpedo launcher's reload cooldown.
func (m *Model) tickLaunchers(dt float64) {
	for _, e := range m.vessels.Entities() {
		v, ok := m.vessels.Get(e)
		if !ok || v.Launcher == nil {
			continue
		}
		if v.Launcher.ReloadTimer > 0 {
			v.Launcher.ReloadTimer -= dt
			if v.Launcher.ReloadTimer < 0 {
				v.Launcher.ReloadTimer = 0
			}
			m.vessels.Set(e, v)
		}
	}
}

// accrueFuel synchronises each vessel's FuelTank
// with whatever its currently active Burn/Guidance segment's mass table
// says it should be at the clock's current time, since those segments
// track mass internally via RocketEquationFunction rather than mutating
// the Vessel component as they integrate.
func (m *Model) accrueFuel() {
	for _, e := range m.vessels.Entities() {
		v, ok := m.vessels.Get(e)
		if !ok || v.FuelTank == nil {
			continue
		}
		p, ok := m.paths.Get(e)
		if !ok {
			continue
		}
		current := p.Current()
		if current == nil {
			continue
		}
		typed, isTyped := current.(segment.Typed)
		if !isTyped || (typed.Kind() != segment.KindBurn && typed.Kind() != segment.KindGuidance) {
			continue
		}
		mass := current.CurrentMass()
		fuel := mass - v.DryMassKg
		if fuel < 0 {
			fuel = 0
		}
		v.FuelTank.MassKg = fuel
		m.vessels.Set(e, v)
	}
}
