package model

import (
	"math"

	kitlog "github.com/go-kit/kit/log"

	"github.com/orbitalcombat/simcore/encounter"
	"github.com/orbitalcombat/simcore/entity"
	"github.com/orbitalcombat/simcore/path"
	"github.com/orbitalcombat/simcore/segment"
	"github.com/orbitalcombat/simcore/vector2"
)

// Model owns the entire entity arena and its four component stores, plus
// the clock and the outbound event queue. Every mutation of the world
// goes through it; snapshots and queries only ever borrow it read-only.
type Model struct {
	allocator *entity.Allocator

	names      componentStore[Name]
	orbitables componentStore[Orbitable]
	paths      componentStore[*path.Path]
	vessels    componentStore[Vessel]

	Clock  Clock
	events eventQueue

	logger kitlog.Logger
}

// New returns an empty Model. Index 0 is immediately allocated and left
// permanently unnamed/componentless so entity.Nil (the zero Entity) is
// never mistaken for a live handle, per entity.Nil's documented
// invariant.
func New(logger kitlog.Logger) *Model {
	m := &Model{
		allocator:  entity.NewAllocator(),
		names:      newComponentStore[Name](),
		orbitables: newComponentStore[Orbitable](),
		paths:      newComponentStore[*path.Path](),
		vessels:    newComponentStore[Vessel](),
		logger:     logger,
	}
	m.allocator.Allocate() // reserve index 0 for entity.Nil
	return m
}

// CreateOrbitable registers a new celestial body.
func (m *Model) CreateOrbitable(name string, o Orbitable) entity.Entity {
	e := m.allocator.Allocate()
	m.names.Set(e, Name{Value: name})
	m.orbitables.Set(e, o)
	return e
}

// CreateVessel registers a new vessel with an already-populated Path
// (its initial Orbit segment).
func (m *Model) CreateVessel(name string, v Vessel, p *path.Path) entity.Entity {
	e := m.allocator.Allocate()
	m.names.Set(e, Name{Value: name})
	m.vessels.Set(e, v)
	m.paths.Set(e, p)
	return e
}

func (m *Model) Name(e entity.Entity) string {
	n, _ := m.names.Get(e)
	return n.Value
}

func (m *Model) Orbitable(e entity.Entity) (Orbitable, bool) { return m.orbitables.Get(e) }
func (m *Model) Vessel(e entity.Entity) (Vessel, bool)        { return m.vessels.Get(e) }
func (m *Model) Path(e entity.Entity) (*path.Path, bool)      { return m.paths.Get(e) }

func (m *Model) Orbitables() []entity.Entity { return m.orbitables.Entities() }
func (m *Model) Vessels() []entity.Entity    { return m.vessels.Entities() }

// Mass implements trajectory.World and guidance's parent-mass queries:
// an Orbitable's fixed mass, or a Vessel's dry mass plus current fuel.
func (m *Model) Mass(e entity.Entity) float64 {
	if o, ok := m.orbitables.Get(e); ok {
		return o.Mass
	}
	if v, ok := m.vessels.Get(e); ok {
		mass := v.DryMassKg
		if v.FuelTank != nil {
			mass += v.FuelTank.MassKg
		}
		return mass
	}
	return 0
}

// SphereOfInfluence implements trajectory.World. The stationary root
// body has no bounding SOI of its own, so it is treated as unbounded.
func (m *Model) SphereOfInfluence(e entity.Entity) float64 {
	o, ok := m.orbitables.Get(e)
	if !ok || o.Physics.Stationary {
		return math.Inf(1)
	}
	return o.Physics.Orbit.SphereOfInfluence()
}

// Grandparent implements trajectory.World: the parent-of-parent for a
// celestial body, i.e. the entity e's own fixed Orbit orbits around.
// The stationary root has no parent and returns entity.Nil.
func (m *Model) Grandparent(e entity.Entity) entity.Entity {
	o, ok := m.orbitables.Get(e)
	if !ok || o.Physics.Stationary {
		return entity.Nil
	}
	return o.Physics.Orbit.Parent()
}

// Siblings implements trajectory.World: every other Orbitable whose
// fixed Orbit shares the given parent, as candidates for an entrance
// encounter.
func (m *Model) Siblings(parent, exclude entity.Entity) []encounter.Sibling {
	var out []encounter.Sibling
	for _, e := range m.orbitables.Entities() {
		if e == exclude {
			continue
		}
		o, _ := m.orbitables.Get(e)
		if o.Physics.Stationary || o.Physics.Orbit.Parent() != parent {
			continue
		}
		out = append(out, encounter.Sibling{
			Entity:            e,
			Orbit:             o.Physics.Orbit,
			SphereOfInfluence: o.Physics.Orbit.SphereOfInfluence(),
		})
	}
	return out
}

// StateAtTime implements trajectory.World: e's position/velocity
// relative to e's own immediate parent at absolute time t. A vessel's
// state comes from its live Path; a celestial body's from its fixed
// Orbit. The stationary root has no parent-relative state and reports
// zero.
func (m *Model) StateAtTime(e entity.Entity, t float64) segment.Point {
	if o, ok := m.orbitables.Get(e); ok {
		if o.Physics.Stationary {
			return segment.Point{Time: t}
		}
		return o.Physics.Orbit.PointAtTime(t)
	}
	if p, ok := m.paths.Get(e); ok {
		if s := p.FutureSegmentAtTime(t); s != nil {
			return segment.Point{Position: s.PositionAtTime(t), Velocity: s.VelocityAtTime(t), Mass: s.MassAtTime(t), Time: t}
		}
	}
	return segment.Point{Time: t}
}

// AbsolutePositionVelocityAtTime walks e's parent chain up to the
// stationary root, summing each frame's offset, for rendering and for
// targetProvider's absolute-frame queries. Not used by
// trajectory/encounter (which work entirely in parent-relative
// coordinates by design), only by code that needs a single shared
// coordinate space.
func (m *Model) AbsolutePositionVelocityAtTime(e entity.Entity, t float64) (vector2.Vec2, vector2.Vec2) {
	var pos, vel vector2.Vec2
	cur := e
	for {
		if o, ok := m.orbitables.Get(cur); ok && o.Physics.Stationary {
			return pos.Add(o.Physics.Position), vel
		}
		state := m.StateAtTime(cur, t)
		pos = pos.Add(state.Position)
		vel = vel.Add(state.Velocity)
		cur = m.parentOf(cur)
		if cur == entity.Nil {
			return pos, vel
		}
	}
}

func (m *Model) parentOf(e entity.Entity) entity.Entity {
	if o, ok := m.orbitables.Get(e); ok {
		if o.Physics.Stationary {
			return entity.Nil
		}
		return o.Physics.Orbit.Parent()
	}
	if p, ok := m.paths.Get(e); ok {
		if cur := p.Current(); cur != nil {
			return cur.Parent()
		}
	}
	return entity.Nil
}
