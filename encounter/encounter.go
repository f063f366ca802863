// Package encounter predicts sphere-of-influence transitions: the next
// time an orbiting entity either leaves its parent's SOI or enters a
// sibling's. Exits are solved analytically from the orbit's signed
// distance to the SOI boundary. Entrances are found by first bounding, in
// terms of the angle on the entity's own orbit, where an encounter with
// each sibling is geometrically possible at all, then searching only
// those windows for a relative-distance minimum below the sibling's SOI.
package encounter

import (
	"github.com/orbitalcombat/simcore/entity"
	"github.com/orbitalcombat/simcore/segment"
)

// Type distinguishes an SOI exit from an SOI entrance.
type Type int

const (
	TypeExit Type = iota
	TypeEntrance
)

// Encounter is a predicted SOI transition: at Time, Entity's orbit around
// its current parent ends and a new Orbit around NewParent begins.
type Encounter struct {
	Type      Type
	Entity    entity.Entity
	NewParent entity.Entity
	Time      float64
}

// minimumLeadTime keeps an exit from being instantly re-classified as an
// entrance: another encounter could otherwise be calculated as being e.g.
// 0.01 seconds after the one just applied.
const minimumLeadTime = 1e-3

// Sibling describes one other orbiting body sharing the child's current
// parent, as seen by the encounter solver.
type Sibling struct {
	Entity            entity.Entity
	Orbit             *segment.Orbit
	SphereOfInfluence float64
}

// Solve returns the earliest of the child's SOI exit and its entrance
// into any sibling's SOI, within (startTime, endTime]. grandparent is the
// entity the child would become a child of on exit (its current parent's
// own parent); it is only consulted for the exit branch's NewParent
// field. Returns nil if neither occurs in that window.
func Solve(child entity.Entity, orbit *segment.Orbit, parentSOI float64, grandparent entity.Entity, siblings []Sibling, startTime, endTime float64) *Encounter {
	var best *Encounter

	if exit := solveExit(child, orbit, parentSOI, grandparent, startTime, endTime); exit != nil {
		best = exit
	}

	for _, sib := range siblings {
		if sib.Entity == orbit.Parent() {
			continue
		}
		// An encounter already found caps how far later siblings need to
		// be searched.
		horizon := endTime
		if best != nil && best.Time < horizon {
			horizon = best.Time
		}
		if enc := solveEntrance(child, orbit, sib, startTime, horizon); enc != nil {
			if best == nil || enc.Time < best.Time {
				best = enc
			}
		}
	}

	return best
}

// Apply truncates the child's current orbit at enc.Time and appends a
// fresh Orbit built in the new parent's frame. On entrance the new
// parent's own state is subtracted (stepping down into the sibling's
// frame); on exit it is added (stepping up into the grandparent's).
func Apply(enc *Encounter, childOrbit *segment.Orbit, newParentMass float64, newParentState segment.Point, entering bool) *segment.Orbit {
	childOrbit.EndAt(enc.Time)

	position := childOrbit.PositionAtTime(enc.Time)
	velocity := childOrbit.VelocityAtTime(enc.Time)
	mass := childOrbit.MassAtTime(enc.Time)

	if entering {
		position = position.Sub(newParentState.Position)
		velocity = velocity.Sub(newParentState.Velocity)
	} else {
		position = position.Add(newParentState.Position)
		velocity = velocity.Add(newParentState.Velocity)
	}

	return segment.NewOrbit(enc.NewParent, mass, newParentMass, position, velocity, enc.Time)
}
