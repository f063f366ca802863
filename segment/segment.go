// Package segment implements the tagged variant {Orbit, Burn, Turn,
// Guidance}: a time-bounded piece of a vessel's trajectory. The variant
// set is deliberately closed; every query below must be answerable by
// every variant.
package segment

import (
	"github.com/orbitalcombat/simcore/entity"
	"github.com/orbitalcombat/simcore/vector2"
)

// Segment is the uniform contract every variant implements.
type Segment interface {
	Parent() entity.Entity
	StartTime() float64
	EndTime() float64

	StartPosition() vector2.Vec2
	StartVelocity() vector2.Vec2
	StartMass() float64

	CurrentPosition() vector2.Vec2
	CurrentVelocity() vector2.Vec2
	CurrentMass() float64
	CurrentRotation() float64
	CurrentTime() float64

	EndPosition() vector2.Vec2
	EndVelocity() vector2.Vec2
	EndMass() float64

	PositionAtTime(t float64) vector2.Vec2
	VelocityAtTime(t float64) vector2.Vec2
	MassAtTime(t float64) float64
	RotationAtTime(t float64) float64

	// Next advances the segment's current point by dt seconds (used by
	// Path.OnSegmentFinished to carry clock overshoot into the next
	// segment, and by Model's per-tick update).
	Next(dt float64)

	IsFinished() bool

	// OvershotTime returns how far past EndTime the given absolute time
	// is; used by Path to compute the carry-over when popping a finished
	// segment.
	OvershotTime(t float64) float64
}

// Kind identifies which variant a Segment is, used by Path/Model/Snapshot
// for type-switch dispatch without needing reflection.
type Kind int

const (
	KindOrbit Kind = iota
	KindBurn
	KindTurn
	KindGuidance
)

// Typed is implemented by every variant to support Kind-based dispatch.
type Typed interface {
	Segment
	Kind() Kind
}
