package segment

import (
	"math"

	"github.com/orbitalcombat/simcore/conic"
	"github.com/orbitalcombat/simcore/entity"
	"github.com/orbitalcombat/simcore/vector2"
)

// Orbit is a closed-form two-body trajectory segment: a Conic derived
// from (parent mass, position, velocity) at start, plus the cached
// sphere-of-influence radius and start/current/end points.
type Orbit struct {
	parent entity.Entity
	conic  conic.Conic

	parentMass float64
	mass       float64

	startTime float64
	endTime   float64 // math.Inf(1) if not yet bounded
	startTau  float64 // periapsis-epoch offset (time-since-periapsis at t is t + startTau), cached so PositionAtTime is O(1)

	currentTime float64

	sphereOfInfluence float64
}

// NewOrbit builds an Orbit from the two-body state at startTime.
func NewOrbit(parent entity.Entity, mass, parentMass float64, position, velocity vector2.Vec2, startTime float64) *Orbit {
	c := conic.New(parentMass, position, velocity)
	tau := c.TimeSinceLastPeriapsis(math.Atan2(position.Y, position.X))
	o := &Orbit{
		parent:      parent,
		conic:       c,
		parentMass:  parentMass,
		mass:        mass,
		startTime:   startTime,
		endTime:     math.Inf(1),
		startTau:    tau - startTime, // periapsis-epoch offset: tau(t) = t + startTau
		currentTime: startTime,
	}
	o.sphereOfInfluence = sphereOfInfluence(c.SemiMajorAxis(), mass, parentMass)
	return o
}

// sphereOfInfluence implements the GLOSSARY formula a*(m/M)^(2/5).
func sphereOfInfluence(semiMajorAxis, mass, parentMass float64) float64 {
	a := math.Abs(semiMajorAxis)
	return a * math.Pow(mass/parentMass, 0.4)
}

func (o *Orbit) Kind() Kind { return KindOrbit }

func (o *Orbit) Conic() conic.Conic { return o.conic }

func (o *Orbit) SphereOfInfluence() float64 { return o.sphereOfInfluence }

func (o *Orbit) Parent() entity.Entity { return o.parent }
func (o *Orbit) StartTime() float64    { return o.startTime }
func (o *Orbit) EndTime() float64      { return o.endTime }
func (o *Orbit) CurrentTime() float64  { return o.currentTime }

func (o *Orbit) thetaAtTime(t float64) float64 {
	return o.conic.ThetaFromTimeSincePeriapsis(t + o.startTau)
}

// Period returns the conic's orbital period, or 0 for a hyperbola.
func (o *Orbit) Period() float64 {
	if e, ok := o.conic.(*conic.Ellipse); ok {
		return e.Period()
	}
	return 0
}

// TimeAtTheta inverts thetaAtTime: the absolute time at which the orbit
// passes the given angle. For an ellipse the result is wrapped into
// [startTime, startTime+period); callers walk it forward period by period.
func (o *Orbit) TimeAtTheta(theta float64) float64 {
	t := o.conic.TimeSinceLastPeriapsis(theta) - o.startTau
	if period := o.Period(); period > 0 {
		for t < o.startTime {
			t += period
		}
		for t >= o.startTime+period {
			t -= period
		}
	}
	return t
}

func (o *Orbit) PositionAtTime(t float64) vector2.Vec2 {
	theta := o.thetaAtTime(t)
	return o.conic.Position(theta)
}

func (o *Orbit) VelocityAtTime(t float64) vector2.Vec2 {
	theta := o.thetaAtTime(t)
	pos := o.conic.Position(theta)
	return o.conic.Velocity(pos, theta)
}

// MassAtTime is constant over an Orbit: mass only changes during Burn/Guidance.
func (o *Orbit) MassAtTime(t float64) float64 { return o.mass }

// RotationAtTime for an Orbit segment is the prograde heading (angle of
// the velocity vector); exposing it keeps the uniform Segment contract
// satisfiable without a separate "coast heading" field.
func (o *Orbit) RotationAtTime(t float64) float64 {
	v := o.VelocityAtTime(t)
	return math.Atan2(v.Y, v.X)
}

func (o *Orbit) StartPosition() vector2.Vec2 { return o.PositionAtTime(o.startTime) }
func (o *Orbit) StartVelocity() vector2.Vec2 { return o.VelocityAtTime(o.startTime) }
func (o *Orbit) StartMass() float64          { return o.mass }

func (o *Orbit) CurrentPosition() vector2.Vec2 { return o.PositionAtTime(o.currentTime) }
func (o *Orbit) CurrentVelocity() vector2.Vec2 { return o.VelocityAtTime(o.currentTime) }
func (o *Orbit) CurrentMass() float64          { return o.mass }
func (o *Orbit) CurrentRotation() float64      { return o.RotationAtTime(o.currentTime) }

func (o *Orbit) EndPosition() vector2.Vec2 { return o.PositionAtTime(o.endTime) }
func (o *Orbit) EndVelocity() vector2.Vec2 { return o.VelocityAtTime(o.endTime) }
func (o *Orbit) EndMass() float64          { return o.mass }

// EndAt truncates the orbit at time t, fixing its EndTime. Orbits are
// the only segment kind that may be truncated.
func (o *Orbit) EndAt(t float64) { o.endTime = t }

// Next advances the orbit's current point by dt seconds.
func (o *Orbit) Next(dt float64) {
	o.currentTime += dt
}

func (o *Orbit) IsFinished() bool {
	return o.currentTime >= o.endTime
}

func (o *Orbit) OvershotTime(t float64) float64 {
	return t - o.endTime
}

// IsTimeWithinOrbit reports whether t is strictly inside (startTime, endTime).
func (o *Orbit) IsTimeWithinOrbit(t float64) bool {
	return t > o.startTime && t < o.endTime
}

// PointAtTime returns (position, velocity, mass) as a triple, the uniform
// query used by the encounter solver and trajectory predictor.
type Point struct {
	Position vector2.Vec2
	Velocity vector2.Vec2
	Mass     float64
	Time     float64
}

func (o *Orbit) PointAtTime(t float64) Point {
	return Point{Position: o.PositionAtTime(t), Velocity: o.VelocityAtTime(t), Mass: o.mass, Time: t}
}
