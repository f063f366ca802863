// Package conic implements the closed-form two-body geometry: a tagged
// variant {Ellipse, Hyperbola} constructed from (parent mass, position,
// velocity) in the parent-centred inertial frame, with every derived
// quantity cached at construction.
package conic

import (
	"math"

	"github.com/gonum/floats"
	"github.com/orbitalcombat/simcore/vector2"
)

// Direction is the sense of travel around the orbit, taken from the sign
// of x*vy - y*vx at orbit construction time (orbit.go's CosΦfpa/direction
// handling uses the same cross-product sign test).
type Direction int

const (
	AntiClockwise Direction = iota
	Clockwise
)

func directionOf(position, velocity vector2.Vec2) Direction {
	if position.Cross(velocity) < 0 {
		return Clockwise
	}
	return AntiClockwise
}

// Precise epsilons for nudging eccentricities away from the degenerate
// values (0 and 1). The rounding is intentional: exactly-circular and
// exactly-parabolic inputs would hit numerical singularities downstream.
const eccentricityε = 1e-4

// Conic is the uniform read contract shared by Ellipse and Hyperbola.
// A closed pair of variants is deliberate: adding one forces every
// query here to be implemented for it.
type Conic interface {
	ThetaFromTimeSincePeriapsis(tau float64) float64
	TimeSinceLastPeriapsis(theta float64) float64
	Position(theta float64) vector2.Vec2
	Velocity(position vector2.Vec2, theta float64) vector2.Vec2
	Orbits(duration float64) int
	Direction() Direction
	Eccentricity() float64
	SemiMajorAxis() float64
	ArgumentOfPeriapsis() float64
	SpecificAngularMomentum() float64
	Mu() float64
}

// New builds the appropriate tagged variant from the two-body state
// vectors, nudging eccentricities within eccentricityε of the critical
// values (0, 1) away from them.
func New(parentMass float64, position, velocity vector2.Vec2) Conic {
	mu := GravitationalConstant * parentMass
	r := position.Norm()
	v := velocity.Norm()

	a := 1 / (2/r - v*v/mu)
	h := position.Cross(velocity)
	e := eccentricityFrom(position, velocity, mu, a)

	if floats.EqualWithinAbs(e, 0, eccentricityε) {
		if e < 0 {
			e = -eccentricityε
		} else {
			e = eccentricityε
		}
	}
	if floats.EqualWithinAbs(e, 1, eccentricityε) {
		if e < 1 {
			e = 1 - eccentricityε
		} else {
			e = 1 + eccentricityε
		}
	}

	dir := directionOf(position, velocity)
	argPeriapsis := argumentOfPeriapsis(position, velocity, mu)

	if e < 1 {
		return newEllipse(mu, a, e, dir, argPeriapsis, h)
	}
	return newHyperbola(mu, a, e, dir, argPeriapsis, h)
}

// GravitationalConstant is G, in m^3 kg^-1 s^-2.
const GravitationalConstant = 6.674e-11

func eccentricityFrom(position, velocity vector2.Vec2, mu, a float64) float64 {
	h := position.Cross(velocity)
	p := h * h / mu
	num := 1 - p/a
	if num < 0 {
		num = 0
	}
	return math.Sqrt(num)
}

// argumentOfPeriapsis returns the angle from the +X axis to periapsis,
// derived from the Laplace-Runge-Lenz-style eccentricity vector.
func argumentOfPeriapsis(position, velocity vector2.Vec2, mu float64) float64 {
	r := position.Norm()
	v2 := velocity.NormSq()
	rDotV := position.Dot(velocity)

	// Eccentricity vector e_vec = ((v^2 - mu/r) * r_vec - (r . v) * v_vec) / mu
	evx := (v2-mu/r)*position.X/mu - rDotV*velocity.X/mu
	evy := (v2-mu/r)*position.Y/mu - rDotV*velocity.Y/mu

	if math.Hypot(evx, evy) < 1e-9 {
		// Circular orbit: periapsis direction undefined, use current position.
		return math.Atan2(position.Y, position.X)
	}
	return math.Atan2(evy, evx)
}
