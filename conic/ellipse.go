package conic

import (
	"math"

	"github.com/orbitalcombat/simcore/numerics"
	"github.com/orbitalcombat/simcore/vector2"
)

// Ellipse is the closed-orbit Conic variant. Period and angular momentum
// are computed once at construction rather than on every call. The
// angular momentum keeps its sign (negative for clockwise orbits) so
// that Velocity's angular-speed factor points the travel direction the
// right way without a separate direction branch.
type Ellipse struct {
	mu                      float64
	semiMajorAxis           float64
	eccentricity            float64
	direction               Direction
	period                  float64
	argumentOfPeriapsis     float64
	specificAngularMomentum float64
	solver                  *numerics.EllipseKeplerSolver
}

func newEllipse(mu, a, e float64, dir Direction, argPeriapsis, h float64) *Ellipse {
	return &Ellipse{
		mu:                      mu,
		semiMajorAxis:           a,
		eccentricity:            e,
		direction:               dir,
		period:                  2 * math.Pi * math.Sqrt(a*a*a/mu),
		argumentOfPeriapsis:     argPeriapsis,
		specificAngularMomentum: h,
		solver:                  numerics.NewEllipseKeplerSolver(e),
	}
}

func (e *Ellipse) Mu() float64 { return e.mu }

func (e *Ellipse) ThetaFromTimeSincePeriapsis(tau float64) float64 {
	tau = math.Mod(tau, e.period)
	if tau < 0 {
		tau += e.period
	}
	meanAnomaly := 2 * math.Pi * tau / e.period
	eccentricAnomaly := e.solver.Solve(meanAnomaly)
	trueAnomaly := 2 * math.Atan(math.Sqrt((1+e.eccentricity)/(1-e.eccentricity))*math.Tan(eccentricAnomaly/2))
	if e.direction == Clockwise {
		trueAnomaly = -trueAnomaly
	}
	return numerics.NormalizeAngle(trueAnomaly + e.argumentOfPeriapsis)
}

// TimeSinceLastPeriapsis always returns a value >= 0.
func (e *Ellipse) TimeSinceLastPeriapsis(theta float64) float64 {
	trueAnomaly := theta - e.argumentOfPeriapsis
	eccentricAnomaly := 2 * math.Atan(math.Sqrt((1-e.eccentricity)/(1+e.eccentricity))*math.Tan(trueAnomaly/2))
	meanAnomaly := eccentricAnomaly - e.eccentricity*math.Sin(eccentricAnomaly)
	if e.direction == Clockwise {
		meanAnomaly = -meanAnomaly
	}
	meanAnomaly = numerics.NormalizeAngle(meanAnomaly)
	return meanAnomaly * e.period / (2 * math.Pi)
}

func (e *Ellipse) Position(theta float64) vector2.Vec2 {
	trueAnomaly := theta - e.argumentOfPeriapsis
	radius := (e.semiMajorAxis * (1 - e.eccentricity*e.eccentricity)) / (1 + e.eccentricity*math.Cos(trueAnomaly))
	return vector2.Vec2{X: radius * math.Cos(theta), Y: radius * math.Sin(theta)}
}

func (e *Ellipse) Velocity(position vector2.Vec2, theta float64) vector2.Vec2 {
	trueAnomaly := theta - e.argumentOfPeriapsis
	radius := position.Norm()
	dRdTheta := e.semiMajorAxis * e.eccentricity * (1 - e.eccentricity*e.eccentricity) * math.Sin(trueAnomaly) /
		math.Pow(e.eccentricity*math.Cos(trueAnomaly)+1, 2)
	dPosdTheta := vector2.Vec2{
		X: dRdTheta*math.Cos(theta) - radius*math.Sin(theta),
		Y: dRdTheta*math.Sin(theta) + radius*math.Cos(theta),
	}
	angularSpeed := e.specificAngularMomentum / (radius * radius)
	return dPosdTheta.Scale(angularSpeed)
}

func (e *Ellipse) Orbits(duration float64) int {
	return int(duration / e.period)
}

func (e *Ellipse) Direction() Direction              { return e.direction }
func (e *Ellipse) Eccentricity() float64              { return e.eccentricity }
func (e *Ellipse) SemiMajorAxis() float64             { return e.semiMajorAxis }
func (e *Ellipse) ArgumentOfPeriapsis() float64        { return e.argumentOfPeriapsis }
func (e *Ellipse) SpecificAngularMomentum() float64    { return e.specificAngularMomentum }
func (e *Ellipse) Period() float64                     { return e.period }
func (e *Ellipse) SemiMinorAxis() float64 {
	return e.semiMajorAxis * math.Sqrt(1-e.eccentricity*e.eccentricity)
}
