package conic

import (
	"math"

	"github.com/orbitalcombat/simcore/numerics"
	"github.com/orbitalcombat/simcore/vector2"
)

// Hyperbola is the open-orbit Conic variant. Unlike Ellipse there is no
// period; time-since-periapsis grows without bound as theta approaches
// the asymptote angles.
type Hyperbola struct {
	mu                      float64
	semiMajorAxis           float64 // negative, per the vis-viva convention
	eccentricity            float64
	direction               Direction
	argumentOfPeriapsis     float64
	specificAngularMomentum float64
	solver                  *numerics.HyperbolaKeplerSolver
}

func newHyperbola(mu, a, e float64, dir Direction, argPeriapsis, h float64) *Hyperbola {
	return &Hyperbola{
		mu:                      mu,
		semiMajorAxis:           a,
		eccentricity:            e,
		direction:               dir,
		argumentOfPeriapsis:     argPeriapsis,
		specificAngularMomentum: h,
		solver:                  numerics.NewHyperbolaKeplerSolver(e),
	}
}

func (h *Hyperbola) Mu() float64 { return h.mu }

func (h *Hyperbola) meanAnomalyScale() float64 {
	return math.Sqrt(h.mu / math.Pow(-h.semiMajorAxis, 3))
}

func (h *Hyperbola) ThetaFromTimeSincePeriapsis(tau float64) float64 {
	meanAnomaly := tau * h.meanAnomalyScale()
	eccentricAnomaly := h.solver.Solve(meanAnomaly)
	trueAnomaly := 2 * math.Atan(math.Sqrt((h.eccentricity+1)/(h.eccentricity-1))*math.Tanh(eccentricAnomaly/2))
	if h.direction == Clockwise {
		trueAnomaly = -trueAnomaly
	}
	return numerics.NormalizeAngle(trueAnomaly + h.argumentOfPeriapsis)
}

// TimeSinceLastPeriapsis is negative when the given theta lies on the
// inbound leg (periapsis not yet reached). A hyperbola only has one
// periapsis crossing, so "last" periapsis means "the" periapsis; theta
// outside the asymptote range is the caller's responsibility to avoid.
func (h *Hyperbola) TimeSinceLastPeriapsis(theta float64) float64 {
	trueAnomaly := theta - h.argumentOfPeriapsis
	trueAnomaly = wrapSigned(trueAnomaly)
	// tan blows up near 0 and pi and spits out inaccurate results; nudge.
	if math.Abs(trueAnomaly) < 1e-6 || math.Abs(math.Abs(trueAnomaly)-math.Pi) < 1e-4 {
		trueAnomaly += 1e-4
	}
	eccentricAnomaly := 2 * math.Atanh(math.Sqrt((h.eccentricity-1)/(h.eccentricity+1))*math.Tan(trueAnomaly/2))
	meanAnomaly := h.eccentricity*math.Sinh(eccentricAnomaly) - eccentricAnomaly
	if h.direction == Clockwise {
		meanAnomaly = -meanAnomaly
	}
	return meanAnomaly / h.meanAnomalyScale()
}

func wrapSigned(theta float64) float64 {
	theta = math.Mod(theta, 2*math.Pi)
	if theta > math.Pi {
		theta -= 2 * math.Pi
	}
	if theta < -math.Pi {
		theta += 2 * math.Pi
	}
	return theta
}

func (h *Hyperbola) Position(theta float64) vector2.Vec2 {
	trueAnomaly := theta - h.argumentOfPeriapsis
	radius := (h.semiMajorAxis * (1 - h.eccentricity*h.eccentricity)) / (1 + h.eccentricity*math.Cos(trueAnomaly))
	return vector2.Vec2{X: radius * math.Cos(theta), Y: radius * math.Sin(theta)}
}

func (h *Hyperbola) Velocity(position vector2.Vec2, theta float64) vector2.Vec2 {
	trueAnomaly := theta - h.argumentOfPeriapsis
	radius := position.Norm()
	dRdTheta := h.semiMajorAxis * h.eccentricity * (1 - h.eccentricity*h.eccentricity) * math.Sin(trueAnomaly) /
		math.Pow(h.eccentricity*math.Cos(trueAnomaly)+1, 2)
	dPosdTheta := vector2.Vec2{
		X: dRdTheta*math.Cos(theta) - radius*math.Sin(theta),
		Y: dRdTheta*math.Sin(theta) + radius*math.Cos(theta),
	}
	angularSpeed := h.specificAngularMomentum / (radius * radius)
	return dPosdTheta.Scale(angularSpeed)
}

// Orbits is always 0 for a hyperbola (it never completes a period).
func (h *Hyperbola) Orbits(duration float64) int { return 0 }

func (h *Hyperbola) Direction() Direction           { return h.direction }
func (h *Hyperbola) Eccentricity() float64           { return h.eccentricity }
func (h *Hyperbola) SemiMajorAxis() float64          { return h.semiMajorAxis }
func (h *Hyperbola) ArgumentOfPeriapsis() float64     { return h.argumentOfPeriapsis }
func (h *Hyperbola) SpecificAngularMomentum() float64 { return h.specificAngularMomentum }

// MinTheta and MaxTheta are the asymptote angles (relative to the +X
// axis), beyond which the orbit's radius diverges to infinity.
func (h *Hyperbola) MinTheta() float64 {
	return h.argumentOfPeriapsis - h.asymptoteTrueAnomaly()
}

func (h *Hyperbola) MaxTheta() float64 {
	return h.argumentOfPeriapsis + h.asymptoteTrueAnomaly()
}

func (h *Hyperbola) asymptoteTrueAnomaly() float64 {
	return math.Acos(-1 / h.eccentricity)
}
