package conic

import (
	"math"
	"testing"

	"github.com/orbitalcombat/simcore/vector2"
)

const earthMass = 5.972e24

func almostEqual(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestNewCircularOrbitIsEllipseWithNearZeroEccentricity(t *testing.T) {
	r := 7e6
	mu := GravitationalConstant * earthMass
	v := math.Sqrt(mu / r) // circular-orbit speed

	c := New(earthMass, vector2.New(r, 0), vector2.New(0, v))
	if _, ok := c.(*Ellipse); !ok {
		t.Fatalf("circular orbit should produce an Ellipse, got %T", c)
	}
	if c.Eccentricity() >= 0.01 {
		t.Fatalf("circular-orbit eccentricity should be near zero, got %v", c.Eccentricity())
	}
}

func TestNewHyperbolicOrbit(t *testing.T) {
	r := 7e6
	mu := GravitationalConstant * earthMass
	escapeSpeed := math.Sqrt(2 * mu / r)
	v := escapeSpeed * 1.5 // well above escape speed: hyperbolic

	c := New(earthMass, vector2.New(r, 0), vector2.New(0, v))
	if _, ok := c.(*Hyperbola); !ok {
		t.Fatalf("above-escape-speed orbit should produce a Hyperbola, got %T", c)
	}
	if c.Eccentricity() <= 1 {
		t.Fatalf("hyperbolic eccentricity should exceed 1, got %v", c.Eccentricity())
	}
}

func TestEllipsePositionAtPeriapsisMatchesConstruction(t *testing.T) {
	pos := vector2.New(7e6, 0)
	mu := GravitationalConstant * earthMass
	v := math.Sqrt(mu/7e6) * 1.1 // mildly eccentric, still elliptical
	vel := vector2.New(0, v)

	c := New(earthMass, pos, vel)
	e, ok := c.(*Ellipse)
	if !ok {
		t.Fatalf("expected an Ellipse, got %T", c)
	}

	theta := e.ArgumentOfPeriapsis()
	got := e.Position(theta)
	// Periapsis distance is a(1-e).
	wantDist := e.SemiMajorAxis() * (1 - e.Eccentricity())
	if !almostEqual(got.Norm(), wantDist, wantDist*1e-6) {
		t.Fatalf("periapsis distance: got %v, want %v", got.Norm(), wantDist)
	}
}

// A circular-ish orbit around an Earth-mass body should come out as a
// near-zero-eccentricity ellipse with a ~1-year period at this radius.
func TestCircularLEOEllipseScenario(t *testing.T) {
	c := New(5.9722e24, vector2.New(1.5e8, 0), vector2.New(0, 30290))
	e, ok := c.(*Ellipse)
	if !ok {
		t.Fatalf("expected an Ellipse, got %T", c)
	}
	if e.Eccentricity() >= 0.02 {
		t.Fatalf("eccentricity: got %v, want < 0.02", e.Eccentricity())
	}
	wantPeriod := 3.156e7
	if !almostEqual(e.Period(), wantPeriod, wantPeriod*0.001) {
		t.Fatalf("period: got %v, want %v (±0.1%%)", e.Period(), wantPeriod)
	}
}

// A 15 km/s flyby at LEO altitude is strongly hyperbolic; the expected
// eccentricity and time-to-anomaly values are textbook-checkable.
func TestHyperbolicFlybyScenario(t *testing.T) {
	c := New(5.972e24, vector2.New(6.6781e6, 0), vector2.New(0, 15000))
	h, ok := c.(*Hyperbola)
	if !ok {
		t.Fatalf("expected a Hyperbola, got %T", c)
	}
	wantEcc := 2.7696
	if !almostEqual(h.Eccentricity(), wantEcc, wantEcc*0.001) {
		t.Fatalf("eccentricity: got %v, want %v (±0.1%%)", h.Eccentricity(), wantEcc)
	}

	theta := 100 * math.Pi / 180
	wantTau := 4140.0
	gotTau := h.TimeSinceLastPeriapsis(theta)
	if !almostEqual(gotTau, wantTau, 3) {
		t.Fatalf("time since periapsis at theta=100deg: got %v, want %v (±3s)", gotTau, wantTau)
	}
}

func TestEllipseThetaTimeRoundTrip(t *testing.T) {
	pos := vector2.New(7e6, 0)
	mu := GravitationalConstant * earthMass
	v := math.Sqrt(mu/7e6) * 1.05
	vel := vector2.New(0, v)

	e := New(earthMass, pos, vel).(*Ellipse)

	for _, tau := range []float64{0, 100, e.Period() / 4, e.Period() / 2, e.Period() * 0.9} {
		theta := e.ThetaFromTimeSincePeriapsis(tau)
		gotTau := e.TimeSinceLastPeriapsis(theta)
		wantTau := math.Mod(tau, e.Period())
		if wantTau < 0 {
			wantTau += e.Period()
		}
		if !almostEqual(gotTau, wantTau, e.Period()*1e-6) {
			t.Fatalf("theta/time round trip at tau=%v: got %v, want %v", tau, gotTau, wantTau)
		}
	}
}
