package encounter

import (
	"math"
	"testing"

	"github.com/orbitalcombat/simcore/entity"
	"github.com/orbitalcombat/simcore/segment"
	"github.com/orbitalcombat/simcore/vector2"
)

const earthMass = 5.972e24

func testEntity(index uint32) entity.Entity { return entity.Entity{Index: index, Generation: 1} }

// A moderately eccentric ellipse (periapsis 7e6 m, apoapsis ~3.8e7 m)
// with a parent SOI strictly between the two radii must report an exit:
// the SDF is positive at periapsis and negative at apoapsis.
func TestSolveExitDetectsSOICrossingWithinOnePeriod(t *testing.T) {
	mu := 6.674e-11 * earthMass
	r := 7e6
	v := math.Sqrt(mu/r) * 1.3 // periapsis speed for e ~ 0.69

	child := testEntity(1)
	grandparent := testEntity(2)
	orbit := segment.NewOrbit(testEntity(3), 1000, earthMass, vector2.New(r, 0), vector2.New(0, v), 0)

	const parentSOI = 2e7
	enc := Solve(child, orbit, parentSOI, grandparent, nil, 0, 1e8)
	if enc == nil {
		t.Fatal("expected an exit encounter, got nil")
	}
	if enc.Type != TypeExit {
		t.Fatalf("Type: got %v, want TypeExit", enc.Type)
	}
	if enc.NewParent != grandparent {
		t.Fatalf("NewParent: got %v, want %v", enc.NewParent, grandparent)
	}
	if enc.Time <= 0 || enc.Time > 1e8 {
		t.Fatalf("Time out of expected bounds: got %v", enc.Time)
	}
}

// A vessel on a strongly hyperbolic orbit around Earth, well inside
// Earth's sphere of influence at startTime, must be predicted to exit to
// its grandparent (the Sun) before endTime.
func TestSolveEscapeFromEarthScenario(t *testing.T) {
	child := testEntity(1)
	earth := testEntity(2)
	sun := testEntity(3)
	orbit := segment.NewOrbit(earth, 1000, earthMass, vector2.New(6.6781e6, 0), vector2.New(0, 15000), 0)

	const parentSOI = 9.24e8 // Earth's real sphere of influence, in metres
	const endTime = 1e7
	enc := Solve(child, orbit, parentSOI, sun, nil, 0, endTime)
	if enc == nil {
		t.Fatal("expected an escape (exit) encounter, got nil")
	}
	if enc.Type != TypeExit {
		t.Fatalf("Type: got %v, want TypeExit", enc.Type)
	}
	if enc.NewParent != sun {
		t.Fatalf("NewParent: got %v, want the Sun entity %v", enc.NewParent, sun)
	}
	if enc.Time <= 0 || enc.Time > endTime {
		t.Fatalf("Time out of expected bounds: got %v", enc.Time)
	}
}

// Two bodies sharing a parent, on same-radius circular orbits rotating
// in opposite directions, meet at a quarter period; entering the
// sibling's sphere of influence shortly before that meeting must be
// reported as an Entrance encounter into the sibling.
func TestSolveEntranceIntoSiblingScenario(t *testing.T) {
	mu := 6.674e-11 * earthMass
	r := 1e8
	v := math.Sqrt(mu / r)

	child := testEntity(1)
	parent := testEntity(2)
	moon := testEntity(3)

	childOrbit := segment.NewOrbit(parent, 1000, earthMass, vector2.New(r, 0), vector2.New(0, v), 0)
	moonOrbit := segment.NewOrbit(parent, 7.342e22, earthMass, vector2.New(-r, 0), vector2.New(0, v), 0)

	period := 2 * math.Pi * math.Sqrt(r*r*r/mu)
	const moonSOI = 1e6
	siblings := []Sibling{{Entity: moon, Orbit: moonOrbit, SphereOfInfluence: moonSOI}}

	enc := Solve(child, childOrbit, 1e12, entity.Nil, siblings, 0, period)
	if enc == nil {
		t.Fatal("expected an entrance encounter into the sibling, got nil")
	}
	if enc.Type != TypeEntrance {
		t.Fatalf("Type: got %v, want TypeEntrance", enc.Type)
	}
	if enc.NewParent != moon {
		t.Fatalf("NewParent: got %v, want %v", enc.NewParent, moon)
	}

	// The SOI boundary is crossed shortly before the T/4 meeting point,
	// at closing speed ~2v.
	wantTime := period / 4
	if enc.Time >= wantTime || math.Abs(enc.Time-wantTime) > 1000 {
		t.Fatalf("Time: got %v, want shortly before %v (the T/4 meeting point)", enc.Time, wantTime)
	}
}

// A near-circular orbit well inside a generous parent SOI, with one
// sibling orbiting far away, yields no encounter before the time bound.
func TestSolveReturnsNilWhenFullyInsideSOIAndNoSiblingsClose(t *testing.T) {
	mu := 6.674e-11 * earthMass
	r := 7e6
	v := math.Sqrt(mu / r) // circular

	child := testEntity(1)
	parent := testEntity(3)
	grandparent := testEntity(2)
	orbit := segment.NewOrbit(parent, 1000, earthMass, vector2.New(r, 0), vector2.New(0, v), 0)

	farSiblingOrbit := segment.NewOrbit(parent, 7.35e22, earthMass, vector2.New(3.84e8, 0), vector2.New(0, 1000), 0)
	siblings := []Sibling{{Entity: testEntity(4), Orbit: farSiblingOrbit, SphereOfInfluence: 6.6e7}}

	const parentSOI = 1e9 // far larger than this orbit's apoapsis
	enc := Solve(child, orbit, parentSOI, grandparent, siblings, 0, 1e4)
	if enc != nil {
		t.Fatalf("expected no encounter, got %+v", enc)
	}
}
