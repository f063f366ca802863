package model

import (
	"testing"

	kitlog "github.com/go-kit/kit/log"

	"github.com/orbitalcombat/simcore/path"
	"github.com/orbitalcombat/simcore/segment"
	"github.com/orbitalcombat/simcore/vector2"
)

const earthMass = 5.972e24

func TestCreateOrbitableAndVessel(t *testing.T) {
	m := New(kitlog.NewNopLogger())

	star := m.CreateOrbitable("Sol", Orbitable{
		Mass:    earthMass * 333000,
		Radius:  6.96e8,
		Physics: Physics{Stationary: true},
	})
	if m.Name(star) != "Sol" {
		t.Fatalf("Name: got %q, want %q", m.Name(star), "Sol")
	}

	p := path.New()
	o := segment.NewOrbit(star, 1000, earthMass*333000, vector2.New(1.5e11, 0), vector2.New(0, 30000), 0)
	o.EndAt(1e9)
	p.AddSegment(o)

	ship := m.CreateVessel("Scout", Vessel{Class: ClassScout1, DryMassKg: 1000}, p)
	if m.Name(ship) != "Scout" {
		t.Fatalf("Name: got %q, want %q", m.Name(ship), "Scout")
	}

	gotPath, ok := m.Path(ship)
	if !ok || gotPath != p {
		t.Fatal("Path should return the exact *path.Path passed to CreateVessel")
	}

	if len(m.Vessels()) != 1 {
		t.Fatalf("Vessels: got %d, want 1", len(m.Vessels()))
	}
	if len(m.Orbitables()) != 1 {
		t.Fatalf("Orbitables: got %d, want 1", len(m.Orbitables()))
	}
}

func TestUpdateAdvancesClockAndPosition(t *testing.T) {
	m := New(kitlog.NewNopLogger())

	star := m.CreateOrbitable("Sol", Orbitable{
		Mass:    earthMass * 333000,
		Radius:  6.96e8,
		Physics: Physics{Stationary: true},
	})

	p := path.New()
	o := segment.NewOrbit(star, 1000, earthMass*333000, vector2.New(1.5e11, 0), vector2.New(0, 30000), 0)
	o.EndAt(1e9)
	p.AddSegment(o)
	ship := m.CreateVessel("Scout", Vessel{Class: ClassScout1, DryMassKg: 1000}, p)

	before := m.StateAtTime(ship, m.Clock.Time)
	m.Clock.Step = TimeStep{Explicit: true, Speed: 1}

	const dt = 1.0
	for i := 0; i < 10; i++ {
		m.Update(dt)
	}

	if m.Clock.Time != 10 {
		t.Fatalf("Clock.Time after 10 ticks at 1x: got %v, want 10", m.Clock.Time)
	}

	after := m.StateAtTime(ship, m.Clock.Time)
	if after.Position == before.Position {
		t.Fatal("vessel position should have changed after advancing ten seconds along its orbit")
	}
}

func TestPausedClockDoesNotAdvance(t *testing.T) {
	m := New(kitlog.NewNopLogger())
	m.Clock.Paused = true
	m.Update(5)
	if m.Clock.Time != 0 {
		t.Fatalf("a paused clock must not advance: got %v, want 0", m.Clock.Time)
	}
}
