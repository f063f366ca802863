package snapshot

import (
	"testing"

	kitlog "github.com/go-kit/kit/log"

	"github.com/orbitalcombat/simcore/model"
	"github.com/orbitalcombat/simcore/path"
	"github.com/orbitalcombat/simcore/segment"
	"github.com/orbitalcombat/simcore/vector2"
)

const earthMass = 5.972e24

func TestOmniscientViewSeesRealPosition(t *testing.T) {
	m := model.New(kitlog.NewNopLogger())
	star := m.CreateOrbitable("Sol", model.Orbitable{
		Mass:    earthMass * 333000,
		Physics: model.Physics{Stationary: true},
	})

	p := path.New()
	o := segment.NewOrbit(star, 1000, earthMass*333000, vector2.New(1.5e11, 0), vector2.New(0, 30000), 0)
	o.EndAt(1e9)
	p.AddSegment(o)
	ship := m.CreateVessel("Scout", model.Vessel{Class: model.ClassScout1, Faction: 1}, p)

	v := New(m, 0, nil)
	want := m.StateAtTime(ship, 0)
	got := v.Position(ship)
	if got != want.Position {
		t.Fatalf("omniscient View.Position: got %+v, want %+v", got, want.Position)
	}
	if v.Name(ship) != "Scout" {
		t.Fatalf("View.Name: got %q, want Scout", v.Name(ship))
	}
}

func TestObserverOfSameFactionSeesTarget(t *testing.T) {
	m := model.New(kitlog.NewNopLogger())
	star := m.CreateOrbitable("Sol", model.Orbitable{
		Mass:    earthMass * 333000,
		Physics: model.Physics{Stationary: true},
	})
	p := path.New()
	o := segment.NewOrbit(star, 1000, earthMass*333000, vector2.New(1.5e11, 0), vector2.New(0, 30000), 0)
	o.EndAt(1e9)
	p.AddSegment(o)
	ship := m.CreateVessel("Scout", model.Vessel{Class: model.ClassScout1, Faction: 1}, p)

	sameFaction := model.Faction(1)
	v := New(m, 0, &sameFaction)
	if v.hidden(ship) {
		t.Fatal("a vessel of the observer's own faction must never be hidden")
	}

	otherFaction := model.Faction(2)
	v2 := New(m, 0, &otherFaction)
	if !v2.hidden(ship) {
		t.Fatal("a vessel of a different faction must be hidden from the observer")
	}
}

func TestCelestialBodyNeverHidden(t *testing.T) {
	m := model.New(kitlog.NewNopLogger())
	star := m.CreateOrbitable("Sol", model.Orbitable{
		Mass:    earthMass * 333000,
		Physics: model.Physics{Stationary: true},
	})
	f := model.Faction(1)
	v := New(m, 0, &f)
	if v.hidden(star) {
		t.Fatal("a celestial body should never be reported hidden")
	}
}
