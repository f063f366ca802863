package persist

import (
	"testing"

	kitlog "github.com/go-kit/kit/log"

	"github.com/orbitalcombat/simcore/model"
	"github.com/orbitalcombat/simcore/path"
	"github.com/orbitalcombat/simcore/segment"
	"github.com/orbitalcombat/simcore/vector2"
)

const earthMass = 5.972e24

func buildTestModel() *model.Model {
	m := model.New(kitlog.NewNopLogger())

	star := m.CreateOrbitable("Sol", model.Orbitable{
		Mass:    earthMass * 333000,
		Radius:  6.96e8,
		Physics: model.Physics{Stationary: true},
	})

	planetOrbit := segment.NewOrbit(star, earthMass, earthMass*333000, vector2.New(1.496e11, 0), vector2.New(0, 29780), 0)
	_ = m.CreateOrbitable("Earth", model.Orbitable{
		Mass:    earthMass,
		Radius:  6.371e6,
		Kind:    model.KindPlanet,
		Physics: model.Physics{Orbit: planetOrbit},
	})

	p := path.New()
	startOrbit := segment.NewOrbit(star, 1000, earthMass*333000, vector2.New(1.5e11, 0), vector2.New(0, 30000), 0)
	startOrbit.EndAt(0)
	p.AddSegment(startOrbit)

	vessel := model.Vessel{
		Class:     model.ClassFrigate1,
		Faction:   1,
		DryMassKg: 800,
		FuelTank:  &model.FuelTank{CapacityKg: 300, MassKg: 200},
		Engine:    &model.Engine{SpecificImpulse: 300, FuelConsumptionKgPerSec: 2},
		RCS:       &model.RCS{TurnRateRadPerSec: 0.1, FuelRateKgPerSec: 0.01},
	}
	_ = m.CreateVessel("Test Ship", vessel, p)

	burn := segment.NewBurn(star, earthMass*333000, vector2.New(0, 1), vector2.New(50, 0), 0,
		segment.NewRocketEquationFunction(800, 200, 2, 300, 0),
		vector2.New(1.5e11, 0), vector2.New(0, 30000))
	burn.Next(5) // advance partway through the burn before saving
	p.AddSegment(burn)

	return m
}

func TestSaveLoadRoundTrip(t *testing.T) {
	m := buildTestModel()
	m.Clock.Time = 123.5

	data, err := Save(m)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(data, kitlog.NewNopLogger())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if loaded.Clock.Time != m.Clock.Time {
		t.Fatalf("clock time: got %v, want %v", loaded.Clock.Time, m.Clock.Time)
	}

	wantOrbitables := m.Orbitables()
	gotOrbitables := loaded.Orbitables()
	if len(gotOrbitables) != len(wantOrbitables) {
		t.Fatalf("orbitable count: got %d, want %d", len(gotOrbitables), len(wantOrbitables))
	}

	wantVessels := m.Vessels()
	gotVessels := loaded.Vessels()
	if len(gotVessels) != len(wantVessels) {
		t.Fatalf("vessel count: got %d, want %d", len(gotVessels), len(wantVessels))
	}

	for _, e := range wantVessels {
		wantState := m.StateAtTime(e, 5)
		gotState := loaded.StateAtTime(e, 5)
		if !closeEnough(wantState.Position, gotState.Position) || !closeEnough(wantState.Velocity, gotState.Velocity) {
			t.Fatalf("vessel %v state at t=5 diverged after round trip: got %+v, want %+v", e, gotState, wantState)
		}
		if m.Name(e) != loaded.Name(e) {
			t.Fatalf("vessel name: got %q, want %q", loaded.Name(e), m.Name(e))
		}
	}
}

func TestLoadRejectsUnknownSchema(t *testing.T) {
	_, err := Load(`{"schema":99}`, kitlog.NewNopLogger())
	if err == nil {
		t.Fatal("expected an error for an unrecognised schema version")
	}
	if _, ok := err.(ErrUnsupportedSchema); !ok {
		t.Fatalf("expected ErrUnsupportedSchema, got %T: %v", err, err)
	}
}

func closeEnough(a, b vector2.Vec2) bool {
	const eps = 1e-6
	d := a.Sub(b)
	return d.Norm() < eps*(1+a.Norm())
}
