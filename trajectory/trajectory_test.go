package trajectory_test

import (
	"math"
	"testing"

	kitlog "github.com/go-kit/kit/log"

	"github.com/orbitalcombat/simcore/model"
	"github.com/orbitalcombat/simcore/path"
	"github.com/orbitalcombat/simcore/segment"
	"github.com/orbitalcombat/simcore/trajectory"
	"github.com/orbitalcombat/simcore/vector2"
)

const (
	sunMass   = 1.989e30
	earthMass = 5.972e24
)

// escapeSystem builds Sun -> Earth -> vessel with the vessel on a
// strongly hyperbolic orbit that leaves Earth's SOI.
func escapeSystem(t *testing.T) (*model.Model, *path.Path) {
	t.Helper()
	m := model.New(kitlog.NewNopLogger())
	sun := m.CreateOrbitable("sun", model.Orbitable{
		Mass:    sunMass,
		Physics: model.Physics{Stationary: true},
	})
	earthOrbit := segment.NewOrbit(sun, earthMass, sunMass, vector2.New(1.496e11, 0), vector2.New(0, 29780), 0)
	earth := m.CreateOrbitable("earth", model.Orbitable{
		Mass:    earthMass,
		Physics: model.Physics{Orbit: earthOrbit},
	})

	p := path.New()
	p.AddSegment(segment.NewOrbit(earth, 1e4, earthMass, vector2.New(6.6781e6, 0), vector2.New(0, 15000), 0))
	m.CreateVessel("vessel", model.Vessel{Class: model.ClassScout1, DryMassKg: 1e4}, p)
	return m, p
}

func trailingOrbit(t *testing.T, p *path.Path) *segment.Orbit {
	t.Helper()
	future := p.FutureSegments()
	o, ok := future[len(future)-1].(*segment.Orbit)
	if !ok {
		t.Fatalf("trailing segment is not an orbit")
	}
	return o
}

func TestRecomputeTrajectorySplicesExitOrbit(t *testing.T) {
	m, p := escapeSystem(t)
	vessel := m.Vessels()[0]

	trajectory.RecomputeTrajectory(vessel, p, m, trajectory.DefaultMaxEncounters)

	future := p.FutureSegments()
	if len(future) < 2 {
		t.Fatalf("expected the escape to splice at least one new orbit, got %d segments", len(future))
	}

	first := future[0].(*segment.Orbit)
	second := future[1].(*segment.Orbit)
	if second.Parent() == first.Parent() {
		t.Fatalf("expected the spliced orbit to orbit a new parent")
	}
	if second.StartTime() != first.EndTime() {
		t.Fatalf("spliced orbit must start where the previous ends: %v != %v", second.StartTime(), first.EndTime())
	}

	// The frame change must be consistent: transforming the second
	// orbit's start state back into Earth's frame must land on the first
	// orbit's end state.
	tEnc := first.EndTime()
	earthState := m.StateAtTime(first.Parent(), tEnc)
	backPos := second.PositionAtTime(tEnc).Sub(earthState.Position)
	backVel := second.VelocityAtTime(tEnc).Sub(earthState.Velocity)
	if backPos.Sub(first.PositionAtTime(tEnc)).Norm() > 1 {
		t.Fatalf("position discontinuity across the SOI transition: %v m", backPos.Sub(first.PositionAtTime(tEnc)).Norm())
	}
	if backVel.Sub(first.VelocityAtTime(tEnc)).Norm() > 1e-3 {
		t.Fatalf("velocity discontinuity across the SOI transition: %v m/s", backVel.Sub(first.VelocityAtTime(tEnc)).Norm())
	}
}

func TestRecomputeTrajectoryBoundsFinalOrbit(t *testing.T) {
	m, p := escapeSystem(t)
	vessel := m.Vessels()[0]

	trajectory.RecomputeTrajectory(vessel, p, m, trajectory.DefaultMaxEncounters)

	if end := trailingOrbit(t, p).EndTime(); end != trajectory.DefaultHorizon {
		t.Fatalf("trailing orbit should end at the prediction horizon, got %v", end)
	}
}

func TestRecomputeEntireTrajectoryRebuildsFromCurrentState(t *testing.T) {
	m, p := escapeSystem(t)
	vessel := m.Vessels()[0]

	trajectory.RecomputeTrajectory(vessel, p, m, trajectory.DefaultMaxEncounters)
	segmentsBefore := len(p.FutureSegments())

	trajectory.RecomputeEntireTrajectory(vessel, p, m, trajectory.DefaultMaxEncounters)

	if len(p.FutureSegments()) != segmentsBefore {
		t.Fatalf("re-predicting an unchanged state should reproduce the same segment count: %d != %d",
			len(p.FutureSegments()), segmentsBefore)
	}
	current := p.Current().(*segment.Orbit)
	if current.StartTime() != 0 {
		t.Fatalf("rebuilt prediction must start from the current state's time, got %v", current.StartTime())
	}
}

func TestNextOrbitMatchesRecomputeSplice(t *testing.T) {
	m, p := escapeSystem(t)
	vessel := m.Vessels()[0]

	first := p.FutureSegments()[0].(*segment.Orbit)
	perceived := trajectory.NextOrbit(vessel, first, m)
	if perceived == nil {
		t.Fatalf("expected the escape to produce a next orbit")
	}

	trajectory.RecomputeTrajectory(vessel, p, m, trajectory.DefaultMaxEncounters)
	spliced := p.FutureSegments()[1].(*segment.Orbit)

	if perceived.Parent() != spliced.Parent() {
		t.Fatalf("read-only prediction disagrees on the new parent")
	}
	if math.Abs(perceived.StartTime()-spliced.StartTime()) > 1 {
		t.Fatalf("read-only prediction disagrees on the transition time: %v vs %v",
			perceived.StartTime(), spliced.StartTime())
	}
}
