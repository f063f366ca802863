package encounter

import (
	"math"

	"github.com/orbitalcombat/simcore/conic"
	"github.com/orbitalcombat/simcore/entity"
	"github.com/orbitalcombat/simcore/numerics"
	"github.com/orbitalcombat/simcore/segment"
)

// solveExit detects the next time the child's distance from its parent
// exceeds parentSOI.
func solveExit(child entity.Entity, orbit *segment.Orbit, parentSOI float64, grandparent entity.Entity, startTime, endTime float64) *Encounter {
	if math.IsInf(parentSOI, 1) {
		// The parent is a root body; there is nothing to exit into.
		return nil
	}

	var crossing float64
	var found bool

	if ellipse, ok := orbit.Conic().(*conic.Ellipse); ok {
		crossing, found = findEllipticalExitTime(orbit, ellipse, parentSOI, startTime, endTime)
	} else {
		crossing, found = findHyperbolicExitTime(orbit, parentSOI, startTime, endTime)
	}

	if !found {
		return nil
	}
	if crossing < startTime+minimumLeadTime || crossing > endTime {
		return nil
	}
	return &Encounter{Type: TypeExit, Entity: child, NewParent: grandparent, Time: crossing}
}

// findEllipticalExitTime works on a signed distance in terms of theta
// that is negative outside the SOI. The SDF is extremal at apoapsis: if
// it is still positive there the orbit never leaves. Otherwise the
// crossing lies on the half of the orbit between periapsis and apoapsis
// that the body traverses outbound, which depends on the orbit
// direction; ITP over that half finds the crossing angle, and the angle
// converts to the first passage time at or after startTime.
func findEllipticalExitTime(orbit *segment.Orbit, ellipse *conic.Ellipse, soi, startTime, endTime float64) (float64, bool) {
	sdf := func(theta float64) float64 {
		return soi - orbit.Conic().Position(theta).Norm()
	}
	periapsis := ellipse.ArgumentOfPeriapsis()
	apoapsis := periapsis + math.Pi

	if sdf(apoapsis) >= 0 {
		return 0, false
	}

	var theta float64
	var err error
	if ellipse.Direction() == conic.Clockwise {
		// Outbound along decreasing angle: crossing between periapsis and
		// apoapsis walking anticlockwise.
		from := periapsis
		to := apoapsis
		if from < to {
			from += 2 * math.Pi
		}
		theta, err = numerics.ITP(sdf, to, from)
	} else {
		from := apoapsis
		to := periapsis
		if from < to {
			from += 2 * math.Pi
		}
		theta, err = numerics.ITP(sdf, from, to)
	}
	if err != nil {
		return 0, false
	}

	t := orbit.TimeAtTheta(theta)
	for t < startTime {
		t += ellipse.Period()
	}
	if t > endTime {
		return 0, false
	}
	return t, true
}

// findHyperbolicExitTime probes forward with exponentially growing steps;
// a hyperbola's distance from its parent past periapsis is monotonic in
// time, so the first sign flip of the SDF brackets the single crossing,
// which ITP then refines.
func findHyperbolicExitTime(orbit *segment.Orbit, soi, startTime, endTime float64) (float64, bool) {
	f := func(t float64) float64 {
		return soi - orbit.PositionAtTime(t).Norm()
	}

	// A fresh orbit spliced in at an entrance starts exactly on the SOI
	// boundary, so the first sample can land on either side of zero; the
	// loop only reacts to a positive-to-negative flip, which skips that
	// ambiguity and fires on the genuine outbound crossing.
	prev := f(startTime)

	timeStep := 4.0
	for startTime+timeStep < endTime {
		// Deliberately overshoot endTime by one doubling: a crossing can sit
		// between the last in-bound probe and the first out-of-bound one.
		timeStep *= 2
		t := startTime + timeStep
		val := f(t)
		if val < 0 && prev > 0 {
			crossing, err := numerics.ITP(f, t-timeStep/2, t)
			if err != nil {
				return 0, false
			}
			if crossing > endTime {
				return 0, false
			}
			return crossing, true
		}
		prev = val
	}
	return 0, false
}
