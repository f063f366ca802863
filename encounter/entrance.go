package encounter

import (
	"math"

	"github.com/orbitalcombat/simcore/conic"
	"github.com/orbitalcombat/simcore/entity"
	"github.com/orbitalcombat/simcore/numerics"
	"github.com/orbitalcombat/simcore/segment"
)

// maxWindowPasses bounds the total number of window searches one
// entrance solve may perform; with a far horizon and a phase that never
// quite lines up, periodic windows would otherwise repeat indefinitely.
const maxWindowPasses = 4096

// solveEntrance finds the earliest time the child comes within the given
// sibling's sphere of influence, in (startTime, endTime].
func solveEntrance(child entity.Entity, orbit *segment.Orbit, sib Sibling, startTime, endTime float64) *Encounter {
	_, childClosed := orbit.Conic().(*conic.Ellipse)
	_, sibClosed := sib.Orbit.Conic().(*conic.Ellipse)
	if !sibClosed {
		// Orbitables follow closed, predetermined orbits; a hyperbolic
		// sibling has nothing to be captured by.
		return nil
	}

	var crossing float64
	var found bool
	if childClosed {
		crossing, found = solveEntranceEllipse(orbit, sib, startTime, endTime)
	} else {
		crossing, found = solveEntranceHyperbola(orbit, sib, startTime, endTime)
	}
	if !found {
		return nil
	}
	if crossing < startTime+minimumLeadTime || crossing > endTime {
		return nil
	}
	return &Encounter{Type: TypeEntrance, Entity: child, NewParent: sib.Entity, Time: crossing}
}

// solveEntranceEllipse runs the bounding classification for an elliptical
// child, then walks the resulting windows in chronological order,
// advancing periodic windows by the child's period, until a crossing is
// found or every window has marched past the horizon.
func solveEntranceEllipse(orbit *segment.Orbit, sib Sibling, startTime, endTime float64) (float64, bool) {
	windows, err := computeEllipseBound(orbit, sib, startTime)
	if err != nil || len(windows) == 0 {
		return 0, false
	}
	for i := range windows {
		windows[i].advanceUntil(startTime)
	}

	best := math.Inf(1)
	searchFrom := startTime + minimumLeadTime
	for pass := 0; pass < maxWindowPasses && len(windows) > 0; pass++ {
		soonest := 0
		for i := range windows {
			if windows[i].start < windows[soonest].start {
				soonest = i
			}
		}
		horizon := math.Min(endTime, best)
		w := &windows[soonest]
		if w.start > horizon {
			break
		}
		if t, ok := w.search(searchFrom, horizon); ok && t < best {
			best = t
		}
		if w.periodic {
			w.advance()
		} else {
			windows = append(windows[:soonest], windows[soonest+1:]...)
		}
	}

	if math.IsInf(best, 1) {
		return 0, false
	}
	return best, true
}

// solveEntranceHyperbola bounds the search for a hyperbolic child by the
// radius the sibling's SOI can reach at all: the child's distance from
// the shared parent is unimodal around periapsis, so the radius limit
// apoapsis + SOI of the sibling's orbit cuts a single time interval out
// of the flyby (no lower radius limit is applied), which is then split
// into sub-windows.
func solveEntranceHyperbola(orbit *segment.Orbit, sib Sibling, startTime, endTime float64) (float64, bool) {
	sibEllipse := sib.Orbit.Conic().(*conic.Ellipse)
	a := sibEllipse.SemiMajorAxis()
	e := sibEllipse.Eccentricity()
	bandHigh := a*(1+e) + sib.SphereOfInfluence

	r := func(t float64) float64 { return orbit.PositionAtTime(t).Norm() }

	periapsisTime := orbit.TimeAtTheta(orbit.Conic().ArgumentOfPeriapsis())
	if r(periapsisTime) > bandHigh {
		return 0, false
	}

	var tIn float64
	switch {
	case r(startTime) <= bandHigh:
		tIn = startTime
	case startTime < periapsisTime:
		in, err := numerics.ITP(func(t float64) float64 { return r(t) - bandHigh }, startTime, periapsisTime)
		if err != nil {
			return 0, false
		}
		tIn = in
	default:
		// Outbound and already beyond the band.
		return 0, false
	}

	// Probe outbound with doubling steps for the band exit.
	tOut := endTime
	probeFrom := math.Max(periapsisTime, tIn)
	step := 4.0
	for probeFrom+step < endTime {
		step *= 2
		t := probeFrom + step
		if r(t) > bandHigh {
			out, err := numerics.ITP(func(x float64) float64 { return r(x) - bandHigh }, probeFrom+step/2, t)
			if err == nil {
				tOut = out
			}
			break
		}
	}
	tOut = math.Min(tOut, endTime)
	if tOut <= tIn {
		return 0, false
	}

	// One sub-window per eighth of the sibling's period, clamped to 4..64
	// sub-windows.
	n := int(math.Ceil((tOut - tIn) / (sibEllipse.Period() / 8)))
	if n < 4 {
		n = 4
	}
	if n > 64 {
		n = 64
	}

	searchFrom := startTime + minimumLeadTime
	for i := 0; i < n; i++ {
		w := window{
			orbit: orbit,
			sib:   sib,
			start: tIn + (float64(i)/float64(n))*(tOut-tIn),
			end:   tIn + (float64(i+1)/float64(n))*(tOut-tIn),
		}
		if t, ok := w.search(searchFrom, endTime); ok {
			return t, true
		}
	}
	return 0, false
}
