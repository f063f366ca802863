package encounter

import (
	"math"

	"github.com/orbitalcombat/simcore/conic"
	"github.com/orbitalcombat/simcore/numerics"
	"github.com/orbitalcombat/simcore/segment"
)

// findIntersections returns the two angles at which f crosses zero, one
// on the arc between the SDF's two stationary angles and one on the
// opposite arc (found by unwrapping the higher bound down a revolution).
func findIntersections(f func(float64) float64, minTheta, maxTheta float64) (float64, float64, error) {
	theta1, err := numerics.ITP(f, minTheta, maxTheta)
	if err != nil {
		return 0, 0, err
	}
	newMin, newMax := minTheta, maxTheta
	if minTheta > maxTheta {
		newMin = minTheta - 2*math.Pi
	} else {
		newMax = maxTheta - 2*math.Pi
	}
	theta2, err := numerics.ITP(f, newMin, newMax)
	if err != nil {
		return 0, 0, err
	}
	return numerics.NormalizeAngle(theta1), numerics.NormalizeAngle(theta2), nil
}

// angleWindowToTimeWindow converts an anticlockwise-ordered angle window
// on the orbit to the time interval during which the orbit occupies it.
// A clockwise orbit traverses the window in reverse, entering at the
// window's far end.
func angleWindowToTimeWindow(orbit *segment.Orbit, from, to float64) (float64, float64) {
	tFrom := orbit.TimeAtTheta(from)
	tTo := orbit.TimeAtTheta(to)
	if orbit.Conic().Direction() == conic.Clockwise {
		tFrom, tTo = tTo, tFrom
	}
	if tTo < tFrom {
		tTo += orbit.Period()
	}
	return tFrom, tTo
}

// bounderData carries the classification inputs for one (child orbit,
// sibling) pair while the ellipse bounder decides which window shape the
// SDF envelope implies.
type bounderData struct {
	orbit     *segment.Orbit
	sib       Sibling
	minTheta  float64
	maxTheta  float64
	soi       float64
	startTime float64
}

// segmented splits [from, to] into n equal sub-windows. The per-window
// solver relies on each window holding at most one approach minimum, with
// the distance derivative negative at the start and positive at the end
// when one is present; splitting keeps that assumption honest.
func (d bounderData) segmented(periodic bool, from, to float64, n int) []window {
	out := make([]window, 0, n)
	for i := 0; i < n; i++ {
		start := from + (float64(i)/float64(n))*(to-from)
		end := from + (float64(i+1)/float64(n))*(to-from)
		out = append(out, window{orbit: d.orbit, sib: d.sib, periodic: periodic, start: start, end: end})
	}
	return out
}

// noBounds handles the degenerate case where the whole orbit sits inside
// the band the sibling SOI sweeps: an encounter is possible at any angle,
// so one full period is split into enough segments that any one of them
// is very unlikely to hold more than one minimum.
func (d bounderData) noBounds() []window {
	period := d.orbit.Period()
	return d.segmented(true, d.startTime, d.startTime+period, 16)
}

func (d bounderData) oneBoundInner(sdf func(float64) float64) ([]window, error) {
	// Window endpoints are on the INSIDE of the sibling's orbit.
	f := func(theta float64) float64 { return sdf(theta) - d.soi }
	i1, i2, err := findIntersections(f, d.minTheta, d.maxTheta)
	if err != nil {
		return nil, err
	}
	from, to := numerics.MakeRangeContaining(i1, i2, d.minTheta)
	tFrom, tTo := angleWindowToTimeWindow(d.orbit, from, to)
	return d.segmented(true, tFrom, tTo, 4), nil
}

func (d bounderData) oneBoundOuter(sdf func(float64) float64) ([]window, error) {
	// Window endpoints are on the OUTSIDE of the sibling's orbit.
	f := func(theta float64) float64 { return sdf(theta) + d.soi }
	i1, i2, err := findIntersections(f, d.minTheta, d.maxTheta)
	if err != nil {
		return nil, err
	}
	from, to := numerics.MakeRangeContaining(i1, i2, d.maxTheta)
	tFrom, tTo := angleWindowToTimeWindow(d.orbit, from, to)
	return d.segmented(true, tFrom, tTo, 4), nil
}

// twoBounds handles a child orbit crossing the sibling's orbit: the SDF
// has two zero crossings, and each gets its own window built from the
// four intersections of the envelope with the +/- SOI levels.
func (d bounderData) twoBounds(sdf func(float64) float64) ([]window, error) {
	fInner := func(theta float64) float64 { return sdf(theta) - d.soi }
	fOuter := func(theta float64) float64 { return sdf(theta) + d.soi }
	in1, in2, err := findIntersections(fInner, d.minTheta, d.maxTheta)
	if err != nil {
		return nil, err
	}
	out1, out2, err := findIntersections(fOuter, d.minTheta, d.maxTheta)
	if err != nil {
		return nil, err
	}
	zero1, zero2, err := findIntersections(sdf, d.minTheta, d.maxTheta)
	if err != nil {
		return nil, err
	}

	// Four boundary angles and two orbit intersections: pair the
	// boundaries into two windows covering exactly one intersection each,
	// picking for the first window the partner that keeps it tightest.
	from := in1
	possibleTos := []float64{in2, out1, out2}
	toIndex := 0
	minDistance := math.MaxFloat64
	for i, possibleTo := range possibleTos {
		lo, hi := numerics.MakeRangeContaining(from, possibleTo, zero1)
		if dist := numerics.AngularDistance(lo, hi); dist < minDistance {
			minDistance = dist
			toIndex = i
		}
	}
	to := possibleTos[toIndex]
	possibleTos = append(possibleTos[:toIndex], possibleTos[toIndex+1:]...)

	from1, to1 := numerics.MakeRangeContaining(from, to, zero1)
	from2, to2 := numerics.MakeRangeContaining(possibleTos[0], possibleTos[1], zero2)

	t1From, t1To := angleWindowToTimeWindow(d.orbit, from1, to1)
	t2From, t2To := angleWindowToTimeWindow(d.orbit, from2, to2)

	return []window{
		{orbit: d.orbit, sib: d.sib, periodic: true, start: t1From, end: t1To},
		{orbit: d.orbit, sib: d.sib, periodic: true, start: t2From, end: t2To},
	}, nil
}

// computeEllipseBound classifies how the child's SDF envelope relative to
// the sibling's orbit intersects the band [-soi, +soi] and produces the
// matching set of candidate time windows: zero (no encounter possible),
// one band touch (inner or outer), two crossings, or the whole orbit
// inside the band.
func computeEllipseBound(orbit *segment.Orbit, sib Sibling, startTime float64) ([]window, error) {
	argumentOfApoapsis := orbit.Conic().ArgumentOfPeriapsis() + math.Pi
	sdf := makeSDF(orbit, sib.Orbit)
	minTheta, maxTheta, err := findMinMaxSignedDistance(sdf, argumentOfApoapsis)
	if err != nil {
		return nil, err
	}
	min, max := sdf(minTheta), sdf(maxTheta)
	soi := sib.SphereOfInfluence
	data := bounderData{
		orbit:     orbit,
		sib:       sib,
		minTheta:  minTheta,
		maxTheta:  maxTheta,
		soi:       soi,
		startTime: startTime,
	}

	switch {
	case math.Abs(min) < soi && math.Abs(max) < soi:
		return data.noBounds(), nil
	case (max >= 0 && min >= 0 && math.Abs(min) > soi) || (max < 0 && min < 0 && math.Abs(max) > soi):
		return nil, nil
	case (max >= 0 && min >= 0 && math.Abs(min) < soi) || (max >= 0 && min < 0 && math.Abs(min) < soi):
		return data.oneBoundInner(sdf)
	case (max >= 0 && min < 0 && math.Abs(max) < soi) || (max < 0 && min < 0 && math.Abs(max) < soi):
		return data.oneBoundOuter(sdf)
	default:
		return data.twoBounds(sdf)
	}
}
