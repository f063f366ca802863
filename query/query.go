// Package query implements the auxiliary "closest approach between two
// vessels" and "closest point on any vessel trajectory to a world
// point" solvers, built atop package snapshot so both automatically respect
// observer-gated perceived paths rather than reading the real Model
// directly. Uses the same numerics.ITP root-finder package encounter and
// guidance already depend on for stationary-point refinement.
package query

import (
	"math"
	"sort"

	"github.com/orbitalcombat/simcore/entity"
	"github.com/orbitalcombat/simcore/numerics"
	"github.com/orbitalcombat/simcore/segment"
	"github.com/orbitalcombat/simcore/snapshot"
	"github.com/orbitalcombat/simcore/vector2"
)

// samplesPerWindow is the fixed sign-change sampling density used to
// seed each ITP bracket: 16 points per min(period, window).
const samplesPerWindow = 16

// Approach is one candidate closest-approach minimum between two
// vessels' futures.
type Approach struct {
	Time     float64
	Distance float64
}

// ClosestApproaches finds all (orbit, orbit) pairs with matching parents
// along a's and b's futures, samples the inter-body distance at
// samplesPerWindow points per min(period, window) within each pair's
// overlap, ITP-refines every detected sign change in the distance
// derivative, and returns the two earliest minima in ascending time
// order. a and b must currently share no manoeuvre (a pure Orbit
// comparison); the caller is expected to have already resolved whichever
// vessel is mid-manoeuvre past its Burn/Turn/Guidance segment.
func ClosestApproaches(v *snapshot.View, a, b entity.Entity, window float64) []Approach {
	aOrbits := v.FutureOrbits(a)
	bOrbits := v.FutureOrbits(b)

	var all []Approach
	for _, oa := range aOrbits {
		for _, ob := range bOrbits {
			if oa.Parent() != ob.Parent() {
				continue
			}
			all = append(all, sampleApproach(oa, ob, window)...)
		}
	}

	sort.Slice(all, func(i, j int) bool { return all[i].Time < all[j].Time })
	if len(all) > 2 {
		all = all[:2]
	}
	return all
}

// sampleApproach runs the sample-then-ITP search within one (orbit,
// orbit) pair's time overlap.
func sampleApproach(oa, ob *segment.Orbit, window float64) []Approach {
	start := maxFloat(oa.StartTime(), ob.StartTime())
	end := minFloat(oa.EndTime(), ob.EndTime())
	if end <= start {
		return nil
	}

	period := approachPeriod(oa)
	if p := approachPeriod(ob); p < period {
		period = p
	}
	span := minFloat(period, window)
	if span <= 0 {
		span = end - start
	}

	distanceDeriv := func(t float64) float64 {
		return finiteDifferenceDistanceDeriv(oa, ob, t)
	}

	var out []Approach
	step := span / float64(samplesPerWindow)
	if step <= 0 {
		return nil
	}
	prevT := start
	prevD := distanceDeriv(prevT)
	for t := start + step; t <= end; t += step {
		d := distanceDeriv(t)
		// Only a negative-to-positive crossing of the distance derivative is
		// a minimum (distance was shrinking, now growing); a positive-to-
		// negative crossing is a maximum and must not be reported as a
		// closest approach.
		if prevD < 0 && d > 0 {
			root, err := numerics.ITP(distanceDeriv, prevT, t)
			if err == nil {
				out = append(out, Approach{Time: root, Distance: oa.PositionAtTime(root).Sub(ob.PositionAtTime(root)).Norm()})
			}
		}
		prevT, prevD = t, d
	}
	return out
}

// approachPeriod returns an ellipse's orbital period, or the segment's
// own finite time window as a stand-in for a hyperbola (which has none).
func approachPeriod(o *segment.Orbit) float64 {
	if e, ok := o.Conic().(interface{ Period() float64 }); ok {
		return e.Period()
	}
	return o.EndTime() - o.StartTime()
}

const approachFiniteDifferenceDelta = 0.5

func finiteDifferenceDistanceDeriv(oa, ob *segment.Orbit, t float64) float64 {
	h := approachFiniteDifferenceDelta / 2
	d0 := oa.PositionAtTime(t - h).Sub(ob.PositionAtTime(t - h)).Norm()
	d1 := oa.PositionAtTime(t + h).Sub(ob.PositionAtTime(t + h)).Norm()
	return (d1 - d0) / approachFiniteDifferenceDelta
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// ClosestPointResult is the winning trajectory segment/time/point found
// by ClosestPointOnAnyTrajectory.
type ClosestPointResult struct {
	Vessel   entity.Entity
	Time     float64
	Point    vector2.Vec2
	Distance float64
}

// ClosestPointOnAnyTrajectory finds the closest point, within maxRadius,
// on any vessel's trajectory to a world point, iterating burns first
// (prioritised) and then orbits, short-circuiting on the
// first hit within maxRadius. worldPoint and the returned Point are in
// the same parent-relative frame as the segment being compared against
// (callers comparing across frames must transform worldPoint into each
// candidate segment's parent frame first).
func ClosestPointOnAnyTrajectory(v *snapshot.View, worldPoint vector2.Vec2, maxRadius float64) (ClosestPointResult, bool) {
	for _, vessel := range v.Vessels() {
		for _, s := range v.FutureSegments(vessel) {
			typed, ok := s.(segment.Typed)
			if !ok || typed.Kind() == segment.KindOrbit {
				continue
			}
			if res, ok := closestPointOnDenseSegment(vessel, s, worldPoint, maxRadius); ok {
				return res, true
			}
		}
	}
	for _, vessel := range v.Vessels() {
		for _, o := range v.FutureOrbits(vessel) {
			if res, ok := closestPointOnOrbit(vessel, o, worldPoint, maxRadius); ok {
				return res, true
			}
		}
	}
	return ClosestPointResult{}, false
}

// closestPointOnDenseSegment samples a Burn/Turn/Guidance segment every
// BurnTimeStep seconds and returns the closest sample; no refinement is
// done between samples.
func closestPointOnDenseSegment(vessel entity.Entity, s segment.Segment, worldPoint vector2.Vec2, maxRadius float64) (ClosestPointResult, bool) {
	best := ClosestPointResult{}
	bestDist := maxRadius
	found := false
	step := segment.BurnTimeStep
	for t := s.StartTime(); t <= s.EndTime(); t += step {
		p := s.PositionAtTime(t)
		d := p.Sub(worldPoint).Norm()
		if d <= bestDist {
			bestDist = d
			best = ClosestPointResult{Vessel: vessel, Time: t, Point: p, Distance: d}
			found = true
		}
	}
	return best, found
}

// ellipseLike is the subset of conic.Ellipse's exported surface this
// package needs for the closed-form closest-point solver.
type ellipseLike interface {
	SemiMajorAxis() float64
	SemiMinorAxis() float64
	Eccentricity() float64
	ArgumentOfPeriapsis() float64
}

// hyperbolaLike is the subset of conic.Hyperbola's exported surface this
// package needs for the asymptote-bounded ITP solver.
type hyperbolaLike interface {
	Eccentricity() float64
	ArgumentOfPeriapsis() float64
	MinTheta() float64
	MaxTheta() float64
}

// closestPointOnOrbit uses the closed-form closest-point-on-ellipse
// solver for elliptical orbits, or an ITP search on the distance
// derivative bounded by the asymptote angles for hyperbolic ones.
func closestPointOnOrbit(vessel entity.Entity, o *segment.Orbit, worldPoint vector2.Vec2, maxRadius float64) (ClosestPointResult, bool) {
	c := o.Conic()
	if e, ok := c.(ellipseLike); ok {
		return closestPointEllipse(vessel, o, e, worldPoint, maxRadius)
	}
	if h, ok := c.(hyperbolaLike); ok {
		return closestPointHyperbola(vessel, o, h, worldPoint, maxRadius)
	}
	return ClosestPointResult{}, false
}

// closestPointEllipse rotates worldPoint into the ellipse's centred,
// axis-aligned frame (major axis along +X, centre offset a*e from the
// focus, away from periapsis), finds the closest point there via
// numerics.ClosestPointOnEllipse, and rotates the answer back.
func closestPointEllipse(vessel entity.Entity, o *segment.Orbit, e ellipseLike, worldPoint vector2.Vec2, maxRadius float64) (ClosestPointResult, bool) {
	a := e.SemiMajorAxis()
	b := e.SemiMinorAxis()
	argPeriapsis := e.ArgumentOfPeriapsis()
	focalOffset := a * e.Eccentricity()

	rotated := rotate(worldPoint, -argPeriapsis)
	centred := rotated.Add(vector2.Vec2{X: focalOffset, Y: 0})

	closestCentred := numerics.ClosestPointOnEllipse(a, b, centred)
	closestRotated := closestCentred.Sub(vector2.Vec2{X: focalOffset, Y: 0})
	point := rotate(closestRotated, argPeriapsis)

	d := point.Sub(worldPoint).Norm()
	if d > maxRadius {
		return ClosestPointResult{}, false
	}

	t := timeAtPoint(o, point)
	return ClosestPointResult{Vessel: vessel, Time: t, Point: point, Distance: d}, true
}

// hyperbolaSearchMargin keeps the ITP bracket strictly inside the
// asymptote angles, where the conic's radius diverges to infinity.
const hyperbolaSearchMargin = 1e-3

// closestPointHyperbola ITP-searches the distance derivative between the
// two asymptote angles (conic.Hyperbola.MinTheta/MaxTheta).
func closestPointHyperbola(vessel entity.Entity, o *segment.Orbit, h hyperbolaLike, worldPoint vector2.Vec2, maxRadius float64) (ClosestPointResult, bool) {
	lo, hi := h.MinTheta()+hyperbolaSearchMargin, h.MaxTheta()-hyperbolaSearchMargin

	distanceDeriv := func(theta float64) float64 {
		const dTheta = 1e-4
		d0 := o.Conic().Position(theta).Sub(worldPoint).Norm()
		d1 := o.Conic().Position(theta + dTheta).Sub(worldPoint).Norm()
		return (d1 - d0) / dTheta
	}

	if distanceDeriv(lo)*distanceDeriv(hi) > 0 {
		return ClosestPointResult{}, false
	}
	theta, err := numerics.ITP(distanceDeriv, lo, hi)
	if err != nil {
		return ClosestPointResult{}, false
	}

	point := o.Conic().Position(theta)
	d := point.Sub(worldPoint).Norm()
	if d > maxRadius {
		return ClosestPointResult{}, false
	}
	t := o.TimeAtTheta(theta)
	return ClosestPointResult{Vessel: vessel, Time: t, Point: point, Distance: d}, true
}

func rotate(p vector2.Vec2, angle float64) vector2.Vec2 {
	cos, sin := math.Cos(angle), math.Sin(angle)
	return vector2.Vec2{X: p.X*cos - p.Y*sin, Y: p.X*sin + p.Y*cos}
}

// timeAtPoint recovers the absolute time a point on o's conic
// corresponds to, for reporting alongside ClosestPointResult.
func timeAtPoint(o *segment.Orbit, point vector2.Vec2) float64 {
	theta := math.Atan2(point.Y, point.X)
	return o.TimeAtTheta(theta)
}
