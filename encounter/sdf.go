package encounter

import (
	"math"

	"github.com/orbitalcombat/simcore/numerics"
	"github.com/orbitalcombat/simcore/segment"
	"github.com/orbitalcombat/simcore/vector2"
)

// closestPointOnOrbitFunc returns a function giving the closest point on
// the orbit's conic locus to an arbitrary query point. The distance along
// the orbit in terms of theta has one minimum and one maximum, so a
// stationary-point search seeded at the query point's own angle lands on
// one of them; if it lands on the maximum, the other stationary point is
// the minimum.
func closestPointOnOrbitFunc(o *segment.Orbit) func(vector2.Vec2) vector2.Vec2 {
	c := o.Conic()
	return func(point vector2.Vec2) vector2.Vec2 {
		distance := func(theta float64) float64 {
			return c.Position(theta).Sub(point).Norm()
		}
		startingTheta := math.Atan2(point.Y, point.X)
		theta, err := numerics.LaguerreStationaryPoint(distance, startingTheta, 1e-4, 1e-6, 256)
		if err != nil {
			theta = startingTheta
		} else if distance(theta+1e-3) < distance(theta) && distance(theta-1e-3) < distance(theta) {
			if other, err := numerics.FindOtherStationaryPoint(distance, theta); err == nil {
				theta = other
			}
		}
		return c.Position(theta)
	}
}

// makeSDF builds a signed distance, in terms of an angle on the child's
// orbit, to the sibling's orbit curve: positive when the child's point
// lies inside the sibling's orbit, negative outside.
func makeSDF(orbit, siblingOrbit *segment.Orbit) func(float64) float64 {
	closest := closestPointOnOrbitFunc(siblingOrbit)
	c := orbit.Conic()
	return func(theta float64) float64 {
		point := c.Position(theta)
		other := closest(point)
		magnitude := point.Sub(other).Norm()
		if other.Norm() < point.Norm() {
			return -magnitude
		}
		return magnitude
	}
}

// findMinMaxSignedDistance locates the two stationary points of the SDF
// envelope. The search is seeded at the argument of apoapsis, where the
// distance is most sensitive to the angle, so the seed tends to sit
// closer to the true solution than periapsis would.
func findMinMaxSignedDistance(sdf func(float64) float64, argumentOfApoapsis float64) (minTheta, maxTheta float64, err error) {
	theta1, err := numerics.LaguerreStationaryPoint(sdf, argumentOfApoapsis, 1e-4, 1e-6, 256)
	if err != nil {
		return 0, 0, err
	}
	theta2, err := numerics.FindOtherStationaryPoint(sdf, theta1)
	if err != nil {
		return 0, 0, err
	}
	theta1 = numerics.NormalizeAngle(theta1)
	theta2 = numerics.NormalizeAngle(theta2)
	if sdf(theta1) < sdf(theta2) {
		return theta1, theta2, nil
	}
	return theta2, theta1, nil
}

// relativeDistance is the separation between the child and a sibling at
// absolute time t.
func relativeDistance(orbit *segment.Orbit, sib Sibling, t float64) float64 {
	return orbit.PositionAtTime(t).Sub(sib.Orbit.PositionAtTime(t)).Norm()
}
