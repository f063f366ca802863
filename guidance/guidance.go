// Package guidance implements the proportional-navigation integrator
// that produces a segment.Guidance: the guidance command is computed
// fresh each step (closing speed, finite-difference line-of-sight rate,
// N=3 lateral-acceleration law), the physics integrates it, and the
// next step sees and corrects the residual error. Recursively invokes
// package trajectory to re-predict the Orbit that follows the guidance
// segment once it ends.
package guidance

import (
	"math"

	"github.com/orbitalcombat/simcore/entity"
	"github.com/orbitalcombat/simcore/numerics"
	"github.com/orbitalcombat/simcore/path"
	"github.com/orbitalcombat/simcore/segment"
	"github.com/orbitalcombat/simcore/trajectory"
	"github.com/orbitalcombat/simcore/vector2"
)

const (
	// Step is the guidance integrator's fixed time step, shared with the
	// Guidance segment's table indexing.
	Step = segment.GuidanceTimeStep
	// losFiniteDifferenceDelta is the delta used to estimate line-of-sight
	// rate by finite difference.
	losFiniteDifferenceDelta = 0.1
	// NavigationConstant is the proportional-navigation gain N.
	NavigationConstant = 3.0
	// InterceptRange is the distance below which a Guidance segment
	// terminates with a successful intercept.
	InterceptRange = 50.0
	// MaxDuration aborts an unresolved guidance run.
	MaxDuration = 3600.0
)

// TargetProvider supplies the target entity's observer-filtered absolute
// position/velocity at an arbitrary time. Kept as a narrow interface so
// this package never
// imports snapshot/model (avoiding the same import-cycle class as
// trajectory.World).
type TargetProvider interface {
	PositionVelocityAtTime(t float64) (vector2.Vec2, vector2.Vec2)
}

// Guide integrates a homing manoeuvre from (startTime, startPosition,
// startVelocity) toward target, returning the resulting Guidance
// segment. willIntercept is also returned directly for callers that
// want it without a type assertion.
func Guide(
	parent, selfEntity, targetEntity entity.Entity,
	target TargetProvider,
	parentMass float64,
	startTime float64,
	startPosition, startVelocity vector2.Vec2,
	rocketEq segment.RocketEquationFunction,
	engineAcceleration func(segment.RocketEquationFunction) float64,
) (*segment.Guidance, bool) {
	position := startPosition
	velocity := startVelocity
	eq := rocketEq
	t := startTime

	targetPosition, targetVelocity := target.PositionVelocityAtTime(t)
	points := []segment.GuidancePoint{{
		ParentMass: parentMass, Mass: eq.Mass(), Time: t,
		Position: position, Velocity: velocity,
		TargetPosition: targetPosition, TargetVelocity: targetVelocity,
	}}

	willIntercept := false

	for t-startTime <= MaxDuration {
		targetPosition, targetVelocity = target.PositionVelocityAtTime(t)

		displacement := position.Sub(targetPosition)
		distance := displacement.Norm()
		if distance <= InterceptRange {
			willIntercept = true
			break
		}

		if tMin, ok := findWithinStepMinimum(position, velocity, targetPosition, targetVelocity, t, Step); ok {
			if refined, okRefine := refineIntercept(position, velocity, targetPosition, targetVelocity, t, tMin); okRefine {
				willIntercept = true
				t = refined.t
				mass := massAtElapsed(rocketEq, t-startTime)
				points = append(points, segment.GuidancePoint{
					ParentMass: parentMass, Mass: mass, Time: t,
					Position: refined.position, Velocity: refined.velocity,
					TargetPosition: refined.targetPosition, TargetVelocity: refined.targetVelocity,
				})
				break
			}
		}

		dHat := displacement.Normalize()
		closingSpeed := -velocity.Sub(targetVelocity).Dot(dHat)
		losRate := losRateFiniteDifference(position, velocity, targetPosition, targetVelocity)

		lateralMagnitude := NavigationConstant * closingSpeed * losRate
		accel := dHat.Perp().Scale(lateralMagnitude)

		maxAccel := engineAcceleration(eq)
		if accel.Norm() > maxAccel {
			accel = accel.Normalize().Scale(maxAccel)
		}

		newEq, ok := eq.StepByTime(Step)
		if !ok {
			willIntercept = false
			break
		}
		eq = newEq

		next := points[len(points)-1].Next(Step, eq.Mass(), accel, targetPosition, targetVelocity)
		points = append(points, next)
		position, velocity, t = next.Position, next.Velocity, next.Time
	}

	g := segment.NewGuidance(parent, targetEntity, rocketEq, InterceptRange, points)
	return g, willIntercept
}

func massAtElapsed(start segment.RocketEquationFunction, elapsed float64) float64 {
	eq, ok := start.StepByTime(elapsed)
	if !ok {
		return start.End().Mass()
	}
	return eq.Mass()
}

// losRateFiniteDifference estimates the line-of-sight angular rate by
// sampling the relative-displacement angle at the current instant and
// losFiniteDifferenceDelta seconds later, assuming straight-line motion
// over that short interval.
func losRateFiniteDifference(position, velocity, targetPosition, targetVelocity vector2.Vec2) float64 {
	d0 := position.Sub(targetPosition)
	angle0 := math.Atan2(d0.Y, d0.X)

	d1 := position.Add(velocity.Scale(losFiniteDifferenceDelta)).Sub(targetPosition.Add(targetVelocity.Scale(losFiniteDifferenceDelta)))
	angle1 := math.Atan2(d1.Y, d1.X)

	return (angle0 - angle1) / losFiniteDifferenceDelta
}

// findWithinStepMinimum checks whether the straight-line-extrapolated
// relative distance has an interior minimum within [0, step], returning
// its offset from t if so. Runs before the gravity step so an intercept
// inside the next step is not integrated past.
func findWithinStepMinimum(position, velocity, targetPosition, targetVelocity vector2.Vec2, t, step float64) (float64, bool) {
	distanceDeriv := func(tau float64) float64 {
		selfAt := position.Add(velocity.Scale(tau))
		targetAt := targetPosition.Add(targetVelocity.Scale(tau))
		d := targetAt.Sub(selfAt)
		relVel := targetVelocity.Sub(velocity)
		if d.Norm() < 1e-9 {
			return 0
		}
		return d.Dot(relVel) / d.Norm()
	}

	d0 := distanceDeriv(0)
	d1 := distanceDeriv(step)
	if (d0 > 0) == (d1 > 0) {
		return 0, false
	}
	root, err := numerics.ITP(distanceDeriv, 0, step)
	if err != nil {
		return 0, false
	}
	return root, true
}

type refinedPoint struct {
	t                              float64
	position, velocity             vector2.Vec2
	targetPosition, targetVelocity vector2.Vec2
}

// refineIntercept re-samples the straight-line extrapolation at the
// located minimum time and reports whether it is within InterceptRange.
func refineIntercept(position, velocity, targetPosition, targetVelocity vector2.Vec2, t, tau float64) (refinedPoint, bool) {
	selfAt := position.Add(velocity.Scale(tau))
	targetAt := targetPosition.Add(targetVelocity.Scale(tau))
	if selfAt.Sub(targetAt).Norm() > InterceptRange {
		return refinedPoint{}, false
	}
	return refinedPoint{
		t: t + tau, position: selfAt, velocity: velocity,
		targetPosition: targetAt, targetVelocity: targetVelocity,
	}, true
}

// ResumeOrbit appends the Orbit that follows a just-finished Guidance
// segment and re-predicts from it, recursively invoking package
// trajectory.
func ResumeOrbit(child entity.Entity, g *segment.Guidance, p *path.Path, world trajectory.World, maxEncounters int) {
	orbit := segment.NewOrbit(g.Parent(), g.EndMass(), world.Mass(g.Parent()), g.EndPosition(), g.EndVelocity(), g.EndTime())
	p.AddSegment(orbit)
	trajectory.RecomputeTrajectory(child, p, world, maxEncounters)
}
