package segment

import (
	"math"

	"github.com/orbitalcombat/simcore/entity"
	"github.com/orbitalcombat/simcore/vector2"
)

// GuidanceTimeStep is the proportional-navigation integrator's fixed
// sample step. Coarser than BurnTimeStep: the PN loop corrects residual
// error every step, so it tolerates a larger step than open-loop burns.
const GuidanceTimeStep = 0.5

// GuidancePoint is one sample in a Guidance segment's dense table,
// analogous to BurnPoint but additionally carrying the target entity's
// predicted state at the same time, so WillIntercept can compare
// separations across the whole table.
type GuidancePoint struct {
	ParentMass float64
	Mass       float64
	Time       float64
	Position   vector2.Vec2
	Velocity   vector2.Vec2

	TargetPosition vector2.Vec2
	TargetVelocity vector2.Vec2
}

// Next performs one Euler sub-step of dt seconds applying proportional
// navigation acceleration plus parent gravity.
func (p GuidancePoint) Next(dt, mass float64, pnAcceleration, targetPosition, targetVelocity vector2.Vec2) GuidancePoint {
	r := p.Position.Norm()
	gravityAccel := p.Position.Scale(-conicGravitationalConstant() * p.ParentMass / (r * r * r))
	accel := gravityAccel.Add(pnAcceleration)
	return GuidancePoint{
		ParentMass:     p.ParentMass,
		Mass:           mass,
		Time:           p.Time + dt,
		Position:       p.Position.Add(p.Velocity.Scale(dt)),
		Velocity:       p.Velocity.Add(accel.Scale(dt)),
		TargetPosition: targetPosition,
		TargetVelocity: targetVelocity,
	}
}

// Guidance is the homing-manoeuvre segment produced by package guidance's
// proportional-navigation integrator: a dense table of self/target state
// pairs, a flag for whether the table ever reaches interception range,
// and a fuel budget drawn down the same way Burn draws down rocketEq.
type Guidance struct {
	parent         entity.Entity
	targetEntity   entity.Entity
	rocketEq       RocketEquationFunction
	interceptRange float64
	willIntercept  bool
	points         []GuidancePoint
	currentPoint   GuidancePoint
}

// NewGuidance wraps a pre-computed dense table (built by package guidance's
// PN integrator, which alone knows how to predict the target's future
// state) into a Segment. interceptRange is the separation below which
// WillIntercept reports true.
func NewGuidance(parent, targetEntity entity.Entity, rocketEq RocketEquationFunction, interceptRange float64, points []GuidancePoint) *Guidance {
	g := &Guidance{
		parent:         parent,
		targetEntity:   targetEntity,
		rocketEq:       rocketEq,
		interceptRange: interceptRange,
		points:         points,
	}
	if len(points) > 0 {
		g.currentPoint = points[0]
	}
	for _, p := range points {
		if p.Position.Sub(p.TargetPosition).Norm() <= interceptRange {
			g.willIntercept = true
			break
		}
	}
	return g
}

func (g *Guidance) Kind() Kind { return KindGuidance }

func (g *Guidance) TargetEntity() entity.Entity { return g.targetEntity }

// WillIntercept reports whether the tabulated trajectory ever brings the
// guided vessel within interceptRange of its target.
func (g *Guidance) WillIntercept() bool { return g.willIntercept }

// Points returns the full tabulated self/target state history, used by
// package model's stage-9 retargeting to splice a freshly re-solved
// suffix onto an in-progress Guidance segment via Adjust.
func (g *Guidance) Points() []GuidancePoint { return g.points }

// StartRocketEq and InterceptRange expose the remaining NewGuidance
// construction inputs not already recoverable from the point table, so
// package persist can rebuild the segment with NewGuidance from its
// serialized point table.
func (g *Guidance) StartRocketEq() RocketEquationFunction { return g.rocketEq }
func (g *Guidance) InterceptRange() float64               { return g.interceptRange }

func (g *Guidance) startPoint() GuidancePoint { return g.points[0] }
func (g *Guidance) endPoint() GuidancePoint   { return g.points[len(g.points)-1] }

func (g *Guidance) pointAtOrBefore(t float64) GuidancePoint {
	if len(g.points) == 0 {
		return GuidancePoint{}
	}
	timeSinceStart := t - g.startPoint().Time
	index := int(timeSinceStart / GuidanceTimeStep)
	if index < 0 {
		return g.startPoint()
	}
	if index >= len(g.points) {
		return g.endPoint()
	}
	return g.points[index]
}

// PointAtTime does one Euler sub-step from the closest preceding tabulated
// point, holding target motion fixed over the sub-step (the table is
// already dense enough at GuidanceTimeStep resolution that this is
// negligible).
func (g *Guidance) PointAtTime(t float64) GuidancePoint {
	closest := g.pointAtOrBefore(t)
	undershot := t - closest.Time
	if undershot <= 0 {
		return closest
	}
	accel := closest.TargetPosition.Sub(closest.Position).Normalize().Scale(g.rocketEquationFunctionAtTime(closest.Time).Acceleration())
	return closest.Next(undershot, closest.Mass, accel, closest.TargetPosition, closest.TargetVelocity)
}

func (g *Guidance) rocketEquationFunctionAtTime(t float64) RocketEquationFunction {
	eq, ok := g.rocketEq.StepByTime(t - g.startPoint().Time)
	if !ok {
		return g.rocketEq.End()
	}
	return eq
}

func (g *Guidance) Parent() entity.Entity { return g.parent }
func (g *Guidance) StartTime() float64    { return g.startPoint().Time }
func (g *Guidance) EndTime() float64      { return g.endPoint().Time }
func (g *Guidance) CurrentTime() float64  { return g.currentPoint.Time }

func (g *Guidance) StartPosition() vector2.Vec2 { return g.startPoint().Position }
func (g *Guidance) StartVelocity() vector2.Vec2 { return g.startPoint().Velocity }
func (g *Guidance) StartMass() float64          { return g.startPoint().Mass }

func (g *Guidance) CurrentPosition() vector2.Vec2 { return g.currentPoint.Position }
func (g *Guidance) CurrentVelocity() vector2.Vec2 { return g.currentPoint.Velocity }
func (g *Guidance) CurrentMass() float64          { return g.currentPoint.Mass }

// CurrentRotation points along the current velocity, matching Orbit's
// convention for segments with no independent attitude state.
func (g *Guidance) CurrentRotation() float64 {
	v := g.currentPoint.Velocity
	return math.Atan2(v.Y, v.X)
}

func (g *Guidance) EndPosition() vector2.Vec2 { return g.endPoint().Position }
func (g *Guidance) EndVelocity() vector2.Vec2 { return g.endPoint().Velocity }
func (g *Guidance) EndMass() float64          { return g.endPoint().Mass }

func (g *Guidance) PositionAtTime(t float64) vector2.Vec2 { return g.PointAtTime(t).Position }
func (g *Guidance) VelocityAtTime(t float64) vector2.Vec2 { return g.PointAtTime(t).Velocity }
func (g *Guidance) MassAtTime(t float64) float64          { return g.PointAtTime(t).Mass }

func (g *Guidance) RotationAtTime(t float64) float64 {
	v := g.PointAtTime(t).Velocity
	return math.Atan2(v.Y, v.X)
}

func (g *Guidance) Next(dt float64) {
	g.currentPoint = g.PointAtTime(g.currentPoint.Time + dt)
}

func (g *Guidance) IsFinished() bool {
	return g.currentPoint.Time >= g.endPoint().Time
}

func (g *Guidance) OvershotTime(t float64) float64 {
	return t - g.endPoint().Time
}

// Adjust appends additional tabulated points computed by package guidance
// after a re-solve (e.g. the target manoeuvred), replacing the suffix of
// the table at and after the adjustment time.
func (g *Guidance) Adjust(fromTime float64, points []GuidancePoint) {
	kept := make([]GuidancePoint, 0, len(g.points))
	for _, p := range g.points {
		if p.Time >= fromTime {
			break
		}
		kept = append(kept, p)
	}
	g.points = append(kept, points...)
	g.willIntercept = false
	for _, p := range g.points {
		if p.Position.Sub(p.TargetPosition).Norm() <= g.interceptRange {
			g.willIntercept = true
			break
		}
	}
}
