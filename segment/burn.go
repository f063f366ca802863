package segment

import (
	"math"

	"github.com/orbitalcombat/simcore/entity"
	"github.com/orbitalcombat/simcore/vector2"
)

// BurnTimeStep is the fixed Euler-integration sample step for Burn
// segments.
const BurnTimeStep = 0.1

// BurnPoint is one sample in a Burn's dense table.
type BurnPoint struct {
	ParentMass float64
	Mass       float64
	Time       float64
	Position   vector2.Vec2
	Velocity   vector2.Vec2
}

// Next performs one Euler sub-step of dt seconds starting from this
// point, given the new mass and the absolute (inertial-frame)
// acceleration applied over the step, adding the parent's gravity
// alongside it.
func (p BurnPoint) Next(dt, mass float64, absoluteAcceleration vector2.Vec2) BurnPoint {
	r := p.Position.Norm()
	gravityAccel := p.Position.Scale(-conicGravitationalConstant() * p.ParentMass / (r * r * r))
	accel := gravityAccel.Add(absoluteAcceleration)
	return BurnPoint{
		ParentMass: p.ParentMass,
		Mass:       mass,
		Time:       p.Time + dt,
		Position:   p.Position.Add(p.Velocity.Scale(dt)),
		Velocity:   p.Velocity.Add(accel.Scale(dt)),
	}
}

// conicGravitationalConstant re-declares the value of
// conic.GravitationalConstant locally; it is a physical constant, not
// shared mutable state.
func conicGravitationalConstant() float64 { return 6.674e-11 }

// Burn is the powered-manoeuvre segment: a pre-burn mass, fuel flow,
// specific impulse, and a body-frame delta-v (tangent, normal) relative
// to a fixed inertial tangent direction captured at burn start, sampled
// into a dense table via fixed-step Euler integration.
type Burn struct {
	parent       entity.Entity
	rocketEq     RocketEquationFunction
	tangent      vector2.Vec2 // fixed inertial tangent direction at burn start
	deltaV       vector2.Vec2 // (tangent, normal) in body frame
	currentPoint BurnPoint
	points       []BurnPoint

	saturated bool // true if the requested delta-v exceeded available fuel
}

// NewBurn constructs a Burn and immediately tabulates its dense point
// table. If the requested delta-v would exceed available fuel, the burn
// is truncated to the available-fuel end state and Saturated() reports
// true.
func NewBurn(parent entity.Entity, parentMass float64, tangent, deltaV vector2.Vec2, startTime float64, rocketEq RocketEquationFunction, startPosition, startVelocity vector2.Vec2) *Burn {
	startPoint := BurnPoint{ParentMass: parentMass, Mass: rocketEq.Mass(), Time: startTime, Position: startPosition, Velocity: startVelocity}
	b := &Burn{
		parent:       parent,
		rocketEq:     rocketEq,
		tangent:      tangent.Normalize(),
		deltaV:       deltaV,
		currentPoint: startPoint,
	}
	b.recomputeBurnPoints(startPoint)
	return b
}

func (b *Burn) Kind() Kind { return KindBurn }

func (b *Burn) rotationMatrixApply(v vector2.Vec2) vector2.Vec2 {
	return vector2.RotateFromTangent(b.tangent, v.X, v.Y)
}

func (b *Burn) absoluteDeltaV() vector2.Vec2 {
	return b.rotationMatrixApply(b.deltaV)
}

// duration computes T = (m/mdot) * (1 - exp(-|Δv|/(g*Isp))), the
// Tsiolkovsky-inverted burn time, by stepping the rocket-equation
// function by the requested |Δv| and reading off the elapsed burn time.
func (b *Burn) duration() float64 {
	finalEq, ok := b.rocketEq.StepByDv(b.totalDv())
	if !ok {
		finalEq = b.rocketEq.End()
		b.saturated = true
	}
	return finalEq.BurnTime() - b.rocketEq.BurnTime()
}

func (b *Burn) totalDv() float64 { return b.deltaV.Norm() }

func (b *Burn) rocketEquationFunctionAtTime(t float64) RocketEquationFunction {
	eq, ok := b.rocketEq.StepByTime(t - b.startPoint().Time)
	if !ok {
		return b.rocketEq.End()
	}
	return eq
}

func (b *Burn) absoluteAcceleration(t float64) vector2.Vec2 {
	dv := b.absoluteDeltaV()
	if dv.Norm() == 0 {
		return vector2.Zero
	}
	return dv.Normalize().Scale(b.rocketEquationFunctionAtTime(t).Acceleration())
}

func (b *Burn) recomputeBurnPoints(startPoint BurnPoint) {
	b.points = b.points[:0]
	endTime := startPoint.Time + b.duration()
	b.points = append(b.points, startPoint)

	for b.endPointUnsafe().Time+BurnTimeStep < endTime {
		last := b.endPointUnsafe()
		mass := b.rocketEquationFunctionAtTime(last.Time).Mass()
		b.points = append(b.points, last.Next(BurnTimeStep, mass, b.absoluteAcceleration(last.Time)))
	}

	if b.duration() != 0 {
		undershotDt := endTime - b.endPointUnsafe().Time
		last := b.endPointUnsafe()
		mass := b.rocketEquationFunctionAtTime(endTime).Mass()
		b.points = append(b.points, last.Next(undershotDt, mass, b.absoluteAcceleration(endTime)))
	}
}

func (b *Burn) endPointUnsafe() BurnPoint { return b.points[len(b.points)-1] }

func (b *Burn) startPoint() BurnPoint { return b.points[0] }
func (b *Burn) endPoint() BurnPoint   { return b.points[len(b.points)-1] }

// PointAtTime does one Euler sub-step from the closest preceding
// tabulated point for accuracy.
func (b *Burn) PointAtTime(t float64) BurnPoint {
	timeSinceStart := t - b.startPoint().Time
	index := int(timeSinceStart / BurnTimeStep)
	if index >= 0 && index < len(b.points) {
		closest := b.points[index]
		undershot := t - closest.Time
		return closest.Next(undershot, closest.Mass, b.absoluteAcceleration(closest.Time))
	}
	return b.endPoint()
}

func (b *Burn) TotalDv() float64     { return b.totalDv() }
func (b *Burn) DeltaV() vector2.Vec2 { return b.deltaV }
func (b *Burn) Saturated() bool      { return b.saturated }

// Tangent and StartRocketEq expose the remaining NewBurn construction
// inputs not already recoverable from the point table, so package
// persist can replay NewBurn with the original arguments instead of
// serializing the dense point table directly.
func (b *Burn) Tangent() vector2.Vec2                  { return b.tangent }
func (b *Burn) StartRocketEq() RocketEquationFunction  { return b.rocketEq }

func (b *Burn) IsTimeWithinBurn(t float64) bool {
	return t > b.startPoint().Time && t < b.endPoint().Time
}

func (b *Burn) Duration() float64 { return b.endPoint().Time - b.startPoint().Time }

// Adjust widens or narrows the requested delta-v by adjustment and
// retabulates the burn.
func (b *Burn) Adjust(adjustment vector2.Vec2) {
	b.deltaV = b.deltaV.Add(adjustment)
	b.saturated = false
	start := b.startPoint()
	b.recomputeBurnPoints(start)
}

func (b *Burn) Parent() entity.Entity { return b.parent }
func (b *Burn) StartTime() float64    { return b.startPoint().Time }
func (b *Burn) EndTime() float64      { return b.endPoint().Time }
func (b *Burn) CurrentTime() float64  { return b.currentPoint.Time }

func (b *Burn) StartPosition() vector2.Vec2 { return b.startPoint().Position }
func (b *Burn) StartVelocity() vector2.Vec2 { return b.startPoint().Velocity }
func (b *Burn) StartMass() float64          { return b.startPoint().Mass }

func (b *Burn) CurrentPosition() vector2.Vec2 { return b.currentPoint.Position }
func (b *Burn) CurrentVelocity() vector2.Vec2 { return b.currentPoint.Velocity }
func (b *Burn) CurrentMass() float64          { return b.currentPoint.Mass }

// CurrentRotation holds the heading fixed at the tangent direction
// captured at burn start; Turn is the only segment that reorients the
// vessel.
func (b *Burn) CurrentRotation() float64 {
	return math.Atan2(b.tangent.Y, b.tangent.X)
}

func (b *Burn) EndPosition() vector2.Vec2 { return b.endPoint().Position }
func (b *Burn) EndVelocity() vector2.Vec2 { return b.endPoint().Velocity }
func (b *Burn) EndMass() float64          { return b.endPoint().Mass }

func (b *Burn) PositionAtTime(t float64) vector2.Vec2 { return b.PointAtTime(t).Position }
func (b *Burn) VelocityAtTime(t float64) vector2.Vec2 { return b.PointAtTime(t).Velocity }
func (b *Burn) MassAtTime(t float64) float64          { return b.PointAtTime(t).Mass }
func (b *Burn) RotationAtTime(t float64) float64      { return b.CurrentRotation() }

func (b *Burn) Next(dt float64) {
	b.currentPoint = b.PointAtTime(b.currentPoint.Time + dt)
}

func (b *Burn) IsFinished() bool {
	return b.currentPoint.Time >= b.endPoint().Time
}

func (b *Burn) OvershotTime(t float64) float64 {
	return t - b.endPoint().Time
}
