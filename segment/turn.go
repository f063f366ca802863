package segment

import (
	"math"

	"github.com/orbitalcombat/simcore/entity"
	"github.com/orbitalcombat/simcore/vector2"
)

// Turn is a rotation segment: constant-thrust RCS
// reorientation consuming RCS fuel at a fixed rate, with
// position/velocity evolving under gravity alone while heading
// interpolates linearly across the shorter arc. Attitude is a single
// planar heading angle; there is no 3-axis state.
type Turn struct {
	parent       entity.Entity
	parentMass   float64
	startTime    float64
	duration     float64
	startHeading float64
	targetHeading float64
	shortArc     float64 // signed delta heading across the shorter arc

	startPosition vector2.Vec2
	startVelocity vector2.Vec2
	startMass     float64

	currentTime float64
}

// NewTurn builds a Turn from the current state and a target heading,
// given a per-vessel constant RCS angular rate omega (rad/s). Duration
// is |Δθ|/ω, taking the shorter arc between startHeading and
// targetHeading. A zero-angle turn yields a zero-duration segment that
// preserves state.
func NewTurn(parent entity.Entity, parentMass float64, startTime, mass float64, position, velocity vector2.Vec2, startHeading, targetHeading, omega float64) *Turn {
	delta := shortestArc(startHeading, targetHeading)
	duration := 0.0
	if omega > 0 {
		duration = math.Abs(delta) / omega
	}
	return &Turn{
		parent:        parent,
		parentMass:    parentMass,
		startTime:     startTime,
		duration:      duration,
		startHeading:  startHeading,
		targetHeading: targetHeading,
		shortArc:      delta,
		startPosition: position,
		startVelocity: velocity,
		startMass:     mass,
		currentTime:   startTime,
	}
}

// shortestArc returns the signed angular delta from 'from' to 'to' via
// the shorter of the two directions around the circle.
func shortestArc(from, to float64) float64 {
	delta := math.Mod(to-from, 2*math.Pi)
	if delta > math.Pi {
		delta -= 2 * math.Pi
	}
	if delta < -math.Pi {
		delta += 2 * math.Pi
	}
	return delta
}

func (t *Turn) Kind() Kind { return KindTurn }

// FuelBurnt returns the RCS fuel consumed by the whole turn, given the
// vessel's RCS fuel-flow rate (kg/s).
func (t *Turn) FuelBurnt(rcsFuelRate float64) float64 {
	return rcsFuelRate * t.duration
}

func (t *Turn) gravityStep(position, velocity vector2.Vec2, dt float64) (vector2.Vec2, vector2.Vec2) {
	r := position.Norm()
	accel := position.Scale(-conicGravitationalConstant() * t.parentMass / (r * r * r))
	newVelocity := velocity.Add(accel.Scale(dt))
	newPosition := position.Add(velocity.Scale(dt))
	return newPosition, newVelocity
}

// stateAtTime integrates position/velocity under gravity alone from the
// start state up to the given absolute time, using a fixed 0.1s Euler
// step consistent with the Burn segment's integration step.
func (t *Turn) stateAtTime(time float64) (vector2.Vec2, vector2.Vec2) {
	elapsed := time - t.startTime
	if elapsed <= 0 {
		return t.startPosition, t.startVelocity
	}
	const step = BurnTimeStep
	position, velocity := t.startPosition, t.startVelocity
	steps := int(elapsed / step)
	for i := 0; i < steps; i++ {
		position, velocity = t.gravityStep(position, velocity, step)
	}
	remainder := elapsed - float64(steps)*step
	if remainder > 0 {
		position, velocity = t.gravityStep(position, velocity, remainder)
	}
	return position, velocity
}

func (t *Turn) Parent() entity.Entity { return t.parent }
func (t *Turn) StartTime() float64    { return t.startTime }
func (t *Turn) EndTime() float64      { return t.startTime + t.duration }
func (t *Turn) CurrentTime() float64  { return t.currentTime }

func (t *Turn) StartPosition() vector2.Vec2 { return t.startPosition }
func (t *Turn) StartVelocity() vector2.Vec2 { return t.startVelocity }
func (t *Turn) StartMass() float64          { return t.startMass }

func (t *Turn) PositionAtTime(time float64) vector2.Vec2 {
	p, _ := t.stateAtTime(time)
	return p
}

func (t *Turn) VelocityAtTime(time float64) vector2.Vec2 {
	_, v := t.stateAtTime(time)
	return v
}

func (t *Turn) MassAtTime(time float64) float64 { return t.startMass }

// RotationAtTime interpolates linearly from startHeading to
// targetHeading across the shorter arc.
func (t *Turn) RotationAtTime(time float64) float64 {
	if t.duration == 0 {
		return t.startHeading
	}
	frac := (time - t.startTime) / t.duration
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	return t.startHeading + t.shortArc*frac
}

func (t *Turn) CurrentPosition() vector2.Vec2 { return t.PositionAtTime(t.currentTime) }
func (t *Turn) CurrentVelocity() vector2.Vec2 { return t.VelocityAtTime(t.currentTime) }
func (t *Turn) CurrentMass() float64          { return t.startMass }
func (t *Turn) CurrentRotation() float64      { return t.RotationAtTime(t.currentTime) }

func (t *Turn) EndPosition() vector2.Vec2 { return t.PositionAtTime(t.EndTime()) }
func (t *Turn) EndVelocity() vector2.Vec2 { return t.VelocityAtTime(t.EndTime()) }
func (t *Turn) EndMass() float64          { return t.startMass }

func (t *Turn) Next(dt float64) { t.currentTime += dt }

func (t *Turn) IsFinished() bool { return t.currentTime >= t.EndTime() }

func (t *Turn) OvershotTime(time float64) float64 { return time - t.EndTime() }

func (t *Turn) TargetHeading() float64 { return t.targetHeading }
func (t *Turn) Duration() float64      { return t.duration }

// StartHeading and ParentMass expose the remaining NewTurn construction
// inputs not already recoverable from the other getters, so package
// persist can replay NewTurn with the original arguments.
func (t *Turn) StartHeading() float64 { return t.startHeading }
func (t *Turn) ParentMass() float64   { return t.parentMass }
