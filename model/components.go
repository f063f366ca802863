// Package model implements the entity store and its four components
// (Name, Orbitable, Path, Vessel), the clock and time-warp machinery,
// the per-tick update, the inbound command surface, and the outbound
// story event stream.
package model

import (
	"github.com/orbitalcombat/simcore/entity"
	"github.com/orbitalcombat/simcore/segment"
	"github.com/orbitalcombat/simcore/vector2"
)

// OrbitableKind tags the kind of celestial body an Orbitable component
// represents.
type OrbitableKind int

const (
	KindStar OrbitableKind = iota
	KindPlanet
	KindMoon
)

// Physics is the tagged variant for how an Orbitable moves: a root body
// is Stationary at a fixed position; every other Orbitable follows a
// fixed, never-repredicted Orbit segment around its parent.
type Physics struct {
	Stationary bool
	Position   vector2.Vec2  // valid only if Stationary
	Orbit      *segment.Orbit // valid only if !Stationary
}

// Atmosphere is a render-only descriptor, carried through for
// completeness but never consulted by the simulation core.
type Atmosphere struct {
	Present     bool
	ScaleHeight float64
	Color       [3]float64
}

// Orbitable is the component for any body a vessel can orbit: stars,
// planets, moons.
type Orbitable struct {
	Mass            float64
	Radius          float64
	RotationPeriod  float64 // seconds per revolution
	RotationAngle0  float64 // angle at simulation epoch
	Kind            OrbitableKind
	Physics         Physics
	Atmosphere      Atmosphere
}

// RotationAngleAtTime returns the body's visible rotation angle at t.
func (o Orbitable) RotationAngleAtTime(t float64) float64 {
	if o.RotationPeriod == 0 {
		return o.RotationAngle0
	}
	const twoPi = 6.283185307179586
	frac := t / o.RotationPeriod
	frac -= float64(int(frac))
	return o.RotationAngle0 + frac*twoPi
}

// FuelTank is an optional Vessel sub-component.
type FuelTank struct {
	CapacityKg float64 `json:"capacityKg"`
	MassKg     float64 `json:"massKg"`
}

// Engine is an optional Vessel sub-component.
type Engine struct {
	SpecificImpulse         float64 `json:"specificImpulse"`
	FuelConsumptionKgPerSec float64 `json:"fuelConsumptionKgPerSec"`
}

// RCS is an optional Vessel sub-component (reaction control system).
type RCS struct {
	TurnRateRadPerSec float64 `json:"turnRateRadPerSec"`
	FuelRateKgPerSec  float64 `json:"fuelRateKgPerSec"`
}

// TorpedoStorage is an optional Vessel sub-component.
type TorpedoStorage struct {
	Count    int `json:"count"`
	Capacity int `json:"capacity"`
}

// TorpedoLauncher is an optional Vessel sub-component.
type TorpedoLauncher struct {
	ReloadTimer float64 `json:"reloadTimer"`
	ReloadTime  float64 `json:"reloadTime"`
}

// DockLocation names a docking port on a vessel/station.
type DockLocation int

// DockState is one docking port's occupancy and in-progress transfer.
type DockState struct {
	Docked          entity.Entity `json:"docked"` // entity.Nil if unoccupied
	FuelTransfer    bool          `json:"fuelTransfer"`
	TorpedoTransfer bool          `json:"torpedoTransfer"`

	TorpedoTransferElapsedSec float64 `json:"torpedoTransferElapsedSec"` // time accrued toward the next discrete transfer
}

// VesselClass tags the kind of vessel.
type VesselClass int

const (
	ClassTorpedo VesselClass = iota
	ClassStation
	ClassScout1
	ClassFrigate1
)

// Faction identifies which side a vessel belongs to, gating Snapshot's
// observer-based intel filtering.
type Faction int

// TimelineEventKind tags a scheduled manoeuvre/action.
type TimelineEventKind int

const (
	TimelineStartBurn TimelineEventKind = iota
	TimelineStartTurn
	TimelineFireTorpedo
	TimelineEnableGuidance
	TimelineIntercept
)

// TimelineEvent is a scheduled future action on a vessel's Path.
type TimelineEvent struct {
	Kind TimelineEventKind `json:"kind"`
	Time float64           `json:"time"`

	DeltaV         vector2.Vec2  `json:"deltaV,omitempty"`         // StartBurn
	TargetRotation float64       `json:"targetRotation,omitempty"` // StartTurn
	GhostTorpedo   entity.Entity `json:"ghostTorpedo"`              // FireTorpedo: precomputed, not yet real
	Target         entity.Entity `json:"target"`                   // EnableGuidance / Intercept
}

// Vessel is the component for any player- or AI-controlled craft.
type Vessel struct {
	Class     VesselClass `json:"class"`
	Faction   Faction     `json:"faction"`
	DryMassKg float64     `json:"dryMassKg"`

	FuelTank  *FuelTank        `json:"fuelTank,omitempty"`
	Engine    *Engine          `json:"engine,omitempty"`
	RCS       *RCS             `json:"rcs,omitempty"`
	Torpedoes *TorpedoStorage  `json:"torpedoes,omitempty"`
	Launcher  *TorpedoLauncher `json:"launcher,omitempty"`

	DockPorts map[DockLocation]*DockState `json:"dockPorts,omitempty"`

	Target entity.Entity `json:"target"` // entity.Nil if none

	Timeline []TimelineEvent `json:"timeline,omitempty"`

	// Ghost marks a torpedo allocated by FireTorpedo whose path is
	// precomputed but which is not yet "real": invisible to queries other
	// than its own creating timeline event until that event fires.
	Ghost bool `json:"ghost"`
}

// Name is the display-string component.
type Name struct {
	Value string `json:"value"`
}
