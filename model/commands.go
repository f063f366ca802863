package model

import (
	"github.com/orbitalcombat/simcore/entity"
	"github.com/orbitalcombat/simcore/vector2"
)

// Command is the closed sum type over every inbound command the UI
// layer may issue, one struct per command name, dispatched by
// ApplyCommand via a type switch.
type Command interface {
	isCommand()
}

type TogglePaused struct{}

func (TogglePaused) isCommand() {}

type SetTimeStep struct {
	Step TimeStep
}

func (SetTimeStep) isCommand() {}

type IncreaseTimeStepLevel struct{}

func (IncreaseTimeStepLevel) isCommand() {}

type DecreaseTimeStepLevel struct{}

func (DecreaseTimeStepLevel) isCommand() {}

type StartWarp struct {
	EndTime float64
}

func (StartWarp) isCommand() {}

type CancelWarp struct{}

func (CancelWarp) isCommand() {}

type CreateBurn struct {
	Entity entity.Entity
	Time   float64
	DeltaV vector2.Vec2
}

func (CreateBurn) isCommand() {}

type AdjustBurn struct {
	Entity entity.Entity
	Time   float64
	Amount vector2.Vec2
}

func (AdjustBurn) isCommand() {}

type DeleteBurn struct {
	Entity entity.Entity
	Time   float64
}

func (DeleteBurn) isCommand() {}

type CreateTurn struct {
	Entity         entity.Entity
	Time           float64
	TargetRotation float64
}

func (CreateTurn) isCommand() {}

type AdjustTurn struct {
	Entity entity.Entity
	Time   float64
	Amount float64
}

func (AdjustTurn) isCommand() {}

type CreateFireTorpedo struct {
	Entity entity.Entity
	Time   float64
}

func (CreateFireTorpedo) isCommand() {}

type AdjustFireTorpedo struct {
	Entity entity.Entity
	Time   float64
	Amount float64
}

func (AdjustFireTorpedo) isCommand() {}

type CreateGuidance struct {
	Entity entity.Entity
	Time   float64
}

func (CreateGuidance) isCommand() {}

type CancelLastTimelineEvent struct {
	Entity entity.Entity
}

func (CancelLastTimelineEvent) isCommand() {}

type CancelCurrentSegment struct {
	Entity entity.Entity
}

func (CancelCurrentSegment) isCommand() {}

type SetTarget struct {
	Entity entity.Entity
	Target entity.Entity
}

func (SetTarget) isCommand() {}

type Dock struct {
	Station  entity.Entity
	Location DockLocation
	Entity   entity.Entity
}

func (Dock) isCommand() {}

type Undock struct {
	Station  entity.Entity
	Location DockLocation
}

func (Undock) isCommand() {}

type StartFuelTransfer struct {
	Station  entity.Entity
	Location DockLocation
}

func (StartFuelTransfer) isCommand() {}

type StopFuelTransfer struct {
	Station  entity.Entity
	Location DockLocation
}

func (StopFuelTransfer) isCommand() {}

type StartTorpedoTransfer struct {
	Station  entity.Entity
	Location DockLocation
}

func (StartTorpedoTransfer) isCommand() {}

type StopTorpedoTransfer struct {
	Station  entity.Entity
	Location DockLocation
}

func (StopTorpedoTransfer) isCommand() {}

// ApplyCommand dispatches a single inbound command against the model,
// processed before the tick it arrives in. Unknown entities and missing
// components are reported via the returned error rather than a panic,
// since commands originate outside the model's own invariant-bearing
// code paths.
func (m *Model) ApplyCommand(cmd Command) error {
	switch c := cmd.(type) {
	case TogglePaused:
		m.Clock.Paused = !m.Clock.Paused
		m.emit(Event{Kind: EventPaused})
	case SetTimeStep:
		m.Clock.Step = c.Step
	case IncreaseTimeStepLevel:
		if m.Clock.Step.Level < len(timeStepSpeeds) {
			m.Clock.Step.Level++
		}
	case DecreaseTimeStepLevel:
		if m.Clock.Step.Level > 1 {
			m.Clock.Step.Level--
		}
	case StartWarp:
		m.Clock.Warp = &TimeWarp{Active: true, StartTime: m.Clock.Time, EndTime: c.EndTime}
		m.emit(Event{Kind: EventWarpStarted})
	case CancelWarp:
		m.Clock.Warp = nil
	case CreateBurn:
		return m.createBurn(c.Entity, c.Time, c.DeltaV)
	case AdjustBurn:
		return m.adjustBurn(c.Entity, c.Time, c.Amount)
	case DeleteBurn:
		return m.cancelTimelineEventAt(c.Entity, c.Time)
	case CreateTurn:
		return m.createTurn(c.Entity, c.Time, c.TargetRotation)
	case AdjustTurn:
		return m.adjustTurn(c.Entity, c.Time, c.Amount)
	case CreateFireTorpedo:
		return m.createFireTorpedo(c.Entity, c.Time)
	case AdjustFireTorpedo:
		return m.adjustFireTorpedo(c.Entity, c.Time, c.Amount)
	case CreateGuidance:
		return m.createGuidance(c.Entity, c.Time)
	case CancelLastTimelineEvent:
		return m.cancelLastTimelineEvent(c.Entity)
	case CancelCurrentSegment:
		return m.cancelCurrentSegment(c.Entity)
	case SetTarget:
		return m.setTarget(c.Entity, c.Target)
	case Dock:
		return m.dock(c.Station, c.Location, c.Entity)
	case Undock:
		return m.undock(c.Station, c.Location)
	case StartFuelTransfer:
		return m.setFuelTransfer(c.Station, c.Location, true)
	case StopFuelTransfer:
		return m.setFuelTransfer(c.Station, c.Location, false)
	case StartTorpedoTransfer:
		return m.setTorpedoTransfer(c.Station, c.Location, true)
	case StopTorpedoTransfer:
		return m.setTorpedoTransfer(c.Station, c.Location, false)
	}
	return nil
}
