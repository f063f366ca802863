package model

import "math"

// timeStepSpeeds is the predefined speed ladder for time-step levels
// 1..13.
var timeStepSpeeds = [13]float64{
	1, 5, 10, 50, 100, 500, 1000, 5000, 10000, 50000, 100000, 500000, 1000000,
}

// TimeStep is either a discrete level on the predefined ladder or an
// explicit speed override.
type TimeStep struct {
	Level    int     `json:"level"` // 1..13, used when Explicit is false
	Speed    float64 `json:"speed"`
	Explicit bool    `json:"explicit"`
}

func (t TimeStep) speed() float64 {
	if t.Explicit {
		return t.Speed
	}
	level := t.Level
	if level < 1 {
		level = 1
	}
	if level > len(timeStepSpeeds) {
		level = len(timeStepSpeeds)
	}
	return timeStepSpeeds[level-1]
}

// TimeWarp is the in-progress "jump to a future time" state.
type TimeWarp struct {
	Active    bool    `json:"active"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
}

// maxWarpSpeed is the flat speed used for the bulk of a warp.
const maxWarpSpeed = 1e7

// warpFloorSpeed is the minimum speed during the decay tail, so a warp
// always makes forward progress even very close to its target.
const warpFloorSpeed = 100.0

// speedAt computes the warp's instantaneous simulation speed at the
// current simulated time t: constant at maxWarpSpeed until 95% of the
// way to EndTime, then decaying quadratically down to warpFloorSpeed.
func (w TimeWarp) speedAt(t float64) float64 {
	total := w.EndTime - w.StartTime
	if total <= 0 {
		return warpFloorSpeed
	}
	progress := (t - w.StartTime) / total
	const decayStart = 0.95
	if progress < decayStart {
		return maxWarpSpeed
	}
	remaining := 1 - progress
	remainingFrac := remaining / (1 - decayStart)
	if remainingFrac < 0 {
		remainingFrac = 0
	}
	decayed := maxWarpSpeed * remainingFrac * remainingFrac
	return math.Max(decayed, warpFloorSpeed)
}

// Clock owns simulated time, the active TimeStep, an optional TimeWarp,
// and the force-pause flag.
type Clock struct {
	Time   float64   `json:"time"`
	Step   TimeStep  `json:"step"`
	Warp   *TimeWarp `json:"warp,omitempty"`
	Paused bool      `json:"paused"`
}

// advance runs clock stages 1-2 of the per-tick update: progress any
// active warp (clearing it on completion) and otherwise step by the
// current TimeStep's speed, unless paused.
func (c *Clock) advance(dt float64) {
	if c.Warp != nil {
		speed := c.Warp.speedAt(c.Time)
		c.Time += dt * speed
		if c.Time >= c.Warp.EndTime {
			c.Time = c.Warp.EndTime
			c.Warp = nil
		}
		return
	}
	if c.Paused {
		return
	}
	c.Time += dt * c.Step.speed()
}
