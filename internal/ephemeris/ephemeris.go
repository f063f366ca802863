// Package ephemeris is a thin wrapper around soniakeys/meeus's julian
// package for pinning simulated time to a real-world calendar epoch,
// used only for flavor text (a body's local time of day, a save file's
// human-readable creation date) and never consulted by the physics core
// itself. julian.TimeToJD converts a time.Time into the Julian Day the
// calendar arithmetic keys off of; this simulation's bodies are not the
// real solar system, so no planetary position series is involved.
package ephemeris

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/julian"
	"github.com/soniakeys/unit"
)

const secondsPerDay = 86400

// Epoch pins a point in simulated time to a real-world Julian Day.
type Epoch struct {
	jd float64
}

// NewEpoch converts a calendar time to an Epoch.
func NewEpoch(t time.Time) Epoch {
	return Epoch{jd: julian.TimeToJD(t)}
}

// JulianDay returns the underlying Julian Day number.
func (e Epoch) JulianDay() float64 { return e.jd }

// Calendar converts back to a calendar time.
func (e Epoch) Calendar() time.Time { return julian.JDToTime(e.jd) }

// Add returns the Epoch offset by dt simulated seconds.
func (e Epoch) Add(dt float64) Epoch {
	return Epoch{jd: e.jd + dt/secondsPerDay}
}

// RotationAngle returns a body's axial rotation angle at Epoch at, given
// its rotation period in seconds and its angle at reference Epoch ref,
// wrapped to [0, 2π). This is the real-epoch counterpart of
// model.Orbitable.RotationAngleAtTime's simulated-seconds version, used
// by flavor-text readouts (e.g. "local time of day" for an observed
// planet) that want to anchor a body's spin to a calendar date rather
// than pure elapsed simulation time.
func RotationAngle(periodSec, angle0Rad float64, ref, at Epoch) float64 {
	if periodSec == 0 {
		return unit.Angle(angle0Rad).Mod1().Rad()
	}
	elapsedSec := (at.jd - ref.jd) * secondsPerDay
	frac := elapsedSec / periodSec
	frac -= math.Floor(frac)
	return unit.Angle(angle0Rad + frac*2*math.Pi).Mod1().Rad()
}
