package encounter

import (
	"math"

	"github.com/orbitalcombat/simcore/numerics"
	"github.com/orbitalcombat/simcore/segment"
)

// window is one candidate time interval in which the child can come
// within a sibling's SOI at most once. Periodic windows repeat every
// child orbit period.
type window struct {
	orbit    *segment.Orbit
	sib      Sibling
	periodic bool
	start    float64
	end      float64
}

// derivativeDelta is the finite-difference half-step used on the
// inter-body distance when hunting its minimum inside a window.
const derivativeDelta = 0.1

func (w *window) advance() {
	period := w.orbit.Period()
	w.start += period
	w.end += period
}

// advanceUntil shifts a periodic window forward whole periods until its
// end is at or past t.
func (w *window) advanceUntil(t float64) {
	period := w.orbit.Period()
	if period <= 0 {
		return
	}
	for w.end < t {
		w.start += period
		w.end += period
	}
}

// search looks for the earliest crossing of the child-sibling distance
// below the sibling's SOI inside this window, clipped to [startTime,
// endTime]. A window holds at most one approach minimum: the distance
// derivative is negative at the start and positive at the end when one
// is present, so ITP on the derivative pins the minimum and a second ITP
// between the window start (outside) and the minimum (inside) refines
// the crossing itself.
func (w *window) search(startTime, endTime float64) (float64, bool) {
	lo := math.Max(w.start, startTime)
	hi := math.Min(w.end, endTime)
	if hi <= lo {
		return 0, false
	}

	f := func(t float64) float64 { return relativeDistance(w.orbit, w.sib, t) }
	deriv := func(t float64) float64 {
		return (f(t+derivativeDelta) - f(t-derivativeDelta)) / (2 * derivativeDelta)
	}

	var tMin float64
	d0, d1 := deriv(lo), deriv(hi)
	switch {
	case d0 < 0 && d1 > 0:
		m, err := numerics.ITP(deriv, lo, hi)
		if err != nil {
			return 0, false
		}
		tMin = m
	case d0 >= 0 && d1 >= 0:
		// Distance only grows across the window; closest at the start.
		tMin = lo
	case d0 <= 0 && d1 <= 0:
		tMin = hi
	default:
		// A maximum sits inside; the minima are the endpoints.
		if f(lo) < f(hi) {
			tMin = lo
		} else {
			tMin = hi
		}
	}

	soi := w.sib.SphereOfInfluence
	if f(tMin) >= soi {
		return 0, false
	}

	g := func(t float64) float64 { return f(t) - soi }
	if g(lo) <= 0 {
		// Already inside the SOI at the window start: the crossing belongs
		// to an earlier window (or to the encounter just applied).
		return 0, false
	}
	crossing, err := numerics.ITP(g, lo, tMin)
	if err != nil {
		return 0, false
	}
	return crossing, true
}
