package numerics

import (
	"errors"
	"math"
)

// ErrNoConvergence is returned by every iterative root-finder in this
// package once its iteration cap is exceeded. Callers treat this as a
// recoverable "prediction truncated" condition, never as a fatal error.
var ErrNoConvergence = errors.New("numerics: failed to converge within iteration cap")

// itpParams bundles the interpolation-truncation-projection hybrid's
// tuning constants.
type itpParams struct {
	k1   float64
	k2   float64
	n0   int
	maxIterations int
}

var defaultITPParams = itpParams{
	k1: 0.2,
	k2: 2.0,
	n0: 1,
	maxIterations: 200,
}

// ITP finds a root of f within [a, b], requiring sign(f(a)) != sign(f(b)).
// It combines regula falsi (interpolation), bisection (midpoint), and a
// truncation step that nudges the interpolated point toward the midpoint,
// then projects the result back into a shrinking bisection-guaranteed
// bracket. This guarantees the worst-case iteration count of bisection
// while achieving super-linear convergence on well-behaved functions, and
// is used throughout the repository for SOI-boundary crossings,
// closest-approach times, and guidance intercept refinement.
func ITP(f func(float64) float64, a, b float64) (float64, error) {
	return itpWithParams(f, a, b, defaultITPParams)
}

func itpWithParams(f func(float64) float64, a, b float64, p itpParams) (float64, error) {
	if a > b {
		a, b = b, a
	}
	fa, fb := f(a), f(b)
	if fa == 0 {
		return a, nil
	}
	if fb == 0 {
		return b, nil
	}
	if (fa > 0) == (fb > 0) {
		return 0, errors.New("numerics: ITP requires a bracketing interval (sign(f(a)) == sign(f(b)))")
	}
	if fa > fb {
		// Normalize so that f(a) < 0 < f(b). Negating keeps a < b, which the
		// projection-radius arithmetic below depends on.
		orig := f
		f = func(x float64) float64 { return -orig(x) }
		fa, fb = -fa, -fb
	}

	// Absolute floor plus a relative term: a purely absolute tolerance
	// stalls below one ULP when the bracket sits at large abscissae
	// (encounter times are routinely ~1e6 s).
	epsilon := math.Max(1e-10, 1e-12*math.Max(math.Abs(a), math.Abs(b)))
	nHalf := int(math.Ceil(math.Log2((b - a) / (2 * epsilon))))
	nMax := nHalf + p.n0

	for i := 0; i < p.maxIterations; i++ {
		if b-a < 2*epsilon {
			return (a + b) / 2, nil
		}

		// Interpolation: regula falsi estimate.
		xf := (fb*a - fa*b) / (fb - fa)

		// Truncation: bias toward the bisection midpoint.
		xHalf := (a + b) / 2
		delta := p.k1 * math.Pow(b-a, p.k2)
		var xt float64
		sigma := sign(xHalf - xf)
		if delta <= math.Abs(xHalf-xf) {
			xt = xf + sigma*delta
		} else {
			xt = xHalf
		}

		// Projection: clamp into the bisection-guaranteed radius.
		rk := epsilon*math.Pow(2, float64(nMax-i)) - (b-a)/2
		var xITP float64
		if math.Abs(xt-xHalf) <= rk {
			xITP = xt
		} else {
			xITP = xHalf - sigma*rk
		}

		fITP := f(xITP)
		switch {
		case fITP > 0:
			b, fb = xITP, fITP
		case fITP < 0:
			a, fa = xITP, fITP
		default:
			return xITP, nil
		}
	}
	return 0, ErrNoConvergence
}

func sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}
