package numerics

import "math"

// padeEccentricAnomalyThresholds and padeOrders tabulate a piecewise Pade
// approximation to the hyperbolic Kepler equation's starting estimate, per
// B. Wu et al., "A new method for solving the hyperbolic Kepler equation".
// The eccentric-anomaly range is split into 15 intervals, each with its own
// rational-function order, giving an initial guess accurate enough that a
// single Halley refinement converges even where Newton diverges.
var padeEccentricAnomalyThresholds = [15]float64{
	40.0 / 8.0, 38.0 / 8.0, 34.0 / 8.0, 30.0 / 8.0, 26.0 / 8.0,
	22.0 / 8.0, 18.0 / 8.0, 15.0 / 8.0, 13.0 / 8.0, 11.0 / 8.0,
	9.0 / 8.0, 7.0 / 8.0, 5.0 / 8.0, 3.0 / 8.0, 29.0 / 200.0,
}

var padeOrders = [15]float64{
	10.0 / 2.0, 9.0 / 2.0, 8.0 / 2.0, 7.0 / 2.0, 6.0 / 2.0,
	5.0 / 2.0, 8.0 / 4.0, 7.0 / 4.0, 6.0 / 4.0, 5.0 / 4.0,
	4.0 / 4.0, 3.0 / 4.0, 2.0 / 4.0, 1.0 / 4.0, 0.0 / 4.0,
}

const cubicDeltaThreshold = 1e-6

func hyperbolicKeplerEquation(eccentricity, eccentricAnomaly float64) float64 {
	return eccentricity*math.Sinh(eccentricAnomaly) - eccentricAnomaly
}

func padeApproximation(ec, mh, a float64) [4]float64 {
	ex := math.Exp(a)
	enx := math.Exp(-a)
	sa := (ex - enx) / 2
	ca := (ex + enx) / 2
	d1 := ca*ca + 3
	d2 := sa*sa + 4
	p1 := ca * (3*ca*ca + 17) / (5 * d1)
	p2 := sa * (3*sa*sa + 28) / (20 * d2)
	p3 := ca * (ca*ca + 27) / (60 * d1)
	q1 := -2 * ca * sa / (5 * d1)
	q2 := (sa*sa - 4) / (20 * d2)

	f3 := ec*p3 - q2
	f2 := ec*p2 - (mh+a)*q2 - q1
	f1 := ec*p1 - (mh+a)*q1 - 1
	f0 := ec*sa - mh - a
	return [4]float64{f3, f2, f1, f0}
}

func solveCubic(coeffs [4]float64, mh, ec float64) float64 {
	x := mh / (ec - 1) // series-expansion starting value
	for i := 0; i < 64; i++ {
		f := ((coeffs[0]*x+coeffs[1])*x+coeffs[2])*x + coeffs[3]
		fPrime := (3*coeffs[0]*x+2*coeffs[1])*x + coeffs[2]
		fPrimePrime := 6*coeffs[0]*x + 2*coeffs[1]
		delta := -2 * f * fPrime / (2*fPrime*fPrime - f*fPrimePrime)
		if math.Abs(delta) < cubicDeltaThreshold {
			break
		}
		x += delta
	}
	return x
}

// HyperbolaKeplerSolver solves the hyperbolic Kepler equation
// M = e*sinh(E) - E for E, valid for any mean anomaly, including the very
// large values that arise close to the asymptotes. Newton's method diverges
// in the shallow region near E=0 for near-parabolic eccentricities, so the
// starting estimate is produced either by a piecewise Pade approximation
// (|M| small) or a large-|M| asymptotic expansion, then refined with one
// Halley step.
type HyperbolaKeplerSolver struct {
	eccentricity               float64
	padeMeanAnomalyThresholds [15]float64
}

func NewHyperbolaKeplerSolver(eccentricity float64) *HyperbolaKeplerSolver {
	s := &HyperbolaKeplerSolver{eccentricity: eccentricity}
	for i, ea := range padeEccentricAnomalyThresholds {
		s.padeMeanAnomalyThresholds[i] = hyperbolicKeplerEquation(eccentricity, ea)
	}
	return s
}

// Solve returns the eccentric anomaly E for the given (possibly large
// magnitude, possibly negative) mean anomaly M.
func (s *HyperbolaKeplerSolver) Solve(meanAnomaly float64) float64 {
	ec := s.eccentricity
	mh := math.Abs(meanAnomaly)

	var f0 float64
	if mh <= s.padeMeanAnomalyThresholds[0] {
		i := 0
		for i < len(s.padeMeanAnomalyThresholds)-1 && mh < s.padeMeanAnomalyThresholds[i+1] {
			i++
		}
		a := padeOrders[i]
		coeffs := padeApproximation(ec, mh, a)
		f0 = solveCubic(coeffs, mh, ec) + a
	} else {
		fa := math.Log(2 * mh / ec)
		ca := 0.5 * (2*mh/ec + ec/(2*mh))
		sa := 0.5 * (2*mh/ec - ec/(2*mh))
		inner := (ec*ec/(4*mh) + fa) / (ec*ca - 1)
		top := 6*(ec*ec/(4*mh)+fa)/(ec*ca-1) + 3*(ec*sa/(ec*ca-1))*inner*inner
		bottom := 6 + 6*(ec*sa/(ec*ca-1))*inner + (ec*ca/(ec*ca-1))*inner*inner
		f0 = fa + top/bottom
	}

	// Halley refinement.
	f := ec*math.Sinh(f0) - f0 - mh
	fPrime := ec*math.Cosh(f0) - 1
	fPrimePrime := fPrime + 1
	f1 := f0 - (2*f/fPrime)/(2-f*fPrimePrime/(fPrime*fPrime))

	return f1 * sign(meanAnomaly)
}
