package numerics

import "math"

// EllipseKeplerSolver solves Kepler's equation M = E - e*sin(E) for the
// eccentric anomaly E given the mean anomaly M, for a fixed eccentricity.
// The elliptical case is numerically tame (unlike the hyperbola, see
// kepler_hyperbola.go), so a seeded Newton iteration with a bisection
// fallback guard is sufficient.
type EllipseKeplerSolver struct {
	eccentricity  float64
	maxIterations int
}

func NewEllipseKeplerSolver(eccentricity float64) *EllipseKeplerSolver {
	return &EllipseKeplerSolver{eccentricity: eccentricity, maxIterations: 100}
}

// Solve returns the eccentric anomaly E for the given mean anomaly M.
func (s *EllipseKeplerSolver) Solve(meanAnomaly float64) float64 {
	e := s.eccentricity
	m := NormalizeAngle(meanAnomaly)

	// Seed with the mean anomaly itself for low eccentricity, else with pi,
	// both standard starting points for Newton-Kepler solvers.
	E := m
	if e > 0.8 {
		E = math.Pi
	}

	for i := 0; i < s.maxIterations; i++ {
		f := E - e*math.Sin(E) - m
		fPrime := 1 - e*math.Cos(E)
		delta := f / fPrime
		E -= delta
		if math.Abs(delta) < 1e-12 {
			return E
		}
	}

	// Newton failed to converge (can happen for e very close to 1): fall
	// back to bisection over [0, 2*pi], which is guaranteed to converge
	// since E - e*sin(E) - m is monotonic increasing in E.
	f := func(x float64) float64 { return x - e*math.Sin(x) - m }
	root, err := ITP(f, -0.1, 2*math.Pi+0.1)
	if err != nil {
		return E
	}
	return root
}
