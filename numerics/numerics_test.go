package numerics

import (
	"math"
	"testing"

	"github.com/orbitalcombat/simcore/vector2"
)

const tol = 1e-8

func TestNormalizeAngleRange(t *testing.T) {
	cases := []float64{0, math.Pi, -math.Pi / 2, 3 * math.Pi, -7 * math.Pi}
	for _, theta := range cases {
		got := NormalizeAngle(theta)
		if got < 0 || got >= 2*math.Pi {
			t.Fatalf("NormalizeAngle(%v) = %v, want in [0, 2π)", theta, got)
		}
	}
}

func TestEllipseKeplerSolverRecoversMeanAnomaly(t *testing.T) {
	for _, e := range []float64{0.0, 0.3, 0.7, 0.95} {
		s := NewEllipseKeplerSolver(e)
		for _, m := range []float64{0, 0.5, math.Pi, 4.5, 2*math.Pi - 0.1} {
			ea := s.Solve(m)
			// Kepler's equation: M = E - e*sin(E).
			gotM := NormalizeAngle(ea - e*math.Sin(ea))
			wantM := NormalizeAngle(m)
			if math.Abs(gotM-wantM) > 1e-6 {
				t.Fatalf("e=%v m=%v: E=%v does not satisfy Kepler's equation (got M=%v, want %v)", e, m, ea, gotM, wantM)
			}
		}
	}
}

func TestHyperbolaKeplerSolverRecoversMeanAnomaly(t *testing.T) {
	for _, e := range []float64{1.1, 1.5, 3.0} {
		s := NewHyperbolaKeplerSolver(e)
		for _, m := range []float64{0.01, 0.5, 2, 10, -5} {
			h := s.Solve(m)
			gotM := e*math.Sinh(h) - h
			if math.Abs(gotM-m) > 1e-4*math.Max(1, math.Abs(m)) {
				t.Fatalf("e=%v m=%v: H=%v does not satisfy the hyperbolic Kepler equation (got M=%v, want %v)", e, m, h, gotM, m)
			}
		}
	}
}

func TestITPFindsRootOfLinearFunction(t *testing.T) {
	f := func(x float64) float64 { return x - 2.5 }
	root, err := ITP(f, 0, 10)
	if err != nil {
		t.Fatalf("ITP: %v", err)
	}
	if math.Abs(root-2.5) > 1e-6 {
		t.Fatalf("ITP root: got %v, want 2.5", root)
	}
}

func TestITPRejectsNonBracketingInterval(t *testing.T) {
	f := func(x float64) float64 { return x*x + 1 } // never crosses zero
	if _, err := ITP(f, -1, 1); err == nil {
		t.Fatal("expected an error for a non sign-changing interval")
	}
}

func TestITPFindsRootOfDecreasingFunction(t *testing.T) {
	f := func(x float64) float64 { return 1.4e6 - x }
	root, err := ITP(f, 1.33e6, 1.47e6)
	if err != nil {
		t.Fatalf("ITP: %v", err)
	}
	if math.Abs(root-1.4e6) > 1e-2 {
		t.Fatalf("ITP root: got %v, want 1.4e6", root)
	}
}

func TestMakeRangeContaining(t *testing.T) {
	cases := []struct {
		a, b, containing float64
		wantLo, wantHi   float64
	}{
		{0, 3, 2, 0, 3},
		{0, 3, 5, 3, 2 * math.Pi},
		{-2, 2, 0.1, -2 + 2*math.Pi, 2 + 2*math.Pi},
		{-2, 2, 2.8, 2, -2 + 2*math.Pi},
	}
	for _, c := range cases {
		lo, hi := MakeRangeContaining(c.a, c.b, c.containing)
		if math.Abs(lo-c.wantLo) > tol || math.Abs(hi-c.wantHi) > tol {
			t.Fatalf("MakeRangeContaining(%v, %v, %v) = (%v, %v), want (%v, %v)",
				c.a, c.b, c.containing, lo, hi, c.wantLo, c.wantHi)
		}
	}
}

func TestFindOtherStationaryPointOnSinusoid(t *testing.T) {
	f := math.Cos // stationary points at 0 and pi (mod 2*pi)
	got, err := FindOtherStationaryPoint(f, 0)
	if err != nil {
		t.Fatalf("FindOtherStationaryPoint: %v", err)
	}
	if math.Abs(got-math.Pi) > 1e-4 {
		t.Fatalf("other stationary point of cos from 0: got %v, want pi", got)
	}
}

func TestClosestPointOnEllipseAtAxisIsExact(t *testing.T) {
	a, b := 10.0, 6.0
	got := ClosestPointOnEllipse(a, b, vector2.New(100, 0))
	if math.Abs(got.X-a) > 1e-6 || math.Abs(got.Y) > 1e-6 {
		t.Fatalf("closest point to a far point on the major axis: got %+v, want (%v, 0)", got, a)
	}
}
