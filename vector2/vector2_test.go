package vector2

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestAddSubNeg(t *testing.T) {
	a := New(1, 2)
	b := New(3, -4)
	if got := a.Add(b); got != (Vec2{4, -2}) {
		t.Fatalf("Add: got %+v", got)
	}
	if got := a.Sub(b); got != (Vec2{-2, 6}) {
		t.Fatalf("Sub: got %+v", got)
	}
	if got := a.Neg(); got != (Vec2{-1, -2}) {
		t.Fatalf("Neg: got %+v", got)
	}
}

func TestDotAndCross(t *testing.T) {
	a := New(1, 0)
	b := New(0, 1)
	if got := a.Dot(b); !almostEqual(got, 0) {
		t.Fatalf("Dot of perpendicular unit vectors: got %v, want 0", got)
	}
	if got := a.Cross(b); !almostEqual(got, 1) {
		t.Fatalf("Cross(x̂, ŷ): got %v, want 1", got)
	}
}

func TestNormalizeZeroVector(t *testing.T) {
	if got := Zero.Normalize(); got != Zero {
		t.Fatalf("Normalize of the zero vector must stay Zero, got %+v", got)
	}
}

func TestNormalizeUnitLength(t *testing.T) {
	v := New(3, 4)
	n := v.Normalize()
	if !almostEqual(n.Norm(), 1) {
		t.Fatalf("Normalize: got norm %v, want 1", n.Norm())
	}
}

func TestPerpIsPerpendicular(t *testing.T) {
	v := New(2, 3)
	p := v.Perp()
	if !almostEqual(v.Dot(p), 0) {
		t.Fatalf("Perp: dot with original should be 0, got %v", v.Dot(p))
	}
}

func TestRotateByFullTurnIsIdentity(t *testing.T) {
	v := New(1, 2)
	got := v.Rotate(2 * math.Pi)
	if !almostEqual(got.X, v.X) || !almostEqual(got.Y, v.Y) {
		t.Fatalf("Rotate by 2π: got %+v, want %+v", got, v)
	}
}

func TestRotateByRightAngleMatchesPerp(t *testing.T) {
	v := New(1, 0)
	got := v.Rotate(math.Pi / 2)
	want := v.Perp()
	if !almostEqual(got.X, want.X) || !almostEqual(got.Y, want.Y) {
		t.Fatalf("Rotate(π/2): got %+v, want %+v", got, want)
	}
}
