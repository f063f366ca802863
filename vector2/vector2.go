// Package vector2 provides the planar vector arithmetic shared by every
// package in the simulation core. The dynamics are strictly planar, so
// a concrete 2-field struct replaces general slice-backed vectors; the
// norm/dot reductions still delegate to gonum/floats.
package vector2

import (
	"math"

	"github.com/gonum/floats"
)

// Vec2 is a planar vector (position, velocity, or acceleration).
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Zero is the additive identity.
var Zero = Vec2{}

func New(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }
func (v Vec2) Neg() Vec2 { return Vec2{-v.X, -v.Y} }

func (v Vec2) Dot(o Vec2) float64 {
	return floats.Dot([]float64{v.X, v.Y}, []float64{o.X, o.Y})
}

// Cross returns the z-component of the 3D cross product of two planar vectors.
func (v Vec2) Cross(o Vec2) float64 {
	return v.X*o.Y - v.Y*o.X
}

func (v Vec2) Norm() float64 {
	return floats.Norm([]float64{v.X, v.Y}, 2)
}

func (v Vec2) NormSq() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Normalize returns the unit vector in the direction of v, or Zero if v is
// (numerically) the zero vector.
func (v Vec2) Normalize() Vec2 {
	n := v.Norm()
	if n < 1e-12 {
		return Zero
	}
	return v.Scale(1 / n)
}

// Perp returns v rotated anti-clockwise by 90 degrees.
func (v Vec2) Perp() Vec2 {
	return Vec2{-v.Y, v.X}
}

// Rotate rotates v anti-clockwise by theta radians.
func (v Vec2) Rotate(theta float64) Vec2 {
	c, s := math.Cos(theta), math.Sin(theta)
	return Vec2{v.X*c - v.Y*s, v.X*s + v.Y*c}
}

// RotateFromTangent re-expresses a (tangent, normal) body-frame vector in
// the inertial frame given a fixed inertial tangent direction ut.
func RotateFromTangent(ut Vec2, tangent, normal float64) Vec2 {
	un := ut.Perp()
	return ut.Scale(tangent).Add(un.Scale(normal))
}
