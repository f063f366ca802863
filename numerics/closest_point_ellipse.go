package numerics

import (
	"math"

	"github.com/orbitalcombat/simcore/vector2"
)

// ClosestPointOnEllipse returns the point on a centred, axis-aligned ellipse
// (semi-major axis a along X, semi-minor axis b along Y) closest to an
// arbitrary query point, found by iteratively projecting along the
// ellipse's normal direction. This is the standard "closest point on
// ellipse" fixed-point iteration: the true closest point always has a
// normal passing through the query point, so each iterate walks the
// parametric angle toward the angle whose normal hits the query point.
func ClosestPointOnEllipse(a, b float64, query vector2.Vec2) vector2.Vec2 {
	px, py := math.Abs(query.X), math.Abs(query.Y)

	// Initial guess: angle from the centre to the query point.
	t := math.Atan2(py*a, px*b)
	if px < 1e-12 && py < 1e-12 {
		t = 0
	}

	for i := 0; i < 64; i++ {
		x := a * math.Cos(t)
		y := b * math.Sin(t)

		ex := (a*a - b*b) * math.Pow(math.Cos(t), 3) / a
		ey := (b*b - a*a) * math.Pow(math.Sin(t), 3) / b

		rx, ry := x-ex, y-ey
		qx, qy := px-ex, py-ey

		r := math.Hypot(rx, ry)
		q := math.Hypot(qx, qy)

		var deltaT float64
		if r > 1e-12 && q > 1e-12 {
			deltaC := r * math.Asin((rx*qy-ry*qx)/(r*q)) / math.Max(a, b)
			deltaT = deltaC
		}
		t += deltaT
		t = math.Max(0, math.Min(math.Pi/2, t))
		if math.Abs(deltaT) < 1e-9 {
			break
		}
	}

	x := a * math.Cos(t)
	y := b * math.Sin(t)
	if query.X < 0 {
		x = -x
	}
	if query.Y < 0 {
		y = -y
	}
	return vector2.Vec2{X: x, Y: y}
}
