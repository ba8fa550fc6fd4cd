// Package gamemath holds the 2D vector helpers that donburi's math.Vec2
// does not provide.
package gamemath

import (
	"math"

	dmath "github.com/yohamta/donburi/features/math"
)

// Cross returns the z component of the 3D cross product.
func Cross(a, b dmath.Vec2) float64 {
	return a.X*b.Y - a.Y*b.X
}

func LengthSq(v dmath.Vec2) float64 {
	return v.X*v.X + v.Y*v.Y
}

func DistanceSq(a, b dmath.Vec2) float64 {
	return LengthSq(b.Sub(a))
}

// Reflect mirrors direction d about the line with unit normal n.
func Reflect(d, n dmath.Vec2) dmath.Vec2 {
	return d.Sub(n.MulScalar(2 * d.Dot(&n)))
}

// NearlyEqual compares vectors component-wise within eps.
func NearlyEqual(a, b dmath.Vec2, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps
}
