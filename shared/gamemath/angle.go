package gamemath

import (
	"math"

	dmath "github.com/yohamta/donburi/features/math"
)

func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func RadToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// FromAngle returns the unit vector at rad radians.
func FromAngle(rad float64) dmath.Vec2 {
	return dmath.Vec2{X: math.Cos(rad), Y: math.Sin(rad)}
}

// Angle returns the heading of v in radians.
func Angle(v dmath.Vec2) float64 {
	return math.Atan2(v.Y, v.X)
}

// SignedAngle returns the rotation in (-pi, pi] that takes from onto to.
func SignedAngle(from, to dmath.Vec2) float64 {
	return math.Atan2(Cross(from, to), from.Dot(&to))
}

// RotateToward turns unit vector cur toward the direction of target by at most
// maxRad radians. When the remaining angle fits in the step the exact
// normalized target direction is returned and reached is true.
func RotateToward(cur, target dmath.Vec2, maxRad float64) (next dmath.Vec2, reached bool) {
	if target.IsZero() {
		return cur, false
	}
	want := target.Normalized()
	delta := SignedAngle(cur, want)
	if math.Abs(delta) <= maxRad {
		return want, true
	}
	if delta < 0 {
		maxRad = -maxRad
	}
	return cur.Rotate(maxRad).Normalized(), false
}
