package pattern

import (
	"iter"

	"github.com/automoto/beatboss/shared/gamemath"
	dmath "github.com/yohamta/donburi/features/math"
)

// Single emits once along dir. A zero dir falls back to +X.
func Single(origin, dir dmath.Vec2) iter.Seq[Emission] {
	d := unitOrRight(dir)
	return func(yield func(Emission) bool) {
		yield(Emission{Origin: origin, Direction: d})
	}
}

// Circle emits count directions evenly spaced over 360 degrees, the first at
// startDeg.
func Circle(origin dmath.Vec2, count int, startDeg float64) iter.Seq[Emission] {
	if count <= 0 {
		return empty
	}
	step := 360 / float64(count)
	return func(yield func(Emission) bool) {
		for i := 0; i < count; i++ {
			if !yield(at(origin, startDeg+float64(i)*step)) {
				return
			}
		}
	}
}

// Fan emits count directions spread over spreadDeg and centered on
// centerDir. A single bullet goes exactly along centerDir.
func Fan(origin, centerDir dmath.Vec2, count int, spreadDeg float64) iter.Seq[Emission] {
	if count <= 0 {
		return empty
	}
	center := unitOrRight(centerDir)
	return func(yield func(Emission) bool) {
		for i := 0; i < count; i++ {
			if !yield(Emission{Origin: origin, Direction: spreadDirection(center, i, count, spreadDeg)}) {
				return
			}
		}
	}
}

// Spiral places count points along an arm turning turns times. The i-th
// point sits radiusGrowth*i away from origin along its own heading and flies
// outward.
func Spiral(origin dmath.Vec2, count int, turns, startDeg, radiusGrowth float64) iter.Seq[Emission] {
	if count <= 0 {
		return empty
	}
	step := turns * 360 / float64(count)
	return func(yield func(Emission) bool) {
		for i := 0; i < count; i++ {
			dir := gamemath.FromAngle(gamemath.DegToRad(startDeg + float64(i)*step))
			radius := radiusGrowth * float64(i)
			e := Emission{
				Origin:    origin.Add(dir.MulScalar(radius)),
				Direction: dir,
			}
			if !yield(e) {
				return
			}
		}
	}
}

// Flower emits petals evenly spaced around the circle, each a small fan of
// perPetal bullets over petalSpreadDeg centered on the petal's angle.
func Flower(origin dmath.Vec2, petals, perPetal int, petalSpreadDeg, startDeg float64) iter.Seq[Emission] {
	if petals <= 0 || perPetal <= 0 {
		return empty
	}
	petalStep := 360 / float64(petals)
	return func(yield func(Emission) bool) {
		for p := 0; p < petals; p++ {
			center := gamemath.FromAngle(gamemath.DegToRad(startDeg + float64(p)*petalStep))
			for i := 0; i < perPetal; i++ {
				if !yield(Emission{Origin: origin, Direction: spreadDirection(center, i, perPetal, petalSpreadDeg)}) {
					return
				}
			}
		}
	}
}

// DefaultLeadTime is how far ahead a predicted aim looks when no lead speed
// is known.
const DefaultLeadTime = 1.0

// Aim fans count bullets around the direction from origin to target. With
// predict set the target is led by its velocity over the flight time at
// leadSpeed, or over DefaultLeadTime when leadSpeed is not positive. If the
// aim point coincides with origin, facing is used.
func Aim(origin, facing, target, targetVel dmath.Vec2, count int, spreadDeg float64, predict bool, leadSpeed float64) iter.Seq[Emission] {
	if count <= 0 {
		return empty
	}
	aimPoint := target
	if predict {
		flight := DefaultLeadTime
		if leadSpeed > 0 {
			flight = origin.Distance(target) / leadSpeed
		}
		aimPoint = target.Add(targetVel.MulScalar(flight))
	}
	center := aimPoint.Sub(origin).Normalized()
	if center == (dmath.Vec2{}) {
		center = facing
	}
	return Fan(origin, center, count, spreadDeg)
}

// spreadOffset returns the angular offset in degrees of bullet i of count
// spread over spreadDeg. A full-circle spread does not repeat its endpoints.
func spreadOffset(i, count int, spreadDeg float64) float64 {
	if count == 1 {
		return 0
	}
	if spreadDeg >= 360 {
		return float64(i) * spreadDeg / float64(count)
	}
	step := spreadDeg / float64(count-1)
	return -spreadDeg/2 + float64(i)*step
}

func spreadDirection(center dmath.Vec2, i, count int, spreadDeg float64) dmath.Vec2 {
	off := spreadOffset(i, count, spreadDeg)
	if off == 0 {
		return center
	}
	return center.Rotate(gamemath.DegToRad(off))
}

func unitOrRight(v dmath.Vec2) dmath.Vec2 {
	u := v.Normalized()
	if u == (dmath.Vec2{}) {
		return dmath.Vec2{X: 1}
	}
	return u
}
