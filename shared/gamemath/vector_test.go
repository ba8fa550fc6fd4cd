package gamemath

import (
	"math"
	"testing"

	dmath "github.com/yohamta/donburi/features/math"
)

func TestRotateTowardClampsStep(t *testing.T) {
	cur := dmath.NewVec2(1, 0)
	target := dmath.NewVec2(0, 1)

	next, reached := RotateToward(cur, target, DegToRad(45))
	if reached {
		t.Fatalf("expected partial rotation")
	}
	want := dmath.NewVec2(math.Sqrt2/2, math.Sqrt2/2)
	if !NearlyEqual(next, want, 1e-9) {
		t.Fatalf("got %v, want %v", next, want)
	}
}

func TestRotateTowardSnapsExactly(t *testing.T) {
	next, reached := RotateToward(dmath.NewVec2(1, 0), dmath.NewVec2(0, 5), DegToRad(90))
	if !reached {
		t.Fatalf("expected alignment")
	}
	if next != (dmath.Vec2{X: 0, Y: 1}) {
		t.Fatalf("expected exact (0,1), got %v", next)
	}
}

func TestRotateTowardTurnsShortWay(t *testing.T) {
	next, _ := RotateToward(dmath.NewVec2(1, 0), dmath.NewVec2(0, -1), DegToRad(10))
	if next.Y >= 0 {
		t.Fatalf("expected clockwise turn toward -Y, got %v", next)
	}
}

func TestReflect(t *testing.T) {
	got := Reflect(dmath.NewVec2(1, 1), dmath.NewVec2(-1, 0))
	if !NearlyEqual(got, dmath.NewVec2(-1, 1), 1e-12) {
		t.Fatalf("got %v", got)
	}
}

func TestDistanceSq(t *testing.T) {
	if got := DistanceSq(dmath.NewVec2(1, 1), dmath.NewVec2(4, 5)); got != 25 {
		t.Fatalf("got %v", got)
	}
}

func TestSignedAngle(t *testing.T) {
	if got := SignedAngle(dmath.NewVec2(1, 0), dmath.NewVec2(0, 1)); math.Abs(got-math.Pi/2) > 1e-12 {
		t.Fatalf("got %v", got)
	}
	if got := SignedAngle(dmath.NewVec2(1, 0), dmath.NewVec2(0, -1)); math.Abs(got+math.Pi/2) > 1e-12 {
		t.Fatalf("got %v", got)
	}
}
