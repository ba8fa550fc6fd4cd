package components

import (
	"github.com/solarlune/resolv"
	"github.com/yohamta/donburi"
	dmath "github.com/yohamta/donburi/features/math"
)

type ObjectData struct {
	*resolv.Object
}

// Center returns the middle of the collider.
func (o *ObjectData) Center() dmath.Vec2 {
	return dmath.Vec2{X: o.X + o.W/2, Y: o.Y + o.H/2}
}

// MoveCenter places the collider around pos and refreshes its cells.
func (o *ObjectData) MoveCenter(pos dmath.Vec2) {
	o.X = pos.X - o.W/2
	o.Y = pos.Y - o.H/2
	o.Update()
}

var Object = donburi.NewComponentType[ObjectData]()
