package components

import (
	"github.com/yohamta/donburi"
	dmath "github.com/yohamta/donburi/features/math"
)

type PlayerData struct {
	Index        int
	Velocity     dmath.Vec2
	InvulnTime   float64 // seconds of invulnerability left after a hit
	FireCooldown float64 // seconds until the next auto-fired shot
	HitsTaken    int
}

var Player = donburi.NewComponentType[PlayerData]()
