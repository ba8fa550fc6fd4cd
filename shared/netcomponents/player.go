package netcomponents

import "github.com/yohamta/donburi"

type NetPlayerData struct {
	X, Y   float64
	Health int
	Invuln bool // flashing after a hit
	Slot   int
}

var NetPlayer = donburi.NewComponentType[NetPlayerData]()

// LerpNetPlayer interpolates between two player states
func LerpNetPlayer(from, to NetPlayerData, t float64) *NetPlayerData {
	return &NetPlayerData{
		X:      from.X + (to.X-from.X)*t,
		Y:      from.Y + (to.Y-from.Y)*t,
		Health: to.Health,
		Invuln: to.Invuln,
		Slot:   to.Slot,
	}
}
