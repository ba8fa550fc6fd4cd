package netcomponents

import "github.com/yohamta/donburi"

type NetBossData struct {
	X, Y      float64
	Health    int
	MaxHealth int
	Phase     int
	State     int // boss.State
}

var NetBoss = donburi.NewComponentType[NetBossData]()

// LerpNetBoss interpolates position; health and phase snap to the newer state.
func LerpNetBoss(from, to NetBossData, t float64) *NetBossData {
	return &NetBossData{
		X:         from.X + (to.X-from.X)*t,
		Y:         from.Y + (to.Y-from.Y)*t,
		Health:    to.Health,
		MaxHealth: to.MaxHealth,
		Phase:     to.Phase,
		State:     to.State,
	}
}
