package components

import "github.com/yohamta/donburi"

// DamageEventData accumulates hits taken during a tick. The damage system
// applies and clears it once per tick.
type DamageEventData struct {
	Amount int
	Hits   int
}

var DamageEvent = donburi.NewComponentType[DamageEventData]()
