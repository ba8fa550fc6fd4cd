package components

import (
	"github.com/automoto/beatboss/boss"
	"github.com/yohamta/donburi"
	dmath "github.com/yohamta/donburi/features/math"
)

type BossData struct {
	*boss.Boss
}

// EmitterData mirrors one boss emitter so queries and the spectator sync
// can see it without reaching into the boss.
type EmitterData struct {
	Name     string
	Position dmath.Vec2
}

var Boss = donburi.NewComponentType[BossData]()
var Emitter = donburi.NewComponentType[EmitterData]()
