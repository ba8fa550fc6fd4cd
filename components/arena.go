package components

import (
	"github.com/automoto/beatboss/arena"
	"github.com/yohamta/donburi"
)

type ArenaData struct {
	*arena.Arena
}

var Arena = donburi.NewComponentType[ArenaData]()
