package archetypes

import (
	"github.com/automoto/beatboss/components"
	"github.com/automoto/beatboss/tags"
	"github.com/yohamta/donburi"
)

var (
	Arena = newArchetype(
		components.Arena,
	)
	Boss = newArchetype(
		tags.Boss,
		tags.Target,
		components.Boss,
		components.Object,
		components.Health,
	)
	Emitter = newArchetype(
		tags.Emitter,
		components.Emitter,
	)
	Player = newArchetype(
		tags.Player,
		tags.Target,
		components.Player,
		components.Object,
		components.Health,
		components.DamageEvent,
	)
)

type archetype struct {
	components []donburi.IComponentType
}

func newArchetype(cs ...donburi.IComponentType) *archetype {
	return &archetype{
		components: cs,
	}
}

func (a *archetype) Spawn(w donburi.World, cs ...donburi.IComponentType) *donburi.Entry {
	return w.Entry(w.Create(append(a.components, cs...)...))
}
