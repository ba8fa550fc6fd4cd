package tags

import "github.com/yohamta/donburi"

var (
	Player  = donburi.NewTag().SetName("Player")
	Boss    = donburi.NewTag().SetName("Boss")
	Emitter = donburi.NewTag().SetName("Emitter")
	Target  = donburi.NewTag().SetName("Target")
)

// Resolv tags for collision
const (
	ResolvSolid      = "solid"
	ResolvPlayer     = "player"
	ResolvBoss       = "boss"
	ResolvEnemy      = "enemy"
	ResolvProjectile = "projectile"
	ResolvPlayerShot = "player_shot"
	ResolvEnemyShot  = "enemy_shot"
)
