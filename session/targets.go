package session

import (
	"math"

	"github.com/automoto/beatboss/boss"
	"github.com/automoto/beatboss/components"
	"github.com/automoto/beatboss/projectile"
	"github.com/automoto/beatboss/shared/gamemath"
	"github.com/automoto/beatboss/tags"
	"github.com/yohamta/donburi"
	dmath "github.com/yohamta/donburi/features/math"
)

// playerTarget adapts a player entity to projectile.Target. Damage is
// queued on the entity and applied by the damage system.
type playerTarget struct {
	entry *donburi.Entry
	last  dmath.Vec2
}

func (p *playerTarget) Team() projectile.Team { return projectile.TeamPlayer }

// Position is the hitbox center, or where the player was last seen once
// it has left the fight.
func (p *playerTarget) Position() dmath.Vec2 {
	if p.entry.Valid() {
		p.last = components.Object.Get(p.entry).Center()
	}
	return p.last
}

func (p *playerTarget) Alive() bool {
	return p.entry.Valid() && components.Health.Get(p.entry).Current > 0
}

func (p *playerTarget) HasTag(tag string) bool { return tag == tags.ResolvPlayer }

func (p *playerTarget) TakeDamage(amount int) {
	if !p.entry.Valid() {
		return
	}
	ev := components.DamageEvent.Get(p.entry)
	ev.Amount += amount
	ev.Hits++
}

func (p *playerTarget) velocity() dmath.Vec2 {
	return components.Player.Get(p.entry).Velocity
}

// Targets answers nearest-target queries for homing projectiles and aimed
// boss attacks.
type Targets struct {
	boss    *boss.Boss
	players []*playerTarget
}

// Nearest implements projectile.TargetFinder.
func (t *Targets) Nearest(from dmath.Vec2, radius float64, team projectile.Team, tagFilter []string) projectile.Target {
	var best projectile.Target
	bestDist := math.Inf(1)
	limit := math.Inf(1)
	if radius > 0 {
		limit = radius * radius
	}

	consider := func(c projectile.Target) {
		if !c.Alive() || !team.Opposes(c.Team()) || !matchesTags(c, tagFilter) {
			return
		}
		d := gamemath.DistanceSq(from, c.Position())
		if d <= limit && d < bestDist {
			best, bestDist = c, d
		}
	}

	if t.boss != nil {
		consider(t.boss)
	}
	for _, p := range t.players {
		consider(p)
	}
	return best
}

func matchesTags(t projectile.Target, filter []string) bool {
	if len(filter) == 0 {
		return true
	}
	for _, tag := range filter {
		if t.HasTag(tag) {
			return true
		}
	}
	return false
}

// AimTarget implements boss.TargetResolver: the nearest live player.
func (t *Targets) AimTarget(from dmath.Vec2) (dmath.Vec2, dmath.Vec2, bool) {
	var best *playerTarget
	bestDist := math.Inf(1)
	for _, p := range t.players {
		if !p.Alive() {
			continue
		}
		if d := gamemath.DistanceSq(from, p.Position()); d < bestDist {
			best, bestDist = p, d
		}
	}
	if best == nil {
		return dmath.Vec2{}, dmath.Vec2{}, false
	}
	return best.Position(), best.velocity(), true
}

// anyAlive reports whether at least one player is standing, and whether
// there are players at all.
func (t *Targets) anyAlive() (alive, exist bool) {
	for _, p := range t.players {
		if p.Alive() {
			return true, true
		}
	}
	return false, len(t.players) > 0
}
