package session

import (
	"github.com/automoto/beatboss/boss"
	"github.com/automoto/beatboss/components"
	"github.com/automoto/beatboss/config"
	"github.com/automoto/beatboss/projectile"
	"github.com/automoto/beatboss/tags"
	"github.com/solarlune/resolv"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
	dmath "github.com/yohamta/donburi/features/math"
)

func (s *Session) updateClock(_ *ecs.ECS) {
	s.clock.Tick()
}

func (s *Session) updateBoss(e *ecs.ECS) {
	s.boss.Tick(s.dt)

	components.Object.Get(s.bossEntry).MoveCenter(s.boss.Position())

	components.Emitter.Each(e.World, func(entry *donburi.Entry) {
		em := components.Emitter.Get(entry)
		if pos, ok := s.boss.EmitterPosition(em.Name); ok {
			em.Position = pos
		}
	})
}

func (s *Session) updatePlayers(e *ecs.ECS) {
	bossAlive := s.boss.Alive()
	components.Player.Each(e.World, func(entry *donburi.Entry) {
		if components.Health.Get(entry).Current <= 0 {
			return
		}
		player := components.Player.Get(entry)
		obj := components.Object.Get(entry)

		if player.InvulnTime > 0 {
			player.InvulnTime = max(0, player.InvulnTime-s.dt)
		}

		if player.Velocity != (dmath.Vec2{}) {
			next := obj.Center().Add(player.Velocity.MulScalar(s.dt))
			if s.arena.Contains(next) {
				obj.MoveCenter(next)
			} else {
				player.Velocity = player.Velocity.MulScalar(-1)
			}
		}

		if !s.autoFire || s.shot == nil || !bossAlive || config.Player.FireInterval <= 0 {
			return
		}
		player.FireCooldown -= s.dt
		if player.FireCooldown > 0 {
			return
		}
		player.FireCooldown += config.Player.FireInterval
		from := obj.Center()
		dir := s.boss.Position().Sub(from).Normalized()
		if dir == (dmath.Vec2{}) {
			dir = dmath.Vec2{Y: -1}
		}
		s.stats.Spawned++
		s.registry.Spawn(s.shot, from, dir, projectile.TeamPlayer)
	})
}

func (s *Session) updateProjectiles(_ *ecs.ECS) {
	s.registry.Tick(s.dt)
}

// updateCollisions resolves target hits first, then walls. A projectile a
// target consumed never reaches the boundary pass.
func (s *Session) updateCollisions(_ *ecs.ECS) {
	for p := range s.registry.All() {
		obj := p.Collider()
		if obj == nil {
			continue
		}
		if !s.hitTargets(p, obj) {
			continue
		}
		s.hitWalls(p, obj)
	}
}

func (s *Session) hitTargets(p *projectile.Projectile, obj *resolv.Object) bool {
	tag := tags.ResolvPlayer
	if p.Team == projectile.TeamPlayer {
		tag = tags.ResolvBoss
	}
	check := obj.Check(0, 0, tag)
	if check == nil {
		return true
	}
	for _, other := range check.ObjectsByTags(tag) {
		t, ok := other.Data.(projectile.Target)
		if !ok || !overlaps(obj, other) {
			continue
		}
		s.stats.TargetHits++
		if !p.HitTarget(t) {
			return false
		}
	}
	return true
}

func (s *Session) hitWalls(p *projectile.Projectile, obj *resolv.Object) {
	if p.Position.X < 0 || p.Position.Y < 0 || p.Position.X > s.arena.Width || p.Position.Y > s.arena.Height {
		p.Deactivate()
		return
	}
	c, ok := s.arena.BoundaryContact(obj, p.Position, p.Direction)
	if !ok {
		p.ClearedWall()
		return
	}
	out := c.Outward()
	// A projectile that just bounced may still overlap the wall it is
	// moving away from or along.
	if p.LeavingWall() && out.Dot(&p.Direction) >= 0 {
		return
	}
	p.Position = p.Position.Add(out.MulScalar(c.Depth))
	s.stats.BoundaryHits++
	p.HitBoundary(c.Normal)
}

func overlaps(a, b *resolv.Object) bool {
	return a.X < b.X+b.W && b.X < a.X+a.W && a.Y < b.Y+b.H && b.Y < a.Y+a.H
}

func (s *Session) updateDamage(e *ecs.ECS) {
	components.DamageEvent.Each(e.World, func(entry *donburi.Entry) {
		ev := components.DamageEvent.Get(entry)
		if ev.Hits == 0 {
			return
		}
		player := components.Player.Get(entry)
		health := components.Health.Get(entry)
		if player.InvulnTime <= 0 && health.Current > 0 {
			health.Current = max(0, health.Current-ev.Amount)
			player.InvulnTime = config.Player.InvulnTime
			player.HitsTaken++
			s.stats.PlayerHits++
		}
		*ev = components.DamageEventData{}
	})
}

// updateEvents runs after collisions, so the boss health mirror carries
// this tick's hits.
func (s *Session) updateEvents(_ *ecs.ECS) {
	components.Health.Get(s.bossEntry).Current = s.boss.Health()

	s.boss.Events().Drain(func(ev boss.Event) {
		for _, l := range s.listeners {
			l(ev)
		}
	})

	if s.outcome != Running {
		return
	}
	if s.boss.State() == boss.StateDefeated {
		s.outcome = Won
		return
	}
	if alive, exist := s.targets.anyAlive(); exist && !alive {
		s.outcome = Lost
	}
}
