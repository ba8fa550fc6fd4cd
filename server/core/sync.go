package core

import (
	"log"

	"github.com/automoto/beatboss/boss"
	"github.com/automoto/beatboss/components"
	"github.com/automoto/beatboss/shared/netcomponents"
	"github.com/leap-fish/necs/esync/srvsync"
)

func (s *Server) spawnMirrors() {
	s.bossNet = s.world.Create(netcomponents.NetBoss)
	s.stateNet = s.world.Create(netcomponents.NetGameState)
}

func (s *Server) checkSync(err error) {
	if err != nil {
		log.Printf("Failed to setup network sync: %v", err)
	}
}

func (s *Server) onBossEvent(ev boss.Event) {
	s.lastEvent = ev.Kind.String()
}

// syncNet copies the fight into the net components esync ships to clients.
func (s *Server) syncNet() {
	s.syncBoss()
	s.syncPlayers()
	s.syncProjectiles()
	s.syncState()
}

func (s *Server) syncBoss() {
	if !s.world.Valid(s.bossNet) {
		return
	}
	b := s.sess.Boss()
	pos := b.Position()
	netcomponents.NetBoss.Set(s.world.Entry(s.bossNet), &netcomponents.NetBossData{
		X:         pos.X,
		Y:         pos.Y,
		Health:    b.Health(),
		MaxHealth: b.MaxHealth(),
		Phase:     b.Phase(),
		State:     int(b.State()),
	})
}

func (s *Server) syncPlayers() {
	for _, c := range s.clients {
		if c.player == nil || !c.player.Valid() {
			continue
		}
		ent, ok := s.playerNet[c.player]
		if !ok {
			ent = s.world.Create(netcomponents.NetPlayer)
			if s.live {
				s.checkSync(srvsync.NetworkSync(s.world, &ent, srvsync.WithInterp(netcomponents.NetPlayer)))
			}
			s.playerNet[c.player] = ent
		}
		pos := components.Object.Get(c.player).Center()
		player := components.Player.Get(c.player)
		netcomponents.NetPlayer.Set(s.world.Entry(ent), &netcomponents.NetPlayerData{
			X:      pos.X,
			Y:      pos.Y,
			Health: components.Health.Get(c.player).Current,
			Invuln: player.InvulnTime > 0,
			Slot:   player.Index,
		})
	}
}

// syncProjectiles keeps one mirror entity per active projectile and drops
// mirrors whose projectile went back to its pool.
func (s *Server) syncProjectiles() {
	clear(s.projSeen)
	for p := range s.sess.Registry().All() {
		s.projSeen[p] = true
		ent, ok := s.projNet[p]
		if !ok {
			ent = s.world.Create(netcomponents.NetProjectile)
			if s.live {
				s.checkSync(srvsync.NetworkSync(s.world, &ent, srvsync.WithInterp(netcomponents.NetProjectile)))
			}
			s.projNet[p] = ent
		}
		vel := p.Velocity()
		netcomponents.NetProjectile.Set(s.world.Entry(ent), &netcomponents.NetProjectileData{
			X:        p.Position.X,
			Y:        p.Position.Y,
			VelX:     vel.X,
			VelY:     vel.Y,
			Radius:   p.Template().Radius,
			Team:     int(p.Team),
			Template: p.Template().Name,
		})
	}
	for p, ent := range s.projNet {
		if s.projSeen[p] {
			continue
		}
		if s.world.Valid(ent) {
			s.world.Remove(ent)
		}
		delete(s.projNet, p)
	}
}

func (s *Server) syncState() {
	if !s.world.Valid(s.stateNet) {
		return
	}
	netcomponents.NetGameState.Set(s.world.Entry(s.stateNet), &netcomponents.NetGameStateData{
		Beat:      s.sess.Clock().LastBeat(),
		Elapsed:   s.loop.Elapsed(),
		Outcome:   int(s.sess.Outcome()),
		Paused:    s.sess.Paused(),
		LastEvent: s.lastEvent,
		Spawned:   s.sess.Stats().Spawned,
	})
}
