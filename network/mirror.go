package network

import (
	"github.com/automoto/beatboss/components"
	"github.com/automoto/beatboss/shared/netcomponents"
	"github.com/leap-fish/necs/esync"
	"github.com/yohamta/donburi"
)

// Mirror rebuilds the served fight in a local world from snapshots.
// Positions glide from the previous snapshot to the newest one over one
// server tick; everything else snaps.
type Mirror struct {
	world    donburi.World
	tickRate int
	present  map[esync.NetworkId]bool
}

func NewMirror(world donburi.World, tickRate int) *Mirror {
	if tickRate <= 0 {
		tickRate = 20
	}
	return &Mirror{
		world:    world,
		tickRate: tickRate,
		present:  make(map[esync.NetworkId]bool),
	}
}

func (m *Mirror) World() donburi.World { return m.world }

// Apply replaces the mirrored state with snapshot. Entities the snapshot
// no longer carries are removed.
func (m *Mirror) Apply(snapshot esync.WorldSnapshot) {
	clear(m.present)

	for _, ent := range snapshot {
		var compData []any
		for _, componentBytes := range ent.State {
			instance, err := esync.Mapper.Deserialize(componentBytes)
			if err != nil {
				continue
			}
			compData = append(compData, instance)
		}
		m.apply(ent.Id, compData)
	}

	m.prune()
}

func (m *Mirror) apply(id esync.NetworkId, compData []any) {
	m.present[id] = true

	entity := esync.FindByNetworkId(m.world, id)
	fresh := !m.world.Valid(entity)
	if fresh {
		entity = m.world.Create(componentTypesFromInstances(compData)...)
		entry := m.world.Entry(entity)
		entry.AddComponent(esync.NetworkIdComponent)
		esync.NetworkIdComponent.SetValue(entry, id)
		entry.AddComponent(components.NetInterp)
	}

	entry := m.world.Entry(entity)
	for _, data := range compData {
		applyComponentToEntry(entry, data)
	}
}

// prune removes entities missing from the last snapshot.
func (m *Mirror) prune() {
	var stale []*donburi.Entry
	esync.NetworkEntityQuery.Each(m.world, func(entry *donburi.Entry) {
		id := esync.GetNetworkId(entry)
		if id == nil || !m.present[*id] {
			stale = append(stale, entry)
		}
	})
	for _, entry := range stale {
		entry.Remove()
	}
}

// Advance moves interpolated positions dt seconds forward. Projectiles keep
// flying on their last velocity once the newest snapshot is reached.
func (m *Mirror) Advance(dt float64) {
	step := dt * float64(m.tickRate)
	components.NetInterp.Each(m.world, func(entry *donburi.Entry) {
		interp := components.NetInterp.Get(entry)
		if !interp.Initialized {
			return
		}
		interp.T += step

		t := min(interp.T, 1)
		x := interp.PrevX + (interp.TargetX-interp.PrevX)*t
		y := interp.PrevY + (interp.TargetY-interp.PrevY)*t
		if over := interp.T - 1; over > 0 {
			x += interp.VelX * over / float64(m.tickRate)
			y += interp.VelY * over / float64(m.tickRate)
		}
		setPosition(entry, x, y)
	})
}

// retarget starts a glide from the displayed position to x, y. The first
// snapshot of an entity places it directly.
func retarget(entry *donburi.Entry, curX, curY, x, y, velX, velY float64) (float64, float64) {
	if !entry.HasComponent(components.NetInterp) {
		return x, y
	}
	interp := components.NetInterp.Get(entry)
	interp.VelX, interp.VelY = velX, velY
	if !interp.Initialized {
		*interp = components.NetInterpData{
			PrevX: x, PrevY: y,
			TargetX: x, TargetY: y,
			T:           1,
			Initialized: true,
			VelX:        velX, VelY: velY,
		}
		return x, y
	}
	interp.PrevX, interp.PrevY = curX, curY
	interp.TargetX, interp.TargetY = x, y
	interp.T = 0
	return curX, curY
}

func setPosition(entry *donburi.Entry, x, y float64) {
	switch {
	case entry.HasComponent(netcomponents.NetBoss):
		d := netcomponents.NetBoss.Get(entry)
		d.X, d.Y = x, y
	case entry.HasComponent(netcomponents.NetPlayer):
		d := netcomponents.NetPlayer.Get(entry)
		d.X, d.Y = x, y
	case entry.HasComponent(netcomponents.NetProjectile):
		d := netcomponents.NetProjectile.Get(entry)
		d.X, d.Y = x, y
	}
}

func componentTypesFromInstances(components []any) []donburi.IComponentType {
	var ctypes []donburi.IComponentType
	for _, data := range components {
		switch data.(type) {
		case netcomponents.NetBossData:
			ctypes = append(ctypes, netcomponents.NetBoss)
		case netcomponents.NetPlayerData:
			ctypes = append(ctypes, netcomponents.NetPlayer)
		case netcomponents.NetProjectileData:
			ctypes = append(ctypes, netcomponents.NetProjectile)
		case netcomponents.NetGameStateData:
			ctypes = append(ctypes, netcomponents.NetGameState)
		}
	}
	return ctypes
}

func applyComponentToEntry(entry *donburi.Entry, data any) {
	switch v := data.(type) {
	case netcomponents.NetBossData:
		if !entry.HasComponent(netcomponents.NetBoss) {
			entry.AddComponent(netcomponents.NetBoss)
		}
		cur := netcomponents.NetBoss.Get(entry)
		v.X, v.Y = retarget(entry, cur.X, cur.Y, v.X, v.Y, 0, 0)
		netcomponents.NetBoss.SetValue(entry, v)
	case netcomponents.NetPlayerData:
		if !entry.HasComponent(netcomponents.NetPlayer) {
			entry.AddComponent(netcomponents.NetPlayer)
		}
		cur := netcomponents.NetPlayer.Get(entry)
		v.X, v.Y = retarget(entry, cur.X, cur.Y, v.X, v.Y, 0, 0)
		netcomponents.NetPlayer.SetValue(entry, v)
	case netcomponents.NetProjectileData:
		if !entry.HasComponent(netcomponents.NetProjectile) {
			entry.AddComponent(netcomponents.NetProjectile)
		}
		cur := netcomponents.NetProjectile.Get(entry)
		v.X, v.Y = retarget(entry, cur.X, cur.Y, v.X, v.Y, v.VelX, v.VelY)
		netcomponents.NetProjectile.SetValue(entry, v)
	case netcomponents.NetGameStateData:
		if !entry.HasComponent(netcomponents.NetGameState) {
			entry.AddComponent(netcomponents.NetGameState)
		}
		netcomponents.NetGameState.SetValue(entry, v)
	}
}

// Boss returns the mirrored boss.
func (m *Mirror) Boss() (netcomponents.NetBossData, bool) {
	entry, ok := netcomponents.NetBoss.First(m.world)
	if !ok {
		return netcomponents.NetBossData{}, false
	}
	return *netcomponents.NetBoss.Get(entry), true
}

// State returns the mirrored fight state.
func (m *Mirror) State() (netcomponents.NetGameStateData, bool) {
	entry, ok := netcomponents.NetGameState.First(m.world)
	if !ok {
		return netcomponents.NetGameStateData{}, false
	}
	return *netcomponents.NetGameState.Get(entry), true
}

func (m *Mirror) Players() []netcomponents.NetPlayerData {
	var out []netcomponents.NetPlayerData
	netcomponents.NetPlayer.Each(m.world, func(entry *donburi.Entry) {
		out = append(out, *netcomponents.NetPlayer.Get(entry))
	})
	return out
}

func (m *Mirror) Projectiles() int {
	n := 0
	netcomponents.NetProjectile.Each(m.world, func(*donburi.Entry) { n++ })
	return n
}
