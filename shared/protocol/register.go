package protocol

import (
	"github.com/automoto/beatboss/shared/netcomponents"
	"github.com/leap-fish/necs/esync"
)

// Sync ID constants - ID 1 is reserved by necs for NetworkId
const (
	SyncIDNetBoss       uint = 10
	SyncIDNetProjectile uint = 11
	SyncIDNetPlayer     uint = 12
	SyncIDNetGameState  uint = 13
)

// Interpolation IDs (uint8 for WithInterpFn)
const (
	InterpIDNetBoss       uint8 = 10
	InterpIDNetProjectile uint8 = 11
	InterpIDNetPlayer     uint8 = 12
)

// RegisterComponents registers all network components with necs for serialization.
// This must be called by both server and client before any network operations.
func RegisterComponents() error {
	if err := esync.RegisterComponent(
		SyncIDNetBoss,
		netcomponents.NetBossData{},
		netcomponents.NetBoss,
		esync.WithInterpFn(InterpIDNetBoss, netcomponents.LerpNetBoss),
	); err != nil {
		return err
	}

	if err := esync.RegisterComponent(
		SyncIDNetProjectile,
		netcomponents.NetProjectileData{},
		netcomponents.NetProjectile,
		esync.WithInterpFn(InterpIDNetProjectile, netcomponents.LerpNetProjectile),
	); err != nil {
		return err
	}

	if err := esync.RegisterComponent(
		SyncIDNetPlayer,
		netcomponents.NetPlayerData{},
		netcomponents.NetPlayer,
		esync.WithInterpFn(InterpIDNetPlayer, netcomponents.LerpNetPlayer),
	); err != nil {
		return err
	}

	// GameState: no interpolation (discrete state)
	if err := esync.RegisterComponent(
		SyncIDNetGameState,
		netcomponents.NetGameStateData{},
		netcomponents.NetGameState,
	); err != nil {
		return err
	}

	return nil
}
