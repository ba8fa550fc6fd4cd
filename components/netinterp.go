package components

import "github.com/yohamta/donburi"

// NetInterpData stores interpolation state for smooth rendering of remote
// networked entities between server snapshots.
type NetInterpData struct {
	PrevX, PrevY     float64
	TargetX, TargetY float64
	T                float64 // server ticks since the target arrived
	Initialized      bool
	VelX, VelY       float64 // px/s at the snapshot, for extrapolation
}

var NetInterp = donburi.NewComponentType[NetInterpData]()
