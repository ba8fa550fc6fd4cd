package netcomponents

import "github.com/yohamta/donburi"

// NetGameStateData is the fight-wide state spectators render a HUD from.
type NetGameStateData struct {
	Beat      int
	Elapsed   float64 // seconds since the fight started
	Outcome   int     // session.Outcome
	Paused    bool
	LastEvent string // most recent boss event, e.g. "phase_changed"
	Spawned   int
}

var NetGameState = donburi.NewComponentType[NetGameStateData]()
