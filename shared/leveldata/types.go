// Package leveldata parses arena TMX maps into plain data shared by the
// simulation and the spectator server. It builds no collision objects.
package leveldata

// ArenaData holds everything an arena needs from a TMX map.
type ArenaData struct {
	Walls        []Rect
	Emitters     []Marker
	PlayerSpawns []Marker
	BossSpawn    *Marker
	MapWidth     int
	MapHeight    int
}

// Rect is a solid wall rectangle in map pixels.
type Rect struct {
	X, Y, W, H float64
}

// Marker is a named point object.
type Marker struct {
	Name  string
	X, Y  float64
	Index int
}
