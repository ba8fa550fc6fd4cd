// Package arena builds the collision world a fight takes place in: wall
// objects in a resolv space for overlap checks, mirrored as static chipmunk
// shapes for nearest-point queries.
package arena

import (
	"fmt"
	"io/fs"
	"log"
	"path"
	"strings"

	"github.com/automoto/beatboss/config"
	"github.com/automoto/beatboss/shared/leveldata"
	"github.com/automoto/beatboss/tags"
	"github.com/jakecoffman/cp"
	"github.com/solarlune/resolv"
	dmath "github.com/yohamta/donburi/features/math"
)

type Arena struct {
	Name   string
	Width  float64
	Height float64

	space  *resolv.Space
	shapes *cp.Space
	walls  []leveldata.Rect

	emitters  map[string]dmath.Vec2
	spawns    []dmath.Vec2
	bossSpawn dmath.Vec2
}

// Load reads an arena from a TMX map.
func Load(fsys fs.FS, tmxPath string) (*Arena, error) {
	data, err := leveldata.LoadArena(fsys, tmxPath)
	if err != nil {
		return nil, fmt.Errorf("arena: %w", err)
	}
	if data.MapWidth <= 0 || data.MapHeight <= 0 {
		return nil, fmt.Errorf("arena: %s has no size", tmxPath)
	}
	name := strings.TrimSuffix(path.Base(tmxPath), ".tmx")
	return build(name, data), nil
}

// NewRect builds an empty walled rectangle.
func NewRect(width, height int) *Arena {
	return build("rect", &leveldata.ArenaData{MapWidth: width, MapHeight: height})
}

func build(name string, data *leveldata.ArenaData) *Arena {
	a := &Arena{
		Name:     name,
		Width:    float64(data.MapWidth),
		Height:   float64(data.MapHeight),
		space:    resolv.NewSpace(data.MapWidth, data.MapHeight, config.Arena.CellSize, config.Arena.CellSize),
		shapes:   cp.NewSpace(),
		emitters: make(map[string]dmath.Vec2),
	}

	for _, r := range boundsWalls(a.Width, a.Height, config.Arena.WallThickness) {
		a.addWall(r)
	}
	for _, r := range data.Walls {
		a.addWall(r)
	}

	for _, m := range data.Emitters {
		if m.Name == "" {
			log.Printf("Warning: arena %s: unnamed emitter at (%.0f, %.0f) ignored", name, m.X, m.Y)
			continue
		}
		a.emitters[m.Name] = dmath.Vec2{X: m.X, Y: m.Y}
	}
	for _, m := range data.PlayerSpawns {
		a.spawns = append(a.spawns, dmath.Vec2{X: m.X, Y: m.Y})
	}
	if data.BossSpawn != nil {
		a.bossSpawn = dmath.Vec2{X: data.BossSpawn.X, Y: data.BossSpawn.Y}
	} else {
		a.bossSpawn = dmath.Vec2{X: a.Width / 2, Y: a.Height / 4}
	}

	log.Printf("Loaded arena %s: %d walls, %d emitters, %d spawn points, %.0fx%.0f",
		name, len(a.walls), len(a.emitters), len(a.spawns), a.Width, a.Height)
	return a
}

// boundsWalls frames the map. The walls sit inside the map edge so the
// resolv space covers them.
func boundsWalls(w, h, t float64) []leveldata.Rect {
	return []leveldata.Rect{
		{X: 0, Y: 0, W: w, H: t},
		{X: 0, Y: h - t, W: w, H: t},
		{X: 0, Y: t, W: t, H: h - 2*t},
		{X: w - t, Y: t, W: t, H: h - 2*t},
	}
}

func (a *Arena) addWall(r leveldata.Rect) {
	if r.W <= 0 || r.H <= 0 {
		return
	}
	obj := resolv.NewObject(r.X, r.Y, r.W, r.H, tags.ResolvSolid)
	obj.SetShape(resolv.NewRectangle(0, 0, r.W, r.H))
	a.space.Add(obj)

	bb := cp.BB{L: r.X, B: r.Y, R: r.X + r.W, T: r.Y + r.H}
	a.shapes.AddShape(cp.NewBox2(a.shapes.StaticBody, bb, 0))
	a.walls = append(a.walls, r)
}

func (a *Arena) Space() *resolv.Space { return a.space }

// Walls lists every wall rectangle, outer frame first.
func (a *Arena) Walls() []leveldata.Rect { return a.walls }

// Emitter returns the map position authored for a named emitter.
func (a *Arena) Emitter(name string) (dmath.Vec2, bool) {
	pos, ok := a.emitters[name]
	return pos, ok
}

// PlayerSpawn returns spawn i, wrapping around the authored points. Maps
// without spawns use the bottom center.
func (a *Arena) PlayerSpawn(i int) dmath.Vec2 {
	if len(a.spawns) == 0 {
		return dmath.Vec2{X: a.Width / 2, Y: a.Height * 3 / 4}
	}
	return a.spawns[i%len(a.spawns)]
}

func (a *Arena) BossSpawn() dmath.Vec2 { return a.bossSpawn }

// Contains reports whether pos lies inside the map and outside every wall.
func (a *Arena) Contains(pos dmath.Vec2) bool {
	if pos.X < 0 || pos.Y < 0 || pos.X > a.Width || pos.Y > a.Height {
		return false
	}
	info := a.shapes.PointQueryNearest(cp.Vector{X: pos.X, Y: pos.Y}, 0, cp.SHAPE_FILTER_ALL)
	return info.Shape == nil || info.Distance > 0
}
