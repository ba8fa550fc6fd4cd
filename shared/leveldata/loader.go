package leveldata

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/automoto/beatboss/config"
	"github.com/lafriks/go-tiled"
)

// LoadArena parses a TMX file. Walls come from the wall tile layer and the
// wall object group; both may be present. It takes an fs.FS so callers can
// pass the embedded assets or os.DirFS.
func LoadArena(fsys fs.FS, tmxPath string) (*ArenaData, error) {
	arenaMap, err := tiled.LoadFile(tmxPath, tiled.WithFileSystem(fsys))
	if err != nil {
		return nil, fmt.Errorf("load TMX %s: %w", tmxPath, err)
	}

	data := &ArenaData{
		MapWidth:  arenaMap.Width * arenaMap.TileWidth,
		MapHeight: arenaMap.Height * arenaMap.TileHeight,
	}

	tileW := float64(arenaMap.TileWidth)
	tileH := float64(arenaMap.TileHeight)
	for _, layer := range arenaMap.Layers {
		if layer.Name != config.Arena.WallLayer {
			continue
		}
		for y := 0; y < arenaMap.Height; y++ {
			for x := 0; x < arenaMap.Width; x++ {
				tile := layer.Tiles[y*arenaMap.Width+x]
				if tile.IsNil() {
					continue
				}
				data.Walls = append(data.Walls, Rect{
					X: float64(x) * tileW,
					Y: float64(y) * tileH,
					W: tileW,
					H: tileH,
				})
			}
		}
		break
	}

	for _, og := range arenaMap.ObjectGroups {
		switch og.Name {
		case config.Arena.WallGroup:
			for _, o := range og.Objects {
				if o.Width <= 0 || o.Height <= 0 {
					continue
				}
				data.Walls = append(data.Walls, Rect{X: o.X, Y: o.Y, W: o.Width, H: o.Height})
			}
		case config.Arena.EmitterGroup:
			for _, o := range og.Objects {
				name := o.Name
				if name == "" {
					name = o.Properties.GetString("emitter")
				}
				data.Emitters = append(data.Emitters, Marker{Name: name, X: o.X, Y: o.Y})
			}
		case config.Arena.PlayerGroup:
			for _, o := range og.Objects {
				data.PlayerSpawns = append(data.PlayerSpawns, Marker{
					Name:  o.Name,
					X:     o.X,
					Y:     o.Y,
					Index: o.Properties.GetInt("spawnIndex"),
				})
			}
		case config.Arena.BossGroup:
			if len(og.Objects) > 0 {
				o := og.Objects[0]
				data.BossSpawn = &Marker{Name: o.Name, X: o.X, Y: o.Y}
			}
		}
	}

	// Sort spawns by index, then left-to-right, for consistent assignment
	sort.SliceStable(data.PlayerSpawns, func(i, j int) bool {
		a, b := data.PlayerSpawns[i], data.PlayerSpawns[j]
		if a.Index != b.Index {
			return a.Index < b.Index
		}
		return a.X < b.X
	})

	return data, nil
}

// LoadAllArenas discovers all .tmx files in dir within fsys and returns them
// keyed by stem name plus a sorted list of names.
func LoadAllArenas(fsys fs.FS, dir string) (map[string]*ArenaData, []string, error) {
	pattern := dir + "/*.tmx"
	matches, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, nil, fmt.Errorf("no .tmx files found in %s", dir)
	}

	arenas := make(map[string]*ArenaData, len(matches))
	names := make([]string, 0, len(matches))
	for _, path := range matches {
		data, err := LoadArena(fsys, path)
		if err != nil {
			return nil, nil, fmt.Errorf("load %s: %w", path, err)
		}
		stem := strings.TrimSuffix(filepath.Base(path), ".tmx")
		arenas[stem] = data
		names = append(names, stem)
	}

	sort.Strings(names)
	return arenas, names, nil
}
