package sequence

import (
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/automoto/beatboss/assets"
	"github.com/automoto/beatboss/pattern"
)

// Load reads a sequence config and resolves its scripts. Script paths are
// relative to the config file.
func Load(fsys fs.FS, name string) (*Config, error) {
	cfg, err := assets.LoadYAML[Config](fsys, name)
	if err != nil {
		return nil, err
	}
	if cfg.EveryNBeats < 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrNegativeEvery)
	}
	if cfg.Name == "" {
		base := path.Base(assets.Clean(name))
		cfg.Name = strings.TrimSuffix(base, path.Ext(base))
	}

	dir := path.Dir(assets.Clean(name))
	for i := range cfg.Attacks {
		desc := &cfg.Attacks[i].Pattern
		if desc.Kind != pattern.KindCustom || desc.ScriptPath == "" {
			continue
		}
		src, err := assets.Read(fsys, path.Join(dir, desc.ScriptPath))
		if err != nil {
			return nil, fmt.Errorf("sequence: %s: attack %d script: %w", name, i, err)
		}
		desc.Script, err = pattern.CompileScript(desc.ScriptPath, src)
		if err != nil {
			return nil, fmt.Errorf("sequence: %s: attack %d: %w", name, i, err)
		}
	}
	for i := range cfg.Moves {
		m := &cfg.Moves[i]
		if m.Kind != MoveCustom || m.Script == "" {
			continue
		}
		m.ScriptSource, err = assets.Read(fsys, path.Join(dir, m.Script))
		if err != nil {
			return nil, fmt.Errorf("sequence: %s: move %d script: %w", name, i, err)
		}
	}
	return &cfg, nil
}
