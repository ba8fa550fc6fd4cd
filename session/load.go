package session

import (
	"fmt"
	"io/fs"

	"github.com/automoto/beatboss/arena"
	"github.com/automoto/beatboss/beat"
	"github.com/automoto/beatboss/boss"
	"github.com/automoto/beatboss/projectile"
	"github.com/automoto/beatboss/sequence"
)

// Manifest names the content files of a fight, relative to the asset root.
type Manifest struct {
	Arena     string // TMX map; empty fights in a plain rectangle
	Boss      string
	Sequences []string // overrides the boss definition's list when set
	Templates string
	Schedule  string
}

// LoadOptions reads every file the manifest names. Sequences listed by the
// boss definition per phase are loaded too.
func LoadOptions(fsys fs.FS, m Manifest) (Options, error) {
	var opts Options

	if m.Arena != "" {
		a, err := arena.Load(fsys, m.Arena)
		if err != nil {
			return opts, err
		}
		opts.Arena = a
	}

	def, err := boss.LoadDefinition(fsys, m.Boss)
	if err != nil {
		return opts, fmt.Errorf("session: %w", err)
	}
	opts.Boss = def

	names := m.Sequences
	if len(names) == 0 {
		names = def.Sequences
	}
	if opts.Sequences, err = loadSequences(fsys, names); err != nil {
		return opts, err
	}
	for phase, list := range def.PhaseSequences {
		cfgs, err := loadSequences(fsys, list)
		if err != nil {
			return opts, err
		}
		if opts.PhaseSequences == nil {
			opts.PhaseSequences = make(map[int][]*sequence.Config)
		}
		opts.PhaseSequences[phase] = cfgs
	}

	if m.Templates != "" {
		if opts.Templates, err = projectile.LoadTemplates(fsys, m.Templates); err != nil {
			return opts, fmt.Errorf("session: %w", err)
		}
	}
	if m.Schedule != "" {
		if opts.Schedule, err = beat.LoadSchedule(fsys, m.Schedule); err != nil {
			return opts, fmt.Errorf("session: %w", err)
		}
	}
	return opts, nil
}

func loadSequences(fsys fs.FS, names []string) ([]*sequence.Config, error) {
	cfgs := make([]*sequence.Config, 0, len(names))
	for _, name := range names {
		cfg, err := sequence.Load(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("session: %w", err)
		}
		cfgs = append(cfgs, cfg)
	}
	return cfgs, nil
}
