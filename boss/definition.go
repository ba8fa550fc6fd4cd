package boss

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/automoto/beatboss/assets"
	"github.com/automoto/beatboss/config"
	dmath "github.com/yohamta/donburi/features/math"
)

var (
	ErrBadPhases        = errors.New("boss: phase thresholds must be strictly decreasing within (0,1)")
	ErrDuplicateEmitter = errors.New("boss: duplicate emitter name")
	ErrUnknownMode      = errors.New("boss: unknown mode")
)

// Mode selects what drives the attack sequencers. The two are never active
// together.
type Mode int

const (
	ModeBeat Mode = iota
	ModeTimer
)

func (m Mode) String() string {
	if m == ModeTimer {
		return "timer"
	}
	return "beat"
}

func (m *Mode) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "", "beat":
		*m = ModeBeat
	case "timer":
		*m = ModeTimer
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMode, text)
	}
	return nil
}

// EmitterDef places a named emitter relative to the body.
type EmitterDef struct {
	Name   string     `yaml:"name"`
	Offset dmath.Vec2 `yaml:"offset"`
	Facing dmath.Vec2 `yaml:"facing"`
}

// Definition is the authored description of one boss.
type Definition struct {
	Name          string       `yaml:"name"`
	MaxHealth     int          `yaml:"max_health"`
	Phases        []float64    `yaml:"phases"`
	Mode          Mode         `yaml:"mode"`
	TimerInterval float64      `yaml:"timer_interval"`
	Emitters      []EmitterDef `yaml:"emitters"`
	Hitbox        float64      `yaml:"hitbox"`

	// Sequences are loaded by the caller; one sequencer track per entry.
	Sequences []string `yaml:"sequences"`
	// PhaseSequences replace the tracks when the boss enters the keyed phase.
	PhaseSequences map[int][]string `yaml:"phase_sequences"`
}

// Validate fills defaults and checks thresholds and emitter names.
func (d *Definition) Validate() error {
	if d.MaxHealth <= 0 {
		d.MaxHealth = config.Boss.DefaultMaxHealth
	}
	if d.TimerInterval <= 0 {
		d.TimerInterval = config.Boss.TimerInterval
	}
	if d.Hitbox <= 0 {
		d.Hitbox = config.Boss.HitboxSize
	}
	for i, th := range d.Phases {
		if th <= 0 || th >= 1 {
			return fmt.Errorf("%w: phase %d is %v", ErrBadPhases, i, th)
		}
		if i > 0 && th >= d.Phases[i-1] {
			return fmt.Errorf("%w: phase %d (%v) follows %v", ErrBadPhases, i, th, d.Phases[i-1])
		}
	}
	seen := map[string]bool{config.Boss.BodyEmitter: true}
	for _, e := range d.Emitters {
		if e.Name == "" || seen[e.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateEmitter, e.Name)
		}
		seen[e.Name] = true
	}
	return nil
}

func LoadDefinition(fsys fs.FS, name string) (*Definition, error) {
	def, err := assets.LoadYAML[Definition](fsys, name)
	if err != nil {
		return nil, err
	}
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if def.Name == "" {
		base := path.Base(assets.Clean(name))
		def.Name = strings.TrimSuffix(base, path.Ext(base))
	}
	return &def, nil
}
