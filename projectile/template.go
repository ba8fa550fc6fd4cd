package projectile

import (
	"fmt"
	"io/fs"
	"strings"

	"github.com/automoto/beatboss/assets"
	"github.com/automoto/beatboss/config"
)

// Team decides who a projectile may damage.
type Team int

const (
	TeamEnemy Team = iota
	TeamPlayer
)

func (t Team) String() string {
	if t == TeamPlayer {
		return "player"
	}
	return "enemy"
}

// Opposes reports whether a t projectile may damage a target of team o.
func (t Team) Opposes(o Team) bool {
	return t != o
}

func (t *Team) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "player":
		*t = TeamPlayer
	case "enemy", "boss", "":
		*t = TeamEnemy
	default:
		return fmt.Errorf("projectile: unknown team %q", text)
	}
	return nil
}

type HomingParams struct {
	Enabled    bool    `yaml:"enabled"`
	AutoTarget bool    `yaml:"auto_target"`
	TurnSpeed  float64 `yaml:"turn_speed"` // degrees per second
	// SearchRadius limits auto-target acquisition; 0 searches everywhere.
	SearchRadius     float64  `yaml:"search_radius"`
	RetargetInterval float64  `yaml:"retarget_interval"` // seconds
	TargetTags       []string `yaml:"target_tags"`
}

type BounceParams struct {
	Enabled bool `yaml:"enabled"`
	// Decay multiplies speed on every bounce; 0 keeps speed unchanged.
	Decay float64 `yaml:"decay"`
	// MaxBounces 0 bounces forever.
	MaxBounces int `yaml:"max_bounces"`
}

// BehaviorFactory builds one custom behavior per pooled instance.
type BehaviorFactory func() Behavior

// Template is the shared, read-only description of a class of projectile.
// Its pointer identity keys its pool.
type Template struct {
	Name      string  `yaml:"name"`
	Speed     float64 `yaml:"speed"`
	Damage    int     `yaml:"damage"`
	Lifetime  float64 `yaml:"lifetime"`
	Radius    float64 `yaml:"radius"`
	Piercing  bool    `yaml:"piercing"`
	MaxPierce int     `yaml:"max_pierce"` // 0 with Piercing set pierces without limit

	Homing HomingParams `yaml:"homing"`
	Bounce BounceParams `yaml:"bounce"`

	Capacity int `yaml:"capacity"`
	Preload  int `yaml:"preload"`

	Behaviors []BehaviorFactory `yaml:"-"`
}

// DefaultTemplate is the template of the fallback pool.
func DefaultTemplate() *Template {
	t := &Template{Name: "default"}
	t.applyDefaults()
	return t
}

func (t *Template) applyDefaults() {
	if t.Speed == 0 {
		t.Speed = config.Projectile.DefaultSpeed
	}
	if t.Damage == 0 {
		t.Damage = config.Projectile.DefaultDamage
	}
	if t.Lifetime == 0 {
		t.Lifetime = config.Projectile.DefaultLifetime
	}
	if t.Radius == 0 {
		t.Radius = config.Projectile.DefaultRadius
	}
	if t.Capacity <= 0 {
		t.Capacity = config.Pool.DefaultCapacity
	}
	if t.Preload == 0 {
		t.Preload = config.Pool.DefaultPreload
	}
	if t.Homing.RetargetInterval < config.Projectile.RetargetFloor {
		t.Homing.RetargetInterval = config.Projectile.RetargetFloor
	}
}

type templateFile struct {
	Templates []*Template `yaml:"templates"`
}

// LoadTemplates reads a YAML list of templates, filling unset fields from
// config defaults.
func LoadTemplates(fsys fs.FS, path string) ([]*Template, error) {
	file, err := assets.LoadYAML[templateFile](fsys, path)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(file.Templates))
	for i, t := range file.Templates {
		if t.Name == "" {
			return nil, fmt.Errorf("projectile: %s: template %d has no name", path, i)
		}
		if seen[t.Name] {
			return nil, fmt.Errorf("projectile: %s: duplicate template %q", path, t.Name)
		}
		seen[t.Name] = true
		t.applyDefaults()
	}
	return file.Templates, nil
}
