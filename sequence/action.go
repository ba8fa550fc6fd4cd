package sequence

import (
	"errors"
	"fmt"
	"strings"

	"github.com/automoto/beatboss/pattern"
	dmath "github.com/yohamta/donburi/features/math"
)

var (
	ErrUnknownMoveKind = errors.New("sequence: unknown move kind")
	ErrNegativeEvery   = errors.New("sequence: every_n_beats must not be negative")
)

// AllEmitters selects every emitter of the boss.
const AllEmitters = "*"

// AttackAction spawns one pattern of projectiles.
type AttackAction struct {
	Name     string             `yaml:"name"`
	Emitters []string           `yaml:"emitters"` // empty or "*" means all
	Pattern  pattern.Descriptor `yaml:"pattern"`
	Template string             `yaml:"template"`

	// Direction overrides the emitter's facing for Single and Fan.
	Direction dmath.Vec2 `yaml:"direction"`
	// Aim centers Single and Fan on the current target instead.
	Aim bool `yaml:"aim"`

	Delay          float64 `yaml:"delay"`  // seconds after the beat
	Repeat         int     `yaml:"repeat"` // extra volleys after the first
	RepeatInterval float64 `yaml:"repeat_interval"`
}

// SelectsAll reports whether the action fires from every emitter.
func (a AttackAction) SelectsAll() bool {
	if len(a.Emitters) == 0 {
		return true
	}
	for _, e := range a.Emitters {
		if e == AllEmitters {
			return true
		}
	}
	return false
}

type MoveKind int

const (
	MoveNone MoveKind = iota
	MoveToPosition
	MoveByDirection
	MoveCircle
	MoveTwoPointLoop
	MoveCustom
)

var moveKindNames = map[MoveKind]string{
	MoveNone:         "none",
	MoveToPosition:   "to_position",
	MoveByDirection:  "by_direction",
	MoveCircle:       "circle",
	MoveTwoPointLoop: "two_point_loop",
	MoveCustom:       "custom",
}

func (k MoveKind) String() string {
	if name, ok := moveKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("MoveKind(%d)", int(k))
}

func ParseMoveKind(s string) (MoveKind, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, "-", "_")
	for k, name := range moveKindNames {
		if name == norm || strings.ReplaceAll(name, "_", "") == norm {
			return k, nil
		}
	}
	return MoveNone, fmt.Errorf("%w: %q", ErrUnknownMoveKind, s)
}

func (k *MoveKind) UnmarshalText(text []byte) error {
	parsed, err := ParseMoveKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

func (k MoveKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// MoveAction moves an emitter or the boss body over Duration seconds.
//
//	ToPosition     straight to Position
//	ByDirection    Distance along Direction
//	Circle         Degrees around Center at Radius (0 keeps the current radius)
//	TwoPointLoop   start -> Position -> start, Loops times, Duration per leg
//	Custom         tengo Script mapping t in [0,1] to an offset from the start
type MoveAction struct {
	Kind   MoveKind `yaml:"kind"`
	Target string   `yaml:"target"` // emitter name; empty moves the body

	Position  dmath.Vec2 `yaml:"position"`
	Direction dmath.Vec2 `yaml:"direction"`
	Distance  float64    `yaml:"distance"`
	Center    dmath.Vec2 `yaml:"center"`
	Radius    float64    `yaml:"radius"`
	Degrees   float64    `yaml:"degrees"`

	Delay    float64 `yaml:"delay"`
	Duration float64 `yaml:"duration"`
	Loops    int     `yaml:"loops"`
	Ease     string  `yaml:"ease"`

	Script       string `yaml:"script"`
	ScriptSource []byte `yaml:"-"`
}
