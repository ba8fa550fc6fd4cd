// Package pattern turns attack pattern descriptors into emission points.
//
// Every generator is deterministic for its inputs (random start angles are
// drawn from the caller's *rand.Rand) and returns a lazy, finite sequence.
// Non-positive counts produce an empty sequence rather than an error.
package pattern

import (
	"fmt"
	"iter"
	"math/rand"
	"strings"

	"github.com/automoto/beatboss/shared/gamemath"
	dmath "github.com/yohamta/donburi/features/math"
)

// Kind selects a generator.
type Kind int

const (
	KindSingle Kind = iota
	KindCircle
	KindFan
	KindSpiral
	KindFlower
	KindAim
	KindCustom
)

var kindNames = map[Kind]string{
	KindSingle: "single",
	KindCircle: "circle",
	KindFan:    "fan",
	KindSpiral: "spiral",
	KindFlower: "flower",
	KindAim:    "aim",
	KindCustom: "custom",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a case-insensitive kind name to its Kind.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return KindSingle, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Emission is one spawn point: where a projectile starts and where it heads.
type Emission struct {
	Origin    dmath.Vec2
	Direction dmath.Vec2 // unit length
}

// Descriptor carries the kind-specific numeric parameters of a pattern.
// Angles are in degrees.
type Descriptor struct {
	Kind        Kind    `yaml:"kind"`
	Count       int     `yaml:"count"`
	Spread      float64 `yaml:"spread"`
	StartAngle  float64 `yaml:"start_angle"`
	RandomStart bool    `yaml:"random_start"`

	// Spiral
	Turns        float64 `yaml:"turns"`
	RadiusGrowth float64 `yaml:"radius_growth"`

	// Flower
	Petals      int     `yaml:"petals"`
	PerPetal    int     `yaml:"per_petal"`
	PetalSpread float64 `yaml:"petal_spread"`

	// Aim
	Predict   bool    `yaml:"predict"`
	LeadSpeed float64 `yaml:"lead_speed"` // projectile speed used for intercept lead

	// Custom
	ScriptPath string  `yaml:"script"`
	Script     *Script `yaml:"-"`
}

// Context is the world state a pattern is evaluated against.
type Context struct {
	Origin         dmath.Vec2
	Facing         dmath.Vec2 // used by Single/Fan, and by Aim when the target is on the origin
	Target         dmath.Vec2
	TargetVelocity dmath.Vec2
	Rand           *rand.Rand
}

// Generate dispatches desc to its generator.
func Generate(desc Descriptor, ctx Context) iter.Seq[Emission] {
	start := desc.StartAngle
	if desc.RandomStart && ctx.Rand != nil {
		start = ctx.Rand.Float64() * 360
	}

	switch desc.Kind {
	case KindSingle:
		return Single(ctx.Origin, ctx.Facing)
	case KindCircle:
		return Circle(ctx.Origin, desc.Count, start)
	case KindFan:
		return Fan(ctx.Origin, ctx.Facing, desc.Count, desc.Spread)
	case KindSpiral:
		return Spiral(ctx.Origin, desc.Count, desc.Turns, start, desc.RadiusGrowth)
	case KindFlower:
		return Flower(ctx.Origin, desc.Petals, desc.PerPetal, desc.PetalSpread, start)
	case KindAim:
		return Aim(ctx.Origin, ctx.Facing, ctx.Target, ctx.TargetVelocity, desc.Count, desc.Spread, desc.Predict, desc.LeadSpeed)
	case KindCustom:
		if desc.Script == nil {
			return empty
		}
		return desc.Script.Emit(ctx, desc)
	}
	return empty
}

// Collect drains a sequence into dst, reusing its storage.
func Collect(dst []Emission, seq iter.Seq[Emission]) []Emission {
	dst = dst[:0]
	for e := range seq {
		dst = append(dst, e)
	}
	return dst
}

func empty(func(Emission) bool) {}

func at(origin dmath.Vec2, deg float64) Emission {
	return Emission{Origin: origin, Direction: gamemath.FromAngle(gamemath.DegToRad(deg))}
}
