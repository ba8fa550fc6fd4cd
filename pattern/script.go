package pattern

import (
	"fmt"
	"iter"
	"log"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	dmath "github.com/yohamta/donburi/features/math"
)

// Script is a compiled Custom pattern. The script reads
//
//	count, spread, start_angle, origin_x, origin_y, facing_x, facing_y, target_x, target_y
//
// and must assign `emissions`, an array of maps with x, y (offset from the
// origin) and dx, dy (direction, normalized on read).
type Script struct {
	Name     string
	compiled *tengo.Compiled
}

var scriptInputs = []string{
	"count", "spread", "start_angle",
	"origin_x", "origin_y", "facing_x", "facing_y", "target_x", "target_y",
}

// CompileScript compiles src once; Emit re-runs the compiled program.
func CompileScript(name string, src []byte) (*Script, error) {
	script := tengo.NewScript(src)
	for _, in := range scriptInputs {
		_ = script.Add(in, 0.0)
	}
	_ = script.Add("emissions", []interface{}{})
	script.SetImports(stdlib.GetModuleMap("math", "rand"))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrScriptCompile, name, err)
	}
	return &Script{Name: name, compiled: compiled}, nil
}

// Run executes the script and returns its emissions. Emit wraps it lazily.
func (s *Script) Run(ctx Context, desc Descriptor) ([]Emission, error) {
	c := s.compiled
	inputs := map[string]interface{}{
		"count":       desc.Count,
		"spread":      desc.Spread,
		"start_angle": desc.StartAngle,
		"origin_x":    ctx.Origin.X,
		"origin_y":    ctx.Origin.Y,
		"facing_x":    ctx.Facing.X,
		"facing_y":    ctx.Facing.Y,
		"target_x":    ctx.Target.X,
		"target_y":    ctx.Target.Y,
	}
	for name, v := range inputs {
		if err := c.Set(name, v); err != nil {
			return nil, fmt.Errorf("set %s: %w", name, err)
		}
	}
	if err := c.Run(); err != nil {
		return nil, fmt.Errorf("run %s: %w", s.Name, err)
	}
	if !c.IsDefined("emissions") {
		return nil, ErrScriptOutput
	}

	raw := c.Get("emissions").Array()
	out := make([]Emission, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		dir := dmath.NewVec2(toFloat(m["dx"]), toFloat(m["dy"])).Normalized()
		if dir == (dmath.Vec2{}) {
			continue
		}
		out = append(out, Emission{
			Origin:    ctx.Origin.Add(dmath.Vec2{X: toFloat(m["x"]), Y: toFloat(m["y"])}),
			Direction: dir,
		})
	}
	return out, nil
}

// Emit runs the script when the sequence is first iterated. Script failures
// are logged and yield nothing.
func (s *Script) Emit(ctx Context, desc Descriptor) iter.Seq[Emission] {
	return func(yield func(Emission) bool) {
		emissions, err := s.Run(ctx, desc)
		if err != nil {
			log.Printf("Warning: custom pattern %s: %v", s.Name, err)
			return
		}
		for _, e := range emissions {
			if !yield(e) {
				return
			}
		}
	}
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	}
	return 0
}
