package boss

import (
	"fmt"
	"log"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/tanema/gween/ease"
	dmath "github.com/yohamta/donburi/features/math"
)

var easings = map[string]ease.TweenFunc{
	"linear":       ease.Linear,
	"inquad":       ease.InQuad,
	"outquad":      ease.OutQuad,
	"inoutquad":    ease.InOutQuad,
	"incubic":      ease.InCubic,
	"outcubic":     ease.OutCubic,
	"inoutcubic":   ease.InOutCubic,
	"inquart":      ease.InQuart,
	"outquart":     ease.OutQuart,
	"inoutquart":   ease.InOutQuart,
	"insine":       ease.InSine,
	"outsine":      ease.OutSine,
	"inoutsine":    ease.InOutSine,
	"inexpo":       ease.InExpo,
	"outexpo":      ease.OutExpo,
	"inoutexpo":    ease.InOutExpo,
	"incirc":       ease.InCirc,
	"outcirc":      ease.OutCirc,
	"inoutcirc":    ease.InOutCirc,
	"inback":       ease.InBack,
	"outback":      ease.OutBack,
	"inoutback":    ease.InOutBack,
	"inbounce":     ease.InBounce,
	"outbounce":    ease.OutBounce,
	"inoutbounce":  ease.InOutBounce,
	"inelastic":    ease.InElastic,
	"outelastic":   ease.OutElastic,
	"inoutelastic": ease.InOutElastic,
}

// Easing looks up an ease by name ("inOutQuad", "in_out_quad" and
// "in-out-quad" are the same). Unknown names fall back to linear.
func Easing(name string) ease.TweenFunc {
	key := strings.ToLower(name)
	key = strings.NewReplacer("_", "", "-", "", " ", "").Replace(key)
	if key == "" {
		return ease.Linear
	}
	if fn, ok := easings[key]; ok {
		return fn
	}
	log.Printf("Warning: unknown ease %q, using linear", name)
	return ease.Linear
}

// PathScripts compiles Custom move scripts once per script name. A path
// script reads t (0..1), start_x and start_y, and assigns x and y, the
// offset from the start position.
type PathScripts struct {
	compiled map[string]*tengo.Compiled
	failed   map[string]bool
}

func NewPathScripts() *PathScripts {
	return &PathScripts{
		compiled: make(map[string]*tengo.Compiled),
		failed:   make(map[string]bool),
	}
}

func (p *PathScripts) get(name string, src []byte) (*tengo.Compiled, error) {
	if c, ok := p.compiled[name]; ok {
		return c, nil
	}
	script := tengo.NewScript(src)
	for _, in := range []string{"t", "start_x", "start_y", "x", "y"} {
		_ = script.Add(in, 0.0)
	}
	script.SetImports(stdlib.GetModuleMap("math"))
	c, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile path %s: %w", name, err)
	}
	p.compiled[name] = c
	return c, nil
}

// Path returns the position function for a Custom move, or nil when the
// script cannot be compiled. Failures are logged once per script.
func (p *PathScripts) Path(name string, src []byte, start dmath.Vec2) func(t float64) dmath.Vec2 {
	if p.failed[name] {
		return nil
	}
	c, err := p.get(name, src)
	if err != nil {
		p.failed[name] = true
		log.Printf("Warning: %v", err)
		return nil
	}
	return func(t float64) dmath.Vec2 {
		_ = c.Set("t", t)
		_ = c.Set("start_x", start.X)
		_ = c.Set("start_y", start.Y)
		if err := c.Run(); err != nil {
			if !p.failed[name] {
				p.failed[name] = true
				log.Printf("Warning: path %s: %v", name, err)
			}
			return start
		}
		return dmath.Vec2{X: start.X + c.Get("x").Float(), Y: start.Y + c.Get("y").Float()}
	}
}
