package projectile

import (
	"iter"
	"log"

	"github.com/solarlune/resolv"
	dmath "github.com/yohamta/donburi/features/math"
)

// Registry owns one pool per registered template plus a fallback pool for
// templates nobody registered.
type Registry struct {
	space  *resolv.Space
	finder TargetFinder

	pools    map[*Template]*Pool
	byName   map[string]*Template
	order    []*Pool
	fallback *Pool
	warned   map[*Template]bool
}

func NewRegistry(space *resolv.Space, finder TargetFinder) *Registry {
	r := &Registry{
		space:  space,
		finder: finder,
		pools:  make(map[*Template]*Pool),
		byName: make(map[string]*Template),
		warned: make(map[*Template]bool),
	}
	def := DefaultTemplate()
	r.fallback = NewPool(def, def.Capacity, space)
	r.order = append(r.order, r.fallback)
	return r
}

// SetFinder replaces the target finder used by homing behaviors.
func (r *Registry) SetFinder(f TargetFinder) {
	r.finder = f
}

// Register creates the pool for tmpl and warms it. Registering twice
// returns the existing pool.
func (r *Registry) Register(tmpl *Template) *Pool {
	if pool, ok := r.pools[tmpl]; ok {
		return pool
	}
	pool := NewPool(tmpl, tmpl.Capacity, r.space)
	r.pools[tmpl] = pool
	r.order = append(r.order, pool)
	if tmpl.Name != "" {
		r.byName[tmpl.Name] = tmpl
	}
	if tmpl.Preload > 0 {
		pool.Preload(tmpl.Preload)
	}
	return pool
}

// Template looks up a registered template by name.
func (r *Registry) Template(name string) (*Template, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Pool returns the pool for tmpl, or the fallback pool when tmpl is nil or
// unregistered.
func (r *Registry) Pool(tmpl *Template) *Pool {
	if pool, ok := r.pools[tmpl]; ok {
		return pool
	}
	if tmpl != nil && !r.warned[tmpl] {
		log.Printf("Warning: template %s is not registered, using default pool", tmpl.Name)
		r.warned[tmpl] = true
	}
	return r.fallback
}

// Spawn fires one projectile. A nil template fires the default projectile.
func (r *Registry) Spawn(tmpl *Template, origin, dir dmath.Vec2, team Team) *Projectile {
	pool := r.Pool(tmpl)
	if tmpl == nil {
		tmpl = pool.template
	}
	p := pool.Get()
	p.Initialize(origin, dir, team, tmpl, r.finder)
	return p
}

// Preload warms the pool serving tmpl with n instances.
func (r *Registry) Preload(tmpl *Template, n int) {
	r.Pool(tmpl).Preload(n)
}

// Tick advances every active projectile of every pool.
func (r *Registry) Tick(dt float64) {
	for _, pool := range r.order {
		pool.Tick(dt)
	}
}

// All yields every active projectile.
func (r *Registry) All() iter.Seq[*Projectile] {
	return func(yield func(*Projectile) bool) {
		for _, pool := range r.order {
			for p := range pool.All() {
				if !yield(p) {
					return
				}
			}
		}
	}
}

func (r *Registry) ActiveCount() int {
	n := 0
	for _, pool := range r.order {
		n += pool.Active()
	}
	return n
}

// Pools yields the fallback pool followed by registered pools in
// registration order.
func (r *Registry) Pools() iter.Seq[*Pool] {
	return func(yield func(*Pool) bool) {
		for _, pool := range r.order {
			if !yield(pool) {
				return
			}
		}
	}
}

// Clear deactivates every projectile but keeps the pools warm.
func (r *Registry) Clear() {
	for _, pool := range r.order {
		pool.Clear()
	}
}

// Close tears the registry down, dropping every pooled instance.
func (r *Registry) Close() {
	r.Clear()
	for _, pool := range r.order {
		clear(pool.idle)
		pool.idle = pool.idle[:0]
		pool.created = 0
	}
	clear(r.pools)
	clear(r.byName)
	r.order = []*Pool{r.fallback}
}
