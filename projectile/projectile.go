// Package projectile simulates pooled, behavior-composed projectiles.
//
// Projectiles live in per-template pools and cycle between idle and active
// for the whole session; steady-state spawning allocates nothing. Built-in
// behaviors are embedded values placed in a fixed table on each instance.
package projectile

import (
	"log"

	"github.com/automoto/beatboss/config"
	"github.com/automoto/beatboss/tags"
	"github.com/solarlune/resolv"
	dmath "github.com/yohamta/donburi/features/math"
)

type Projectile struct {
	Position    dmath.Vec2
	Direction   dmath.Vec2 // unit length
	Speed       float64
	Lifetime    float64 // seconds remaining
	Damage      int
	Team        Team
	PierceCount int

	template *Template
	active   bool
	pool     *Pool
	serial   uint64

	// intrusive active list, oldest first
	prev, next *Projectile

	collider    *resolv.Object
	colliderFor *Template
	space       *resolv.Space

	homing     Homing
	autoHoming AutoTargetHoming
	bounce     Bounce
	behaviors  []Behavior
	custom     []Behavior
	customFor  *Template

	hits        map[Target]struct{}
	leavingWall bool
}

func newProjectile(pool *Pool) *Projectile {
	return &Projectile{
		pool:      pool,
		behaviors: make([]Behavior, 0, config.Pool.MaxBehaviors),
		hits:      make(map[Target]struct{}),
	}
}

// Initialize arms a reserved projectile at pos heading along dir.
func (p *Projectile) Initialize(pos, dir dmath.Vec2, team Team, tmpl *Template, finder TargetFinder) {
	p.template = tmpl
	p.Position = pos
	p.Direction = dmath.Vec2{X: 1}
	if dir.Magnitude() > dmath.Epsilon {
		p.Direction = dir.Normalized()
	}
	p.Speed = tmpl.Speed
	p.Lifetime = tmpl.Lifetime
	p.Damage = tmpl.Damage
	p.Team = team
	p.PierceCount = 0
	p.leavingWall = false
	clear(p.hits)

	p.attachBehaviors(tmpl, finder)
	p.attachCollider(tmpl)

	for _, b := range p.behaviors {
		b.Init(p)
	}
}

func (p *Projectile) attachBehaviors(tmpl *Template, finder TargetFinder) {
	p.behaviors = p.behaviors[:0]
	if tmpl.Homing.Enabled {
		if tmpl.Homing.AutoTarget {
			p.autoHoming.configure(tmpl.Homing, finder)
			p.behaviors = append(p.behaviors, &p.autoHoming)
		} else {
			p.homing.configure(tmpl.Homing, finder)
			p.behaviors = append(p.behaviors, &p.homing)
		}
	}
	if tmpl.Bounce.Enabled {
		p.bounce.configure(tmpl.Bounce)
		p.behaviors = append(p.behaviors, &p.bounce)
	}

	if p.customFor != tmpl {
		p.custom = p.custom[:0]
		for _, factory := range tmpl.Behaviors {
			p.custom = append(p.custom, factory())
		}
		p.customFor = tmpl
	}
	for _, b := range p.custom {
		if len(p.behaviors) == cap(p.behaviors) {
			log.Printf("Warning: template %s has more than %d behaviors, extra dropped", tmpl.Name, cap(p.behaviors))
			break
		}
		p.behaviors = append(p.behaviors, b)
	}
}

func (p *Projectile) attachCollider(tmpl *Template) {
	if p.space == nil {
		return
	}
	size := tmpl.Radius * 2
	if p.collider == nil || p.colliderFor != tmpl {
		p.collider = resolv.NewObject(0, 0, size, size, tags.ResolvProjectile)
		p.collider.SetShape(resolv.NewRectangle(0, 0, size, size))
		p.collider.Data = p
		p.colliderFor = tmpl
	}
	p.collider.RemoveTags(tags.ResolvPlayerShot, tags.ResolvEnemyShot)
	if p.Team == TeamPlayer {
		p.collider.AddTags(tags.ResolvPlayerShot)
	} else {
		p.collider.AddTags(tags.ResolvEnemyShot)
	}
	p.syncCollider()
	p.space.Add(p.collider)
}

func (p *Projectile) syncCollider() {
	if p.collider == nil {
		return
	}
	r := p.template.Radius
	p.collider.X = p.Position.X - r
	p.collider.Y = p.Position.Y - r
	p.collider.Update()
}

// Tick ages the projectile, moves it and runs its behaviors.
func (p *Projectile) Tick(dt float64) {
	if !p.active {
		return
	}
	p.Lifetime -= dt
	if p.Lifetime <= 0 {
		p.Deactivate()
		return
	}
	p.Position = p.Position.Add(p.Direction.MulScalar(p.Speed*dt))
	for _, b := range p.behaviors {
		b.Update(p, dt)
	}
	p.syncCollider()
}

// HitTarget applies a hit on t and reports whether the projectile is still
// active afterwards. Same-team targets, dead targets and targets this
// projectile already hit are ignored.
func (p *Projectile) HitTarget(t Target) bool {
	if !p.active {
		return false
	}
	if t == nil || !t.Alive() || !p.Team.Opposes(t.Team()) {
		return true
	}
	if _, seen := p.hits[t]; seen {
		return true
	}
	p.hits[t] = struct{}{}
	t.TakeDamage(p.Damage)

	claimed := false
	for _, b := range p.behaviors {
		if b.OnTargetHit(p, t) {
			claimed = true
		}
	}
	if claimed {
		return true
	}
	if p.template.Piercing && (p.template.MaxPierce <= 0 || p.PierceCount < p.template.MaxPierce) {
		p.PierceCount++
		return true
	}
	p.Deactivate()
	return false
}

// HitBoundary runs the boundary pipeline with normal turned against the
// direction of travel, and reports whether the projectile survived.
func (p *Projectile) HitBoundary(normal dmath.Vec2) bool {
	if !p.active {
		return false
	}
	n := p.Direction.MulScalar(-1)
	if normal.Magnitude() > dmath.Epsilon {
		n = normal.Normalized()
		if n.Dot(&p.Direction) > 0 {
			n = n.MulScalar(-1)
		}
	}

	claimed := false
	for _, b := range p.behaviors {
		if b.OnBoundaryHit(p, n) {
			claimed = true
		}
	}
	if !claimed {
		p.Deactivate()
		return false
	}
	p.leavingWall = true
	p.syncCollider()
	return true
}

// LeavingWall reports whether the projectile survived a boundary hit and
// has not yet been seen clear of walls.
func (p *Projectile) LeavingWall() bool { return p.leavingWall }

// ClearedWall records that the projectile no longer touches a wall.
func (p *Projectile) ClearedWall() { p.leavingWall = false }

// Deactivate returns the projectile to its pool. Calling it on an idle
// projectile does nothing.
func (p *Projectile) Deactivate() {
	if !p.active {
		return
	}
	if p.pool != nil {
		p.pool.Return(p)
		return
	}
	p.retire()
}

// retire clears runtime state; the pool handles list bookkeeping.
func (p *Projectile) retire() {
	p.active = false
	for _, b := range p.behaviors {
		b.Reset()
	}
	if p.collider != nil && p.space != nil {
		p.space.Remove(p.collider)
	}
}

func (p *Projectile) Active() bool        { return p.active }
func (p *Projectile) Template() *Template { return p.template }

// Collider is the resolv object tracking the projectile, nil without a
// collision space.
func (p *Projectile) Collider() *resolv.Object { return p.collider }

// Homing exposes the built-in homing state for callers that pick a target.
func (p *Projectile) Homing() *Homing { return &p.homing }

func (p *Projectile) Bounces() int { return p.bounce.Count() }

// Velocity is direction scaled by speed.
func (p *Projectile) Velocity() dmath.Vec2 {
	return p.Direction.MulScalar(p.Speed)
}
