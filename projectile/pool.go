package projectile

import (
	"iter"
	"log"

	"github.com/automoto/beatboss/config"
	"github.com/solarlune/resolv"
)

// Pool recycles the projectiles of one template. It never holds more than
// capacity instances: when all of them are active, Get recycles the oldest
// active one.
type Pool struct {
	template *Template
	capacity int
	space    *resolv.Space

	idle       []*Projectile
	head, tail *Projectile
	active     int
	created    int
	serial     uint64

	evictions int
	warned    bool
}

// NewPool creates an empty pool. A non-positive capacity uses the
// template's, then the configured default.
func NewPool(tmpl *Template, capacity int, space *resolv.Space) *Pool {
	if capacity <= 0 {
		capacity = tmpl.Capacity
	}
	if capacity <= 0 {
		capacity = config.Pool.DefaultCapacity
	}
	return &Pool{
		template: tmpl,
		capacity: capacity,
		space:    space,
		idle:     make([]*Projectile, 0, capacity),
	}
}

// Get reserves a projectile and marks it active. The caller initializes it.
func (pl *Pool) Get() *Projectile {
	var p *Projectile
	switch {
	case len(pl.idle) > 0:
		p = pl.idle[len(pl.idle)-1]
		pl.idle[len(pl.idle)-1] = nil
		pl.idle = pl.idle[:len(pl.idle)-1]
	case pl.created < pl.capacity:
		p = newProjectile(pl)
		p.space = pl.space
		pl.created++
	default:
		p = pl.head
		pl.evict(p)
	}

	pl.serial++
	p.serial = pl.serial
	p.active = true
	pl.pushActive(p)
	return p
}

func (pl *Pool) evict(p *Projectile) {
	pl.evictions++
	if !pl.warned && config.Debug.LogEvictions {
		log.Printf("Warning: pool %s at capacity %d, recycling oldest projectile", pl.template.Name, pl.capacity)
		pl.warned = true
	}
	pl.unlinkActive(p)
	p.retire()
}

// Return deactivates p and keeps it for reuse. A projectile that is not
// active, or belongs to another pool, is ignored.
func (pl *Pool) Return(p *Projectile) {
	if p == nil || !p.active || p.pool != pl {
		return
	}
	pl.unlinkActive(p)
	p.retire()
	if pl.active < pl.capacity {
		pl.warned = false
	}
	if len(pl.idle) >= pl.capacity {
		p.pool = nil
		pl.created--
		return
	}
	pl.idle = append(pl.idle, p)
}

// Preload warms the pool with up to n instances.
func (pl *Pool) Preload(n int) {
	n = min(n, pl.capacity-pl.active)
	if n <= 0 {
		return
	}
	warm := make([]*Projectile, 0, n)
	for i := 0; i < n; i++ {
		warm = append(warm, pl.Get())
	}
	for _, p := range warm {
		pl.Return(p)
	}
}

// All yields active projectiles, oldest first. Deactivating the yielded
// projectile during iteration is allowed.
func (pl *Pool) All() iter.Seq[*Projectile] {
	return func(yield func(*Projectile) bool) {
		for p := pl.head; p != nil; {
			next := p.next
			if !yield(p) {
				return
			}
			p = next
		}
	}
}

// Tick advances every active projectile.
func (pl *Pool) Tick(dt float64) {
	for p := range pl.All() {
		p.Tick(dt)
	}
}

// Clear deactivates every active projectile.
func (pl *Pool) Clear() {
	for p := range pl.All() {
		pl.Return(p)
	}
}

func (pl *Pool) Template() *Template { return pl.template }
func (pl *Pool) Capacity() int       { return pl.capacity }
func (pl *Pool) Active() int         { return pl.active }
func (pl *Pool) Idle() int           { return len(pl.idle) }

// Created is the number of instances this pool currently owns.
func (pl *Pool) Created() int { return pl.created }

// Evictions counts active projectiles recycled because the pool was full.
func (pl *Pool) Evictions() int { return pl.evictions }

func (pl *Pool) pushActive(p *Projectile) {
	p.prev = pl.tail
	p.next = nil
	if pl.tail != nil {
		pl.tail.next = p
	} else {
		pl.head = p
	}
	pl.tail = p
	pl.active++
}

func (pl *Pool) unlinkActive(p *Projectile) {
	if p.prev != nil {
		p.prev.next = p.next
	} else {
		pl.head = p.next
	}
	if p.next != nil {
		p.next.prev = p.prev
	} else {
		pl.tail = p.prev
	}
	p.prev, p.next = nil, nil
	pl.active--
}
