package projectile

import (
	"github.com/automoto/beatboss/config"
	"github.com/automoto/beatboss/shared/gamemath"
	dmath "github.com/yohamta/donburi/features/math"
)

// Behavior modifies one projectile. Every attached behavior sees every
// event; a hit or boundary contact destroys the projectile only when no
// behavior claims it.
type Behavior interface {
	Init(p *Projectile)
	Update(p *Projectile, dt float64)
	OnBoundaryHit(p *Projectile, normal dmath.Vec2) (claimed bool)
	OnTargetHit(p *Projectile, t Target) (claimed bool)
	Reset()
}

// Target is anything a projectile can damage.
type Target interface {
	Team() Team
	Position() dmath.Vec2
	Alive() bool
	HasTag(tag string) bool
	TakeDamage(amount int)
}

// TargetFinder returns the nearest live target that a projectile of team
// may damage, within radius (0 for unlimited) and carrying one of tags
// (empty for any).
type TargetFinder interface {
	Nearest(from dmath.Vec2, radius float64, team Team, tags []string) Target
}

// steering turns a projectile toward a target at a bounded angular rate.
type steering struct {
	turnRate  float64 // radians per second
	target    Target
	activated bool
}

func (s *steering) steer(p *Projectile, dt float64) {
	if s.target == nil || !s.target.Alive() {
		return
	}
	to := s.target.Position().Sub(p.Position).Normalized()
	if to == (dmath.Vec2{}) {
		return
	}
	if !s.activated {
		s.activated = true
		if abs(gamemath.SignedAngle(p.Direction, to)) <= gamemath.DegToRad(config.Projectile.AlignTolerance) {
			p.Direction = to
			return
		}
	}
	p.Direction, _ = gamemath.RotateToward(p.Direction, to, s.turnRate*dt)
}

func (s *steering) reset() {
	s.target = nil
	s.activated = false
}

// Homing locks onto the nearest eligible target when the projectile is
// fired and steers toward it until it dies.
type Homing struct {
	steering
	tags   []string
	finder TargetFinder
}

func (h *Homing) configure(params HomingParams, finder TargetFinder) {
	h.turnRate = gamemath.DegToRad(params.TurnSpeed)
	h.tags = params.TargetTags
	h.finder = finder
}

func (h *Homing) Init(p *Projectile) {
	h.reset()
	if h.finder != nil {
		h.target = h.finder.Nearest(p.Position, 0, p.Team, h.tags)
	}
}

func (h *Homing) Update(p *Projectile, dt float64) {
	h.steer(p, dt)
}

// SetTarget overrides the locked target.
func (h *Homing) SetTarget(t Target) {
	h.target = t
}

func (h *Homing) OnBoundaryHit(*Projectile, dmath.Vec2) bool { return false }
func (h *Homing) OnTargetHit(*Projectile, Target) bool      { return false }
func (h *Homing) Reset()                                    { h.reset() }

// AutoTargetHoming re-acquires the nearest eligible target within its
// search radius every retarget interval, or at once when the current target
// dies or leaves the radius.
type AutoTargetHoming struct {
	steering
	radius   float64
	interval float64
	tags     []string
	finder   TargetFinder
	since    float64
}

func (a *AutoTargetHoming) configure(params HomingParams, finder TargetFinder) {
	a.turnRate = gamemath.DegToRad(params.TurnSpeed)
	a.radius = params.SearchRadius
	a.interval = params.RetargetInterval
	a.tags = params.TargetTags
	a.finder = finder
}

func (a *AutoTargetHoming) Init(p *Projectile) {
	a.reset()
	a.since = 0
	a.acquire(p)
}

func (a *AutoTargetHoming) Update(p *Projectile, dt float64) {
	a.since += dt
	if !a.valid(p) || a.since >= a.interval {
		a.acquire(p)
	}
	a.steer(p, dt)
}

func (a *AutoTargetHoming) valid(p *Projectile) bool {
	if a.target == nil || !a.target.Alive() {
		return false
	}
	if a.radius > 0 && gamemath.DistanceSq(a.target.Position(), p.Position) > a.radius*a.radius {
		return false
	}
	return true
}

func (a *AutoTargetHoming) acquire(p *Projectile) {
	a.since = 0
	if a.finder == nil {
		a.target = nil
		return
	}
	a.target = a.finder.Nearest(p.Position, a.radius, p.Team, a.tags)
}

// Target is the currently tracked target, nil when none is in range.
func (a *AutoTargetHoming) Target() Target {
	return a.target
}

func (a *AutoTargetHoming) OnBoundaryHit(*Projectile, dmath.Vec2) bool { return false }
func (a *AutoTargetHoming) OnTargetHit(*Projectile, Target) bool      { return false }
func (a *AutoTargetHoming) Reset()                                    { a.reset() }

// Bounce reflects the projectile off boundaries.
type Bounce struct {
	decay float64
	max   int
	count int
}

func (b *Bounce) configure(params BounceParams) {
	b.decay = params.Decay
	b.max = params.MaxBounces
}

func (b *Bounce) Init(*Projectile)             { b.count = 0 }
func (b *Bounce) Update(*Projectile, float64) {}

func (b *Bounce) OnBoundaryHit(p *Projectile, normal dmath.Vec2) bool {
	if b.max > 0 && b.count >= b.max {
		return false
	}
	p.Direction = gamemath.Reflect(p.Direction, normal).Normalized()
	if b.decay > 0 {
		p.Speed *= b.decay
	}
	b.count++
	return true
}

func (b *Bounce) OnTargetHit(*Projectile, Target) bool { return false }
func (b *Bounce) Reset()                             { b.count = 0 }

// Count is the number of bounces since the projectile was fired.
func (b *Bounce) Count() int {
	return b.count
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
