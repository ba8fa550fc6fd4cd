package projectile

import (
	"math/rand"
	"slices"
	"testing"
	"testing/fstest"

	"github.com/automoto/beatboss/shared/gamemath"
	dmath "github.com/yohamta/donburi/features/math"
)

type dummy struct {
	team Team
	pos  dmath.Vec2
	hp   int
	tags []string
	hits int
}

func (d *dummy) Team() Team             { return d.team }
func (d *dummy) Position() dmath.Vec2   { return d.pos }
func (d *dummy) Alive() bool            { return d.hp > 0 }
func (d *dummy) HasTag(tag string) bool { return slices.Contains(d.tags, tag) }
func (d *dummy) TakeDamage(n int) {
	d.hp -= n
	d.hits++
}

type finder []*dummy

func (f finder) Nearest(from dmath.Vec2, radius float64, team Team, tags []string) Target {
	var best *dummy
	bestDist := 0.0
	for _, d := range f {
		if !d.Alive() || !team.Opposes(d.team) {
			continue
		}
		if len(tags) > 0 && !slices.ContainsFunc(tags, d.HasTag) {
			continue
		}
		dist := gamemath.DistanceSq(from, d.pos)
		if radius > 0 && dist > radius*radius {
			continue
		}
		if best == nil || dist < bestDist {
			best, bestDist = d, dist
		}
	}
	if best == nil {
		return nil
	}
	return best
}

func tmpl(mod func(*Template)) *Template {
	t := &Template{Name: "test", Speed: 100, Damage: 1, Lifetime: 5, Radius: 2, Capacity: 8}
	if mod != nil {
		mod(t)
	}
	return t
}

func TestPoolNeverExceedsCapacity(t *testing.T) {
	pool := NewPool(tmpl(nil), 4, nil)
	rng := rand.New(rand.NewSource(1))
	var held []*Projectile

	for i := 0; i < 2000; i++ {
		if rng.Intn(3) > 0 {
			p := pool.Get()
			p.Initialize(dmath.Vec2{}, dmath.Vec2{X: 1}, TeamEnemy, pool.Template(), nil)
			held = append(held, p)
		} else if len(held) > 0 {
			j := rng.Intn(len(held))
			pool.Return(held[j])
			held = slices.Delete(held, j, j+1)
		}
		if pool.Active() > pool.Capacity() {
			t.Fatalf("step %d: %d active in pool of %d", i, pool.Active(), pool.Capacity())
		}
		if pool.Created() > pool.Capacity() {
			t.Fatalf("step %d: pool owns %d instances, capacity %d", i, pool.Created(), pool.Capacity())
		}
	}
	if pool.Evictions() == 0 {
		t.Fatalf("expected the pool to recycle under pressure")
	}
}

func TestFullPoolRecyclesOldestActive(t *testing.T) {
	pool := NewPool(tmpl(nil), 2, nil)
	a := pool.Get()
	a.Initialize(dmath.Vec2{}, dmath.Vec2{X: 1}, TeamEnemy, pool.Template(), nil)
	b := pool.Get()
	b.Initialize(dmath.Vec2{}, dmath.Vec2{X: 1}, TeamEnemy, pool.Template(), nil)

	c := pool.Get()
	if c != a {
		t.Fatalf("expected the oldest projectile to be recycled")
	}
	if !b.Active() || pool.Active() != 2 {
		t.Fatalf("unexpected pool state: active=%d", pool.Active())
	}
}

func TestNonPiercingDeactivatesExactlyOnce(t *testing.T) {
	pool := NewPool(tmpl(nil), 4, nil)
	p := pool.Get()
	p.Initialize(dmath.Vec2{}, dmath.Vec2{X: 1}, TeamEnemy, pool.Template(), nil)
	target := &dummy{team: TeamPlayer, hp: 10}

	if p.HitTarget(target) {
		t.Fatalf("non-piercing projectile survived a hit")
	}
	if p.HitTarget(target) {
		t.Fatalf("inactive projectile reported survival")
	}
	p.Deactivate()
	if target.hits != 1 {
		t.Fatalf("expected one hit, got %d", target.hits)
	}
	if pool.Active() != 0 || pool.Idle() != 1 {
		t.Fatalf("expected one idle projectile, got active=%d idle=%d", pool.Active(), pool.Idle())
	}
}

func TestPierceSurvivesTwoHits(t *testing.T) {
	pool := NewPool(tmpl(func(t *Template) {
		t.Piercing = true
		t.MaxPierce = 2
	}), 4, nil)
	p := pool.Get()
	p.Initialize(dmath.Vec2{}, dmath.Vec2{X: 1}, TeamPlayer, pool.Template(), nil)

	targets := []*dummy{{hp: 5}, {hp: 5}, {hp: 5}}
	for i, tgt := range targets[:2] {
		if !p.HitTarget(tgt) {
			t.Fatalf("died on hit %d", i+1)
		}
	}
	if p.HitTarget(targets[2]) {
		t.Fatalf("survived third hit")
	}
	if pool.Idle() != 1 {
		t.Fatalf("expected projectile back in pool")
	}
}

func TestPierceDoesNotRehitSameTarget(t *testing.T) {
	pool := NewPool(tmpl(func(t *Template) { t.Piercing = true }), 4, nil)
	p := pool.Get()
	p.Initialize(dmath.Vec2{}, dmath.Vec2{X: 1}, TeamPlayer, pool.Template(), nil)
	boss := &dummy{hp: 100}
	for i := 0; i < 5; i++ {
		p.HitTarget(boss)
	}
	if boss.hits != 1 {
		t.Fatalf("expected a single hit on an overlapping target, got %d", boss.hits)
	}
}

func TestSameTeamIsNeverDamaged(t *testing.T) {
	pool := NewPool(tmpl(nil), 4, nil)
	p := pool.Get()
	p.Initialize(dmath.Vec2{}, dmath.Vec2{X: 1}, TeamEnemy, pool.Template(), nil)
	ally := &dummy{team: TeamEnemy, hp: 3}
	if !p.HitTarget(ally) || ally.hits != 0 {
		t.Fatalf("enemy projectile damaged an enemy target")
	}
}

func TestHomingReachesExactAlignment(t *testing.T) {
	target := &dummy{team: TeamPlayer, pos: dmath.Vec2{Y: 100}, hp: 1}
	tp := tmpl(func(t *Template) {
		t.Speed = 0
		t.Homing = HomingParams{Enabled: true, TurnSpeed: 360}
	})
	pool := NewPool(tp, 1, nil)
	p := pool.Get()
	p.Initialize(dmath.Vec2{}, dmath.Vec2{X: 1}, TeamEnemy, tp, finder{target})

	p.Tick(1)
	if p.Direction != (dmath.Vec2{X: 0, Y: 1}) {
		t.Fatalf("expected exact (0,1), got %v", p.Direction)
	}
}

func TestHomingClampsTurnRate(t *testing.T) {
	target := &dummy{team: TeamPlayer, pos: dmath.Vec2{Y: 100}, hp: 1}
	tp := tmpl(func(t *Template) {
		t.Speed = 0
		t.Homing = HomingParams{Enabled: true, TurnSpeed: 90}
	})
	pool := NewPool(tp, 1, nil)
	p := pool.Get()
	p.Initialize(dmath.Vec2{}, dmath.Vec2{X: 1}, TeamEnemy, tp, finder{target})

	p.Tick(0.5)
	deg := gamemath.RadToDeg(gamemath.Angle(p.Direction))
	if deg < 44.999 || deg > 45.001 {
		t.Fatalf("expected 45 degrees after half a second, got %v", deg)
	}
}

func TestAutoTargetReacquiresWhenTargetDies(t *testing.T) {
	near := &dummy{team: TeamEnemy, pos: dmath.Vec2{X: 10}, hp: 1, tags: []string{"boss"}}
	far := &dummy{team: TeamEnemy, pos: dmath.Vec2{Y: 50}, hp: 1, tags: []string{"boss"}}
	ignored := &dummy{team: TeamEnemy, pos: dmath.Vec2{X: 1}, hp: 1, tags: []string{"prop"}}
	tp := tmpl(func(t *Template) {
		t.Speed = 0
		t.Homing = HomingParams{
			Enabled: true, AutoTarget: true, TurnSpeed: 90,
			SearchRadius: 100, RetargetInterval: 10, TargetTags: []string{"boss"},
		}
	})
	pool := NewPool(tp, 1, nil)
	p := pool.Get()
	p.Initialize(dmath.Vec2{}, dmath.Vec2{X: 1}, TeamPlayer, tp, finder{near, far, ignored})

	if p.autoHoming.Target() != near {
		t.Fatalf("expected nearest tagged target")
	}
	near.hp = 0
	p.Tick(0.1)
	if p.autoHoming.Target() != far {
		t.Fatalf("expected retarget to the remaining target")
	}
}

func TestBounceReflectsDecaysAndGivesUp(t *testing.T) {
	tp := tmpl(func(t *Template) {
		t.Bounce = BounceParams{Enabled: true, Decay: 0.5, MaxBounces: 2}
	})
	pool := NewPool(tp, 1, nil)
	p := pool.Get()
	p.Initialize(dmath.Vec2{}, dmath.Vec2{X: 1}, TeamEnemy, tp, nil)

	// normal given along travel is flipped to oppose it
	if !p.HitBoundary(dmath.Vec2{X: 1}) {
		t.Fatalf("first bounce should be claimed")
	}
	if p.Direction != (dmath.Vec2{X: -1}) || p.Speed != 50 {
		t.Fatalf("after first bounce: dir=%v speed=%v", p.Direction, p.Speed)
	}
	if !p.HitBoundary(dmath.Vec2{X: 1}) {
		t.Fatalf("second bounce should be claimed")
	}
	if p.HitBoundary(dmath.Vec2{X: -1}) {
		t.Fatalf("third bounce should be declined")
	}
	if p.Active() {
		t.Fatalf("projectile should be back in the pool")
	}
}

func TestUnclaimedBoundaryDestroys(t *testing.T) {
	pool := NewPool(tmpl(nil), 1, nil)
	p := pool.Get()
	p.Initialize(dmath.Vec2{}, dmath.Vec2{X: 1}, TeamEnemy, pool.Template(), nil)
	if p.HitBoundary(dmath.Vec2{X: -1}) || p.Active() {
		t.Fatalf("plain projectile should die on a wall")
	}
}

func TestLifetimeExpiryReturnsToPool(t *testing.T) {
	pool := NewPool(tmpl(func(t *Template) { t.Lifetime = 1 }), 2, nil)
	p := pool.Get()
	p.Initialize(dmath.Vec2{}, dmath.Vec2{X: 1}, TeamEnemy, pool.Template(), nil)
	p.Tick(0.5)
	if !p.Active() || p.Position.X != 50 {
		t.Fatalf("unexpected state after half lifetime: %v", p.Position)
	}
	p.Tick(0.5)
	if p.Active() || pool.Idle() != 1 {
		t.Fatalf("expired projectile should be pooled")
	}
}

func TestRegistryFallsBackForUnknownTemplate(t *testing.T) {
	r := NewRegistry(nil, nil)
	known := tmpl(nil)
	r.Register(known)

	stray := tmpl(func(t *Template) { t.Name = "stray" })
	p := r.Spawn(stray, dmath.Vec2{}, dmath.Vec2{X: 1}, TeamEnemy)
	if p.Template() != stray {
		t.Fatalf("fallback projectile should still use the requested template")
	}
	if r.Pool(stray) == r.Pool(known) {
		t.Fatalf("unregistered template shared a registered pool")
	}
	if got, ok := r.Template("test"); !ok || got != known {
		t.Fatalf("lookup by name failed")
	}
	if r.ActiveCount() != 1 {
		t.Fatalf("expected one active projectile, got %d", r.ActiveCount())
	}
}

func TestPreloadWarmsWithoutLeavingActive(t *testing.T) {
	r := NewRegistry(nil, nil)
	pool := r.Register(tmpl(func(t *Template) { t.Preload = 5 }))
	if pool.Idle() != 5 || pool.Active() != 0 {
		t.Fatalf("expected 5 idle, got idle=%d active=%d", pool.Idle(), pool.Active())
	}
}

func TestSteadyStateSpawnDoesNotAllocate(t *testing.T) {
	r := NewRegistry(nil, nil)
	tp := tmpl(func(t *Template) {
		t.Homing = HomingParams{Enabled: true, TurnSpeed: 180}
		t.Bounce = BounceParams{Enabled: true}
	})
	r.Register(tp)
	r.Preload(tp, 4)

	allocs := testing.AllocsPerRun(100, func() {
		p := r.Spawn(tp, dmath.Vec2{}, dmath.Vec2{X: 1}, TeamEnemy)
		p.Tick(1.0 / 60)
		p.Deactivate()
	})
	if allocs != 0 {
		t.Fatalf("expected no allocations, got %v", allocs)
	}
}

func TestLoadTemplates(t *testing.T) {
	fsys := fstest.MapFS{"templates.yaml": {Data: []byte(`
templates:
  - name: orb
    speed: 120
    piercing: true
    max_pierce: 2
    homing:
      enabled: true
      auto_target: true
      turn_speed: 180
      target_tags: [player]
  - name: pellet
`)}}
	got, err := LoadTemplates(fsys, "templates.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 || got[0].MaxPierce != 2 || !got[0].Homing.AutoTarget {
		t.Fatalf("unexpected templates %+v", got)
	}
	if got[1].Speed == 0 || got[1].Lifetime == 0 {
		t.Fatalf("defaults not applied: %+v", got[1])
	}
}

// scripted is a custom behavior that records what it saw and claims the
// events it is told to.
type scripted struct {
	claimBoundary bool
	claimTarget   bool

	inits, updates, boundaries, targets, resets int
}

func (s *scripted) Init(*Projectile)            { s.inits++ }
func (s *scripted) Update(*Projectile, float64) { s.updates++ }
func (s *scripted) OnBoundaryHit(*Projectile, dmath.Vec2) bool {
	s.boundaries++
	return s.claimBoundary
}
func (s *scripted) OnTargetHit(*Projectile, Target) bool {
	s.targets++
	return s.claimTarget
}
func (s *scripted) Reset() { s.resets++ }

func TestCustomBehaviorsComeFromFactories(t *testing.T) {
	var built []*scripted
	pool := NewPool(tmpl(func(t *Template) {
		t.Behaviors = []BehaviorFactory{func() Behavior {
			s := &scripted{}
			built = append(built, s)
			return s
		}}
	}), 4, nil)

	a := pool.Get()
	a.Initialize(dmath.Vec2{}, dmath.Vec2{X: 1}, TeamEnemy, pool.Template(), nil)
	b := pool.Get()
	b.Initialize(dmath.Vec2{}, dmath.Vec2{X: 1}, TeamEnemy, pool.Template(), nil)
	if len(built) != 2 || built[0] == built[1] {
		t.Fatalf("expected one behavior per instance, got %d", len(built))
	}

	a.Tick(0.1)
	a.Tick(0.1)
	if built[0].inits != 1 || built[0].updates != 2 || built[1].updates != 0 {
		t.Fatalf("unexpected calls a=%+v b=%+v", *built[0], *built[1])
	}

	a.Deactivate()
	if built[0].resets != 1 {
		t.Fatalf("behavior not reset on deactivate")
	}
	again := pool.Get()
	again.Initialize(dmath.Vec2{}, dmath.Vec2{X: 1}, TeamEnemy, pool.Template(), nil)
	if len(built) != 2 || built[0].inits != 2 {
		t.Fatalf("reused instance should keep its behavior, built %d inits %d", len(built), built[0].inits)
	}
}

func TestOneClaimKeepsProjectileAlive(t *testing.T) {
	claimer, decliner := &scripted{claimBoundary: true}, &scripted{}
	pool := NewPool(tmpl(func(t *Template) {
		t.Behaviors = []BehaviorFactory{
			func() Behavior { return decliner },
			func() Behavior { return claimer },
		}
	}), 4, nil)
	p := pool.Get()
	p.Initialize(dmath.Vec2{}, dmath.Vec2{X: 1}, TeamEnemy, pool.Template(), nil)

	if !p.HitBoundary(dmath.Vec2{X: -1}) || !p.Active() {
		t.Fatalf("a single claim should keep the projectile")
	}
	if claimer.boundaries != 1 || decliner.boundaries != 1 {
		t.Fatalf("every behavior should see the hit, claimer %d decliner %d", claimer.boundaries, decliner.boundaries)
	}
	if !p.LeavingWall() {
		t.Fatalf("survivor should be marked as leaving the wall")
	}
	p.ClearedWall()
	if p.LeavingWall() {
		t.Fatalf("cleared projectile still leaving")
	}

	claimer.claimBoundary = false
	if p.HitBoundary(dmath.Vec2{X: -1}) || p.Active() {
		t.Fatalf("no claims should destroy the projectile")
	}
}

func TestClaimedTargetHitSparesNonPiercing(t *testing.T) {
	shield := &scripted{claimTarget: true}
	pool := NewPool(tmpl(func(t *Template) {
		t.Behaviors = []BehaviorFactory{func() Behavior { return shield }}
	}), 4, nil)
	p := pool.Get()
	p.Initialize(dmath.Vec2{}, dmath.Vec2{X: 1}, TeamPlayer, pool.Template(), nil)

	first, second := &dummy{hp: 5}, &dummy{hp: 5}
	if !p.HitTarget(first) || !p.HitTarget(second) {
		t.Fatalf("claimed hits should not consume the projectile")
	}
	if first.hits != 1 || second.hits != 1 || shield.targets != 2 {
		t.Fatalf("hits %d/%d, behavior saw %d", first.hits, second.hits, shield.targets)
	}
	if p.PierceCount != 0 {
		t.Fatalf("claimed hits should not count as pierces, got %d", p.PierceCount)
	}

	shield.claimTarget = false
	if p.HitTarget(&dummy{hp: 5}) || p.Active() {
		t.Fatalf("unclaimed hit should destroy a non-piercing projectile")
	}
}
