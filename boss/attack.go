package boss

import (
	"log"

	"github.com/automoto/beatboss/pattern"
	"github.com/automoto/beatboss/projectile"
	"github.com/automoto/beatboss/sequence"
	dmath "github.com/yohamta/donburi/features/math"
)

// Spawner fires projectiles. *projectile.Registry implements it.
type Spawner interface {
	Template(name string) (*projectile.Template, bool)
	Spawn(tmpl *projectile.Template, origin, dir dmath.Vec2, team projectile.Team) *projectile.Projectile
}

// TargetResolver reports where aimed attacks should point. ok is false when
// there is nothing to aim at.
type TargetResolver interface {
	AimTarget(from dmath.Vec2) (pos, vel dmath.Vec2, ok bool)
}

// pendingAttack is a delayed or repeating volley waiting for its time.
type pendingAttack struct {
	action    sequence.AttackAction
	remaining float64
	volleys   int
}

func (b *Boss) queueAttack(a sequence.AttackAction) {
	if a.Delay <= 0 {
		b.fire(a)
		if a.Repeat > 0 {
			b.pending = append(b.pending, pendingAttack{action: a, remaining: a.RepeatInterval, volleys: a.Repeat})
		}
		return
	}
	b.pending = append(b.pending, pendingAttack{action: a, remaining: a.Delay, volleys: a.Repeat + 1})
}

func (b *Boss) tickAttacks(dt float64) {
	kept := b.pending[:0]
	for _, p := range b.pending {
		p.remaining -= dt
		for p.remaining <= 0 && p.volleys > 0 {
			b.fire(p.action)
			p.volleys--
			p.remaining += p.action.RepeatInterval
		}
		if p.volleys > 0 {
			kept = append(kept, p)
		}
	}
	clear(b.pending[len(kept):])
	b.pending = kept
}

// fire spawns one volley from every selected emitter, sampling emitter
// positions as they are now.
func (b *Boss) fire(a sequence.AttackAction) {
	tmpl := b.template(a.Template)
	desc := a.Pattern
	if desc.Kind == pattern.KindAim && desc.Predict && desc.LeadSpeed <= 0 && tmpl != nil {
		desc.LeadSpeed = tmpl.Speed
	}
	for _, e := range b.selectEmitters(a) {
		ctx := b.patternContext(a, e)
		for em := range pattern.Generate(desc, ctx) {
			b.spawner.Spawn(tmpl, em.Origin, em.Direction, projectile.TeamEnemy)
		}
	}
}

func (b *Boss) template(name string) *projectile.Template {
	if name == "" || b.spawner == nil {
		return nil
	}
	tmpl, ok := b.spawner.Template(name)
	if !ok {
		b.warnOnce("template:"+name, "Warning: boss %s: unknown template %q, using default", b.def.Name, name)
		return nil
	}
	return tmpl
}

func (b *Boss) selectEmitters(a sequence.AttackAction) []*Emitter {
	if b.spawner == nil {
		return nil
	}
	if a.SelectsAll() {
		if len(b.emitters) == 0 {
			return b.bodyOnly[:]
		}
		return b.emitters
	}
	selected := b.selected[:0]
	for _, name := range a.Emitters {
		e, ok := b.emitter(name)
		if !ok {
			b.warnOnce("emitter:"+name, "Warning: boss %s: attack %s names unknown emitter %q", b.def.Name, a.Name, name)
			continue
		}
		selected = append(selected, e)
	}
	b.selected = selected
	return selected
}

func (b *Boss) patternContext(a sequence.AttackAction, e *Emitter) pattern.Context {
	origin := b.emitterPosition(e)
	facing := e.Facing
	if a.Direction != (dmath.Vec2{}) {
		facing = a.Direction.Normalized()
	}
	ctx := pattern.Context{Origin: origin, Facing: facing, Target: origin, Rand: b.rng}
	if b.resolver == nil {
		return ctx
	}
	pos, vel, ok := b.resolver.AimTarget(origin)
	if !ok {
		return ctx
	}
	ctx.Target = pos
	ctx.TargetVelocity = vel
	if a.Aim {
		if to := pos.Sub(origin).Normalized(); to != (dmath.Vec2{}) {
			ctx.Facing = to
		}
	}
	return ctx
}

func (b *Boss) warnOnce(key, format string, args ...any) {
	if b.warned[key] {
		return
	}
	b.warned[key] = true
	log.Printf(format, args...)
}
