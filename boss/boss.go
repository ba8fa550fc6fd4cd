// Package boss holds a boss's health, phases and lifecycle, and carries out
// the attack and move actions its sequencers issue.
package boss

import (
	"errors"
	"fmt"
	"log"
	"math/rand"

	"github.com/automoto/beatboss/beat"
	"github.com/automoto/beatboss/config"
	"github.com/automoto/beatboss/projectile"
	"github.com/automoto/beatboss/sequence"
	"github.com/automoto/beatboss/tags"
	dmath "github.com/yohamta/donburi/features/math"
)

type State int

const (
	StateIdle State = iota
	StateFighting
	StateDefeated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFighting:
		return "fighting"
	case StateDefeated:
		return "defeated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Emitter is a named spawn point. Its mover works in body-local
// coordinates, so emitters follow the body.
type Emitter struct {
	Name   string
	Facing dmath.Vec2
	mover  *Mover
}

// Offset is the emitter's position relative to the body.
func (e *Emitter) Offset() dmath.Vec2 {
	if e.mover == nil {
		return dmath.Vec2{}
	}
	return e.mover.Position()
}

type Boss struct {
	def   *Definition
	state State

	health    int
	maxHealth int
	phase     int

	body     *Mover
	emitters []*Emitter
	byName   map[string]*Emitter
	bodyOnly [1]*Emitter
	selected []*Emitter

	tracks       []*sequence.Sequencer
	phaseConfigs map[int][]*sequence.Config
	clock        *beat.Clock
	timer        *timerDriver

	pending  []pendingAttack
	spawner  Spawner
	resolver TargetResolver
	scripts  *PathScripts
	rng      *rand.Rand
	events   Queue
	warned   map[string]bool
}

// New builds an Idle boss at the origin. resolver may be nil, in which case
// aimed attacks use each emitter's facing.
func New(def *Definition, spawner Spawner, resolver TargetResolver) *Boss {
	if def == nil {
		def = &Definition{}
	}
	err := def.Validate()
	if errors.Is(err, ErrBadPhases) {
		log.Printf("Warning: boss %s: %v, ignoring phases", def.Name, err)
		def.Phases = nil
		err = def.Validate()
	}
	if err != nil {
		log.Printf("Warning: boss %s: %v", def.Name, err)
	}

	b := &Boss{
		def:          def,
		health:       def.MaxHealth,
		maxHealth:    def.MaxHealth,
		byName:       make(map[string]*Emitter),
		phaseConfigs: make(map[int][]*sequence.Config),
		spawner:      spawner,
		resolver:     resolver,
		scripts:      NewPathScripts(),
		rng:          rand.New(rand.NewSource(1)),
		warned:       make(map[string]bool),
	}
	b.body = NewMover(dmath.Vec2{}, b.scripts)
	b.bodyOnly[0] = &Emitter{Name: config.Boss.BodyEmitter, Facing: dmath.Vec2{X: 0, Y: 1}}
	for _, ed := range def.Emitters {
		if _, dup := b.byName[ed.Name]; dup || ed.Name == "" || ed.Name == config.Boss.BodyEmitter {
			continue
		}
		facing := ed.Facing.Normalized()
		if facing == (dmath.Vec2{}) {
			facing = dmath.Vec2{X: 0, Y: 1}
		}
		e := &Emitter{Name: ed.Name, Facing: facing, mover: NewMover(ed.Offset, b.scripts)}
		b.emitters = append(b.emitters, e)
		b.byName[e.Name] = e
	}
	return b
}

func (b *Boss) Definition() *Definition { return b.def }
func (b *Boss) State() State             { return b.state }
func (b *Boss) Health() int              { return b.health }
func (b *Boss) MaxHealth() int           { return b.maxHealth }
func (b *Boss) Phase() int               { return b.phase }
func (b *Boss) Events() *Queue           { return &b.events }
func (b *Boss) Emitters() []*Emitter     { return b.emitters }
func (b *Boss) Tracks() []*sequence.Sequencer {
	return b.tracks
}

// Seed reseeds the generator used by random pattern start angles.
func (b *Boss) Seed(seed int64) { b.rng.Seed(seed) }

func (b *Boss) Position() dmath.Vec2 { return b.body.Position() }

func (b *Boss) SetPosition(pos dmath.Vec2) { b.body.SetPosition(pos) }

// EmitterPosition returns the world position of the named emitter. The
// body name resolves to the body itself.
func (b *Boss) EmitterPosition(name string) (dmath.Vec2, bool) {
	e, ok := b.emitter(name)
	if !ok {
		return dmath.Vec2{}, false
	}
	return b.emitterPosition(e), true
}

func (b *Boss) emitter(name string) (*Emitter, bool) {
	if name == config.Boss.BodyEmitter {
		return b.bodyOnly[0], true
	}
	e, ok := b.byName[name]
	return e, ok
}

func (b *Boss) emitterPosition(e *Emitter) dmath.Vec2 {
	return b.body.Position().Add(e.Offset())
}

// AddTrack binds cfg to a new sequencer. Tracks added mid-fight join the
// running driver.
func (b *Boss) AddTrack(cfg *sequence.Config) *sequence.Sequencer {
	name := fmt.Sprintf("%s/track%d", b.def.Name, len(b.tracks))
	if cfg != nil && cfg.Name != "" {
		name = b.def.Name + "/" + cfg.Name
	}
	s := sequence.New(name)
	s.Bind(cfg, b)
	b.tracks = append(b.tracks, s)
	if b.state == StateFighting && b.clock != nil {
		b.clock.Subscribe(s)
	}
	return s
}

// SetPhaseConfigs makes the tracks switch to cfgs when phase is entered.
func (b *Boss) SetPhaseConfigs(phase int, cfgs ...*sequence.Config) {
	b.phaseConfigs[phase] = cfgs
}

// StartFight moves Idle to Fighting. In beat mode every track subscribes to
// clock; in timer mode the tracks are driven at the definition's interval
// and clock is ignored.
func (b *Boss) StartFight(clock *beat.Clock) error {
	if b.state != StateIdle {
		return fmt.Errorf("boss %s: cannot start fight while %s", b.def.Name, b.state)
	}
	b.state = StateFighting

	switch b.def.Mode {
	case ModeTimer:
		b.timer = &timerDriver{interval: b.def.TimerInterval}
	default:
		if clock == nil {
			log.Printf("Warning: boss %s: beat mode without a clock, no attacks will run", b.def.Name)
			return nil
		}
		b.clock = clock
		for _, s := range b.tracks {
			clock.Subscribe(s)
		}
	}
	return nil
}

// ApplyDamage lowers health by amount, clamped to [0, max]. It is ignored
// unless the boss is fighting. Each threshold crossed advances the phase by
// one, and the phase never goes back.
func (b *Boss) ApplyDamage(amount int) {
	if b.state != StateFighting || amount == 0 {
		return
	}
	prev := b.health
	b.health = max(0, min(b.maxHealth, b.health-amount))
	if b.health == prev {
		return
	}
	b.events.Push(b.event(EventHealthChanged))

	frac := float64(b.health) / float64(b.maxHealth)
	for b.phase < len(b.def.Phases) && frac <= b.def.Phases[b.phase] {
		b.phase++
		e := b.event(EventPhaseChanged)
		e.PrevPhase = b.phase - 1
		b.events.Push(e)
		if cfgs, ok := b.phaseConfigs[b.phase]; ok {
			b.rebind(cfgs)
		}
	}

	if b.health == 0 {
		b.defeat()
	}
}

func (b *Boss) event(kind EventKind) Event {
	return Event{Kind: kind, Health: b.health, MaxHealth: b.maxHealth, Phase: b.phase, PrevPhase: b.phase}
}

// rebind swaps every track onto the phase's configs, adding tracks when the
// phase has more configs than there are tracks. Surplus tracks go quiet.
func (b *Boss) rebind(cfgs []*sequence.Config) {
	for i, s := range b.tracks {
		if i < len(cfgs) {
			s.Bind(cfgs[i], b)
		} else {
			s.Bind(nil, b)
		}
	}
	for _, cfg := range cfgs[min(len(cfgs), len(b.tracks)):] {
		b.AddTrack(cfg)
	}
}

func (b *Boss) defeat() {
	b.state = StateDefeated
	if b.clock != nil {
		for _, s := range b.tracks {
			b.clock.Unsubscribe(s)
		}
		b.clock = nil
	}
	b.timer = nil
	clear(b.pending)
	b.pending = b.pending[:0]
	b.StopMovement()
	b.events.Push(b.event(EventDeath))
}

// StopMovement halts the body and every emitter where they are.
func (b *Boss) StopMovement() {
	b.body.Stop()
	for _, e := range b.emitters {
		e.mover.Stop()
	}
}

// Tick advances movement, pending volleys and the timer driver.
func (b *Boss) Tick(dt float64) {
	if b.state != StateFighting {
		return
	}
	b.body.Update(dt)
	for _, e := range b.emitters {
		e.mover.Update(dt)
	}
	b.tickAttacks(dt)
	if b.timer != nil {
		for _, index := range b.timer.advance(dt) {
			for _, s := range b.tracks {
				s.OnBeat(index)
			}
			if b.state != StateFighting {
				return
			}
		}
	}
}

// ExecuteAttack fires now, or queues the volley when it has a delay or
// repeats.
func (b *Boss) ExecuteAttack(a sequence.AttackAction) {
	if b.state != StateFighting {
		return
	}
	b.queueAttack(a)
}

// ExecuteMove starts a move on the body, or on the named emitter in
// body-local coordinates.
func (b *Boss) ExecuteMove(m sequence.MoveAction) {
	if b.state != StateFighting {
		return
	}
	if m.Target == "" || m.Target == config.Boss.BodyEmitter {
		b.body.Start(m)
		return
	}
	e, ok := b.byName[m.Target]
	if !ok {
		b.warnOnce("move:"+m.Target, "Warning: boss %s: move targets unknown emitter %q", b.def.Name, m.Target)
		return
	}
	e.mover.Start(m)
}

// Team, Alive, HasTag and TakeDamage let player projectiles hit the boss.
func (b *Boss) Team() projectile.Team { return projectile.TeamEnemy }

func (b *Boss) Alive() bool { return b.state != StateDefeated }

func (b *Boss) HasTag(tag string) bool {
	return tag == tags.ResolvBoss || tag == tags.ResolvEnemy
}

func (b *Boss) TakeDamage(amount int) { b.ApplyDamage(amount) }

// timerDriver issues synthetic beat indices at a fixed interval.
type timerDriver struct {
	interval float64
	elapsed  float64
	index    int
	fired    []int
}

func (t *timerDriver) advance(dt float64) []int {
	t.fired = t.fired[:0]
	if t.interval <= 0 {
		return nil
	}
	t.elapsed += dt
	for t.elapsed >= t.interval {
		t.elapsed -= t.interval
		t.index++
		t.fired = append(t.fired, t.index)
	}
	return t.fired
}
