// Package session owns one fight: the world, arena, projectile registry,
// beat clock and boss, advanced together one tick at a time.
package session

import (
	"fmt"
	"log"
	"slices"

	"github.com/automoto/beatboss/archetypes"
	"github.com/automoto/beatboss/arena"
	"github.com/automoto/beatboss/beat"
	"github.com/automoto/beatboss/boss"
	"github.com/automoto/beatboss/components"
	"github.com/automoto/beatboss/config"
	"github.com/automoto/beatboss/projectile"
	"github.com/automoto/beatboss/sequence"
	"github.com/automoto/beatboss/tags"
	"github.com/solarlune/resolv"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
	dmath "github.com/yohamta/donburi/features/math"
)

type Outcome int

const (
	Running Outcome = iota
	Won
	Lost
)

func (o Outcome) String() string {
	switch o {
	case Won:
		return "won"
	case Lost:
		return "lost"
	}
	return "running"
}

type Options struct {
	Arena          *arena.Arena // nil builds a plain rectangle
	Boss           *boss.Definition
	Sequences      []*sequence.Config
	PhaseSequences map[int][]*sequence.Config
	Templates      []*projectile.Template
	Schedule       beat.Schedule
	Audio          beat.AudioSource
	ClockOptions   []beat.Option
	Seed           int64
	AutoFire       bool // players shoot at the boss on their own
}

// Stats counts what happened so far.
type Stats struct {
	Spawned      int
	TargetHits   int
	BoundaryHits int
	PlayerHits   int
}

type Session struct {
	ecs      *ecs.ECS
	arena    *arena.Arena
	registry *projectile.Registry
	clock    *beat.Clock
	boss     *boss.Boss
	targets  *Targets
	audio    beat.AudioSource

	bossEntry *donburi.Entry
	shot      *projectile.Template
	autoFire  bool
	listeners []boss.Listener

	dt      float64
	paused  bool
	outcome Outcome
	stats   Stats
}

func New(opts Options) (*Session, error) {
	a := opts.Arena
	if a == nil {
		a = arena.NewRect(config.Arena.Width, config.Arena.Height)
	}
	s := &Session{
		ecs:      ecs.NewECS(donburi.NewWorld()),
		arena:    a,
		targets:  &Targets{},
		audio:    opts.Audio,
		autoFire: opts.AutoFire,
	}
	world := s.ecs.World

	arenaEntry := archetypes.Arena.Spawn(world)
	components.Arena.SetValue(arenaEntry, components.ArenaData{Arena: a})

	s.registry = projectile.NewRegistry(a.Space(), s.targets)
	for _, tmpl := range opts.Templates {
		s.registry.Register(tmpl)
	}
	if tmpl, ok := s.registry.Template(config.Player.ShotTemplate); ok {
		s.shot = tmpl
	}

	s.clock = beat.NewClock(opts.Schedule, opts.Audio, opts.ClockOptions...)

	def := placeEmitters(opts.Boss, a)
	s.boss = boss.New(def, (*spawnCounter)(s), s.targets)
	s.boss.Seed(opts.Seed)
	s.boss.SetPosition(a.BossSpawn())
	for _, cfg := range opts.Sequences {
		s.boss.AddTrack(cfg)
	}
	for phase, cfgs := range opts.PhaseSequences {
		s.boss.SetPhaseConfigs(phase, cfgs...)
	}
	s.targets.boss = s.boss
	s.spawnBoss()

	s.ecs.AddSystem(s.updateClock)
	s.ecs.AddSystem(s.updateBoss)
	s.ecs.AddSystem(s.updatePlayers)
	s.ecs.AddSystem(s.updateProjectiles)
	s.ecs.AddSystem(s.updateCollisions)
	s.ecs.AddSystem(s.updateDamage)
	s.ecs.AddSystem(s.updateEvents)

	if len(opts.Sequences) == 0 {
		log.Printf("Warning: session for %s has no attack sequences", def.Name)
	}
	return s, nil
}

// placeEmitters copies def and fills emitter offsets the arena map places
// and the definition leaves at zero.
func placeEmitters(def *boss.Definition, a *arena.Arena) *boss.Definition {
	if def == nil {
		return &boss.Definition{Name: "boss"}
	}
	d := *def
	d.Emitters = slices.Clone(def.Emitters)
	for i, e := range d.Emitters {
		if pos, ok := a.Emitter(e.Name); ok && e.Offset == (dmath.Vec2{}) {
			d.Emitters[i].Offset = pos.Sub(a.BossSpawn())
		}
	}
	return &d
}

func (s *Session) spawnBoss() {
	world := s.ecs.World
	def := s.boss.Definition()

	s.bossEntry = archetypes.Boss.Spawn(world)
	components.Boss.SetValue(s.bossEntry, components.BossData{Boss: s.boss})
	components.Health.SetValue(s.bossEntry, components.HealthData{Current: s.boss.Health(), Max: s.boss.MaxHealth()})
	components.Object.SetValue(s.bossEntry, components.ObjectData{Object: s.collider(def.Hitbox, s.boss, tags.ResolvBoss, tags.ResolvEnemy)})
	components.Object.Get(s.bossEntry).MoveCenter(s.boss.Position())

	for _, e := range s.boss.Emitters() {
		entry := archetypes.Emitter.Spawn(world)
		pos, _ := s.boss.EmitterPosition(e.Name)
		components.Emitter.SetValue(entry, components.EmitterData{Name: e.Name, Position: pos})
	}
}

func (s *Session) collider(size float64, data interface{}, tagNames ...string) *resolv.Object {
	obj := resolv.NewObject(0, 0, size, size, tagNames...)
	obj.SetShape(resolv.NewRectangle(0, 0, size, size))
	obj.Data = data
	s.arena.Space().Add(obj)
	return obj
}

// AddPlayer places a Player-team target at pos.
func (s *Session) AddPlayer(pos dmath.Vec2) *donburi.Entry {
	entry := archetypes.Player.Spawn(s.ecs.World)
	target := &playerTarget{entry: entry}

	components.Player.SetValue(entry, components.PlayerData{
		Index:        len(s.targets.players),
		FireCooldown: config.Player.FireInterval,
	})
	components.Health.SetValue(entry, components.HealthData{Current: config.Player.Health, Max: config.Player.Health})
	components.Object.SetValue(entry, components.ObjectData{Object: s.collider(config.Player.HitboxSize, target, tags.ResolvPlayer)})
	components.Object.Get(entry).MoveCenter(pos)

	s.targets.players = append(s.targets.players, target)
	return entry
}

// RemovePlayer takes a player out of the fight. Projectiles already homing
// on it lose their target on their next retarget.
func (s *Session) RemovePlayer(entry *donburi.Entry) {
	i := s.PlayerIndex(entry)
	if i < 0 {
		return
	}
	s.targets.players = slices.Delete(s.targets.players, i, i+1)
	if entry.Valid() {
		if obj := components.Object.Get(entry); obj.Object != nil {
			s.arena.Space().Remove(obj.Object)
		}
		s.ecs.World.Remove(entry.Entity())
	}
}

// SetPlayerVelocity sets how fast player i drifts. Players reverse when
// the next step would enter a wall.
func (s *Session) SetPlayerVelocity(i int, v dmath.Vec2) {
	if i < 0 || i >= len(s.targets.players) {
		return
	}
	components.Player.Get(s.targets.players[i].entry).Velocity = v
}

// Start begins the fight. In beat mode the boss follows the clock, which
// goes live once the audio source is playing.
func (s *Session) Start() error {
	if err := s.boss.StartFight(s.clock); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	return nil
}

// Tick advances one simulation step: clock, boss, players, projectiles,
// collisions, damage, then the event drain.
func (s *Session) Tick(dt float64) {
	if s.paused || dt <= 0 {
		return
	}
	s.dt = dt
	s.ecs.Update()
}

// OnEvent registers l for boss events. Listeners run during the drain at
// the end of each tick, in registration order.
func (s *Session) OnEvent(l boss.Listener) {
	s.listeners = append(s.listeners, l)
}

type pausable interface {
	SetPaused(bool)
}

// Pause stops ticks and beat delivery. An audio source that can pause is
// paused with it.
func (s *Session) Pause() {
	if s.paused {
		return
	}
	s.paused = true
	if p, ok := s.audio.(pausable); ok {
		p.SetPaused(true)
	}
	s.clock.Pause()
}

// Resume continues where Pause left off; the beat schedule shifts by the
// paused time.
func (s *Session) Resume() {
	if !s.paused {
		return
	}
	s.paused = false
	if p, ok := s.audio.(pausable); ok {
		p.SetPaused(false)
	}
	s.clock.Resume()
}

func (s *Session) Paused() bool { return s.paused }

// ReloadSequence rebinds every track running a config named cfg.Name.
// Cursors restart; beats already handled are not replayed.
func (s *Session) ReloadSequence(cfg *sequence.Config) bool {
	reloaded := false
	for _, t := range s.boss.Tracks() {
		if cur := t.Config(); cur != nil && cur.Name == cfg.Name {
			t.Bind(cfg, s.boss)
			reloaded = true
		}
	}
	if reloaded {
		log.Printf("Reloaded sequence %s", cfg.Name)
	}
	return reloaded
}

func (s *Session) World() donburi.World            { return s.ecs.World }
func (s *Session) Arena() *arena.Arena             { return s.arena }
func (s *Session) Registry() *projectile.Registry  { return s.registry }
func (s *Session) Clock() *beat.Clock              { return s.clock }
func (s *Session) Boss() *boss.Boss                { return s.boss }
func (s *Session) Targets() *Targets               { return s.targets }
func (s *Session) Outcome() Outcome                { return s.outcome }
func (s *Session) Stats() Stats                    { return s.stats }
func (s *Session) Players() int                    { return len(s.targets.players) }
func (s *Session) PlayerEntry(i int) *donburi.Entry { return s.targets.players[i].entry }

// PlayerIndex returns the slot of entry among current players, -1 when it
// is not one.
func (s *Session) PlayerIndex(entry *donburi.Entry) int {
	return slices.IndexFunc(s.targets.players, func(p *playerTarget) bool { return p.entry == entry })
}

// spawnCounter is the boss's view of the registry; it counts spawns.
type spawnCounter Session

func (c *spawnCounter) Template(name string) (*projectile.Template, bool) {
	return c.registry.Template(name)
}

func (c *spawnCounter) Spawn(tmpl *projectile.Template, origin, dir dmath.Vec2, team projectile.Team) *projectile.Projectile {
	c.stats.Spawned++
	return c.registry.Spawn(tmpl, origin, dir, team)
}
