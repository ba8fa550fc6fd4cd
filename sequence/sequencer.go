// Package sequence drives attack and movement lists from beat events.
package sequence

import "log"

// Config holds two independently cycling lists of actions.
type Config struct {
	Name        string         `yaml:"name"`
	Attacks     []AttackAction `yaml:"attacks"`
	Moves       []MoveAction   `yaml:"moves"`
	LoopAttacks bool           `yaml:"loop_attacks"`
	LoopMoves   bool           `yaml:"loop_moves"`
	EveryNBeats int            `yaml:"every_n_beats"`
}

// Executor carries out actions. The boss implements it.
type Executor interface {
	ExecuteAttack(a AttackAction)
	ExecuteMove(m MoveAction)
}

// Sequencer advances an attack cursor and a move cursor on every eligible
// beat. Several sequencers can share one clock; each keeps its own cursors
// and watermark.
type Sequencer struct {
	name string
	cfg  *Config
	exec Executor

	attackCursor int
	moveCursor   int
	lastHandled  int
}

func New(name string) *Sequencer {
	return &Sequencer{name: name}
}

func (s *Sequencer) Name() string { return s.name }

// Bind installs cfg and exec and rewinds both cursors. The beat watermark
// is kept so a rebind mid-fight never replays a beat.
func (s *Sequencer) Bind(cfg *Config, exec Executor) {
	s.cfg = cfg
	s.exec = exec
	s.attackCursor = 0
	s.moveCursor = 0
	if cfg != nil && len(cfg.Attacks) == 0 && len(cfg.Moves) == 0 {
		log.Printf("Warning: sequence %s has no attacks or moves", s.name)
	}
}

func (s *Sequencer) Config() *Config { return s.cfg }

// OnBeat handles each beat index once. On beats divisible by EveryNBeats
// it executes the attack, then the move, then advances both cursors.
func (s *Sequencer) OnBeat(index int) {
	if index <= s.lastHandled {
		return
	}
	s.lastHandled = index
	if s.cfg == nil || s.exec == nil {
		return
	}
	if n := s.cfg.EveryNBeats; n > 1 && index%n != 0 {
		return
	}

	if len(s.cfg.Attacks) > 0 {
		s.exec.ExecuteAttack(s.cfg.Attacks[s.attackCursor])
		s.attackCursor = advance(s.attackCursor, len(s.cfg.Attacks), s.cfg.LoopAttacks)
	}
	if len(s.cfg.Moves) > 0 {
		s.exec.ExecuteMove(s.cfg.Moves[s.moveCursor])
		s.moveCursor = advance(s.moveCursor, len(s.cfg.Moves), s.cfg.LoopMoves)
	}
}

// advance moves a cursor forward, wrapping when loop is set and otherwise
// staying on the last element.
func advance(cursor, n int, loop bool) int {
	cursor++
	if cursor < n {
		return cursor
	}
	if loop {
		return 0
	}
	return n - 1
}

// LastHandled is the highest beat index this sequencer has seen.
func (s *Sequencer) LastHandled() int { return s.lastHandled }

func (s *Sequencer) Cursors() (attack, move int) {
	return s.attackCursor, s.moveCursor
}

// Reset rewinds the cursors and the watermark for a fresh clock.
func (s *Sequencer) Reset() {
	s.attackCursor = 0
	s.moveCursor = 0
	s.lastHandled = 0
}

// OnRewind restarts the sequence when the beat clock starts over.
func (s *Sequencer) OnRewind() {
	s.Reset()
}
