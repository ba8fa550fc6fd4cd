package boss

import (
	"github.com/automoto/beatboss/config"
	"github.com/automoto/beatboss/sequence"
	"github.com/automoto/beatboss/shared/gamemath"
	"github.com/tanema/gween"
	dmath "github.com/yohamta/donburi/features/math"
)

type moverState int

const (
	moverIdle moverState = iota
	moverWaiting
	moverInterpolating
)

func (s moverState) String() string {
	switch s {
	case moverWaiting:
		return "waiting"
	case moverInterpolating:
		return "interpolating"
	}
	return "idle"
}

// Mover runs one MoveAction at a time for the body or one emitter. It is
// Idle, Waiting out a delay, or Interpolating along a leg of the path.
type Mover struct {
	state moverState
	pos   dmath.Vec2

	remaining float64
	action    sequence.MoveAction
	start     dmath.Vec2
	leg       int
	legs      int
	path      func(t float64) dmath.Vec2
	tween     *gween.Tween

	scripts *PathScripts
}

func NewMover(pos dmath.Vec2, scripts *PathScripts) *Mover {
	return &Mover{pos: pos, scripts: scripts}
}

func (m *Mover) Position() dmath.Vec2 { return m.pos }

// SetPosition places the mover without animating. A running move continues
// from the new position on its next leg.
func (m *Mover) SetPosition(pos dmath.Vec2) { m.pos = pos }

func (m *Mover) Busy() bool { return m.state != moverIdle }

// Start replaces any running move. The path is computed when the delay
// expires so it starts from wherever the mover is then.
func (m *Mover) Start(action sequence.MoveAction) {
	if action.Kind == sequence.MoveNone {
		return
	}
	m.action = action
	m.tween = nil
	m.path = nil
	if action.Delay > 0 {
		m.state = moverWaiting
		m.remaining = action.Delay
		return
	}
	m.begin()
}

// Stop halts at the current position.
func (m *Mover) Stop() {
	m.state = moverIdle
	m.tween = nil
	m.path = nil
}

// Update advances the running move by dt and returns the new position.
func (m *Mover) Update(dt float64) dmath.Vec2 {
	switch m.state {
	case moverWaiting:
		m.remaining -= dt
		if m.remaining > 0 {
			break
		}
		overflow := -m.remaining
		m.begin()
		if m.state == moverInterpolating && overflow > 0 {
			m.step(overflow)
		}
	case moverInterpolating:
		m.step(dt)
	}
	return m.pos
}

func (m *Mover) begin() {
	m.start = m.pos
	m.leg = 0
	m.legs = 1
	if m.action.Kind == sequence.MoveTwoPointLoop {
		loops := m.action.Loops
		if loops < 1 {
			loops = 1
		}
		m.legs = 2 * loops
	}
	if !m.beginLeg() {
		m.state = moverIdle
		return
	}
	if m.action.Duration <= 0 {
		m.finishAll()
		return
	}
	m.state = moverInterpolating
}

// beginLeg builds the path for the current leg.
func (m *Mover) beginLeg() bool {
	a := m.action
	from := m.pos
	switch a.Kind {
	case sequence.MoveToPosition:
		m.path = lerpPath(from, a.Position)
	case sequence.MoveByDirection:
		dir := a.Direction.Normalized()
		m.path = lerpPath(from, from.Add(dir.MulScalar(a.Distance)))
	case sequence.MoveCircle:
		m.path = circlePath(from, a.Center, a.Radius, a.Degrees)
	case sequence.MoveTwoPointLoop:
		if m.leg%2 == 0 {
			m.path = lerpPath(from, a.Position)
		} else {
			m.path = lerpPath(from, m.start)
		}
	case sequence.MoveCustom:
		if m.scripts == nil || len(a.ScriptSource) == 0 {
			return false
		}
		m.path = m.scripts.Path(a.Script, a.ScriptSource, from)
		if m.path == nil {
			return false
		}
	default:
		return false
	}
	if a.Duration > 0 {
		name := a.Ease
		if name == "" {
			name = config.Boss.DefaultEase
		}
		m.tween = gween.New(0, 1, float32(a.Duration), Easing(name))
	}
	return true
}

func (m *Mover) step(dt float64) {
	progress, done := m.tween.Update(float32(dt))
	m.pos = m.path(float64(progress))
	if !done {
		return
	}
	m.pos = m.path(1)
	m.leg++
	if m.leg >= m.legs || !m.beginLeg() {
		m.Stop()
	}
}

// finishAll jumps through every leg of a zero-duration move.
func (m *Mover) finishAll() {
	for {
		m.pos = m.path(1)
		m.leg++
		if m.leg >= m.legs || !m.beginLeg() {
			break
		}
	}
	m.Stop()
}

func lerpPath(from, to dmath.Vec2) func(float64) dmath.Vec2 {
	d := to.Sub(from)
	return func(t float64) dmath.Vec2 {
		return from.Add(d.MulScalar(t))
	}
}

// circlePath orbits center by degrees. A positive radius is eased toward
// from the current one over the move; zero keeps the current radius.
func circlePath(from, center dmath.Vec2, radius, degrees float64) func(float64) dmath.Vec2 {
	rel := from.Sub(center)
	r0 := rel.Magnitude()
	r1 := r0
	if radius > 0 {
		r1 = radius
	}
	a0 := gamemath.Angle(rel)
	sweep := gamemath.DegToRad(degrees)
	return func(t float64) dmath.Vec2 {
		r := r0 + (r1-r0)*t
		return center.Add(gamemath.FromAngle(a0+sweep*t).MulScalar(r))
	}
}
