package sequence

import (
	"errors"
	"fmt"
	"slices"
	"testing"
	"testing/fstest"

	"github.com/automoto/beatboss/audio"
	"github.com/automoto/beatboss/beat"
	"github.com/automoto/beatboss/pattern"
)

type callLog struct {
	calls []string
}

func (l *callLog) ExecuteAttack(a AttackAction) { l.calls = append(l.calls, "attack:"+a.Name) }
func (l *callLog) ExecuteMove(m MoveAction)     { l.calls = append(l.calls, "move:"+m.Target) }

func attacks(names ...string) []AttackAction {
	out := make([]AttackAction, len(names))
	for i, n := range names {
		out[i] = AttackAction{Name: n}
	}
	return out
}

func moves(targets ...string) []MoveAction {
	out := make([]MoveAction, len(targets))
	for i, t := range targets {
		out[i] = MoveAction{Kind: MoveToPosition, Target: t}
	}
	return out
}

func TestAttackRunsBeforeMove(t *testing.T) {
	l := &callLog{}
	s := New("test")
	s.Bind(&Config{Attacks: attacks("a"), Moves: moves("m")}, l)
	s.OnBeat(1)
	if !slices.Equal(l.calls, []string{"attack:a", "move:m"}) {
		t.Fatalf("got %v", l.calls)
	}
}

func TestEveryNBeats(t *testing.T) {
	tests := []struct {
		every int
		want  []int
	}{
		{0, []int{1, 2, 3, 4, 5, 6}},
		{1, []int{1, 2, 3, 4, 5, 6}},
		{2, []int{2, 4, 6}},
		{3, []int{3, 6}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("every %d", tt.every), func(t *testing.T) {
			var fired []int
			rec := &beatRecorder{fired: &fired}
			s := New("test")
			s.Bind(&Config{Attacks: attacks("a"), EveryNBeats: tt.every, LoopAttacks: true}, rec)
			for i := 1; i <= 6; i++ {
				rec.beat = i
				s.OnBeat(i)
			}
			if !slices.Equal(fired, tt.want) {
				t.Fatalf("fired on %v, want %v", fired, tt.want)
			}
		})
	}
}

type beatRecorder struct {
	beat  int
	fired *[]int
}

func (r *beatRecorder) ExecuteAttack(AttackAction) { *r.fired = append(*r.fired, r.beat) }
func (r *beatRecorder) ExecuteMove(MoveAction)     {}

func TestCursorsWrapOrPin(t *testing.T) {
	l := &callLog{}
	s := New("test")
	s.Bind(&Config{
		Attacks:     attacks("a", "b", "c"),
		Moves:       moves("x", "y"),
		LoopAttacks: true,
		LoopMoves:   false,
	}, l)
	for i := 1; i <= 5; i++ {
		s.OnBeat(i)
	}
	want := []string{
		"attack:a", "move:x",
		"attack:b", "move:y",
		"attack:c", "move:y",
		"attack:a", "move:y",
		"attack:b", "move:y",
	}
	if !slices.Equal(l.calls, want) {
		t.Fatalf("got %v", l.calls)
	}
	a, m := s.Cursors()
	if a >= 3 || m >= 2 {
		t.Fatalf("cursor out of range: attack=%d move=%d", a, m)
	}
}

func TestBeatHandledOnce(t *testing.T) {
	l := &callLog{}
	s := New("test")
	s.Bind(&Config{Attacks: attacks("a", "b"), LoopAttacks: true}, l)
	s.OnBeat(1)
	s.OnBeat(1)
	s.OnBeat(0)
	s.OnBeat(3)
	s.OnBeat(2)
	if !slices.Equal(l.calls, []string{"attack:a", "attack:b"}) {
		t.Fatalf("got %v", l.calls)
	}
	if s.LastHandled() != 3 {
		t.Fatalf("expected watermark 3, got %d", s.LastHandled())
	}
}

func TestSequencersKeepIndependentState(t *testing.T) {
	left, right := &callLog{}, &callLog{}
	a := New("left")
	b := New("right")
	a.Bind(&Config{Attacks: attacks("l1", "l2"), LoopAttacks: true}, left)
	b.Bind(&Config{Attacks: attacks("r1", "r2", "r3"), LoopAttacks: true, EveryNBeats: 2}, right)

	for i := 1; i <= 4; i++ {
		a.OnBeat(i)
		b.OnBeat(i)
	}
	if !slices.Equal(left.calls, []string{"attack:l1", "attack:l2", "attack:l1", "attack:l2"}) {
		t.Fatalf("left got %v", left.calls)
	}
	if !slices.Equal(right.calls, []string{"attack:r1", "attack:r2"}) {
		t.Fatalf("right got %v", right.calls)
	}
}

func TestRebindKeepsWatermark(t *testing.T) {
	l := &callLog{}
	s := New("test")
	s.Bind(&Config{Attacks: attacks("a", "b"), LoopAttacks: true}, l)
	s.OnBeat(1)
	s.OnBeat(2)
	s.Bind(&Config{Attacks: attacks("c")}, l)
	s.OnBeat(2)
	s.OnBeat(3)
	if !slices.Equal(l.calls, []string{"attack:a", "attack:b", "attack:c"}) {
		t.Fatalf("got %v", l.calls)
	}
	s.Reset()
	s.OnBeat(1)
	if len(l.calls) != 4 {
		t.Fatalf("reset should accept beat 1 again")
	}
}

func TestEmptyConfigIsNoop(t *testing.T) {
	l := &callLog{}
	s := New("test")
	s.Bind(&Config{}, l)
	s.OnBeat(1)
	if len(l.calls) != 0 {
		t.Fatalf("got %v", l.calls)
	}
}

func TestSelectsAll(t *testing.T) {
	if !(AttackAction{}).SelectsAll() || !(AttackAction{Emitters: []string{"*"}}).SelectsAll() {
		t.Fatalf("empty and wildcard selectors should select all")
	}
	if (AttackAction{Emitters: []string{"left"}}).SelectsAll() {
		t.Fatalf("named selector selected all")
	}
}

func TestLoad(t *testing.T) {
	fsys := fstest.MapFS{
		"sequences/opening.yaml": {Data: []byte(`
every_n_beats: 2
loop_attacks: true
attacks:
  - name: ring
    emitters: [left_hand, right_hand]
    template: orb
    pattern: {kind: circle, count: 12, start_angle: 15}
  - name: swirl
    pattern: {kind: custom, count: 4, script: ../scripts/swirl.tengo}
moves:
  - kind: two_point_loop
    target: left_hand
    position: {x: 120, y: 40}
    duration: 0.5
    loops: 2
    ease: inOutQuad
  - kind: custom
    script: ../scripts/wobble.tengo
    duration: 1
`)},
		"scripts/swirl.tengo":  {Data: []byte(`emissions = [{x: 0, y: 0, dx: 1, dy: 0}]`)},
		"scripts/wobble.tengo": {Data: []byte(`x = t * 10; y = 0`)},
		"sequences/bad.yaml":   {Data: []byte("moves:\n  - kind: teleport\n")},
	}

	cfg, err := Load(fsys, "sequences/opening.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Name != "opening" || cfg.EveryNBeats != 2 || !cfg.LoopAttacks || cfg.LoopMoves {
		t.Fatalf("unexpected config %+v", cfg)
	}
	ring := cfg.Attacks[0]
	if ring.Pattern.Kind != pattern.KindCircle || ring.Pattern.Count != 12 || len(ring.Emitters) != 2 {
		t.Fatalf("unexpected attack %+v", ring)
	}
	if cfg.Attacks[1].Pattern.Script == nil {
		t.Fatalf("custom pattern script not compiled")
	}
	if cfg.Moves[0].Kind != MoveTwoPointLoop || cfg.Moves[0].Position.X != 120 {
		t.Fatalf("unexpected move %+v", cfg.Moves[0])
	}
	if len(cfg.Moves[1].ScriptSource) == 0 {
		t.Fatalf("custom move script not read")
	}

	if _, err := Load(fsys, "sequences/bad.yaml"); !errors.Is(err, ErrUnknownMoveKind) {
		t.Fatalf("expected ErrUnknownMoveKind, got %v", err)
	}
}

func TestReplayedTrackRestartsSequence(t *testing.T) {
	src := audio.NewManualClock()
	src.Play()
	clock := beat.NewClock(beat.Tempo(60), src, beat.WithEpsilon(0))
	l := &callLog{}
	s := New("test")
	s.Bind(&Config{Attacks: attacks("a", "b", "c")}, l)
	clock.Subscribe(s)

	src.Advance(1)
	clock.Tick()
	if !slices.Equal(l.calls, []string{"attack:a", "attack:b"}) {
		t.Fatalf("got %v", l.calls)
	}

	src.Stop()
	clock.Tick()
	if s.LastHandled() != 0 {
		t.Fatalf("stopped track should rewind the watermark, got %d", s.LastHandled())
	}
	src.Play()
	clock.Tick()
	if !slices.Equal(l.calls, []string{"attack:a", "attack:b", "attack:a"}) {
		t.Fatalf("replay should start the sequence over, got %v", l.calls)
	}
}
