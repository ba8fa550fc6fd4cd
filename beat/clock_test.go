package beat

import (
	"errors"
	"slices"
	"testing"
	"testing/fstest"

	"github.com/automoto/beatboss/audio"
)

type recorder struct {
	beats []int
	onBeat func(int)
}

func (r *recorder) OnBeat(i int) {
	r.beats = append(r.beats, i)
	if r.onBeat != nil {
		r.onBeat(i)
	}
}

func seq(from, to int) []int {
	out := make([]int, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}

func TestTempoBeatsAreGaplessUnderSlowTicks(t *testing.T) {
	tests := []struct {
		name string
		tick float64
	}{
		{"every frame", 1.0 / 60},
		{"slow", 0.35},
		{"hitch", 1.7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := audio.NewManualClock()
			src.Play()
			c := NewClock(Tempo(120), src, WithEpsilon(0.001))
			r := &recorder{}
			c.Subscribe(r)

			for src.Elapsed() < 5 {
				c.Tick()
				src.Advance(tt.tick)
			}
			c.Tick()

			want := seq(1, c.LastBeat())
			if !slices.Equal(r.beats, want) {
				t.Fatalf("beats %v, want %v", r.beats, want)
			}
			if c.LastBeat() < 10 {
				t.Fatalf("expected at least 10 beats in 5s at 120bpm, got %d", c.LastBeat())
			}
		})
	}
}

func TestHitchDeliversAllMissedBeatsInOneTick(t *testing.T) {
	src := audio.NewManualClock()
	src.Play()
	c := NewClock(Tempo(60), src, WithEpsilon(0))
	r := &recorder{}
	c.Subscribe(r)

	c.Tick()
	src.Advance(3.5)
	c.Tick()
	if !slices.Equal(r.beats, []int{1, 2, 3, 4}) {
		t.Fatalf("got %v", r.beats)
	}
}

func TestClockDormantUntilAudioStarts(t *testing.T) {
	src := audio.NewManualClock()
	c := NewClock(Tempo(120), src)
	r := &recorder{}
	c.Subscribe(r)

	for i := 0; i < 10; i++ {
		src.Advance(0.5)
		c.Tick()
	}
	if len(r.beats) != 0 || c.Live() {
		t.Fatalf("clock fired before audio was live: %v", r.beats)
	}

	src.Play()
	c.Tick()
	if !c.Live() {
		t.Fatalf("expected clock to go live")
	}
	if !slices.Equal(r.beats, []int{1}) {
		t.Fatalf("expected first beat on start, got %v", r.beats)
	}
}

func TestOffsetScheduleStopsWithoutLoop(t *testing.T) {
	src := audio.NewManualClock()
	src.Play()
	c := NewClock(Schedule{Offsets: []float64{0.5, 1.0, 1.25}}, src, WithEpsilon(0))
	r := &recorder{}
	c.Subscribe(r)

	for i := 0; i < 40; i++ {
		src.Advance(0.1)
		c.Tick()
	}
	if !slices.Equal(r.beats, []int{1, 2, 3}) {
		t.Fatalf("got %v", r.beats)
	}
	if !c.Finished() {
		t.Fatalf("expected schedule to finish")
	}
}

func TestOffsetScheduleLoopKeepsIndicesIncreasing(t *testing.T) {
	src := audio.NewManualClock()
	src.Play()
	// period = 1.0 + (1.0 - 0.5) = 1.5
	c := NewClock(Schedule{Offsets: []float64{0, 0.5, 1.0}, Loop: true}, src, WithEpsilon(0))
	r := &recorder{}
	c.Subscribe(r)

	c.Tick()
	src.Advance(1.5)
	c.Tick()
	if !slices.Equal(r.beats, []int{1, 2, 3, 4}) {
		t.Fatalf("got %v", r.beats)
	}
	src.Advance(0.5)
	c.Tick()
	if !slices.Equal(r.beats, []int{1, 2, 3, 4, 5}) {
		t.Fatalf("got %v", r.beats)
	}
}

func TestLoopLengthOverridesPeriod(t *testing.T) {
	src := audio.NewManualClock()
	src.Play()
	c := NewClock(Schedule{Offsets: []float64{0, 1}, Loop: true, LoopLength: 4}, src, WithEpsilon(0))
	if got := c.CurrentBeatIndex(src.DSPNow() + 3.9); got != 0 {
		t.Fatalf("index before start should be 0, got %d", got)
	}
	c.Tick()
	if got := c.CurrentBeatIndex(src.DSPNow() + 3.9); got != 2 {
		t.Fatalf("expected 2 beats by 3.9s, got %d", got)
	}
	if got := c.CurrentBeatIndex(src.DSPNow() + 4); got != 3 {
		t.Fatalf("expected loop to restart at 4s, got %d", got)
	}
}

func TestDuplicateOffsetsFireOnce(t *testing.T) {
	src := audio.NewManualClock()
	src.Play()
	c := NewClock(Schedule{Offsets: []float64{0, 0.5, 0.5, 1}}, src, WithEpsilon(0))
	r := &recorder{}
	c.Subscribe(r)
	src.Advance(2)
	c.Tick()
	if !slices.Equal(r.beats, []int{1, 2, 3}) {
		t.Fatalf("got %v", r.beats)
	}
}

func TestCurrentBeatIndexMatchesDelivery(t *testing.T) {
	src := audio.NewManualClock()
	src.Play()
	c := NewClock(Tempo(140), src)
	for i := 0; i < 300; i++ {
		c.Tick()
		if got := c.CurrentBeatIndex(src.DSPNow()); got != c.LastBeat() {
			t.Fatalf("step %d: CurrentBeatIndex %d, delivered %d", i, got, c.LastBeat())
		}
		src.Advance(0.037)
	}
}

func TestPauseShiftsScheduleInsteadOfBursting(t *testing.T) {
	src := audio.NewManualClock()
	src.Play()
	c := NewClock(Tempo(60), src, WithEpsilon(0))
	r := &recorder{}
	c.Subscribe(r)

	c.Tick()
	src.Advance(1.5)
	c.Tick()
	c.Pause()
	src.Advance(10)
	c.Tick()
	if !slices.Equal(r.beats, []int{1, 2}) {
		t.Fatalf("beats fired while paused: %v", r.beats)
	}

	c.Resume()
	c.Tick()
	if !slices.Equal(r.beats, []int{1, 2}) {
		t.Fatalf("resume burst beats: %v", r.beats)
	}
	src.Advance(0.5)
	c.Tick()
	if !slices.Equal(r.beats, []int{1, 2, 3}) {
		t.Fatalf("expected beat 3 half a beat after resume, got %v", r.beats)
	}
}

func TestUnsubscribeTakesEffectNextBeat(t *testing.T) {
	src := audio.NewManualClock()
	src.Play()
	c := NewClock(Tempo(60), src, WithEpsilon(0))

	second := &recorder{}
	first := &recorder{}
	first.onBeat = func(i int) {
		if i == 2 {
			c.Unsubscribe(second)
		}
	}
	c.Subscribe(first)
	c.Subscribe(second)

	src.Advance(3)
	c.Tick()
	if !slices.Equal(first.beats, []int{1, 2, 3, 4}) {
		t.Fatalf("first got %v", first.beats)
	}
	if !slices.Equal(second.beats, []int{1, 2}) {
		t.Fatalf("second got %v", second.beats)
	}
}

func TestStopSilencesUntilStart(t *testing.T) {
	src := audio.NewManualClock()
	src.Play()
	c := NewClock(Tempo(60), src, WithEpsilon(0))
	r := &recorder{}
	c.Subscribe(r)
	c.Tick()
	c.Stop()
	src.Advance(5)
	c.Tick()
	if len(r.beats) != 1 {
		t.Fatalf("stopped clock fired: %v", r.beats)
	}
	c.Start(src.DSPNow())
	c.Tick()
	if c.LastBeat() != 1 {
		t.Fatalf("restart should begin from beat 1, got %d", c.LastBeat())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		s    Schedule
		want error
	}{
		{"tempo", Tempo(90), nil},
		{"offsets", Schedule{Offsets: []float64{0, 1, 1, 2}}, nil},
		{"empty", Schedule{}, ErrEmptySchedule},
		{"both", Schedule{BPM: 90, Offsets: []float64{1}}, ErrAmbiguousSchedule},
		{"unsorted", Schedule{Offsets: []float64{0, 2, 1}}, ErrUnsortedOffsets},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.s.Validate(); !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoadSchedule(t *testing.T) {
	fsys := fstest.MapFS{
		"schedules/song.yaml": {Data: []byte("offsets: [0.0, 0.5, 1.25]\nloop: true\nloop_length: 2\n")},
		"schedules/bad.yaml":  {Data: []byte("offsets: [1.0, 0.5]\n")},
	}
	s, err := LoadSchedule(fsys, "schedules/song.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !s.Loop || s.LoopLength != 2 || len(s.Offsets) != 3 {
		t.Fatalf("unexpected schedule %+v", s)
	}
	if _, err := LoadSchedule(fsys, "schedules/bad.yaml"); !errors.Is(err, ErrUnsortedOffsets) {
		t.Fatalf("expected ErrUnsortedOffsets, got %v", err)
	}
}

type rewindRecorder struct {
	recorder
	rewinds int
}

func (r *rewindRecorder) OnRewind() {
	r.rewinds++
}

func TestReplayStartsFreshSchedule(t *testing.T) {
	src := audio.NewManualClock()
	src.Play()
	c := NewClock(Tempo(60), src, WithEpsilon(0))
	r := &rewindRecorder{}
	c.Subscribe(r)

	for src.Elapsed() < 5 {
		c.Tick()
		src.Advance(0.25)
	}
	if c.LastBeat() != 5 {
		t.Fatalf("expected 5 beats before stop, got %d", c.LastBeat())
	}

	src.Stop()
	src.Advance(10)
	c.Tick()
	if c.Live() || c.LastBeat() != 0 {
		t.Fatalf("stopped source should discard the schedule, last=%d", c.LastBeat())
	}
	if r.rewinds != 1 {
		t.Fatalf("expected one rewind, got %d", r.rewinds)
	}

	r.beats = nil
	src.Play()
	c.Tick()
	if !slices.Equal(r.beats, []int{1}) {
		t.Fatalf("replay delivered %v, want [1]", r.beats)
	}
	src.Advance(1)
	c.Tick()
	if !slices.Equal(r.beats, []int{1, 2}) {
		t.Fatalf("got %v after one second of replay", r.beats)
	}
}

func TestNewSourceStartRepinsSchedule(t *testing.T) {
	src := audio.NewManualClock()
	src.Play()
	c := NewClock(Tempo(60), src, WithEpsilon(0))
	r := &rewindRecorder{}
	c.Subscribe(r)

	src.Advance(3)
	c.Tick()
	if c.LastBeat() != 4 {
		t.Fatalf("expected 4 beats, got %d", c.LastBeat())
	}

	// the track looped: playback restarts without a stopped tick in between
	src.PlayAt(src.DSPNow())
	c.Tick()
	if c.LastBeat() != 1 || r.rewinds != 1 {
		t.Fatalf("expected a fresh beat 1 after restart, last=%d rewinds=%d", c.LastBeat(), r.rewinds)
	}
	if !slices.Equal(r.beats, []int{1, 2, 3, 4, 1}) {
		t.Fatalf("got %v", r.beats)
	}
}

func TestFinishedScheduleReplays(t *testing.T) {
	src := audio.NewManualClock()
	src.Play()
	c := NewClock(Schedule{Offsets: []float64{0, 0.5}}, src, WithEpsilon(0))

	src.Advance(2)
	c.Tick()
	c.Tick()
	if !c.Finished() {
		t.Fatalf("expected finished schedule")
	}
	src.Stop()
	c.Tick()
	src.Play()
	c.Tick()
	if c.Finished() || c.LastBeat() != 1 {
		t.Fatalf("replay should start over, finished=%v last=%d", c.Finished(), c.LastBeat())
	}
}
