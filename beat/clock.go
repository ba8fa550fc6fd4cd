// Package beat derives beat indices from an audio hardware clock.
//
// The clock samples absolute audio time every tick instead of accumulating
// frame deltas, so slow or uneven frames never skip or repeat a beat: every
// beat whose time has passed fires, in order, on the next tick.
package beat

import (
	"log"
	"slices"

	"github.com/automoto/beatboss/config"
)

// AudioSource is the audio collaborator the clock polls. DSPStartTime is 0
// until playback has actually begun.
type AudioSource interface {
	DSPStartTime() float64
	DSPNow() float64
}

// Subscriber receives beat indices in strictly increasing order, starting
// at 1. Implementations must be comparable (usually pointers) so they can be
// unsubscribed.
type Subscriber interface {
	OnBeat(index int)
}

// Rewinder is implemented by subscribers that keep their own beat
// watermark. OnRewind is called when the clock discards delivered beats, so
// the next index seen starts again from 1.
type Rewinder interface {
	OnRewind()
}

type Option func(*Clock)

// WithEpsilon sets how far ahead of now a beat may be and still fire.
func WithEpsilon(seconds float64) Option {
	return func(c *Clock) {
		c.epsilon = seconds
	}
}

// WithLatencyOffset delays beats by the measured output latency.
func WithLatencyOffset(seconds float64) Option {
	return func(c *Clock) {
		c.latency = seconds
	}
}

type Clock struct {
	schedule Schedule
	offsets  []float64
	period   float64
	source   AudioSource
	epsilon  float64
	latency  float64

	start    float64
	adopted  float64
	started  bool
	invalid  bool
	halted   bool
	finished bool
	last     int

	paused   bool
	pausedAt float64

	subs []Subscriber
}

// NewClock builds a dormant clock. It goes live on Start, or on the first
// tick where source reports a non-zero start time.
func NewClock(schedule Schedule, source AudioSource, opts ...Option) *Clock {
	c := &Clock{
		schedule: schedule,
		source:   source,
		epsilon:  config.Beat.Epsilon,
	}
	if !schedule.IsTempo() {
		c.offsets = strictOffsets(schedule.Offsets)
		c.schedule.Offsets = c.offsets
		if schedule.Loop {
			c.period = c.schedule.period()
			if c.period <= 0 {
				log.Printf("Warning: beat schedule loop has no positive period, playing once")
				c.schedule.Loop = false
			}
		}
	}
	if err := c.schedule.Validate(); err != nil {
		log.Printf("Warning: %v; clock stays dormant", err)
		c.invalid = true
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start pins the schedule to startTime (audio seconds) and clears any beats
// already delivered.
func (c *Clock) Start(startTime float64) {
	c.rewind()
	c.start = startTime
	if c.source != nil {
		c.adopted = c.source.DSPStartTime()
	}
	c.started = true
	c.halted = false
	c.finished = false
	c.last = 0
	c.paused = false
}

// Stop discards schedule state. The clock stays silent until Start.
func (c *Clock) Stop() {
	c.reset()
	c.halted = true
}

func (c *Clock) reset() {
	c.rewind()
	c.started = false
	c.finished = false
	c.adopted = 0
	c.last = 0
	c.paused = false
}

// Live reports whether beat indices are meaningful: the audio source is
// playing and the schedule is pinned.
func (c *Clock) Live() bool {
	return c.started && !c.halted && !c.invalid && c.source != nil && c.source.DSPStartTime() > 0
}

// Finished reports whether a non-looping offset schedule has delivered its
// last beat.
func (c *Clock) Finished() bool {
	return c.finished
}

// LastBeat is the most recently delivered beat index, 0 before the first.
func (c *Clock) LastBeat() int {
	return c.last
}

func (c *Clock) Paused() bool {
	return c.paused
}

// Pause freezes beat delivery.
func (c *Clock) Pause() {
	if c.paused {
		return
	}
	c.paused = true
	c.pausedAt = c.now()
}

// Resume shifts the schedule by the audio time that passed while paused,
// so beats continue from where they stopped instead of bursting.
func (c *Clock) Resume() {
	if !c.paused {
		return
	}
	c.paused = false
	if c.started {
		c.start += c.now() - c.pausedAt
	}
}

// Subscribe adds s to the delivery list. The change applies from the next
// beat delivered.
func (c *Clock) Subscribe(s Subscriber) {
	next := make([]Subscriber, len(c.subs), len(c.subs)+1)
	copy(next, c.subs)
	c.subs = append(next, s)
}

// Unsubscribe removes s. A beat already being delivered still reaches it.
func (c *Clock) Unsubscribe(s Subscriber) {
	i := slices.Index(c.subs, s)
	if i < 0 {
		return
	}
	next := make([]Subscriber, 0, len(c.subs)-1)
	next = append(next, c.subs[:i]...)
	c.subs = append(next, c.subs[i+1:]...)
}

// Tick polls the audio source and delivers every beat due by now+epsilon.
// A source that stops discards the schedule; one that reports a new start
// time re-pins it from beat 1.
func (c *Clock) Tick() {
	if c.invalid || c.halted || c.paused || c.source == nil {
		return
	}
	dspStart := c.source.DSPStartTime()
	if dspStart <= 0 {
		if c.started {
			c.reset()
		}
		return
	}
	if !c.started || dspStart != c.adopted {
		c.Start(dspStart)
	}
	if c.finished {
		return
	}

	horizon := c.now() + c.epsilon
	for {
		t, ok := c.beatTime(c.last + 1)
		if !ok {
			c.finished = true
			return
		}
		if t > horizon {
			return
		}
		c.last++
		c.deliver(c.last)
	}
}

// CurrentBeatIndex returns how many beats are due at audio time now,
// without delivering anything.
func (c *Clock) CurrentBeatIndex(now float64) int {
	if !c.started || c.halted || c.invalid {
		return 0
	}
	x := now - c.latency + c.epsilon
	if x < c.start {
		return 0
	}

	var k int
	if c.schedule.IsTempo() {
		k = int((x-c.start)/c.schedule.Interval()) + 1
	} else {
		k = c.offsetEstimate(x - c.start)
	}
	// settle rounding against the same comparison Tick uses
	for k > 0 {
		t, ok := c.beatTime(k)
		if ok && t <= x {
			break
		}
		k--
	}
	for {
		t, ok := c.beatTime(k + 1)
		if !ok || t > x {
			break
		}
		k++
	}
	return k
}

func (c *Clock) offsetEstimate(elapsed float64) int {
	n := len(c.offsets)
	loops := 0
	if c.schedule.Loop {
		loops = int(elapsed / c.period)
		elapsed -= float64(loops) * c.period
	}
	i, _ := slices.BinarySearch(c.offsets, elapsed)
	for i < n && c.offsets[i] <= elapsed {
		i++
	}
	return loops*n + i
}

// beatTime returns the audio time of beat k (1-based). ok is false past the
// end of a non-looping offset schedule.
func (c *Clock) beatTime(k int) (float64, bool) {
	if k < 1 {
		return c.start, true
	}
	if c.schedule.IsTempo() {
		return c.start + float64(k-1)*c.schedule.Interval(), true
	}
	n := len(c.offsets)
	loop, i := (k-1)/n, (k-1)%n
	if loop > 0 && !c.schedule.Loop {
		return 0, false
	}
	return c.start + float64(loop)*c.period + c.offsets[i], true
}

func (c *Clock) rewind() {
	if c.last == 0 {
		return
	}
	c.last = 0
	for _, s := range c.subs {
		if r, ok := s.(Rewinder); ok {
			r.OnRewind()
		}
	}
}

func (c *Clock) deliver(index int) {
	if config.Debug.LogBeats {
		log.Printf("beat %d", index)
	}
	subs := c.subs
	for _, s := range subs {
		s.OnBeat(index)
	}
}

func (c *Clock) now() float64 {
	if c.source == nil {
		return 0
	}
	return c.source.DSPNow() - c.latency
}
