// Package audio provides the DSP time sources the beat clock polls.
package audio

// Epoch is where device time begins. Clocks report audio time from here so
// a start time of 0 always means "not playing yet".
const Epoch = 1.0

// ManualClock is an audio source driven by hand: headless runs advance it by
// the fixed tick, tests move it to exact instants.
type ManualClock struct {
	now     float64
	start   float64
	playing bool
}

func NewManualClock() *ManualClock {
	return &ManualClock{now: Epoch}
}

// Play starts playback at the current device time.
func (c *ManualClock) Play() {
	c.start = c.now
	c.playing = true
}

// PlayAt starts playback at device time t.
func (c *ManualClock) PlayAt(t float64) {
	c.start = t
	c.playing = true
}

// Stop ends playback; DSPStartTime reads 0 again.
func (c *ManualClock) Stop() {
	c.start = 0
	c.playing = false
}

func (c *ManualClock) Playing() bool {
	return c.playing
}

// Advance moves device time forward by seconds.
func (c *ManualClock) Advance(seconds float64) {
	c.now += seconds
}

// Set moves device time to t.
func (c *ManualClock) Set(t float64) {
	c.now = t
}

func (c *ManualClock) DSPStartTime() float64 {
	if !c.playing {
		return 0
	}
	return c.start
}

func (c *ManualClock) DSPNow() float64 {
	return c.now
}

// Elapsed is the playback position in seconds.
func (c *ManualClock) Elapsed() float64 {
	if !c.playing {
		return 0
	}
	return c.now - c.start
}
