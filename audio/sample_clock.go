package audio

import (
	"sync"
	"sync/atomic"

	"github.com/gopxl/beep"
)

// SampleClock wraps the music streamer and counts the samples the device
// pulls through it. Device time is derived from that count, so it advances
// exactly as fast as audio is consumed, independent of frame timing.
//
// Stream runs on the speaker goroutine; the DSP accessors are safe to call
// from the simulation goroutine.
type SampleClock struct {
	streamer beep.Streamer
	rate     beep.SampleRate
	samples  atomic.Int64
	started  atomic.Bool
	paused   atomic.Bool

	mu  sync.Mutex
	err error
}

func NewSampleClock(rate beep.SampleRate, s beep.Streamer) *SampleClock {
	return &SampleClock{streamer: s, rate: rate}
}

func (c *SampleClock) Stream(samples [][2]float64) (n int, ok bool) {
	if c.paused.Load() {
		clear(samples)
		return len(samples), true
	}
	n, ok = c.streamer.Stream(samples)
	if n > 0 {
		c.started.Store(true)
		c.samples.Add(int64(n))
	}
	if !ok {
		if err := c.streamer.Err(); err != nil {
			c.mu.Lock()
			c.err = err
			c.mu.Unlock()
		}
	}
	return n, ok
}

func (c *SampleClock) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// SetPaused holds the track in place; silence is streamed meanwhile and the
// clock does not advance.
func (c *SampleClock) SetPaused(p bool) {
	c.paused.Store(p)
}

// Samples is the number of track samples played so far.
func (c *SampleClock) Samples() int64 {
	return c.samples.Load()
}

func (c *SampleClock) DSPStartTime() float64 {
	if !c.started.Load() {
		return 0
	}
	return Epoch
}

func (c *SampleClock) DSPNow() float64 {
	return Epoch + c.rate.D(int(c.samples.Load())).Seconds()
}
