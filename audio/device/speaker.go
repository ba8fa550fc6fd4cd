package device

import (
	"fmt"
	"math"
	"time"

	"github.com/automoto/beatboss/audio"
	"github.com/automoto/beatboss/config"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
)

// Speaker plays one streamer on the default output device. It is an
// audio source for the beat clock: DSP time advances with the samples the
// device has pulled.
type Speaker struct {
	rate   beep.SampleRate
	clock  *audio.SampleClock
	volume *effects.Volume
	closed bool
}

// OpenSpeaker initializes the device at config.Audio.SampleRate and wraps
// music so its playback can be timed. Nothing is heard until Play.
func OpenSpeaker(music beep.Streamer, volume float64) (*Speaker, error) {
	rate := beep.SampleRate(config.Audio.SampleRate)
	buffer := time.Duration(config.Audio.BufferMs) * time.Millisecond
	if err := speaker.Init(rate, rate.N(buffer)); err != nil {
		return nil, fmt.Errorf("speaker init: %w", err)
	}

	clock := audio.NewSampleClock(rate, music)
	return &Speaker{
		rate:   rate,
		clock:  clock,
		volume: volumeFor(clock, volume),
	}, nil
}

// volumeFor converts a linear 0..1 volume into beep's exponential one.
func volumeFor(s beep.Streamer, vol float64) *effects.Volume {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(min(vol, 1)), Silent: false}
}

// Play starts streaming to the device.
func (s *Speaker) Play() {
	speaker.Play(s.volume)
}

// SetVolume changes the music volume while playing.
func (s *Speaker) SetVolume(vol float64) {
	speaker.Lock()
	if vol <= 0 {
		s.volume.Silent = true
	} else {
		s.volume.Silent = false
		s.volume.Volume = math.Log2(min(vol, 1))
	}
	speaker.Unlock()
}

// SetPaused holds the music and the clock together.
func (s *Speaker) SetPaused(p bool) {
	s.clock.SetPaused(p)
}

func (s *Speaker) DSPStartTime() float64 {
	return s.clock.DSPStartTime()
}

func (s *Speaker) DSPNow() float64 {
	return s.clock.DSPNow()
}

// Rate is the device sample rate.
func (s *Speaker) Rate() beep.SampleRate {
	return s.rate
}

func (s *Speaker) Close() {
	if s.closed {
		return
	}
	s.closed = true
	speaker.Clear()
	speaker.Close()
}
