package audio

import (
	"math"

	"github.com/gopxl/beep"
)

const (
	clickFreq     = 1760.0
	clickDuration = 0.03
)

// metronome emits a short decaying sine click at a fixed tempo. It stands
// in for a music track in headless realtime runs.
type metronome struct {
	rate     beep.SampleRate
	interval int
	click    int
	position int
}

// NewMetronome returns an endless click track at bpm.
func NewMetronome(rate beep.SampleRate, bpm float64) beep.Streamer {
	interval := int(float64(rate) * 60 / bpm)
	if interval < 1 {
		interval = 1
	}
	click := int(float64(rate) * clickDuration)
	return &metronome{rate: rate, interval: interval, click: min(click, interval)}
}

func (m *metronome) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		pos := m.position % m.interval
		var val float64
		if pos < m.click {
			t := float64(pos) / float64(m.rate)
			decay := 1 - float64(pos)/float64(m.click)
			val = math.Sin(2*math.Pi*clickFreq*t) * decay * 0.5
		}
		samples[i][0] = val
		samples[i][1] = val
		m.position++
	}
	return len(samples), true
}

func (m *metronome) Err() error { return nil }
