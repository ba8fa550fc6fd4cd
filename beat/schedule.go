package beat

import (
	"errors"
	"fmt"
	"io/fs"
	"log"

	"github.com/automoto/beatboss/assets"
)

var (
	ErrEmptySchedule     = errors.New("beat: schedule has neither bpm nor offsets")
	ErrAmbiguousSchedule = errors.New("beat: schedule sets both bpm and offsets")
	ErrUnsortedOffsets   = errors.New("beat: offsets must be non-decreasing")
)

// Schedule describes when beats happen relative to playback start: either a
// fixed tempo or an explicit list of second offsets.
type Schedule struct {
	BPM     float64   `yaml:"bpm"`
	Offsets []float64 `yaml:"offsets"`
	Loop    bool      `yaml:"loop"`
	// LoopLength is the period of a looping offset schedule. When it does not
	// exceed the last offset, the last offset plus the final gap is used.
	LoopLength float64 `yaml:"loop_length"`
}

// Tempo returns a fixed-tempo schedule.
func Tempo(bpm float64) Schedule {
	return Schedule{BPM: bpm}
}

// Interval is the seconds between beats of a tempo schedule.
func (s Schedule) Interval() float64 {
	if s.BPM <= 0 {
		return 0
	}
	return 60 / s.BPM
}

// IsTempo reports whether beats come from BPM rather than offsets.
func (s Schedule) IsTempo() bool {
	return s.BPM > 0
}

func (s Schedule) Validate() error {
	switch {
	case s.BPM > 0 && len(s.Offsets) > 0:
		return ErrAmbiguousSchedule
	case s.BPM <= 0 && len(s.Offsets) == 0:
		return ErrEmptySchedule
	}
	for i := 1; i < len(s.Offsets); i++ {
		if s.Offsets[i] < s.Offsets[i-1] {
			return fmt.Errorf("%w: offset %d (%.3f) before %.3f", ErrUnsortedOffsets, i, s.Offsets[i], s.Offsets[i-1])
		}
	}
	return nil
}

// period returns the loop period of an offset schedule, or 0 when the
// schedule cannot loop.
func (s Schedule) period() float64 {
	n := len(s.Offsets)
	if n == 0 {
		return 0
	}
	last := s.Offsets[n-1]
	if s.LoopLength > last {
		return s.LoopLength
	}
	if n == 1 {
		return last
	}
	return last + (last - s.Offsets[n-2])
}

// strictOffsets copies offsets dropping equal neighbours so every beat has
// its own time.
func strictOffsets(offsets []float64) []float64 {
	out := make([]float64, 0, len(offsets))
	for i, o := range offsets {
		if i > 0 && o == out[len(out)-1] {
			log.Printf("Warning: beat offset %d duplicates %.3fs, dropped", i, o)
			continue
		}
		out = append(out, o)
	}
	return out
}

// LoadSchedule reads and validates a YAML beat schedule.
func LoadSchedule(fsys fs.FS, path string) (Schedule, error) {
	s, err := assets.LoadYAML[Schedule](fsys, path)
	if err != nil {
		return Schedule{}, err
	}
	if err := s.Validate(); err != nil {
		return Schedule{}, fmt.Errorf("beat: %s: %w", path, err)
	}
	return s, nil
}
