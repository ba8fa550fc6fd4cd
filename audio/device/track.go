// Package device connects the beat clock to real audio output. Speaker
// drives the default device through beep and derives device time from the
// samples it consumed; PlayerSource reads it from an ebiten audio player.
package device

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/automoto/beatboss/assets"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"
)

var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Track is a decoded music file.
type Track struct {
	beep.StreamSeekCloser
	Format beep.Format
	Name   string
}

// LoadTrack decodes an .ogg or .wav file from fsys.
func LoadTrack(fsys fs.FS, name string) (*Track, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if ext != ".ogg" && ext != ".wav" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}

	f, err := fsys.Open(assets.Clean(name))
	if err != nil {
		return nil, fmt.Errorf("failed to read audio file %s: %w", name, err)
	}

	var (
		s      beep.StreamSeekCloser
		format beep.Format
	)
	switch ext {
	case ".ogg":
		s, format, err = vorbis.Decode(f)
	case ".wav":
		s, format, err = wav.Decode(f)
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return &Track{StreamSeekCloser: s, Format: format, Name: name}, nil
}

// Streamer returns the track resampled to rate, looping forever when loop
// is set.
func (t *Track) Streamer(rate beep.SampleRate, loop bool) beep.Streamer {
	var s beep.Streamer = t
	if loop {
		s = beep.Loop(-1, t)
	}
	if t.Format.SampleRate != rate {
		s = beep.Resample(4, t.Format.SampleRate, rate, s)
	}
	return s
}

// Seconds is the track length.
func (t *Track) Seconds() float64 {
	return t.Format.SampleRate.D(t.Len()).Seconds()
}
