package device

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/automoto/beatboss/assets"
	"github.com/automoto/beatboss/audio"
	"github.com/automoto/beatboss/config"
	eaudio "github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
)

var (
	contextOnce sync.Once
	context     *eaudio.Context
)

// Context returns the process wide ebiten audio context. Ebiten allows only
// one.
func Context() *eaudio.Context {
	contextOnce.Do(func() {
		context = eaudio.NewContext(config.Audio.SampleRate)
	})
	return context
}

// PlayerSource reports device time from an ebiten audio player, for hosts
// that already run their music through ebiten.
type PlayerSource struct {
	player  *eaudio.Player
	started bool
}

func NewPlayerSource(p *eaudio.Player) *PlayerSource {
	return &PlayerSource{player: p}
}

// LoadMusic decodes an .ogg or .wav file into a player. The track plays
// once; the player position would wrap on a loop and time must not run
// backwards.
func LoadMusic(ctx *eaudio.Context, fsys fs.FS, name string) (*PlayerSource, error) {
	data, err := assets.Read(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read music file %s: %w", name, err)
	}

	var stream io.ReadSeeker
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".ogg":
		stream, err = vorbis.DecodeWithSampleRate(ctx.SampleRate(), bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode ogg %s: %w", name, err)
		}
	case ".wav":
		stream, err = wav.DecodeWithSampleRate(ctx.SampleRate(), bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode wav %s: %w", name, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}

	player, err := ctx.NewPlayer(stream)
	if err != nil {
		return nil, fmt.Errorf("failed to create music player: %w", err)
	}
	return NewPlayerSource(player), nil
}

func (s *PlayerSource) Play() {
	s.player.Play()
	s.started = true
}

func (s *PlayerSource) SetPaused(p bool) {
	if p {
		s.player.Pause()
		return
	}
	s.player.Play()
}

func (s *PlayerSource) SetVolume(vol float64) {
	s.player.SetVolume(max(0, min(1, vol)))
}

// DSPStartTime is zero until Play has been called.
func (s *PlayerSource) DSPStartTime() float64 {
	if !s.started {
		return 0
	}
	return audio.Epoch
}

// DSPNow follows the player position, which stands still while paused.
func (s *PlayerSource) DSPNow() float64 {
	return audio.Epoch + s.player.Position().Seconds()
}

func (s *PlayerSource) Close() error {
	return s.player.Close()
}
