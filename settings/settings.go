// Package settings persists the player's audio preferences between runs.
package settings

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/automoto/beatboss/config"
	"github.com/quasilyte/gdata"
)

const itemKey = "settings"

// Settings represents the settings data stored on disk
type Settings struct {
	// AudioOffsetMs is added to device time before beats are detected.
	// Positive values make beats fire later.
	AudioOffsetMs float64 `json:"audioOffsetMs"`
	MusicVolume   float64 `json:"musicVolume"`
	SFXVolume     float64 `json:"sfxVolume"`
	Muted         bool    `json:"muted"`
}

// Defaults returns the settings used before anything is saved.
func Defaults() Settings {
	return Settings{
		MusicVolume: config.Audio.DefaultMusicVol,
		SFXVolume:   config.Audio.DefaultSFXVol,
	}
}

// LatencyOffset returns the audio offset in seconds.
func (s Settings) LatencyOffset() float64 {
	return s.AudioOffsetMs / 1000
}

// Volumes returns the effective music and sfx volumes, silenced when muted.
func (s Settings) Volumes() (music, sfx float64) {
	if s.Muted {
		return 0, 0
	}
	return clamp01(s.MusicVolume), clamp01(s.SFXVolume)
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}

// Store reads and writes Settings through gdata.
type Store struct {
	m *gdata.Manager
}

// Open initializes the gdata manager for settings storage
func Open(appName string) (*Store, error) {
	if appName == "" {
		appName = config.Audio.AppName
	}
	m, err := gdata.Open(gdata.Config{
		AppName: appName,
	})
	if err != nil {
		return nil, fmt.Errorf("settings: open %s: %w", appName, err)
	}
	return &Store{m: m}, nil
}

// Load returns the saved settings, or the defaults when nothing usable is
// stored. A nil Store also yields the defaults.
func (s *Store) Load() Settings {
	if s == nil || s.m == nil {
		return Defaults()
	}

	data, err := s.m.LoadItem(itemKey)
	if err != nil {
		log.Printf("Warning: Could not load settings: %v", err)
		return Defaults()
	}
	if data == nil {
		// No saved settings yet, use defaults
		return Defaults()
	}

	settings, err := Decode(data)
	if err != nil {
		log.Printf("Warning: Could not parse saved settings: %v", err)
		return Defaults()
	}
	return settings
}

// Save writes settings to disk
func (s *Store) Save(settings Settings) error {
	if s == nil || s.m == nil {
		return nil
	}
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("settings: encode: %w", err)
	}
	if err := s.m.SaveItem(itemKey, data); err != nil {
		return fmt.Errorf("settings: save: %w", err)
	}
	return nil
}

// Decode parses saved settings. Fields missing from data keep their
// default values.
func Decode(data []byte) (Settings, error) {
	settings := Defaults()
	if err := json.Unmarshal(data, &settings); err != nil {
		return Defaults(), fmt.Errorf("settings: decode: %w", err)
	}
	return settings, nil
}
