package settings

import (
	"testing"

	"github.com/automoto/beatboss/config"
)

func TestDecodeKeepsDefaultsForMissingFields(t *testing.T) {
	s, err := Decode([]byte(`{"audioOffsetMs": 35}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.AudioOffsetMs != 35 {
		t.Fatalf("offset %v, want 35", s.AudioOffsetMs)
	}
	if s.MusicVolume != config.Audio.DefaultMusicVol || s.SFXVolume != config.Audio.DefaultSFXVol {
		t.Fatalf("volumes %v/%v should keep defaults", s.MusicVolume, s.SFXVolume)
	}
	if got := s.LatencyOffset(); got != 0.035 {
		t.Fatalf("latency offset %v, want 0.035", got)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	s, err := Decode([]byte("not json"))
	if err == nil {
		t.Fatalf("expected an error")
	}
	if s != Defaults() {
		t.Fatalf("bad data should fall back to defaults, got %+v", s)
	}
}

func TestVolumes(t *testing.T) {
	s := Settings{MusicVolume: 1.5, SFXVolume: 0.25}
	if m, x := s.Volumes(); m != 1 || x != 0.25 {
		t.Fatalf("volumes %v/%v", m, x)
	}
	s.Muted = true
	if m, x := s.Volumes(); m != 0 || x != 0 {
		t.Fatalf("muted volumes %v/%v", m, x)
	}
}

func TestNilStoreUsesDefaults(t *testing.T) {
	var s *Store
	if got := s.Load(); got != Defaults() {
		t.Fatalf("load %+v", got)
	}
	if err := s.Save(Settings{Muted: true}); err != nil {
		t.Fatalf("save: %v", err)
	}
}
