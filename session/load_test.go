package session

import (
	"testing"

	"github.com/automoto/beatboss/assets"
	"github.com/automoto/beatboss/audio"
	"github.com/automoto/beatboss/boss"
)

func bundledManifest() Manifest {
	return Manifest{
		Arena:     "arenas/hall.tmx",
		Boss:      "bosses/warden.yaml",
		Templates: "templates.yaml",
		Schedule:  "schedules/120bpm.yaml",
	}
}

func TestBundledContentLoads(t *testing.T) {
	opts, err := LoadOptions(assets.Bundled(), bundledManifest())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if opts.Arena == nil || opts.Arena.Name != "hall" {
		t.Fatalf("arena %+v", opts.Arena)
	}
	if opts.Boss.Name != "warden" || len(opts.Boss.Phases) != 2 {
		t.Fatalf("boss %+v", opts.Boss)
	}
	if len(opts.Sequences) != 1 || opts.Sequences[0].Name != "opening" {
		t.Fatalf("sequences %d", len(opts.Sequences))
	}
	if len(opts.PhaseSequences[1]) != 1 || len(opts.PhaseSequences[2]) != 2 {
		t.Fatalf("phase sequences %v", opts.PhaseSequences)
	}
	if opts.Schedule.BPM != 120 {
		t.Fatalf("bpm %v", opts.Schedule.BPM)
	}

	frenzy := opts.PhaseSequences[2][0]
	if frenzy.Attacks[0].Pattern.Script == nil {
		t.Fatalf("frenzy cross pattern script not compiled")
	}
	if len(frenzy.Moves[0].ScriptSource) == 0 {
		t.Fatalf("frenzy path script not read")
	}
}

func TestManifestSequencesOverrideBoss(t *testing.T) {
	m := bundledManifest()
	m.Sequences = []string{"sequences/spiral.yaml", "sequences/frenzy.yaml"}
	opts, err := LoadOptions(assets.Bundled(), m)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(opts.Sequences) != 2 || opts.Sequences[0].Name != "spiral" {
		t.Fatalf("sequences not taken from the manifest")
	}
}

func TestBundledFightRuns(t *testing.T) {
	opts, err := LoadOptions(assets.Bundled(), bundledManifest())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	mc := audio.NewManualClock()
	opts.Audio = mc
	opts.AutoFire = true
	s, err := New(opts)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	s.AddPlayer(s.Arena().PlayerSpawn(0))
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	mc.Play()

	const dt = 1.0 / 60
	for i := 0; i < 120; i++ {
		mc.Advance(dt)
		s.Tick(dt)
	}

	if s.Clock().LastBeat() < 2 {
		t.Fatalf("last beat %d after 2s at 120 bpm", s.Clock().LastBeat())
	}
	if s.Stats().Spawned == 0 {
		t.Fatalf("boss never attacked")
	}
	if s.Boss().State() != boss.StateFighting {
		t.Fatalf("boss state %s", s.Boss().State())
	}
}

func TestLoadOptionsMissingBoss(t *testing.T) {
	m := bundledManifest()
	m.Boss = "bosses/nobody.yaml"
	if _, err := LoadOptions(assets.Bundled(), m); err == nil {
		t.Fatalf("expected an error for a missing boss")
	}
}
