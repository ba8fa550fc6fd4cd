package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/automoto/beatboss/assets"
	"github.com/automoto/beatboss/audio"
	"github.com/automoto/beatboss/audio/device"
	"github.com/automoto/beatboss/beat"
	"github.com/automoto/beatboss/boss"
	"github.com/automoto/beatboss/config"
	"github.com/automoto/beatboss/sequence"
	"github.com/automoto/beatboss/session"
	"github.com/automoto/beatboss/settings"
	"github.com/gopxl/beep"
)

// source is an audio clock the fight can be started on.
type source interface {
	beat.AudioSource
	Play()
}

func main() {
	dir := flag.String("assets", "", "Content directory (empty = bundled)")
	arenaPath := flag.String("arena", "arenas/hall.tmx", "Arena TMX map (empty = plain rectangle)")
	bossPath := flag.String("boss", "bosses/warden.yaml", "Boss definition")
	sequences := flag.String("sequence", "", "Comma-separated sequence configs (empty = the boss's own)")
	schedule := flag.String("schedule", "schedules/120bpm.yaml", "Beat schedule")
	templates := flag.String("templates", "templates.yaml", "Projectile templates")
	seconds := flag.Float64("seconds", 60, "Seconds to simulate")
	tickRate := flag.Int("tickrate", 60, "Simulation ticks per second")
	players := flag.Int("players", 1, "Auto-firing players in the arena")
	realtime := flag.Bool("realtime", false, "Play audio and run in real time")
	backend := flag.String("backend", "beep", "Realtime audio backend: beep or ebiten")
	music := flag.String("music", "", "Music track (.ogg/.wav); beep plays a metronome without one")
	offsetMs := flag.Float64("offset", 0, "Audio offset in ms, saved for later runs (0 = keep saved)")
	seed := flag.Int64("seed", 1, "Random seed for pattern start angles")
	watch := flag.Bool("watch", false, "Reload sequences from -assets when they change")
	flag.Parse()

	if *tickRate <= 0 {
		log.Fatalf("tick rate must be positive, got %d", *tickRate)
	}

	store, err := settings.Open(config.Audio.AppName)
	if err != nil {
		log.Printf("Warning: Could not initialize persistence: %v", err)
	}
	prefs := store.Load()
	if *offsetMs != 0 {
		prefs.AudioOffsetMs = *offsetMs
		if err := store.Save(prefs); err != nil {
			log.Printf("Warning: Could not save settings: %v", err)
		}
	}

	var seqs []string
	if *sequences != "" {
		seqs = strings.Split(*sequences, ",")
	}
	fsys := assets.Open(*dir)
	opts, err := session.LoadOptions(fsys, session.Manifest{
		Arena:     *arenaPath,
		Boss:      *bossPath,
		Sequences: seqs,
		Templates: *templates,
		Schedule:  *schedule,
	})
	if err != nil {
		log.Fatalf("Failed to load content: %v", err)
	}

	dt := 1 / float64(*tickRate)
	opts.Seed = *seed
	opts.AutoFire = true
	opts.ClockOptions = []beat.Option{
		beat.WithEpsilon(dt),
		beat.WithLatencyOffset(prefs.LatencyOffset()),
	}

	var (
		src    source
		manual *audio.ManualClock
	)
	if *realtime {
		s, closeAudio, err := openAudio(fsys, *backend, *music, opts.Schedule, prefs)
		if err != nil {
			log.Fatalf("Failed to open audio: %v", err)
		}
		defer closeAudio()
		src = s
	} else {
		manual = audio.NewManualClock()
		src = manual
	}
	opts.Audio = src

	sess, err := session.New(opts)
	if err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}
	sess.OnEvent(func(ev boss.Event) {
		log.Printf("Boss %s: health %d/%d, phase %d", ev.Kind, ev.Health, ev.MaxHealth, ev.Phase)
	})
	for i := 0; i < *players; i++ {
		sess.AddPlayer(sess.Arena().PlayerSpawn(i))
	}

	var watcher *sequence.Watcher
	if *watch {
		if *dir == "" {
			log.Printf("Warning: -watch needs -assets; bundled content cannot change")
		} else if watcher, err = sequence.NewWatcher(filepath.Join(*dir, "sequences")); err != nil {
			log.Printf("Warning: Could not watch sequences: %v", err)
			watcher = nil
		} else {
			defer watcher.Close()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := sess.Start(); err != nil {
		log.Fatalf("Failed to start fight: %v", err)
	}
	src.Play()
	log.Printf("Fighting %s (%d sequences, %d players, %s)", opts.Boss.Name, len(opts.Sequences), *players, mode(*realtime, *backend))

	var ticker *time.Ticker
	if *realtime {
		ticker = time.NewTicker(time.Second / time.Duration(*tickRate))
		defer ticker.Stop()
	}

	steps := int(*seconds * float64(*tickRate))
	elapsed := 0.0
	lastBeat := -1
loop:
	for i := 0; i < steps && sess.Outcome() == session.Running; i++ {
		if ticker != nil {
			select {
			case <-ctx.Done():
				break loop
			case <-ticker.C:
			}
		} else {
			manual.Advance(dt)
		}
		if watcher != nil {
			reloadSequences(sess, *dir, watcher)
		}

		sess.Tick(dt)
		elapsed += dt

		if b := sess.Clock().LastBeat(); b != lastBeat && b%8 == 0 {
			log.Printf("Beat %d at %.2fs: %d projectiles active", b, elapsed, sess.Registry().ActiveCount())
		}
		lastBeat = sess.Clock().LastBeat()
	}

	b, stats := sess.Boss(), sess.Stats()
	fmt.Printf("%s after %.1fs\n", sess.Outcome(), elapsed)
	fmt.Printf("  last beat:      %d\n", sess.Clock().LastBeat())
	fmt.Printf("  spawned:        %d\n", stats.Spawned)
	fmt.Printf("  target hits:    %d (players hit %d)\n", stats.TargetHits, stats.PlayerHits)
	fmt.Printf("  boundary hits:  %d\n", stats.BoundaryHits)
	fmt.Printf("  boss:           %s %d/%d, phase %d\n", b.State(), b.Health(), b.MaxHealth(), b.Phase())
}

func mode(realtime bool, backend string) string {
	if !realtime {
		return "headless"
	}
	return "realtime/" + backend
}

// openAudio opens the realtime audio clock. The returned func releases the
// device.
func openAudio(fsys fs.FS, backend, music string, sched beat.Schedule, prefs settings.Settings) (source, func(), error) {
	vol, _ := prefs.Volumes()

	switch backend {
	case "ebiten":
		if music == "" {
			return nil, nil, errors.New("the ebiten backend needs -music")
		}
		src, err := device.LoadMusic(device.Context(), fsys, music)
		if err != nil {
			return nil, nil, err
		}
		src.SetVolume(vol)
		return src, func() {
			if err := src.Close(); err != nil {
				log.Printf("Warning: Could not close music player: %v", err)
			}
		}, nil

	case "beep":
		rate := beep.SampleRate(config.Audio.SampleRate)
		var (
			stream beep.Streamer
			track  *device.Track
		)
		if music != "" {
			var err error
			if track, err = device.LoadTrack(fsys, music); err != nil {
				return nil, nil, err
			}
			stream = track.Streamer(rate, false)
		} else {
			bpm := sched.BPM
			if bpm <= 0 {
				bpm = 120
			}
			stream = audio.NewMetronome(rate, bpm)
		}
		spk, err := device.OpenSpeaker(stream, vol)
		if err != nil {
			if track != nil {
				track.Close()
			}
			return nil, nil, err
		}
		return spk, func() {
			spk.Close()
			if track != nil {
				track.Close()
			}
		}, nil
	}
	return nil, nil, fmt.Errorf("unknown audio backend %q", backend)
}

// reloadSequences applies sequence files changed on disk. Bad edits are
// logged and the running config is kept.
func reloadSequences(sess *session.Session, dir string, w *sequence.Watcher) {
	for _, name := range w.Drain() {
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		rel, err := filepath.Rel(dir, name)
		if err != nil {
			log.Printf("Warning: Could not resolve %s: %v", name, err)
			continue
		}
		cfg, err := sequence.Load(os.DirFS(dir), rel)
		if err != nil {
			log.Printf("Warning: Could not reload %s: %v", rel, err)
			continue
		}
		if !sess.ReloadSequence(cfg) {
			log.Printf("Sequence %s is not bound to %s", cfg.Name, sess.Boss().Definition().Name)
		}
	}

	select {
	case err := <-w.Errors:
		log.Printf("Warning: watcher error: %v", err)
	default:
	}
}
