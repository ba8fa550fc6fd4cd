package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/automoto/beatboss/assets"
	"github.com/automoto/beatboss/audio"
	"github.com/automoto/beatboss/beat"
	"github.com/automoto/beatboss/config"
	"github.com/automoto/beatboss/server/core"
	"github.com/automoto/beatboss/session"
	"github.com/automoto/beatboss/shared/protocol"
)

func main() {
	port := flag.Uint("port", config.Net.Port, "Server port")
	tickRate := flag.Int("tickrate", config.Net.TickRate, "Server tick rate (updates per second)")
	version := flag.String("version", "", "Required client version (empty = accept any)")
	maxPlayers := flag.Int("maxplayers", config.Net.MaxPlayers, "Players allowed to join; the rest spectate")
	dir := flag.String("assets", "", "Content directory (empty = bundled)")
	arenaPath := flag.String("arena", "arenas/hall.tmx", "Arena TMX map (empty = plain rectangle)")
	bossPath := flag.String("boss", "bosses/warden.yaml", "Boss definition")
	sequences := flag.String("sequence", "", "Comma-separated sequence configs (empty = the boss's own)")
	schedule := flag.String("schedule", "schedules/120bpm.yaml", "Beat schedule")
	templates := flag.String("templates", "templates.yaml", "Projectile templates")
	seed := flag.Int64("seed", 1, "Random seed for pattern start angles")
	flag.Parse()

	config.Net.Version = *version
	config.Net.MaxPlayers = *maxPlayers

	if err := protocol.RegisterComponents(); err != nil {
		log.Fatalf("Failed to register components: %v", err)
	}

	var seqs []string
	if *sequences != "" {
		seqs = strings.Split(*sequences, ",")
	}
	opts, err := session.LoadOptions(assets.Open(*dir), session.Manifest{
		Arena:     *arenaPath,
		Boss:      *bossPath,
		Sequences: seqs,
		Templates: *templates,
		Schedule:  *schedule,
	})
	if err != nil {
		log.Fatalf("Failed to load content: %v", err)
	}

	clock := audio.NewManualClock()
	opts.Audio = clock
	opts.Seed = *seed
	opts.ClockOptions = []beat.Option{beat.WithEpsilon(1 / float64(*tickRate))}
	sess, err := session.New(opts)
	if err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}
	if err := sess.Start(); err != nil {
		log.Fatalf("Failed to start fight: %v", err)
	}
	clock.Play()

	server := core.NewServer(sess, clock, *tickRate)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Shutting down server...")
		server.Stop()
		os.Exit(0)
	}()

	log.Printf("Starting beatboss server on port %d (tick rate: %d/s, boss: %s, version: %s)",
		*port, *tickRate, opts.Boss.Name, *version)
	if err := server.Start(*port); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
