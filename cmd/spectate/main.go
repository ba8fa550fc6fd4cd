// Command spectate joins a running beatboss server and logs the fight. With
// -play it also takes a player slot and strafes under the boss.
package main

import (
	"flag"
	"log"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/automoto/beatboss/config"
	"github.com/automoto/beatboss/network"
	"github.com/automoto/beatboss/session"
	"github.com/automoto/beatboss/shared/protocol"
	"github.com/yohamta/donburi"
)

func main() {
	addr := flag.String("addr", "localhost:7373", "Server address")
	name := flag.String("name", "spectator", "Player name")
	version := flag.String("version", "", "Client version sent with the join request")
	play := flag.Bool("play", false, "Join as a player instead of spectating")
	tickRate := flag.Int("tickrate", config.Net.TickRate, "Server tick rate, for interpolation")
	flag.Parse()

	if err := protocol.RegisterComponents(); err != nil {
		log.Fatalf("Failed to register network components: %v", err)
	}

	client := network.NewClient()
	client.Connect(*addr, *version, *name, !*play)
	defer client.Disconnect()

	mirror := network.NewMirror(donburi.NewWorld(), *tickRate)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	const frame = time.Second / 60
	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	start := time.Now()
	lastReport := start
	lastEvent := ""
	for {
		select {
		case <-sigChan:
			log.Println("Leaving fight...")
			return
		case now := <-ticker.C:
			switch client.State() {
			case network.StateError:
				log.Fatalf("Connection failed: %v", client.LastError())
			case network.StateDisconnected:
				log.Println("Server closed the connection")
				return
			}

			if snap := client.LatestSnapshot(); snap != nil {
				mirror.Apply(*snap)
			}
			mirror.Advance(frame.Seconds())

			if *play && client.State() == network.StateJoinedGame {
				t := now.Sub(start).Seconds()
				if err := client.SendInput(math.Sin(t), 0); err != nil {
					log.Printf("Warning: Could not send input: %v", err)
				}
			}

			state, ok := mirror.State()
			if ok && state.LastEvent != lastEvent {
				lastEvent = state.LastEvent
				log.Printf("Boss event: %s", lastEvent)
			}
			if now.Sub(lastReport) >= time.Second {
				lastReport = now
				report(mirror)
			}
			if ok && session.Outcome(state.Outcome) != session.Running {
				report(mirror)
				log.Printf("Fight over: %s", session.Outcome(state.Outcome))
				return
			}
		}
	}
}

func report(m *network.Mirror) {
	b, ok := m.Boss()
	if !ok {
		log.Println("Waiting for the fight...")
		return
	}
	state, _ := m.State()
	log.Printf("beat %d  boss %d/%d phase %d  projectiles %d  players %d",
		state.Beat, b.Health, b.MaxHealth, b.Phase, m.Projectiles(), len(m.Players()))
}
