package core

import (
	"log"
	"time"

	"github.com/automoto/beatboss/session"
	"github.com/leap-fish/necs/esync/srvsync"
)

// Advancer is a headless audio clock the loop moves forward each tick.
type Advancer interface {
	Advance(seconds float64)
}

// GameLoop owns fight time: it applies queued commands, moves the audio
// clock, ticks the session and syncs the mirrors, all at a fixed rate.
type GameLoop struct {
	server   *Server
	clock    Advancer
	tickRate int
	running  bool
	stopChan chan struct{}

	elapsed float64
	outcome session.Outcome
	beat    int
}

func NewGameLoop(server *Server, clock Advancer, tickRate int) *GameLoop {
	if tickRate <= 0 {
		tickRate = 20
	}
	return &GameLoop{
		server:   server,
		clock:    clock,
		tickRate: tickRate,
		stopChan: make(chan struct{}),
	}
}

func (g *GameLoop) Run() {
	g.running = true
	ticker := time.NewTicker(time.Second / time.Duration(g.tickRate))
	defer ticker.Stop()

	log.Printf("Game loop started at %d ticks/second", g.tickRate)

	for {
		select {
		case <-g.stopChan:
			g.running = false
			log.Println("Game loop stopped")
			return
		case <-ticker.C:
			g.tick()
		}
	}
}

func (g *GameLoop) Stop() {
	close(g.stopChan)
}

// Dt is the simulated time one tick covers.
func (g *GameLoop) Dt() float64 {
	return 1 / float64(g.tickRate)
}

// Elapsed is the unpaused fight time stepped so far.
func (g *GameLoop) Elapsed() float64 {
	return g.elapsed
}

// Step advances the fight by dt. The audio clock and the elapsed time hold
// still while the session is paused, so beats resume where they stopped.
func (g *GameLoop) Step(dt float64) {
	sess := g.server.sess
	paused := sess.Paused()
	if g.clock != nil && !paused {
		g.clock.Advance(dt)
	}
	sess.Tick(dt)
	if !paused {
		g.elapsed += dt
	}
	g.report(sess)
	g.server.syncNet()
}

func (g *GameLoop) report(sess *session.Session) {
	if b := sess.Clock().LastBeat(); b >= g.beat+8 {
		g.beat = b
		log.Printf("Beat %d, %.1fs in, boss %d/%d", b, g.elapsed, sess.Boss().Health(), sess.Boss().MaxHealth())
	}
	if o := sess.Outcome(); o != g.outcome {
		g.outcome = o
		log.Printf("Fight over after %.1fs: %s", g.elapsed, o)
	}
}

func (g *GameLoop) tick() {
	g.server.ProcessCommands()
	g.Step(g.Dt())

	if err := srvsync.DoSync(); err != nil {
		log.Printf("Sync error: %v", err)
	}
}
