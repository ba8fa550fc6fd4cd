package core

import (
	"log"
	"math"
	"sync"

	"github.com/automoto/beatboss/config"
	"github.com/automoto/beatboss/projectile"
	"github.com/automoto/beatboss/session"
	"github.com/automoto/beatboss/shared/messages"
	"github.com/automoto/beatboss/shared/netcomponents"
	"github.com/leap-fish/necs/esync/srvsync"
	"github.com/leap-fish/necs/router"
	"github.com/leap-fish/necs/transports"
	"github.com/yohamta/donburi"
	dmath "github.com/yohamta/donburi/features/math"
)

// client is what the server knows about one connection. player is nil for
// spectators.
type client struct {
	name     string
	player   *donburi.Entry
	sequence uint32
}

// Server runs one fight and mirrors it to connected clients.
type Server struct {
	sess      *session.Session
	world     donburi.World
	loop      *GameLoop
	transport *transports.WsServerTransport

	// Router callbacks run on necs goroutines; they only queue commands,
	// which the loop applies between ticks.
	mu       sync.Mutex
	commands []func()
	clients  map[*router.NetworkClient]*client
	players  int

	lastEvent string
	bossNet   donburi.Entity
	stateNet  donburi.Entity
	playerNet map[*donburi.Entry]donburi.Entity
	projNet   map[*projectile.Projectile]donburi.Entity
	projSeen  map[*projectile.Projectile]bool

	// live is set once the world is registered with esync.
	live bool
}

// NewServer wraps sess. clock, when set, is advanced by the tick length
// before each step so beat-mode bosses hear time pass.
func NewServer(sess *session.Session, clock Advancer, tickRate int) *Server {
	s := newServer(sess, clock, tickRate)

	// Set up the world for esync
	srvsync.UseEsync(s.world)
	s.live = true
	s.checkSync(srvsync.NetworkSync(s.world, &s.bossNet, srvsync.WithInterp(netcomponents.NetBoss)))
	s.checkSync(srvsync.NetworkSync(s.world, &s.stateNet, netcomponents.NetGameState))

	// Register router callbacks
	s.setupRouterCallbacks()

	return s
}

func newServer(sess *session.Session, clock Advancer, tickRate int) *Server {
	s := &Server{
		sess:      sess,
		world:     sess.World(),
		clients:   make(map[*router.NetworkClient]*client),
		playerNet: make(map[*donburi.Entry]donburi.Entity),
		projNet:   make(map[*projectile.Projectile]donburi.Entity),
		projSeen:  make(map[*projectile.Projectile]bool),
	}
	s.loop = NewGameLoop(s, clock, tickRate)
	s.spawnMirrors()
	sess.OnEvent(s.onBossEvent)
	return s
}

// Start begins the server on the given port
func (s *Server) Start(port uint) error {
	// Start game loop
	go s.loop.Run()

	// Create and start WebSocket transport
	s.transport = transports.NewWsServerTransport(port, "", nil)
	return s.transport.Start()
}

// Stop gracefully shuts down the server
func (s *Server) Stop() {
	s.loop.Stop()
}

func (s *Server) setupRouterCallbacks() {
	router.OnConnect(func(c *router.NetworkClient) {
		log.Printf("Client connected: %s", c.Id())
		s.enqueue(func() { s.clients[c] = &client{} })
	})

	router.OnDisconnect(func(c *router.NetworkClient, err error) {
		if err != nil {
			log.Printf("Client %s disconnected with error: %v", c.Id(), err)
		} else {
			log.Printf("Client %s disconnected", c.Id())
		}
		s.enqueue(func() { s.leave(c) })
	})

	router.On(func(c *router.NetworkClient, req messages.JoinRequest) {
		s.enqueue(func() { s.join(c, req) })
	})

	router.On(func(c *router.NetworkClient, input messages.PlayerInput) {
		s.enqueue(func() { s.applyInput(c, input) })
	})

	router.OnError(func(c *router.NetworkClient, err error) {
		log.Printf("Client error: %v", err)
	})
}

func (s *Server) enqueue(cmd func()) {
	s.mu.Lock()
	s.commands = append(s.commands, cmd)
	s.mu.Unlock()
}

// ProcessCommands applies everything the router queued since the last tick.
func (s *Server) ProcessCommands() {
	s.mu.Lock()
	cmds := s.commands
	s.commands = nil
	s.mu.Unlock()

	for _, cmd := range cmds {
		cmd()
	}
}

// Step advances the fight by dt and refreshes the mirrored net state.
func (s *Server) Step(dt float64) {
	s.loop.Step(dt)
}

func (s *Server) join(key *router.NetworkClient, req messages.JoinRequest) {
	c, ok := s.clients[key]
	if !ok {
		c = &client{}
		s.clients[key] = c
	}
	c.name = req.PlayerName

	if config.Net.Version != "" && req.Version != config.Net.Version {
		log.Printf("Warning: %s runs version %q, want %q; joined as spectator", req.PlayerName, req.Version, config.Net.Version)
		return
	}
	if req.Spectate || c.player != nil {
		return
	}
	if s.sess.Players() >= config.Net.MaxPlayers {
		log.Printf("Server full, %s joined as spectator", req.PlayerName)
		return
	}

	c.player = s.sess.AddPlayer(s.sess.Arena().PlayerSpawn(s.sess.Players()))
	s.setPlayers(s.sess.Players())
	log.Printf("Player %s joined", req.PlayerName)
}

func (s *Server) leave(key *router.NetworkClient) {
	c, ok := s.clients[key]
	if !ok {
		return
	}
	delete(s.clients, key)
	if c.player == nil {
		return
	}
	if ent, ok := s.playerNet[c.player]; ok {
		if s.world.Valid(ent) {
			s.world.Remove(ent)
		}
		delete(s.playerNet, c.player)
	}
	s.sess.RemovePlayer(c.player)
	s.setPlayers(s.sess.Players())
	log.Printf("Player %s left", c.name)
}

// applyInput steers the client's player. Inputs older than the last one
// seen are dropped.
func (s *Server) applyInput(key *router.NetworkClient, input messages.PlayerInput) {
	c, ok := s.clients[key]
	if !ok || c.player == nil {
		return
	}
	if input.Sequence != 0 && input.Sequence <= c.sequence {
		return
	}
	c.sequence = input.Sequence

	move := dmath.Vec2{X: input.MoveX, Y: input.MoveY}
	if l := math.Hypot(move.X, move.Y); l > 1 {
		move = dmath.Vec2{X: move.X / l, Y: move.Y / l}
	}
	i := s.sess.PlayerIndex(c.player)
	s.sess.SetPlayerVelocity(i, dmath.Vec2{X: move.X * config.Player.MoveSpeed, Y: move.Y * config.Player.MoveSpeed})
}

func (s *Server) setPlayers(n int) {
	s.mu.Lock()
	s.players = n
	s.mu.Unlock()
}

// Session returns the fight being served.
func (s *Server) Session() *session.Session {
	return s.sess
}

// PlayerCount returns the number of connected players
func (s *Server) PlayerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.players
}
