package config

// BeatConfig contains beat clock configuration values
type BeatConfig struct {
	// Epsilon is how far ahead of "now" (seconds) a beat may be fired so
	// tick jitter does not push a beat into the following tick.
	Epsilon float64

	// TickRate is the simulation rate the epsilon is derived from.
	TickRate int
}

// PoolConfig contains projectile pool configuration values
type PoolConfig struct {
	DefaultCapacity int // Capacity of pools created for templates without one
	DefaultPreload  int // Instances warmed when a template asks for no preload
	MaxBehaviors    int // Size of the per-projectile behavior table
}

// ProjectileConfig contains fallback values for incomplete templates
type ProjectileConfig struct {
	DefaultSpeed    float64 // px/s
	DefaultDamage   int
	DefaultLifetime float64 // seconds
	DefaultRadius   float64 // px

	// Homing
	AlignTolerance float64 // degrees; directions closer than this count as aligned
	RetargetFloor  float64 // seconds; lower bound for auto-target retarget intervals
}

// BossConfig contains boss state machine configuration values
type BossConfig struct {
	DefaultMaxHealth int
	TimerInterval    float64 // seconds between attacks in automatic-timer mode
	DefaultEase      string  // easing used when a move names none
	HitboxSize       float64
	BodyEmitter      string // emitter name addressing the boss body
}

// PlayerConfig contains player target configuration values
type PlayerConfig struct {
	Health     int
	HitboxSize float64
	InvulnTime float64 // seconds of invulnerability after a hit
	MoveSpeed  float64 // px/s for networked input

	// Auto-fire used by headless runs
	FireInterval float64 // seconds between shots, 0 disables
	ShotTemplate string
}

// ArenaConfig contains arena/collision configuration values
type ArenaConfig struct {
	Width         int
	Height        int
	CellSize      int
	WallThickness float64

	// TMX layer and object group names
	WallLayer    string
	WallGroup    string
	EmitterGroup string
	PlayerGroup  string
	BossGroup    string
	NormalProbe  float64 // max distance for nearest-point normal queries
}

// NetConfig contains spectator server configuration values
type NetConfig struct {
	Port       uint
	TickRate   int
	Version    string // required client version, empty accepts any
	MaxPlayers int
}

// DebugConfig contains debug/testing options
type DebugConfig struct {
	LogBeats     bool // Log every delivered beat
	LogEvictions bool // Log pool capacity recycling
}

// Global configuration instances
var Beat BeatConfig
var Pool PoolConfig
var Projectile ProjectileConfig
var Boss BossConfig
var Player PlayerConfig
var Arena ArenaConfig
var Net NetConfig
var Debug DebugConfig

func init() {
	Beat = BeatConfig{
		TickRate: 60,
		Epsilon:  1.0 / 60.0,
	}

	Pool = PoolConfig{
		DefaultCapacity: 512,
		DefaultPreload:  0,
		MaxBehaviors:    4,
	}

	Projectile = ProjectileConfig{
		DefaultSpeed:    240,
		DefaultDamage:   1,
		DefaultLifetime: 5,
		DefaultRadius:   4,
		AlignTolerance:  0.5,
		RetargetFloor:   0.05,
	}

	Boss = BossConfig{
		DefaultMaxHealth: 1000,
		TimerInterval:    1.5,
		DefaultEase:      "linear",
		HitboxSize:       48,
		BodyEmitter:      "body",
	}

	Player = PlayerConfig{
		Health:       5,
		HitboxSize:   8,
		InvulnTime:   1,
		MoveSpeed:    120,
		FireInterval: 0.25,
		ShotTemplate: "player_shot",
	}

	Arena = ArenaConfig{
		Width:         640,
		Height:        360,
		CellSize:      16,
		WallThickness: 16,
		WallLayer:     "walls",
		WallGroup:     "Walls",
		EmitterGroup:  "Emitters",
		PlayerGroup:   "PlayerSpawn",
		BossGroup:     "Boss",
		NormalProbe:   64,
	}

	Net = NetConfig{
		Port:       7373,
		TickRate:   20,
		MaxPlayers: 4,
	}

	Debug = DebugConfig{
		LogBeats:     false,
		LogEvictions: true,
	}
}
