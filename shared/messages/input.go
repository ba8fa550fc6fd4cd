package messages

// PlayerInput is sent from client to server whenever the player's stick
// changes. MoveX and MoveY are clamped to the unit circle by the server.
type PlayerInput struct {
	Sequence  uint32 // Incrementing ID, stale inputs are dropped
	MoveX     float64
	MoveY     float64
	Timestamp int64 // Client timestamp (Unix ms)
}
