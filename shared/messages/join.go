package messages

// JoinRequest is sent by a client after connecting. Spectators receive the
// world sync without a player of their own.
type JoinRequest struct {
	Version    string
	PlayerName string
	Spectate   bool
}
