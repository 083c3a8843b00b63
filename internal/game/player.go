package game

import (
	"encoding/json"

	"github.com/yallagames/kedhba/internal/protocol"
)

// Sender delivers messages to one connection. *server.Client satisfies
// it; tests substitute a recorder.
type Sender interface {
	SendMessage(msg *protocol.Message)
}

// Player is a seat in a room. ID is the stable identity handle; the
// connection id and Conn are volatile aliases replaced on reconnect.
// All round-scoped maps key on ID, so a reconnect never has to remap
// answers, votes, ballots or the chooser pool.
type Player struct {
	ID     string // stable, assigned at first join
	ConnID string // current connection, mutable
	Name   string // display name, the reconnection match key
	Avatar json.RawMessage
	Social json.RawMessage

	Score      int
	LastPoints int
	IsHost     bool
	Strikes    int // AFK strikes, cleared on any answer
	Online     bool

	Conn Sender
}

// Info renders the public view of the player.
func (p *Player) Info() protocol.PlayerInfo {
	return protocol.PlayerInfo{
		ID:         p.ID,
		Name:       p.Name,
		Avatar:     p.Avatar,
		Score:      p.Score,
		LastPoints: p.LastPoints,
		IsHost:     p.IsHost,
		Online:     p.Online,
	}
}

// send delivers to the player if a live connection is attached.
func (p *Player) send(msg *protocol.Message) {
	if p.Online && p.Conn != nil {
		p.Conn.SendMessage(msg)
	}
}
