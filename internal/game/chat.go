package game

import "github.com/yallagames/kedhba/internal/protocol"

// Chat fans a message out to the room. Pure relay, no game state; the
// per-connection chat limiter runs before this is ever called.
func (r *Room) Chat(actorID, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.playerByID(actorID)
	if p == nil {
		return ErrNotInRoom
	}

	r.broadcast(protocol.MustNewMessage(protocol.MsgReceiveChat, protocol.ReceiveChatPayload{
		SenderID:   p.ID,
		SenderName: p.Name,
		Message:    message,
	}))
	return nil
}
