package server

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/yallagames/kedhba/internal/game"
	"github.com/yallagames/kedhba/internal/protocol"
)

const (
	writeWait = 10 * time.Second

	// Read deadline, refreshed on every pong.
	pongWait = 60 * time.Second

	// Must be shorter than pongWait.
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4096
)

// Client is one WebSocket connection. The connection id is throwaway;
// PlayerID is the stable game identity bound at join and rebound on
// rejoin.
type Client struct {
	ID       string // connection id
	PlayerID string // stable game player id, empty before joining
	RoomCode string
	IP       string

	server *Server
	conn   *websocket.Conn
	send   chan []byte

	mu     sync.RWMutex
	closed bool
}

// NewClient wraps an upgraded connection.
func NewClient(s *Server, conn *websocket.Conn) *Client {
	return &Client{
		ID:     uuid.New().String(),
		server: s,
		conn:   conn,
		send:   make(chan []byte, 256),
	}
}

// ReadPump reads messages off the socket until it dies.
func (c *Client) ReadPump() {
	defer func() {
		c.handleDisconnect()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("read error: %v", err)
			}
			break
		}

		allowed, warning := c.server.messageLimiter.AllowMessage(c.ID)
		if !allowed {
			log.Printf("⚠️ client %s (IP: %s) sending too fast", c.ID, c.IP)
			c.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeRateLimit))
			if c.server.messageLimiter.GetWarningCount(c.ID) > 5 {
				log.Printf("🚫 client %s disconnected for repeated flooding", c.ID)
				break
			}
			continue
		}
		if warning {
			c.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeRateLimit))
		}

		msg, err := protocol.Decode(message)
		if err != nil {
			log.Printf("message decode error: %v", err)
			c.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
			continue
		}

		c.server.handler.Handle(c, msg)
	}
}

// WritePump drains the send channel into the socket and keeps the
// connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendMessage queues a message for delivery. Satisfies game.Sender.
func (c *Client) SendMessage(msg *protocol.Message) {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return
	}
	c.mu.RUnlock()

	data, err := protocol.Encode(msg)
	if err != nil {
		log.Printf("message encode error: %v", err)
		return
	}

	select {
	case c.send <- data:
	default:
		// Slow consumer; drop the connection rather than block rooms.
		log.Printf("client %s send buffer full", c.ID)
		c.Close()
	}
}

// handleDisconnect untangles the connection from the room and the
// server registries.
func (c *Client) handleDisconnect() {
	if room, ok := c.currentRoom(); ok {
		room.Disconnect(c.PlayerID)
	}

	c.server.messageLimiter.RemoveClient(c.ID)
	c.server.chatLimiter.RemoveClient(c.ID)
	c.server.unregisterClient(c)
}

// currentRoom resolves the client's room, if they joined one.
func (c *Client) currentRoom() (*game.Room, bool) {
	c.mu.RLock()
	code, playerID := c.RoomCode, c.PlayerID
	c.mu.RUnlock()

	if code == "" || playerID == "" {
		return nil, false
	}
	return c.server.registry.Get(code)
}

// Close shuts the send channel exactly once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// BindPlayer records the game identity after a join or rejoin.
func (c *Client) BindPlayer(roomCode, playerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.RoomCode = roomCode
	c.PlayerID = playerID
}

// UnbindPlayer clears the game identity after leaving a room.
func (c *Client) UnbindPlayer() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.RoomCode = ""
	c.PlayerID = ""
}
