package server

import (
	"errors"
	"log"
	"time"

	"github.com/yallagames/kedhba/internal/game"
	"github.com/yallagames/kedhba/internal/protocol"
)

// Handler routes decoded messages to their handlers.
type Handler struct {
	server *Server
}

// NewHandler creates the dispatcher.
func NewHandler(s *Server) *Handler {
	return &Handler{server: s}
}

// Handle dispatches one message.
func (h *Handler) Handle(client *Client, msg *protocol.Message) {
	switch msg.Type {
	// Connection
	case protocol.MsgPing:
		h.handlePing(client, msg)

	// Room management
	case protocol.MsgCreateRoom:
		h.handleCreateRoom(client, msg)
	case protocol.MsgJoinRoom:
		h.handleJoinRoom(client, msg)
	case protocol.MsgRejoin:
		h.handleRejoin(client, msg)
	case protocol.MsgSaveSettings:
		h.handleSaveSettings(client, msg)
	case protocol.MsgLeave:
		h.handleLeave(client)

	// Game flow
	case protocol.MsgStartGame:
		h.handleStartGame(client)
	case protocol.MsgReady:
		h.handleReady(client)
	case protocol.MsgTopicSelected:
		h.handleTopicSelected(client, msg)
	case protocol.MsgSubmitAnswer:
		h.handleSubmitAnswer(client, msg)
	case protocol.MsgSubmitVote:
		h.handleSubmitVote(client, msg)
	case protocol.MsgNextStep:
		h.handleNextStep(client)
	case protocol.MsgRestart:
		h.handleRestart(client)
	case protocol.MsgVoteKick:
		h.handleVoteKick(client, msg)

	// Chat
	case protocol.MsgSendChat:
		h.handleChat(client, msg)

	default:
		log.Printf("unknown message type: %s", msg.Type)
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
	}
}

func (h *Handler) handlePing(client *Client, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.PingPayload](msg)
	if err != nil {
		return
	}

	client.SendMessage(protocol.MustNewMessage(protocol.MsgPong, protocol.PongPayload{
		ClientTimestamp: payload.Timestamp,
		ServerTimestamp: time.Now().UnixMilli(),
	}))
}

func (h *Handler) handleCreateRoom(client *Client, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.CreateRoomPayload](msg)
	if err != nil || payload.Name == "" {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	if h.server.IsMaintenanceMode() {
		client.SendMessage(protocol.NewErrorMessageWithText(protocol.ErrCodeInternalError,
			"السيرفر تحت الصيانة، جرب بعدين"))
		return
	}

	if !h.server.registry.AllowJoin(client.IP) {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeRateLimit))
		return
	}

	room, err := h.server.registry.CreateRoom(payload.IsPublic)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInternalError))
		return
	}

	player, err := room.Join(client.ID, client, payload.Name, payload.Avatar, payload.Social)
	if err != nil {
		h.sendGameError(client, err)
		return
	}

	client.BindPlayer(room.Code, player.ID)
	client.SendMessage(protocol.MustNewMessage(protocol.MsgRoomCreated, protocol.RoomCreatedPayload{
		Code: room.Code,
	}))

	// Private room creators land on the settings screen first.
	if !room.IsPublic {
		client.SendMessage(protocol.MustNewMessage(protocol.MsgGoToSetup, nil))
	}
}

func (h *Handler) handleJoinRoom(client *Client, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.JoinRoomPayload](msg)
	if err != nil || payload.Name == "" {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	if !h.server.registry.AllowJoin(client.IP) {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeRateLimit))
		return
	}

	room, ok := h.server.registry.Get(payload.Code)
	if !ok {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeRoomNotFound))
		return
	}

	player, err := room.Join(client.ID, client, payload.Name, payload.Avatar, payload.Social)
	if err != nil {
		h.sendGameError(client, err)
		return
	}

	client.BindPlayer(room.Code, player.ID)
}

func (h *Handler) handleRejoin(client *Client, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.RejoinPayload](msg)
	if err != nil || payload.Name == "" {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	room, ok := h.server.registry.Get(payload.Code)
	if !ok {
		// The room died while they were away; tell the client to drop
		// its cached session instead of retrying forever.
		client.SendMessage(protocol.MustNewMessage(protocol.MsgSessionExpired, nil))
		return
	}

	player, snapshot, err := room.Rejoin(client.ID, client, payload.Name, payload.Avatar, payload.Social)
	if err != nil {
		h.sendGameError(client, err)
		return
	}

	client.BindPlayer(room.Code, player.ID)
	client.SendMessage(protocol.MustNewMessage(protocol.MsgRejoinSuccess, snapshot))
}

func (h *Handler) handleSaveSettings(client *Client, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.SaveSettingsPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	room, ok := client.currentRoom()
	if !ok {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeNotInRoom))
		return
	}

	if err := room.SaveSettings(client.PlayerID, payload.Settings); err != nil {
		h.sendGameError(client, err)
	}
}

func (h *Handler) handleLeave(client *Client) {
	room, ok := client.currentRoom()
	if !ok {
		return
	}

	room.Leave(client.PlayerID)
	client.UnbindPlayer()
}

func (h *Handler) handleStartGame(client *Client) {
	h.roomCall(client, func(room *game.Room) error {
		return room.StartGame(client.PlayerID)
	})
}

func (h *Handler) handleReady(client *Client) {
	h.roomCall(client, func(room *game.Room) error {
		return room.Ready(client.PlayerID)
	})
}

func (h *Handler) handleTopicSelected(client *Client, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.TopicSelectedPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	h.roomCall(client, func(room *game.Room) error {
		return room.SelectTopic(client.PlayerID, payload.Topic)
	})
}

func (h *Handler) handleSubmitAnswer(client *Client, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.SubmitAnswerPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	h.roomCall(client, func(room *game.Room) error {
		return room.SubmitAnswer(client.PlayerID, payload.Answer)
	})
}

func (h *Handler) handleSubmitVote(client *Client, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.SubmitVotePayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	h.roomCall(client, func(room *game.Room) error {
		return room.SubmitVote(client.PlayerID, payload.ChoiceID)
	})
}

func (h *Handler) handleNextStep(client *Client) {
	h.roomCall(client, func(room *game.Room) error {
		return room.NextStep(client.PlayerID)
	})
}

func (h *Handler) handleRestart(client *Client) {
	h.roomCall(client, func(room *game.Room) error {
		return room.Restart(client.PlayerID)
	})
}

func (h *Handler) handleVoteKick(client *Client, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.VoteKickPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	h.roomCall(client, func(room *game.Room) error {
		return room.VoteKick(client.PlayerID, payload.TargetID)
	})
}

func (h *Handler) handleChat(client *Client, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.SendChatPayload](msg)
	if err != nil || payload.Message == "" {
		return
	}

	allowed, reason := h.server.chatLimiter.AllowChat(client.ID)
	if !allowed {
		client.SendMessage(protocol.NewErrorMessageWithText(protocol.ErrCodeRateLimit, reason))
		return
	}

	h.roomCall(client, func(room *game.Room) error {
		return room.Chat(client.PlayerID, payload.Message)
	})
}

// roomCall resolves the client's room and runs the operation,
// translating errors into wire events for the sender only.
func (h *Handler) roomCall(client *Client, fn func(room *game.Room) error) {
	room, ok := client.currentRoom()
	if !ok {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeNotInRoom))
		return
	}

	if err := fn(room); err != nil {
		h.sendGameError(client, err)
	}
}

// sendGameError maps a game error onto the wire. Truth and duplicate
// detections get their own event types so clients can animate them.
func (h *Handler) sendGameError(client *Client, err error) {
	var gerr *game.GameError
	if !errors.As(err, &gerr) {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeUnknown))
		return
	}

	switch gerr.Code {
	case protocol.ErrCodeTruthWritten:
		client.SendMessage(protocol.MustNewMessage(protocol.MsgTruthDetected, protocol.ErrorPayload{
			Code:    gerr.Code,
			Message: gerr.Message,
		}))
	case protocol.ErrCodeLieTaken:
		client.SendMessage(protocol.MustNewMessage(protocol.MsgLieTaken, protocol.ErrorPayload{
			Code:    gerr.Code,
			Message: gerr.Message,
		}))
	default:
		client.SendMessage(protocol.NewErrorMessageWithText(gerr.Code, gerr.Message))
	}
}
