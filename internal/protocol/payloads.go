package protocol

import "encoding/json"

// --- Client request payloads ---

// PingPayload carries the client timestamp for latency measurement.
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // unix millis
}

// CreateRoomPayload requests a new room.
type CreateRoomPayload struct {
	Name     string          `json:"name"`
	Avatar   json.RawMessage `json:"avatar,omitempty"` // opaque to the server
	Social   json.RawMessage `json:"social,omitempty"`
	IsPublic bool            `json:"is_public,omitempty"`
}

// JoinRoomPayload requests joining an existing room.
type JoinRoomPayload struct {
	Code   string          `json:"code"`
	Name   string          `json:"name"`
	Avatar json.RawMessage `json:"avatar,omitempty"`
	Social json.RawMessage `json:"social,omitempty"`
}

// RejoinPayload asks to be reattached to a running game by display name.
type RejoinPayload struct {
	Code   string          `json:"code"`
	Name   string          `json:"name"`
	Avatar json.RawMessage `json:"avatar,omitempty"`
	Social json.RawMessage `json:"social,omitempty"`
}

// RoomSettings is the client-editable room configuration. Numeric
// fields are clamped server side, never rejected.
type RoomSettings struct {
	Rounds     int      `json:"rounds"`
	Seconds    int      `json:"seconds"`
	MaxPlayers int      `json:"max_players"`
	Topics     []string `json:"topics"`
}

// SaveSettingsPayload updates room settings (lobby only).
type SaveSettingsPayload struct {
	Code     string       `json:"code"`
	Settings RoomSettings `json:"settings"`
}

// RoomCodePayload is shared by events that address a room and carry
// nothing else (start_game, ready, next_step, restart, leave).
type RoomCodePayload struct {
	Code string `json:"code"`
}

// TopicSelectedPayload is the chooser's category pick.
type TopicSelectedPayload struct {
	Code  string `json:"code"`
	Topic string `json:"topic"`
}

// SubmitAnswerPayload carries a player's lie.
type SubmitAnswerPayload struct {
	Code   string `json:"code"`
	Answer string `json:"answer"`
}

// SubmitVotePayload carries a vote for an option id.
type SubmitVotePayload struct {
	Code     string `json:"code"`
	ChoiceID string `json:"choice_id"`
}

// VoteKickPayload is a ballot against a player.
type VoteKickPayload struct {
	Code     string `json:"code"`
	TargetID string `json:"target_id"`
}

// SendChatPayload is a chat message (pure fan-out, no game state).
type SendChatPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// --- Server response payloads ---

// PongPayload answers a ping.
type PongPayload struct {
	ClientTimestamp int64 `json:"client_timestamp"`
	ServerTimestamp int64 `json:"server_timestamp"`
}

// PlayerInfo is the public view of a player.
type PlayerInfo struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Avatar     json.RawMessage `json:"avatar,omitempty"`
	Score      int             `json:"score"`
	LastPoints int             `json:"last_points"`
	IsHost     bool            `json:"is_host"`
	Online     bool            `json:"online"`
}

// RoomCreatedPayload confirms room creation to the creator.
type RoomCreatedPayload struct {
	Code string `json:"code"`
}

// LobbyUpdatePayload is the lobby snapshot broadcast.
type LobbyUpdatePayload struct {
	Code     string       `json:"code"`
	Players  []PlayerInfo `json:"players"`
	HostID   string       `json:"host_id,omitempty"`
	IsPublic bool         `json:"is_public"`
	Settings RoomSettings `json:"settings"`
	ReadyIDs []string     `json:"ready_ids,omitempty"` // public rooms only
}

// ChooseTopicPhasePayload announces the chooser and the topic menu.
type ChooseTopicPhasePayload struct {
	ChooserID   string   `json:"chooser_id"`
	ChooserName string   `json:"chooser_name"`
	Topics      []string `json:"topics"`
	Round       int      `json:"round"`
	TotalRounds int      `json:"total_rounds"`
}

// StartRoundPayload opens the input phase.
type StartRoundPayload struct {
	Question  string `json:"question"`
	InputType string `json:"input_type"` // always "text" for now
	Time      int    `json:"time"`       // seconds budget
	StartTime int64  `json:"start_time"` // unix millis, for countdown recovery
}

// PlayerDonePayload pings that a player has submitted (id only).
type PlayerDonePayload struct {
	PlayerID string `json:"player_id"`
}

// VoteOption is one selectable entry during voting. The id is opaque;
// authorship is never exposed.
type VoteOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// VotingPhasePayload opens the voting phase.
type VotingPhasePayload struct {
	Options   []VoteOption `json:"options"`
	Time      int          `json:"time"`
	StartTime int64        `json:"start_time"`
}

// PlayerVotedPayload pings that a player voted, never the choice.
type PlayerVotedPayload struct {
	PlayerID string `json:"player_id"`
}

// ShowResultsPayload reveals the truth and the leaderboard.
type ShowResultsPayload struct {
	Truth       string       `json:"truth"`
	Leaderboard []PlayerInfo `json:"leaderboard"`
	IsFinal     bool         `json:"is_final"`
	HostID      string       `json:"host_id,omitempty"`
	Time        int          `json:"time"`
	StartTime   int64        `json:"start_time"`
}

// GameOverPayload closes the game with winner and loser.
type GameOverPayload struct {
	Winner      PlayerInfo   `json:"winner"`
	Loser       PlayerInfo   `json:"loser"`
	Leaderboard []PlayerInfo `json:"leaderboard"`
	HostID      string       `json:"host_id,omitempty"`
}

// RejoinSuccessPayload is the phase-appropriate resync snapshot.
type RejoinSuccessPayload struct {
	Code      string       `json:"code"`
	PlayerID  string       `json:"player_id"`
	Name      string       `json:"name"`
	IsHost    bool         `json:"is_host"`
	Players   []PlayerInfo `json:"players"`
	GameState string       `json:"game_state"`

	// picking_topic
	TopicData *ChooseTopicPhasePayload `json:"topic_data,omitempty"`
	// input
	QuestionData *StartRoundPayload `json:"question_data,omitempty"`
	HasAnswered  bool               `json:"has_answered,omitempty"`
	DoneIDs      []string           `json:"done_ids,omitempty"`
	// voting
	VoteOptions []VoteOption `json:"vote_options,omitempty"`
	HasVoted    bool         `json:"has_voted,omitempty"`
	VotedIDs    []string     `json:"voted_ids,omitempty"`
	// input/voting: recomputed, never negative
	RemainingSeconds int `json:"remaining_seconds,omitempty"`
	// results
	ResultData *ShowResultsPayload `json:"result_data,omitempty"`
}

// PlayerLeftPayload announces a departure.
type PlayerLeftPayload struct {
	PlayerID string       `json:"player_id"`
	Name     string       `json:"name"`
	Players  []PlayerInfo `json:"players"`
	HostID   string       `json:"host_id,omitempty"`
}

// PlayerKickedPayload announces a vote-kick ejection.
type PlayerKickedPayload struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
}

// ReceiveChatPayload is the chat fan-out.
type ReceiveChatPayload struct {
	SenderID   string `json:"sender_id"`
	SenderName string `json:"sender_name"`
	Message    string `json:"message"`
}

// ErrorPayload is the generic error signal.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
