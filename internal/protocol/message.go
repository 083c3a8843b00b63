package protocol

import "encoding/json"

// Message is the envelope for every event on the wire.
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType identifies an event.
type MessageType string

// Client → server message types.
const (
	MsgPing MessageType = "ping" // heartbeat

	// Room management
	MsgCreateRoom   MessageType = "create_room"   // create a private (or public) room
	MsgJoinRoom     MessageType = "join_room"     // join by code
	MsgRejoin       MessageType = "rejoin"        // reconnect into a running game
	MsgSaveSettings MessageType = "save_settings" // lobby-only settings update
	MsgLeave        MessageType = "leave"         // voluntary departure

	// Game flow
	MsgStartGame     MessageType = "start_game"     // host / ready-quorum start
	MsgReady         MessageType = "ready"          // ready toggle in public rooms
	MsgTopicSelected MessageType = "topic_selected" // chooser picks the round topic
	MsgSubmitAnswer  MessageType = "submit_answer"  // submit a lie
	MsgSubmitVote    MessageType = "submit_vote"    // vote for an option
	MsgNextStep      MessageType = "next_step"      // advance past results
	MsgRestart       MessageType = "restart"        // back to lobby, scores reset
	MsgVoteKick      MessageType = "vote_kick"      // ballot against a player

	// Chat
	MsgSendChat MessageType = "send_chat"
)

// Server → client message types.
const (
	MsgPong MessageType = "pong"

	// Room management
	MsgRoomCreated    MessageType = "room_created"
	MsgLobbyUpdate    MessageType = "lobby_update"
	MsgGoToSetup      MessageType = "go_to_setup" // host lands on the settings screen
	MsgPlayerLeft     MessageType = "player_left"
	MsgPlayerKicked   MessageType = "player_kicked"
	MsgRejoinSuccess  MessageType = "rejoin_success"
	MsgSessionExpired MessageType = "session_expired" // room gone, drop cached state

	// Game flow
	MsgChooseTopicPhase MessageType = "choose_topic_phase"
	MsgStartRound       MessageType = "start_round"
	MsgWaitForOthers    MessageType = "wait_for_others"
	MsgPlayerDone       MessageType = "player_done"
	MsgTruthDetected    MessageType = "truth_detected" // answer equals the truth
	MsgLieTaken         MessageType = "lie_taken"      // answer duplicates another lie
	MsgVotingPhase      MessageType = "voting_phase"
	MsgPlayerVoted      MessageType = "player_voted"
	MsgShowResults      MessageType = "show_results"
	MsgGameOver         MessageType = "game_over"

	// Chat
	MsgReceiveChat MessageType = "receive_chat"

	// Errors
	MsgError MessageType = "error"
)
