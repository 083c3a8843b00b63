package game

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yallagames/kedhba/internal/config"
	"github.com/yallagames/kedhba/internal/protocol"
	"github.com/yallagames/kedhba/internal/question"
)

// RemoveReason explains why a player left the roster.
type RemoveReason int

const (
	RemoveLeft   RemoveReason = iota // voluntary or transport-level
	RemoveKicked                     // vote-kick majority
	RemoveAFK                        // strike limit reached
)

// Recorder receives final scores at gameover. The Redis leaderboard
// implements it; rooms tolerate a nil recorder.
type Recorder interface {
	RecordGame(name string, score int, won bool)
}

// Room is one independent game session. It is a single-writer state
// machine: every mutation, including timer fires and disconnects,
// happens under mu, and the "did everyone respond" checks are atomic
// with the transitions they gate. Rooms never touch each other.
type Room struct {
	Code      string
	IsPublic  bool
	Permanent bool

	mu sync.Mutex

	phase        Phase
	players      []*Player // join order, also the display and tie-break order
	hostID       string    // stable player id, empty for hostless public rooms
	settings     protocol.RoomSettings
	currentRound int
	round        *roundData
	usedQs       map[string]bool
	chooserPool  []string                   // stable ids not yet chosen this cycle
	kickBallots  map[string]map[string]bool // target id -> voter ids
	ready        map[string]bool            // public rooms: ready-quorum set

	timer    *time.Timer
	timerGen uint64 // guards stale fires after a forced transition

	catalog  question.Catalog
	cfg      *config.GameConfig
	recorder Recorder

	created    time.Time
	emptySince time.Time // first moment every seat went offline; zero while anyone is connected
}

// NewRoom builds an empty room in the lobby phase.
func NewRoom(code string, isPublic, permanent bool, catalog question.Catalog, cfg *config.GameConfig, recorder Recorder) *Room {
	return &Room{
		Code:      code,
		IsPublic:  isPublic,
		Permanent: permanent,
		phase:     PhaseLobby,
		settings: protocol.RoomSettings{
			Rounds:     cfg.DefaultRounds,
			Seconds:    cfg.DefaultSeconds,
			MaxPlayers: cfg.DefaultMaxP,
			Topics:     catalog.Categories(),
		},
		usedQs:      make(map[string]bool),
		kickBallots: make(map[string]map[string]bool),
		ready:       make(map[string]bool),
		catalog:     catalog,
		cfg:         cfg,
		recorder:    recorder,
		created:     time.Now(),
	}
}

// Join admits a new player. Admission is lobby-only and capacity
// bound; a duplicate display name is auto-suffixed, never rejected.
func (r *Room) Join(connID string, conn Sender, name string, avatar, social json.RawMessage) (*Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.join(connID, conn, name, avatar, social)
}

func (r *Room) join(connID string, conn Sender, name string, avatar, social json.RawMessage) (*Player, error) {
	if r.phase != PhaseLobby {
		return nil, ErrGameStarted
	}
	if len(r.players) >= r.settings.MaxPlayers {
		return nil, ErrRoomFull
	}

	name = r.dedupeName(name)

	p := &Player{
		ID:     uuid.New().String(),
		ConnID: connID,
		Name:   name,
		Avatar: avatar,
		Social: social,
		Online: true,
		Conn:   conn,
	}

	// First joiner hosts a private room; public rooms stay hostless
	// and advance by ready-quorum instead.
	if r.hostID == "" && !r.IsPublic {
		r.hostID = p.ID
		p.IsHost = true
	}

	r.players = append(r.players, p)
	r.markPresence()
	log.Printf("👤 player %s joined room %s (%d/%d)", p.Name, r.Code, len(r.players), r.settings.MaxPlayers)

	r.broadcastLobby()
	return p, nil
}

// Leave removes a player voluntarily.
func (r *Room) Leave(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removePlayer(playerID, RemoveLeft)
}

// Disconnect handles a transport-level drop. In the lobby the seat is
// released; mid-game the Player record survives offline so a rejoin
// under the same name can rebind it without losing answers or votes.
func (r *Room) Disconnect(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.playerByID(playerID)
	if p == nil {
		return
	}

	if r.phase == PhaseLobby {
		r.removePlayer(playerID, RemoveLeft)
		return
	}

	p.Online = false
	p.Conn = nil
	r.markPresence()
	delete(r.ready, playerID)
	r.pruneBallots(playerID)
	r.removeFromChooserPool(playerID)

	if p.IsHost {
		p.IsHost = false
		r.handoffHost()
	}

	// An absent chooser cannot pick a topic; redraw among the rest.
	if r.phase == PhasePickingTopic && r.round != nil && r.round.chooserID == playerID {
		r.redrawChooser()
	}

	// The departed player may have been the last one everyone was
	// waiting for.
	r.checkPhaseCompletion()

	log.Printf("📴 player %s went offline in room %s", p.Name, r.Code)
}

// SaveSettings updates room configuration. Lobby-only; numeric fields
// are clamped, never rejected. Hostless public rooms keep their
// defaults.
func (r *Room) SaveSettings(actorID string, s protocol.RoomSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != PhaseLobby {
		return ErrWrongPhase
	}
	if r.IsPublic {
		return ErrNotHost
	}
	if actorID != r.hostID {
		return ErrNotHost
	}

	r.settings = r.clampSettings(s)
	r.broadcastLobby()
	return nil
}

func (r *Room) clampSettings(s protocol.RoomSettings) protocol.RoomSettings {
	clamp := func(v, lo, hi, def int) int {
		if v == 0 {
			return def
		}
		if v < lo {
			return lo
		}
		if v > hi {
			return hi
		}
		return v
	}

	s.Rounds = clamp(s.Rounds, 1, 20, r.cfg.DefaultRounds)
	s.Seconds = clamp(s.Seconds, 15, 60, r.cfg.DefaultSeconds)
	s.MaxPlayers = clamp(s.MaxPlayers, 2, 16, r.cfg.DefaultMaxP)

	// Unknown topics are filtered; an empty selection falls back to
	// the full catalog.
	var topics []string
	for _, id := range s.Topics {
		if _, ok := r.catalog[id]; ok {
			topics = append(topics, id)
		}
	}
	if len(topics) == 0 {
		topics = r.catalog.Categories()
	}
	s.Topics = topics

	return s
}

// dedupeName suffixes a display name until it is unique in the room.
// The display name is the reconnection key, so collisions would let
// one player hijack another's seat.
func (r *Room) dedupeName(name string) string {
	if r.playerByName(name) == nil {
		return name
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s (%d)", name, i)
		if r.playerByName(candidate) == nil {
			return candidate
		}
	}
}

// --- roster helpers (lock held) ---

func (r *Room) playerByID(id string) *Player {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Room) playerByName(name string) *Player {
	for _, p := range r.players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func (r *Room) onlineCount() int {
	n := 0
	for _, p := range r.players {
		if p.Online {
			n++
		}
	}
	return n
}

// markPresence maintains the all-offline timestamp. Offline seats stay
// on the roster so same-name rejoins can reclaim them; emptySince
// records when the last connection dropped so the registry knows how
// long the room has been waiting for someone to come back.
func (r *Room) markPresence() {
	if r.onlineCount() > 0 {
		r.emptySince = time.Time{}
		return
	}
	if r.emptySince.IsZero() {
		r.emptySince = time.Now()
	}
}

// removePlayer prunes every reference to the player and hands off the
// host seat if needed. Stale entries in answers/votes must not outlive
// this call.
func (r *Room) removePlayer(playerID string, reason RemoveReason) {
	p := r.playerByID(playerID)
	if p == nil {
		return
	}

	for i, q := range r.players {
		if q.ID == playerID {
			r.players = append(r.players[:i], r.players[i+1:]...)
			break
		}
	}
	r.markPresence()

	if r.round != nil {
		delete(r.round.answers, playerID)
		delete(r.round.normalized, playerID)
		delete(r.round.votes, playerID)
	}
	delete(r.ready, playerID)
	r.pruneBallots(playerID)
	r.removeFromChooserPool(playerID)

	if p.IsHost {
		p.IsHost = false
		r.handoffHost()
	}

	switch reason {
	case RemoveKicked, RemoveAFK:
		kicked := protocol.MustNewMessage(protocol.MsgPlayerKicked, protocol.PlayerKickedPayload{
			PlayerID: p.ID,
			Name:     p.Name,
		})
		// The target is already off the roster, so the broadcast
		// alone would never reach them.
		p.send(kicked)
		r.broadcast(kicked)
		if reason == RemoveAFK {
			log.Printf("💤 player %s removed from room %s after %d AFK strikes", p.Name, r.Code, p.Strikes)
		} else {
			log.Printf("🥾 player %s kicked from room %s", p.Name, r.Code)
		}
	default:
		log.Printf("👋 player %s left room %s", p.Name, r.Code)
	}

	r.broadcast(protocol.MustNewMessage(protocol.MsgPlayerLeft, protocol.PlayerLeftPayload{
		PlayerID: p.ID,
		Name:     p.Name,
		Players:  r.playersInfo(),
		HostID:   r.hostID,
	}))

	if r.phase == PhaseLobby {
		r.broadcastLobby()
		return
	}

	if r.phase == PhasePickingTopic && r.round != nil && r.round.chooserID == playerID {
		r.redrawChooser()
		return
	}

	// A departure can be what completes the round.
	r.checkPhaseCompletion()
}

// handoffHost promotes the earliest-joined online player.
func (r *Room) handoffHost() {
	r.hostID = ""
	for _, p := range r.players {
		if p.Online {
			r.hostID = p.ID
			p.IsHost = true
			log.Printf("👑 host of room %s handed to %s", r.Code, p.Name)
			return
		}
	}
}

func (r *Room) removeFromChooserPool(playerID string) {
	for i, id := range r.chooserPool {
		if id == playerID {
			r.chooserPool = append(r.chooserPool[:i], r.chooserPool[i+1:]...)
			return
		}
	}
}

// --- broadcast helpers (lock held) ---

func (r *Room) broadcast(msg *protocol.Message) {
	for _, p := range r.players {
		p.send(msg)
	}
}

func (r *Room) broadcastLobby() {
	r.broadcast(protocol.MustNewMessage(protocol.MsgLobbyUpdate, r.lobbySnapshot()))
}

func (r *Room) lobbySnapshot() protocol.LobbyUpdatePayload {
	return protocol.LobbyUpdatePayload{
		Code:     r.Code,
		Players:  r.playersInfo(),
		HostID:   r.hostID,
		IsPublic: r.IsPublic,
		Settings: r.settings,
		ReadyIDs: r.readyIDs(),
	}
}

func (r *Room) playersInfo() []protocol.PlayerInfo {
	infos := make([]protocol.PlayerInfo, len(r.players))
	for i, p := range r.players {
		infos[i] = p.Info()
	}
	return infos
}

// leaderboard returns players by descending score; ties keep join
// order (the sort is stable over the join-ordered roster).
func (r *Room) leaderboard() []protocol.PlayerInfo {
	infos := r.playersInfo()
	sort.SliceStable(infos, func(i, j int) bool {
		return infos[i].Score > infos[j].Score
	})
	return infos
}

func (r *Room) readyIDs() []string {
	ids := make([]string, 0, len(r.ready))
	for _, p := range r.players {
		if r.ready[p.ID] {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// --- accessors for the registry and handlers ---

// Phase returns the current phase.
func (r *Room) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// PlayerCount returns the roster size, online or not.
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// Abandoned reports whether the registry may reclaim the room: the
// roster is empty, or every seat has been offline for at least grace.
// A transient all-offline blip mid-game must not destroy the room, or
// the reconnection seats it keeps would point at nothing.
func (r *Room) Abandoned(grace time.Duration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.players) == 0 {
		return true
	}
	if r.onlineCount() > 0 {
		return false
	}
	return !r.emptySince.IsZero() && time.Since(r.emptySince) >= grace
}

// Shutdown cancels the outstanding timer as part of room teardown.
func (r *Room) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopTimer()
}

// Reset returns the room to an empty lobby: permanent rooms survive
// emptying out, only their transient game state goes.
func (r *Room) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopTimer()
	r.phase = PhaseLobby
	r.players = nil
	r.hostID = ""
	r.currentRound = 0
	r.round = nil
	r.usedQs = make(map[string]bool)
	r.chooserPool = nil
	r.kickBallots = make(map[string]map[string]bool)
	r.ready = make(map[string]bool)
	r.settings = protocol.RoomSettings{
		Rounds:     r.cfg.DefaultRounds,
		Seconds:    r.cfg.DefaultSeconds,
		MaxPlayers: r.cfg.DefaultMaxP,
		Topics:     r.catalog.Categories(),
	}
}
