package game

import (
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/yallagames/kedhba/internal/config"
	"github.com/yallagames/kedhba/internal/question"
	"github.com/yallagames/kedhba/internal/text"
)

// Registry owns every live room. Lookups normalize the code first, so
// a code typed with Arabic-Indic digits finds the same room.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	joinMu       sync.Mutex
	joinAttempts map[string]*joinRate

	catalog  question.Catalog
	cfg      *config.GameConfig
	recorder Recorder

	stop chan struct{}
	once sync.Once
}

// joinRate tracks room create/join attempts for one IP.
type joinRate struct {
	count int
	since time.Time
}

const (
	joinWindow      = 10 * time.Second
	maxJoinAttempts = 10

	// reconnectGrace keeps an all-offline room alive long enough for a
	// network blip to resolve; same-name rejoins inside the window get
	// their seats back instead of session_expired.
	reconnectGrace = 2 * time.Minute
)

// NewRegistry creates the registry, seeds the configured permanent
// public rooms, and starts the empty-room sweep.
func NewRegistry(catalog question.Catalog, cfg *config.GameConfig, recorder Recorder) *Registry {
	reg := &Registry{
		rooms:        make(map[string]*Room),
		joinAttempts: make(map[string]*joinRate),
		catalog:      catalog,
		cfg:          cfg,
		recorder:     recorder,
		stop:         make(chan struct{}),
	}

	for _, code := range cfg.PermanentRooms {
		code = text.NormalizeRoomCode(code)
		reg.rooms[code] = NewRoom(code, true, true, catalog, cfg, recorder)
		log.Printf("🏛️ permanent room %s ready", code)
	}

	go reg.sweepLoop()
	return reg
}

// CreateRoom allocates a room under a fresh 4-digit code.
func (reg *Registry) CreateRoom(isPublic bool) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	code, err := reg.generateCode()
	if err != nil {
		return nil, err
	}

	room := NewRoom(code, isPublic, false, reg.catalog, reg.cfg, reg.recorder)
	reg.rooms[code] = room
	log.Printf("🏠 room %s created (public=%v, total=%d)", code, isPublic, len(reg.rooms))
	return room, nil
}

// generateCode draws 4-digit codes until one is unused. The keyspace
// is 9000 codes; collisions stay cheap well past any realistic load.
func (reg *Registry) generateCode() (string, error) {
	for attempts := 0; attempts < 100; attempts++ {
		code := fmt.Sprintf("%d", 1000+rand.Intn(9000))
		if _, exists := reg.rooms[code]; !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("room code space exhausted")
}

// Get finds a room by code. Codes arrive in whatever digit script the
// player's keyboard produced.
func (reg *Registry) Get(code string) (*Room, bool) {
	code = text.NormalizeRoomCode(code)
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	room, ok := reg.rooms[code]
	return room, ok
}

// AllowJoin rate-limits room create/join attempts per IP, on top of
// the transport-level connection limiter. Codes are guessable 4-digit
// numbers; this keeps brute-forcing them impractical.
func (reg *Registry) AllowJoin(ip string) bool {
	reg.joinMu.Lock()
	defer reg.joinMu.Unlock()

	now := time.Now()
	rate, ok := reg.joinAttempts[ip]
	if !ok || now.Sub(rate.since) >= joinWindow {
		reg.joinAttempts[ip] = &joinRate{count: 1, since: now}
		return true
	}

	rate.count++
	return rate.count <= maxJoinAttempts
}

// purgeJoinAttempts drops stale attempt records. Called by the sweep.
func (reg *Registry) purgeJoinAttempts() {
	reg.joinMu.Lock()
	defer reg.joinMu.Unlock()

	now := time.Now()
	for ip, rate := range reg.joinAttempts {
		if now.Sub(rate.since) > time.Minute {
			delete(reg.joinAttempts, ip)
		}
	}
}

// RoomCount returns the number of live rooms.
func (reg *Registry) RoomCount() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}

// Close stops the sweep and tears down every room.
func (reg *Registry) Close() {
	reg.once.Do(func() { close(reg.stop) })

	reg.mu.Lock()
	defer reg.mu.Unlock()
	for code, room := range reg.rooms {
		room.Shutdown()
		delete(reg.rooms, code)
	}
}

// sweepLoop reclaims abandoned rooms. Permanent rooms are reset to an
// empty lobby instead of deleted.
func (reg *Registry) sweepLoop() {
	ticker := time.NewTicker(reg.cfg.SweepDuration())
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			reg.sweep()
		case <-reg.stop:
			return
		}
	}
}

func (reg *Registry) sweep() {
	reg.purgeJoinAttempts()

	reg.mu.Lock()
	defer reg.mu.Unlock()

	for code, room := range reg.rooms {
		if !room.Abandoned(reconnectGrace) {
			continue
		}
		// Grace period covers the gap between creation and the
		// creator's join landing.
		if time.Since(room.created) < 30*time.Second {
			continue
		}
		if room.Permanent {
			if room.PlayerCount() > 0 || room.Phase() != PhaseLobby {
				room.Reset()
				log.Printf("🧹 permanent room %s reset", code)
			}
			continue
		}
		room.Shutdown()
		delete(reg.rooms, code)
		log.Printf("🧹 room %s swept (abandoned)", code)
	}
}
