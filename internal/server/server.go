package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/yallagames/kedhba/internal/config"
	"github.com/yallagames/kedhba/internal/game"
	"github.com/yallagames/kedhba/internal/question"
	"github.com/yallagames/kedhba/internal/storage"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin is enforced in handleWebSocket via the configured
	// checker, not here.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	EnableCompression: false,
}

// Server is the WebSocket front door: it owns the connections, the
// room registry, and the abuse-protection components.
type Server struct {
	config      *config.Config
	redis       *redis.Client // nil when no leaderboard is configured
	leaderboard *storage.Leaderboard
	registry    *game.Registry
	handler     *Handler

	clients   map[string]*Client
	clientsMu sync.RWMutex

	// Security components
	rateLimiter    *RateLimiter
	originChecker  *OriginChecker
	messageLimiter *MessageRateLimiter
	chatLimiter    *ChatRateLimiter

	// Connection control
	maxConnections int
	semaphore      chan struct{}

	maintenanceMode bool
	maintenanceMu   sync.RWMutex

	httpServer *http.Server
}

// NewServer wires up the server. With no Redis address configured the
// lifetime leaderboard is simply absent; everything else runs in
// memory.
func NewServer(cfg *config.Config) (*Server, error) {
	s := &Server{
		config:  cfg,
		clients: make(map[string]*Client),
		rateLimiter: NewRateLimiter(
			cfg.Security.RateLimit.MaxPerSecond,
			cfg.Security.RateLimit.MaxPerMinute,
			cfg.Security.RateLimit.BanDuration(),
		),
		originChecker:  NewOriginChecker(cfg.Security.AllowedOrigins),
		messageLimiter: NewMessageRateLimiter(cfg.Security.MessageLimit.MaxPerSecond),
		chatLimiter: NewChatRateLimiter(
			cfg.Security.ChatLimit.MaxPerSecond,
			cfg.Security.ChatLimit.MaxPerMinute,
			cfg.Security.ChatLimit.CooldownDuration(),
		),
		maxConnections: cfg.Server.MaxConnections,
		semaphore:      make(chan struct{}, cfg.Server.MaxConnections),
	}

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis connection failed: %w", err)
		}

		s.redis = rdb
		s.leaderboard = storage.NewLeaderboard(rdb)
		log.Printf("📇 lifetime leaderboard enabled (redis %s)", cfg.Redis.Addr)
	}

	catalog, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}

	var recorder game.Recorder
	if s.leaderboard != nil {
		recorder = s.leaderboard
	}
	s.registry = game.NewRegistry(catalog, &cfg.Game, recorder)
	s.handler = NewHandler(s)

	log.Printf("🔒 security: conn limit=%d/s, msg limit=%d/s, chat limit=%d/s, max conns=%d",
		cfg.Security.RateLimit.MaxPerSecond, cfg.Security.MessageLimit.MaxPerSecond,
		cfg.Security.ChatLimit.MaxPerSecond, cfg.Server.MaxConnections)

	return s, nil
}

func loadCatalog(cfg *config.Config) (question.Catalog, error) {
	if cfg.Game.QuestionsFile == "" {
		return question.DefaultCatalog(), nil
	}
	catalog, err := question.Load(cfg.Game.QuestionsFile)
	if err != nil {
		return nil, fmt.Errorf("loading question catalog: %w", err)
	}
	log.Printf("📚 loaded question catalog from %s (%d categories)", cfg.Game.QuestionsFile, len(catalog))
	return catalog, nil
}

// Start runs the HTTP listener until it fails or Shutdown is called.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	go s.monitorStats()

	log.Printf("🚀 server listening on ws://%s/ws (CPUs: %d)", addr, runtime.NumCPU())
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second, // Slowloris guard
		IdleTimeout:       60 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	clientIP := GetClientIP(r)

	if s.IsMaintenanceMode() {
		log.Printf("🔧 maintenance mode, refusing connection from %s", clientIP)
		http.Error(w, "Server is under maintenance, please try again later",
			http.StatusServiceUnavailable)
		return
	}

	// Connection cap; released when the read pump exits.
	select {
	case s.semaphore <- struct{}{}:
	default:
		log.Printf("🚫 connection cap reached (%d), IP: %s", s.maxConnections, clientIP)
		http.Error(w, "Server Full", http.StatusServiceUnavailable)
		return
	}

	if !s.originChecker.Check(r) {
		<-s.semaphore
		log.Printf("🚫 origin rejected: %s (IP: %s)", r.Header.Get("Origin"), clientIP)
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}

	if !s.rateLimiter.Allow(clientIP) {
		<-s.semaphore
		log.Printf("🚫 IP %s connecting too fast", clientIP)
		http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		<-s.semaphore
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	client := NewClient(s, conn)
	client.IP = clientIP
	s.registerClient(client)

	log.Printf("✅ connection %s established (IP: %s)", client.ID, clientIP)

	go client.WritePump()
	go func() {
		client.ReadPump()
		<-s.semaphore
	}()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) registerClient(client *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[client.ID] = client
}

func (s *Server) unregisterClient(client *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	if _, ok := s.clients[client.ID]; ok {
		delete(s.clients, client.ID)
		log.Printf("❌ connection %s closed", client.ID)
	}
}

// GetOnlineCount returns the number of open connections.
func (s *Server) GetOnlineCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// monitorStats logs server vitals every 30 seconds.
func (s *Server) monitorStats() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		log.Printf("📊 [monitor] online: %d | rooms: %d | goroutines: %d | conns: %d/%d | mem: %.2f MB",
			s.GetOnlineCount(),
			s.registry.RoomCount(),
			runtime.NumGoroutine(),
			len(s.semaphore),
			s.maxConnections,
			float64(m.Alloc)/1024/1024)
	}
}

// EnterMaintenanceMode stops accepting new connections; existing games
// play out.
func (s *Server) EnterMaintenanceMode() {
	s.maintenanceMu.Lock()
	s.maintenanceMode = true
	s.maintenanceMu.Unlock()

	log.Println("🔧 maintenance mode: no new connections or rooms")
}

// IsMaintenanceMode reports whether maintenance mode is active.
func (s *Server) IsMaintenanceMode() bool {
	s.maintenanceMu.RLock()
	defer s.maintenanceMu.RUnlock()
	return s.maintenanceMode
}

// Shutdown tears the server down: listener, rooms, connections, Redis.
func (s *Server) Shutdown(ctx context.Context) {
	s.EnterMaintenanceMode()

	if s.httpServer != nil {
		_ = s.httpServer.Shutdown(ctx)
	}

	s.registry.Close()

	s.clientsMu.Lock()
	for _, client := range s.clients {
		client.Close()
	}
	s.clientsMu.Unlock()

	if s.redis != nil {
		_ = s.redis.Close()
	}

	log.Println("👋 server stopped")
}
