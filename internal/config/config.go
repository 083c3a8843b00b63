package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full server configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Redis    RedisConfig    `yaml:"redis"`
	Game     GameConfig     `yaml:"game"`
	Security SecurityConfig `yaml:"security"`
}

// ServerConfig covers the WebSocket listener.
type ServerConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	MaxConnections int    `yaml:"max_connections"`
}

// RedisConfig covers the optional lifetime leaderboard store. An empty
// addr disables it; game state itself never touches Redis.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// GameConfig covers room and round behavior.
type GameConfig struct {
	DefaultRounds  int      `yaml:"default_rounds"`  // rounds per game
	DefaultSeconds int      `yaml:"default_seconds"` // input phase budget
	DefaultMaxP    int      `yaml:"default_max_players"`
	MaxVotingSecs  int      `yaml:"max_voting_seconds"` // voting budget cap
	ResultsSeconds int      `yaml:"results_seconds"`    // results review pacing
	AFKStrikeLimit int      `yaml:"afk_strike_limit"`   // strikes before ejection
	SweepInterval  int      `yaml:"sweep_interval"`     // empty-room sweep (seconds)
	QuestionsFile  string   `yaml:"questions_file"`     // YAML catalog, empty = built-in
	PermanentRooms []string `yaml:"permanent_rooms"`    // fixed public room codes
}

// SecurityConfig covers abuse protection.
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins"`
	RateLimit      RateLimitConfig `yaml:"rate_limit"`
	MessageLimit   MsgLimitConfig  `yaml:"message_limit"`
	ChatLimit      ChatLimitConfig `yaml:"chat_limit"`
}

// RateLimitConfig limits connection attempts per IP.
type RateLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second"`
	MaxPerMinute int `yaml:"max_per_minute"`
	BanMinutes   int `yaml:"ban_minutes"`
}

// MsgLimitConfig limits messages per connection.
type MsgLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second"`
}

// ChatLimitConfig limits chat fan-out per connection.
type ChatLimitConfig struct {
	MaxPerSecond    int `yaml:"max_per_second"`
	MaxPerMinute    int `yaml:"max_per_minute"`
	CooldownSeconds int `yaml:"cooldown_seconds"`
}

// BanDuration returns the connection-limit ban window.
func (c *RateLimitConfig) BanDuration() time.Duration {
	return time.Duration(c.BanMinutes) * time.Minute
}

// CooldownDuration returns the chat cooldown window.
func (c *ChatLimitConfig) CooldownDuration() time.Duration {
	return time.Duration(c.CooldownSeconds) * time.Second
}

// ResultsDuration returns the results review pacing window.
func (c *GameConfig) ResultsDuration() time.Duration {
	return time.Duration(c.ResultsSeconds) * time.Second
}

// SweepDuration returns the empty-room sweep interval.
func (c *GameConfig) SweepDuration() time.Duration {
	return time.Duration(c.SweepInterval) * time.Second
}

// Load reads a config file, filling defaults for missing fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.fillDefaults()
	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.fillDefaults()
	return cfg
}

func (cfg *Config) fillDefaults() {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 4000
	}
	if cfg.Server.MaxConnections == 0 {
		cfg.Server.MaxConnections = 1000
	}
	if cfg.Game.DefaultRounds == 0 {
		cfg.Game.DefaultRounds = 5
	}
	if cfg.Game.DefaultSeconds == 0 {
		cfg.Game.DefaultSeconds = 30
	}
	if cfg.Game.DefaultMaxP == 0 {
		cfg.Game.DefaultMaxP = 8
	}
	if cfg.Game.MaxVotingSecs == 0 {
		cfg.Game.MaxVotingSecs = 20
	}
	if cfg.Game.ResultsSeconds == 0 {
		cfg.Game.ResultsSeconds = 5
	}
	if cfg.Game.AFKStrikeLimit == 0 {
		cfg.Game.AFKStrikeLimit = 3
	}
	if cfg.Game.SweepInterval == 0 {
		cfg.Game.SweepInterval = 5
	}
	if len(cfg.Security.AllowedOrigins) == 0 {
		cfg.Security.AllowedOrigins = []string{"*"}
	}
	if cfg.Security.RateLimit.MaxPerSecond == 0 {
		cfg.Security.RateLimit.MaxPerSecond = 5
	}
	if cfg.Security.RateLimit.MaxPerMinute == 0 {
		cfg.Security.RateLimit.MaxPerMinute = 60
	}
	if cfg.Security.RateLimit.BanMinutes == 0 {
		cfg.Security.RateLimit.BanMinutes = 5
	}
	if cfg.Security.MessageLimit.MaxPerSecond == 0 {
		cfg.Security.MessageLimit.MaxPerSecond = 20
	}
	if cfg.Security.ChatLimit.MaxPerSecond == 0 {
		cfg.Security.ChatLimit.MaxPerSecond = 2
	}
	if cfg.Security.ChatLimit.MaxPerMinute == 0 {
		cfg.Security.ChatLimit.MaxPerMinute = 30
	}
	if cfg.Security.ChatLimit.CooldownSeconds == 0 {
		cfg.Security.ChatLimit.CooldownSeconds = 10
	}
}
