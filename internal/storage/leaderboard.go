// Package storage holds the optional Redis-backed lifetime
// leaderboard. Rooms never depend on it for game state; with no Redis
// configured the server runs fully in memory.
package storage

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	scoreboardKey   = "leaderboard:score"
	playerKeyPrefix = "player:"

	writeTimeout = 3 * time.Second
)

// PlayerStats is a player's lifetime record, keyed by display name.
type PlayerStats struct {
	Name       string `json:"name"`
	TotalScore int    `json:"total_score"`
	Games      int    `json:"games"`
	Wins       int    `json:"wins"`
	BestGame   int    `json:"best_game"`
}

// Leaderboard accumulates final scores across games.
type Leaderboard struct {
	client *redis.Client
}

// NewLeaderboard wraps a Redis client.
func NewLeaderboard(client *redis.Client) *Leaderboard {
	return &Leaderboard{client: client}
}

// RecordGame folds one finished game into the player's lifetime
// record. Failures are logged and dropped; a Redis hiccup must never
// reach the game loop.
func (lb *Leaderboard) RecordGame(name string, score int, won bool) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	pipe := lb.client.Pipeline()
	pipe.ZIncrBy(ctx, scoreboardKey, float64(score), name)

	key := playerKeyPrefix + name
	pipe.HIncrBy(ctx, key, "total_score", int64(score))
	pipe.HIncrBy(ctx, key, "games", 1)
	if won {
		pipe.HIncrBy(ctx, key, "wins", 1)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("⚠️ leaderboard write for %s failed: %v", name, err)
		return
	}

	// Read-then-set is racy across simultaneous games under the same
	// name; a best-game stat does not warrant a Lua script.
	best, err := lb.client.HGet(ctx, key, "best_game").Int()
	if err != nil && err != redis.Nil {
		return
	}
	if score > best {
		lb.client.HSet(ctx, key, "best_game", score)
	}
}

// Top returns the n highest lifetime scorers, best first.
func (lb *Leaderboard) Top(ctx context.Context, n int) ([]PlayerStats, error) {
	entries, err := lb.client.ZRevRangeWithScores(ctx, scoreboardKey, 0, int64(n)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("reading leaderboard: %w", err)
	}

	stats := make([]PlayerStats, 0, len(entries))
	for _, e := range entries {
		name, ok := e.Member.(string)
		if !ok {
			continue
		}
		stats = append(stats, PlayerStats{
			Name:       name,
			TotalScore: int(e.Score),
		})
	}
	return stats, nil
}

// Stats returns one player's lifetime record, or nil if they have
// never finished a game.
func (lb *Leaderboard) Stats(ctx context.Context, name string) (*PlayerStats, error) {
	data, err := lb.client.HGetAll(ctx, playerKeyPrefix+name).Result()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	s := &PlayerStats{Name: name}
	s.TotalScore, _ = strconv.Atoi(data["total_score"])
	s.Games, _ = strconv.Atoi(data["games"])
	s.Wins, _ = strconv.Atoi(data["wins"])
	s.BestGame, _ = strconv.Atoi(data["best_game"])
	return s, nil
}
