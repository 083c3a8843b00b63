package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLeaderboard(t *testing.T) *Leaderboard {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewLeaderboard(client)
}

func TestRecordGameAccumulates(t *testing.T) {
	lb := newTestLeaderboard(t)
	ctx := context.Background()

	lb.RecordGame("سارة", 5, true)
	lb.RecordGame("سارة", 3, false)

	stats, err := lb.Stats(ctx, "سارة")
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, 8, stats.TotalScore)
	assert.Equal(t, 2, stats.Games)
	assert.Equal(t, 1, stats.Wins)
	assert.Equal(t, 5, stats.BestGame)
}

func TestTopOrdersByScore(t *testing.T) {
	lb := newTestLeaderboard(t)
	ctx := context.Background()

	lb.RecordGame("a", 2, false)
	lb.RecordGame("b", 9, true)
	lb.RecordGame("c", 5, false)

	top, err := lb.Top(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "b", top[0].Name)
	assert.Equal(t, 9, top[0].TotalScore)
	assert.Equal(t, "c", top[1].Name)
}

func TestStatsUnknownPlayer(t *testing.T) {
	lb := newTestLeaderboard(t)

	stats, err := lb.Stats(context.Background(), "مجهول")
	require.NoError(t, err)
	assert.Nil(t, stats)
}
