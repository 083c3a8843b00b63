package game

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaleTimerFireIsIgnored(t *testing.T) {
	r, players, _ := startedRoom(t, "a", "b")

	var fired atomic.Bool
	r.mu.Lock()
	r.scheduleTimer(20*time.Millisecond, PhaseInput, func() { fired.Store(true) })
	r.mu.Unlock()

	// Everyone answers before the deadline; the forced transition
	// bumps the generation, so the armed fire must be a no-op.
	require.NoError(t, r.SubmitAnswer(players[0].ID, "كذبة أ"))
	require.NoError(t, r.SubmitAnswer(players[1].ID, "كذبة ب"))
	require.Equal(t, PhaseVoting, r.Phase())

	time.Sleep(60 * time.Millisecond)
	assert.False(t, fired.Load())
	assert.Equal(t, PhaseVoting, r.Phase())
}

func TestTimerFiresInMatchingPhase(t *testing.T) {
	r, _, _ := startedRoom(t, "a", "b")

	done := make(chan struct{})
	r.mu.Lock()
	r.scheduleTimer(10*time.Millisecond, PhaseInput, func() { close(done) })
	r.mu.Unlock()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
}

func TestStopTimerCancelsPendingFire(t *testing.T) {
	r, _, _ := startedRoom(t, "a", "b")

	fired := false
	r.mu.Lock()
	r.scheduleTimer(20*time.Millisecond, PhaseInput, func() { fired = true })
	r.stopTimer()
	r.mu.Unlock()

	time.Sleep(60 * time.Millisecond)
	assert.False(t, fired)
}
