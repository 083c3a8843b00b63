package game

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yallagames/kedhba/internal/config"
	"github.com/yallagames/kedhba/internal/protocol"
	"github.com/yallagames/kedhba/internal/question"
)

// fakeConn records everything sent to one player.
type fakeConn struct {
	mu   sync.Mutex
	msgs []*protocol.Message
}

func (c *fakeConn) SendMessage(msg *protocol.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
}

func (c *fakeConn) received(t protocol.MessageType) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range c.msgs {
		if m.Type == t {
			return true
		}
	}
	return false
}

func (c *fakeConn) last(t protocol.MessageType) *protocol.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.msgs) - 1; i >= 0; i-- {
		if c.msgs[i].Type == t {
			return c.msgs[i]
		}
	}
	return nil
}

func newTestRoom(t *testing.T, isPublic bool) *Room {
	t.Helper()
	cfg := config.Default()
	return NewRoom("1234", isPublic, false, question.DefaultCatalog(), &cfg.Game, nil)
}

func addPlayer(t *testing.T, r *Room, name string) (*Player, *fakeConn) {
	t.Helper()
	conn := &fakeConn{}
	p, err := r.Join("conn-"+name, conn, name, nil, nil)
	require.NoError(t, err)
	return p, conn
}

func TestJoinAssignsHostToFirstPlayer(t *testing.T) {
	r := newTestRoom(t, false)

	host, _ := addPlayer(t, r, "سارة")
	guest, _ := addPlayer(t, r, "خالد")

	assert.True(t, host.IsHost)
	assert.False(t, guest.IsHost)
	assert.Equal(t, host.ID, r.hostID)
}

func TestPublicRoomStaysHostless(t *testing.T) {
	r := newTestRoom(t, true)

	p, _ := addPlayer(t, r, "سارة")

	assert.False(t, p.IsHost)
	assert.Empty(t, r.hostID)
}

func TestJoinDedupesDisplayName(t *testing.T) {
	r := newTestRoom(t, false)

	addPlayer(t, r, "أحمد")
	second, _ := addPlayer(t, r, "أحمد")
	third, _ := addPlayer(t, r, "أحمد")

	assert.Equal(t, "أحمد (2)", second.Name)
	assert.Equal(t, "أحمد (3)", third.Name)
}

func TestJoinRejectedWhenFull(t *testing.T) {
	r := newTestRoom(t, false)
	r.settings.MaxPlayers = 2

	addPlayer(t, r, "a")
	addPlayer(t, r, "b")

	_, err := r.Join("conn-c", &fakeConn{}, "c", nil, nil)
	assert.ErrorIs(t, err, ErrRoomFull)
}

func TestJoinRejectedAfterStart(t *testing.T) {
	r := newTestRoom(t, false)
	host, _ := addPlayer(t, r, "a")
	addPlayer(t, r, "b")

	require.NoError(t, r.StartGame(host.ID))

	_, err := r.Join("conn-c", &fakeConn{}, "c", nil, nil)
	assert.ErrorIs(t, err, ErrGameStarted)
}

func TestSaveSettingsClampsOutOfRangeValues(t *testing.T) {
	r := newTestRoom(t, false)
	host, _ := addPlayer(t, r, "a")

	err := r.SaveSettings(host.ID, protocol.RoomSettings{
		Rounds:     50,
		Seconds:    10, // below minimum
		MaxPlayers: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, 20, r.settings.Rounds)
	assert.Equal(t, 15, r.settings.Seconds)
	assert.Equal(t, 16, r.settings.MaxPlayers)

	err = r.SaveSettings(host.ID, protocol.RoomSettings{Seconds: 90})
	require.NoError(t, err)
	assert.Equal(t, 60, r.settings.Seconds)
}

func TestSaveSettingsFiltersUnknownTopics(t *testing.T) {
	r := newTestRoom(t, false)
	host, _ := addPlayer(t, r, "a")

	err := r.SaveSettings(host.ID, protocol.RoomSettings{
		Topics: []string{"science", "no-such-topic"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"science"}, r.settings.Topics)

	// An all-unknown selection falls back to the full catalog.
	err = r.SaveSettings(host.ID, protocol.RoomSettings{Topics: []string{"bogus"}})
	require.NoError(t, err)
	assert.Len(t, r.settings.Topics, len(r.catalog.Categories()))
}

func TestSaveSettingsRequiresHost(t *testing.T) {
	r := newTestRoom(t, false)
	addPlayer(t, r, "a")
	guest, _ := addPlayer(t, r, "b")

	err := r.SaveSettings(guest.ID, protocol.RoomSettings{Rounds: 3})
	assert.ErrorIs(t, err, ErrNotHost)
}

func TestStartGameNeedsTwoPlayers(t *testing.T) {
	r := newTestRoom(t, false)
	host, _ := addPlayer(t, r, "a")

	err := r.StartGame(host.ID)
	assert.ErrorIs(t, err, ErrNotEnough)
}

func TestStartGameHostOnly(t *testing.T) {
	r := newTestRoom(t, false)
	addPlayer(t, r, "a")
	guest, _ := addPlayer(t, r, "b")

	err := r.StartGame(guest.ID)
	assert.ErrorIs(t, err, ErrNotHost)
}

func TestHostHandoffOnLeave(t *testing.T) {
	r := newTestRoom(t, false)
	host, _ := addPlayer(t, r, "a")
	second, _ := addPlayer(t, r, "b")

	r.Leave(host.ID)

	assert.Equal(t, second.ID, r.hostID)
	assert.True(t, second.IsHost)
}

func TestLobbyDisconnectReleasesSeat(t *testing.T) {
	r := newTestRoom(t, false)
	p, _ := addPlayer(t, r, "a")

	r.Disconnect(p.ID)

	assert.Equal(t, 0, r.PlayerCount())
}

func TestMidGameDisconnectKeepsSeat(t *testing.T) {
	r := newTestRoom(t, false)
	host, _ := addPlayer(t, r, "a")
	guest, _ := addPlayer(t, r, "b")
	addPlayer(t, r, "c")
	require.NoError(t, r.StartGame(host.ID))

	r.Disconnect(guest.ID)

	assert.Equal(t, 3, r.PlayerCount())
	assert.False(t, guest.Online)
}

func TestVoteKickNeedsMajority(t *testing.T) {
	r := newTestRoom(t, false)
	a, _ := addPlayer(t, r, "a")
	b, _ := addPlayer(t, r, "b")
	c, _ := addPlayer(t, r, "c")
	target, _ := addPlayer(t, r, "d")

	require.NoError(t, r.VoteKick(a.ID, target.ID))
	require.NoError(t, r.VoteKick(b.ID, target.ID))
	assert.Equal(t, 4, r.PlayerCount(), "two of four is not a majority")

	require.NoError(t, r.VoteKick(c.ID, target.ID))
	assert.Equal(t, 3, r.PlayerCount())
	assert.Nil(t, r.playerByID(target.ID))
}

func TestVoteKickIsIdempotentPerVoter(t *testing.T) {
	r := newTestRoom(t, false)
	a, _ := addPlayer(t, r, "a")
	addPlayer(t, r, "b")
	target, _ := addPlayer(t, r, "c")

	// The same voter ballot-stuffing must not reach the majority.
	require.NoError(t, r.VoteKick(a.ID, target.ID))
	require.NoError(t, r.VoteKick(a.ID, target.ID))
	require.NoError(t, r.VoteKick(a.ID, target.ID))

	assert.Equal(t, 3, r.PlayerCount())
}

func TestVoteKickRejectsSelf(t *testing.T) {
	r := newTestRoom(t, false)
	a, _ := addPlayer(t, r, "a")

	err := r.VoteKick(a.ID, a.ID)
	assert.ErrorIs(t, err, ErrSelfVote)
}

func TestLeaderboardTiesKeepJoinOrder(t *testing.T) {
	r := newTestRoom(t, false)
	a, _ := addPlayer(t, r, "a")
	b, _ := addPlayer(t, r, "b")
	c, _ := addPlayer(t, r, "c")

	a.Score = 3
	b.Score = 5
	c.Score = 3

	r.mu.Lock()
	board := r.leaderboard()
	r.mu.Unlock()

	require.Len(t, board, 3)
	assert.Equal(t, b.ID, board[0].ID)
	assert.Equal(t, a.ID, board[1].ID, "earlier joiner ranks first on a tie")
	assert.Equal(t, c.ID, board[2].ID)
}

func TestResetClearsEverythingButIdentity(t *testing.T) {
	r := newTestRoom(t, false)
	host, _ := addPlayer(t, r, "a")
	addPlayer(t, r, "b")
	require.NoError(t, r.StartGame(host.ID))

	r.Reset()

	assert.Equal(t, PhaseLobby, r.Phase())
	assert.Equal(t, 0, r.PlayerCount())
	assert.Equal(t, "1234", r.Code)
}
