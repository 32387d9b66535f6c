package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blacksheep/internal/app"
	"blacksheep/internal/domain"
)

type fakeConn struct {
	id   string
	mu   sync.Mutex
	sent []any
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, v)
	return nil
}

func (c *fakeConn) Close() error { return nil }

func (c *fakeConn) received() []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]any(nil), c.sent...)
}

type fakeGames map[int]domain.Game

func (f fakeGames) GetGame(id int) (domain.Game, error) {
	g, ok := f[id]
	if !ok {
		return domain.Game{}, domain.ErrGameNotFound
	}
	return g, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discard{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func fixture() (*app.RoomRegistry, fakeGames) {
	registry := app.NewRoomRegistry(testLogger())
	games := fakeGames{
		1: {ID: 1, Code: "ABC123", TotalRounds: 3, CurrentRound: 1},
		2: {ID: 2, Code: "XYZ789", TotalRounds: 3, CurrentRound: 1},
	}
	return registry, games
}

func startSession(registry *app.RoomRegistry, games fakeGames, id string) (*session, *fakeConn) {
	conn := &fakeConn{id: id}
	return newSession(conn, registry, games, testLogger()), conn
}

func frame(t *testing.T, env Envelope) []byte {
	t.Helper()
	data, err := json.Marshal(env)
	require.NoError(t, err)
	return data
}

func TestSession_JoinConfirmsToSenderOnly(t *testing.T) {
	registry, games := fixture()
	s1, c1 := startSession(registry, games, "c1")
	_, c2 := startSession(registry, games, "c2")

	s1.HandleMessage(frame(t, Envelope{Type: TypeJoin, GameID: 1}))

	assert.Equal(t, stateJoined, s1.state)
	assert.Equal(t, "ABC123", s1.gameCode)
	assert.Equal(t, 1, registry.RoomSize("ABC123"))

	msgs := c1.received()
	require.Len(t, msgs, 1)
	joined := msgs[0].(*Envelope)
	assert.Equal(t, TypeJoined, joined.Type)
	assert.Equal(t, 1, joined.GameID)
	require.NotNil(t, joined.Success)
	assert.True(t, *joined.Success)

	assert.Empty(t, c2.received())
}

func TestSession_JoinUnknownGame(t *testing.T) {
	registry, games := fixture()
	s, c := startSession(registry, games, "c1")

	s.HandleMessage(frame(t, Envelope{Type: TypeJoin, GameID: 99}))

	assert.Equal(t, stateUnassociated, s.state)
	assert.Equal(t, 0, registry.ConnCount())

	msgs := c.received()
	require.Len(t, msgs, 1)
	joined := msgs[0].(*Envelope)
	assert.Equal(t, TypeJoined, joined.Type)
	require.NotNil(t, joined.Success)
	assert.False(t, *joined.Success)

	// The connection can still join a real game afterwards.
	s.HandleMessage(frame(t, Envelope{Type: TypeJoin, GameID: 1}))
	assert.Equal(t, stateJoined, s.state)
}

func TestSession_GameUpdateRelaysToOthers(t *testing.T) {
	registry, games := fixture()
	s1, c1 := startSession(registry, games, "c1")
	s2, c2 := startSession(registry, games, "c2")
	s3, c3 := startSession(registry, games, "c3")

	s1.HandleMessage(frame(t, Envelope{Type: TypeJoin, GameID: 1}))
	s2.HandleMessage(frame(t, Envelope{Type: TypeJoin, GameID: 1}))
	s3.HandleMessage(frame(t, Envelope{Type: TypeJoin, GameID: 1}))

	update := Envelope{
		Type:   TypeGameUpdate,
		GameID: 1,
		Data:   json.RawMessage(`{"action":"round_processed"}`),
	}
	s1.HandleMessage(frame(t, update))

	// Sender got only its join confirmation.
	assert.Len(t, c1.received(), 1)

	for _, c := range []*fakeConn{c2, c3} {
		msgs := c.received()
		require.Len(t, msgs, 2, "conn %s", c.ID())
		relayed := msgs[1].(*Envelope)
		assert.Equal(t, TypeGameUpdate, relayed.Type)
		assert.Equal(t, 1, relayed.GameID)
		assert.JSONEq(t, `{"action":"round_processed"}`, string(relayed.Data))
	}
}

func TestSession_GameUpdateBeforeJoinIsDropped(t *testing.T) {
	registry, games := fixture()
	s, c := startSession(registry, games, "c1")
	other, otherConn := startSession(registry, games, "c2")
	other.HandleMessage(frame(t, Envelope{Type: TypeJoin, GameID: 1}))

	s.HandleMessage(frame(t, Envelope{Type: TypeGameUpdate, GameID: 1}))

	assert.Equal(t, stateUnassociated, s.state)
	assert.Empty(t, c.received())
	assert.Len(t, otherConn.received(), 1, "only the join confirmation")
}

func TestSession_MalformedMessageIsDropped(t *testing.T) {
	registry, games := fixture()
	s, c := startSession(registry, games, "c1")
	s.HandleMessage(frame(t, Envelope{Type: TypeJoin, GameID: 1}))

	s.HandleMessage([]byte("{not json"))

	assert.Equal(t, stateJoined, s.state)
	assert.Equal(t, 1, registry.RoomSize("ABC123"))
	assert.Len(t, c.received(), 1, "no extra messages for a malformed frame")
}

func TestSession_UnknownTypeIsDropped(t *testing.T) {
	registry, games := fixture()
	s, c := startSession(registry, games, "c1")

	s.HandleMessage(frame(t, Envelope{Type: "shout", GameID: 1}))

	assert.Equal(t, stateUnassociated, s.state)
	assert.Empty(t, c.received())
}

func TestSession_CloseLeavesRoom(t *testing.T) {
	registry, games := fixture()
	s1, _ := startSession(registry, games, "c1")
	s2, c2 := startSession(registry, games, "c2")
	s3, c3 := startSession(registry, games, "c3")

	s1.HandleMessage(frame(t, Envelope{Type: TypeJoin, GameID: 1}))
	s2.HandleMessage(frame(t, Envelope{Type: TypeJoin, GameID: 1}))
	s3.HandleMessage(frame(t, Envelope{Type: TypeJoin, GameID: 1}))

	s2.Close()
	assert.Equal(t, stateClosed, s2.state)
	assert.Equal(t, 2, registry.RoomSize("ABC123"))

	s1.HandleMessage(frame(t, Envelope{Type: TypeGameUpdate, GameID: 1}))

	assert.Len(t, c2.received(), 1, "closed connection receives nothing new")
	assert.Len(t, c3.received(), 2)

	// Closing twice, or after never joining, must be safe.
	assert.NotPanics(t, func() {
		s2.Close()
		unjoined, _ := startSession(registry, games, "c4")
		unjoined.Close()
	})
}

func TestSession_ClosedSessionIgnoresMessages(t *testing.T) {
	registry, games := fixture()
	s, c := startSession(registry, games, "c1")

	s.Close()
	s.HandleMessage(frame(t, Envelope{Type: TypeJoin, GameID: 1}))

	assert.Equal(t, stateClosed, s.state)
	assert.Empty(t, c.received())
	assert.Equal(t, 0, registry.ConnCount())
}

func TestSession_JoinSecondGameMovesRooms(t *testing.T) {
	registry, games := fixture()
	s, _ := startSession(registry, games, "c1")

	s.HandleMessage(frame(t, Envelope{Type: TypeJoin, GameID: 1}))
	s.HandleMessage(frame(t, Envelope{Type: TypeJoin, GameID: 2}))

	assert.Equal(t, "XYZ789", s.gameCode)
	assert.Equal(t, 0, registry.RoomSize("ABC123"))
	assert.Equal(t, 1, registry.RoomSize("XYZ789"))
}
