package ws

import (
	"encoding/json"
	"log/slog"

	"blacksheep/internal/app"
	"blacksheep/internal/domain"
)

// connState tracks where a connection is in its lifecycle.
type connState int

const (
	stateUnassociated connState = iota // connected, not in any room
	stateJoined                        // member of a game room
	stateClosed
)

// GameLookup resolves a numeric game ID to the game record, used to
// validate joins and translate the wire-level game ID into the room's
// join code.
type GameLookup interface {
	GetGame(id int) (domain.Game, error)
}

// session is the per-connection protocol state machine, independent of
// the underlying transport so it can be driven directly in tests. A
// session moves from unassociated to joined on a successful join
// envelope, and to closed exactly once when the transport goes away.
type session struct {
	conn     app.Conn
	registry *app.RoomRegistry
	games    GameLookup
	logger   *slog.Logger

	state    connState
	gameCode string
}

func newSession(conn app.Conn, registry *app.RoomRegistry, games GameLookup, logger *slog.Logger) *session {
	return &session{
		conn:     conn,
		registry: registry,
		games:    games,
		logger:   logger,
		state:    stateUnassociated,
	}
}

// HandleMessage processes one inbound frame. Malformed payloads are
// logged and dropped; the connection stays in its current state.
func (s *session) HandleMessage(data []byte) {
	if s.state == stateClosed {
		return
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		s.logger.Warn("dropping malformed message", "connID", s.conn.ID(), "error", err)
		return
	}

	switch env.Type {
	case TypeJoin:
		s.handleJoin(&env)
	case TypeGameUpdate:
		s.handleGameUpdate(&env)
	default:
		s.logger.Warn("dropping message of unknown type", "connID", s.conn.ID(), "type", env.Type)
	}
}

// handleJoin subscribes the connection to the room of the referenced
// game. An unknown game leaves the state untouched and answers with a
// failed confirmation to the originating connection only.
func (s *session) handleJoin(env *Envelope) {
	game, err := s.games.GetGame(env.GameID)
	if err != nil {
		s.logger.Info("join rejected", "connID", s.conn.ID(), "gameID", env.GameID, "error", err)
		s.conn.Send(joinedEnvelope(env.GameID, false))
		return
	}

	s.registry.Join(game.Code, s.conn)
	s.state = stateJoined
	s.gameCode = game.Code

	s.conn.Send(joinedEnvelope(game.ID, true))
}

// handleGameUpdate relays the full envelope to every other connection in
// the room. The gateway never looks inside Data.
func (s *session) handleGameUpdate(env *Envelope) {
	if s.state != stateJoined {
		s.logger.Warn("dropping game_update from unjoined connection", "connID", s.conn.ID())
		return
	}

	s.registry.Broadcast(s.gameCode, s.conn, env)
}

// Close detaches the connection from its room. Idempotent, and safe for
// connections that never joined.
func (s *session) Close() {
	if s.state == stateClosed {
		return
	}
	s.registry.Leave(s.conn)
	s.state = stateClosed
}
