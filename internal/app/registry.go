package app

import (
	"log/slog"
	"sync"
)

// Conn is a live client connection the registry can fan out to. Send must
// be non-blocking and best-effort; an error means the message was skipped,
// never that delivery should be retried.
type Conn interface {
	ID() string
	Send(v any) error
	Close() error
}

// RoomRegistry is the process-wide index from game code to the set of
// live connections subscribed to that game. It owns no game state; it is
// purely a broadcast-fanout index. All map access is serialized behind a
// single mutex.
type RoomRegistry struct {
	mu         sync.Mutex
	rooms      map[string]map[Conn]struct{}
	membership map[Conn]string
	logger     *slog.Logger
}

// NewRoomRegistry creates an empty registry.
func NewRoomRegistry(logger *slog.Logger) *RoomRegistry {
	return &RoomRegistry{
		rooms:      make(map[string]map[Conn]struct{}),
		membership: make(map[Conn]string),
		logger:     logger,
	}
}

// Join adds the connection to the room for gameCode, creating the room if
// absent. Joining the same room twice is a no-op; joining a different
// room moves the connection there (a connection belongs to at most one
// room at a time, last join wins).
func (r *RoomRegistry) Join(gameCode string, c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.membership[c]; ok {
		if current == gameCode {
			return
		}
		r.removeLocked(c, current)
	}

	room, ok := r.rooms[gameCode]
	if !ok {
		room = make(map[Conn]struct{})
		r.rooms[gameCode] = room
	}
	room[c] = struct{}{}
	r.membership[c] = gameCode

	r.logger.Debug("connection joined room", "gameCode", gameCode, "connID", c.ID(), "roomSize", len(room))
}

// Broadcast delivers payload to every connection in the room except the
// sender. Delivery is best-effort: connections that fail to accept the
// message are skipped, never retried.
func (r *RoomRegistry) Broadcast(gameCode string, sender Conn, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for c := range r.rooms[gameCode] {
		if c == sender {
			continue
		}
		if err := c.Send(payload); err != nil {
			r.logger.Debug("broadcast skipped connection", "gameCode", gameCode, "connID", c.ID(), "error", err)
		}
	}
}

// Leave removes the connection from whatever room it belongs to, dropping
// the room entry entirely once it empties. Safe to call for connections
// that never joined.
func (r *RoomRegistry) Leave(c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	gameCode, ok := r.membership[c]
	if !ok {
		return
	}
	r.removeLocked(c, gameCode)

	r.logger.Debug("connection left room", "gameCode", gameCode, "connID", c.ID())
}

// removeLocked drops c from the given room. Caller must hold r.mu.
func (r *RoomRegistry) removeLocked(c Conn, gameCode string) {
	delete(r.membership, c)
	if room, ok := r.rooms[gameCode]; ok {
		delete(room, c)
		if len(room) == 0 {
			delete(r.rooms, gameCode)
		}
	}
}

// RoomCount returns the number of rooms with at least one connection.
func (r *RoomRegistry) RoomCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

// ConnCount returns the total number of registered connections.
func (r *RoomRegistry) ConnCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.membership)
}

// RoomSize returns the number of connections in the room for gameCode.
func (r *RoomRegistry) RoomSize(gameCode string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms[gameCode])
}

// Close closes every registered connection and empties the registry.
func (r *RoomRegistry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for c := range r.membership {
		c.Close()
	}
	r.rooms = make(map[string]map[Conn]struct{})
	r.membership = make(map[Conn]string)
}
