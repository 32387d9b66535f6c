package ws

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"blacksheep/internal/app"
)

// Handler upgrades HTTP requests into gateway connections. Connections
// start unassociated; room membership is established by a join envelope.
type Handler struct {
	registry *app.RoomRegistry
	games    GameLookup
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a new WebSocket handler.
func NewHandler(registry *app.RoomRegistry, games GameLookup, logger *slog.Logger) *Handler {
	return &Handler{
		registry: registry,
		games:    games,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Allow all origins for development
				// In production, you should validate the origin
				return true
			},
		},
		logger: logger,
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	client := NewClient(uuid.New().String(), conn, h.logger)
	sess := newSession(client, h.registry, h.games, h.logger)

	h.logger.Info("websocket connected", "connID", client.ID(), "remote", r.RemoteAddr)

	client.Run(sess)

	h.logger.Info("websocket disconnected", "connID", client.ID())
}
