package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"

	"blacksheep/internal/domain"
)

// Response is a standard API response
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo contains error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CreateGameRequest is the body for POST /api/games.
type CreateGameRequest struct {
	TotalRounds int `json:"totalRounds"`
}

// CreatePlayerRequest is the body for POST /api/players.
type CreatePlayerRequest struct {
	GameID int    `json:"gameId"`
	Name   string `json:"name"`
	Color  string `json:"color"`
}

// SubmitAnswerRequest is the body for POST /api/answers.
type SubmitAnswerRequest struct {
	RoundID  int    `json:"roundId"`
	PlayerID int    `json:"playerId"`
	Text     string `json:"text"`
}

// HealthResponse is the response for health check
type HealthResponse struct {
	Status string `json:"status"`
}

// StatsResponse is the response for stats endpoint
type StatsResponse struct {
	ActiveRooms      int `json:"activeRooms"`
	TotalConnections int `json:"totalConnections"`
}

const qrSize = 256

// handleCreateGame handles POST /api/games
func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be valid JSON")
		return
	}

	game, err := s.games.CreateGame(req.TotalRounds)
	if err != nil {
		s.sendDomainError(w, err)
		return
	}

	s.sendSuccessStatus(w, http.StatusCreated, game)
}

// handleGetGame handles GET /api/games/:id
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := s.pathID(w, ps, "id")
	if !ok {
		return
	}

	details, err := s.games.GameDetails(id)
	if err != nil {
		s.sendDomainError(w, err)
		return
	}

	s.sendSuccess(w, details)
}

// handleGetGameByCode handles GET /api/codes/:code
func (s *Server) handleGetGameByCode(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	details, err := s.games.GameByCode(ps.ByName("code"))
	if err != nil {
		s.sendDomainError(w, err)
		return
	}

	s.sendSuccess(w, details)
}

// handleListPlayers handles GET /api/games/:id/players
func (s *Server) handleListPlayers(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := s.pathID(w, ps, "id")
	if !ok {
		return
	}

	details, err := s.games.GameDetails(id)
	if err != nil {
		s.sendDomainError(w, err)
		return
	}

	s.sendSuccess(w, details.Players)
}

// handleGameQR handles GET /api/games/:id/qr, serving a PNG QR code of
// the game's invite link.
func (s *Server) handleGameQR(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := s.pathID(w, ps, "id")
	if !ok {
		return
	}

	game, err := s.games.Game(id)
	if err != nil {
		s.sendDomainError(w, err)
		return
	}

	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	inviteLink := scheme + "://" + r.Host + "/join/" + game.Code

	png, err := qrcode.Encode(inviteLink, qrcode.Medium, qrSize)
	if err != nil {
		s.sendError(w, http.StatusInternalServerError, "QR_FAILED", "Failed to generate QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// handleNextRound handles POST /api/games/:id/next-round
func (s *Server) handleNextRound(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := s.pathID(w, ps, "id")
	if !ok {
		return
	}

	game, err := s.games.AdvanceRound(id)
	if err != nil {
		s.sendDomainError(w, err)
		return
	}

	s.sendSuccess(w, game)
}

// handleResetGame handles POST /api/games/:id/reset
func (s *Server) handleResetGame(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := s.pathID(w, ps, "id")
	if !ok {
		return
	}

	game, err := s.games.ResetGame(id)
	if err != nil {
		s.sendDomainError(w, err)
		return
	}

	s.sendSuccess(w, game)
}

// handleCreatePlayer handles POST /api/players
func (s *Server) handleCreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req CreatePlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be valid JSON")
		return
	}

	player, err := s.games.JoinGame(req.GameID, req.Name, req.Color)
	if err != nil {
		s.sendDomainError(w, err)
		return
	}

	s.sendSuccessStatus(w, http.StatusCreated, player)
}

// handleSubmitAnswer handles POST /api/answers
func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be valid JSON")
		return
	}

	answer, err := s.games.SubmitAnswer(req.RoundID, req.PlayerID, req.Text)
	if err != nil {
		s.sendDomainError(w, err)
		return
	}

	s.sendSuccessStatus(w, http.StatusCreated, answer)
}

// handleProcessRound handles POST /api/rounds/:id/process
func (s *Server) handleProcessRound(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := s.pathID(w, ps, "id")
	if !ok {
		return
	}

	if err := s.processor.ProcessRound(id); err != nil {
		s.sendDomainError(w, err)
		return
	}

	details, err := s.games.RoundDetails(id)
	if err != nil {
		s.sendDomainError(w, err)
		return
	}

	s.sendSuccess(w, details)
}

// handleHealth handles GET /api/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendSuccess(w, &HealthResponse{Status: "ok"})
}

// handleStats handles GET /api/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.sendSuccess(w, &StatsResponse{
		ActiveRooms:      s.registry.RoomCount(),
		TotalConnections: s.registry.ConnCount(),
	})
}

// pathID parses a numeric path parameter, answering 400 on failure.
func (s *Server) pathID(w http.ResponseWriter, ps httprouter.Params, name string) (int, bool) {
	id, err := strconv.Atoi(ps.ByName(name))
	if err != nil {
		s.sendError(w, http.StatusBadRequest, "INVALID_ID", "Path parameter must be a number")
		return 0, false
	}
	return id, true
}

// sendDomainError maps domain errors to HTTP responses.
func (s *Server) sendDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrGameNotFound):
		s.sendError(w, http.StatusNotFound, "GAME_NOT_FOUND", "Game not found")
	case errors.Is(err, domain.ErrPlayerNotFound):
		s.sendError(w, http.StatusNotFound, "PLAYER_NOT_FOUND", "Player not found")
	case errors.Is(err, domain.ErrRoundNotFound):
		s.sendError(w, http.StatusNotFound, "ROUND_NOT_FOUND", "Round not found")
	case errors.Is(err, domain.ErrAnswerExists):
		s.sendError(w, http.StatusConflict, "ANSWER_EXISTS", "Player already submitted an answer for this round")
	case errors.Is(err, domain.ErrRoundProcessed):
		s.sendError(w, http.StatusConflict, "ROUND_PROCESSED", "Round has already been processed")
	case errors.Is(err, domain.ErrGameComplete):
		s.sendError(w, http.StatusConflict, "GAME_COMPLETE", "Game is already complete")
	case errors.Is(err, domain.ErrFinalRound):
		s.sendError(w, http.StatusBadRequest, "FINAL_ROUND", "Game is already at the final round")
	case errors.Is(err, domain.ErrEmptyAnswer):
		s.sendError(w, http.StatusBadRequest, "EMPTY_ANSWER", "Answer cannot be empty")
	case errors.Is(err, domain.ErrEmptyName):
		s.sendError(w, http.StatusBadRequest, "EMPTY_NAME", "Player name cannot be empty")
	case errors.Is(err, domain.ErrInvalidRounds):
		s.sendError(w, http.StatusBadRequest, "INVALID_ROUNDS", "Total rounds must be at least 1")
	default:
		s.logger.Error("internal error", "error", err)
		s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

// sendSuccess sends a successful JSON response
func (s *Server) sendSuccess(w http.ResponseWriter, data any) {
	s.sendSuccessStatus(w, http.StatusOK, data)
}

// sendSuccessStatus sends a successful JSON response with a status code
func (s *Server) sendSuccessStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(&Response{
		Success: true,
		Data:    data,
	})
}

// sendError sends an error JSON response
func (s *Server) sendError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(&Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	})
}
