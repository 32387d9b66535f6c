package app

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"strings"

	"blacksheep/internal/domain"
	"blacksheep/internal/store"
)

// DefaultCodeLength is the default length for game codes.
const DefaultCodeLength = 6

// codeChars are characters used for game codes (no ambiguous chars).
const codeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GameService implements the game lifecycle: creation with a shareable
// code and pre-generated rounds, player joining, answer submission,
// round advancement and reset.
type GameService struct {
	store      store.Storage
	codeLength int
	logger     *slog.Logger
}

// NewGameService creates a game service backed by the given store.
func NewGameService(st store.Storage, codeLength int, logger *slog.Logger) *GameService {
	if codeLength <= 0 {
		codeLength = DefaultCodeLength
	}
	return &GameService{store: st, codeLength: codeLength, logger: logger}
}

// CreateGame creates a game with a unique join code and one round per
// totalRounds, each assigned a random question from the pool.
func (s *GameService) CreateGame(totalRounds int) (domain.Game, error) {
	if totalRounds < 1 {
		return domain.Game{}, domain.ErrInvalidRounds
	}

	code, err := s.uniqueCode()
	if err != nil {
		return domain.Game{}, err
	}

	game, err := s.store.CreateGame(domain.Game{Code: code, TotalRounds: totalRounds})
	if err != nil {
		return domain.Game{}, err
	}

	questions, err := s.store.RandomQuestions(totalRounds)
	if err != nil {
		return domain.Game{}, err
	}
	for i, q := range questions {
		_, err := s.store.CreateRound(domain.Round{
			GameID:     game.ID,
			QuestionID: q.ID,
			Number:     i + 1,
		})
		if err != nil {
			return domain.Game{}, err
		}
	}

	s.logger.Info("game created", "gameID", game.ID, "code", game.Code, "rounds", totalRounds)

	return game, nil
}

// Game returns a game by ID.
func (s *GameService) Game(id int) (domain.Game, error) {
	return s.store.GetGame(id)
}

// GameByCode returns the full game aggregate for a join code. Codes are
// case-insensitive.
func (s *GameService) GameByCode(code string) (domain.GameDetails, error) {
	game, err := s.store.GetGameByCode(strings.ToUpper(code))
	if err != nil {
		return domain.GameDetails{}, err
	}
	return s.GameDetails(game.ID)
}

// GameDetails assembles the aggregate view of a game: its roster with
// current-round submissions, all rounds with questions and answers, and
// the current question.
func (s *GameService) GameDetails(id int) (domain.GameDetails, error) {
	game, err := s.store.GetGame(id)
	if err != nil {
		return domain.GameDetails{}, err
	}

	players, err := s.store.PlayersByGame(id)
	if err != nil {
		return domain.GameDetails{}, err
	}
	rounds, err := s.store.RoundsByGame(id)
	if err != nil {
		return domain.GameDetails{}, err
	}

	details := domain.GameDetails{
		Game:    game,
		Players: make([]domain.PlayerDetail, 0, len(players)),
		Rounds:  make([]domain.RoundDetails, 0, len(rounds)),
	}

	var current *domain.Round
	for i := range rounds {
		if rounds[i].Number == game.CurrentRound {
			current = &rounds[i]
		}
	}

	for _, round := range rounds {
		question, err := s.store.GetQuestion(round.QuestionID)
		if err != nil {
			return domain.GameDetails{}, err
		}
		answers, err := s.store.AnswersByRound(round.ID)
		if err != nil {
			return domain.GameDetails{}, err
		}
		details.Rounds = append(details.Rounds, domain.RoundDetails{
			Round:    round,
			Question: question,
			Answers:  answers,
		})
		if current != nil && round.ID == current.ID {
			q := question
			details.CurrentQuestion = &q
		}
	}

	for _, player := range players {
		detail := domain.PlayerDetail{Player: player}
		if current != nil {
			answer, err := s.store.AnswerByRoundAndPlayer(current.ID, player.ID)
			if err == nil {
				detail.Answer = answer.Text
				detail.HasSubmitted = true
				detail.IsCommon = answer.IsCommon
				detail.IsBlackSheep = answer.IsBlackSheep
			} else if err != domain.ErrAnswerNotFound {
				return domain.GameDetails{}, err
			}
		}
		details.Players = append(details.Players, detail)
	}

	return details, nil
}

// RoundDetails returns a round joined with its question and answers.
func (s *GameService) RoundDetails(roundID int) (domain.RoundDetails, error) {
	round, err := s.store.GetRound(roundID)
	if err != nil {
		return domain.RoundDetails{}, err
	}
	question, err := s.store.GetQuestion(round.QuestionID)
	if err != nil {
		return domain.RoundDetails{}, err
	}
	answers, err := s.store.AnswersByRound(roundID)
	if err != nil {
		return domain.RoundDetails{}, err
	}
	return domain.RoundDetails{Round: round, Question: question, Answers: answers}, nil
}

// JoinGame adds a player to a game with a server-assigned join order.
// A game that has run its final round no longer accepts players.
func (s *GameService) JoinGame(gameID int, name, color string) (domain.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Player{}, domain.ErrEmptyName
	}

	game, err := s.store.GetGame(gameID)
	if err != nil {
		return domain.Player{}, err
	}
	if game.IsComplete {
		return domain.Player{}, domain.ErrGameComplete
	}

	roster, err := s.store.PlayersByGame(game.ID)
	if err != nil {
		return domain.Player{}, err
	}

	player, err := s.store.CreatePlayer(domain.Player{
		GameID: game.ID,
		Name:   name,
		Color:  color,
		Order:  len(roster) + 1,
	})
	if err != nil {
		return domain.Player{}, err
	}

	s.logger.Info("player joined", "gameID", game.ID, "playerID", player.ID, "name", player.Name)

	return player, nil
}

// SubmitAnswer records a player's answer for a round. A second submission
// for the same (round, player) pair is rejected with domain.ErrAnswerExists
// before anything is stored.
func (s *GameService) SubmitAnswer(roundID, playerID int, text string) (domain.Answer, error) {
	if strings.TrimSpace(text) == "" {
		return domain.Answer{}, domain.ErrEmptyAnswer
	}

	if _, err := s.store.GetRound(roundID); err != nil {
		return domain.Answer{}, err
	}
	if _, err := s.store.GetPlayer(playerID); err != nil {
		return domain.Answer{}, err
	}

	_, err := s.store.AnswerByRoundAndPlayer(roundID, playerID)
	if err == nil {
		return domain.Answer{}, domain.ErrAnswerExists
	}
	if err != domain.ErrAnswerNotFound {
		return domain.Answer{}, err
	}

	return s.store.CreateAnswer(domain.Answer{
		RoundID:  roundID,
		PlayerID: playerID,
		Text:     text,
	})
}

// AdvanceRound moves the game to its next round. Advancing a game already
// on its final round marks it complete and reports domain.ErrFinalRound.
func (s *GameService) AdvanceRound(gameID int) (domain.Game, error) {
	game, err := s.store.GetGame(gameID)
	if err != nil {
		return domain.Game{}, err
	}

	if game.OnFinalRound() {
		if err := s.store.UpdateGameProgress(game.ID, game.CurrentRound, true); err != nil {
			return domain.Game{}, err
		}
		game.IsComplete = true
		return game, domain.ErrFinalRound
	}

	if err := s.store.UpdateGameProgress(game.ID, game.CurrentRound+1, false); err != nil {
		return domain.Game{}, err
	}
	game.CurrentRound++

	s.logger.Info("round advanced", "gameID", game.ID, "currentRound", game.CurrentRound)

	return game, nil
}

// ResetGame rewinds a game to round one for a replay: scores are zeroed,
// the existing rounds get fresh random questions with cleared completion
// flags, and their answers are dropped. Round IDs stay stable across the
// reset.
func (s *GameService) ResetGame(gameID int) (domain.Game, error) {
	game, err := s.store.GetGame(gameID)
	if err != nil {
		return domain.Game{}, err
	}

	if err := s.store.UpdateGameProgress(game.ID, 1, false); err != nil {
		return domain.Game{}, err
	}
	game.CurrentRound = 1
	game.IsComplete = false

	players, err := s.store.PlayersByGame(game.ID)
	if err != nil {
		return domain.Game{}, err
	}
	for _, p := range players {
		if err := s.store.UpdatePlayerScore(p.ID, 0); err != nil {
			return domain.Game{}, err
		}
	}

	questions, err := s.store.RandomQuestions(game.TotalRounds)
	if err != nil {
		return domain.Game{}, err
	}
	rounds, err := s.store.RoundsByGame(game.ID)
	if err != nil {
		return domain.Game{}, err
	}
	for i, round := range rounds {
		if i >= len(questions) {
			break
		}
		if err := s.store.ResetRound(round.ID, questions[i].ID); err != nil {
			return domain.Game{}, err
		}
		if err := s.store.ClearAnswers(round.ID); err != nil {
			return domain.Game{}, err
		}
	}

	s.logger.Info("game reset", "gameID", game.ID)

	return game, nil
}

// uniqueCode generates a join code not currently assigned to any game.
func (s *GameService) uniqueCode() (string, error) {
	for attempts := 0; attempts < 10; attempts++ {
		code, err := s.generateCode()
		if err != nil {
			return "", fmt.Errorf("generating game code: %w", err)
		}
		_, err = s.store.GetGameByCode(code)
		if err == domain.ErrGameNotFound {
			return code, nil
		}
		if err != nil {
			return "", fmt.Errorf("checking game code: %w", err)
		}
	}
	return "", fmt.Errorf("failed to generate unique game code")
}

// generateCode generates a random game code.
func (s *GameService) generateCode() (string, error) {
	b := make([]byte, s.codeLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	code := make([]byte, s.codeLength)
	for i := range code {
		code[i] = codeChars[int(b[i])%len(codeChars)]
	}

	return string(code), nil
}
