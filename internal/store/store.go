// Package store provides the game state store: persistence for games,
// players, questions, rounds and answers behind a single interface with
// in-memory and Redis-backed implementations.
package store

import "blacksheep/internal/domain"

// Storage is the game state store consumed by the game service and the
// round processor. Lookups return domain sentinel errors when the entity
// does not exist. Create methods assign the entity ID.
type Storage interface {
	CreateGame(g domain.Game) (domain.Game, error)
	GetGame(id int) (domain.Game, error)
	GetGameByCode(code string) (domain.Game, error)
	// UpdateGameProgress moves a game to the given 1-based round index
	// and completion state.
	UpdateGameProgress(gameID, currentRound int, isComplete bool) error

	CreatePlayer(p domain.Player) (domain.Player, error)
	GetPlayer(id int) (domain.Player, error)
	PlayersByGame(gameID int) ([]domain.Player, error)
	UpdatePlayerScore(playerID, score int) error

	CreateQuestion(q domain.Question) (domain.Question, error)
	GetQuestion(id int) (domain.Question, error)
	Questions() ([]domain.Question, error)
	// RandomQuestions returns up to count distinct questions in random
	// order. Fewer are returned when the pool is smaller than count.
	RandomQuestions(count int) ([]domain.Question, error)

	CreateRound(r domain.Round) (domain.Round, error)
	GetRound(id int) (domain.Round, error)
	RoundsByGame(gameID int) ([]domain.Round, error)
	MarkRoundComplete(roundID int) error
	// ResetRound assigns a fresh question and clears the completion flag,
	// reusing the round row across a game reset.
	ResetRound(roundID, questionID int) error

	CreateAnswer(a domain.Answer) (domain.Answer, error)
	AnswersByRound(roundID int) ([]domain.Answer, error)
	AnswerByRoundAndPlayer(roundID, playerID int) (domain.Answer, error)
	SetAnswerFlags(answerID int, isCommon, isBlackSheep bool) error
	// ClearAnswers drops all answers for a round so it can be replayed
	// after a game reset.
	ClearAnswers(roundID int) error
}
