package domain

import "errors"

// Domain errors
var (
	ErrGameNotFound     = errors.New("game not found")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrRoundNotFound    = errors.New("round not found")
	ErrAnswerNotFound   = errors.New("answer not found")
	ErrAnswerExists     = errors.New("player already answered this round")
	ErrRoundProcessed   = errors.New("round already processed")
	ErrGameComplete     = errors.New("game is already complete")
	ErrFinalRound       = errors.New("game is already at the final round")
	ErrEmptyAnswer      = errors.New("answer cannot be empty")
	ErrEmptyName        = errors.New("player name cannot be empty")
	ErrInvalidRounds    = errors.New("total rounds must be at least 1")
)
