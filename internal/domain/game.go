package domain

import "time"

// Game represents one play-through of the party game. CurrentRound is
// 1-based and always within [1, TotalRounds]; IsComplete flips only when
// the game advances past its final round.
type Game struct {
	ID           int       `json:"id"`
	Code         string    `json:"code"`
	TotalRounds  int       `json:"totalRounds"`
	CurrentRound int       `json:"currentRound"`
	IsComplete   bool      `json:"isComplete"`
	CreatedAt    time.Time `json:"createdAt"`
}

// OnFinalRound reports whether the game cannot advance any further.
func (g Game) OnFinalRound() bool {
	return g.CurrentRound >= g.TotalRounds
}

// PlayerDetail is a player decorated with their answer for the game's
// current round, for clients re-fetching authoritative state.
type PlayerDetail struct {
	Player
	Answer       string `json:"answer,omitempty"`
	HasSubmitted bool   `json:"hasSubmitted"`
	IsCommon     bool   `json:"isCommon"`
	IsBlackSheep bool   `json:"isBlackSheep"`
}

// RoundDetails is a round joined with its question and answers.
type RoundDetails struct {
	Round
	Question Question `json:"question"`
	Answers  []Answer `json:"answers"`
}

// GameDetails is the full aggregate view of a game.
type GameDetails struct {
	Game
	Players         []PlayerDetail `json:"players"`
	Rounds          []RoundDetails `json:"rounds"`
	CurrentQuestion *Question      `json:"currentQuestion,omitempty"`
}
