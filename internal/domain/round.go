package domain

// Question is a prompt players answer during a round.
type Question struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// Round is one question-and-answer cycle within a game. Number is 1-based
// and unique per game. IsComplete is set once by round processing and is
// only cleared by a full game reset.
type Round struct {
	ID         int  `json:"id"`
	GameID     int  `json:"gameId"`
	QuestionID int  `json:"questionId"`
	Number     int  `json:"roundNumber"`
	IsComplete bool `json:"isComplete"`
}

// Answer is a player's submission for a round. At most one answer exists
// per (round, player) pair. IsCommon and IsBlackSheep are write-once,
// set only by round processing.
type Answer struct {
	ID           int    `json:"id"`
	RoundID      int    `json:"roundId"`
	PlayerID     int    `json:"playerId"`
	Text         string `json:"text"`
	IsCommon     bool   `json:"isCommon"`
	IsBlackSheep bool   `json:"isBlackSheep"`
}
