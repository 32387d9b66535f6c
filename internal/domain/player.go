package domain

// Player is a participant in a single game. Order is the 1-based join
// order, used for turn display and avatar numbering. Score is cumulative
// and may go negative.
type Player struct {
	ID     int    `json:"id"`
	GameID int    `json:"gameId"`
	Name   string `json:"name"`
	Color  string `json:"color"`
	Order  int    `json:"order"`
	Score  int    `json:"score"`
}
