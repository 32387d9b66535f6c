package ws

import "encoding/json"

// Envelope is the wire message exchanged over the gateway. Data is an
// opaque payload the gateway relays without interpreting.
type Envelope struct {
	Type    string          `json:"type"`
	GameID  int             `json:"gameId"`
	Data    json.RawMessage `json:"data,omitempty"`
	Success *bool           `json:"success,omitempty"`
}

// Envelope types
const (
	TypeJoin       = "join"
	TypeJoined     = "joined"
	TypeGameUpdate = "game_update"
)

// Action tags clients put in Data. They are semantic hints for other
// clients; the gateway never inspects them.
const (
	ActionPlayerJoined    = "player_joined"
	ActionAnswerSubmitted = "answer_submitted"
	ActionRoundProcessed  = "round_processed"
	ActionNextRound       = "next_round"
	ActionGameReset       = "game_reset"
)

// joinedEnvelope builds the confirmation sent back to the connection
// that issued a join.
func joinedEnvelope(gameID int, success bool) *Envelope {
	return &Envelope{
		Type:    TypeJoined,
		GameID:  gameID,
		Success: &success,
	}
}
