package app

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blacksheep/internal/domain"
	"blacksheep/internal/store"
)

func newService(t *testing.T) (*GameService, *store.MemStore) {
	t.Helper()
	st := store.NewMemStore()
	return NewGameService(st, DefaultCodeLength, testLogger()), st
}

func TestGameService_CreateGame(t *testing.T) {
	svc, st := newService(t)

	game, err := svc.CreateGame(5)
	require.NoError(t, err)

	assert.Len(t, game.Code, DefaultCodeLength)
	assert.Equal(t, 1, game.CurrentRound)
	assert.False(t, game.IsComplete)

	rounds, err := st.RoundsByGame(game.ID)
	require.NoError(t, err)
	require.Len(t, rounds, 5)

	seen := make(map[int]bool)
	for i, round := range rounds {
		assert.Equal(t, i+1, round.Number)
		assert.False(t, round.IsComplete)
		assert.False(t, seen[round.QuestionID], "questions must be distinct")
		seen[round.QuestionID] = true
	}
}

func TestGameService_CreateGameRejectsZeroRounds(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.CreateGame(0)
	assert.ErrorIs(t, err, domain.ErrInvalidRounds)
}

func TestGameService_CodesAreUnique(t *testing.T) {
	svc, _ := newService(t)

	codes := make(map[string]bool)
	for i := 0; i < 20; i++ {
		game, err := svc.CreateGame(1)
		require.NoError(t, err)
		assert.False(t, codes[game.Code], "duplicate code %s", game.Code)
		codes[game.Code] = true
	}
}

func TestGameService_GameByCodeIsCaseInsensitive(t *testing.T) {
	svc, _ := newService(t)

	game, err := svc.CreateGame(2)
	require.NoError(t, err)

	lower, err := svc.GameByCode(strings.ToLower(game.Code))
	require.NoError(t, err)
	assert.Equal(t, game.ID, lower.ID)

	_, err = svc.GameByCode("NOPE99")
	assert.ErrorIs(t, err, domain.ErrGameNotFound)
}

func TestGameService_JoinGameAssignsOrder(t *testing.T) {
	svc, _ := newService(t)
	game, err := svc.CreateGame(3)
	require.NoError(t, err)

	ann, err := svc.JoinGame(game.ID, "Ann", "red")
	require.NoError(t, err)
	bob, err := svc.JoinGame(game.ID, "Bob", "blue")
	require.NoError(t, err)

	assert.Equal(t, 1, ann.Order)
	assert.Equal(t, 2, bob.Order)
	assert.Equal(t, 0, ann.Score)

	_, err = svc.JoinGame(game.ID, "   ", "green")
	assert.ErrorIs(t, err, domain.ErrEmptyName)

	_, err = svc.JoinGame(999, "Eve", "teal")
	assert.ErrorIs(t, err, domain.ErrGameNotFound)
}

func TestGameService_JoinGameRejectsCompleteGame(t *testing.T) {
	svc, _ := newService(t)
	game, err := svc.CreateGame(1)
	require.NoError(t, err)

	_, err = svc.JoinGame(game.ID, "Ann", "red")
	require.NoError(t, err)

	// A single-round game completes on its first advance.
	final, err := svc.AdvanceRound(game.ID)
	require.ErrorIs(t, err, domain.ErrFinalRound)
	require.True(t, final.IsComplete)

	_, err = svc.JoinGame(game.ID, "Latecomer", "teal")
	assert.ErrorIs(t, err, domain.ErrGameComplete)

	roster, err := svc.GameDetails(game.ID)
	require.NoError(t, err)
	assert.Len(t, roster.Players, 1)
}

// failingCodeStore simulates a backend outage during code uniqueness checks.
type failingCodeStore struct {
	store.Storage
	err error
}

func (s *failingCodeStore) GetGameByCode(code string) (domain.Game, error) {
	return domain.Game{}, s.err
}

func TestGameService_CreateGameSurfacesStoreErrors(t *testing.T) {
	storeErr := errors.New("connection refused")
	st := &failingCodeStore{Storage: store.NewMemStore(), err: storeErr}
	svc := NewGameService(st, DefaultCodeLength, testLogger())

	_, err := svc.CreateGame(2)
	assert.ErrorIs(t, err, storeErr, "a backend failure must not be mistaken for a code collision")
}

func TestGameService_SubmitAnswerEnforcesOnePerRound(t *testing.T) {
	svc, st := newService(t)
	game, err := svc.CreateGame(2)
	require.NoError(t, err)
	player, err := svc.JoinGame(game.ID, "Ann", "red")
	require.NoError(t, err)

	rounds, err := st.RoundsByGame(game.ID)
	require.NoError(t, err)

	answer, err := svc.SubmitAnswer(rounds[0].ID, player.ID, "Paris")
	require.NoError(t, err)
	assert.Equal(t, "Paris", answer.Text)
	assert.False(t, answer.IsCommon)
	assert.False(t, answer.IsBlackSheep)

	_, err = svc.SubmitAnswer(rounds[0].ID, player.ID, "London")
	assert.ErrorIs(t, err, domain.ErrAnswerExists)

	// Same player, different round is fine.
	_, err = svc.SubmitAnswer(rounds[1].ID, player.ID, "London")
	assert.NoError(t, err)

	_, err = svc.SubmitAnswer(rounds[0].ID, player.ID+1, "Oslo")
	assert.ErrorIs(t, err, domain.ErrPlayerNotFound)

	_, err = svc.SubmitAnswer(99, player.ID, "Oslo")
	assert.ErrorIs(t, err, domain.ErrRoundNotFound)

	_, err = svc.SubmitAnswer(rounds[1].ID, player.ID, "  ")
	assert.ErrorIs(t, err, domain.ErrEmptyAnswer)
}

func TestGameService_AdvanceRound(t *testing.T) {
	svc, _ := newService(t)
	game, err := svc.CreateGame(2)
	require.NoError(t, err)

	advanced, err := svc.AdvanceRound(game.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, advanced.CurrentRound)
	assert.False(t, advanced.IsComplete)

	// The game is on its final round now: advancing completes it.
	final, err := svc.AdvanceRound(game.ID)
	assert.ErrorIs(t, err, domain.ErrFinalRound)
	assert.True(t, final.IsComplete)
	assert.Equal(t, 2, final.CurrentRound)
}

func TestGameService_ResetGame(t *testing.T) {
	svc, st := newService(t)
	game, err := svc.CreateGame(2)
	require.NoError(t, err)
	ann, err := svc.JoinGame(game.ID, "Ann", "red")
	require.NoError(t, err)
	bob, err := svc.JoinGame(game.ID, "Bob", "blue")
	require.NoError(t, err)

	rounds, err := st.RoundsByGame(game.ID)
	require.NoError(t, err)

	_, err = svc.SubmitAnswer(rounds[0].ID, ann.ID, "Dog")
	require.NoError(t, err)
	_, err = svc.SubmitAnswer(rounds[0].ID, bob.ID, "Cat")
	require.NoError(t, err)

	proc := NewRoundProcessor(st, testLogger())
	require.NoError(t, proc.ProcessRound(rounds[0].ID))
	_, err = svc.AdvanceRound(game.ID)
	require.NoError(t, err)

	reset, err := svc.ResetGame(game.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reset.CurrentRound)
	assert.False(t, reset.IsComplete)

	roster, err := st.PlayersByGame(game.ID)
	require.NoError(t, err)
	for _, p := range roster {
		assert.Equal(t, 0, p.Score)
	}

	freshRounds, err := st.RoundsByGame(game.ID)
	require.NoError(t, err)
	require.Len(t, freshRounds, 2)
	for i, round := range freshRounds {
		assert.Equal(t, rounds[i].ID, round.ID, "round IDs stay stable across reset")
		assert.False(t, round.IsComplete)

		answers, err := st.AnswersByRound(round.ID)
		require.NoError(t, err)
		assert.Empty(t, answers, "answers cleared so the round can be replayed")
	}

	// Previously-processed round accepts submissions again.
	_, err = svc.SubmitAnswer(freshRounds[0].ID, ann.ID, "Fox")
	assert.NoError(t, err)
}

func TestGameService_GameDetails(t *testing.T) {
	svc, st := newService(t)
	game, err := svc.CreateGame(2)
	require.NoError(t, err)
	ann, err := svc.JoinGame(game.ID, "Ann", "red")
	require.NoError(t, err)
	_, err = svc.JoinGame(game.ID, "Bob", "blue")
	require.NoError(t, err)

	rounds, err := st.RoundsByGame(game.ID)
	require.NoError(t, err)
	_, err = svc.SubmitAnswer(rounds[0].ID, ann.ID, "Paris")
	require.NoError(t, err)

	details, err := svc.GameDetails(game.ID)
	require.NoError(t, err)

	require.Len(t, details.Players, 2)
	assert.True(t, details.Players[0].HasSubmitted)
	assert.Equal(t, "Paris", details.Players[0].Answer)
	assert.False(t, details.Players[1].HasSubmitted)

	require.Len(t, details.Rounds, 2)
	assert.NotNil(t, details.CurrentQuestion)
	assert.Equal(t, details.Rounds[0].Question.ID, details.CurrentQuestion.ID)
}
