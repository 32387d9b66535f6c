package store

import (
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"blacksheep/internal/domain"
)

// MemStore is a mutex-guarded in-memory implementation of Storage. State
// lives for the process lifetime only.
type MemStore struct {
	mu sync.RWMutex

	games     map[int]domain.Game
	players   map[int]domain.Player
	questions map[int]domain.Question
	rounds    map[int]domain.Round
	answers   map[int]domain.Answer

	nextGameID     int
	nextPlayerID   int
	nextQuestionID int
	nextRoundID    int
	nextAnswerID   int
}

// NewMemStore creates an empty in-memory store seeded with the standard
// question pool.
func NewMemStore() *MemStore {
	s := &MemStore{
		games:          make(map[int]domain.Game),
		players:        make(map[int]domain.Player),
		questions:      make(map[int]domain.Question),
		rounds:         make(map[int]domain.Round),
		answers:        make(map[int]domain.Answer),
		nextGameID:     1,
		nextPlayerID:   1,
		nextQuestionID: 1,
		nextRoundID:    1,
		nextAnswerID:   1,
	}

	for _, text := range standardQuestions {
		s.CreateQuestion(domain.Question{Text: text})
	}

	return s
}

func (s *MemStore) CreateGame(g domain.Game) (domain.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g.ID = s.nextGameID
	s.nextGameID++
	g.CurrentRound = 1
	g.IsComplete = false
	g.CreatedAt = time.Now()
	s.games[g.ID] = g

	return g, nil
}

func (s *MemStore) GetGame(id int) (domain.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.games[id]
	if !ok {
		return domain.Game{}, domain.ErrGameNotFound
	}
	return g, nil
}

func (s *MemStore) GetGameByCode(code string) (domain.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, g := range s.games {
		if strings.EqualFold(g.Code, code) {
			return g, nil
		}
	}
	return domain.Game{}, domain.ErrGameNotFound
}

func (s *MemStore) UpdateGameProgress(gameID, currentRound int, isComplete bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[gameID]
	if !ok {
		return domain.ErrGameNotFound
	}
	g.CurrentRound = currentRound
	g.IsComplete = isComplete
	s.games[gameID] = g
	return nil
}

func (s *MemStore) CreatePlayer(p domain.Player) (domain.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = s.nextPlayerID
	s.nextPlayerID++
	p.Score = 0
	s.players[p.ID] = p

	return p, nil
}

func (s *MemStore) GetPlayer(id int) (domain.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.players[id]
	if !ok {
		return domain.Player{}, domain.ErrPlayerNotFound
	}
	return p, nil
}

func (s *MemStore) PlayersByGame(gameID int) ([]domain.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	players := make([]domain.Player, 0)
	for _, p := range s.players {
		if p.GameID == gameID {
			players = append(players, p)
		}
	}
	sortPlayers(players)
	return players, nil
}

func (s *MemStore) UpdatePlayerScore(playerID, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[playerID]
	if !ok {
		return domain.ErrPlayerNotFound
	}
	p.Score = score
	s.players[playerID] = p
	return nil
}

func (s *MemStore) CreateQuestion(q domain.Question) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q.ID = s.nextQuestionID
	s.nextQuestionID++
	s.questions[q.ID] = q

	return q, nil
}

func (s *MemStore) GetQuestion(id int) (domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.questions[id]
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return q, nil
}

func (s *MemStore) Questions() ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	questions := make([]domain.Question, 0, len(s.questions))
	for _, q := range s.questions {
		questions = append(questions, q)
	}
	sort.Slice(questions, func(i, j int) bool { return questions[i].ID < questions[j].ID })
	return questions, nil
}

func (s *MemStore) RandomQuestions(count int) ([]domain.Question, error) {
	questions, err := s.Questions()
	if err != nil {
		return nil, err
	}

	rand.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})
	if count < len(questions) {
		questions = questions[:count]
	}
	return questions, nil
}

func (s *MemStore) CreateRound(r domain.Round) (domain.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.ID = s.nextRoundID
	s.nextRoundID++
	r.IsComplete = false
	s.rounds[r.ID] = r

	return r, nil
}

func (s *MemStore) GetRound(id int) (domain.Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rounds[id]
	if !ok {
		return domain.Round{}, domain.ErrRoundNotFound
	}
	return r, nil
}

func (s *MemStore) RoundsByGame(gameID int) ([]domain.Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rounds := make([]domain.Round, 0)
	for _, r := range s.rounds {
		if r.GameID == gameID {
			rounds = append(rounds, r)
		}
	}
	sortRounds(rounds)
	return rounds, nil
}

func (s *MemStore) MarkRoundComplete(roundID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rounds[roundID]
	if !ok {
		return domain.ErrRoundNotFound
	}
	r.IsComplete = true
	s.rounds[roundID] = r
	return nil
}

func (s *MemStore) ResetRound(roundID, questionID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rounds[roundID]
	if !ok {
		return domain.ErrRoundNotFound
	}
	r.QuestionID = questionID
	r.IsComplete = false
	s.rounds[roundID] = r
	return nil
}

func (s *MemStore) CreateAnswer(a domain.Answer) (domain.Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a.ID = s.nextAnswerID
	s.nextAnswerID++
	a.IsCommon = false
	a.IsBlackSheep = false
	s.answers[a.ID] = a

	return a, nil
}

func (s *MemStore) AnswersByRound(roundID int) ([]domain.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	answers := make([]domain.Answer, 0)
	for _, a := range s.answers {
		if a.RoundID == roundID {
			answers = append(answers, a)
		}
	}
	sortAnswers(answers)
	return answers, nil
}

func (s *MemStore) AnswerByRoundAndPlayer(roundID, playerID int) (domain.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.answers {
		if a.RoundID == roundID && a.PlayerID == playerID {
			return a, nil
		}
	}
	return domain.Answer{}, domain.ErrAnswerNotFound
}

func (s *MemStore) SetAnswerFlags(answerID int, isCommon, isBlackSheep bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.answers[answerID]
	if !ok {
		return domain.ErrAnswerNotFound
	}
	a.IsCommon = isCommon
	a.IsBlackSheep = isBlackSheep
	s.answers[answerID] = a
	return nil
}

func (s *MemStore) ClearAnswers(roundID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, a := range s.answers {
		if a.RoundID == roundID {
			delete(s.answers, id)
		}
	}
	return nil
}
