package store

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"blacksheep/internal/domain"
)

const keyPrefix = "blacksheep"

// RedisStore is a Redis-backed implementation of Storage. Entities are
// stored as JSON values under per-type keys, with set-based indexes for
// by-game and by-round lookups and INCR counters for ID assignment.
type RedisStore struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisStore connects to Redis, verifies the connection and seeds the
// standard question pool if the store is empty.
func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	s := &RedisStore{client: client, ctx: ctx}

	seeded, err := client.SCard(ctx, s.key("questions")).Result()
	if err != nil {
		return nil, fmt.Errorf("checking question pool: %w", err)
	}
	if seeded == 0 {
		for _, text := range standardQuestions {
			if _, err := s.CreateQuestion(domain.Question{Text: text}); err != nil {
				return nil, fmt.Errorf("seeding questions: %w", err)
			}
		}
	}

	return s, nil
}

// Close releases the underlying Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) key(parts ...string) string {
	return keyPrefix + ":" + strings.Join(parts, ":")
}

func (s *RedisStore) nextID(entity string) (int, error) {
	id, err := s.client.Incr(s.ctx, s.key("next", entity)).Result()
	if err != nil {
		return 0, err
	}
	return int(id), nil
}

func (s *RedisStore) setJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.client.Set(s.ctx, key, data, 0).Err()
}

func (s *RedisStore) getJSON(key string, v any, notFound error) error {
	data, err := s.client.Get(s.ctx, key).Result()
	if err == redis.Nil {
		return notFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), v)
}

// memberIDs loads the integer members of an index set.
func (s *RedisStore) memberIDs(key string) ([]int, error) {
	members, err := s.client.SMembers(s.ctx, key).Result()
	if err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(members))
	for _, m := range members {
		id, err := strconv.Atoi(m)
		if err != nil {
			return nil, fmt.Errorf("corrupt index %s: %w", key, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *RedisStore) CreateGame(g domain.Game) (domain.Game, error) {
	id, err := s.nextID("game")
	if err != nil {
		return domain.Game{}, err
	}

	g.ID = id
	g.CurrentRound = 1
	g.IsComplete = false
	if err := s.setJSON(s.key("game", strconv.Itoa(id)), g); err != nil {
		return domain.Game{}, err
	}
	if err := s.client.Set(s.ctx, s.key("code", strings.ToUpper(g.Code)), id, 0).Err(); err != nil {
		return domain.Game{}, err
	}

	return g, nil
}

func (s *RedisStore) GetGame(id int) (domain.Game, error) {
	var g domain.Game
	if err := s.getJSON(s.key("game", strconv.Itoa(id)), &g, domain.ErrGameNotFound); err != nil {
		return domain.Game{}, err
	}
	return g, nil
}

func (s *RedisStore) GetGameByCode(code string) (domain.Game, error) {
	idStr, err := s.client.Get(s.ctx, s.key("code", strings.ToUpper(code))).Result()
	if err == redis.Nil {
		return domain.Game{}, domain.ErrGameNotFound
	}
	if err != nil {
		return domain.Game{}, err
	}

	id, err := strconv.Atoi(idStr)
	if err != nil {
		return domain.Game{}, fmt.Errorf("corrupt code index: %w", err)
	}
	return s.GetGame(id)
}

func (s *RedisStore) UpdateGameProgress(gameID, currentRound int, isComplete bool) error {
	g, err := s.GetGame(gameID)
	if err != nil {
		return err
	}
	g.CurrentRound = currentRound
	g.IsComplete = isComplete
	return s.setJSON(s.key("game", strconv.Itoa(gameID)), g)
}

func (s *RedisStore) CreatePlayer(p domain.Player) (domain.Player, error) {
	id, err := s.nextID("player")
	if err != nil {
		return domain.Player{}, err
	}

	p.ID = id
	p.Score = 0
	if err := s.setJSON(s.key("player", strconv.Itoa(id)), p); err != nil {
		return domain.Player{}, err
	}
	if err := s.client.SAdd(s.ctx, s.key("game", strconv.Itoa(p.GameID), "players"), id).Err(); err != nil {
		return domain.Player{}, err
	}

	return p, nil
}

func (s *RedisStore) GetPlayer(id int) (domain.Player, error) {
	var p domain.Player
	if err := s.getJSON(s.key("player", strconv.Itoa(id)), &p, domain.ErrPlayerNotFound); err != nil {
		return domain.Player{}, err
	}
	return p, nil
}

func (s *RedisStore) PlayersByGame(gameID int) ([]domain.Player, error) {
	ids, err := s.memberIDs(s.key("game", strconv.Itoa(gameID), "players"))
	if err != nil {
		return nil, err
	}

	players := make([]domain.Player, 0, len(ids))
	for _, id := range ids {
		p, err := s.GetPlayer(id)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	sortPlayers(players)
	return players, nil
}

func (s *RedisStore) UpdatePlayerScore(playerID, score int) error {
	p, err := s.GetPlayer(playerID)
	if err != nil {
		return err
	}
	p.Score = score
	return s.setJSON(s.key("player", strconv.Itoa(playerID)), p)
}

func (s *RedisStore) CreateQuestion(q domain.Question) (domain.Question, error) {
	id, err := s.nextID("question")
	if err != nil {
		return domain.Question{}, err
	}

	q.ID = id
	if err := s.setJSON(s.key("question", strconv.Itoa(id)), q); err != nil {
		return domain.Question{}, err
	}
	if err := s.client.SAdd(s.ctx, s.key("questions"), id).Err(); err != nil {
		return domain.Question{}, err
	}

	return q, nil
}

func (s *RedisStore) GetQuestion(id int) (domain.Question, error) {
	var q domain.Question
	if err := s.getJSON(s.key("question", strconv.Itoa(id)), &q, domain.ErrQuestionNotFound); err != nil {
		return domain.Question{}, err
	}
	return q, nil
}

func (s *RedisStore) Questions() ([]domain.Question, error) {
	ids, err := s.memberIDs(s.key("questions"))
	if err != nil {
		return nil, err
	}

	questions := make([]domain.Question, 0, len(ids))
	for _, id := range ids {
		var q domain.Question
		if err := s.getJSON(s.key("question", strconv.Itoa(id)), &q, domain.ErrQuestionNotFound); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func (s *RedisStore) RandomQuestions(count int) ([]domain.Question, error) {
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

func (s *RedisStore) CreateRound(r domain.Round) (domain.Round, error) {
	id, err := s.nextID("round")
	if err != nil {
		return domain.Round{}, err
	}

	r.ID = id
	r.IsComplete = false
	if err := s.setJSON(s.key("round", strconv.Itoa(id)), r); err != nil {
		return domain.Round{}, err
	}
	if err := s.client.SAdd(s.ctx, s.key("game", strconv.Itoa(r.GameID), "rounds"), id).Err(); err != nil {
		return domain.Round{}, err
	}

	return r, nil
}

func (s *RedisStore) GetRound(id int) (domain.Round, error) {
	var r domain.Round
	if err := s.getJSON(s.key("round", strconv.Itoa(id)), &r, domain.ErrRoundNotFound); err != nil {
		return domain.Round{}, err
	}
	return r, nil
}

func (s *RedisStore) RoundsByGame(gameID int) ([]domain.Round, error) {
	ids, err := s.memberIDs(s.key("game", strconv.Itoa(gameID), "rounds"))
	if err != nil {
		return nil, err
	}

	rounds := make([]domain.Round, 0, len(ids))
	for _, id := range ids {
		r, err := s.GetRound(id)
		if err != nil {
			return nil, err
		}
		rounds = append(rounds, r)
	}
	sortRounds(rounds)
	return rounds, nil
}

func (s *RedisStore) MarkRoundComplete(roundID int) error {
	r, err := s.GetRound(roundID)
	if err != nil {
		return err
	}
	r.IsComplete = true
	return s.setJSON(s.key("round", strconv.Itoa(roundID)), r)
}

func (s *RedisStore) ResetRound(roundID, questionID int) error {
	r, err := s.GetRound(roundID)
	if err != nil {
		return err
	}
	r.QuestionID = questionID
	r.IsComplete = false
	return s.setJSON(s.key("round", strconv.Itoa(roundID)), r)
}

func (s *RedisStore) CreateAnswer(a domain.Answer) (domain.Answer, error) {
	id, err := s.nextID("answer")
	if err != nil {
		return domain.Answer{}, err
	}

	a.ID = id
	a.IsCommon = false
	a.IsBlackSheep = false
	roundKey := strconv.Itoa(a.RoundID)
	if err := s.setJSON(s.key("answer", strconv.Itoa(id)), a); err != nil {
		return domain.Answer{}, err
	}
	if err := s.client.SAdd(s.ctx, s.key("round", roundKey, "answers"), id).Err(); err != nil {
		return domain.Answer{}, err
	}
	if err := s.client.Set(s.ctx, s.key("round", roundKey, "player", strconv.Itoa(a.PlayerID)), id, 0).Err(); err != nil {
		return domain.Answer{}, err
	}

	return a, nil
}

func (s *RedisStore) AnswersByRound(roundID int) ([]domain.Answer, error) {
	ids, err := s.memberIDs(s.key("round", strconv.Itoa(roundID), "answers"))
	if err != nil {
		return nil, err
	}

	answers := make([]domain.Answer, 0, len(ids))
	for _, id := range ids {
		var a domain.Answer
		if err := s.getJSON(s.key("answer", strconv.Itoa(id)), &a, domain.ErrAnswerNotFound); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	sortAnswers(answers)
	return answers, nil
}

func (s *RedisStore) AnswerByRoundAndPlayer(roundID, playerID int) (domain.Answer, error) {
	idStr, err := s.client.Get(s.ctx, s.key("round", strconv.Itoa(roundID), "player", strconv.Itoa(playerID))).Result()
	if err == redis.Nil {
		return domain.Answer{}, domain.ErrAnswerNotFound
	}
	if err != nil {
		return domain.Answer{}, err
	}

	id, err := strconv.Atoi(idStr)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("corrupt answer index: %w", err)
	}

	var a domain.Answer
	if err := s.getJSON(s.key("answer", strconv.Itoa(id)), &a, domain.ErrAnswerNotFound); err != nil {
		return domain.Answer{}, err
	}
	return a, nil
}

func (s *RedisStore) SetAnswerFlags(answerID int, isCommon, isBlackSheep bool) error {
	var a domain.Answer
	if err := s.getJSON(s.key("answer", strconv.Itoa(answerID)), &a, domain.ErrAnswerNotFound); err != nil {
		return err
	}
	a.IsCommon = isCommon
	a.IsBlackSheep = isBlackSheep
	return s.setJSON(s.key("answer", strconv.Itoa(answerID)), a)
}

func (s *RedisStore) ClearAnswers(roundID int) error {
	roundKey := strconv.Itoa(roundID)
	answers, err := s.AnswersByRound(roundID)
	if err != nil {
		return err
	}

	for _, a := range answers {
		if err := s.client.Del(s.ctx,
			s.key("answer", strconv.Itoa(a.ID)),
			s.key("round", roundKey, "player", strconv.Itoa(a.PlayerID)),
		).Err(); err != nil {
			return err
		}
	}
	return s.client.Del(s.ctx, s.key("round", roundKey, "answers")).Err()
}
