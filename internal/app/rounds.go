package app

import (
	"log/slog"
	"sync"

	"blacksheep/internal/domain"
	"blacksheep/internal/store"
)

// RoundProcessor resolves a finished round: it classifies the submitted
// answers, applies score adjustments and marks the round complete.
// Processing runs to completion under an internal mutex, and an
// already-complete round is rejected before any mutation, so a timer and
// a last-submission trigger racing each other cannot double-apply score
// deltas.
type RoundProcessor struct {
	mu     sync.Mutex
	store  store.Storage
	logger *slog.Logger
}

// NewRoundProcessor creates a round processor backed by the given store.
func NewRoundProcessor(st store.Storage, logger *slog.Logger) *RoundProcessor {
	return &RoundProcessor{store: st, logger: logger}
}

// ProcessRound classifies the round's answers, persists the common and
// black-sheep flags, adjusts player scores and marks the round complete.
// A round with no answers is left untouched so it can still be played.
// Returns domain.ErrRoundNotFound for an unknown round and
// domain.ErrRoundProcessed when the round was already resolved.
func (p *RoundProcessor) ProcessRound(roundID int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	round, err := p.store.GetRound(roundID)
	if err != nil {
		return err
	}
	if round.IsComplete {
		return domain.ErrRoundProcessed
	}

	answers, err := p.store.AnswersByRound(roundID)
	if err != nil {
		return err
	}
	if len(answers) == 0 {
		return nil
	}

	verdicts := domain.Classify(answers)

	for _, a := range answers {
		v := verdicts[a.ID]
		if !v.IsCommon && !v.IsBlackSheep {
			continue
		}
		if err := p.store.SetAnswerFlags(a.ID, v.IsCommon, v.IsBlackSheep); err != nil {
			return err
		}
	}

	players, err := p.store.PlayersByGame(round.GameID)
	if err != nil {
		return err
	}

	byPlayer := make(map[int]domain.Answer, len(answers))
	for _, a := range answers {
		byPlayer[a.PlayerID] = a
	}

	for _, player := range players {
		a, ok := byPlayer[player.ID]
		if !ok {
			continue
		}
		delta := verdicts[a.ID].ScoreDelta()
		if delta == 0 {
			continue
		}
		if err := p.store.UpdatePlayerScore(player.ID, player.Score+delta); err != nil {
			return err
		}
	}

	if err := p.store.MarkRoundComplete(roundID); err != nil {
		return err
	}

	p.logger.Info("round processed",
		"roundID", roundID,
		"gameID", round.GameID,
		"answers", len(answers),
	)

	return nil
}
