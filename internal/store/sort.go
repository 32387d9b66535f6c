package store

import (
	"sort"

	"blacksheep/internal/domain"
)

func sortPlayers(players []domain.Player) {
	sort.Slice(players, func(i, j int) bool { return players[i].Order < players[j].Order })
}

func sortRounds(rounds []domain.Round) {
	sort.Slice(rounds, func(i, j int) bool { return rounds[i].Number < rounds[j].Number })
}

func sortAnswers(answers []domain.Answer) {
	sort.Slice(answers, func(i, j int) bool { return answers[i].ID < answers[j].ID })
}
