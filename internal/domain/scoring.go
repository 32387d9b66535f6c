package domain

import "strings"

// Verdict is the classification of a single answer within its round.
// Both flags can be set at once: a lone submission is trivially part of
// the largest group and also the unique smallest one, for a net score of
// zero.
type Verdict struct {
	IsCommon     bool
	IsBlackSheep bool
}

// ScoreDelta returns the score adjustment this verdict applies to the
// answer's player: +1 for common, -1 for black sheep, independently.
func (v Verdict) ScoreDelta() int {
	delta := 0
	if v.IsCommon {
		delta++
	}
	if v.IsBlackSheep {
		delta--
	}
	return delta
}

// NormalizeAnswer folds an answer's text into its grouping key. The key
// decides equality; the stored text is never altered.
func NormalizeAnswer(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// Classify groups one round's answers by normalized text and tags each
// answer, keyed by answer ID.
//
// Every answer in a group tied for the largest size is common, including
// the degenerate case where all groups have size one and every answer
// ends up common. The black sheep tag is applied only when exactly one
// group attains the smallest size; a tie for the minimum means no black
// sheep this round. An empty input yields an empty result.
func Classify(answers []Answer) map[int]Verdict {
	verdicts := make(map[int]Verdict, len(answers))
	if len(answers) == 0 {
		return verdicts
	}

	groups := make(map[string][]Answer)
	for _, a := range answers {
		key := NormalizeAnswer(a.Text)
		groups[key] = append(groups[key], a)
	}

	maxCount := 0
	minCount := len(answers) + 1
	minKeys := 0
	var minKey string
	for key, group := range groups {
		n := len(group)
		if n > maxCount {
			maxCount = n
		}
		switch {
		case n < minCount:
			minCount = n
			minKey = key
			minKeys = 1
		case n == minCount:
			minKeys++
		}
	}

	for key, group := range groups {
		v := Verdict{
			IsCommon:     len(group) == maxCount,
			IsBlackSheep: minKeys == 1 && key == minKey,
		}
		for _, a := range group {
			verdicts[a.ID] = v
		}
	}

	return verdicts
}
