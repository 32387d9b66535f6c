package domain

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeAnswers(texts ...string) []Answer {
	answers := make([]Answer, 0, len(texts))
	for i, text := range texts {
		answers = append(answers, Answer{
			ID:       i + 1,
			RoundID:  1,
			PlayerID: i + 1,
			Text:     text,
		})
	}
	return answers
}

func netDelta(verdicts map[int]Verdict) int {
	total := 0
	for _, v := range verdicts {
		total += v.ScoreDelta()
	}
	return total
}

func TestNormalizeAnswer(t *testing.T) {
	assert.Equal(t, "paris", NormalizeAnswer("  Paris "))
	assert.Equal(t, "dog", NormalizeAnswer("DOG"))
	assert.Equal(t, "", NormalizeAnswer("   "))
}

func TestClassify_Empty(t *testing.T) {
	verdicts := Classify(nil)
	assert.Empty(t, verdicts)
}

func TestClassify_PluralityWithTiedMinimum(t *testing.T) {
	// "Paris" and "paris " fold together; london and tokyo tie for the
	// minimum, so nobody is the black sheep.
	answers := makeAnswers("Paris", "paris ", "London", "Tokyo")
	verdicts := Classify(answers)

	require.Len(t, verdicts, 4)
	assert.True(t, verdicts[1].IsCommon)
	assert.True(t, verdicts[2].IsCommon)
	assert.False(t, verdicts[3].IsCommon)
	assert.False(t, verdicts[4].IsCommon)
	for id, v := range verdicts {
		assert.False(t, v.IsBlackSheep, "answer %d should not be black sheep", id)
	}
	assert.Equal(t, 2, netDelta(verdicts))
}

func TestClassify_UniqueMinimumIsBlackSheep(t *testing.T) {
	answers := makeAnswers("Dog", "Cat", "Dog", "Dog")
	verdicts := Classify(answers)

	assert.True(t, verdicts[1].IsCommon)
	assert.True(t, verdicts[3].IsCommon)
	assert.True(t, verdicts[4].IsCommon)
	assert.False(t, verdicts[2].IsCommon)
	assert.True(t, verdicts[2].IsBlackSheep)
	assert.Equal(t, 3-1, netDelta(verdicts))
}

func TestClassify_AllDistinct(t *testing.T) {
	// Every group has size one: universal tie for the maximum makes all
	// answers common, and the tie for the minimum means no black sheep.
	answers := makeAnswers("apple", "banana", "cherry")
	verdicts := Classify(answers)

	for id, v := range verdicts {
		assert.True(t, v.IsCommon, "answer %d should be common", id)
		assert.False(t, v.IsBlackSheep, "answer %d should not be black sheep", id)
	}
	assert.Equal(t, 3, netDelta(verdicts))
}

func TestClassify_SingleAnswer(t *testing.T) {
	// A lone submission is both common (trivial tie for max) and the
	// unique minimum, so both flags are set and the deltas cancel.
	verdicts := Classify(makeAnswers("zebra"))

	require.Len(t, verdicts, 1)
	assert.True(t, verdicts[1].IsCommon)
	assert.True(t, verdicts[1].IsBlackSheep)
	assert.Equal(t, 0, verdicts[1].ScoreDelta())
}

func TestClassify_UnanimousRound(t *testing.T) {
	verdicts := Classify(makeAnswers("pizza", "Pizza", " pizza"))

	for _, v := range verdicts {
		assert.True(t, v.IsCommon)
		// The unanimous group is also the unique minimum.
		assert.True(t, v.IsBlackSheep)
		assert.Equal(t, 0, v.ScoreDelta())
	}
}

func TestClassify_PermutationInvariance(t *testing.T) {
	answers := makeAnswers("Dog", "Cat", "Dog", "Bird", "Dog", "Cat")
	expected := Classify(answers)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := append([]Answer(nil), answers...)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		assert.Equal(t, expected, Classify(shuffled))
	}
}

func TestVerdict_ScoreDelta(t *testing.T) {
	assert.Equal(t, 0, Verdict{}.ScoreDelta())
	assert.Equal(t, 1, Verdict{IsCommon: true}.ScoreDelta())
	assert.Equal(t, -1, Verdict{IsBlackSheep: true}.ScoreDelta())
	assert.Equal(t, 0, Verdict{IsCommon: true, IsBlackSheep: true}.ScoreDelta())
}
