package service

import (
	"testing"

	"maang_tracker_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weaknessFixture(t *testing.T) *WeaknessService {
	t.Helper()
	taxonomy, err := NewTaxonomyFromTopics([]model.Topic{
		{TopicID: "alpha", Category: model.CategoryArrays, Difficulty: 1, CanonicalProblemCount: 10, Position: 1},
		{TopicID: "beta", Category: model.CategoryGraphs, Difficulty: 4, CanonicalProblemCount: 10, Position: 2},
		{TopicID: "gamma", Category: model.CategoryTrees, Difficulty: 4, CanonicalProblemCount: 10, Position: 3},
		{TopicID: "other", Category: model.CategoryOther, Difficulty: 3, CanonicalProblemCount: 10, Position: 4},
	})
	require.NoError(t, err)
	return &WeaknessService{Taxonomy: taxonomy}
}

func TestScoreTiers(t *testing.T) {
	cases := []struct {
		name     string
		solved   int
		score    float64
		priority model.WeaknessPriority
	}{
		{"untouched", 0, 100, model.PriorityCritical}, // raw 200
		{"low coverage", 3, 100, model.PriorityHigh},  // 30% -> raw 140
		{"mid coverage", 5, 75, model.PriorityMedium}, // 50% -> raw 75
		{"high coverage", 8, 20, model.PriorityLow},   // 80% -> raw 20
		{"complete", 10, 0, model.PriorityLow},
	}
	topic := model.Topic{TopicID: "alpha", Difficulty: 1, CanonicalProblemCount: 10}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			score, priority, _ := scoreTopic(topic, tc.solved)
			assert.Equal(t, tc.score, score)
			assert.Equal(t, tc.priority, priority)
		})
	}
}

func TestScoreBounds(t *testing.T) {
	topic := model.Topic{TopicID: "alpha", Difficulty: 2, CanonicalProblemCount: 8}
	for solved := 0; solved <= 12; solved++ {
		score, _, covPct := scoreTopic(topic, solved)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 100.0)
		assert.LessOrEqual(t, covPct, 100.0)
	}
}

func TestRankingDeterministicTieBreaks(t *testing.T) {
	svc := weaknessFixture(t)

	// no coverage anywhere: every topic scores 100, so ordering falls back
	// to difficulty descending then topic id ascending
	profile := svc.Rank(nil)
	require.Len(t, profile, 4)
	assert.Equal(t, "beta", profile[0].TopicID)
	assert.Equal(t, "gamma", profile[1].TopicID)
	assert.Equal(t, "other", profile[2].TopicID)
	assert.Equal(t, "alpha", profile[3].TopicID)

	again := svc.Rank(nil)
	assert.Equal(t, profile, again)
}

func TestRankingWeakestFirst(t *testing.T) {
	svc := weaknessFixture(t)

	profile := svc.Rank([]model.TopicCoverage{
		{UserID: 1, TopicID: "beta", ProblemsSolved: 9, ProficiencyLevel: 3},
		{UserID: 1, TopicID: "alpha", ProblemsSolved: 5, ProficiencyLevel: 2},
	})
	require.Len(t, profile, 4)

	// untouched topics outrank partially covered ones
	assert.Equal(t, "gamma", profile[0].TopicID)
	assert.Equal(t, "other", profile[1].TopicID)
	assert.Equal(t, "alpha", profile[2].TopicID)
	assert.Equal(t, "beta", profile[3].TopicID)
	assert.Equal(t, 2, profile[2].Proficiency)
}
