package service

import (
	"fmt"
	"testing"

	"maang_tracker_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func syntheticTaxonomy(t *testing.T, n int) *TaxonomyService {
	t.Helper()
	topics := make([]model.Topic, 0, n)
	for i := 0; i < n-1; i++ {
		topics = append(topics, model.Topic{
			TopicID:               fmt.Sprintf("topic-%02d", i),
			Category:              model.CategoryArrays,
			Difficulty:            1 + i%5,
			CanonicalProblemCount: 10,
			Position:              i + 1,
		})
	}
	topics = append(topics, model.Topic{
		TopicID:               "other",
		Category:              model.CategoryOther,
		Difficulty:            3,
		CanonicalProblemCount: 10,
		Position:              n,
	})
	taxonomy, err := NewTaxonomyFromTopics(topics)
	require.NoError(t, err)
	return taxonomy
}

func TestWeeklyPlanPartition(t *testing.T) {
	svc := &RoadmapService{Taxonomy: syntheticTaxonomy(t, 19)}

	roadmap := svc.Build(nil, 4)
	require.Len(t, roadmap.WeeklyPlan, 4)

	sizes := make([]int, 0, 4)
	seen := map[string]int{}
	for _, week := range roadmap.WeeklyPlan {
		sizes = append(sizes, len(week.Topics))
		for _, entry := range week.Topics {
			seen[entry.TopicID]++
		}
	}
	assert.Equal(t, []int{5, 5, 5, 4}, sizes)

	// every topic appears exactly once across the plan
	assert.Len(t, seen, 19)
	for topicID, count := range seen {
		assert.Equalf(t, 1, count, "topic %s bucketed %d times", topicID, count)
	}
}

func TestInOrderTraversalSortedByDifficulty(t *testing.T) {
	svc := &RoadmapService{Taxonomy: syntheticTaxonomy(t, 19)}

	roadmap := svc.Build(nil, 4)

	var flat []model.RoadmapEntry
	for _, week := range roadmap.WeeklyPlan {
		flat = append(flat, week.Topics...)
	}
	for i := 1; i < len(flat); i++ {
		prev, cur := flat[i-1], flat[i]
		ordered := prev.Difficulty < cur.Difficulty ||
			(prev.Difficulty == cur.Difficulty && prev.TopicID < cur.TopicID)
		assert.Truef(t, ordered, "entries %d/%d out of order: %+v then %+v", i-1, i, prev, cur)
	}
}

func TestRecommendationsFollowProgress(t *testing.T) {
	assert.Equal(t, "start", recommendation(0))
	assert.Equal(t, "continue", recommendation(30))
	assert.Equal(t, "master with follow-ups", recommendation(75))
	assert.Equal(t, "review", recommendation(100))
}

func TestRoadmapCarriesCoverageProgress(t *testing.T) {
	svc := &RoadmapService{Taxonomy: syntheticTaxonomy(t, 5)}

	roadmap := svc.Build([]model.TopicCoverage{
		{UserID: 1, TopicID: "topic-00", ProblemsSolved: 5},
	}, 2)

	var found bool
	for _, week := range roadmap.WeeklyPlan {
		for _, entry := range week.Topics {
			if entry.TopicID == "topic-00" {
				found = true
				assert.InDelta(t, 50.0, entry.ProgressPct, 0.01)
				assert.Equal(t, "master with follow-ups", entry.Recommendation)
			}
		}
	}
	assert.True(t, found)

	assert.Equal(t, 5, roadmap.Summary.Topics)
	assert.Equal(t, 50, roadmap.Summary.TargetProblems)
}

func TestWeekFocusAndTargets(t *testing.T) {
	taxonomy, err := NewTaxonomyFromTopics([]model.Topic{
		{TopicID: "easy-a", Category: model.CategoryArrays, Difficulty: 1, CanonicalProblemCount: 12, Position: 1},
		{TopicID: "easy-b", Category: model.CategoryStrings, Difficulty: 1, CanonicalProblemCount: 8, Position: 2},
		{TopicID: "hard-a", Category: model.CategoryGraphs, Difficulty: 5, CanonicalProblemCount: 16, Position: 3},
		{TopicID: "other", Category: model.CategoryOther, Difficulty: 3, CanonicalProblemCount: 10, Position: 4},
	})
	require.NoError(t, err)
	svc := &RoadmapService{Taxonomy: taxonomy}

	roadmap := svc.Build(nil, 2)
	require.Len(t, roadmap.WeeklyPlan, 2)

	week1 := roadmap.WeeklyPlan[0]
	assert.Equal(t, model.CategoryArrays, week1.PrimaryFocus)
	assert.Equal(t, 20, week1.TargetProblems) // easy-a + easy-b

	week2 := roadmap.WeeklyPlan[1]
	assert.Equal(t, model.CategoryOther, week2.PrimaryFocus)
	assert.Equal(t, 26, week2.TargetProblems) // other + hard-a
}
