package service

import (
	"testing"

	"maang_tracker_backend/internal/model"
	"maang_tracker_backend/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classifierFixture(t *testing.T) *ClassifierService {
	t.Helper()
	taxonomy, err := NewTaxonomyFromTopics(database.DefaultTopics())
	require.NoError(t, err)
	return NewClassifierService(taxonomy)
}

func TestClassifyByTagSynonym(t *testing.T) {
	svc := classifierFixture(t)

	out := svc.Classify(RawEvidence{
		Title:      "Longest Increasing Subsequence",
		SourceTags: []string{"DP"},
	})
	assert.Equal(t, "dynamic-programming", out.TopicID)
}

func TestClassifyByDirectTopicTag(t *testing.T) {
	svc := classifierFixture(t)

	out := svc.Classify(RawEvidence{
		Title:      "Course Schedule",
		SourceTags: []string{"unknown-tag", "graphs"},
	})
	assert.Equal(t, "graphs", out.TopicID)
}

func TestTagsWinOverTitle(t *testing.T) {
	svc := classifierFixture(t)

	// title mentions arrays, tag pins it to graphs
	out := svc.Classify(RawEvidence{
		Title:      "Matrix of array paths",
		SourceTags: []string{"bfs"},
	})
	assert.Equal(t, "graphs", out.TopicID)
}

func TestClassifyByTitleKeyword(t *testing.T) {
	svc := classifierFixture(t)

	out := svc.Classify(RawEvidence{Title: "Reverse Linked List II"})
	assert.Equal(t, "linked-list", out.TopicID)

	out = svc.Classify(RawEvidence{Title: "Valid Palindrome"})
	assert.Equal(t, "strings", out.TopicID)
}

func TestClassifyFallsBackToOther(t *testing.T) {
	svc := classifierFixture(t)

	out := svc.Classify(RawEvidence{Title: "Some Inscrutable Puzzle"})
	assert.Equal(t, model.OtherTopicID, out.TopicID)
	assert.Equal(t, 3, out.Severity) // medium external, difficulty 3 topic
}

func TestClassifierTotalAndBounded(t *testing.T) {
	svc := classifierFixture(t)

	inputs := []RawEvidence{
		{},
		{Title: ""},
		{Title: "x", SourceTags: []string{"", "  "}},
		{Title: "Course Schedule", SourceTags: []string{"graph"}, ExternalDifficulty: model.DifficultyHard},
		{Title: "Two Sum", ExternalDifficulty: model.DifficultyEasy},
		{Title: "Word Ladder", ExternalDifficulty: "weird-label"},
	}
	for _, in := range inputs {
		out := svc.Classify(in)
		assert.True(t, svc.Taxonomy.Has(out.TopicID), "topic %q not in taxonomy", out.TopicID)
		assert.GreaterOrEqual(t, out.Severity, 1)
		assert.LessOrEqual(t, out.Severity, 5)
	}
}

func TestSeverityAveragesDifficulties(t *testing.T) {
	svc := classifierFixture(t)

	// hard (5) + graphs difficulty (4) -> round(4.5) = 5
	out := svc.Classify(RawEvidence{SourceTags: []string{"graph"}, ExternalDifficulty: model.DifficultyHard})
	assert.Equal(t, 5, out.Severity)

	// easy (1) + arrays difficulty (1) -> 1
	out = svc.Classify(RawEvidence{SourceTags: []string{"array"}, ExternalDifficulty: model.DifficultyEasy})
	assert.Equal(t, 1, out.Severity)

	// easy (1) + dp difficulty (4) -> round(2.5) = 3
	out = svc.Classify(RawEvidence{SourceTags: []string{"dp"}, ExternalDifficulty: model.DifficultyEasy})
	assert.Equal(t, 3, out.Severity)
}

func TestClassifierDeterministic(t *testing.T) {
	svc := classifierFixture(t)

	in := RawEvidence{Title: "Binary Tree Level Order Traversal", ExternalDifficulty: model.DifficultyMedium}
	first := svc.Classify(in)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, svc.Classify(in))
	}
}
