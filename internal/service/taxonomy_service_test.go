package service

import (
	"testing"

	"maang_tracker_backend/internal/model"
	"maang_tracker_backend/internal/util"
	"maang_tracker_backend/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaxonomyPreservesDeclarationOrder(t *testing.T) {
	seed := database.DefaultTopics()
	svc, err := NewTaxonomyFromTopics(seed)
	require.NoError(t, err)

	all := svc.AllTopics()
	require.Len(t, all, len(seed))
	for i, topic := range all {
		assert.Equal(t, seed[i].TopicID, topic.TopicID)
	}
	assert.Equal(t, len(seed), svc.Size())
}

func TestTaxonomyLookup(t *testing.T) {
	svc, err := NewTaxonomyFromTopics(database.DefaultTopics())
	require.NoError(t, err)

	topic, err := svc.Topic("graphs")
	require.NoError(t, err)
	assert.Equal(t, 4, topic.Difficulty)
	assert.Equal(t, model.CategoryGraphs, topic.Category)

	assert.True(t, svc.Has("arrays"))
	assert.False(t, svc.Has("quantum-computing"))

	_, err = svc.Topic("quantum-computing")
	assert.ErrorIs(t, err, util.ErrTopicNotFound)
}

func TestTaxonomyByCategory(t *testing.T) {
	svc, err := NewTaxonomyFromTopics(database.DefaultTopics())
	require.NoError(t, err)

	trees := svc.ByCategory(model.CategoryTrees)
	require.NotEmpty(t, trees)
	ids := make([]string, 0, len(trees))
	for _, topic := range trees {
		assert.Equal(t, model.CategoryTrees, topic.Category)
		ids = append(ids, topic.TopicID)
	}
	assert.Equal(t, []string{"trees", "bst", "tries"}, ids)
}

func TestTaxonomyRequiresFallbackTopic(t *testing.T) {
	_, err := NewTaxonomyFromTopics([]model.Topic{
		{TopicID: "arrays", Category: model.CategoryArrays, Difficulty: 1, CanonicalProblemCount: 10},
	})
	assert.Error(t, err)
}

func TestTaxonomyRejectsEmpty(t *testing.T) {
	_, err := NewTaxonomyFromTopics(nil)
	assert.Error(t, err)
}
