package service

import (
	"fmt"
	"maang_tracker_backend/internal/model"
	"maang_tracker_backend/internal/repository"
	"maang_tracker_backend/internal/util"
)

// TaxonomyService is the immutable topic catalogue. It is loaded once at
// startup and never mutated afterwards, so reads need no locking.
type TaxonomyService struct {
	topics     []model.Topic
	byID       map[string]model.Topic
	byCategory map[model.TopicCategory][]model.Topic
}

// NewTaxonomyService loads the taxonomy from the topics table and pins it.
func NewTaxonomyService(repo *repository.TopicRepository) (*TaxonomyService, error) {
	topics, err := repo.ListAll()
	if err != nil {
		return nil, err
	}
	return NewTaxonomyFromTopics(topics)
}

// NewTaxonomyFromTopics builds the catalogue from an explicit topic list,
// preserving declaration order. Exposed for tests.
func NewTaxonomyFromTopics(topics []model.Topic) (*TaxonomyService, error) {
	if len(topics) == 0 {
		return nil, fmt.Errorf("taxonomy is empty")
	}

	s := &TaxonomyService{
		topics:     topics,
		byID:       make(map[string]model.Topic, len(topics)),
		byCategory: make(map[model.TopicCategory][]model.Topic),
	}
	for _, t := range topics {
		s.byID[t.TopicID] = t
		s.byCategory[t.Category] = append(s.byCategory[t.Category], t)
	}

	if _, ok := s.byID[model.OtherTopicID]; !ok {
		return nil, fmt.Errorf("taxonomy is missing the %q fallback topic", model.OtherTopicID)
	}
	return s, nil
}

func (s *TaxonomyService) Topic(topicID string) (model.Topic, error) {
	t, ok := s.byID[topicID]
	if !ok {
		return model.Topic{}, fmt.Errorf("%w: %s", util.ErrTopicNotFound, topicID)
	}
	return t, nil
}

func (s *TaxonomyService) Has(topicID string) bool {
	_, ok := s.byID[topicID]
	return ok
}

// AllTopics returns the taxonomy in declaration order. Callers must not
// mutate the returned slice.
func (s *TaxonomyService) AllTopics() []model.Topic {
	return s.topics
}

func (s *TaxonomyService) ByCategory(category model.TopicCategory) []model.Topic {
	return s.byCategory[category]
}

func (s *TaxonomyService) Size() int {
	return len(s.topics)
}
