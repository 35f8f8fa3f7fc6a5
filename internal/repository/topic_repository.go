package repository

import (
	"maang_tracker_backend/internal/model"

	"gorm.io/gorm"
)

type TopicRepository struct {
	DB *gorm.DB
}

func NewTopicRepository(db *gorm.DB) *TopicRepository {
	return &TopicRepository{DB: db}
}

// ListAll returns the taxonomy in declaration order. Called once at startup;
// the in-memory catalog serves all later reads.
func (r *TopicRepository) ListAll() ([]model.Topic, error) {
	var topics []model.Topic
	err := r.DB.Order("position ASC").Find(&topics).Error
	return topics, err
}
