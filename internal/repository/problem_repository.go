package repository

import (
	"maang_tracker_backend/internal/model"

	"gorm.io/gorm"
)

type ProblemRepository struct {
	DB *gorm.DB
}

func NewProblemRepository(db *gorm.DB) *ProblemRepository {
	return &ProblemRepository{DB: db}
}

func (r *ProblemRepository) Create(problem *model.Problem) error {
	return r.DB.Create(problem).Error
}

func (r *ProblemRepository) FindByID(problemID string) (*model.Problem, error) {
	var problem model.Problem
	err := r.DB.Where("problem_id = ?", problemID).First(&problem).Error
	return &problem, err
}

func (r *ProblemRepository) Exists(problemID string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Problem{}).Where("problem_id = ?", problemID).Count(&count).Error
	return count > 0, err
}

func (r *ProblemRepository) ListByTopic(topicID string) ([]model.Problem, error) {
	var problems []model.Problem
	err := r.DB.Where("topic_id = ?", topicID).Find(&problems).Error
	return problems, err
}
