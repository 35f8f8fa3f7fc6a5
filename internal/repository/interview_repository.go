package repository

import (
	"maang_tracker_backend/internal/model"

	"gorm.io/gorm"
)

type InterviewRepository struct {
	DB *gorm.DB
}

func NewInterviewRepository(db *gorm.DB) *InterviewRepository {
	return &InterviewRepository{DB: db}
}

func (r *InterviewRepository) Create(session *model.InterviewSession) error {
	return r.DB.Create(session).Error
}

func (r *InterviewRepository) FindBySessionID(sessionID string) (*model.InterviewSession, error) {
	var session model.InterviewSession
	err := r.DB.Where("session_id = ?", sessionID).First(&session).Error
	return &session, err
}

func (r *InterviewRepository) Update(session *model.InterviewSession) error {
	return r.DB.Save(session).Error
}

func (r *InterviewRepository) ListForUser(userID uint, limit int) ([]model.InterviewSession, error) {
	var sessions []model.InterviewSession
	err := r.DB.Where("user_id = ?", userID).
		Order("started_at DESC").
		Limit(limit).
		Find(&sessions).Error
	return sessions, err
}
