package service

import (
	"maang_tracker_backend/internal/model"
	"maang_tracker_backend/internal/repository"
	"maang_tracker_backend/internal/util"

	"gorm.io/gorm"
)

type UserService struct {
	Repo *repository.UserRepository
}

func NewUserService(repo *repository.UserRepository) *UserService {
	return &UserService{Repo: repo}
}

type UpdateProfileRequest struct {
	Name     string `json:"name"`
	Timezone string `json:"timezone"`
}

func (s *UserService) Profile(userID uint) (*model.User, error) {
	user, err := s.Repo.FindByID(userID)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdateProfile(userID uint, req UpdateProfileRequest) (*model.User, error) {
	user, err := s.Profile(userID)
	if err != nil {
		return nil, err
	}
	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Timezone != "" {
		user.Timezone = req.Timezone
	}
	if err := s.Repo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) TouchLastSeen(userID uint) {
	_ = s.Repo.UpdateLastSeen(userID)
}
