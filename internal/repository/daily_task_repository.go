package repository

import (
	"maang_tracker_backend/internal/model"

	"gorm.io/gorm"
)

type DailyTaskRepository struct {
	DB *gorm.DB
}

func NewDailyTaskRepository(db *gorm.DB) *DailyTaskRepository {
	return &DailyTaskRepository{DB: db}
}

func (r *DailyTaskRepository) Create(task *model.DailyTask) error {
	return r.DB.Create(task).Error
}

// ListForDay returns the day's tasks in emission order.
func (r *DailyTaskRepository) ListForDay(userID uint, date string) ([]model.DailyTask, error) {
	var tasks []model.DailyTask
	err := r.DB.Where("user_id = ? AND task_date = ?", userID, date).
		Order("position ASC").
		Find(&tasks).Error
	return tasks, err
}

func (r *DailyTaskRepository) FindForDay(userID uint, date, problemID string) (*model.DailyTask, error) {
	var task model.DailyTask
	err := r.DB.Where("user_id = ? AND task_date = ? AND problem_id = ?", userID, date, problemID).
		First(&task).Error
	return &task, err
}

func (r *DailyTaskRepository) Update(task *model.DailyTask) error {
	return r.DB.Save(task).Error
}
