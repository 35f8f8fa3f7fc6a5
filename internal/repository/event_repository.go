package repository

import (
	"maang_tracker_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

// EventRepository is the append-only evidence log. Rows are never updated
// or deleted; ordering is (timestamp, id) so equal timestamps fall back to
// insertion order.
type EventRepository struct {
	DB *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{DB: db}
}

func (r *EventRepository) Append(event *model.Event) error {
	return r.DB.Create(event).Error
}

// ListForUser returns a user's events in log order. since filters on
// timestamp; kind filters on event kind; either may be zero-valued.
func (r *EventRepository) ListForUser(userID uint, since *time.Time, kind model.EventKind) ([]model.Event, error) {
	var events []model.Event
	query := r.DB.Where("user_id = ?", userID)
	if since != nil {
		query = query.Where("timestamp >= ?", *since)
	}
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	err := query.Order("timestamp ASC, id ASC").Find(&events).Error
	return events, err
}

// ListAfterID returns events past the fold cursor, in log order.
func (r *EventRepository) ListAfterID(userID uint, afterID uint) ([]model.Event, error) {
	var events []model.Event
	err := r.DB.Where("user_id = ? AND id > ?", userID, afterID).
		Order("id ASC").
		Find(&events).Error
	return events, err
}

func (r *EventRepository) LatestID(userID uint) (uint, error) {
	var event model.Event
	err := r.DB.Where("user_id = ?", userID).Order("id DESC").First(&event).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return event.ID, nil
}

// DistinctUserIDs lists every user that has logged at least one event.
// Used by the operational rebuild sweep.
func (r *EventRepository) DistinctUserIDs() ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Event{}).Distinct("user_id").Order("user_id ASC").Pluck("user_id", &ids).Error
	return ids, err
}

func (r *EventRepository) CountForProblem(userID uint, problemID string, kind model.EventKind) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Event{}).
		Where("user_id = ? AND problem_id = ? AND kind = ?", userID, problemID, kind).
		Count(&count).Error
	return count, err
}
