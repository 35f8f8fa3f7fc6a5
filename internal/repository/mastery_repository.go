package repository

import (
	"maang_tracker_backend/internal/model"

	"gorm.io/gorm"
)

// MasteryRepository stores the derived state: per-problem mastery, topic
// coverage and the per-user snapshot cursor. Derived rows may be wiped and
// rebuilt from the event log at any time.
type MasteryRepository struct {
	DB *gorm.DB
}

func NewMasteryRepository(db *gorm.DB) *MasteryRepository {
	return &MasteryRepository{DB: db}
}

func (r *MasteryRepository) FindProblemMastery(userID uint, problemID string) (*model.ProblemMastery, error) {
	var pm model.ProblemMastery
	err := r.DB.Where("user_id = ? AND problem_id = ?", userID, problemID).First(&pm).Error
	return &pm, err
}

func (r *MasteryRepository) SaveProblemMastery(pm *model.ProblemMastery) error {
	return r.DB.Save(pm).Error
}

func (r *MasteryRepository) ListProblemMasteries(userID uint) ([]model.ProblemMastery, error) {
	var pms []model.ProblemMastery
	err := r.DB.Where("user_id = ?", userID).Order("problem_id ASC").Find(&pms).Error
	return pms, err
}

func (r *MasteryRepository) ListProblemMasteriesByTopic(userID uint, topicID string) ([]model.ProblemMastery, error) {
	var pms []model.ProblemMastery
	err := r.DB.Where("user_id = ? AND topic_id = ?", userID, topicID).Order("problem_id ASC").Find(&pms).Error
	return pms, err
}

func (r *MasteryRepository) FindTopicCoverage(userID uint, topicID string) (*model.TopicCoverage, error) {
	var tc model.TopicCoverage
	err := r.DB.Where("user_id = ? AND topic_id = ?", userID, topicID).First(&tc).Error
	return &tc, err
}

func (r *MasteryRepository) SaveTopicCoverage(tc *model.TopicCoverage) error {
	return r.DB.Save(tc).Error
}

func (r *MasteryRepository) ListTopicCoverages(userID uint) ([]model.TopicCoverage, error) {
	var tcs []model.TopicCoverage
	err := r.DB.Where("user_id = ?", userID).Order("topic_id ASC").Find(&tcs).Error
	return tcs, err
}

func (r *MasteryRepository) FindSnapshot(userID uint) (*model.MasterySnapshot, error) {
	var snap model.MasterySnapshot
	err := r.DB.Where("user_id = ?", userID).First(&snap).Error
	if err == gorm.ErrRecordNotFound {
		return &model.MasterySnapshot{UserID: userID}, nil
	}
	return &snap, err
}

func (r *MasteryRepository) SaveSnapshot(snap *model.MasterySnapshot) error {
	return r.DB.Save(snap).Error
}

// WipeDerived drops all derived rows for a user ahead of a full rebuild.
// The event log is untouched.
func (r *MasteryRepository) WipeDerived(userID uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("user_id = ?", userID).Delete(&model.ProblemMastery{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("user_id = ?", userID).Delete(&model.TopicCoverage{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Where("user_id = ?", userID).Delete(&model.MasterySnapshot{}).Error
	})
}
