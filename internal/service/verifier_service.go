package service

import (
	"maang_tracker_backend/internal/config"
	"maang_tracker_backend/internal/model"
)

// VerifierService owns the level-3 promotion rule. A problem at level 2 is
// promoted once the learner has answered enough follow-up questions correctly
// while already at level 2 or above; earlier correct answers count toward the
// lifetime total but not toward verification.
type VerifierService struct {
	Cfg *config.Config
}

func NewVerifierService(cfg *config.Config) *VerifierService {
	return &VerifierService{Cfg: cfg}
}

func (s *VerifierService) verifyN() int {
	n := s.Cfg.Learning.VerifyN
	if n <= 0 {
		n = 2
	}
	return n
}

// ApplyFollowUp folds one follow-up answer into the mastery record. Wrong
// answers are counted for analytics but never lower the level or the verify
// count. Returns true when this answer promoted the problem to level 3.
func (s *VerifierService) ApplyFollowUp(pm *model.ProblemMastery, correct bool) bool {
	if !correct {
		pm.FollowUpsWrong++
		return false
	}
	pm.FollowUpsCorrect++
	if pm.MasteryLevel < model.MasteryRepeated {
		return false
	}
	pm.VerifyCount++
	if pm.MasteryLevel == model.MasteryRepeated && pm.VerifyCount >= s.verifyN() {
		pm.MasteryLevel = model.MasteryVerified
		return true
	}
	return false
}

func (s *VerifierService) IsVerified(pm *model.ProblemMastery) bool {
	return pm.MasteryLevel >= model.MasteryVerified
}
