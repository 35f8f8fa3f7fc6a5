package model

import (
	"time"
)

// Mastery levels per problem. Levels never decrease once reached.
const (
	MasteryNone     = 0 // no solve recorded yet
	MasterySolved   = 1
	MasteryRepeated = 2
	MasteryVerified = 3
)

// ProblemMastery is derived state for one (user, problem) pair, produced by
// folding the event log. FollowUpsCorrect counts every correct follow-up;
// VerifyCount counts only those answered after the problem reached level 2,
// which is what gates promotion to level 3.
type ProblemMastery struct {
	BaseModel
	UserID           uint       `gorm:"uniqueIndex:idx_pm_user_problem;not null" json:"userId"`
	ProblemID        string     `gorm:"uniqueIndex:idx_pm_user_problem;size:128;not null" json:"problemId"`
	TopicID          string     `gorm:"size:64;not null;index" json:"topicId"`
	Attempts         int        `gorm:"not null;default:0" json:"attempts"`
	FirstSolvedAt    *time.Time `json:"firstSolvedAt,omitempty"`
	BestTimeMinutes  *int       `json:"bestTimeMinutes,omitempty"`
	OptimalEver      bool       `gorm:"not null;default:false" json:"optimalEver"`
	FollowUpsCorrect int        `gorm:"not null;default:0" json:"followUpsCorrect"`
	FollowUpsWrong   int        `gorm:"not null;default:0" json:"followUpsWrong"` // analytics only, never regresses mastery
	VerifyCount      int        `gorm:"not null;default:0" json:"verifyCount"`
	MasteryLevel     int        `gorm:"not null;default:0" json:"masteryLevel"`
}

func (ProblemMastery) TableName() string {
	return "problem_masteries"
}

// TopicCoverage is derived per (user, topic) from ProblemMastery.
type TopicCoverage struct {
	BaseModel
	UserID           uint   `gorm:"uniqueIndex:idx_tc_user_topic;not null" json:"userId"`
	TopicID          string `gorm:"uniqueIndex:idx_tc_user_topic;size:64;not null" json:"topicId"`
	ProblemsSolved   int    `gorm:"not null;default:0" json:"problemsSolved"` // distinct problems at level >= 1
	MasteredL2       int    `gorm:"not null;default:0" json:"masteredL2"`     // distinct problems at level >= 2
	MasteredL3       int    `gorm:"not null;default:0" json:"masteredL3"`     // distinct problems at level 3
	StudyMinutes     int    `gorm:"not null;default:0" json:"studyMinutes"`
	ProficiencyLevel int    `gorm:"not null;default:1" json:"proficiencyLevel"` // 1..3
}

func (TopicCoverage) TableName() string {
	return "topic_coverages"
}

// MasterySnapshot tracks the fold cursor and version for one user's derived
// state. Version increments on every successful event append; Poisoned marks
// a user whose recompute tripped an invariant and who refuses writes until a
// full rebuild from the log succeeds.
type MasterySnapshot struct {
	BaseModel
	UserID      uint  `gorm:"uniqueIndex;not null" json:"userId"`
	Version     int64 `gorm:"not null;default:0" json:"version"`
	LastEventID uint  `gorm:"not null;default:0" json:"lastEventId"`
	Poisoned    bool  `gorm:"not null;default:false" json:"poisoned"`
}

func (MasterySnapshot) TableName() string {
	return "mastery_snapshots"
}

// UserSummary is the aggregate returned by the summary endpoint.
// swagger:model UserSummary
type UserSummary struct {
	TotalProblemsSolved int         `json:"totalProblemsSolved"`
	MasteryBreakdown    map[int]int `json:"masteryBreakdown"` // level -> count
	TopicsCovered       int         `json:"topicsCovered"`
	ProgressToTargetPct int         `json:"progressToTargetPct"`
	TargetDate          *time.Time  `json:"targetDate,omitempty"`
	SnapshotVersion     int64       `json:"snapshotVersion"`
	StaleAsOf           *time.Time  `json:"staleAsOf,omitempty"` // set when a recompute is pending
}
