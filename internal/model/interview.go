package model

import (
	"time"
)

type InterviewStatus string

const (
	InterviewActive   InterviewStatus = "active"
	InterviewFinished InterviewStatus = "finished"
)

// InterviewSession is one mock-interview run. Submissions feed the evidence
// log through the classifier; mentor feedback is best-effort.
type InterviewSession struct {
	BaseModel
	SessionID  string          `gorm:"uniqueIndex;size:64;not null" json:"sessionId"`
	UserID     uint            `gorm:"index;not null" json:"userId"`
	TopicID    string          `gorm:"size:64" json:"topicId"`
	Status     InterviewStatus `gorm:"size:16;not null;default:'active'" json:"status"`
	StartedAt  time.Time       `json:"startedAt"`
	FinishedAt *time.Time      `json:"finishedAt,omitempty"`
	Questions  int             `gorm:"not null;default:0" json:"questions"`
	Solved     int             `gorm:"not null;default:0" json:"solved"`
}

func (InterviewSession) TableName() string {
	return "interview_sessions"
}

// InterviewFeedback pairs the structured grading of a submission with the
// mentor's prose. FeedbackText is empty when the oracle timed out.
// swagger:model InterviewFeedback
type InterviewFeedback struct {
	ProblemID    string `json:"problemId"`
	TopicID      string `json:"topicId"`
	Severity     int    `json:"severity"`
	MasteryLevel int    `json:"masteryLevel"`
	FeedbackText string `json:"feedbackText"`
	OracleOK     bool   `json:"oracleOk"`
}
