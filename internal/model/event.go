package model

import (
	"time"
)

type EventKind string

const (
	EventAttempt  EventKind = "attempt"
	EventFollowUp EventKind = "follow_up"
	EventStudy    EventKind = "study"
)

type AttemptOutcome string

const (
	OutcomeAttempted AttemptOutcome = "attempted"
	OutcomeSolved    AttemptOutcome = "solved"
	OutcomeOptimal   AttemptOutcome = "optimal"
)

// Event is one row of the append-only per-user evidence log. The auto
// increment ID doubles as the insertion-order tie-breaker for equal
// timestamps and as the fold cursor of the mastery model.
//
// Rows are never updated or deleted. The per-kind fields are nullable
// columns here; domain code only sees them through the typed variants
// below.
type Event struct {
	ID                 uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID             uint            `gorm:"index:idx_events_user_ts;not null" json:"userId"`
	Kind               EventKind       `gorm:"size:16;not null;index" json:"kind"`
	Timestamp          time.Time       `gorm:"index:idx_events_user_ts;not null" json:"timestamp"`
	ProblemID          *string         `gorm:"size:128" json:"problemId,omitempty"`
	TopicID            *string         `gorm:"size:64" json:"topicId,omitempty"`
	Outcome            *AttemptOutcome `gorm:"size:16" json:"outcome,omitempty"`
	TimeToSolveMinutes *int            `json:"timeToSolveMinutes,omitempty"`
	SessionID          *string         `gorm:"size:64" json:"sessionId,omitempty"`
	Correct            *bool           `json:"correct,omitempty"`
	Minutes            *int            `json:"minutes,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
}

func (Event) TableName() string {
	return "events"
}

// AttemptEvent is the typed view of an attempt row.
type AttemptEvent struct {
	UserID             uint
	ProblemID          string
	Timestamp          time.Time
	Outcome            AttemptOutcome
	TimeToSolveMinutes *int
	SessionID          *string
}

func (e AttemptEvent) Row() Event {
	pid := e.ProblemID
	out := e.Outcome
	return Event{
		UserID:             e.UserID,
		Kind:               EventAttempt,
		Timestamp:          e.Timestamp,
		ProblemID:          &pid,
		Outcome:            &out,
		TimeToSolveMinutes: e.TimeToSolveMinutes,
		SessionID:          e.SessionID,
	}
}

// FollowUpEvent is the typed view of a follow-up answer row.
type FollowUpEvent struct {
	UserID    uint
	ProblemID string
	Timestamp time.Time
	Correct   bool
}

func (e FollowUpEvent) Row() Event {
	pid := e.ProblemID
	ok := e.Correct
	return Event{
		UserID:    e.UserID,
		Kind:      EventFollowUp,
		Timestamp: e.Timestamp,
		ProblemID: &pid,
		Correct:   &ok,
	}
}

// StudyEvent is the typed view of a topic-study row.
type StudyEvent struct {
	UserID    uint
	TopicID   string
	Timestamp time.Time
	Minutes   int
}

func (e StudyEvent) Row() Event {
	tid := e.TopicID
	mins := e.Minutes
	return Event{
		UserID:    e.UserID,
		Kind:      EventStudy,
		Timestamp: e.Timestamp,
		TopicID:   &tid,
		Minutes:   &mins,
	}
}
