package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"maang_tracker_backend/internal/model"
	"maang_tracker_backend/internal/repository"
	"maang_tracker_backend/internal/util"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InterviewService runs mock-interview sessions. Each submission is graded
// into an attempt event (so it feeds mastery like any other evidence) and
// optionally annotated with mentor prose.
type InterviewService struct {
	Sessions   *repository.InterviewRepository
	Problems   *repository.ProblemRepository
	Mastery    *MasteryService
	Classifier *ClassifierService
	Mentor     *MentorService
}

func NewInterviewService(
	sessions *repository.InterviewRepository,
	problems *repository.ProblemRepository,
	mastery *MasteryService,
	classifier *ClassifierService,
	mentor *MentorService,
) *InterviewService {
	return &InterviewService{
		Sessions:   sessions,
		Problems:   problems,
		Mastery:    mastery,
		Classifier: classifier,
		Mentor:     mentor,
	}
}

type StartInterviewRequest struct {
	TopicID string `json:"topicId"`
}

type InterviewSubmission struct {
	ProblemID          string `json:"problemId" binding:"required"`
	Outcome            string `json:"outcome" binding:"required"`
	TimeToSolveMinutes *int   `json:"timeToSolveMinutes"`
}

// Start opens a session, optionally pinned to one topic.
func (s *InterviewService) Start(userID uint, req StartInterviewRequest) (*model.InterviewSession, error) {
	if req.TopicID != "" && !s.Mastery.Taxonomy.Has(req.TopicID) {
		return nil, fmt.Errorf("%w: topic %q", util.ErrTopicNotFound, req.TopicID)
	}
	session := &model.InterviewSession{
		SessionID: uuid.New().String(),
		UserID:    userID,
		TopicID:   req.TopicID,
		Status:    model.InterviewActive,
		StartedAt: time.Now(),
	}
	if err := s.Sessions.Create(session); err != nil {
		return nil, err
	}
	return session, nil
}

// Submit grades one answer inside a session. The attempt flows into the
// evidence log; oracle prose is best-effort.
func (s *InterviewService) Submit(ctx context.Context, userID uint, sessionID string, sub InterviewSubmission) (*model.InterviewFeedback, error) {
	session, err := s.findOwned(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.InterviewActive {
		return nil, util.ErrSessionFinished
	}

	problem, err := s.Problems.FindByID(sub.ProblemID)
	if err == gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("%w: problem %q", util.ErrProblemNotFound, sub.ProblemID)
	}
	if err != nil {
		return nil, err
	}

	sid := session.SessionID
	pm, err := s.Mastery.IngestAttempt(ctx, userID, AttemptRequest{
		ProblemID:          sub.ProblemID,
		Outcome:            sub.Outcome,
		TimeToSolveMinutes: sub.TimeToSolveMinutes,
		SessionID:          &sid,
	})
	if err != nil {
		return nil, err
	}

	session.Questions++
	if pm.FirstSolvedAt != nil {
		outcome := model.AttemptOutcome(sub.Outcome)
		if outcome == model.OutcomeSolved || outcome == model.OutcomeOptimal {
			session.Solved++
		}
	}
	if err := s.Sessions.Update(session); err != nil {
		return nil, err
	}

	classified := s.Classifier.Classify(RawEvidence{
		Title:              problem.Title,
		SourceTags:         splitTags(problem.SourceTags),
		ExternalDifficulty: problem.ExternalDifficulty,
		SourceSite:         problem.SourceSite,
	})

	feedback := &model.InterviewFeedback{
		ProblemID:    problem.ProblemID,
		TopicID:      classified.TopicID,
		Severity:     classified.Severity,
		MasteryLevel: pm.MasteryLevel,
	}

	prose, err := s.Mentor.ProblemFeedback(ctx, problem, pm)
	if err == nil {
		feedback.FeedbackText = prose
		feedback.OracleOK = true
	} else if !errors.Is(err, util.ErrOracleUnavailable) {
		return nil, err
	}
	return feedback, nil
}

// Finish closes a session.
func (s *InterviewService) Finish(userID uint, sessionID string) (*model.InterviewSession, error) {
	session, err := s.findOwned(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == model.InterviewFinished {
		return session, nil
	}
	now := time.Now()
	session.Status = model.InterviewFinished
	session.FinishedAt = &now
	if err := s.Sessions.Update(session); err != nil {
		return nil, err
	}
	return session, nil
}

// History lists the user's recent sessions, newest first.
func (s *InterviewService) History(userID uint, limit int) ([]model.InterviewSession, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.Sessions.ListForUser(userID, limit)
}

func (s *InterviewService) findOwned(userID uint, sessionID string) (*model.InterviewSession, error) {
	session, err := s.Sessions.FindBySessionID(sessionID)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, util.ErrSessionNotFound
	}
	return session, nil
}
