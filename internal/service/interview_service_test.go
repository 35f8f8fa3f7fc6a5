package service

import (
	"context"
	"testing"
	"time"

	"maang_tracker_backend/internal/model"
	"maang_tracker_backend/internal/repository"
	"maang_tracker_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInterviewEnv(t *testing.T) (*testEnv, *InterviewService) {
	t.Helper()
	env := newTestEnv(t)
	sessions := repository.NewInterviewRepository(env.DB)
	mentor := NewMentorService(env.Cfg) // no oracle configured, prose degrades
	svc := NewInterviewService(sessions, env.Problems, env.Masteries, env.Classifier, mentor)
	return env, svc
}

func TestInterviewLifecycle(t *testing.T) {
	env, svc := newInterviewEnv(t)
	ctx := context.Background()

	session, err := svc.Start(1, StartInterviewRequest{})
	require.NoError(t, err)
	require.NotEmpty(t, session.SessionID)
	assert.Equal(t, model.InterviewActive, session.Status)

	fb, err := svc.Submit(ctx, 1, session.SessionID, InterviewSubmission{
		ProblemID: "reverse-linked-list",
		Outcome:   "solved",
	})
	require.NoError(t, err)
	assert.Equal(t, "reverse-linked-list", fb.ProblemID)
	assert.Equal(t, "linked-list", fb.TopicID)
	assert.Equal(t, model.MasterySolved, fb.MasteryLevel)
	assert.False(t, fb.OracleOK)
	assert.Empty(t, fb.FeedbackText)

	// the graded attempt landed in the evidence log
	pm, err := env.Mastery.FindProblemMastery(1, "reverse-linked-list")
	require.NoError(t, err)
	assert.Equal(t, 1, pm.Attempts)

	finished, err := svc.Finish(1, session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, model.InterviewFinished, finished.Status)
	require.NotNil(t, finished.FinishedAt)
	assert.Equal(t, 1, finished.Questions)
	assert.Equal(t, 1, finished.Solved)

	_, err = svc.Submit(ctx, 1, session.SessionID, InterviewSubmission{
		ProblemID: "reverse-linked-list",
		Outcome:   "solved",
	})
	assert.ErrorIs(t, err, util.ErrSessionFinished)
}

func TestInterviewTopicPinValidated(t *testing.T) {
	_, svc := newInterviewEnv(t)

	_, err := svc.Start(1, StartInterviewRequest{TopicID: "no-such-topic"})
	assert.ErrorIs(t, err, util.ErrTopicNotFound)

	session, err := svc.Start(1, StartInterviewRequest{TopicID: "graphs"})
	require.NoError(t, err)
	assert.Equal(t, "graphs", session.TopicID)
}

func TestInterviewSessionOwnership(t *testing.T) {
	_, svc := newInterviewEnv(t)
	ctx := context.Background()

	session, err := svc.Start(1, StartInterviewRequest{})
	require.NoError(t, err)

	_, err = svc.Submit(ctx, 2, session.SessionID, InterviewSubmission{
		ProblemID: "two-sum",
		Outcome:   "solved",
	})
	assert.ErrorIs(t, err, util.ErrSessionNotFound)

	_, err = svc.Finish(2, session.SessionID)
	assert.ErrorIs(t, err, util.ErrSessionNotFound)
}

func TestInterviewUnknownProblem(t *testing.T) {
	_, svc := newInterviewEnv(t)
	ctx := context.Background()

	session, err := svc.Start(1, StartInterviewRequest{})
	require.NoError(t, err)

	_, err = svc.Submit(ctx, 1, session.SessionID, InterviewSubmission{
		ProblemID: "nonexistent",
		Outcome:   "solved",
	})
	assert.ErrorIs(t, err, util.ErrProblemNotFound)
}

func TestInterviewHistoryNewestFirst(t *testing.T) {
	_, svc := newInterviewEnv(t)

	first, err := svc.Start(1, StartInterviewRequest{})
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	second, err := svc.Start(1, StartInterviewRequest{})
	require.NoError(t, err)

	history, err := svc.History(1, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.SessionID, history[0].SessionID)
	assert.Equal(t, first.SessionID, history[1].SessionID)
}
