package service

import (
	"context"
	"testing"
	"time"

	"maang_tracker_backend/internal/model"
	"maang_tracker_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }
func intPtr(n int) *int    { return &n }

func ingestSolve(t *testing.T, env *testEnv, userID uint, problemID, outcome string, minutes *int) *model.ProblemMastery {
	t.Helper()
	pm, err := env.Masteries.IngestAttempt(context.Background(), userID, AttemptRequest{
		ProblemID:          problemID,
		Outcome:            outcome,
		TimeToSolveMinutes: minutes,
	})
	require.NoError(t, err)
	return pm
}

func ingestFollowUp(t *testing.T, env *testEnv, userID uint, problemID string, correct bool) *model.ProblemMastery {
	t.Helper()
	pm, err := env.Masteries.IngestFollowUp(context.Background(), userID, FollowUpRequest{
		ProblemID: problemID,
		Correct:   boolPtr(correct),
	})
	require.NoError(t, err)
	return pm
}

func TestFirstSolve(t *testing.T) {
	env := newTestEnv(t)

	pm := ingestSolve(t, env, 1, "two-sum", "solved", intPtr(12))

	assert.Equal(t, 1, pm.Attempts)
	assert.Equal(t, model.MasterySolved, pm.MasteryLevel)
	assert.Equal(t, "arrays", pm.TopicID)
	require.NotNil(t, pm.FirstSolvedAt)
	require.NotNil(t, pm.BestTimeMinutes)
	assert.Equal(t, 12, *pm.BestTimeMinutes)

	tc, err := env.Mastery.FindTopicCoverage(1, "arrays")
	require.NoError(t, err)
	assert.Equal(t, 1, tc.ProblemsSolved)
	assert.Equal(t, 0, tc.MasteredL2)

	profile := env.Weakness.Rank([]model.TopicCoverage{*tc})
	var arrays *model.TopicWeakness
	for i := range profile {
		if profile[i].TopicID == "arrays" {
			arrays = &profile[i]
			break
		}
	}
	require.NotNil(t, arrays)
	assert.InDelta(t, 5.0, arrays.CoveragePct, 0.01)
	assert.Equal(t, 100.0, arrays.Score)
	assert.Equal(t, model.PriorityCritical, arrays.Priority)
}

func TestMasteryPromotionChain(t *testing.T) {
	env := newTestEnv(t)

	pm := ingestSolve(t, env, 1, "two-sum", "solved", intPtr(12))
	assert.Equal(t, model.MasterySolved, pm.MasteryLevel)

	pm = ingestSolve(t, env, 1, "two-sum", "optimal", intPtr(8))
	assert.Equal(t, model.MasteryRepeated, pm.MasteryLevel)
	assert.True(t, pm.OptimalEver)
	assert.Equal(t, 8, *pm.BestTimeMinutes)

	pm = ingestFollowUp(t, env, 1, "two-sum", true)
	assert.Equal(t, model.MasteryRepeated, pm.MasteryLevel)
	assert.Equal(t, 1, pm.VerifyCount)

	pm = ingestFollowUp(t, env, 1, "two-sum", true)
	assert.Equal(t, model.MasteryVerified, pm.MasteryLevel)
	assert.True(t, env.Verifier.IsVerified(pm))
}

func TestOptimalFirstAttemptReachesLevelTwo(t *testing.T) {
	env := newTestEnv(t)

	pm := ingestSolve(t, env, 1, "two-sum", "optimal", nil)
	assert.Equal(t, 1, pm.Attempts)
	assert.Equal(t, model.MasteryRepeated, pm.MasteryLevel)
}

func TestFollowUpsBeforeLevelTwoDoNotVerify(t *testing.T) {
	env := newTestEnv(t)

	pm := ingestSolve(t, env, 1, "two-sum", "solved", nil)
	assert.Equal(t, model.MasterySolved, pm.MasteryLevel)

	// correct answers at level 1 count for analytics only
	pm = ingestFollowUp(t, env, 1, "two-sum", true)
	pm = ingestFollowUp(t, env, 1, "two-sum", true)
	assert.Equal(t, model.MasterySolved, pm.MasteryLevel)
	assert.Equal(t, 2, pm.FollowUpsCorrect)
	assert.Equal(t, 0, pm.VerifyCount)

	pm = ingestSolve(t, env, 1, "two-sum", "solved", nil)
	assert.Equal(t, model.MasteryRepeated, pm.MasteryLevel)

	pm = ingestFollowUp(t, env, 1, "two-sum", true)
	assert.Equal(t, 1, pm.VerifyCount)
	assert.Equal(t, model.MasteryRepeated, pm.MasteryLevel)

	pm = ingestFollowUp(t, env, 1, "two-sum", true)
	assert.Equal(t, model.MasteryVerified, pm.MasteryLevel)
}

func TestWrongFollowUpsNeverRegress(t *testing.T) {
	env := newTestEnv(t)

	ingestSolve(t, env, 1, "two-sum", "optimal", nil)
	pm := ingestFollowUp(t, env, 1, "two-sum", false)
	assert.Equal(t, model.MasteryRepeated, pm.MasteryLevel)
	assert.Equal(t, 1, pm.FollowUpsWrong)
	assert.Equal(t, 0, pm.VerifyCount)
}

func TestAttemptCountMatchesEventLog(t *testing.T) {
	env := newTestEnv(t)

	ingestSolve(t, env, 1, "two-sum", "attempted", nil)
	ingestSolve(t, env, 1, "two-sum", "attempted", nil)
	pm := ingestSolve(t, env, 1, "two-sum", "solved", intPtr(30))

	assert.Equal(t, 3, pm.Attempts)
	count, err := env.Events.CountForProblem(1, "two-sum", model.EventAttempt)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	// solved on the third try: two prior attempts already accumulated
	assert.Equal(t, model.MasteryRepeated, pm.MasteryLevel)
}

func TestIngestValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.Masteries.IngestAttempt(ctx, 1, AttemptRequest{ProblemID: "no-such-problem", Outcome: "solved"})
	assert.ErrorIs(t, err, util.ErrProblemNotFound)

	_, err = env.Masteries.IngestAttempt(ctx, 1, AttemptRequest{ProblemID: "two-sum", Outcome: "aced"})
	assert.ErrorIs(t, err, util.ErrValidation)

	future := time.Now().Add(time.Hour)
	_, err = env.Masteries.IngestAttempt(ctx, 1, AttemptRequest{ProblemID: "two-sum", Outcome: "solved", Timestamp: &future})
	assert.ErrorIs(t, err, util.ErrValidation)

	_, err = env.Masteries.IngestStudy(ctx, 1, StudyRequest{TopicID: "arrays", Minutes: -5})
	assert.ErrorIs(t, err, util.ErrValidation)

	_, err = env.Masteries.IngestAttempt(ctx, 1, AttemptRequest{ProblemID: "two-sum", Outcome: "solved", TimeToSolveMinutes: intPtr(-1)})
	assert.ErrorIs(t, err, util.ErrValidation)

	_, err = env.Masteries.IngestStudy(ctx, 1, StudyRequest{TopicID: "no-such-topic", Minutes: 30})
	assert.ErrorIs(t, err, util.ErrTopicNotFound)
}

func TestZeroDurationsAccepted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pm := ingestSolve(t, env, 1, "two-sum", "solved", intPtr(0))
	require.NotNil(t, pm.BestTimeMinutes)
	assert.Equal(t, 0, *pm.BestTimeMinutes)

	tc, err := env.Masteries.IngestStudy(ctx, 1, StudyRequest{TopicID: "graphs", Minutes: 0})
	require.NoError(t, err)
	assert.Equal(t, 0, tc.StudyMinutes)
}

func TestBestTimeUpdatesOnAnyAttempt(t *testing.T) {
	env := newTestEnv(t)

	pm := ingestSolve(t, env, 1, "two-sum", "solved", intPtr(20))
	require.NotNil(t, pm.BestTimeMinutes)
	assert.Equal(t, 20, *pm.BestTimeMinutes)

	// a faster unsolved attempt still improves the best time
	pm = ingestSolve(t, env, 1, "two-sum", "attempted", intPtr(8))
	require.NotNil(t, pm.BestTimeMinutes)
	assert.Equal(t, 8, *pm.BestTimeMinutes)

	// slower times never overwrite
	pm = ingestSolve(t, env, 1, "two-sum", "solved", intPtr(15))
	assert.Equal(t, 8, *pm.BestTimeMinutes)
}

func TestEventLogOrderedByTimestampThenInsertion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	later := base.Add(30 * time.Minute)

	_, err := env.Masteries.IngestAttempt(ctx, 1, AttemptRequest{ProblemID: "two-sum", Outcome: "attempted", Timestamp: &later})
	require.NoError(t, err)
	// backdated event arrives after the later one
	_, err = env.Masteries.IngestAttempt(ctx, 1, AttemptRequest{ProblemID: "valid-anagram", Outcome: "solved", Timestamp: &base})
	require.NoError(t, err)
	// same timestamp as the backdated event, inserted last
	_, err = env.Masteries.IngestFollowUp(ctx, 1, FollowUpRequest{ProblemID: "valid-anagram", Correct: boolPtr(true), Timestamp: &base})
	require.NoError(t, err)

	events, err := env.Masteries.EventLog(1, nil, "")
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "valid-anagram", *events[0].ProblemID)
	assert.Equal(t, model.EventAttempt, events[0].Kind)
	assert.Equal(t, model.EventFollowUp, events[1].Kind)
	assert.Equal(t, "two-sum", *events[2].ProblemID)

	sinceEvents, err := env.Masteries.EventLog(1, &later, "")
	require.NoError(t, err)
	require.Len(t, sinceEvents, 1)
	assert.Equal(t, "two-sum", *sinceEvents[0].ProblemID)

	followUps, err := env.Masteries.EventLog(1, nil, model.EventFollowUp)
	require.NoError(t, err)
	require.Len(t, followUps, 1)

	_, err = env.Masteries.EventLog(1, nil, "bogus")
	assert.ErrorIs(t, err, util.ErrValidation)
}

func TestStudyAccumulates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tc, err := env.Masteries.IngestStudy(ctx, 1, StudyRequest{TopicID: "graphs", Minutes: 25})
	require.NoError(t, err)
	assert.Equal(t, 25, tc.StudyMinutes)

	tc, err = env.Masteries.IngestStudy(ctx, 1, StudyRequest{TopicID: "graphs", Minutes: 35})
	require.NoError(t, err)
	assert.Equal(t, 60, tc.StudyMinutes)
}

func TestSnapshotVersionAdvances(t *testing.T) {
	env := newTestEnv(t)

	ingestSolve(t, env, 1, "two-sum", "solved", nil)
	snap1, err := env.Mastery.FindSnapshot(1)
	require.NoError(t, err)

	ingestFollowUp(t, env, 1, "two-sum", true)
	snap2, err := env.Mastery.FindSnapshot(1)
	require.NoError(t, err)

	assert.Greater(t, snap2.Version, snap1.Version)
	assert.Greater(t, snap2.LastEventID, snap1.LastEventID)
}

// derivedState is the semantic content of the derived rows, stripped of
// database bookkeeping, for replay comparisons.
type derivedState struct {
	masteries map[string]model.ProblemMastery
	coverage  map[string]model.TopicCoverage
}

func captureDerived(t *testing.T, env *testEnv, userID uint) derivedState {
	t.Helper()
	st := derivedState{
		masteries: map[string]model.ProblemMastery{},
		coverage:  map[string]model.TopicCoverage{},
	}
	pms, err := env.Mastery.ListProblemMasteries(userID)
	require.NoError(t, err)
	for _, pm := range pms {
		pm.BaseModel = model.BaseModel{}
		st.masteries[pm.ProblemID] = pm
	}
	tcs, err := env.Mastery.ListTopicCoverages(userID)
	require.NoError(t, err)
	for _, tc := range tcs {
		tc.BaseModel = model.BaseModel{}
		st.coverage[tc.TopicID] = tc
	}
	return st
}

func TestRebuildReproducesIncrementalState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	problems := []string{"two-sum", "two-sum", "two-sum"}
	outcomes := []string{"attempted", "solved", "optimal"}
	for i := range problems {
		ingestSolve(t, env, 1, problems[i], outcomes[i], intPtr(10+i))
	}
	ingestFollowUp(t, env, 1, "two-sum", true)
	ingestFollowUp(t, env, 1, "two-sum", false)
	ingestFollowUp(t, env, 1, "two-sum", true)
	_, err := env.Masteries.IngestStudy(ctx, 1, StudyRequest{TopicID: "arrays", Minutes: 40})
	require.NoError(t, err)

	before := captureDerived(t, env, 1)

	require.NoError(t, env.Masteries.RebuildFromLog(ctx, 1))

	after := captureDerived(t, env, 1)
	assert.Equal(t, before.masteries, after.masteries)
	assert.Equal(t, before.coverage, after.coverage)
}

func TestMasteryLevelMonotoneOverPrefix(t *testing.T) {
	env := newTestEnv(t)

	outcomes := []string{"attempted", "solved", "attempted", "optimal", "attempted"}
	prev := model.MasteryNone
	for _, outcome := range outcomes {
		pm := ingestSolve(t, env, 1, "two-sum", outcome, nil)
		assert.GreaterOrEqual(t, pm.MasteryLevel, prev)
		prev = pm.MasteryLevel
	}
}

func TestUsersIsolated(t *testing.T) {
	env := newTestEnv(t)

	ingestSolve(t, env, 1, "two-sum", "solved", nil)

	pms, err := env.Mastery.ListProblemMasteries(2)
	require.NoError(t, err)
	assert.Empty(t, pms)
}

func TestSummary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ingestSolve(t, env, 1, "two-sum", "optimal", nil)
	ingestFollowUp(t, env, 1, "two-sum", true)
	ingestFollowUp(t, env, 1, "two-sum", true)
	_, err := env.Masteries.IngestStudy(ctx, 1, StudyRequest{TopicID: "graphs", Minutes: 30})
	require.NoError(t, err)

	summary, err := env.Masteries.Summary(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.TotalProblemsSolved)
	assert.Equal(t, 1, summary.MasteryBreakdown[model.MasteryVerified])
	assert.Equal(t, 2, summary.TopicsCovered)
	assert.Nil(t, summary.StaleAsOf)
	assert.Greater(t, summary.SnapshotVersion, int64(0))
}

func TestProgressReachesHundredWhenQuotasMet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, topic := range env.Taxonomy.AllTopics() {
		quota := (env.Cfg.Learning.CoverageL3Pct*topic.CanonicalProblemCount + 99) / 100
		require.NoError(t, env.Mastery.SaveTopicCoverage(&model.TopicCoverage{
			UserID:           1,
			TopicID:          topic.TopicID,
			ProblemsSolved:   quota,
			MasteredL2:       quota,
			MasteredL3:       quota,
			ProficiencyLevel: 3,
		}))
	}

	summary, err := env.Masteries.Summary(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 100, summary.ProgressToTargetPct)
}

func TestQuarantineBlocksWritesUntilRebuild(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ingestSolve(t, env, 1, "two-sum", "solved", nil)
	ingestSolve(t, env, 1, "valid-anagram", "optimal", nil)

	snap, err := env.Mastery.FindSnapshot(1)
	require.NoError(t, err)
	snap.Poisoned = true
	require.NoError(t, env.Mastery.SaveSnapshot(snap))

	_, err = env.Masteries.IngestAttempt(ctx, 1, AttemptRequest{
		ProblemID: "two-sum",
		Outcome:   "solved",
	})
	assert.ErrorIs(t, err, util.ErrUserQuarantined)

	_, err = env.Masteries.IngestStudy(ctx, 1, StudyRequest{TopicID: "graphs", Minutes: 15})
	assert.ErrorIs(t, err, util.ErrUserQuarantined)

	quarantined, err := env.Masteries.Quarantined(1)
	require.NoError(t, err)
	assert.True(t, quarantined)

	require.NoError(t, env.Masteries.RebuildFromLog(ctx, 1))

	quarantined, err = env.Masteries.Quarantined(1)
	require.NoError(t, err)
	assert.False(t, quarantined)

	// rebuilt state still reflects the pre-quarantine log
	pm, err := env.Mastery.FindProblemMastery(1, "two-sum")
	require.NoError(t, err)
	assert.Equal(t, model.MasterySolved, pm.MasteryLevel)

	// and the user can write again
	pm2 := ingestSolve(t, env, 1, "two-sum", "solved", nil)
	assert.Equal(t, 2, pm2.Attempts)
}

func TestQuarantinedUserStillReadable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ingestSolve(t, env, 1, "two-sum", "solved", nil)

	snap, err := env.Mastery.FindSnapshot(1)
	require.NoError(t, err)
	snap.Poisoned = true
	require.NoError(t, env.Mastery.SaveSnapshot(snap))

	summary, err := env.Masteries.Summary(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalProblemsSolved)

	quarantined, err := env.Masteries.Quarantined(1)
	require.NoError(t, err)
	assert.True(t, quarantined)
}
