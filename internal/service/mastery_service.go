package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"maang_tracker_backend/internal/config"
	"maang_tracker_backend/internal/model"
	"maang_tracker_backend/internal/repository"
	"maang_tracker_backend/internal/util"
	"maang_tracker_backend/pkg/logger"
	"maang_tracker_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	summaryCacheTTL = 5 * time.Minute
	// tolerated clock skew for client-supplied event timestamps
	maxFutureSkew = time.Minute
)

// MasteryService maintains the per-user mastery state as a fold over the
// append-only event log. Every ingest appends one event, bumps the snapshot
// version and recomputes incrementally from the snapshot cursor, all under
// the user's lock. Derived rows are disposable; RebuildFromLog reproduces
// them from the events alone.
type MasteryService struct {
	Events   *repository.EventRepository
	Mastery  *repository.MasteryRepository
	Problems *repository.ProblemRepository
	Taxonomy *TaxonomyService
	Verifier *VerifierService
	Locks    *UserLockRegistry
	Redis    *redis.Client
	Notifier *NotifierService
	Cfg      *config.Config
}

func NewMasteryService(
	events *repository.EventRepository,
	mastery *repository.MasteryRepository,
	problems *repository.ProblemRepository,
	taxonomy *TaxonomyService,
	verifier *VerifierService,
	locks *UserLockRegistry,
	rdb *redis.Client,
	notifier *NotifierService,
	cfg *config.Config,
) *MasteryService {
	return &MasteryService{
		Events:   events,
		Mastery:  mastery,
		Problems: problems,
		Taxonomy: taxonomy,
		Verifier: verifier,
		Locks:    locks,
		Redis:    rdb,
		Notifier: notifier,
		Cfg:      cfg,
	}
}

type AttemptRequest struct {
	ProblemID          string     `json:"problemId" binding:"required"`
	Outcome            string     `json:"outcome" binding:"required"`
	Timestamp          *time.Time `json:"timestamp"`
	TimeToSolveMinutes *int       `json:"timeToSolveMinutes"`
	SessionID          *string    `json:"sessionId"`
}

type FollowUpRequest struct {
	ProblemID string     `json:"problemId" binding:"required"`
	Correct   *bool      `json:"correct" binding:"required"`
	Timestamp *time.Time `json:"timestamp"`
}

type StudyRequest struct {
	TopicID   string     `json:"topicId" binding:"required"`
	Minutes   int        `json:"minutes"`
	Timestamp *time.Time `json:"timestamp"`
}

func (s *MasteryService) lockWait() time.Duration {
	secs := s.Cfg.Learning.LockWaitSeconds
	if secs <= 0 {
		secs = 5
	}
	return time.Duration(secs) * time.Second
}

func resolveTimestamp(ts *time.Time) (time.Time, error) {
	now := time.Now()
	if ts == nil {
		return now, nil
	}
	if ts.After(now.Add(maxFutureSkew)) {
		return time.Time{}, fmt.Errorf("%w: timestamp is in the future", util.ErrValidation)
	}
	return *ts, nil
}

// IngestAttempt validates, appends and folds one attempt event. Returns the
// updated mastery record for the problem.
func (s *MasteryService) IngestAttempt(ctx context.Context, userID uint, req AttemptRequest) (*model.ProblemMastery, error) {
	outcome := model.AttemptOutcome(req.Outcome)
	switch outcome {
	case model.OutcomeAttempted, model.OutcomeSolved, model.OutcomeOptimal:
	default:
		monitoring.EventsRejected.WithLabelValues("bad_outcome").Inc()
		return nil, fmt.Errorf("%w: unknown outcome %q", util.ErrValidation, req.Outcome)
	}
	if req.TimeToSolveMinutes != nil && *req.TimeToSolveMinutes < 0 {
		monitoring.EventsRejected.WithLabelValues("bad_duration").Inc()
		return nil, fmt.Errorf("%w: timeToSolveMinutes must not be negative", util.ErrValidation)
	}
	ts, err := resolveTimestamp(req.Timestamp)
	if err != nil {
		monitoring.EventsRejected.WithLabelValues("future_timestamp").Inc()
		return nil, err
	}
	ok, err := s.Problems.Exists(req.ProblemID)
	if err != nil {
		return nil, err
	}
	if !ok {
		monitoring.EventsRejected.WithLabelValues("unknown_problem").Inc()
		return nil, fmt.Errorf("%w: problem %q", util.ErrProblemNotFound, req.ProblemID)
	}

	ev := model.AttemptEvent{
		UserID:             userID,
		ProblemID:          req.ProblemID,
		Timestamp:          ts,
		Outcome:            outcome,
		TimeToSolveMinutes: req.TimeToSolveMinutes,
		SessionID:          req.SessionID,
	}.Row()
	if err := s.appendAndFold(ctx, userID, &ev); err != nil {
		return nil, err
	}
	monitoring.EventsIngested.WithLabelValues(string(model.EventAttempt)).Inc()

	pm, err := s.Mastery.FindProblemMastery(userID, req.ProblemID)
	if err != nil {
		return nil, err
	}
	return pm, nil
}

// IngestFollowUp records one follow-up answer against a problem.
func (s *MasteryService) IngestFollowUp(ctx context.Context, userID uint, req FollowUpRequest) (*model.ProblemMastery, error) {
	if req.Correct == nil {
		monitoring.EventsRejected.WithLabelValues("missing_correct").Inc()
		return nil, fmt.Errorf("%w: correct is required", util.ErrValidation)
	}
	ts, err := resolveTimestamp(req.Timestamp)
	if err != nil {
		monitoring.EventsRejected.WithLabelValues("future_timestamp").Inc()
		return nil, err
	}
	ok, err := s.Problems.Exists(req.ProblemID)
	if err != nil {
		return nil, err
	}
	if !ok {
		monitoring.EventsRejected.WithLabelValues("unknown_problem").Inc()
		return nil, fmt.Errorf("%w: problem %q", util.ErrProblemNotFound, req.ProblemID)
	}

	ev := model.FollowUpEvent{
		UserID:    userID,
		ProblemID: req.ProblemID,
		Timestamp: ts,
		Correct:   *req.Correct,
	}.Row()
	if err := s.appendAndFold(ctx, userID, &ev); err != nil {
		return nil, err
	}
	monitoring.EventsIngested.WithLabelValues(string(model.EventFollowUp)).Inc()

	pm, err := s.Mastery.FindProblemMastery(userID, req.ProblemID)
	if err != nil {
		return nil, err
	}
	return pm, nil
}

// IngestStudy records topic study time.
func (s *MasteryService) IngestStudy(ctx context.Context, userID uint, req StudyRequest) (*model.TopicCoverage, error) {
	if req.Minutes < 0 {
		monitoring.EventsRejected.WithLabelValues("bad_duration").Inc()
		return nil, fmt.Errorf("%w: minutes must not be negative", util.ErrValidation)
	}
	if !s.Taxonomy.Has(req.TopicID) {
		monitoring.EventsRejected.WithLabelValues("unknown_topic").Inc()
		return nil, fmt.Errorf("%w: topic %q", util.ErrTopicNotFound, req.TopicID)
	}
	ts, err := resolveTimestamp(req.Timestamp)
	if err != nil {
		monitoring.EventsRejected.WithLabelValues("future_timestamp").Inc()
		return nil, err
	}

	ev := model.StudyEvent{
		UserID:    userID,
		TopicID:   req.TopicID,
		Timestamp: ts,
		Minutes:   req.Minutes,
	}.Row()
	if err := s.appendAndFold(ctx, userID, &ev); err != nil {
		return nil, err
	}
	monitoring.EventsIngested.WithLabelValues(string(model.EventStudy)).Inc()

	tc, err := s.Mastery.FindTopicCoverage(userID, req.TopicID)
	if err != nil {
		return nil, err
	}
	return tc, nil
}

// appendAndFold is the single write path: lock, quarantine check, append,
// incremental recompute, version bump, cache invalidation.
func (s *MasteryService) appendAndFold(ctx context.Context, userID uint, ev *model.Event) error {
	if err := s.Locks.Acquire(userID, s.lockWait()); err != nil {
		return err
	}
	defer s.Locks.Release(userID)

	snap, err := s.Mastery.FindSnapshot(userID)
	if err != nil {
		return err
	}
	if snap.Poisoned {
		monitoring.EventsRejected.WithLabelValues("quarantined").Inc()
		return util.ErrUserQuarantined
	}

	if err := s.Events.Append(ev); err != nil {
		return err
	}

	if err := s.recomputeLocked(ctx, userID, snap); err != nil {
		return err
	}
	monitoring.Recomputes.WithLabelValues("incremental").Inc()
	return nil
}

// foldState is the in-memory derived state being recomputed.
type foldState struct {
	masteries map[string]*model.ProblemMastery
	coverage  map[string]*model.TopicCoverage
	// mastery levels at the start of the fold, for the monotonicity check
	startLevels map[string]int
	promoted    []*model.ProblemMastery
}

func (s *MasteryService) loadFoldState(userID uint) (*foldState, error) {
	st := &foldState{
		masteries:   make(map[string]*model.ProblemMastery),
		coverage:    make(map[string]*model.TopicCoverage),
		startLevels: make(map[string]int),
	}
	pms, err := s.Mastery.ListProblemMasteries(userID)
	if err != nil {
		return nil, err
	}
	for i := range pms {
		pm := pms[i]
		st.masteries[pm.ProblemID] = &pm
		st.startLevels[pm.ProblemID] = pm.MasteryLevel
	}
	tcs, err := s.Mastery.ListTopicCoverages(userID)
	if err != nil {
		return nil, err
	}
	for i := range tcs {
		tc := tcs[i]
		st.coverage[tc.TopicID] = &tc
	}
	return st, nil
}

func (st *foldState) mastery(userID uint, problemID, topicID string) *model.ProblemMastery {
	pm, ok := st.masteries[problemID]
	if !ok {
		pm = &model.ProblemMastery{UserID: userID, ProblemID: problemID, TopicID: topicID}
		st.masteries[problemID] = pm
		st.startLevels[problemID] = model.MasteryNone
	}
	return pm
}

func (st *foldState) topicCoverage(userID uint, topicID string) *model.TopicCoverage {
	tc, ok := st.coverage[topicID]
	if !ok {
		tc = &model.TopicCoverage{UserID: userID, TopicID: topicID, ProficiencyLevel: 1}
		st.coverage[topicID] = tc
	}
	return tc
}

// recomputeLocked folds every event past the snapshot cursor into the derived
// state. Caller holds the user's lock.
func (s *MasteryService) recomputeLocked(ctx context.Context, userID uint, snap *model.MasterySnapshot) error {
	events, err := s.Events.ListAfterID(userID, snap.LastEventID)
	if err != nil {
		return err
	}

	st, err := s.loadFoldState(userID)
	if err != nil {
		return err
	}

	for i := range events {
		if err := s.applyEvent(st, &events[i]); err != nil {
			return err
		}
		snap.LastEventID = events[i].ID
	}

	if err := s.checkMonotone(userID, snap, st); err != nil {
		return err
	}

	s.refreshCoverage(userID, st)

	for _, pm := range st.masteries {
		if err := s.Mastery.SaveProblemMastery(pm); err != nil {
			return err
		}
	}
	for _, tc := range st.coverage {
		if err := s.Mastery.SaveTopicCoverage(tc); err != nil {
			return err
		}
	}

	snap.Version++
	if err := s.Mastery.SaveSnapshot(snap); err != nil {
		return err
	}

	s.invalidateCache(ctx, userID)
	s.notifyPromotions(userID, st.promoted)
	return nil
}

func (s *MasteryService) applyEvent(st *foldState, ev *model.Event) error {
	switch ev.Kind {
	case model.EventAttempt:
		if ev.ProblemID == nil || ev.Outcome == nil {
			return fmt.Errorf("%w: malformed attempt event %d", util.ErrValidation, ev.ID)
		}
		topicID, err := s.topicForProblem(*ev.ProblemID)
		if err != nil {
			return err
		}
		pm := st.mastery(ev.UserID, *ev.ProblemID, topicID)
		s.applyAttempt(pm, ev)
	case model.EventFollowUp:
		if ev.ProblemID == nil || ev.Correct == nil {
			return fmt.Errorf("%w: malformed follow-up event %d", util.ErrValidation, ev.ID)
		}
		topicID, err := s.topicForProblem(*ev.ProblemID)
		if err != nil {
			return err
		}
		pm := st.mastery(ev.UserID, *ev.ProblemID, topicID)
		if s.Verifier.ApplyFollowUp(pm, *ev.Correct) {
			st.promoted = append(st.promoted, pm)
		}
	case model.EventStudy:
		if ev.TopicID == nil || ev.Minutes == nil {
			return fmt.Errorf("%w: malformed study event %d", util.ErrValidation, ev.ID)
		}
		tc := st.topicCoverage(ev.UserID, *ev.TopicID)
		tc.StudyMinutes += *ev.Minutes
	default:
		return fmt.Errorf("%w: unknown event kind %q", util.ErrValidation, ev.Kind)
	}
	return nil
}

func (s *MasteryService) topicForProblem(problemID string) (string, error) {
	p, err := s.Problems.FindByID(problemID)
	if err == gorm.ErrRecordNotFound {
		// problem was recorded and later removed from the catalog; keep the
		// evidence under the fallback topic rather than losing it
		return model.OtherTopicID, nil
	}
	if err != nil {
		return "", err
	}
	return p.TopicID, nil
}

func (s *MasteryService) applyAttempt(pm *model.ProblemMastery, ev *model.Event) {
	pm.Attempts++
	solvedNow := *ev.Outcome == model.OutcomeSolved || *ev.Outcome == model.OutcomeOptimal
	if solvedNow {
		if pm.FirstSolvedAt == nil {
			ts := ev.Timestamp
			pm.FirstSolvedAt = &ts
		}
		if *ev.Outcome == model.OutcomeOptimal {
			pm.OptimalEver = true
		}
	}
	if ev.TimeToSolveMinutes != nil {
		if pm.BestTimeMinutes == nil || *ev.TimeToSolveMinutes < *pm.BestTimeMinutes {
			v := *ev.TimeToSolveMinutes
			pm.BestTimeMinutes = &v
		}
	}
	if pm.FirstSolvedAt != nil {
		if pm.MasteryLevel < model.MasterySolved {
			pm.MasteryLevel = model.MasterySolved
		}
		if pm.MasteryLevel < model.MasteryRepeated && (pm.Attempts >= 2 || pm.OptimalEver) {
			pm.MasteryLevel = model.MasteryRepeated
		}
	}
}

// checkMonotone trips when any problem's recomputed level sits below its
// level before the fold. Levels never regress, so a drop means the snapshot
// and the log disagree; the user is quarantined until a full rebuild.
func (s *MasteryService) checkMonotone(userID uint, snap *model.MasterySnapshot, st *foldState) error {
	for pid, pm := range st.masteries {
		if pm.MasteryLevel < st.startLevels[pid] {
			monitoring.InvariantTrips.Inc()
			snap.Poisoned = true
			if err := s.Mastery.SaveSnapshot(snap); err != nil {
				logger.Log.Error("failed to persist quarantine flag",
					zap.Uint("userId", userID), zap.Error(err))
			}
			if s.Notifier != nil {
				s.Notifier.UserQuarantined(userID)
			}
			logger.Log.Error("mastery level regressed during recompute",
				zap.Uint("userId", userID),
				zap.String("problemId", pid),
				zap.Int("was", st.startLevels[pid]),
				zap.Int("computed", pm.MasteryLevel))
			return fmt.Errorf("%w: problem %s level %d -> %d",
				util.ErrInvariantViolation, pid, st.startLevels[pid], pm.MasteryLevel)
		}
	}
	return nil
}

// refreshCoverage rebuilds the per-topic aggregates from the problem
// masteries in the fold state. Study minutes are already accumulated there.
func (s *MasteryService) refreshCoverage(userID uint, st *foldState) {
	type agg struct{ solved, l2, l3 int }
	byTopic := make(map[string]agg)
	for _, pm := range st.masteries {
		a := byTopic[pm.TopicID]
		if pm.MasteryLevel >= model.MasterySolved {
			a.solved++
		}
		if pm.MasteryLevel >= model.MasteryRepeated {
			a.l2++
		}
		if pm.MasteryLevel >= model.MasteryVerified {
			a.l3++
		}
		byTopic[pm.TopicID] = a
	}

	for topicID, a := range byTopic {
		tc := st.topicCoverage(userID, topicID)
		tc.ProblemsSolved = a.solved
		tc.MasteredL2 = a.l2
		tc.MasteredL3 = a.l3
		tc.ProficiencyLevel = s.proficiency(topicID, a.l2, a.l3)
	}
	// study-only topics still get a proficiency recomputed from zero solves
	for topicID, tc := range st.coverage {
		if _, ok := byTopic[topicID]; !ok {
			tc.ProficiencyLevel = s.proficiency(topicID, tc.MasteredL2, tc.MasteredL3)
		}
	}
}

// proficiency maps coverage onto the 1..3 scale used by the roadmap and the
// weakness analyzer. Thresholds are percentages of the topic's canonical
// problem count.
func (s *MasteryService) proficiency(topicID string, l2, l3 int) int {
	topic, err := s.Taxonomy.Topic(topicID)
	if err != nil || topic.CanonicalProblemCount <= 0 {
		return 1
	}
	canonical := topic.CanonicalProblemCount
	level := 1
	if l2*100 >= s.Cfg.Learning.CoverageL2Pct*canonical {
		level = 2
	}
	if l3*100 >= s.Cfg.Learning.CoverageL3Pct*canonical {
		level = 3
	}
	return level
}

// Recompute folds any events past the snapshot cursor. A no-op when the
// snapshot is already current.
func (s *MasteryService) Recompute(ctx context.Context, userID uint) error {
	if err := s.Locks.Acquire(userID, s.lockWait()); err != nil {
		return err
	}
	defer s.Locks.Release(userID)

	snap, err := s.Mastery.FindSnapshot(userID)
	if err != nil {
		return err
	}
	if snap.Poisoned {
		return util.ErrUserQuarantined
	}
	if err := s.recomputeLocked(ctx, userID, snap); err != nil {
		return err
	}
	monitoring.Recomputes.WithLabelValues("incremental").Inc()
	return nil
}

// RebuildFromLog wipes all derived rows and replays the full event log. This
// is the only way out of quarantine.
func (s *MasteryService) RebuildFromLog(ctx context.Context, userID uint) error {
	if err := s.Locks.Acquire(userID, s.lockWait()); err != nil {
		return err
	}
	defer s.Locks.Release(userID)

	snap, err := s.Mastery.FindSnapshot(userID)
	if err != nil {
		return err
	}
	version := snap.Version

	if err := s.Mastery.WipeDerived(userID); err != nil {
		return err
	}

	fresh := &model.MasterySnapshot{UserID: userID, Version: version}
	if err := s.recomputeLocked(ctx, userID, fresh); err != nil {
		return err
	}
	monitoring.Recomputes.WithLabelValues("rebuild").Inc()
	logger.Log.Info("rebuilt mastery state from event log",
		zap.Uint("userId", userID), zap.Int64("version", fresh.Version))
	return nil
}

// EventLog returns the user's raw evidence in (timestamp, id) order,
// optionally filtered by kind and a lower timestamp bound.
func (s *MasteryService) EventLog(userID uint, since *time.Time, kind model.EventKind) ([]model.Event, error) {
	switch kind {
	case "", model.EventAttempt, model.EventFollowUp, model.EventStudy:
	default:
		return nil, fmt.Errorf("%w: unknown event kind %q", util.ErrValidation, kind)
	}
	return s.Events.ListForUser(userID, since, kind)
}

// ProblemMasteries returns the user's per-problem records.
func (s *MasteryService) ProblemMasteries(userID uint) ([]model.ProblemMastery, error) {
	return s.Mastery.ListProblemMasteries(userID)
}

// TopicCoverages returns the user's per-topic aggregates.
func (s *MasteryService) TopicCoverages(userID uint) ([]model.TopicCoverage, error) {
	return s.Mastery.ListTopicCoverages(userID)
}

func summaryCacheKey(userID uint) string {
	return fmt.Sprintf("alc:summary:%d", userID)
}

func weaknessCacheKey(userID uint) string {
	return fmt.Sprintf("alc:weakness:%d", userID)
}

func roadmapCacheKey(userID uint) string {
	return fmt.Sprintf("alc:roadmap:%d", userID)
}

func (s *MasteryService) invalidateCache(ctx context.Context, userID uint) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx,
		summaryCacheKey(userID),
		weaknessCacheKey(userID),
		roadmapCacheKey(userID),
	).Err(); err != nil && err != redis.Nil {
		logger.Log.Warn("cache invalidation failed", zap.Uint("userId", userID), zap.Error(err))
	}
}

func (s *MasteryService) notifyPromotions(userID uint, promoted []*model.ProblemMastery) {
	if s.Notifier == nil {
		return
	}
	for _, pm := range promoted {
		s.Notifier.MasteryVerified(userID, pm.ProblemID, pm.TopicID)
	}
}

// Summary aggregates the user's derived state. Served from Redis when warm.
func (s *MasteryService) Summary(ctx context.Context, userID uint) (*model.UserSummary, error) {
	if s.Redis != nil {
		if raw, err := s.Redis.Get(ctx, summaryCacheKey(userID)).Result(); err == nil {
			var cached model.UserSummary
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return &cached, nil
			}
		}
	}

	pms, err := s.Mastery.ListProblemMasteries(userID)
	if err != nil {
		return nil, err
	}
	tcs, err := s.Mastery.ListTopicCoverages(userID)
	if err != nil {
		return nil, err
	}
	snap, err := s.Mastery.FindSnapshot(userID)
	if err != nil {
		return nil, err
	}

	summary := &model.UserSummary{
		MasteryBreakdown: map[int]int{0: 0, 1: 0, 2: 0, 3: 0},
		SnapshotVersion:  snap.Version,
	}
	for i := range pms {
		summary.MasteryBreakdown[pms[i].MasteryLevel]++
		if pms[i].MasteryLevel >= model.MasterySolved {
			summary.TotalProblemsSolved++
		}
	}
	for i := range tcs {
		if tcs[i].ProblemsSolved > 0 || tcs[i].StudyMinutes > 0 {
			summary.TopicsCovered++
		}
	}
	summary.ProgressToTargetPct = s.progressToTarget(tcs)
	if target := s.Cfg.Learning.TargetTime(); !target.IsZero() {
		summary.TargetDate = &target
	}

	latest, err := s.Events.LatestID(userID)
	if err == nil && latest > snap.LastEventID {
		now := time.Now()
		summary.StaleAsOf = &now
	}

	if s.Redis != nil {
		if raw, err := json.Marshal(summary); err == nil {
			s.Redis.Set(ctx, summaryCacheKey(userID), raw, summaryCacheTTL)
		}
	}
	return summary, nil
}

// progressToTarget measures preparation as level-3 problems against each
// topic's verification quota. 100 means every topic meets its quota.
func (s *MasteryService) progressToTarget(tcs []model.TopicCoverage) int {
	byTopic := make(map[string]model.TopicCoverage, len(tcs))
	for i := range tcs {
		byTopic[tcs[i].TopicID] = tcs[i]
	}

	var achieved, quota int
	for _, topic := range s.Taxonomy.AllTopics() {
		if topic.CanonicalProblemCount <= 0 {
			continue
		}
		q := (s.Cfg.Learning.CoverageL3Pct*topic.CanonicalProblemCount + 99) / 100
		if q <= 0 {
			continue
		}
		quota += q
		got := byTopic[topic.TopicID].MasteredL3
		if got > q {
			got = q
		}
		achieved += got
	}
	if quota == 0 {
		return 0
	}
	return achieved * 100 / quota
}

// TopicProficiency returns the 1..3 proficiency for one topic, 1 when the
// topic has no coverage row yet.
func (s *MasteryService) TopicProficiency(userID uint, topicID string) (int, error) {
	tc, err := s.Mastery.FindTopicCoverage(userID, topicID)
	if err == gorm.ErrRecordNotFound {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return tc.ProficiencyLevel, nil
}

// Quarantined reports whether writes are refused pending a rebuild.
func (s *MasteryService) Quarantined(userID uint) (bool, error) {
	snap, err := s.Mastery.FindSnapshot(userID)
	if err != nil {
		return false, err
	}
	return snap.Poisoned, nil
}
