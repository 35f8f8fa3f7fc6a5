package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"maang_tracker_backend/internal/config"
	"maang_tracker_backend/internal/model"
	"maang_tracker_backend/internal/repository"
	"maang_tracker_backend/internal/util"
	"maang_tracker_backend/pkg/monitoring"

	"gorm.io/gorm"
)

// DailyTaskService emits 2-3 adaptive tasks per user per calendar day,
// weakest topics first. Selection is deterministic per (user, date): repeat
// calls within a day return the persisted list unchanged until a completion
// or the day rolls over.
type DailyTaskService struct {
	Tasks    *repository.DailyTaskRepository
	Problems *repository.ProblemRepository
	Mastery  *repository.MasteryRepository
	Users    *repository.UserRepository
	Weakness *WeaknessService
	Verifier *VerifierService
	Notifier *NotifierService
	Cfg      *config.Config
}

func NewDailyTaskService(
	tasks *repository.DailyTaskRepository,
	problems *repository.ProblemRepository,
	mastery *repository.MasteryRepository,
	users *repository.UserRepository,
	weakness *WeaknessService,
	verifier *VerifierService,
	notifier *NotifierService,
	cfg *config.Config,
) *DailyTaskService {
	return &DailyTaskService{
		Tasks:    tasks,
		Problems: problems,
		Mastery:  mastery,
		Users:    users,
		Weakness: weakness,
		Verifier: verifier,
		Notifier: notifier,
		Cfg:      cfg,
	}
}

// DayString normalizes a point in time to the user's calendar day. The
// profile timezone wins; unset or invalid values fall back to the learning
// config timezone.
func (s *DailyTaskService) DayString(userID uint, t time.Time) string {
	loc := s.Cfg.Learning.Location()
	if user, err := s.Users.FindByID(userID); err == nil && user.Timezone != "" {
		if l, err := time.LoadLocation(user.Timezone); err == nil {
			loc = l
		}
	}
	return t.In(loc).Format("2006-01-02")
}

// TasksForDay returns the day's list, selecting and persisting new tasks
// when fewer than the minimum remain uncompleted.
func (s *DailyTaskService) TasksForDay(ctx context.Context, userID uint, date string) (*model.DailyTaskList, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", util.ErrValidation)
	}

	existing, err := s.Tasks.ListForDay(userID, date)
	if err != nil {
		return nil, err
	}
	uncompleted := 0
	for i := range existing {
		if !existing[i].Completed {
			uncompleted++
		}
	}
	if uncompleted >= s.Cfg.Learning.DailyMin {
		return &model.DailyTaskList{Date: date, Tasks: existing}, nil
	}

	picks, allMastered, err := s.selectTasks(ctx, userID, date, existing)
	if err != nil {
		return nil, err
	}
	for i := range picks {
		if err := s.Tasks.Create(&picks[i]); err != nil {
			return nil, err
		}
		monitoring.DailyTasksEmitted.Inc()
	}

	tasks, err := s.Tasks.ListForDay(userID, date)
	if err != nil {
		return nil, err
	}
	return &model.DailyTaskList{
		Date:        date,
		Tasks:       tasks,
		AllMastered: allMastered && len(tasks) == 0,
	}, nil
}

// selectTasks walks the weakness ranking and picks each topic's next
// unmastered problem, easiest first, until the daily cap. When one pass
// leaves the list under the minimum, further passes take additional problems
// from the same topics.
func (s *DailyTaskService) selectTasks(ctx context.Context, userID uint, date string, existing []model.DailyTask) ([]model.DailyTask, bool, error) {
	profile, err := s.Weakness.Profile(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	levels, err := s.masteryLevels(userID)
	if err != nil {
		return nil, false, err
	}

	selected := make(map[string]bool, len(existing))
	for i := range existing {
		selected[existing[i].ProblemID] = true
	}

	budget := s.Cfg.Learning.DailyMax - len(existing)
	if budget <= 0 {
		return nil, false, nil
	}

	var picks []model.DailyTask
	position := len(existing)
	anyCandidate := false
	for pass := 0; len(picks) < budget; pass++ {
		picked := false
		for _, tw := range profile {
			if len(picks) >= budget {
				break
			}
			problem, ok, err := s.nextUnmastered(tw.TopicID, levels, selected)
			if err != nil {
				return nil, false, err
			}
			if !ok {
				continue
			}
			anyCandidate = true
			selected[problem.ProblemID] = true
			picks = append(picks, model.DailyTask{
				UserID:    userID,
				TaskDate:  date,
				ProblemID: problem.ProblemID,
				TopicID:   problem.TopicID,
				Reason:    fmt.Sprintf("weak area: %s (proficiency %d)", tw.TopicID, tw.Proficiency),
				Position:  position,
			})
			position++
			picked = true
		}
		if !picked {
			break
		}
	}

	allMastered := !anyCandidate && len(existing) == 0
	return picks, allMastered, nil
}

// nextUnmastered returns the topic's easiest problem below level 3 that is
// not already selected today. Problems with no recorded attempts count as
// level 0.
func (s *DailyTaskService) nextUnmastered(topicID string, levels map[string]int, selected map[string]bool) (*model.Problem, bool, error) {
	problems, err := s.Problems.ListByTopic(topicID)
	if err != nil {
		return nil, false, err
	}
	sort.Slice(problems, func(i, j int) bool {
		ri, rj := model.DifficultyRank(problems[i].ExternalDifficulty), model.DifficultyRank(problems[j].ExternalDifficulty)
		if ri != rj {
			return ri < rj
		}
		return problems[i].ProblemID < problems[j].ProblemID
	})
	for i := range problems {
		p := &problems[i]
		if selected[p.ProblemID] {
			continue
		}
		if levels[p.ProblemID] >= model.MasteryVerified {
			continue
		}
		return p, true, nil
	}
	return nil, false, nil
}

func (s *DailyTaskService) masteryLevels(userID uint) (map[string]int, error) {
	pms, err := s.Mastery.ListProblemMasteries(userID)
	if err != nil {
		return nil, err
	}
	levels := make(map[string]int, len(pms))
	for i := range pms {
		levels[pms[i].ProblemID] = pms[i].MasteryLevel
	}
	return levels, nil
}

// CompleteTask marks a task done and stamps whether its problem stands at
// mastery level 3 at completion time.
func (s *DailyTaskService) CompleteTask(_ context.Context, userID uint, date, problemID string) (*model.DailyTask, error) {
	task, err := s.Tasks.FindForDay(userID, date, problemID)
	if err == gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("%w: no task for %s on %s", util.ErrValidation, problemID, date)
	}
	if err != nil {
		return nil, err
	}

	task.Completed = true
	pm, err := s.Mastery.FindProblemMastery(userID, problemID)
	if err == nil {
		task.MasteryVerified = s.Verifier.IsVerified(pm)
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	if err := s.Tasks.Update(task); err != nil {
		return nil, err
	}

	remaining, err := s.Tasks.ListForDay(userID, date)
	if err == nil {
		done := len(remaining) > 0
		for i := range remaining {
			if !remaining[i].Completed {
				done = false
				break
			}
		}
		if done && s.Notifier != nil {
			s.Notifier.DailyListCompleted(userID, date)
		}
	}
	return task, nil
}
