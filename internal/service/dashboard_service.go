package service

import (
	"context"
	"time"

	"maang_tracker_backend/internal/model"
)

// DashboardService assembles the single read most clients open with: the
// summary, the weakest topics, today's tasks and the current roadmap week.
type DashboardService struct {
	Mastery    *MasteryService
	Weakness   *WeaknessService
	Roadmap    *RoadmapService
	Tasks      *DailyTaskService
	Interviews *InterviewService
}

func NewDashboardService(
	mastery *MasteryService,
	weakness *WeaknessService,
	roadmap *RoadmapService,
	tasks *DailyTaskService,
	interviews *InterviewService,
) *DashboardService {
	return &DashboardService{
		Mastery:    mastery,
		Weakness:   weakness,
		Roadmap:    roadmap,
		Tasks:      tasks,
		Interviews: interviews,
	}
}

// swagger:model Dashboard
type Dashboard struct {
	Summary          *model.UserSummary       `json:"summary"`
	TopWeaknesses    []model.TopicWeakness    `json:"topWeaknesses"`
	Today            *model.DailyTaskList     `json:"today"`
	CurrentWeek      *model.RoadmapWeek       `json:"currentWeek,omitempty"`
	RecentInterviews []model.InterviewSession `json:"recentInterviews"`
}

func (s *DashboardService) Overview(ctx context.Context, userID uint) (*Dashboard, error) {
	summary, err := s.Mastery.Summary(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile, err := s.Weakness.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(profile) > 5 {
		profile = profile[:5]
	}

	today, err := s.Tasks.TasksForDay(ctx, userID, s.Tasks.DayString(userID, time.Now()))
	if err != nil {
		return nil, err
	}

	roadmap, err := s.Roadmap.Roadmap(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	var currentWeek *model.RoadmapWeek
	for i := range roadmap.WeeklyPlan {
		week := roadmap.WeeklyPlan[i]
		done := true
		for _, entry := range week.Topics {
			if entry.ProgressPct < 100 {
				done = false
				break
			}
		}
		if !done && len(week.Topics) > 0 {
			currentWeek = &week
			break
		}
	}

	sessions, err := s.Interviews.History(userID, 5)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Summary:          summary,
		TopWeaknesses:    profile,
		Today:            today,
		CurrentWeek:      currentWeek,
		RecentInterviews: sessions,
	}, nil
}
