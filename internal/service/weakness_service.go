package service

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"maang_tracker_backend/internal/model"
	"maang_tracker_backend/internal/repository"

	"github.com/go-redis/redis/v8"
)

const weaknessCacheTTL = 5 * time.Minute

// WeaknessService ranks topics from weakest to strongest. The ranking is a
// pure function of the derived mastery state and the taxonomy: two identical
// models always produce the identical ordering.
type WeaknessService struct {
	Mastery  *repository.MasteryRepository
	Taxonomy *TaxonomyService
	Redis    *redis.Client
}

func NewWeaknessService(mastery *repository.MasteryRepository, taxonomy *TaxonomyService, rdb *redis.Client) *WeaknessService {
	return &WeaknessService{Mastery: mastery, Taxonomy: taxonomy, Redis: rdb}
}

// Profile returns every topic scored and sorted, weakest first.
func (s *WeaknessService) Profile(ctx context.Context, userID uint) ([]model.TopicWeakness, error) {
	if s.Redis != nil {
		if raw, err := s.Redis.Get(ctx, weaknessCacheKey(userID)).Result(); err == nil {
			var cached []model.TopicWeakness
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return cached, nil
			}
		}
	}

	tcs, err := s.Mastery.ListTopicCoverages(userID)
	if err != nil {
		return nil, err
	}
	profile := s.Rank(tcs)

	if s.Redis != nil {
		if raw, err := json.Marshal(profile); err == nil {
			s.Redis.Set(ctx, weaknessCacheKey(userID), raw, weaknessCacheTTL)
		}
	}
	return profile, nil
}

// Rank scores the given coverage rows against the full taxonomy. Topics with
// no coverage row score as fully unsolved.
func (s *WeaknessService) Rank(tcs []model.TopicCoverage) []model.TopicWeakness {
	byTopic := make(map[string]model.TopicCoverage, len(tcs))
	for i := range tcs {
		byTopic[tcs[i].TopicID] = tcs[i]
	}

	topics := s.Taxonomy.AllTopics()
	profile := make([]model.TopicWeakness, 0, len(topics))
	for _, topic := range topics {
		tc := byTopic[topic.TopicID]
		score, priority, covPct := scoreTopic(topic, tc.ProblemsSolved)
		prof := tc.ProficiencyLevel
		if prof == 0 {
			prof = 1
		}
		profile = append(profile, model.TopicWeakness{
			TopicID:     topic.TopicID,
			Category:    topic.Category,
			Difficulty:  topic.Difficulty,
			CoveragePct: covPct,
			Score:       score,
			Priority:    priority,
			Proficiency: prof,
		})
	}

	sort.SliceStable(profile, func(i, j int) bool {
		if profile[i].Score != profile[j].Score {
			return profile[i].Score > profile[j].Score
		}
		if profile[i].Difficulty != profile[j].Difficulty {
			return profile[i].Difficulty > profile[j].Difficulty
		}
		return profile[i].TopicID < profile[j].TopicID
	})
	return profile
}

// scoreTopic applies the weakness formula. Low coverage is weighted heavier,
// the published score is clamped to 100, and the priority tier is taken from
// the unclamped raw value so a clamped score can still rank critical.
func scoreTopic(topic model.Topic, problemsSolved int) (score float64, priority model.WeaknessPriority, covPct float64) {
	if topic.CanonicalProblemCount > 0 {
		covPct = 100 * float64(problemsSolved) / float64(topic.CanonicalProblemCount)
	}
	if covPct < 0 {
		covPct = 0
	}
	if covPct > 100 {
		covPct = 100
	}

	weight := 2.0
	switch {
	case covPct >= 70:
		weight = 1.0
	case covPct >= 40:
		weight = 1.5
	}

	raw := (100 - covPct) * weight
	score = raw
	if score > 100 {
		score = 100
	}

	switch {
	case raw >= 150:
		priority = model.PriorityCritical
	case raw >= 100:
		priority = model.PriorityHigh
	case raw >= 50:
		priority = model.PriorityMedium
	default:
		priority = model.PriorityLow
	}
	return score, priority, covPct
}
