package service

import (
	"context"
	"encoding/json"
	"time"

	"maang_tracker_backend/internal/config"
	"maang_tracker_backend/internal/model"
	"maang_tracker_backend/internal/repository"

	"github.com/go-redis/redis/v8"
)

const roadmapCacheTTL = 5 * time.Minute

// RoadmapService projects the user's coverage onto the taxonomy as a
// difficulty-ordered BST and slices its in-order traversal into a weekly
// study plan. The builder is deterministic and never persists; output is
// rebuilt (or served from cache) on demand.
type RoadmapService struct {
	Mastery  *repository.MasteryRepository
	Taxonomy *TaxonomyService
	Redis    *redis.Client
	Cfg      *config.Config
}

func NewRoadmapService(mastery *repository.MasteryRepository, taxonomy *TaxonomyService, rdb *redis.Client, cfg *config.Config) *RoadmapService {
	return &RoadmapService{Mastery: mastery, Taxonomy: taxonomy, Redis: rdb, Cfg: cfg}
}

// Roadmap builds the plan over the given horizon. weeks <= 0 selects the
// configured default.
func (s *RoadmapService) Roadmap(ctx context.Context, userID uint, weeks int) (*model.Roadmap, error) {
	defaultWeeks := s.Cfg.Learning.RoadmapWeeks
	if weeks <= 0 {
		weeks = defaultWeeks
	}

	cacheable := s.Redis != nil && weeks == defaultWeeks
	if cacheable {
		if raw, err := s.Redis.Get(ctx, roadmapCacheKey(userID)).Result(); err == nil {
			var cached model.Roadmap
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return &cached, nil
			}
		}
	}

	tcs, err := s.Mastery.ListTopicCoverages(userID)
	if err != nil {
		return nil, err
	}
	roadmap := s.Build(tcs, weeks)

	if cacheable {
		if raw, err := json.Marshal(roadmap); err == nil {
			s.Redis.Set(ctx, roadmapCacheKey(userID), raw, roadmapCacheTTL)
		}
	}
	return roadmap, nil
}

// Build constructs the BST and weekly plan from coverage rows.
func (s *RoadmapService) Build(tcs []model.TopicCoverage, weeks int) *model.Roadmap {
	solvedByTopic := make(map[string]int, len(tcs))
	for i := range tcs {
		solvedByTopic[tcs[i].TopicID] = tcs[i].ProblemsSolved
	}

	var root *model.RoadmapNode
	for _, topic := range s.Taxonomy.AllTopics() {
		node := newRoadmapNode(topic, solvedByTopic[topic.TopicID])
		root = insertRoadmapNode(root, node)
	}

	ordered := inOrder(root)
	plan := bucketWeeks(ordered, weeks)

	summary := model.RoadmapSummary{Weeks: weeks, Topics: len(ordered)}
	var solvedSum, totalSum int
	for _, n := range ordered {
		solvedSum += n.Solved
		totalSum += n.Total
	}
	for i := range plan {
		summary.TargetProblems += plan[i].TargetProblems
	}
	if totalSum > 0 {
		summary.OverallPct = 100 * float64(solvedSum) / float64(totalSum)
	}

	return &model.Roadmap{Root: root, WeeklyPlan: plan, Summary: summary}
}

func newRoadmapNode(topic model.Topic, solved int) *model.RoadmapNode {
	node := &model.RoadmapNode{
		TopicID:    topic.TopicID,
		Category:   topic.Category,
		Difficulty: topic.Difficulty,
		Solved:     solved,
		Total:      topic.CanonicalProblemCount,
	}
	if node.Total > 0 {
		node.ProgressPct = 100 * float64(node.Solved) / float64(node.Total)
		if node.ProgressPct > 100 {
			node.ProgressPct = 100
		}
	}
	return node
}

// insertRoadmapNode keys on (difficulty, topicId). No balancing; insertion
// order is taxonomy declaration order, so equal inputs yield equal trees.
func insertRoadmapNode(root, node *model.RoadmapNode) *model.RoadmapNode {
	if root == nil {
		return node
	}
	if node.Difficulty < root.Difficulty ||
		(node.Difficulty == root.Difficulty && node.TopicID < root.TopicID) {
		root.Left = insertRoadmapNode(root.Left, node)
	} else {
		root.Right = insertRoadmapNode(root.Right, node)
	}
	return root
}

func inOrder(root *model.RoadmapNode) []*model.RoadmapNode {
	var out []*model.RoadmapNode
	var walk func(n *model.RoadmapNode)
	walk = func(n *model.RoadmapNode) {
		if n == nil {
			return
		}
		walk(n.Left)
		out = append(out, n)
		walk(n.Right)
	}
	walk(root)
	return out
}

// bucketWeeks partitions the ordered topics into weeks contiguous buckets of
// near-equal length, the first len%weeks buckets one element longer.
func bucketWeeks(ordered []*model.RoadmapNode, weeks int) []model.RoadmapWeek {
	n := len(ordered)
	base := n / weeks
	extra := n % weeks

	plan := make([]model.RoadmapWeek, 0, weeks)
	idx := 0
	for w := 0; w < weeks; w++ {
		size := base
		if w < extra {
			size++
		}
		week := model.RoadmapWeek{Week: w + 1, Topics: make([]model.RoadmapEntry, 0, size)}
		for k := 0; k < size; k++ {
			node := ordered[idx]
			idx++
			if k == 0 {
				week.PrimaryFocus = node.Category
			}
			week.TargetProblems += node.Total
			week.Topics = append(week.Topics, model.RoadmapEntry{
				TopicID:        node.TopicID,
				Difficulty:     node.Difficulty,
				ProgressPct:    node.ProgressPct,
				Recommendation: recommendation(node.ProgressPct),
			})
		}
		plan = append(plan, week)
	}
	return plan
}

func recommendation(progressPct float64) string {
	switch {
	case progressPct == 0:
		return "start"
	case progressPct < 50:
		return "continue"
	case progressPct < 100:
		return "master with follow-ups"
	default:
		return "review"
	}
}
