package model

// Weakness priority tiers, derived from the unclamped raw score.
type WeaknessPriority string

const (
	PriorityCritical WeaknessPriority = "critical"
	PriorityHigh     WeaknessPriority = "high"
	PriorityMedium   WeaknessPriority = "medium"
	PriorityLow      WeaknessPriority = "low"
)

// TopicWeakness is one entry of the ranked weakness profile.
// Score is clamped to [0,100]; Priority is tiered from the raw
// (pre-clamp) value so "critical" survives the clamp.
// swagger:model TopicWeakness
type TopicWeakness struct {
	TopicID     string           `json:"topicId"`
	Category    TopicCategory    `json:"category"`
	Difficulty  int              `json:"difficulty"`
	CoveragePct float64          `json:"coveragePct"`
	Score       float64          `json:"score"`
	Priority    WeaknessPriority `json:"priority"`
	Proficiency int              `json:"proficiency"`
}

// ClassifiedEvidence is the classifier output for one piece of raw evidence.
// swagger:model ClassifiedEvidence
type ClassifiedEvidence struct {
	TopicID  string `json:"topicId"`
	Severity int    `json:"severity"` // 1..5
}
