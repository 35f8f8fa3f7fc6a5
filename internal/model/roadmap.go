package model

// RoadmapNode is one node of the difficulty-ordered BST the roadmap builder
// produces. The ordering key is (difficulty, topicId); in-order traversal
// yields topics by ascending difficulty. The tree is not balanced.
type RoadmapNode struct {
	TopicID     string        `json:"topicId"`
	Category    TopicCategory `json:"category"`
	Difficulty  int           `json:"difficulty"`
	Solved      int           `json:"solved"`
	Total       int           `json:"total"`
	ProgressPct float64       `json:"progressPct"`
	Left        *RoadmapNode  `json:"left,omitempty"`
	Right       *RoadmapNode  `json:"right,omitempty"`
}

// RoadmapEntry is one topic inside a weekly bucket, with the study
// recommendation chosen from its progress.
type RoadmapEntry struct {
	TopicID        string  `json:"topicId"`
	Difficulty     int     `json:"difficulty"`
	ProgressPct    float64 `json:"progressPct"`
	Recommendation string  `json:"recommendation"`
}

// RoadmapWeek is one contiguous bucket of the in-order topic list.
type RoadmapWeek struct {
	Week           int            `json:"week"`
	PrimaryFocus   TopicCategory  `json:"primaryFocus"`
	TargetProblems int            `json:"targetProblems"`
	Topics         []RoadmapEntry `json:"topics"`
}

// Roadmap is the builder output: the BST plus the weekly plan over the
// requested horizon.
// swagger:model Roadmap
type Roadmap struct {
	Root       *RoadmapNode   `json:"bst"`
	WeeklyPlan []RoadmapWeek  `json:"weeklyPlan"`
	Summary    RoadmapSummary `json:"summary"`
}

type RoadmapSummary struct {
	Weeks          int     `json:"weeks"`
	Topics         int     `json:"topics"`
	TargetProblems int     `json:"targetProblems"`
	OverallPct     float64 `json:"overallPct"`
}
