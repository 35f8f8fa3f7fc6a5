package service

import (
	"maang_tracker_backend/internal/model"
	"strings"
)

// tagSynonyms normalizes the tag vocabulary of third-party practice sites
// onto taxonomy topic ids. Keys are lowercased, trimmed tags.
var tagSynonyms = map[string]string{
	"dp":                   "dynamic-programming",
	"dynamic programming":  "dynamic-programming",
	"memoization":          "dynamic-programming",
	"array":                "arrays",
	"arrays":               "arrays",
	"matrix":               "arrays",
	"string":               "strings",
	"strings":              "strings",
	"hash table":           "hashing",
	"hash-table":           "hashing",
	"hashmap":              "hashing",
	"hash":                 "hashing",
	"sort":                 "sorting",
	"sorting":              "sorting",
	"linked list":          "linked-list",
	"linked-list":          "linked-list",
	"linkedlist":           "linked-list",
	"binary search":        "binary-search",
	"binary-search":        "binary-search",
	"tree":                 "trees",
	"binary tree":          "trees",
	"bst":                  "bst",
	"binary search tree":   "bst",
	"trie":                 "tries",
	"heap":                 "heaps",
	"priority queue":       "heaps",
	"graph":                "graphs",
	"bfs":                  "graphs",
	"dfs":                  "graphs",
	"breadth-first search": "graphs",
	"depth-first search":   "graphs",
	"topological sort":     "graphs",
	"recursion":            "recursion",
	"divide and conquer":   "recursion",
	"backtracking":         "backtracking",
	"greedy":               "greedy",
	"bit manipulation":     "bit-manipulation",
	"bitwise":              "bit-manipulation",
	"two pointers":         "two-pointers",
	"two-pointers":         "two-pointers",
	"sliding window":       "sliding-window",
	"sliding-window":       "sliding-window",
	"stack":                "stack-queue",
	"queue":                "stack-queue",
	"monotonic stack":      "stack-queue",
	"system design":        "system-design",
	"system-design":        "system-design",
	"behavioral":           "behavioral",
}

// RawEvidence is unclassified activity scraped from a practice site.
// swagger:model RawEvidence
type RawEvidence struct {
	Title              string                   `json:"title"`
	SourceTags         []string                 `json:"sourceTags,omitempty"`
	ExternalDifficulty model.ExternalDifficulty `json:"externalDifficulty,omitempty"`
	SourceSite         string                   `json:"sourceSite,omitempty"`
}

// ClassifierService maps raw evidence to a taxonomy topic and a severity
// score. It is deterministic and pure: identical input always yields
// identical output, and every input classifies to something ("other" at
// worst).
type ClassifierService struct {
	Taxonomy *TaxonomyService

	// keyword -> topic id, built once from taxonomy keywords, checked in
	// declaration order for determinism
	keywords []topicKeyword
}

type topicKeyword struct {
	keyword string
	topicID string
}

func NewClassifierService(taxonomy *TaxonomyService) *ClassifierService {
	s := &ClassifierService{Taxonomy: taxonomy}
	for _, t := range taxonomy.AllTopics() {
		if t.Keywords == "" {
			continue
		}
		for _, kw := range strings.Split(t.Keywords, ",") {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			s.keywords = append(s.keywords, topicKeyword{keyword: kw, topicID: t.TopicID})
		}
	}
	return s
}

// Classify resolves raw evidence to {topic, severity}.
//
// Tags win over the title: each tag is normalized through the synonym
// dictionary and the first one naming a known topic is used. When no tag
// matches, title keywords are tried in taxonomy order; when nothing
// matches the evidence falls into "other". Severity averages the external
// difficulty score with the topic's intrinsic difficulty.
func (s *ClassifierService) Classify(raw RawEvidence) model.ClassifiedEvidence {
	topicID := s.matchTags(raw.SourceTags)
	if topicID == "" {
		topicID = s.matchTitle(raw.Title)
	}
	if topicID == "" {
		topicID = model.OtherTopicID
	}

	topic, err := s.Taxonomy.Topic(topicID)
	if err != nil {
		// keywords and synonyms are built from the taxonomy, so this
		// only happens if the fallback topic is missing; treat as other
		topic, _ = s.Taxonomy.Topic(model.OtherTopicID)
		topicID = model.OtherTopicID
	}

	extScore := model.DifficultyScore(raw.ExternalDifficulty)
	severity := (extScore + topic.Difficulty + 1) / 2 // round half up
	if severity < 1 {
		severity = 1
	}
	if severity > 5 {
		severity = 5
	}

	return model.ClassifiedEvidence{TopicID: topicID, Severity: severity}
}

// splitTags turns a stored comma-separated tag list into classifier input.
func splitTags(tags string) []string {
	if tags == "" {
		return nil
	}
	parts := strings.Split(tags, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (s *ClassifierService) matchTags(tags []string) string {
	for _, tag := range tags {
		norm := strings.ToLower(strings.TrimSpace(tag))
		if norm == "" {
			continue
		}
		if mapped, ok := tagSynonyms[norm]; ok && s.Taxonomy.Has(mapped) {
			return mapped
		}
		if s.Taxonomy.Has(norm) {
			return norm
		}
	}
	return ""
}

func (s *ClassifierService) matchTitle(title string) string {
	lower := strings.ToLower(title)
	if lower == "" {
		return ""
	}
	for _, tk := range s.keywords {
		if strings.Contains(lower, tk.keyword) {
			return tk.topicID
		}
	}
	return ""
}
