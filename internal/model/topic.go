package model

// TopicCategory is the fixed category set of the topic taxonomy.
type TopicCategory string

const (
	CategoryArrays       TopicCategory = "arrays"
	CategoryStrings      TopicCategory = "strings"
	CategoryLinkedList   TopicCategory = "linked-list"
	CategoryTrees        TopicCategory = "trees"
	CategoryGraphs       TopicCategory = "graphs"
	CategoryDP           TopicCategory = "dp"
	CategoryBinarySearch TopicCategory = "binary-search"
	CategoryRecursion    TopicCategory = "recursion"
	CategoryHashing      TopicCategory = "hashing"
	CategorySorting      TopicCategory = "sorting"
	CategorySystemDesign TopicCategory = "system-design"
	CategoryBehavioral   TopicCategory = "behavioral"
	CategoryOther        TopicCategory = "other"
)

// OtherTopicID is the classifier fallback topic, always present in the taxonomy.
const OtherTopicID = "other"

// Topic is one node of the taxonomy. The taxonomy is loaded once at startup
// and immutable afterwards; Position preserves declaration order.
// swagger:model Topic
type Topic struct {
	TopicID               string        `gorm:"primaryKey;size:64" json:"topicId"`
	Category              TopicCategory `gorm:"size:32;not null;index" json:"category"`
	Difficulty            int           `gorm:"not null" json:"difficulty"` // 1..5
	CanonicalProblemCount int           `gorm:"not null" json:"canonicalProblemCount"`
	Keywords              string        `gorm:"size:512" json:"keywords,omitempty"` // comma separated, used by the classifier
	Position              int           `gorm:"not null;default:0" json:"-"`
}

func (Topic) TableName() string {
	return "topics"
}
