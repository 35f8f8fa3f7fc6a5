package model

// ExternalDifficulty is the difficulty label reported by practice sites.
type ExternalDifficulty string

const (
	DifficultyEasy   ExternalDifficulty = "easy"
	DifficultyMedium ExternalDifficulty = "medium"
	DifficultyHard   ExternalDifficulty = "hard"
)

// DifficultyScore maps an external difficulty label to the 1..5 severity
// scale; unknown or missing labels score as medium.
func DifficultyScore(d ExternalDifficulty) int {
	switch d {
	case DifficultyEasy:
		return 1
	case DifficultyHard:
		return 5
	default:
		return 3
	}
}

// DifficultyRank orders problems for the daily selector (easy < medium < hard).
func DifficultyRank(d ExternalDifficulty) int {
	switch d {
	case DifficultyEasy:
		return 0
	case DifficultyMedium:
		return 1
	case DifficultyHard:
		return 2
	default:
		return 1
	}
}

// swagger:model Problem
type Problem struct {
	ProblemID          string             `gorm:"primaryKey;size:128" json:"problemId"`
	Title              string             `gorm:"size:255;not null" json:"title"`
	TopicID            string             `gorm:"size:64;not null;index" json:"topicId"`
	ExternalDifficulty ExternalDifficulty `gorm:"size:16;not null;default:'medium'" json:"externalDifficulty"`
	SourceTags         string             `gorm:"size:512" json:"sourceTags,omitempty"` // comma separated
	SourceSite         string             `gorm:"size:64" json:"sourceSite,omitempty"`
}

func (Problem) TableName() string {
	return "problems"
}
