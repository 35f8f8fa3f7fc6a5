package model

// DailyTask is one adaptive task emitted for a user on a calendar day.
// TaskDate is the day in the user's configured timezone, stored as
// 2006-01-02 so the (user, date, problem) key is unambiguous.
type DailyTask struct {
	BaseModel
	UserID          uint   `gorm:"uniqueIndex:idx_dt_user_date_problem;not null" json:"userId"`
	TaskDate        string `gorm:"uniqueIndex:idx_dt_user_date_problem;size:10;not null" json:"date"`
	ProblemID       string `gorm:"uniqueIndex:idx_dt_user_date_problem;size:128;not null" json:"problemId"`
	TopicID         string `gorm:"size:64;not null" json:"topicId"`
	Reason          string `gorm:"size:255" json:"reason"`
	Position        int    `gorm:"not null;default:0" json:"-"` // emission order within the day
	Completed       bool   `gorm:"not null;default:false" json:"completed"`
	MasteryVerified bool   `gorm:"not null;default:false" json:"masteryVerified"`
}

func (DailyTask) TableName() string {
	return "daily_tasks"
}

// DailyTaskList is the selector result: the day's tasks, or empty with
// AllMastered set when no unmastered problem remains anywhere.
// swagger:model DailyTaskList
type DailyTaskList struct {
	Date        string      `json:"date"`
	Tasks       []DailyTask `json:"tasks"`
	AllMastered bool        `json:"allMastered"`
}
