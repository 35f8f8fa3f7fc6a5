package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"maang_tracker_backend/internal/config"
	"maang_tracker_backend/pkg/logger"

	"go.uber.org/zap"
)

// NotifierService pushes learning milestones to an optional webhook. Delivery
// is fire-and-forget: a dead webhook never blocks or fails an ingest.
type NotifierService struct {
	Cfg    *config.Config
	client *http.Client
}

func NewNotifierService(cfg *config.Config) *NotifierService {
	timeout := time.Duration(cfg.Notify.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &NotifierService{
		Cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

type notifyPayload struct {
	Event     string    `json:"event"`
	UserID    uint      `json:"userId"`
	ProblemID string    `json:"problemId,omitempty"`
	TopicID   string    `json:"topicId,omitempty"`
	Date      string    `json:"date,omitempty"`
	Message   string    `json:"message"`
	SentAt    time.Time `json:"sentAt"`
}

// MasteryVerified fires when a problem reaches level 3.
func (s *NotifierService) MasteryVerified(userID uint, problemID, topicID string) {
	s.send(notifyPayload{
		Event:     "mastery_verified",
		UserID:    userID,
		ProblemID: problemID,
		TopicID:   topicID,
		Message:   fmt.Sprintf("problem %s verified at mastery level 3", problemID),
	})
}

// DailyListCompleted fires when every task of a day's list is done.
func (s *NotifierService) DailyListCompleted(userID uint, date string) {
	s.send(notifyPayload{
		Event:   "daily_list_completed",
		UserID:  userID,
		Date:    date,
		Message: fmt.Sprintf("all daily tasks for %s completed", date),
	})
}

// UserQuarantined fires when a recompute trips an invariant.
func (s *NotifierService) UserQuarantined(userID uint) {
	s.send(notifyPayload{
		Event:   "user_quarantined",
		UserID:  userID,
		Message: "mastery state quarantined, rebuild required",
	})
}

func (s *NotifierService) send(p notifyPayload) {
	url := s.Cfg.Notify.WebhookURL
	if url == "" {
		return
	}
	p.SentAt = time.Now()
	body, err := json.Marshal(p)
	if err != nil {
		return
	}
	go func() {
		resp, err := s.client.Post(url, "application/json", bytes.NewReader(body))
		if err != nil {
			logger.Log.Warn("webhook delivery failed",
				zap.String("event", p.Event), zap.Uint("userId", p.UserID), zap.Error(err))
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 300 {
			logger.Log.Warn("webhook rejected notification",
				zap.String("event", p.Event), zap.Int("status", resp.StatusCode))
		}
	}()
}
