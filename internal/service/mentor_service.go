package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"maang_tracker_backend/internal/config"
	"maang_tracker_backend/internal/model"
	"maang_tracker_backend/internal/util"
	"maang_tracker_backend/pkg/logger"
	"maang_tracker_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// MentorService calls the LLM mentor oracle. Every call runs under the
// caller's context plus a configured ceiling; when the oracle is down or
// slow, callers receive util.ErrOracleUnavailable and degrade to structured
// feedback without prose.
type MentorService struct {
	Cfg    *config.Config
	client *http.Client
}

func NewMentorService(cfg *config.Config) *MentorService {
	return &MentorService{Cfg: cfg, client: &http.Client{}}
}

type mentorMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type mentorCompletionRequest struct {
	Model    string          `json:"model"`
	Messages []mentorMessage `json:"messages"`
}

type mentorCompletionResponse struct {
	Choices []struct {
		Message mentorMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (s *MentorService) timeout() time.Duration {
	secs := s.Cfg.Mentor.TimeoutSeconds
	if secs <= 0 {
		secs = 15
	}
	return time.Duration(secs) * time.Second
}

func (s *MentorService) complete(ctx context.Context, system, prompt string) (string, error) {
	if s.Cfg.Mentor.BaseURL == "" {
		return "", util.ErrOracleUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()

	body, err := json.Marshal(mentorCompletionRequest{
		Model: s.Cfg.Mentor.Model,
		Messages: []mentorMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Cfg.Mentor.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.Cfg.Mentor.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		monitoring.OracleFailures.Inc()
		logger.Log.Warn("mentor oracle call failed", zap.Error(err))
		return "", util.ErrOracleUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		monitoring.OracleFailures.Inc()
		logger.Log.Warn("mentor oracle returned error",
			zap.Int("status", resp.StatusCode), zap.String("body", string(raw)))
		return "", util.ErrOracleUnavailable
	}

	var parsed mentorCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		monitoring.OracleFailures.Inc()
		return "", util.ErrOracleUnavailable
	}
	if parsed.Error != nil || len(parsed.Choices) == 0 {
		monitoring.OracleFailures.Inc()
		return "", util.ErrOracleUnavailable
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// Ask answers a free-form coaching question grounded in the learner's
// weakness profile.
func (s *MentorService) Ask(ctx context.Context, question string, profile []model.TopicWeakness) (string, error) {
	var sb strings.Builder
	sb.WriteString("You are an interview preparation mentor. The learner's weakest topics, weakest first:\n")
	limit := len(profile)
	if limit > 5 {
		limit = 5
	}
	for _, tw := range profile[:limit] {
		fmt.Fprintf(&sb, "- %s (coverage %.0f%%, priority %s)\n", tw.TopicID, tw.CoveragePct, tw.Priority)
	}
	sb.WriteString("Answer concretely and briefly.")
	return s.complete(ctx, sb.String(), question)
}

// ProblemFeedback turns one mastery record into mentor prose. Callers treat
// util.ErrOracleUnavailable as "no prose"; the structured fields still flow.
func (s *MentorService) ProblemFeedback(ctx context.Context, problem *model.Problem, pm *model.ProblemMastery) (string, error) {
	prompt := fmt.Sprintf(
		"Problem %q (topic %s, difficulty %s): %d attempts, mastery level %d, %d correct follow-ups. Give one short piece of coaching advice.",
		problem.Title, problem.TopicID, problem.ExternalDifficulty,
		pm.Attempts, pm.MasteryLevel, pm.FollowUpsCorrect,
	)
	return s.complete(ctx, "You are an interview preparation mentor. Reply with two sentences at most.", prompt)
}
