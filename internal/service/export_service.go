package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"maang_tracker_backend/internal/repository"
	"maang_tracker_backend/pkg/logger"

	"go.uber.org/zap"
)

// ExportService renders a learner's progress as CSV and archives a copy in
// object storage. The archive is best-effort; the download never depends on
// the storage backend being up.
type ExportService struct {
	Mastery  *repository.MasteryRepository
	Taxonomy *TaxonomyService
	Storage  *StorageService
}

func NewExportService(mastery *repository.MasteryRepository, taxonomy *TaxonomyService, storage *StorageService) *ExportService {
	return &ExportService{Mastery: mastery, Taxonomy: taxonomy, Storage: storage}
}

// ProgressCSV returns (filename, csv bytes).
func (s *ExportService) ProgressCSV(ctx context.Context, userID uint) (string, []byte, error) {
	pms, err := s.Mastery.ListProblemMasteries(userID)
	if err != nil {
		return "", nil, err
	}
	tcs, err := s.Mastery.ListTopicCoverages(userID)
	if err != nil {
		return "", nil, err
	}
	coverage := make(map[string]int, len(tcs))
	for i := range tcs {
		coverage[tcs[i].TopicID] = tcs[i].ProficiencyLevel
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{
		"problem_id", "topic_id", "topic_proficiency", "attempts",
		"mastery_level", "first_solved_at", "best_time_minutes",
		"follow_ups_correct", "verify_count",
	})
	for i := range pms {
		pm := &pms[i]
		firstSolved := ""
		if pm.FirstSolvedAt != nil {
			firstSolved = pm.FirstSolvedAt.Format(time.RFC3339)
		}
		bestTime := ""
		if pm.BestTimeMinutes != nil {
			bestTime = strconv.Itoa(*pm.BestTimeMinutes)
		}
		_ = w.Write([]string{
			pm.ProblemID,
			pm.TopicID,
			strconv.Itoa(coverage[pm.TopicID]),
			strconv.Itoa(pm.Attempts),
			strconv.Itoa(pm.MasteryLevel),
			firstSolved,
			bestTime,
			strconv.Itoa(pm.FollowUpsCorrect),
			strconv.Itoa(pm.VerifyCount),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", nil, err
	}

	filename := fmt.Sprintf("exports/progress_%d_%s.csv", userID, time.Now().Format("20060102_150405"))
	data := buf.Bytes()

	if s.Storage != nil {
		if _, err := s.Storage.Upload(ctx, filename, bytes.NewReader(data), int64(len(data)), "text/csv"); err != nil {
			logger.Log.Warn("progress export archive failed",
				zap.Uint("userId", userID), zap.Error(err))
		}
	}
	return filename, data, nil
}
