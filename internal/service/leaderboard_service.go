package service

import (
	"context"
	"sort"
	"strings"

	"github.com/stemsi/mcq-engine/internal/model"
)

// LeaderboardService ranks users by their best score on an exam topic.
type LeaderboardService struct {
	scores ScoreRepository
}

// NewLeaderboardService creates a LeaderboardService.
func NewLeaderboardService(scores ScoreRepository) *LeaderboardService {
	return &LeaderboardService{scores: scores}
}

// TopN returns at most n users ordered by best score descending. Ties go
// to whoever reached that score first, then to the lower user id. A
// non-positive n returns every user.
func (s *LeaderboardService) TopN(ctx context.Context, exam, topic string, n int) ([]model.LeaderboardEntry, error) {
	best, err := s.scores.BestScoresByUser(ctx, strings.TrimSpace(exam), strings.TrimSpace(topic))
	if err != nil {
		return nil, storageFailure("best scores", err)
	}

	sorted := make([]model.BestScore, len(best))
	copy(sorted, best)
	sort.SliceStable(sorted, func(i, j int) bool {
		return rankedBefore(sorted[i], sorted[j])
	})

	if n > 0 && n < len(sorted) {
		sorted = sorted[:n]
	}

	entries := make([]model.LeaderboardEntry, 0, len(sorted))
	for i, b := range sorted {
		entries = append(entries, model.LeaderboardEntry{
			Rank:       i + 1,
			UserID:     b.UserID,
			BestScore:  b.BestScore,
			AchievedAt: b.EarliestAt,
		})
	}
	return entries, nil
}

// RecentScores returns at most limit of the user's latest score records,
// newest first. Callers pick the limit; a non-positive one returns nothing.
func (s *LeaderboardService) RecentScores(ctx context.Context, userID int64, limit int) ([]model.ScoreRecord, error) {
	if limit < 1 {
		return []model.ScoreRecord{}, nil
	}
	records, err := s.scores.RecentByUser(ctx, userID, limit)
	if err != nil {
		return nil, storageFailure("recent scores", err)
	}
	if records == nil {
		records = []model.ScoreRecord{}
	}
	return records, nil
}

func rankedBefore(a, b model.BestScore) bool {
	if a.BestScore != b.BestScore {
		return a.BestScore > b.BestScore
	}
	if !a.EarliestAt.Equal(b.EarliestAt) {
		return a.EarliestAt.Before(b.EarliestAt)
	}
	return a.UserID < b.UserID
}
