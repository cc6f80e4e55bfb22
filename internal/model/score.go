package model

import (
	"time"

	"github.com/google/uuid"
)

// ScoreRecord is the persisted summary of one completed quiz session.
type ScoreRecord struct {
	ID          uuid.UUID `json:"id"`
	UserID      int64     `json:"user_id"`
	Exam        string    `json:"exam"`
	Topic       string    `json:"topic"`
	Score       int       `json:"score"`
	Total       int       `json:"total"`
	CompletedAt time.Time `json:"completed_at"`
}

// BestScore is one user's best score for an exam topic together with the
// earliest time that score was reached.
type BestScore struct {
	UserID     int64     `json:"user_id"`
	BestScore  int       `json:"best_score"`
	EarliestAt time.Time `json:"earliest_at"`
}

// LeaderboardEntry is a ranked row of the leaderboard.
type LeaderboardEntry struct {
	Rank       int       `json:"rank"`
	UserID     int64     `json:"user_id"`
	BestScore  int       `json:"best_score"`
	AchievedAt time.Time `json:"achieved_at"`
}
