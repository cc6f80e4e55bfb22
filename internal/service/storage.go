package service

import (
	"context"

	"github.com/stemsi/mcq-engine/internal/model"
)

// QuestionRepository is the read-only question pool consumed by the quiz.
type QuestionRepository interface {
	ListExams(ctx context.Context) ([]string, error)
	ListTopics(ctx context.Context, exam string) ([]string, error)
	CountQuestions(ctx context.Context, exam, topic string) (int, error)
	// SampleOne returns a uniformly random question of exam/topic whose id
	// is not in exclude, or nil when no such question exists.
	SampleOne(ctx context.Context, exam, topic string, exclude []int64) (*model.Question, error)
}

// ScoreRepository is the append-only store of completed quiz scores.
type ScoreRepository interface {
	Insert(ctx context.Context, rec *model.ScoreRecord) error
	BestScoresByUser(ctx context.Context, exam, topic string) ([]model.BestScore, error)
	RecentByUser(ctx context.Context, userID int64, limit int) ([]model.ScoreRecord, error)
}
