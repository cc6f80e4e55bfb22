package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/stemsi/mcq-engine/internal/config"
	"github.com/stemsi/mcq-engine/internal/model"
)

// ScoreReader is the query side of a score store.
type ScoreReader interface {
	BestScoresByUser(ctx context.Context, exam, topic string) ([]model.BestScore, error)
	RecentByUser(ctx context.Context, userID int64, limit int) ([]model.ScoreRecord, error)
}

// QueuedScoreRepository appends score records to a Redis list drained by
// the score worker, and answers queries from the underlying store. Queued
// records become visible to queries once the worker has flushed them.
type QueuedScoreRepository struct {
	ScoreReader
	rdb *redis.Client
}

// NewQueuedScoreRepository creates a QueuedScoreRepository.
func NewQueuedScoreRepository(reader ScoreReader, rdb *redis.Client) *QueuedScoreRepository {
	return &QueuedScoreRepository{ScoreReader: reader, rdb: rdb}
}

// Insert enqueues rec for asynchronous persistence.
func (r *QueuedScoreRepository) Insert(ctx context.Context, rec *model.ScoreRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode score: %w", err)
	}
	return r.rdb.RPush(ctx, config.WorkerKey.PersistScoresQueue, raw).Err()
}
