package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/mcq-engine/internal/config"
	"github.com/stemsi/mcq-engine/internal/model"
)

const (
	ScoreBatchSize    = 50
	ScoreBatchTimeout = 2 * time.Second
	ScorePollTimeout  = 1 * time.Second
)

// ScoreWriter persists score records drained from the queue.
type ScoreWriter interface {
	Insert(ctx context.Context, rec *model.ScoreRecord) error
	InsertBatch(ctx context.Context, recs []model.ScoreRecord) error
}

// ScoreWorker moves queued score records from Redis into PostgreSQL.
type ScoreWorker struct {
	store ScoreWriter
	rdb   *redis.Client
	log   zerolog.Logger
}

func NewScoreWorker(store ScoreWriter, rdb *redis.Client, log zerolog.Logger) *ScoreWorker {
	return &ScoreWorker{
		store: store,
		rdb:   rdb,
		log:   log.With().Str("component", "score_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

// Start blocks until ctx is cancelled, then flushes what it holds.
func (w *ScoreWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ScoreWorker started")

	batch := make([]model.ScoreRecord, 0, ScoreBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= ScoreBatchSize || time.Since(lastFlush) >= ScoreBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Int("pending", len(batch)).Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, ScorePollTimeout, config.WorkerKey.PersistScoresQueue).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var rec model.ScoreRecord
			if err := json.Unmarshal([]byte(item[1]), &rec); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, rec)
		}
	}
}

// ----------------------------------------------------------------
// Batch insert with per-record fallback
// ----------------------------------------------------------------

func (w *ScoreWorker) flushSafe(ctx context.Context, batch []model.ScoreRecord) {
	if len(batch) == 0 {
		return
	}

	err := w.store.InsertBatch(ctx, batch)
	if err == nil {
		w.log.Debug().Int("count", len(batch)).Msg("Scores persisted")
		return
	}

	w.log.Warn().Err(err).Int("count", len(batch)).Msg("bulk score insert failed, using fallback")

	for i := range batch {
		rec := batch[i]
		if err := w.store.Insert(ctx, &rec); err != nil {
			w.log.Error().Err(err).Str("score_id", rec.ID.String()).Msg("single insert failed, requeueing")
			raw, _ := json.Marshal(rec)
			w.rdb.RPush(ctx, config.WorkerKey.PersistScoresQueue, raw)
		}
	}
}
