package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/mcq-engine/internal/config"
	"github.com/stemsi/mcq-engine/internal/database"
	"github.com/stemsi/mcq-engine/internal/repository"
	"github.com/stemsi/mcq-engine/internal/service"
	"github.com/stemsi/mcq-engine/internal/worker"
)

// storage bundles the repositories behind the configured driver. rdb and
// writer are nil for SQLite.
type storage struct {
	questions service.QuestionRepository
	scores    service.ScoreRepository
	writer    worker.ScoreWriter
	rdb       *redis.Client
	closers   []func()
}

func (s *storage) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	if cfg.StorageDriver == config.StorageSQLite {
		return openSQLite(cfg, log)
	}
	return openPostgres(ctx, cfg, log)
}

func openSQLite(cfg *config.Config, log zerolog.Logger) (*storage, error) {
	db, err := repository.NewSQLiteStore(cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	if cfg.ScoreWriteMode == config.ScoreWriteQueued {
		log.Warn().Msg("Queued score writes need Redis, writing directly to SQLite")
	}
	log.Info().Str("path", cfg.SQLitePath).Msg("SQLite opened")

	return &storage{
		questions: db,
		scores:    db,
		closers:   []func(){func() { _ = db.Close() }},
	}, nil
}

func openPostgres(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	pgQuestions := repository.NewQuestionRepository(pool)
	pgScores := repository.NewScoreRepository(pool)

	s := &storage{
		questions: pgQuestions,
		scores:    pgScores,
		writer:    pgScores,
		rdb:       rdb,
		closers:   []func(){pool.Close, func() { _ = rdb.Close() }},
	}
	if cfg.CatalogCacheTTL > 0 {
		s.questions = repository.NewCachedQuestionRepository(pgQuestions, rdb, cfg.CatalogCacheTTL, log)
	}
	if cfg.ScoreWriteMode == config.ScoreWriteQueued {
		s.scores = repository.NewQueuedScoreRepository(pgScores, rdb)
	}
	return s, nil
}
