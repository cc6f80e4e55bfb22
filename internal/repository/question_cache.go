package repository

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

// QuestionSource is the question pool being cached.
type QuestionSource interface {
	ListExams(ctx context.Context) ([]string, error)
	ListTopics(ctx context.Context, exam string) ([]string, error)
	CountQuestions(ctx context.Context, exam, topic string) (int, error)
	SampleOne(ctx context.Context, exam, topic string, exclude []int64) (*model.Question, error)
}

// CachedQuestionRepository keeps the exam and topic listings in Redis for
// a short TTL. Pool sizes and sampling always reach the source.
// Redis failures degrade to uncached reads.
type CachedQuestionRepository struct {
	source QuestionSource
	rdb    *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewCachedQuestionRepository wraps source with a Redis catalog cache.
func NewCachedQuestionRepository(source QuestionSource, rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *CachedQuestionRepository {
	return &CachedQuestionRepository{
		source: source,
		rdb:    rdb,
		ttl:    ttl,
		log:    log.With().Str("component", "question_cache").Logger(),
	}
}

func (r *CachedQuestionRepository) ListExams(ctx context.Context) ([]string, error) {
	return r.cachedList(ctx, config.CacheKey.ExamListKey(), func() ([]string, error) {
		return r.source.ListExams(ctx)
	})
}

func (r *CachedQuestionRepository) ListTopics(ctx context.Context, exam string) ([]string, error) {
	return r.cachedList(ctx, config.CacheKey.TopicListKey(exam), func() ([]string, error) {
		return r.source.ListTopics(ctx, exam)
	})
}

// CountQuestions always reaches the source. A cached pool size would hide
// questions imported after it was stored.
func (r *CachedQuestionRepository) CountQuestions(ctx context.Context, exam, topic string) (int, error) {
	return r.source.CountQuestions(ctx, exam, topic)
}

func (r *CachedQuestionRepository) SampleOne(ctx context.Context, exam, topic string, exclude []int64) (*model.Question, error) {
	return r.source.SampleOne(ctx, exam, topic, exclude)
}

func (r *CachedQuestionRepository) cachedList(ctx context.Context, key string, load func() ([]string, error)) ([]string, error) {
	raw, err := r.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var names []string
		if jsonErr := json.Unmarshal(raw, &names); jsonErr == nil {
			return names, nil
		}
		r.log.Warn().Str("key", key).Msg("Invalid cached list, refreshing")
	case !errors.Is(err, redis.Nil):
		r.log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
	}

	names, err := load()
	if err != nil {
		return nil, err
	}

	// Empty lists are not cached so that a freshly imported exam shows up
	// without waiting for the TTL.
	if len(names) == 0 {
		return names, nil
	}
	payload, _ := json.Marshal(names)
	if err := r.rdb.Set(ctx, key, payload, r.ttl).Err(); err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
	return names, nil
}
