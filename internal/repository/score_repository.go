package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/mcq-engine/internal/model"
)

// ScoreRepository handles the append-only scores table.
type ScoreRepository struct {
	pool *pgxpool.Pool
}

// NewScoreRepository creates a new ScoreRepository.
func NewScoreRepository(pool *pgxpool.Pool) *ScoreRepository {
	return &ScoreRepository{pool: pool}
}

// Insert stores a score record. Replaying a record with the same id is a no-op.
func (r *ScoreRepository) Insert(ctx context.Context, rec *model.ScoreRecord) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO scores (id, user_id, exam, topic, score, total, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO NOTHING`,
		rec.ID, rec.UserID, rec.Exam, rec.Topic, rec.Score, rec.Total, rec.CompletedAt,
	)
	return err
}

// InsertBatch stores many score records in one statement using UNNEST.
func (r *ScoreRepository) InsertBatch(ctx context.Context, recs []model.ScoreRecord) error {
	if len(recs) == 0 {
		return nil
	}

	n := len(recs)
	ids := make([]uuid.UUID, 0, n)
	users := make([]int64, 0, n)
	exams := make([]string, 0, n)
	topics := make([]string, 0, n)
	scores := make([]int, 0, n)
	totals := make([]int, 0, n)
	completedAts := make([]time.Time, 0, n)

	for _, rec := range recs {
		ids = append(ids, rec.ID)
		users = append(users, rec.UserID)
		exams = append(exams, rec.Exam)
		topics = append(topics, rec.Topic)
		scores = append(scores, rec.Score)
		totals = append(totals, rec.Total)
		completedAts = append(completedAts, rec.CompletedAt)
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO scores (id, user_id, exam, topic, score, total, completed_at)
		 SELECT * FROM UNNEST(
			$1::uuid[],
			$2::bigint[],
			$3::text[],
			$4::text[],
			$5::int[],
			$6::int[],
			$7::timestamptz[]
		 )
		 ON CONFLICT (id) DO NOTHING`,
		ids, users, exams, topics, scores, totals, completedAts,
	)
	return err
}

// BestScoresByUser returns, per user, the highest score on exam/topic and
// the earliest time it was reached.
func (r *ScoreRepository) BestScoresByUser(ctx context.Context, exam, topic string) ([]model.BestScore, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT ON (user_id) user_id, score, completed_at
		 FROM scores
		 WHERE exam = $1 AND topic = $2
		 ORDER BY user_id, score DESC, completed_at ASC`, exam, topic,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var best []model.BestScore
	for rows.Next() {
		var b model.BestScore
		if err := rows.Scan(&b.UserID, &b.BestScore, &b.EarliestAt); err != nil {
			return nil, err
		}
		best = append(best, b)
	}
	return best, rows.Err()
}

// RecentByUser returns the user's latest records, newest first.
func (r *ScoreRepository) RecentByUser(ctx context.Context, userID int64, limit int) ([]model.ScoreRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, exam, topic, score, total, completed_at
		 FROM scores
		 WHERE user_id = $1
		 ORDER BY completed_at DESC
		 LIMIT $2`, userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.ScoreRecord
	for rows.Next() {
		var rec model.ScoreRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Exam, &rec.Topic, &rec.Score, &rec.Total, &rec.CompletedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
