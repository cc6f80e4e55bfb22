package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/mcq-engine/internal/model"
)

// QuestionRepository handles read access to the mcq table.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// ListExams returns the distinct exam names, alphabetically.
func (r *QuestionRepository) ListExams(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, `SELECT DISTINCT exam FROM mcq ORDER BY exam`)
}

// ListTopics returns the distinct topics of an exam, alphabetically.
func (r *QuestionRepository) ListTopics(ctx context.Context, exam string) ([]string, error) {
	return r.distinct(ctx, `SELECT DISTINCT topic FROM mcq WHERE exam = $1 ORDER BY topic`, exam)
}

func (r *QuestionRepository) distinct(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// CountQuestions returns the pool size of an exam topic.
func (r *QuestionRepository) CountQuestions(ctx context.Context, exam, topic string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM mcq WHERE exam = $1 AND topic = $2`, exam, topic,
	).Scan(&n)
	return n, err
}

// SampleOne picks a random question of exam/topic outside exclude.
// It returns nil, nil when none is left.
func (r *QuestionRepository) SampleOne(ctx context.Context, exam, topic string, exclude []int64) (*model.Question, error) {
	// A NULL array would make the NOT ANY predicate NULL for every row.
	if exclude == nil {
		exclude = []int64{}
	}

	q := &model.Question{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, exam, topic, question, a, b, c, d, correct, explanation
		 FROM mcq
		 WHERE exam = $1 AND topic = $2 AND NOT (id = ANY($3::bigint[]))
		 ORDER BY random()
		 LIMIT 1`, exam, topic, exclude,
	).Scan(&q.ID, &q.Exam, &q.Topic, &q.Text, &q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD, &q.Correct, &q.Explanation)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return q, nil
}
