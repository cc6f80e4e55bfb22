package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stemsi/mcq-engine/internal/model"
)

// SQLiteStore keeps the question bank and the scores in one SQLite file,
// for single-process deployments without PostgreSQL or Redis.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens path, creating the mcq and scores tables if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		path = "mcq.db"
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure sqlite: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	return store, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS mcq (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			exam TEXT NOT NULL,
			topic TEXT NOT NULL,
			question TEXT NOT NULL,
			a TEXT NOT NULL,
			b TEXT NOT NULL,
			c TEXT NOT NULL,
			d TEXT NOT NULL,
			correct TEXT NOT NULL CHECK (correct IN ('A', 'B', 'C', 'D')),
			explanation TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS scores (
			id TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			exam TEXT NOT NULL,
			topic TEXT NOT NULL,
			score INTEGER NOT NULL,
			total INTEGER NOT NULL,
			completed_at_ns INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_mcq_exam_topic ON mcq(exam, topic);`,
		`CREATE INDEX IF NOT EXISTS idx_scores_exam_topic ON scores(exam, topic, user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_scores_user_completed ON scores(user_id, completed_at_ns DESC);`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// ----------------------------------------------------------------
// Questions
// ----------------------------------------------------------------

// AddQuestions inserts questions in one transaction and returns how many
// were stored. Ids are assigned by SQLite.
func (s *SQLiteStore) AddQuestions(ctx context.Context, questions []model.Question) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO mcq (exam, topic, question, a, b, c, d, correct, explanation)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, q := range questions {
		if _, err := stmt.ExecContext(ctx,
			q.Exam, q.Topic, q.Text, q.OptionA, q.OptionB, q.OptionC, q.OptionD, string(q.Correct), q.Explanation,
		); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(questions), nil
}

// DeleteExam removes every question of exam.
func (s *SQLiteStore) DeleteExam(ctx context.Context, exam string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM mcq WHERE exam = ?`, exam)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListExams returns the distinct exam names, alphabetically.
func (s *SQLiteStore) ListExams(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, `SELECT DISTINCT exam FROM mcq ORDER BY exam`)
}

// ListTopics returns the distinct topics of an exam, alphabetically.
func (s *SQLiteStore) ListTopics(ctx context.Context, exam string) ([]string, error) {
	return s.distinct(ctx, `SELECT DISTINCT topic FROM mcq WHERE exam = ? ORDER BY topic`, exam)
}

func (s *SQLiteStore) distinct(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
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
func (s *SQLiteStore) CountQuestions(ctx context.Context, exam, topic string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM mcq WHERE exam = ? AND topic = ?`, exam, topic,
	).Scan(&n)
	return n, err
}

// SampleOne picks a random question of exam/topic outside exclude.
// It returns nil, nil when none is left.
func (s *SQLiteStore) SampleOne(ctx context.Context, exam, topic string, exclude []int64) (*model.Question, error) {
	query := `SELECT id, exam, topic, question, a, b, c, d, correct, explanation
		FROM mcq WHERE exam = ? AND topic = ?`
	args := make([]any, 0, len(exclude)+2)
	args = append(args, exam, topic)
	if len(exclude) > 0 {
		query += ` AND id NOT IN (?` + strings.Repeat(`, ?`, len(exclude)-1) + `)`
		for _, id := range exclude {
			args = append(args, id)
		}
	}
	query += ` ORDER BY RANDOM() LIMIT 1`

	q := &model.Question{}
	var correct string
	err := s.db.QueryRowContext(ctx, query, args...).
		Scan(&q.ID, &q.Exam, &q.Topic, &q.Text, &q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD, &correct, &q.Explanation)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	q.Correct = model.OptionLabel(correct)
	return q, nil
}

// ----------------------------------------------------------------
// Scores
// ----------------------------------------------------------------

// Insert stores a score record. Replaying a record with the same id is a no-op.
func (s *SQLiteStore) Insert(ctx context.Context, rec *model.ScoreRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO scores (id, user_id, exam, topic, score, total, completed_at_ns)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID.String(), rec.UserID, rec.Exam, rec.Topic, rec.Score, rec.Total, rec.CompletedAt.UnixNano(),
	)
	return err
}

// InsertBatch stores many score records in one transaction.
func (s *SQLiteStore) InsertBatch(ctx context.Context, recs []model.ScoreRecord) error {
	if len(recs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO scores (id, user_id, exam, topic, score, total, completed_at_ns)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range recs {
		if _, err := stmt.ExecContext(ctx,
			rec.ID.String(), rec.UserID, rec.Exam, rec.Topic, rec.Score, rec.Total, rec.CompletedAt.UnixNano(),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// BestScoresByUser returns, per user, the highest score on exam/topic and
// the earliest time it was reached.
func (s *SQLiteStore) BestScoresByUser(ctx context.Context, exam, topic string) ([]model.BestScore, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, score, completed_at_ns FROM (
			SELECT user_id, score, completed_at_ns,
			       ROW_NUMBER() OVER (PARTITION BY user_id ORDER BY score DESC, completed_at_ns ASC) AS rn
			FROM scores
			WHERE exam = ? AND topic = ?
		 ) WHERE rn = 1
		 ORDER BY user_id`, exam, topic,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var best []model.BestScore
	for rows.Next() {
		var b model.BestScore
		var at int64
		if err := rows.Scan(&b.UserID, &b.BestScore, &at); err != nil {
			return nil, err
		}
		b.EarliestAt = time.Unix(0, at).UTC()
		best = append(best, b)
	}
	return best, rows.Err()
}

// RecentByUser returns the user's latest records, newest first.
func (s *SQLiteStore) RecentByUser(ctx context.Context, userID int64, limit int) ([]model.ScoreRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, exam, topic, score, total, completed_at_ns
		 FROM scores
		 WHERE user_id = ?
		 ORDER BY completed_at_ns DESC
		 LIMIT ?`, userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.ScoreRecord
	for rows.Next() {
		var rec model.ScoreRecord
		var id string
		var at int64
		if err := rows.Scan(&id, &rec.UserID, &rec.Exam, &rec.Topic, &rec.Score, &rec.Total, &at); err != nil {
			return nil, err
		}
		if rec.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("score %q: %w", id, err)
		}
		rec.CompletedAt = time.Unix(0, at).UTC()
		records = append(records, rec)
	}
	return records, rows.Err()
}
