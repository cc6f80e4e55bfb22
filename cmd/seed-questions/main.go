package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stemsi/mcq-engine/internal/config"
	"github.com/stemsi/mcq-engine/internal/database"
	"github.com/stemsi/mcq-engine/internal/logger"
	"github.com/stemsi/mcq-engine/internal/model"
	"github.com/stemsi/mcq-engine/internal/repository"
)

// seed-questions loads a small demo pool so a fresh database can be
// exercised end to end. Real pools arrive through the spreadsheet import.
func main() {
	var reset bool
	flag.BoolVar(&reset, "reset", false, "Delete the demo exam before seeding")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	questions := demoQuestions()
	exam := questions[0].Exam

	fmt.Printf("=== Seeding %d questions into %q (%s) ===\n", len(questions), exam, cfg.StorageDriver)

	var added int
	var err error
	if cfg.StorageDriver == config.StorageSQLite {
		added, err = seedSQLite(ctx, cfg, questions, reset)
	} else {
		added, err = seedPostgres(ctx, cfg, log, questions, reset)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Seeding failed")
	}
	if added == 0 {
		fmt.Println("Exam already has questions, nothing to do (use -reset to reseed)")
		return
	}

	fmt.Printf("\nSeed completed! Added %d/%d questions.\n", added, len(questions))
}

func seedPostgres(ctx context.Context, cfg *config.Config, log zerolog.Logger, questions []model.Question, reset bool) (int, error) {
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		return 0, err
	}
	defer pool.Close()

	exam := questions[0].Exam
	if reset {
		tag, err := pool.Exec(ctx, `DELETE FROM mcq WHERE exam = $1`, exam)
		if err != nil {
			return 0, fmt.Errorf("clear demo exam: %w", err)
		}
		fmt.Printf("Removed %d existing questions\n", tag.RowsAffected())
	}

	var existing int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM mcq WHERE exam = $1`, exam).Scan(&existing); err != nil {
		return 0, fmt.Errorf("count existing questions: %w", err)
	}
	if existing > 0 {
		return 0, nil
	}

	rows := make([][]any, 0, len(questions))
	for _, q := range questions {
		rows = append(rows, []any{q.Exam, q.Topic, q.Text, q.OptionA, q.OptionB, q.OptionC, q.OptionD, string(q.Correct), q.Explanation})
	}

	n, err := pool.CopyFrom(ctx,
		pgx.Identifier{"mcq"},
		[]string{"exam", "topic", "question", "a", "b", "c", "d", "correct", "explanation"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, fmt.Errorf("copy questions: %w", err)
	}
	return int(n), nil
}

func seedSQLite(ctx context.Context, cfg *config.Config, questions []model.Question, reset bool) (int, error) {
	store, err := repository.NewSQLiteStore(cfg.SQLitePath)
	if err != nil {
		return 0, err
	}
	defer store.Close()

	exam := questions[0].Exam
	if reset {
		removed, err := store.DeleteExam(ctx, exam)
		if err != nil {
			return 0, fmt.Errorf("clear demo exam: %w", err)
		}
		fmt.Printf("Removed %d existing questions\n", removed)
	}

	topics, err := store.ListTopics(ctx, exam)
	if err != nil {
		return 0, fmt.Errorf("list existing topics: %w", err)
	}
	if len(topics) > 0 {
		return 0, nil
	}
	return store.AddQuestions(ctx, questions)
}

func demoQuestions() []model.Question {
	const exam = "General Knowledge"
	return []model.Question{
		{Exam: exam, Topic: "Geography", Text: "What is the capital of Australia?",
			OptionA: "Sydney", OptionB: "Canberra", OptionC: "Melbourne", OptionD: "Perth",
			Correct: model.OptionB, Explanation: "Canberra was purpose-built as the capital in 1913."},
		{Exam: exam, Topic: "Geography", Text: "Which river flows through Cairo?",
			OptionA: "Nile", OptionB: "Tigris", OptionC: "Congo", OptionD: "Niger",
			Correct: model.OptionA, Explanation: "Cairo lies on the banks of the Nile."},
		{Exam: exam, Topic: "Geography", Text: "Mount Kilimanjaro is located in which country?",
			OptionA: "Kenya", OptionB: "Uganda", OptionC: "Tanzania", OptionD: "Ethiopia",
			Correct: model.OptionC, Explanation: "Kilimanjaro is in north-eastern Tanzania."},
		{Exam: exam, Topic: "Science", Text: "What is the chemical symbol for sodium?",
			OptionA: "S", OptionB: "So", OptionC: "Sd", OptionD: "Na",
			Correct: model.OptionD, Explanation: "Na comes from the Latin natrium."},
		{Exam: exam, Topic: "Science", Text: "Which planet is known as the Red Planet?",
			OptionA: "Mars", OptionB: "Venus", OptionC: "Jupiter", OptionD: "Mercury",
			Correct: model.OptionA, Explanation: "Iron oxide on its surface gives Mars its colour."},
		{Exam: exam, Topic: "Science", Text: "What gas do plants absorb for photosynthesis?",
			OptionA: "Oxygen", OptionB: "Nitrogen", OptionC: "Carbon dioxide", OptionD: "Hydrogen",
			Correct: model.OptionC, Explanation: "Plants fix carbon dioxide into sugars."},
		{Exam: exam, Topic: "Hindi", Text: "भारत की राजधानी क्या है?",
			OptionA: "मुंबई", OptionB: "नई दिल्ली", OptionC: "कोलकाता", OptionD: "चेन्नई",
			Correct: model.OptionB, Explanation: "नई दिल्ली भारत की राजधानी है।"},
	}
}
