package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/mcq-engine/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "mcq.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedSQLite(t *testing.T, store *SQLiteStore) {
	t.Helper()

	n, err := store.AddQuestions(context.Background(), []model.Question{
		{Exam: "E", Topic: "T", Text: "one", OptionA: "a", OptionB: "b", OptionC: "c", OptionD: "d", Correct: model.OptionA},
		{Exam: "E", Topic: "T", Text: "two", OptionA: "a", OptionB: "b", OptionC: "c", OptionD: "d", Correct: model.OptionB, Explanation: "why"},
		{Exam: "E", Topic: "U", Text: "three", OptionA: "a", OptionB: "b", OptionC: "c", OptionD: "d", Correct: model.OptionC},
		{Exam: "F", Topic: "V", Text: "four", OptionA: "a", OptionB: "b", OptionC: "c", OptionD: "d", Correct: model.OptionD},
	})
	if err != nil || n != 4 {
		t.Fatalf("AddQuestions = (%d, %v), want 4", n, err)
	}
}

func TestSQLiteStoreCatalog(t *testing.T) {
	store := newTestSQLiteStore(t)
	seedSQLite(t, store)
	ctx := context.Background()

	exams, err := store.ListExams(ctx)
	if err != nil || len(exams) != 2 || exams[0] != "E" || exams[1] != "F" {
		t.Fatalf("ListExams = (%v, %v)", exams, err)
	}

	topics, err := store.ListTopics(ctx, "E")
	if err != nil || len(topics) != 2 || topics[0] != "T" || topics[1] != "U" {
		t.Fatalf("ListTopics = (%v, %v)", topics, err)
	}

	topics, err = store.ListTopics(ctx, "missing")
	if err != nil || len(topics) != 0 {
		t.Fatalf("ListTopics(missing) = (%v, %v), want empty", topics, err)
	}

	n, err := store.CountQuestions(ctx, "E", "T")
	if err != nil || n != 2 {
		t.Fatalf("CountQuestions = (%d, %v), want 2", n, err)
	}
}

func TestSQLiteStoreSampleOneExcludes(t *testing.T) {
	store := newTestSQLiteStore(t)
	seedSQLite(t, store)
	ctx := context.Background()

	first, err := store.SampleOne(ctx, "E", "T", nil)
	if err != nil || first == nil {
		t.Fatalf("SampleOne = (%+v, %v)", first, err)
	}
	if first.Exam != "E" || first.Topic != "T" {
		t.Fatalf("SampleOne outside pool: %+v", first)
	}

	for i := 0; i < 10; i++ {
		second, err := store.SampleOne(ctx, "E", "T", []int64{first.ID})
		if err != nil || second == nil {
			t.Fatalf("SampleOne = (%+v, %v)", second, err)
		}
		if second.ID == first.ID {
			t.Fatalf("SampleOne returned excluded id %d", first.ID)
		}
		if second.Correct != model.OptionA && second.Correct != model.OptionB {
			t.Fatalf("Correct = %q", second.Correct)
		}
	}

	all, err := store.CountQuestions(ctx, "E", "T")
	if err != nil {
		t.Fatal(err)
	}
	exclude := make([]int64, 0, all)
	for len(exclude) < all {
		q, err := store.SampleOne(ctx, "E", "T", exclude)
		if err != nil || q == nil {
			t.Fatalf("SampleOne = (%+v, %v)", q, err)
		}
		exclude = append(exclude, q.ID)
	}
	q, err := store.SampleOne(ctx, "E", "T", exclude)
	if err != nil || q != nil {
		t.Fatalf("SampleOne on exhausted pool = (%+v, %v), want (nil, nil)", q, err)
	}
}

func TestSQLiteStoreDeleteExam(t *testing.T) {
	store := newTestSQLiteStore(t)
	seedSQLite(t, store)
	ctx := context.Background()

	removed, err := store.DeleteExam(ctx, "E")
	if err != nil || removed != 3 {
		t.Fatalf("DeleteExam = (%d, %v), want 3", removed, err)
	}
	exams, _ := store.ListExams(ctx)
	if len(exams) != 1 || exams[0] != "F" {
		t.Fatalf("ListExams after delete = %v", exams)
	}
}

func TestSQLiteStoreScores(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	dup := model.ScoreRecord{ID: uuid.New(), UserID: 1, Exam: "E", Topic: "T", Score: 3, Total: 5, CompletedAt: base}
	if err := store.Insert(ctx, &dup); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := store.Insert(ctx, &dup); err != nil {
		t.Fatalf("replayed Insert failed: %v", err)
	}

	err := store.InsertBatch(ctx, []model.ScoreRecord{
		{ID: uuid.New(), UserID: 1, Exam: "E", Topic: "T", Score: 3, Total: 5, CompletedAt: base.Add(time.Hour)},
		{ID: uuid.New(), UserID: 1, Exam: "E", Topic: "T", Score: 2, Total: 5, CompletedAt: base.Add(2 * time.Hour)},
		{ID: uuid.New(), UserID: 2, Exam: "E", Topic: "T", Score: 4, Total: 5, CompletedAt: base.Add(3 * time.Hour)},
		{ID: uuid.New(), UserID: 2, Exam: "E", Topic: "U", Score: 5, Total: 5, CompletedAt: base.Add(4 * time.Hour)},
		dup,
	})
	if err != nil {
		t.Fatalf("InsertBatch failed: %v", err)
	}

	best, err := store.BestScoresByUser(ctx, "E", "T")
	if err != nil {
		t.Fatalf("BestScoresByUser failed: %v", err)
	}
	if len(best) != 2 {
		t.Fatalf("best = %+v, want 2 users", best)
	}
	if best[0].UserID != 1 || best[0].BestScore != 3 || !best[0].EarliestAt.Equal(base) {
		t.Fatalf("user 1 best = %+v, want 3 at %v", best[0], base)
	}
	if best[1].UserID != 2 || best[1].BestScore != 4 {
		t.Fatalf("user 2 best = %+v, want 4", best[1])
	}

	recent, err := store.RecentByUser(ctx, 1, 2)
	if err != nil {
		t.Fatalf("RecentByUser failed: %v", err)
	}
	if len(recent) != 2 || recent[0].Score != 2 || !recent[1].CompletedAt.Equal(base.Add(time.Hour)) {
		t.Fatalf("recent = %+v", recent)
	}

	all, _ := store.RecentByUser(ctx, 1, 10)
	if len(all) != 3 {
		t.Fatalf("user 1 has %d records, want 3 (replays ignored)", len(all))
	}
	if all[2].ID != dup.ID {
		t.Fatalf("oldest record id = %s, want %s", all[2].ID, dup.ID)
	}
}
