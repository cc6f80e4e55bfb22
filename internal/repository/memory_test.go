package repository

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/mcq-engine/internal/model"
)

func TestMemoryQuestionRepositorySampleOneExcludes(t *testing.T) {
	repo := NewMemoryQuestionRepository(rand.New(rand.NewPCG(3, 4)))
	added := repo.Add(
		model.Question{Exam: "E", Topic: "T", Text: "one"},
		model.Question{Exam: "E", Topic: "T", Text: "two"},
		model.Question{Exam: "E", Topic: "U", Text: "three"},
	)
	ctx := context.Background()

	if added[0].ID != 1 || added[2].ID != 3 {
		t.Fatalf("assigned ids = %d..%d, want 1..3", added[0].ID, added[2].ID)
	}

	for i := 0; i < 20; i++ {
		q, err := repo.SampleOne(ctx, "E", "T", []int64{added[0].ID})
		if err != nil {
			t.Fatalf("SampleOne error: %v", err)
		}
		if q == nil || q.ID != added[1].ID {
			t.Fatalf("SampleOne = %+v, want question %d", q, added[1].ID)
		}
	}

	q, err := repo.SampleOne(ctx, "E", "T", []int64{added[0].ID, added[1].ID})
	if err != nil || q != nil {
		t.Fatalf("SampleOne on exhausted pool = (%+v, %v), want (nil, nil)", q, err)
	}

	if n, _ := repo.CountQuestions(ctx, "E", "T"); n != 2 {
		t.Fatalf("CountQuestions = %d, want 2", n)
	}

	repo.Delete(added[1].ID)
	if n, _ := repo.CountQuestions(ctx, "E", "T"); n != 1 {
		t.Fatalf("CountQuestions after Delete = %d, want 1", n)
	}
}

func TestMemoryQuestionRepositoryKeepsExplicitIDs(t *testing.T) {
	repo := NewMemoryQuestionRepository(nil)
	repo.Add(model.Question{ID: 10, Exam: "E", Topic: "T"})
	next := repo.Add(model.Question{Exam: "E", Topic: "T"})

	if next[0].ID != 11 {
		t.Fatalf("id after explicit 10 = %d, want 11", next[0].ID)
	}

	topics, _ := repo.ListTopics(context.Background(), "E")
	if len(topics) != 1 || topics[0] != "T" {
		t.Fatalf("ListTopics = %v", topics)
	}
}

func TestMemoryScoreRepositoryQueries(t *testing.T) {
	repo := NewMemoryScoreRepository()
	ctx := context.Background()
	at := func(h int) time.Time { return time.Date(2026, 2, 1, h, 0, 0, 0, time.UTC) }

	recs := []model.ScoreRecord{
		{UserID: 1, Exam: "E", Topic: "T", Score: 4, Total: 5, CompletedAt: at(1)},
		{UserID: 1, Exam: "E", Topic: "T", Score: 5, Total: 5, CompletedAt: at(3)},
		{UserID: 1, Exam: "E", Topic: "T", Score: 5, Total: 5, CompletedAt: at(2)},
		{UserID: 2, Exam: "E", Topic: "T", Score: 2, Total: 5, CompletedAt: at(4)},
		{UserID: 1, Exam: "F", Topic: "T", Score: 1, Total: 5, CompletedAt: at(5)},
	}
	for i := range recs {
		recs[i].ID = uuid.New()
		if err := repo.Insert(ctx, &recs[i]); err != nil {
			t.Fatalf("Insert error: %v", err)
		}
	}
	// Replays are ignored.
	_ = repo.Insert(ctx, &recs[0])
	if n := len(repo.All()); n != len(recs) {
		t.Fatalf("All() = %d records, want %d", n, len(recs))
	}

	best, _ := repo.BestScoresByUser(ctx, "E", "T")
	if len(best) != 2 {
		t.Fatalf("BestScoresByUser = %+v, want 2 users", best)
	}
	if best[0].UserID != 1 || best[0].BestScore != 5 || !best[0].EarliestAt.Equal(at(2)) {
		t.Fatalf("user 1 best = %+v, want 5 first reached at hour 2", best[0])
	}

	recent, _ := repo.RecentByUser(ctx, 1, 2)
	if len(recent) != 2 || recent[0].Exam != "F" || !recent[1].CompletedAt.Equal(at(3)) {
		t.Fatalf("RecentByUser = %+v", recent)
	}
}
