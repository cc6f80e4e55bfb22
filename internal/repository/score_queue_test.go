package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/mcq-engine/internal/config"
	"github.com/stemsi/mcq-engine/internal/model"
)

func TestQueuedScoreRepositoryInsertEnqueues(t *testing.T) {
	mr, rdb := newTestRedis(t)
	store := NewMemoryScoreRepository()
	repo := NewQueuedScoreRepository(store, rdb)
	ctx := context.Background()

	rec := model.ScoreRecord{
		ID:          uuid.New(),
		UserID:      7,
		Exam:        "E",
		Topic:       "T",
		Score:       3,
		Total:       5,
		CompletedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	if err := repo.Insert(ctx, &rec); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	queued, err := mr.List(config.WorkerKey.PersistScoresQueue)
	if err != nil || len(queued) != 1 {
		t.Fatalf("queue = (%v, %v), want one record", queued, err)
	}
	var got model.ScoreRecord
	if err := json.Unmarshal([]byte(queued[0]), &got); err != nil {
		t.Fatalf("queued payload: %v", err)
	}
	if got.ID != rec.ID || got.Score != 3 || !got.CompletedAt.Equal(rec.CompletedAt) {
		t.Fatalf("queued record = %+v, want %+v", got, rec)
	}

	// Not visible until the worker flushes it.
	if recent, _ := repo.RecentByUser(ctx, 7, 5); len(recent) != 0 {
		t.Fatalf("RecentByUser before flush = %v", recent)
	}
}

func TestQueuedScoreRepositoryReadsFromStore(t *testing.T) {
	_, rdb := newTestRedis(t)
	store := NewMemoryScoreRepository()
	repo := NewQueuedScoreRepository(store, rdb)
	ctx := context.Background()

	rec := model.ScoreRecord{ID: uuid.New(), UserID: 7, Exam: "E", Topic: "T", Score: 4, Total: 5, CompletedAt: time.Now()}
	if err := store.Insert(ctx, &rec); err != nil {
		t.Fatal(err)
	}

	best, err := repo.BestScoresByUser(ctx, "E", "T")
	if err != nil || len(best) != 1 || best[0].BestScore != 4 {
		t.Fatalf("BestScoresByUser = (%+v, %v)", best, err)
	}
	recent, err := repo.RecentByUser(ctx, 7, 5)
	if err != nil || len(recent) != 1 || recent[0].ID != rec.ID {
		t.Fatalf("RecentByUser = (%+v, %v)", recent, err)
	}
}
