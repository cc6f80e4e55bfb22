package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/mcq-engine/internal/model"
	"github.com/stemsi/mcq-engine/internal/repository"
)

func newTestStore() *SessionStore {
	return NewSessionStore(
		repository.NewMemoryQuestionRepository(nil),
		repository.NewMemoryScoreRepository(),
		zerolog.Nop(),
	)
}

func TestSessionStoreGetCreatesOnce(t *testing.T) {
	store := newTestStore()

	s := store.Get(1)
	if s.UserID() != 1 || s.Status() != model.SessionStatusAwaitingExam {
		t.Fatalf("new session = user %d status %s", s.UserID(), s.Status())
	}
	if store.Get(1) != s {
		t.Fatalf("Get returned a different session for the same user")
	}
	if store.Get(2) == s {
		t.Fatalf("users must not share sessions")
	}
	if store.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", store.Len())
	}
}

func TestSessionStoreConcurrentGet(t *testing.T) {
	store := newTestStore()

	const workers = 32
	got := make([]*QuizSession, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = store.Get(7)
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		if got[i] != got[0] {
			t.Fatalf("worker %d got a different session", i)
		}
	}
	if store.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", store.Len())
	}
}

func TestSessionStoreReplace(t *testing.T) {
	f := newQuizFixture(t, pool("E", "T", 2)...)
	old := f.startQuiz(t, 5, "E", "T")

	fresh := f.store.Replace(5)
	if fresh == old {
		t.Fatalf("Replace returned the old session")
	}
	if f.store.Get(5) != fresh {
		t.Fatalf("Get after Replace did not return the fresh session")
	}
	if v := fresh.View(); v.Status != model.SessionStatusAwaitingExam || v.Exam != "" {
		t.Fatalf("fresh session view = %+v", v)
	}

	// The discarded session keeps its own state; nothing is merged.
	if old.Status() != model.SessionStatusInProgress {
		t.Fatalf("old session status = %s", old.Status())
	}
	if _, err := fresh.SubmitAnswer(context.Background(), model.OptionA); err != ErrNoActiveQuestion {
		t.Fatalf("SubmitAnswer on fresh session error = %v, want ErrNoActiveQuestion", err)
	}
}

func TestSessionStorePruneIdle(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	store := NewSessionStore(
		repository.NewMemoryQuestionRepository(nil),
		repository.NewMemoryScoreRepository(),
		zerolog.Nop(),
		WithClock(func() time.Time { return now }),
	)

	stale := store.Get(1)
	store.Get(2)

	now = now.Add(90 * time.Minute)
	store.Get(2)

	now = now.Add(45 * time.Minute)
	if n := store.PruneIdle(2 * time.Hour); n != 1 {
		t.Fatalf("PruneIdle = %d, want 1", n)
	}
	if store.Len() != 1 {
		t.Fatalf("Len() after prune = %d, want 1", store.Len())
	}
	if store.Get(1) == stale {
		t.Fatalf("Get after prune returned the dropped session")
	}

	if n := store.PruneIdle(0); n != 0 {
		t.Fatalf("PruneIdle(0) = %d, want 0", n)
	}
}

func TestSessionStoreReplaceRefreshesIdleClock(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	store := NewSessionStore(
		repository.NewMemoryQuestionRepository(nil),
		repository.NewMemoryScoreRepository(),
		zerolog.Nop(),
		WithClock(func() time.Time { return now }),
	)

	store.Get(4)
	now = now.Add(3 * time.Hour)
	fresh := store.Replace(4)

	if n := store.PruneIdle(time.Hour); n != 0 {
		t.Fatalf("PruneIdle = %d, want 0", n)
	}
	if store.Get(4) != fresh {
		t.Fatalf("replaced session was dropped")
	}
}

func TestSessionStoreRunPrunerStops(t *testing.T) {
	store := newTestStore()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		store.RunPruner(ctx, time.Hour, time.Millisecond)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunPruner did not return after cancel")
	}
}
