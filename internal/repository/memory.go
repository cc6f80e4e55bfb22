package repository

import (
	"context"
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/stemsi/mcq-engine/internal/model"
)

// MemoryQuestionRepository is an in-process question pool.
type MemoryQuestionRepository struct {
	mu        sync.RWMutex
	questions []model.Question
	nextID    int64
	rng       *rand.Rand
}

// NewMemoryQuestionRepository creates an empty pool. A nil rng uses a
// randomly seeded generator.
func NewMemoryQuestionRepository(rng *rand.Rand) *MemoryQuestionRepository {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &MemoryQuestionRepository{rng: rng, nextID: 1}
}

// Add stores questions, assigning ids to those without one, and returns
// the stored copies.
func (r *MemoryQuestionRepository) Add(questions ...model.Question) []model.Question {
	r.mu.Lock()
	defer r.mu.Unlock()

	added := make([]model.Question, 0, len(questions))
	for _, q := range questions {
		if q.ID == 0 {
			q.ID = r.nextID
		}
		if q.ID >= r.nextID {
			r.nextID = q.ID + 1
		}
		r.questions = append(r.questions, q)
		added = append(added, q)
	}
	return added
}

// Delete removes a question by id.
func (r *MemoryQuestionRepository) Delete(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.questions[:0]
	for _, q := range r.questions {
		if q.ID != id {
			kept = append(kept, q)
		}
	}
	r.questions = kept
}

func (r *MemoryQuestionRepository) ListExams(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, q := range r.questions {
		seen[q.Exam] = struct{}{}
	}
	return sortedKeys(seen), nil
}

func (r *MemoryQuestionRepository) ListTopics(_ context.Context, exam string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, q := range r.questions {
		if q.Exam == exam {
			seen[q.Topic] = struct{}{}
		}
	}
	return sortedKeys(seen), nil
}

func (r *MemoryQuestionRepository) CountQuestions(_ context.Context, exam, topic string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, q := range r.questions {
		if q.Exam == exam && q.Topic == topic {
			n++
		}
	}
	return n, nil
}

func (r *MemoryQuestionRepository) SampleOne(_ context.Context, exam, topic string, exclude []int64) (*model.Question, error) {
	excluded := make(map[int64]struct{}, len(exclude))
	for _, id := range exclude {
		excluded[id] = struct{}{}
	}

	// The write lock also guards rng, which is not safe for concurrent use.
	r.mu.Lock()
	defer r.mu.Unlock()

	var eligible []int
	for i, q := range r.questions {
		if q.Exam != exam || q.Topic != topic {
			continue
		}
		if _, skip := excluded[q.ID]; skip {
			continue
		}
		eligible = append(eligible, i)
	}
	if len(eligible) == 0 {
		return nil, nil
	}

	q := r.questions[eligible[r.rng.IntN(len(eligible))]]
	return &q, nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MemoryScoreRepository is an in-process score store.
type MemoryScoreRepository struct {
	mu      sync.RWMutex
	records []model.ScoreRecord
}

// NewMemoryScoreRepository creates an empty score store.
func NewMemoryScoreRepository() *MemoryScoreRepository {
	return &MemoryScoreRepository{}
}

func (r *MemoryScoreRepository) Insert(_ context.Context, rec *model.ScoreRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.records {
		if existing.ID == rec.ID {
			return nil
		}
	}
	r.records = append(r.records, *rec)
	return nil
}

// All returns a copy of every stored record in insertion order.
func (r *MemoryScoreRepository) All() []model.ScoreRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.ScoreRecord, len(r.records))
	copy(out, r.records)
	return out
}

func (r *MemoryScoreRepository) BestScoresByUser(_ context.Context, exam, topic string) ([]model.BestScore, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byUser := make(map[int64]*model.BestScore)
	var order []int64
	for _, rec := range r.records {
		if rec.Exam != exam || rec.Topic != topic {
			continue
		}
		b, ok := byUser[rec.UserID]
		switch {
		case !ok:
			byUser[rec.UserID] = &model.BestScore{UserID: rec.UserID, BestScore: rec.Score, EarliestAt: rec.CompletedAt}
			order = append(order, rec.UserID)
		case rec.Score > b.BestScore:
			b.BestScore = rec.Score
			b.EarliestAt = rec.CompletedAt
		case rec.Score == b.BestScore && rec.CompletedAt.Before(b.EarliestAt):
			b.EarliestAt = rec.CompletedAt
		}
	}

	best := make([]model.BestScore, 0, len(order))
	for _, id := range order {
		best = append(best, *byUser[id])
	}
	return best, nil
}

func (r *MemoryScoreRepository) RecentByUser(_ context.Context, userID int64, limit int) ([]model.ScoreRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var mine []model.ScoreRecord
	for i := len(r.records) - 1; i >= 0; i-- {
		if r.records[i].UserID == userID {
			mine = append(mine, r.records[i])
		}
	}
	sort.SliceStable(mine, func(i, j int) bool {
		return mine[i].CompletedAt.After(mine[j].CompletedAt)
	})
	if limit > 0 && len(mine) > limit {
		mine = mine[:limit]
	}
	return mine, nil
}
