package service

import (
	"context"

	"github.com/stemsi/mcq-engine/internal/model"
)

// Sampler draws the next unseen question of a session's pool.
// It keeps no state between calls; the caller owns the asked set.
type Sampler struct {
	questions QuestionRepository
}

// NewSampler creates a Sampler backed by the given question repository.
func NewSampler(questions QuestionRepository) *Sampler {
	return &Sampler{questions: questions}
}

// Next returns a random question of exam/topic not contained in asked.
// It returns ErrExhausted when every question has been asked.
func (s *Sampler) Next(ctx context.Context, exam, topic string, asked []int64) (*model.Question, error) {
	q, err := s.questions.SampleOne(ctx, exam, topic, asked)
	if err != nil {
		return nil, storageFailure("sample question", err)
	}
	if q == nil {
		return nil, ErrExhausted
	}
	return q, nil
}
