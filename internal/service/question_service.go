package service

import (
	"context"
	"strings"
)

// QuestionService exposes the exam/topic catalog of the question pool.
type QuestionService struct {
	questions QuestionRepository
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(questions QuestionRepository) *QuestionService {
	return &QuestionService{questions: questions}
}

// ListExams returns every exam that has at least one question.
func (s *QuestionService) ListExams(ctx context.Context) ([]string, error) {
	exams, err := s.questions.ListExams(ctx)
	if err != nil {
		return nil, storageFailure("list exams", err)
	}
	if exams == nil {
		exams = []string{}
	}
	return exams, nil
}

// ListTopics returns the topics of an exam. An unknown exam is reported
// as ErrInvalidExam.
func (s *QuestionService) ListTopics(ctx context.Context, exam string) ([]string, error) {
	topics, err := s.questions.ListTopics(ctx, strings.TrimSpace(exam))
	if err != nil {
		return nil, storageFailure("list topics", err)
	}
	if len(topics) == 0 {
		return nil, ErrInvalidExam
	}
	return topics, nil
}
