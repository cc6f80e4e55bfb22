package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stemsi/mcq-engine/internal/repository"
)

func TestQuestionServiceCatalog(t *testing.T) {
	repo := repository.NewMemoryQuestionRepository(nil)
	repo.Add(append(pool("Physics", "Optics", 2), pool("Chemistry", "Acids", 1)...)...)
	svc := NewQuestionService(repo)
	ctx := context.Background()

	exams, err := svc.ListExams(ctx)
	if err != nil {
		t.Fatalf("ListExams error: %v", err)
	}
	if len(exams) != 2 || exams[0] != "Chemistry" || exams[1] != "Physics" {
		t.Fatalf("ListExams = %v", exams)
	}

	topics, err := svc.ListTopics(ctx, " Physics ")
	if err != nil {
		t.Fatalf("ListTopics error: %v", err)
	}
	if len(topics) != 1 || topics[0] != "Optics" {
		t.Fatalf("ListTopics = %v", topics)
	}

	if _, err := svc.ListTopics(ctx, "Biology"); !errors.Is(err, ErrInvalidExam) {
		t.Fatalf("ListTopics(Biology) error = %v, want ErrInvalidExam", err)
	}
}

func TestQuestionServiceEmptyAndFailing(t *testing.T) {
	exams, err := NewQuestionService(repository.NewMemoryQuestionRepository(nil)).ListExams(context.Background())
	if err != nil || exams == nil || len(exams) != 0 {
		t.Fatalf("ListExams on empty pool = (%#v, %v), want empty slice", exams, err)
	}

	failing := NewQuestionService(&failingQuestions{err: errors.New("down")})
	if _, err := failing.ListExams(context.Background()); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("ListExams error = %v, want ErrStorageUnavailable", err)
	}
}
