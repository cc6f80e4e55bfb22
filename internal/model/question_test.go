package model

import (
	"errors"
	"testing"
)

func TestParseOptionLabel(t *testing.T) {
	tests := []struct {
		raw     string
		want    OptionLabel
		wantErr bool
	}{
		{"A", OptionA, false},
		{" c ", OptionC, false},
		{"d", OptionD, false},
		{"none", NoAnswer, false},
		{"E", "", true},
		{"", "", true},
		{"AB", "", true},
	}

	for _, tt := range tests {
		got, err := ParseOptionLabel(tt.raw)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidOption) {
				t.Errorf("ParseOptionLabel(%q) error = %v, want ErrInvalidOption", tt.raw, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseOptionLabel(%q) = (%q, %v), want %q", tt.raw, got, err, tt.want)
		}
	}
}

func TestQuestionOptionAndPublic(t *testing.T) {
	q := &Question{
		ID:      3,
		Text:    "Pick one",
		OptionA: "alpha",
		OptionB: "beta",
		OptionC: "gamma",
		OptionD: "delta",
		Correct: OptionC,
	}

	if got := q.Option(OptionB); got != "beta" {
		t.Fatalf("Option(B) = %q", got)
	}
	if got := q.Option(NoAnswer); got != "" {
		t.Fatalf("Option(NONE) = %q, want empty", got)
	}

	pub := q.Public()
	if pub.ID != 3 || pub.Text != "Pick one" || len(pub.Options) != 4 || pub.Options[3].Text != "delta" {
		t.Fatalf("Public() = %+v", pub)
	}
}

func TestNormalizeComposesText(t *testing.T) {
	// "e" followed by a combining acute accent composes to a single rune.
	if got := Normalize("cafe\u0301"); got != "caf\u00e9" {
		t.Fatalf("Normalize = %q, want composed form", got)
	}
	// Full-width digits fold to ASCII under NFKC.
	if got := Normalize("\uff11\uff12"); got != "12" {
		t.Fatalf("Normalize = %q, want 12", got)
	}
}

func TestNewAttemptSnapshotsQuestion(t *testing.T) {
	q := &Question{ID: 8, Text: "Q", OptionA: "yes", OptionB: "no", Correct: OptionA, Explanation: "because"}

	a := NewAttempt(2, q, OptionB)
	if a.Position != 2 || a.QuestionID != 8 || a.ChosenText != "no" || a.CorrectText != "yes" || a.Explanation != "because" {
		t.Fatalf("attempt = %+v", a)
	}
	if a.IsCorrect() {
		t.Fatalf("B against key A should be wrong")
	}
}
