package model

import (
	"errors"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrInvalidOption is returned when an answer label is not A-D or NONE.
var ErrInvalidOption = errors.New("invalid option label")

// OptionLabel identifies one of the four answer options of a question.
type OptionLabel string

const (
	OptionA OptionLabel = "A"
	OptionB OptionLabel = "B"
	OptionC OptionLabel = "C"
	OptionD OptionLabel = "D"

	// NoAnswer is recorded when a question timed out or was skipped.
	NoAnswer OptionLabel = "NONE"
)

// OptionLabels lists the answerable labels in display order.
var OptionLabels = []OptionLabel{OptionA, OptionB, OptionC, OptionD}

// ParseOptionLabel normalises user input ("a", " B ") into an OptionLabel.
func ParseOptionLabel(raw string) (OptionLabel, error) {
	label := OptionLabel(strings.ToUpper(strings.TrimSpace(raw)))
	switch label {
	case OptionA, OptionB, OptionC, OptionD, NoAnswer:
		return label, nil
	}
	return "", ErrInvalidOption
}

// Question is a single multiple-choice question of an exam topic.
// Questions are owned by the question repository and never mutated.
type Question struct {
	ID          int64       `json:"id"`
	Exam        string      `json:"exam"`
	Topic       string      `json:"topic"`
	Text        string      `json:"question"`
	OptionA     string      `json:"a"`
	OptionB     string      `json:"b"`
	OptionC     string      `json:"c"`
	OptionD     string      `json:"d"`
	Correct     OptionLabel `json:"correct"`
	Explanation string      `json:"explanation"`
}

// Option returns the display text of the option with the given label.
// NoAnswer and unknown labels yield an empty string.
func (q *Question) Option(label OptionLabel) string {
	switch label {
	case OptionA:
		return Normalize(q.OptionA)
	case OptionB:
		return Normalize(q.OptionB)
	case OptionC:
		return Normalize(q.OptionC)
	case OptionD:
		return Normalize(q.OptionD)
	}
	return ""
}

// Public strips the answer key so the question can be shown to a user.
func (q *Question) Public() PublicQuestion {
	options := make([]PublicOption, 0, len(OptionLabels))
	for _, label := range OptionLabels {
		options = append(options, PublicOption{Label: label, Text: q.Option(label)})
	}
	return PublicQuestion{
		ID:      q.ID,
		Text:    Normalize(q.Text),
		Options: options,
	}
}

// PublicOption is a labelled answer option.
type PublicOption struct {
	Label OptionLabel `json:"label"`
	Text  string      `json:"text"`
}

// PublicQuestion is a question without its correct label and explanation.
type PublicQuestion struct {
	ID      int64          `json:"id"`
	Text    string         `json:"question"`
	Options []PublicOption `json:"options"`
}

// Normalize applies NFKC normalization so that imported texts in
// Devanagari and other scripts render consistently.
func Normalize(s string) string {
	return norm.NFKC.String(s)
}
