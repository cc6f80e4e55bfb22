package validator

import (
	"testing"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/stemsi/mcq-engine/internal/model"
)

func TestOptionLabelRule(t *testing.T) {
	v := govalidator.New()
	v.SetTagName("binding")
	Register(v)

	if err := v.Struct(model.SubmitAnswerRequest{Label: "b"}); err != nil {
		t.Fatalf("label b rejected: %v", err)
	}
	if err := v.Struct(model.SubmitAnswerRequest{Label: "NONE"}); err != nil {
		t.Fatalf("label NONE rejected: %v", err)
	}

	err := v.Struct(model.SubmitAnswerRequest{Label: "Z"})
	if err == nil {
		t.Fatalf("label Z accepted")
	}
	fields := TranslateErrors(err)
	if fields["label"] != "label must be one of A, B, C or D" {
		t.Fatalf("fields = %v", fields)
	}
}

func TestReviewModeRule(t *testing.T) {
	v := govalidator.New()
	v.SetTagName("binding")
	Register(v)

	if err := v.Struct(model.EnterReviewRequest{Mode: "WRONG_ONLY"}); err != nil {
		t.Fatalf("WRONG_ONLY rejected: %v", err)
	}
	err := v.Struct(model.EnterReviewRequest{Mode: "SOME"})
	if err == nil {
		t.Fatalf("mode SOME accepted")
	}
	if _, ok := TranslateErrors(err)["mode"]; !ok {
		t.Fatalf("mode error missing: %v", TranslateErrors(err))
	}
}
