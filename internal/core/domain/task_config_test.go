package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecodeTaskConfig_SelectsVariant(t *testing.T) {
	cfg, err := DecodeTaskConfig(TaskTypeQuiz, json.RawMessage(`{
		"questions": [{"text":"How do you feel?","options":["good","bad"],"correct_index":0}]
	}`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	quiz, ok := cfg.(*QuizConfig)
	if !ok {
		t.Fatalf("expected *QuizConfig, got %T", cfg)
	}
	if len(quiz.Questions) != 1 || quiz.Questions[0].Text != "How do you feel?" {
		t.Fatalf("payload not decoded: %+v", quiz)
	}

	cfg, err = DecodeTaskConfig(TaskTypeScale, json.RawMessage(`{"min":0,"max":10,"min_label":"calm"}`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if _, ok := cfg.(*ScaleConfig); !ok {
		t.Fatalf("expected *ScaleConfig, got %T", cfg)
	}
}

func TestDecodeTaskConfig_UnknownTag(t *testing.T) {
	_, err := DecodeTaskConfig("hologram", nil)
	if !errors.Is(err, ErrUnknownTaskType) {
		t.Fatalf("expected ErrUnknownTaskType, got %v", err)
	}
}

func TestDecodeTaskConfig_ValidationFailures(t *testing.T) {
	cases := []struct {
		name string
		typ  TaskType
		raw  string
	}{
		{"timer without duration", TaskTypeTimer, `{}`},
		{"quiz with one option", TaskTypeQuiz, `{"questions":[{"text":"q","options":["only"],"correct_index":0}]}`},
		{"quiz correct index out of range", TaskTypeQuiz, `{"questions":[{"text":"q","options":["a","b"],"correct_index":5}]}`},
		{"media with bad kind", TaskTypeMedia, `{"kind":"smell","url":"http://x"}`},
		{"scale with min above max", TaskTypeScale, `{"min":5,"max":1}`},
		{"state log with one state", TaskTypeStateLog, `{"states":["fine"]}`},
		{"evidence without instructions", TaskTypeEvidence, `{}`},
	}
	for _, tc := range cases {
		if _, err := DecodeTaskConfig(tc.typ, json.RawMessage(tc.raw)); !errors.Is(err, ErrInvalidTaskConfig) {
			t.Fatalf("%s: expected ErrInvalidTaskConfig, got %v", tc.name, err)
		}
	}
}

func TestInviteEmailAllowed(t *testing.T) {
	inv := &Invite{RestrictedEmail: "Doc@Clinic.Test"}
	if !inv.EmailAllowed("doc@clinic.test") {
		t.Fatalf("case-insensitive match should pass")
	}
	if inv.EmailAllowed("other@clinic.test") {
		t.Fatalf("mismatch should fail")
	}
	if !inv.EmailAllowed("") {
		t.Fatalf("missing caller email skips the restriction")
	}
	if !(&Invite{}).EmailAllowed("anyone@x.test") {
		t.Fatalf("unrestricted invite admits anyone")
	}
}
