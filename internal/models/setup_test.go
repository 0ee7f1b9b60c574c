package models

import (
	"errors"
	"strings"
	"testing"
)

func validSetup() SessionSetupRequest {
	return SessionSetupRequest{
		Title:           "Backend practice run",
		Mode:            ModeText,
		JobRole:         "Backend Engineer",
		Difficulty:      DifficultyMid,
		DurationMinutes: 30,
		TotalQuestions:  5,
		QuestionTypes:   []string{QuestionTechnical, QuestionBehavioral},
	}
}

func TestSetupValidate_Valid(t *testing.T) {
	if err := validSetup().Validate(); err != nil {
		t.Fatalf("expected valid setup, got %v", err)
	}
}

func TestSetupValidate_EmptyModeDefaults(t *testing.T) {
	req := validSetup()
	req.Mode = ""
	if err := req.Validate(); err != nil {
		t.Fatalf("empty mode should be accepted, got %v", err)
	}
}

func TestSetupValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SessionSetupRequest)
		field  string
	}{
		{"missing title", func(r *SessionSetupRequest) { r.Title = "  " }, "title"},
		{"title too long", func(r *SessionSetupRequest) { r.Title = strings.Repeat("x", 101) }, "title"},
		{"bad mode", func(r *SessionSetupRequest) { r.Mode = "video" }, "mode"},
		{"missing job role", func(r *SessionSetupRequest) { r.JobRole = "" }, "jobRole"},
		{"bad difficulty", func(r *SessionSetupRequest) { r.Difficulty = "impossible" }, "difficulty"},
		{"bad duration", func(r *SessionSetupRequest) { r.DurationMinutes = 20 }, "duration"},
		{"zero questions", func(r *SessionSetupRequest) { r.TotalQuestions = 0 }, "totalQuestions"},
		{"no question types", func(r *SessionSetupRequest) { r.QuestionTypes = nil }, "questionTypes"},
		{"unknown question type", func(r *SessionSetupRequest) { r.QuestionTypes = []string{"riddles"} }, "questionTypes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validSetup()
			tt.mutate(&req)

			err := req.Validate()
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if vErr.Field != tt.field {
				t.Fatalf("expected field %s, got %s", tt.field, vErr.Field)
			}
		})
	}
}

func TestStringListRoundTrip(t *testing.T) {
	list := StringList{"a", "b"}
	value, err := list.Value()
	if err != nil {
		t.Fatalf("Value returned error: %v", err)
	}

	var scanned StringList
	if err := scanned.Scan(value); err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(scanned) != 2 || scanned[0] != "a" || scanned[1] != "b" {
		t.Fatalf("unexpected scanned list: %#v", scanned)
	}
}

func TestStringListNil(t *testing.T) {
	var list StringList
	value, err := list.Value()
	if err != nil {
		t.Fatalf("Value returned error: %v", err)
	}
	if value != "[]" {
		t.Fatalf("expected empty JSON array, got %v", value)
	}
}
