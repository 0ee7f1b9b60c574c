package models

import "strings"

// ValidationError reports a malformed setup field or inbound message.
type ValidationError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}

var validDurations = map[int]bool{15: true, 30: true, 45: true, 60: true, 90: true}

var validDifficulties = map[string]bool{
	DifficultyEntry:  true,
	DifficultyMid:    true,
	DifficultySenior: true,
	DifficultyExpert: true,
}

var validQuestionTypes = map[string]bool{
	QuestionTechnical:       true,
	QuestionBehavioral:      true,
	QuestionSituational:     true,
	QuestionCompanySpecific: true,
}

// SessionSetupRequest is the setup configuration collected before a session
// is created.
type SessionSetupRequest struct {
	Title              string   `json:"title"`
	Mode               string   `json:"mode"`
	JobRole            string   `json:"jobRole"`
	Company            string   `json:"company,omitempty"`
	Difficulty         string   `json:"difficulty"`
	DurationMinutes    int      `json:"duration"`
	TotalQuestions     int      `json:"totalQuestions"`
	QuestionTypes      []string `json:"questionTypes"`
	CustomInstructions string   `json:"customInstructions,omitempty"`
}

func (r SessionSetupRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if len(r.Title) > 100 {
		return &ValidationError{Field: "title", Message: "title must be at most 100 characters"}
	}
	if r.Mode != "" && r.Mode != ModeText && r.Mode != ModeVoice {
		return &ValidationError{Field: "mode", Message: "mode must be text or voice"}
	}
	if strings.TrimSpace(r.JobRole) == "" {
		return &ValidationError{Field: "jobRole", Message: "job role is required"}
	}
	if !validDifficulties[r.Difficulty] {
		return &ValidationError{Field: "difficulty", Message: "difficulty must be one of entry, mid, senior, expert"}
	}
	if !validDurations[r.DurationMinutes] {
		return &ValidationError{Field: "duration", Message: "duration must be one of 15, 30, 45, 60, 90 minutes"}
	}
	if r.TotalQuestions <= 0 {
		return &ValidationError{Field: "totalQuestions", Message: "at least one question is required"}
	}
	if len(r.QuestionTypes) == 0 {
		return &ValidationError{Field: "questionTypes", Message: "at least one question type must be selected"}
	}
	for _, qt := range r.QuestionTypes {
		if !validQuestionTypes[qt] {
			return &ValidationError{Field: "questionTypes", Message: "unknown question type: " + qt}
		}
	}
	return nil
}
