package ai

import "context"

// QuestionRequest carries everything a provider needs to produce the next
// question of a session.
type QuestionRequest struct {
	SessionID          string
	JobRole            string
	Company            string
	Difficulty         string
	QuestionTypes      []string
	Order              int // 1-based position within the session
	CustomInstructions string
}

// GeneratedQuestion is a provider-produced question.
type GeneratedQuestion struct {
	Text       string
	Type       string
	Difficulty string
}

// EvaluationRequest carries a submitted answer for scoring.
type EvaluationRequest struct {
	Question     string
	QuestionType string
	Answer       string
	JobRole      string
	Difficulty   string
}

// Evaluation is the scored feedback for one answer. All scores are integers
// in [1,10]; Overall is the rounded mean of the other three.
type Evaluation struct {
	CommunicationScore int
	TechnicalScore     int
	CompletenessScore  int
	OverallScore       int
	Strengths          []string
	Weaknesses         []string
	Suggestions        []string
}

// Provider is the capability interface for question generation and answer
// evaluation. The mock provider is the default; a model-backed provider can
// be swapped in without touching the turn controller.
type Provider interface {
	GenerateQuestion(ctx context.Context, req *QuestionRequest) (*GeneratedQuestion, error)
	EvaluateAnswer(ctx context.Context, req *EvaluationRequest) (*Evaluation, error)
	GetProviderName() string
}

// ProviderError represents an error from a provider.
type ProviderError struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + " error: " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Provider + " error: " + e.Message
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Common error codes
const (
	ErrCodeAPIKey       = "invalid_api_key"
	ErrCodeRateLimit    = "rate_limit_exceeded"
	ErrCodeServiceDown  = "service_unavailable"
	ErrCodeInvalidInput = "invalid_input"
	ErrCodeTimeout      = "timeout"
)
