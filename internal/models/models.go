package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Session status values
const (
	StatusCreated   = "created"
	StatusActive    = "active"
	StatusPaused    = "paused"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Difficulty levels
const (
	DifficultyEntry  = "entry"
	DifficultyMid    = "mid"
	DifficultySenior = "senior"
	DifficultyExpert = "expert"
)

// Question types
const (
	QuestionTechnical       = "technical"
	QuestionBehavioral      = "behavioral"
	QuestionSituational     = "situational"
	QuestionCompanySpecific = "company_specific"
)

// Session modes
const (
	ModeText  = "text"
	ModeVoice = "voice"
)

// StringList stores a slice of strings as a JSON text column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported type for StringList: %T", value)
	}
}

// InterviewSession represents one practice interview run.
type InterviewSession struct {
	ID                   string     `gorm:"primaryKey" json:"id"`
	UserID               string     `gorm:"not null;index" json:"userId"`
	Title                string     `gorm:"not null" json:"title"`
	Mode                 string     `gorm:"not null;default:text" json:"mode"`
	JobRole              string     `gorm:"not null" json:"jobRole"`
	Company              string     `json:"company,omitempty"`
	Difficulty           string     `gorm:"not null" json:"difficulty"`
	DurationMinutes      int        `gorm:"not null" json:"durationMinutes"`
	TotalQuestions       int        `gorm:"not null" json:"totalQuestions"`
	CurrentQuestionIndex int        `gorm:"not null;default:0" json:"currentQuestionIndex"`
	Status               string     `gorm:"not null;index" json:"status"`
	QuestionTypes        StringList `gorm:"type:text" json:"questionTypes"`
	CustomInstructions   string     `gorm:"type:text" json:"customInstructions,omitempty"`
	PausedSeconds        int        `gorm:"not null;default:0" json:"-"`
	PausedAt             *time.Time `json:"-"`
	CreatedAt            time.Time  `json:"createdAt"`
	StartedAt            *time.Time `json:"startedAt,omitempty"`
	CompletedAt          *time.Time `json:"completedAt,omitempty"`

	Questions []InterviewQuestion `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

// InterviewQuestion is one question instance within a session. Text is
// immutable once created; AnsweredAt is set exactly once.
type InterviewQuestion struct {
	ID         string     `gorm:"primaryKey" json:"id"`
	SessionID  string     `gorm:"not null;index" json:"sessionId"`
	Text       string     `gorm:"type:text;not null" json:"text"`
	Type       string     `gorm:"not null" json:"type"`
	Difficulty string     `gorm:"not null" json:"difficulty"`
	Order      int        `gorm:"column:order_num;not null" json:"order"` // 1-based position
	AskedAt    *time.Time `json:"askedAt,omitempty"`
	AnsweredAt *time.Time `json:"answeredAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// InterviewResponse is one scored answer. Created exactly once per question,
// never mutated afterwards.
type InterviewResponse struct {
	ID                 string     `gorm:"primaryKey" json:"id"`
	QuestionID         string     `gorm:"not null;uniqueIndex" json:"questionId"`
	SessionID          string     `gorm:"not null;index" json:"sessionId"`
	Answer             string     `gorm:"type:text;not null" json:"answer"`
	DurationSeconds    int        `json:"durationSeconds"`
	CommunicationScore int        `gorm:"not null" json:"communicationScore"`
	TechnicalScore     int        `gorm:"not null" json:"technicalScore"`
	CompletenessScore  int        `gorm:"not null" json:"completenessScore"`
	OverallScore       int        `gorm:"not null" json:"overallScore"`
	Strengths          StringList `gorm:"type:text" json:"strengths"`
	Weaknesses         StringList `gorm:"type:text" json:"weaknesses"`
	Suggestions        StringList `gorm:"type:text" json:"suggestions"`
	CreatedAt          time.Time  `json:"createdAt"`
}

// SessionSummary is derived from the full response set on finalize. It is
// never persisted; it can be recomputed on demand through the read path.
type SessionSummary struct {
	SessionID              string   `json:"sessionId"`
	OverallScore           float64  `json:"overallScore"`
	CommunicationAverage   float64  `json:"communicationAverage"`
	TechnicalAverage       float64  `json:"technicalAverage"`
	CompletenessAverage    float64  `json:"completenessAverage"`
	AnsweredQuestions      int      `json:"answeredQuestions"`
	TotalQuestions         int      `json:"totalQuestions"`
	AverageDurationSeconds float64  `json:"averageDurationSeconds"`
	TopStrengths           []string `json:"topStrengths"`
	ImprovementAreas       []string `json:"improvementAreas"`
	ResourceSuggestions    []string `json:"resourceSuggestions"`
	NextSteps              []string `json:"nextSteps"`
}
