package repositories

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"jobmate/interview/internal/models"
	"jobmate/interview/internal/testhelpers"
)

func newQuestion(sessionID string, order int) *models.InterviewQuestion {
	return &models.InterviewQuestion{
		ID:         uuid.New().String(),
		SessionID:  sessionID,
		Text:       "Tell me about a recent project.",
		Type:       models.QuestionBehavioral,
		Difficulty: models.DifficultyMid,
		Order:      order,
	}
}

func TestQuestionRepository_GetBySessionID_Ordered(t *testing.T) {
	repo := &QuestionRepository{DB: testhelpers.SetupTestDB(t)}

	sessionID := uuid.New().String()
	for _, order := range []int{2, 1, 3} {
		if err := repo.Create(newQuestion(sessionID, order)); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
	}

	questions, err := repo.GetBySessionID(sessionID)
	if err != nil {
		t.Fatalf("GetBySessionID returned error: %v", err)
	}
	if len(questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(questions))
	}
	for i, q := range questions {
		if q.Order != i+1 {
			t.Fatalf("expected ask order, got %#v", questions)
		}
	}
}

func TestQuestionRepository_GetOpenQuestion(t *testing.T) {
	repo := &QuestionRepository{DB: testhelpers.SetupTestDB(t)}

	sessionID := uuid.New().String()
	question := newQuestion(sessionID, 1)
	if err := repo.Create(question); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	open, err := repo.GetOpenQuestion(sessionID, 1)
	if err != nil {
		t.Fatalf("GetOpenQuestion returned error: %v", err)
	}
	if open.ID != question.ID {
		t.Fatalf("expected question %s, got %s", question.ID, open.ID)
	}

	if err := repo.MarkAnswered(question.ID, time.Now()); err != nil {
		t.Fatalf("MarkAnswered returned error: %v", err)
	}

	// Once answered the question is no longer open.
	if _, err := repo.GetOpenQuestion(sessionID, 1); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found, got %v", err)
	}
}

func TestQuestionRepository_MarkAnswered_WriteOnce(t *testing.T) {
	repo := &QuestionRepository{DB: testhelpers.SetupTestDB(t)}

	question := newQuestion(uuid.New().String(), 1)
	if err := repo.Create(question); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	first := time.Now().Add(-time.Minute).UTC().Truncate(time.Second)
	if err := repo.MarkAnswered(question.ID, first); err != nil {
		t.Fatalf("MarkAnswered returned error: %v", err)
	}
	if err := repo.MarkAnswered(question.ID, time.Now()); err != nil {
		t.Fatalf("second MarkAnswered returned error: %v", err)
	}

	got, err := repo.GetByID(question.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if got.AnsweredAt == nil || !got.AnsweredAt.UTC().Truncate(time.Second).Equal(first) {
		t.Fatalf("answered timestamp should not change on a second call, got %v", got.AnsweredAt)
	}
}
