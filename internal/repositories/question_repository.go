package repositories

import (
	"time"

	"gorm.io/gorm"

	"jobmate/interview/internal/models"
)

type QuestionRepository struct {
	DB *gorm.DB
}

// Create inserts a new question row.
func (r *QuestionRepository) Create(question *models.InterviewQuestion) error {
	return r.DB.Create(question).Error
}

// GetByID retrieves a question by its UUID.
func (r *QuestionRepository) GetByID(id string) (*models.InterviewQuestion, error) {
	var question models.InterviewQuestion
	if err := r.DB.Where("id = ?", id).First(&question).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

// GetBySessionID retrieves all questions for a session in ask order.
func (r *QuestionRepository) GetBySessionID(sessionID string) ([]models.InterviewQuestion, error) {
	questions := []models.InterviewQuestion{}
	err := r.DB.
		Where("session_id = ?", sessionID).
		Order("order_num ASC").
		Find(&questions).Error
	return questions, err
}

// GetOpenQuestion returns the question at the given 1-based order if it has
// not been answered yet.
func (r *QuestionRepository) GetOpenQuestion(sessionID string, order int) (*models.InterviewQuestion, error) {
	var question models.InterviewQuestion
	err := r.DB.
		Where("session_id = ? AND order_num = ? AND answered_at IS NULL", sessionID, order).
		First(&question).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

// MarkAnswered sets the answered timestamp. AnsweredAt is written exactly
// once; a second call is a no-op.
func (r *QuestionRepository) MarkAnswered(id string, at time.Time) error {
	return r.DB.Model(&models.InterviewQuestion{}).
		Where("id = ? AND answered_at IS NULL", id).
		Update("answered_at", at).Error
}
