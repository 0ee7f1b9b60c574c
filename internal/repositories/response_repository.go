package repositories

import (
	"gorm.io/gorm"

	"jobmate/interview/internal/models"
)

type ResponseRepository struct {
	DB *gorm.DB
}

// Create inserts a new response row.
func (r *ResponseRepository) Create(response *models.InterviewResponse) error {
	return r.DB.Create(response).Error
}

// GetBySessionID retrieves all responses for a session, oldest first.
func (r *ResponseRepository) GetBySessionID(sessionID string) ([]models.InterviewResponse, error) {
	responses := []models.InterviewResponse{}
	err := r.DB.
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&responses).Error
	return responses, err
}

// GetByQuestionID retrieves the response for a question, if one exists.
func (r *ResponseRepository) GetByQuestionID(questionID string) (*models.InterviewResponse, error) {
	var response models.InterviewResponse
	if err := r.DB.Where("question_id = ?", questionID).First(&response).Error; err != nil {
		return nil, err
	}
	return &response, nil
}
