package repositories

import (
	"time"

	"gorm.io/gorm"

	"jobmate/interview/internal/models"
)

type SessionRepository struct {
	DB *gorm.DB
}

// Create inserts a new interview session row.
func (r *SessionRepository) Create(session *models.InterviewSession) error {
	return r.DB.Create(session).Error
}

// GetByID retrieves a session by its UUID.
func (r *SessionRepository) GetByID(id string) (*models.InterviewSession, error) {
	var session models.InterviewSession
	if err := r.DB.Where("id = ?", id).First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// GetByIDWithQuestions retrieves a session with its questions in order.
func (r *SessionRepository) GetByIDWithQuestions(id string) (*models.InterviewSession, error) {
	var session models.InterviewSession
	err := r.DB.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_num ASC")
		}).
		Where("id = ?", id).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Update persists the full session row.
func (r *SessionRepository) Update(session *models.InterviewSession) error {
	return r.DB.Save(session).Error
}

// GetByUserID retrieves a user's sessions, newest first.
func (r *SessionRepository) GetByUserID(userID string) ([]models.InterviewSession, error) {
	sessions := []models.InterviewSession{}
	err := r.DB.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&sessions).Error
	return sessions, err
}

// GetExpiredActive returns sessions still active or paused whose wall-clock
// budget has elapsed by now. Used by the sweeper for sessions with no live
// stream.
func (r *SessionRepository) GetExpiredActive(now time.Time) ([]models.InterviewSession, error) {
	sessions := []models.InterviewSession{}
	err := r.DB.
		Where("status IN ?", []string{models.StatusActive, models.StatusPaused}).
		Where("started_at IS NOT NULL").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}

	expired := sessions[:0]
	for _, s := range sessions {
		paused := time.Duration(s.PausedSeconds) * time.Second
		if s.PausedAt != nil {
			// The countdown is stopped while paused.
			paused += now.Sub(*s.PausedAt)
		}
		deadline := s.StartedAt.Add(time.Duration(s.DurationMinutes)*time.Minute + paused)
		if now.After(deadline) {
			expired = append(expired, s)
		}
	}
	return expired, nil
}
