package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"jobmate/interview/internal/models"
	"jobmate/interview/internal/repositories"
)

// permitted status transitions; completed and cancelled are terminal
var transitions = map[string][]string{
	models.StatusCreated: {models.StatusActive, models.StatusCancelled},
	models.StatusActive:  {models.StatusPaused, models.StatusCompleted, models.StatusCancelled},
	models.StatusPaused:  {models.StatusActive, models.StatusCompleted, models.StatusCancelled},
}

// Manager owns interview session lifecycle: creation, the status state
// machine, question-index progression and the wall-clock budget.
type Manager struct {
	Sessions  *repositories.SessionRepository
	Questions *repositories.QuestionRepository
	Responses *repositories.ResponseRepository
	logger    *zap.Logger
}

func NewManager(db *gorm.DB, logger *zap.Logger) *Manager {
	return &Manager{
		Sessions:  &repositories.SessionRepository{DB: db},
		Questions: &repositories.QuestionRepository{DB: db},
		Responses: &repositories.ResponseRepository{DB: db},
		logger:    logger,
	}
}

// Create validates the setup configuration and persists a new session in the
// created state. The session does not start until its stream connects.
func (m *Manager) Create(userID string, req *models.SessionSetupRequest) (*models.InterviewSession, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	mode := req.Mode
	if mode == "" {
		mode = models.ModeText
	}

	session := &models.InterviewSession{
		ID:                   uuid.New().String(),
		UserID:               userID,
		Title:                req.Title,
		Mode:                 mode,
		JobRole:              req.JobRole,
		Company:              req.Company,
		Difficulty:           req.Difficulty,
		DurationMinutes:      req.DurationMinutes,
		TotalQuestions:       req.TotalQuestions,
		CurrentQuestionIndex: 0,
		Status:               models.StatusCreated,
		QuestionTypes:        req.QuestionTypes,
		CustomInstructions:   req.CustomInstructions,
	}

	if err := m.Sessions.Create(session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	m.logger.Info("session created",
		zap.String("session_id", session.ID),
		zap.String("job_role", session.JobRole),
		zap.Int("total_questions", session.TotalQuestions))

	return session, nil
}

// Get loads a session row, mapping a missing row to ErrSessionNotFound.
func (m *Manager) Get(id string) (*models.InterviewSession, error) {
	session, err := m.Sessions.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Transition moves a session to the target status if the state machine
// permits it, applying the status-specific timestamp side effects.
func (m *Manager) Transition(session *models.InterviewSession, target string) error {
	if !allowed(session.Status, target) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, session.Status, target)
	}

	now := time.Now()
	switch target {
	case models.StatusActive:
		if session.Status == models.StatusCreated {
			session.StartedAt = &now
		}
		if session.PausedAt != nil {
			// Resuming: the paused interval does not count against the
			// session's time budget.
			session.PausedSeconds += int(now.Sub(*session.PausedAt).Seconds())
			session.PausedAt = nil
		}
	case models.StatusPaused:
		session.PausedAt = &now
	case models.StatusCompleted, models.StatusCancelled:
		session.CompletedAt = &now
		if session.PausedAt != nil {
			session.PausedSeconds += int(now.Sub(*session.PausedAt).Seconds())
			session.PausedAt = nil
		}
	}

	session.Status = target
	if err := m.Sessions.Update(session); err != nil {
		return fmt.Errorf("failed to update session status: %w", err)
	}

	m.logger.Info("session transitioned",
		zap.String("session_id", session.ID),
		zap.String("status", target))
	return nil
}

// AdvanceQuestion increments the question index. Advancing past the final
// question returns ErrSessionExhausted; the caller finalizes instead.
func (m *Manager) AdvanceQuestion(session *models.InterviewSession) error {
	if session.CurrentQuestionIndex >= session.TotalQuestions {
		return ErrSessionExhausted
	}
	session.CurrentQuestionIndex++
	if err := m.Sessions.Update(session); err != nil {
		return fmt.Errorf("failed to advance question index: %w", err)
	}
	return nil
}

// Remaining returns how much of the session's wall-clock budget is left.
// Paused intervals do not consume budget. Zero means expired.
func (m *Manager) Remaining(session *models.InterviewSession, now time.Time) time.Duration {
	if session.StartedAt == nil {
		return time.Duration(session.DurationMinutes) * time.Minute
	}
	paused := time.Duration(session.PausedSeconds) * time.Second
	if session.PausedAt != nil {
		paused += now.Sub(*session.PausedAt)
	}
	elapsed := now.Sub(*session.StartedAt) - paused
	remaining := time.Duration(session.DurationMinutes)*time.Minute - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Terminal reports whether the session has reached a terminal status.
func Terminal(status string) bool {
	return status == models.StatusCompleted || status == models.StatusCancelled
}

func allowed(from, to string) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}
