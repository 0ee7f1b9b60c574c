package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"jobmate/interview/internal/models"
)

// Channel is the pub/sub channel other platform services subscribe to for
// interview lifecycle events.
const Channel = "interview:sessions"

// Event types published on the channel.
const (
	TypeSessionStarted = "session_started"
	TypeSessionEnded   = "session_ended"
)

// SessionEvent is the payload published for lifecycle changes.
type SessionEvent struct {
	Type              string    `json:"type"`
	SessionID         string    `json:"sessionId"`
	UserID            string    `json:"userId"`
	JobRole           string    `json:"jobRole"`
	Status            string    `json:"status"`
	AnsweredQuestions int       `json:"answeredQuestions"`
	TotalQuestions    int       `json:"totalQuestions"`
	OverallScore      float64   `json:"overallScore,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
}

// Publisher emits session lifecycle events over Redis pub/sub. A nil
// Publisher is valid and drops all events, so Redis stays optional in
// development.
type Publisher struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewPublisher(rdb *redis.Client, logger *zap.Logger) *Publisher {
	return &Publisher{rdb: rdb, logger: logger}
}

// SessionStarted publishes the start of a live session.
func (p *Publisher) SessionStarted(ctx context.Context, session *models.InterviewSession) {
	if p == nil {
		return
	}
	p.publish(ctx, SessionEvent{
		Type:           TypeSessionStarted,
		SessionID:      session.ID,
		UserID:         session.UserID,
		JobRole:        session.JobRole,
		Status:         session.Status,
		TotalQuestions: session.TotalQuestions,
	})
}

// SessionEnded publishes a finalized session with its summary scores.
func (p *Publisher) SessionEnded(ctx context.Context, session *models.InterviewSession, summary *models.SessionSummary) {
	if p == nil {
		return
	}
	ev := SessionEvent{
		Type:           TypeSessionEnded,
		SessionID:      session.ID,
		UserID:         session.UserID,
		JobRole:        session.JobRole,
		Status:         session.Status,
		TotalQuestions: session.TotalQuestions,
	}
	if summary != nil {
		ev.AnsweredQuestions = summary.AnsweredQuestions
		ev.OverallScore = summary.OverallScore
	}
	p.publish(ctx, ev)
}

func (p *Publisher) publish(ctx context.Context, ev SessionEvent) {
	ev.Timestamp = time.Now().UTC()
	data, err := json.Marshal(ev)
	if err != nil {
		p.logger.Error("failed to marshal session event", zap.Error(err))
		return
	}
	if err := p.rdb.Publish(ctx, Channel, data).Err(); err != nil {
		// Event delivery is best effort; the session row is the durable
		// record.
		p.logger.Warn("failed to publish session event",
			zap.String("session_id", ev.SessionID),
			zap.Error(err))
	}
}
