package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"jobmate/interview/internal/events"
	"jobmate/interview/internal/live"
	"jobmate/interview/internal/metrics"
	"jobmate/interview/internal/models"
	"jobmate/interview/internal/session"
)

// SessionSweeper periodically force-completes sessions whose wall-clock
// budget elapsed without a live stream to fire the expiry for them (for
// example after a dropped connection).
type SessionSweeper struct {
	sessions  *session.Manager
	registry  live.Registry
	publisher *events.Publisher
	logger    *zap.Logger
	schedule  string
	cron      *cron.Cron
}

func NewSessionSweeper(sessions *session.Manager, registry live.Registry, publisher *events.Publisher, schedule string, logger *zap.Logger) *SessionSweeper {
	return &SessionSweeper{
		sessions:  sessions,
		registry:  registry,
		publisher: publisher,
		logger:    logger,
		schedule:  schedule,
		cron:      cron.New(),
	}
}

// Start begins the scheduled sweep.
func (s *SessionSweeper) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.RunSweep(time.Now()); err != nil {
			s.logger.Error("session sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule session sweep: %w", err)
	}
	s.cron.Start()
	s.logger.Info("session sweeper started", zap.String("schedule", s.schedule))
	return nil
}

// Stop stops the scheduled sweep.
func (s *SessionSweeper) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// RunSweep performs a single sweep pass.
func (s *SessionSweeper) RunSweep(now time.Time) error {
	expired, err := s.sessions.Sessions.GetExpiredActive(now)
	if err != nil {
		return fmt.Errorf("failed to find expired sessions: %w", err)
	}

	for i := range expired {
		sess := &expired[i]

		// A session with a live stream is force-completed by its own
		// connection's expiry timer, not the sweeper.
		if _, ok := s.registry.Get(sess.ID); ok {
			continue
		}

		if err := s.sessions.Transition(sess, models.StatusCompleted); err != nil {
			s.logger.Error("failed to force-complete expired session",
				zap.String("session_id", sess.ID),
				zap.Error(err))
			continue
		}

		summary, err := s.sessions.Summary(sess)
		if err != nil {
			s.logger.Error("failed to summarize expired session",
				zap.String("session_id", sess.ID),
				zap.Error(err))
		}
		s.publisher.SessionEnded(context.Background(), sess, summary)
		metrics.SessionsCompleted.WithLabelValues("swept").Inc()

		s.logger.Info("expired session force-completed",
			zap.String("session_id", sess.ID),
			zap.Int("answered", sess.CurrentQuestionIndex),
			zap.Int("total", sess.TotalQuestions))
	}
	return nil
}
