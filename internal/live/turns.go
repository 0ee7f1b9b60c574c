package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"jobmate/interview/internal/ai"
	"jobmate/interview/internal/metrics"
	"jobmate/interview/internal/models"
	"jobmate/interview/internal/session"
)

// handleEvent is the dispatch boundary: every turn failure is converted to
// an error-typed outbound frame and never crashes the connection worker.
func (o *Orchestrator) handleEvent(c *Conn, ev event) {
	if err := o.dispatch(c, ev); err != nil {
		o.sendError(c, err)
	}
}

func (o *Orchestrator) dispatch(c *Conn, ev event) error {
	switch ev.kind {
	case models.MsgStartSession:
		return o.handleStart(c)
	case models.MsgGenerateQuestion:
		return o.handleGenerateQuestion(c, ev.deferred)
	case models.MsgSubmitAnswer:
		var payload models.SubmitAnswerPayload
		if len(ev.payload) > 0 {
			if err := json.Unmarshal(ev.payload, &payload); err != nil {
				return &models.ValidationError{Message: "malformed submit_answer payload"}
			}
		}
		return o.handleSubmitAnswer(c, &payload)
	case models.MsgEndSession:
		return o.handleEnd(c, ev.deferred)
	case eventExpire:
		return o.handleExpire(c)
	default:
		return &models.ValidationError{Message: "unknown event: " + ev.kind}
	}
}

func (o *Orchestrator) handleStart(c *Conn) error {
	sess, err := o.sessions.Get(c.SessionID)
	if err != nil {
		return err
	}
	if sess.Status != models.StatusCreated {
		if session.Terminal(sess.Status) {
			return session.ErrSessionNotFound
		}
		return &models.ValidationError{Message: "session already started"}
	}

	if err := o.sessions.Transition(sess, models.StatusActive); err != nil {
		return err
	}

	c.Send(newMessage(models.MsgSessionStart, sess.ID, map[string]string{"status": sess.Status}))
	c.Send(newMessage(models.MsgSessionStarted, sess.ID, models.GreetingPayload{
		Greeting: greeting(sess),
		Session:  sess,
	}))

	o.events.SessionStarted(context.Background(), sess)

	// The wall-clock budget starts counting now.
	c.armExpiry(o.sessions.Remaining(sess, time.Now()))
	o.scheduleEvent(c, models.MsgGenerateQuestion, o.questionDelay)
	return nil
}

func (o *Orchestrator) handleGenerateQuestion(c *Conn, deferred bool) error {
	sess, err := o.sessions.Get(c.SessionID)
	if err != nil {
		if deferred {
			return nil
		}
		return err
	}
	if sess.Status == models.StatusCreated {
		if deferred {
			return nil
		}
		return &models.ValidationError{Message: "session not started"}
	}
	if session.Terminal(sess.Status) || sess.Status == models.StatusPaused {
		// A scheduled continuation that lost its race with the session
		// ending (or pausing) is a no-op.
		if deferred {
			return nil
		}
		return session.ErrSessionNotFound
	}

	if sess.CurrentQuestionIndex >= sess.TotalQuestions {
		// Advancing past the last question redirects to finalization.
		return o.finalize(c, sess, "exhausted")
	}

	order := sess.CurrentQuestionIndex + 1
	generated, err := o.provider.GenerateQuestion(context.Background(), &ai.QuestionRequest{
		SessionID:          sess.ID,
		JobRole:            sess.JobRole,
		Company:            sess.Company,
		Difficulty:         sess.Difficulty,
		QuestionTypes:      sess.QuestionTypes,
		Order:              order,
		CustomInstructions: sess.CustomInstructions,
	})
	if err != nil {
		return fmt.Errorf("question generation failed: %w", err)
	}

	now := time.Now()
	question := &models.InterviewQuestion{
		ID:         uuid.New().String(),
		SessionID:  sess.ID,
		Text:       generated.Text,
		Type:       generated.Type,
		Difficulty: generated.Difficulty,
		Order:      order,
		AskedAt:    &now,
	}
	if err := o.sessions.Questions.Create(question); err != nil {
		return fmt.Errorf("failed to persist question: %w", err)
	}

	o.streamMessage(c, sess.ID, models.MsgQuestionChunk, question.Text)
	c.Send(newMessage(models.MsgQuestion, sess.ID, question))

	metrics.QuestionsAsked.Inc()
	o.logger.Info("question emitted",
		zap.String("session_id", sess.ID),
		zap.Int("order", order),
		zap.String("type", question.Type))
	return nil
}

func (o *Orchestrator) handleSubmitAnswer(c *Conn, payload *models.SubmitAnswerPayload) error {
	if strings.TrimSpace(payload.Answer) == "" {
		return session.ErrAnswerRequired
	}

	sess, err := o.sessions.Get(c.SessionID)
	if err != nil {
		return err
	}
	if session.Terminal(sess.Status) {
		return session.ErrSessionNotFound
	}

	order := sess.CurrentQuestionIndex + 1
	question, err := o.sessions.Questions.GetOpenQuestion(sess.ID, order)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return session.ErrNotCurrentQuestion
	}
	if err != nil {
		return fmt.Errorf("failed to load open question: %w", err)
	}
	if payload.QuestionID != question.ID {
		return session.ErrNotCurrentQuestion
	}

	evaluation, err := o.provider.EvaluateAnswer(context.Background(), &ai.EvaluationRequest{
		Question:     question.Text,
		QuestionType: question.Type,
		Answer:       payload.Answer,
		JobRole:      sess.JobRole,
		Difficulty:   sess.Difficulty,
	})
	if err != nil {
		return fmt.Errorf("answer evaluation failed: %w", err)
	}

	response := &models.InterviewResponse{
		ID:                 uuid.New().String(),
		QuestionID:         question.ID,
		SessionID:          sess.ID,
		Answer:             payload.Answer,
		DurationSeconds:    payload.DurationSeconds,
		CommunicationScore: evaluation.CommunicationScore,
		TechnicalScore:     evaluation.TechnicalScore,
		CompletenessScore:  evaluation.CompletenessScore,
		OverallScore:       evaluation.OverallScore,
		Strengths:          evaluation.Strengths,
		Weaknesses:         evaluation.Weaknesses,
		Suggestions:        evaluation.Suggestions,
	}
	if err := o.sessions.Responses.Create(response); err != nil {
		return fmt.Errorf("failed to persist response: %w", err)
	}
	if err := o.sessions.Questions.MarkAnswered(question.ID, time.Now()); err != nil {
		return fmt.Errorf("failed to mark question answered: %w", err)
	}
	if err := o.sessions.AdvanceQuestion(sess); err != nil {
		return err
	}

	o.streamMessage(c, sess.ID, models.MsgFeedbackChunk, feedbackText(evaluation))
	c.Send(newMessage(models.MsgFeedback, sess.ID, models.FeedbackPayload{
		QuestionID:           question.ID,
		CommunicationScore:   evaluation.CommunicationScore,
		TechnicalScore:       evaluation.TechnicalScore,
		CompletenessScore:    evaluation.CompletenessScore,
		OverallScore:         evaluation.OverallScore,
		Strengths:            evaluation.Strengths,
		Weaknesses:           evaluation.Weaknesses,
		Suggestions:          evaluation.Suggestions,
		CurrentQuestionIndex: sess.CurrentQuestionIndex,
	}))

	metrics.AnswersScored.Inc()

	if sess.CurrentQuestionIndex < sess.TotalQuestions {
		o.scheduleEvent(c, models.MsgGenerateQuestion, o.questionDelay)
	} else {
		o.scheduleEvent(c, models.MsgEndSession, o.questionDelay)
	}
	return nil
}

func (o *Orchestrator) handleEnd(c *Conn, deferred bool) error {
	sess, err := o.sessions.Get(c.SessionID)
	if err != nil {
		if deferred {
			return nil
		}
		return err
	}
	if session.Terminal(sess.Status) {
		if deferred {
			return nil
		}
		return session.ErrSessionNotFound
	}
	return o.finalize(c, sess, "client")
}

// handleExpire fires when the session's time budget elapses. Pausing extends
// the deadline, so the remaining budget is re-checked before force-completing.
func (o *Orchestrator) handleExpire(c *Conn) error {
	sess, err := o.sessions.Get(c.SessionID)
	if err != nil || session.Terminal(sess.Status) {
		return nil
	}
	if remaining := o.sessions.Remaining(sess, time.Now()); remaining > 0 {
		c.armExpiry(remaining)
		return nil
	}
	o.logger.Info("session time budget elapsed, force-completing",
		zap.String("session_id", sess.ID),
		zap.Int("answered", sess.CurrentQuestionIndex),
		zap.Int("total", sess.TotalQuestions))
	return o.finalize(c, sess, "expired")
}

// finalize transitions the session to a terminal status, emits the summary
// and closes the stream.
func (o *Orchestrator) finalize(c *Conn, sess *models.InterviewSession, reason string) error {
	if !session.Terminal(sess.Status) {
		target := models.StatusCompleted
		if sess.Status == models.StatusCreated {
			// Never started; nothing to summarize as completed work.
			target = models.StatusCancelled
		}
		if err := o.sessions.Transition(sess, target); err != nil {
			return err
		}
	}

	summary, err := o.sessions.Summary(sess)
	if err != nil {
		return err
	}

	c.Send(newMessage(models.MsgSessionEnded, sess.ID, map[string]interface{}{
		"summary": summary,
		"reason":  reason,
	}))

	o.events.SessionEnded(context.Background(), sess, summary)
	metrics.SessionsCompleted.WithLabelValues(reason).Inc()
	o.dropConn(c)
	return nil
}

// sendError converts the error taxonomy into an error frame. SessionExhausted
// never reaches the client; generate redirects to finalize before this point.
func (o *Orchestrator) sendError(c *Conn, err error) {
	code := "internal_error"
	message := "something went wrong"

	var vErr *models.ValidationError
	var pErr *ai.ProviderError
	switch {
	case errors.As(err, &vErr):
		code = "validation_error"
		message = vErr.Error()
	case errors.Is(err, session.ErrSessionNotFound):
		code = "session_not_found"
		message = "session not found or already ended"
	case errors.Is(err, session.ErrAnswerRequired):
		code = "answer_required"
		message = "answer must not be empty"
	case errors.Is(err, session.ErrNotCurrentQuestion):
		code = "not_current_question"
		message = "answer does not match the current open question"
	case errors.As(err, &pErr):
		code = "provider_error"
		message = "the interviewer backend is unavailable"
		o.logger.Error("provider failure", zap.String("session_id", c.SessionID), zap.Error(err))
	default:
		o.logger.Error("turn failure", zap.String("session_id", c.SessionID), zap.Error(err))
	}

	c.Send(newMessage(models.MsgError, c.SessionID, models.ErrorPayload{
		Code:    code,
		Message: message,
	}))
}

func greeting(sess *models.InterviewSession) string {
	company := ""
	if sess.Company != "" {
		company = " at " + sess.Company
	}
	return fmt.Sprintf(
		"Hello! I'll be your interviewer today for the %s position%s. "+
			"We'll go through %d questions over %d minutes. Take your time with each answer, "+
			"and I'll share feedback after every response. Let's begin.",
		sess.JobRole, company, sess.TotalQuestions, sess.DurationMinutes)
}

func feedbackText(e *ai.Evaluation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Thanks for that answer. Overall I'd score it %d out of 10. ", e.OverallScore)
	if len(e.Strengths) > 0 {
		b.WriteString("What worked well: " + strings.Join(e.Strengths, "; ") + ". ")
	}
	if len(e.Weaknesses) > 0 {
		b.WriteString("Where to improve: " + strings.Join(e.Weaknesses, "; ") + ". ")
	}
	if len(e.Suggestions) > 0 {
		b.WriteString("Suggestions: " + strings.Join(e.Suggestions, "; ") + ".")
	}
	return strings.TrimSpace(b.String())
}
