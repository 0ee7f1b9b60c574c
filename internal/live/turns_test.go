package live

import (
	"encoding/json"
	"testing"
	"time"

	"go.uber.org/zap"

	"jobmate/interview/internal/ai/mock"
	"jobmate/interview/internal/config"
	"jobmate/interview/internal/models"
	"jobmate/interview/internal/session"
	"jobmate/interview/internal/testhelpers"
)

type msgCapture struct {
	msgs []models.WSMessage
}

func (c *msgCapture) hook(msg models.WSMessage) { c.msgs = append(c.msgs, msg) }

func (c *msgCapture) byType(msgType string) []models.WSMessage {
	out := []models.WSMessage{}
	for _, m := range c.msgs {
		if m.Type == msgType {
			out = append(out, m)
		}
	}
	return out
}

func (c *msgCapture) last(msgType string) (models.WSMessage, bool) {
	matches := c.byType(msgType)
	if len(matches) == 0 {
		return models.WSMessage{}, false
	}
	return matches[len(matches)-1], true
}

func newTestOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:         "test-secret",
		HeartbeatInterval: 30 * time.Second,
		// zero question and chunk delays keep turn tests synchronous
	}
	sessions := session.NewManager(testhelpers.SetupTestDB(t), zap.NewNop())
	return NewOrchestrator(cfg, sessions, mock.NewWithSeed(1), nil, zap.NewNop())
}

func startSession(t *testing.T, o *Orchestrator) *models.InterviewSession {
	t.Helper()
	sess, err := o.sessions.Create("user-1", &models.SessionSetupRequest{
		Title:           "Practice run",
		JobRole:         "Backend Engineer",
		Difficulty:      models.DifficultyMid,
		DurationMinutes: 30,
		TotalQuestions:  2,
		QuestionTypes:   []string{models.QuestionTechnical, models.QuestionBehavioral},
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	return sess
}

func connect(o *Orchestrator, sessionID string) (*Conn, *msgCapture) {
	c := NewConn(sessionID, nil)
	capture := &msgCapture{}
	c.SetSendHook(capture.hook)
	if prev := o.registry.Register(sessionID, c); prev != nil {
		prev.Close()
	}
	return c, capture
}

// drive processes one client event and every continuation it queued, the same
// order the connection worker would.
func drive(t *testing.T, o *Orchestrator, c *Conn, kind string, payload interface{}) {
	t.Helper()
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		raw = data
	}
	o.handleEvent(c, event{kind: kind, payload: raw})
	drainEvents(o, c)
}

func drainEvents(o *Orchestrator, c *Conn) {
	for {
		select {
		case ev := <-c.events:
			o.handleEvent(c, ev)
		default:
			return
		}
	}
}

func currentQuestion(t *testing.T, capture *msgCapture) *models.InterviewQuestion {
	t.Helper()
	msg, ok := capture.last(models.MsgQuestion)
	if !ok {
		t.Fatal("no question frame emitted")
	}
	question, ok := msg.Payload.(*models.InterviewQuestion)
	if !ok {
		t.Fatalf("unexpected question payload: %#v", msg.Payload)
	}
	return question
}

func TestFullSession(t *testing.T) {
	o := newTestOrchestrator(t)
	sess := startSession(t, o)
	c, capture := connect(o, sess.ID)

	drive(t, o, c, models.MsgStartSession, nil)

	if _, ok := capture.last(models.MsgSessionStart); !ok {
		t.Fatal("no session_start frame")
	}
	started, ok := capture.last(models.MsgSessionStarted)
	if !ok {
		t.Fatal("no session_started frame")
	}
	greeting, ok := started.Payload.(models.GreetingPayload)
	if !ok || greeting.Greeting == "" {
		t.Fatalf("unexpected greeting payload: %#v", started.Payload)
	}

	// The first question follows the greeting without further client input.
	q1 := currentQuestion(t, capture)
	if q1.Order != 1 || q1.Type != models.QuestionTechnical {
		t.Fatalf("unexpected first question: %#v", q1)
	}

	drive(t, o, c, models.MsgSubmitAnswer, models.SubmitAnswerPayload{
		QuestionID: q1.ID,
		Answer:     "I would start with a token bucket per client key.",
	})

	feedback, ok := capture.last(models.MsgFeedback)
	if !ok {
		t.Fatal("no feedback frame")
	}
	fb := feedback.Payload.(models.FeedbackPayload)
	if fb.QuestionID != q1.ID || fb.CurrentQuestionIndex != 1 {
		t.Fatalf("unexpected feedback payload: %#v", fb)
	}

	q2 := currentQuestion(t, capture)
	if q2.Order != 2 || q2.Type != models.QuestionBehavioral {
		t.Fatalf("unexpected second question: %#v", q2)
	}

	drive(t, o, c, models.MsgSubmitAnswer, models.SubmitAnswerPayload{
		QuestionID: q2.ID,
		Answer:     "I raised the disagreement early and we agreed on a spike.",
	})

	ended, ok := capture.last(models.MsgSessionEnded)
	if !ok {
		t.Fatal("no session_ended frame")
	}
	payload := ended.Payload.(map[string]interface{})
	summary := payload["summary"].(*models.SessionSummary)
	if summary.AnsweredQuestions != 2 || summary.TotalQuestions != 2 {
		t.Fatalf("unexpected summary: %#v", summary)
	}
	if summary.OverallScore < 6 || summary.OverallScore > 9 {
		t.Fatalf("overall score outside plausible range: %v", summary.OverallScore)
	}

	final, err := o.sessions.Get(sess.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if final.Status != models.StatusCompleted {
		t.Fatalf("expected completed status, got %s", final.Status)
	}
	if final.CurrentQuestionIndex != 2 {
		t.Fatalf("expected index 2, got %d", final.CurrentQuestionIndex)
	}
	if !c.Closed() {
		t.Fatal("connection should be closed after finalize")
	}
	if _, ok := o.registry.Get(sess.ID); ok {
		t.Fatal("registry entry should be removed after finalize")
	}
}

func TestChunkOrdering(t *testing.T) {
	o := newTestOrchestrator(t)
	sess := startSession(t, o)
	c, capture := connect(o, sess.ID)

	drive(t, o, c, models.MsgStartSession, nil)

	question := currentQuestion(t, capture)
	chunks := capture.byType(models.MsgQuestionChunk)
	if len(chunks) == 0 {
		t.Fatal("no question chunks emitted")
	}

	reassembled := ""
	for i, msg := range chunks {
		chunk := msg.Payload.(models.ChunkPayload)
		if chunk.Index != i {
			t.Fatalf("chunk out of order: %#v", chunk)
		}
		reassembled += chunk.Text
		if chunk.IsLast && chunk.FullContent != question.Text {
			t.Fatalf("final chunk does not carry the question text: %#v", chunk)
		}
	}
	if reassembled != question.Text {
		t.Fatalf("chunks do not reassemble the question:\n%q\n%q", reassembled, question.Text)
	}

	// Every chunk frame precedes the complete question frame.
	lastChunk, questionAt := -1, -1
	for i, msg := range capture.msgs {
		switch msg.Type {
		case models.MsgQuestionChunk:
			lastChunk = i
		case models.MsgQuestion:
			questionAt = i
		}
	}
	if lastChunk > questionAt {
		t.Fatal("chunk emitted after the complete question frame")
	}
}

func TestStartTwice(t *testing.T) {
	o := newTestOrchestrator(t)
	sess := startSession(t, o)
	c, capture := connect(o, sess.ID)

	drive(t, o, c, models.MsgStartSession, nil)
	drive(t, o, c, models.MsgStartSession, nil)

	errMsg, ok := capture.last(models.MsgError)
	if !ok {
		t.Fatal("expected an error frame for the second start")
	}
	if errMsg.Payload.(models.ErrorPayload).Code != "validation_error" {
		t.Fatalf("unexpected error payload: %#v", errMsg.Payload)
	}
}

func TestGenerateBeforeStart(t *testing.T) {
	o := newTestOrchestrator(t)
	sess := startSession(t, o)
	c, capture := connect(o, sess.ID)

	drive(t, o, c, models.MsgGenerateQuestion, nil)

	errMsg, ok := capture.last(models.MsgError)
	if !ok {
		t.Fatal("expected an error frame")
	}
	if errMsg.Payload.(models.ErrorPayload).Code != "validation_error" {
		t.Fatalf("unexpected error payload: %#v", errMsg.Payload)
	}

	// No question may exist before the session goes live.
	questions, err := o.sessions.Questions.GetBySessionID(sess.ID)
	if err != nil {
		t.Fatalf("GetBySessionID returned error: %v", err)
	}
	if len(questions) != 0 {
		t.Fatalf("no question should be stored, got %d", len(questions))
	}
	after, err := o.sessions.Get(sess.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if after.Status != models.StatusCreated {
		t.Fatalf("status should stay created, got %s", after.Status)
	}
}

func TestSubmitEmptyAnswer(t *testing.T) {
	o := newTestOrchestrator(t)
	sess := startSession(t, o)
	c, capture := connect(o, sess.ID)

	drive(t, o, c, models.MsgStartSession, nil)
	question := currentQuestion(t, capture)

	drive(t, o, c, models.MsgSubmitAnswer, models.SubmitAnswerPayload{
		QuestionID: question.ID,
		Answer:     "   ",
	})

	errMsg, ok := capture.last(models.MsgError)
	if !ok {
		t.Fatal("expected an error frame")
	}
	if errMsg.Payload.(models.ErrorPayload).Code != "answer_required" {
		t.Fatalf("unexpected error payload: %#v", errMsg.Payload)
	}

	// The rejected answer must not move the session forward.
	after, err := o.sessions.Get(sess.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if after.CurrentQuestionIndex != 0 {
		t.Fatalf("index should not advance, got %d", after.CurrentQuestionIndex)
	}
	responses, err := o.sessions.Responses.GetBySessionID(sess.ID)
	if err != nil {
		t.Fatalf("GetBySessionID returned error: %v", err)
	}
	if len(responses) != 0 {
		t.Fatalf("no response should be stored, got %d", len(responses))
	}
}

func TestSubmitWrongQuestion(t *testing.T) {
	o := newTestOrchestrator(t)
	sess := startSession(t, o)
	c, capture := connect(o, sess.ID)

	drive(t, o, c, models.MsgStartSession, nil)

	drive(t, o, c, models.MsgSubmitAnswer, models.SubmitAnswerPayload{
		QuestionID: "not-the-open-question",
		Answer:     "An answer for the wrong question.",
	})

	errMsg, ok := capture.last(models.MsgError)
	if !ok {
		t.Fatal("expected an error frame")
	}
	if errMsg.Payload.(models.ErrorPayload).Code != "not_current_question" {
		t.Fatalf("unexpected error payload: %#v", errMsg.Payload)
	}
}

func TestClientEnd(t *testing.T) {
	o := newTestOrchestrator(t)
	sess := startSession(t, o)
	c, capture := connect(o, sess.ID)

	drive(t, o, c, models.MsgStartSession, nil)
	drive(t, o, c, models.MsgEndSession, nil)

	ended, ok := capture.last(models.MsgSessionEnded)
	if !ok {
		t.Fatal("no session_ended frame")
	}
	if ended.Payload.(map[string]interface{})["reason"] != "client" {
		t.Fatalf("unexpected end payload: %#v", ended.Payload)
	}

	final, err := o.sessions.Get(sess.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if final.Status != models.StatusCompleted {
		t.Fatalf("expected completed, got %s", final.Status)
	}
}

func TestEndBeforeStartCancels(t *testing.T) {
	o := newTestOrchestrator(t)
	sess := startSession(t, o)
	c, _ := connect(o, sess.ID)

	drive(t, o, c, models.MsgEndSession, nil)

	final, err := o.sessions.Get(sess.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	// Ending a session that never went live abandons it rather than
	// recording a completed run.
	if final.Status != models.StatusCancelled {
		t.Fatalf("expected cancelled, got %s", final.Status)
	}
}

func TestDeferredAfterTerminalIsNoop(t *testing.T) {
	o := newTestOrchestrator(t)
	sess := startSession(t, o)
	c, capture := connect(o, sess.ID)

	drive(t, o, c, models.MsgStartSession, nil)
	drive(t, o, c, models.MsgEndSession, nil)

	before := len(capture.msgs)
	o.handleEvent(c, event{kind: models.MsgGenerateQuestion, deferred: true})
	o.handleEvent(c, event{kind: models.MsgEndSession, deferred: true})

	if len(capture.msgs) != before {
		t.Fatalf("deferred events after finalize should emit nothing, got %#v", capture.msgs[before:])
	}
}

func TestExpiryForceCompletes(t *testing.T) {
	o := newTestOrchestrator(t)
	sess := startSession(t, o)
	c, capture := connect(o, sess.ID)

	drive(t, o, c, models.MsgStartSession, nil)

	// Backdate the start so the budget is already spent.
	stored, err := o.sessions.Get(sess.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	past := time.Now().Add(-2 * time.Hour)
	stored.StartedAt = &past
	if err := o.sessions.Sessions.Update(stored); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	drive(t, o, c, eventExpire, nil)

	ended, ok := capture.last(models.MsgSessionEnded)
	if !ok {
		t.Fatal("no session_ended frame")
	}
	payload := ended.Payload.(map[string]interface{})
	if payload["reason"] != "expired" {
		t.Fatalf("expected expired reason, got %#v", payload)
	}
	summary := payload["summary"].(*models.SessionSummary)
	if summary.AnsweredQuestions != 0 {
		t.Fatalf("unexpected summary: %#v", summary)
	}

	final, err := o.sessions.Get(sess.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if final.Status != models.StatusCompleted {
		t.Fatalf("expected completed, got %s", final.Status)
	}
}

func TestExpiryRearmsWhileBudgetRemains(t *testing.T) {
	o := newTestOrchestrator(t)
	sess := startSession(t, o)
	c, capture := connect(o, sess.ID)

	drive(t, o, c, models.MsgStartSession, nil)

	// Budget still has plenty left: a premature expiry event re-arms
	// instead of ending the session.
	drive(t, o, c, eventExpire, nil)

	if _, ok := capture.last(models.MsgSessionEnded); ok {
		t.Fatal("session should not end while budget remains")
	}
	final, err := o.sessions.Get(sess.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if final.Status != models.StatusActive {
		t.Fatalf("expected active, got %s", final.Status)
	}
}

func TestLastRegistrationWins(t *testing.T) {
	o := newTestOrchestrator(t)
	sess := startSession(t, o)

	c1, _ := connect(o, sess.ID)
	c2, _ := connect(o, sess.ID)

	if !c1.Closed() {
		t.Fatal("superseded connection should be closed")
	}
	if c2.Closed() {
		t.Fatal("new connection should stay open")
	}
	current, ok := o.registry.Get(sess.ID)
	if !ok || current != c2 {
		t.Fatal("registry should point at the newest connection")
	}

	// The stale connection cannot evict its successor on teardown.
	o.dropConn(c1)
	if current, ok := o.registry.Get(sess.ID); !ok || current != c2 {
		t.Fatal("stale teardown must not remove the new connection")
	}
}

func TestUnknownEvent(t *testing.T) {
	o := newTestOrchestrator(t)
	sess := startSession(t, o)
	c, capture := connect(o, sess.ID)

	drive(t, o, c, "time_travel", nil)

	errMsg, ok := capture.last(models.MsgError)
	if !ok {
		t.Fatal("expected an error frame")
	}
	if errMsg.Payload.(models.ErrorPayload).Code != "validation_error" {
		t.Fatalf("unexpected error payload: %#v", errMsg.Payload)
	}
}
