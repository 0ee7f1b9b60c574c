package models

import (
	"encoding/json"
	"time"
)

// Message types emitted by the server.
const (
	MsgSessionStart   = "session_start"
	MsgSessionStarted = "session_started"
	MsgQuestion       = "question_generated"
	MsgQuestionChunk  = "question_generated_chunk"
	MsgFeedback       = "feedback_generated"
	MsgFeedbackChunk  = "feedback_generated_chunk"
	MsgSessionEnded   = "session_ended"
	MsgHeartbeat      = "heartbeat"
	MsgError          = "error"
)

// Message types accepted from the client.
const (
	MsgStartSession     = "start_session"
	MsgGenerateQuestion = "generate_question"
	MsgSubmitAnswer     = "submit_answer"
	MsgEndSession       = "end_session"
)

// WSMessage is the envelope for every server-to-client frame.
type WSMessage struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	SessionID string      `json:"sessionId"`
}

// InboundMessage is a client frame before payload decoding.
type InboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// SubmitAnswerPayload is the payload of a submit_answer frame.
type SubmitAnswerPayload struct {
	QuestionID      string `json:"questionId"`
	Answer          string `json:"answer"`
	DurationSeconds int    `json:"duration,omitempty"`
}

// ChunkPayload is one ordered fragment of a streamed message. The final
// chunk carries the full untruncated text for client-side reconciliation.
type ChunkPayload struct {
	Index       int    `json:"index"`
	Text        string `json:"text"`
	IsLast      bool   `json:"isLast"`
	FullContent string `json:"fullContent,omitempty"`
}

// GreetingPayload accompanies session_started.
type GreetingPayload struct {
	Greeting string            `json:"greeting"`
	Session  *InterviewSession `json:"session"`
}

// FeedbackPayload accompanies feedback_generated.
type FeedbackPayload struct {
	QuestionID           string   `json:"questionId"`
	CommunicationScore   int      `json:"communicationScore"`
	TechnicalScore       int      `json:"technicalScore"`
	CompletenessScore    int      `json:"completenessScore"`
	OverallScore         int      `json:"overallScore"`
	Strengths            []string `json:"strengths"`
	Weaknesses           []string `json:"weaknesses"`
	Suggestions          []string `json:"suggestions"`
	CurrentQuestionIndex int      `json:"currentQuestionIndex"`
}

// ErrorPayload accompanies error frames.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Resp is the REST response wrapper.
type Resp struct {
	OK   bool        `json:"ok"`
	Info interface{} `json:"info"`
}
