package live

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"jobmate/interview/internal/metrics"
	"jobmate/interview/internal/middleware"
	"jobmate/interview/internal/models"
	"jobmate/interview/internal/session"
	"jobmate/interview/internal/utils"
)

const streamTokenTTL = 2 * time.Hour

// CreateSessionHandler creates a session from a validated setup request and
// returns it together with the stream token for the WebSocket connect.
func (o *Orchestrator) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		utils.WriteError(w, http.StatusBadRequest, "X-User-ID header is required")
		return
	}

	req := middleware.GetValidatedRequest[models.SessionSetupRequest](r)

	sess, err := o.sessions.Create(userID, &req)
	if err != nil {
		var vErr *models.ValidationError
		if errors.As(err, &vErr) {
			utils.WriteJSON(w, http.StatusBadRequest, models.Resp{OK: false, Info: vErr})
			return
		}
		o.logger.Error("failed to create session", zap.Error(err))
		utils.WriteError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	token, err := utils.GenerateStreamToken(sess.ID, userID, o.jwtSecret, streamTokenTTL)
	if err != nil {
		o.logger.Error("failed to issue stream token", zap.Error(err))
		utils.WriteError(w, http.StatusInternalServerError, "failed to issue stream token")
		return
	}

	utils.WriteJSON(w, http.StatusCreated, models.Resp{OK: true, Info: map[string]interface{}{
		"session":     sess,
		"streamToken": token,
	}})
}

// GetSessionHandler returns a session with its questions and responses. This
// is the ordinary read path a client uses after a dropped stream.
func (o *Orchestrator) GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")

	sess, err := o.sessions.Sessions.GetByIDWithQuestions(sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.WriteError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		o.logger.Error("failed to load session", zap.Error(err))
		utils.WriteError(w, http.StatusInternalServerError, "failed to load session")
		return
	}

	responses, err := o.sessions.Responses.GetBySessionID(sessionID)
	if err != nil {
		o.logger.Error("failed to load responses", zap.Error(err))
		utils.WriteError(w, http.StatusInternalServerError, "failed to load session")
		return
	}

	utils.WriteJSON(w, http.StatusOK, models.Resp{OK: true, Info: map[string]interface{}{
		"session":   sess,
		"responses": responses,
	}})
}

// ListSessionsHandler returns the caller's sessions, newest first.
func (o *Orchestrator) ListSessionsHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		utils.WriteError(w, http.StatusBadRequest, "X-User-ID header is required")
		return
	}

	sessions, err := o.sessions.Sessions.GetByUserID(userID)
	if err != nil {
		o.logger.Error("failed to list sessions", zap.Error(err))
		utils.WriteError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	utils.WriteJSON(w, http.StatusOK, models.Resp{OK: true, Info: sessions})
}

// SummaryHandler recomputes the session summary on demand.
func (o *Orchestrator) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")

	sess, err := o.sessions.Get(sessionID)
	if errors.Is(err, session.ErrSessionNotFound) {
		utils.WriteError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		o.logger.Error("failed to load session", zap.Error(err))
		utils.WriteError(w, http.StatusInternalServerError, "failed to load session")
		return
	}

	summary, err := o.sessions.Summary(sess)
	if err != nil {
		o.logger.Error("failed to compute summary", zap.Error(err))
		utils.WriteError(w, http.StatusInternalServerError, "failed to compute summary")
		return
	}
	utils.WriteJSON(w, http.StatusOK, models.Resp{OK: true, Info: summary})
}

// WsHandler upgrades the live stream for a session. A session has at most
// one live stream; a second connect supersedes the first without warning.
func (o *Orchestrator) WsHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		utils.WriteError(w, http.StatusBadRequest, "sessionId required")
		return
	}

	tokenString := r.URL.Query().Get("token")
	claims, err := utils.ValidateStreamToken(tokenString, o.jwtSecret)
	if err != nil || claims.SessionID != sessionID {
		utils.WriteError(w, http.StatusUnauthorized, "invalid stream token")
		return
	}

	sess, err := o.sessions.Get(sessionID)
	if errors.Is(err, session.ErrSessionNotFound) {
		utils.WriteError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	if session.Terminal(sess.Status) {
		utils.WriteError(w, http.StatusGone, "session already ended")
		return
	}

	sock, err := o.upgrader.Upgrade(w, r, nil)
	if err != nil {
		o.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	conn := NewConn(sessionID, sock)
	if prev := o.registry.Register(sessionID, conn); prev != nil {
		// Last writer wins: the superseded stream is closed silently.
		prev.Close()
	} else {
		metrics.LiveConnections.Inc()
	}

	// Closing the superseded stream stopped its budget timer. A session
	// that already started gets the timer re-armed on this connection, so
	// the deadline survives reconnects.
	if sess.Status != models.StatusCreated {
		conn.armExpiry(o.sessions.Remaining(sess, time.Now()))
	}

	o.logger.Info("stream connected",
		zap.String("session_id", sessionID),
		zap.String("user_id", claims.UserID))

	go o.runConn(conn)
	o.readLoop(conn, sock)
}
