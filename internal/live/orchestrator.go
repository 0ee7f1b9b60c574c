package live

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"jobmate/interview/internal/ai"
	"jobmate/interview/internal/config"
	"jobmate/interview/internal/events"
	"jobmate/interview/internal/metrics"
	"jobmate/interview/internal/models"
	"jobmate/interview/internal/session"
)

// Orchestrator runs the live interview flow: it owns the connection
// registry, drives the per-session turn loop, streams generated content in
// chunks and reaps dead connections via heartbeats.
type Orchestrator struct {
	logger   *zap.Logger
	sessions *session.Manager
	provider ai.Provider
	registry Registry
	events   *events.Publisher
	upgrader websocket.Upgrader

	jwtSecret []byte

	questionDelay     time.Duration
	chunkDelay        time.Duration
	heartbeatInterval time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

func NewOrchestrator(cfg *config.Config, sessions *session.Manager, provider ai.Provider, publisher *events.Publisher, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		logger:   logger,
		sessions: sessions,
		provider: provider,
		registry: NewMemoryRegistry(),
		events:   publisher,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		jwtSecret:         []byte(cfg.JWTSecret),
		questionDelay:     cfg.QuestionDelay,
		chunkDelay:        cfg.ChunkDelay,
		heartbeatInterval: cfg.HeartbeatInterval,
		stop:              make(chan struct{}),
	}
}

// Registry exposes the connection lookup, used by the sweeper to skip
// sessions that still have a live stream.
func (o *Orchestrator) Registry() Registry { return o.registry }

// runConn is the single worker for one connection. Every turn event for the
// session goes through here in arrival order.
func (o *Orchestrator) runConn(c *Conn) {
	for {
		select {
		case <-o.stop:
			o.dropConn(c)
			return
		case <-c.done:
			return
		case ev := <-c.events:
			o.handleEvent(c, ev)
		}
	}
}

// readLoop consumes client frames until the socket errors. Heartbeat acks
// are handled inline; everything else is queued for the worker.
func (o *Orchestrator) readLoop(c *Conn, sock *websocket.Conn) {
	defer o.dropConn(c)

	for {
		var inbound models.InboundMessage
		if err := sock.ReadJSON(&inbound); err != nil {
			o.logger.Debug("stream read ended",
				zap.String("session_id", c.SessionID),
				zap.Error(err))
			return
		}

		switch inbound.Type {
		case models.MsgHeartbeat:
			c.ackHeartbeat()
		case models.MsgStartSession, models.MsgGenerateQuestion, models.MsgSubmitAnswer, models.MsgEndSession:
			c.enqueue(event{kind: inbound.Type, payload: inbound.Payload})
		default:
			o.sendError(c, &models.ValidationError{Message: "unknown message type: " + inbound.Type})
		}
	}
}

// scheduleEvent queues a deferred continuation after the given delay. The
// handler re-checks session status when it fires.
func (o *Orchestrator) scheduleEvent(c *Conn, kind string, delay time.Duration) {
	if delay <= 0 {
		c.enqueue(event{kind: kind, deferred: true})
		return
	}
	time.AfterFunc(delay, func() {
		c.enqueue(event{kind: kind, deferred: true})
	})
}

// dropConn releases the registry entry and closes the connection.
func (o *Orchestrator) dropConn(c *Conn) {
	if o.registry.Remove(c.SessionID, c) {
		metrics.LiveConnections.Dec()
	}
	c.Close()
}

// StartHeartbeatLoop runs the liveness check until Stop is called. A
// connection that has not acknowledged the previous heartbeat is presumed
// dead and forcibly closed.
func (o *Orchestrator) StartHeartbeatLoop() {
	ticker := time.NewTicker(o.heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-o.stop:
			return
		case <-ticker.C:
			for _, c := range o.registry.Snapshot() {
				if !c.beginHeartbeat() {
					o.logger.Info("heartbeat missed, closing connection",
						zap.String("session_id", c.SessionID))
					metrics.HeartbeatDrops.Inc()
					o.dropConn(c)
					continue
				}
				if err := c.Send(newMessage(models.MsgHeartbeat, c.SessionID, nil)); err != nil {
					o.dropConn(c)
				}
			}
		}
	}
}

// Stop shuts the orchestrator down and closes every live connection.
func (o *Orchestrator) Stop() {
	o.stopOnce.Do(func() {
		close(o.stop)
		for _, c := range o.registry.Snapshot() {
			o.dropConn(c)
		}
	})
}

func newMessage(msgType, sessionID string, payload interface{}) models.WSMessage {
	return models.WSMessage{
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
		SessionID: sessionID,
	}
}
