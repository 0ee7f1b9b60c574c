package live

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"jobmate/interview/internal/models"
)

// internal event kind for the session time-budget expiring
const eventExpire = "session_expired"

// event is one unit of work on a session's serialized queue. Deferred events
// are scheduled continuations; their handlers re-check session status and
// become no-ops when the session ended in the meantime.
type event struct {
	kind     string
	payload  json.RawMessage
	deferred bool
}

// Conn is one live stream for a session. All turn events for the session,
// client-initiated and deferred alike, flow through the single events channel
// and are consumed by one worker goroutine, so session state is never touched
// concurrently.
type Conn struct {
	SessionID string

	sock     *websocket.Conn
	writeMu  sync.Mutex
	sendHook func(models.WSMessage)

	events    chan event
	done      chan struct{}
	closeOnce sync.Once

	ackMu       sync.Mutex
	awaitingAck bool

	timerMu sync.Mutex
	expiry  *time.Timer
}

func NewConn(sessionID string, sock *websocket.Conn) *Conn {
	return &Conn{
		SessionID: sessionID,
		sock:      sock,
		events:    make(chan event, 16),
		done:      make(chan struct{}),
	}
}

// SetSendHook replaces the WebSocket sender; used in tests.
func (c *Conn) SetSendHook(fn func(models.WSMessage)) {
	c.writeMu.Lock()
	c.sendHook = fn
	c.writeMu.Unlock()
}

// Send writes one envelope to the client. Writes are serialized so chunks of
// one message never interleave with a later message.
func (c *Conn) Send(msg models.WSMessage) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.sendHook != nil {
		c.sendHook(msg)
		return nil
	}
	if c.sock == nil {
		return nil
	}
	return c.sock.WriteJSON(msg)
}

// Close tears the connection down. Safe to call more than once.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.timerMu.Lock()
		if c.expiry != nil {
			c.expiry.Stop()
		}
		c.timerMu.Unlock()
		if c.sock != nil {
			c.sock.Close()
		}
	})
}

// Closed reports whether Close has been called.
func (c *Conn) Closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// enqueue puts an event on the session's queue, dropping it if the
// connection is already closed.
func (c *Conn) enqueue(ev event) bool {
	select {
	case <-c.done:
		return false
	case c.events <- ev:
		return true
	}
}

// armExpiry schedules the wall-clock budget event. Re-arming replaces the
// previous timer.
func (c *Conn) armExpiry(d time.Duration) {
	c.timerMu.Lock()
	defer c.timerMu.Unlock()
	if c.expiry != nil {
		c.expiry.Stop()
	}
	c.expiry = time.AfterFunc(d, func() {
		c.enqueue(event{kind: eventExpire, deferred: true})
	})
}

// beginHeartbeat marks a heartbeat as outstanding. It returns false when the
// previous heartbeat was never acknowledged, meaning the peer is presumed
// dead.
func (c *Conn) beginHeartbeat() bool {
	c.ackMu.Lock()
	defer c.ackMu.Unlock()
	if c.awaitingAck {
		return false
	}
	c.awaitingAck = true
	return true
}

// ackHeartbeat records a heartbeat acknowledgement from the client.
func (c *Conn) ackHeartbeat() {
	c.ackMu.Lock()
	c.awaitingAck = false
	c.ackMu.Unlock()
}
