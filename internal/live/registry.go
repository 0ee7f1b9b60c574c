package live

import "sync"

// Registry is the lookup for the live stream of a session. A session has at
// most one live stream; registering over an existing entry supersedes it
// (last writer wins). The in-memory implementation is per process; a real
// multi-instance deployment would back this with sticky routing or pub/sub.
type Registry interface {
	// Register installs c as the live connection for the session and
	// returns the superseded connection, if any.
	Register(sessionID string, c *Conn) *Conn
	Get(sessionID string) (*Conn, bool)
	// Remove deletes the entry only if c is still the registered
	// connection, so a superseded connection cannot evict its successor.
	Remove(sessionID string, c *Conn) bool
	Snapshot() []*Conn
}

type memoryRegistry struct {
	mu    sync.RWMutex
	conns map[string]*Conn
}

func NewMemoryRegistry() Registry {
	return &memoryRegistry{conns: make(map[string]*Conn)}
}

func (r *memoryRegistry) Register(sessionID string, c *Conn) *Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.conns[sessionID]
	r.conns[sessionID] = c
	return prev
}

func (r *memoryRegistry) Get(sessionID string) (*Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[sessionID]
	return c, ok
}

func (r *memoryRegistry) Remove(sessionID string, c *Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conns[sessionID] != c {
		return false
	}
	delete(r.conns, sessionID)
	return true
}

func (r *memoryRegistry) Snapshot() []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Conn, 0, len(r.conns))
	for _, c := range r.conns {
		out = append(out, c)
	}
	return out
}
