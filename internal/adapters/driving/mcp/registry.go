package mcp

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kbridge/kbridge/internal/core/domain"
	"github.com/kbridge/kbridge/internal/logger"
)

// HandleFactory builds a transport handle for a new session's credentials.
type HandleFactory func(creds domain.Credentials) (TransportHandle, error)

// Session is one registry entry: a session id bound to a transport handle
// and the credentials it was created with.
type Session struct {
	// ID is the registry-generated session identifier.
	ID string

	// Handle is the session's transport, exclusively owned by the registry.
	Handle TransportHandle

	// credentials is replaced whole by TouchCredentials, never merged.
	credentials domain.Credentials

	lastSeen time.Time
}

// Credentials returns the session's current credential triple.
func (s *Session) Credentials() domain.Credentials {
	return s.credentials
}

// Registry maps session ids to live sessions. Entries are created on
// initialize and overwritten by TouchCredentials; there is no client-driven
// delete. With a zero idle TTL sessions live for the process lifetime,
// otherwise idle sessions are evicted lazily on lookup.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	idleTTL  time.Duration
	now      func() time.Time
}

// NewRegistry creates a session registry. idleTTL of zero disables
// eviction.
func NewRegistry(idleTTL time.Duration) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		idleTTL:  idleTTL,
		now:      time.Now,
	}
}

// Create generates a fresh session id, builds its handle and registers the
// entry. The entry only becomes visible once fully initialized: a
// concurrent Get can never observe a session without a handle.
func (r *Registry) Create(creds domain.Credentials, build HandleFactory) (*Session, error) {
	handle, err := build(creds)
	if err != nil {
		return nil, err
	}

	sess := &Session{
		Handle:      handle,
		credentials: creds,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// UUID collisions are vanishingly rare; regenerate anyway rather than
	// overwrite a live session.
	for {
		id := uuid.NewString()
		if _, taken := r.sessions[id]; !taken {
			sess.ID = id
			break
		}
	}
	sess.lastSeen = r.now()
	r.sessions[sess.ID] = sess

	logger.Debug("session %s created", sess.ID)
	return sess, nil
}

// Get looks up a session and marks it as seen. Expired sessions are
// evicted and reported as absent.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[id]
	if !ok {
		return nil, false
	}

	if r.idleTTL > 0 && r.now().Sub(sess.lastSeen) > r.idleTTL {
		delete(r.sessions, id)
		go sess.Handle.Close() //nolint:errcheck
		logger.Debug("session %s evicted after idle timeout", id)
		return nil, false
	}

	sess.lastSeen = r.now()
	return sess, true
}

// TouchCredentials overwrites a session's credentials. Last write wins; no
// merge. Unknown ids are ignored.
func (r *Registry) TouchCredentials(id string, creds domain.Credentials) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sess, ok := r.sessions[id]; ok {
		sess.credentials = creds
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close releases every session's handle.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for id, sess := range r.sessions {
		if err := sess.Handle.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(r.sessions, id)
	}
	return firstErr
}
