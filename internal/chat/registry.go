package chat

import (
	"sync"
	"time"

	"github.com/Rrens/doc-chat/internal/domain"
	"github.com/google/uuid"
)

// sessionIDPrefix is kept for compatibility with clients that treat the
// identifier as "session_<opaque>"; the suffix is a UUID rather than a
// timestamp so concurrent creations cannot collide.
const sessionIDPrefix = "session_"

// DefaultMaxSessions bounds registry growth when no cap is configured
const DefaultMaxSessions = 100

type entry struct {
	session    *Session
	lastActive time.Time
}

// Registry is the process-wide mapping from session ID to Session.
// Entries survive Clear; when the configured cap is exceeded the least
// recently used session is evicted to bound memory growth.
type Registry struct {
	mu          sync.Mutex
	sessions    map[string]*entry
	maxSessions int
}

// NewRegistry creates a session registry holding at most maxSessions
// entries. A non-positive cap falls back to DefaultMaxSessions.
func NewRegistry(maxSessions int) *Registry {
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	return &Registry{
		sessions:    make(map[string]*entry),
		maxSessions: maxSessions,
	}
}

// Create stores a new session for the given document text and custom
// instruction and returns it with a freshly generated identifier.
func (r *Registry) Create(documentText, customInstruction string) *Session {
	id := sessionIDPrefix + uuid.NewString()
	session := NewSession(id, documentText, customInstruction)

	r.mu.Lock()
	defer r.mu.Unlock()

	for len(r.sessions) >= r.maxSessions {
		r.evictOldest()
	}
	r.sessions[id] = &entry{session: session, lastActive: time.Now()}
	return session
}

// Get returns the session stored under id and marks it recently used
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	e.lastActive = time.Now()
	return e.session, nil
}

// Clear empties the history of the session stored under id. The entry
// itself is kept.
func (r *Registry) Clear(id string) error {
	session, err := r.Get(id)
	if err != nil {
		return err
	}
	session.Clear()
	return nil
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// evictOldest removes the least recently used entry. Caller holds r.mu.
func (r *Registry) evictOldest() {
	var oldestID string
	var oldest time.Time
	for id, e := range r.sessions {
		if oldestID == "" || e.lastActive.Before(oldest) {
			oldestID = id
			oldest = e.lastActive
		}
	}
	if oldestID != "" {
		delete(r.sessions, oldestID)
	}
}
