package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/dstrand/vitrine/internal/domain"
)

// Session is one persisted checkout attempt. Persisting the state machine
// position means a page reload mid-flow resumes or queries instead of
// re-triggering payment.
type Session struct {
	ID          string
	CartSession string
	State       domain.CheckoutState

	PaymentMethod   domain.PaymentMethod
	OrderID         string
	InvoiceNo       string
	PaymentIntentID string
	ClientSecret    string

	// FailureMessage is the user-facing message for a failed attempt.
	FailureMessage string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store persists checkout sessions.
type Store interface {
	// Save upserts a session by ID.
	Save(ctx context.Context, session *Session) error

	// Get loads a session by ID. Returns domain.ErrCheckoutSessionNotFound
	// when absent.
	Get(ctx context.Context, id string) (*Session, error)
}

// MemoryStore is an in-process Store for tests and single-node development.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

func (s *MemoryStore) Save(ctx context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session.UpdatedAt = time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = session.UpdatedAt
	}
	s.sessions[session.ID] = *session
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrCheckoutSessionNotFound
	}
	return &session, nil
}

// All returns every stored session. Intended for tests and diagnostics.
func (s *MemoryStore) All() []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		session := session
		out = append(out, &session)
	}
	return out
}

var _ Store = (*MemoryStore)(nil)
