package authflow

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/jrsteele09/go-oidc-portal/internal/errors"
)

var _ Store = (*InMemoryStore)(nil)

// InMemoryStore is a thread-safe Store holding at most maxAmount flows, each
// valid for lifetime. When full, the oldest flow is evicted.
type InMemoryStore struct {
	mu        sync.Mutex
	states    map[string]*FlowState
	lifetime  time.Duration
	maxAmount int
	now       func() time.Time
}

func NewInMemoryStore(lifetime time.Duration, maxAmount int) *InMemoryStore {
	if maxAmount < 1 {
		maxAmount = 1
	}
	return &InMemoryStore{
		states:    make(map[string]*FlowState),
		lifetime:  lifetime,
		maxAmount: maxAmount,
		now:       time.Now,
	}
}

func (s *InMemoryStore) Save(_ http.ResponseWriter, _ *http.Request, flow *FlowState) error {
	if flow == nil {
		return fmt.Errorf("flow cannot be nil")
	}
	if flow.State == "" {
		return fmt.Errorf("state cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpired()
	for len(s.states) >= s.maxAmount {
		s.evictOldest()
	}

	stored := flow.clone()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = s.now()
	}
	s.states[stored.State] = stored
	return nil
}

func (s *InMemoryStore) Take(_ http.ResponseWriter, _ *http.Request, state string) (*FlowState, error) {
	if state == "" {
		return nil, errors.Wrapf(errors.ErrInvalidState, "empty state")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	flow, ok := s.states[state]
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidState, "unknown state")
	}
	delete(s.states, state)

	if s.expired(flow) {
		return nil, errors.Wrapf(errors.ErrInvalidState, "state older than %s", s.lifetime)
	}
	return flow.clone(), nil
}

// Len reports how many flows are currently held.
func (s *InMemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}

func (s *InMemoryStore) expired(flow *FlowState) bool {
	return s.now().Sub(flow.CreatedAt) > s.lifetime
}

func (s *InMemoryStore) purgeExpired() {
	for state, flow := range s.states {
		if s.expired(flow) {
			delete(s.states, state)
		}
	}
}

func (s *InMemoryStore) evictOldest() {
	var oldest *FlowState
	for _, flow := range s.states {
		if oldest == nil || flow.CreatedAt.Before(oldest.CreatedAt) {
			oldest = flow
		}
	}
	if oldest != nil {
		delete(s.states, oldest.State)
	}
}
