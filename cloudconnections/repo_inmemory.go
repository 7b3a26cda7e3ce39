package cloudconnections

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/jrsteele09/go-oidc-portal/internal/errors"
)

var _ Repo = (*InMemoryRepo)(nil)

// InMemoryRepo is a thread-safe in-memory Repo. Contents are lost on restart.
type InMemoryRepo struct {
	mu          sync.RWMutex
	connections map[string]json.RawMessage
}

// NewInMemoryRepo creates a repo holding a copy of seed.
func NewInMemoryRepo(seed map[string]json.RawMessage) *InMemoryRepo {
	r := &InMemoryRepo{
		connections: make(map[string]json.RawMessage, len(seed)),
	}
	for id, value := range seed {
		r.connections[id] = clone(value)
	}
	return r
}

func (r *InMemoryRepo) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.connections))
	for id := range r.connections {
		keys = append(keys, id)
	}
	sort.Strings(keys)
	return keys
}

func (r *InMemoryRepo) Get(id string) (json.RawMessage, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.connections[id]
	if !ok {
		return nil, false
	}
	return clone(value), true
}

func (r *InMemoryRepo) Upsert(id string, value json.RawMessage) (bool, error) {
	if id == "" {
		return false, fmt.Errorf("id is required")
	}
	if !json.Valid(value) {
		return false, errors.Wrapf(errors.ErrInvalidInput, "connection %s is not valid JSON", id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, existed := r.connections[id]
	r.connections[id] = clone(value)
	return !existed, nil
}

func (r *InMemoryRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.connections[id]; !ok {
		return errors.Wrapf(errors.ErrNotFound, "connection %s", id)
	}
	delete(r.connections, id)
	return nil
}

func clone(value json.RawMessage) json.RawMessage {
	cp := make(json.RawMessage, len(value))
	copy(cp, value)
	return cp
}
