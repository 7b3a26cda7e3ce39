package users

import (
	"fmt"
	"sync"

	"github.com/jrsteele09/go-oidc-portal/internal/errors"
)

var _ KnownUsersRepo = (*InMemoryKnownUsersRepo)(nil)

// InMemoryKnownUsersRepo is a thread-safe in-memory KnownUsersRepo.
// Stored profiles never carry tokens.
type InMemoryKnownUsersRepo struct {
	mu    sync.RWMutex
	users map[string]*UserProfile
}

func NewInMemoryKnownUsersRepo() *InMemoryKnownUsersRepo {
	return &InMemoryKnownUsersRepo{
		users: make(map[string]*UserProfile),
	}
}

func (r *InMemoryKnownUsersRepo) Upsert(profile *UserProfile) error {
	if profile == nil || profile.SubjectID == "" {
		return fmt.Errorf("subjectID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.users[profile.SubjectID] = profile.WithoutTokens()
	return nil
}

func (r *InMemoryKnownUsersRepo) Get(subjectID string) (*UserProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profile, ok := r.users[subjectID]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "user %s", subjectID)
	}
	return profile.WithoutTokens(), nil
}

// Delete removes a user. Deleting an unknown user is not an error.
func (r *InMemoryKnownUsersRepo) Delete(subjectID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.users, subjectID)
	return nil
}

func (r *InMemoryKnownUsersRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}
