package users_test

import (
	"testing"

	"github.com/jrsteele09/go-oidc-portal/internal/errors"
	"github.com/jrsteele09/go-oidc-portal/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKnownUsersRepoStoresProfilesWithoutTokens(t *testing.T) {
	repo := users.NewInMemoryKnownUsersRepo()
	profile := users.NewUserProfile("abc-123", "tok-1", "ref-1", map[string]any{"name": "Ada"})

	require.NoError(t, repo.Upsert(profile))
	require.Equal(t, 1, repo.Count())

	stored, err := repo.Get("abc-123")
	require.NoError(t, err)
	assert.Equal(t, "abc-123", stored.SubjectID)
	assert.Empty(t, stored.AccessToken)
	assert.Empty(t, stored.RefreshToken)
	assert.Equal(t, "Ada", stored.DisplayName())

	// The caller's profile keeps its tokens.
	assert.Equal(t, "tok-1", profile.AccessToken)
}

func TestKnownUsersRepoUpsertReplaces(t *testing.T) {
	repo := users.NewInMemoryKnownUsersRepo()
	require.NoError(t, repo.Upsert(users.NewUserProfile("abc-123", "tok-1", "", map[string]any{"name": "Ada"})))
	require.NoError(t, repo.Upsert(users.NewUserProfile("abc-123", "tok-2", "", map[string]any{"name": "Ada Lovelace"})))

	stored, err := repo.Get("abc-123")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", stored.DisplayName())
	assert.Equal(t, 1, repo.Count())
}

func TestKnownUsersRepoValidation(t *testing.T) {
	repo := users.NewInMemoryKnownUsersRepo()

	require.Error(t, repo.Upsert(nil))
	require.Error(t, repo.Upsert(users.NewUserProfile("", "tok-1", "", nil)))

	_, err := repo.Get("missing")
	require.ErrorIs(t, err, errors.ErrNotFound)
}

func TestKnownUsersRepoDelete(t *testing.T) {
	repo := users.NewInMemoryKnownUsersRepo()
	require.NoError(t, repo.Upsert(users.NewUserProfile("abc-123", "", "", nil)))

	require.NoError(t, repo.Delete("abc-123"))
	require.NoError(t, repo.Delete("abc-123"))
	require.Zero(t, repo.Count())
}
