package identity_test

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-oidc-portal/directory/fakedirectory"
	"github.com/jrsteele09/go-oidc-portal/identity"
	"github.com/jrsteele09/go-oidc-portal/internal/errors"
	"github.com/jrsteele09/go-oidc-portal/sessions"
	"github.com/jrsteele09/go-oidc-portal/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveBuildsProfileFromRecordAndDirectory(t *testing.T) {
	dir := fakedirectory.NewFakeDirectory()
	dir.SetProfile("tok-1", map[string]any{"name": "Ada", "id": "directory-id"})
	known := users.NewInMemoryKnownUsersRepo()
	resolver := identity.NewResolver(dir, identity.WithKnownUsers(known))

	profile, err := resolver.Resolve(context.Background(), sessions.Record{
		SubjectID:    "abc-123",
		AccessToken:  "tok-1",
		RefreshToken: "ref-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "abc-123", profile.SubjectID)
	assert.Equal(t, "tok-1", profile.AccessToken)
	assert.Equal(t, "ref-1", profile.RefreshToken)
	assert.Equal(t, "Ada", profile.DisplayName())
	id, ok := profile.Attribute("id")
	assert.True(t, ok)
	assert.Equal(t, "directory-id", id)

	stored, err := known.Get("abc-123")
	require.NoError(t, err)
	assert.Empty(t, stored.AccessToken)
	assert.Empty(t, stored.RefreshToken)
	assert.Equal(t, "Ada", stored.DisplayName())
}

func TestResolveWithoutAccessTokenSkipsDirectory(t *testing.T) {
	dir := fakedirectory.NewFakeDirectory()
	resolver := identity.NewResolver(dir)

	_, err := resolver.Resolve(context.Background(), sessions.Record{SubjectID: "abc-123"})
	require.ErrorIs(t, err, errors.ErrNoProfile)
	require.Zero(t, dir.Calls())
}

func TestResolveFailuresAreNoProfile(t *testing.T) {
	dir := fakedirectory.NewFakeDirectory()
	dir.SetError("revoked", stderrors.New("401 from directory"))
	dir.SetProfile("empty", nil)
	dir.SetProfile("blank", map[string]any{})
	known := users.NewInMemoryKnownUsersRepo()
	resolver := identity.NewResolver(dir, identity.WithKnownUsers(known))

	for _, token := range []string{"revoked", "empty", "blank", "unknown"} {
		t.Run(token, func(t *testing.T) {
			profile, err := resolver.Resolve(context.Background(), sessions.Record{SubjectID: "abc-123", AccessToken: token})
			require.Nil(t, profile)
			require.ErrorIs(t, err, errors.ErrNoProfile)
		})
	}
	require.Zero(t, known.Count())
}

func TestResolveSharesConcurrentLookups(t *testing.T) {
	dir := fakedirectory.NewFakeDirectory()
	dir.SetProfile("tok-1", map[string]any{"name": "Ada"})
	release := dir.Block()
	resolver := identity.NewResolver(dir)

	const callers = 10
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			profile, err := resolver.Resolve(context.Background(), sessions.Record{SubjectID: "abc-123", AccessToken: "tok-1"})
			if err == nil && profile.SubjectID != "abc-123" {
				err = stderrors.New("wrong subject")
			}
			errs <- err
		}()
	}

	require.Eventually(t, func() bool { return dir.Calls() >= 1 }, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	release()
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	require.Less(t, dir.Calls(), callers)
}

func TestResolveSharedLookupOutlivesCancelledCaller(t *testing.T) {
	dir := fakedirectory.NewFakeDirectory()
	dir.SetProfile("tok-1", map[string]any{"name": "Ada"})
	release := dir.Block()
	defer release()
	resolver := identity.NewResolver(dir)
	record := sessions.Record{SubjectID: "abc-123", AccessToken: "tok-1"}

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := resolver.Resolve(firstCtx, record)
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return dir.Calls() == 1 }, time.Second, time.Millisecond)

	type outcome struct {
		profile *users.UserProfile
		err     error
	}
	second := make(chan outcome, 1)
	go func() {
		profile, err := resolver.Resolve(context.Background(), record)
		second <- outcome{profile, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	select {
	case err := <-firstErr:
		require.ErrorIs(t, err, errors.ErrNoProfile)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller did not return")
	}

	release()
	select {
	case got := <-second:
		require.NoError(t, got.err)
		require.Equal(t, "abc-123", got.profile.SubjectID)
		require.Equal(t, "Ada", got.profile.DisplayName())
	case <-time.After(time.Second):
		t.Fatal("live caller did not return")
	}
}

func TestResolveDoesNotShareAcrossTokens(t *testing.T) {
	dir := fakedirectory.NewFakeDirectory()
	dir.SetProfile("tok-1", map[string]any{"name": "Ada"})
	dir.SetProfile("tok-2", map[string]any{"name": "Grace"})
	resolver := identity.NewResolver(dir)

	first, err := resolver.Resolve(context.Background(), sessions.Record{SubjectID: "a", AccessToken: "tok-1"})
	require.NoError(t, err)
	second, err := resolver.Resolve(context.Background(), sessions.Record{SubjectID: "b", AccessToken: "tok-2"})
	require.NoError(t, err)

	require.Equal(t, "Ada", first.DisplayName())
	require.Equal(t, "Grace", second.DisplayName())
	require.Equal(t, 2, dir.Calls())
}
