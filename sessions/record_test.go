package sessions_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/jrsteele09/go-oidc-portal/directory/fakedirectory"
	"github.com/jrsteele09/go-oidc-portal/identity"
	"github.com/jrsteele09/go-oidc-portal/internal/errors"
	"github.com/jrsteele09/go-oidc-portal/sessions"
	"github.com/jrsteele09/go-oidc-portal/users"
	"github.com/stretchr/testify/require"
)

func TestSerializeKeepsOnlySessionFields(t *testing.T) {
	profile := users.NewUserProfile("abc-123", "tok-1", "ref-1", map[string]any{
		"name": "Ada",
		"mail": "ada@example.com",
		"id":   "directory-id",
	})

	record := sessions.Serialize(profile)
	require.Equal(t, sessions.Record{SubjectID: "abc-123", AccessToken: "tok-1", RefreshToken: "ref-1"}, record)

	encoded, err := json.Marshal(record)
	require.NoError(t, err)
	var keys map[string]any
	require.NoError(t, json.Unmarshal(encoded, &keys))
	require.Len(t, keys, 3)
	require.Contains(t, keys, "oid")
	require.Contains(t, keys, "access_token")
	require.Contains(t, keys, "refresh_token")
}

func TestDeserializeRejectsMissingAccessTokenWithoutDirectoryCall(t *testing.T) {
	dir := fakedirectory.NewFakeDirectory()
	codec := sessions.NewCodec(identity.NewResolver(dir))

	for _, record := range []sessions.Record{
		{},
		{SubjectID: "abc-123"},
		{SubjectID: "abc-123", RefreshToken: "ref-1"},
	} {
		profile, err := codec.Deserialize(context.Background(), record)
		require.Nil(t, profile)
		require.ErrorIs(t, err, errors.ErrNoProfile)
	}
	require.Zero(t, dir.Calls())
}

func TestSerializeAfterResolveRoundTrips(t *testing.T) {
	dir := fakedirectory.NewFakeDirectory()
	dir.SetProfile("tok-1", map[string]any{"name": "Ada", "id": "someone-else"})
	codec := sessions.NewCodec(identity.NewResolver(dir))

	in := sessions.Record{SubjectID: "abc-123", AccessToken: "tok-1", RefreshToken: "ref-1"}
	profile, err := codec.Deserialize(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, in, sessions.Serialize(profile))
	require.Equal(t, 1, dir.Calls())
}

func TestDeserializeDirectoryFailureIsNoProfile(t *testing.T) {
	dir := fakedirectory.NewFakeDirectory()
	codec := sessions.NewCodec(identity.NewResolver(dir))

	_, err := codec.Deserialize(context.Background(), sessions.Record{SubjectID: "abc-123", AccessToken: "expired"})
	require.ErrorIs(t, err, errors.ErrNoProfile)
	require.Equal(t, 1, dir.Calls())
}
