package users_test

import (
	"testing"

	"github.com/jrsteele09/go-oidc-portal/users"
	"github.com/stretchr/testify/assert"
)

func TestNewUserProfileCopiesDirectory(t *testing.T) {
	document := map[string]any{"name": "Ada"}
	profile := users.NewUserProfile("abc-123", "tok-1", "ref-1", document)
	document["name"] = "changed"

	assert.Equal(t, "Ada", profile.DisplayName())
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name     string
		document map[string]any
		want     string
	}{
		{"display name wins", map[string]any{"displayName": "Ada Lovelace", "name": "Ada"}, "Ada Lovelace"},
		{"name", map[string]any{"name": "Ada"}, "Ada"},
		{"principal name", map[string]any{"userPrincipalName": "ada@example.com"}, "ada@example.com"},
		{"falls back to subject", map[string]any{"jobTitle": "Analyst"}, "abc-123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, users.NewUserProfile("abc-123", "", "", tt.document).DisplayName())
		})
	}

	var nilProfile *users.UserProfile
	assert.Empty(t, nilProfile.DisplayName())
}

func TestMailAndAttributeNames(t *testing.T) {
	profile := users.NewUserProfile("abc-123", "", "", map[string]any{
		"userPrincipalName": "ada@example.com",
		"jobTitle":          "Analyst",
	})

	assert.Equal(t, "ada@example.com", profile.Mail())
	assert.Equal(t, []string{"jobTitle", "userPrincipalName"}, profile.AttributeNames())
}
