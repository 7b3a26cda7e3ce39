package users

import (
	"fmt"
	"sort"
)

// UserProfile is the resolved application identity for one request.
// SubjectID and the two tokens are the trusted fields; everything the
// directory returned lives in Extra. A profile is never mutated after
// construction.
type UserProfile struct {
	SubjectID    string         `json:"oid"`
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	Extra        map[string]any `json:"-"`
}

// NewUserProfile builds a profile from the trusted fields and a directory document.
// The document is copied so later changes by the caller are not observed.
func NewUserProfile(subjectID, accessToken, refreshToken string, directory map[string]any) *UserProfile {
	extra := make(map[string]any, len(directory))
	for k, v := range directory {
		extra[k] = v
	}
	return &UserProfile{
		SubjectID:    subjectID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Extra:        extra,
	}
}

// Attribute returns a directory field by name.
func (p *UserProfile) Attribute(name string) (any, bool) {
	if p == nil {
		return nil, false
	}
	v, ok := p.Extra[name]
	return v, ok
}

// DisplayName picks the best human readable name available.
func (p *UserProfile) DisplayName() string {
	for _, field := range []string{"displayName", "name", "givenName", "userPrincipalName"} {
		if v, ok := p.Attribute(field); ok {
			if s := fmt.Sprint(v); s != "" {
				return s
			}
		}
	}
	if p == nil {
		return ""
	}
	return p.SubjectID
}

// Mail returns the user's mail address, falling back to the principal name.
func (p *UserProfile) Mail() string {
	for _, field := range []string{"mail", "email", "userPrincipalName"} {
		if v, ok := p.Attribute(field); ok && v != nil {
			return fmt.Sprint(v)
		}
	}
	return ""
}

// AttributeNames returns the directory field names in sorted order.
func (p *UserProfile) AttributeNames() []string {
	if p == nil {
		return nil
	}
	names := make([]string, 0, len(p.Extra))
	for k := range p.Extra {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// WithoutTokens returns a copy that carries no credentials.
func (p *UserProfile) WithoutTokens() *UserProfile {
	return NewUserProfile(p.SubjectID, "", "", p.Extra)
}
