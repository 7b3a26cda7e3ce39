package sessions

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-oidc-portal/internal/errors"
	"github.com/jrsteele09/go-oidc-portal/users"
)

const (
	claimSubjectID    = "oid"
	claimAccessToken  = "access_token"
	claimRefreshToken = "refresh_token"
)

// Record is the only identity state persisted across requests. It travels in
// the sealed session cookie; the server keeps no copy.
type Record struct {
	SubjectID    string `json:"oid"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"` // stored for a future refresh flow, unused today
}

// Resolver materializes a full profile from a session record.
type Resolver interface {
	Resolve(ctx context.Context, record Record) (*users.UserProfile, error)
}

// Serialize projects the three persisted fields out of profile. Directory
// attributes are dropped.
func Serialize(profile *users.UserProfile) Record {
	return Record{
		SubjectID:    profile.SubjectID,
		AccessToken:  profile.AccessToken,
		RefreshToken: profile.RefreshToken,
	}
}

// Codec turns session records back into profiles.
type Codec struct {
	resolver Resolver
}

func NewCodec(resolver Resolver) *Codec {
	return &Codec{resolver: resolver}
}

// Deserialize rejects a record without an access token before any directory
// call is made, and otherwise delegates to the resolver.
func (c *Codec) Deserialize(ctx context.Context, record Record) (*users.UserProfile, error) {
	if record.AccessToken == "" {
		return nil, errors.ErrNoProfile
	}
	return c.resolver.Resolve(ctx, record)
}

func (r Record) claims() jwt.MapClaims {
	return jwt.MapClaims{
		claimSubjectID:    r.SubjectID,
		claimAccessToken:  r.AccessToken,
		claimRefreshToken: r.RefreshToken,
	}
}

func recordFromClaims(claims jwt.MapClaims) Record {
	str := func(key string) string {
		s, _ := claims[key].(string)
		return s
	}
	return Record{
		SubjectID:    str(claimSubjectID),
		AccessToken:  str(claimAccessToken),
		RefreshToken: str(claimRefreshToken),
	}
}
