package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/jrsteele09/go-oidc-portal/directory"
	"github.com/jrsteele09/go-oidc-portal/internal/errors"
	"github.com/jrsteele09/go-oidc-portal/sessions"
	"github.com/jrsteele09/go-oidc-portal/users"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

var _ sessions.Resolver = (*Resolver)(nil)

// Resolver turns a session record into a full profile by asking the
// directory on the user's behalf. Every failure, whatever the cause, is
// reported as ErrNoProfile.
type Resolver struct {
	directory  directory.Client
	knownUsers users.KnownUsersRepo

	// deduplicates concurrent lookups for the same subject and token
	lookups singleflight.Group
}

// ResolverOption configures the Resolver.
type ResolverOption func(*Resolver)

// WithKnownUsers records every resolved user in repo.
func WithKnownUsers(repo users.KnownUsersRepo) ResolverOption {
	return func(r *Resolver) {
		r.knownUsers = repo
	}
}

func NewResolver(client directory.Client, opts ...ResolverOption) *Resolver {
	r := &Resolver{directory: client}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve fetches the directory profile for record. The tokens and the
// subject id on the result come from record; the directory's own id field
// is kept only as an ordinary attribute.
func (r *Resolver) Resolve(ctx context.Context, record sessions.Record) (*users.UserProfile, error) {
	logger := log.Ctx(ctx).With().Str("oid", record.SubjectID).Logger()

	if record.AccessToken == "" {
		logger.Debug().Msg("session record has no access token")
		return nil, errors.ErrNoProfile
	}

	// The shared lookup must outlive whichever caller started it; the
	// directory client bounds it with its own timeout.
	lookupCtx := context.WithoutCancel(ctx)
	results := r.lookups.DoChan(lookupKey(record), func() (interface{}, error) {
		return r.directory.FetchProfile(lookupCtx, record.AccessToken)
	})

	var result singleflight.Result
	select {
	case result = <-results:
	case <-ctx.Done():
		logger.Debug().Err(ctx.Err()).Msg("request ended before directory lookup finished")
		return nil, errors.Wrapf(errors.ErrNoProfile, "%v", ctx.Err())
	}
	if result.Err != nil {
		logger.Warn().Err(result.Err).Msg("directory lookup failed")
		return nil, errors.Wrapf(errors.ErrNoProfile, "directory lookup")
	}
	shared := result.Shared
	document, _ := result.Val.(map[string]any)
	if len(document) == 0 {
		logger.Warn().Msg("directory returned an empty profile")
		return nil, errors.ErrNoProfile
	}

	profile := users.NewUserProfile(record.SubjectID, record.AccessToken, record.RefreshToken, document)
	logger.Debug().Bool("shared", shared).Msg("resolved user profile")

	if r.knownUsers != nil && profile.SubjectID != "" {
		if err := r.knownUsers.Upsert(profile); err != nil {
			logger.Warn().Err(err).Msg("failed to record known user")
		}
	}
	return profile, nil
}

// lookupKey avoids keeping raw bearer tokens as map keys.
func lookupKey(record sessions.Record) string {
	sum := sha256.Sum256([]byte(record.SubjectID + "\x00" + record.AccessToken))
	return hex.EncodeToString(sum[:])
}
