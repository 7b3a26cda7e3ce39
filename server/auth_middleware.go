package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-oidc-portal/internal/errors"
	"github.com/jrsteele09/go-oidc-portal/users"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyUser stores the profile materialized for this request
	ContextKeyUser ContextKey = "user"
)

func withUser(ctx context.Context, profile *users.UserProfile) context.Context {
	return context.WithValue(ctx, ContextKeyUser, profile)
}

// UserFromContext returns the identity attached to ctx, or nil.
func UserFromContext(ctx context.Context) *users.UserProfile {
	profile, _ := ctx.Value(ContextKeyUser).(*users.UserProfile)
	return profile
}

// isAuthenticated is the single predicate behind both gates. It only looks at
// what SessionMiddleware already materialized; it never resolves.
func isAuthenticated(r *http.Request) bool {
	profile := UserFromContext(r.Context())
	return profile != nil && profile.SubjectID != ""
}

// SessionMiddleware opens the session cookie and rehydrates the identity once
// per request. A session that cannot be rehydrated, for whatever reason, is
// dropped and the request continues anonymously.
func (s *Server) SessionMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.Ctx(r.Context())

		record, err := s.sessionCookies.Load(r)
		if err != nil {
			if !errors.Is(err, errors.ErrNotFound) {
				logger.Info().Err(err).Msg("discarding unreadable session cookie")
				s.metrics.sessionLoaded(sessionInvalid)
				s.sessionCookies.Destroy(w, r)
			}
			next(w, r)
			return
		}

		profile, err := s.codec.Deserialize(r.Context(), record)
		if err != nil && r.Context().Err() != nil {
			// The client went away mid lookup; its session is still good.
			logger.Debug().Err(err).Msg("request cancelled during session rehydration")
			return
		}
		if err != nil {
			logger.Info().Err(err).Str("oid", record.SubjectID).Msg("session could not be rehydrated, logging out")
			s.metrics.sessionLoaded(sessionNoProfile)
			s.sessionCookies.Destroy(w, r)
			next(w, r)
			return
		}

		s.metrics.sessionLoaded(sessionResolved)
		next(w, r.WithContext(withUser(r.Context(), profile)))
	}
}

// EnsurePage guards browser pages: anonymous visitors are sent to /login.
func (s *Server) EnsurePage(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if isAuthenticated(r) {
			next(w, r)
			return
		}
		s.metrics.gateRejected(gatePage)
		http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
	}
}

// EnsureAPI guards programmatic routes: anonymous callers get a 401 and the
// chain stops here.
func (s *Server) EnsureAPI(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if isAuthenticated(r) {
			next(w, r)
			return
		}
		s.metrics.gateRejected(gateAPI)
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", errors.ErrUnauthenticated.Error())
	}
}
