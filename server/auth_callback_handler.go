package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-oidc-portal/internal/errors"
	"github.com/jrsteele09/go-oidc-portal/provider"
	"github.com/jrsteele09/go-oidc-portal/sessions"
	"github.com/jrsteele09/go-oidc-portal/users"
	"github.com/rs/zerolog/log"
)

// CallbackHandler completes the handshake (GET and POST /auth/openid/return).
// r.FormValue reads both the query string and a form_post body, so either
// response mode works. Every failure redirects home without a session.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		flow, err := s.flows.Take(w, r, r.FormValue("state"))
		if err != nil {
			s.handshakeFailed(w, r, StatePendingReturn, err)
			return
		}

		if errorParam := r.FormValue("error"); errorParam != "" {
			s.handshakeFailed(w, r, StatePendingReturn,
				errors.Wrapf(errors.ErrProvider, "authorization failed: %s - %s", errorParam, r.FormValue("error_description")))
			return
		}

		code := r.FormValue("code")
		if code == "" {
			s.handshakeFailed(w, r, StatePendingReturn, errors.Wrapf(errors.ErrProvider, "missing code parameter"))
			return
		}

		assertion, err := s.provider.Exchange(ctx, code, flow)
		if err != nil {
			s.handshakeFailed(w, r, StatePendingReturn, errors.Wrapf(errors.ErrProvider, "%v", err))
			return
		}

		profile, err := s.verify(ctx, assertion)
		if err != nil {
			s.handshakeFailed(w, r, StatePendingReturn, err)
			return
		}
		r = r.WithContext(withUser(ctx, profile))

		if err := s.sessionCookies.Save(w, r, sessions.Serialize(profile)); err != nil {
			s.handshakeFailed(w, r, StatePendingReturn, err)
			return
		}

		log.Ctx(ctx).Info().
			Str("oid", profile.SubjectID).
			Str("custom_state", flow.CustomState).
			Msg("received a return from the identity provider")
		s.metrics.handshake(StateAuthenticated, "")
		http.Redirect(w, r, RouteIndex, http.StatusSeeOther)
	}
}

// verify turns a provider assertion into the application user. An assertion
// without a subject id fails with ErrNoAssertion; a directory miss with ErrNoProfile.
func (s *Server) verify(ctx context.Context, assertion *provider.Assertion) (*users.UserProfile, error) {
	if assertion == nil || assertion.SubjectID == "" {
		return nil, errors.ErrNoAssertion
	}
	return s.resolver.Resolve(ctx, sessions.Record{
		SubjectID:    assertion.SubjectID,
		AccessToken:  assertion.AccessToken,
		RefreshToken: assertion.RefreshToken,
	})
}

// handshakeFailed is the Failed transition: log, count, and send the browser
// to the failure redirect with no session.
func (s *Server) handshakeFailed(w http.ResponseWriter, r *http.Request, from HandshakeState, err error) {
	reason := failureReason(err)
	log.Ctx(r.Context()).Warn().
		Err(err).
		Str("from", string(from)).
		Str("reason", reason).
		Msg("handshake failed")
	s.metrics.handshake(StateFailed, reason)
	http.Redirect(w, r, s.config.GetFailureRedirect(), http.StatusSeeOther)
}
