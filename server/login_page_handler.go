package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-oidc-portal/authflow"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// LoginHandler starts the handshake (GET /login): it remembers a fresh state,
// nonce and PKCE verifier and sends the browser to the provider. Failures
// send the browser to the failure redirect instead.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flow := &authflow.FlowState{
			State:        uuid.NewString(),
			Nonce:        generateRandomString(32),
			CodeVerifier: oauth2.GenerateVerifier(),
			CustomState:  s.config.GetCustomState(),
			CreatedAt:    time.Now(),
		}

		if err := s.flows.Save(w, r, flow); err != nil {
			s.handshakeFailed(w, r, StateAnonymous, err)
			return
		}

		authURL, err := s.provider.AuthCodeURL(r.Context(), flow)
		if err != nil {
			s.handshakeFailed(w, r, StateAnonymous, err)
			return
		}

		log.Ctx(r.Context()).Info().Str("state", flow.State).Msg("redirecting to identity provider")
		s.metrics.handshake(StatePendingProvider, "")
		http.Redirect(w, r, authURL, http.StatusFound)
	}
}

// LogoutHandler ends the session (GET /logout). The session cookie is
// expired, the user is dropped from the known users, and the browser is
// sent to the provider so its session ends too.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.Ctx(r.Context())

		if record, err := s.sessionCookies.Load(r); err == nil && record.SubjectID != "" {
			if err := s.knownUsers.Delete(record.SubjectID); err != nil {
				logger.Warn().Err(err).Msg("failed to forget user")
			}
			logger.Info().Str("oid", record.SubjectID).Msg("logging out")
		}

		s.sessionCookies.Destroy(w, r)

		s.metrics.handshake(StateAnonymous, "logout")
		http.Redirect(w, r, s.config.GetDestroySessionURL(), http.StatusFound)
	}
}
