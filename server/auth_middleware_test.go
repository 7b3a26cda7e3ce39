package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/go-oidc-portal/cloudconnections"
	"github.com/jrsteele09/go-oidc-portal/internal/errors"
	"github.com/jrsteele09/go-oidc-portal/users"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func gateServer() *Server {
	return &Server{metrics: newMetrics(prometheus.NewRegistry(), users.NewInMemoryKnownUsersRepo(), cloudconnections.NewInMemoryRepo(nil))}
}

func TestGatesPassAuthenticatedRequests(t *testing.T) {
	s := gateServer()
	profile := users.NewUserProfile("abc-123", "tok-1", "", map[string]any{"name": "Ada"})

	for name, gate := range map[string]func(http.HandlerFunc) http.HandlerFunc{"page": s.EnsurePage, "api": s.EnsureAPI} {
		t.Run(name, func(t *testing.T) {
			called := false
			req := httptest.NewRequest(http.MethodGet, "/account", nil)
			req = req.WithContext(withUser(req.Context(), profile))
			rec := httptest.NewRecorder()

			gate(func(w http.ResponseWriter, r *http.Request) {
				called = true
				assert.Equal(t, "abc-123", UserFromContext(r.Context()).SubjectID)
			})(rec, req)

			assert.True(t, called)
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

func TestEnsurePageRedirectsAnonymous(t *testing.T) {
	s := gateServer()
	for _, ctxUser := range []*users.UserProfile{nil, users.NewUserProfile("", "tok-1", "", nil)} {
		req := httptest.NewRequest(http.MethodGet, "/account", nil)
		req = req.WithContext(withUser(req.Context(), ctxUser))
		rec := httptest.NewRecorder()

		s.EnsurePage(func(http.ResponseWriter, *http.Request) { t.Fatal("next must not run") })(rec, req)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.NotEqual(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, RouteLogin, rec.Header().Get("Location"))
	}
}

func TestEnsureAPIRejectsAnonymous(t *testing.T) {
	s := gateServer()
	req := httptest.NewRequest(http.MethodGet, RouteAPICloudConnections, nil)
	rec := httptest.NewRecorder()

	s.EnsureAPI(func(http.ResponseWriter, *http.Request) { t.Fatal("next must not run") })(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Header().Get("Location"))
	assert.Equal(t, contentTypeJSON, rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"unauthorized","error_description":"unauthenticated"}`, rec.Body.String())
}

func TestFailureReason(t *testing.T) {
	assert.Equal(t, "no_assertion", failureReason(errors.ErrNoAssertion))
	assert.Equal(t, "no_profile", failureReason(errors.Wrapf(errors.ErrNoProfile, "directory lookup")))
	assert.Equal(t, "invalid_state", failureReason(errors.Wrapf(errors.ErrInvalidState, "unknown state")))
	assert.Equal(t, "provider", failureReason(errors.Wrapf(errors.ErrProvider, "token exchange")))
	assert.Equal(t, "internal", failureReason(assert.AnError))
}
