package authflow

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-oidc-portal/internal/errors"
	"github.com/jrsteele09/go-oidc-portal/sessions"
)

var _ Store = (*CookieStore)(nil)

// CookieStore keeps the flow in a sealed, short lived browser cookie so no
// server memory is used. One browser can have one handshake in flight.
type CookieStore struct {
	cookies *sessions.CookieStore
}

// NewCookieStore stores flows in cookie name for lifetime. With secure
// cookies the flow cookie is SameSite=None so it survives the provider's
// cross-site form_post back to the portal.
func NewCookieStore(name string, lifetime time.Duration, secure bool, sealer *sessions.Sealer) *CookieStore {
	cookies := sessions.NewCookieStore(name, lifetime, secure, sealer)
	if secure {
		cookies = cookies.WithSameSite(http.SameSiteNoneMode)
	}
	return &CookieStore{cookies: cookies}
}

func (s *CookieStore) Save(w http.ResponseWriter, r *http.Request, flow *FlowState) error {
	if flow == nil || flow.State == "" {
		return errors.Wrapf(errors.ErrInvalidInput, "flow state required")
	}
	created := flow.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	return s.cookies.SaveClaims(w, r, jwt.MapClaims{
		"state":         flow.State,
		"nonce":         flow.Nonce,
		"code_verifier": flow.CodeVerifier,
		"custom_state":  flow.CustomState,
		"created_at":    created.Unix(),
	})
}

func (s *CookieStore) Take(w http.ResponseWriter, r *http.Request, state string) (*FlowState, error) {
	claims, err := s.cookies.LoadClaims(r)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidState, "%v", err)
	}
	s.cookies.Destroy(w, r)

	str := func(key string) string {
		v, _ := claims[key].(string)
		return v
	}
	stored := str("state")
	if state == "" || subtle.ConstantTimeCompare([]byte(stored), []byte(state)) != 1 {
		return nil, errors.Wrapf(errors.ErrInvalidState, "state mismatch")
	}

	flow := &FlowState{
		State:        stored,
		Nonce:        str("nonce"),
		CodeVerifier: str("code_verifier"),
		CustomState:  str("custom_state"),
	}
	if created, ok := claims["created_at"].(float64); ok {
		flow.CreatedAt = time.Unix(int64(created), 0)
	}
	return flow, nil
}
