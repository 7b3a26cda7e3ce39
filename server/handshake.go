package server

import (
	"github.com/jrsteele09/go-oidc-portal/internal/errors"
)

// HandshakeState is where a browser is in the login sequence.
type HandshakeState string

const (
	StateAnonymous       HandshakeState = "anonymous"
	StatePendingProvider HandshakeState = "pending_provider"
	StatePendingReturn   HandshakeState = "pending_return"
	StateAuthenticated   HandshakeState = "authenticated"
	StateFailed          HandshakeState = "failed"
)

// failureReason maps a handshake error to a short label for logs and metrics.
func failureReason(err error) string {
	switch {
	case errors.Is(err, errors.ErrNoAssertion):
		return "no_assertion"
	case errors.Is(err, errors.ErrNoProfile):
		return "no_profile"
	case errors.Is(err, errors.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, errors.ErrProvider):
		return "provider"
	default:
		return "internal"
	}
}
