package authflow

import (
	"net/http"
	"time"
)

// FlowState is what the portal remembers between sending the browser to the
// provider and the provider sending it back.
type FlowState struct {
	State        string
	Nonce        string
	CodeVerifier string
	CustomState  string
	CreatedAt    time.Time
}

// Store keeps in-flight handshake state. Take consumes the entry so a state
// value can complete at most one handshake.
type Store interface {
	Save(w http.ResponseWriter, r *http.Request, flow *FlowState) error
	Take(w http.ResponseWriter, r *http.Request, state string) (*FlowState, error)
}

func (f *FlowState) clone() *FlowState {
	cp := *f
	return &cp
}
