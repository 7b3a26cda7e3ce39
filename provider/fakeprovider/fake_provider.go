package fakeprovider

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"github.com/jrsteele09/go-oidc-portal/authflow"
	"github.com/jrsteele09/go-oidc-portal/provider"
)

var _ provider.Provider = (*FakeProvider)(nil)

// ErrUnknownCode is returned when Exchange is called with an unregistered code.
var ErrUnknownCode = errors.New("unknown authorization code")

// FakeProvider hands out canned assertions keyed by authorization code.
type FakeProvider struct {
	AuthorizeURL string

	lock       sync.RWMutex
	assertions map[string]*provider.Assertion
	authErr    error
	lastFlow   *authflow.FlowState
}

func NewFakeProvider() *FakeProvider {
	return &FakeProvider{
		AuthorizeURL: "https://idp.example.com/authorize",
		assertions:   make(map[string]*provider.Assertion),
	}
}

// SetAssertion registers the assertion returned when code is exchanged.
func (f *FakeProvider) SetAssertion(code string, assertion *provider.Assertion) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.assertions[code] = assertion
}

// FailAuthorize makes AuthCodeURL return err.
func (f *FakeProvider) FailAuthorize(err error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.authErr = err
}

// LastFlow returns the flow passed to the most recent AuthCodeURL call.
func (f *FakeProvider) LastFlow() *authflow.FlowState {
	f.lock.RLock()
	defer f.lock.RUnlock()
	return f.lastFlow
}

func (f *FakeProvider) AuthCodeURL(_ context.Context, flow *authflow.FlowState) (string, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.authErr != nil {
		return "", f.authErr
	}
	cp := *flow
	f.lastFlow = &cp

	q := url.Values{}
	q.Set("state", flow.State)
	q.Set("nonce", flow.Nonce)
	return f.AuthorizeURL + "?" + q.Encode(), nil
}

func (f *FakeProvider) Exchange(_ context.Context, code string, _ *authflow.FlowState) (*provider.Assertion, error) {
	f.lock.RLock()
	defer f.lock.RUnlock()
	assertion, ok := f.assertions[code]
	if !ok {
		return nil, ErrUnknownCode
	}
	cp := *assertion
	return &cp, nil
}
