package fakedirectory

import (
	"context"
	"errors"
	"sync"

	"github.com/jrsteele09/go-oidc-portal/directory"
)

var _ directory.Client = (*FakeDirectory)(nil)

// ErrUnknownToken is returned for tokens the fake has no profile for.
var ErrUnknownToken = errors.New("unknown access token")

// FakeDirectory serves canned profiles keyed by access token and counts calls.
type FakeDirectory struct {
	lock     sync.RWMutex
	profiles map[string]map[string]any
	errs     map[string]error
	calls    int
	block    chan struct{}
}

func NewFakeDirectory() *FakeDirectory {
	return &FakeDirectory{
		profiles: make(map[string]map[string]any),
		errs:     make(map[string]error),
	}
}

// SetProfile registers the document returned for accessToken. A nil profile
// makes the fake return an empty result.
func (f *FakeDirectory) SetProfile(accessToken string, profile map[string]any) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.profiles[accessToken] = profile
}

// SetError makes calls for accessToken fail with err.
func (f *FakeDirectory) SetError(accessToken string, err error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.errs[accessToken] = err
}

// Block makes every call wait until the returned release function is called.
func (f *FakeDirectory) Block() (release func()) {
	f.lock.Lock()
	defer f.lock.Unlock()
	ch := make(chan struct{})
	f.block = ch
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

func (f *FakeDirectory) Calls() int {
	f.lock.RLock()
	defer f.lock.RUnlock()
	return f.calls
}

func (f *FakeDirectory) FetchProfile(ctx context.Context, accessToken string) (map[string]any, error) {
	f.lock.Lock()
	f.calls++
	block := f.block
	f.lock.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.lock.RLock()
	defer f.lock.RUnlock()
	if err, ok := f.errs[accessToken]; ok {
		return nil, err
	}
	profile, ok := f.profiles[accessToken]
	if !ok {
		return nil, ErrUnknownToken
	}
	return profile, nil
}
