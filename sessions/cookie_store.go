package sessions

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-oidc-portal/internal/errors"
)

const (
	// chunkSize keeps each cookie under the 4096 byte browser limit once the
	// name and attributes are added.
	chunkSize = 3800
	maxChunks = 8
)

// CookieStore keeps sealed values in one or more browser cookies named
// name, name.1, name.2 ...
type CookieStore struct {
	name     string
	maxAge   time.Duration
	secure   bool
	sameSite http.SameSite
	sealer   *Sealer
}

func NewCookieStore(name string, maxAge time.Duration, secure bool, sealer *Sealer) *CookieStore {
	return &CookieStore{
		name:     name,
		maxAge:   maxAge,
		secure:   secure,
		sameSite: http.SameSiteLaxMode,
		sealer:   sealer,
	}
}

// WithSameSite returns a copy of the store using mode for new cookies.
func (c *CookieStore) WithSameSite(mode http.SameSite) *CookieStore {
	cp := *c
	cp.sameSite = mode
	return &cp
}

// Save seals record into the session cookie, replacing any previous value.
func (c *CookieStore) Save(w http.ResponseWriter, r *http.Request, record Record) error {
	return c.SaveClaims(w, r, record.claims())
}

// Load opens the session cookie. A missing cookie yields ErrNotFound, a
// damaged or expired one ErrInvalidSession.
func (c *CookieStore) Load(r *http.Request) (Record, error) {
	claims, err := c.LoadClaims(r)
	if err != nil {
		return Record{}, err
	}
	return recordFromClaims(claims), nil
}

// SaveClaims seals arbitrary claims under this store's cookie name.
func (c *CookieStore) SaveClaims(w http.ResponseWriter, r *http.Request, claims jwt.MapClaims) error {
	value, err := c.sealer.Seal(claims, c.maxAge)
	if err != nil {
		return err
	}
	chunks := split(value, chunkSize)
	if len(chunks) > maxChunks {
		return fmt.Errorf("[sessions SaveClaims] value needs %d cookies, limit is %d", len(chunks), maxChunks)
	}
	for i, chunk := range chunks {
		http.SetCookie(w, c.cookie(chunkName(c.name, i), chunk, int(c.maxAge.Seconds())))
	}
	// Expire trailing chunks left over from a longer previous value.
	for i := len(chunks); i < maxChunks; i++ {
		if _, err := r.Cookie(chunkName(c.name, i)); err == nil {
			http.SetCookie(w, c.cookie(chunkName(c.name, i), "", -1))
		}
	}
	return nil
}

func (c *CookieStore) LoadClaims(r *http.Request) (jwt.MapClaims, error) {
	var value strings.Builder
	for i := 0; i < maxChunks; i++ {
		cookie, err := r.Cookie(chunkName(c.name, i))
		if err != nil {
			break
		}
		value.WriteString(cookie.Value)
	}
	if value.Len() == 0 {
		return nil, errors.Wrapf(errors.ErrNotFound, "cookie %s", c.name)
	}
	return c.sealer.Open(value.String())
}

// Destroy expires every chunk of the cookie the browser sent.
func (c *CookieStore) Destroy(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, c.cookie(c.name, "", -1))
	for i := 1; i < maxChunks; i++ {
		if _, err := r.Cookie(chunkName(c.name, i)); err == nil {
			http.SetCookie(w, c.cookie(chunkName(c.name, i), "", -1))
		}
	}
}

func (c *CookieStore) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: c.sameSite,
		MaxAge:   maxAge,
	}
}

func chunkName(name string, i int) string {
	if i == 0 {
		return name
	}
	return fmt.Sprintf("%s.%d", name, i)
}

func split(value string, size int) []string {
	var chunks []string
	for len(value) > size {
		chunks = append(chunks, value[:size])
		value = value[size:]
	}
	return append(chunks, value)
}
