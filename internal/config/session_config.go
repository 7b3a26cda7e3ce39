package config

import "time"

const devCookieKey = "dev-only-cookie-key-change-me-0123456789"

type SessionConfig interface {
	GetSessionCookieName() string
	GetCookieEncryptionKeys() []string
	GetSessionMaxAge() time.Duration
	GetSecureCookies() bool
}

type Session struct {
	src *source
}

var _ SessionConfig = Session{}

func (s Session) GetSessionCookieName() string {
	return s.src.get("SESSION_COOKIE_NAME", "session")
}

// GetCookieEncryptionKeys returns the comma separated key list, newest first.
// The first key seals new cookies; all keys are tried when opening one.
func (s Session) GetCookieEncryptionKeys() []string {
	keys := parseList(s.src.get("SESSION_COOKIE_KEYS", ""), ",")
	if len(keys) == 0 && s.src.get(envVar, "DEV") == "DEV" {
		return []string{devCookieKey}
	}
	return keys
}

func (s Session) GetSessionMaxAge() time.Duration {
	return parseDuration(s.src.get("SESSION_MAX_AGE", ""), 24*time.Hour)
}

func (s Session) GetSecureCookies() bool {
	return parseBool(s.src.get("SESSION_SECURE_COOKIES", ""), s.src.get(envVar, "DEV") != "DEV")
}
