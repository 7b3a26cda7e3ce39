package config

import "time"

type OIDCConfig interface {
	GetIdentityMetadata() string
	GetIssuer() string
	GetValidateIssuer() bool
	GetClientID() string
	GetClientSecret() string
	GetRedirectURL() string
	GetAllowHTTPForRedirectURL() bool
	GetResponseType() string
	GetResponseMode() string
	GetScopes() []string
	GetSubjectClaim() string
	GetClockSkew() time.Duration
	GetNonceLifetime() time.Duration
	GetNonceMaxAmount() int
	GetUseCookieInsteadOfSession() bool
	GetCustomState() string
	GetFailureRedirect() string
	GetDestroySessionURL() string
}

type OIDC struct {
	src *source
}

var _ OIDCConfig = OIDC{}

// GetIdentityMetadata returns the provider's discovery document URL or issuer URL.
func (o OIDC) GetIdentityMetadata() string {
	return o.src.get("OIDC_IDENTITY_METADATA", "https://login.microsoftonline.com/common/v2.0/.well-known/openid-configuration")
}

// GetIssuer returns the issuer to accept in place of the discovered one. Empty means use discovery.
func (o OIDC) GetIssuer() string {
	return o.src.get("OIDC_ISSUER", "")
}

func (o OIDC) GetValidateIssuer() bool {
	return parseBool(o.src.get("OIDC_VALIDATE_ISSUER", ""), true)
}

func (o OIDC) GetClientID() string {
	return o.src.get("OIDC_CLIENT_ID", "")
}

func (o OIDC) GetClientSecret() string {
	return o.src.get("OIDC_CLIENT_SECRET", "")
}

func (o OIDC) GetRedirectURL() string {
	return o.src.get("OIDC_REDIRECT_URL", "http://localhost:3000/auth/openid/return")
}

// GetAllowHTTPForRedirectURL permits a plain http redirect URL. Only DEV allows it unless set.
func (o OIDC) GetAllowHTTPForRedirectURL() bool {
	return parseBool(o.src.get("OIDC_ALLOW_HTTP_REDIRECT", ""), o.src.get(envVar, "DEV") == "DEV")
}

func (o OIDC) GetResponseType() string {
	return o.src.get("OIDC_RESPONSE_TYPE", "code")
}

// GetResponseMode returns "form_post" or "query".
func (o OIDC) GetResponseMode() string {
	return o.src.get("OIDC_RESPONSE_MODE", "form_post")
}

func (o OIDC) GetScopes() []string {
	return parseList(o.src.get("OIDC_SCOPE", "openid profile offline_access User.Read"), ", ")
}

// GetSubjectClaim names the ID token claim used as the canonical subject id.
func (o OIDC) GetSubjectClaim() string {
	return o.src.get("OIDC_SUBJECT_CLAIM", "oid")
}

func (o OIDC) GetClockSkew() time.Duration {
	return parseDuration(o.src.get("OIDC_CLOCK_SKEW", ""), 5*time.Minute)
}

func (o OIDC) GetNonceLifetime() time.Duration {
	return parseDuration(o.src.get("OIDC_NONCE_LIFETIME", ""), 10*time.Minute)
}

func (o OIDC) GetNonceMaxAmount() int {
	return parseInt(o.src.get("OIDC_NONCE_MAX_AMOUNT", ""), 1000)
}

// GetUseCookieInsteadOfSession keeps in-flight handshake state in a sealed cookie instead of process memory.
func (o OIDC) GetUseCookieInsteadOfSession() bool {
	return parseBool(o.src.get("OIDC_USE_COOKIE_FOR_STATE", ""), false)
}

func (o OIDC) GetCustomState() string {
	return o.src.get("OIDC_CUSTOM_STATE", "my_state")
}

func (o OIDC) GetFailureRedirect() string {
	return o.src.get("OIDC_FAILURE_REDIRECT", "/")
}

// GetDestroySessionURL returns the provider logout URL the browser is sent to on /logout.
func (o OIDC) GetDestroySessionURL() string {
	return o.src.get("OIDC_DESTROY_SESSION_URL", "https://login.microsoftonline.com/common/oauth2/logout?post_logout_redirect_uri=http://localhost:3000")
}
