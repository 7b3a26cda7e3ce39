package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/go-oidc-portal/authflow"
	"github.com/jrsteele09/go-oidc-portal/internal/config"
	"github.com/jrsteele09/go-oidc-portal/internal/errors"
	"golang.org/x/oauth2"
)

const (
	ResponseModeQuery    = "query"
	ResponseModeFormPost = "form_post"

	wellKnownSuffix = "/.well-known/openid-configuration"
)

// Assertion is what a completed code exchange tells the portal about the user.
type Assertion struct {
	SubjectID    string
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
	Claims       map[string]any
}

// Provider is the identity provider integration used by the handshake.
type Provider interface {
	// AuthCodeURL returns where to send the browser to start flow.
	AuthCodeURL(ctx context.Context, flow *authflow.FlowState) (string, error)
	// Exchange redeems code and validates the returned ID token against flow.
	Exchange(ctx context.Context, code string, flow *authflow.FlowState) (*Assertion, error)
}

// Config holds the provider settings.
type Config struct {
	IdentityMetadata        string
	Issuer                  string
	ValidateIssuer          bool
	ClientID                string
	ClientSecret            string
	RedirectURL             string
	AllowHTTPForRedirectURL bool
	ResponseType            string
	ResponseMode            string
	Scopes                  []string
	SubjectClaim            string
	ClockSkew               time.Duration
	HTTPClient              *http.Client
}

// ConfigFrom maps the portal's OIDC settings to a provider Config.
func ConfigFrom(c config.OIDCConfig) Config {
	return Config{
		IdentityMetadata:        c.GetIdentityMetadata(),
		Issuer:                  c.GetIssuer(),
		ValidateIssuer:          c.GetValidateIssuer(),
		ClientID:                c.GetClientID(),
		ClientSecret:            c.GetClientSecret(),
		RedirectURL:             c.GetRedirectURL(),
		AllowHTTPForRedirectURL: c.GetAllowHTTPForRedirectURL(),
		ResponseType:            c.GetResponseType(),
		ResponseMode:            c.GetResponseMode(),
		Scopes:                  c.GetScopes(),
		SubjectClaim:            c.GetSubjectClaim(),
		ClockSkew:               c.GetClockSkew(),
	}
}

func (c Config) validate() error {
	if c.IdentityMetadata == "" {
		return fmt.Errorf("identity metadata URL is required")
	}
	if c.ClientID == "" {
		return fmt.Errorf("client ID is required")
	}
	redirect, err := url.Parse(c.RedirectURL)
	if err != nil || redirect.Host == "" {
		return fmt.Errorf("redirect URL %q is not absolute", c.RedirectURL)
	}
	if redirect.Scheme != "https" && !c.AllowHTTPForRedirectURL {
		return fmt.Errorf("redirect URL %q must use https", c.RedirectURL)
	}
	if c.ResponseType != "" && c.ResponseType != "code" {
		return fmt.Errorf("response type %q is not supported, use code", c.ResponseType)
	}
	switch c.ResponseMode {
	case "", ResponseModeQuery, ResponseModeFormPost:
	default:
		return fmt.Errorf("response mode %q is not supported", c.ResponseMode)
	}
	return nil
}

type discovered struct {
	oauth2   *oauth2.Config
	verifier *oidc.IDTokenVerifier
}

// OIDCProvider talks to an OpenID Connect provider found through discovery.
// Discovery runs on first use and is retried until it succeeds once.
type OIDCProvider struct {
	cfg Config

	mu        sync.RWMutex
	discovery *discovered
}

var _ Provider = (*OIDCProvider)(nil)

func New(cfg Config) (*OIDCProvider, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("[provider New] %w", err)
	}
	if cfg.SubjectClaim == "" {
		cfg.SubjectClaim = "sub"
	}
	if cfg.ResponseMode == "" {
		cfg.ResponseMode = ResponseModeQuery
	}
	return &OIDCProvider{cfg: cfg}, nil
}

func (p *OIDCProvider) discover(ctx context.Context) (*discovered, error) {
	p.mu.RLock()
	d := p.discovery
	p.mu.RUnlock()
	if d != nil {
		return d, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.discovery != nil {
		return p.discovery, nil
	}

	// The provider keeps this context for background key set refreshes.
	ctx = context.WithoutCancel(ctx)
	if p.cfg.HTTPClient != nil {
		ctx = oidc.ClientContext(ctx, p.cfg.HTTPClient)
	}
	if p.cfg.Issuer != "" {
		ctx = oidc.InsecureIssuerURLContext(ctx, p.cfg.Issuer)
	}

	issuerURL := strings.TrimSuffix(p.cfg.IdentityMetadata, wellKnownSuffix)
	op, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrProvider, "discovery at %s: %v", issuerURL, err)
	}

	skew := p.cfg.ClockSkew
	p.discovery = &discovered{
		oauth2: &oauth2.Config{
			ClientID:     p.cfg.ClientID,
			ClientSecret: p.cfg.ClientSecret,
			Endpoint:     op.Endpoint(),
			RedirectURL:  p.cfg.RedirectURL,
			Scopes:       withOpenID(p.cfg.Scopes),
		},
		verifier: op.Verifier(&oidc.Config{
			ClientID:        p.cfg.ClientID,
			SkipIssuerCheck: !p.cfg.ValidateIssuer,
			Now:             func() time.Time { return time.Now().Add(-skew) },
		}),
	}
	return p.discovery, nil
}

func (p *OIDCProvider) AuthCodeURL(ctx context.Context, flow *authflow.FlowState) (string, error) {
	d, err := p.discover(ctx)
	if err != nil {
		return "", err
	}
	return d.oauth2.AuthCodeURL(flow.State,
		oidc.Nonce(flow.Nonce),
		oauth2.S256ChallengeOption(flow.CodeVerifier),
		oauth2.SetAuthURLParam("response_mode", p.cfg.ResponseMode),
	), nil
}

func (p *OIDCProvider) Exchange(ctx context.Context, code string, flow *authflow.FlowState) (*Assertion, error) {
	d, err := p.discover(ctx)
	if err != nil {
		return nil, err
	}
	if p.cfg.HTTPClient != nil {
		ctx = oidc.ClientContext(ctx, p.cfg.HTTPClient)
	}

	oauth2Token, err := d.oauth2.Exchange(ctx, code, oauth2.VerifierOption(flow.CodeVerifier))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrProvider, "token exchange: %v", err)
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, errors.Wrapf(errors.ErrProvider, "no id_token in token response")
	}
	idToken, err := d.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrProvider, "id token verification: %v", err)
	}
	if idToken.Nonce != flow.Nonce {
		return nil, errors.Wrapf(errors.ErrProvider, "id token nonce mismatch")
	}

	claims := map[string]any{}
	if err := idToken.Claims(&claims); err != nil {
		return nil, errors.Wrapf(errors.ErrProvider, "reading claims: %v", err)
	}

	subject, _ := claims[p.cfg.SubjectClaim].(string)
	return &Assertion{
		SubjectID:    subject,
		AccessToken:  oauth2Token.AccessToken,
		RefreshToken: oauth2Token.RefreshToken,
		Expiry:       oauth2Token.Expiry,
		Claims:       claims,
	}, nil
}

func withOpenID(scopes []string) []string {
	for _, s := range scopes {
		if s == oidc.ScopeOpenID {
			return scopes
		}
	}
	return append([]string{oidc.ScopeOpenID}, scopes...)
}
