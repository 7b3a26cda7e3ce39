package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-oidc-portal/authflow"
	"github.com/jrsteele09/go-oidc-portal/cloudconnections"
	"github.com/jrsteele09/go-oidc-portal/directory"
	"github.com/jrsteele09/go-oidc-portal/identity"
	"github.com/jrsteele09/go-oidc-portal/internal/config"
	"github.com/jrsteele09/go-oidc-portal/provider"
	"github.com/jrsteele09/go-oidc-portal/sessions"
	"github.com/jrsteele09/go-oidc-portal/users"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// flowCookieSuffix names the handshake cookie relative to the session cookie.
const flowCookieSuffix = "_oidc_flow"

// Deps are the collaborators the server is built from. Provider, Directory
// and Connections are required; the rest default to in-memory versions.
type Deps struct {
	Provider    provider.Provider
	Directory   directory.Client
	Connections cloudconnections.Repo
	KnownUsers  users.KnownUsersRepo
	Flows       authflow.Store
	Registry    *prometheus.Registry
}

type Server struct {
	env        string // Environment (e.g., "DEV", "PROD")
	mux        *http.ServeMux
	routes     []string
	fileServer http.Handler
	config     config.Config

	provider       provider.Provider
	resolver       *identity.Resolver
	codec          *sessions.Codec
	sessionCookies *sessions.CookieStore
	flows          authflow.Store
	knownUsers     users.KnownUsersRepo
	connections    cloudconnections.Repo

	registry *prometheus.Registry
	metrics  *metrics
}

func New(config config.Config, deps Deps) (*Server, error) {
	if deps.Provider == nil || deps.Directory == nil || deps.Connections == nil {
		return nil, fmt.Errorf("[Server New] provider, directory and connections are required")
	}

	sealer, err := sessions.NewSealer(config.GetCookieEncryptionKeys())
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create session sealer: %w", err)
	}

	s := &Server{
		env:         config.GetEnv(),
		mux:         http.NewServeMux(),
		config:      config,
		provider:    deps.Provider,
		knownUsers:  deps.KnownUsers,
		flows:       deps.Flows,
		connections: deps.Connections,
		registry:    deps.Registry,
	}
	if s.knownUsers == nil {
		s.knownUsers = users.NewInMemoryKnownUsersRepo()
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}

	s.sessionCookies = sessions.NewCookieStore(config.GetSessionCookieName(), config.GetSessionMaxAge(), config.GetSecureCookies(), sealer)
	if s.flows == nil {
		if config.GetUseCookieInsteadOfSession() {
			s.flows = authflow.NewCookieStore(config.GetSessionCookieName()+flowCookieSuffix, config.GetNonceLifetime(), config.GetSecureCookies(), sealer)
		} else {
			s.flows = authflow.NewInMemoryStore(config.GetNonceLifetime(), config.GetNonceMaxAmount())
		}
	}

	s.resolver = identity.NewResolver(deps.Directory, identity.WithKnownUsers(s.knownUsers))
	s.codec = sessions.NewCodec(s.resolver)
	s.metrics = newMetrics(s.registry, s.knownUsers, s.connections)
	s.fileServer = FileServerHandler()

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			log.Debug().Str("method", parts[0]).Str("path", parts[1]).Msg("route")
		} else {
			log.Debug().Str("path", parts[0]).Msg("route")
		}
	}
}
