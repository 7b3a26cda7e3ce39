package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) initRoutes() {
	// Pages
	s.RegisterRouteHandler("GET "+RouteIndex+"{$}", ChainMiddleware(s.IndexHandler(), s.HTMLMiddleWare(s.SessionMiddleware)...))
	s.RegisterRouteHandler("GET "+RouteAccount, ChainMiddleware(s.AccountHandler(), s.HTMLMiddleWare(s.SessionMiddleware, s.EnsurePage)...))

	// Handshake
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteCallback, ChainMiddleware(s.CallbackHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteCallback, ChainMiddleware(s.CallbackHandler(), s.HTMLMiddleWare()...)) // For form_post response mode
	s.RegisterRouteHandler("GET "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))

	// Cloud connections API
	s.RegisterRouteHandler("GET "+RouteAPICloudConnections, ChainMiddleware(s.ListCloudConnections(), s.APIMiddleware(s.SessionMiddleware, s.EnsureAPI)...))
	s.RegisterRouteHandler("GET "+RouteAPICloudConnection, ChainMiddleware(s.GetCloudConnection(), s.APIMiddleware(s.SessionMiddleware, s.EnsureAPI)...))
	s.RegisterRouteHandler("PUT "+RouteAPICloudConnection, ChainMiddleware(s.PutCloudConnection(), s.APIMiddleware(s.SessionMiddleware, s.EnsureAPI)...))
	s.RegisterRouteHandler("DELETE "+RouteAPICloudConnection, ChainMiddleware(s.DeleteCloudConnection(), s.APIMiddleware(s.SessionMiddleware, s.EnsureAPI)...))
	s.RegisterRouteHandler("OPTIONS "+RouteAPICloudConnections, ChainMiddleware(preflightHandler, s.APIMiddleware()...))
	s.RegisterRouteHandler("OPTIONS "+RouteAPICloudConnection, ChainMiddleware(preflightHandler, s.APIMiddleware()...))

	// Operations
	s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	s.RegisterRouteHandler("GET "+RoutePublic, ChainMiddleware(s.serveFileHandler(), s.HTMLMiddleWare(s.CacheMiddleware)...))
}

// preflightHandler is reached only when CorsMiddleware let an OPTIONS request through.
func preflightHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) serveFileHandler() http.HandlerFunc {
	public := http.StripPrefix(RoutePublic, s.fileServer)
	return func(w http.ResponseWriter, r *http.Request) {
		public.ServeHTTP(w, r)
	}
}
