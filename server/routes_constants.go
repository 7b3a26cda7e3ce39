package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Pages
	RouteIndex   = "/"
	RouteAccount = "/account"

	// Auth Routes - Handshake & Logout
	RouteLogin    = "/login"
	RouteCallback = "/auth/openid/return"
	RouteLogout   = "/logout"

	// API Routes
	RouteAPICloudConnections = "/api/v1.0/cloudconnections"
	RouteAPICloudConnection  = "/api/v1.0/cloudconnections/{id}"

	// Operations
	RouteMetrics = "/metrics"

	// Static Asset Routes (patterns)
	RoutePublic = "/public/"
)
