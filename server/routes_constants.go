package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteIndex   = "/"
	RouteGitfiti = "/gitfiti"
	RouteAbort   = "/abort"

	// Auth Routes - Login & Logout
	RouteLogin           = "/login-github"
	RouteLoginWithDelete = "/login-github-with-delete"
	RouteCallback        = "/login-github-success"
	RouteLogout          = "/logout-github"

	// API Routes
	RoutePostCommits = "/post-commits-to-github"
	RouteAPIProfile  = "/api/profile"

	// Operational Routes
	RouteHealth  = "/healthz"
	RouteMetrics = "/metrics"

	// Static Asset Routes (patterns)
	RouteStaticJS  = "/js/{file}"
	RouteStaticCSS = "/css/{file}"
)
