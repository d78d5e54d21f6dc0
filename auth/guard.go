package auth

// Routes served by the dashboard.
const (
	RouteLogin    = "/login"
	RouteRegister = "/register"
	RouteAnalyzer = "/analyzer"
)

// PublicRoutes are reachable without a token, and only without one.
var PublicRoutes = []string{RouteLogin, RouteRegister}

// IsPublic reports whether route is one of PublicRoutes.
func IsPublic(route string) bool {
	for _, p := range PublicRoutes {
		if p == route {
			return true
		}
	}
	return false
}

// Guard decides whether the current route is acceptable for state. It returns
// the redirect target and true when navigation is required, and ("", false)
// when the route already satisfies the access rule or the state is still Unknown.
func Guard(state State, route string) (string, bool) {
	switch state {
	case Unauthenticated:
		if !IsPublic(route) {
			return RouteLogin, true
		}
	case Authenticated:
		if IsPublic(route) {
			return RouteAnalyzer, true
		}
	}
	return "", false
}
