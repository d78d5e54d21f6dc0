package handler

import (
	"net/http"

	"chat-analyzer/middleware"

	"github.com/gorilla/mux"
)

// NewRouter registers every route. /health stays outside the session guard.
func NewRouter(authH *AuthHandler, analyzerH *AnalyzerHandler, healthH *HealthHandler,
	guard *middleware.SessionGuard, limiter *middleware.RateLimiter) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger)

	r.HandleFunc("/health", healthH.HealthCheck).Methods(http.MethodGet)

	app := r.PathPrefix("/").Subrouter()
	app.Use(limiter.Limit)
	app.Use(guard.Protect)

	app.HandleFunc("/", analyzerH.Root).Methods(http.MethodGet)
	app.HandleFunc("/login", authH.LoginPage).Methods(http.MethodGet)
	app.HandleFunc("/login", authH.Login).Methods(http.MethodPost)
	app.HandleFunc("/register", authH.RegisterPage).Methods(http.MethodGet)
	app.HandleFunc("/register", authH.Register).Methods(http.MethodPost)
	app.HandleFunc("/logout", authH.Logout).Methods(http.MethodPost)

	app.HandleFunc("/analyzer", analyzerH.Page).Methods(http.MethodGet)
	app.HandleFunc("/analyzer/upload", analyzerH.Upload).Methods(http.MethodPost)
	app.HandleFunc("/analyzer/user", analyzerH.ChangeUser).Methods(http.MethodPost)
	app.HandleFunc("/analyzer/reset", analyzerH.Reset).Methods(http.MethodPost)
	app.HandleFunc("/api/analysis", analyzerH.Snapshot).Methods(http.MethodGet)

	return r
}
