package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"chat-analyzer/apiclient"
	"chat-analyzer/auth"
	"chat-analyzer/tokenstore"

	"github.com/rs/zerolog/log"
)

const apiPrefix = "/api/"

type sessionCtxKey struct{}

// SessionGuard builds the auth session for every request and enforces the
// route guard. It is the only place redirects for access control happen.
type SessionGuard struct {
	store tokenstore.Store
}

func NewSessionGuard(store tokenstore.Store) *SessionGuard {
	return &SessionGuard{store: store}
}

// Protect runs the session's Init and either redirects (pages), answers 401
// JSON (/api/ paths) or passes the request on with the session and bearer
// token in its context.
func (g *SessionGuard) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, apiPrefix) {
			g.protectAPI(next, w, r)
			return
		}

		nav := NewHTTPNavigator(w, r)
		session := auth.NewSession(tokenstore.Bind(g.store, w, r), nav, r.URL.Path)
		session.Init()
		if nav.Redirected() {
			return
		}

		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), session)))
	})
}

func (g *SessionGuard) protectAPI(next http.Handler, w http.ResponseWriter, r *http.Request) {
	session := auth.NewSession(tokenstore.Bind(g.store, w, r), discardNavigator{}, r.URL.Path)
	session.Init()
	if !session.IsAuthenticated() {
		log.Debug().Str("path", r.URL.Path).Msg("Unauthenticated API request")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{
			"error":   "unauthorized",
			"message": "Please sign in first",
		})
		return
	}
	next.ServeHTTP(w, r.WithContext(withSession(r.Context(), session)))
}

func withSession(ctx context.Context, session *auth.Session) context.Context {
	ctx = context.WithValue(ctx, sessionCtxKey{}, session)
	if token, ok := session.Token(); ok {
		ctx = apiclient.ContextWithToken(ctx, token)
	}
	return ctx
}

// SessionFrom returns the session the guard attached to the request.
func SessionFrom(r *http.Request) (*auth.Session, bool) {
	session, ok := r.Context().Value(sessionCtxKey{}).(*auth.Session)
	return session, ok
}

// HTTPNavigator turns a navigation into a 303 See Other. Only the first
// navigation of a request is written.
type HTTPNavigator struct {
	w      http.ResponseWriter
	r      *http.Request
	target string
}

func NewHTTPNavigator(w http.ResponseWriter, r *http.Request) *HTTPNavigator {
	return &HTTPNavigator{w: w, r: r}
}

func (n *HTTPNavigator) Navigate(route string) {
	if n.target != "" {
		log.Warn().Str("first", n.target).Str("ignored", route).Msg("Second navigation in one request")
		return
	}
	n.target = route
	http.Redirect(n.w, n.r, route, http.StatusSeeOther)
}

func (n *HTTPNavigator) Redirected() bool {
	return n.target != ""
}

func (n *HTTPNavigator) Target() string {
	return n.target
}

type discardNavigator struct{}

func (discardNavigator) Navigate(string) {}
