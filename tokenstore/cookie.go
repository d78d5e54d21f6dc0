package tokenstore

import (
	"fmt"
	"net/http"

	"chat-analyzer/config"

	"github.com/gorilla/sessions"
	"github.com/rs/zerolog/log"
)

const tokenKey = "token"

// CookieStore keeps the token inside a signed session cookie. The cookie carries
// no Max-Age, so it lives until the browser session ends.
type CookieStore struct {
	store *sessions.CookieStore
	name  string
}

// NewCookieStore creates a cookie-backed token store.
func NewCookieStore(cfg config.SessionConfig) *CookieStore {
	return &CookieStore{
		store: newSessionCookieStore(cfg),
		name:  cfg.CookieName,
	}
}

func newSessionCookieStore(cfg config.SessionConfig) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(cfg.Secret))
	store.MaxAge(0)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   0,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

func (c *CookieStore) Get(r *http.Request) (string, bool) {
	session, err := c.store.Get(r, c.name)
	if err != nil {
		// Tampered or stale cookie: treat as no token
		log.Debug().Err(err).Msg("Ignoring undecodable session cookie")
		return "", false
	}
	token, ok := session.Values[tokenKey].(string)
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

func (c *CookieStore) Set(w http.ResponseWriter, r *http.Request, token string) error {
	// A decode error still yields a fresh session we can overwrite
	session, _ := c.store.Get(r, c.name)
	session.Values[tokenKey] = token
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("save session cookie: %w", err)
	}
	return nil
}

func (c *CookieStore) Clear(w http.ResponseWriter, r *http.Request) error {
	session, _ := c.store.Get(r, c.name)
	delete(session.Values, tokenKey)
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("expire session cookie: %w", err)
	}
	return nil
}
