// Package auth owns the dashboard's authentication state and the route guard
// derived from it.
package auth

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// State is the authentication state of a browser session.
type State int

const (
	// Unknown is the loading state before the token store has been read.
	Unknown State = iota
	Authenticated
	Unauthenticated
)

func (s State) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// TokenStore is the persistence the session needs: one opaque token.
type TokenStore interface {
	Get() (string, bool)
	Set(token string) error
	Clear() error
}

// Navigator moves the client to another route.
type Navigator interface {
	Navigate(route string)
}

// Session is the auth state machine for one browser session. It is not safe
// for concurrent use; each request builds its own.
type Session struct {
	store TokenStore
	nav   Navigator
	state State
	route string
}

// NewSession creates a session in the Unknown state positioned at route.
func NewSession(store TokenStore, nav Navigator, route string) *Session {
	return &Session{store: store, nav: nav, state: Unknown, route: route}
}

// Init reads the token store, leaves the loading state and enforces the guard.
func (s *Session) Init() {
	if _, ok := s.store.Get(); ok {
		s.state = Authenticated
	} else {
		s.state = Unauthenticated
	}
	s.enforce()
}

// Login persists token, marks the session authenticated and moves to the analyzer.
func (s *Session) Login(token string) error {
	if err := s.store.Set(token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	s.state = Authenticated
	s.navigate(RouteAnalyzer)
	s.enforce()
	return nil
}

// Logout clears the token and moves to the login page.
func (s *Session) Logout() error {
	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	s.state = Unauthenticated
	s.navigate(RouteLogin)
	s.enforce()
	return nil
}

// SetRoute records a route change and re-evaluates the guard.
func (s *Session) SetRoute(route string) {
	s.route = route
	s.enforce()
}

func (s *Session) State() State {
	return s.state
}

// IsLoading is true until Init has run.
func (s *Session) IsLoading() bool {
	return s.state == Unknown
}

func (s *Session) IsAuthenticated() bool {
	return s.state == Authenticated
}

func (s *Session) Route() string {
	return s.route
}

// Token returns the stored token when authenticated.
func (s *Session) Token() (string, bool) {
	if s.state != Authenticated {
		return "", false
	}
	return s.store.Get()
}

func (s *Session) enforce() {
	if target, redirect := Guard(s.state, s.route); redirect {
		log.Debug().
			Str("state", s.state.String()).
			Str("from", s.route).
			Str("to", target).
			Msg("Route guard redirect")
		s.navigate(target)
	}
}

func (s *Session) navigate(route string) {
	if route == s.route {
		return
	}
	s.route = route
	s.nav.Navigate(route)
}
