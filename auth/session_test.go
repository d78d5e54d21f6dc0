package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	token  string
	setErr error
}

func (f *fakeStore) Get() (string, bool) { return f.token, f.token != "" }

func (f *fakeStore) Set(token string) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.token = token
	return nil
}

func (f *fakeStore) Clear() error {
	f.token = ""
	return nil
}

type recordingNavigator struct {
	routes []string
}

func (n *recordingNavigator) Navigate(route string) { n.routes = append(n.routes, route) }

func TestGuard(t *testing.T) {
	tests := []struct {
		name       string
		state      State
		route      string
		wantTarget string
		wantRedir  bool
	}{
		{"unknown never redirects", Unknown, "/analyzer", "", false},
		{"unknown on login", Unknown, "/login", "", false},
		{"anonymous on analyzer", Unauthenticated, "/analyzer", "/login", true},
		{"anonymous on root", Unauthenticated, "/", "/login", true},
		{"anonymous on login", Unauthenticated, "/login", "", false},
		{"anonymous on register", Unauthenticated, "/register", "", false},
		{"signed in on login", Authenticated, "/login", "/analyzer", true},
		{"signed in on register", Authenticated, "/register", "/analyzer", true},
		{"signed in on analyzer", Authenticated, "/analyzer", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, redirect := Guard(tt.state, tt.route)
			assert.Equal(t, tt.wantTarget, target)
			assert.Equal(t, tt.wantRedir, redirect)
		})
	}
}

func TestSession_Init(t *testing.T) {
	tests := []struct {
		name      string
		token     string
		route     string
		wantState State
		wantNav   []string
	}{
		{"token on analyzer", "tok", "/analyzer", Authenticated, nil},
		{"token on login", "tok", "/login", Authenticated, []string{"/analyzer"}},
		{"no token on analyzer", "", "/analyzer", Unauthenticated, []string{"/login"}},
		{"no token on register", "", "/register", Unauthenticated, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nav := &recordingNavigator{}
			s := NewSession(&fakeStore{token: tt.token}, nav, tt.route)
			assert.True(t, s.IsLoading())

			s.Init()

			assert.False(t, s.IsLoading())
			assert.Equal(t, tt.wantState, s.State())
			assert.Equal(t, tt.wantNav, nav.routes)

			// isAuthenticated == (token != nil) once loading is over
			_, hasToken := s.Token()
			assert.Equal(t, tt.token != "", s.IsAuthenticated())
			assert.Equal(t, s.IsAuthenticated(), hasToken)
		})
	}
}

func TestSession_Login(t *testing.T) {
	store := &fakeStore{}
	nav := &recordingNavigator{}
	s := NewSession(store, nav, "/login")
	s.Init()
	require.Equal(t, Unauthenticated, s.State())
	require.Empty(t, nav.routes)

	require.NoError(t, s.Login("jwt-token"))

	assert.Equal(t, Authenticated, s.State())
	assert.Equal(t, "jwt-token", store.token)
	assert.Equal(t, []string{"/analyzer"}, nav.routes)
	assert.Equal(t, "/analyzer", s.Route())

	token, ok := s.Token()
	assert.True(t, ok)
	assert.Equal(t, "jwt-token", token)
}

func TestSession_LoginStoreFailure(t *testing.T) {
	boom := errors.New("cookie too large")
	nav := &recordingNavigator{}
	s := NewSession(&fakeStore{setErr: boom}, nav, "/login")
	s.Init()

	err := s.Login("jwt-token")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, Unauthenticated, s.State())
	assert.Empty(t, nav.routes)
}

func TestSession_Logout(t *testing.T) {
	store := &fakeStore{token: "tok"}
	nav := &recordingNavigator{}
	s := NewSession(store, nav, "/analyzer")
	s.Init()

	require.NoError(t, s.Logout())

	assert.Equal(t, Unauthenticated, s.State())
	assert.Empty(t, store.token)
	assert.Equal(t, []string{"/login"}, nav.routes)

	_, ok := s.Token()
	assert.False(t, ok)
}

func TestSession_GuardIdempotent(t *testing.T) {
	nav := &recordingNavigator{}
	s := NewSession(&fakeStore{}, nav, "/login")
	s.Init()

	for i := 0; i < 5; i++ {
		s.SetRoute("/login")
	}
	assert.Empty(t, nav.routes, "no navigation while the invariant holds")

	s.SetRoute("/analyzer")
	assert.Equal(t, []string{"/login"}, nav.routes)
	assert.Equal(t, "/login", s.Route())

	s.SetRoute("/login")
	assert.Equal(t, []string{"/login"}, nav.routes, "redirect does not loop")
}

func TestSession_UnknownDoesNotRedirect(t *testing.T) {
	nav := &recordingNavigator{}
	s := NewSession(&fakeStore{}, nav, "/analyzer")

	s.SetRoute("/analyzer")
	s.SetRoute("/login")
	assert.Empty(t, nav.routes)
}

func TestIsPublic(t *testing.T) {
	assert.True(t, IsPublic("/login"))
	assert.True(t, IsPublic("/register"))
	assert.False(t, IsPublic("/analyzer"))
	assert.False(t, IsPublic("/login/"))
}
