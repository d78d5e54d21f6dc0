// Package tokenstore keeps the single bearer token of a browser session.
// Tokens are opaque strings; nothing here inspects or validates them.
package tokenstore

import (
	"errors"
	"net/http"
)

var ErrEmptyToken = errors.New("token cannot be empty")

// Store persists one token per browser session. Implementations identify the
// browser session from the request (cookie) and may write cookies on the response.
type Store interface {
	Get(r *http.Request) (string, bool)
	Set(w http.ResponseWriter, r *http.Request, token string) error
	Clear(w http.ResponseWriter, r *http.Request) error
}

// Handle is a Store bound to one request/response pair. It exposes the plain
// get/set/clear contract the auth session works against.
type Handle struct {
	store Store
	w     http.ResponseWriter
	r     *http.Request
}

// Bind ties store to the current request.
func Bind(store Store, w http.ResponseWriter, r *http.Request) *Handle {
	return &Handle{store: store, w: w, r: r}
}

func (h *Handle) Get() (string, bool) {
	return h.store.Get(h.r)
}

func (h *Handle) Set(token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	return h.store.Set(h.w, h.r, token)
}

func (h *Handle) Clear() error {
	return h.store.Clear(h.w, h.r)
}
