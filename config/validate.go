package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	ErrInvalidBackendURL = errors.New("backend.base_url must be an absolute http or https URL")
	ErrUnknownStore      = errors.New("session.store must be cookie or redis")
	ErrInvalidExtension  = errors.New("upload.allowed_extension must start with a dot")
)

// Validate checks the settings the server cannot start without.
func (c Config) Validate() error {
	if c.Session.Secret == "" {
		return ErrMissingSessionSecret
	}
	if err := validateBackendURL(c.Backend.BaseURL); err != nil {
		return err
	}
	switch c.Session.Store {
	case "", "cookie", "redis":
	default:
		return fmt.Errorf("%w: got %q", ErrUnknownStore, c.Session.Store)
	}
	if ext := c.Upload.AllowedExtension; ext != "" && !strings.HasPrefix(ext, ".") {
		return fmt.Errorf("%w: got %q", ErrInvalidExtension, ext)
	}
	return nil
}

// validateBackendURL accepts loopback and private hosts: the backend usually
// runs next to the dashboard.
func validateBackendURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("%w: empty", ErrInvalidBackendURL)
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBackendURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q", ErrInvalidBackendURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidBackendURL)
	}
	return nil
}
