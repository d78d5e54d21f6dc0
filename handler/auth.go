package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"chat-analyzer/analyzer"
	"chat-analyzer/apiclient"
	"chat-analyzer/middleware"
	"chat-analyzer/model"
	"chat-analyzer/view"

	"github.com/rs/zerolog/log"
)

// MsgPasswordMismatch is shown when the two password fields differ.
const MsgPasswordMismatch = "Passwords don't match"

var errNoSession = errors.New("no session on request")

// Authenticator is the part of the backend client used for sign in and sign up.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (model.Token, error)
	Register(ctx context.Context, reg model.Registration) (model.User, error)
}

// AuthHandler serves the login, register and logout flows.
type AuthHandler struct {
	client     Authenticator
	renderer   *view.Renderer
	workspaces *analyzer.Registry
}

func NewAuthHandler(client Authenticator, renderer *view.Renderer, workspaces *analyzer.Registry) *AuthHandler {
	return &AuthHandler{client: client, renderer: renderer, workspaces: workspaces}
}

// LoginPage handles GET /login
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusOK, view.PageLogin, view.LoginPage{})
}

// Login handles POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFrom(r)
	if !ok {
		SendJSONError(w, http.StatusInternalServerError, errNoSession, "")
		return
	}

	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")

	token, err := h.client.Login(r.Context(), username, password)
	if err != nil {
		h.renderer.Render(w, http.StatusUnauthorized, view.PageLogin, view.LoginPage{
			Error:    apiclient.UserMessage(err, apiclient.MsgInvalidCredentials),
			Username: username,
		})
		return
	}

	if err := session.Login(token.AccessToken); err != nil {
		log.Error().Err(err).Msg("Failed to persist session token")
		h.renderer.Render(w, http.StatusInternalServerError, view.PageLogin, view.LoginPage{
			Error:    apiclient.MsgInvalidCredentials,
			Username: username,
		})
		return
	}
	log.Info().Str("username", username).Msg("User signed in")
}

// RegisterPage handles GET /register
func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusOK, view.PageRegister, view.RegisterPage{})
}

// Register handles POST /register. A successful registration signs the user in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFrom(r)
	if !ok {
		SendJSONError(w, http.StatusInternalServerError, errNoSession, "")
		return
	}

	reg := model.Registration{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	page := view.RegisterPage{Username: reg.Username, Email: reg.Email}

	if reg.Password != r.PostFormValue("confirm_password") {
		page.Error = MsgPasswordMismatch
		h.renderer.Render(w, http.StatusBadRequest, view.PageRegister, page)
		return
	}

	if _, err := h.client.Register(r.Context(), reg); err != nil {
		page.Error = apiclient.UserMessage(err, apiclient.MsgRegistrationFailed)
		h.renderer.Render(w, http.StatusBadRequest, view.PageRegister, page)
		return
	}

	token, err := h.client.Login(r.Context(), reg.Username, reg.Password)
	if err == nil {
		err = session.Login(token.AccessToken)
	}
	if err != nil {
		log.Error().Err(err).Str("username", reg.Username).Msg("Sign in after registration failed")
		page.Error = apiclient.MsgRegistrationFailed
		h.renderer.Render(w, http.StatusBadGateway, view.PageRegister, page)
		return
	}
}

// Logout handles POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFrom(r)
	if !ok {
		SendJSONError(w, http.StatusInternalServerError, errNoSession, "")
		return
	}

	if token, ok := session.Token(); ok {
		h.workspaces.Drop(token)
	}
	if err := session.Logout(); err != nil {
		log.Error().Err(err).Msg("Failed to clear session token")
		seeOther(w, r, "/login")
	}
}
