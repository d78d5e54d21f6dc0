// Package apiclient talks to the chat analysis backend.
//
// Every call is a single at-most-once request: no retries and no caching.
// Failures come back as *Error values tagged with a Kind.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"chat-analyzer/config"
	"chat-analyzer/model"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const (
	tokenPath    = "/auth/token"
	registerPath = "/auth/register"
	analyzePath  = "/analyze"
)

// Client is a configured request layer for the analysis backend.
type Client struct {
	http *resty.Client
}

// New creates a backend client. The bearer token for a call is taken from
// its context (see ContextWithToken).
func New(cfg config.BackendConfig) *Client {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "chat-analyzer-dashboard/1.0")

	rc.OnBeforeRequest(attachBearer)

	return &Client{http: rc}
}

type tokenCtxKey struct{}

// ContextWithToken returns a context whose requests carry Authorization: Bearer <token>.
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenCtxKey{}, token)
}

// TokenFromContext returns the bearer token stored by ContextWithToken.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenCtxKey{}).(string)
	return token, ok && token != ""
}

func attachBearer(_ *resty.Client, req *resty.Request) error {
	if token, ok := TokenFromContext(req.Context()); ok {
		req.SetAuthToken(token)
	}
	return nil
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (model.Token, error) {
	var token model.Token

	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"username": username,
			"password": password,
		}).
		Post(tokenPath)
	if err != nil {
		return token, networkError(err, MsgInvalidCredentials)
	}

	if !resp.IsSuccess() {
		msg := backendMessage(resp.Body())
		if msg == "" {
			msg = MsgInvalidCredentials
		}
		log.Warn().Int("status", resp.StatusCode()).Str("username", username).Msg("Login rejected by backend")
		return token, &Error{Kind: KindAuth, Status: resp.StatusCode(), Message: msg}
	}

	if err := json.Unmarshal(resp.Body(), &token); err != nil || token.AccessToken == "" {
		log.Error().Err(err).Msg("Backend returned an unusable token response")
		return model.Token{}, &Error{Kind: KindAuth, Status: resp.StatusCode(), Message: MsgInvalidCredentials, Err: err}
	}

	log.Debug().Str("username", username).Dur("took", resp.Time()).Msg("Login succeeded")
	return token, nil
}

// Register creates a backend account.
func (c *Client) Register(ctx context.Context, reg model.Registration) (model.User, error) {
	var user model.User

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(reg).
		Post(registerPath)
	if err != nil {
		return user, networkError(err, MsgRegistrationFailed)
	}

	if !resp.IsSuccess() {
		msg := MsgRegistrationFailed
		if resp.StatusCode() == http.StatusBadRequest {
			if detail := backendMessage(resp.Body()); detail != "" {
				msg = detail
			}
		}
		log.Warn().Int("status", resp.StatusCode()).Str("username", reg.Username).Msg("Registration rejected by backend")
		return user, &Error{Kind: KindValidation, Status: resp.StatusCode(), Message: msg}
	}

	if err := json.Unmarshal(resp.Body(), &user); err != nil {
		return model.User{}, &Error{Kind: KindValidation, Status: resp.StatusCode(), Message: MsgRegistrationFailed, Err: err}
	}

	log.Info().Str("username", user.Username).Msg("Account registered")
	return user, nil
}

// Analyze uploads an exported chat and returns the statistics scoped to selectedUser.
func (c *Client) Analyze(ctx context.Context, file model.UploadedFile, selectedUser string) (*model.AnalysisResults, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetFileReader("file", file.Name, bytes.NewReader(file.Content)).
		SetMultipartFormData(map[string]string{
			"selected_user": selectedUser,
		}).
		Post(analyzePath)
	if err != nil {
		return nil, networkError(err, MsgAnalysisFailed)
	}

	if !resp.IsSuccess() {
		msg := backendMessage(resp.Body())
		if msg == "" {
			msg = MsgAnalysisFailed
		}
		log.Warn().
			Int("status", resp.StatusCode()).
			Str("file", file.Name).
			Str("selected_user", selectedUser).
			Msg("Analysis rejected by backend")
		return nil, &Error{Kind: KindAnalysis, Status: resp.StatusCode(), Message: msg}
	}

	var results model.AnalysisResults
	if err := json.Unmarshal(resp.Body(), &results); err != nil {
		log.Error().Err(err).Str("file", file.Name).Msg("Failed to decode analysis results")
		return nil, &Error{Kind: KindAnalysis, Status: resp.StatusCode(), Message: MsgAnalysisFailed, Err: err}
	}
	if err := results.Validate(); err != nil {
		log.Error().Err(err).Str("file", file.Name).Msg("Analysis results failed validation")
		return nil, &Error{Kind: KindAnalysis, Status: resp.StatusCode(), Message: MsgAnalysisFailed, Err: err}
	}

	log.Info().
		Str("file", file.Name).
		Int64("size", file.Size).
		Str("selected_user", selectedUser).
		Dur("took", resp.Time()).
		Msg("Analysis completed")
	return &results, nil
}

// Health reports whether the backend answers HTTP at all.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.http.R().SetContext(ctx).Get("/")
	if err != nil {
		return networkError(err, "analysis backend unreachable")
	}
	return nil
}

func networkError(err error, msg string) *Error {
	log.Error().Err(err).Msg("Backend request failed")
	return &Error{Kind: KindNetwork, Message: msg, Err: err}
}
