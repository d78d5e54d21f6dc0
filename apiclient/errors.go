package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind classifies a failed backend call.
type Kind int

const (
	KindAuth Kind = iota + 1
	KindValidation
	KindAnalysis
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindValidation:
		return "validation"
	case KindAnalysis:
		return "analysis"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is checks against *Error.
var (
	ErrAuth       = errors.New("authentication failed")
	ErrValidation = errors.New("validation failed")
	ErrAnalysis   = errors.New("analysis failed")
	ErrNetwork    = errors.New("backend unreachable")
)

// Fallback messages shown when the backend gives no detail.
const (
	MsgInvalidCredentials = "Invalid credentials. Please try again."
	MsgRegistrationFailed = "Registration failed. Please try again."
	MsgAnalysisFailed     = "Failed to analyze chat. Please try again or check the file format."
)

// Error is the failure half of every client operation: a kind plus a message
// fit for showing to the user.
type Error struct {
	Kind    Kind
	Status  int // 0 when the request never got a response
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s error (HTTP %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrAuth:
		return e.Kind == KindAuth
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrAnalysis:
		return e.Kind == KindAnalysis
	case ErrNetwork:
		return e.Kind == KindNetwork
	}
	return false
}

// UserMessage returns the message to display for err, or fallback when err
// carries none.
func UserMessage(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// errorBody covers the two error shapes the backend produces:
// {"detail": "..."} from request validation and {"message": "..."} from its
// catch-all handler. detail may also be a list of field errors.
type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
}

// backendMessage extracts a human readable message from an error body, or "".
func backendMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}

	if len(eb.Detail) > 0 {
		var detail string
		if err := json.Unmarshal(eb.Detail, &detail); err == nil && detail != "" {
			return detail
		}

		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(eb.Detail, &items); err == nil && len(items) > 0 && items[0].Msg != "" {
			return items[0].Msg
		}
	}

	return eb.Message
}
