package generation

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies why a generation did not produce an image
type Kind string

const (
	InvalidInput         Kind = "invalid_input"
	MisconfiguredService Kind = "misconfigured_service"
	AuthenticationFailed Kind = "authentication_failed"
	ServiceWarmingUp     Kind = "service_warming_up"
	RateLimited          Kind = "rate_limited"
	UpstreamError        Kind = "upstream_error"
	InternalFailure      Kind = "internal_failure"
)

// Error is the only error type Generate returns
type Error struct {
	Kind    Kind
	Message string
	Details string
	Err     error
}

func (e *Error) Error() string {
	msg := string(e.Kind) + ": " + e.Message
	if e.Details != "" {
		msg += " (" + e.Details + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode maps the kind onto the HTTP status returned to the browser
func (e *Error) StatusCode() int {
	switch e.Kind {
	case InvalidInput:
		return http.StatusBadRequest
	case AuthenticationFailed:
		return http.StatusUnauthorized
	case ServiceWarmingUp:
		return http.StatusServiceUnavailable
	case RateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// NewError builds an Error with the standard message for kind
func NewError(kind Kind, details string, err error) *Error {
	return &Error{
		Kind:    kind,
		Message: messages[kind],
		Details: details,
		Err:     err,
	}
}

var messages = map[Kind]string{
	InvalidInput:         "Prompt is required and must be a string",
	MisconfiguredService: "Hugging Face API key not configured. Please add HUGGINGFACE_API_KEY to your environment variables.",
	AuthenticationFailed: "Invalid API key. Please check your HUGGINGFACE_API_KEY environment variable.",
	ServiceWarmingUp:     "Model is loading. Please try again in a few moments.",
	RateLimited:          "Rate limit exceeded. Please try again later.",
	UpstreamError:        "Failed to generate image. Please try again.",
	InternalFailure:      "Internal server error. Please try again.",
}

// upstreamDetails pulls a message out of a JSON error body, falling back to the raw text
func upstreamDetails(body string) string {
	var parsed struct {
		Message string `json:"message"`
		Error   any    `json:"error"`
	}
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return body
	}
	if parsed.Message != "" {
		return parsed.Message
	}
	switch v := parsed.Error.(type) {
	case string:
		if v != "" {
			return v
		}
	case []any:
		parts := make([]string, 0, len(v))
		for _, p := range v {
			parts = append(parts, fmt.Sprint(p))
		}
		if len(parts) > 0 {
			return strings.Join(parts, "; ")
		}
	}
	return body
}
