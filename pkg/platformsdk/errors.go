package platformsdk

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error represents a rejection from the platform: a non-2xx status, or a
// 2xx envelope with success=false. Message carries the server-provided text
// when one was present, suitable for showing to the user.
type Error struct {
	// StatusCode is the HTTP status of the response that produced the error.
	StatusCode int

	// Message is the platform's error or message field, or a generic
	// fallback derived from the status code.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("platform: %s (HTTP %d)", e.Message, e.StatusCode)
}

// errorEnvelope covers the error shapes the platform's PHP endpoints emit.
type errorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// newError builds an Error from a response body, preferring the server's own
// error text over a generic status-code message.
func newError(statusCode int, body []byte) *Error {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil {
		if env.Error != "" {
			return &Error{StatusCode: statusCode, Message: env.Error}
		}
		if env.Message != "" {
			return &Error{StatusCode: statusCode, Message: env.Message}
		}
	}

	return &Error{
		StatusCode: statusCode,
		Message:    fmt.Sprintf("HTTP %d: %s", statusCode, http.StatusText(statusCode)),
	}
}

// envelopeMessage picks the user-facing text out of a decoded envelope.
func envelopeMessage(errText, message, fallback string) string {
	if errText != "" {
		return errText
	}
	if message != "" {
		return message
	}
	return fallback
}
