package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrConnect indicates the API could not be reached at all.
	ErrConnect = errors.New("api: failed to connect to server")
	// ErrUnavailable indicates the circuit breaker is open after repeated server failures.
	ErrUnavailable = errors.New("api: server unavailable")
	// ErrMalformed indicates a 2xx response whose payload did not have the expected shape.
	ErrMalformed = errors.New("api: malformed response")
)

// APIError is a business failure reported by the API (success:false or a
// non-2xx status). Message is the server's error text, verbatim.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
}

// UserMessage maps any error from this client to the single line shown to
// the user. Business failures are surfaced verbatim.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, ErrConnect):
		return "Failed to connect to server"
	case errors.Is(err, ErrUnavailable):
		return "Server unavailable, please try again shortly"
	case errors.Is(err, ErrMalformed):
		return "Unexpected response from server"
	default:
		return err.Error()
	}
}

func statusMessage(status int) string {
	if txt := http.StatusText(status); txt != "" {
		return txt
	}
	return fmt.Sprintf("unexpected status %d", status)
}
