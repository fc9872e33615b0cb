package source

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel kinds, matched with errors.Is.
var (
	ErrTransport  = errors.New("transport error")
	ErrMalformed  = errors.New("malformed response")
	ErrAPI        = errors.New("api error")
	ErrUnknownTab = errors.New("no endpoint configured for tab")
)

// defaultAPIMessage is used when a failed envelope carries no message.
const defaultAPIMessage = "API error"

// TransportError reports a failed round trip: a network failure, a timeout or
// a non-2xx status.
type TransportError struct {
	StatusCode int
	Timeout    bool
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	case e.Timeout:
		return "request timed out"
	case e.Err != nil:
		return e.Err.Error()
	default:
		return http.StatusText(http.StatusBadGateway)
	}
}

func (e *TransportError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrTransport}
	}
	return []error{ErrTransport, e.Err}
}

// MalformedResponseError reports a body that is not the expected JSON.
type MalformedResponseError struct {
	Snippet string
	Err     error
}

func (e *MalformedResponseError) Error() string {
	if e.Err == nil {
		return ErrMalformed.Error()
	}
	return fmt.Sprintf("%s: %v", ErrMalformed, e.Err)
}

func (e *MalformedResponseError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformed}
	}
	return []error{ErrMalformed, e.Err}
}

// APIError carries the message of an envelope with success set to false.
type APIError struct {
	Message string
}

func (e *APIError) Error() string { return e.Message }

func (e *APIError) Unwrap() error { return ErrAPI }
