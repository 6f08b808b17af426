package domain

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// Local errors, raised before anything reaches the network.
	ErrValidation = errors.New("validation failed")
	ErrReadOnly   = errors.New("model is read-only")

	// Gateway error kinds; *APIError unwraps to one of these.
	ErrAuthentication = errors.New("authentication failed")
	ErrNotFound       = errors.New("resource not found")
	ErrRateLimit      = errors.New("rate limit exceeded")
	ErrServer         = errors.New("gateway server error")
	ErrAPI            = errors.New("gateway api error")

	ErrTransport = errors.New("transport failure")
)

// ValidationError carries every violation found for a request model.
type ValidationError struct {
	Model  string
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		names = append(names, k)
	}
	sort.Strings(names)

	var b strings.Builder
	if e.Model != "" {
		b.WriteString(e.Model)
		b.WriteString(": ")
	}
	b.WriteString("validation failed")
	for i, name := range names {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s: %s", name, strings.Join(e.Fields[name], ", "))
	}
	return b.String()
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// APIError is a non-2xx gateway response.
type APIError struct {
	Kind       error
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	prefix := fmt.Sprintf("HTTP %d: ", e.StatusCode)
	if strings.HasPrefix(e.Message, prefix) {
		return e.Message
	}
	return prefix + e.Message
}

func (e *APIError) Unwrap() error { return e.Kind }

// Retryable reports whether the gateway may accept the same request later.
func (e *APIError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// TransportError wraps a connection or timeout failure that outlived the
// retry budget.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "request failed: " + e.Err.Error()
}

func (e *TransportError) Unwrap() []error { return []error{ErrTransport, e.Err} }

// Kind maps an error to a short label used in metrics and CLI output.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""

	case errors.Is(err, ErrValidation):
		return "validation"

	case errors.Is(err, ErrReadOnly):
		return "read_only"

	case errors.Is(err, ErrAuthentication):
		return "authentication"

	case errors.Is(err, ErrNotFound):
		return "not_found"

	case errors.Is(err, ErrRateLimit):
		return "rate_limit"

	case errors.Is(err, ErrServer):
		return "server"

	case errors.Is(err, ErrAPI):
		return "api"

	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"

	case errors.Is(err, context.Canceled):
		return "canceled"

	case errors.Is(err, ErrTransport):
		return "transport"

	default:
		return "internal"
	}
}

// ExitCode maps an error to a process exit status for the CLI.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0

	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrReadOnly):
		return 2

	case errors.Is(err, ErrAuthentication):
		return 3

	case errors.Is(err, ErrNotFound):
		return 4

	case errors.Is(err, ErrRateLimit),
		errors.Is(err, ErrServer),
		errors.Is(err, ErrTransport):
		return 5

	default:
		return 1
	}
}
