package providers

import "errors"

// authError reports a missing or rejected credential. Raised at provider
// construction when the key environment variable is unset, and by the HTTP
// clients on 401/403.
type authError struct {
	message string
}

func (e *authError) Error() string {
	return "authentication error: " + e.message
}

// IsAuthError checks if an error is an authentication error.
func IsAuthError(err error) bool {
	var ae *authError
	return errors.As(err, &ae)
}

// upstreamError reports a failed completion call: non-success status or an
// unreachable endpoint. Calls are never retried.
type upstreamError struct {
	message string
	cause   error
}

func (e *upstreamError) Error() string {
	if e.cause != nil {
		return "upstream error: " + e.message + ": " + e.cause.Error()
	}
	return "upstream error: " + e.message
}

func (e *upstreamError) Unwrap() error { return e.cause }

// IsUpstreamError checks if an error came from the completion endpoint.
func IsUpstreamError(err error) bool {
	var ue *upstreamError
	return errors.As(err, &ue)
}
