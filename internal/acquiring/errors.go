package acquiring

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument marks input rejected before any network activity.
var ErrInvalidArgument = errors.New("invalid argument")

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// NetworkError means the HTTP exchange could not be completed.
type NetworkError struct {
	// Code is the OS error number when the failure carries one, 0 otherwise.
	Code int
	Err  error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error (code %d): %v", e.Code, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError means the gateway answered with a non-200 status.
type HTTPError struct {
	Method     string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s request failed with HTTP status %d", e.Method, e.StatusCode)
}

// JSONError means the response body is not a JSON object.
type JSONError struct {
	Raw string
	Err error
}

func (e *JSONError) Error() string {
	if e.Err == nil {
		return "malformed gateway response: empty result"
	}
	return fmt.Sprintf("malformed gateway response %q: %v", e.Raw, e.Err)
}

func (e *JSONError) Unwrap() error { return e.Err }

// OperationError carries a business failure reported by the gateway.
type OperationError struct {
	Code    int
	Message string
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("gateway error %d: %s", e.Code, e.Message)
}

// resultLabel classifies err for metrics.
func resultLabel(err error) string {
	var (
		netErr  *NetworkError
		httpErr *HTTPError
		jsonErr *JSONError
		opErr   *OperationError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	case errors.As(err, &netErr):
		return "network_error"
	case errors.As(err, &httpErr):
		return "http_error"
	case errors.As(err, &jsonErr):
		return "json_error"
	case errors.As(err, &opErr):
		return "operation_error"
	default:
		return "error"
	}
}
