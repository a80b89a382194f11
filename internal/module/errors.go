package module

import "fmt"

// BackendError is a request-scoped inference failure: the backend
// returned an error status, the transport failed, or the response body
// could not be decoded. The backend's message is preserved verbatim so
// callers can diagnose the failure.
type BackendError struct {
	// StatusCode is the backend's HTTP status, or 0 when the failure
	// happened below HTTP (dial error, timeout, bad body).
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("inference failed: backend returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("inference failed: %s", e.Message)
}
