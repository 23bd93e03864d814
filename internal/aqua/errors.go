package aqua

import "fmt"

// AuthError reports a failed login against the Aqua console: a transport
// failure, an HTTP error status, or a response without a token.
type AuthError struct {
	StatusCode int
	Err        error
}

func (e *AuthError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("aqua login failed: status %d", e.StatusCode)
	}
	return fmt.Sprintf("aqua login failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// FetchError reports a failed data query against one Aqua API endpoint.
// Endpoint failures are independent: the caller skips the affected metric
// families and keeps going.
type FetchError struct {
	Path       string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("aqua query %s failed: status %d", e.Path, e.StatusCode)
	}
	return fmt.Sprintf("aqua query %s failed: %v", e.Path, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
