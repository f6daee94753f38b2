package boost

import "fmt"

// RemoteError represents a non-2xx response from the boost engine.
type RemoteError struct {
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("boost: engine returned status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("boost: engine returned status %d", e.StatusCode)
}
