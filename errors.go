package lingo

import (
	"errors"
	"fmt"
)

// ErrUnavailable is the deliberately generic failure returned when the last
// resort backend fails. It avoids leaking transient network detail to the
// end user.
var ErrUnavailable = errors.New("translation unavailable")

// StatusNetwork is the sentinel status for failures below the HTTP layer
// (DNS, connect, timeout).
const StatusNetwork = -1

// ConfigError indicates a configuration problem that no retry can fix, such
// as a missing credential under a mode that requires one.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

// BackendError is a classified backend failure. Status is the HTTP status
// code, or StatusNetwork for network-level failures.
type BackendError struct {
	Backend string // Adapter name ("Microsoft", "Google", ...)
	Status  int
	Message string // Backend-supplied human message, if any
	Cause   error
}

func (e *BackendError) Error() string {
	if e.Status == StatusNetwork {
		return fmt.Sprintf("%s: network error: %s", e.Backend, e.Message)
	}
	return fmt.Sprintf("%s: %d: %s", e.Backend, e.Status, e.Message)
}

func (e *BackendError) Unwrap() error {
	return e.Cause
}
