package orchestration

import (
	"fmt"
	"strings"
)

// ConfigurationError indicates the pipeline cannot start: no model is
// available or a required provider credential is missing.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// SessionNotFoundError indicates an operation referenced an unknown session
type SessionNotFoundError struct {
	SessionID string
}

func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("session not found: %s", e.SessionID)
}

// NoClarificationPendingError indicates clarification answers were submitted
// for a session that is not awaiting any.
type NoClarificationPendingError struct {
	SessionID string
}

func (e *NoClarificationPendingError) Error() string {
	return fmt.Sprintf("session %s has no pending clarifications", e.SessionID)
}

// ValidationError carries every violation found in a request, whether in the
// session parameters or in a clarification answer set.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Violations, "; "))
}
