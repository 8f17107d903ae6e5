package business

import "fmt"

// ValidationError reports bad user input. It is raised before any local or
// remote mutation, so a caller seeing one knows nothing changed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid input: %s", e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// AuthorizationError reports a missing capability. Checks producing it are
// advisory UX gates; the remote store's row policies remain the real
// boundary and may still reject an operation the client permitted.
type AuthorizationError struct {
	Op     string
	Reason string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("%s not allowed: %s", e.Op, e.Reason)
}
