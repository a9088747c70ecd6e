package fetch

import "fmt"

// RefreshError wraps the first constituent command failure encountered
// during refreshAll/getAllOnuData. Partial results are always discarded;
// the previous cache snapshot remains in effect (spec §4.E).
type RefreshError struct {
	Stage string
	Cause error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("refresh failed at stage %q: %v", e.Stage, e.Cause)
}

func (e *RefreshError) Unwrap() error { return e.Cause }

func NewRefreshError(stage string, cause error) *RefreshError {
	return &RefreshError{Stage: stage, Cause: cause}
}

func IsRefreshError(err error) bool { _, ok := err.(*RefreshError); return ok }
