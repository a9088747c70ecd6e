package provision

import "fmt"

// PreconditionError surfaces a Validate/Verify failure (spec §4.G).
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string { return "precondition: " + e.Reason }

func NewPreconditionError(reason string) *PreconditionError { return &PreconditionError{Reason: reason} }

func IsPreconditionError(err error) bool { _, ok := err.(*PreconditionError); return ok }

// NotFoundError is returned by Unbind when the (port, onuId) pair has no
// BoundOnu.
type NotFoundError struct {
	Port  string
	OnuID int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no bound ONU at port %s id %d", e.Port, e.OnuID)
}

func NewNotFoundError(port string, onuID int) *NotFoundError {
	return &NotFoundError{Port: port, OnuID: onuID}
}

func IsNotFoundError(err error) bool { _, ok := err.(*NotFoundError); return ok }

// BindError marks a bind attempt that failed after resource allocation.
// Stage names the command group that failed; a best-effort rollback of
// everything issued before that stage has already been attempted by the
// time this is returned.
type BindError struct {
	Stage  string
	CiText string
	Cause  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("bind failed at stage %q: %s", e.Stage, e.CiText)
}

func (e *BindError) Unwrap() error { return e.Cause }

func NewBindError(stage, ciText string, cause error) *BindError {
	return &BindError{Stage: stage, CiText: ciText, Cause: cause}
}

func IsBindError(err error) bool { _, ok := err.(*BindError); return ok }
