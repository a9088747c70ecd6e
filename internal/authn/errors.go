package authn

// AuthError surfaces a missing/expired session or a denied permission
// check; handlers map it to HTTP 401/403 per spec §7.
type AuthError struct {
	Reason string
	Status int // 401 or 403
}

func (e *AuthError) Error() string { return e.Reason }

func NewAuthError(reason string, status int) *AuthError { return &AuthError{Reason: reason, Status: status} }

func IsAuthError(err error) bool { _, ok := err.(*AuthError); return ok }
