package shared

import "errors"

// UserSafeMessage returns error text safe to show to end users.
// Wrapped store errors collapse to a generic message so internals
// never leak through the response envelope.
func UserSafeMessage(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return "record not found"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid email or password"
	case errors.Is(err, ErrCSRFTokenMissing), errors.Is(err, ErrCSRFTokenMismatch):
		return "request could not be verified, please retry"
	case errors.Is(err, ErrLockHeld):
		return "another update is in progress, please retry"
	case errors.Is(err, ErrInvalidAmount):
		return "amounts must be positive with at most two decimal places"
	}
	return err.Error()
}
