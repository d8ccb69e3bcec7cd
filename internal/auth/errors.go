package auth

import "errors"

var (
	// ErrInvalidToken covers malformed, expired and badly signed tokens
	// alike so callers cannot probe which sub-case occurred.
	ErrInvalidToken = errors.New("auth: invalid token")

	// ErrForbiddenRole indicates the token is valid but carries the wrong
	// role claim for the requested operation.
	ErrForbiddenRole = errors.New("auth: role not permitted")
)
