package hiring

import "errors"

var (
	ErrNotFound           = errors.New("hiring: not found")
	ErrAlreadyExists      = errors.New("hiring: already exists")
	ErrInvalidInput       = errors.New("hiring: invalid input")
	ErrInvalidCredentials = errors.New("hiring: invalid credentials")
	ErrAlreadyApplied     = errors.New("hiring: already applied")
	ErrForbidden          = errors.New("hiring: forbidden")
	ErrNoCV               = errors.New("hiring: cv not found")
	ErrStatusFinal        = errors.New("hiring: application status is final")
)
