package profile

import "errors"

var (
	ErrProfileNotFound    = errors.New("profile not found")
	ErrInvalidDisplayName = errors.New("display name cannot be empty")
	ErrInvalidEmail       = errors.New("email address is not valid")
)
