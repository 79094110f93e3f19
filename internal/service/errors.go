package service

import (
	"errors"
	"fmt"
)

// ErrValidation is wrapped by every input validation failure
var ErrValidation = errors.New("validation failed")

// Project validation errors
var (
	ErrInvalidProjectName  = fmt.Errorf("%w: project name may only contain letters, digits and _-./", ErrValidation)
	ErrProjectNameTooShort = fmt.Errorf("%w: project name must be at least %d characters", ErrValidation, ProjectNameMinLength)
	ErrProjectNameTooLong  = fmt.Errorf("%w: project name must be at most %d characters", ErrValidation, ProjectNameMaxLength)
	ErrDescriptionTooLong  = fmt.Errorf("%w: description must be at most %d characters", ErrValidation, DescriptionMaxLength)
	ErrIDMismatch          = fmt.Errorf("%w: body id does not match path id", ErrValidation)
)

// Auth errors
var (
	ErrUnauthorized = errors.New("authentication required")
	ErrTokenExpired = fmt.Errorf("%w: access token expired", ErrUnauthorized)
	ErrTokenRevoked = fmt.Errorf("%w: access token revoked", ErrUnauthorized)
	ErrForbidden    = errors.New("insufficient privileges")
)
