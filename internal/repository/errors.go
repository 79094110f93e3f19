package repository

import (
	"errors"

	"github.com/lib/pq"
)

// Common repository errors
var (
	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateUser is returned when a username or email is already taken
	ErrDuplicateUser = errors.New("user with this username or email already exists")

	// ErrDuplicateToken is returned when trying to store an access token twice
	ErrDuplicateToken = errors.New("access token already exists")

	// ErrDuplicateProjectName is returned when a project name is already taken
	ErrDuplicateProjectName = errors.New("project with this name already exists")

	// ErrInvalidFilter is returned for unknown filter fields, operators, sort keys or badly typed values
	ErrInvalidFilter = errors.New("invalid list query")

	// ErrUnsupportedFixture is returned when a fixture entity has no table mapping
	ErrUnsupportedFixture = errors.New("unsupported fixture type")
)

const (
	codeUniqueViolation = pq.ErrorCode("23505")
	classDataException  = pq.ErrorClass("22")
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == codeUniqueViolation
}

// isDataException reports malformed input values, e.g. "abc" compared to a bigint column
func isDataException(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code.Class() == classDataException
}
