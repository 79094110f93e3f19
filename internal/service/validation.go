package service

import (
	"regexp"
	"unicode/utf8"
)

const (
	ProjectNameMinLength = 3
	ProjectNameMaxLength = 50
	DescriptionMaxLength = 5000
)

var projectNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-./]+$`)

// ValidateProjectName checks the character set first, then the length
func ValidateProjectName(name string) error {
	if !projectNameRegex.MatchString(name) {
		return ErrInvalidProjectName
	}

	// the pattern is ASCII only, so bytes equal characters here
	if len(name) < ProjectNameMinLength {
		return ErrProjectNameTooShort
	}
	if len(name) > ProjectNameMaxLength {
		return ErrProjectNameTooLong
	}

	return nil
}

// ValidateDescription checks the description length in characters
func ValidateDescription(description string) error {
	if utf8.RuneCountInString(description) > DescriptionMaxLength {
		return ErrDescriptionTooLong
	}

	return nil
}
