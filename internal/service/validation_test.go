package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateProjectName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"simple", "test-project", nil},
		{"all allowed characters", "org/sub.project_2-x", nil},
		{"minimum length", "abc", nil},
		{"maximum length", strings.Repeat("a", ProjectNameMaxLength), nil},
		{"spaces", "name with spaces", ErrInvalidProjectName},
		{"punctuation", "new-name is invalid!", ErrInvalidProjectName},
		{"empty", "", ErrInvalidProjectName},
		{"non ascii", "projét", ErrInvalidProjectName},
		{"too short", "a", ErrProjectNameTooShort},
		{"too long", strings.Repeat("a", ProjectNameMaxLength+1), ErrProjectNameTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProjectName(tt.input)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, errors.Is(err, ErrValidation), "every name error must wrap ErrValidation")
		})
	}
}

func TestValidateDescription(t *testing.T) {
	assert.NoError(t, ValidateDescription(""))
	assert.NoError(t, ValidateDescription(strings.Repeat("é", DescriptionMaxLength)))
	assert.ErrorIs(t, ValidateDescription(strings.Repeat("x", DescriptionMaxLength+1)), ErrDescriptionTooLong)
}
