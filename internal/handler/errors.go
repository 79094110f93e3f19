package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prperemyshlev/storyboard-api/internal/dto"
	"github.com/prperemyshlev/storyboard-api/internal/repository"
	"github.com/prperemyshlev/storyboard-api/internal/service"
)

var (
	errInvalidID    = fmt.Errorf("%w: id must be a positive integer", service.ErrValidation)
	errInvalidQuery = fmt.Errorf("%w: malformed list query", service.ErrValidation)
)

// statusFor maps layer errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, repository.ErrInvalidFilter):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrDuplicateProjectName),
		errors.Is(err, repository.ErrDuplicateUser),
		errors.Is(err, repository.ErrDuplicateToken):
		return http.StatusConflict
	case errors.Is(err, service.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as a dto.ErrorResponse and aborts the chain.
// Server errors are attached to the context for the logging middleware
// and never leak their message to the client.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		message = "internal server error"
	}

	c.AbortWithStatusJSON(status, dto.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

// bindingError wraps a gin binding failure so it maps to 400
func bindingError(err error) error {
	return fmt.Errorf("%w: %v", service.ErrValidation, err)
}
