// internal/handler/errors.go
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"panel-link/internal/discovery"
	"panel-link/internal/model"
	"panel-link/internal/protocol"
	"panel-link/internal/utils"
)

// statusForError maps domain errors onto HTTP status codes.
// Anything unrecognised came from the serial line.
func statusForError(err error) int {
	switch {
	case errors.Is(err, discovery.ErrNoCandidates):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, protocol.ErrMalformedMessage):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

// respondError renders err with the mapped status
func respondError(c *gin.Context, message string, err error) {
	_ = c.Error(err)
	utils.ErrorResponse(c, statusForError(err), message, err)
}

// respondBindError renders a request binding failure, listing the
// offending fields when the validator reported them
func respondBindError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		fields := make(map[string]string, len(validationErrors))
		for _, fe := range validationErrors {
			fields[fe.Field()] = fe.Tag()
		}
		utils.ValidationErrorResponse(c, fields)
		return
	}
	utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
}
