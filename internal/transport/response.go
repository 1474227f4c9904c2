package transport

import (
	"context"
	"errors"
	"net/http"

	"github.com/ds124wfegd/railway-reservation/internal/entity"
	"github.com/gin-gonic/gin"
)

// SuccessResponse represents a successful response
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// ListMeta describes a list payload
type ListMeta struct {
	Count int `json:"count"`
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, ErrorResponse{Success: false, Error: err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Success: false, Error: msg})
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrTrainNotFound), errors.Is(err, entity.ErrBookingNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrDuplicateTrain),
		errors.Is(err, entity.ErrSeatUnavailable),
		errors.Is(err, entity.ErrAlreadyCancelled):
		return http.StatusConflict
	case errors.Is(err, entity.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
