package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shreyas/tweetsched/lib/logger"
	"github.com/shreyas/tweetsched/scheduler"
	"github.com/shreyas/tweetsched/scheduler/post"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// SuccessResponse represents a standardized success response
type SuccessResponse struct {
	Data interface{} `json:"data"`
}

// errorStatus maps an error kind to its HTTP status and error code
func errorStatus(err error) (int, ErrorDetail) {
	detail := ErrorDetail{Message: err.Error()}

	switch {
	case errors.Is(err, post.ErrInvalidText):
		detail.Code, detail.Field = "VALIDATION_ERROR", "status"
		return http.StatusBadRequest, detail
	case errors.Is(err, post.ErrInvalidTime):
		detail.Code, detail.Field = "VALIDATION_ERROR", "date"
		return http.StatusBadRequest, detail
	case errors.Is(err, post.ErrMissingAccount):
		detail.Code, detail.Field = "VALIDATION_ERROR", "account"
		return http.StatusBadRequest, detail
	case errors.Is(err, post.ErrValidation):
		detail.Code = "VALIDATION_ERROR"
		return http.StatusBadRequest, detail
	case errors.Is(err, post.ErrInvalidRange):
		detail.Code = "INVALID_RANGE"
		return http.StatusBadRequest, detail
	case errors.Is(err, post.ErrNotFound):
		detail.Code = "NOT_FOUND"
		return http.StatusNotFound, detail
	case errors.Is(err, post.ErrAlreadyPosted):
		detail.Code = "ALREADY_POSTED"
		return http.StatusConflict, detail
	case errors.Is(err, scheduler.ErrSweepInProgress):
		detail.Code = "SWEEP_IN_PROGRESS"
		return http.StatusConflict, detail
	case errors.Is(err, post.ErrTimeout):
		detail.Code = "TIMEOUT"
		return http.StatusGatewayTimeout, detail
	case errors.Is(err, post.ErrPublish):
		detail.Code = "PUBLISH_FAILED"
		return http.StatusBadGateway, detail
	case errors.Is(err, post.ErrStoreUnavailable):
		detail.Code = "STORE_UNAVAILABLE"
		return http.StatusServiceUnavailable, detail
	default:
		detail.Code = "INTERNAL_ERROR"
		return http.StatusInternalServerError, detail
	}
}

// respondError writes err with the status of its kind
func respondError(c *gin.Context, err error) {
	status, detail := errorStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "path", c.FullPath(), "code", detail.Code, "error", err)
	}
	c.JSON(status, ErrorResponse{Error: detail})
}

// respondInvalidRequest is used when the body or a parameter cannot be decoded
func respondInvalidRequest(c *gin.Context, message, field string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: ErrorDetail{
			Code:    "INVALID_REQUEST",
			Message: message,
			Field:   field,
		},
	})
}
