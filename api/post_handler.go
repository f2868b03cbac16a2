package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shreyas/tweetsched/lib/logger"
	"github.com/shreyas/tweetsched/scheduler"
)

const (
	operationCreate = "create"
	operationPing   = "ping"
)

// invokeRequest is the body of the dispatch entry point
type invokeRequest struct {
	Operation string `json:"operation" binding:"required"`
	Status    string `json:"status"`
}

// postRequest is the body of an immediate post
type postRequest struct {
	Status string `json:"status"`
}

// postResponse describes a published post
type postResponse struct {
	ID       string          `json:"id"`
	Response json.RawMessage `json:"response,omitempty"`
}

// Invoke handles POST /v1/invoke and dispatches on the operation field
func (h *Handler) Invoke(c *gin.Context) {
	var req invokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidRequest(c, "Invalid request body: "+err.Error(), "")
		return
	}

	switch req.Operation {
	case operationCreate:
		h.publish(c, req.Status, func(resp postResponse) {
			c.JSON(http.StatusOK, SuccessResponse{Data: resp})
		})
	case operationPing:
		c.JSON(http.StatusOK, SuccessResponse{Data: "pong"})
	default:
		logger.Warn("unrecognized operation", "operation", req.Operation)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: ErrorDetail{
				Code:    "UNRECOGNIZED_OPERATION",
				Message: fmt.Sprintf("Unrecognized operation %q", req.Operation),
				Field:   "operation",
			},
		})
	}
}

// PostNow handles POST /v1/posts
func (h *Handler) PostNow(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidRequest(c, "Invalid request body: "+err.Error(), "")
		return
	}

	h.publish(c, req.Status, func(resp postResponse) {
		c.JSON(http.StatusCreated, resp)
	})
}

func (h *Handler) publish(c *gin.Context, text string, respond func(postResponse)) {
	result, err := scheduler.PostNow(c.Request.Context(), h.publisher, text)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(postResponse{ID: result.ID, Response: result.Raw})
}
