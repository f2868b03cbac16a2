package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shreyas/tweetsched/scheduler/post"
)

// scheduleRequest represents the request to schedule a post.
// Date is epoch milliseconds given as a JSON number or a numeric string.
type scheduleRequest struct {
	Date    json.RawMessage `json:"date"`
	Status  string          `json:"status"`
	Account string          `json:"account"`
}

// rescheduleRequest moves a pending post; a missing newDate keeps the current time
type rescheduleRequest struct {
	NewDate json.RawMessage `json:"newDate"`
	Status  string          `json:"status"`
	Account string          `json:"account"`
}

// scheduleResponse represents the response after scheduling
type scheduleResponse struct {
	Post     post.ScheduledPost  `json:"post"`
	Previous *post.ScheduledPost `json:"previous,omitempty"`
	Moved    *post.ScheduledPost `json:"moved,omitempty"`
}

// listResponse represents the payload returned by the list endpoint
type listResponse struct {
	Account string               `json:"account"`
	Range   string               `json:"range"`
	Count   int                  `json:"count"`
	Posts   []post.ScheduledPost `json:"posts"`
}

// parseDate reads an epoch millisecond value that may be quoted
func parseDate(raw json.RawMessage) (int64, error) {
	text := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if text == "" || text == "null" {
		return 0, post.ErrInvalidTime
	}
	return post.ParseTime(text)
}

// Schedule handles POST /v1/scheduled
func (h *Handler) Schedule(c *gin.Context) {
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidRequest(c, "Invalid request body: "+err.Error(), "")
		return
	}

	scheduledTime, err := parseDate(req.Date)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.posts.Create(c.Request.Context(), h.accountOr(req.Account), scheduledTime, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusCreated
	if result.Replaced() {
		status = http.StatusOK
	}
	c.JSON(status, scheduleResponse{Post: result.Post, Previous: result.Previous})
}

// List handles GET /v1/scheduled?account=&fromDate=&toDate=
func (h *Handler) List(c *gin.Context) {
	account := h.accountOr(c.Query("account"))
	from := post.ParseBound(c.Query("fromDate"))
	to := post.ParseBound(c.Query("toDate"))

	posts, err := h.posts.QueryDue(c.Request.Context(), account, from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	if posts == nil {
		posts = []post.ScheduledPost{}
	}
	c.JSON(http.StatusOK, listResponse{
		Account: account,
		Range:   post.QueryRange{From: from, To: to}.String(),
		Count:   len(posts),
		Posts:   posts,
	})
}

// Reschedule handles PUT /v1/scheduled/:date
func (h *Handler) Reschedule(c *gin.Context) {
	oldTime, err := post.ParseTime(c.Param("date"))
	if err != nil {
		respondError(c, err)
		return
	}

	var req rescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidRequest(c, "Invalid request body: "+err.Error(), "")
		return
	}

	newTime := oldTime
	if len(req.NewDate) > 0 && string(req.NewDate) != "null" {
		if newTime, err = parseDate(req.NewDate); err != nil {
			respondError(c, err)
			return
		}
	}

	result, err := h.posts.Reschedule(c.Request.Context(), h.accountOr(req.Account), oldTime, newTime, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, scheduleResponse{Post: result.Post, Previous: result.Previous, Moved: result.Moved})
}

// Delete handles DELETE /v1/scheduled/:date?account=
func (h *Handler) Delete(c *gin.Context) {
	scheduledTime, err := post.ParseTime(c.Param("date"))
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.posts.Delete(c.Request.Context(), h.accountOr(c.Query("account")), scheduledTime); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
