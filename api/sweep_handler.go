package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shreyas/tweetsched/scheduler"
)

type sweepItemResponse struct {
	ScheduledTime int64  `json:"scheduledTime"`
	Published     bool   `json:"published"`
	Skipped       bool   `json:"skipped,omitempty"`
	RemotePostID  string `json:"remotePostId,omitempty"`
	Error         string `json:"error,omitempty"`
}

type sweepResponse struct {
	Account string              `json:"account"`
	Window  scheduler.Window    `json:"window"`
	Found   int                 `json:"found"`
	Posted  int                 `json:"posted"`
	Failed  int                 `json:"failed"`
	Skipped int                 `json:"skipped"`
	Outcome string              `json:"outcome"`
	Items   []sweepItemResponse `json:"items"`
}

func newSweepResponse(report scheduler.SweepReport) sweepResponse {
	items := make([]sweepItemResponse, len(report.Items))
	for i, item := range report.Items {
		items[i] = sweepItemResponse{
			ScheduledTime: item.ScheduledTime,
			Published:     item.Published,
			Skipped:       item.Skipped,
			RemotePostID:  item.RemotePostID,
		}
		if item.Err != nil {
			items[i].Error = item.Err.Error()
		}
	}

	return sweepResponse{
		Account: report.Account,
		Window:  report.Window,
		Found:   report.Found,
		Posted:  report.Posted,
		Failed:  report.Failed,
		Skipped: report.Skipped,
		Outcome: report.Outcome(),
		Items:   items,
	}
}

// Sweep handles POST /v1/sweep and runs one sweep synchronously
func (h *Handler) Sweep(c *gin.Context) {
	report, err := h.sweeper.Sweep(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newSweepResponse(report))
}
