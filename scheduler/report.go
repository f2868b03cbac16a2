package scheduler

const (
	outcomeClean  = "Finished posting tweets. No errors."
	outcomeFailed = "Finished posting tweets. See error(s) above."
)

// ItemResult is what happened to one due post during a sweep
type ItemResult struct {
	Account       string
	ScheduledTime int64
	// Published is true once the publisher accepted the post, even if marking it failed
	Published    bool
	RemotePostID string
	Skipped      bool
	Err          error
}

// Failed reports whether the item needs another sweep or manual attention
func (r ItemResult) Failed() bool {
	return r.Err != nil
}

// SweepReport summarises one sweep
type SweepReport struct {
	Account string
	Window  Window
	Found   int
	Posted  int
	Failed  int
	Skipped int
	Items   []ItemResult
}

func (r *SweepReport) add(item ItemResult) {
	r.Items = append(r.Items, item)

	switch {
	case item.Skipped:
		r.Skipped++
	case item.Failed():
		r.Failed++
	default:
		r.Posted++
	}
}

// Outcome is the one-line summary logged at the end of a sweep
func (r SweepReport) Outcome() string {
	if r.Failed > 0 {
		return outcomeFailed
	}
	return outcomeClean
}
