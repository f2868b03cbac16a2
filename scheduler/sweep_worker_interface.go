package scheduler

import "context"

// SweepWorkerInterface defines operations for publishing due posts
type SweepWorkerInterface interface {
	// Sweep publishes every unposted post inside the due window once.
	// Only a failure to read the due posts is returned as an error;
	// per-post failures are reported in the SweepReport.
	Sweep(ctx context.Context) (SweepReport, error)
}
