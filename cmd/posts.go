package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shreyas/tweetsched/scheduler"
	"github.com/shreyas/tweetsched/scheduler/post"
	"github.com/spf13/cobra"
)

var (
	fromFlag string
	toFlag   string
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Publish every post due now and exit",
	Long:  "Runs a single sweep, for hosts that trigger it externally (cron, a serverless scheduler).",
	Args:  cobra.NoArgs,
	RunE:  sweepRun,
}

var postCmd = &cobra.Command{
	Use:   "post <text>",
	Short: "Publish a post immediately",
	Args:  cobra.MinimumNArgs(1),
	RunE:  postRun,
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule <time> <text>",
	Short: "Schedule a post",
	Long:  "Schedules text at <time>, given as epoch milliseconds or RFC3339. A post already scheduled at that time is replaced.",
	Args:  cobra.MinimumNArgs(2),
	RunE:  scheduleRun,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List posts that have not been published yet",
	Args:  cobra.NoArgs,
	RunE:  listRun,
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the store is reachable",
	Args:  cobra.NoArgs,
	RunE:  pingRun,
}

func init() {
	listCmd.Flags().StringVar(&fromFlag, "from", "", "only posts scheduled at or after this time")
	listCmd.Flags().StringVar(&toFlag, "to", "", "only posts scheduled at or before this time")
}

// parseWhen accepts epoch milliseconds or an RFC3339 timestamp
func parseWhen(raw string) (int64, error) {
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts.UnixMilli(), nil
	}
	return post.ParseTime(raw)
}

// truncate shortens text to at most limit runes, marking the cut with "..."
func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit-3]) + "..."
}

func sweepRun(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	pub, err := newPublisher()
	if err != nil {
		return err
	}

	report, err := a.newSweepWorker(pub, account()).Sweep(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, item := range report.Items {
		switch {
		case item.Skipped:
			_, _ = fmt.Fprintf(out, "%d\tskipped\n", item.ScheduledTime)
		case item.Failed():
			_, _ = fmt.Fprintf(out, "%d\tfailed\t%v\n", item.ScheduledTime, item.Err)
		default:
			_, _ = fmt.Fprintf(out, "%d\tposted\t%s\n", item.ScheduledTime, item.RemotePostID)
		}
	}
	_, _ = fmt.Fprintln(out, report.Outcome())
	return nil
}

func postRun(cmd *cobra.Command, args []string) error {
	pub, err := newPublisher()
	if err != nil {
		return err
	}

	result, err := scheduler.PostNow(context.Background(), pub, strings.Join(args, " "))
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "posted %s\n", result.ID)
	return nil
}

func scheduleRun(cmd *cobra.Command, args []string) error {
	scheduledTime, err := parseWhen(args[0])
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.posts.Create(ctx, account(), scheduledTime, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	due := result.Post.Due().UTC().Format(time.RFC3339)
	if result.Replaced() {
		_, _ = fmt.Fprintf(out, "replaced post at %s (was %q)\n", due, result.Previous.Text)
	} else {
		_, _ = fmt.Fprintf(out, "scheduled post at %s\n", due)
	}
	return nil
}

func listRun(cmd *cobra.Command, args []string) error {
	var from, to *int64
	if fromFlag != "" {
		ms, err := parseWhen(fromFlag)
		if err != nil {
			return fmt.Errorf("--from: %w", err)
		}
		from = &ms
	}
	if toFlag != "" {
		ms, err := parseWhen(toFlag)
		if err != nil {
			return fmt.Errorf("--to: %w", err)
		}
		to = &ms
	}

	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	posts, err := a.posts.QueryDue(ctx, account(), from, to)
	if err != nil {
		return err
	}

	if len(posts) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No scheduled posts.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "SCHEDULED\tMILLIS\tTEXT\n")

	for _, p := range posts {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\n", p.Due().UTC().Format(time.RFC3339), p.ScheduledTime, truncate(p.Text, 50))
	}

	return w.Flush()
}

func pingRun(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.posts.Ping(ctx); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "pong")
	return nil
}
