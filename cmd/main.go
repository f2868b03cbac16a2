package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/shreyas/tweetsched/lib/env"
	"github.com/shreyas/tweetsched/lib/logger"
	"github.com/spf13/cobra"
)

var accountFlag string

var rootCmd = &cobra.Command{
	Use:           "tweetsched",
	Short:         "Schedule posts for Twitter and publish them when they are due",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// a missing .env file is fine, the environment may already be set
		_ = godotenv.Load()

		if err := logger.Initialize(env.LogLevel()); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&accountFlag, "account", "", "account to act on (defaults to ACCOUNT)")

	rootCmd.AddCommand(serveCmd, sweepCmd, postCmd, scheduleCmd, listCmd, pingCmd)
}

// account returns the --account flag or the configured account
func account() string {
	if accountFlag != "" {
		return accountFlag
	}
	return env.Account()
}

func main() {
	defer func() { _ = logger.Sync() }()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		_ = logger.Sync()
		os.Exit(1)
	}
}
