package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shreyas/tweetsched/api"
	"github.com/shreyas/tweetsched/api/routes"
	"github.com/shreyas/tweetsched/lib/env"
	"github.com/shreyas/tweetsched/lib/httpserver"
	"github.com/shreyas/tweetsched/lib/logger"
	"github.com/shreyas/tweetsched/scheduler"
	"github.com/spf13/cobra"
)

var noSweepFlag bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the periodic sweep",
	RunE:  serveRun,
}

func init() {
	serveCmd.Flags().BoolVar(&noSweepFlag, "no-sweep", false, "serve the API without the periodic sweep")
}

func serveRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	pub, err := newPublisher()
	if err != nil {
		return err
	}

	worker := a.newSweepWorker(pub, account())

	if !noSweepFlag {
		runner, err := scheduler.NewSweepRunner(worker, env.SweepSchedule())
		if err != nil {
			return err
		}
		runner.Start(ctx)
		logger.Info("sweep runner scheduled", "schedule", env.SweepSchedule(), "account", account())
	}

	handler := api.NewHandler(a.posts, pub, worker, a.attempts, account())
	server := httpserver.New(env.HTTPPort(), routes.Setup(handler, a.posts, a.backend))

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting tweetsched server", "addr", server.Addr())
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal or a server failure
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info("shutdown signal received, gracefully shutting down")
	case err := <-serverErr:
		cancel()
		return fmt.Errorf("server failed: %w", err)
	}

	// Cancel context to stop the sweep runner
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
	return nil
}
