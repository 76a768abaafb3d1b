package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sethvargo/go-githubactions"

	"github.com/spachava753/cargo-install/internal/models"
)

func main() {
	// Setup context with manual signal handling
	ctx, cancel := context.WithCancel(context.Background())

	// Listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		slog.Info("interrupt received, shutting down...", "signal", sig)
		cancel()
	}()

	err := newRootCmd(os.Getenv).ExecuteContext(ctx)

	signal.Stop(sigChan)
	cancel()

	if err != nil {
		slog.Error("cargo-install failed", "error", err)
		if os.Getenv("GITHUB_ACTIONS") == "true" {
			githubactions.New().Errorf("%s", err)
		}
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	switch models.KindOf(err) {
	case models.KindInvalidInput:
		return 2
	default:
		return 1
	}
}
