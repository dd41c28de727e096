package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/windguard/edgedemo/cmd/edgedemo/commands"
	"github.com/windguard/edgedemo/pkg/engine"
	"github.com/windguard/edgedemo/pkg/gitops"
)

// Version information (set via ldflags during build)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Exit codes, distinguished by failure class so automation around the demo
// can tell a step failure from a convergence failure.
const (
	exitOK          = 0
	exitFailure     = 1
	exitConvergence = 2
	exitPatch       = 3
	exitInterrupt   = 130
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := commands.Execute(ctx, Version, Commit, BuildDate)
	if err == nil {
		os.Exit(exitOK)
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if errors.Is(err, context.Canceled) || ctx.Err() != nil {
		log.Warn().Msg("interrupted by user")
		os.Exit(exitInterrupt)
	}

	var convErr *engine.ConvergenceError
	if errors.As(err, &convErr) {
		log.Error().Err(err).Msg("convergence failed")
		os.Exit(exitConvergence)
	}

	var patchErr *gitops.PatchError
	if errors.As(err, &patchErr) {
		log.Error().Err(err).Msg("console patch failed")
		os.Exit(exitPatch)
	}

	log.Error().Err(err).Msg("run failed")
	os.Exit(exitFailure)
}
