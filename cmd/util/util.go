package util

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/wright-cemrc-projects/sync-scripts/pkg/errors"
)

// Mocked for unit testing.
var (
	exit             = os.Exit
	stderr io.Writer = os.Stderr
)

// HandleFatalError handles errors that are severe enough to terminate the
// program.
func HandleFatalError(err error) {
	if msg, ok := errors.GetFriendlyMessage(err); ok {
		fmt.Fprintln(stderr, msg)
	} else {
		fmt.Fprintf(stderr, "Error: %s\n", err)
	}
	log.WithError(err).Debug("Fatal error")
	exit(1)
}

// HandlePanic prints the stack trace of a panic, and exits. It should be
// deferred at the start of main.
func HandlePanic() {
	if r := recover(); r != nil {
		fmt.Fprintf(stderr, "Unexpected panic: %v\n%s\n", r, debug.Stack())
		exit(2)
	}
}

// SignalContext returns a context that's cancelled when the process receives
// SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-signals:
			log.WithField("signal", sig).Info("Received signal. Stopping after in-flight copies are aborted.")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(signals)
	}()
	return ctx, cancel
}
