package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// exitCodeInterrupted is the conventional exit status for a forced stop.
const exitCodeInterrupted = 130

// SetupSignalHandler returns a context canceled on the first SIGINT or
// SIGTERM. The daemon drains on cancellation (audit recorder flush, snapshot
// write, metrics server shutdown), so a second signal exits the process
// immediately for operators who do not want to wait out the drain.
func SetupSignalHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		cancel()
		<-sigChan
		os.Exit(exitCodeInterrupted)
	}()

	return ctx
}
