// Command kasa talks to TP-Link Kasa smart plugs on the local network.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/marcuoli/go-kasa/pkg/kasa/transport"
)

const (
	exitOK    = 0
	exitFatal = 1
	exitUsage = 2
)

// usageError marks bad arguments, targets and config files.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usage(err error) error {
	if err == nil {
		return nil
	}
	return &usageError{err: err}
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	if transport.IsFatal(err) {
		return exitFatal
	}
	var ue *usageError
	if errors.As(err, &ue) {
		return exitUsage
	}
	return exitFatal
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	os.Exit(exitCode(err))
}
