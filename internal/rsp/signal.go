package rsp

// signal.go wires process signals into the cancellation context the server loop already expects
// (spec.md §5: "a cancellation token, not a global atomic flag, carries shutdown through the
// accept loop and the per-connection loop"). Grounded on the context.WithCancelCause shutdown
// shape used throughout ELSIE (internal/cli/cmd/exec.go, internal/tty/tty.go): a context is
// canceled with a cause and every blocking loop selects on ctx.Done(). Trapping the OS signals
// themselves has no precedent anywhere in the pack, so this uses the standard library's
// signal.NotifyContext directly rather than inventing a third-party dependency for it.

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// NotifyShutdown returns a context canceled when the process receives SIGINT or SIGTERM, along
// with the stop function signal.NotifyContext requires callers to invoke once done.
func NotifyShutdown(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
