package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// SignalContext returns a context that is canceled on SIGINT or SIGTERM.
// Calling stop releases the signal handler; a second signal after stop
// terminates the process with the default behavior.
func SignalContext(parent context.Context) (ctx context.Context, stop context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// ReloadSignal returns a channel receiving SIGHUP, which the run command
// uses to reload the dictionary on demand. Call signal.Stop on the channel
// when done.
func ReloadSignal() chan os.Signal {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGHUP)
	return ch
}
