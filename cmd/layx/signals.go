package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const MAX_UNGRACEFUL_TEARDOWN_DURATION = 2 * time.Second

// cancelOnSigintSigterm returns a context cancelled on reception of SIGINT or SIGTERM. If the process is still
// running MAX_UNGRACEFUL_TEARDOWN_DURATION after the signal os.Exit(128+signal) is called.
func cancelOnSigintSigterm(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM /*All listed signals should be in the switch statement further below.*/)

	go func() {
		select {
		case <-ctx.Done():
			signal.Stop(ch)
			return
		case sig := <-ch:
			var s int
			switch sig {
			case syscall.SIGINT:
				s = int(syscall.SIGINT)
			case syscall.SIGTERM:
				s = int(syscall.SIGTERM)
			}

			cancel()

			<-time.After(MAX_UNGRACEFUL_TEARDOWN_DURATION)
			os.Exit(128 + s) //https://tldp.org/LDP/abs/html/exitcodes.html
		}
	}()

	return ctx, cancel
}
