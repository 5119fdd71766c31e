//go:build !windows

package terminal

import (
	"os"
	"os/signal"
	"syscall"
)

func resizeNotify() (<-chan struct{}, func()) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGWINCH)

	out := make(chan struct{}, 1)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-sigs:
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()

	return out, func() {
		signal.Stop(sigs)
		close(done)
	}
}
