//go:build windows

package terminal

import "time"

// pollInterval is how often the console size is sampled. Windows delivers
// no resize signal.
const pollInterval = 500 * time.Millisecond

func resizeNotify() (<-chan struct{}, func()) {
	out := make(chan struct{}, 1)
	done := make(chan struct{})
	ticker := time.NewTicker(pollInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()
	return out, func() { close(done) }
}
