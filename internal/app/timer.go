package app

import (
	"sync"
	"time"
)

// PhaseTimer is a cancellable countdown owned by one room. It emits an
// immediate tick on start, one tick per interval after that, and invokes
// onComplete exactly once when the count reaches zero. Cancellation and
// completion are mutually exclusive: a timer cancelled at the moment of
// expiry either fires onComplete or reports cancelled, never both.
type PhaseTimer struct {
	mu        sync.Mutex
	remaining int
	stopped   bool
	stop      chan struct{}
}

// startPhaseTimer starts a countdown of the given number of units. onTick
// receives the remaining count, from one immediate call with the full count
// down to a final zero tick; onComplete then fires once, receiving the timer
// so the owner can tell which countdown finished. Neither callback is
// invoked while the timer's own lock is held.
func startPhaseTimer(units int, interval time.Duration, onTick func(remaining int), onComplete func(*PhaseTimer)) *PhaseTimer {
	t := &PhaseTimer{
		remaining: units,
		stop:      make(chan struct{}),
	}

	onTick(units)
	go t.run(interval, onTick, onComplete)

	return t
}

func (t *PhaseTimer) run(interval time.Duration, onTick func(int), onComplete func(*PhaseTimer)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			t.mu.Lock()
			if t.stopped {
				t.mu.Unlock()
				return
			}
			t.remaining--
			remaining := t.remaining
			if remaining <= 0 {
				t.stopped = true
				t.mu.Unlock()
				onTick(0)
				onComplete(t)
				return
			}
			t.mu.Unlock()
			onTick(remaining)
		}
	}
}

// Cancel stops the countdown and zeroes the remaining time. Safe to call
// more than once, and a no-op after completion has fired.
func (t *PhaseTimer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return
	}
	t.stopped = true
	t.remaining = 0
	close(t.stop)
}

// Remaining returns the units left on the countdown
func (t *PhaseTimer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}
