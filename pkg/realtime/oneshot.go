package realtime

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Handle identifies one armed task of a OneShot. The zero Handle is never issued.
type Handle uint64

// OneShot is a single-shot, cancellable deferred task. At most one task is
// armed at a time: Schedule replaces whatever was pending.
//
// The callback runs on a timer goroutine. Callers that guard their own state
// with a lock must take it and Claim the handle before acting, so a task that
// fired in the same turn it was cancelled or replaced does nothing.
type OneShot struct {
	clock clockwork.Clock

	mu    sync.Mutex
	seq   Handle
	armed Handle
	timer clockwork.Timer
	stop  chan struct{}
}

// NewOneShot creates an idle OneShot driven by clock.
func NewOneShot(clock clockwork.Clock) *OneShot {
	return &OneShot{clock: clock}
}

// Schedule cancels any pending task and arms fn to run after d.
func (o *OneShot) Schedule(d time.Duration, fn func(Handle)) Handle {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cancelLocked()

	o.seq++
	h := o.seq
	timer := o.clock.NewTimer(d)
	stop := make(chan struct{})
	o.armed = h
	o.timer = timer
	o.stop = stop

	go func() {
		select {
		case <-timer.Chan():
			fn(h)
		case <-stop:
		}
	}()
	return h
}

// Cancel disarms the pending task without running it. It reports whether a
// task was pending.
func (o *OneShot) Cancel() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cancelLocked()
}

func (o *OneShot) cancelLocked() bool {
	if o.armed == 0 {
		return false
	}
	stopAndDrainTimer(o.timer)
	close(o.stop)
	o.armed = 0
	o.timer = nil
	o.stop = nil
	return true
}

// Claim marks h as consumed if it is still the armed task. Only the first
// Claim of a live handle succeeds; stale or cancelled handles never do.
func (o *OneShot) Claim(h Handle) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if h == 0 || o.armed != h {
		return false
	}
	o.armed = 0
	o.timer = nil
	o.stop = nil
	return true
}

// Pending reports whether a task is armed.
func (o *OneShot) Pending() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.armed != 0
}

// stopAndDrainTimer stops a timer and drains its channel if it already fired.
func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
