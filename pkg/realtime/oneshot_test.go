package realtime

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func waitHandle(t *testing.T, ch <-chan Handle) Handle {
	t.Helper()
	select {
	case h := <-ch:
		return h
	case <-time.After(2 * time.Second):
		t.Fatal("task did not fire")
		return 0
	}
}

func TestOneShot_FiresAfterDelay(t *testing.T) {
	clock := clockwork.NewFakeClock()
	o := NewOneShot(clock)
	fired := make(chan Handle, 1)

	h := o.Schedule(100*time.Millisecond, func(h Handle) { fired <- h })
	if !o.Pending() {
		t.Fatal("task should be pending after Schedule")
	}

	clock.Advance(99 * time.Millisecond)
	select {
	case <-fired:
		t.Fatal("task fired early")
	case <-time.After(20 * time.Millisecond):
	}

	clock.Advance(time.Millisecond)
	got := waitHandle(t, fired)
	if got != h {
		t.Errorf("fired handle %d, want %d", got, h)
	}
	if !o.Claim(got) {
		t.Error("first Claim of a fired handle should succeed")
	}
	if o.Claim(got) {
		t.Error("second Claim should fail")
	}
	if o.Pending() {
		t.Error("nothing should be pending after Claim")
	}
}

func TestOneShot_CancelPreventsFire(t *testing.T) {
	clock := clockwork.NewFakeClock()
	o := NewOneShot(clock)
	fired := make(chan Handle, 1)

	o.Schedule(50*time.Millisecond, func(h Handle) { fired <- h })
	if !o.Cancel() {
		t.Fatal("Cancel should report a pending task")
	}
	if o.Cancel() {
		t.Error("second Cancel should report nothing pending")
	}
	clock.Advance(time.Second)
	select {
	case <-fired:
		t.Fatal("cancelled task fired")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestOneShot_ScheduleReplacesPending(t *testing.T) {
	clock := clockwork.NewFakeClock()
	o := NewOneShot(clock)
	fired := make(chan Handle, 2)

	first := o.Schedule(50*time.Millisecond, func(h Handle) { fired <- h })
	second := o.Schedule(200*time.Millisecond, func(h Handle) { fired <- h })
	if first == second {
		t.Fatal("handles should be distinct")
	}

	clock.Advance(100 * time.Millisecond)
	select {
	case h := <-fired:
		t.Fatalf("replaced task %d fired", h)
	case <-time.After(20 * time.Millisecond):
	}
	if o.Claim(first) {
		t.Error("replaced handle should not be claimable")
	}

	clock.Advance(100 * time.Millisecond)
	if got := waitHandle(t, fired); got != second {
		t.Errorf("fired handle %d, want %d", got, second)
	}
}

func TestOneShot_ClaimZeroHandle(t *testing.T) {
	o := NewOneShot(clockwork.NewFakeClock())
	if o.Claim(0) {
		t.Error("zero handle must never be claimable")
	}
}
