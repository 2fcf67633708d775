package debounce

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_CoalescesRapidTriggers(t *testing.T) {
	d := New(30 * time.Millisecond)

	var fired int32
	for i := 0; i < 5; i++ {
		d.Trigger(func() { atomic.AddInt32(&fired, 1) })
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)

	if got := atomic.LoadInt32(&fired); got != 1 {
		t.Fatalf("expected 1 firing, got %d", got)
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	d := New(20 * time.Millisecond)

	var fired int32
	d.Trigger(func() { atomic.AddInt32(&fired, 1) })

	if !d.Cancel() {
		t.Fatal("expected Cancel to report a pending callback")
	}

	time.Sleep(60 * time.Millisecond)

	if got := atomic.LoadInt32(&fired); got != 0 {
		t.Fatalf("expected no firing after cancel, got %d", got)
	}

	if d.Cancel() {
		t.Fatal("expected second Cancel to report nothing pending")
	}
}

func TestDebouncer_TriggerAfterCancel(t *testing.T) {
	d := New(10 * time.Millisecond)

	var fired int32
	d.Trigger(func() { atomic.AddInt32(&fired, 1) })
	d.Cancel()
	d.Trigger(func() { atomic.AddInt32(&fired, 1) })

	time.Sleep(50 * time.Millisecond)

	if got := atomic.LoadInt32(&fired); got != 1 {
		t.Fatalf("expected 1 firing, got %d", got)
	}
}
