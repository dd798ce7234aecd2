//go:build windows

package reactor

import (
	"sync/atomic"
	"time"
)

var winTimerIDs atomic.Uint64

// NewTimer creates a Timer bound to rx. Windows has no IOCP-native timer
// primitive; firing is driven by time.AfterFunc posting a completion packet
// to rx's IOCP, so the handler still runs on the reactor goroutine like
// every other dispatch. This is the one deliberate simplification named in
// DESIGN.md's Timer entry: a waitable-timer-plus-overlapped-wait
// design was judged unnecessary complexity next to a goroutine timer whose
// only job is to enqueue a wakeup.
func NewTimer(rx *Reactor) (*Timer, error) {
	id := SourceID(winTimerIDs.Add(1))
	t := &Timer{rx: rx, id: id}
	if err := rx.RegisterRead(id, func(SourceID) bool {
		if t.handler != nil {
			t.handler(true)
		}
		return false
	}); err != nil {
		return nil, err
	}
	return t, nil
}

// Set arms the timer using a Go runtime timer that posts a wakeup to the
// reactor's completion port on each fire.
func (t *Timer) Set(handler TimerHandler, period time.Duration, repeated bool) error {
	if period <= 0 {
		return ErrInvalidPeriod
	}
	t.handler = handler
	t.period = period
	t.repeated = repeated
	t.arm(period)
	return nil
}

func (t *Timer) arm(d time.Duration) {
	t.stopTimer()
	var fire func()
	fire = func() {
		_ = postWake(t.rx.completionPort(), t.id)
		if t.repeated {
			t.wt = time.AfterFunc(t.period, fire)
		}
	}
	t.wt = time.AfterFunc(d, fire)
}

func (t *Timer) stopTimer() {
	if t.wt != nil {
		t.wt.Stop()
		t.wt = nil
	}
}

// Cancel disarms the timer, returning true if it had been armed (false if
// it was already idle), matching original_source's Timer::cancel() return
// value.
func (t *Timer) Cancel() bool {
	t.stopTimer()
	h := t.handler
	t.handler = nil
	if h != nil {
		h(false)
	}
	return h != nil
}

// Close cancels and deregisters the timer.
func (t *Timer) Close() error {
	t.Cancel()
	return t.rx.UnregisterRead(t.id)
}
