//go:build linux

package reactor

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// NewTimer creates a Timer bound to rx, backed by a non-blocking timerfd.
// Must be called from the reactor goroutine. The timerfd uses
// CLOCK_BOOTTIME rather than CLOCK_MONOTONIC, so time spent in system
// suspend counts toward the period, as in original_source's timer.cpp.
func NewTimer(rx *Reactor) (*Timer, error) {
	fd, err := unix.TimerfdCreate(unix.CLOCK_BOOTTIME, unix.TFD_CLOEXEC|unix.TFD_NONBLOCK)
	if err != nil {
		return nil, fmt.Errorf("reactor: creating timerfd: %w", err)
	}
	t := &Timer{rx: rx, id: SourceID(fd)}
	if err := rx.RegisterRead(t.id, func(SourceID) bool {
		var buf [8]byte
		// The read count itself is discarded: original_source/lib/sys/linux/timer.cpp's
		// process() deliberately coalesces any backlog of missed expiries
		// into a single eventHandler(true) call rather than replaying them.
		if _, err := unix.Read(fd, buf[:]); err != nil {
			return false
		}
		if t.handler != nil {
			t.handler(true)
		}
		return false
	}); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}
	return t, nil
}

// Set arms the timer with the given handler and period. If repeated is
// true the timer re-fires every period until Cancel or Close; otherwise it
// fires once. A zero period is rejected, matching original_source's
// Timer::set() guard against a zero interval being passed to
// timerfd_settime (which would disarm the timer instead of arming it).
func (t *Timer) Set(handler TimerHandler, period time.Duration, repeated bool) error {
	if period <= 0 {
		return ErrInvalidPeriod
	}
	t.handler = handler
	t.period = period
	t.repeated = repeated

	spec := unix.ItimerSpec{
		Value: unix.NsecToTimespec(period.Nanoseconds()),
	}
	if repeated {
		spec.Interval = unix.NsecToTimespec(period.Nanoseconds())
	}
	return unix.TimerfdSettime(int(t.id), 0, &spec, nil)
}

// Cancel disarms the timer, returning true if it had been armed (false if
// it was already idle), matching original_source's Timer::cancel() return
// value. Matching original_source's ordering, the handler is cleared
// before the final synthetic callback is made with fired=false, so the
// handler cannot observe a timer that looks armed.
func (t *Timer) Cancel() bool {
	_ = unix.TimerfdSettime(int(t.id), 0, &unix.ItimerSpec{}, nil)
	h := t.handler
	t.handler = nil
	if h != nil {
		h(false)
	}
	return h != nil
}

// Close unregisters the timer and releases its timerfd. Must be called
// from the reactor goroutine.
func (t *Timer) Close() error {
	t.Cancel()
	_ = t.rx.UnregisterRead(t.id)
	return unix.Close(int(t.id))
}
