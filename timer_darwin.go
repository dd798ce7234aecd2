//go:build darwin

package reactor

import (
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"
)

var timerIDs atomic.Uint64

// NewTimer creates a Timer bound to rx, backed by a kqueue EVFILT_TIMER
// filter registered directly against the reactor's kqueue fd (bypassing the
// generic registerRead/registerWrite interest model, since EVFILT_TIMER is
// its own filter rather than a readable fd).
func NewTimer(rx *Reactor) (*Timer, error) {
	if _, ok := rx.backend.(*kqueueBackend); !ok {
		return nil, fmt.Errorf("reactor: timer requires a kqueue-backed reactor")
	}
	// Timer idents start above the 32-bit fd range so they never share a
	// SourceID (and so a handler slot) with a descriptor on the same reactor.
	id := SourceID(1<<32 + timerIDs.Add(1))
	t := &Timer{rx: rx, id: id}
	if err := rx.bindReadHandler(id, func(SourceID) bool {
		if t.handler != nil {
			t.handler(true)
		}
		return false
	}); err != nil {
		return nil, err
	}
	return t, nil
}

// Set arms the timer. A zero period is rejected, matching
// original_source/lib/sys/linux/timer.cpp's guard against an unusable
// zero-interval timer.
func (t *Timer) Set(handler TimerHandler, period time.Duration, repeated bool) error {
	if period <= 0 {
		return ErrInvalidPeriod
	}
	t.handler = handler
	t.period = period
	t.repeated = repeated

	kq := t.rx.backend.(*kqueueBackend)
	flags := uint16(unix.EV_ADD)
	if !repeated {
		flags |= unix.EV_ONESHOT
	}
	ev := unix.Kevent_t{
		Ident:  uint64(t.id),
		Filter: unix.EVFILT_TIMER,
		Flags:  flags,
		Fflags: unix.NOTE_NSECONDS,
		Data:   period.Nanoseconds(),
	}
	_, err := unix.Kevent(kq.kq, []unix.Kevent_t{ev}, nil, nil)
	return err
}

// Cancel disarms the timer, returning true if it had been armed (false if
// it was already idle), matching original_source's Timer::cancel() return
// value.
func (t *Timer) Cancel() bool {
	kq := t.rx.backend.(*kqueueBackend)
	ev := unix.Kevent_t{Ident: uint64(t.id), Filter: unix.EVFILT_TIMER, Flags: unix.EV_DELETE}
	_, _ = unix.Kevent(kq.kq, []unix.Kevent_t{ev}, nil, nil)
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
