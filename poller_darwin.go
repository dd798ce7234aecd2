//go:build darwin

package reactor

import (
	"sync"

	"golang.org/x/sys/unix"
)

// kqueueBackend is the Darwin kernelBackend, grounded on the teacher's
// kqueue FastPoller (poller_darwin.go), generalized from a fixed-array
// IOCallback dispatch table to per-direction read/write filters registered
// via EVFILT_READ/EVFILT_WRITE with EV_CLEAR for edge-triggered semantics.
type kqueueBackend struct {
	kq       int
	wakePipe wakePipe

	mu       sync.Mutex
	readers  map[SourceID]bool
	writers  map[SourceID]bool
	eventBuf [256]unix.Kevent_t
}

func newKernelBackend() (kernelBackend, error) {
	kq, err := unix.Kqueue()
	if err != nil {
		return nil, err
	}
	unix.CloseOnExec(kq)
	pipe, err := createWakePipe()
	if err != nil {
		_ = unix.Close(kq)
		return nil, err
	}
	ev := unix.Kevent_t{Ident: uint64(pipe.readFD), Filter: unix.EVFILT_READ, Flags: unix.EV_ADD | unix.EV_CLEAR}
	if _, err := unix.Kevent(kq, []unix.Kevent_t{ev}, nil, nil); err != nil {
		_ = pipe.close()
		_ = unix.Close(kq)
		return nil, err
	}
	return &kqueueBackend{
		kq:       kq,
		wakePipe: pipe,
		readers:  make(map[SourceID]bool),
		writers:  make(map[SourceID]bool),
	}, nil
}

func (p *kqueueBackend) changeFilter(id SourceID, filter int16, flags uint16) error {
	ev := unix.Kevent_t{
		Ident:  uint64(id),
		Filter: filter,
		Flags:  flags,
	}
	_, err := unix.Kevent(p.kq, []unix.Kevent_t{ev}, nil, nil)
	return err
}

func (p *kqueueBackend) registerRead(id SourceID) error {
	if err := p.changeFilter(id, unix.EVFILT_READ, unix.EV_ADD|unix.EV_CLEAR); err != nil {
		return err
	}
	p.mu.Lock()
	p.readers[id] = true
	p.mu.Unlock()
	return nil
}

func (p *kqueueBackend) registerWrite(id SourceID) error {
	if err := p.changeFilter(id, unix.EVFILT_WRITE, unix.EV_ADD|unix.EV_CLEAR); err != nil {
		return err
	}
	p.mu.Lock()
	p.writers[id] = true
	p.mu.Unlock()
	return nil
}

func (p *kqueueBackend) unregisterRead(id SourceID) error {
	p.mu.Lock()
	delete(p.readers, id)
	p.mu.Unlock()
	return p.changeFilter(id, unix.EVFILT_READ, unix.EV_DELETE)
}

func (p *kqueueBackend) unregisterWrite(id SourceID) error {
	p.mu.Lock()
	delete(p.writers, id)
	p.mu.Unlock()
	return p.changeFilter(id, unix.EVFILT_WRITE, unix.EV_DELETE)
}

func (p *kqueueBackend) wait(dispatch dispatchFunc) error {
	n, err := unix.Kevent(p.kq, nil, p.eventBuf[:], nil)
	if err != nil {
		if err == unix.EINTR {
			return nil
		}
		return err
	}
	for i := 0; i < n; i++ {
		ev := &p.eventBuf[i]
		if int(ev.Ident) == p.wakePipe.readFD && ev.Filter == unix.EVFILT_READ {
			_, _ = p.wakePipe.drain()
			continue
		}
		id := SourceID(ev.Ident)
		if ev.Flags&unix.EV_ERROR != 0 {
			dispatch(id, eventError)
			continue
		}
		switch ev.Filter {
		case unix.EVFILT_READ, unix.EVFILT_TIMER:
			dispatch(id, eventRead)
			if ev.Flags&unix.EV_EOF != 0 {
				dispatch(id, eventError)
			}
		case unix.EVFILT_WRITE:
			dispatch(id, eventWrite)
			if ev.Flags&unix.EV_EOF != 0 {
				dispatch(id, eventError)
			}
		}
	}
	return nil
}

// wake writes to the backend's own self-pipe so a goroutine blocked in
// wait with no other source registered still returns, per Reactor.Stop.
func (p *kqueueBackend) wake() error {
	return p.wakePipe.signal()
}

func (p *kqueueBackend) close() error {
	_ = p.wakePipe.close()
	return unix.Close(p.kq)
}
