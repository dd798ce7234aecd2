//go:build linux

package reactor

import (
	"sync"

	"golang.org/x/sys/unix"
)

// epollBackend is the Linux kernelBackend, grounded on the teacher's
// FastPoller (poller_linux.go): EpollCreate1/EpollCtl/EpollWait plumbing,
// generalized from a single fixed-array IOCallback dispatch table to the
// reactor's per-direction read/write interest model. Registration is
// edge-triggered per fd (EPOLLET set), matching spec.md's edge-triggered
// dispatch contract: a handler drains available work itself and signals
// "more" to be re-invoked before the next wait.
type epollBackend struct {
	epfd   int
	wakeFD int

	mu       sync.Mutex
	interest map[SourceID]uint32 // current epoll event mask per fd
	eventBuf [256]unix.EpollEvent
}

func newKernelBackend() (kernelBackend, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	wakeFD, err := createWake()
	if err != nil {
		_ = unix.Close(epfd)
		return nil, err
	}
	ev := &unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(wakeFD)}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, wakeFD, ev); err != nil {
		_ = closeWake(wakeFD)
		_ = unix.Close(epfd)
		return nil, err
	}
	return &epollBackend{
		epfd:     epfd,
		wakeFD:   wakeFD,
		interest: make(map[SourceID]uint32),
	}, nil
}

func (p *epollBackend) setInterest(id SourceID, add, remove uint32) error {
	fd := int(id)

	p.mu.Lock()
	mask, existed := p.interest[id]
	mask = (mask &^ remove) | add
	p.mu.Unlock()

	ev := &unix.EpollEvent{Events: mask | unix.EPOLLET, Fd: int32(fd)}

	var op int
	switch {
	case mask == 0 && existed:
		op = unix.EPOLL_CTL_DEL
		ev = nil
	case existed:
		op = unix.EPOLL_CTL_MOD
	default:
		op = unix.EPOLL_CTL_ADD
	}

	if err := unix.EpollCtl(p.epfd, op, fd, ev); err != nil {
		return err
	}

	p.mu.Lock()
	if mask == 0 {
		delete(p.interest, id)
	} else {
		p.interest[id] = mask
	}
	p.mu.Unlock()
	return nil
}

func (p *epollBackend) registerRead(id SourceID) error  { return p.setInterest(id, unix.EPOLLIN, 0) }
func (p *epollBackend) registerWrite(id SourceID) error { return p.setInterest(id, unix.EPOLLOUT, 0) }
func (p *epollBackend) unregisterRead(id SourceID) error {
	return p.setInterest(id, 0, unix.EPOLLIN)
}
func (p *epollBackend) unregisterWrite(id SourceID) error {
	return p.setInterest(id, 0, unix.EPOLLOUT)
}

func (p *epollBackend) wait(dispatch dispatchFunc) error {
	n, err := unix.EpollWait(p.epfd, p.eventBuf[:], -1)
	if err != nil {
		if err == unix.EINTR {
			return nil
		}
		return err
	}
	for i := 0; i < n; i++ {
		fd := int(p.eventBuf[i].Fd)
		if fd == p.wakeFD {
			_, _ = drainWake(p.wakeFD)
			continue
		}
		id := SourceID(fd)
		ev := p.eventBuf[i].Events
		if ev&(unix.EPOLLERR|unix.EPOLLHUP) != 0 {
			dispatch(id, eventError)
		}
		if ev&unix.EPOLLIN != 0 {
			dispatch(id, eventRead)
		}
		if ev&unix.EPOLLOUT != 0 {
			dispatch(id, eventWrite)
		}
	}
	return nil
}

// wake writes to the backend's own eventfd so a goroutine blocked in wait
// with no other source registered still returns, per Reactor.Stop.
func (p *epollBackend) wake() error {
	return signalWake(p.wakeFD)
}

func (p *epollBackend) close() error {
	_ = closeWake(p.wakeFD)
	return unix.Close(p.epfd)
}
