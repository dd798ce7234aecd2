//go:build windows

package reactor

import (
	"fmt"
	"sync/atomic"

	"golang.org/x/sys/windows"
)

var winListenerIDs atomic.Uint64

// winListener is the Windows listenRaw. There is no IOCP-native accept
// primitive wired here (AcceptEx needs a pre-allocated socket and a
// fixed-size address buffer per call); instead a background goroutine
// blocks in accept() and hands each new handle to the reactor goroutine
// through a channel, posting a completion packet to wake Run. The actual
// accept() syscall never runs on the reactor goroutine, preserving the
// single-goroutine dispatch contract. AF_UNIX is not supported on this
// build (see ConnectUnix); StartUnix always fails.
type winListener struct {
	rx     *Reactor
	id     SourceID
	handle windows.Handle

	accepted chan windows.Handle
}

func newListenRaw(rx *Reactor) (listenRaw, error) {
	return &winListener{
		rx:       rx,
		id:       SourceID(winListenerIDs.Add(1)),
		handle:   windows.InvalidHandle,
		accepted: make(chan windows.Handle, 16),
	}, nil
}

func (l *winListener) sourceID() SourceID { return l.id }

func (l *winListener) listenTCP(port, backlog int) error {
	handle, err := windows.Socket(windows.AF_INET6, windows.SOCK_STREAM, 0)
	if err != nil {
		return err
	}
	_ = windows.SetsockoptInt(handle, windows.SOL_SOCKET, windows.SO_REUSEADDR, 1)
	sa := &windows.SockaddrInet6{Port: port}
	if err := windows.Bind(handle, sa); err != nil {
		_ = windows.Closesocket(handle)
		return err
	}
	if err := windows.Listen(handle, backlog); err != nil {
		_ = windows.Closesocket(handle)
		return err
	}
	l.handle = handle
	go l.acceptLoop()
	return nil
}

func (l *winListener) listenUnix(addr UnixAddr, backlog int) error {
	return fmt.Errorf("reactor: %w: AF_UNIX is not supported on this Windows build", ErrUnsupportedAddress)
}

func (l *winListener) acceptLoop() {
	for {
		handle, _, err := windows.Accept(l.handle)
		if err != nil {
			return
		}
		l.accepted <- handle
		_ = postWake(l.rx.completionPort(), l.id)
	}
}

func (l *winListener) acceptOne() (rawSocket, error) {
	select {
	case handle := <-l.accepted:
		return newWinSocket(l.rx, handle)
	default:
		return nil, nil
	}
}

func (l *winListener) stop() error {
	if l.handle == windows.InvalidHandle {
		return nil
	}
	err := windows.Closesocket(l.handle)
	l.handle = windows.InvalidHandle
	return err
}
