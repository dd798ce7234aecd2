//go:build linux || darwin

package reactor

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

func init() {
	// A write to a peer that has reset the connection raises SIGPIPE with
	// the default disposition of terminating the process; ignoring it here
	// is the idiomatic Go analogue of the original's per-call MSG_NOSIGNAL
	// flag (kept as well, belt and braces, since MSG_NOSIGNAL alone does
	// not cover every code path that can touch the fd).
	signal.Ignore(syscall.SIGPIPE)
}

// fdSocket is the Linux/Darwin rawSocket: a raw non-blocking socket fd,
// grounded on original_source/lib/communication/linux/socketnonblocking.cpp.
type fdSocket struct {
	fd int
}

func newFDSocket(fd int) (*fdSocket, error) {
	if err := unix.SetNonblock(fd, true); err != nil {
		return nil, err
	}
	return &fdSocket{fd: fd}, nil
}

func (s *fdSocket) sourceID() SourceID { return SourceID(s.fd) }

func (s *fdSocket) readv(bufs [][]byte) (int, error) {
	return fdVectoredReader{fd: s.fd}.readv(bufs)
}

// connectTCP resolves host:port and performs a non-blocking connect,
// waiting up to timeout for the socket to become writable before checking
// SO_ERROR, matching connect()'s EINPROGRESS + waitForWritable(5000) +
// getsockopt(SO_ERROR) sequence in socketnonblocking.cpp.
func (s *fdSocket) connectTCP(host string, port int, timeout time.Duration) error {
	ips, err := resolveHost(host)
	if err != nil {
		return err
	}
	var sa unix.Sockaddr
	if ip4 := ips.To4(); ip4 != nil {
		var addr [4]byte
		copy(addr[:], ip4)
		sa = &unix.SockaddrInet4{Port: port, Addr: addr}
	} else {
		var addr [16]byte
		copy(addr[:], ips.To16())
		sa = &unix.SockaddrInet6{Port: port, Addr: addr}
	}
	return s.connectRaw(sa, timeout)
}

func (s *fdSocket) connectUnix(addr UnixAddr, timeout time.Duration) error {
	path, err := addr.encode()
	if err != nil {
		return err
	}
	sa := &unix.SockaddrUnix{Name: string(path)}
	return s.connectRaw(sa, timeout)
}

func (s *fdSocket) connectRaw(sa unix.Sockaddr, timeout time.Duration) error {
	err := unix.Connect(s.fd, sa)
	if err == nil {
		return nil
	}
	if err != unix.EINPROGRESS {
		return err
	}
	if err := s.waitWritable(timeout); err != nil {
		return err
	}
	soerr, err := unix.GetsockoptInt(s.fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		return err
	}
	if soerr != 0 {
		return unix.Errno(soerr)
	}
	return nil
}

func (s *fdSocket) waitWritable(timeout time.Duration) error {
	ms := int(timeout / time.Millisecond)
	if timeout <= 0 {
		ms = int(defaultConnectTimeout / time.Millisecond)
	}
	fds := []unix.PollFd{{Fd: int32(s.fd), Events: unix.POLLOUT}}
	n, err := unix.Poll(fds, ms)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConnectTimeout
	}
	return nil
}

// blockUntilWritable waits, with no timeout, for the socket to become
// writable again, used between SendBlocks partial-write retries instead of
// busy-spinning on EAGAIN.
func (s *fdSocket) blockUntilWritable() error {
	fds := []unix.PollFd{{Fd: int32(s.fd), Events: unix.POLLOUT}}
	for {
		_, err := unix.Poll(fds, -1)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return err
		}
		return nil
	}
}

func (s *fdSocket) send(b []byte, more bool) (int, error) {
	flags := msgNoSignal
	if more {
		flags |= msgMore
	}
	n, err := unix.SendmsgN(s.fd, b, nil, nil, flags)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}

func (s *fdSocket) setSocketOptions(ka keepAliveParams) error {
	if err := unix.SetsockoptInt(s.fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1); err != nil {
		// AF_UNIX sockets do not support TCP_NODELAY; not fatal.
		_ = err
	}
	if ka.count <= 0 {
		return unix.SetsockoptInt(s.fd, unix.SOL_SOCKET, unix.SO_KEEPALIVE, 0)
	}
	if err := unix.SetsockoptInt(s.fd, unix.SOL_SOCKET, unix.SO_KEEPALIVE, 1); err != nil {
		return err
	}
	return setKeepAliveParams(s.fd, ka)
}

func (s *fdSocket) peerHost() (string, int, error) {
	sa, err := unix.Getpeername(s.fd)
	if err != nil {
		return "", 0, err
	}
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return fmt.Sprintf("%d.%d.%d.%d", a.Addr[0], a.Addr[1], a.Addr[2], a.Addr[3]), a.Port, nil
	case *unix.SockaddrInet6:
		return fmt.Sprintf("%x", a.Addr), a.Port, nil
	default:
		return "", 0, fmt.Errorf("reactor: %w: unsupported peer address family", ErrUnsupportedAddress)
	}
}

func (s *fdSocket) close() error {
	return unix.Close(s.fd)
}

func defaultKeepAliveParams() keepAliveParams {
	return keepAliveParams{idle: 12 * time.Second, interval: 3 * time.Second, count: 2}
}

// Connect dials host:port over TCP and returns a connected Socket. Must
// not be called from the reactor goroutine inside a callback: the
// underlying connect blocks (via poll) until writable or timeout.
func Connect(rx *Reactor, host string, port int, opts ...SocketOption) (*Socket, error) {
	ips, err := resolveHost(host)
	if err != nil {
		return nil, err
	}
	domain := unix.AF_INET
	if ips.To4() == nil {
		domain = unix.AF_INET6
	}
	fd, err := unix.Socket(domain, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, err
	}
	raw, err := newFDSocket(fd)
	if err != nil {
		_ = unix.Close(fd)
		return nil, err
	}
	cfg := resolveSocketOptions(opts)
	if err := raw.connectTCP(host, port, cfg.connectTimeout); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}
	return newSocket(rx, raw, cfg)
}

// ConnectUnix dials an AF_UNIX endpoint (filesystem path or Linux
// abstract-namespace name) and returns a connected Socket.
func ConnectUnix(rx *Reactor, addr UnixAddr, opts ...SocketOption) (*Socket, error) {
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, err
	}
	raw, err := newFDSocket(fd)
	if err != nil {
		_ = unix.Close(fd)
		return nil, err
	}
	cfg := resolveSocketOptions(opts)
	if err := raw.connectUnix(addr, cfg.connectTimeout); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}
	return newSocket(rx, raw, cfg)
}

// wrapAcceptedFD builds a Socket around an already-connected fd handed
// back by accept().
func wrapAcceptedFD(rx *Reactor, fd int, cfg *socketOptions) (*Socket, error) {
	raw, err := newFDSocket(fd)
	if err != nil {
		_ = unix.Close(fd)
		return nil, err
	}
	return newSocket(rx, raw, cfg)
}
