//go:build linux || darwin

package reactor

import "golang.org/x/sys/unix"

// fdListener is the Linux/Darwin listenRaw, grounded on
// original_source/lib/communication/linux/tcpserver.cpp.
type fdListener struct {
	fd       int
	unixPath string
	abstract bool
}

func newListenRaw(rx *Reactor) (listenRaw, error) {
	return &fdListener{fd: -1}, nil
}

func (l *fdListener) sourceID() SourceID { return SourceID(l.fd) }

// listenTCP binds an IPv6 wildcard (dual-stack) listener, matching
// tcpserver.cpp's use of in6addr_any with IPV6_V6ONLY left at its default
// (off on Linux), so both v4 and v6 clients connect to one socket.
func (l *fdListener) listenTCP(port, backlog int) error {
	fd, err := unix.Socket(unix.AF_INET6, unix.SOCK_STREAM|unix.SOCK_NONBLOCK, 0)
	if err != nil {
		return err
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		_ = unix.Close(fd)
		return err
	}
	sa := &unix.SockaddrInet6{Port: port}
	if err := unix.Bind(fd, sa); err != nil {
		_ = unix.Close(fd)
		return err
	}
	if err := unix.Listen(fd, backlog); err != nil {
		_ = unix.Close(fd)
		return err
	}
	l.fd = fd
	return nil
}

// listenUnix binds an AF_UNIX listener. A non-abstract path is unlinked
// first (stale socket file from a prior run) and chmod'd to 0666
// afterward, matching tcpserver.cpp's start(path, abstract, ...).
func (l *fdListener) listenUnix(addr UnixAddr, backlog int) error {
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK, 0)
	if err != nil {
		return err
	}
	if !addr.Abstract {
		_ = unix.Unlink(addr.Path)
	}
	encoded, err := addr.encode()
	if err != nil {
		_ = unix.Close(fd)
		return err
	}
	if err := unix.Bind(fd, &unix.SockaddrUnix{Name: string(encoded)}); err != nil {
		_ = unix.Close(fd)
		return err
	}
	if !addr.Abstract {
		_ = unix.Chmod(addr.Path, 0666)
	}
	if err := unix.Listen(fd, backlog); err != nil {
		_ = unix.Close(fd)
		return err
	}
	l.fd = fd
	l.unixPath = addr.Path
	l.abstract = addr.Abstract
	return nil
}

func (l *fdListener) acceptOne() (rawSocket, error) {
	fd, _, err := unix.Accept(l.fd)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return nil, nil
		}
		if err == unix.EINTR || err == unix.ECONNABORTED {
			return nil, nil
		}
		return nil, err
	}
	return newFDSocket(fd)
}

func (l *fdListener) stop() error {
	if l.fd < 0 {
		return nil
	}
	err := unix.Close(l.fd)
	if l.unixPath != "" && !l.abstract {
		_ = unix.Unlink(l.unixPath)
	}
	l.fd = -1
	return err
}
