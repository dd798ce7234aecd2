//go:build windows

package reactor

import (
	"fmt"
	"syscall"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

// soError is SOL_SOCKET's SO_ERROR option, queried after a non-blocking
// connect to retrieve the deferred connect() result, matching
// original_source/lib/communication/windows/socketnonblocking.cpp's
// getsockopt(SOL_SOCKET, SO_ERROR, ...) call. Not exported by
// golang.org/x/sys/windows, so named locally like msgMore/msgNoSignal on
// the Unix side.
const soError = 0x1007

// fionbio is the ioctlsocket opcode that switches a socket to non-blocking
// mode (winsock2.h's FIONBIO).
const fionbio = 0x8004667e

// pollWrNorm is WSAPoll's writability event bit (winsock2.h's POLLWRNORM,
// the Windows analogue of POLLOUT).
const pollWrNorm = 0x0010

type wsaPollFD struct {
	Fd      uintptr
	Events  int16
	REvents int16
}

// setNonblocking switches handle to non-blocking mode via ioctlsocket,
// matching fdSocket's unix.SetNonblock on the Unix side (socket_unix.go).
func setNonblocking(handle windows.Handle) error {
	mode := uint32(1)
	ret, _, e := procIoctlsocket.Call(uintptr(handle), uintptr(fionbio), uintptr(unsafe.Pointer(&mode)))
	if ret != 0 {
		return e
	}
	return nil
}

// waitWritable blocks via WSAPoll until handle becomes writable or timeout
// elapses, matching fdSocket.waitWritable's unix.Poll(POLLOUT) wait on the
// Unix side.
func waitWritable(handle windows.Handle, timeout time.Duration) error {
	ms := int32(timeout / time.Millisecond)
	if timeout <= 0 {
		ms = int32(defaultConnectTimeout / time.Millisecond)
	}
	fds := wsaPollFD{Fd: uintptr(handle), Events: pollWrNorm}
	ret, _, e := procWSAPoll.Call(uintptr(unsafe.Pointer(&fds)), 1, uintptr(ms))
	if int32(ret) < 0 {
		return e
	}
	if ret == 0 {
		return ErrConnectTimeout
	}
	return nil
}

// winSocket is the Windows rawSocket: a SOCKET handle associated with the
// owning Reactor's completion port. Grounded on the teacher's
// poller_windows.go IOCP plumbing and the pack's IOCP example's WSARecv
// usage; simplified relative to fdSocket by using a synchronous (rather
// than overlapped) WSARecv/WSASend for the data path, since the completion
// port here exists to deliver Notifier/Timer/Acceptor wakeups, not to
// pipeline per-byte overlapped I/O. No completion is ever posted for a
// winSocket's SourceID, so handlers installed with SetInCallback or
// SetOutCallback are not invoked on this platform. This
// mirrors the scope the teacher's own poller_windows.go settled for, noted
// in its comments as "simplified."
type winSocket struct {
	handle windows.Handle
	rx     *Reactor
	id     SourceID
}

var winSocketIDs uint64

func newWinSocket(rx *Reactor, handle windows.Handle) (*winSocket, error) {
	if err := setNonblocking(handle); err != nil {
		return nil, err
	}
	winSocketIDs++
	id := SourceID(winSocketIDs)
	if err := rx.AssociateHandle(id, handle); err != nil {
		return nil, err
	}
	return &winSocket{handle: handle, rx: rx, id: id}, nil
}

func (s *winSocket) sourceID() SourceID { return s.id }

func (s *winSocket) readv(bufs [][]byte) (int, error) {
	return socketVectoredReader{handle: s.handle}.readv(bufs)
}

// connectTCP issues a non-blocking connect and, on WSAEWOULDBLOCK, waits up
// to timeout for writability before checking SO_ERROR, matching
// socketnonblocking.cpp's connect() + waitForWritable + getsockopt(SO_ERROR)
// sequence (original_source/lib/communication/windows/socketnonblocking.cpp).
func (s *winSocket) connectTCP(host string, port int, timeout time.Duration) error {
	ip, err := resolveHost(host)
	if err != nil {
		return err
	}
	var sa windows.Sockaddr
	if ip4 := ip.To4(); ip4 != nil {
		var addr [4]byte
		copy(addr[:], ip4)
		sa = &windows.SockaddrInet4{Port: port, Addr: addr}
	} else {
		var addr [16]byte
		copy(addr[:], ip.To16())
		sa = &windows.SockaddrInet6{Port: port, Addr: addr}
	}
	return s.connectRaw(sa, timeout)
}

func (s *winSocket) connectUnix(addr UnixAddr, timeout time.Duration) error {
	return fmt.Errorf("reactor: %w: AF_UNIX is not supported on this Windows build", ErrUnsupportedAddress)
}

func (s *winSocket) connectRaw(sa windows.Sockaddr, timeout time.Duration) error {
	err := windows.Connect(s.handle, sa)
	if err == nil {
		return nil
	}
	errno, ok := err.(syscall.Errno)
	if !ok || errno != windows.WSAEWOULDBLOCK {
		return err
	}
	if err := waitWritable(s.handle, timeout); err != nil {
		return err
	}
	soerr, err := windows.GetsockoptInt(s.handle, windows.SOL_SOCKET, soError)
	if err != nil {
		return err
	}
	if soerr != 0 {
		return syscall.Errno(soerr)
	}
	return nil
}

func (s *winSocket) send(b []byte, more bool) (int, error) {
	wbufs := []wsaBuf{{Len: uint32(len(b)), Buf: &b[0]}}
	var n uint32
	ret, _, e := procWSASend.Call(
		uintptr(s.handle),
		uintptr(unsafe.Pointer(&wbufs[0])),
		1,
		uintptr(unsafe.Pointer(&n)),
		0,
		0,
		0,
	)
	if ret != 0 {
		if errno, ok := e.(windows.Errno); ok && errno == windows.WSAEWOULDBLOCK {
			return 0, nil
		}
		return 0, e
	}
	return int(n), nil
}

// blockUntilWritable waits, with no timeout, for the socket to become
// writable again, used between SendBlocks partial-write retries instead of
// busy-spinning on WSAEWOULDBLOCK.
func (s *winSocket) blockUntilWritable() error {
	fds := wsaPollFD{Fd: uintptr(s.handle), Events: pollWrNorm}
	ret, _, e := procWSAPoll.Call(uintptr(unsafe.Pointer(&fds)), 1, uintptr(int32(-1)))
	if int32(ret) < 0 {
		return e
	}
	return nil
}

func (s *winSocket) setSocketOptions(ka keepAliveParams) error {
	_ = windows.SetsockoptInt(s.handle, windows.IPPROTO_TCP, windows.TCP_NODELAY, 1)
	if ka.count <= 0 {
		return windows.SetsockoptInt(s.handle, windows.SOL_SOCKET, windows.SO_KEEPALIVE, 0)
	}
	return windows.SetsockoptInt(s.handle, windows.SOL_SOCKET, windows.SO_KEEPALIVE, 1)
}

func (s *winSocket) peerHost() (string, int, error) {
	sa, err := windows.Getpeername(s.handle)
	if err != nil {
		return "", 0, err
	}
	switch a := sa.(type) {
	case *windows.SockaddrInet4:
		return fmt.Sprintf("%d.%d.%d.%d", a.Addr[0], a.Addr[1], a.Addr[2], a.Addr[3]), a.Port, nil
	case *windows.SockaddrInet6:
		return fmt.Sprintf("%x", a.Addr), a.Port, nil
	default:
		return "", 0, fmt.Errorf("reactor: %w: unsupported peer address family", ErrUnsupportedAddress)
	}
}

func (s *winSocket) close() error {
	return windows.Closesocket(s.handle)
}

// defaultKeepAliveParams on Windows is idle=1s, interval=1s, count=10.
// setSocketOptions uses only count on this platform (SO_KEEPALIVE on when
// count > 0); idle and interval are not applied to the socket.
func defaultKeepAliveParams() keepAliveParams {
	return keepAliveParams{idle: time.Second, interval: time.Second, count: 10}
}

// Connect dials host:port over TCP and returns a connected Socket.
func Connect(rx *Reactor, host string, port int, opts ...SocketOption) (*Socket, error) {
	ip, err := resolveHost(host)
	if err != nil {
		return nil, err
	}
	af := windows.AF_INET
	if ip.To4() == nil {
		af = windows.AF_INET6
	}
	handle, err := windows.Socket(af, windows.SOCK_STREAM, 0)
	if err != nil {
		return nil, err
	}
	raw, err := newWinSocket(rx, handle)
	if err != nil {
		_ = windows.Closesocket(handle)
		return nil, err
	}
	cfg := resolveSocketOptions(opts)
	if err := raw.connectTCP(host, port, cfg.connectTimeout); err != nil {
		_ = windows.Closesocket(handle)
		return nil, err
	}
	return newSocket(rx, raw, cfg)
}

// ConnectUnix is unsupported on this Windows build; AF_UNIX support on
// Windows requires a Windows-10-era loopback provider outside this
// package's scope (see external.go).
func ConnectUnix(rx *Reactor, addr UnixAddr, opts ...SocketOption) (*Socket, error) {
	return nil, fmt.Errorf("reactor: %w: AF_UNIX is not supported on this Windows build", ErrUnsupportedAddress)
}

// wrapAcceptedHandle builds a Socket around an already-connected handle
// handed back by accept().
func wrapAcceptedHandle(rx *Reactor, handle windows.Handle, cfg *socketOptions) (*Socket, error) {
	raw, err := newWinSocket(rx, handle)
	if err != nil {
		_ = windows.Closesocket(handle)
		return nil, err
	}
	return newSocket(rx, raw, cfg)
}
