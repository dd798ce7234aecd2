//go:build windows

package reactor

import (
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	ws2_32          = windows.NewLazySystemDLL("ws2_32.dll")
	procWSARecv     = ws2_32.NewProc("WSARecv")
	procWSASend     = ws2_32.NewProc("WSASend")
	procWSAPoll     = ws2_32.NewProc("WSAPoll")
	procIoctlsocket = ws2_32.NewProc("ioctlsocket")
)

type wsaBuf struct {
	Len uint32
	Buf *byte
}

// socketVectoredReader implements vectoredReader over a raw SOCKET handle
// using a synchronous (non-overlapped) WSARecv scatter call on a
// non-blocking socket, grounded on the
// pack's IOCP example's wsaRecv wrapper.
type socketVectoredReader struct {
	handle windows.Handle
}

func (r socketVectoredReader) readv(bufs [][]byte) (int, error) {
	wbufs := make([]wsaBuf, len(bufs))
	for i, b := range bufs {
		if len(b) == 0 {
			continue
		}
		wbufs[i] = wsaBuf{Len: uint32(len(b)), Buf: &b[0]}
	}
	var n, flags uint32
	ret, _, e := procWSARecv.Call(
		uintptr(r.handle),
		uintptr(unsafe.Pointer(&wbufs[0])),
		uintptr(len(wbufs)),
		uintptr(unsafe.Pointer(&n)),
		uintptr(unsafe.Pointer(&flags)),
		0,
		0,
	)
	if ret != 0 {
		if errno, ok := e.(syscall.Errno); ok && (errno == windows.WSAEWOULDBLOCK || errno == syscall.EINTR) {
			return 0, nil
		}
		return 0, e
	}
	return int(n), nil
}
