//go:build linux || darwin

package reactor

import "golang.org/x/sys/unix"

// fdVectoredReader implements vectoredReader over a raw non-blocking file
// descriptor using readv, matching original_source/bufferedreader.cpp's use
// of ::readv across the caller buffer and its internal one.
type fdVectoredReader struct {
	fd int
}

func (r fdVectoredReader) readv(bufs [][]byte) (int, error) {
	n, err := unix.Readv(r.fd, bufs)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK || err == unix.EINTR {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}
