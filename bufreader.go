package reactor

// BufferedReader amortizes recv syscalls for a stream socket using a
// two-segment vectored read: the caller's destination buffer and an
// internal overflow buffer are presented to a single scatter-read call, so
// a socket that has more data queued than the caller asked for is drained
// in one syscall instead of leaving the remainder for a second call to
// pick up later. Grounded on
// original_source/lib/communication/linux/bufferedreader.cpp.
type BufferedReader struct {
	raw vectoredReader

	buf         []byte
	fillLevel   int // valid bytes currently in buf
	alreadyRead int // bytes of buf already returned to a caller
}

// vectoredReader performs one scatter-read across the supplied buffers,
// filling them in order, and reports the total bytes read. Implemented by
// unix.Readv on Linux/Darwin and by WSARecv's scatter-gather buffer list on
// Windows.
type vectoredReader interface {
	readv(bufs [][]byte) (int, error)
}

// NewBufferedReader wraps raw with a BufferedReader using the given segment
// size for its internal overflow buffer.
func NewBufferedReader(raw vectoredReader, bufferSize int) *BufferedReader {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &BufferedReader{raw: raw, buf: make([]byte, bufferSize)}
}

// Recv copies buffered bytes into dst if any are pending, otherwise issues
// one vectored read covering both dst and the internal buffer so a large
// pending read is drained in a single syscall. It returns 0, nil if dst has
// zero length. Whatever raw's readv returns for an empty read is returned
// as-is; the fd- and SOCKET-backed readers report both "no data available"
// and an orderly peer close as (0, nil).
func (r *BufferedReader) Recv(dst []byte) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	if r.fillLevel > r.alreadyRead {
		n := copy(dst, r.buf[r.alreadyRead:r.fillLevel])
		r.alreadyRead += n
		if r.alreadyRead == r.fillLevel {
			r.alreadyRead = 0
			r.fillLevel = 0
		}
		return n, nil
	}

	n, err := r.raw.readv([][]byte{dst, r.buf})
	if n <= 0 {
		return n, err
	}
	if n <= len(dst) {
		return n, err
	}
	r.fillLevel = n - len(dst)
	r.alreadyRead = 0
	return len(dst), err
}

// Buffered reports how many bytes are currently held in the internal
// overflow buffer, available without another syscall.
func (r *BufferedReader) Buffered() int {
	return r.fillLevel - r.alreadyRead
}
