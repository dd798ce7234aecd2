package reactor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeVectoredReader serves bytes from a queue of chunks, one chunk per
// readv call, mimicking a single nonblocking recv's worth of data spread
// across the caller's buffer list.
type fakeVectoredReader struct {
	chunks [][]byte
}

func (f *fakeVectoredReader) readv(bufs [][]byte) (int, error) {
	if len(f.chunks) == 0 {
		return 0, nil
	}
	chunk := f.chunks[0]
	f.chunks = f.chunks[1:]

	n := 0
	remaining := chunk
	for _, b := range bufs {
		if len(remaining) == 0 {
			break
		}
		c := copy(b, remaining)
		remaining = remaining[c:]
		n += c
	}
	return n, nil
}

func TestBufferedReaderFitsInDst(t *testing.T) {
	raw := &fakeVectoredReader{chunks: [][]byte{[]byte("hello")}}
	r := NewBufferedReader(raw, 64)

	dst := make([]byte, 16)
	n, err := r.Recv(dst)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "hello", string(dst[:n]))
	require.Equal(t, 0, r.Buffered())
}

func TestBufferedReaderSpillsIntoInternalBuffer(t *testing.T) {
	payload := make([]byte, 10)
	for i := range payload {
		payload[i] = byte('a' + i)
	}
	raw := &fakeVectoredReader{chunks: [][]byte{payload}}
	r := NewBufferedReader(raw, 64)

	dst := make([]byte, 4)
	n, err := r.Recv(dst)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, "abcd", string(dst[:n]))
	require.Equal(t, 6, r.Buffered())

	n, err = r.Recv(dst)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, "efgh", string(dst[:n]))
	require.Equal(t, 2, r.Buffered())

	n, err = r.Recv(dst)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, "ij", string(dst[:n]))
	require.Equal(t, 0, r.Buffered())
}

func TestBufferedReaderZeroLengthDst(t *testing.T) {
	raw := &fakeVectoredReader{}
	r := NewBufferedReader(raw, 64)

	n, err := r.Recv(nil)
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestBufferedReaderNoDataReturnsZero(t *testing.T) {
	raw := &fakeVectoredReader{}
	r := NewBufferedReader(raw, 64)

	dst := make([]byte, 8)
	n, err := r.Recv(dst)
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestBufferedReaderDrainsInternalBufferBeforeReadv(t *testing.T) {
	raw := &fakeVectoredReader{chunks: [][]byte{[]byte("xyz")}}
	r := NewBufferedReader(raw, 64)

	small := make([]byte, 1)
	n, err := r.Recv(small)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, 2, r.Buffered())

	// No more chunks queued; a further Recv must still be served from the
	// internal buffer without calling readv again.
	rest := make([]byte, 8)
	n, err = r.Recv(rest)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, "yz", string(rest[:n]))
	require.Equal(t, 0, r.Buffered())
}
