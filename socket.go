package reactor

import (
	"fmt"
	"time"
)

// InHandler is invoked when a Socket's peer has data available; it should
// call Receive/ReceiveComplete to drain it. OutHandler is invoked when a
// previously blocked send path becomes writable again.
type InHandler func(sock *Socket)
type OutHandler func(sock *Socket)

// rawSocket is the platform-specific half of Socket: everything that
// touches an actual fd/HANDLE. Grounded on
// original_source/lib/communication/linux/socketnonblocking.cpp's public
// surface (connect/receive/sendBlocks/disconnect/checkSockAddr).
type rawSocket interface {
	vectoredReader
	sourceID() SourceID
	connectTCP(host string, port int, timeout time.Duration) error
	connectUnix(addr UnixAddr, timeout time.Duration) error
	send(b []byte, more bool) (int, error)
	// blockUntilWritable blocks the calling goroutine, with no timeout,
	// until the socket is writable again. Used by SendBlocks to wait out
	// backpressure between partial-write retries instead of busy-spinning.
	blockUntilWritable() error
	setSocketOptions(ka keepAliveParams) error
	peerHost() (string, int, error)
	close() error
}

// Socket is a non-blocking stream-socket connection (TCP or AF_UNIX),
// spec.md §4.2. A Socket is obtained either from the AcceptHandler passed
// to Acceptor.StartTCP/StartUnix or from Connect/ConnectUnix; in both cases
// it is already connected.
type Socket struct {
	rx     *Reactor
	raw    rawSocket
	reader *BufferedReader
	opts   *socketOptions

	inHandler  InHandler
	outHandler OutHandler
}

// ID returns the opaque SourceID this Socket is registered under.
func (s *Socket) ID() SourceID { return s.raw.sourceID() }

// SetInCallback installs the handler invoked when data is available to
// read, arming read interest on the reactor. Replacing an existing
// callback is permitted. On Windows no read completion is ever posted for a
// socket, so the handler is not invoked there.
func (s *Socket) SetInCallback(h InHandler) error {
	if h == nil {
		return ErrNoCallback
	}
	s.inHandler = h
	return s.rx.RegisterRead(s.raw.sourceID(), func(SourceID) bool {
		s.inHandler(s)
		return false
	})
}

// ClearInCallback disarms read interest.
func (s *Socket) ClearInCallback() error {
	s.inHandler = nil
	return s.rx.UnregisterRead(s.raw.sourceID())
}

// SetOutCallback installs the handler invoked when the socket becomes
// writable, for resuming a send blocked by a full socket buffer.
func (s *Socket) SetOutCallback(h OutHandler) error {
	if h == nil {
		return ErrNoCallback
	}
	s.outHandler = h
	return s.rx.RegisterWrite(s.raw.sourceID(), func(SourceID) bool {
		s.outHandler(s)
		return false
	})
}

// ClearOutCallback disarms write interest.
func (s *Socket) ClearOutCallback() error {
	s.outHandler = nil
	return s.rx.UnregisterWrite(s.raw.sourceID())
}

// Receive performs one non-blocking, buffer-amortized read into dst. It
// returns (0, nil) if no data is currently available. An orderly peer close
// also returns (0, nil), so the two cases are not distinguished; other recv
// failures are returned as errors.
func (s *Socket) Receive(dst []byte) (int, error) {
	return s.reader.Recv(dst)
}

// ReceiveComplete blocks the calling goroutine (via a plain poll loop, not
// the reactor) until exactly len(dst) bytes have been read or timeout
// elapses. It must never be called from a reactor callback on the reactor
// goroutine: it blocks that goroutine, so no other source is dispatched
// until it returns. Grounded on
// socketnonblocking.cpp's receiveComplete().
func (s *Socket) ReceiveComplete(dst []byte, timeout time.Duration) (int, error) {
	deadline := time.Now().Add(timeout)
	total := 0
	for total < len(dst) {
		n, err := s.reader.Recv(dst[total:])
		if err != nil {
			return total, err
		}
		total += n
		if n == 0 {
			if timeout > 0 && time.Now().After(deadline) {
				return total, ErrReceiveTimeout
			}
			time.Sleep(time.Millisecond)
		}
	}
	return total, nil
}

// SendBlocks sends each block in order, retrying a partial write by
// trimming the first partially-drained block and continuing, exactly as
// socketnonblocking.cpp's sendBlocks() walks its block list. Every block
// but the last is sent with the platform corking hint (MSG_MORE on Linux; a
// no-op on Darwin and Windows), and the last block is sent with it only when
// more is true. If the blocks hold no bytes at all, ErrEmptyBuffer is
// returned. A send that would block
// (EAGAIN/EWOULDBLOCK, reported as n==0, err==nil by the platform send)
// blocks on writability before retrying, per spec.md §4.5.4 step 3, rather
// than spinning the caller's goroutine.
func (s *Socket) SendBlocks(blocks [][]byte, more bool) (int, error) {
	size := 0
	for _, b := range blocks {
		size += len(b)
	}
	if size == 0 {
		return 0, ErrEmptyBuffer
	}
	total := 0
	for i, b := range blocks {
		remaining := b
		last := i == len(blocks)-1
		for len(remaining) > 0 {
			n, err := s.raw.send(remaining, more || !last)
			if err != nil {
				return total, err
			}
			if n == 0 {
				if err := s.raw.blockUntilWritable(); err != nil {
					return total, err
				}
				continue
			}
			total += n
			remaining = remaining[n:]
		}
	}
	return total, nil
}

// SendBlock sends a single block, retrying partial writes.
func (s *Socket) SendBlock(b []byte) (int, error) {
	return s.SendBlocks([][]byte{b}, false)
}

// Send is a thin alias for SendBlock, matching
// socketnonblocking.cpp's send() wrapper over sendBlock().
func (s *Socket) Send(b []byte) (int, error) {
	return s.SendBlock(b)
}

// PeerMatches reports whether the connected peer's address matches host
// and port numerically, without performing name resolution or subnet
// arithmetic (both explicitly out of scope). Grounded on
// socketnonblocking.cpp's checkSockAddr().
func (s *Socket) PeerMatches(host string, port int) bool {
	h, p, err := s.raw.peerHost()
	if err != nil {
		return false
	}
	return h == host && p == port
}

// Disconnect closes the underlying socket and unregisters it from the
// reactor. After Disconnect, further Socket method calls return errors.
func (s *Socket) Disconnect() error {
	if s.inHandler != nil {
		_ = s.rx.UnregisterRead(s.raw.sourceID())
	}
	if s.outHandler != nil {
		_ = s.rx.UnregisterWrite(s.raw.sourceID())
	}
	return s.raw.close()
}

func newSocket(rx *Reactor, raw rawSocket, opts *socketOptions) (*Socket, error) {
	if err := raw.setSocketOptions(opts.keepAlive); err != nil {
		return nil, fmt.Errorf("reactor: applying socket options: %w", err)
	}
	return &Socket{
		rx:     rx,
		raw:    raw,
		reader: NewBufferedReader(raw, opts.bufferSize),
		opts:   opts,
	}, nil
}
