package reactor

import "fmt"

// AcceptHandler is invoked once per accepted connection, with a Socket
// already wrapped around the new connection. Grounded on
// original_source/lib/communication/linux/tcpserver.cpp's acceptCb.
type AcceptHandler func(sock *Socket)

// listenRaw is the platform-specific half of Acceptor.
type listenRaw interface {
	sourceID() SourceID
	listenTCP(port, backlog int) error
	listenUnix(addr UnixAddr, backlog int) error
	// acceptOne accepts one pending connection. It returns (nil, nil) when
	// no connection is currently pending (EAGAIN/EWOULDBLOCK), matching
	// tcpserver.cpp's process() accept-until-EAGAIN loop.
	acceptOne() (rawSocket, error)
	stop() error
}

// Acceptor listens for and accepts stream connections, spec.md §4.6.
// Exactly one of StartTCP/StartUnix may be called per Acceptor.
type Acceptor struct {
	rx      *Reactor
	raw     listenRaw
	opts    *socketOptions
	handler AcceptHandler
}

// NewAcceptor constructs an unbound Acceptor; call StartTCP or StartUnix to
// begin listening.
func NewAcceptor(rx *Reactor, opts ...SocketOption) (*Acceptor, error) {
	raw, err := newListenRaw(rx)
	if err != nil {
		return nil, err
	}
	return &Acceptor{rx: rx, raw: raw, opts: resolveSocketOptions(opts)}, nil
}

func (a *Acceptor) start(handler AcceptHandler) error {
	if handler == nil {
		return ErrNoCallback
	}
	a.handler = handler
	return a.rx.RegisterRead(a.raw.sourceID(), func(SourceID) bool {
		for {
			raw, err := a.raw.acceptOne()
			if err != nil {
				logErr(a.opts.logger, "acceptor", "accept failed", err)
				return false
			}
			if raw == nil {
				return false
			}
			sock, err := newSocket(a.rx, raw, a.opts)
			if err != nil {
				logErr(a.opts.logger, "acceptor", "wrapping accepted socket failed", err)
				_ = raw.close()
				continue
			}
			a.handler(sock)
		}
	})
}

// StartTCP binds an IPv6 wildcard listener (dual-stack) on port with the
// given backlog and begins accepting. Grounded on tcpserver.cpp's
// start(port, backlog, acceptCb): SO_REUSEADDR, in6addr_any wildcard bind.
func (a *Acceptor) StartTCP(port, backlog int, handler AcceptHandler) error {
	if err := a.raw.listenTCP(port, backlog); err != nil {
		return fmt.Errorf("reactor: listening on TCP port %d: %w", port, err)
	}
	return a.start(handler)
}

// StartUnix binds an AF_UNIX listener (filesystem path or Linux
// abstract-namespace name) with the given backlog and begins accepting.
// Grounded on tcpserver.cpp's start(path, abstract, backlog, acceptCb):
// unlink-before-bind for a non-abstract path, mode 0666 afterward.
func (a *Acceptor) StartUnix(addr UnixAddr, backlog int, handler AcceptHandler) error {
	if err := a.raw.listenUnix(addr, backlog); err != nil {
		return fmt.Errorf("reactor: listening on unix socket %s: %w", addr, err)
	}
	return a.start(handler)
}

// Stop stops accepting and releases the listening socket (unlinking a
// non-abstract AF_UNIX path, matching tcpserver.cpp's stop()).
func (a *Acceptor) Stop() error {
	_ = a.rx.UnregisterRead(a.raw.sourceID())
	if err := a.raw.stop(); err != nil {
		logErr(a.opts.logger, "acceptor", "stop failed", err)
		return err
	}
	return nil
}
