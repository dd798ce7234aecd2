// Package reactor is a cross-platform foundation library for writing
// non-blocking network services.
//
// Its core is a reactor-style event loop ([Reactor]) coupled with four
// primitives built on top of it: a stream-socket abstraction ([Socket], TCP
// and AF_UNIX), a listening acceptor ([Acceptor]), a cross-thread wakeup
// notifier ([Notifier]), and a monotonic timer ([Timer]). Every
// kernel-backed source of readiness — sockets, timers, wakeups — is
// registered with one [Reactor] and dispatched through user-supplied
// callbacks, single-threaded, on whichever goroutine calls [Reactor.Run].
//
// # Platform support
//
// Readiness is multiplexed using platform-native mechanisms:
//   - Linux: epoll, edge-triggered
//   - Darwin: kqueue
//   - Windows: I/O completion ports
//
// The epoll/kqueue platforms present a readiness queue: a handler is invoked
// when its source becomes readable or writable, and is expected to drain
// available work itself. Windows presents a completion queue: an overlapped
// operation's completion is delivered to the handler bound to its
// completion key. [Reactor] hides this distinction behind one registration
// and dispatch contract; see [Reactor.RegisterRead] and
// [Reactor.RegisterWrite].
//
// # Usage
//
//	rx, err := reactor.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rx.Close()
//
//	acc, err := reactor.NewAcceptor(rx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := acc.StartTCP(9000, 128, func(sock *reactor.Socket) {
//	    sock.SetInCallback(echo(sock))
//	}); err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := rx.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread safety
//
// [Reactor.Run] is called by exactly one goroutine. [Reactor.Stop],
// [Reactor.RegisterRead], [Reactor.RegisterWrite], [Reactor.UnregisterRead],
// and [Reactor.UnregisterWrite] may be called from any goroutine.
// [Notifier.Notify] is explicitly safe for cross-goroutine use; everything
// else ([Timer], [Socket], [Acceptor], [Notifier.Set]) is only safe from the
// reactor goroutine. Blocking helpers ([Connect], [ConnectUnix],
// [Socket.ReceiveComplete], [Socket.SendBlocks]) must never be called from
// within a reactor callback on the reactor goroutine — they wait on the
// socket directly, and while they block no other source is dispatched.
package reactor
