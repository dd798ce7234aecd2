package reactor

import (
	"fmt"
	"sync"
)

// SourceID is an opaque token identifying a registered readiness source
// (socket, timer, notifier, listener). It replaces raw-pointer-as-completion-key
// designs: on epoll/kqueue backends it wraps the underlying file descriptor
// (a kqueue timer, which has no descriptor, takes a counter value above the
// 32-bit descriptor range), on the IOCP backend it is an allocator-assigned counter unrelated to any
// pointer or handle value, so the token stays stable and comparable however
// the backend represents the source internally.
type SourceID uint64

// ReadHandler is invoked when a source becomes readable (epoll/kqueue) or
// when a read completion is delivered (IOCP). The return value hints
// whether more work is immediately available: true re-invokes the handler
// before the next wait, false returns control to the poller. Handlers must
// not block and must not call Reactor.Run recursively.
type ReadHandler func(id SourceID) (more bool)

// WriteHandler is the write-readiness/write-completion analogue of
// ReadHandler.
type WriteHandler func(id SourceID) (more bool)

// kernelBackend is the per-platform readiness/completion multiplexer a
// Reactor drives. epoll and kqueue backends implement a readiness queue;
// the IOCP backend implements a completion queue. Reactor hides the
// distinction behind this one interface.
type kernelBackend interface {
	// registerRead arms interest in readability for id.
	registerRead(id SourceID) error
	// registerWrite arms interest in writability for id.
	registerWrite(id SourceID) error
	// unregisterRead clears read interest for id.
	unregisterRead(id SourceID) error
	// unregisterWrite clears write interest for id.
	unregisterWrite(id SourceID) error
	// wait blocks until at least one event is ready or the backend is woken,
	// dispatching each ready source to the supplied callbacks.
	wait(dispatch dispatchFunc) error
	// wake causes a goroutine currently blocked in wait to return, even
	// with no source registered. Used by Reactor.Stop so Run can observe
	// stopCh without waiting for unrelated readiness.
	wake() error
	// close releases kernel resources held by the backend (epoll fd,
	// kqueue fd, IOCP handle).
	close() error
}

// dispatchFunc is called by a kernelBackend for each ready source during
// wait. kind distinguishes a readable/read-completion event from a
// writable/write-completion event.
type dispatchFunc func(id SourceID, kind eventKind)

type eventKind uint8

const (
	eventRead eventKind = iota
	eventWrite
	eventError
)

// Reactor is the single-threaded event loop underlying every primitive in
// this package. Exactly one goroutine may call Run at a time; registration
// and Stop are safe to call from any goroutine.
type Reactor struct {
	backend kernelBackend
	logger  *Logger

	mu       sync.Mutex
	readers  map[SourceID]ReadHandler
	writers  map[SourceID]WriteHandler
	closed   bool
	stopping bool

	runOnce sync.Once
	stopCh  chan struct{}
}

// New constructs a Reactor bound to the platform-native poller: epoll on
// Linux, kqueue on Darwin, an I/O completion port on Windows.
func New(opts ...ReactorOption) (*Reactor, error) {
	cfg := resolveReactorOptions(opts)
	backend, err := newKernelBackend()
	if err != nil {
		return nil, fmt.Errorf("reactor: creating platform backend: %w", err)
	}
	rx := &Reactor{
		backend: backend,
		logger:  cfg.logger,
		readers: make(map[SourceID]ReadHandler),
		writers: make(map[SourceID]WriteHandler),
		stopCh:  make(chan struct{}),
	}
	return rx, nil
}

// RegisterRead arms id for readability and installs handler as the
// callback invoked on each readable event (or read completion, on the
// IOCP backend). Replacing an existing registration for id is permitted.
func (rx *Reactor) RegisterRead(id SourceID, handler ReadHandler) error {
	if handler == nil {
		return ErrNoCallback
	}
	rx.mu.Lock()
	if rx.closed {
		rx.mu.Unlock()
		return ErrClosed
	}
	_, existed := rx.readers[id]
	rx.readers[id] = handler
	rx.mu.Unlock()
	if existed {
		return nil
	}
	if err := rx.backend.registerRead(id); err != nil {
		rx.mu.Lock()
		delete(rx.readers, id)
		rx.mu.Unlock()
		return err
	}
	return nil
}

// RegisterWrite is the write-interest analogue of RegisterRead.
func (rx *Reactor) RegisterWrite(id SourceID, handler WriteHandler) error {
	if handler == nil {
		return ErrNoCallback
	}
	rx.mu.Lock()
	if rx.closed {
		rx.mu.Unlock()
		return ErrClosed
	}
	_, existed := rx.writers[id]
	rx.writers[id] = handler
	rx.mu.Unlock()
	if existed {
		return nil
	}
	if err := rx.backend.registerWrite(id); err != nil {
		rx.mu.Lock()
		delete(rx.writers, id)
		rx.mu.Unlock()
		return err
	}
	return nil
}

// bindReadHandler installs handler for id without arming backend interest,
// for sources (timers on kqueue) whose readiness is armed through a
// mechanism other than the epoll/kqueue read-interest call.
func (rx *Reactor) bindReadHandler(id SourceID, handler ReadHandler) error {
	rx.mu.Lock()
	if rx.closed {
		rx.mu.Unlock()
		return ErrClosed
	}
	rx.readers[id] = handler
	rx.mu.Unlock()
	return nil
}

// UnregisterRead clears read interest and removes the handler for id.
func (rx *Reactor) UnregisterRead(id SourceID) error {
	rx.mu.Lock()
	if _, ok := rx.readers[id]; !ok {
		rx.mu.Unlock()
		return ErrSourceNotRegistered
	}
	delete(rx.readers, id)
	closed := rx.closed
	rx.mu.Unlock()
	if closed {
		return nil
	}
	return rx.backend.unregisterRead(id)
}

// UnregisterWrite clears write interest and removes the handler for id.
func (rx *Reactor) UnregisterWrite(id SourceID) error {
	rx.mu.Lock()
	if _, ok := rx.writers[id]; !ok {
		rx.mu.Unlock()
		return ErrSourceNotRegistered
	}
	delete(rx.writers, id)
	closed := rx.closed
	rx.mu.Unlock()
	if closed {
		return nil
	}
	return rx.backend.unregisterWrite(id)
}

// Run drives the event loop on the calling goroutine until Stop or Close
// is called. It returns nil after a clean Stop, or a non-nil error if the
// platform backend's wait call fails terminally.
func (rx *Reactor) Run() error {
	for {
		select {
		case <-rx.stopCh:
			return nil
		default:
		}
		if err := rx.backend.wait(rx.dispatch); err != nil {
			rx.mu.Lock()
			closed := rx.closed
			rx.mu.Unlock()
			if closed {
				return nil
			}
			logErr(rx.logger, "reactor", "poller wait failed", err)
			return err
		}
	}
}

func (rx *Reactor) dispatch(id SourceID, kind eventKind) {
	for {
		var more bool
		switch kind {
		case eventRead:
			rx.mu.Lock()
			h := rx.readers[id]
			rx.mu.Unlock()
			if h == nil {
				return
			}
			more = h(id)
		case eventWrite:
			rx.mu.Lock()
			h := rx.writers[id]
			rx.mu.Unlock()
			if h == nil {
				return
			}
			more = h(id)
		case eventError:
			rx.mu.Lock()
			h := rx.readers[id]
			w := rx.writers[id]
			rx.mu.Unlock()
			if h != nil {
				more = h(id)
			}
			if w != nil {
				w(id)
			}
			return
		}
		if !more {
			return
		}
	}
}

// Stop requests Run to return at the next opportunity. It is safe to call
// from any goroutine, including a reactor callback. It does not release
// kernel resources; call Close for that. Matches spec.md §4.1's stop()
// contract: a sentinel wakeup is posted so a Run goroutine blocked inside
// the platform backend's wait call (with no other source ready) returns
// instead of blocking forever.
func (rx *Reactor) Stop() {
	rx.runOnce.Do(func() {
		close(rx.stopCh)
		if err := rx.backend.wake(); err != nil {
			logErr(rx.logger, "reactor", "waking poller for stop failed", err)
		}
	})
}

// Close stops the loop (if running) and releases the platform backend's
// kernel resources (epoll/kqueue fd, IOCP handle). After Close, all
// registration methods return ErrClosed.
func (rx *Reactor) Close() error {
	rx.Stop()
	rx.mu.Lock()
	if rx.closed {
		rx.mu.Unlock()
		return nil
	}
	rx.closed = true
	rx.mu.Unlock()
	return rx.backend.close()
}
