package reactor

import "sync"

// NotifyHandler is invoked on the reactor goroutine once per Notify call
// that the underlying kernel object reports (exact count on Linux via the
// eventfd counter, one invocation per posted completion packet on Windows,
// coalesced to one invocation per drain on Darwin).
// Grounded on original_source/lib/sys/linux/notifier.cpp's process(), which
// reads the eventfd count and invokes the handler that many times.
type NotifyHandler func()

// Notifier is a cross-thread wakeup primitive: Notify is safe to call from
// any goroutine and causes the owning Reactor's Run loop to invoke the
// handler installed with Set, on the reactor goroutine, at the next
// opportunity. It is the primitive used to hand work from a worker
// goroutine back to the single-threaded reactor.
type Notifier struct {
	rx *Reactor
	id SourceID

	// auxFD holds a second platform-specific descriptor a backend may need
	// alongside id (the self-pipe write end on Darwin); unused elsewhere.
	auxFD int

	mu      sync.Mutex
	handler NotifyHandler
}

// Set installs the callback invoked on each notification. Only callable
// from the reactor goroutine, matching the rest of this package's
// registration contract.
func (n *Notifier) Set(h NotifyHandler) {
	n.mu.Lock()
	n.handler = h
	n.mu.Unlock()
}

func (n *Notifier) invoke() (more bool) {
	n.mu.Lock()
	h := n.handler
	n.mu.Unlock()
	if h != nil {
		h()
	}
	return false
}

// ID returns the opaque SourceID this Notifier is registered under.
func (n *Notifier) ID() SourceID { return n.id }
