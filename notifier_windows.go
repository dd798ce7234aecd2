//go:build windows

package reactor

import "sync/atomic"

var notifierIDs atomic.Uint64

// NewNotifier creates a Notifier that wakes rx by posting a zero-overlapped
// completion packet to its IOCP, grounded on the teacher's
// wakeup_windows.go PostQueuedCompletionStatus stub, wired to a real
// allocator-assigned SourceID instead of a placeholder token.
func NewNotifier(rx *Reactor) (*Notifier, error) {
	id := SourceID(notifierIDs.Add(1))
	n := &Notifier{rx: rx, id: id}
	if err := rx.RegisterRead(id, func(SourceID) bool {
		n.mu.Lock()
		h := n.handler
		n.mu.Unlock()
		if h != nil {
			h()
		}
		return false
	}); err != nil {
		return nil, err
	}
	return n, nil
}

// Notify wakes the reactor; each call delivers exactly one handler
// invocation, since PostQueuedCompletionStatus queues discrete packets
// rather than coalescing like a self-pipe. Safe to call from any goroutine.
func (n *Notifier) Notify() error {
	return postWake(n.rx.completionPort(), n.id)
}

// Close unregisters the notifier. There is no kernel handle to release on
// this platform; the completion port itself is owned by the Reactor.
func (n *Notifier) Close() error {
	return n.rx.UnregisterRead(n.id)
}
