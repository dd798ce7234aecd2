//go:build linux

package reactor

import "fmt"

// NewNotifier creates a Notifier bound to rx, backed by a non-blocking
// eventfd. Must be called from the reactor goroutine.
func NewNotifier(rx *Reactor) (*Notifier, error) {
	fd, err := createWake()
	if err != nil {
		return nil, fmt.Errorf("reactor: creating notifier eventfd: %w", err)
	}
	n := &Notifier{rx: rx, id: SourceID(fd)}
	if err := rx.RegisterRead(n.id, func(SourceID) bool {
		count, err := drainWake(fd)
		if err != nil {
			return false
		}
		n.mu.Lock()
		h := n.handler
		n.mu.Unlock()
		if h == nil {
			return false
		}
		for i := uint64(0); i < count; i++ {
			h()
		}
		return false
	}); err != nil {
		_ = closeWake(fd)
		return nil, err
	}
	return n, nil
}

// Notify wakes the reactor and causes the installed handler to be invoked
// once per call; concurrent Notify calls made before the reactor drains
// them are coalesced into the eventfd counter and delivered as that many
// handler invocations, matching original_source's exact-count semantics.
// Safe to call from any goroutine.
func (n *Notifier) Notify() error {
	return signalWake(int(n.id))
}

// Close unregisters the notifier and releases its eventfd. Must be called
// from the reactor goroutine.
func (n *Notifier) Close() error {
	_ = n.rx.UnregisterRead(n.id)
	return closeWake(int(n.id))
}
