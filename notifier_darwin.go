//go:build darwin

package reactor

import "fmt"

// NewNotifier creates a Notifier bound to rx, backed by a self-pipe. Must
// be called from the reactor goroutine.
func NewNotifier(rx *Reactor) (*Notifier, error) {
	pipe, err := createWakePipe()
	if err != nil {
		return nil, fmt.Errorf("reactor: creating notifier pipe: %w", err)
	}
	n := &Notifier{rx: rx, id: SourceID(pipe.readFD), auxFD: pipe.writeFD}
	if err := rx.RegisterRead(n.id, func(SourceID) bool {
		count, err := pipe.drain()
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
		_ = pipe.close()
		return nil, err
	}
	return n, nil
}

// Notify wakes the reactor and causes the installed handler to be invoked.
// A self-pipe cannot carry an exact repeat count the way eventfd does;
// concurrent Notify calls made before the reactor drains the pipe coalesce
// into a single handler invocation. Safe to call from any goroutine.
func (n *Notifier) Notify() error {
	return wakePipe{readFD: int(n.id), writeFD: n.auxFD}.signal()
}

// Close unregisters the notifier and releases its pipe fds. Must be called
// from the reactor goroutine.
func (n *Notifier) Close() error {
	_ = n.rx.UnregisterRead(n.id)
	return wakePipe{readFD: int(n.id), writeFD: n.auxFD}.close()
}
