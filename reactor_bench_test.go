package reactor

import (
	"sync/atomic"
	"testing"
)

// BenchmarkNotifierDispatch measures reactor dispatch overhead by firing N
// notifiers M times each and waiting for every firing to be observed,
// reusing the N-notifiers/M-firings measurement shape of
// original_source's eventloopperformance.cpp tool.
func BenchmarkNotifierDispatch(b *testing.B) {
	const (
		numNotifiers = 8
		firings      = 64
	)

	rx, err := New()
	if err != nil {
		b.Fatal(err)
	}
	defer rx.Close()

	notifiers := make([]*Notifier, numNotifiers)
	var total atomic.Int64
	for i := range notifiers {
		n, err := NewNotifier(rx)
		if err != nil {
			b.Fatal(err)
		}
		n.Set(func() { total.Add(1) })
		notifiers[i] = n
	}
	defer func() {
		for _, n := range notifiers {
			_ = n.Close()
		}
	}()

	go func() { _ = rx.Run() }()
	defer rx.Stop()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		want := total.Load() + numNotifiers*firings
		for f := 0; f < firings; f++ {
			for _, n := range notifiers {
				_ = n.Notify()
			}
		}
		for total.Load() < want {
			// busy-wait for the reactor goroutine to drain every firing
		}
	}
}
