package reactor

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNotifierCrossGoroutineWakeup(t *testing.T) {
	rx, err := New()
	require.NoError(t, err)
	defer rx.Close()

	n, err := NewNotifier(rx)
	require.NoError(t, err)

	var count atomic.Int64
	n.Set(func() { count.Add(1) })

	go func() { _ = rx.Run() }()
	defer rx.Stop()

	for i := 0; i < 5; i++ {
		require.NoError(t, n.Notify())
	}

	require.Eventually(t, func() bool {
		return count.Load() >= 1
	}, time.Second, time.Millisecond)
}

func TestNotifierIDStable(t *testing.T) {
	rx, err := New()
	require.NoError(t, err)
	defer rx.Close()

	n, err := NewNotifier(rx)
	require.NoError(t, err)
	defer n.Close()

	id := n.ID()
	require.Equal(t, id, n.ID())
}
