package reactor

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTimerOneShot(t *testing.T) {
	rx, err := New()
	require.NoError(t, err)
	defer rx.Close()

	timer, err := NewTimer(rx)
	require.NoError(t, err)
	defer timer.Close()

	var fires atomic.Int64
	require.NoError(t, timer.Set(func(fired bool) {
		if fired {
			fires.Add(1)
		}
	}, 20*time.Millisecond, false))

	go func() { _ = rx.Run() }()
	defer rx.Stop()

	require.Eventually(t, func() bool { return fires.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, int64(1), fires.Load())
}

func TestTimerCancelReportsWhetherArmed(t *testing.T) {
	rx, err := New()
	require.NoError(t, err)
	defer rx.Close()

	timer, err := NewTimer(rx)
	require.NoError(t, err)
	defer timer.Close()

	require.False(t, timer.Cancel(), "canceling an idle timer should report false")

	require.NoError(t, timer.Set(func(bool) {}, time.Minute, false))
	require.True(t, timer.Cancel(), "canceling an armed timer should report true")
	require.False(t, timer.Cancel(), "canceling again should report false")
}

func TestTimerRejectsZeroPeriod(t *testing.T) {
	rx, err := New()
	require.NoError(t, err)
	defer rx.Close()

	timer, err := NewTimer(rx)
	require.NoError(t, err)
	defer timer.Close()

	require.ErrorIs(t, timer.Set(func(bool) {}, 0, false), ErrInvalidPeriod)
}

func TestTimerRepeating(t *testing.T) {
	rx, err := New()
	require.NoError(t, err)
	defer rx.Close()

	timer, err := NewTimer(rx)
	require.NoError(t, err)
	defer timer.Close()

	var fires atomic.Int64
	require.NoError(t, timer.Set(func(fired bool) {
		if fired {
			fires.Add(1)
		}
	}, 10*time.Millisecond, true))

	go func() { _ = rx.Run() }()
	defer rx.Stop()

	require.Eventually(t, func() bool { return fires.Load() >= 3 }, 2*time.Second, time.Millisecond)
}
