package reactor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestReactorRunStop(t *testing.T) {
	rx, err := New()
	require.NoError(t, err)
	defer rx.Close()

	done := make(chan error, 1)
	go func() { done <- rx.Run() }()

	time.Sleep(10 * time.Millisecond)
	rx.Stop()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

func TestReactorRegisterReadRejectsNilHandler(t *testing.T) {
	rx, err := New()
	require.NoError(t, err)
	defer rx.Close()

	require.ErrorIs(t, rx.RegisterRead(0, nil), ErrNoCallback)
}

func TestReactorUnregisterUnknownSource(t *testing.T) {
	rx, err := New()
	require.NoError(t, err)
	defer rx.Close()

	require.ErrorIs(t, rx.UnregisterRead(12345), ErrSourceNotRegistered)
	require.ErrorIs(t, rx.UnregisterWrite(12345), ErrSourceNotRegistered)
}

func TestReactorOperationsAfterCloseFail(t *testing.T) {
	rx, err := New()
	require.NoError(t, err)
	require.NoError(t, rx.Close())

	err = rx.RegisterRead(0, func(SourceID) bool { return false })
	require.ErrorIs(t, err, ErrClosed)

	// A second Close must be idempotent.
	require.NoError(t, rx.Close())
}
