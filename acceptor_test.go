package reactor

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAcceptorUnlinksNonAbstractPathOnStop(t *testing.T) {
	rx, err := New()
	require.NoError(t, err)
	defer rx.Close()

	go func() { _ = rx.Run() }()
	defer rx.Stop()

	acc, err := NewAcceptor(rx)
	require.NoError(t, err)

	path := t.TempDir() + "/reactor-test.sock"
	addr := UnixAddr{Path: path}
	require.NoError(t, acc.StartUnix(addr, 8, func(sock *Socket) {}))

	_, err = os.Stat(path)
	require.NoError(t, err)

	require.NoError(t, acc.Stop())

	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func TestAcceptorStopIsIdempotent(t *testing.T) {
	rx, err := New()
	require.NoError(t, err)
	defer rx.Close()

	go func() { _ = rx.Run() }()
	defer rx.Stop()

	acc, err := NewAcceptor(rx)
	require.NoError(t, err)

	addr := UnixAddr{Path: "reactor-test-stop-idempotent", Abstract: true}
	require.NoError(t, acc.StartUnix(addr, 8, func(sock *Socket) {}))

	require.NoError(t, acc.Stop())
	require.NoError(t, acc.Stop())
}

func TestAcceptorAcceptedSocketDisconnects(t *testing.T) {
	// Accepts one AF_UNIX connection and checks that Disconnect on the
	// accepted Socket succeeds: the ordinary accept-then-disconnect path,
	// kept as a regression guard for releasing accepted fds.
	rx, err := New()
	require.NoError(t, err)
	defer rx.Close()

	go func() { _ = rx.Run() }()
	defer rx.Stop()

	acc, err := NewAcceptor(rx)
	require.NoError(t, err)
	defer acc.Stop()

	addr := UnixAddr{Path: "reactor-test-no-leak", Abstract: true}
	accepted := make(chan *Socket, 1)
	require.NoError(t, acc.StartUnix(addr, 8, func(sock *Socket) {
		accepted <- sock
	}))

	client, err := ConnectUnix(rx, addr)
	require.NoError(t, err)
	defer client.Disconnect()

	select {
	case sock := <-accepted:
		require.NoError(t, sock.Disconnect())
	case <-time.After(2 * time.Second):
		t.Fatal("connection was never accepted")
	}
}
