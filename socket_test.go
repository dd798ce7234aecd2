package reactor

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSocketTCPEcho(t *testing.T) {
	rx, err := New()
	require.NoError(t, err)
	defer rx.Close()

	go func() { _ = rx.Run() }()
	defer rx.Stop()

	acc, err := NewAcceptor(rx)
	require.NoError(t, err)
	defer acc.Stop()

	const port = 18765
	require.NoError(t, acc.StartTCP(port, 16, func(sock *Socket) {
		require.NoError(t, sock.SetInCallback(func(sock *Socket) {
			buf := make([]byte, 256)
			n, err := sock.Receive(buf)
			if err != nil || n == 0 {
				return
			}
			_, _ = sock.Send(buf[:n])
		}))
	}))

	client, err := Connect(rx, "127.0.0.1", port)
	require.NoError(t, err)
	defer client.Disconnect()

	var reply atomic.Value
	require.NoError(t, client.SetInCallback(func(sock *Socket) {
		buf := make([]byte, 256)
		n, err := sock.Receive(buf)
		if err != nil || n == 0 {
			return
		}
		reply.Store(string(buf[:n]))
	}))

	_, err = client.Send([]byte("ping"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		v, ok := reply.Load().(string)
		return ok && v == "ping"
	}, 2*time.Second, 5*time.Millisecond)
}

func TestSocketUnixEchoAbstract(t *testing.T) {
	rx, err := New()
	require.NoError(t, err)
	defer rx.Close()

	go func() { _ = rx.Run() }()
	defer rx.Stop()

	acc, err := NewAcceptor(rx)
	require.NoError(t, err)
	defer acc.Stop()

	addr := UnixAddr{Path: "reactor-test-socket-echo", Abstract: true}
	require.NoError(t, acc.StartUnix(addr, 16, func(sock *Socket) {
		require.NoError(t, sock.SetInCallback(func(sock *Socket) {
			buf := make([]byte, 256)
			n, err := sock.Receive(buf)
			if err != nil || n == 0 {
				return
			}
			_, _ = sock.Send(buf[:n])
		}))
	}))

	client, err := ConnectUnix(rx, addr)
	require.NoError(t, err)
	defer client.Disconnect()

	var reply atomic.Value
	require.NoError(t, client.SetInCallback(func(sock *Socket) {
		buf := make([]byte, 256)
		n, err := sock.Receive(buf)
		if err != nil || n == 0 {
			return
		}
		reply.Store(string(buf[:n]))
	}))

	_, err = client.Send([]byte("pong"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		v, ok := reply.Load().(string)
		return ok && v == "pong"
	}, 2*time.Second, 5*time.Millisecond)
}

func TestSocketSendBlocksGatherWrite(t *testing.T) {
	rx, err := New()
	require.NoError(t, err)
	defer rx.Close()

	go func() { _ = rx.Run() }()
	defer rx.Stop()

	acc, err := NewAcceptor(rx)
	require.NoError(t, err)
	defer acc.Stop()

	var received atomic.Value
	addr := UnixAddr{Path: "reactor-test-gather-write", Abstract: true}
	require.NoError(t, acc.StartUnix(addr, 16, func(sock *Socket) {
		require.NoError(t, sock.SetInCallback(func(sock *Socket) {
			buf := make([]byte, 256)
			n, err := sock.Receive(buf)
			if err != nil || n == 0 {
				return
			}
			received.Store(string(buf[:n]))
		}))
	}))

	client, err := ConnectUnix(rx, addr)
	require.NoError(t, err)
	defer client.Disconnect()

	n, err := client.SendBlocks([][]byte{[]byte("foo"), []byte("bar"), []byte("baz")}, false)
	require.NoError(t, err)
	require.Equal(t, 9, n)

	require.Eventually(t, func() bool {
		v, ok := received.Load().(string)
		return ok && v == "foobarbaz"
	}, 2*time.Second, 5*time.Millisecond)
}

func TestSocketPeerMatches(t *testing.T) {
	rx, err := New()
	require.NoError(t, err)
	defer rx.Close()

	go func() { _ = rx.Run() }()
	defer rx.Stop()

	acc, err := NewAcceptor(rx)
	require.NoError(t, err)
	defer acc.Stop()

	const port = 18766
	accepted := make(chan *Socket, 1)
	require.NoError(t, acc.StartTCP(port, 16, func(sock *Socket) {
		accepted <- sock
	}))

	client, err := Connect(rx, "127.0.0.1", port)
	require.NoError(t, err)
	defer client.Disconnect()

	select {
	case <-accepted:
	case <-time.After(2 * time.Second):
		t.Fatal("connection was never accepted")
	}

	// The client's peer is the server it dialed: host and port are known.
	require.True(t, client.PeerMatches("127.0.0.1", port))
	require.False(t, client.PeerMatches("127.0.0.1", port+1))
}
