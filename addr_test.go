package reactor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnixAddrEncodeFilesystemPath(t *testing.T) {
	a := UnixAddr{Path: "/tmp/reactor-test.sock"}
	b, err := a.encode()
	require.NoError(t, err)
	require.Equal(t, "/tmp/reactor-test.sock", string(b))
	require.Equal(t, "/tmp/reactor-test.sock", a.String())
}

func TestUnixAddrEncodeAbstract(t *testing.T) {
	a := UnixAddr{Path: "reactor-test", Abstract: true}
	b, err := a.encode()
	require.NoError(t, err)
	require.Len(t, b, 1+len("reactor-test"))
	require.Equal(t, byte(0), b[0])
	require.Equal(t, "reactor-test", string(b[1:]))
	require.Equal(t, "@reactor-test", a.String())
}

func TestUnixAddrEncodeRejectsEmptyPath(t *testing.T) {
	a := UnixAddr{}
	_, err := a.encode()
	require.ErrorIs(t, err, ErrUnsupportedAddress)
}

func TestTCPAddrString(t *testing.T) {
	a := TCPAddr{Host: "127.0.0.1", Port: 8080}
	require.Equal(t, "127.0.0.1:8080", a.String())
}

func TestResolveHostNumeric(t *testing.T) {
	ip, err := resolveHost("127.0.0.1")
	require.NoError(t, err)
	require.True(t, ip.IsLoopback())
}
