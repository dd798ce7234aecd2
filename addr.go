package reactor

import (
	"fmt"
	"net"
)

// resolveHost resolves host to a single IP, preferring an already-numeric
// address (the common case for this library's callers) and otherwise doing
// one-shot resolution via the platform resolver. Name-resolution caching is
// explicitly out of scope (spec.md Non-goals); every call re-resolves.
func resolveHost(host string) (net.IP, error) {
	if ip := net.ParseIP(host); ip != nil {
		return ip, nil
	}
	ips, err := net.LookupIP(host)
	if err != nil {
		return nil, err
	}
	if len(ips) == 0 {
		return nil, fmt.Errorf("reactor: no addresses for host %q", host)
	}
	return ips[0], nil
}

// UnixAddr identifies an AF_UNIX endpoint, either a filesystem path or a
// Linux abstract-namespace name (a name with no backing directory entry,
// matching original_source/lib/communication/linux/socketnonblocking.cpp's
// connect(path, abstract) overload, which prefixes the encoded address with
// a leading NUL byte when abstract is true).
type UnixAddr struct {
	Path     string
	Abstract bool
}

func (a UnixAddr) String() string {
	if a.Abstract {
		return "@" + a.Path
	}
	return a.Path
}

// encode returns the sun_path payload (excluding the sun_family header):
// the raw path bytes, or a single leading zero byte followed by the path
// bytes for an abstract-namespace name, matching the addrlen computation in
// socketnonblocking.cpp's connect() (1 + pathlen, offset by the
// sockaddr_un family field elsewhere).
func (a UnixAddr) encode() ([]byte, error) {
	if len(a.Path) == 0 {
		return nil, fmt.Errorf("reactor: %w: empty unix path", ErrUnsupportedAddress)
	}
	if !a.Abstract {
		return []byte(a.Path), nil
	}
	buf := make([]byte, 1+len(a.Path))
	copy(buf[1:], a.Path)
	return buf, nil
}

// TCPAddr identifies a TCP endpoint. Host must already be a numeric
// address or a name resolvable by the platform resolver; name-resolution
// caching is explicitly out of scope (spec.md Non-goals).
type TCPAddr struct {
	Host string
	Port int
}

func (a TCPAddr) String() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}
