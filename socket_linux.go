//go:build linux

package reactor

import "golang.org/x/sys/unix"

const (
	msgMore     = unix.MSG_MORE
	msgNoSignal = unix.MSG_NOSIGNAL
)

// setKeepAliveParams applies TCP_KEEPIDLE/TCP_KEEPINTVL/TCP_KEEPCNT,
// matching socketnonblocking.cpp's setSocketOptions() values exactly
// (idle=12s, interval=3s, count=2 by default, see defaultKeepAliveParams).
func setKeepAliveParams(fd int, ka keepAliveParams) error {
	if err := unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_KEEPIDLE, int(ka.idle.Seconds())); err != nil {
		return err
	}
	if err := unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_KEEPINTVL, int(ka.interval.Seconds())); err != nil {
		return err
	}
	return unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_KEEPCNT, ka.count)
}
