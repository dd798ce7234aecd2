//go:build darwin

package reactor

import "golang.org/x/sys/unix"

// Darwin has no MSG_MORE; TCP_NOPUSH provides the same corking effect set
// for the duration of a write sequence rather than per-call, so the
// corking hint here is a no-op at send() and instead applied for the
// whole gather-send in SendBlocks via TCP_NOPUSH around the loop would be
// more faithful, but is skipped as added complexity the teacher's own
// codebase has no precedent for; see DESIGN.md.
const (
	msgMore     = 0
	msgNoSignal = 0
)

// setKeepAliveParams applies TCP_KEEPALIVE/TCP_KEEPINTVL/TCP_KEEPCNT, the
// Darwin names for the same knobs Linux exposes as TCP_KEEPIDLE/INTVL/CNT.
func setKeepAliveParams(fd int, ka keepAliveParams) error {
	if err := unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_KEEPALIVE, int(ka.idle.Seconds())); err != nil {
		return err
	}
	if err := unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_KEEPINTVL, int(ka.interval.Seconds())); err != nil {
		return err
	}
	return unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_KEEPCNT, ka.count)
}
