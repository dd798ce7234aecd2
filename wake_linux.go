//go:build linux

package reactor

import (
	"encoding/binary"

	"golang.org/x/sys/unix"
)

// createWake allocates the kernel object backing a Notifier: a non-blocking
// eventfd, grounded on original_source/lib/sys/linux/notifier.cpp's
// eventfd(0, EFD_NONBLOCK) and the teacher's wakeup_linux.go createWakeFd.
func createWake() (int, error) {
	return unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
}

// signalWake writes the eventfd counter increment that wakes a blocked
// EpollWait and increments the value read back by drainWake.
func signalWake(fd int) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], 1)
	_, err := unix.Write(fd, buf[:])
	return err
}

// drainWake reads and returns the accumulated eventfd counter, resetting it
// to zero. original_source's Notifier::process() treats this value as an
// exact repeat count: a handler set via Notifier.Set is invoked once per
// unit of the returned count.
func drainWake(fd int) (uint64, error) {
	var buf [8]byte
	n, err := unix.Read(fd, buf[:])
	if err != nil {
		return 0, err
	}
	if n != 8 {
		return 0, nil
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func closeWake(fd int) error {
	return unix.Close(fd)
}
