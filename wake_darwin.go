//go:build darwin

package reactor

import "golang.org/x/sys/unix"

// wakePipe is the self-pipe backing a Notifier on Darwin, where no
// eventfd equivalent exists. Grounded on the teacher's wakeup_darwin.go
// (syscall.Pipe + CloseOnExec + SetNonblock).
type wakePipe struct {
	readFD, writeFD int
}

func createWakePipe() (wakePipe, error) {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_CLOEXEC|unix.O_NONBLOCK); err != nil {
		return wakePipe{}, err
	}
	return wakePipe{readFD: fds[0], writeFD: fds[1]}, nil
}

func (p wakePipe) signal() error {
	_, err := unix.Write(p.writeFD, []byte{1})
	if err == unix.EAGAIN {
		// pipe buffer already has a pending byte; the reader will still wake.
		return nil
	}
	return err
}

// drain reads and discards all pending bytes, returning 1 if any byte was
// read and 0 otherwise. Unlike the Linux eventfd counter, a self-pipe only
// ever signals "at least one wakeup occurred", so any drained byte count is
// treated as a single notification.
func (p wakePipe) drain() (uint64, error) {
	var buf [64]byte
	var total uint64
	for {
		n, err := unix.Read(p.readFD, buf[:])
		if n > 0 {
			total += uint64(n)
		}
		if err != nil || n < len(buf) {
			break
		}
	}
	if total > 0 {
		return 1, nil
	}
	return 0, nil
}

func (p wakePipe) close() error {
	_ = unix.Close(p.writeFD)
	return unix.Close(p.readFD)
}
