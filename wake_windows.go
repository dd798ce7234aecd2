//go:build windows

package reactor

import "golang.org/x/sys/windows"

// postWake wakes a Reactor.Run blocked in GetQueuedCompletionStatus by
// posting a completion packet with no associated overlapped, keyed by id.
// Grounded on the teacher's wakeup_windows.go PostQueuedCompletionStatus
// stub, wired to a real completion key instead of a placeholder.
func postWake(port windows.Handle, id SourceID) error {
	return windows.PostQueuedCompletionStatus(port, 0, uintptr(id), nil)
}
