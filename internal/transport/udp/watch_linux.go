//go:build linux

/*
	Copyright (c) 2025 Stratux Development Team
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file.

	watch_linux.go: watches /tmp for MODIFY|CREATE via inotify, the signal
	that the DHCP lease file may have changed.
*/

package udp

import "golang.org/x/sys/unix"

type leaseWatcher struct {
	fd int
}

func newLeaseWatcher(path string) (*leaseWatcher, error) {
	fd, err := unix.InotifyInit1(unix.IN_NONBLOCK)
	if err != nil {
		return nil, err
	}

	if _, err := unix.InotifyAddWatch(fd, path, unix.IN_MODIFY|unix.IN_CREATE); err != nil {
		unix.Close(fd)
		return nil, err
	}

	return &leaseWatcher{fd: fd}, nil
}

// fired drains any pending inotify events and reports whether at least one
// arrived since the last call. Non-blocking: the fd was opened with
// IN_NONBLOCK, so an empty queue returns immediately.
func (w *leaseWatcher) fired() bool {
	buf := make([]byte, 4096)
	n, err := unix.Read(w.fd, buf)
	return err == nil && n > 0
}

func (w *leaseWatcher) close() {
	unix.Close(w.fd)
}
