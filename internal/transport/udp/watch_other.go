//go:build !linux

/*
	Copyright (c) 2025 Stratux Development Team
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file.

	watch_other.go: the receiver only runs on embedded Linux; elsewhere the
	lease file watch is a no-op rather than a build failure, and the
	transport falls back on the unconditional check at construction.
*/

package udp

import "errors"

type leaseWatcher struct{}

func newLeaseWatcher(string) (*leaseWatcher, error) {
	return nil, errors.New("inotify lease watch is only supported on linux")
}

func (w *leaseWatcher) fired() bool { return false }
func (w *leaseWatcher) close()      {}
