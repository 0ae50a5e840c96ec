//go:build linux

/*
	Copyright (c) 2025 Stratux Development Team
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file.

	clock_linux.go: sets CLOCK_REALTIME via clock_settime(2).
*/

package processor

import (
	"time"

	"golang.org/x/sys/unix"
)

func defaultSetSystemClock(t time.Time) error {
	ts := unix.NsecToTimespec(t.UnixNano())
	return unix.ClockSettime(unix.CLOCK_REALTIME, &ts)
}
