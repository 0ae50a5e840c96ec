//go:build !linux

/*
	Copyright (c) 2025 Stratux Development Team
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file.

	clock_other.go: the receiver normally runs on embedded Linux; on any
	other host the package still builds, but clock realignment is not
	performed and every attempt returns an error.
*/

package processor

import (
	"errors"
	"time"
)

func defaultSetSystemClock(time.Time) error {
	return errors.New("system clock realignment is only supported on linux")
}
