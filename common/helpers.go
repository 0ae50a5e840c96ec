/*
	Copyright (c) 2025 Stratux Development Team
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file.

	helpers.go: small OS helpers shared across the pipeline.
*/

package common

import (
	"os/user"
)

// IsRunningAsRoot reports whether the current process is running as the
// root user, which the GNSS and barometer sensors need for raw device access.
func IsRunningAsRoot() bool {
	usr, err := user.Current()
	if err != nil {
		return false
	}
	return usr.Uid == "0"
}
