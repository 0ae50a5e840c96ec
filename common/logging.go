/*
	Copyright (c) 2025 Stratux Development Team
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file.

	logging.go: process-wide structured logging. Debug-level output is
	gated by SetDebug, mirroring the DEBUG toggle that used to live on
	the global settings struct.
*/

package common

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger. Every package logs through this instance
// rather than constructing its own, so tick-rate chatter from the pipeline
// and sensor threads share one format and destination.
var Log = logrus.New()

func init() {
	Log.SetOutput(os.Stdout)
	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	Log.SetLevel(logrus.InfoLevel)
}

// SetDebug toggles debug-level logging on or off.
func SetDebug(enabled bool) {
	if enabled {
		Log.SetLevel(logrus.DebugLevel)
	} else {
		Log.SetLevel(logrus.InfoLevel)
	}
}
