/*
	Copyright (c) 2025 Stratux Development Team
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file.

	clock.go: watches GNSS time and realigns the system clock if it has
	drifted too far. Emits no reports. Freshness logic downstream uses the
	monotonic clock exclusively, so a wall clock jump caused here does not
	perturb it.
*/

package processor

import (
	"time"

	"github.com/stratux/pitot/common"
	"github.com/stratux/pitot/internal/handle"
	"github.com/stratux/pitot/internal/sensordata"
)

const clockMaxToleranceSecs = 2

// SetSystemClock realigns the OS real-time clock to t. Extracted as a
// variable so tests can stub it out without touching the host clock.
var SetSystemClock = defaultSetSystemClock

// ClockProcessor realigns the system clock when GNSS time drifts from it by
// more than clockMaxToleranceSecs. It stops scanning further sensor items
// once it has corrected within a tick.
type ClockProcessor struct{}

// NewClockProcessor returns a new clock-alignment processor.
func NewClockProcessor() *ClockProcessor {
	return &ClockProcessor{}
}

func (c *ClockProcessor) Step(h handle.Pushable[Report], in []sensordata.SensorData) {
	for _, e := range in {
		v, ok := e.(sensordata.GNSSTimeFix)
		if !ok || v.Time == nil {
			continue
		}

		delta := h.UTC().Sub(*v.Time)
		if delta < 0 {
			delta = -delta
		}

		if delta > clockMaxToleranceSecs*time.Second {
			common.Log.Info("clock: realigning system clock to GNSS time")
			if err := SetSystemClock(*v.Time); err != nil {
				common.Log.Errorf("clock: failed to set system clock: %v", err)
			}
			return
		}
	}
}
