/*
	Copyright (c) 2025 Stratux Development Team
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file.

	report.go: the Report tagged union pushed by the processor stage and
	drained by the protocol stage, and the Processor stage interface.
*/

package processor

import (
	"time"

	"github.com/stratux/pitot/internal/handle"
	"github.com/stratux/pitot/internal/sensordata"
)

// Report is implemented by every variant a processor may push.
type Report interface {
	isReport()
}

// OwnshipReport carries a snapshot of the current ownship state.
type OwnshipReport struct {
	Ownship Ownship
}

func (OwnshipReport) isReport() {}

// TrafficTargetReport carries a snapshot of one tracked traffic target.
type TrafficTargetReport struct {
	Target Target
}

func (TrafficTargetReport) isReport() {}

// FISBReport carries one opaque FIS-B uplink payload.
type FISBReport struct {
	Payload []byte
}

func (FISBReport) isReport() {}

// GNSSStatusReport carries the receiver's fix quality and satellite table.
type GNSSStatusReport struct {
	Quality    sensordata.FixQuality
	NumSV      uint8
	Satellites []sensordata.SVStatus
}

func (GNSSStatusReport) isReport() {}

// Processor reads sensor data pushed since the last tick and emits zero or
// more Report values for the protocol stage.
type Processor interface {
	Step(h handle.Pushable[Report], in []sensordata.SensorData)
}

// Timestamped pairs a volatile value with the monotonic instant it was last
// updated. Freshness is a pure function of (now, At) -- never of wall clock.
type Timestamped[T any] struct {
	Value T
	At    time.Time
}

// Fresh reports whether this value was updated within window of now.
func (t Timestamped[T]) Fresh(now time.Time, window time.Duration) bool {
	return now.Sub(t.At) <= window
}
