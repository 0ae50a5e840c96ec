/*
	Copyright (c) 2025 Stratux Development Team
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file.

	fake.go: a deterministic GNSS sensor for development and testing off of
	real hardware, emitting the same fix every tick.
*/

package gnss

import (
	"time"

	"github.com/stratux/pitot/internal/handle"
	"github.com/stratux/pitot/internal/sensordata"
)

// Fake is a deterministic GNSS sensor useful for exercising the rest of the
// pipeline without a serial receiver attached.
type Fake struct {
	fixTime time.Time
}

// NewFake returns a fake GNSS sensor that always reports a fixed time and
// position.
func NewFake() *Fake {
	return &Fake{fixTime: time.Date(2014, time.July, 8, 9, 10, 11, 0, time.UTC)}
}

func (f *Fake) Step(h handle.Pushable[sensordata.SensorData]) {
	t := f.fixTime
	h.Push(sensordata.GNSSTimeFix{
		Time: &t,
		Fix: &sensordata.Fix{
			Quality: sensordata.Fix3D,
			NumSV:   4,
			LatLon:  sensordata.WithAccuracy[[2]float32, uint32]([2]float32{12345, 12345}, 1000),
			HeightMSL:       sensordata.WithAccuracy[int32, uint32](1000, 500),
			HeightEllipsoid: sensordata.WithAccuracy[int32, uint32](900, 500),
			GroundSpeed:     sensordata.WithAccuracy[uint32, uint32](10000, 100),
			TrueCourse:      sensordata.WithAccuracy[float32, float32](123, 2),
			MagneticDeclination: func() *sensordata.Reading[float32, float32] {
				r := sensordata.WithAccuracy[float32, float32](10, 4)
				return &r
			}(),
		},
	})
}
