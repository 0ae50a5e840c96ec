/*
	Copyright (c) 2025 Stratux Development Team
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file.

	gnss.go: tracks receiver fix quality and the current satellite table,
	pushing a GNSSStatusReport on every tick in which either changes. The
	report is not rate-limited. Neither protocol stage (GDL90, WebSocket)
	consumes GNSSStatusReport.
*/

package processor

import (
	"github.com/stratux/pitot/internal/handle"
	"github.com/stratux/pitot/internal/sensordata"
)

// GNSSStatusProcessor accumulates the most recent fix quality and satellite
// tracking table.
type GNSSStatusProcessor struct {
	quality    sensordata.FixQuality
	numSV      uint8
	satellites []sensordata.SVStatus
}

// NewGNSSStatusProcessor returns a new status accumulator with no fix.
func NewGNSSStatusProcessor() *GNSSStatusProcessor {
	return &GNSSStatusProcessor{quality: sensordata.FixUnknown}
}

func (p *GNSSStatusProcessor) Step(h handle.Pushable[Report], in []sensordata.SensorData) {
	changed := false

	for _, e := range in {
		switch v := e.(type) {
		case sensordata.GNSSTimeFix:
			if v.Fix != nil {
				p.quality = v.Fix.Quality
				p.numSV = v.Fix.NumSV
				changed = true
			}
		case sensordata.GNSSSatelliteInfo:
			p.satellites = v.Satellites
			changed = true
		}
	}

	if changed {
		h.Push(GNSSStatusReport{
			Quality:    p.quality,
			NumSV:      p.numSV,
			Satellites: p.satellites,
		})
	}
}
