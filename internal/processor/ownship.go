/*
	Copyright (c) 2025 Stratux Development Team
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file.

	ownship.go: merges GNSS fixes and barometric samples into the current
	ownship state.
*/

package processor

import (
	"github.com/gansidui/geohash"

	"github.com/stratux/pitot/common"
	"github.com/stratux/pitot/internal/handle"
	"github.com/stratux/pitot/internal/sensordata"
)

const (
	mmToFt   = 0.00328084
	mmpsToKt = 0.00194384
)

// Ownship is the accumulated, best-known state of the aircraft the receiver
// is installed in.
type Ownship struct {
	Valid             bool     `json:"valid"`
	Lat               float32  `json:"lat"`
	Lon               float32  `json:"lon"`
	MSLAltitudeFt     int32    `json:"mslAltitude"`
	HAEAltitudeFt     int32    `json:"haeAltitude"`
	PressureAltitude  *int32   `json:"pressureAltitude,omitempty"`
	VS                *int32   `json:"vs,omitempty"`
	NIC               uint8    `json:"nic"`
	NACp              uint8    `json:"nacp"`
	GroundSpeedKt     float32  `json:"gs"`
	TrueTrackDeg      float32  `json:"trueTrack"`
}

// OwnshipProcessor implements Processor, accumulating Ownship from GNSS and
// barometer sensor data.
type OwnshipProcessor struct {
	state Ownship
}

// NewOwnshipProcessor returns a fresh, invalid ownship accumulator.
func NewOwnshipProcessor() *OwnshipProcessor {
	return &OwnshipProcessor{}
}

func (p *OwnshipProcessor) Step(h handle.Pushable[Report], in []sensordata.SensorData) {
	dt := 1.0 / float32(h.Frequency())

	for _, e := range in {
		switch v := e.(type) {
		case sensordata.GNSSTimeFix:
			if v.Fix == nil {
				continue
			}
			p.applyFix(*v.Fix)
			h.Push(OwnshipReport{Ownship: p.state})

		case sensordata.Baro:
			p.applyBaro(v.AltitudeFt, dt)
			h.Push(OwnshipReport{Ownship: p.state})
		}
	}
}

func (p *OwnshipProcessor) applyFix(f sensordata.Fix) {
	if f.LatLon.Accuracy != nil {
		p.state.NIC = 9
		accM := float32(*f.LatLon.Accuracy) / 1000.0
		switch {
		case accM < 3:
			p.state.NACp = 11
		case accM < 10:
			p.state.NACp = 10
		case accM < 30:
			p.state.NACp = 9
		case accM < 92.6:
			p.state.NACp = 8
		case accM < 185.2:
			p.state.NACp = 7
		case accM < 555.6:
			p.state.NACp = 6
		default:
			p.state.NACp = 0
		}
	} else {
		p.state.NIC = 0
		p.state.NACp = 0
	}

	p.state.Lat = f.LatLon.Value[0]
	p.state.Lon = f.LatLon.Value[1]
	p.state.MSLAltitudeFt = roundI32(float32(f.HeightMSL.Value) * mmToFt)
	p.state.HAEAltitudeFt = roundI32(float32(f.HeightEllipsoid.Value) * mmToFt)
	p.state.GroundSpeedKt = float32(f.GroundSpeed.Value) * mmpsToKt
	p.state.TrueTrackDeg = f.TrueCourse.Value
	p.state.Valid = true

	common.Log.WithField("geohash", geohash.Encode(float64(p.state.Lat), float64(p.state.Lon))).
		Trace("ownship: position updated")
}

func (p *OwnshipProcessor) applyBaro(b int32, dt float32) {
	if p.state.PressureAltitude != nil {
		alpha := 5.0 / (5.0 + dt)
		var vs int32
		if p.state.VS != nil {
			vsf := alpha*float32(*p.state.VS) + (1-alpha)*float32(b-*p.state.PressureAltitude)/(dt/60.0)
			vs = roundI32(vsf)
		} else {
			vs = 0
		}
		p.state.VS = &vs
	}

	alt := b
	p.state.PressureAltitude = &alt
}

func roundI32(v float32) int32 {
	if v >= 0 {
		return int32(v + 0.5)
	}
	return int32(v - 0.5)
}
