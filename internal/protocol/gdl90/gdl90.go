/*
	Copyright (c) 2025 Stratux Development Team
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file.

	gdl90.go: renders processor Reports into byte-exact GDL90 frames for the
	EFB-facing UDP transport. Message layouts follow the Garmin GDL 90 Data
	Interface Specification (560-1058-00 Rev A).
*/

package gdl90

import (
	"time"

	"github.com/stratux/pitot/internal/handle"
	"github.com/stratux/pitot/internal/processor"
	"github.com/stratux/pitot/internal/protocol"
	"github.com/stratux/pitot/internal/sensordata"
)

const (
	heartbeatHz  = 1
	ownshipHz    = 2
	maxStale     = 6 * time.Second
)

// GDL90 implements protocol.Protocol, tracking the small amount of state
// needed to render ownship validity and pressure-altitude availability into
// the heartbeat and traffic messages.
type GDL90 struct {
	ownshipValid     bool
	presAltValid     bool
	heartbeatCounter uint32
	ownshipCounter   uint32
}

// New returns a GDL90 protocol stage with no ownship fix yet observed.
func New() *GDL90 {
	return &GDL90{}
}

func (g *GDL90) Step(h handle.Pushable[protocol.Payload], in []processor.Report) {
	clock := h.Clock()

	g.ownshipCounter++
	g.heartbeatCounter++

	for _, e := range in {
		switch v := e.(type) {
		case processor.OwnshipReport:
			if g.ownshipCounter >= uint32(h.Frequency())/ownshipHz {
				g.ownshipCounter = 0
				g.ownshipValid = v.Ownship.Valid
				if v.Ownship.PressureAltitude != nil {
					g.presAltValid = true
				}
				h.Push(protocol.Payload{Queueable: false, Data: generateOwnship(v.Ownship)})
				h.Push(protocol.Payload{Queueable: false, Data: generateOwnshipGeoAltitude(v.Ownship)})
			}

		case processor.TrafficTargetReport:
			// rate limiting for a given target already happened in the
			// traffic processor; every report reaching here ships now.
			h.Push(protocol.Payload{Queueable: false, Data: generateTraffic(v.Target, clock, g.presAltValid)})

		case processor.FISBReport:
			h.Push(protocol.Payload{Queueable: true, Data: generateUplink(v.Payload)})
		}
	}

	if g.heartbeatCounter >= uint32(h.Frequency())/heartbeatHz {
		g.heartbeatCounter = 0
		h.Push(protocol.Payload{Queueable: false, Data: generateHeartbeat(h.UTC(), g.ownshipValid)})
		h.Push(protocol.Payload{Queueable: false, Data: generateForeFlightID()})
	}
}

func generateHeartbeat(utc time.Time, ownshipValid bool) []byte {
	buf := make([]byte, 7)
	buf[0] = 0x00
	buf[1] = 0x11 // UAT Initialized + ATC Services talkback
	if ownshipValid {
		buf[1] |= 0x80
	}

	midnight := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, utc.Location())
	delta := int64(utc.Sub(midnight).Seconds())

	buf[2] = byte((delta&0x10000)>>9) | 0x01 // MSB + UTC OK
	buf[3] = byte(delta & 0xFF)
	buf[4] = byte((delta & 0xFF00) >> 8)

	return prepareMessage(buf)
}

func generateForeFlightID() []byte {
	buf := make([]byte, 39)
	buf[0] = 0x65 // type = FF
	buf[1] = 0x00 // sub ID
	buf[2] = 0x01 // version

	for i := 3; i < 11; i++ {
		buf[i] = 0xFF // serial = invalid
	}

	copy(buf[11:16], "Pitot")
	copy(buf[20:25], "Pitot")

	buf[38] = 0x01 // geometric altitude datum = MSL

	return prepareMessage(buf)
}

func generateUplink(payload []byte) []byte {
	buf := make([]byte, 436)
	buf[0] = 0x07 // type = uplink
	buf[1] = 0xFF
	buf[2] = 0xFF
	buf[3] = 0xFF
	copy(buf[4:436], payload)

	return prepareMessage(buf)
}

func generateOwnshipGeoAltitude(o processor.Ownship) []byte {
	buf := make([]byte, 5)
	buf[0] = 0x0B

	alt := int16(o.HAEAltitudeFt / 5)
	buf[1] = byte(alt >> 8)
	buf[2] = byte(alt & 0x00FF)

	buf[3] = 0x00
	buf[4] = 0x0A // no vertical warning, VFOM = 10m

	return prepareMessage(buf)
}

func generateOwnship(o processor.Ownship) []byte {
	buf := make([]byte, 28)
	buf[0] = 0x0A
	buf[1] = 0x01 // alert status false, ADS-B with self-assigned address
	buf[2] = 0xF0
	buf[3] = 0x00
	buf[4] = 0x00

	lat1, lat2, lat3 := latLonToGDL90(o.Lat)
	buf[5], buf[6], buf[7] = lat1, lat2, lat3

	lon1, lon2, lon3 := latLonToGDL90(o.Lon)
	buf[8], buf[9], buf[10] = lon1, lon2, lon3

	if o.PressureAltitude != nil {
		alt := altToGDL90(float32(*o.PressureAltitude))
		buf[11] = byte((alt & 0xFF0) >> 4)
		buf[12] = byte((alt&0x00F)<<4) | 0x09 // airborne + true track
	} else {
		buf[11] = 0xFF
		buf[12] = 0xF9
	}

	buf[13] = (o.NIC<<4)&0xF0 | o.NACp&0x0F

	gs := uint16(roundU16(o.GroundSpeedKt))
	vs := uint16(0x800) // no vertical rate available
	buf[14] = byte((gs & 0xFF0) >> 4)
	buf[15] = byte((gs&0x00F)<<4) | byte((vs&0x0F00)>>8)
	buf[16] = byte(vs & 0xFF)

	buf[17] = crsToGDL90(o.TrueTrackDeg)

	buf[18] = 0x01 // light (ICAO) < 15,500 lbs

	copy(buf[19:24], "Pitot")

	return prepareMessage(buf)
}

func generateTraffic(e processor.Target, clock time.Time, presAltValid bool) []byte {
	buf := make([]byte, 28)
	buf[0] = 0x14

	switch e.Addr.Type {
	case sensordata.AddressADSBICAO, sensordata.AddressADSRICAO:
		buf[1] = 0
	case sensordata.AddressADSBOther, sensordata.AddressADSROther:
		buf[1] = 1
	case sensordata.AddressTISBICAO:
		buf[1] = 2
	default:
		buf[1] = 3
	}

	buf[2] = byte((0xFF0000 & e.Addr.ICAO) >> 16)
	buf[3] = byte((0x00FF00 & e.Addr.ICAO) >> 8)
	buf[4] = byte(0x0000FF & e.Addr.ICAO)

	if e.LatLon != nil && clock.Sub(e.LatLon.At) <= maxStale {
		lat1, lat2, lat3 := latLonToGDL90(e.LatLon.Value[0])
		buf[5], buf[6], buf[7] = lat1, lat2, lat3

		lon1, lon2, lon3 := latLonToGDL90(e.LatLon.Value[1])
		buf[8], buf[9], buf[10] = lon1, lon2, lon3

		if e.NIC != nil {
			buf[13] |= (*e.NIC << 4) & 0xF0
		}
	}

	if e.Altitude != nil && clock.Sub(e.Altitude.At) <= maxStale {
		corrected := e.Altitude.Value.Feet

		if !presAltValid && e.Altitude.Value.Type == sensordata.AltitudeBaro {
			if e.GNSSDelta != nil {
				corrected += *e.GNSSDelta
			}
		} else if presAltValid && e.Altitude.Value.Type == sensordata.AltitudeGNSS {
			if e.GNSSDelta != nil {
				corrected -= *e.GNSSDelta
			}
		}

		alt := altToGDL90(float32(corrected))
		buf[11] = byte((alt & 0xFF0) >> 4)
		buf[12] = byte((alt & 0x00F) << 4)
	} else {
		buf[11] = 0xFF
		buf[12] = 0xF0
	}

	if e.Heading != nil && clock.Sub(e.Heading.At) <= maxStale {
		switch e.Heading.Value.Type {
		case sensordata.HeadingTrue:
			buf[12] |= 0x01
		case sensordata.HeadingMag:
			buf[12] |= 0x02
		}
	}

	if e.OnGround == nil || !*e.OnGround {
		buf[12] |= 0x08 // airborne; unknown also assumed airborne
	}

	if e.NACp != nil {
		buf[13] |= *e.NACp & 0x0F
	}

	buf[14] = 0xFF // velocity unavailable by default
	buf[15] = 0xF0

	if e.Speed != nil && clock.Sub(e.Speed.At) <= maxStale {
		spd := e.Speed.Value.Value
		buf[14] = byte((spd & 0xFF0) >> 4)
		buf[15] = byte((spd & 0x00F) << 4)
	}

	if e.VS != nil && clock.Sub(e.VS.At) <= maxStale {
		vs := int16(roundI16(float32(e.VS.Value) / 64.0)) // GDL90 spec p. 21
		buf[15] |= byte((vs & 0xF00) >> 8)
		buf[16] = byte(vs & 0xFF)
	} else {
		buf[15] |= 0x08 // no vertical rate
	}

	if e.Heading != nil {
		buf[17] = crsToGDL90(float32(e.Heading.Value.Degrees))
	}

	if e.Category != nil {
		buf[18] = *e.Category
	}

	switch e.Source {
	case sensordata.SourceUAT:
		buf[19] = 'u'
	case sensordata.SourceES:
		buf[19] = 'e'
	}

	switch e.Addr.Type {
	case sensordata.AddressADSBICAO, sensordata.AddressADSBOther:
		buf[20] = 'a'
	case sensordata.AddressADSRICAO, sensordata.AddressADSROther:
		buf[20] = 'r'
	case sensordata.AddressTISBICAO, sensordata.AddressTISBOther:
		buf[20] = 't'
	default:
		buf[20] = 'x'
	}

	if e.Callsign != nil {
		cs := []byte(*e.Callsign)
		if len(cs) > 6 {
			cs = cs[:6]
		}
		copy(buf[21:21+len(cs)], cs)
	} else if e.Squawk != nil {
		squawk := []byte{
			byte('0' + (*e.Squawk/1000)%10),
			byte('0' + (*e.Squawk/100)%10),
			byte('0' + (*e.Squawk/10)%10),
			byte('0' + *e.Squawk%10),
		}
		copy(buf[21:25], squawk)
	}

	if e.Squawk != nil {
		sq := *e.Squawk
		if sq == 7700 || sq == 7600 || sq == 7500 {
			buf[27] = 0x10 // emergency
		}
	}

	return prepareMessage(buf)
}

func roundU16(v float32) uint16 {
	return uint16(v + 0.5)
}

func roundI16(v float32) int16 {
	if v >= 0 {
		return int16(v + 0.5)
	}
	return int16(v - 0.5)
}
