/*
	Copyright (c) 2025 Stratux Development Team
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file.

	uatparse.go: decodes 978 UAT ADS-B downlink (traffic) messages. FIS-B
	uplink frames need no decoding here -- the core forwards them opaquely
	-- so this package only concerns itself with the downlink state vector.

	This is a simplified subset of the DO-282B downlink message format:
	ICAO address, direct (non-CPR) lat/lon, and altitude. It omits NIC/NACp,
	velocity, and the basic-vs-long message distinction, which a production
	UAT demodulator would additionally need.
*/

package uatparse

import (
	"github.com/stratux/pitot/internal/sensordata"
)

const (
	longFrameLen  = 34
	basicFrameLen = 18
)

// ParseDownlink decodes a UAT ADS-B downlink payload (FEC already removed
// by the external demodulator) into a TrafficReport fragment.
func ParseDownlink(raw []byte) (sensordata.TrafficReport, bool) {
	if len(raw) != longFrameLen && len(raw) != basicFrameLen {
		return sensordata.TrafficReport{}, false
	}

	mdbType := raw[0] >> 3
	icao := uint32(raw[1])<<16 | uint32(raw[2])<<8 | uint32(raw[3])

	report := sensordata.TrafficReport{
		Addr:   sensordata.Addr{ICAO: icao, Type: addrTypeFor(mdbType)},
		Source: sensordata.SourceUAT,
	}

	if len(raw) < 11 {
		return report, true
	}

	combined := uint64(raw[4])<<40 | uint64(raw[5])<<32 | uint64(raw[6])<<24 |
		uint64(raw[7])<<16 | uint64(raw[8])<<8 | uint64(raw[9])

	latRaw := uint32(combined>>25) & 0x7FFFFF
	lonRaw := uint32(combined>>1) & 0xFFFFFF

	if latRaw != 0 || lonRaw != 0 {
		lat := float32(signExtend(latRaw, 23)) * (180.0 / float32(1<<23))
		lon := float32(signExtend(lonRaw, 24)) * (360.0 / float32(1<<24))
		report.LatLon = &[2]float32{lat, lon}
	}

	if len(raw) >= 12 {
		altRaw := (uint32(raw[9])<<8 | uint32(raw[10])) >> 4 & 0xFFF
		if altRaw != 0 {
			feet := int32(altRaw)*25 - 1000
			altType := sensordata.AltitudeBaro
			if raw[10]&0x08 != 0 {
				altType = sensordata.AltitudeGNSS
			}
			report.Altitude = &sensordata.AltitudeReading{Feet: feet, Type: altType}
		}
	}

	return report, true
}

func signExtend(v uint32, bits int) int32 {
	mask := uint32(1) << uint(bits-1)
	return int32((v ^ mask) - mask)
}

func addrTypeFor(mdbType byte) sensordata.AddressType {
	switch mdbType {
	case 0, 1: // ADS-B with ICAO 24-bit address
		return sensordata.AddressADSBICAO
	case 2, 3: // ADS-B with self-assigned address
		return sensordata.AddressADSBOther
	case 5: // TIS-B with ICAO address
		return sensordata.AddressTISBICAO
	default:
		return sensordata.AddressTISBOther
	}
}
