/*
	Copyright (c) 2025 Stratux Development Team
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file.

	modes_decode.go: decodes 1090ES DF17/DF18 extended squitter messages
	into TrafficReport fragments. Field layouts follow RTCA DO-260B; CPR
	position decode follows the standard global-decode algorithm used by
	every open ADS-B decoder (junzis/pyModeS, dump1090).
*/

package traffic

import (
	"math"
	"time"

	"github.com/stratux/pitot/internal/sensordata"
)

// callsign 6-bit character set used by identification messages (TC 1-4).
const aisCharset = "?ABCDEFGHIJKLMNOPQRSTUVWXYZ????? ???????????????0123456789??????"

type modeSFrame struct {
	df      byte
	ca      byte
	icao    uint32
	me      [7]byte
}

// parseModeSFrame parses a 14-byte (112-bit) extended squitter frame.
// Parity/CRC verification is left to the external demodulator; by the time
// a frame reaches here it is assumed already validated.
func parseModeSFrame(raw []byte) (modeSFrame, bool) {
	if len(raw) != 14 {
		return modeSFrame{}, false
	}

	f := modeSFrame{
		df:   raw[0] >> 3,
		ca:   raw[0] & 0x07,
		icao: uint32(raw[1])<<16 | uint32(raw[2])<<8 | uint32(raw[3]),
	}
	copy(f.me[:], raw[4:11])
	return f, true
}

func (f modeSFrame) typeCode() byte {
	return f.me[0] >> 3
}

// decodeIdentification handles TC 1-4: callsign and emitter category.
func decodeIdentification(f modeSFrame) (callsign string, category uint8) {
	bits := make([]byte, 0, 48)
	for i := 1; i < 7; i++ {
		b := f.me[i]
		for shift := 7; shift >= 0; shift-- {
			bits = append(bits, (b>>uint(shift))&1)
		}
	}

	var cs [8]byte
	for i := 0; i < 8; i++ {
		var v byte
		for bit := 0; bit < 6; bit++ {
			v = v<<1 | bits[i*6+bit]
		}
		cs[i] = aisCharset[v]
	}

	category = ((0x0E - f.typeCode()) << 4) | (f.me[0] & 0x07)

	end := 8
	for end > 0 && (cs[end-1] == ' ' || cs[end-1] == '?') {
		end--
	}
	return string(cs[:end]), category
}

// decodeAltitude handles the AC12 altitude field shared by airborne
// position messages (TC 9-18, 20-22).
func decodeAltitude(f modeSFrame) (feet int32, ok bool) {
	ac12 := uint16(f.me[1])<<4 | uint16(f.me[2])>>4
	return decodeAC12(ac12)
}

// decodeAC12 decodes a 12-bit Mode S altitude code. The Q-bit (bit 4)
// selects 25 ft (Q=1) increments; Q=0 indicates a Gillham-coded value this
// decoder does not reconstruct.
func decodeAC12(ac12 uint16) (int32, bool) {
	q := (ac12 >> 4) & 0x01
	if q == 0 {
		return 0, false
	}
	n := (ac12 & 0xFE0) >> 1
	n |= ac12 & 0x0F
	return int32(n)*25 - 1000, true
}

// decodeVelocity handles TC 19: airborne velocity. Subtypes 1-2 yield ground
// speed and track; subtypes 3-4 yield heading only (airspeed is not decoded).
// Vertical rate is decoded for every subtype.
func decodeVelocity(f modeSFrame) (gsKt uint16, headingDeg uint16, vsFpm int16, hasGS, hasHeading, hasVS bool) {
	subtype := f.me[0] & 0x07

	switch subtype {
	case 1, 2:
		ewSign := (f.me[1] >> 2) & 0x01
		ewVel := int(f.me[1]&0x03)<<8 | int(f.me[2])
		nsSign := (f.me[3] >> 7) & 0x01
		nsVel := int(f.me[3]&0x7F)<<3 | int(f.me[4])>>5

		if ewVel == 0 || nsVel == 0 {
			hasGS, hasHeading = false, false
		} else {
			ew := ewVel - 1
			ns := nsVel - 1
			if ewSign == 1 {
				ew = -ew
			}
			if nsSign == 1 {
				ns = -ns
			}

			speed := math.Hypot(float64(ew), float64(ns))
			heading := math.Atan2(float64(ew), float64(ns)) * 180 / math.Pi
			if heading < 0 {
				heading += 360
			}

			gsKt = uint16(math.Round(speed))
			headingDeg = uint16(math.Round(heading))
			hasGS, hasHeading = true, true
		}

	case 3, 4:
		hdgStatus := (f.me[1] >> 2) & 0x01
		if hdgStatus == 1 {
			hdgRaw := int(f.me[1]&0x03)<<8 | int(f.me[2])
			headingDeg = uint16(math.Round(float64(hdgRaw) / 1024.0 * 360.0))
			hasHeading = true
		}
	}

	vsSign := (f.me[4] >> 3) & 0x01
	vsRaw := int(f.me[4]&0x07)<<6 | int(f.me[5])>>2
	if vsRaw != 0 {
		vs := (vsRaw - 1) * 64
		if vsSign == 1 {
			vs = -vs
		}
		vsFpm = int16(vs)
		hasVS = true
	}

	return
}

// cprFrame is one even or odd CPR-encoded position report.
type cprFrame struct {
	lat, lon uint32
	odd      bool
	at       time.Time
}

// decodeCPRPair globally decodes a lat/lon in degrees from one even and one
// odd CPR frame observed within the same surveillance period.
func decodeCPRPair(even, odd cprFrame) (lat, lon float32, ok bool) {
	cprLatEven := float64(even.lat) / 131072.0
	cprLonEven := float64(even.lon) / 131072.0
	cprLatOdd := float64(odd.lat) / 131072.0
	cprLonOdd := float64(odd.lon) / 131072.0

	const dLatEven = 360.0 / 60.0
	const dLatOdd = 360.0 / 59.0

	j := math.Floor(59*cprLatEven - 60*cprLatOdd + 0.5)

	latEven := dLatEven * (math.Mod(j, 60) + cprLatEven)
	latOdd := dLatOdd * (math.Mod(j, 59) + cprLatOdd)
	if latEven >= 270 {
		latEven -= 360
	}
	if latOdd >= 270 {
		latOdd -= 360
	}

	if cprNL(latEven) != cprNL(latOdd) {
		return 0, 0, false
	}

	var finalLat float64
	var finalLon float64

	if even.at.After(odd.at) {
		nl := cprNL(latEven)
		ni := math.Max(float64(nl), 1)
		m := math.Floor(cprLonEven*(nl-1) - cprLonOdd*nl + 0.5)
		finalLon = (360.0 / ni) * (math.Mod(m, ni) + cprLonEven)
		finalLat = latEven
	} else {
		nl := cprNL(latOdd)
		ni := math.Max(nl-1, 1)
		m := math.Floor(cprLonEven*(nl-1) - cprLonOdd*nl + 0.5)
		finalLon = (360.0 / ni) * (math.Mod(m, ni) + cprLonOdd)
		finalLat = latOdd
	}

	if finalLon > 180 {
		finalLon -= 360
	}

	return float32(finalLat), float32(finalLon), true
}

// cprNL is the number-of-longitude-zones function (DO-260B 2.2.4.3), given
// in closed form rather than as a 59-row lookup table.
func cprNL(lat float64) float64 {
	if lat == 0 {
		return 59
	}
	if lat == 87 || lat == -87 {
		return 2
	}
	if math.Abs(lat) > 87 {
		return 1
	}

	const nz = 15.0
	a := 1 - math.Cos(math.Pi/(2*nz))
	b := math.Pow(math.Cos(math.Pi/180*math.Abs(lat)), 2)
	return math.Floor(2 * math.Pi / math.Acos(1-a/b))
}

func addrTypeFor(df byte) sensordata.AddressType {
	if df == 18 {
		return sensordata.AddressTISBICAO
	}
	return sensordata.AddressADSBICAO
}
