/*
	Copyright (c) 2025 Stratux Development Team
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file.
*/

package uatparse

import (
	"testing"

	"github.com/stratux/pitot/internal/sensordata"
)

func TestParseDownlinkRejectsBadLength(t *testing.T) {
	if _, ok := ParseDownlink(make([]byte, 10)); ok {
		t.Error("expected a short frame to be rejected")
	}
	if _, ok := ParseDownlink(nil); ok {
		t.Error("expected a nil frame to be rejected")
	}
}

func TestParseDownlinkICAOAndAddressType(t *testing.T) {
	raw := make([]byte, basicFrameLen)
	raw[0] = 0 << 3 // mdbType 0 -> ADS-B ICAO
	raw[1], raw[2], raw[3] = 0xA1, 0xB2, 0xC3

	report, ok := ParseDownlink(raw)
	if !ok {
		t.Fatal("expected frame to parse")
	}
	if report.Addr.ICAO != 0xA1B2C3 {
		t.Errorf("ICAO = %#X, want %#X", report.Addr.ICAO, 0xA1B2C3)
	}
	if report.Addr.Type != sensordata.AddressADSBICAO {
		t.Errorf("address type = %v, want AddressADSBICAO", report.Addr.Type)
	}
	if report.Source != sensordata.SourceUAT {
		t.Errorf("source = %v, want SourceUAT", report.Source)
	}
	if report.LatLon != nil {
		t.Error("all-zero position bytes should leave LatLon unset")
	}
	if report.Altitude != nil {
		t.Error("all-zero altitude bytes should leave Altitude unset")
	}
}

func TestParseDownlinkTISBAddressTypes(t *testing.T) {
	cases := []struct {
		mdbType byte
		want    sensordata.AddressType
	}{
		{0, sensordata.AddressADSBICAO},
		{1, sensordata.AddressADSBICAO},
		{2, sensordata.AddressADSBOther},
		{3, sensordata.AddressADSBOther},
		{5, sensordata.AddressTISBICAO},
		{6, sensordata.AddressTISBOther},
	}
	for _, c := range cases {
		raw := make([]byte, basicFrameLen)
		raw[0] = c.mdbType << 3
		report, ok := ParseDownlink(raw)
		if !ok {
			t.Fatalf("mdbType %d: expected frame to parse", c.mdbType)
		}
		if report.Addr.Type != c.want {
			t.Errorf("mdbType %d: address type = %v, want %v", c.mdbType, report.Addr.Type, c.want)
		}
	}
}

func TestSignExtend(t *testing.T) {
	cases := []struct {
		v    uint32
		bits int
		want int32
	}{
		{0, 23, 0},
		{1<<22 - 1, 23, 1<<22 - 1},  // largest positive 23-bit value
		{1 << 22, 23, -(1 << 22)},   // smallest negative 23-bit value
		{1<<23 - 1, 23, -1},         // all-ones -> -1
	}
	for _, c := range cases {
		got := signExtend(c.v, c.bits)
		if got != c.want {
			t.Errorf("signExtend(%#x, %d) = %d, want %d", c.v, c.bits, got, c.want)
		}
	}
}

func TestParseDownlinkAltitudeType(t *testing.T) {
	raw := make([]byte, basicFrameLen)
	raw[0] = 0
	// altRaw nonzero, low nibble bit (0x08) of raw[10] selects GNSS altitude.
	raw[9] = 0x10
	raw[10] = 0x08
	report, ok := ParseDownlink(raw)
	if !ok {
		t.Fatal("expected frame to parse")
	}
	if report.Altitude == nil {
		t.Fatal("expected altitude to be populated")
	}
	if report.Altitude.Type != sensordata.AltitudeGNSS {
		t.Errorf("altitude type = %v, want AltitudeGNSS", report.Altitude.Type)
	}
}
