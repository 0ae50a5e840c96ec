package gdl90

import (
	"bytes"
	"testing"
	"time"

	"github.com/stratux/pitot/internal/processor"
	"github.com/stratux/pitot/internal/sensordata"
)

func TestCrsToGDL90(t *testing.T) {
	cases := []struct {
		in   float32
		want byte
	}{
		{0, 0x00},
		{180, 0x80},
		{266, 0xBD},
		{359, 0xFF},
		{360, 0x00},
	}
	for _, c := range cases {
		if got := crsToGDL90(c.in); got != c.want {
			t.Errorf("crsToGDL90(%v) = %#x, want %#x", c.in, got, c.want)
		}
	}
}

func TestAltToGDL90(t *testing.T) {
	cases := []struct {
		in   float32
		want uint16
	}{
		{-2000, 0xFFF},
		{-1000, 0x000},
		{-975, 0x001},
		{0, 0x028},
		{1000, 0x050},
		{1025, 0x051},
		{101350, 0xFFE},
		{101351, 0xFFF},
	}
	for _, c := range cases {
		if got := altToGDL90(c.in); got != c.want {
			t.Errorf("altToGDL90(%v) = %#x, want %#x", c.in, got, c.want)
		}
	}
}

func TestCRC16EmptyMessage(t *testing.T) {
	// the standard table's value for a single zero byte, per the GDL90 spec
	// sample program.
	got := crcCompute([]byte{0x00})
	if got != 0x0000 {
		t.Errorf("crcCompute([0x00]) = %#x, want 0x0000", got)
	}
}

func TestPrepareMessageFraming(t *testing.T) {
	msg := []byte{0x00, 0x7E, 0x7D, 0x01}
	out := prepareMessage(append([]byte{}, msg...))

	if out[0] != 0x7E || out[len(out)-1] != 0x7E {
		t.Fatalf("frame must begin and end with 0x7E: % X", out)
	}
	for _, b := range out[1 : len(out)-1] {
		if b == 0x7E {
			t.Fatalf("unescaped 0x7E in frame interior: % X", out)
		}
	}
}

func TestGenerateTraffic(t *testing.T) {
	now := time.Now()
	callsign := "TEST123"
	altitude := sensordata.AltitudeReading{Feet: 12375, Type: sensordata.AltitudeBaro}
	heading := sensordata.HeadingReading{Degrees: 123, Type: sensordata.HeadingTrue}
	speed := sensordata.SpeedReading{Value: 66, Type: sensordata.SpeedGS}
	gnssDelta := int32(1000)
	vs := int16(-1000)
	squawk := uint16(123)
	category := uint8(3)
	latLon := [2]float32{37.750374, -122.52676}
	nic := uint8(7)
	nacp := uint8(9)
	onGround := false

	target := processor.Target{
		Addr:      sensordata.Addr{ICAO: 0xA1B2C3, Type: sensordata.AddressADSBICAO},
		Altitude:  &processor.Timestamped[sensordata.AltitudeReading]{Value: altitude, At: now},
		GNSSDelta: &gnssDelta,
		Heading:   &processor.Timestamped[sensordata.HeadingReading]{Value: heading, At: now},
		Speed:     &processor.Timestamped[sensordata.SpeedReading]{Value: speed, At: now},
		VS:        &processor.Timestamped[int16]{Value: vs, At: now},
		Squawk:    &squawk,
		Callsign:  &callsign,
		Category:  &category,
		LatLon:    &processor.Timestamped[[2]float32]{Value: latLon, At: now},
		NIC:       &nic,
		NACp:      &nacp,
		OnGround:  &onGround,
		LastSeen:  now,
		Source:    sensordata.SourceES,
	}

	want := []byte{
		0x7E, 0x14, 0x00, 0xA1, 0xB2, 0xC3, 0x1A, 0xD8, 0x3F, 0xA8, 0xDE, 0xAF, 0x23, 0xF9,
		0x79, 0x04, 0x2F, 0xF0, 0x57, 0x03, 'e', 'a', 'T', 'E', 'S', 'T', '1', '2', 0x00, 0x4D, 0xDE, 0x7E,
	}
	if got := generateTraffic(target, now, false); !bytes.Equal(got, want) {
		t.Errorf("generateTraffic(pres_alt_valid=false) =\n% X\nwant\n% X", got, want)
	}

	wantPresAlt := []byte{
		0x7E, 0x14, 0x00, 0xA1, 0xB2, 0xC3, 0x1A, 0xD8, 0x3F, 0xA8, 0xDE, 0xAF, 0x21, 0x79,
		0x79, 0x04, 0x2F, 0xF0, 0x57, 0x03, 'e', 'a', 'T', 'E', 'S', 'T', '1', '2', 0x00, 0xEA, 0xC4, 0x7E,
	}
	if got := generateTraffic(target, now, true); !bytes.Equal(got, wantPresAlt) {
		t.Errorf("generateTraffic(pres_alt_valid=true) =\n% X\nwant\n% X", got, wantPresAlt)
	}

	target.Callsign = nil
	wantSquawk := []byte{
		0x7E, 0x14, 0x00, 0xA1, 0xB2, 0xC3, 0x1A, 0xD8, 0x3F, 0xA8, 0xDE, 0xAF, 0x23, 0xF9,
		0x79, 0x04, 0x2F, 0xF0, 0x57, 0x03, 'e', 'a', '0', '1', '2', '3', 0x00, 0x00, 0x00, 0x87, 0xEC, 0x7E,
	}
	if got := generateTraffic(target, now, false); !bytes.Equal(got, wantSquawk) {
		t.Errorf("generateTraffic(squawk fallback) =\n% X\nwant\n% X", got, wantSquawk)
	}
}
