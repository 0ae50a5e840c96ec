/*
	Copyright (c) 2025 Stratux Development Team
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file.
*/

package processor

import (
	"testing"
	"time"

	"github.com/stratux/pitot/internal/sensordata"
)

// fakeHandle is a minimal handle.Pushable[Report] for driving a
// TrafficProcessor one tick at a time under test control.
type fakeHandle struct {
	now  time.Time
	freq uint16
	out  []Report
}

func (h *fakeHandle) UTC() time.Time    { return h.now }
func (h *fakeHandle) Clock() time.Time  { return h.now }
func (h *fakeHandle) Frequency() uint16 { return h.freq }
func (h *fakeHandle) Push(r Report)     { h.out = append(h.out, r) }

func altReading(ft int32) *sensordata.AltitudeReading {
	return &sensordata.AltitudeReading{Feet: ft, Type: sensordata.AltitudeBaro}
}

func TestTrafficADSBLockout(t *testing.T) {
	p := NewTrafficProcessor()
	base := time.Now()

	h := &fakeHandle{now: base, freq: 10}
	p.Step(h, []sensordata.SensorData{sensordata.Traffic{Report: sensordata.TrafficReport{
		Addr:     sensordata.Addr{ICAO: 0xA1B2C3, Type: sensordata.AddressADSBICAO},
		Altitude: altReading(10000),
	}}})

	target := p.situation[0xA1B2C3]
	if target.Addr.Type != sensordata.AddressADSBICAO {
		t.Fatal("expected target to be recorded as ADS-B")
	}

	// An ADS-R update for the same ICAO one second later must be rejected
	// while the direct ADS-B lockout (2s) is in effect.
	h2 := &fakeHandle{now: base.Add(1 * time.Second), freq: 10}
	p.Step(h2, []sensordata.SensorData{sensordata.Traffic{Report: sensordata.TrafficReport{
		Addr:     sensordata.Addr{ICAO: 0xA1B2C3, Type: sensordata.AddressADSRICAO},
		Altitude: altReading(20000),
	}}})

	target = p.situation[0xA1B2C3]
	if target.Addr.Type != sensordata.AddressADSBICAO {
		t.Errorf("ADS-R update within lockout window should be rejected, got address type %v", target.Addr.Type)
	}
	if target.Altitude.Value.Feet != 10000 {
		t.Errorf("altitude should be unchanged by the rejected update, got %d", target.Altitude.Value.Feet)
	}

	// Once the lockout window has elapsed, the ADS-R update is accepted.
	h3 := &fakeHandle{now: base.Add(2 * time.Second), freq: 10}
	p.Step(h3, []sensordata.SensorData{sensordata.Traffic{Report: sensordata.TrafficReport{
		Addr:     sensordata.Addr{ICAO: 0xA1B2C3, Type: sensordata.AddressADSRICAO},
		Altitude: altReading(20000),
	}}})

	target = p.situation[0xA1B2C3]
	if target.Addr.Type != sensordata.AddressADSRICAO {
		t.Errorf("ADS-R update at/after the lockout window should be accepted, got address type %v", target.Addr.Type)
	}
	if target.Altitude.Value.Feet != 20000 {
		t.Errorf("altitude should reflect the accepted update, got %d", target.Altitude.Value.Feet)
	}
}

func TestTrafficLastSeenNeverDecreases(t *testing.T) {
	p := NewTrafficProcessor()
	base := time.Now()

	h := &fakeHandle{now: base, freq: 10}
	p.Step(h, []sensordata.SensorData{sensordata.Traffic{Report: sensordata.TrafficReport{
		Addr: sensordata.Addr{ICAO: 0x123456, Type: sensordata.AddressADSBICAO},
	}}})
	firstSeen := p.situation[0x123456].LastSeen

	h2 := &fakeHandle{now: base.Add(500 * time.Millisecond), freq: 10}
	p.Step(h2, []sensordata.SensorData{sensordata.Traffic{Report: sensordata.TrafficReport{
		Addr: sensordata.Addr{ICAO: 0x123456, Type: sensordata.AddressADSBICAO},
	}}})
	secondSeen := p.situation[0x123456].LastSeen

	if secondSeen.Before(firstSeen) {
		t.Errorf("last_seen went backwards: %v then %v", firstSeen, secondSeen)
	}
}

func TestTrafficCleanupAfterSixtySeconds(t *testing.T) {
	p := NewTrafficProcessor()
	base := time.Now()

	h := &fakeHandle{now: base, freq: 10}
	p.Step(h, []sensordata.SensorData{sensordata.Traffic{Report: sensordata.TrafficReport{
		Addr: sensordata.Addr{ICAO: 0xABCDEF, Type: sensordata.AddressADSBICAO},
	}}})
	if _, ok := p.situation[0xABCDEF]; !ok {
		t.Fatal("expected the target to be recorded")
	}

	// Cleanup runs at 0.1 Hz; at 10 Hz that means once every 100 ticks. Drive
	// enough ticks, 61 seconds after the last sighting, to cross that boundary.
	target := base.Add(61 * time.Second)
	for i := 0; i < 100; i++ {
		tick := &fakeHandle{now: target, freq: 10}
		p.Step(tick, nil)
	}

	if _, ok := p.situation[0xABCDEF]; ok {
		t.Error("expected the stale target to be culled after 60s with no updates")
	}
}

func TestTrafficAssignsCallsignFromICAO(t *testing.T) {
	p := NewTrafficProcessor()
	h := &fakeHandle{now: time.Now(), freq: 10}
	p.Step(h, []sensordata.SensorData{sensordata.Traffic{Report: sensordata.TrafficReport{
		Addr: sensordata.Addr{ICAO: 0xAA5694, Type: sensordata.AddressADSBICAO},
	}}})

	target := p.situation[0xAA5694]
	if target.Callsign == nil || *target.Callsign != "N76508" {
		t.Errorf("expected derived callsign N76508, got %v", target.Callsign)
	}
}

func TestTrafficEmitSortedByICAO(t *testing.T) {
	p := NewTrafficProcessor()
	base := time.Now()

	h := &fakeHandle{now: base, freq: 1}
	p.Step(h, []sensordata.SensorData{
		sensordata.Traffic{Report: sensordata.TrafficReport{
			Addr:     sensordata.Addr{ICAO: 0xC00000, Type: sensordata.AddressADSBICAO},
			Altitude: altReading(5000),
		}},
		sensordata.Traffic{Report: sensordata.TrafficReport{
			Addr:     sensordata.Addr{ICAO: 0xA00000, Type: sensordata.AddressADSBICAO},
			Altitude: altReading(5000),
		}},
		sensordata.Traffic{Report: sensordata.TrafficReport{
			Addr:     sensordata.Addr{ICAO: 0xB00000, Type: sensordata.AddressADSBICAO},
			Altitude: altReading(5000),
		}},
	})

	var seen []uint32
	for _, r := range h.out {
		if tr, ok := r.(TrafficTargetReport); ok {
			seen = append(seen, tr.Target.Addr.ICAO)
		}
	}
	if len(seen) != 3 {
		t.Fatalf("expected 3 fresh targets emitted, got %d", len(seen))
	}
	for i := 1; i < len(seen); i++ {
		if seen[i-1] >= seen[i] {
			t.Errorf("expected ascending ICAO order, got %06X then %06X", seen[i-1], seen[i])
		}
	}
}
