/*
	Copyright (c) 2025 Stratux Development Team
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file.
*/

package gnss

import (
	"testing"

	"github.com/adrianmo/go-nmea"

	"github.com/stratux/pitot/internal/sensordata"
)

func TestApplyGGANoFixClearsHaveFix(t *testing.T) {
	n := &NMEA{ch: make(chan sensordata.SensorData, 4), haveFix: true}
	n.applyGGA(nmea.GGA{FixQuality: 0})

	if n.haveFix {
		t.Error("a FixQuality of 0 (no fix) should clear haveFix")
	}
	select {
	case v := <-n.ch:
		t.Errorf("no fix should push nothing, got %#v", v)
	default:
	}
}

func TestApplyGGAPublishesFix(t *testing.T) {
	n := &NMEA{ch: make(chan sensordata.SensorData, 4)}
	n.applyGGA(nmea.GGA{
		FixQuality:    1,
		Latitude:      37.75,
		Longitude:     -122.52,
		Altitude:      100,
		NumSatellites: 9,
	})

	if !n.haveFix {
		t.Fatal("expected haveFix to be set after a valid GGA fix")
	}

	select {
	case v := <-n.ch:
		fix, ok := v.(sensordata.GNSSTimeFix)
		if !ok {
			t.Fatalf("expected a GNSSTimeFix, got %T", v)
		}
		if fix.Fix == nil {
			t.Fatal("expected a populated Fix")
		}
		if fix.Fix.Quality != sensordata.Fix3D {
			t.Errorf("quality = %v, want Fix3D", fix.Fix.Quality)
		}
		if fix.Fix.NumSV != 9 {
			t.Errorf("NumSV = %d, want 9", fix.Fix.NumSV)
		}
	default:
		t.Fatal("expected a fix to be pushed onto the channel")
	}
}

func TestApplyGGASBASQuality(t *testing.T) {
	check := func(g nmea.GGA) {
		n := &NMEA{ch: make(chan sensordata.SensorData, 4)}
		n.applyGGA(g)
		if n.lastFix.Quality != sensordata.FixSBAS {
			t.Errorf("FixQuality %d: quality = %v, want FixSBAS", g.FixQuality, n.lastFix.Quality)
		}
	}
	check(nmea.GGA{FixQuality: 2, NumSatellites: 6})
	check(nmea.GGA{FixQuality: 4, NumSatellites: 6})
	check(nmea.GGA{FixQuality: 5, NumSatellites: 6})
}

func TestApplyRMCIgnoredWithoutPriorFix(t *testing.T) {
	n := &NMEA{ch: make(chan sensordata.SensorData, 4)}
	n.applyRMC(nmea.RMC{Speed: 120, Course: 270})

	select {
	case v := <-n.ch:
		t.Errorf("RMC before any GGA fix should push nothing, got %#v", v)
	default:
	}
}

func TestApplyRMCAfterFixPublishesSpeedAndCourse(t *testing.T) {
	n := &NMEA{ch: make(chan sensordata.SensorData, 4)}
	n.applyGGA(nmea.GGA{FixQuality: 1, Latitude: 37.75, Longitude: -122.52, NumSatellites: 8})
	<-n.ch // drain the GGA push

	n.applyRMC(nmea.RMC{
		Speed:  100,
		Course: 270,
		Date:   nmea.Date{YY: 26, MM: 7, DD: 30},
		Time:   nmea.Time{Hour: 12, Minute: 0, Second: 0},
	})

	select {
	case v := <-n.ch:
		fix, ok := v.(sensordata.GNSSTimeFix)
		if !ok {
			t.Fatalf("expected a GNSSTimeFix, got %T", v)
		}
		if fix.Time == nil {
			t.Fatal("expected RMC to populate a wall-clock time")
		}
		if fix.Fix.TrueCourse.Value != 270 {
			t.Errorf("TrueCourse = %v, want 270", fix.Fix.TrueCourse.Value)
		}
		// 100 kt = 100 * 1852 m / 3600 s = 51444 mm/s (truncated).
		if fix.Fix.GroundSpeed.Value != 51444 {
			t.Errorf("GroundSpeed = %v mm/s, want 51444", fix.Fix.GroundSpeed.Value)
		}
	default:
		t.Fatal("expected a fix to be pushed onto the channel")
	}
}
