/*
	Copyright (c) 2025 Stratux Development Team
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file.
*/

package processor

import (
	"testing"

	"github.com/stratux/pitot/internal/sensordata"
)

func fixWithAccuracy(accMillimeters uint32) sensordata.Fix {
	acc := accMillimeters
	return sensordata.Fix{
		LatLon:          sensordata.Reading[[2]float32, uint32]{Value: [2]float32{37.0, -122.0}, Accuracy: &acc},
		HeightMSL:       sensordata.NewReading[int32, uint32](1000),
		HeightEllipsoid: sensordata.NewReading[int32, uint32](1000),
		GroundSpeed:     sensordata.NewReading[uint32, uint32](0),
		TrueCourse:      sensordata.NewReading[float32, float32](0),
	}
}

func TestApplyFixNACpStepwise(t *testing.T) {
	cases := []struct {
		accMM      uint32
		wantNIC    uint8
		wantNACp   uint8
	}{
		{2000, 9, 11},    // < 3m
		{9000, 9, 10},    // < 10m
		{29000, 9, 9},    // < 30m
		{92000, 9, 8},    // < 92.6m
		{185000, 9, 7},   // < 185.2m
		{555000, 9, 6},   // < 555.6m
		{600000, 9, 0},   // >= 555.6m
	}

	for _, c := range cases {
		p := NewOwnshipProcessor()
		p.applyFix(fixWithAccuracy(c.accMM))
		if p.state.NIC != c.wantNIC || p.state.NACp != c.wantNACp {
			t.Errorf("accuracy %dmm: NIC/NACp = %d/%d, want %d/%d",
				c.accMM, p.state.NIC, p.state.NACp, c.wantNIC, c.wantNACp)
		}
	}
}

func TestApplyFixNoAccuracyZeroesNICNACp(t *testing.T) {
	p := NewOwnshipProcessor()
	f := fixWithAccuracy(0)
	f.LatLon.Accuracy = nil
	p.applyFix(f)
	if p.state.NIC != 0 || p.state.NACp != 0 {
		t.Errorf("NIC/NACp = %d/%d, want 0/0 with no accuracy figure", p.state.NIC, p.state.NACp)
	}
}

func TestApplyFixSetsValid(t *testing.T) {
	p := NewOwnshipProcessor()
	if p.state.Valid {
		t.Fatal("a fresh processor should not start valid")
	}
	p.applyFix(fixWithAccuracy(1000))
	if !p.state.Valid {
		t.Error("applying a fix should latch Valid true")
	}
}

func TestApplyBaroFirstSampleNoVS(t *testing.T) {
	p := NewOwnshipProcessor()
	p.applyBaro(1000, 0.1)
	if p.state.VS != nil {
		t.Error("the first barometric sample has no prior reading to derive VS from")
	}
	if p.state.PressureAltitude == nil || *p.state.PressureAltitude != 1000 {
		t.Fatal("expected pressure altitude to be recorded")
	}
}

func TestApplyBaroClimbProducesPositiveVS(t *testing.T) {
	p := NewOwnshipProcessor()
	dt := float32(1.0)
	p.applyBaro(1000, dt)
	for i := 0; i < 20; i++ {
		p.applyBaro(1000+int32(i+1)*100, dt)
	}
	if p.state.VS == nil {
		t.Fatal("expected VS to be populated after a sustained climb")
	}
	if *p.state.VS <= 0 {
		t.Errorf("VS = %d, expected a positive climb rate", *p.state.VS)
	}
}
