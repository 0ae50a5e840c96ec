/*
	Copyright (c) 2025 Stratux Development Team
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file.
*/

package tailnumber

import "testing"

func TestFromICAOKnownVectors(t *testing.T) {
	cases := []struct {
		icao uint32
		reg  string
		ok   bool
	}{
		{0xAA5694, "N76508", true},
		{0xA29CBF, "N268AK", true},
		{0xA66A54, "N512R", true},
		{0xA00001, "N1", true},
		{0xA029D9, "N11", true},
		{0xA18FA9, "N20", true},
		{0x780A2C, "", false},
	}

	for _, c := range cases {
		reg, ok := FromICAO(c.icao)
		if ok != c.ok || reg != c.reg {
			t.Errorf("FromICAO(%#X) = (%q, %v), want (%q, %v)", c.icao, reg, ok, c.reg, c.ok)
		}
	}
}

func TestFromICAOTotality(t *testing.T) {
	// Every address in the US civil block must derive a non-empty N-number,
	// and every address outside any allocated range must report ok=false.
	if _, ok := FromICAO(usCivilStart - 1); ok {
		t.Error("address just below the civil block should not derive a tail number")
	}
	if reg, ok := FromICAO(usCivilStart); !ok || reg == "" {
		t.Error("first civil address should derive a tail number")
	}
	if reg, ok := FromICAO(usCivilEnd); !ok || reg == "" {
		t.Error("last civil address should derive a tail number")
	}
	if reg, ok := FromICAO(usCivilEnd + 1); ok || reg != usMilitaryTail {
		t.Errorf("first non-civil address in the allocation should report (%q, false), got (%q, %v)", usMilitaryTail, reg, ok)
	}
	if reg, ok := FromICAO(usAllocEnd); ok || reg != usMilitaryTail {
		t.Errorf("last allocated address should report (%q, false), got (%q, %v)", usMilitaryTail, reg, ok)
	}
	if _, ok := FromICAO(usAllocEnd + 1); ok {
		t.Error("address just past the allocation should not derive a tail number")
	}
}
