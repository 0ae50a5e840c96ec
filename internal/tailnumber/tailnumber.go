/*
	Copyright (c) 2025 Stratux Development Team
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file.

	tailnumber.go: derives a US civil N-number from an ICAO 24-bit
	address. The FAA allocates 0xA00001-0xADF7C7 to civil aircraft using
	a fixed base-25/base-26 mixed-radix encoding over the alphabet
	"ABCDEFGHJKLMNPQRSTUVWXYZ" (I and O excluded to avoid confusion with
	1 and 0); 0xADF7C8-0xAFFFFF is reserved for US military and other
	non-civil use.
*/

package tailnumber

const limitedAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ"

const (
	usCivilStart   = 0xA00001
	usCivilEnd     = 0xADF7C7
	usAllocEnd     = 0xAFFFFF
	usMilitaryTail = "US-MIL"
)

// FromICAO derives a US N-number from icao. ok is false when icao falls
// outside the US civil allocation; reg is then either empty (icao entirely
// outside the US block) or "US-MIL" (icao in the non-civil tail of the
// block).
func FromICAO(icao uint32) (reg string, ok bool) {
	if icao < usCivilStart || icao > usAllocEnd {
		return "", false
	}
	if icao > usCivilEnd {
		return usMilitaryTail, false
	}

	var b []byte
	b = append(b, 'N')

	offset := icao - usCivilStart
	if offset > 915399 {
		return "", false
	}

	b = append(b, byte('0')+byte(offset/101711+1))
	offset %= 101711
	if offset <= 600 {
		return string(appendLetters(b, offset)), true
	}
	offset -= 601

	b = append(b, byte('0')+byte(offset/10111))
	offset %= 10111
	if offset <= 600 {
		return string(appendLetters(b, offset)), true
	}
	offset -= 601

	b = append(b, byte('0')+byte(offset/951))
	offset %= 951
	if offset <= 600 {
		return string(appendLetters(b, offset)), true
	}
	offset -= 601

	b = append(b, byte('0')+byte(offset/35))
	offset %= 35
	if offset <= 24 {
		if offset != 0 {
			b = append(b, limitedAlphabet[offset-1])
		}
		return string(b), true
	}
	offset -= 25

	b = append(b, byte('0')+byte(offset))
	return string(b), true
}

// appendLetters appends the one- or two-letter suffix encoded by rem onto
// reg, following the same mixed-radix scheme the FAA uses for the tail of
// each N-number.
func appendLetters(reg []byte, rem uint32) []byte {
	if rem == 0 {
		return reg
	}
	rem--
	reg = append(reg, limitedAlphabet[rem/25])

	rem %= 25
	if rem == 0 {
		return reg
	}
	rem--
	reg = append(reg, limitedAlphabet[rem])
	return reg
}
