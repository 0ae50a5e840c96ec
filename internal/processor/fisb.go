/*
	Copyright (c) 2025 Stratux Development Team
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file.

	fisb.go: FIS-B uplinks are forwarded byte-for-byte. The receiver does
	not decode weather/NOTAM products -- that is the EFB's job -- it only
	needs to get the uplink frame to the GDL90 protocol stage intact.
*/

package processor

import (
	"github.com/stratux/pitot/internal/handle"
	"github.com/stratux/pitot/internal/sensordata"
)

// FISBProcessor passes FIS-B uplink payloads through to the protocol stage
// unmodified.
type FISBProcessor struct{}

// NewFISBProcessor returns a new pass-through FIS-B processor.
func NewFISBProcessor() *FISBProcessor {
	return &FISBProcessor{}
}

func (p *FISBProcessor) Step(h handle.Pushable[Report], in []sensordata.SensorData) {
	for _, e := range in {
		v, ok := e.(sensordata.FISB)
		if !ok {
			continue
		}
		h.Push(FISBReport{Payload: v.Payload})
	}
}
