/*
	Copyright (c) 2025 Stratux Development Team
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file.

	protocol.go: the Payload tagged union pushed by the protocol stage and
	drained by the transport stage, and the Protocol stage interface.
*/

package protocol

import (
	"github.com/stratux/pitot/internal/handle"
	"github.com/stratux/pitot/internal/processor"
)

// Payload is one framed, ready-to-send wire message.
type Payload struct {
	// Queueable marks a large, throttle-safe payload (uplink weather)
	// eligible for rate-paced egress and client replay. Non-queueable
	// payloads (heartbeat, ownship, traffic) must ship in the tick they
	// were produced.
	Queueable bool
	Data      []byte
}

// Protocol reads reports pushed since the last tick and emits zero or more
// Payload values for the transport stage.
type Protocol interface {
	Step(h handle.Pushable[Payload], in []processor.Report)
}
