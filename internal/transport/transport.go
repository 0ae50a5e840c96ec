/*
	Copyright (c) 2025 Stratux Development Team
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file.

	transport.go: the Transport stage interface. Transport is the pipeline's
	terminal stage -- it reads framed payloads and ships them out; it has
	nothing further to push.
*/

package transport

import (
	"github.com/stratux/pitot/internal/handle"
	"github.com/stratux/pitot/internal/protocol"
)

// Transport reads payloads pushed since the last tick and delivers them to
// the outside world.
type Transport interface {
	Step(h handle.Handle, in []protocol.Payload)
}
