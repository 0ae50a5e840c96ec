/*
	Copyright (c) 2025 Stratux Development Team
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file.

	handle.go: the per-tick Handle and Pushable exposed to every
	pipeline stage. Handle is read-only; Pushable additionally lets
	a stage push into the next stage's queue, and is the only channel
	through which one stage feeds the next.
*/

package handle

import (
	"time"

	"github.com/stratux/pitot/common"
)

// Handle is the read-only context every stage receives for the duration of
// one tick: the tick's wall-clock time, a monotonic instant marking tick
// start, and the configured pipeline frequency.
type Handle interface {
	UTC() time.Time
	Clock() time.Time
	Frequency() uint16
}

// Pushable augments Handle with the ability to push an item of type T into
// the queue the next stage will drain.
type Pushable[T any] interface {
	Handle
	Push(item T)
}

// Basic is the concrete Handle constructed fresh at the start of every tick.
type Basic struct {
	utc   time.Time
	clock time.Time
	freq  uint16
}

// NewBasic captures the current wall-clock time and binds it, together with
// mono's just-ticked monotonic reading, to freq for the duration of one
// tick. The caller ticks mono once per loop iteration, before constructing
// the Basic for that tick.
func NewBasic(freq uint16, mono *common.Monotonic) *Basic {
	return &Basic{
		utc:   time.Now().UTC(),
		clock: mono.Time,
		freq:  freq,
	}
}

func (b *Basic) UTC() time.Time     { return b.utc }
func (b *Basic) Clock() time.Time   { return b.clock }
func (b *Basic) Frequency() uint16  { return b.freq }

// Pusher adapts a Basic handle and a pointer to the destination queue into
// a Pushable[T]. The pipeline constructs one per stage, per tick.
type Pusher[T any] struct {
	*Basic
	queue *[]T
}

// NewPusher builds a Pushable[T] that appends onto *queue.
func NewPusher[T any](h *Basic, queue *[]T) *Pusher[T] {
	return &Pusher[T]{Basic: h, queue: queue}
}

func (p *Pusher[T]) Push(item T) {
	*p.queue = append(*p.queue, item)
}
