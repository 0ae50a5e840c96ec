/*
	Copyright (c) 2025 Stratux Development Team
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file.

	sensor.go: the Sensor stage interface and the non-blocking channel-drain
	idiom every hardware-backed sensor uses to hand data from its own I/O
	goroutine to the pipeline thread.
*/

package sensor

import (
	"github.com/stratux/pitot/internal/handle"
	"github.com/stratux/pitot/internal/sensordata"
)

// Sensor reads from its device (or a channel fed by its own I/O goroutine)
// and pushes zero or more SensorData values for the processor stage.
type Sensor interface {
	Step(h handle.Pushable[sensordata.SensorData])
}

// Drain empties ch into a slice without blocking. This is the only place a
// sensor's Step method may touch its I/O goroutine's handoff channel.
func Drain[T any](ch <-chan T) []T {
	var out []T
	for {
		select {
		case v := <-ch:
			out = append(out, v)
		default:
			return out
		}
	}
}
