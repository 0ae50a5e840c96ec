/*
	Copyright (c) 2025 Stratux Development Team
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file.

	led.go: toggles a GPIO status LED once per pipeline tick so a glance at
	the hardware confirms the loop is alive. Absent a real GPIO header (any
	non-Raspberry-Pi host), Open fails and the LED becomes a no-op -- the
	same "device absent, don't link it" treatment every other sensor gets.
*/

package status

import "github.com/stianeikeland/go-rpio/v4"

// LED drives a single GPIO pin as a heartbeat indicator.
type LED struct {
	pin rpio.Pin
	on  bool
}

// NewLED opens the GPIO memory range and configures pin as an output.
// Returns an error if /dev/gpiomem is unavailable, e.g. when not running on
// a Raspberry Pi.
func NewLED(pin int) (*LED, error) {
	if err := rpio.Open(); err != nil {
		return nil, err
	}
	p := rpio.Pin(pin)
	p.Output()
	return &LED{pin: p}, nil
}

// Toggle flips the LED state. Intended to be called once per tick so the
// indicator blinks at the pipeline's configured frequency.
func (l *LED) Toggle() {
	l.on = !l.on
	if l.on {
		l.pin.High()
	} else {
		l.pin.Low()
	}
}

// Close releases the GPIO memory range.
func (l *LED) Close() {
	l.pin.Low()
	rpio.Close()
}
