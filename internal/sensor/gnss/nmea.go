/*
	Copyright (c) 2025 Stratux Development Team
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file.

	nmea.go: a GNSS sensor for receivers that only speak NMEA 0183 rather
	than a binary protocol such as UBX. GGA supplies the position/altitude
	fix, RMC supplies ground speed and track; each sentence is pushed as its
	own GNSSTimeFix since the two rarely arrive in the same line.
*/

package gnss

import (
	"bufio"
	"io"
	"time"

	"github.com/adrianmo/go-nmea"
	"github.com/tarm/serial"

	"github.com/stratux/pitot/common"
	"github.com/stratux/pitot/internal/handle"
	"github.com/stratux/pitot/internal/sensor"
	"github.com/stratux/pitot/internal/sensordata"
)

// NMEA is a Sensor backed by a GNSS receiver speaking plain NMEA 0183 over a
// serial port.
type NMEA struct {
	port *serial.Port
	ch   chan sensordata.SensorData

	lastFix sensordata.Fix
	haveFix bool
}

// NewNMEA opens device at baud and starts the sentence decode goroutine.
// Returns an error if the serial port cannot be opened -- the caller treats
// this as "device absent".
func NewNMEA(device string, baud int) (*NMEA, error) {
	port, err := serial.OpenPort(&serial.Config{Name: device, Baud: baud, ReadTimeout: time.Second})
	if err != nil {
		return nil, err
	}

	n := &NMEA{port: port, ch: make(chan sensordata.SensorData, 64)}
	go n.readLoop()
	return n, nil
}

func (n *NMEA) Step(h handle.Pushable[sensordata.SensorData]) {
	for _, v := range sensor.Drain(n.ch) {
		h.Push(v)
	}
}

func (n *NMEA) readLoop() {
	r := bufio.NewReader(n.port)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return
			}
			continue
		}

		s, err := nmea.Parse(line)
		if err != nil {
			continue
		}

		switch s.DataType() {
		case nmea.TypeGGA:
			n.applyGGA(s.(nmea.GGA))
		case nmea.TypeRMC:
			n.applyRMC(s.(nmea.RMC))
		}
	}
}

func (n *NMEA) applyGGA(s nmea.GGA) {
	quality := sensordata.FixUnknown
	switch s.FixQuality {
	case 1:
		quality = sensordata.Fix3D
	case 2, 4, 5:
		quality = sensordata.FixSBAS
	}
	if quality == sensordata.FixUnknown {
		n.haveFix = false
		return
	}

	n.lastFix.Quality = quality
	n.lastFix.NumSV = uint8(s.NumSatellites)
	n.lastFix.LatLon = sensordata.NewReading[[2]float32, uint32](
		[2]float32{float32(s.Latitude), float32(s.Longitude)})
	n.lastFix.HeightMSL = sensordata.NewReading[int32, uint32](int32(s.Altitude * 1000))
	n.haveFix = true

	n.ch <- sensordata.GNSSTimeFix{Fix: cloneFix(n.lastFix)}
}

func (n *NMEA) applyRMC(s nmea.RMC) {
	if !n.haveFix {
		return
	}

	n.lastFix.GroundSpeed = sensordata.NewReading[uint32, uint32](
		uint32(s.Speed * 1852.0 / 3600.0 * 1000))
	n.lastFix.TrueCourse = sensordata.NewReading[float32, float32](float32(s.Course))

	t := time.Date(s.Date.YY+2000, time.Month(s.Date.MM), s.Date.DD,
		s.Time.Hour, s.Time.Minute, s.Time.Second, 0, time.UTC)

	n.ch <- sensordata.GNSSTimeFix{Time: &t, Fix: cloneFix(n.lastFix)}
}

func cloneFix(f sensordata.Fix) *sensordata.Fix {
	fc := f
	return &fc
}
