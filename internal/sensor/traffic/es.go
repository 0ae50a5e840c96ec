/*
	Copyright (c) 2025 Stratux Development Team
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file.

	es.go: a 1090ES traffic sensor fed by an external demodulator process
	(dump1090-style) emitting one raw AVR frame per line ("*8D4840D6...;").
	Demodulation and bit-sync live entirely in that external process; this
	sensor only decodes already-framed, already-validated ME fields.
*/

package traffic

import (
	"bufio"
	"encoding/hex"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/stratux/pitot/common"
	"github.com/stratux/pitot/internal/handle"
	"github.com/stratux/pitot/internal/sensor"
	"github.com/stratux/pitot/internal/sensordata"
)

const cprPairWindow = 10 * time.Second

// ES is a Sensor decoding 1090ES extended squitter frames from an external
// demodulator subprocess's stdout.
type ES struct {
	cmd *exec.Cmd
	ch  chan sensordata.SensorData

	evenCPR map[uint32]cprFrame
	oddCPR  map[uint32]cprFrame
}

// NewES launches the demodulator binary at path with args and starts the
// decode goroutine. Returns an error if the process cannot be started --
// the caller treats this as "device absent".
func NewES(path string, args ...string) (*ES, error) {
	cmd := exec.Command(path, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	e := &ES{
		cmd:     cmd,
		ch:      make(chan sensordata.SensorData, 256),
		evenCPR: make(map[uint32]cprFrame),
		oddCPR:  make(map[uint32]cprFrame),
	}
	go e.readLoop(stdout)
	return e, nil
}

func (e *ES) Step(h handle.Pushable[sensordata.SensorData]) {
	for _, v := range sensor.Drain(e.ch) {
		h.Push(v)
	}
}

func (e *ES) readLoop(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		line = strings.TrimPrefix(line, "*")
		line = strings.TrimSuffix(line, ";")
		if len(line) != 28 {
			continue // not a DF17/18 extended squitter frame
		}

		raw, err := hex.DecodeString(line)
		if err != nil {
			common.Log.Debug("es: malformed hex frame, discarding")
			continue
		}

		if report, ok := e.decode(raw); ok {
			e.ch <- sensordata.Traffic{Report: report}
		}
	}
}

func (e *ES) decode(raw []byte) (sensordata.TrafficReport, bool) {
	f, ok := parseModeSFrame(raw)
	if !ok || (f.df != 17 && f.df != 18) {
		return sensordata.TrafficReport{}, false
	}

	report := sensordata.TrafficReport{
		Addr:   sensordata.Addr{ICAO: f.icao, Type: addrTypeFor(f.df)},
		Source: sensordata.SourceES,
	}

	tc := f.typeCode()
	now := time.Now()

	switch {
	case tc >= 1 && tc <= 4:
		callsign, category := decodeIdentification(f)
		if callsign != "" {
			report.Callsign = &callsign
		}
		report.Category = &category

	case (tc >= 9 && tc <= 18) || (tc >= 20 && tc <= 22):
		if feet, ok := decodeAltitude(f); ok {
			typ := sensordata.AltitudeBaro
			if tc >= 20 {
				typ = sensordata.AltitudeGNSS
			}
			report.Altitude = &sensordata.AltitudeReading{Feet: feet, Type: typ}
		}

		latCPR := uint32(f.me[2]&0x03)<<15 | uint32(f.me[3])<<7 | uint32(f.me[4])>>1
		lonCPR := uint32(f.me[4]&0x01)<<16 | uint32(f.me[5])<<8 | uint32(f.me[6])
		odd := f.me[2]&0x04 != 0

		frame := cprFrame{lat: latCPR, lon: lonCPR, odd: odd, at: now}
		if odd {
			e.oddCPR[f.icao] = frame
		} else {
			e.evenCPR[f.icao] = frame
		}

		if ev, ok1 := e.evenCPR[f.icao]; ok1 {
			if od, ok2 := e.oddCPR[f.icao]; ok2 {
				if now.Sub(ev.at) <= cprPairWindow && now.Sub(od.at) <= cprPairWindow {
					if lat, lon, ok3 := decodeCPRPair(ev, od); ok3 {
						report.LatLon = &[2]float32{lat, lon}
					}
				}
			}
		}

	case tc == 19:
		gs, hdg, vs, hasGS, hasHeading, hasVS := decodeVelocity(f)
		if hasGS {
			report.Speed = &sensordata.SpeedReading{Value: gs, Type: sensordata.SpeedGS}
		}
		if hasHeading {
			report.Heading = &sensordata.HeadingReading{Degrees: hdg, Type: sensordata.HeadingTrue}
		}
		if hasVS {
			report.VS = &vs
		}
	}

	return report, true
}
