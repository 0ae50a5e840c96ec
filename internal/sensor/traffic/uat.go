/*
	Copyright (c) 2025 Stratux Development Team
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file.

	uat.go: a 978 UAT sensor fed by an external demodulator process. It
	emits both downlink ADS-B traffic reports and uplink FIS-B weather/text
	products onto the same serial channel, line-prefixed "-" and "+"
	respectively (the dump978 convention). Uplink payloads are forwarded
	opaquely; only downlink frames are decoded here.
*/

package traffic

import (
	"bufio"
	"encoding/hex"
	"io"
	"os/exec"
	"strings"

	"github.com/stratux/pitot/common"
	"github.com/stratux/pitot/internal/handle"
	"github.com/stratux/pitot/internal/sensor"
	"github.com/stratux/pitot/internal/sensordata"
	"github.com/stratux/pitot/internal/uatparse"
)

// UAT is a Sensor decoding 978MHz UAT downlink traffic and uplink FIS-B
// frames from an external demodulator subprocess's stdout.
type UAT struct {
	cmd *exec.Cmd
	ch  chan sensordata.SensorData
}

// NewUAT launches the demodulator binary at path with args and starts the
// decode goroutine. Returns an error if the process cannot be started -- the
// caller treats this as "device absent".
func NewUAT(path string, args ...string) (*UAT, error) {
	cmd := exec.Command(path, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	u := &UAT{cmd: cmd, ch: make(chan sensordata.SensorData, 256)}
	go u.readLoop(stdout)
	return u, nil
}

func (u *UAT) Step(h handle.Pushable[sensordata.SensorData]) {
	for _, v := range sensor.Drain(u.ch) {
		h.Push(v)
	}
}

func (u *UAT) readLoop(r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 4096), 4096)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line[0] {
		case '+':
			u.handleUplink(line[1:])
		case '-':
			u.handleDownlink(line[1:])
		}
	}
}

func (u *UAT) handleUplink(hexFrame string) {
	hexFrame = strings.TrimSuffix(hexFrame, ";")
	raw, err := hex.DecodeString(hexFrame)
	if err != nil || len(raw) == 0 {
		common.Log.Debug("uat: malformed uplink frame, discarding")
		return
	}
	u.ch <- sensordata.FISB{Payload: raw}
}

func (u *UAT) handleDownlink(hexFrame string) {
	hexFrame = strings.TrimSuffix(hexFrame, ";")
	raw, err := hex.DecodeString(hexFrame)
	if err != nil {
		common.Log.Debug("uat: malformed downlink frame, discarding")
		return
	}

	if report, ok := uatparse.ParseDownlink(raw); ok {
		u.ch <- sensordata.Traffic{Report: report}
	}
}
