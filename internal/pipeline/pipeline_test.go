/*
	Copyright (c) 2025 Stratux Development Team
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file.
*/

package pipeline

import (
	"testing"

	"github.com/stratux/pitot/internal/handle"
	"github.com/stratux/pitot/internal/processor"
	"github.com/stratux/pitot/internal/protocol"
	"github.com/stratux/pitot/internal/sensordata"
)

// stubSensor pushes one fixed item every Step call, so a test can assert the
// sensor queue is drained to zero once the processor stage has run.
type stubSensor struct{ calls int }

func (s *stubSensor) Step(h handle.Pushable[sensordata.SensorData]) {
	s.calls++
	h.Push(sensordata.Baro{AltitudeFt: 1000})
}

// stubProcessor records how many sensor items it was handed and pushes one
// report per call.
type stubProcessor struct{ seen int }

func (s *stubProcessor) Step(h handle.Pushable[processor.Report], in []sensordata.SensorData) {
	s.seen += len(in)
	h.Push(processor.OwnshipReport{})
}

type stubProtocol struct{ seen int }

func (s *stubProtocol) Step(h handle.Pushable[protocol.Payload], in []processor.Report) {
	s.seen += len(in)
	h.Push(protocol.Payload{Data: []byte{0x01}})
}

type stubTransport struct{ seen int }

func (s *stubTransport) Step(h handle.Handle, in []protocol.Payload) {
	s.seen += len(in)
}

func TestPipelineQueuesDrainedEachTick(t *testing.T) {
	p := New(10)

	sensor := &stubSensor{}
	proc := &stubProcessor{}
	proto := &stubProtocol{}
	transport := &stubTransport{}

	p.LinkSensor(sensor)
	p.LinkProcessor(proc)
	p.LinkProtocol(proto)
	p.LinkTransport(transport)

	runOneTick(p)

	if len(p.sensorQueue) != 0 {
		t.Errorf("sensor queue should be empty after the processor stage runs, has %d items", len(p.sensorQueue))
	}
	if len(p.reportQueue) != 0 {
		t.Errorf("report queue should be empty after the protocol stage runs, has %d items", len(p.reportQueue))
	}
	if len(p.payloadQueue) != 0 {
		t.Errorf("payload queue should be empty after the transport stage runs, has %d items", len(p.payloadQueue))
	}

	if proc.seen != 1 {
		t.Errorf("processor should have seen 1 sensor item, saw %d", proc.seen)
	}
	if proto.seen != 1 {
		t.Errorf("protocol should have seen 1 report, saw %d", proto.seen)
	}
	if transport.seen != 1 {
		t.Errorf("transport should have seen 1 payload, saw %d", transport.seen)
	}
}

func TestPipelineTicksAreIndependent(t *testing.T) {
	p := New(10)
	sensor := &stubSensor{}
	proc := &stubProcessor{}
	p.LinkSensor(sensor)
	p.LinkProcessor(proc)

	runOneTick(p)
	runOneTick(p)

	if sensor.calls != 2 {
		t.Errorf("expected the sensor to be stepped twice, got %d", sensor.calls)
	}
	// Each tick contributes exactly one sensor item; if a prior tick's queue
	// leaked forward, the processor would see more than 1 on the second tick.
	if proc.seen != 2 {
		t.Errorf("expected the processor to have accumulated exactly 2 items across two ticks, got %d", proc.seen)
	}
}

// runOneTick exercises the same four stage calls Run's loop body makes,
// without Run's sleep/overrun bookkeeping or its infinite loop.
func runOneTick(p *Pipeline) {
	p.mono.Tick()
	h := handle.NewBasic(p.frequency, p.mono)
	p.runSensors(h)
	p.runProcessors(h)
	p.runProtocols(h)
	p.runTransports(h)
}
