/*
	Copyright (c) 2025 Stratux Development Team
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file.

	pipeline.go: wires the sensor, processor, protocol, and transport stages
	into a single-threaded, fixed-rate tick loop. Every tick rebuilds the
	handle, drains each stage into the next's queue, and sleeps off whatever
	time remains in the interval.
*/

package pipeline

import (
	"time"

	"github.com/stratux/pitot/common"
	"github.com/stratux/pitot/internal/handle"
	"github.com/stratux/pitot/internal/metrics"
	"github.com/stratux/pitot/internal/processor"
	"github.com/stratux/pitot/internal/protocol"
	"github.com/stratux/pitot/internal/sensor"
	"github.com/stratux/pitot/internal/sensordata"
	"github.com/stratux/pitot/internal/status"
	"github.com/stratux/pitot/internal/transport"
)

// Pipeline owns every linked stage and drives them at a fixed frequency.
type Pipeline struct {
	sensors    []sensor.Sensor
	processors []processor.Processor
	protocols  []protocol.Protocol
	transports []transport.Transport

	frequency uint16
	interval  time.Duration

	sensorQueue  []sensordata.SensorData
	reportQueue  []processor.Report
	payloadQueue []protocol.Payload

	led  *status.LED
	mono *common.Monotonic
}

// New returns an empty pipeline ticking at freq Hz.
func New(freq uint16) *Pipeline {
	return &Pipeline{
		frequency: freq,
		interval:  time.Duration(1000/int64(freq)) * time.Millisecond,
		mono:      common.NewMonotonic(),
	}
}

// LinkSensor appends s to the sensor stage.
func (p *Pipeline) LinkSensor(s sensor.Sensor) { p.sensors = append(p.sensors, s) }

// LinkProcessor appends pr to the processor stage.
func (p *Pipeline) LinkProcessor(pr processor.Processor) { p.processors = append(p.processors, pr) }

// LinkProtocol appends pr to the protocol stage.
func (p *Pipeline) LinkProtocol(pr protocol.Protocol) { p.protocols = append(p.protocols, pr) }

// LinkTransport appends t to the transport stage.
func (p *Pipeline) LinkTransport(t transport.Transport) { p.transports = append(p.transports, t) }

// UseStatusLED attaches a GPIO heartbeat indicator toggled once per tick.
// Pass nil to disable (the default).
func (p *Pipeline) UseStatusLED(led *status.LED) { p.led = led }

func (p *Pipeline) runSensors(h *handle.Basic) {
	pusher := handle.NewPusher(h, &p.sensorQueue)
	for _, s := range p.sensors {
		s.Step(pusher)
	}
}

func (p *Pipeline) runProcessors(h *handle.Basic) {
	pusher := handle.NewPusher(h, &p.reportQueue)

	common.Log.Debugf("total %d sensor messages to process", len(p.sensorQueue))
	metrics.QueueDepth.WithLabelValues("sensor").Set(float64(len(p.sensorQueue)))

	for _, pr := range p.processors {
		pr.Step(pusher, p.sensorQueue)
	}

	p.sensorQueue = p.sensorQueue[:0]
}

func (p *Pipeline) runProtocols(h *handle.Basic) {
	pusher := handle.NewPusher(h, &p.payloadQueue)

	common.Log.Debugf("total %d report messages to process", len(p.reportQueue))
	metrics.QueueDepth.WithLabelValues("report").Set(float64(len(p.reportQueue)))

	for _, pr := range p.protocols {
		pr.Step(pusher, p.reportQueue)
	}

	p.reportQueue = p.reportQueue[:0]
}

func (p *Pipeline) runTransports(h *handle.Basic) {
	common.Log.Debugf("total %d payload messages to process", len(p.payloadQueue))
	metrics.QueueDepth.WithLabelValues("payload").Set(float64(len(p.payloadQueue)))

	for _, t := range p.transports {
		t.Step(h, p.payloadQueue)
	}

	p.payloadQueue = p.payloadQueue[:0]
}

// Run drives the tick loop forever.
func (p *Pipeline) Run() {
	for {
		before := time.Now()

		p.mono.Tick()
		if !p.mono.HasRealTimeReference() {
			p.mono.SetRealTimeReference(time.Now().UTC())
		}
		h := handle.NewBasic(p.frequency, p.mono)

		p.runSensors(h)
		p.runProcessors(h)
		p.runProtocols(h)
		p.runTransports(h)

		if p.led != nil {
			p.led.Toggle()
		}

		elapsed := time.Since(before)
		metrics.TickDuration.Observe(elapsed.Seconds())

		if elapsed < p.interval {
			time.Sleep(p.interval - elapsed)
		} else {
			metrics.TickOverruns.Inc()
			common.Log.Warn("pipeline: loop unable to keep up with the configured frequency")
		}
	}
}
