/*
	Copyright (c) 2025 Stratux Development Team
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file.

	main.go: wires sensors, processors, protocols, and a transport into a
	pipeline and runs it. Absent hardware (no GNSS receiver on the
	configured port, no demodulator binary, no I2C bus) is not fatal --
	each sensor's constructor failure is logged and that sensor is simply
	not linked.
*/

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/kidoman/embd"
	"github.com/takama/daemon"

	"github.com/stratux/pitot/common"
	"github.com/stratux/pitot/internal/metrics"
	"github.com/stratux/pitot/internal/pipeline"
	"github.com/stratux/pitot/internal/processor"
	"github.com/stratux/pitot/internal/protocol/gdl90"
	"github.com/stratux/pitot/internal/protocol/websocket"
	"github.com/stratux/pitot/internal/sensor/baro"
	"github.com/stratux/pitot/internal/sensor/gnss"
	"github.com/stratux/pitot/internal/sensor/traffic"
	"github.com/stratux/pitot/internal/status"
	"github.com/stratux/pitot/internal/transport/udp"
)

const serviceName = "pitot"
const serviceDescription = "aviation information receiver and GDL90/websocket broadcaster"

var (
	freq        = flag.Uint("freq", 10, "pipeline tick frequency in Hz")
	gnssDevice  = flag.String("gnss-device", "/dev/ttyACM0", "u-blox GNSS serial device (UBX protocol)")
	gnssBaud    = flag.Int("gnss-baud", 9600, "u-blox GNSS serial baud rate")
	nmeaDevice  = flag.String("nmea-device", "", "fallback NMEA GNSS serial device; empty disables")
	nmeaBaud    = flag.Int("nmea-baud", 4800, "NMEA GNSS serial baud rate")
	esPath      = flag.String("es-demod", "/usr/bin/dump1090", "1090ES demodulator binary")
	uatPath     = flag.String("uat-demod", "/usr/bin/dump978", "978 UAT demodulator binary")
	wsAddr      = flag.String("ws-addr", "0.0.0.0:9001", "websocket JSON feed bind address")
	metricsAddr = flag.String("metrics-addr", "0.0.0.0:9002", "Prometheus metrics bind address; empty disables")
	statusPin   = flag.Int("status-led-pin", -1, "GPIO pin for the tick heartbeat LED; negative disables")
	debug       = flag.Bool("debug", false, "enable debug logging")
)

func main() {
	if len(os.Args) > 1 && isServiceCommand(os.Args[1]) {
		runServiceCommand(os.Args[1])
		return
	}

	flag.Parse()
	common.SetDebug(*debug)

	if !common.IsRunningAsRoot() {
		common.Log.Warn("main: not running as root; serial, I2C, and raw socket sensors may fail to open")
	}

	p := pipeline.New(uint16(*freq))

	linkSensors(p)

	p.LinkProcessor(processor.NewOwnshipProcessor())
	p.LinkProcessor(processor.NewClockProcessor())
	p.LinkProcessor(processor.NewTrafficProcessor())
	p.LinkProcessor(processor.NewFISBProcessor())
	p.LinkProcessor(processor.NewGNSSStatusProcessor())

	p.LinkProtocol(gdl90.New())
	p.LinkProtocol(websocket.New(*wsAddr))

	p.LinkTransport(udp.New())

	if *statusPin >= 0 {
		if led, err := status.NewLED(*statusPin); err != nil {
			common.Log.Infof("main: status LED unavailable: %v", err)
		} else {
			p.UseStatusLED(led)
		}
	}

	if *metricsAddr != "" {
		go func() {
			if err := metrics.Serve(*metricsAddr); err != nil {
				common.Log.Errorf("main: metrics server stopped: %v", err)
			}
		}()
	}

	p.Run()
}

func linkSensors(p *pipeline.Pipeline) {
	if g, err := gnss.NewUBlox(*gnssDevice, *gnssBaud); err != nil {
		common.Log.Infof("main: u-blox GNSS unavailable: %v", err)
	} else {
		p.LinkSensor(g)
	}

	if *nmeaDevice != "" {
		if g, err := gnss.NewNMEA(*nmeaDevice, *nmeaBaud); err != nil {
			common.Log.Infof("main: NMEA GNSS unavailable: %v", err)
		} else {
			p.LinkSensor(g)
		}
	}

	if err := embd.InitI2C(); err != nil {
		common.Log.Infof("main: I2C bus unavailable: %v", err)
	} else if bus, err := embd.NewI2CBus(1); err != nil {
		common.Log.Infof("main: I2C bus 1 unavailable: %v", err)
	} else if b, err := baro.NewBMP280(bus); err != nil {
		common.Log.Infof("main: BMP280 barometer unavailable: %v", err)
	} else {
		p.LinkSensor(b)
	}

	if e, err := traffic.NewES(*esPath); err != nil {
		common.Log.Infof("main: 1090ES demodulator unavailable: %v", err)
	} else {
		p.LinkSensor(e)
	}

	if u, err := traffic.NewUAT(*uatPath); err != nil {
		common.Log.Infof("main: 978 UAT demodulator unavailable: %v", err)
	} else {
		p.LinkSensor(u)
	}
}

func isServiceCommand(arg string) bool {
	switch arg {
	case "install", "remove", "start", "stop", "status":
		return true
	}
	return false
}

// runServiceCommand installs/controls pitot as a host service rather than
// running the pipeline directly.
func runServiceCommand(cmd string) {
	d, err := daemon.New(serviceName, serviceDescription, daemon.SystemDaemon)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pitot: %v\n", err)
		os.Exit(1)
	}

	var out string
	switch cmd {
	case "install":
		out, err = d.Install(os.Args[2:]...)
	case "remove":
		out, err = d.Remove()
	case "start":
		out, err = d.Start()
	case "stop":
		out, err = d.Stop()
	case "status":
		out, err = d.Status()
	}

	fmt.Println(out)
	if err != nil {
		os.Exit(1)
	}
}
