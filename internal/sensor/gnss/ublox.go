/*
	Copyright (c) 2025 Stratux Development Team
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file.

	ublox.go: reads UBX binary frames off a u-blox GNSS receiver's serial
	port and decodes NAV-PVT (position/velocity/time) and NAV-SAT
	(satellite tracking) messages. Framing and decode run on a dedicated
	I/O goroutine; Step only drains the handoff channel.
*/

package gnss

import (
	"bufio"
	"io"
	"time"

	"github.com/tarm/serial"

	"github.com/stratux/pitot/common"
	"github.com/stratux/pitot/internal/handle"
	"github.com/stratux/pitot/internal/sensor"
	"github.com/stratux/pitot/internal/sensordata"
)

const (
	ubxSync1 = 0xB5
	ubxSync2 = 0x62

	classNAV  = 0x01
	idNAVPVT  = 0x07
	idNAVSAT  = 0x35
)

// UBlox is a Sensor backed by a u-blox GNSS receiver speaking the UBX
// protocol over a serial port.
type UBlox struct {
	port *serial.Port
	ch   chan sensordata.SensorData
}

// NewUBlox opens device at baud and starts the UBX decode goroutine.
// Returns an error if the serial port cannot be opened -- the caller treats
// this as "device absent" and simply does not link the sensor.
func NewUBlox(device string, baud int) (*UBlox, error) {
	port, err := serial.OpenPort(&serial.Config{Name: device, Baud: baud, ReadTimeout: time.Second})
	if err != nil {
		return nil, err
	}

	u := &UBlox{port: port, ch: make(chan sensordata.SensorData, 64)}
	go u.readLoop()
	return u, nil
}

func (u *UBlox) Step(h handle.Pushable[sensordata.SensorData]) {
	for _, v := range sensor.Drain(u.ch) {
		h.Push(v)
	}
}

func (u *UBlox) readLoop() {
	r := bufio.NewReader(u.port)
	for {
		class, id, payload, err := readUBXFrame(r)
		if err != nil {
			if err == io.EOF {
				return
			}
			// read timeout or partial frame: benign, resynchronize on
			// the next sync-byte pair.
			continue
		}

		switch {
		case class == classNAV && id == idNAVPVT && len(payload) >= 92:
			if msg, ok := decodeNavPVT(payload); ok {
				u.ch <- msg
			}
		case class == classNAV && id == idNAVSAT:
			u.ch <- decodeNavSat(payload)
		}
	}
}

// readUBXFrame reads one UBX frame from r: sync(2) class(1) id(1) len(2 LE)
// payload(len) ck_a(1) ck_b(1), verifying the Fletcher-8 checksum.
func readUBXFrame(r *bufio.Reader) (class, id byte, payload []byte, err error) {
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, 0, nil, err
		}
		if b != ubxSync1 {
			continue
		}
		b2, err := r.ReadByte()
		if err != nil {
			return 0, 0, nil, err
		}
		if b2 == ubxSync2 {
			break
		}
	}

	header := make([]byte, 4)
	if _, err := io.ReadFull(r, header); err != nil {
		return 0, 0, nil, err
	}
	class, id = header[0], header[1]
	length := int(header[2]) | int(header[3])<<8

	payload = make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, 0, nil, err
	}

	checksum := make([]byte, 2)
	if _, err := io.ReadFull(r, checksum); err != nil {
		return 0, 0, nil, err
	}

	ckA, ckB := byte(0), byte(0)
	for _, b := range header {
		ckA += b
		ckB += ckA
	}
	for _, b := range payload {
		ckA += b
		ckB += ckA
	}
	if ckA != checksum[0] || ckB != checksum[1] {
		common.Log.Debug("gnss: UBX checksum mismatch, discarding frame")
		return 0, 0, nil, errChecksum
	}

	return class, id, payload, nil
}

var errChecksum = &checksumError{}

type checksumError struct{}

func (*checksumError) Error() string { return "ubx: checksum mismatch" }

func le32(b []byte) int32 { return int32(uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24) }
func leu32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
func leu16(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }

func decodeNavPVT(p []byte) (sensordata.SensorData, bool) {
	valid := p[11]
	if valid&0x03 == 0 { // neither valid date nor valid time
		return nil, false
	}

	year := int(leu16(p[4:6]))
	month := int(p[6])
	day := int(p[7])
	hour := int(p[8])
	min := int(p[9])
	sec := int(p[10])
	t := time.Date(year, time.Month(month), day, hour, min, sec, 0, time.UTC)

	fixType := p[20]
	var quality sensordata.FixQuality
	switch {
	case fixType == 2:
		quality = sensordata.Fix2D
	case fixType == 3:
		quality = sensordata.Fix3D
	case fixType >= 4:
		quality = sensordata.FixSBAS
	default:
		quality = sensordata.FixUnknown
	}

	lon := float32(le32(p[24:28])) * 1e-7
	lat := float32(le32(p[28:32])) * 1e-7
	hMSL := le32(p[36:40])
	hAcc := leu32(p[40:44])
	gSpeed := leu32(p[60:64])
	headMot := float32(le32(p[64:68])) * 1e-5
	sAcc := leu32(p[68:72])
	headAcc := float32(leu32(p[72:76])) * 1e-5
	numSV := p[23]

	fix := &sensordata.Fix{
		Quality:         quality,
		NumSV:           numSV,
		LatLon:          sensordata.WithAccuracy[[2]float32, uint32]([2]float32{lat, lon}, hAcc),
		HeightMSL:       sensordata.WithAccuracy[int32, uint32](hMSL, hAcc),
		HeightEllipsoid: sensordata.WithAccuracy[int32, uint32](le32(p[32:36]), hAcc),
		GroundSpeed:     sensordata.WithAccuracy[uint32, uint32](gSpeed, sAcc),
		TrueCourse:      sensordata.WithAccuracy[float32, float32](headMot, headAcc),
	}
	if quality == sensordata.FixUnknown {
		fix = nil
	}

	return sensordata.GNSSTimeFix{Time: &t, Fix: fix}, true
}

func decodeNavSat(p []byte) sensordata.SensorData {
	if len(p) < 8 {
		return sensordata.GNSSSatelliteInfo{}
	}
	numSvs := int(p[5])
	svs := make([]sensordata.SVStatus, 0, numSvs)

	for i := 0; i < numSvs; i++ {
		off := 8 + i*12
		if off+12 > len(p) {
			break
		}
		gnssID := p[off]
		svID := p[off+1]
		cno := p[off+2]
		elev := int8(p[off+3])
		azim := leu16(p[off+4 : off+6])
		flags := leu32(p[off+8 : off+12])

		healthy := flags&0x30>>4 == 1
		acquired := flags&0x08 != 0
		used := flags&0x08 != 0

		svs = append(svs, sensordata.SVStatus{
			System:       gnssConstellation(gnssID),
			SVID:         svID,
			SignalDBHz:   &cno,
			ElevationDeg: &elev,
			AzimuthDeg:   &azim,
			Healthy:      &healthy,
			Acquired:     acquired,
			InSolution:   used,
		})
	}

	return sensordata.GNSSSatelliteInfo{Satellites: svs}
}

func gnssConstellation(ubxGNSSID byte) sensordata.Constellation {
	switch ubxGNSSID {
	case 0:
		return sensordata.ConstellationGPS
	case 1:
		return sensordata.ConstellationSBAS
	case 2:
		return sensordata.ConstellationGalileo
	case 6:
		return sensordata.ConstellationGLONASS
	default:
		return sensordata.ConstellationUnknown
	}
}
