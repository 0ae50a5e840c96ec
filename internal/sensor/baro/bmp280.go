/*
	Copyright (c) 2025 Stratux Development Team
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file.

	bmp280.go: reads pressure from a Bosch BMP280 over I2C and converts it
	to a standard-atmosphere pressure altitude in feet. Compensation
	constants and formula follow the BMP280 datasheet (Bosch Sensortec,
	rev 1.23), using its double-precision floating-point compensation.
*/

package baro

import (
	"errors"
	"math"

	"github.com/kidoman/embd"

	"github.com/stratux/pitot/internal/handle"
	"github.com/stratux/pitot/internal/sensordata"
)

const (
	bmp280Addr = 0x76

	regCalibStart = 0x88
	regCtrlMeas   = 0xF4
	regConfig     = 0xF5
	regPressMSB   = 0xF7
)

type calibration struct {
	dig_T1 uint16
	dig_T2 int16
	dig_T3 int16
	dig_P1 uint16
	dig_P2 int16
	dig_P3 int16
	dig_P4 int16
	dig_P5 int16
	dig_P6 int16
	dig_P7 int16
	dig_P8 int16
	dig_P9 int16
}

// BMP280 is a Sensor reading pressure altitude off a BMP280 barometer.
type BMP280 struct {
	bus  embd.I2CBus
	addr byte
	cal  calibration
}

// NewBMP280 opens the device at bmp280Addr on bus, reads the factory calibration block, and
// configures normal-mode sampling. Returns an error if the device does not
// respond -- the caller treats this as "device absent".
func NewBMP280(bus embd.I2CBus) (*BMP280, error) {
	b := &BMP280{bus: bus, addr: bmp280Addr}

	if err := b.readCalibration(); err != nil {
		return nil, err
	}

	// normal mode, temperature/pressure oversampling x1, standby 0.5ms
	if err := bus.WriteByteToReg(b.addr, regCtrlMeas, 0x27); err != nil {
		return nil, err
	}
	if err := bus.WriteByteToReg(b.addr, regConfig, 0x00); err != nil {
		return nil, err
	}

	return b, nil
}

func (b *BMP280) readCalibration() error {
	buf := make([]byte, 24)
	for i := range buf {
		v, err := b.bus.ReadByteFromReg(b.addr, byte(regCalibStart+i))
		if err != nil {
			return err
		}
		buf[i] = v
	}

	u16 := func(off int) uint16 { return uint16(buf[off]) | uint16(buf[off+1])<<8 }
	i16 := func(off int) int16 { return int16(u16(off)) }

	b.cal = calibration{
		dig_T1: u16(0), dig_T2: i16(2), dig_T3: i16(4),
		dig_P1: u16(6), dig_P2: i16(8), dig_P3: i16(10),
		dig_P4: i16(12), dig_P5: i16(14), dig_P6: i16(16),
		dig_P7: i16(18), dig_P8: i16(20), dig_P9: i16(22),
	}
	return nil
}

func (b *BMP280) Step(h handle.Pushable[sensordata.SensorData]) {
	pressurePa, err := b.readPressure()
	if err != nil {
		return // transient I/O: log is the sensor's own concern, skip this tick
	}

	h.Push(sensordata.Baro{AltitudeFt: standardAtmosphereFeet(pressurePa)})
}

func (b *BMP280) readPressure() (float64, error) {
	raw := make([]byte, 6)
	for i := range raw {
		v, err := b.bus.ReadByteFromReg(b.addr, byte(regPressMSB+i))
		if err != nil {
			return 0, err
		}
		raw[i] = v
	}

	adcP := int32(raw[0])<<12 | int32(raw[1])<<4 | int32(raw[3])>>4
	adcT := int32(raw[3])<<12 | int32(raw[4])<<4 | int32(raw[5])>>4

	if adcP == 0 && adcT == 0 {
		return 0, errors.New("bmp280: no data ready")
	}

	c := b.cal

	var1 := (float64(adcT)/16384.0 - float64(c.dig_T1)/1024.0) * float64(c.dig_T2)
	var2 := (float64(adcT)/131072.0 - float64(c.dig_T1)/8192.0) *
		(float64(adcT)/131072.0 - float64(c.dig_T1)/8192.0) * float64(c.dig_T3)
	tFine := var1 + var2

	p1 := tFine/2.0 - 64000.0
	p2 := p1 * p1 * float64(c.dig_P6) / 32768.0
	p2 = p2 + p1*float64(c.dig_P5)*2.0
	p2 = p2/4.0 + float64(c.dig_P4)*65536.0
	p1 = (float64(c.dig_P3)*p1*p1/524288.0 + float64(c.dig_P2)*p1) / 524288.0
	p1 = (1.0 + p1/32768.0) * float64(c.dig_P1)

	if p1 == 0 {
		return 0, errors.New("bmp280: invalid calibration")
	}

	p := 1048576.0 - float64(adcP)
	p = (p - p2/4096.0) * 6250.0 / p1
	p1 = float64(c.dig_P9) * p * p / 2147483648.0
	p2 = p * float64(c.dig_P8) / 32768.0
	p = p + (p1+p2+float64(c.dig_P7))/16.0

	return p, nil
}

// standardAtmosphereFeet converts a pressure reading in Pa to a pressure
// altitude in feet under the ICAO standard atmosphere.
func standardAtmosphereFeet(pressurePa float64) int32 {
	const seaLevelPa = 101325.0
	meters := 44330.0 * (1.0 - math.Pow(pressurePa/seaLevelPa, 1.0/5.255))
	return int32(math.Round(meters * 3.28084))
}
