/*
	Copyright (c) 2025 Stratux Development Team
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file.

	types.go: the SensorData tagged union pushed by the sensor stage and
	drained by the processor stage, plus the GNSS and traffic wire-level
	types it carries.
*/

package sensordata

import "time"

// SensorData is implemented by every variant a sensor may push. Processors
// dispatch on the concrete type with a type switch rather than a tag field.
type SensorData interface {
	isSensorData()
}

// GNSSTimeFix carries a GNSS epoch and/or position fix. At least one of
// Time, Fix must be non-nil.
type GNSSTimeFix struct {
	Time *time.Time
	Fix  *Fix
}

func (GNSSTimeFix) isSensorData() {}

// GNSSSatelliteInfo carries the receiver's current satellite tracking table.
type GNSSSatelliteInfo struct {
	Satellites []SVStatus
}

func (GNSSSatelliteInfo) isSensorData() {}

// Baro carries a single pressure-altitude sample in feet MSL.
type Baro struct {
	AltitudeFt int32
}

func (Baro) isSensorData() {}

// Traffic carries one decoded 1090ES/978UAT traffic message.
type Traffic struct {
	Report TrafficReport
}

func (Traffic) isSensorData() {}

// FISB carries one opaque FIS-B uplink payload, framing already stripped.
type FISB struct {
	Payload []byte
}

func (FISB) isSensorData() {}

// FixQuality classifies the type of GNSS fix in effect.
type FixQuality int

const (
	FixUnknown FixQuality = iota
	Fix2D
	Fix3D
	FixSBAS
)

// Reading pairs a mandatory measurement with an optional accuracy figure.
type Reading[T, A any] struct {
	Value    T
	Accuracy *A
}

// NewReading builds a Reading with no accuracy figure attached.
func NewReading[T, A any](v T) Reading[T, A] {
	return Reading[T, A]{Value: v}
}

// WithAccuracy builds a Reading with an accuracy figure attached.
func WithAccuracy[T, A any](v T, acc A) Reading[T, A] {
	return Reading[T, A]{Value: v, Accuracy: &acc}
}

// Fix is a single GNSS position/velocity solution.
type Fix struct {
	Quality FixQuality
	NumSV   uint8

	// LatLon is in degrees; accuracy in millimeters.
	LatLon Reading[[2]float32, uint32]
	// HeightMSL is in millimeters; accuracy in millimeters.
	HeightMSL Reading[int32, uint32]
	// HeightEllipsoid is in millimeters; accuracy in millimeters.
	HeightEllipsoid Reading[int32, uint32]
	// GroundSpeed is in millimeters/second; accuracy in millimeters/second.
	GroundSpeed Reading[uint32, uint32]
	// TrueCourse is in degrees; accuracy in degrees.
	TrueCourse Reading[float32, float32]
	// MagneticDeclination is in degrees; accuracy in degrees. Nil when unknown.
	MagneticDeclination *Reading[float32, float32]
}

// Constellation identifies a GNSS satellite system.
type Constellation int

const (
	ConstellationUnknown Constellation = iota
	ConstellationGPS
	ConstellationSBAS
	ConstellationGalileo
	ConstellationGLONASS
)

// SVStatus reports the tracking state of a single space vehicle.
type SVStatus struct {
	System      Constellation
	SVID        uint8
	SignalDBHz  *uint8
	ElevationDeg *int8
	AzimuthDeg  *uint16
	Healthy     *bool
	Acquired    bool
	InSolution  bool
	SBASInUse   *bool
}

// AddressType classifies the provenance of a traffic address.
type AddressType int

const (
	AddressUnknown AddressType = iota
	AddressADSBICAO
	AddressADSBOther
	AddressADSRICAO
	AddressADSROther
	AddressTISBICAO
	AddressTISBOther
)

// IsADSB reports whether t is a direct ADS-B address (ICAO or anonymous).
func (t AddressType) IsADSB() bool {
	return t == AddressADSBICAO || t == AddressADSBOther
}

// AltitudeType distinguishes barometric from GNSS-derived altitude.
type AltitudeType int

const (
	AltitudeBaro AltitudeType = iota
	AltitudeGNSS
)

// HeadingType distinguishes true from magnetic heading.
type HeadingType int

const (
	HeadingTrue HeadingType = iota
	HeadingMag
)

// SpeedType classifies the kind of speed reported.
type SpeedType int

const (
	SpeedGS SpeedType = iota
	SpeedIAS
	SpeedTAS
)

// TrafficSource identifies which receiver produced a traffic message.
type TrafficSource int

const (
	SourceUAT TrafficSource = iota
	SourceES
)

// Addr is a 24-bit ICAO (or anonymous) address paired with its provenance.
type Addr struct {
	ICAO uint32
	Type AddressType
}

// AltitudeReading pairs an altitude in feet with its type.
type AltitudeReading struct {
	Feet int32
	Type AltitudeType
}

// HeadingReading pairs a heading in degrees with its type.
type HeadingReading struct {
	Degrees uint16
	Type    HeadingType
}

// SpeedReading pairs a speed with its type.
type SpeedReading struct {
	Value uint16
	Type  SpeedType
}

// TrafficReport is one decoded traffic message as produced by a 1090ES or
// 978UAT sensor, before it is merged into the traffic processor's situation
// map.
type TrafficReport struct {
	Addr        Addr
	Altitude    *AltitudeReading
	GNSSDelta   *int32
	Heading     *HeadingReading
	Speed       *SpeedReading
	VS          *int16
	Squawk      *uint16
	Callsign    *string
	Category    *uint8
	LatLon      *[2]float32
	NIC         *uint8
	NACp        *uint8
	OnGround    *bool
	Source      TrafficSource
}
