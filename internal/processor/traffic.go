/*
	Copyright (c) 2025 Stratux Development Team
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file.

	traffic.go: maintains the keyed, aging map of traffic targets around
	ownship, merging redundant ADS-B / ADS-R / TIS-B reports with source
	precedence and periodic cull/emit.
*/

package processor

import (
	"time"

	"golang.org/x/exp/slices"

	"github.com/stratux/pitot/common"
	"github.com/stratux/pitot/internal/handle"
	"github.com/stratux/pitot/internal/sensordata"
	"github.com/stratux/pitot/internal/tailnumber"
)

const (
	trafficCleanupHz      = 0.1
	trafficReportHz       = 1
	trafficMaxStale       = 60 * time.Second
	trafficADSBLockout    = 2 * time.Second
	trafficFreshnessDelay = 6 * time.Second
)

// Target is the per-aircraft aggregated record the traffic processor
// maintains. Each volatile field is paired with the monotonic instant it
// was last updated; last-write-wins fields that rarely change (squawk,
// callsign, category, NIC/NACp, on-ground, GNSS delta) are stored bare.
type Target struct {
	Addr     sensordata.Addr
	Altitude *Timestamped[sensordata.AltitudeReading]
	GNSSDelta *int32
	Heading  *Timestamped[sensordata.HeadingReading]
	Speed    *Timestamped[sensordata.SpeedReading]
	VS       *Timestamped[int16]
	Squawk   *uint16
	Callsign *string
	Category *uint8
	LatLon   *Timestamped[[2]float32]
	NIC      *uint8
	NACp     *uint8
	OnGround *bool
	LastSeen time.Time
	Source   sensordata.TrafficSource
}

func newTarget(addr sensordata.Addr, now time.Time, source sensordata.TrafficSource) *Target {
	t := &Target{
		Addr:     addr,
		LastSeen: now,
		Source:   source,
	}
	if reg, ok := tailnumber.FromICAO(addr.ICAO); ok {
		t.Callsign = &reg
	}
	return t
}

// isFresh reports whether any volatile field was updated within the
// freshness window -- the signal that this target is worth reporting
// upstream this tick.
func (t *Target) isFresh(now time.Time) bool {
	if t.Altitude != nil && t.Altitude.Fresh(now, trafficFreshnessDelay) {
		return true
	}
	if t.Heading != nil && t.Heading.Fresh(now, trafficFreshnessDelay) {
		return true
	}
	if t.Speed != nil && t.Speed.Fresh(now, trafficFreshnessDelay) {
		return true
	}
	if t.LatLon != nil && t.LatLon.Fresh(now, trafficFreshnessDelay) {
		return true
	}
	return false
}

// clone returns a value copy of t suitable for pushing as a Report --
// Target contains only pointers to immutable snapshots, so a shallow copy
// is safe to hand to downstream consumers even as the map entry keeps
// mutating on later ticks.
func (t *Target) clone() Target {
	return *t
}

// TrafficProcessor implements Processor, maintaining the aging situation
// map described in the traffic fusion design.
type TrafficProcessor struct {
	situation      map[uint32]*Target
	cleanupCounter uint32
	reportCounter  uint32
	mono           *common.Monotonic
}

// NewTrafficProcessor returns an empty traffic situation map.
func NewTrafficProcessor() *TrafficProcessor {
	return &TrafficProcessor{
		situation: make(map[uint32]*Target, 100),
		mono:      common.NewMonotonic(),
	}
}

func (p *TrafficProcessor) Step(h handle.Pushable[Report], in []sensordata.SensorData) {
	now := h.Clock()
	p.mono.Tick()

	for _, e := range in {
		t, ok := e.(sensordata.Traffic)
		if !ok {
			continue
		}
		p.merge(t.Report, now)
	}

	runEvery(trafficCleanupHz, &p.cleanupCounter, h, func() {
		for icao, v := range p.situation {
			if now.Sub(v.LastSeen) >= trafficMaxStale {
				common.Log.Debugf("traffic: dropping %06X, last seen %s", icao, p.mono.HumanizeTime(v.LastSeen))
				delete(p.situation, icao)
			}
		}
	})

	runEvery(trafficReportHz, &p.reportCounter, h, func() {
		fresh := make([]*Target, 0, len(p.situation))
		for _, v := range p.situation {
			if v.isFresh(now) {
				fresh = append(fresh, v)
			}
		}
		// map iteration order is random; sort by ICAO so EFB clients see a
		// stable ordering from one tick to the next.
		slices.SortFunc(fresh, func(a, b *Target) bool { return a.Addr.ICAO < b.Addr.ICAO })
		for _, v := range fresh {
			h.Push(TrafficTargetReport{Target: v.clone()})
		}
	})
}

func (p *TrafficProcessor) merge(t sensordata.TrafficReport, now time.Time) {
	target, exists := p.situation[t.Addr.ICAO]
	if !exists {
		target = newTarget(t.Addr, now, t.Source)
		p.situation[t.Addr.ICAO] = target
	}

	// ADS-B lockout: prefer a recent direct ADS-B address over ADS-R/TIS-B
	// updates for the same ICAO.
	if target.Addr.Type.IsADSB() && !t.Addr.Type.IsADSB() &&
		now.Sub(target.LastSeen) < trafficADSBLockout {
		common.Log.Debug("traffic: ADS-R/TIS-B update skipped in favor of ADS-B")
		return
	}

	target.Addr = t.Addr
	target.LastSeen = now
	target.Source = t.Source

	if t.Altitude != nil {
		target.Altitude = &Timestamped[sensordata.AltitudeReading]{Value: *t.Altitude, At: now}
	}
	if t.GNSSDelta != nil {
		target.GNSSDelta = t.GNSSDelta
	}
	if t.Heading != nil {
		target.Heading = &Timestamped[sensordata.HeadingReading]{Value: *t.Heading, At: now}
	}
	if t.Speed != nil {
		target.Speed = &Timestamped[sensordata.SpeedReading]{Value: *t.Speed, At: now}
	}
	if t.VS != nil {
		target.VS = &Timestamped[int16]{Value: *t.VS, At: now}
	}
	if t.Squawk != nil {
		target.Squawk = t.Squawk
	}
	if t.Callsign != nil {
		target.Callsign = t.Callsign
	}
	if t.Category != nil {
		target.Category = t.Category
	}
	if t.LatLon != nil {
		target.LatLon = &Timestamped[[2]float32]{Value: *t.LatLon, At: now}
	}
	if t.NIC != nil {
		target.NIC = t.NIC
	}
	if t.NACp != nil {
		target.NACp = t.NACp
	}
	if t.OnGround != nil {
		target.OnGround = t.OnGround
	}
}

// runEvery captures the "run body every 1/hz seconds" idiom shared by
// traffic cleanup/emit, GDL90 heartbeat/ownship, and UDP liveness pings.
func runEvery(hz float64, counter *uint32, h handle.Handle, body func()) {
	*counter++
	threshold := uint32(float64(h.Frequency()) / hz)
	if threshold < 1 {
		threshold = 1
	}
	if *counter >= threshold {
		*counter = 0
		body()
	}
}
