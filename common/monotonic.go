/*
	Copyright (c) 2025 Stratux Development Team
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file.

	monotonic.go: a monotonic clock reference with an optional, one-shot
	wall-clock correlation. All freshness logic in the pipeline is built
	on top of this clock rather than time.Now(), so a GNSS-driven system
	clock jump never perturbs traffic aging or GDL90 staleness windows.
*/

package common

import (
	"time"

	"github.com/dustin/go-humanize"
)

// Monotonic pins a reference instant at construction and exposes elapsed
// time off of it. SetRealTimeReference records a one-shot wall-clock
// correlation and HasRealTimeReference reports whether it has been made;
// the recorded wall-clock time is not exposed by any method.
type Monotonic struct {
	start    time.Time
	Time     time.Time
	realBase time.Time
	realSet  bool
}

// NewMonotonic starts a new reference clock at the current instant.
func NewMonotonic() *Monotonic {
	now := time.Now()
	return &Monotonic{
		start: now,
		Time:  now,
	}
}

// Tick refreshes Time to the current instant. The pipeline calls this once
// per tick to produce a stable reading for the whole tick's stages.
func (m *Monotonic) Tick() {
	m.Time = time.Now()
}

// Unix returns the current reading (Time) as seconds since the Unix epoch.
func (m *Monotonic) Unix() int64 {
	return m.Time.Unix()
}

// HasRealTimeReference reports whether a wall-clock correlation has been
// latched via SetRealTimeReference.
func (m *Monotonic) HasRealTimeReference() bool {
	return m.realSet
}

// SetRealTimeReference latches wall, the current wall-clock time.
// Subsequent calls are no-ops: once the correlation is made it is never
// perturbed by further clock jumps.
func (m *Monotonic) SetRealTimeReference(wall time.Time) {
	if m.realSet {
		return
	}
	m.realBase = wall
	m.realSet = true
}

// HumanizeTime renders t (a Monotonic-scale instant) relative to the
// clock's current reading, e.g. "5 seconds ago" or "3 seconds from now".
func (m *Monotonic) HumanizeTime(t time.Time) string {
	return humanize.CustomRelTime(t, m.Time, "ago", "from now", humanizeMagnitudes)
}

var humanizeMagnitudes = []humanize.RelTimeMagnitude{
	{D: time.Second, Format: "now", DivBy: time.Second},
	{D: 2 * time.Second, Format: "1 second %s", DivBy: 1},
	{D: time.Minute, Format: "%d seconds %s", DivBy: time.Second},
	{D: 2 * time.Minute, Format: "1 minute %s", DivBy: 1},
	{D: time.Hour, Format: "%d minutes %s", DivBy: time.Minute},
	{D: 2 * time.Hour, Format: "1 hour %s", DivBy: 1},
	{D: humanize.Day, Format: "%d hours %s", DivBy: time.Hour},
	{D: 2 * humanize.Day, Format: "1 day %s", DivBy: 1},
	{D: humanize.Week, Format: "%d days %s", DivBy: humanize.Day},
	{D: 2 * humanize.Week, Format: "1 week %s", DivBy: 1},
	{D: humanize.Month, Format: "%d weeks %s", DivBy: humanize.Week},
	{D: 2 * humanize.Month, Format: "1 month %s", DivBy: 1},
	{D: humanize.Year, Format: "%d months %s", DivBy: humanize.Month},
	{D: 18 * humanize.Month, Format: "1 year %s", DivBy: 1},
	{D: 2 * humanize.Year, Format: "2 years %s", DivBy: 1},
	{D: humanize.LongTime, Format: "%d years %s", DivBy: humanize.Year},
}
