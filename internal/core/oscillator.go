package core

import (
	"time"

	"sumo-service/internal/types"
)

// scanOscillator tracks the sweep direction used while searching and the
// time of the last target sighting. Not safe for concurrent use; the
// control loop owns it and FSM hooks run synchronously inside the loop.
type scanOscillator struct {
	dir           types.ScanDirection
	lastDetection time.Time
}

func newScanOscillator() *scanOscillator {
	return &scanOscillator{dir: types.ScanClockwise}
}

// Direction returns the current sweep direction.
func (o *scanOscillator) Direction() types.ScanDirection {
	return o.dir
}

// Flip reverses the sweep direction and returns the new one. Called when a
// search span exceeds the stuck timeout and when an evade maneuver
// completes; both sites route through here so published state stays
// consistent.
func (o *scanOscillator) Flip() types.ScanDirection {
	o.dir = o.dir.Opposite()
	return o.dir
}

// MarkDetection records a target sighting, restarting the stuck timeout.
func (o *scanOscillator) MarkDetection(now time.Time) {
	o.lastDetection = now
}

// SinceDetection reports how long the bot has gone without a sighting.
func (o *scanOscillator) SinceDetection(now time.Time) time.Duration {
	return now.Sub(o.lastDetection)
}
