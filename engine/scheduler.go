package engine

import (
	"math"
	"time"
)

// Scheduler converts elapsed wall time into owed sample-steps so simulated
// time tracks real time at a fixed sample rate regardless of how coarsely
// or irregularly the host wakes the loop.
type Scheduler struct {
	sampleRate float64
	start      time.Time
	processed  int64
}

// NewScheduler starts counting at start.
func NewScheduler(sampleRate float64, start time.Time) *Scheduler {
	return &Scheduler{sampleRate: sampleRate, start: start}
}

// Owed returns floor(elapsed*fs) minus the steps already completed. It
// never returns a negative count, even if the clock steps backwards. An
// elapsed time landing exactly on a sample boundary counts that sample.
func (s *Scheduler) Owed(now time.Time) int64 {
	elapsed := now.Sub(s.start).Seconds()
	due := int64(math.Floor(elapsed*s.sampleRate + cadenceEpsilon))
	if owed := due - s.processed; owed > 0 {
		return owed
	}
	return 0
}

// Done records n completed steps.
func (s *Scheduler) Done(n int64) {
	s.processed += n
}

// Processed returns the number of steps completed since start.
func (s *Scheduler) Processed() int64 {
	return s.processed
}

// Start returns the reference instant.
func (s *Scheduler) Start() time.Time {
	return s.start
}
