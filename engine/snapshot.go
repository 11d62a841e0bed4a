package engine

import "time"

// Snapshot is one published view of the loop. It is never modified after
// publication; a newer snapshot supersedes it.
type Snapshot struct {
	SessionID string  `json:"sessionId"`
	SimTime   float64 `json:"simTime"`
	Samples   int64   `json:"samples"`

	// BandPower is the RMS of the primary probe's filtered window.
	BandPower float64 `json:"bandPower"`
	// Coherence is Correlation clamped to [0, 1] for display.
	Coherence float64 `json:"coherence"`
	// Correlation is the signed Pearson r between the probe windows.
	Correlation float64 `json:"correlation"`

	ComputeLatency time.Duration `json:"computeLatencyNs"`
	Engaged        bool          `json:"engaged"`

	// RawTail holds the most recent raw samples of the primary probe,
	// oldest first.
	RawTail []float64 `json:"rawTail"`
	// Frame holds the latest raw sample of every channel.
	Frame []float64 `json:"frame"`

	OutputLevel float64 `json:"outputLevel"`
	TargetLevel float64 `json:"targetLevel"`
}

// PowerPercent returns BandPower scaled to a 0-100 display range at
// full-scale power fullScale.
func (s *Snapshot) PowerPercent(fullScale float64) float64 {
	if fullScale <= 0 {
		return 0
	}
	p := s.BandPower / fullScale * 100
	if p > 100 {
		return 100
	}
	return p
}
