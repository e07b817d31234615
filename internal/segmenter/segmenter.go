// Package segmenter carves candidate swing windows out of a pose run by
// scanning the angular-velocity signal for peaks. Detection is purely
// deterministic given input and configuration.
package segmenter

import (
	"math"

	"github.com/victorzhrn/swingmaster/internal/pose"
)

// MinSegmentFrames is the minimum number of samples in an accepted candidate.
// Shorter windows grow symmetrically toward this size; inputs shorter than
// this are used whole.
const MinSegmentFrames = 20

// Config holds peak-detection and windowing parameters.
type Config struct {
	// PeakThreshold is the minimum angular-velocity magnitude (rad/s) for a
	// sample to qualify as a peak.
	PeakThreshold float64 `json:"peak_threshold"`

	// MinPeakSeparationSeconds is the refractory interval: a peak is rejected
	// unless its timestamp trails the last accepted peak by at least this.
	MinPeakSeparationSeconds float64 `json:"min_peak_separation_seconds"`

	// BeforePeakSeconds and AfterPeakSeconds bound the candidate window
	// around an accepted peak.
	BeforePeakSeconds float64 `json:"before_peak_seconds"`
	AfterPeakSeconds  float64 `json:"after_peak_seconds"`
}

// DefaultConfig returns detection parameters tuned for recreational swings
// at 30 Hz.
func DefaultConfig() Config {
	return Config{
		PeakThreshold:            3.0,
		MinPeakSeparationSeconds: 1.0,
		BeforePeakSeconds:        1.0,
		AfterPeakSeconds:         1.5,
	}
}

// Candidate is a contiguous sub-sequence hypothesized to contain one swing.
type Candidate struct {
	// Frames is the windowed snapshot sub-sequence.
	Frames []pose.Snapshot

	// PeakIndex is the peak position translated into Frames.
	PeakIndex int

	// PeakVelocity is the angular-velocity magnitude at the peak.
	PeakVelocity float64

	// PeakTimestamp is the absolute timestamp of the peak sample.
	PeakTimestamp float64

	// AngularVelocity is the windowed slice of the input signal.
	AngularVelocity []float64
}

// StartTime returns the timestamp of the candidate's first frame.
func (c Candidate) StartTime() float64 {
	if len(c.Frames) == 0 {
		return 0
	}
	return c.Frames[0].Timestamp
}

// EndTime returns the timestamp of the candidate's last frame.
func (c Candidate) EndTime() float64 {
	if len(c.Frames) == 0 {
		return 0
	}
	return c.Frames[len(c.Frames)-1].Timestamp
}

// DetectCandidates scans the angular-velocity signal for swing peaks and
// carves a timestamp-bounded window around each accepted peak.
//
// A sample is accepted as a peak when its magnitude meets the threshold, is
// at least both neighbors, and its timestamp trails the previously accepted
// peak by the minimum separation. Rejection is relative to the last accepted
// peak only; a later, taller local maximum inside the refractory interval is
// still rejected.
//
// frames and angularVelocity must be parallel; mismatched lengths are a
// programmer error.
func DetectCandidates(frames []pose.Snapshot, angularVelocity []float64, cfg Config) []Candidate {
	if len(frames) != len(angularVelocity) {
		panic("segmenter: frames and angularVelocity lengths differ")
	}
	if len(frames) < 3 {
		return nil
	}

	mag := make([]float64, len(angularVelocity))
	for i, v := range angularVelocity {
		mag[i] = math.Abs(v)
	}

	var candidates []Candidate
	lastPeakTime := math.Inf(-1)

	for i := 1; i < len(mag)-1; i++ {
		if mag[i] < cfg.PeakThreshold || mag[i] < mag[i-1] || mag[i] < mag[i+1] {
			continue
		}
		t := frames[i].Timestamp
		if t-lastPeakTime < cfg.MinPeakSeparationSeconds {
			continue
		}
		lastPeakTime = t

		start, end := windowAround(frames, i, cfg.BeforePeakSeconds, cfg.AfterPeakSeconds)
		if end <= start {
			continue
		}
		candidates = append(candidates, Candidate{
			Frames:          frames[start : end+1],
			PeakIndex:       i - start,
			PeakVelocity:    mag[i],
			PeakTimestamp:   t,
			AngularVelocity: angularVelocity[start : end+1],
		})
	}

	return candidates
}

// windowAround walks index-by-index by timestamp to find the inclusive
// [start, end] range covering [peak-before, peak+after], then grows a
// too-short span symmetrically (left gets the smaller half of the deficit)
// clamped to bounds.
func windowAround(frames []pose.Snapshot, peak int, before, after float64) (start, end int) {
	peakTime := frames[peak].Timestamp
	startTime := peakTime - before
	endTime := peakTime + after

	start = peak
	for start > 0 && frames[start-1].Timestamp >= startTime {
		start--
	}
	end = peak
	for end < len(frames)-1 && frames[end+1].Timestamp <= endTime {
		end++
	}

	if span := end - start + 1; span < MinSegmentFrames {
		deficit := MinSegmentFrames - span
		growLeft := deficit / 2
		growRight := deficit - growLeft
		start -= growLeft
		end += growRight
		if start < 0 {
			start = 0
		}
		if end > len(frames)-1 {
			end = len(frames) - 1
		}
	}

	return start, end
}
