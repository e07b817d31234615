package kinematics

import (
	"math"

	"github.com/victorzhrn/swingmaster/internal/pose"
)

// SegmentMetrics summarizes one swing segment. Absent data yields zero
// values; metric computation never fails.
type SegmentMetrics struct {
	PeakAngularVelocity float64    `json:"peak_angular_velocity"` // rad/s, magnitude
	PeakLinearVelocity  float64    `json:"peak_linear_velocity"`
	ContactPoint        pose.Point `json:"contact_point"`
	BackswingAngle      float64    `json:"backswing_angle"` // degrees
	FollowThroughHeight float64    `json:"follow_through_height"`
	AverageConfidence   float64    `json:"average_confidence"`
}

// ComputeSegmentMetrics recomputes the derived signals for just the segment
// frames and reduces them to summary metrics:
//
//   - peak angular velocity (by magnitude) and its frame index
//   - contact point: dominant wrist position at the peak frame
//   - backswing angle: max shoulder rotation strictly before the peak
//   - follow-through height: max wrist height from the peak onward
//   - average confidence: mean of every joint confidence across every frame
func ComputeSegmentMetrics(frames []pose.Snapshot, cfg Config) SegmentMetrics {
	var m SegmentMetrics
	if len(frames) == 0 {
		return m
	}

	fs := ComputeSeries(frames, cfg)

	peakIdx := 0
	for i, v := range fs.AngularVelocity {
		if math.Abs(v) > math.Abs(fs.AngularVelocity[peakIdx]) {
			peakIdx = i
		}
	}
	m.PeakAngularVelocity = math.Abs(fs.AngularVelocity[peakIdx])

	for _, v := range fs.LinearVelocity {
		if v > m.PeakLinearVelocity {
			m.PeakLinearVelocity = v
		}
	}

	wristJoint, _ := dominantSide(frames[peakIdx])
	if wrist, ok := frames[peakIdx].Joint(wristJoint); ok {
		m.ContactPoint = wrist.Position
	}

	// Backswing is measured strictly before the contact frame; with nothing
	// preceding the peak it stays 0.
	for i := 0; i < peakIdx; i++ {
		if fs.ShoulderRotation[i] > m.BackswingAngle {
			m.BackswingAngle = fs.ShoulderRotation[i]
		}
	}

	for i := peakIdx; i < len(fs.WristHeight); i++ {
		if fs.WristHeight[i] > m.FollowThroughHeight {
			m.FollowThroughHeight = fs.WristHeight[i]
		}
	}

	var confSum float64
	var confCount int
	for _, frame := range frames {
		for _, js := range frame.Joints {
			confSum += js.Confidence
			confCount++
		}
	}
	if confCount > 0 {
		m.AverageConfidence = confSum / float64(confCount)
	}

	return m
}
