// Package trajectory reconstructs the 2D path of one tracked entity (a body
// joint, the racket center, or the ball center) across a validated swing
// segment's retained frames: confidence-gated extraction, gap filling,
// local-polynomial smoothing, and motion annotation.
//
// Every step is a pure function of its input and options; results are
// deterministic and the package is safe for concurrent use.
package trajectory

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/victorzhrn/swingmaster/internal/pose"
)

const (
	// minConfidence gates raw extraction: detections and joints below this
	// confidence are treated as absent.
	minConfidence = 0.3

	// interpolatedConfidenceFactor discounts the confidence of synthesized
	// gap-fill points relative to the weaker bounding point.
	interpolatedConfidenceFactor = 0.7

	// powerSpotQuantile is the velocity percentile a local maximum must reach
	// to be flagged as a power spot.
	powerSpotQuantile = 0.9
)

// Kind selects which tracked entity a trajectory follows.
type Kind string

const (
	KindJoint  Kind = "joint"
	KindRacket Kind = "racket"
	KindBall   Kind = "ball"
)

// Entity identifies the tracked entity. Joint is only meaningful when Kind
// is KindJoint.
type Entity struct {
	Kind  Kind       `json:"kind"`
	Joint pose.Joint `json:"joint,omitempty"`
}

// GapFillMethod selects the interpolation used to bridge short gaps.
type GapFillMethod string

const (
	GapFillLinear GapFillMethod = "linear"
	GapFillCubic  GapFillMethod = "cubic"
)

// SmoothingMethod selects the trajectory smoother.
type SmoothingMethod string

const (
	SmoothingNone            SmoothingMethod = "none"
	SmoothingLocalPolynomial SmoothingMethod = "local_polynomial"
)

// Options configures trajectory reconstruction.
type Options struct {
	FillGaps      bool          `json:"fill_gaps"`
	MaxGapSeconds float64       `json:"max_gap_seconds"`
	GapMethod     GapFillMethod `json:"gap_method"`

	Smooth          bool            `json:"smooth"`
	SmoothingWindow int             `json:"smoothing_window"`
	SmoothingMethod SmoothingMethod `json:"smoothing_method"`
	PolynomialOrder int             `json:"polynomial_order"`
}

// DefaultOptions returns the reconstruction defaults: cubic gap fill up to
// a quarter second, order-2 local-polynomial smoothing over 7 samples.
func DefaultOptions() Options {
	return Options{
		FillGaps:        true,
		MaxGapSeconds:   0.25,
		GapMethod:       GapFillCubic,
		Smooth:          true,
		SmoothingWindow: 7,
		SmoothingMethod: SmoothingLocalPolynomial,
		PolynomialOrder: 2,
	}
}

// Point is one trajectory sample. Timestamps are segment-relative and
// strictly increasing after gap fill. Velocity and Acceleration are nil
// until motion annotation runs and on series too short to differentiate.
type Point struct {
	Position     pose.Point `json:"position"`
	Timestamp    float64    `json:"timestamp"`
	Confidence   float64    `json:"confidence"`
	Interpolated bool       `json:"interpolated"`
	Velocity     *float64   `json:"velocity,omitempty"`     // speed, units/s
	Acceleration *float64   `json:"acceleration,omitempty"` // d(speed)/dt
	IsPowerSpot  bool       `json:"is_power_spot"`
}

// Compute reconstructs the entity's trajectory over a validated segment's
// retained frames. segmentStart rebases timestamps to segment-relative time;
// padding frames before the segment come out negative. Motion annotation
// always runs last.
func Compute(entity Entity, poseFrames []pose.Snapshot, objFrames []pose.ObjectSnapshot, segmentStart float64, opts Options) []Point {
	points := extractRaw(entity, poseFrames, objFrames, segmentStart)
	if len(points) == 0 {
		return nil
	}

	if opts.FillGaps && len(points) >= 2 {
		interval := nominalInterval(points)
		if interval > 0 {
			maxGapFrames := int(math.Round(opts.MaxGapSeconds / interval))
			if maxGapFrames < 1 {
				maxGapFrames = 1
			}
			switch opts.GapMethod {
			case GapFillLinear:
				points = fillGapsLinear(points, interval, maxGapFrames)
			default:
				points = fillGapsCubic(points, interval, maxGapFrames)
			}
		}
	}

	if opts.Smooth && opts.SmoothingMethod == SmoothingLocalPolynomial {
		points = smoothSavitzkyGolay(points, opts.SmoothingWindow, opts.PolynomialOrder)
	}

	annotateMotion(points)
	return points
}

// extractRaw keeps the frames where the entity is present at or above the
// extraction confidence, rebased to segment-relative time. Sources guarantee
// only non-decreasing timestamps, so equal-timestamp frames are collapsed to
// the higher-confidence sample, keeping the series strictly increasing.
func extractRaw(entity Entity, poseFrames []pose.Snapshot, objFrames []pose.ObjectSnapshot, segmentStart float64) []Point {
	var points []Point
	switch entity.Kind {
	case KindJoint:
		for _, frame := range poseFrames {
			js, ok := frame.Joint(entity.Joint)
			if !ok || js.Confidence < minConfidence {
				continue
			}
			points = appendSample(points, Point{
				Position:   js.Position,
				Timestamp:  frame.Timestamp - segmentStart,
				Confidence: js.Confidence,
			})
		}
	case KindRacket, KindBall:
		for _, frame := range objFrames {
			det := frame.Racket
			if entity.Kind == KindBall {
				det = frame.Ball
			}
			if det == nil || det.Confidence < minConfidence {
				continue
			}
			points = appendSample(points, Point{
				Position:   det.Box.Center(),
				Timestamp:  frame.Timestamp - segmentStart,
				Confidence: det.Confidence,
			})
		}
	}
	return points
}

// appendSample appends pt unless it repeats the previous timestamp, in which
// case the higher-confidence sample wins.
func appendSample(points []Point, pt Point) []Point {
	if n := len(points); n > 0 && pt.Timestamp <= points[n-1].Timestamp {
		if pt.Confidence > points[n-1].Confidence {
			points[n-1] = pt
		}
		return points
	}
	return append(points, pt)
}

// nominalInterval estimates the frame interval as the median of consecutive
// positive timestamp deltas, which stays robust against dropped frames.
func nominalInterval(points []Point) float64 {
	deltas := make([]float64, 0, len(points))
	for i := 1; i < len(points); i++ {
		if d := points[i].Timestamp - points[i-1].Timestamp; d > 0 {
			deltas = append(deltas, d)
		}
	}
	if len(deltas) == 0 {
		return 0
	}
	sort.Float64s(deltas)
	return stat.Quantile(0.5, stat.Empirical, deltas, nil)
}
