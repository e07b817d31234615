// Package analyzer orchestrates one video run through the analysis pipeline:
// pose and object extraction, kinematic derivation, swing segmentation,
// external validation, and result assembly. A Scheduler caps how many runs
// execute at once and admits the rest in FIFO order.
package analyzer

import (
	"context"

	"github.com/victorzhrn/swingmaster/internal/kinematics"
	"github.com/victorzhrn/swingmaster/internal/pose"
	"github.com/victorzhrn/swingmaster/internal/segmenter"
)

// Video references one recorded video for the extraction sources to read.
// The core never touches the media itself.
type Video struct {
	// Path locates the recording (or its exported snapshot file) for the
	// sources.
	Path string `json:"path"`

	// Duration in seconds, when known. Used only for extraction progress;
	// zero disables progress fractions.
	Duration float64 `json:"duration,omitempty"`
}

// PoseSource yields pose snapshots for a video in non-decreasing timestamp
// order. The channel closes when the stream ends or ctx is canceled. Sources
// may silently skip frames; an immediately closed channel is the only
// failure signal.
type PoseSource interface {
	StreamPoses(ctx context.Context, video Video) <-chan pose.Snapshot
}

// ObjectSource is the racket/ball detection counterpart of PoseSource.
type ObjectSource interface {
	StreamObjects(ctx context.Context, video Video) <-chan pose.ObjectSnapshot
}

// SwingType classifies a validated swing.
type SwingType string

const (
	SwingForehand SwingType = "forehand"
	SwingBackhand SwingType = "backhand"
	SwingServe    SwingType = "serve"
	SwingVolley   SwingType = "volley"
	SwingUnknown  SwingType = "unknown"
)

// KeyFrames are the five canonical swing phase indices. In a Validator
// response they are relative to the original candidate; the pipeline clamps
// and translates them into the re-bounded segment.
type KeyFrames struct {
	Preparation   int `json:"preparation"`
	Backswing     int `json:"backswing"`
	Contact       int `json:"contact"`
	FollowThrough int `json:"follow_through"`
	Recovery      int `json:"recovery"`
}

// ValidatedSegment is the external validator's verdict on one candidate.
// StartIndex/EndIndex re-bound the swing within the candidate's frames.
type ValidatedSegment struct {
	Valid      bool      `json:"valid"`
	Type       SwingType `json:"type"`
	Confidence float64   `json:"confidence"`
	StartIndex int       `json:"start_index"`
	EndIndex   int       `json:"end_index"`
	KeyFrames  KeyFrames `json:"key_frames"`
}

// Validator confirms or rejects candidate segments. Any error is treated the
// same as an invalid verdict: the single candidate is dropped and the batch
// continues.
type Validator interface {
	ValidateSwing(ctx context.Context, candidate segmenter.Candidate) (ValidatedSegment, error)
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(ctx context.Context, candidate segmenter.Candidate) (ValidatedSegment, error)

// ValidateSwing implements Validator.
func (f ValidatorFunc) ValidateSwing(ctx context.Context, candidate segmenter.Candidate) (ValidatedSegment, error) {
	return f(ctx, candidate)
}

// SwingResult is the per-segment bundle handed to downstream consumers. The
// padded contexts retain raw frames ±0.5s around the segment so trajectories
// can be computed on demand later.
type SwingResult struct {
	Type       SwingType                  `json:"type"`
	Confidence float64                    `json:"confidence"`
	StartTime  float64                    `json:"start_time"`
	EndTime    float64                    `json:"end_time"`
	KeyFrames  KeyFrames                  `json:"key_frames"`
	Metrics    kinematics.SegmentMetrics  `json:"metrics"`

	PoseContext   []pose.Snapshot       `json:"pose_context"`
	ObjectContext []pose.ObjectSnapshot `json:"object_context"`
}
