// Package config loads the JSON tuning file for the analysis pipeline.
// Fields are pointer-typed so partial configs are safe: anything omitted
// keeps its default.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/victorzhrn/swingmaster/internal/analyzer"
	"github.com/victorzhrn/swingmaster/internal/trajectory"
)

// maxFileSize bounds the config file read (1MB).
const maxFileSize = 1 * 1024 * 1024

// TuningConfig is the root tuning document. The schema mirrors the
// configuration surface of the pipeline stages so the same JSON can be used
// for startup configuration and for test fixtures.
type TuningConfig struct {
	// Scheduler params
	MaxConcurrentRuns *int `json:"max_concurrent_runs,omitempty"`

	// Kinematics params
	VelocityWindowSize *int `json:"velocity_window_size,omitempty"`
	AngleWindowSize    *int `json:"angle_window_size,omitempty"`

	// Segmenter params
	PeakThreshold            *float64 `json:"peak_threshold,omitempty"`
	MinPeakSeparationSeconds *float64 `json:"min_peak_separation_seconds,omitempty"`
	BeforePeakSeconds        *float64 `json:"before_peak_seconds,omitempty"`
	AfterPeakSeconds         *float64 `json:"after_peak_seconds,omitempty"`

	// Trajectory params
	FillGaps        *bool    `json:"fill_gaps,omitempty"`
	MaxGapSeconds   *float64 `json:"max_gap_seconds,omitempty"`
	GapMethod       *string  `json:"gap_method,omitempty"`
	Smooth          *bool    `json:"smooth,omitempty"`
	SmoothingWindow *int     `json:"smoothing_window,omitempty"`
	SmoothingMethod *string  `json:"smoothing_method,omitempty"`
	PolynomialOrder *int     `json:"polynomial_order,omitempty"`
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The file must have
// a .json extension and stay under the max file size. Omitted fields retain
// their defaults, so partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg TuningConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &cfg, nil
}

// SchedulerConfig merges the tuning values onto the scheduler defaults.
func (t *TuningConfig) SchedulerConfig() analyzer.SchedulerConfig {
	cfg := analyzer.DefaultSchedulerConfig()
	if t == nil {
		return cfg
	}
	if t.MaxConcurrentRuns != nil {
		cfg.MaxConcurrentRuns = *t.MaxConcurrentRuns
	}
	if t.VelocityWindowSize != nil {
		cfg.Kinematics.VelocityWindowSize = *t.VelocityWindowSize
	}
	if t.AngleWindowSize != nil {
		cfg.Kinematics.AngleWindowSize = *t.AngleWindowSize
	}
	if t.PeakThreshold != nil {
		cfg.Segmenter.PeakThreshold = *t.PeakThreshold
	}
	if t.MinPeakSeparationSeconds != nil {
		cfg.Segmenter.MinPeakSeparationSeconds = *t.MinPeakSeparationSeconds
	}
	if t.BeforePeakSeconds != nil {
		cfg.Segmenter.BeforePeakSeconds = *t.BeforePeakSeconds
	}
	if t.AfterPeakSeconds != nil {
		cfg.Segmenter.AfterPeakSeconds = *t.AfterPeakSeconds
	}
	return cfg
}

// TrajectoryOptions merges the tuning values onto the trajectory defaults.
func (t *TuningConfig) TrajectoryOptions() trajectory.Options {
	opts := trajectory.DefaultOptions()
	if t == nil {
		return opts
	}
	if t.FillGaps != nil {
		opts.FillGaps = *t.FillGaps
	}
	if t.MaxGapSeconds != nil {
		opts.MaxGapSeconds = *t.MaxGapSeconds
	}
	if t.GapMethod != nil {
		opts.GapMethod = trajectory.GapFillMethod(*t.GapMethod)
	}
	if t.Smooth != nil {
		opts.Smooth = *t.Smooth
	}
	if t.SmoothingWindow != nil {
		opts.SmoothingWindow = *t.SmoothingWindow
	}
	if t.SmoothingMethod != nil {
		opts.SmoothingMethod = trajectory.SmoothingMethod(*t.SmoothingMethod)
	}
	if t.PolynomialOrder != nil {
		opts.PolynomialOrder = *t.PolynomialOrder
	}
	return opts
}
