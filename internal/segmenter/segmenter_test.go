package segmenter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/victorzhrn/swingmaster/internal/pose"
	"github.com/victorzhrn/swingmaster/internal/testutil"
)

// velocitySeries builds a zero signal with the given spikes at fixed indices.
func velocitySeries(n int, spikes map[int]float64) []float64 {
	v := make([]float64, n)
	for i, mag := range spikes {
		v[i] = mag
	}
	return v
}

func TestDetectCandidatesRefractory(t *testing.T) {
	t.Parallel()

	// Two peaks of height 5.0 at t=1.0s and t=1.4s with 1.0s minimum
	// separation: only the first is accepted.
	frames := testutil.Sequence(61, 30, nil)
	velocity := velocitySeries(61, map[int]float64{30: 5.0, 42: 5.0})

	cfg := Config{
		PeakThreshold:            3.0,
		MinPeakSeparationSeconds: 1.0,
		BeforePeakSeconds:        1.0,
		AfterPeakSeconds:         1.5,
	}
	candidates := DetectCandidates(frames, velocity, cfg)

	require.Len(t, candidates, 1)
	assert.InDelta(t, 1.0, candidates[0].PeakTimestamp, 1e-9)
	assert.InDelta(t, 5.0, candidates[0].PeakVelocity, 1e-12)
}

func TestDetectCandidatesMinimumLength(t *testing.T) {
	t.Parallel()

	t.Run("narrow window grows to twenty frames", func(t *testing.T) {
		t.Parallel()
		frames := testutil.Sequence(90, 30, nil)
		velocity := velocitySeries(90, map[int]float64{45: 6.0})

		cfg := Config{
			PeakThreshold:            3.0,
			MinPeakSeparationSeconds: 1.0,
			BeforePeakSeconds:        0.05, // ~1.5 frames either side
			AfterPeakSeconds:         0.05,
		}
		candidates := DetectCandidates(frames, velocity, cfg)

		require.Len(t, candidates, 1)
		assert.GreaterOrEqual(t, len(candidates[0].Frames), MinSegmentFrames)
		assert.Len(t, candidates[0].AngularVelocity, len(candidates[0].Frames))
	})

	t.Run("short input is used whole", func(t *testing.T) {
		t.Parallel()
		frames := testutil.Sequence(12, 30, nil)
		velocity := velocitySeries(12, map[int]float64{6: 6.0})

		cfg := DefaultConfig()
		candidates := DetectCandidates(frames, velocity, cfg)

		require.Len(t, candidates, 1)
		assert.Len(t, candidates[0].Frames, 12)
	})
}

func TestDetectCandidatesPeakMapsBack(t *testing.T) {
	t.Parallel()

	// 30-sample 30 Hz sequence with one spike of 6.0 at index 15: exactly
	// one candidate whose local peak maps back to original index 15.
	frames := testutil.Sequence(30, 30, nil)
	velocity := velocitySeries(30, map[int]float64{15: 6.0})

	cfg := Config{
		PeakThreshold:            3.0,
		MinPeakSeparationSeconds: 1.0,
		BeforePeakSeconds:        1.0,
		AfterPeakSeconds:         1.5,
	}
	candidates := DetectCandidates(frames, velocity, cfg)

	require.Len(t, candidates, 1)
	c := candidates[0]
	assert.Equal(t, frames[15].Timestamp, c.Frames[c.PeakIndex].Timestamp)
	assert.InDelta(t, 6.0, c.AngularVelocity[c.PeakIndex], 1e-12)
}

func TestDetectCandidatesThreshold(t *testing.T) {
	t.Parallel()

	frames := testutil.Sequence(61, 30, nil)
	velocity := velocitySeries(61, map[int]float64{30: 2.9})

	candidates := DetectCandidates(frames, velocity, DefaultConfig())
	assert.Empty(t, candidates)
}

func TestDetectCandidatesNegativePeaks(t *testing.T) {
	t.Parallel()

	// Peaks are detected on magnitude: a strongly negative angular velocity
	// still segments.
	frames := testutil.Sequence(61, 30, nil)
	velocity := velocitySeries(61, map[int]float64{30: -5.0})

	candidates := DetectCandidates(frames, velocity, DefaultConfig())
	require.Len(t, candidates, 1)
	assert.InDelta(t, 5.0, candidates[0].PeakVelocity, 1e-12)
}

func TestDetectCandidatesTooShortInput(t *testing.T) {
	t.Parallel()
	frames := testutil.Sequence(2, 30, nil)
	assert.Nil(t, DetectCandidates(frames, []float64{0, 5}, DefaultConfig()))
}

func TestDetectCandidatesMismatchedLengthsPanics(t *testing.T) {
	t.Parallel()
	frames := testutil.Sequence(5, 30, nil)
	assert.Panics(t, func() {
		DetectCandidates(frames, []float64{0, 1}, DefaultConfig())
	})
}

func TestCandidateTimes(t *testing.T) {
	t.Parallel()

	var empty Candidate
	assert.Zero(t, empty.StartTime())
	assert.Zero(t, empty.EndTime())

	c := Candidate{Frames: []pose.Snapshot{{Timestamp: 1.5}, {Timestamp: 2.5}}}
	assert.InDelta(t, 1.5, c.StartTime(), 1e-12)
	assert.InDelta(t, 2.5, c.EndTime(), 1e-12)
}
