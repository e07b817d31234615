package segmentdb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/victorzhrn/swingmaster/internal/analyzer"
	"github.com/victorzhrn/swingmaster/internal/kinematics"
	"github.com/victorzhrn/swingmaster/internal/pose"
	"github.com/victorzhrn/swingmaster/internal/testutil"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "segments.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleResult(start, end float64) analyzer.SwingResult {
	return analyzer.SwingResult{
		Type:       analyzer.SwingForehand,
		Confidence: 0.91,
		StartTime:  start,
		EndTime:    end,
		KeyFrames:  analyzer.KeyFrames{Backswing: 3, Contact: 9, Recovery: 20},
		Metrics: kinematics.SegmentMetrics{
			PeakAngularVelocity: 6.2,
			ContactPoint:        pose.Point{X: 0.64, Y: 0.46},
			AverageConfidence:   0.88,
		},
		PoseContext: testutil.Sequence(5, 30, nil),
	}
}

func TestRecordAndListSegments(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.RecordRun("run-1", analyzer.Video{Path: "rally.mov", Duration: 12.5}))
	require.NoError(t, db.RecordSegments("run-1", []analyzer.SwingResult{
		sampleResult(4.0, 6.5),
		sampleResult(1.0, 3.2),
	}))

	segments, err := db.Segments("run-1")
	require.NoError(t, err)
	require.Len(t, segments, 2)

	// Listed in start-time order regardless of insert order.
	assert.Equal(t, 1.0, segments[0].StartTime)
	assert.Equal(t, 4.0, segments[1].StartTime)

	seg := segments[0]
	assert.Equal(t, "run-1", seg.RunID)
	assert.Equal(t, analyzer.SwingForehand, seg.Type)
	assert.InDelta(t, 0.91, seg.Confidence, 1e-12)
	assert.Equal(t, 9, seg.KeyFrames.Contact)
	assert.InDelta(t, 6.2, seg.Metrics.PeakAngularVelocity, 1e-12)
	assert.InDelta(t, 0.64, seg.Metrics.ContactPoint.X, 1e-12)

	// The listing skips the heavyweight contexts.
	assert.Nil(t, seg.PoseContext)
}

func TestSegmentDecodesContexts(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.RecordRun("run-1", analyzer.Video{Path: "rally.mov"}))
	require.NoError(t, db.RecordSegments("run-1", []analyzer.SwingResult{sampleResult(1.0, 3.2)}))

	segments, err := db.Segments("run-1")
	require.NoError(t, err)
	require.Len(t, segments, 1)

	seg, err := db.Segment(segments[0].SegmentID)
	require.NoError(t, err)

	require.Len(t, seg.PoseContext, 5)
	// Context survives the round trip through the wire codec.
	first := seg.PoseContext[0]
	assert.Equal(t, 0.0, first.Timestamp)
	assert.True(t, first.Has(pose.RightWrist))
	assert.Empty(t, seg.ObjectContext)
}

func TestSegmentsUnknownRun(t *testing.T) {
	db := openTestDB(t)
	segments, err := db.Segments("no-such-run")
	require.NoError(t, err)
	assert.Empty(t, segments)
}
