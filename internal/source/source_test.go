package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/victorzhrn/swingmaster/internal/analyzer"
	"github.com/victorzhrn/swingmaster/internal/pose"
)

func TestDerivedPaths(t *testing.T) {
	t.Parallel()

	video := analyzer.Video{Path: "/captures/rally.mov"}
	assert.Equal(t, "/captures/rally.poses.jsonl", posePath(video))
	assert.Equal(t, "/captures/rally.objects.jsonl", objectPath(video))

	// A direct .jsonl reference is used verbatim for poses and rewritten
	// for objects.
	direct := analyzer.Video{Path: "/captures/rally.poses.jsonl"}
	assert.Equal(t, "/captures/rally.poses.jsonl", posePath(direct))
	assert.Equal(t, "/captures/rally.objects.jsonl", objectPath(direct))
}

func TestStreamPoses(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	lines := `{"timestamp": 0.0, "joints": {"right_wrist": {"x": 0.6, "y": 0.4, "confidence": 0.9}}}

not json at all
{"timestamp": 0.033, "joints": {"right_wrist": {"x": 0.61, "y": 0.41, "confidence": 0.88}}}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rally.poses.jsonl"), []byte(lines), 0o644))

	var snaps []pose.Snapshot
	src := FileSource{}
	for snap := range src.StreamPoses(context.Background(), analyzer.Video{Path: filepath.Join(dir, "rally.mov")}) {
		snaps = append(snaps, snap)
	}

	// Blank and malformed lines are skipped, not fatal.
	require.Len(t, snaps, 2)
	assert.Equal(t, 0.0, snaps[0].Timestamp)
	assert.Equal(t, 0.033, snaps[1].Timestamp)
	wrist, ok := snaps[0].Joint(pose.RightWrist)
	require.True(t, ok)
	assert.InDelta(t, 0.6, wrist.Position.X, 1e-12)
}

func TestStreamObjects(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	lines := `{"timestamp": 0.1, "racket": {"box": {"x": 0.5, "y": 0.3, "width": 0.1, "height": 0.2}, "confidence": 0.8}}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rally.objects.jsonl"), []byte(lines), 0o644))

	var snaps []pose.ObjectSnapshot
	src := FileSource{}
	for snap := range src.StreamObjects(context.Background(), analyzer.Video{Path: filepath.Join(dir, "rally.mov")}) {
		snaps = append(snaps, snap)
	}

	require.Len(t, snaps, 1)
	require.NotNil(t, snaps[0].Racket)
	assert.Nil(t, snaps[0].Ball)
	center := snaps[0].Racket.Box.Center()
	assert.InDelta(t, 0.55, center.X, 1e-12)
	assert.InDelta(t, 0.4, center.Y, 1e-12)
}

func TestStreamMissingFileYieldsNoFrames(t *testing.T) {
	t.Parallel()

	src := FileSource{}
	video := analyzer.Video{Path: filepath.Join(t.TempDir(), "absent.mov")}

	count := 0
	for range src.StreamPoses(context.Background(), video) {
		count++
	}
	assert.Zero(t, count)
}

func TestStreamStopsOnCancel(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	line := `{"timestamp": 0.0, "joints": {"right_wrist": {"x": 0.6, "y": 0.4, "confidence": 0.9}}}` + "\n"
	var body []byte
	for i := 0; i < 200; i++ {
		body = append(body, line...)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rally.poses.jsonl"), body, 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	src := FileSource{}
	ch := src.StreamPoses(ctx, analyzer.Video{Path: filepath.Join(dir, "rally.mov")})

	<-ch
	cancel()
	count := 1
	for range ch {
		count++
	}
	assert.Less(t, count, 200)
}
