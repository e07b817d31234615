// Package source provides file-backed implementations of the extraction
// interfaces for offline analysis: pose and object snapshots exported by the
// on-device tracker as JSON lines, one snapshot per line. The ML inference
// that produced the files stays external.
package source

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/victorzhrn/swingmaster/internal/analyzer"
	"github.com/victorzhrn/swingmaster/internal/monitoring"
	"github.com/victorzhrn/swingmaster/internal/pose"
)

// maxLineBytes bounds one snapshot line in an export file.
const maxLineBytes = 1 * 1024 * 1024

// FileSource streams snapshots from tracker export files that sit alongside
// the video: <video>.poses.jsonl and <video>.objects.jsonl. Unreadable files
// and malformed lines yield absent frames, never errors, matching the source
// contract.
type FileSource struct{}

var (
	_ analyzer.PoseSource   = FileSource{}
	_ analyzer.ObjectSource = FileSource{}
)

// posePath derives the pose export path for a video reference. A path that
// already names a .jsonl file is used as-is.
func posePath(video analyzer.Video) string {
	if strings.HasSuffix(video.Path, ".jsonl") {
		return video.Path
	}
	return trimExt(video.Path) + ".poses.jsonl"
}

func objectPath(video analyzer.Video) string {
	if strings.HasSuffix(video.Path, ".jsonl") {
		return strings.TrimSuffix(video.Path, ".poses.jsonl") + ".objects.jsonl"
	}
	return trimExt(video.Path) + ".objects.jsonl"
}

func trimExt(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// StreamPoses implements analyzer.PoseSource.
func (FileSource) StreamPoses(ctx context.Context, video analyzer.Video) <-chan pose.Snapshot {
	out := make(chan pose.Snapshot)
	go func() {
		defer close(out)
		streamLines(ctx, posePath(video), func(line []byte) {
			var snap pose.Snapshot
			if err := json.Unmarshal(line, &snap); err != nil {
				return
			}
			select {
			case out <- snap:
			case <-ctx.Done():
			}
		})
	}()
	return out
}

// StreamObjects implements analyzer.ObjectSource.
func (FileSource) StreamObjects(ctx context.Context, video analyzer.Video) <-chan pose.ObjectSnapshot {
	out := make(chan pose.ObjectSnapshot)
	go func() {
		defer close(out)
		streamLines(ctx, objectPath(video), func(line []byte) {
			var snap pose.ObjectSnapshot
			if err := json.Unmarshal(line, &snap); err != nil {
				return
			}
			select {
			case out <- snap:
			case <-ctx.Done():
			}
		})
	}()
	return out
}

// streamLines feeds non-empty lines of the file to emit, stopping on ctx
// cancellation. Missing files are logged once and produce no frames.
func streamLines(ctx context.Context, path string, emit func(line []byte)) {
	f, err := os.Open(path)
	if err != nil {
		monitoring.Logf("source: cannot open %s: %v", path, err)
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		emit(line)
	}
	if err := scanner.Err(); err != nil {
		monitoring.Logf("source: read %s: %v", path, err)
	}
}
