// Package segmentdb persists validated-segment bundles to sqlite. It is a
// downstream consumer of the pipeline: the analysis core never depends on
// it, wiring happens only in main. Padded frame contexts are stored as JSON
// through the pose codec boundary so trajectories can be recomputed on
// demand long after the run.
package segmentdb

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/victorzhrn/swingmaster/internal/analyzer"
	"github.com/victorzhrn/swingmaster/internal/kinematics"
	"github.com/victorzhrn/swingmaster/internal/pose"
)

type DB struct {
	*sql.DB
}

// NewDB opens (creating if needed) the segment store at path.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			video_path TEXT,
			duration DOUBLE,
			timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS segments (
			segment_id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT,
			swing_type TEXT,
			confidence DOUBLE,
			start_time DOUBLE,
			end_time DOUBLE,
			key_frames TEXT,
			metrics TEXT,
			pose_context TEXT,
			object_context TEXT,
			timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(run_id) REFERENCES runs(run_id)
		);
	`)
	if err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// RecordRun registers an analyzed video.
func (db *DB) RecordRun(runID string, video analyzer.Video) error {
	_, err := db.Exec(
		"INSERT OR REPLACE INTO runs (run_id, video_path, duration) VALUES (?, ?, ?)",
		runID, video.Path, video.Duration,
	)
	return err
}

// RecordSegments stores every result bundle from a completed run.
func (db *DB) RecordSegments(runID string, results []analyzer.SwingResult) error {
	for _, res := range results {
		keyFrames, err := json.Marshal(res.KeyFrames)
		if err != nil {
			return fmt.Errorf("marshal key frames: %w", err)
		}
		metrics, err := json.Marshal(res.Metrics)
		if err != nil {
			return fmt.Errorf("marshal metrics: %w", err)
		}
		poseCtx, err := json.Marshal(res.PoseContext)
		if err != nil {
			return fmt.Errorf("marshal pose context: %w", err)
		}
		objectCtx, err := json.Marshal(res.ObjectContext)
		if err != nil {
			return fmt.Errorf("marshal object context: %w", err)
		}

		_, err = db.Exec(`
			INSERT INTO segments
				(run_id, swing_type, confidence, start_time, end_time, key_frames, metrics, pose_context, object_context)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, string(res.Type), res.Confidence, res.StartTime, res.EndTime,
			string(keyFrames), string(metrics), string(poseCtx), string(objectCtx),
		)
		if err != nil {
			return fmt.Errorf("insert segment: %w", err)
		}
	}
	return nil
}

// StoredSegment is one persisted result bundle with its retained context
// decoded, ready for on-demand trajectory computation.
type StoredSegment struct {
	SegmentID  int64                     `json:"segment_id"`
	RunID      string                    `json:"run_id"`
	Type       analyzer.SwingType        `json:"type"`
	Confidence float64                   `json:"confidence"`
	StartTime  float64                   `json:"start_time"`
	EndTime    float64                   `json:"end_time"`
	KeyFrames  analyzer.KeyFrames        `json:"key_frames"`
	Metrics    kinematics.SegmentMetrics `json:"metrics"`

	PoseContext   []pose.Snapshot       `json:"-"`
	ObjectContext []pose.ObjectSnapshot `json:"-"`
}

// Segments lists the stored segments for a run in start-time order, without
// decoding the heavyweight contexts.
func (db *DB) Segments(runID string) ([]StoredSegment, error) {
	rows, err := db.Query(`
		SELECT segment_id, run_id, swing_type, confidence, start_time, end_time, key_frames, metrics
		FROM segments WHERE run_id = ? ORDER BY start_time`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var segments []StoredSegment
	for rows.Next() {
		var seg StoredSegment
		var swingType, keyFrames, metrics string
		if err := rows.Scan(&seg.SegmentID, &seg.RunID, &swingType, &seg.Confidence,
			&seg.StartTime, &seg.EndTime, &keyFrames, &metrics); err != nil {
			return nil, err
		}
		seg.Type = analyzer.SwingType(swingType)
		if err := json.Unmarshal([]byte(keyFrames), &seg.KeyFrames); err != nil {
			return nil, fmt.Errorf("decode key frames for segment %d: %w", seg.SegmentID, err)
		}
		if err := json.Unmarshal([]byte(metrics), &seg.Metrics); err != nil {
			return nil, fmt.Errorf("decode metrics for segment %d: %w", seg.SegmentID, err)
		}
		segments = append(segments, seg)
	}
	return segments, rows.Err()
}

// Segment fetches one stored segment with its padded contexts decoded.
func (db *DB) Segment(segmentID int64) (*StoredSegment, error) {
	row := db.QueryRow(`
		SELECT segment_id, run_id, swing_type, confidence, start_time, end_time,
			key_frames, metrics, pose_context, object_context
		FROM segments WHERE segment_id = ?`,
		segmentID,
	)

	var seg StoredSegment
	var swingType, keyFrames, metrics, poseCtx, objectCtx string
	err := row.Scan(&seg.SegmentID, &seg.RunID, &swingType, &seg.Confidence,
		&seg.StartTime, &seg.EndTime, &keyFrames, &metrics, &poseCtx, &objectCtx)
	if err != nil {
		return nil, err
	}
	seg.Type = analyzer.SwingType(swingType)
	if err := json.Unmarshal([]byte(keyFrames), &seg.KeyFrames); err != nil {
		return nil, fmt.Errorf("decode key frames: %w", err)
	}
	if err := json.Unmarshal([]byte(metrics), &seg.Metrics); err != nil {
		return nil, fmt.Errorf("decode metrics: %w", err)
	}
	if err := json.Unmarshal([]byte(poseCtx), &seg.PoseContext); err != nil {
		return nil, fmt.Errorf("decode pose context: %w", err)
	}
	if err := json.Unmarshal([]byte(objectCtx), &seg.ObjectContext); err != nil {
		return nil, fmt.Errorf("decode object context: %w", err)
	}
	return &seg, nil
}
