package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/victorzhrn/swingmaster/internal/analyzer"
	"github.com/victorzhrn/swingmaster/internal/pose"
	"github.com/victorzhrn/swingmaster/internal/segmenter"
	"github.com/victorzhrn/swingmaster/internal/segmentdb"
	"github.com/victorzhrn/swingmaster/internal/testutil"
	"github.com/victorzhrn/swingmaster/internal/trajectory"
)

// emptySource streams nothing, so submitted runs finish immediately.
type emptySource struct{}

func (emptySource) StreamPoses(context.Context, analyzer.Video) <-chan pose.Snapshot {
	out := make(chan pose.Snapshot)
	close(out)
	return out
}

func (emptySource) StreamObjects(context.Context, analyzer.Video) <-chan pose.ObjectSnapshot {
	out := make(chan pose.ObjectSnapshot)
	close(out)
	return out
}

func newTestServer(t *testing.T) (*httptest.Server, *segmentdb.DB) {
	t.Helper()

	db, err := segmentdb.NewDB(filepath.Join(t.TempDir(), "segments.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	validator := analyzer.ValidatorFunc(func(context.Context, segmenter.Candidate) (analyzer.ValidatedSegment, error) {
		return analyzer.ValidatedSegment{}, nil
	})
	sched := analyzer.NewScheduler(emptySource{}, emptySource{}, validator, analyzer.DefaultSchedulerConfig())

	srv := httptest.NewServer(NewServer(sched, db, trajectory.DefaultOptions()).ServeMux())
	t.Cleanup(srv.Close)
	return srv, db
}

type runViewWire struct {
	ID     string          `json:"id"`
	Video  analyzer.Video  `json:"video"`
	Status analyzer.Status `json:"status"`
}

func TestSubmitAndShowRun(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/analyze", "application/json",
		strings.NewReader(`{"path": "rally.mov", "duration": 12.5}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var submitted runViewWire
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&submitted))
	assert.NotEmpty(t, submitted.ID)
	assert.Equal(t, "rally.mov", submitted.Video.Path)

	// The run is visible by ID and in the listing.
	resp, err = http.Get(srv.URL + "/api/run?id=" + submitted.ID)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var shown runViewWire
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&shown))
	assert.Equal(t, submitted.ID, shown.ID)

	resp, err = http.Get(srv.URL + "/api/runs")
	require.NoError(t, err)
	defer resp.Body.Close()
	var runs []runViewWire
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&runs))
	require.Len(t, runs, 1)
	assert.Equal(t, submitted.ID, runs[0].ID)
}

func TestSubmitRunRejectsBadRequests(t *testing.T) {
	srv, _ := newTestServer(t)

	cases := []struct {
		name   string
		method string
		body   string
		want   int
	}{
		{"wrong method", http.MethodGet, "", http.StatusMethodNotAllowed},
		{"malformed body", http.MethodPost, "{not json", http.StatusBadRequest},
		{"missing path", http.MethodPost, `{"duration": 1}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := http.NewRequest(tc.method, srv.URL+"/api/analyze", strings.NewReader(tc.body))
			require.NoError(t, err)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tc.want, resp.StatusCode)

			var body map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestShowRunUnknownID(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/run?id=nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// storeSegment persists one segment with a real pose context and returns its ID.
func storeSegment(t *testing.T, db *segmentdb.DB) int64 {
	t.Helper()

	result := analyzer.SwingResult{
		Type:        analyzer.SwingForehand,
		Confidence:  0.9,
		StartTime:   0,
		EndTime:     1,
		PoseContext: testutil.Sequence(30, 30, nil),
	}
	require.NoError(t, db.RecordRun("run-1", analyzer.Video{Path: "rally.mov"}))
	require.NoError(t, db.RecordSegments("run-1", []analyzer.SwingResult{result}))

	segments, err := db.Segments("run-1")
	require.NoError(t, err)
	require.Len(t, segments, 1)
	return segments[0].SegmentID
}

func TestListSegments(t *testing.T) {
	srv, db := newTestServer(t)
	storeSegment(t, db)

	resp, err := http.Get(srv.URL + "/api/segments?run_id=run-1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var segments []segmentdb.StoredSegment
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&segments))
	require.Len(t, segments, 1)
	assert.Equal(t, analyzer.SwingForehand, segments[0].Type)

	resp, err = http.Get(srv.URL + "/api/segments")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestComputeTrajectory(t *testing.T) {
	srv, db := newTestServer(t)
	segmentID := storeSegment(t, db)

	url := srv.URL + "/api/trajectory?segment_id=" + itoa(segmentID) + "&kind=joint&joint=right_wrist"
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var points []trajectory.Point
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&points))
	require.Len(t, points, 30)
	assert.Equal(t, 0.0, points[0].Timestamp)
}

func TestComputeTrajectoryErrors(t *testing.T) {
	srv, db := newTestServer(t)
	segmentID := storeSegment(t, db)

	cases := []struct {
		name  string
		query string
		want  int
	}{
		{"bad segment id", "segment_id=abc", http.StatusBadRequest},
		{"unknown segment", "segment_id=99999", http.StatusNotFound},
		{"bad kind", "segment_id=" + itoa(segmentID) + "&kind=frisbee", http.StatusBadRequest},
		{"bad joint", "segment_id=" + itoa(segmentID) + "&kind=joint&joint=tail", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Get(srv.URL + "/api/trajectory?" + tc.query)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

func TestTrajectoryChart(t *testing.T) {
	srv, db := newTestServer(t)
	segmentID := storeSegment(t, db)

	resp, err := http.Get(srv.URL + "/debug/trajectory/chart?segment_id=" + itoa(segmentID) + "&kind=joint&joint=right_wrist")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}

// pacedSource streams its frames slowly and records how many made it out
// before the stream's context died.
type pacedSource struct {
	frames []pose.Snapshot

	mu   sync.Mutex
	sent int
}

func (p *pacedSource) StreamPoses(ctx context.Context, _ analyzer.Video) <-chan pose.Snapshot {
	out := make(chan pose.Snapshot)
	go func() {
		defer close(out)
		for _, snap := range p.frames {
			time.Sleep(2 * time.Millisecond)
			select {
			case out <- snap:
				p.mu.Lock()
				p.sent++
				p.mu.Unlock()
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func (p *pacedSource) StreamObjects(context.Context, analyzer.Video) <-chan pose.ObjectSnapshot {
	out := make(chan pose.ObjectSnapshot)
	close(out)
	return out
}

func (p *pacedSource) sentCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sent
}

func TestSubmittedRunOutlivesRequest(t *testing.T) {
	db, err := segmentdb.NewDB(filepath.Join(t.TempDir(), "segments.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	src := &pacedSource{frames: testutil.Sequence(60, 30, nil)}
	validator := analyzer.ValidatorFunc(func(context.Context, segmenter.Candidate) (analyzer.ValidatedSegment, error) {
		return analyzer.ValidatedSegment{}, nil
	})
	sched := analyzer.NewScheduler(src, src, validator, analyzer.DefaultSchedulerConfig())

	completed := make(chan *analyzer.Run, 1)
	sched.OnRunComplete(func(run *analyzer.Run) { completed <- run })

	srv := httptest.NewServer(NewServer(sched, db, trajectory.DefaultOptions()).ServeMux())
	t.Cleanup(srv.Close)

	resp, err := http.Post(srv.URL+"/api/analyze", "application/json",
		strings.NewReader(`{"path": "rally.mov", "duration": 2.0}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	// The handler has returned; extraction must keep draining the source.
	var run *analyzer.Run
	select {
	case run = <-completed:
	case <-time.After(10 * time.Second):
		t.Fatal("run did not complete")
	}
	select {
	case <-run.Done():
	case <-time.After(time.Second):
		t.Fatal("run never signalled done")
	}
	assert.Equal(t, analyzer.PhaseComplete, run.Status().Phase)
	assert.Equal(t, len(src.frames), src.sentCount())
}
