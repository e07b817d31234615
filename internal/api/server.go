// Package api exposes the analysis pipeline over HTTP: run submission, a
// pollable status surface, stored segment listings, and on-demand trajectory
// computation against a segment's retained context.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/victorzhrn/swingmaster/internal/analyzer"
	"github.com/victorzhrn/swingmaster/internal/monitoring"
	"github.com/victorzhrn/swingmaster/internal/pose"
	"github.com/victorzhrn/swingmaster/internal/segmentdb"
	"github.com/victorzhrn/swingmaster/internal/trajectory"
)

type Server struct {
	sched    *analyzer.Scheduler
	db       *segmentdb.DB
	trajOpts trajectory.Options
}

// NewServer wires the scheduler and segment store into an HTTP surface.
func NewServer(sched *analyzer.Scheduler, db *segmentdb.DB, trajOpts trajectory.Options) *Server {
	return &Server{sched: sched, db: db, trajOpts: trajOpts}
}

// ServeMux returns the route table.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/analyze", s.submitRun)
	mux.HandleFunc("/api/runs", s.listRuns)
	mux.HandleFunc("/api/run", s.showRun)
	mux.HandleFunc("/api/segments", s.listSegments)
	mux.HandleFunc("/api/trajectory", s.computeTrajectory)
	mux.HandleFunc("/debug/trajectory/chart", s.trajectoryChart)
	return mux
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		monitoring.Logf("api: write response: %v", err)
	}
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// runView is the wire form of a run's identity and state.
type runView struct {
	ID     string          `json:"id"`
	Video  analyzer.Video  `json:"video"`
	Status analyzer.Status `json:"status"`
}

// submitRun accepts a video reference and queues it for analysis.
func (s *Server) submitRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var video analyzer.Video
	if err := json.NewDecoder(r.Body).Decode(&video); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if video.Path == "" {
		s.writeJSONError(w, http.StatusBadRequest, "Missing video path")
		return
	}

	// The run outlives the request: net/http cancels r.Context() as soon as
	// the handler returns, which would kill extraction mid-stream.
	run := s.sched.Submit(context.WithoutCancel(r.Context()), video)
	w.WriteHeader(http.StatusAccepted)
	s.writeJSON(w, runView{ID: run.ID, Video: run.Video, Status: run.Status()})
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	runs := s.sched.Runs()
	views := make([]runView, 0, len(runs))
	for _, run := range runs {
		views = append(views, runView{ID: run.ID, Video: run.Video, Status: run.Status()})
	}
	s.writeJSON(w, views)
}

func (s *Server) showRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	run, ok := s.sched.Run(r.URL.Query().Get("id"))
	if !ok {
		s.writeJSONError(w, http.StatusNotFound, "Unknown run")
		return
	}
	s.writeJSON(w, runView{ID: run.ID, Video: run.Video, Status: run.Status()})
}

func (s *Server) listSegments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	runID := r.URL.Query().Get("run_id")
	if runID == "" {
		s.writeJSONError(w, http.StatusBadRequest, "Missing 'run_id' parameter")
		return
	}

	segments, err := s.db.Segments(runID)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to retrieve segments")
		return
	}
	s.writeJSON(w, segments)
}

// segmentTrajectory loads a stored segment and computes the requested
// entity's trajectory against its retained context.
func (s *Server) segmentTrajectory(r *http.Request) ([]trajectory.Point, *segmentdb.StoredSegment, int, string) {
	segmentID, err := strconv.ParseInt(r.URL.Query().Get("segment_id"), 10, 64)
	if err != nil {
		return nil, nil, http.StatusBadRequest, "Invalid 'segment_id' parameter"
	}

	entity := trajectory.Entity{Kind: trajectory.KindRacket}
	switch kind := r.URL.Query().Get("kind"); kind {
	case "", "racket":
	case "ball":
		entity.Kind = trajectory.KindBall
	case "joint":
		joint, ok := pose.ParseJoint(r.URL.Query().Get("joint"))
		if !ok {
			return nil, nil, http.StatusBadRequest, "Invalid 'joint' parameter"
		}
		entity = trajectory.Entity{Kind: trajectory.KindJoint, Joint: joint}
	default:
		return nil, nil, http.StatusBadRequest, "Invalid 'kind' parameter"
	}

	seg, err := s.db.Segment(segmentID)
	if err != nil {
		return nil, nil, http.StatusNotFound, "Unknown segment"
	}

	points := trajectory.Compute(entity, seg.PoseContext, seg.ObjectContext, seg.StartTime, s.trajOpts)
	return points, seg, http.StatusOK, ""
}

func (s *Server) computeTrajectory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	points, _, status, msg := s.segmentTrajectory(r)
	if status != http.StatusOK {
		s.writeJSONError(w, status, msg)
		return
	}
	s.writeJSON(w, points)
}
