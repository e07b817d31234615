package analyzer

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/victorzhrn/swingmaster/internal/kinematics"
	"github.com/victorzhrn/swingmaster/internal/monitoring"
	"github.com/victorzhrn/swingmaster/internal/pose"
	"github.com/victorzhrn/swingmaster/internal/segmenter"
)

// contextPaddingSeconds is how much raw frame context is retained on either
// side of a validated segment for later trajectory computation.
const contextPaddingSeconds = 0.5

// SchedulerConfig configures the run scheduler and the math stages it
// sequences.
type SchedulerConfig struct {
	// MaxConcurrentRuns caps how many videos are analyzed at once; further
	// submissions queue FIFO and are admitted as capacity frees.
	MaxConcurrentRuns int `json:"max_concurrent_runs"`

	Kinematics kinematics.Config `json:"kinematics"`
	Segmenter  segmenter.Config  `json:"segmenter"`
}

// DefaultSchedulerConfig returns the production defaults: two concurrent
// runs with the stage defaults.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		MaxConcurrentRuns: 2,
		Kinematics:        kinematics.DefaultConfig(),
		Segmenter:         segmenter.DefaultConfig(),
	}
}

// Scheduler sequences analysis runs. It is explicitly constructed and passed
// by handle; there is no process-wide instance. All registry and queue
// mutation happens under one mutex.
type Scheduler struct {
	poses     PoseSource
	objects   ObjectSource
	validator Validator
	cfg       SchedulerConfig

	mu      sync.Mutex
	active  int
	queue   []*queuedRun
	runs    map[string]*Run
	runList []*Run // submission order, for listing

	// onComplete, when set, is invoked after a run finishes and its results
	// are final. This is how downstream consumers (persistence) attach.
	onComplete func(*Run)
}

// OnRunComplete registers a callback invoked after each run completes. Must
// be set before the first Submit.
func (s *Scheduler) OnRunComplete(fn func(*Run)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onComplete = fn
}

type queuedRun struct {
	ctx context.Context
	run *Run
}

// NewScheduler wires the external collaborators into a scheduler. A
// non-positive MaxConcurrentRuns falls back to the default cap.
func NewScheduler(poses PoseSource, objects ObjectSource, validator Validator, cfg SchedulerConfig) *Scheduler {
	if cfg.MaxConcurrentRuns <= 0 {
		cfg.MaxConcurrentRuns = DefaultSchedulerConfig().MaxConcurrentRuns
	}
	return &Scheduler{
		poses:     poses,
		objects:   objects,
		validator: validator,
		cfg:       cfg,
		runs:      make(map[string]*Run),
	}
}

// Submit registers a video for analysis and returns its run handle
// immediately. The run starts when capacity allows.
func (s *Scheduler) Submit(ctx context.Context, video Video) *Run {
	id := uuid.NewString()
	run := newRun(id, video, monitoring.RunLogf(id))

	s.mu.Lock()
	s.runs[id] = run
	s.runList = append(s.runList, run)
	s.queue = append(s.queue, &queuedRun{ctx: ctx, run: run})
	s.mu.Unlock()

	s.admit()
	return run
}

// Run looks up a run by ID.
func (s *Scheduler) Run(id string) (*Run, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	return run, ok
}

// Runs returns all runs in submission order.
func (s *Scheduler) Runs() []*Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Run, len(s.runList))
	copy(out, s.runList)
	return out
}

// admit starts queued runs while capacity remains.
func (s *Scheduler) admit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.active < s.cfg.MaxConcurrentRuns && len(s.queue) > 0 {
		next := s.queue[0]
		s.queue = s.queue[1:]
		s.active++
		go s.execute(next.ctx, next.run)
	}
}

// execute walks one run through the pipeline stages, then releases its
// capacity slot and admits the next queued run.
func (s *Scheduler) execute(ctx context.Context, run *Run) {
	defer func() {
		s.mu.Lock()
		s.active--
		s.mu.Unlock()
		s.admit()
	}()

	poseFrames, objectFrames := s.extract(ctx, run)
	run.logf("extracted %d pose frames, %d object frames", len(poseFrames), len(objectFrames))

	run.setStatus(Status{Phase: PhaseCalculatingMetrics})
	series := kinematics.ComputeSeries(poseFrames, s.cfg.Kinematics)

	run.setStatus(Status{Phase: PhaseDetectingSwings})
	candidates := segmenter.DetectCandidates(poseFrames, series.AngularVelocity, s.cfg.Segmenter)
	run.logf("detected %d candidate segments", len(candidates))

	s.validate(ctx, run, candidates, poseFrames, objectFrames)

	run.logf("complete: %d validated segments", len(run.Results()))

	// Notify before signalling Done so a caller woken by Done sees any
	// side effects of the callback, such as persisted results.
	s.mu.Lock()
	onComplete := s.onComplete
	s.mu.Unlock()
	if onComplete != nil {
		onComplete(run)
	}
	run.finish()
}

// extract drains the pose and object streams concurrently with each other.
// The streams are correlated by timestamp, never by index: either source may
// independently drop frames.
func (s *Scheduler) extract(ctx context.Context, run *Run) ([]pose.Snapshot, []pose.ObjectSnapshot) {
	run.setStatus(Status{Phase: PhaseExtractingPoses})

	var (
		wg           sync.WaitGroup
		poseFrames   []pose.Snapshot
		objectFrames []pose.ObjectSnapshot
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		for snap := range s.poses.StreamPoses(ctx, run.Video) {
			poseFrames = append(poseFrames, snap)
			if run.Video.Duration > 0 {
				run.setStatus(Status{
					Phase:    PhaseExtractingPoses,
					Progress: snap.Timestamp / run.Video.Duration,
				})
			}
		}
	}()
	go func() {
		defer wg.Done()
		for snap := range s.objects.StreamObjects(ctx, run.Video) {
			objectFrames = append(objectFrames, snap)
		}
	}()
	wg.Wait()

	return poseFrames, objectFrames
}

// validate sends candidates to the external validator strictly sequentially
// in segment-start-time order. A failed or rejected candidate is logged and
// skipped; it never aborts the batch.
func (s *Scheduler) validate(ctx context.Context, run *Run, candidates []segmenter.Candidate, poseFrames []pose.Snapshot, objectFrames []pose.ObjectSnapshot) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].StartTime() < candidates[j].StartTime()
	})

	total := len(candidates)
	for i, candidate := range candidates {
		run.setStatus(Status{Phase: PhaseValidatingSwings, Current: i + 1, Total: total})

		verdict, err := s.validator.ValidateSwing(ctx, candidate)
		if err != nil {
			run.logf("validator failed on candidate at t=%.2fs, skipping: %v", candidate.PeakTimestamp, err)
			continue
		}
		if !verdict.Valid {
			continue
		}

		if result, ok := assembleResult(candidate, verdict, s.cfg.Kinematics, poseFrames, objectFrames); ok {
			run.appendResult(result)
		}
	}
}

// assembleResult re-bounds the candidate per the verdict, recomputes summary
// metrics over the final range, and attaches the padded raw-frame context.
func assembleResult(candidate segmenter.Candidate, verdict ValidatedSegment, cfg kinematics.Config, poseFrames []pose.Snapshot, objectFrames []pose.ObjectSnapshot) (SwingResult, bool) {
	n := len(candidate.Frames)
	if n == 0 {
		return SwingResult{}, false
	}

	start := clamp(verdict.StartIndex, 0, n-1)
	end := clamp(verdict.EndIndex, 0, n-1)
	if end < start {
		start, end = end, start
	}
	frames := candidate.Frames[start : end+1]

	// Validator key frames are relative to the original candidate; translate
	// into the re-bounded segment and clamp.
	translate := func(idx int) int { return clamp(idx-start, 0, len(frames)-1) }
	keyFrames := KeyFrames{
		Preparation:   translate(verdict.KeyFrames.Preparation),
		Backswing:     translate(verdict.KeyFrames.Backswing),
		Contact:       translate(verdict.KeyFrames.Contact),
		FollowThrough: translate(verdict.KeyFrames.FollowThrough),
		Recovery:      translate(verdict.KeyFrames.Recovery),
	}

	startTime := frames[0].Timestamp
	endTime := frames[len(frames)-1].Timestamp

	return SwingResult{
		Type:          verdict.Type,
		Confidence:    verdict.Confidence,
		StartTime:     startTime,
		EndTime:       endTime,
		KeyFrames:     keyFrames,
		Metrics:       kinematics.ComputeSegmentMetrics(frames, cfg),
		PoseContext:   poseWindow(poseFrames, startTime-contextPaddingSeconds, endTime+contextPaddingSeconds),
		ObjectContext: objectWindow(objectFrames, startTime-contextPaddingSeconds, endTime+contextPaddingSeconds),
	}, true
}

// poseWindow returns the snapshots with timestamps inside [from, to].
func poseWindow(frames []pose.Snapshot, from, to float64) []pose.Snapshot {
	var out []pose.Snapshot
	for _, f := range frames {
		if f.Timestamp >= from && f.Timestamp <= to {
			out = append(out, f)
		}
	}
	return out
}

// objectWindow is poseWindow for object snapshots. Both streams are windowed
// by timestamp so independently dropped frames stay correlated.
func objectWindow(frames []pose.ObjectSnapshot, from, to float64) []pose.ObjectSnapshot {
	var out []pose.ObjectSnapshot
	for _, f := range frames {
		if f.Timestamp >= from && f.Timestamp <= to {
			out = append(out, f)
		}
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
