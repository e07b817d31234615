package analyzer

import "sync"

// Phase is one stage of the per-run state machine. Transitions within a run
// are monotonic in the order declared here.
type Phase string

const (
	PhaseQueued             Phase = "queued"
	PhaseExtractingPoses    Phase = "extracting_poses"
	PhaseCalculatingMetrics Phase = "calculating_metrics"
	PhaseDetectingSwings    Phase = "detecting_swings"
	PhaseValidatingSwings   Phase = "validating_swings"
	PhaseComplete           Phase = "complete"
)

// Status is a point-in-time view of a run. Progress is meaningful during
// extraction; Current/Total during validation.
type Status struct {
	Phase    Phase   `json:"phase"`
	Progress float64 `json:"progress,omitempty"`
	Current  int     `json:"current,omitempty"`
	Total    int     `json:"total,omitempty"`
}

// statusBuffer bounds the update channel. Consumers that fall behind lose
// intermediate progress ticks but never phase monotonicity: Status() always
// reflects the latest state.
const statusBuffer = 16

// Run tracks one submitted video through the pipeline. Status is pollable at
// any time; Updates delivers transitions best-effort; Done closes when the
// run completes and Results become available.
type Run struct {
	ID    string
	Video Video

	mu      sync.Mutex
	status  Status
	results []SwingResult

	updates chan Status
	done    chan struct{}

	logf func(format string, v ...interface{})
}

func newRun(id string, video Video, logf func(format string, v ...interface{})) *Run {
	return &Run{
		ID:      id,
		Video:   video,
		status:  Status{Phase: PhaseQueued},
		updates: make(chan Status, statusBuffer),
		done:    make(chan struct{}),
		logf:    logf,
	}
}

// Status returns the latest published state.
func (r *Run) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Updates returns the transition channel. Sends never block the pipeline;
// slow consumers drop intermediate updates.
func (r *Run) Updates() <-chan Status { return r.updates }

// Done closes when the run reaches PhaseComplete.
func (r *Run) Done() <-chan struct{} { return r.done }

// Results returns the validated-segment bundles assembled so far. After Done
// the slice is final.
func (r *Run) Results() []SwingResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]SwingResult, len(r.results))
	copy(out, r.results)
	return out
}

func (r *Run) setStatus(s Status) {
	r.mu.Lock()
	r.status = s
	r.mu.Unlock()

	select {
	case r.updates <- s:
	default:
	}
}

func (r *Run) appendResult(res SwingResult) {
	r.mu.Lock()
	r.results = append(r.results, res)
	r.mu.Unlock()
}

func (r *Run) finish() {
	r.setStatus(Status{Phase: PhaseComplete})
	close(r.updates)
	close(r.done)
}
