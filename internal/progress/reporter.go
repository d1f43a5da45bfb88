package progress

import (
	"time"

	"github.com/jonathan/docpack/internal/logging"
	"github.com/jonathan/docpack/internal/types"
)

// Reporter builds snapshots for a single run and delivers them to a Sink.
// It keeps the emitted percentage non-decreasing and never lets a sink
// panic escape. A Reporter is not safe for concurrent use.
type Reporter struct {
	sink   Sink
	logger *logging.Logger
	now    func() time.Time

	start     time.Time
	last      int
	total     int
	completed int
	durations time.Duration
}

// NewReporter returns a Reporter writing to sink. A nil sink discards.
func NewReporter(sink Sink, logger *logging.Logger) *Reporter {
	return newReporter(sink, logger, time.Now)
}

func newReporter(sink Sink, logger *logging.Logger, now func() time.Time) *Reporter {
	if sink == nil {
		sink = Discard
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Reporter{sink: sink, logger: logger, now: now, start: now()}
}

// SetTotal sets the number of documents in the run.
func (r *Reporter) SetTotal(total int) {
	r.total = total
}

// DocumentDone records a finished document and its generation time.
func (r *Reporter) DocumentDone(d time.Duration) {
	r.completed++
	r.durations += d
}

// Percentage returns the last emitted percentage.
func (r *Reporter) Percentage() int {
	return r.last
}

// EstimatedRemaining returns avg(completed durations) * remaining documents.
func (r *Reporter) EstimatedRemaining() time.Duration {
	remaining := r.total - r.completed
	if r.completed == 0 || remaining <= 0 {
		return 0
	}
	return r.durations / time.Duration(r.completed) * time.Duration(remaining)
}

// Emit sends a snapshot. A percentage lower than the last one emitted is
// raised to it; values are clamped to [0, 100].
func (r *Reporter) Emit(status Status, step string, percent int, current types.DocumentType) Snapshot {
	if percent < r.last {
		percent = r.last
	}
	if percent > PercentComplete {
		percent = PercentComplete
	}
	r.last = percent

	s := Snapshot{
		Status:               status,
		Step:                 step,
		Percentage:           percent,
		Completed:            r.completed,
		Total:                r.total,
		CurrentDocument:      current,
		ElapsedMs:            r.now().Sub(r.start).Milliseconds(),
		EstimatedRemainingMs: r.EstimatedRemaining().Milliseconds(),
	}
	r.deliver(s)
	return s
}

// Error emits an error snapshot at the last percentage.
func (r *Reporter) Error(step string) Snapshot {
	return r.Emit(StatusError, step, r.last, "")
}

func (r *Reporter) deliver(s Snapshot) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Warn("progress sink panicked", "status", string(s.Status), "percentage", s.Percentage, "panic", rec)
		}
	}()
	r.sink.OnProgress(s)
}
