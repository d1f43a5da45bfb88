// Package progress defines the progress snapshots emitted during package
// generation and the sinks that receive them.
package progress

import (
	"sync"

	"github.com/jonathan/docpack/internal/types"
)

// Status is the phase of a package run.
type Status string

// Status values
const (
	StatusInitializing Status = "initializing"
	StatusGenerating   Status = "generating"
	StatusAnalyzing    Status = "analyzing"
	StatusCompleted    Status = "completed"
	StatusError        Status = "error"
)

// Percentage bands. Generation occupies [PercentResolved, PercentGenerated].
const (
	PercentStart     = 0
	PercentValidated = 5
	PercentEnriched  = 10
	PercentResolved  = 15
	PercentGenerated = 85
	PercentAnalyzed  = 95
	PercentComplete  = 100
)

// GeneratingPercent maps position i of n documents into the generation band.
// n == 0 yields the end of the band.
func GeneratingPercent(i, n int) int {
	if n <= 0 {
		return PercentGenerated
	}
	if i > n {
		i = n
	}
	return PercentResolved + (PercentGenerated-PercentResolved)*i/n
}

// Snapshot is a point-in-time view of a package run.
type Snapshot struct {
	Status               Status             `json:"status"`
	Step                 string             `json:"step"`
	Percentage           int                `json:"percentage"`
	Completed            int                `json:"completed"`
	Total                int                `json:"total"`
	CurrentDocument      types.DocumentType `json:"current_document,omitempty"`
	ElapsedMs            int64              `json:"elapsed_ms"`
	EstimatedRemainingMs int64              `json:"estimated_remaining_ms"`
}

// Sink receives snapshots. OnProgress is called synchronously on the
// generation path and should return quickly.
type Sink interface {
	OnProgress(Snapshot)
}

// SinkFunc adapts a plain function to Sink.
type SinkFunc func(Snapshot)

// OnProgress calls f(s).
func (f SinkFunc) OnProgress(s Snapshot) {
	f(s)
}

// Discard drops every snapshot.
var Discard Sink = SinkFunc(func(Snapshot) {})

// Collector records every snapshot it receives.
type Collector struct {
	mu        sync.Mutex
	snapshots []Snapshot
}

// OnProgress appends s.
func (c *Collector) OnProgress(s Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshots = append(c.snapshots, s)
}

// Snapshots returns a copy of everything received so far.
func (c *Collector) Snapshots() []Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Snapshot(nil), c.snapshots...)
}

// Last returns the most recent snapshot and whether one exists.
func (c *Collector) Last() (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.snapshots) == 0 {
		return Snapshot{}, false
	}
	return c.snapshots[len(c.snapshots)-1], true
}

// ChannelSink forwards snapshots to a buffered channel. Snapshots are
// dropped when the buffer is full.
type ChannelSink struct {
	ch chan Snapshot
}

// NewChannelSink creates a sink with the given buffer size.
func NewChannelSink(buffer int) *ChannelSink {
	return &ChannelSink{ch: make(chan Snapshot, buffer)}
}

// OnProgress sends s without blocking.
func (c *ChannelSink) OnProgress(s Snapshot) {
	select {
	case c.ch <- s:
	default:
	}
}

// C returns the receive side of the channel.
func (c *ChannelSink) C() <-chan Snapshot {
	return c.ch
}

// Close closes the channel. No OnProgress calls may follow.
func (c *ChannelSink) Close() {
	close(c.ch)
}

// Multi fans a snapshot out to every non-nil sink in order.
type Multi []Sink

// OnProgress forwards s to each sink.
func (m Multi) OnProgress(s Snapshot) {
	for _, sink := range m {
		if sink != nil {
			sink.OnProgress(s)
		}
	}
}
