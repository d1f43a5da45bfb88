package progress

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/docpack/internal/logging"
	"github.com/jonathan/docpack/internal/types"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestGeneratingPercent(t *testing.T) {
	assert.Equal(t, 15, GeneratingPercent(0, 4))
	assert.Equal(t, 32, GeneratingPercent(1, 4))
	assert.Equal(t, 50, GeneratingPercent(2, 4))
	assert.Equal(t, 85, GeneratingPercent(4, 4))
	assert.Equal(t, 85, GeneratingPercent(9, 4))
	assert.Equal(t, 85, GeneratingPercent(0, 0))
}

func TestReporter_MonotonicAndClamped(t *testing.T) {
	var c Collector
	r := NewReporter(&c, logging.NewTest(t))

	r.Emit(StatusInitializing, "start", 10, "")
	r.Emit(StatusGenerating, "went backwards", 5, "")
	r.Emit(StatusCompleted, "overflow", 140, "")

	got := c.Snapshots()
	require.Len(t, got, 3)
	assert.Equal(t, 10, got[0].Percentage)
	assert.Equal(t, 10, got[1].Percentage)
	assert.Equal(t, 100, got[2].Percentage)
	assert.Equal(t, 100, r.Percentage())
}

func TestReporter_ElapsedAndETA(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	var c Collector
	r := newReporter(&c, nil, clock.now)
	r.SetTotal(4)

	assert.Equal(t, time.Duration(0), r.EstimatedRemaining())

	clock.advance(2 * time.Second)
	r.DocumentDone(2 * time.Second)
	clock.advance(4 * time.Second)
	r.DocumentDone(4 * time.Second)

	s := r.Emit(StatusGenerating, "generating", GeneratingPercent(2, 4), types.DocRiskAssessment)
	assert.Equal(t, int64(6000), s.ElapsedMs)
	// avg 3s * 2 remaining
	assert.Equal(t, int64(6000), s.EstimatedRemainingMs)
	assert.Equal(t, 2, s.Completed)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, types.DocRiskAssessment, s.CurrentDocument)
}

func TestReporter_ErrorKeepsPercentage(t *testing.T) {
	var c Collector
	r := NewReporter(&c, nil)
	r.Emit(StatusInitializing, "validated", PercentValidated, "")
	s := r.Error("invalid context")

	assert.Equal(t, StatusError, s.Status)
	assert.Equal(t, PercentValidated, s.Percentage)
}

func TestReporter_RecoversSinkPanic(t *testing.T) {
	calls := 0
	sink := SinkFunc(func(Snapshot) {
		calls++
		panic("sink exploded")
	})
	r := NewReporter(sink, logging.NewTest(t))

	assert.NotPanics(t, func() {
		r.Emit(StatusInitializing, "start", 0, "")
		r.Emit(StatusCompleted, "done", 100, "")
	})
	assert.Equal(t, 2, calls)
}

func TestReporter_NilSink(t *testing.T) {
	r := NewReporter(nil, nil)
	assert.NotPanics(t, func() { r.Emit(StatusCompleted, "done", 100, "") })
}

func TestChannelSink_DropsWhenFull(t *testing.T) {
	sink := NewChannelSink(1)
	sink.OnProgress(Snapshot{Step: "first"})
	sink.OnProgress(Snapshot{Step: "second"})
	sink.Close()

	var steps []string
	for s := range sink.C() {
		steps = append(steps, s.Step)
	}
	assert.Equal(t, []string{"first"}, steps)
}

func TestMulti(t *testing.T) {
	var a, b Collector
	m := Multi{&a, nil, &b}
	m.OnProgress(Snapshot{Step: "x"})

	_, ok := a.Last()
	assert.True(t, ok)
	last, ok := b.Last()
	assert.True(t, ok)
	assert.Equal(t, "x", last.Step)

	var empty Collector
	_, ok = empty.Last()
	assert.False(t, ok)
}

func TestRedisSink_Publishes(t *testing.T) {
	client, mock := redismock.NewClientMock()
	sink := NewRedisSink(client, "", "pkg-1", logging.NewTest(t))

	s := Snapshot{Status: StatusGenerating, Step: "Generating Offer Analysis", Percentage: 15, Total: 2}
	raw, err := json.Marshal(RedisMessage{PackageID: "pkg-1", Snapshot: s})
	require.NoError(t, err)
	mock.ExpectPublish(DefaultRedisChannel, raw).SetVal(1)

	sink.OnProgress(s)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisSink_PublishErrorIsSwallowed(t *testing.T) {
	client, mock := redismock.NewClientMock()
	sink := NewRedisSink(client, "runs", "pkg-2", nil)

	s := Snapshot{Status: StatusCompleted, Percentage: 100}
	raw, err := json.Marshal(RedisMessage{PackageID: "pkg-2", Snapshot: s})
	require.NoError(t, err)
	mock.ExpectPublish("runs", raw).SetErr(errors.New("connection refused"))

	assert.NotPanics(t, func() { sink.OnProgress(s) })
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisError(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := &RedisError{Message: "redis ping failed", Cause: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "redis ping failed")
}
