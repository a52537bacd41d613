package tracker

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/virtexvirtuoso/Virtuoso-sub006/internal/domain/confluence"
	"github.com/virtexvirtuoso/Virtuoso-sub006/internal/domain/quality"
	"github.com/virtexvirtuoso/Virtuoso-sub006/internal/telemetry"
)

// Config holds tracker tuning parameters
type Config struct {
	Dir       string // Quality log directory
	QueueSize int    // Bounded queue between scorer and writer
}

// DefaultConfig returns the standard tracker configuration
func DefaultConfig(dir string) Config {
	return Config{
		Dir:       dir,
		QueueSize: 1024,
	}
}

// Tracker records every evaluation to the append-only quality log and
// serves windowed aggregate statistics over it.
//
// Record never blocks the scoring path: records flow through a bounded
// queue to a single background writer, and when the queue is full the
// NEWEST record is dropped (the log favors continuity of the existing
// stream over the latest arrival) and counted. Sink failures trip a
// circuit breaker and are counted, never propagated to the caller.
type Tracker struct {
	queue   chan Record
	sink    *Sink
	breaker *gobreaker.CircuitBreaker
	errLog  *rate.Limiter

	drops      atomic.Uint64
	sinkErrors atomic.Uint64
	written    atomic.Uint64

	closed atomic.Bool
	done   chan struct{}
	wg     sync.WaitGroup
}

// New creates a tracker and starts its background writer
func New(cfg Config) (*Tracker, error) {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1024
	}

	sink, err := NewSink(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to create quality sink: %w", err)
	}

	t := &Tracker{
		queue:  make(chan Record, cfg.QueueSize),
		sink:   sink,
		errLog: rate.NewLimiter(rate.Every(5*time.Second), 1),
		done:   make(chan struct{}),
	}

	t.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "quality-sink",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Quality sink circuit breaker state change")
		},
	})

	t.wg.Add(1)
	go t.writeLoop()

	return t, nil
}

// RecordEvaluation enqueues one evaluation outcome for logging.
// Best-effort and non-blocking: a full queue or closed tracker drops the
// record and increments the drop counter.
func (t *Tracker) RecordEvaluation(symbol string, result confluence.Result, decision quality.Decision) {
	if t.closed.Load() {
		t.countDrop()
		return
	}

	rec := NewRecord(symbol, result, decision)
	select {
	case t.queue <- rec:
	default:
		t.countDrop()
	}
}

func (t *Tracker) countDrop() {
	t.drops.Add(1)
	telemetry.GetMetrics().QueueDrops.Inc()
}

func (t *Tracker) writeLoop() {
	defer t.wg.Done()
	defer t.sink.Close()

	for {
		select {
		case rec := <-t.queue:
			t.write(rec)
		case <-t.done:
			// Drain whatever is already queued, then stop
			for {
				select {
				case rec := <-t.queue:
					t.write(rec)
				default:
					return
				}
			}
		}
	}
}

func (t *Tracker) write(rec Record) {
	_, err := t.breaker.Execute(func() (interface{}, error) {
		return nil, t.sink.Append(rec)
	})
	if err == nil {
		t.written.Add(1)
		telemetry.GetMetrics().SinkWrites.Inc()
		return
	}

	t.sinkErrors.Add(1)
	telemetry.GetMetrics().SinkErrors.Inc()
	if err == gobreaker.ErrOpenState {
		telemetry.GetMetrics().BreakerOpen.Inc()
	}

	if t.errLog.Allow() {
		log.Error().
			Err(err).
			Str("symbol", rec.Symbol).
			Uint64("sink_errors", t.sinkErrors.Load()).
			Msg("Quality record write failed")
	}
}

// Close stops the background writer after draining the queue
func (t *Tracker) Close() error {
	if t.closed.Swap(true) {
		return nil
	}
	close(t.done)
	t.wg.Wait()
	return nil
}

// Drops returns the number of records dropped at the queue
func (t *Tracker) Drops() uint64 {
	return t.drops.Load()
}

// SinkErrors returns the number of failed sink writes
func (t *Tracker) SinkErrors() uint64 {
	return t.sinkErrors.Load()
}

// Written returns the number of records durably appended
func (t *Tracker) Written() uint64 {
	return t.written.Load()
}
