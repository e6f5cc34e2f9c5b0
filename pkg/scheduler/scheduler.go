// Package scheduler implements a two-lane concurrency scheduler for outbound
// Riot API calls. Each lane bounds its own parallelism and enforces a minimum
// spacing between dispatches; a global ceiling bounds the sum of running work
// across lanes. The interactive lane is always drained before the bulk lane.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/riftwatch/riot-insights/pkg/logging"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Prometheus metrics for scheduler operations.
var (
	schedRunning = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "riot_sched_running",
		Help: "Currently running work items by lane",
	}, []string{"lane"})

	schedQueued = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "riot_sched_queued",
		Help: "Queued work items by lane",
	}, []string{"lane"})

	schedDispatchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "riot_sched_dispatched_total",
		Help: "Total work items dispatched by lane",
	}, []string{"lane"})
)

// Lane identifies a concurrency lane.
type Lane string

const (
	// LaneInteractive serves user-facing single-player lookups.
	LaneInteractive Lane = "interactive"

	// LaneBulk serves match-history backfills and other background work.
	LaneBulk Lane = "bulk"
)

// LaneConfig bounds one lane.
type LaneConfig struct {
	// MaxConcurrent is the maximum number of simultaneously running work items.
	MaxConcurrent int

	// MinSpacing is the minimum interval between the start times of
	// consecutively dispatched items.
	MinSpacing time.Duration
}

// Config holds the scheduler configuration.
type Config struct {
	Interactive LaneConfig
	Bulk        LaneConfig

	// GlobalMax bounds running work across all lanes. It must be set below
	// the sum of the per-lane maxima so lanes actually contend and the
	// interactive preference matters.
	GlobalMax int
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		Interactive: LaneConfig{MaxConcurrent: 4, MinSpacing: 25 * time.Millisecond},
		Bulk:        LaneConfig{MaxConcurrent: 3, MinSpacing: 75 * time.Millisecond},
		GlobalMax:   5,
	}
}

// Task states: pending while queued, claimed once dispatched, cancelled when
// the submitter's context ended before dispatch.
const (
	taskPending int32 = iota
	taskClaimed
	taskCancelled
)

type task struct {
	fn    func(context.Context) error
	ctx   context.Context
	state int32
	err   error
	done  chan struct{}
}

// claim marks the task as dispatched. Returns false if it was cancelled.
func (t *task) claim() bool {
	return atomic.CompareAndSwapInt32(&t.state, taskPending, taskClaimed)
}

// cancel marks a still-pending task as cancelled. Returns false if it was
// already claimed by the dispatcher.
func (t *task) cancel() bool {
	return atomic.CompareAndSwapInt32(&t.state, taskPending, taskCancelled)
}

type laneState struct {
	name    Lane
	cfg     LaneConfig
	limiter *rate.Limiter
	running int
	queue   []*task
}

// Scheduler coordinates the lanes. All mutable state is guarded by mu;
// dispatch happens on submit and on completion of any work item.
type Scheduler struct {
	mu            sync.Mutex
	lanes         map[Lane]*laneState
	order         []Lane
	globalMax     int
	globalRunning int
	logger        zerolog.Logger
}

// New creates a scheduler.
func New(cfg Config) (*Scheduler, error) {
	if cfg.GlobalMax < 1 {
		return nil, fmt.Errorf("global_max must be >= 1 (got %d)", cfg.GlobalMax)
	}
	if cfg.Interactive.MaxConcurrent < 1 || cfg.Bulk.MaxConcurrent < 1 {
		return nil, fmt.Errorf("lane max_concurrent must be >= 1")
	}

	s := &Scheduler{
		lanes:     make(map[Lane]*laneState, 2),
		order:     []Lane{LaneInteractive, LaneBulk},
		globalMax: cfg.GlobalMax,
		logger:    logging.NewLogger("scheduler"),
	}
	s.lanes[LaneInteractive] = newLaneState(LaneInteractive, cfg.Interactive)
	s.lanes[LaneBulk] = newLaneState(LaneBulk, cfg.Bulk)

	return s, nil
}

func newLaneState(name Lane, cfg LaneConfig) *laneState {
	limit := rate.Inf
	if cfg.MinSpacing > 0 {
		limit = rate.Every(cfg.MinSpacing)
	}
	return &laneState{
		name:    name,
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Submit queues fn on the given lane and blocks until it completes, returning
// fn's error. Work begins only once the dispatcher grants a slot: lane
// capacity, global capacity, and lane spacing all gate the start. Queue order
// is FIFO within a lane. If ctx ends before dispatch, Submit returns ctx.Err()
// without running fn.
func (s *Scheduler) Submit(ctx context.Context, lane Lane, fn func(context.Context) error) error {
	s.mu.Lock()
	ls, ok := s.lanes[lane]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("unknown lane %q", lane)
	}

	t := &task{fn: fn, ctx: ctx, done: make(chan struct{})}
	ls.queue = append(ls.queue, t)
	schedQueued.WithLabelValues(string(lane)).Inc()
	s.dispatchLocked()
	s.mu.Unlock()

	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		if t.cancel() {
			return ctx.Err()
		}
		// Already dispatched; wait for the outcome.
		<-t.done
		return t.err
	}
}

// dispatchLocked starts as many queued tasks as capacity allows, always
// preferring the interactive lane. Caller must hold mu.
func (s *Scheduler) dispatchLocked() {
	for s.globalRunning < s.globalMax {
		ls, t := s.nextLocked()
		if t == nil {
			return
		}
		if !t.claim() {
			// Cancelled while queued.
			continue
		}

		delay := ls.limiter.Reserve().Delay()
		ls.running++
		s.globalRunning++
		schedRunning.WithLabelValues(string(ls.name)).Inc()
		schedDispatchedTotal.WithLabelValues(string(ls.name)).Inc()

		s.logger.Debug().
			Str("lane", string(ls.name)).
			Int("lane_running", ls.running).
			Int("global_running", s.globalRunning).
			Dur("spacing_delay", delay).
			Msg("Dispatching work item")

		go s.run(ls, t, delay)
	}
}

// nextLocked pops the head of the first lane with queued work and spare lane
// capacity, in priority order. Caller must hold mu.
func (s *Scheduler) nextLocked() (*laneState, *task) {
	for _, name := range s.order {
		ls := s.lanes[name]
		if ls.running >= ls.cfg.MaxConcurrent {
			continue
		}
		if len(ls.queue) == 0 {
			continue
		}
		t := ls.queue[0]
		ls.queue = ls.queue[1:]
		schedQueued.WithLabelValues(string(name)).Dec()
		return ls, t
	}
	return nil, nil
}

// run executes one dispatched task after its spacing delay, then releases the
// slot and triggers the next dispatch pass.
func (s *Scheduler) run(ls *laneState, t *task, delay time.Duration) {
	if delay > 0 {
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-t.ctx.Done():
			timer.Stop()
			t.err = t.ctx.Err()
			close(t.done)
			s.complete(ls)
			return
		}
	}

	t.err = t.fn(t.ctx)
	close(t.done)
	s.complete(ls)
}

func (s *Scheduler) complete(ls *laneState) {
	s.mu.Lock()
	ls.running--
	s.globalRunning--
	schedRunning.WithLabelValues(string(ls.name)).Dec()
	s.dispatchLocked()
	s.mu.Unlock()
}

// QueueDepth reports the number of queued (not yet dispatched) items in a
// lane. Used by stats endpoints and tests.
func (s *Scheduler) QueueDepth(lane Lane) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	ls, ok := s.lanes[lane]
	if !ok {
		return 0
	}
	return len(ls.queue)
}
