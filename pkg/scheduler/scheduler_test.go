package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newTestScheduler(t *testing.T, cfg Config) *Scheduler {
	t.Helper()
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("create scheduler: %v", err)
	}
	return s
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"default config", DefaultConfig(), false},
		{"zero global max", Config{Interactive: LaneConfig{MaxConcurrent: 1}, Bulk: LaneConfig{MaxConcurrent: 1}}, true},
		{"zero lane max", Config{Interactive: LaneConfig{MaxConcurrent: 0}, Bulk: LaneConfig{MaxConcurrent: 1}, GlobalMax: 2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSubmit_UnknownLane(t *testing.T) {
	s := newTestScheduler(t, DefaultConfig())
	err := s.Submit(context.Background(), Lane("vip"), func(context.Context) error { return nil })
	if err == nil {
		t.Error("Expected error for unknown lane, got nil")
	}
}

func TestSubmit_ReturnsWorkError(t *testing.T) {
	s := newTestScheduler(t, DefaultConfig())

	want := context.DeadlineExceeded
	err := s.Submit(context.Background(), LaneInteractive, func(context.Context) error { return want })
	if err != want {
		t.Errorf("Submit returned %v, want %v", err, want)
	}
}

func TestSubmit_LaneMaxConcurrencyObserved(t *testing.T) {
	s := newTestScheduler(t, Config{
		Interactive: LaneConfig{MaxConcurrent: 2},
		Bulk:        LaneConfig{MaxConcurrent: 2},
		GlobalMax:   4,
	})

	var running, peak int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Submit(context.Background(), LaneInteractive, func(context.Context) error {
				cur := atomic.AddInt32(&running, 1)
				for {
					old := atomic.LoadInt32(&peak)
					if cur <= old || atomic.CompareAndSwapInt32(&peak, old, cur) {
						break
					}
				}
				time.Sleep(20 * time.Millisecond)
				atomic.AddInt32(&running, -1)
				return nil
			})
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&peak); got > 2 {
		t.Errorf("peak concurrency = %d, want <= 2 (lane max)", got)
	}
}

func TestSubmit_GlobalCeilingObserved(t *testing.T) {
	s := newTestScheduler(t, Config{
		Interactive: LaneConfig{MaxConcurrent: 4},
		Bulk:        LaneConfig{MaxConcurrent: 3},
		GlobalMax:   5,
	})

	var running, peak int32
	work := func(context.Context) error {
		cur := atomic.AddInt32(&running, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if cur <= old || atomic.CompareAndSwapInt32(&peak, old, cur) {
				break
			}
		}
		time.Sleep(30 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Submit(context.Background(), LaneInteractive, work)
		}()
	}
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Submit(context.Background(), LaneBulk, work)
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&peak); got > 5 {
		t.Errorf("peak concurrency = %d, want <= 5 (global ceiling)", got)
	}
}

func TestSubmit_FIFOWithinLane(t *testing.T) {
	// Single-slot lane so dispatch order is observable.
	s := newTestScheduler(t, Config{
		Interactive: LaneConfig{MaxConcurrent: 1},
		Bulk:        LaneConfig{MaxConcurrent: 1},
		GlobalMax:   1,
	})

	// Occupy the lane while the queue fills.
	release := make(chan struct{})
	started := make(chan struct{})
	go s.Submit(context.Background(), LaneInteractive, func(context.Context) error {
		close(started)
		<-release
		return nil
	})
	<-started

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Submit(context.Background(), LaneInteractive, func(context.Context) error {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				return nil
			})
		}()
		// Give each goroutine time to enqueue before the next, so queue
		// order matches submission order.
		time.Sleep(10 * time.Millisecond)
	}
	close(release)
	wg.Wait()

	for i, got := range order {
		if got != i {
			t.Fatalf("dispatch order = %v, want FIFO", order)
		}
	}
}

func TestSubmit_InteractivePreferred(t *testing.T) {
	s := newTestScheduler(t, Config{
		Interactive: LaneConfig{MaxConcurrent: 1},
		Bulk:        LaneConfig{MaxConcurrent: 1},
		GlobalMax:   1,
	})

	release := make(chan struct{})
	started := make(chan struct{})
	go s.Submit(context.Background(), LaneBulk, func(context.Context) error {
		close(started)
		<-release
		return nil
	})
	<-started

	// Queue bulk first, then interactive. Interactive must still run first.
	var mu sync.Mutex
	var order []Lane
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.Submit(context.Background(), LaneBulk, func(context.Context) error {
			mu.Lock()
			order = append(order, LaneBulk)
			mu.Unlock()
			return nil
		})
	}()
	time.Sleep(10 * time.Millisecond)

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.Submit(context.Background(), LaneInteractive, func(context.Context) error {
			mu.Lock()
			order = append(order, LaneInteractive)
			mu.Unlock()
			return nil
		})
	}()
	time.Sleep(10 * time.Millisecond)

	close(release)
	wg.Wait()

	if len(order) != 2 || order[0] != LaneInteractive {
		t.Errorf("dispatch order = %v, want interactive first", order)
	}
}

func TestSubmit_CancelledBeforeDispatch(t *testing.T) {
	s := newTestScheduler(t, Config{
		Interactive: LaneConfig{MaxConcurrent: 1},
		Bulk:        LaneConfig{MaxConcurrent: 1},
		GlobalMax:   1,
	})

	release := make(chan struct{})
	started := make(chan struct{})
	go s.Submit(context.Background(), LaneInteractive, func(context.Context) error {
		close(started)
		<-release
		return nil
	})
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	ran := false
	done := make(chan error, 1)
	go func() {
		done <- s.Submit(ctx, LaneInteractive, func(context.Context) error {
			ran = true
			return nil
		})
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	err := <-done
	if err != context.Canceled {
		t.Errorf("Submit returned %v, want context.Canceled", err)
	}
	if ran {
		t.Error("cancelled task still ran")
	}

	close(release)
}

func TestSubmit_MinSpacingBetweenDispatches(t *testing.T) {
	spacing := 50 * time.Millisecond
	s := newTestScheduler(t, Config{
		Interactive: LaneConfig{MaxConcurrent: 4, MinSpacing: spacing},
		Bulk:        LaneConfig{MaxConcurrent: 1},
		GlobalMax:   5,
	})

	var mu sync.Mutex
	var starts []time.Time
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Submit(context.Background(), LaneInteractive, func(context.Context) error {
				mu.Lock()
				starts = append(starts, time.Now())
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	if len(starts) != 3 {
		t.Fatalf("got %d starts, want 3", len(starts))
	}
	// Spread of start times must cover at least two spacing intervals,
	// minus a little scheduling slack.
	var min, max time.Time
	for i, ts := range starts {
		if i == 0 || ts.Before(min) {
			min = ts
		}
		if i == 0 || ts.After(max) {
			max = ts
		}
	}
	if spread := max.Sub(min); spread < 2*spacing-20*time.Millisecond {
		t.Errorf("start spread = %v, want >= ~%v", spread, 2*spacing)
	}
}

func TestQueueDepth(t *testing.T) {
	s := newTestScheduler(t, Config{
		Interactive: LaneConfig{MaxConcurrent: 1},
		Bulk:        LaneConfig{MaxConcurrent: 1},
		GlobalMax:   1,
	})

	release := make(chan struct{})
	started := make(chan struct{})
	go s.Submit(context.Background(), LaneInteractive, func(context.Context) error {
		close(started)
		<-release
		return nil
	})
	<-started

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Submit(context.Background(), LaneInteractive, func(context.Context) error { return nil })
		}()
	}
	time.Sleep(20 * time.Millisecond)

	if got := s.QueueDepth(LaneInteractive); got != 3 {
		t.Errorf("QueueDepth = %d, want 3", got)
	}

	close(release)
	wg.Wait()

	if got := s.QueueDepth(LaneInteractive); got != 0 {
		t.Errorf("QueueDepth after drain = %d, want 0", got)
	}
}
