package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Loop is a reactor backed by a single goroutine. Every task, including timer
// expirations, runs on the goroutine that called Run, in the order posted.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	closed  bool
	running atomic.Bool
}

// NewLoop creates an idle loop. Call Run to start processing.
func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Run processes tasks until ctx is cancelled. Tasks still queued at that point
// are dropped.
func (loop *Loop) Run(ctx context.Context) {
	loop.running.Store(true)
	defer loop.running.Store(false)

	for {
		select {
		case <-ctx.Done():
			loop.mu.Lock()
			loop.closed = true
			loop.queue = nil
			loop.mu.Unlock()
			return
		case <-loop.wake:
			for _, task := range loop.drain() {
				if ctx.Err() != nil {
					break
				}
				task()
			}
		}
	}
}

// Running reports whether Run is active.
func (loop *Loop) Running() bool {
	return loop.running.Load()
}

// Post queues fn. It is safe to call from any goroutine; posting after the
// loop stopped drops the task.
func (loop *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	loop.mu.Lock()
	if loop.closed {
		loop.mu.Unlock()
		return
	}
	loop.queue = append(loop.queue, fn)
	loop.mu.Unlock()

	select {
	case loop.wake <- struct{}{}:
	default:
	}
}

// ScheduleOnce runs fn on the loop after delay.
func (loop *Loop) ScheduleOnce(delay time.Duration, fn func()) Handle {
	handle := &loopHandle{}
	handle.arm(delay, func() {
		loop.Post(func() {
			if handle.cancelled.Swap(true) {
				return
			}
			fn()
		})
	})
	return handle
}

// SchedulePeriodic runs fn on the loop every interval. The next run is armed
// after the previous one returns, so runs never overlap.
func (loop *Loop) SchedulePeriodic(interval time.Duration, fn func() Flow) Handle {
	if interval <= 0 {
		interval = time.Millisecond
	}
	handle := &loopHandle{}
	var fire func()
	fire = func() {
		loop.Post(func() {
			if handle.cancelled.Load() {
				return
			}
			if fn() == Stop {
				handle.cancelled.Store(true)
				return
			}
			if handle.cancelled.Load() {
				return
			}
			handle.arm(interval, fire)
		})
	}
	handle.arm(interval, fire)
	return handle
}

func (loop *Loop) drain() []func() {
	loop.mu.Lock()
	defer loop.mu.Unlock()
	tasks := loop.queue
	loop.queue = nil
	return tasks
}

type loopHandle struct {
	mu        sync.Mutex
	timer     *time.Timer
	cancelled atomic.Bool
}

func (handle *loopHandle) arm(delay time.Duration, fire func()) {
	handle.mu.Lock()
	defer handle.mu.Unlock()
	if handle.cancelled.Load() {
		return
	}
	handle.timer = time.AfterFunc(delay, fire)
}

func (handle *loopHandle) Cancel() {
	handle.cancelled.Store(true)
	handle.mu.Lock()
	defer handle.mu.Unlock()
	if handle.timer != nil {
		handle.timer.Stop()
	}
}
