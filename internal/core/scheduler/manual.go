package scheduler

import (
	"sync"
	"time"
)

// Manual is a scheduler driven by a virtual clock. Nothing runs until Advance
// is called, which makes it suitable for deterministic tests and simulations.
type Manual struct {
	mu    sync.Mutex
	now   time.Duration
	seq   uint64
	tasks []*manualTask
}

type manualTask struct {
	seq       uint64
	due       time.Duration
	interval  time.Duration
	once      func()
	periodic  func() Flow
	cancelled bool
	owner     *Manual
}

// NewManual creates a manual scheduler at virtual time zero.
func NewManual() *Manual {
	return &Manual{}
}

// Now returns the elapsed virtual time.
func (manual *Manual) Now() time.Duration {
	manual.mu.Lock()
	defer manual.mu.Unlock()
	return manual.now
}

// Pending returns the number of armed registrations.
func (manual *Manual) Pending() int {
	manual.mu.Lock()
	defer manual.mu.Unlock()
	count := 0
	for _, task := range manual.tasks {
		if !task.cancelled {
			count++
		}
	}
	return count
}

// Post queues fn to run at the current virtual time.
func (manual *Manual) Post(fn func()) {
	if fn == nil {
		return
	}
	manual.add(&manualTask{once: fn})
}

// ScheduleOnce runs fn once after delay of virtual time.
func (manual *Manual) ScheduleOnce(delay time.Duration, fn func()) Handle {
	task := &manualTask{once: fn, interval: delay}
	manual.add(task)
	return task
}

// SchedulePeriodic runs fn every interval of virtual time.
func (manual *Manual) SchedulePeriodic(interval time.Duration, fn func() Flow) Handle {
	if interval <= 0 {
		interval = time.Millisecond
	}
	task := &manualTask{periodic: fn, interval: interval}
	manual.add(task)
	return task
}

// Advance moves the clock forward by delta, running every task that falls due
// in chronological order. Tasks scheduled by running tasks are honoured when
// they fall inside the window.
func (manual *Manual) Advance(delta time.Duration) {
	manual.mu.Lock()
	target := manual.now + delta
	manual.mu.Unlock()

	for {
		task := manual.next(target)
		if task == nil {
			break
		}
		if task.once != nil {
			task.once()
			continue
		}
		if task.periodic() == Stop {
			continue
		}
		manual.mu.Lock()
		if !task.cancelled {
			manual.seq++
			task.seq = manual.seq
			task.due = manual.now + task.interval
			manual.tasks = append(manual.tasks, task)
		}
		manual.mu.Unlock()
	}

	manual.mu.Lock()
	manual.now = target
	manual.mu.Unlock()
}

// RunPending runs tasks that are already due without moving the clock.
func (manual *Manual) RunPending() {
	manual.Advance(0)
}

func (manual *Manual) add(task *manualTask) {
	manual.mu.Lock()
	defer manual.mu.Unlock()
	manual.seq++
	task.seq = manual.seq
	task.due = manual.now + task.interval
	task.owner = manual
	manual.tasks = append(manual.tasks, task)
}

// next removes and returns the earliest due task, advancing the clock to it.
func (manual *Manual) next(target time.Duration) *manualTask {
	manual.mu.Lock()
	defer manual.mu.Unlock()

	index := -1
	for i, task := range manual.tasks {
		if task.cancelled || task.due > target {
			continue
		}
		if index < 0 {
			index = i
			continue
		}
		best := manual.tasks[index]
		if task.due < best.due || (task.due == best.due && task.seq < best.seq) {
			index = i
		}
	}
	if index < 0 {
		manual.compactLocked()
		return nil
	}

	task := manual.tasks[index]
	manual.tasks = append(manual.tasks[:index], manual.tasks[index+1:]...)
	if task.due > manual.now {
		manual.now = task.due
	}
	return task
}

func (manual *Manual) compactLocked() {
	kept := manual.tasks[:0]
	for _, task := range manual.tasks {
		if !task.cancelled {
			kept = append(kept, task)
		}
	}
	manual.tasks = kept
}

func (task *manualTask) Cancel() {
	task.owner.mu.Lock()
	defer task.owner.mu.Unlock()
	task.cancelled = true
}
