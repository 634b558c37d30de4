// Package scheduler provides the single-threaded reactor that drives the timer
// and the activity monitor.
package scheduler

import "time"

// Flow tells a periodic task whether to keep its registration.
type Flow bool

const (
	// Continue keeps the periodic registration armed.
	Continue Flow = true
	// Stop releases the periodic registration after the current run.
	Stop Flow = false
)

// Handle is a cancellable registration.
type Handle interface {
	// Cancel drops the registration. A cancelled task never runs again.
	Cancel()
}

// Scheduler runs callbacks on one logical thread.
type Scheduler interface {
	// Post queues fn to run on the scheduler thread as soon as possible.
	Post(fn func())
	// ScheduleOnce runs fn once after delay.
	ScheduleOnce(delay time.Duration, fn func()) Handle
	// SchedulePeriodic runs fn every interval until it returns Stop or the
	// handle is cancelled.
	SchedulePeriodic(interval time.Duration, fn func() Flow) Handle
}

// Cancel cancels handle when it is not nil.
func Cancel(handle Handle) {
	if handle != nil {
		handle.Cancel()
	}
}
