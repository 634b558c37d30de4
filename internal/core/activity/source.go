// Package activity detects the end of user inactivity. A Monitor arms a
// Detector strategy and reports the first sign of input exactly once per Start.
package activity

import (
	"errors"
	"time"
)

// ErrUnavailable indicates the platform cannot report user activity.
var ErrUnavailable = errors.New("activity source unavailable")

// UnknownIdle is returned by Monitor.IdleTime when the idle source failed.
// It is distinct from a zero idle time.
const UnknownIdle time.Duration = -1

// IdleSource reports the time since the last user input.
type IdleSource interface {
	IdleDuration() (time.Duration, error)
}

// IdleSourceFunc adapts a function to IdleSource.
type IdleSourceFunc func() (time.Duration, error)

// IdleDuration calls fn.
func (fn IdleSourceFunc) IdleDuration() (time.Duration, error) {
	return fn()
}

// EventKind classifies raw input events.
type EventKind int

const (
	EventKey EventKind = iota
	EventButton
	EventMotion
)

// InputEvent is a raw input notification from the windowing system.
// X and Y are only meaningful for motion events.
type InputEvent struct {
	Kind EventKind
	X    float64
	Y    float64
}

// Subscription is an active input event registration.
type Subscription interface {
	Unsubscribe()
}

// InputEventSource delivers raw input events. The handler may be called from
// any goroutine.
type InputEventSource interface {
	Subscribe(handler func(InputEvent)) (Subscription, error)
}

// Signal is what a Detector reports to its Monitor.
type Signal int

const (
	// SignalActivity means user input was observed.
	SignalActivity Signal = iota
	// SignalUnavailable means the detector gave up on its source.
	SignalUnavailable
)

func (signal Signal) String() string {
	switch signal {
	case SignalActivity:
		return "activity"
	case SignalUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Detector is a monitoring strategy. Arm and Disarm run on the scheduler
// thread, and the signal function must be invoked there too.
type Detector interface {
	// Arm starts watching. An error means the backend is not ready yet.
	Arm(signal func(Signal)) error
	// Disarm stops watching. It is idempotent.
	Disarm()
}
