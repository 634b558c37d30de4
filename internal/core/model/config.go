package model

import "time"

// TimerConfig contains the durations and policy flags of the Pomodoro cycle.
// Durations are magnitudes: minutes normally, raw seconds when SecondsMode is set.
type TimerConfig struct {
	WorkDuration       int
	ShortBreakDuration int
	LongBreakDuration  int
	SessionsUntilLong  int

	SecondsMode   bool
	AutoStartWork bool
}

// DefaultTimerConfig returns the classic 25/5/15 cycle with a long break every 4 sessions.
func DefaultTimerConfig() TimerConfig {
	return TimerConfig{
		WorkDuration:       25,
		ShortBreakDuration: 5,
		LongBreakDuration:  15,
		SessionsUntilLong:  4,
		AutoStartWork:      true,
	}
}

// MonitorConfig tunes the activity monitor.
type MonitorConfig struct {
	// PollInterval is the idle-time sampling period of the polling strategy.
	PollInterval time.Duration
	// WasIdle is the idle time above which a sample counts as "user was away".
	WasIdle time.Duration
	// ActiveBelow is the idle time under which a sample counts as fresh input.
	ActiveBelow time.Duration
	// Drop is the decrease between consecutive samples that counts as activity.
	Drop time.Duration
	// MaxFailures is the consecutive sampling failure budget.
	MaxFailures int
	// RetryInterval is the delay between attempts to arm an unready backend.
	RetryInterval time.Duration
	// MinMotion is the pointer displacement, in pixels, that counts as activity.
	MinMotion float64
}

// DefaultMonitorConfig returns the polling thresholds used by the activity monitor.
func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		PollInterval:  500 * time.Millisecond,
		WasIdle:       2 * time.Second,
		ActiveBelow:   500 * time.Millisecond,
		Drop:          time.Second,
		MaxFailures:   20,
		RetryInterval: time.Second,
		MinMotion:     8,
	}
}

// IdleConfig controls pause-on-idle during work sessions.
type IdleConfig struct {
	Enabled       bool
	Timeout       time.Duration
	CheckInterval time.Duration
}
