package activity

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"tomatray/internal/core/model"
	"tomatray/internal/core/scheduler"
)

var errNoIdleSource = errors.New("no idle source")

// PollingDetector samples an IdleSource periodically and signals activity
// when the idle time resets.
type PollingDetector struct {
	source    IdleSource
	scheduler scheduler.Scheduler
	config    model.MonitorConfig
	logger    *slog.Logger

	handle   scheduler.Handle
	signal   func(Signal)
	last     time.Duration
	failures int
}

// NewPollingDetector creates a polling strategy over source.
func NewPollingDetector(sched scheduler.Scheduler, source IdleSource, config model.MonitorConfig, logger *slog.Logger) *PollingDetector {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	defaults := model.DefaultMonitorConfig()
	if config.PollInterval <= 0 {
		config.PollInterval = defaults.PollInterval
	}
	if config.WasIdle <= 0 {
		config.WasIdle = defaults.WasIdle
	}
	if config.ActiveBelow <= 0 {
		config.ActiveBelow = defaults.ActiveBelow
	}
	if config.Drop <= 0 {
		config.Drop = defaults.Drop
	}
	if config.MaxFailures <= 0 {
		config.MaxFailures = defaults.MaxFailures
	}
	return &PollingDetector{
		source:    source,
		scheduler: sched,
		config:    config,
		logger:    logger,
		last:      UnknownIdle,
	}
}

// Arm takes an initial sample and starts polling.
func (detector *PollingDetector) Arm(signal func(Signal)) error {
	if detector.source == nil {
		return errNoIdleSource
	}
	detector.Disarm()

	detector.signal = signal
	detector.failures = 0
	detector.last = detector.sample()
	detector.handle = detector.scheduler.SchedulePeriodic(detector.config.PollInterval, detector.poll)
	return nil
}

// Disarm cancels the pending sample.
func (detector *PollingDetector) Disarm() {
	scheduler.Cancel(detector.handle)
	detector.handle = nil
}

// ActivityThreshold returns the idle-time drop between two samples that
// counts as activity.
func (detector *PollingDetector) ActivityThreshold() time.Duration {
	return detector.config.Drop
}

// SetActivityThreshold changes the drop threshold. It applies to the next sample.
func (detector *PollingDetector) SetActivityThreshold(drop time.Duration) {
	if drop > 0 {
		detector.config.Drop = drop
	}
}

// LastIdleTime returns the most recent successful sample, or UnknownIdle.
func (detector *PollingDetector) LastIdleTime() time.Duration {
	return detector.last
}

func (detector *PollingDetector) sample() time.Duration {
	idle, err := detector.source.IdleDuration()
	if err != nil {
		return UnknownIdle
	}
	if idle < 0 {
		return 0
	}
	return idle
}

func (detector *PollingDetector) poll() scheduler.Flow {
	current, err := detector.source.IdleDuration()
	if err != nil {
		detector.failures++
		if detector.failures > detector.config.MaxFailures {
			detector.logger.Warn("idle sampling failed too often", "error", err, "failures", detector.failures)
			detector.handle = nil
			detector.fire(SignalUnavailable)
			return scheduler.Stop
		}
		if errors.Is(err, ErrUnavailable) {
			detector.logger.Debug("idle source unavailable", "failures", detector.failures)
		} else {
			detector.logger.Debug("idle sample failed", "error", err, "failures", detector.failures)
		}
		return scheduler.Continue
	}
	detector.failures = 0
	if current < 0 {
		current = 0
	}

	previous := detector.last
	detector.last = current
	if previous == UnknownIdle {
		return scheduler.Continue
	}
	if !detector.isActivity(previous, current) {
		return scheduler.Continue
	}

	detector.logger.Debug("idle time reset", "from", previous, "to", current)
	detector.handle = nil
	detector.fire(SignalActivity)
	return scheduler.Stop
}

// isActivity reports a return from idleness, or a partial reset of the idle
// counter between two samples.
func (detector *PollingDetector) isActivity(previous, current time.Duration) bool {
	if previous >= detector.config.WasIdle && current < detector.config.ActiveBelow {
		return true
	}
	return previous-current > detector.config.Drop
}

func (detector *PollingDetector) fire(signal Signal) {
	if detector.signal != nil {
		detector.signal(signal)
	}
}
