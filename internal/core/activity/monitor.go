package activity

import (
	"io"
	"log/slog"
	"time"

	"tomatray/internal/core/model"
	"tomatray/internal/core/scheduler"
)

// Monitor raises a one-shot activity callback per Start. It must be used
// from the scheduler thread; a nil *Monitor ignores every call.
type Monitor struct {
	scheduler scheduler.Scheduler
	detector  Detector
	idle      IdleSource
	config    model.MonitorConfig
	logger    *slog.Logger

	active        bool
	epoch         uint64
	armFailures   int
	retry         scheduler.Handle
	callback      func()
	onUnavailable func()
}

// NewMonitor creates an inactive monitor. idle may be nil when only the
// event-driven strategy is available; IdleTime then reports UnknownIdle.
func NewMonitor(sched scheduler.Scheduler, detector Detector, idle IdleSource, config model.MonitorConfig, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if config.RetryInterval <= 0 {
		config.RetryInterval = time.Second
	}
	if config.MaxFailures <= 0 {
		config.MaxFailures = 20
	}
	return &Monitor{
		scheduler: sched,
		detector:  detector,
		idle:      idle,
		config:    config,
		logger:    logger,
	}
}

// SetCallback sets the activity callback.
func (monitor *Monitor) SetCallback(callback func()) {
	if monitor == nil {
		return
	}
	monitor.callback = callback
}

// SetOnUnavailable sets a hook fired when monitoring gives up on its source.
func (monitor *Monitor) SetOnUnavailable(hook func()) {
	if monitor == nil {
		return
	}
	monitor.onUnavailable = hook
}

// Start arms the detector. It does nothing when already active.
func (monitor *Monitor) Start() {
	if monitor == nil || monitor.active || monitor.detector == nil {
		return
	}
	monitor.active = true
	monitor.epoch++
	monitor.armFailures = 0
	monitor.logger.Debug("activity monitor started")
	monitor.arm(monitor.epoch)
}

// Stop disarms the detector and cancels pending retries. It is idempotent.
func (monitor *Monitor) Stop() {
	if monitor == nil || !monitor.active {
		return
	}
	monitor.active = false
	monitor.teardown()
	monitor.logger.Debug("activity monitor stopped")
}

// Close stops monitoring for good.
func (monitor *Monitor) Close() {
	monitor.Stop()
}

// IsActive reports whether monitoring is armed.
func (monitor *Monitor) IsActive() bool {
	return monitor != nil && monitor.active
}

// IdleTime queries the idle source synchronously. It returns UnknownIdle when
// the source is missing or failed.
func (monitor *Monitor) IdleTime() time.Duration {
	if monitor == nil || monitor.idle == nil {
		return UnknownIdle
	}
	idle, err := monitor.idle.IdleDuration()
	if err != nil {
		monitor.logger.Debug("idle time unavailable", "error", err)
		return UnknownIdle
	}
	if idle < 0 {
		return 0
	}
	return idle
}

// LastIdleTime returns the latest sample of a polling detector, or
// UnknownIdle for other strategies.
func (monitor *Monitor) LastIdleTime() time.Duration {
	if monitor == nil {
		return UnknownIdle
	}
	if poller, ok := monitor.detector.(*PollingDetector); ok {
		return poller.LastIdleTime()
	}
	return UnknownIdle
}

func (monitor *Monitor) arm(epoch uint64) {
	err := monitor.detector.Arm(func(signal Signal) {
		monitor.handleSignal(epoch, signal)
	})
	if err == nil {
		return
	}

	monitor.armFailures++
	if monitor.armFailures > monitor.config.MaxFailures {
		monitor.logger.Warn("activity monitor disabled", "error", err, "attempts", monitor.armFailures)
		monitor.handleSignal(epoch, SignalUnavailable)
		return
	}
	monitor.logger.Debug("activity backend not ready, retrying", "error", err, "in", monitor.config.RetryInterval)
	monitor.retry = monitor.scheduler.ScheduleOnce(monitor.config.RetryInterval, func() {
		monitor.retry = nil
		if monitor.active && monitor.epoch == epoch {
			monitor.arm(epoch)
		}
	})
}

func (monitor *Monitor) handleSignal(epoch uint64, signal Signal) {
	if !monitor.active || monitor.epoch != epoch {
		return
	}
	monitor.active = false
	monitor.teardown()

	switch signal {
	case SignalActivity:
		monitor.logger.Info("user activity detected")
		if monitor.callback != nil {
			monitor.callback()
		}
	case SignalUnavailable:
		monitor.logger.Warn("activity source unavailable, monitoring stopped")
		if monitor.onUnavailable != nil {
			monitor.onUnavailable()
		}
	}
}

func (monitor *Monitor) teardown() {
	scheduler.Cancel(monitor.retry)
	monitor.retry = nil
	monitor.detector.Disarm()
}
