package activity

import (
	"log/slog"
	"strings"

	"tomatray/internal/core/model"
	"tomatray/internal/core/scheduler"
)

// Backend names a monitoring strategy.
type Backend string

const (
	BackendAuto   Backend = "auto"
	BackendPoll   Backend = "poll"
	BackendEvents Backend = "events"
)

// ParseBackend maps a settings value to a Backend, defaulting to auto.
func ParseBackend(value string) Backend {
	switch Backend(strings.ToLower(strings.TrimSpace(value))) {
	case BackendPoll:
		return BackendPoll
	case BackendEvents:
		return BackendEvents
	default:
		return BackendAuto
	}
}

// NewDetector picks a strategy. Auto prefers polling when the idle source
// answers, and falls back to input events otherwise.
func NewDetector(backend Backend, sched scheduler.Scheduler, idle IdleSource, events InputEventSource, config model.MonitorConfig, logger *slog.Logger) Detector {
	switch backend {
	case BackendPoll:
		return NewPollingDetector(sched, idle, config, logger)
	case BackendEvents:
		return NewEventDetector(sched, events, config.MinMotion, logger)
	}

	if idle != nil {
		if _, err := idle.IdleDuration(); err == nil || events == nil {
			return NewPollingDetector(sched, idle, config, logger)
		}
	}
	if events != nil {
		return NewEventDetector(sched, events, config.MinMotion, logger)
	}
	return NewPollingDetector(sched, idle, config, logger)
}
