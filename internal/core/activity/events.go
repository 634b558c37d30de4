package activity

import (
	"errors"
	"io"
	"log/slog"
	"math"

	"tomatray/internal/core/scheduler"
)

var errNoEventSource = errors.New("no input event source")

// EventDetector subscribes to raw input events. Events are handed to the
// scheduler thread before they touch detector state.
type EventDetector struct {
	source    InputEventSource
	scheduler scheduler.Scheduler
	minMotion float64
	logger    *slog.Logger

	subscription Subscription
	signal       func(Signal)
	armed        bool
	generation   uint64
	origin       *point
}

type point struct {
	x float64
	y float64
}

// NewEventDetector creates an event-driven strategy. Pointer motion counts
// only once it moves minMotion pixels away from the first position seen.
func NewEventDetector(sched scheduler.Scheduler, source InputEventSource, minMotion float64, logger *slog.Logger) *EventDetector {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if minMotion < 0 {
		minMotion = 0
	}
	return &EventDetector{
		source:    source,
		scheduler: sched,
		minMotion: minMotion,
		logger:    logger,
	}
}

// Arm subscribes to the input source.
func (detector *EventDetector) Arm(signal func(Signal)) error {
	if detector.source == nil {
		return errNoEventSource
	}
	detector.Disarm()

	detector.generation++
	generation := detector.generation
	subscription, err := detector.source.Subscribe(func(event InputEvent) {
		detector.scheduler.Post(func() {
			detector.handle(generation, event)
		})
	})
	if err != nil {
		return err
	}

	detector.subscription = subscription
	detector.signal = signal
	detector.origin = nil
	detector.armed = true
	return nil
}

// Disarm drops the subscription. Events already queued are ignored.
func (detector *EventDetector) Disarm() {
	detector.armed = false
	if detector.subscription != nil {
		detector.subscription.Unsubscribe()
		detector.subscription = nil
	}
}

func (detector *EventDetector) handle(generation uint64, event InputEvent) {
	if !detector.armed || generation != detector.generation {
		return
	}
	if !detector.qualifies(event) {
		return
	}

	detector.logger.Debug("input event", "kind", event.Kind)
	detector.Disarm()
	if detector.signal != nil {
		detector.signal(SignalActivity)
	}
}

func (detector *EventDetector) qualifies(event InputEvent) bool {
	switch event.Kind {
	case EventKey, EventButton:
		return true
	case EventMotion:
		if detector.origin == nil {
			detector.origin = &point{x: event.X, y: event.Y}
			return detector.minMotion == 0
		}
		distance := math.Hypot(event.X-detector.origin.x, event.Y-detector.origin.y)
		return distance >= detector.minMotion
	default:
		return false
	}
}
