package app

import (
	"time"

	"tomatray/internal/core/timer"
)

// EventType defines the type of App event.
type EventType string

const (
	EventStateChange EventType = "state_change"
	EventIdlePause   EventType = "idle_pause"
	EventIdleResume  EventType = "idle_resume"
	EventAutoStart   EventType = "auto_start"
	// EventMonitorLost means activity detection gave up on its backend.
	EventMonitorLost EventType = "monitor_lost"
)

// Event represents an App update for observers outside the loop.
type Event struct {
	Type      EventType
	State     timer.State
	Remaining time.Duration
	Session   int
	At        time.Time
}

// Status is a snapshot of everything the views render.
type Status struct {
	State        timer.State
	Phase        timer.State
	Minutes      int
	Seconds      int
	Session      int
	Progress     float64
	PausedByIdle bool
	AutoStart    bool
}

// Countdown formats the remaining time as MM:SS.
func (status Status) Countdown() string {
	return formatClock(status.Minutes, status.Seconds)
}

// Title describes the current phase for labels and tooltips.
func (status Status) Title() string {
	switch status.State {
	case timer.StateIdle:
		return "Ready to start"
	case timer.StateWork:
		return "Work"
	case timer.StateShortBreak:
		return "Short Break"
	case timer.StateLongBreak:
		return "Long Break"
	case timer.StatePaused:
		if status.PausedByIdle {
			return "Paused (idle)"
		}
		return "Paused"
	default:
		return ""
	}
}

// Tooltip is the one-line tray description.
func (status Status) Tooltip() string {
	if status.State == timer.StateIdle || status.State == timer.StatePaused {
		return "Pomodoro - " + status.Title()
	}
	return "Pomodoro - " + status.Title() + " " + status.Countdown()
}

// BreakTitle is the overlay heading for a break phase.
func BreakTitle(state timer.State) string {
	if state == timer.StateLongBreak {
		return "Long Break"
	}
	return "Short Break"
}
