// Package timer implements the Pomodoro phase state machine.
package timer

import (
	"io"
	"log/slog"
	"time"

	"tomatray/internal/core/model"
	"tomatray/internal/core/scheduler"
)

// TickInterval is the countdown cadence.
const TickInterval = time.Second

// Timer is a single-owner state machine driven by a scheduler. All methods
// must be called from the scheduler thread; a nil *Timer ignores every call.
type Timer struct {
	scheduler scheduler.Scheduler
	logger    *slog.Logger
	callbacks Callbacks

	state         State
	previousState State
	sessionCount  int

	workDuration       int
	shortBreakDuration int
	longBreakDuration  int
	sessionsUntilLong  int
	secondsMode        bool

	autoStartWork           bool
	workSessionJustFinished bool

	remainingSeconds int
	totalSeconds     int
	tick             scheduler.Handle
}

// New creates an idle Timer loaded with the work duration.
func New(sched scheduler.Scheduler, config model.TimerConfig, logger *slog.Logger) *Timer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	timer := &Timer{
		scheduler:     sched,
		logger:        logger,
		state:         StateIdle,
		previousState: StateIdle,
		sessionCount:  1,
		secondsMode:   config.SecondsMode,
		autoStartWork: config.AutoStartWork,
	}
	timer.applyDurations(config.WorkDuration, config.ShortBreakDuration, config.LongBreakDuration, config.SessionsUntilLong)
	timer.remainingSeconds = timer.durationFor(StateWork)
	timer.totalSeconds = timer.remainingSeconds
	return timer
}

// SetCallbacks replaces the observers.
func (timer *Timer) SetCallbacks(callbacks Callbacks) {
	if timer == nil {
		return
	}
	timer.callbacks = callbacks
}

// SetDurations updates the phase magnitudes and the long-break cadence. The
// running phase keeps its countdown; new values apply at the next phase entry.
func (timer *Timer) SetDurations(work, shortBreak, longBreak, sessionsUntilLong int) {
	if timer == nil {
		return
	}
	timer.applyDurations(work, shortBreak, longBreak, sessionsUntilLong)
}

// SetDurationMode selects raw seconds (true) or minutes (false).
func (timer *Timer) SetDurationMode(seconds bool) {
	if timer == nil {
		return
	}
	timer.secondsMode = seconds
}

// SetAutoStartWork records the auto-start policy. The Timer does not act on it;
// the orchestrator consults AutoStartWork.
func (timer *Timer) SetAutoStartWork(autoStart bool) {
	if timer == nil {
		return
	}
	timer.autoStartWork = autoStart
}

// AutoStartWork returns the auto-start policy flag.
func (timer *Timer) AutoStartWork() bool {
	if timer == nil {
		return false
	}
	return timer.autoStartWork
}

// WorkSessionJustFinished reports whether the last transition was a completed
// work session that has not yet been followed by another work start.
func (timer *Timer) WorkSessionJustFinished() bool {
	if timer == nil {
		return false
	}
	return timer.workSessionJustFinished
}

// Start begins a work session from IDLE or resumes from PAUSED.
func (timer *Timer) Start() {
	if timer == nil {
		return
	}

	switch timer.state {
	case StateIdle:
		timer.workSessionJustFinished = false
		timer.setState(StateWork)
	case StatePaused:
		timer.state = timer.previousState
		timer.logger.Debug("timer resumed", "state", timer.state, "remaining", timer.remainingSeconds)
		if timer.callbacks.OnState != nil {
			timer.callbacks.OnState(timer.state)
		}
	}

	if timer.tick == nil && timer.state.Running() {
		timer.armTicking()
	}
}

// Pause freezes a running phase. Pausing IDLE or PAUSED does nothing.
func (timer *Timer) Pause() {
	if timer == nil {
		return
	}
	timer.cancelTicking()

	if !timer.state.Running() {
		return
	}
	timer.previousState = timer.state
	timer.state = StatePaused
	timer.logger.Debug("timer paused", "previous", timer.previousState, "remaining", timer.remainingSeconds)
	if timer.callbacks.OnState != nil {
		timer.callbacks.OnState(StatePaused)
	}
}

// Reset returns to IDLE with a fresh session count.
func (timer *Timer) Reset() {
	if timer == nil {
		return
	}
	timer.cancelTicking()

	timer.sessionCount = 1
	timer.previousState = StateIdle
	timer.workSessionJustFinished = false
	timer.setState(StateIdle)
}

// SkipPhase ends the current phase early. Skipping work behaves like the work
// countdown running out; skipping a break starts the next work session.
func (timer *Timer) SkipPhase() {
	if timer == nil {
		return
	}
	timer.cancelTicking()

	switch timer.state {
	case StateWork:
		timer.transitionToNextState()
	case StateShortBreak, StateLongBreak:
		timer.workSessionJustFinished = false
		timer.setState(StateWork)
		timer.armIfCurrent(StateWork)
	case StateIdle, StatePaused:
	}
}

// ExtendBreak adds seconds to the running break. Outside breaks it does nothing.
func (timer *Timer) ExtendBreak(seconds int) {
	if timer == nil || seconds <= 0 {
		return
	}
	if !timer.state.IsBreak() {
		return
	}

	timer.remainingSeconds += seconds
	timer.totalSeconds += seconds
	timer.logger.Debug("break extended", "state", timer.state, "by", seconds, "remaining", timer.remainingSeconds)
	timer.emitTick()
}

// Close cancels any pending tick.
func (timer *Timer) Close() {
	if timer == nil {
		return
	}
	timer.cancelTicking()
}

// State returns the current phase.
func (timer *Timer) State() State {
	if timer == nil {
		return StateIdle
	}
	return timer.state
}

// PreviousState returns the phase restored by Start while PAUSED.
func (timer *Timer) PreviousState() State {
	if timer == nil {
		return StateIdle
	}
	return timer.previousState
}

// Session returns the 1-based session counter.
func (timer *Timer) Session() int {
	if timer == nil {
		return 1
	}
	return timer.sessionCount
}

// Remaining returns the countdown split into minutes and seconds.
func (timer *Timer) Remaining() (minutes, seconds int) {
	if timer == nil {
		return 0, 0
	}
	return timer.remainingSeconds / 60, timer.remainingSeconds % 60
}

// RemainingSeconds returns the countdown in seconds.
func (timer *Timer) RemainingSeconds() int {
	if timer == nil {
		return 0
	}
	return timer.remainingSeconds
}

// TotalSeconds returns the length of the current phase including extensions.
func (timer *Timer) TotalSeconds() int {
	if timer == nil {
		return 0
	}
	return timer.totalSeconds
}

// Ticking reports whether a tick registration is armed.
func (timer *Timer) Ticking() bool {
	return timer != nil && timer.tick != nil
}

// Progress returns the elapsed fraction of the current phase in [0, 1].
func (timer *Timer) Progress() float64 {
	if timer == nil || timer.totalSeconds <= 0 {
		return 0
	}
	progress := float64(timer.totalSeconds-timer.remainingSeconds) / float64(timer.totalSeconds)
	if progress < 0 {
		return 0
	}
	if progress > 1 {
		return 1
	}
	return progress
}

func (timer *Timer) armTicking() {
	if timer.scheduler == nil {
		return
	}
	timer.tick = timer.scheduler.SchedulePeriodic(TickInterval, timer.onTick)
}

// armIfCurrent starts ticking unless an observer moved the timer away from
// state while it was being entered.
func (timer *Timer) armIfCurrent(state State) {
	if timer.state == state && timer.tick == nil {
		timer.armTicking()
	}
}

func (timer *Timer) cancelTicking() {
	if timer.tick != nil {
		timer.tick.Cancel()
		timer.tick = nil
	}
}

func (timer *Timer) onTick() scheduler.Flow {
	if timer.remainingSeconds > 0 {
		timer.remainingSeconds--
	}
	if timer.remainingSeconds > 0 {
		timer.emitTick()
		return scheduler.Continue
	}

	timer.tick = nil
	timer.transitionToNextState()
	return scheduler.Stop
}

func (timer *Timer) transitionToNextState() {
	switch timer.state {
	case StateWork:
		timer.sessionCount++
		timer.workSessionJustFinished = true
		timer.logger.Info("work session complete", "session", timer.sessionCount)
		if timer.callbacks.OnSessionComplete != nil {
			timer.callbacks.OnSessionComplete(StateWork)
			if timer.state != StateWork {
				return
			}
		}

		// session_count was already incremented, hence the -1.
		next := StateShortBreak
		if (timer.sessionCount-1)%timer.sessionsUntilLong == 0 {
			next = StateLongBreak
		}
		timer.setState(next)
		timer.armIfCurrent(next)
	case StateShortBreak, StateLongBreak:
		completed := timer.state
		timer.workSessionJustFinished = false
		timer.logger.Info("break complete", "state", completed)
		if timer.callbacks.OnSessionComplete != nil {
			timer.callbacks.OnSessionComplete(completed)
		}
		timer.setState(StateIdle)
	case StateIdle, StatePaused:
	}
}

func (timer *Timer) setState(next State) {
	timer.state = next
	timer.remainingSeconds = timer.durationFor(next)
	timer.totalSeconds = timer.remainingSeconds
	timer.logger.Debug("timer state", "state", next, "seconds", timer.totalSeconds, "session", timer.sessionCount)

	if timer.callbacks.OnState != nil {
		timer.callbacks.OnState(next)
	}
	timer.emitTick()
}

func (timer *Timer) emitTick() {
	if timer.callbacks.OnTick != nil {
		timer.callbacks.OnTick(timer.remainingSeconds/60, timer.remainingSeconds%60)
	}
}

func (timer *Timer) durationFor(state State) int {
	var duration int
	switch state {
	case StateShortBreak:
		duration = timer.shortBreakDuration
	case StateLongBreak:
		duration = timer.longBreakDuration
	case StateWork, StateIdle, StatePaused:
		duration = timer.workDuration
	}
	if timer.secondsMode {
		return duration
	}
	return duration * 60
}

func (timer *Timer) applyDurations(work, shortBreak, longBreak, sessionsUntilLong int) {
	timer.workDuration = nonNegative(work)
	timer.shortBreakDuration = nonNegative(shortBreak)
	timer.longBreakDuration = nonNegative(longBreak)
	if sessionsUntilLong < 1 {
		sessionsUntilLong = 1
	}
	timer.sessionsUntilLong = sessionsUntilLong
}

func nonNegative(value int) int {
	if value < 0 {
		return 0
	}
	return value
}
