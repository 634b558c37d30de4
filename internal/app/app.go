// Package app mediates the timer, the activity monitor and the views. Every
// method except Exec, Subscribe and Remote must run on the scheduler thread.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"tomatray/internal/audio"
	"tomatray/internal/core/activity"
	"tomatray/internal/core/model"
	"tomatray/internal/core/scheduler"
	"tomatray/internal/core/timer"
	"tomatray/internal/dbusctl"
	"tomatray/internal/ui/preferences"
)

// ExtendBreakSeconds is what the overlay "+5 min" action adds.
const ExtendBreakSeconds = 300

// View renders timer state. Calls arrive on the scheduler thread; implementations
// hop to their toolkit thread themselves.
type View interface {
	Update(status Status)
	ShowOverlay(title string, status Status)
	HideOverlay()
	ToggleWindow()
	PresentWindow()
}

// CuePlayer plays notification sounds.
type CuePlayer interface {
	Play(cue audio.Cue)
	Configure(config audio.Config)
}

// SettingsStore persists settings. It is nil in test mode.
type SettingsStore interface {
	Save(settings preferences.Settings) error
}

// LoginItem toggles launching at login.
type LoginItem interface {
	Enabled() bool
	SetEnabled(enabled bool) error
}

// Options wires the App dependencies.
type Options struct {
	Scheduler scheduler.Scheduler
	Timer     *timer.Timer
	Monitor   *activity.Monitor
	View      View
	Cues      CuePlayer
	Store     SettingsStore
	Login     LoginItem
	Settings  preferences.Settings
	// TestMode keeps the timer durations given on the command line.
	TestMode bool
	Logger   *slog.Logger
}

// App is the Pomodoro controller.
type App struct {
	scheduler scheduler.Scheduler
	timer     *timer.Timer
	monitor   *activity.Monitor
	view      View
	cues      CuePlayer
	store     SettingsStore
	login     LoginItem
	logger    *slog.Logger

	settings     preferences.Settings
	idle         model.IdleConfig
	testMode     bool
	pausedByIdle bool
	idleCheck    scheduler.Handle
	lastState    timer.State

	mu     sync.Mutex
	events []chan Event
	closed bool
}

// New wires callbacks between the timer, the monitor and the views.
func New(options Options) *App {
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	app := &App{
		scheduler: options.Scheduler,
		timer:     options.Timer,
		monitor:   options.Monitor,
		view:      options.View,
		cues:      options.Cues,
		store:     options.Store,
		login:     options.Login,
		logger:    logger,
		testMode:  options.TestMode,
		lastState: timer.StateIdle,
		settings:  options.Settings.Normalized(),
	}

	app.timer.SetCallbacks(timer.Callbacks{
		OnState:           app.onState,
		OnTick:            app.onTick,
		OnSessionComplete: app.onSessionComplete,
	})
	app.monitor.SetCallback(app.onActivity)
	app.monitor.SetOnUnavailable(app.onMonitorLost)

	app.ApplySettings(options.Settings)
	app.refresh()
	return app
}

// Exec runs fn on the scheduler thread. Safe from any goroutine.
func (app *App) Exec(fn func()) {
	app.scheduler.Post(fn)
}

// Query runs fn on the scheduler thread and waits for its result.
func Query[T any](ctx context.Context, app *App, fn func() T) (T, error) {
	result := make(chan T, 1)
	app.Exec(func() {
		result <- fn()
	})
	select {
	case value := <-result:
		return value, nil
	case <-ctx.Done():
		var zero T
		return zero, fmt.Errorf("query: %w", ctx.Err())
	}
}

// Subscribe registers an observer channel. Events are dropped when it is full.
func (app *App) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	app.mu.Lock()
	defer app.mu.Unlock()
	if app.closed {
		close(ch)
		return ch
	}
	app.events = append(app.events, ch)
	return ch
}

// Settings returns the active settings.
func (app *App) Settings() preferences.Settings {
	return app.settings
}

// Status returns the current snapshot.
func (app *App) Status() Status {
	minutes, seconds := app.timer.Remaining()
	phase := app.timer.State()
	if phase == timer.StatePaused {
		phase = app.timer.PreviousState()
	}
	return Status{
		State:        app.timer.State(),
		Phase:        phase,
		Minutes:      minutes,
		Seconds:      seconds,
		Session:      app.timer.Session(),
		Progress:     app.timer.Progress(),
		PausedByIdle: app.pausedByIdle,
		AutoStart:    app.settings.AutoStartWork,
	}
}

// PausedByIdle reports whether the current pause came from the idle check.
func (app *App) PausedByIdle() bool {
	return app.pausedByIdle
}

// ToggleTimer starts, resumes or pauses.
func (app *App) ToggleTimer() {
	switch app.timer.State() {
	case timer.StateIdle:
		app.monitor.Stop()
		app.timer.Start()
	case timer.StatePaused:
		app.pausedByIdle = false
		app.monitor.Stop()
		app.timer.Start()
	default:
		app.timer.Pause()
	}
}

// ResetTimer returns to IDLE.
func (app *App) ResetTimer() {
	app.timer.Reset()
}

// ToggleBreak skips to the next phase.
func (app *App) ToggleBreak() {
	app.timer.SkipPhase()
}

// ShowHide toggles the main window.
func (app *App) ShowHide() {
	app.view.ToggleWindow()
}

// StateName returns the wire name of the timer state.
func (app *App) StateName() string {
	return app.timer.State().String()
}

// SkipBreak ends the break from the overlay. The cycle restarts from IDLE.
func (app *App) SkipBreak() {
	app.timer.Reset()
	app.view.HideOverlay()
}

// ExtendBreak adds five minutes to the running break.
func (app *App) ExtendBreak() {
	app.timer.ExtendBreak(ExtendBreakSeconds)
}

// TogglePause pauses or resumes from the overlay.
func (app *App) TogglePause() {
	if app.timer.State() == timer.StatePaused {
		app.pausedByIdle = false
		app.monitor.Stop()
		app.timer.Start()
		return
	}
	app.timer.Pause()
}

// DismissOverlay hides the overlay without touching the timer.
func (app *App) DismissOverlay() {
	app.view.HideOverlay()
}

// SetAutoStart changes and persists the auto-start policy.
func (app *App) SetAutoStart(enabled bool) {
	settings := app.settings
	settings.AutoStartWork = enabled
	app.SaveSettings(settings)
}

// SaveSettings applies settings and persists them outside test mode.
func (app *App) SaveSettings(settings preferences.Settings) {
	app.ApplySettings(settings)
	if app.store == nil || app.testMode {
		return
	}
	if err := app.store.Save(app.settings); err != nil {
		app.logger.Warn("save settings failed", "error", err)
	}
	app.syncLoginItem()
}

func (app *App) syncLoginItem() {
	if app.login == nil || app.login.Enabled() == app.settings.StartAtLogin {
		return
	}
	if err := app.login.SetEnabled(app.settings.StartAtLogin); err != nil {
		app.logger.Warn("update login item failed", "error", err)
	}
}

// ApplySettings pushes settings into the timer, the cue player and the idle
// policy.
func (app *App) ApplySettings(settings preferences.Settings) {
	settings = settings.Normalized()
	previous := app.settings
	app.settings = settings
	app.idle = settings.IdleConfig()

	if !app.testMode {
		app.timer.SetDurations(settings.WorkMinutes, settings.ShortBreakMinutes, settings.LongBreakMinutes, settings.SessionsUntilLong)
	}
	app.timer.SetAutoStartWork(settings.AutoStartWork)
	if app.cues != nil {
		app.cues.Configure(settings.AudioConfig())
	}

	switch app.timer.State() {
	case timer.StateWork:
		app.startIdleChecks()
	case timer.StateIdle:
		if settings.AutoStartWork && !previous.AutoStartWork {
			app.monitor.Start()
		} else if !settings.AutoStartWork {
			app.monitor.Stop()
		}
	}
	app.refresh()
}

// Dispatch runs a remote method by name.
func (app *App) Dispatch(method string) error {
	switch method {
	case dbusctl.MethodToggleTimer:
		app.ToggleTimer()
	case dbusctl.MethodResetTimer:
		app.ResetTimer()
	case dbusctl.MethodToggleBreak:
		app.ToggleBreak()
	case dbusctl.MethodShowHide:
		app.ShowHide()
	case dbusctl.MethodGetState:
	default:
		return fmt.Errorf("unknown method %q", method)
	}
	return nil
}

// Close stops background work and closes subscriber channels.
func (app *App) Close() {
	app.stopIdleChecks()
	app.monitor.Close()
	app.timer.Close()

	app.mu.Lock()
	defer app.mu.Unlock()
	if app.closed {
		return
	}
	app.closed = true
	for _, ch := range app.events {
		close(ch)
	}
	app.events = nil
}

func (app *App) onState(state timer.State) {
	resumed := app.lastState == timer.StatePaused && state != timer.StateIdle
	app.lastState = state

	switch state {
	case timer.StateIdle:
		app.view.HideOverlay()
		app.stopIdleChecks()
		app.pausedByIdle = false
		if app.settings.AutoStartWork {
			app.logger.Debug("waiting for activity to start work")
			app.monitor.Start()
		} else {
			app.monitor.Stop()
		}
	case timer.StateWork:
		if !resumed {
			app.play(audio.CueWorkStart)
		}
		app.view.HideOverlay()
		app.monitor.Stop()
		app.startIdleChecks()
	case timer.StateShortBreak, timer.StateLongBreak:
		if !resumed {
			if state == timer.StateLongBreak {
				app.play(audio.CueLongBreakStart)
			} else {
				app.play(audio.CueBreakStart)
			}
		}
		app.stopIdleChecks()
	case timer.StatePaused:
		if !app.pausedByIdle {
			app.stopIdleChecks()
		}
	}

	status := app.Status()
	if state.IsBreak() {
		app.view.ShowOverlay(BreakTitle(state), status)
	}
	app.view.Update(status)
	app.emit(Event{Type: EventStateChange, State: state, Remaining: app.remaining(), Session: status.Session})
}

func (app *App) onTick(_, _ int) {
	app.view.Update(app.Status())
}

func (app *App) onSessionComplete(completed timer.State) {
	switch completed {
	case timer.StateWork:
		app.play(audio.CueSessionComplete)
	case timer.StateShortBreak, timer.StateLongBreak:
		app.play(audio.CueTimerFinish)
	}
}

func (app *App) onActivity() {
	state := app.timer.State()
	switch {
	case state == timer.StatePaused && app.pausedByIdle:
		app.logger.Info("activity detected, resuming work")
		app.pausedByIdle = false
		app.timer.Start()
		app.play(audio.CueIdleResume)
		app.view.PresentWindow()
		app.emit(Event{Type: EventIdleResume, State: app.timer.State(), Remaining: app.remaining()})
	case state == timer.StateIdle && app.settings.AutoStartWork:
		app.logger.Info("activity detected, starting work")
		app.monitor.Stop()
		app.timer.Start()
		app.emit(Event{Type: EventAutoStart, State: app.timer.State(), Remaining: app.remaining()})
	}
}

func (app *App) onMonitorLost() {
	app.logger.Warn("activity detection unavailable; resume manually")
	app.emit(Event{Type: EventMonitorLost, State: app.timer.State(), Remaining: app.remaining()})
}

func (app *App) startIdleChecks() {
	app.stopIdleChecks()
	if !app.idle.Enabled || app.idle.CheckInterval <= 0 {
		return
	}
	app.idleCheck = app.scheduler.SchedulePeriodic(app.idle.CheckInterval, app.checkIdle)
}

func (app *App) stopIdleChecks() {
	scheduler.Cancel(app.idleCheck)
	app.idleCheck = nil
}

func (app *App) checkIdle() scheduler.Flow {
	if app.timer.State() != timer.StateWork {
		return scheduler.Continue
	}
	idle := app.monitor.IdleTime()
	if idle == activity.UnknownIdle {
		return scheduler.Continue
	}
	app.logger.Debug("idle check", "idle", idle, "timeout", app.idle.Timeout)
	if idle < app.idle.Timeout {
		return scheduler.Continue
	}

	app.logger.Info("idle timeout reached, pausing", "idle", idle.Round(time.Second))
	app.pausedByIdle = true
	app.timer.Pause()
	app.play(audio.CueIdlePause)
	app.monitor.Start()
	app.view.Update(app.Status())
	app.emit(Event{Type: EventIdlePause, State: app.timer.State(), Remaining: app.remaining()})
	return scheduler.Continue
}

func (app *App) refresh() {
	app.view.Update(app.Status())
}

func (app *App) play(cue audio.Cue) {
	if app.cues != nil {
		app.cues.Play(cue)
	}
}

func (app *App) remaining() time.Duration {
	return time.Duration(app.timer.RemainingSeconds()) * time.Second
}

func (app *App) emit(event Event) {
	event.At = time.Now()
	app.mu.Lock()
	defer app.mu.Unlock()
	for _, ch := range app.events {
		select {
		case ch <- event:
		default:
		}
	}
}

func formatClock(minutes, seconds int) string {
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
