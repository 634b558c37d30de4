package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tomatray/internal/audio"
	"tomatray/internal/core/activity"
	"tomatray/internal/core/model"
	"tomatray/internal/core/scheduler"
	"tomatray/internal/core/timer"
	"tomatray/internal/ui/preferences"
)

type fakeView struct {
	last          Status
	overlayTitles []string
	overlayShown  bool
	hides         int
	toggles       int
	presents      int
}

func (view *fakeView) Update(status Status) { view.last = status }
func (view *fakeView) ShowOverlay(title string, status Status) {
	view.overlayTitles = append(view.overlayTitles, title)
	view.overlayShown = true
	view.last = status
}
func (view *fakeView) HideOverlay() {
	view.hides++
	view.overlayShown = false
}
func (view *fakeView) ToggleWindow()  { view.toggles++ }
func (view *fakeView) PresentWindow() { view.presents++ }

type fakeCues struct {
	played []audio.Cue
	config audio.Config
}

func (cues *fakeCues) Play(cue audio.Cue)            { cues.played = append(cues.played, cue) }
func (cues *fakeCues) Configure(config audio.Config) { cues.config = config }

type fakeStore struct {
	saved []preferences.Settings
	err   error
}

func (store *fakeStore) Save(settings preferences.Settings) error {
	store.saved = append(store.saved, settings)
	return store.err
}

type fakeLogin struct {
	enabled bool
	calls   []bool
}

func (login *fakeLogin) Enabled() bool { return login.enabled }

func (login *fakeLogin) SetEnabled(enabled bool) error {
	login.calls = append(login.calls, enabled)
	login.enabled = enabled
	return nil
}

type fakeDetector struct {
	armed  bool
	signal func(activity.Signal)
}

func (detector *fakeDetector) Arm(signal func(activity.Signal)) error {
	detector.armed = true
	detector.signal = signal
	return nil
}

func (detector *fakeDetector) Disarm() { detector.armed = false }

func (detector *fakeDetector) fire() {
	if detector.armed {
		detector.signal(activity.SignalActivity)
	}
}

type harness struct {
	app      *App
	manual   *scheduler.Manual
	timer    *timer.Timer
	view     *fakeView
	cues     *fakeCues
	store    *fakeStore
	login    *fakeLogin
	detector *fakeDetector
	idle     time.Duration
	idleErr  error
}

func newHarness(t *testing.T, settings preferences.Settings, testMode bool) *harness {
	t.Helper()
	h := &harness{
		manual:   scheduler.NewManual(),
		view:     &fakeView{},
		cues:     &fakeCues{},
		store:    &fakeStore{},
		login:    &fakeLogin{},
		detector: &fakeDetector{},
	}
	config := settings.TimerConfig()
	if testMode {
		config = model.TimerConfig{WorkDuration: 10, ShortBreakDuration: 3, LongBreakDuration: 6, SessionsUntilLong: 2, SecondsMode: true, AutoStartWork: settings.AutoStartWork}
	}
	h.timer = timer.New(h.manual, config, nil)
	idleSource := activity.IdleSourceFunc(func() (time.Duration, error) {
		return h.idle, h.idleErr
	})
	monitor := activity.NewMonitor(h.manual, h.detector, idleSource, settings.MonitorConfig(), nil)
	h.app = New(Options{
		Scheduler: h.manual,
		Timer:     h.timer,
		Monitor:   monitor,
		View:      h.view,
		Cues:      h.cues,
		Store:     h.store,
		Login:     h.login,
		Settings:  settings,
		TestMode:  testMode,
	})
	t.Cleanup(h.app.Close)
	return h
}

func TestNewRendersIdleWithoutArmingMonitor(t *testing.T) {
	h := newHarness(t, preferences.DefaultSettings(), false)

	assert.Equal(t, timer.StateIdle, h.view.last.State)
	assert.Equal(t, "25:00", h.view.last.Countdown())
	assert.False(t, h.detector.armed)
	assert.True(t, h.cues.config.Enabled)
}

func TestIdleTimeoutPausesAndActivityResumes(t *testing.T) {
	h := newHarness(t, preferences.DefaultSettings(), false)
	h.idle = 6 * time.Minute

	h.app.ToggleTimer()
	require.Equal(t, timer.StateWork, h.timer.State())
	assert.Equal(t, []audio.Cue{audio.CueWorkStart}, h.cues.played)

	h.manual.Advance(30 * time.Second)
	require.Equal(t, timer.StatePaused, h.timer.State())
	assert.True(t, h.app.PausedByIdle())
	assert.True(t, h.detector.armed)
	assert.Equal(t, "Paused (idle)", h.view.last.Title())
	assert.Contains(t, h.cues.played, audio.CueIdlePause)

	frozen := h.timer.RemainingSeconds()
	h.manual.Advance(2 * time.Minute)
	assert.Equal(t, frozen, h.timer.RemainingSeconds())
	assert.Equal(t, timer.StatePaused, h.timer.State(), "idle checks skip while paused")

	h.idle = 0
	h.detector.fire()
	assert.Equal(t, timer.StateWork, h.timer.State())
	assert.False(t, h.app.PausedByIdle())
	assert.False(t, h.detector.armed)
	assert.Equal(t, 1, h.view.presents)
	assert.Equal(t, []audio.Cue{audio.CueWorkStart, audio.CueIdlePause, audio.CueIdleResume}, h.cues.played)

	h.manual.Advance(time.Second)
	assert.Equal(t, frozen-1, h.timer.RemainingSeconds())
}

func TestResetAfterIdlePauseDisarmsMonitor(t *testing.T) {
	settings := preferences.DefaultSettings()
	settings.AutoStartWork = false
	h := newHarness(t, settings, false)
	h.idle = 6 * time.Minute

	h.app.ToggleTimer()
	h.manual.Advance(30 * time.Second)
	require.True(t, h.app.PausedByIdle())
	require.True(t, h.detector.armed)

	h.app.ResetTimer()
	assert.Equal(t, timer.StateIdle, h.timer.State())
	assert.False(t, h.app.PausedByIdle())
	assert.False(t, h.detector.armed)

	h.idle = 0
	h.detector.fire()
	assert.Equal(t, timer.StateIdle, h.timer.State())
}

func TestIdleBelowTimeoutOrUnknownKeepsWorking(t *testing.T) {
	h := newHarness(t, preferences.DefaultSettings(), false)
	h.idle = 4 * time.Minute

	h.app.ToggleTimer()
	h.manual.Advance(time.Minute)
	assert.Equal(t, timer.StateWork, h.timer.State())

	h.idleErr = activity.ErrUnavailable
	h.idle = time.Hour
	h.manual.Advance(time.Minute)
	assert.Equal(t, timer.StateWork, h.timer.State())
	assert.False(t, h.app.PausedByIdle())
}

func TestIdleDetectionDisabled(t *testing.T) {
	settings := preferences.DefaultSettings()
	settings.IdleEnabled = false
	h := newHarness(t, settings, false)
	h.idle = time.Hour

	h.app.ToggleTimer()
	assert.Equal(t, 1, h.manual.Pending(), "only the tick is scheduled")
	h.manual.Advance(2 * time.Minute)
	assert.Equal(t, timer.StateWork, h.timer.State())
}

func TestManualPauseStopsIdleChecks(t *testing.T) {
	h := newHarness(t, preferences.DefaultSettings(), false)

	h.app.ToggleTimer()
	h.app.ToggleTimer()
	require.Equal(t, timer.StatePaused, h.timer.State())
	assert.Equal(t, 0, h.manual.Pending())
	assert.False(t, h.app.PausedByIdle())
	assert.Equal(t, "Paused", h.view.last.Title())

	h.app.ToggleTimer()
	assert.Equal(t, timer.StateWork, h.timer.State())
	assert.Equal(t, []audio.Cue{audio.CueWorkStart}, h.cues.played, "resuming does not replay the cue")
	assert.Equal(t, 2, h.manual.Pending())
}

func TestBreakShowsOverlayAndPlaysCues(t *testing.T) {
	h := newHarness(t, preferences.DefaultSettings(), false)

	h.app.ToggleTimer()
	h.app.ToggleBreak()

	assert.Equal(t, timer.StateShortBreak, h.timer.State())
	assert.True(t, h.view.overlayShown)
	assert.Equal(t, []string{"Short Break"}, h.view.overlayTitles)
	assert.Equal(t, []audio.Cue{audio.CueWorkStart, audio.CueSessionComplete, audio.CueBreakStart}, h.cues.played)
	assert.Equal(t, "05:00", h.view.last.Countdown())
	assert.Equal(t, 1, h.manual.Pending(), "idle checks stop during breaks")
}

func TestOverlayActions(t *testing.T) {
	h := newHarness(t, preferences.DefaultSettings(), false)
	h.app.ToggleTimer()
	h.app.ToggleBreak()

	h.app.ExtendBreak()
	assert.Equal(t, "10:00", h.view.last.Countdown())

	h.app.TogglePause()
	assert.Equal(t, timer.StatePaused, h.timer.State())
	assert.Equal(t, timer.StateShortBreak, h.view.last.Phase)

	h.app.TogglePause()
	assert.Equal(t, timer.StateShortBreak, h.timer.State())
	assert.Equal(t, []string{"Short Break", "Short Break"}, h.view.overlayTitles)

	h.app.DismissOverlay()
	assert.False(t, h.view.overlayShown)
	assert.Equal(t, timer.StateShortBreak, h.timer.State())

	h.app.SkipBreak()
	assert.Equal(t, timer.StateIdle, h.timer.State())
	assert.Equal(t, 1, h.timer.Session())
}

func TestAutoStartAfterBreak(t *testing.T) {
	h := newHarness(t, preferences.DefaultSettings(), true)

	h.app.ToggleTimer()
	h.manual.Advance(10 * time.Second)
	require.Equal(t, timer.StateShortBreak, h.timer.State())
	h.manual.Advance(3 * time.Second)
	require.Equal(t, timer.StateIdle, h.timer.State())
	assert.Contains(t, h.cues.played, audio.CueTimerFinish)
	assert.False(t, h.view.overlayShown)
	require.True(t, h.detector.armed)

	h.detector.fire()
	assert.Equal(t, timer.StateWork, h.timer.State())
	assert.Equal(t, 2, h.timer.Session())
}

func TestNoAutoStartWhenDisabled(t *testing.T) {
	settings := preferences.DefaultSettings()
	settings.AutoStartWork = false
	h := newHarness(t, settings, true)

	h.app.ToggleTimer()
	h.manual.Advance(13 * time.Second)
	require.Equal(t, timer.StateIdle, h.timer.State())
	assert.False(t, h.detector.armed)

	h.app.SetAutoStart(true)
	assert.True(t, h.detector.armed)
	h.app.SetAutoStart(false)
	assert.False(t, h.detector.armed)
}

func TestSaveSettings(t *testing.T) {
	h := newHarness(t, preferences.DefaultSettings(), false)

	updated := preferences.DefaultSettings()
	updated.WorkMinutes = 50
	h.app.SaveSettings(updated)

	require.Len(t, h.store.saved, 1)
	assert.Equal(t, 50, h.store.saved[0].WorkMinutes)
	assert.Equal(t, "25:00", h.view.last.Countdown(), "new durations apply at the next phase")

	h.app.ToggleTimer()
	assert.Equal(t, "50:00", h.view.last.Countdown())

	h.store.err = errors.New("disk full")
	assert.NotPanics(t, func() { h.app.SetAutoStart(false) })
	assert.False(t, h.app.Settings().AutoStartWork)
}

func TestTestModeKeepsDurationsAndSkipsPersistence(t *testing.T) {
	h := newHarness(t, preferences.DefaultSettings(), true)

	h.app.SaveSettings(preferences.DefaultSettings())
	assert.Empty(t, h.store.saved)
	assert.Equal(t, "00:10", h.view.last.Countdown())
}

func TestDispatchAndStateName(t *testing.T) {
	h := newHarness(t, preferences.DefaultSettings(), false)

	require.NoError(t, h.app.Dispatch("ToggleTimer"))
	assert.Equal(t, "WORK", h.app.StateName())
	require.NoError(t, h.app.Dispatch("ToggleBreak"))
	assert.Equal(t, "SHORT_BREAK", h.app.StateName())
	require.NoError(t, h.app.Dispatch("ShowHide"))
	assert.Equal(t, 1, h.view.toggles)
	require.NoError(t, h.app.Dispatch("ResetTimer"))
	assert.Equal(t, "IDLE", h.app.StateName())
	require.NoError(t, h.app.Dispatch("GetState"))
	assert.Error(t, h.app.Dispatch("Explode"))
}

func TestSubscribeReceivesEvents(t *testing.T) {
	h := newHarness(t, preferences.DefaultSettings(), false)
	events := h.app.Subscribe(4)

	h.app.ToggleTimer()
	event := <-events
	assert.Equal(t, EventStateChange, event.Type)
	assert.Equal(t, timer.StateWork, event.State)
	assert.Equal(t, 25*time.Minute, event.Remaining)

	h.app.Close()
	_, open := <-events
	assert.False(t, open)
}

func TestRemoteStateThroughLoop(t *testing.T) {
	loop := scheduler.NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	view := &fakeView{}
	clock := timer.New(loop, model.DefaultTimerConfig(), nil)
	monitor := activity.NewMonitor(loop, &fakeDetector{}, nil, model.DefaultMonitorConfig(), nil)

	created := make(chan *App, 1)
	loop.Post(func() {
		created <- New(Options{Scheduler: loop, Timer: clock, Monitor: monitor, View: view, Settings: preferences.DefaultSettings()})
	})
	instance := <-created

	remote := instance.Remote()
	assert.Equal(t, "IDLE", remote.State())
	remote.ToggleTimer()
	assert.Eventually(t, func() bool { return remote.State() == "WORK" }, time.Second, 10*time.Millisecond)

	done := make(chan struct{})
	loop.Post(func() {
		instance.Close()
		close(done)
	})
	<-done
}

func TestQueryTimesOut(t *testing.T) {
	h := newHarness(t, preferences.DefaultSettings(), false)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := Query(ctx, h.app, h.app.StateName)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStatusText(t *testing.T) {
	status := Status{State: timer.StateWork, Minutes: 4, Seconds: 7}
	assert.Equal(t, "Pomodoro - Work 04:07", status.Tooltip())
	assert.Equal(t, "Pomodoro - Ready to start", Status{State: timer.StateIdle}.Tooltip())
}

func TestSaveSettingsSyncsLoginItem(t *testing.T) {
	h := newHarness(t, preferences.DefaultSettings(), false)
	assert.Empty(t, h.login.calls, "launch does not touch the login item")

	settings := h.app.Settings()
	settings.StartAtLogin = true
	h.app.SaveSettings(settings)
	h.app.SaveSettings(settings)
	settings.StartAtLogin = false
	h.app.SaveSettings(settings)

	assert.Equal(t, []bool{true, false}, h.login.calls)
}

func TestTestModeLeavesLoginItemAlone(t *testing.T) {
	h := newHarness(t, preferences.DefaultSettings(), true)
	settings := h.app.Settings()
	settings.StartAtLogin = true
	h.app.SaveSettings(settings)
	assert.Empty(t, h.login.calls)
}
