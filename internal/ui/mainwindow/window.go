// Package mainwindow is the countdown window. It doubles as the input event
// source for the event-driven activity monitor.
package mainwindow

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"tomatray/internal/core/activity"
)

// Callbacks defines window action handlers.
type Callbacks struct {
	OnToggleTimer func()
	OnReset       func()
	OnSettings    func()
	OnAutoStart   func(enabled bool)
}

// Display is what the window renders.
type Display struct {
	Phase     string
	Countdown string
	Session   string
	Progress  float64
	Running   bool
	Idle      bool
	AutoStart bool
}

// Window manages the main window. Its methods must run on the fyne thread.
type Window struct {
	window         fyne.Window
	callbacks      Callbacks
	hub            *InputHub
	phaseLabel     *widget.Label
	countdown      *canvas.Text
	sessionLabel   *widget.Label
	progress       *widget.ProgressBar
	toggleButton   *widget.Button
	resetButton    *widget.Button
	settingsButton *widget.Button
	autoStart      *widget.Check
	syncing        bool
	visible        bool
}

// New creates the hidden main window.
func New(app fyne.App, callbacks Callbacks) *Window {
	mainWindow := &Window{
		window:    app.NewWindow("Pomodoro"),
		callbacks: callbacks,
		hub:       NewInputHub(),
	}

	mainWindow.phaseLabel = widget.NewLabelWithStyle("Ready to start", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	mainWindow.countdown = canvas.NewText("25:00", theme.Color(theme.ColorNameForeground))
	mainWindow.countdown.Alignment = fyne.TextAlignCenter
	mainWindow.countdown.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	mainWindow.countdown.TextSize = 48
	mainWindow.sessionLabel = widget.NewLabelWithStyle("Session 1", fyne.TextAlignCenter, fyne.TextStyle{})
	mainWindow.progress = widget.NewProgressBar()
	mainWindow.progress.TextFormatter = func() string { return "" }

	mainWindow.toggleButton = widget.NewButtonWithIcon("Start", theme.MediaPlayIcon(), func() {
		call(mainWindow.callbacks.OnToggleTimer)
	})
	mainWindow.toggleButton.Importance = widget.HighImportance
	mainWindow.resetButton = widget.NewButtonWithIcon("Reset", theme.MediaReplayIcon(), func() {
		call(mainWindow.callbacks.OnReset)
	})
	mainWindow.settingsButton = widget.NewButtonWithIcon("Settings", theme.SettingsIcon(), func() {
		call(mainWindow.callbacks.OnSettings)
	})
	mainWindow.autoStart = widget.NewCheck("Start work automatically on activity", func(enabled bool) {
		if mainWindow.syncing || mainWindow.callbacks.OnAutoStart == nil {
			return
		}
		mainWindow.callbacks.OnAutoStart(enabled)
	})

	buttons := container.NewGridWithColumns(3, mainWindow.toggleButton, mainWindow.resetButton, mainWindow.settingsButton)
	content := container.NewVBox(
		mainWindow.phaseLabel,
		mainWindow.countdown,
		mainWindow.sessionLabel,
		mainWindow.progress,
		buttons,
		mainWindow.autoStart,
	)
	mainWindow.window.SetContent(container.NewStack(newInputCatcher(mainWindow.hub), container.NewPadded(content)))
	mainWindow.window.Resize(fyne.NewSize(340, 280))

	windowCanvas := mainWindow.window.Canvas()
	windowCanvas.SetOnTypedRune(func(rune) {
		mainWindow.hub.Publish(activity.InputEvent{Kind: activity.EventKey})
	})
	if keyCanvas, ok := windowCanvas.(desktop.Canvas); ok {
		keyCanvas.SetOnKeyDown(func(*fyne.KeyEvent) {
			mainWindow.hub.Publish(activity.InputEvent{Kind: activity.EventKey})
		})
	} else {
		windowCanvas.SetOnTypedKey(func(*fyne.KeyEvent) {
			mainWindow.hub.Publish(activity.InputEvent{Kind: activity.EventKey})
		})
	}

	mainWindow.window.SetCloseIntercept(mainWindow.Hide)
	return mainWindow
}

// Inputs returns the raw input source for the activity monitor.
func (mainWindow *Window) Inputs() *InputHub {
	return mainWindow.hub
}

// FyneWindow exposes the native window, e.g. for the system tray.
func (mainWindow *Window) FyneWindow() fyne.Window {
	return mainWindow.window
}

// SetDisplay renders display.
func (mainWindow *Window) SetDisplay(display Display) {
	mainWindow.phaseLabel.SetText(display.Phase)
	if mainWindow.countdown.Text != display.Countdown {
		mainWindow.countdown.Text = display.Countdown
		mainWindow.countdown.Refresh()
	}
	mainWindow.sessionLabel.SetText(display.Session)
	mainWindow.progress.SetValue(display.Progress)

	switch {
	case display.Running:
		mainWindow.toggleButton.SetText("Pause")
		mainWindow.toggleButton.SetIcon(theme.MediaPauseIcon())
	case display.Idle:
		mainWindow.toggleButton.SetText("Start")
		mainWindow.toggleButton.SetIcon(theme.MediaPlayIcon())
	default:
		mainWindow.toggleButton.SetText("Resume")
		mainWindow.toggleButton.SetIcon(theme.MediaPlayIcon())
	}

	if mainWindow.autoStart.Checked != display.AutoStart {
		mainWindow.syncing = true
		mainWindow.autoStart.SetChecked(display.AutoStart)
		mainWindow.syncing = false
	}
}

// Show displays the window.
func (mainWindow *Window) Show() {
	mainWindow.visible = true
	mainWindow.window.Show()
}

// Hide hides the window without quitting.
func (mainWindow *Window) Hide() {
	mainWindow.visible = false
	mainWindow.window.Hide()
}

// Toggle flips visibility.
func (mainWindow *Window) Toggle() {
	if mainWindow.visible {
		mainWindow.Hide()
		return
	}
	mainWindow.Show()
}

// Present shows the window and asks for focus.
func (mainWindow *Window) Present() {
	mainWindow.Show()
	mainWindow.window.RequestFocus()
}

// Visible reports whether the window is shown.
func (mainWindow *Window) Visible() bool {
	return mainWindow.visible
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}
