package ui

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"

	"tomatray/internal/app"
	"tomatray/internal/core/timer"
	"tomatray/internal/ui/mainwindow"
	"tomatray/internal/ui/overlay"
)

func TestDisplayFor(t *testing.T) {
	display := DisplayFor(app.Status{
		State:     timer.StateWork,
		Phase:     timer.StateWork,
		Minutes:   4,
		Seconds:   7,
		Session:   3,
		Progress:  0.8,
		AutoStart: true,
	})

	assert.Equal(t, mainwindow.Display{
		Phase:     "Work",
		Countdown: "04:07",
		Session:   "Session 3",
		Progress:  0.8,
		Running:   true,
		AutoStart: true,
	}, display)
}

func TestTrayStateFor(t *testing.T) {
	running := TrayStateFor(app.Status{State: timer.StateShortBreak, Phase: timer.StateShortBreak, Minutes: 5})
	assert.Equal(t, "Short Break 05:00", running.Label)
	assert.True(t, running.Running)
	assert.NotNil(t, running.Icon)

	paused := TrayStateFor(app.Status{State: timer.StatePaused, Phase: timer.StateWork, PausedByIdle: true})
	assert.Equal(t, "Paused (idle)", paused.Label)
	assert.False(t, paused.Running)
	assert.False(t, paused.Idle)

	idle := TrayStateFor(app.Status{State: timer.StateIdle, Phase: timer.StateIdle})
	assert.True(t, idle.Idle)
}

func TestViewRoutesToWindows(t *testing.T) {
	fyneApp := test.NewTempApp(t)
	main := mainwindow.New(fyneApp, mainwindow.Callbacks{})
	breakOverlay := overlay.New(fyneApp, overlay.Callbacks{})
	view := NewView(main, breakOverlay, nil)
	view.run = func(fn func()) { fn() }

	status := app.Status{State: timer.StateLongBreak, Phase: timer.StateLongBreak, Minutes: 15}
	view.ShowOverlay("Long Break", status)
	assert.True(t, breakOverlay.Visible())

	view.Update(status)
	view.ToggleWindow()
	assert.True(t, main.Visible())

	view.HideOverlay()
	assert.False(t, breakOverlay.Visible())
	view.ToggleWindow()
	assert.False(t, main.Visible())
	view.PresentWindow()
	assert.True(t, main.Visible())
}
