// Package ui renders App state onto the fyne windows and the system tray.
package ui

import (
	"fmt"

	"fyne.io/fyne/v2"

	"tomatray/internal/app"
	"tomatray/internal/core/timer"
	"tomatray/internal/ui/mainwindow"
	"tomatray/internal/ui/overlay"
	"tomatray/internal/ui/tray"
	"tomatray/resources"
)

// View implements app.View. Calls arrive on the scheduler goroutine and are
// forwarded to the fyne thread.
type View struct {
	main    *mainwindow.Window
	overlay *overlay.Window
	tray    *tray.Manager
	run     func(func())
}

// NewView wires the windows. tray may be nil when the platform has none.
func NewView(main *mainwindow.Window, overlayWindow *overlay.Window, trayManager *tray.Manager) *View {
	return &View{
		main:    main,
		overlay: overlayWindow,
		tray:    trayManager,
		run:     fyne.Do,
	}
}

// Update renders status on every surface.
func (view *View) Update(status app.Status) {
	view.run(func() {
		view.main.SetDisplay(DisplayFor(status))
		if view.tray != nil {
			view.tray.SetState(TrayStateFor(status))
		}
		if view.overlay.Visible() && status.Phase.IsBreak() {
			view.overlay.Update(overlayContent(app.BreakTitle(status.Phase), status))
		}
	})
}

// ShowOverlay opens the break overlay.
func (view *View) ShowOverlay(title string, status app.Status) {
	view.run(func() {
		view.overlay.Show(overlayContent(title, status))
	})
}

// HideOverlay closes the break overlay.
func (view *View) HideOverlay() {
	view.run(view.overlay.Hide)
}

// ToggleWindow shows or hides the main window.
func (view *View) ToggleWindow() {
	view.run(view.main.Toggle)
}

// PresentWindow raises the main window.
func (view *View) PresentWindow() {
	view.run(view.main.Present)
}

// DisplayFor maps status to the main window model.
func DisplayFor(status app.Status) mainwindow.Display {
	return mainwindow.Display{
		Phase:     status.Title(),
		Countdown: status.Countdown(),
		Session:   fmt.Sprintf("Session %d", status.Session),
		Progress:  status.Progress,
		Running:   status.State.Running(),
		Idle:      status.State == timer.StateIdle,
		AutoStart: status.AutoStart,
	}
}

// TrayStateFor maps status to the tray model.
func TrayStateFor(status app.Status) tray.State {
	label := status.Title()
	if status.State.Running() {
		label += " " + status.Countdown()
	}
	return tray.State{
		Label:     label,
		Running:   status.State.Running(),
		Idle:      status.State == timer.StateIdle,
		AutoStart: status.AutoStart,
		Icon:      resources.TrayIcon(status.State, status.Progress),
	}
}

func overlayContent(title string, status app.Status) overlay.Content {
	return overlay.Content{
		Title:     title,
		Countdown: status.Countdown(),
		Paused:    status.State == timer.StatePaused,
	}
}
