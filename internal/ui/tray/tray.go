package tray

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

const menuTitle = "Pomodoro"

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnToggleTimer func()
	OnReset       func()
	OnSkipPhase   func()
	OnAutoStart   func(enabled bool)
	OnShowHide    func()
	OnPreferences func()
	OnQuit        func()
}

// State is what the tray displays.
type State struct {
	Label     string
	Running   bool
	Idle      bool
	AutoStart bool
	Icon      fyne.Resource
}

// Manager handles system tray state.
type Manager struct {
	app        desktop.App
	callbacks  Callbacks
	statusItem *fyne.MenuItem
	toggleItem *fyne.MenuItem
	resetItem  *fyne.MenuItem
	skipItem   *fyne.MenuItem
	autoItem   *fyne.MenuItem
	showItem   *fyne.MenuItem
	prefsItem  *fyne.MenuItem
	quitItem   *fyne.MenuItem
	state      State
	iconName   string
}

// New creates a tray manager with the provided callbacks. app may be nil
// when the driver has no system tray.
func New(app desktop.App, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		callbacks: callbacks,
	}

	manager.statusItem = fyne.NewMenuItem("Status: starting...", nil)
	manager.statusItem.Disabled = true

	manager.toggleItem = fyne.NewMenuItem("Start", func() {
		call(manager.callbacks.OnToggleTimer)
	})
	manager.resetItem = fyne.NewMenuItem("Reset", func() {
		call(manager.callbacks.OnReset)
	})
	manager.skipItem = fyne.NewMenuItem("Skip phase", func() {
		call(manager.callbacks.OnSkipPhase)
	})
	manager.autoItem = fyne.NewMenuItem("Auto-start work on activity", func() {
		if manager.callbacks.OnAutoStart != nil {
			manager.callbacks.OnAutoStart(!manager.state.AutoStart)
		}
	})
	manager.showItem = fyne.NewMenuItem("Show/Hide window", func() {
		call(manager.callbacks.OnShowHide)
	})
	manager.prefsItem = fyne.NewMenuItem("Preferences", func() {
		call(manager.callbacks.OnPreferences)
	})
	manager.quitItem = fyne.NewMenuItem("Quit", func() {
		call(manager.callbacks.OnQuit)
	})
	manager.quitItem.IsQuit = true

	manager.refreshMenu()
	return manager
}

// SetState updates labels, check marks and the tray icon.
func (manager *Manager) SetState(state State) {
	manager.state = state
	manager.statusItem.Label = "Status: " + state.Label
	if state.Running {
		manager.toggleItem.Label = "Pause"
	} else if state.Idle {
		manager.toggleItem.Label = "Start"
	} else {
		manager.toggleItem.Label = "Resume"
	}
	manager.skipItem.Disabled = state.Idle
	manager.autoItem.Checked = state.AutoStart

	if manager.app != nil && state.Icon != nil && state.Icon.Name() != manager.iconName {
		manager.iconName = state.Icon.Name()
		manager.app.SetSystemTrayIcon(state.Icon)
	}
	manager.refreshMenu()
}

// Menu returns the current tray menu.
func (manager *Manager) Menu() *fyne.Menu {
	return fyne.NewMenu(menuTitle,
		manager.statusItem,
		fyne.NewMenuItemSeparator(),
		manager.toggleItem,
		manager.resetItem,
		manager.skipItem,
		fyne.NewMenuItemSeparator(),
		manager.autoItem,
		manager.showItem,
		manager.prefsItem,
		fyne.NewMenuItemSeparator(),
		manager.quitItem,
	)
}

func (manager *Manager) refreshMenu() {
	if manager.app != nil {
		manager.app.SetSystemTrayMenu(manager.Menu())
	}
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}
