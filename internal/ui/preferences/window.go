package preferences

import (
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Window handles the preferences UI.
type Window struct {
	window      fyne.Window
	settings    Settings
	onSave      func(Settings)
	onTestSound func(Settings)

	work        *widget.Entry
	shortBreak  *widget.Entry
	longBreak   *widget.Entry
	sessions    *widget.Entry
	autoStart   *widget.Check
	idleCheck   *widget.Check
	idleTimeout *widget.Entry
	idleBackend *widget.Select
	atLogin     *widget.Check
	sounds      *widget.Check
	volume      *widget.Slider
	soundType   *widget.Select
	customPaths map[string]*widget.Entry
}

// New creates a preferences window.
func New(app fyne.App, settings Settings, onSave func(Settings)) *Window {
	window := app.NewWindow("Pomodoro Settings")

	prefs := &Window{
		window:      window,
		onSave:      onSave,
		work:        widget.NewEntry(),
		shortBreak:  widget.NewEntry(),
		longBreak:   widget.NewEntry(),
		sessions:    widget.NewEntry(),
		autoStart:   widget.NewCheck("Auto-start work after break", nil),
		idleCheck:   widget.NewCheck("Pause when idle", nil),
		idleTimeout: widget.NewEntry(),
		idleBackend: widget.NewSelect([]string{"auto", "poll", "events"}, nil),
		atLogin:     widget.NewCheck("Start at login", nil),
		sounds:      widget.NewCheck("Enable sounds", nil),
		volume:      widget.NewSlider(0, 1),
		soundType:   widget.NewSelect([]string{SoundChimes, SoundCustom}, nil),
		customPaths: map[string]*widget.Entry{
			"work":     widget.NewEntry(),
			"break":    widget.NewEntry(),
			"complete": widget.NewEntry(),
			"finish":   widget.NewEntry(),
		},
	}
	prefs.volume.Step = 0.05
	for _, entry := range prefs.customPaths {
		entry.SetPlaceHolder("/path/to/sound.oga")
	}
	prefs.soundType.OnChanged = func(value string) {
		prefs.setCustomEnabled(value == SoundCustom)
	}

	form := container.NewVBox(
		widget.NewLabelWithStyle("Timer", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		row("Work duration", prefs.work, "min (1-120)"),
		row("Short break", prefs.shortBreak, "min (1-60)"),
		row("Long break", prefs.longBreak, "min (5-120)"),
		row("Sessions before long break", prefs.sessions, "(2-10)"),
		widget.NewLabelWithStyle("Behavior", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		prefs.autoStart,
		prefs.idleCheck,
		row("Idle timeout", prefs.idleTimeout, "min (1-30)"),
		container.NewHBox(widget.NewLabel("Activity detection"), prefs.idleBackend),
		prefs.atLogin,
		widget.NewLabelWithStyle("Sound", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		prefs.sounds,
		widget.NewLabel("Volume"),
		prefs.volume,
		container.NewHBox(widget.NewLabel("Sound type"), prefs.soundType),
		widget.NewForm(
			widget.NewFormItem("Work start", prefs.customPaths["work"]),
			widget.NewFormItem("Break start", prefs.customPaths["break"]),
			widget.NewFormItem("Session complete", prefs.customPaths["complete"]),
			widget.NewFormItem("Timer finish", prefs.customPaths["finish"]),
		),
	)

	saveButton := widget.NewButton("Save", prefs.handleSave)
	cancelButton := widget.NewButton("Cancel", window.Hide)
	defaultsButton := widget.NewButton("Restore defaults", func() {
		prefs.UpdateSettings(DefaultSettings())
	})
	testButton := widget.NewButton("Test sound", func() {
		if prefs.onTestSound != nil {
			prefs.onTestSound(prefs.collect())
		}
	})
	buttons := container.NewHBox(defaultsButton, testButton, layout.NewSpacer(), cancelButton, saveButton)

	window.SetContent(container.NewBorder(nil, buttons, nil, nil, container.NewVScroll(form)))
	window.Resize(fyne.NewSize(460, 620))
	window.SetCloseIntercept(window.Hide)

	prefs.UpdateSettings(settings)
	return prefs
}

// SetOnTestSound sets the handler of the test sound button.
func (prefs *Window) SetOnTestSound(handler func(Settings)) {
	prefs.onTestSound = handler
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings Settings) {
	prefs.settings = settings
	prefs.work.SetText(strconv.Itoa(settings.WorkMinutes))
	prefs.shortBreak.SetText(strconv.Itoa(settings.ShortBreakMinutes))
	prefs.longBreak.SetText(strconv.Itoa(settings.LongBreakMinutes))
	prefs.sessions.SetText(strconv.Itoa(settings.SessionsUntilLong))
	prefs.autoStart.SetChecked(settings.AutoStartWork)
	prefs.idleCheck.SetChecked(settings.IdleEnabled)
	prefs.idleTimeout.SetText(strconv.Itoa(settings.IdleTimeoutMinutes))
	prefs.idleBackend.SetSelected(settings.IdleBackend)
	prefs.atLogin.SetChecked(settings.StartAtLogin)
	prefs.sounds.SetChecked(settings.SoundsEnabled)
	prefs.volume.SetValue(settings.SoundVolume)
	prefs.soundType.SetSelected(settings.SoundType)
	prefs.customPaths["work"].SetText(settings.WorkStartSound)
	prefs.customPaths["break"].SetText(settings.BreakStartSound)
	prefs.customPaths["complete"].SetText(settings.SessionCompleteSound)
	prefs.customPaths["finish"].SetText(settings.TimerFinishSound)
	prefs.setCustomEnabled(settings.SoundType == SoundCustom)
}

func (prefs *Window) setCustomEnabled(enabled bool) {
	for _, entry := range prefs.customPaths {
		if enabled {
			entry.Enable()
		} else {
			entry.Disable()
		}
	}
}

func (prefs *Window) collect() Settings {
	settings := prefs.settings

	if minutes, ok := parsePositiveInt(prefs.work.Text); ok {
		settings.WorkMinutes = minutes
	}
	if minutes, ok := parsePositiveInt(prefs.shortBreak.Text); ok {
		settings.ShortBreakMinutes = minutes
	}
	if minutes, ok := parsePositiveInt(prefs.longBreak.Text); ok {
		settings.LongBreakMinutes = minutes
	}
	if count, ok := parsePositiveInt(prefs.sessions.Text); ok {
		settings.SessionsUntilLong = count
	}
	if minutes, ok := parsePositiveInt(prefs.idleTimeout.Text); ok {
		settings.IdleTimeoutMinutes = minutes
	}

	settings.AutoStartWork = prefs.autoStart.Checked
	settings.IdleEnabled = prefs.idleCheck.Checked
	settings.IdleBackend = prefs.idleBackend.Selected
	settings.StartAtLogin = prefs.atLogin.Checked
	settings.SoundsEnabled = prefs.sounds.Checked
	settings.SoundVolume = prefs.volume.Value
	settings.SoundType = prefs.soundType.Selected
	settings.WorkStartSound = strings.TrimSpace(prefs.customPaths["work"].Text)
	settings.BreakStartSound = strings.TrimSpace(prefs.customPaths["break"].Text)
	settings.SessionCompleteSound = strings.TrimSpace(prefs.customPaths["complete"].Text)
	settings.TimerFinishSound = strings.TrimSpace(prefs.customPaths["finish"].Text)
	return settings.Normalized()
}

func (prefs *Window) handleSave() {
	settings := prefs.collect()
	prefs.settings = settings
	if prefs.onSave != nil {
		prefs.onSave(settings)
	}
	prefs.window.Hide()
}

func row(label string, entry *widget.Entry, unit string) fyne.CanvasObject {
	return container.NewHBox(widget.NewLabel(label), entry, widget.NewLabel(unit))
}

func parsePositiveInt(value string) (int, bool) {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}
