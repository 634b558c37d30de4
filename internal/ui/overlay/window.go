package overlay

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// Callbacks defines overlay action handlers.
type Callbacks struct {
	OnSkip        func()
	OnExtend      func()
	OnTogglePause func()
	OnDismiss     func()
}

// Content is what the overlay shows for a break.
type Content struct {
	Title     string
	Countdown string
	Paused    bool
}

// Window is the break overlay. Its methods must run on the fyne thread.
type Window struct {
	window      fyne.Window
	callbacks   Callbacks
	background  *canvas.Rectangle
	titleLabel  *canvas.Text
	hintLabel   *canvas.Text
	timerLabel  *canvas.Text
	skipButton  *widget.Button
	extendBtn   *widget.Button
	pauseButton *widget.Button
	visible     bool
}

const (
	overlayAlpha          = uint8(220)
	overlayWidthFraction  = float32(0.22)
	overlayHeightFraction = float32(0.24)
	defaultScreenWidth    = float32(1920)
	defaultScreenHeight   = float32(1080)
)

type splashWindowDriver interface {
	CreateSplashWindow() fyne.Window
}

// New creates a hidden overlay window.
func New(app fyne.App, callbacks Callbacks) *Window {
	window := app.NewWindow("Break")
	if driver, ok := app.Driver().(splashWindowDriver); ok {
		window = driver.CreateSplashWindow()
	}
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}
	window.SetPadded(false)

	overlay := &Window{
		window:    window,
		callbacks: callbacks,
	}

	overlay.background = canvas.NewRectangle(color.NRGBA{R: 20, G: 40, B: 30, A: overlayAlpha})

	overlay.titleLabel = canvas.NewText("Break", color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	overlay.titleLabel.Alignment = fyne.TextAlignCenter
	overlay.titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	overlay.titleLabel.TextSize = 24

	overlay.hintLabel = canvas.NewText("Step away from the screen", color.NRGBA{R: 220, G: 220, B: 220, A: 255})
	overlay.hintLabel.Alignment = fyne.TextAlignCenter
	overlay.hintLabel.TextSize = 14

	overlay.timerLabel = canvas.NewText("--:--", color.NRGBA{R: 232, G: 190, B: 66, A: 255})
	overlay.timerLabel.Alignment = fyne.TextAlignCenter
	overlay.timerLabel.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	overlay.timerLabel.TextSize = 40

	overlay.skipButton = widget.NewButton("Skip break", func() {
		call(overlay.callbacks.OnSkip)
	})
	overlay.extendBtn = widget.NewButton("+5 min", func() {
		call(overlay.callbacks.OnExtend)
	})
	overlay.pauseButton = widget.NewButton("Pause", func() {
		call(overlay.callbacks.OnTogglePause)
	})

	text := container.New(&textPanelLayout{}, overlay.titleLabel, overlay.hintLabel, overlay.timerLabel)
	buttons := container.NewGridWithColumns(3, overlay.skipButton, overlay.extendBtn, overlay.pauseButton)
	content := container.NewBorder(nil, container.NewPadded(buttons), nil, nil, text)
	window.SetContent(container.NewStack(overlay.background, content))

	window.Canvas().SetOnTypedKey(func(event *fyne.KeyEvent) {
		if event.Name == fyne.KeyEscape {
			call(overlay.callbacks.OnDismiss)
		}
	})
	window.SetCloseIntercept(func() {
		call(overlay.callbacks.OnDismiss)
	})

	return overlay
}

// Show displays the overlay with content.
func (overlay *Window) Show(content Content) {
	overlay.Update(content)
	if overlay.visible {
		return
	}
	overlay.visible = true
	overlay.resizeToScreenFraction()
	overlay.window.Show()
	overlay.window.RequestFocus()
}

// Update refreshes labels without changing visibility.
func (overlay *Window) Update(content Content) {
	if overlay.titleLabel.Text != content.Title {
		overlay.titleLabel.Text = content.Title
		overlay.titleLabel.Refresh()
	}
	if overlay.timerLabel.Text != content.Countdown {
		overlay.timerLabel.Text = content.Countdown
		overlay.timerLabel.Refresh()
	}
	label := "Pause"
	if content.Paused {
		label = "Resume"
	}
	overlay.pauseButton.SetText(label)
}

// Hide closes the overlay.
func (overlay *Window) Hide() {
	if !overlay.visible {
		return
	}
	overlay.visible = false
	overlay.window.Hide()
}

// Visible reports whether the overlay is shown.
func (overlay *Window) Visible() bool {
	return overlay.visible
}

func (overlay *Window) resizeToScreenFraction() {
	screenSize := fyne.NewSize(defaultScreenWidth, defaultScreenHeight)
	canvasSize := overlay.window.Canvas().Size()
	if canvasSize.Width >= 1024 && canvasSize.Height >= 720 {
		screenSize = canvasSize
	}

	width := screenSize.Width * overlayWidthFraction
	height := screenSize.Height * overlayHeightFraction
	minSize := overlay.window.Content().MinSize()
	if width < minSize.Width {
		width = minSize.Width
	}
	if height < minSize.Height {
		height = minSize.Height
	}

	overlay.window.Resize(fyne.NewSize(width, height))
	overlay.window.CenterOnScreen()
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}

// textPanelLayout stacks title and hint at the top and centers the timer in
// the remaining space.
type textPanelLayout struct{}

func (layout *textPanelLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	if len(objects) < 3 {
		return
	}
	title := objects[0]
	hint := objects[1]
	timer := objects[2]

	pad := size.Height * 0.06
	width := size.Width - pad*2
	if width < 0 {
		width = 0
	}

	titleSize := title.MinSize()
	title.Move(fyne.NewPos(pad, pad))
	title.Resize(fyne.NewSize(width, titleSize.Height))

	hintSize := hint.MinSize()
	hintY := pad + titleSize.Height + 6
	hint.Move(fyne.NewPos(pad, hintY))
	hint.Resize(fyne.NewSize(width, hintSize.Height))

	timerSize := timer.MinSize()
	top := hintY + hintSize.Height
	timerY := top + (size.Height-top-timerSize.Height)/2
	if timerY < top {
		timerY = top
	}
	timer.Move(fyne.NewPos(pad, timerY))
	timer.Resize(fyne.NewSize(width, timerSize.Height))
}

func (layout *textPanelLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	if len(objects) < 3 {
		return fyne.NewSize(0, 0)
	}
	width := float32(0)
	height := float32(0)
	for _, object := range objects {
		size := object.MinSize()
		if size.Width > width {
			width = size.Width
		}
		height += size.Height
	}
	return fyne.NewSize(width+20, height+30)
}
