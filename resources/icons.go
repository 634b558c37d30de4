// Package resources renders the application and tray icons.
package resources

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"sync"

	"fyne.io/fyne/v2"
	"golang.org/x/image/vector"

	"tomatray/internal/core/timer"
)

const (
	iconSize      = 64
	progressSteps = 60
	arcSegments   = 96
)

var iconCache sync.Map

var (
	trackColor = color.NRGBA{R: 70, G: 70, B: 70, A: 255}
	idleColor  = color.NRGBA{R: 150, G: 150, B: 150, A: 255}
	workColor  = color.NRGBA{R: 220, G: 60, B: 45, A: 255}
	shortColor = color.NRGBA{R: 70, G: 170, B: 90, A: 255}
	longColor  = color.NRGBA{R: 60, G: 120, B: 210, A: 255}
	pauseColor = color.NRGBA{R: 230, G: 170, B: 40, A: 255}
	leafColor  = color.NRGBA{R: 60, G: 150, B: 60, A: 255}
)

// TrayIcon returns a progress ring for state, colored by phase. Progress is
// quantized so that at most a few dozen distinct images exist per state.
func TrayIcon(state timer.State, progress float64) fyne.Resource {
	step := int(math.Round(clamp01(progress) * progressSteps))
	name := fmt.Sprintf("tray-%s-%02d.png", state, step)
	return cached(name, func() image.Image {
		return renderRing(stateColor(state), float64(step)/progressSteps, state == timer.StatePaused)
	})
}

// AppIcon returns the application icon.
func AppIcon() fyne.Resource {
	return cached("app-icon.png", renderTomato)
}

func cached(name string, render func() image.Image) fyne.Resource {
	if resource, ok := iconCache.Load(name); ok {
		return resource.(fyne.Resource)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, render()); err != nil {
		// Encoding an in-memory RGBA image does not fail.
		panic(fmt.Errorf("encode %s: %w", name, err))
	}
	resource := fyne.NewStaticResource(name, buf.Bytes())
	actual, _ := iconCache.LoadOrStore(name, resource)
	return actual.(fyne.Resource)
}

func stateColor(state timer.State) color.NRGBA {
	switch state {
	case timer.StateWork:
		return workColor
	case timer.StateShortBreak:
		return shortColor
	case timer.StateLongBreak:
		return longColor
	case timer.StatePaused:
		return pauseColor
	default:
		return idleColor
	}
}

func renderRing(fill color.NRGBA, progress float64, paused bool) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))
	center := float64(iconSize) / 2
	outer := center - 2
	inner := outer - 12

	drawSector(dst, center, outer, inner, 0, 1, trackColor)
	// The remaining part of the phase is drawn, so the ring empties as time passes.
	if remaining := 1 - progress; remaining > 0 {
		drawSector(dst, center, outer, inner, progress, 1, fill)
	}
	if paused {
		barWidth := 6.0
		gap := 5.0
		height := 20.0
		top := center - height/2
		drawRect(dst, center-gap/2-barWidth, top, barWidth, height, fill)
		drawRect(dst, center+gap/2, top, barWidth, height, fill)
	} else {
		drawSector(dst, center, inner-6, 0, 0, 1, fill)
	}
	return dst
}

func renderTomato() image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))
	center := float64(iconSize) / 2
	drawSector(dst, center, center-4, 0, 0, 1, workColor)
	drawRect(dst, center-3, 2, 6, 12, leafColor)
	drawRect(dst, center-12, 8, 24, 5, leafColor)
	return dst
}

// drawSector fills the annulus between inner and outer radii from the from
// fraction to the to fraction of a turn, clockwise from twelve o'clock.
func drawSector(dst draw.Image, center, outer, inner, from, to float64, fill color.Color) {
	if to <= from {
		return
	}
	raster := vector.NewRasterizer(iconSize, iconSize)
	segments := int(math.Ceil(arcSegments * (to - from)))
	if segments < 1 {
		segments = 1
	}

	point := func(radius, fraction float64) (float32, float32) {
		angle := 2*math.Pi*fraction - math.Pi/2
		return float32(center + radius*math.Cos(angle)), float32(center + radius*math.Sin(angle))
	}

	x, y := point(outer, from)
	raster.MoveTo(x, y)
	for i := 1; i <= segments; i++ {
		x, y = point(outer, from+(to-from)*float64(i)/float64(segments))
		raster.LineTo(x, y)
	}
	if inner > 0 {
		for i := segments; i >= 0; i-- {
			x, y = point(inner, from+(to-from)*float64(i)/float64(segments))
			raster.LineTo(x, y)
		}
	} else {
		raster.LineTo(float32(center), float32(center))
	}
	raster.ClosePath()
	raster.Draw(dst, dst.Bounds(), image.NewUniform(fill), image.Point{})
}

func drawRect(dst draw.Image, x, y, width, height float64, fill color.Color) {
	raster := vector.NewRasterizer(iconSize, iconSize)
	raster.MoveTo(float32(x), float32(y))
	raster.LineTo(float32(x+width), float32(y))
	raster.LineTo(float32(x+width), float32(y+height))
	raster.LineTo(float32(x), float32(y+height))
	raster.ClosePath()
	raster.Draw(dst, dst.Bounds(), image.NewUniform(fill), image.Point{})
}

func clamp01(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
