package mainwindow

import (
	"errors"
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"tomatray/internal/core/activity"
)

var errNilHandler = errors.New("nil input handler")

// InputHub fans raw window input out to subscribers. It implements
// activity.InputEventSource; handlers run on the publishing goroutine.
type InputHub struct {
	mu       sync.Mutex
	handlers map[uint64]func(activity.InputEvent)
	next     uint64
}

// NewInputHub creates an empty hub.
func NewInputHub() *InputHub {
	return &InputHub{handlers: make(map[uint64]func(activity.InputEvent))}
}

// Subscribe registers handler until the subscription is dropped.
func (hub *InputHub) Subscribe(handler func(activity.InputEvent)) (activity.Subscription, error) {
	if handler == nil {
		return nil, errNilHandler
	}
	hub.mu.Lock()
	defer hub.mu.Unlock()
	hub.next++
	hub.handlers[hub.next] = handler
	return &subscription{hub: hub, id: hub.next}, nil
}

// Publish delivers event to every subscriber.
func (hub *InputHub) Publish(event activity.InputEvent) {
	hub.mu.Lock()
	handlers := make([]func(activity.InputEvent), 0, len(hub.handlers))
	for _, handler := range hub.handlers {
		handlers = append(handlers, handler)
	}
	hub.mu.Unlock()

	for _, handler := range handlers {
		handler(event)
	}
}

// Subscribers returns the number of live subscriptions.
func (hub *InputHub) Subscribers() int {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	return len(hub.handlers)
}

type subscription struct {
	hub  *InputHub
	id   uint64
	once sync.Once
}

func (sub *subscription) Unsubscribe() {
	sub.once.Do(func() {
		sub.hub.mu.Lock()
		delete(sub.hub.handlers, sub.id)
		sub.hub.mu.Unlock()
	})
}

// inputCatcher is a transparent backdrop that reports pointer input which no
// other widget consumed.
type inputCatcher struct {
	widget.BaseWidget
	hub *InputHub
}

func newInputCatcher(hub *InputHub) *inputCatcher {
	catcher := &inputCatcher{hub: hub}
	catcher.ExtendBaseWidget(catcher)
	return catcher
}

func (catcher *inputCatcher) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(canvas.NewRectangle(color.Transparent))
}

func (catcher *inputCatcher) MouseIn(event *desktop.MouseEvent) {
	catcher.motion(event)
}

func (catcher *inputCatcher) MouseMoved(event *desktop.MouseEvent) {
	catcher.motion(event)
}

func (catcher *inputCatcher) MouseOut() {}

func (catcher *inputCatcher) MouseDown(*desktop.MouseEvent) {
	catcher.hub.Publish(activity.InputEvent{Kind: activity.EventButton})
}

func (catcher *inputCatcher) MouseUp(*desktop.MouseEvent) {}

func (catcher *inputCatcher) motion(event *desktop.MouseEvent) {
	catcher.hub.Publish(activity.InputEvent{
		Kind: activity.EventMotion,
		X:    float64(event.AbsolutePosition.X),
		Y:    float64(event.AbsolutePosition.Y),
	})
}
