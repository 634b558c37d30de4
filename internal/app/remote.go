package app

import (
	"context"
	"time"
)

const queryTimeout = 2 * time.Second

// Remote adapts the App to callers on other goroutines, such as the D-Bus
// service.
type Remote struct {
	app *App
}

// Remote returns a goroutine-safe command surface.
func (app *App) Remote() Remote {
	return Remote{app: app}
}

func (remote Remote) ToggleTimer() { remote.app.Exec(remote.app.ToggleTimer) }
func (remote Remote) ResetTimer()  { remote.app.Exec(remote.app.ResetTimer) }
func (remote Remote) ToggleBreak() { remote.app.Exec(remote.app.ToggleBreak) }
func (remote Remote) ShowHide()    { remote.app.Exec(remote.app.ShowHide) }

// State returns the timer state name, or UNKNOWN when the loop does not answer.
func (remote Remote) State() string {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	state, err := Query(ctx, remote.app, remote.app.StateName)
	if err != nil {
		remote.app.logger.Warn("state query timed out", "error", err)
		return "UNKNOWN"
	}
	return state
}
