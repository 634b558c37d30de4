// Package dbusctl exposes the running timer on the session bus and sends
// commands to it from a second process.
package dbusctl

import (
	"errors"
	"sort"
)

const (
	ServiceName   = "io.github.tomatray"
	ObjectPath    = "/io/github/tomatray"
	InterfaceName = "io.github.tomatray.Timer"
)

// Method names.
const (
	MethodToggleTimer = "ToggleTimer"
	MethodResetTimer  = "ResetTimer"
	MethodToggleBreak = "ToggleBreak"
	MethodShowHide    = "ShowHide"
	MethodGetState    = "GetState"
)

// SignalStateChanged is emitted with the new state name.
const SignalStateChanged = "StateChanged"

// ErrAlreadyRunning indicates another instance owns the service name.
var ErrAlreadyRunning = errors.New("tomatray is already running")

var commands = map[string]string{
	"toggle_timer": MethodToggleTimer,
	"reset_timer":  MethodResetTimer,
	"toggle_break": MethodToggleBreak,
	"show_hide":    MethodShowHide,
	"get_state":    MethodGetState,
}

// ParseCommand maps a command-line verb to its D-Bus method.
func ParseCommand(command string) (string, bool) {
	method, ok := commands[command]
	return method, ok
}

// Commands lists the accepted command-line verbs.
func Commands() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
