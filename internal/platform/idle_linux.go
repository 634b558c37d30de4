package platform

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	mutterIdleService = "org.gnome.Mutter.IdleMonitor"
	mutterIdlePath    = dbus.ObjectPath("/org/gnome/Mutter/IdleMonitor/Core")
	mutterIdleMethod  = "org.gnome.Mutter.IdleMonitor.GetIdletime"
)

type xprintidleProvider struct {
	path string
}

type mutterProvider struct{}

func newIdleProvider() IdleProvider {
	var providers []namedProvider
	// xprintidle only sees X11 clients under Wayland; prefer the compositor there.
	wayland := strings.ToLower(os.Getenv("XDG_SESSION_TYPE")) == "wayland"
	if wayland {
		providers = append(providers, namedProvider{name: "mutter", provider: mutterProvider{}})
	}
	if path, err := exec.LookPath("xprintidle"); err == nil && os.Getenv("DISPLAY") != "" {
		providers = append(providers, namedProvider{name: "xprintidle", provider: &xprintidleProvider{path: path}})
	}
	if !wayland {
		providers = append(providers, namedProvider{name: "mutter", provider: mutterProvider{}})
	}
	return newChainProvider(providers...)
}

func (provider *xprintidleProvider) IdleDuration() (time.Duration, error) {
	output, err := exec.Command(provider.path).Output()
	if err != nil {
		return 0, fmt.Errorf("xprintidle: %w", err)
	}
	return parseMillis(output)
}

func (mutterProvider) IdleDuration() (time.Duration, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return 0, fmt.Errorf("session bus: %w", err)
	}
	var idleMillis uint64
	call := conn.Object(mutterIdleService, mutterIdlePath).Call(mutterIdleMethod, 0)
	if err := call.Store(&idleMillis); err != nil {
		return 0, fmt.Errorf("mutter idle monitor: %w", err)
	}
	return time.Duration(idleMillis) * time.Millisecond, nil
}
