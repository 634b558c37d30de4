//go:build darwin

package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// launchAgentItem writes a per-user LaunchAgent.
type launchAgentItem struct {
	label      string
	executable func() (string, error)
}

func newLoginItem(_, appID string, executable func() (string, error)) LoginItem {
	return &launchAgentItem{label: appID, executable: executable}
}

func (item *launchAgentItem) path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	return filepath.Join(home, "Library", "LaunchAgents", item.label+".plist"), nil
}

func (item *launchAgentItem) Enabled() bool {
	path, err := item.path()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

func (item *launchAgentItem) SetEnabled(enabled bool) error {
	path, err := item.path()
	if err != nil {
		return fmt.Errorf("start at login: %w", err)
	}
	if !enabled {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("start at login: remove plist: %w", err)
		}
		return nil
	}

	execPath, err := item.executable()
	if err != nil {
		return fmt.Errorf("start at login: resolve executable: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("start at login: create LaunchAgents dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(launchAgentPlist(item.label, execPath)), 0o644); err != nil {
		return fmt.Errorf("start at login: write plist: %w", err)
	}
	return nil
}

func fallbackConfigDir(home string) string {
	return filepath.Join(home, "Library", "Application Support")
}

func launchAgentPlist(label, execPath string) string {
	escape := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&apos;")
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>%s</string>
	<key>ProgramArguments</key>
	<array>
		<string>%s</string>
	</array>
	<key>RunAtLoad</key>
	<true/>
</dict>
</plist>
`, escape.Replace(label), escape.Replace(execPath))
}
