//go:build linux

package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// desktopLoginItem writes an XDG autostart entry.
type desktopLoginItem struct {
	appName    string
	executable func() (string, error)
	dir        func() (string, error)
}

func newLoginItem(appName, _ string, executable func() (string, error)) LoginItem {
	return &desktopLoginItem{appName: appName, executable: executable, dir: configDir}
}

func (item *desktopLoginItem) path() (string, error) {
	dir, err := item.dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "autostart", slug(item.appName)+".desktop"), nil
}

func (item *desktopLoginItem) Enabled() bool {
	path, err := item.path()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

func (item *desktopLoginItem) SetEnabled(enabled bool) error {
	path, err := item.path()
	if err != nil {
		return fmt.Errorf("start at login: %w", err)
	}
	if !enabled {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("start at login: remove desktop entry: %w", err)
		}
		return nil
	}

	execPath, err := item.executable()
	if err != nil {
		return fmt.Errorf("start at login: resolve executable: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("start at login: create autostart dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(desktopEntry(item.appName, execPath)), 0o644); err != nil {
		return fmt.Errorf("start at login: write desktop entry: %w", err)
	}
	return nil
}

func fallbackConfigDir(home string) string {
	return filepath.Join(home, ".config")
}

func desktopEntry(appName, execPath string) string {
	if strings.Contains(execPath, " ") && !strings.HasPrefix(execPath, `"`) {
		execPath = `"` + execPath + `"`
	}
	return fmt.Sprintf(`[Desktop Entry]
Type=Application
Name=%s
Comment=Pomodoro timer
Exec=%s
Icon=%s
X-GNOME-Autostart-enabled=true
Terminal=false
`, appName, execPath, slug(appName))
}
