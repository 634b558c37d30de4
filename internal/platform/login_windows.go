//go:build windows

package platform

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/sys/windows/registry"
)

const runKeyPath = `Software\Microsoft\Windows\CurrentVersion\Run`

// runKeyItem stores the command line under the per-user Run key.
type runKeyItem struct {
	name       string
	executable func() (string, error)
}

func newLoginItem(appName, _ string, executable func() (string, error)) LoginItem {
	return &runKeyItem{name: appName, executable: executable}
}

func (item *runKeyItem) Enabled() bool {
	key, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.QUERY_VALUE)
	if err != nil {
		return false
	}
	defer key.Close()
	_, _, err = key.GetStringValue(item.name)
	return err == nil
}

func (item *runKeyItem) SetEnabled(enabled bool) error {
	key, _, err := registry.CreateKey(registry.CURRENT_USER, runKeyPath, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("start at login: open run key: %w", err)
	}
	defer key.Close()

	if !enabled {
		if err := key.DeleteValue(item.name); err != nil && !errors.Is(err, registry.ErrNotExist) {
			return fmt.Errorf("start at login: delete value: %w", err)
		}
		return nil
	}

	execPath, err := item.executable()
	if err != nil {
		return fmt.Errorf("start at login: resolve executable: %w", err)
	}
	if err := key.SetStringValue(item.name, `"`+strings.Trim(execPath, `"`)+`"`); err != nil {
		return fmt.Errorf("start at login: set value: %w", err)
	}
	return nil
}

func fallbackConfigDir(home string) string {
	return filepath.Join(home, "AppData", "Roaming")
}
