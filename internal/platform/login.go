package platform

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

var errUnsupported = errors.New("not supported on this platform")

// LoginItem registers the application to start when the user logs in.
type LoginItem interface {
	Enabled() bool
	SetEnabled(enabled bool) error
}

// NewLoginItem returns the platform login item for the running executable.
func NewLoginItem(appName, appID string) LoginItem {
	return newLoginItem(appName, appID, os.Executable)
}

type unsupportedLoginItem struct{}

func (unsupportedLoginItem) Enabled() bool { return false }

func (unsupportedLoginItem) SetEnabled(enabled bool) error {
	if enabled {
		return fmt.Errorf("start at login: %w", errUnsupported)
	}
	return nil
}

func slug(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(name, " ", "-")
}

func configDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err == nil && dir != "" {
		return dir, nil
	}
	home, homeErr := os.UserHomeDir()
	if homeErr != nil {
		if err != nil {
			return "", fmt.Errorf("config dir: %w", err)
		}
		return "", fmt.Errorf("config dir: %w", homeErr)
	}
	return fallbackConfigDir(home), nil
}
