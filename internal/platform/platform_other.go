//go:build !linux && !darwin && !windows

package platform

import "path/filepath"

func newIdleProvider() IdleProvider {
	return unsupportedIdleProvider{}
}

func newLoginItem(string, string, func() (string, error)) LoginItem {
	return unsupportedLoginItem{}
}

func fallbackConfigDir(home string) string {
	return filepath.Join(home, ".config")
}
