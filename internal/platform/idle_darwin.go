package platform

import (
	"fmt"
	"os/exec"
	"time"
)

type idleProvider struct {
	run func(name string, args ...string) ([]byte, error)
}

func newIdleProvider() IdleProvider {
	if _, err := exec.LookPath("ioreg"); err != nil {
		return unsupportedIdleProvider{}
	}
	return &idleProvider{run: func(name string, args ...string) ([]byte, error) {
		return exec.Command(name, args...).Output()
	}}
}

func (provider *idleProvider) IdleDuration() (time.Duration, error) {
	output, err := provider.run("ioreg", "-c", "IOHIDSystem", "-d", "4")
	if err != nil {
		return 0, fmt.Errorf("ioreg: %w", err)
	}
	return parseHIDIdleTime(output)
}
