package platform

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"tomatray/internal/core/activity"
)

// IdleProvider returns the duration since last user input.
type IdleProvider interface {
	IdleDuration() (time.Duration, error)
}

// NewIdleProvider returns a platform-specific idle provider. Providers report
// activity.ErrUnavailable when the platform offers no idle counter.
func NewIdleProvider() IdleProvider {
	return newIdleProvider()
}

type unsupportedIdleProvider struct{}

func (unsupportedIdleProvider) IdleDuration() (time.Duration, error) {
	return 0, activity.ErrUnavailable
}

// chainProvider asks each provider in turn and sticks with the first one
// that answers.
type chainProvider struct {
	mu        sync.Mutex
	providers []namedProvider
	preferred int
}

type namedProvider struct {
	name     string
	provider IdleProvider
}

func newChainProvider(providers ...namedProvider) IdleProvider {
	if len(providers) == 0 {
		return unsupportedIdleProvider{}
	}
	return &chainProvider{providers: providers, preferred: -1}
}

func (chain *chainProvider) IdleDuration() (time.Duration, error) {
	chain.mu.Lock()
	defer chain.mu.Unlock()

	if chain.preferred >= 0 {
		idle, err := chain.providers[chain.preferred].provider.IdleDuration()
		if err == nil {
			return idle, nil
		}
		chain.preferred = -1
	}

	var errs []error
	for index, candidate := range chain.providers {
		idle, err := candidate.provider.IdleDuration()
		if err == nil {
			chain.preferred = index
			return idle, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", candidate.name, err))
	}
	return 0, fmt.Errorf("%w: %w", activity.ErrUnavailable, errors.Join(errs...))
}

// parseMillis parses the decimal millisecond count printed by xprintidle.
func parseMillis(output []byte) (time.Duration, error) {
	value := strings.TrimSpace(string(output))
	idleMillis, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse idle milliseconds: %w", err)
	}
	if idleMillis < 0 {
		idleMillis = 0
	}
	return time.Duration(idleMillis) * time.Millisecond, nil
}

// parseHIDIdleTime extracts the nanosecond HIDIdleTime counter from ioreg output.
func parseHIDIdleTime(output []byte) (time.Duration, error) {
	for _, line := range bytes.Split(output, []byte("\n")) {
		text := string(bytes.TrimSpace(line))
		if !strings.Contains(text, `"HIDIdleTime"`) {
			continue
		}
		parts := strings.SplitN(text, "=", 2)
		if len(parts) != 2 {
			continue
		}
		value := strings.Trim(strings.TrimSpace(parts[1]), `"`)
		nanos, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse HIDIdleTime: %w", err)
		}
		if nanos < 0 {
			nanos = 0
		}
		return time.Duration(nanos), nil
	}
	return 0, errors.New("HIDIdleTime not found in ioreg output")
}
