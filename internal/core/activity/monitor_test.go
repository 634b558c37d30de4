package activity

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tomatray/internal/core/model"
	"tomatray/internal/core/scheduler"
)

// sequenceSource replays samples and then repeats the last one.
type sequenceSource struct {
	samples []time.Duration
	errs    []error
	calls   int
}

func (source *sequenceSource) IdleDuration() (time.Duration, error) {
	index := source.calls
	source.calls++
	if index < len(source.errs) && source.errs[index] != nil {
		return 0, source.errs[index]
	}
	if len(source.samples) == 0 {
		return 0, ErrUnavailable
	}
	if index >= len(source.samples) {
		index = len(source.samples) - 1
	}
	return source.samples[index], nil
}

func ms(values ...int) []time.Duration {
	out := make([]time.Duration, len(values))
	for i, value := range values {
		out[i] = time.Duration(value) * time.Millisecond
	}
	return out
}

func newPollingMonitor(source IdleSource) (*Monitor, *scheduler.Manual, *int) {
	manual := scheduler.NewManual()
	config := model.DefaultMonitorConfig()
	detector := NewPollingDetector(manual, source, config, nil)
	monitor := NewMonitor(manual, detector, source, config, nil)
	fired := 0
	monitor.SetCallback(func() {
		fired++
	})
	return monitor, manual, &fired
}

func TestPollingFiresOnceAfterIdleReset(t *testing.T) {
	source := &sequenceSource{samples: ms(5000, 5200, 100)}
	monitor, manual, fired := newPollingMonitor(source)
	var activeDuringCallback bool
	monitor.SetCallback(func() {
		*fired++
		activeDuringCallback = monitor.IsActive()
	})

	monitor.Start()
	require.True(t, monitor.IsActive())

	manual.Advance(500 * time.Millisecond)
	assert.Equal(t, 0, *fired)
	assert.Equal(t, 5200*time.Millisecond, monitor.LastIdleTime())

	manual.Advance(500 * time.Millisecond)
	assert.Equal(t, 1, *fired)
	assert.False(t, monitor.IsActive())
	assert.False(t, activeDuringCallback)
	assert.Equal(t, 0, manual.Pending())

	// Another drop before Start is called again is not reported.
	source.samples = append(source.samples, ms(5000, 5200, 100)...)
	manual.Advance(5 * time.Second)
	assert.Equal(t, 1, *fired)
}

func TestPollingDetectsPartialReset(t *testing.T) {
	source := &sequenceSource{samples: ms(1500, 2000, 600)}
	monitor, manual, fired := newPollingMonitor(source)

	monitor.Start()
	manual.Advance(500 * time.Millisecond)
	assert.Equal(t, 0, *fired)
	manual.Advance(500 * time.Millisecond)
	assert.Equal(t, 1, *fired)
}

func TestPollingIgnoresGrowingIdle(t *testing.T) {
	source := &sequenceSource{samples: ms(100, 600, 1100, 1600, 2100, 2600)}
	monitor, manual, fired := newPollingMonitor(source)

	monitor.Start()
	manual.Advance(3 * time.Second)

	assert.Equal(t, 0, *fired)
	assert.True(t, monitor.IsActive())
}

func TestPollingSmallJitterIsNotActivity(t *testing.T) {
	// A drop of exactly one second is not "more than" one second, and the
	// previous sample was below the was-idle threshold.
	source := &sequenceSource{samples: ms(1900, 900)}
	monitor, manual, fired := newPollingMonitor(source)

	monitor.Start()
	manual.Advance(2 * time.Second)
	assert.Equal(t, 0, *fired)
}

func TestPollingToleratesFailuresThenGivesUp(t *testing.T) {
	source := &sequenceSource{}
	monitor, manual, fired := newPollingMonitor(source)
	unavailable := 0
	monitor.SetOnUnavailable(func() { unavailable++ })

	monitor.Start()
	manual.Advance(10 * time.Second)
	assert.True(t, monitor.IsActive(), "20 failures are tolerated")

	manual.Advance(500 * time.Millisecond)
	assert.False(t, monitor.IsActive())
	assert.Equal(t, 0, *fired)
	assert.Equal(t, 1, unavailable)
	assert.Equal(t, 0, manual.Pending())
}

func TestPollingRecoversAfterTransientFailures(t *testing.T) {
	boom := errors.New("display busy")
	source := &sequenceSource{
		samples: ms(4000, 4000, 4000, 4500, 50),
		errs:    []error{nil, boom, boom},
	}
	monitor, manual, fired := newPollingMonitor(source)

	monitor.Start()
	manual.Advance(2 * time.Second)

	assert.Equal(t, 1, *fired)
	assert.False(t, monitor.IsActive())
}

func TestStopCancelsSampling(t *testing.T) {
	source := &sequenceSource{samples: ms(5000, 100)}
	monitor, manual, fired := newPollingMonitor(source)

	monitor.Start()
	monitor.Stop()
	monitor.Stop()
	manual.Advance(5 * time.Second)

	assert.Equal(t, 0, *fired)
	assert.False(t, monitor.IsActive())
	assert.Equal(t, 1, source.calls, "only the initial sample was taken")
}

func TestStartIsNoopWhenActive(t *testing.T) {
	source := &sequenceSource{samples: ms(5000, 5000, 100)}
	monitor, manual, fired := newPollingMonitor(source)

	monitor.Start()
	monitor.Start()
	assert.Equal(t, 1, manual.Pending())

	manual.Advance(time.Second)
	assert.Equal(t, 1, *fired)
}

func TestRestartAfterActivityFiresAgain(t *testing.T) {
	source := &sequenceSource{samples: ms(5000, 100, 100, 100)}
	monitor, manual, fired := newPollingMonitor(source)

	monitor.Start()
	manual.Advance(500 * time.Millisecond)
	require.Equal(t, 1, *fired)

	source.samples = append(source.samples, ms(3000, 3000, 10)...)
	source.calls = 4
	monitor.Start()
	manual.Advance(time.Second)
	assert.Equal(t, 2, *fired)
}

func TestIdleTimeSentinel(t *testing.T) {
	monitor, _, _ := newPollingMonitor(&sequenceSource{})
	assert.Equal(t, UnknownIdle, monitor.IdleTime())

	monitor, _, _ = newPollingMonitor(&sequenceSource{samples: ms(0)})
	assert.Equal(t, time.Duration(0), monitor.IdleTime())

	monitor = NewMonitor(scheduler.NewManual(), NewEventDetector(scheduler.NewManual(), nil, 0, nil), nil, model.DefaultMonitorConfig(), nil)
	assert.Equal(t, UnknownIdle, monitor.IdleTime())
}

type flakyDetector struct {
	failures int
	arms     int
	signal   func(Signal)
	disarms  int
}

func (detector *flakyDetector) Arm(signal func(Signal)) error {
	detector.arms++
	if detector.arms <= detector.failures {
		return errors.New("backend not ready")
	}
	detector.signal = signal
	return nil
}

func (detector *flakyDetector) Disarm() {
	detector.disarms++
}

func TestMonitorRetriesUnreadyBackend(t *testing.T) {
	manual := scheduler.NewManual()
	detector := &flakyDetector{failures: 2}
	monitor := NewMonitor(manual, detector, nil, model.DefaultMonitorConfig(), nil)
	fired := 0
	monitor.SetCallback(func() { fired++ })

	monitor.Start()
	assert.Equal(t, 1, detector.arms)
	manual.Advance(2 * time.Second)
	assert.Equal(t, 3, detector.arms)
	require.NotNil(t, detector.signal)

	detector.signal(SignalActivity)
	detector.signal(SignalActivity)
	assert.Equal(t, 1, fired)
	assert.False(t, monitor.IsActive())
}

func TestMonitorGivesUpOnBackendThatNeverArms(t *testing.T) {
	manual := scheduler.NewManual()
	config := model.DefaultMonitorConfig()
	config.MaxFailures = 3
	detector := &flakyDetector{failures: 100}
	monitor := NewMonitor(manual, detector, nil, config, nil)

	monitor.Start()
	manual.Advance(time.Minute)

	assert.False(t, monitor.IsActive())
	assert.Equal(t, 4, detector.arms)
	assert.Equal(t, 0, manual.Pending())
}

func TestStaleSignalFromPreviousEpochIgnored(t *testing.T) {
	manual := scheduler.NewManual()
	detector := &flakyDetector{}
	monitor := NewMonitor(manual, detector, nil, model.DefaultMonitorConfig(), nil)
	fired := 0
	monitor.SetCallback(func() { fired++ })

	monitor.Start()
	stale := detector.signal
	monitor.Stop()
	monitor.Start()

	stale(SignalActivity)
	assert.Equal(t, 0, fired)
	assert.True(t, monitor.IsActive())

	detector.signal(SignalActivity)
	assert.Equal(t, 1, fired)
}

func TestNilMonitorIsSafe(t *testing.T) {
	var monitor *Monitor
	assert.NotPanics(t, func() {
		monitor.Start()
		monitor.Stop()
		monitor.SetCallback(nil)
		monitor.Close()
	})
	assert.False(t, monitor.IsActive())
	assert.Equal(t, UnknownIdle, monitor.IdleTime())
}
