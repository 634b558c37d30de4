package preferences

import (
	"fmt"
	"time"

	"tomatray/internal/audio"
	"tomatray/internal/core/model"
)

// Sound types.
const (
	SoundChimes = "chimes"
	SoundCustom = "custom"
)

// Settings defines editable user preferences.
type Settings struct {
	WorkMinutes       int
	ShortBreakMinutes int
	LongBreakMinutes  int
	SessionsUntilLong int

	AutoStartWork      bool
	IdleEnabled        bool
	IdleTimeoutMinutes int
	IdleBackend        string
	StartAtLogin       bool

	SoundsEnabled        bool
	SoundVolume          float64
	SoundType            string
	WorkStartSound       string
	BreakStartSound      string
	SessionCompleteSound string
	TimerFinishSound     string
}

// DefaultSettings returns default settings for tomatray.
func DefaultSettings() Settings {
	return Settings{
		WorkMinutes:        25,
		ShortBreakMinutes:  5,
		LongBreakMinutes:   15,
		SessionsUntilLong:  4,
		AutoStartWork:      true,
		IdleEnabled:        true,
		IdleTimeoutMinutes: 5,
		IdleBackend:        "auto",
		SoundsEnabled:      true,
		SoundVolume:        0.7,
		SoundType:          SoundChimes,
	}
}

// Normalized clamps every field into its editable range.
func (settings Settings) Normalized() Settings {
	settings.WorkMinutes = clampInt(settings.WorkMinutes, 1, 120)
	settings.ShortBreakMinutes = clampInt(settings.ShortBreakMinutes, 1, 60)
	settings.LongBreakMinutes = clampInt(settings.LongBreakMinutes, 5, 120)
	settings.SessionsUntilLong = clampInt(settings.SessionsUntilLong, 2, 10)
	settings.IdleTimeoutMinutes = clampInt(settings.IdleTimeoutMinutes, 1, 30)

	switch {
	case settings.SoundVolume < 0:
		settings.SoundVolume = 0
	case settings.SoundVolume > 1:
		settings.SoundVolume = 1
	}
	if settings.SoundType != SoundCustom {
		settings.SoundType = SoundChimes
	}
	switch settings.IdleBackend {
	case "auto", "poll", "events":
	default:
		settings.IdleBackend = "auto"
	}
	return settings
}

// TimerConfig converts settings to a timer configuration in minutes mode.
func (settings Settings) TimerConfig() model.TimerConfig {
	return model.TimerConfig{
		WorkDuration:       settings.WorkMinutes,
		ShortBreakDuration: settings.ShortBreakMinutes,
		LongBreakDuration:  settings.LongBreakMinutes,
		SessionsUntilLong:  settings.SessionsUntilLong,
		AutoStartWork:      settings.AutoStartWork,
	}
}

// IdleConfig converts settings to the pause-on-idle policy.
func (settings Settings) IdleConfig() model.IdleConfig {
	return model.IdleConfig{
		Enabled:       settings.IdleEnabled,
		Timeout:       time.Duration(settings.IdleTimeoutMinutes) * time.Minute,
		CheckInterval: 30 * time.Second,
	}
}

// AudioConfig converts the sound settings for the cue player.
func (settings Settings) AudioConfig() audio.Config {
	return audio.Config{
		Enabled: settings.SoundsEnabled,
		Volume:  settings.SoundVolume,
		Custom:  settings.SoundType == SoundCustom,
		Paths: map[audio.Cue]string{
			audio.CueWorkStart:       settings.WorkStartSound,
			audio.CueBreakStart:      settings.BreakStartSound,
			audio.CueSessionComplete: settings.SessionCompleteSound,
			audio.CueTimerFinish:     settings.TimerFinishSound,
		},
	}
}

// MonitorConfig returns the activity monitor tuning.
func (settings Settings) MonitorConfig() model.MonitorConfig {
	return model.DefaultMonitorConfig()
}

// Summary describes the cycle in one line.
func (settings Settings) Summary() string {
	return fmt.Sprintf("%d/%d/%d min, long break every %d", settings.WorkMinutes, settings.ShortBreakMinutes, settings.LongBreakMinutes, settings.SessionsUntilLong)
}

func clampInt(value, low, high int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
