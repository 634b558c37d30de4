package storage

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"tomatray/internal/ui/preferences"
)

const settingsFileName = "settings.yaml"

type yamlSettings struct {
	WorkMinutes       *int `yaml:"work_minutes"`
	ShortBreakMinutes *int `yaml:"short_break_minutes"`
	LongBreakMinutes  *int `yaml:"long_break_minutes"`
	SessionsUntilLong *int `yaml:"sessions_until_long_break"`

	AutoStartWork      *bool   `yaml:"auto_start_work_after_break"`
	IdleEnabled        *bool   `yaml:"idle_detection"`
	IdleTimeoutMinutes *int    `yaml:"idle_timeout_minutes"`
	IdleBackend        *string `yaml:"idle_backend"`
	StartAtLogin       *bool   `yaml:"start_at_login"`

	Sound *yamlSound `yaml:"sound"`
}

type yamlSound struct {
	Enabled         *bool    `yaml:"enabled"`
	Volume          *float64 `yaml:"volume"`
	Type            *string  `yaml:"type"`
	WorkStart       string   `yaml:"work_start,omitempty"`
	BreakStart      string   `yaml:"break_start,omitempty"`
	SessionComplete string   `yaml:"session_complete,omitempty"`
	TimerFinish     string   `yaml:"timer_finish,omitempty"`
}

// Store persists settings to a YAML file.
type Store struct {
	path string

	mu        sync.Mutex
	lastWrite []byte
}

// NewStore returns a store at <UserConfigDir>/<appName>/settings.yaml.
func NewStore(appName string) (*Store, error) {
	configPath, err := resolveConfigPath(appName)
	if err != nil {
		return nil, err
	}
	return &Store{path: configPath}, nil
}

// NewStoreAt returns a store backed by an explicit file path.
func NewStoreAt(path string) *Store {
	return &Store{path: path}
}

// Path returns the settings file location.
func (store *Store) Path() string {
	return store.path
}

// Load reads user preferences from YAML.
// If the config file does not exist, default settings are returned.
func (store *Store) Load() (preferences.Settings, error) {
	settings := preferences.DefaultSettings()

	rawData, err := os.ReadFile(store.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}
	return decodeSettings(rawData)
}

// Save writes user preferences to YAML.
func (store *Store) Save(settings preferences.Settings) error {
	if err := os.MkdirAll(filepath.Dir(store.path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	serialized, err := encodeSettings(settings.Normalized())
	if err != nil {
		return err
	}

	store.mu.Lock()
	store.lastWrite = serialized
	store.mu.Unlock()

	temp := store.path + ".tmp"
	if err := os.WriteFile(temp, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	if err := os.Rename(temp, store.path); err != nil {
		return fmt.Errorf("replace settings file: %w", err)
	}
	return nil
}

// ownWrite reports whether data is what this store saved last.
func (store *Store) ownWrite(data []byte) bool {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.lastWrite != nil && bytes.Equal(store.lastWrite, data)
}

func resolveConfigPath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, settingsFileName), nil
}

func decodeSettings(rawData []byte) (preferences.Settings, error) {
	settings := preferences.DefaultSettings()
	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}
	applyYamlSettings(&settings, fileData)
	return settings.Normalized(), nil
}

func encodeSettings(settings preferences.Settings) ([]byte, error) {
	fileData := yamlSettings{
		WorkMinutes:        &settings.WorkMinutes,
		ShortBreakMinutes:  &settings.ShortBreakMinutes,
		LongBreakMinutes:   &settings.LongBreakMinutes,
		SessionsUntilLong:  &settings.SessionsUntilLong,
		AutoStartWork:      &settings.AutoStartWork,
		IdleEnabled:        &settings.IdleEnabled,
		IdleTimeoutMinutes: &settings.IdleTimeoutMinutes,
		IdleBackend:        &settings.IdleBackend,
		StartAtLogin:       &settings.StartAtLogin,
		Sound: &yamlSound{
			Enabled:         &settings.SoundsEnabled,
			Volume:          &settings.SoundVolume,
			Type:            &settings.SoundType,
			WorkStart:       settings.WorkStartSound,
			BreakStart:      settings.BreakStartSound,
			SessionComplete: settings.SessionCompleteSound,
			TimerFinish:     settings.TimerFinishSound,
		},
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return nil, fmt.Errorf("marshal settings yaml: %w", err)
	}
	return serialized, nil
}

// applyYamlSettings copies the keys present in the file over the defaults.
func applyYamlSettings(settings *preferences.Settings, fileData yamlSettings) {
	setInt(&settings.WorkMinutes, fileData.WorkMinutes)
	setInt(&settings.ShortBreakMinutes, fileData.ShortBreakMinutes)
	setInt(&settings.LongBreakMinutes, fileData.LongBreakMinutes)
	setInt(&settings.SessionsUntilLong, fileData.SessionsUntilLong)
	setInt(&settings.IdleTimeoutMinutes, fileData.IdleTimeoutMinutes)
	setBool(&settings.AutoStartWork, fileData.AutoStartWork)
	setBool(&settings.IdleEnabled, fileData.IdleEnabled)
	setBool(&settings.StartAtLogin, fileData.StartAtLogin)
	if fileData.IdleBackend != nil {
		settings.IdleBackend = *fileData.IdleBackend
	}

	sound := fileData.Sound
	if sound == nil {
		return
	}
	setBool(&settings.SoundsEnabled, sound.Enabled)
	if sound.Volume != nil {
		settings.SoundVolume = *sound.Volume
	}
	if sound.Type != nil {
		settings.SoundType = *sound.Type
	}
	settings.WorkStartSound = sound.WorkStart
	settings.BreakStartSound = sound.BreakStart
	settings.SessionCompleteSound = sound.SessionComplete
	settings.TimerFinishSound = sound.TimerFinish
}

func setInt(target *int, value *int) {
	if value != nil {
		*target = *value
	}
}

func setBool(target *bool, value *bool) {
	if value != nil {
		*target = *value
	}
}
