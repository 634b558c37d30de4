package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tomatray/internal/ui/preferences"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	store := NewStoreAt(filepath.Join(t.TempDir(), "settings.yaml"))

	settings, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, preferences.DefaultSettings(), settings)
}

func TestSaveThenLoad(t *testing.T) {
	store := NewStoreAt(filepath.Join(t.TempDir(), "nested", "settings.yaml"))
	settings := preferences.DefaultSettings()
	settings.WorkMinutes = 50
	settings.AutoStartWork = false
	settings.SoundType = preferences.SoundCustom
	settings.WorkStartSound = "/usr/share/sounds/bell.oga"
	settings.StartAtLogin = true

	require.NoError(t, store.Save(settings))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, settings, loaded)

	_, err = os.Stat(store.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("work_minutes: 45\nauto_start_work_after_break: false\nsound:\n  volume: 0.2\n"), 0o644))

	settings, err := NewStoreAt(path).Load()
	require.NoError(t, err)

	expected := preferences.DefaultSettings()
	expected.WorkMinutes = 45
	expected.AutoStartWork = false
	expected.SoundVolume = 0.2
	assert.Equal(t, expected, settings)
}

func TestLoadClampsOutOfRangeValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("work_minutes: 0\nsessions_until_long_break: 99\nidle_timeout_minutes: 60\n"), 0o644))

	settings, err := NewStoreAt(path).Load()
	require.NoError(t, err)
	assert.Equal(t, 1, settings.WorkMinutes)
	assert.Equal(t, 10, settings.SessionsUntilLong)
	assert.Equal(t, 30, settings.IdleTimeoutMinutes)
}

func TestLoadInvalidYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("work_minutes: [oops"), 0o644))

	settings, err := NewStoreAt(path).Load()
	assert.Error(t, err)
	assert.Equal(t, preferences.DefaultSettings(), settings)
}

func TestWatchReportsExternalEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	store := NewStoreAt(path)
	require.NoError(t, store.Save(preferences.DefaultSettings()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var work atomic.Int64
	done := make(chan error, 1)
	go func() {
		done <- store.Watch(ctx, nil, func(settings preferences.Settings) {
			work.Store(int64(settings.WorkMinutes))
		})
	}()

	attempt := 0
	require.Eventually(t, func() bool {
		attempt++
		content := fmt.Sprintf("work_minutes: 42\n# edit %d\n", attempt)
		_ = os.WriteFile(path, []byte(content), 0o644)
		return work.Load() == 42
	}, 5*time.Second, 300*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestOwnWritesAreNotReported(t *testing.T) {
	store := NewStoreAt(filepath.Join(t.TempDir(), "settings.yaml"))
	require.NoError(t, store.Save(preferences.DefaultSettings()))

	called := false
	store.reload(slog.Default(), func(preferences.Settings) { called = true })
	assert.False(t, called)
}
