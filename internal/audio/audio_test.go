package audio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type invocation struct {
	name string
	args []string
}

type recorder struct {
	mu    sync.Mutex
	calls []invocation
}

func (rec *recorder) run(_ context.Context, name string, args ...string) error {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.calls = append(rec.calls, invocation{name: name, args: args})
	return nil
}

func (rec *recorder) snapshot() []invocation {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return append([]invocation(nil), rec.calls...)
}

func found(name string) (string, error) {
	return "/usr/bin/" + name, nil
}

func newTestPlayer(config Config) (*Player, *recorder) {
	rec := &recorder{}
	player := NewPlayer(config, nil)
	player.SetRunner(rec.run, found)
	return player, rec
}

func TestChimeCommand(t *testing.T) {
	player, rec := newTestPlayer(Config{Enabled: true, Volume: 1})

	player.Play(CueWorkStart)
	player.Wait()

	calls := rec.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, chimePlayer, calls[0].name)
	assert.Equal(t, []string{"-i", "bell", "--volume=0.0", "-d", "tomatray"}, calls[0].args)
}

func TestDisabledOrSilentPlaysNothing(t *testing.T) {
	player, rec := newTestPlayer(Config{Enabled: false, Volume: 1})
	player.Play(CueBreakStart)

	player.Configure(Config{Enabled: true, Volume: 0})
	player.Play(CueBreakStart)
	player.Wait()

	assert.Empty(t, rec.snapshot())
}

func TestCustomSoundUsesPaplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "break.oga")
	require.NoError(t, os.WriteFile(path, []byte("OggS"), 0o644))

	player, rec := newTestPlayer(Config{
		Enabled: true,
		Volume:  0.5,
		Custom:  true,
		Paths:   map[Cue]string{CueBreakStart: path},
	})

	player.Play(CueLongBreakStart)
	player.Wait()

	calls := rec.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, customPlayer, calls[0].name)
	assert.Equal(t, []string{"--volume=32768", path}, calls[0].args)
}

func TestCustomWithoutFileFallsBackToChime(t *testing.T) {
	player, rec := newTestPlayer(Config{
		Enabled: true,
		Volume:  1,
		Custom:  true,
		Paths:   map[Cue]string{CueTimerFinish: "/does/not/exist.oga"},
	})

	player.Play(CueTimerFinish)
	player.Play(CueIdlePause)
	player.Wait()

	calls := rec.snapshot()
	require.Len(t, calls, 2)
	for _, call := range calls {
		assert.Equal(t, chimePlayer, call.name)
	}
}

func TestMissingPlayerBinary(t *testing.T) {
	rec := &recorder{}
	player := NewPlayer(Config{Enabled: true, Volume: 1}, nil)
	player.SetRunner(rec.run, func(string) (string, error) { return "", errors.New("not found") })

	player.Play(CueSessionComplete)
	player.Wait()
	assert.Empty(t, rec.snapshot())
}

func TestNilPlayer(t *testing.T) {
	var player *Player
	assert.NotPanics(t, func() {
		player.Play(CueWorkStart)
		player.Configure(Config{})
		player.Wait()
	})
}

func TestCueNames(t *testing.T) {
	assert.Equal(t, "long_break_start", CueLongBreakStart.String())
	assert.Equal(t, "idle_resume", CueIdleResume.String())
	for cue := CueWorkStart; cue <= CueIdleResume; cue++ {
		assert.NotEmpty(t, chimeEvents[cue], cue.String())
	}
}
