// Package audio plays short notification cues through the desktop sound
// tools.
package audio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"sync"
	"time"
)

// Cue identifies a notification sound.
type Cue int

const (
	CueWorkStart Cue = iota
	CueBreakStart
	CueLongBreakStart
	CueSessionComplete
	CueTimerFinish
	CueIdlePause
	CueIdleResume
)

func (cue Cue) String() string {
	switch cue {
	case CueWorkStart:
		return "work_start"
	case CueBreakStart:
		return "break_start"
	case CueLongBreakStart:
		return "long_break_start"
	case CueSessionComplete:
		return "session_complete"
	case CueTimerFinish:
		return "timer_finish"
	case CueIdlePause:
		return "idle_pause"
	case CueIdleResume:
		return "idle_resume"
	default:
		return "unknown"
	}
}

// Freedesktop sound theme event ids used for chimes.
var chimeEvents = map[Cue]string{
	CueWorkStart:       "bell",
	CueBreakStart:      "complete",
	CueLongBreakStart:  "alarm-clock-elapsed",
	CueSessionComplete: "message-new-instant",
	CueTimerFinish:     "dialog-information",
	CueIdlePause:       "device-removed",
	CueIdleResume:      "device-added",
}

const (
	chimePlayer  = "canberra-gtk-play"
	customPlayer = "paplay"
	playTimeout  = 10 * time.Second
)

// Config selects what and how loud to play.
type Config struct {
	Enabled bool
	Volume  float64
	// Custom plays files from Paths instead of theme chimes. Cues without a
	// path fall back to chimes.
	Custom bool
	Paths  map[Cue]string
}

// Runner executes an external player.
type Runner func(ctx context.Context, name string, args ...string) error

// Player plays cues asynchronously.
type Player struct {
	mu       sync.Mutex
	config   Config
	run      Runner
	lookPath func(string) (string, error)
	logger   *slog.Logger
	wg       sync.WaitGroup
}

// NewPlayer creates a player using the system sound tools.
func NewPlayer(config Config, logger *slog.Logger) *Player {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Player{
		config:   config,
		run:      execRunner,
		lookPath: exec.LookPath,
		logger:   logger,
	}
}

// SetRunner replaces the process runner and the binary lookup.
func (player *Player) SetRunner(run Runner, lookPath func(string) (string, error)) {
	player.mu.Lock()
	defer player.mu.Unlock()
	player.run = run
	player.lookPath = lookPath
}

// Configure replaces the playback settings.
func (player *Player) Configure(config Config) {
	if player == nil {
		return
	}
	player.mu.Lock()
	defer player.mu.Unlock()
	player.config = config
}

// Play starts playback of cue and returns immediately.
func (player *Player) Play(cue Cue) {
	if player == nil {
		return
	}
	player.mu.Lock()
	name, args, ok := player.commandLocked(cue)
	run := player.run
	player.mu.Unlock()
	if !ok {
		return
	}

	player.wg.Add(1)
	go func() {
		defer player.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), playTimeout)
		defer cancel()
		if err := run(ctx, name, args...); err != nil {
			player.logger.Debug("sound playback failed", "cue", cue, "player", name, "error", err)
		}
	}()
}

// Wait blocks until every started playback has finished.
func (player *Player) Wait() {
	if player == nil {
		return
	}
	player.wg.Wait()
}

func (player *Player) commandLocked(cue Cue) (string, []string, bool) {
	config := player.config
	if !config.Enabled || config.Volume <= 0 {
		return "", nil, false
	}
	volume := math.Min(config.Volume, 1)

	if config.Custom {
		if path := customPath(config.Paths, cue); path != "" {
			if _, err := os.Stat(path); err != nil {
				player.logger.Warn("custom sound missing, using chime", "cue", cue, "path", path)
			} else if _, err := player.lookPath(customPlayer); err == nil {
				return customPlayer, []string{fmt.Sprintf("--volume=%d", int(volume*65536)), path}, true
			}
		}
	}

	event, ok := chimeEvents[cue]
	if !ok {
		return "", nil, false
	}
	if _, err := player.lookPath(chimePlayer); err != nil {
		player.logger.Debug("no sound player available", "player", chimePlayer)
		return "", nil, false
	}
	decibels := 20 * math.Log10(volume)
	return chimePlayer, []string{"-i", event, fmt.Sprintf("--volume=%.1f", decibels), "-d", "tomatray"}, true
}

// customPath resolves the configured file for cue. Long breaks share the
// break start sound.
func customPath(paths map[Cue]string, cue Cue) string {
	if path := paths[cue]; path != "" {
		return path
	}
	if cue == CueLongBreakStart {
		return paths[CueBreakStart]
	}
	return ""
}

func execRunner(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}
