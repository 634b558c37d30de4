package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"

	"tomatray/internal/app"
	"tomatray/internal/audio"
	"tomatray/internal/cli"
	"tomatray/internal/core/activity"
	"tomatray/internal/core/model"
	"tomatray/internal/core/scheduler"
	"tomatray/internal/core/timer"
	"tomatray/internal/dbusctl"
	"tomatray/internal/log"
	"tomatray/internal/platform"
	"tomatray/internal/storage"
	"tomatray/internal/ui"
	"tomatray/internal/ui/mainwindow"
	"tomatray/internal/ui/overlay"
	"tomatray/internal/ui/preferences"
	"tomatray/internal/ui/tray"
	"tomatray/resources"
)

const (
	appName       = "tomatray"
	appID         = "io.github.tomatray"
	remoteTimeout = 5 * time.Second
	queryTimeout  = 2 * time.Second
)

func main() {
	os.Exit(run())
}

func run() int {
	options, err := cli.Parse(filepath.Base(os.Args[0]), os.Args[1:], os.Stderr)
	if err != nil {
		if cli.IsHelp(err) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	logger, err := log.Init(log.Options{
		Verbose:    options.Verbose,
		JSONFormat: options.JSONLog,
		FilePath:   options.LogFile,
		Stderr:     os.Stderr,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logging: %v\n", err)
		return 1
	}
	defer log.Close()

	var pending string
	if options.Command != "" {
		ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
		result, state, err := dbusctl.Send(ctx, options.Command, options.AutoStart)
		cancel()
		switch result {
		case dbusctl.ResultSuccess:
			if options.Command == dbusctl.MethodGetState {
				fmt.Println(state)
			}
			return 0
		case dbusctl.ResultStartNeeded:
			logger.Info("no running instance, starting one", "command", options.Command)
			pending = options.Command
		case dbusctl.ResultNotRunning:
			fmt.Fprintf(os.Stderr, "%s is not running (use --auto-start to launch it)\n", appName)
			return 1
		default:
			logger.Error("remote command failed", "command", options.Command, "error", err)
			return 1
		}
	}

	settings, store := loadSettings(options, logger)
	timerConfig := settings.TimerConfig()
	if options.TestMode {
		timerConfig = testTimerConfig(options.Durations, settings.AutoStartWork)
		logger.Info("test mode", "work", timerConfig.WorkDuration, "short_break", timerConfig.ShortBreakDuration,
			"long_break", timerConfig.LongBreakDuration, "sessions", timerConfig.SessionsUntilLong)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	loop := scheduler.NewLoop()
	go loop.Run(ctx)

	fyneApp := fyneapp.NewWithID(appID)
	fyneApp.SetIcon(resources.AppIcon())

	var controller *app.App
	exec := func(fn func(*app.App)) func() {
		return func() {
			controller.Exec(func() { fn(controller) })
		}
	}

	prefsWindow := preferences.New(fyneApp, settings, func(updated preferences.Settings) {
		controller.Exec(func() { controller.SaveSettings(updated) })
	})
	prefsWindow.SetOnTestSound(func(draft preferences.Settings) {
		audio.NewPlayer(draft.AudioConfig(), log.Component("audio")).Play(audio.CueWorkStart)
	})
	showPreferences := func() {
		queryCtx, queryCancel := context.WithTimeout(ctx, queryTimeout)
		defer queryCancel()
		if current, err := app.Query(queryCtx, controller, controller.Settings); err == nil {
			prefsWindow.UpdateSettings(current)
		}
		prefsWindow.Show()
	}

	mainWindow := mainwindow.New(fyneApp, mainwindow.Callbacks{
		OnToggleTimer: exec((*app.App).ToggleTimer),
		OnReset:       exec((*app.App).ResetTimer),
		OnSettings:    showPreferences,
		OnAutoStart: func(enabled bool) {
			controller.Exec(func() { controller.SetAutoStart(enabled) })
		},
	})
	breakOverlay := overlay.New(fyneApp, overlay.Callbacks{
		OnSkip:        exec((*app.App).SkipBreak),
		OnExtend:      exec((*app.App).ExtendBreak),
		OnTogglePause: exec((*app.App).TogglePause),
		OnDismiss:     exec((*app.App).DismissOverlay),
	})

	var trayManager *tray.Manager
	if desktopApp, ok := fyneApp.(desktop.App); ok {
		trayManager = tray.New(desktopApp, tray.Callbacks{
			OnToggleTimer: exec((*app.App).ToggleTimer),
			OnReset:       exec((*app.App).ResetTimer),
			OnSkipPhase:   exec((*app.App).ToggleBreak),
			OnAutoStart: func(enabled bool) {
				controller.Exec(func() { controller.SetAutoStart(enabled) })
			},
			OnShowHide:    mainWindow.Toggle,
			OnPreferences: showPreferences,
			OnQuit:        fyneApp.Quit,
		})
		desktopApp.SetSystemTrayWindow(mainWindow.FyneWindow())
	} else {
		logger.Warn("system tray unsupported on this platform")
	}

	idleProvider := platform.NewIdleProvider()
	var loginItem app.LoginItem
	if !options.TestMode {
		loginItem = platform.NewLoginItem(appName, appID)
	}
	cues := audio.NewPlayer(settings.AudioConfig(), log.Component("audio"))
	ready := make(chan *app.App, 1)
	loop.Post(func() {
		monitorConfig := settings.MonitorConfig()
		detector := activity.NewDetector(activity.ParseBackend(settings.IdleBackend), loop, idleProvider,
			mainWindow.Inputs(), monitorConfig, log.Component("activity"))
		monitor := activity.NewMonitor(loop, detector, idleProvider, monitorConfig, log.Component("activity"))

		ready <- app.New(app.Options{
			Scheduler: loop,
			Timer:     timer.New(loop, timerConfig, log.Component("timer")),
			Monitor:   monitor,
			View:      ui.NewView(mainWindow, breakOverlay, trayManager),
			Cues:      cues,
			Store:     storeOrNil(store),
			Login:     loginItem,
			Settings:  settings,
			TestMode:  options.TestMode,
			Logger:    log.Component("app"),
		})
	})
	controller = <-ready

	server, err := dbusctl.Serve(controller.Remote(), log.Component("dbus"))
	switch {
	case errors.Is(err, dbusctl.ErrAlreadyRunning):
		logger.Info("another instance owns the bus name, exiting")
		shutdown(loop, controller, cues)
		return 0
	case err != nil:
		logger.Warn("remote control unavailable", "error", err)
		lock, lockErr := platform.AcquireInstanceLock(appID)
		if errors.Is(lockErr, platform.ErrAlreadyRunning) {
			logger.Info("another instance holds the instance lock, exiting", "error", lockErr)
			shutdown(loop, controller, cues)
			return 0
		}
		defer func() {
			_ = lock.Release()
		}()
	}

	events := controller.Subscribe(16)
	go func() {
		for event := range events {
			logger.Debug("app event", "type", event.Type, "state", event.State, "remaining", event.Remaining)
			if server != nil && event.Type != app.EventMonitorLost {
				server.EmitState(event.State.String())
			}
		}
	}()

	if store != nil {
		go func() {
			err := store.Watch(ctx, log.Component("storage"), func(updated preferences.Settings) {
				logger.Info("settings changed on disk", "summary", updated.Summary())
				controller.Exec(func() { controller.ApplySettings(updated) })
				fyne.Do(func() { prefsWindow.UpdateSettings(updated) })
			})
			if err != nil {
				logger.Warn("settings watcher stopped", "error", err)
			}
		}()
	}

	if pending != "" {
		controller.Exec(func() {
			if err := controller.Dispatch(pending); err != nil {
				logger.Warn("dispatch command", "command", pending, "error", err)
			}
		})
	}

	logger.Info("started", "settings", settings.Summary(), "test_mode", options.TestMode)
	mainWindow.Show()
	fyneApp.Run()

	shutdown(loop, controller, cues)
	if server != nil {
		if err := server.Close(); err != nil {
			logger.Debug("close dbus", "error", err)
		}
	}
	return 0
}

func loadSettings(options cli.Options, logger *slog.Logger) (preferences.Settings, *storage.Store) {
	settings := preferences.DefaultSettings()
	if options.TestMode {
		return settings, nil
	}

	store, err := storage.NewStore(appName)
	if err != nil {
		logger.Warn("settings storage unavailable", "error", err)
		return settings, nil
	}
	loaded, err := store.Load()
	if err != nil {
		logger.Warn("load settings, using defaults", "path", store.Path(), "error", err)
		return settings, store
	}
	return loaded, store
}

func testTimerConfig(durations cli.Durations, autoStart bool) model.TimerConfig {
	return model.TimerConfig{
		WorkDuration:       durations.Work,
		ShortBreakDuration: durations.ShortBreak,
		LongBreakDuration:  durations.LongBreak,
		SessionsUntilLong:  durations.SessionsUntilLong,
		SecondsMode:        true,
		AutoStartWork:      autoStart,
	}
}

// storeOrNil avoids handing App a non-nil interface holding a nil *Store.
func storeOrNil(store *storage.Store) app.SettingsStore {
	if store == nil {
		return nil
	}
	return store
}

func shutdown(loop *scheduler.Loop, controller *app.App, cues *audio.Player) {
	done := make(chan struct{})
	loop.Post(func() {
		controller.Close()
		close(done)
	})
	select {
	case <-done:
	case <-time.After(queryTimeout):
	}
	cues.Wait()
}
