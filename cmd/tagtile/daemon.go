package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/tagtile/internal/config"
	"github.com/1broseidon/tagtile/internal/daemon"
	"github.com/1broseidon/tagtile/internal/hotkeys"
	"github.com/1broseidon/tagtile/internal/ipc"
	"github.com/1broseidon/tagtile/internal/logind"
	"github.com/1broseidon/tagtile/internal/procstat"
	"github.com/1broseidon/tagtile/internal/wm"
	"github.com/1broseidon/tagtile/internal/x11"
)

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: tagtile daemon [--path PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Start the tagtile daemon in the foreground. The status feed is")
		fmt.Fprintln(os.Stderr, "written to stdout when daemon.status_stdout is set.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	path := fs.String("path", "", "Config file path (default: ~/.config/tagtile/config.yaml)")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg := res.Config
	settings, err := cfg.Settings()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	level := new(slog.LevelVar)
	level.Set(cfg.LogLevel())
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", "files", len(res.Files), "tags", cfg.Tags)

	// Connect to the display server
	conn, err := x11.NewConnection()
	if err != nil {
		log.Fatalf("Failed to connect to display: %v", err)
	}
	defer conn.Close()

	var status io.Writer = os.Stdout
	if !cfg.Daemon.StatusStdout {
		status = io.Discard
	}
	rt := x11.NewRuntime(conn, logger.With("component", "x11"))
	server := wm.New(rt, settings, wm.Options{
		Logger:  logger.With("component", "wm"),
		Status:  status,
		Stopped: procstat.Stopped,
	})

	loop := daemon.NewLoop(0, logger)
	source := x11.NewSource(conn, rt, server, loop, logger.With("component", "x11"))

	var handler *hotkeys.Handler

	// Reloads re-read the same files and rebind keys before the new
	// settings reach the core.
	load := func() (wm.Settings, error) {
		res, err := loadConfig(*path)
		if err != nil {
			return wm.Settings{}, err
		}
		settings, err := res.Config.Settings()
		if err != nil {
			return wm.Settings{}, err
		}
		level.Set(res.Config.LogLevel())
		if err := bindInput(handler, res.Config); err != nil {
			logger.Warn("some bindings failed", "error", err)
		}
		return settings, nil
	}
	controller := daemon.NewController(loop, server, load, logger.With("component", "controller"))
	handler = hotkeys.NewHandler(conn.XUtil, controller, source, logger.With("component", "hotkeys"))
	if err := bindInput(handler, cfg); err != nil {
		logger.Warn("some bindings failed", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start IPC server
	ipcServer, err := ipc.NewServer("", controller)
	if err != nil {
		log.Fatalf("Failed to create IPC server: %v", err)
	}
	if err := ipcServer.Start(); err != nil {
		log.Fatalf("Failed to start IPC server: %v", err)
	}
	defer ipcServer.Stop()

	// The X11 window list is the source of truth for managed clients.
	syncLogger := logger.With("component", "sync")
	stateSynchronizer := daemon.NewStateSynchronizer(source, syncLogger)
	reconciler := daemon.NewReconciler(daemon.ReconcilerConfig{
		Interval: cfg.ReconcileInterval(),
		Logger:   syncLogger,
	}, loop, stateSynchronizer, source.ListWindows)
	source.OnClientListChange(func() {
		go reconciler.ReconcileNow(ctx)
	})
	if err := source.Start(); err != nil {
		log.Fatalf("Failed to watch the display: %v", err)
	}
	go reconciler.ReconcileNow(ctx)
	if cfg.ReconcileInterval() > 0 {
		go reconciler.Run(ctx)
	}

	if cfg.Daemon.LogindLock {
		listener := logind.NewListener(controller, func(err error) bool {
			return errors.Is(err, daemon.ErrAlreadyLocked) || errors.Is(err, daemon.ErrNotLocked)
		}, logger.With("component", "logind"))
		if err := listener.Start(ctx); err != nil {
			logger.Warn("logind lock integration disabled", "error", err)
		} else {
			defer listener.Stop()
		}
	}

	// Config files are watched in addition to SIGHUP.
	watcher, err := config.NewWatcher(res.Files, logger.With("component", "config"), func() {
		if err := controller.Reload(ctx); err != nil {
			logger.Warn("config reload failed", "error", err)
		}
	})
	if err != nil {
		logger.Warn("config watcher disabled", "error", err)
	} else if err := watcher.Start(); err != nil {
		logger.Warn("config watcher disabled", "error", err)
	} else {
		defer watcher.Stop()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		for {
			select {
			case sig := <-sigCh:
				if sig == syscall.SIGHUP {
					logger.Info("received SIGHUP, reloading config")
					if err := controller.Reload(ctx); err != nil {
						logger.Warn("config reload failed", "error", err)
					}
					continue
				}
				logger.Info("shutting down tagtile daemon")
				cancel()
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		conn.EventLoop()
		logger.Info("display event loop exited")
		cancel()
	}()

	logger.Info("tagtile daemon started", "socket", ipcServer.SocketPath())
	loop.Run(ctx)
	conn.Quit()
	return 0
}

func bindInput(h *hotkeys.Handler, cfg *config.Config) error {
	keys, err := cfg.KeyBindings()
	if err != nil {
		return err
	}
	buttons, err := cfg.MouseBindings()
	if err != nil {
		return err
	}
	return h.Bind(keys, buttons)
}
