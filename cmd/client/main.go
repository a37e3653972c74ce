package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/akolanti/docqa-client/internal/backend"
	"github.com/akolanti/docqa-client/internal/config"
	"github.com/akolanti/docqa-client/internal/console"
	"github.com/akolanti/docqa-client/internal/controller"
	"github.com/akolanti/docqa-client/internal/customHttpClient"
	"github.com/akolanti/docqa-client/internal/domain/sessionModel"
	"github.com/akolanti/docqa-client/internal/handlers"
	"github.com/akolanti/docqa-client/internal/middleware"
	"github.com/akolanti/docqa-client/internal/observability"
	"github.com/akolanti/docqa-client/internal/render"
	"github.com/akolanti/docqa-client/internal/server"
	"github.com/akolanti/docqa-client/internal/watcher"
	"github.com/akolanti/docqa-client/pkg/logger_i"
)

var (
	envFile     string
	backendURL  string
	controlAddr string
	watchDir    string
)

func main() {
	//config
	flag.StringVar(&envFile, "env-file", ".env", "optional env file")
	flag.StringVar(&backendURL, "backend-url", "", "backend base url, overrides BACKEND_URL")
	flag.StringVar(&controlAddr, "control-addr", "", "control api listen address, overrides CONTROL_ADDR")
	flag.StringVar(&watchDir, "watch-dir", "", "folder to upload new documents from, overrides WATCH_DIR")
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logCloser := logger_i.Init(cfg)
	defer logCloser.Close()
	logger := logger_i.NewLogger("main")
	logger.Info("Starting client", "backend", cfg.BackendURL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := backend.NewClient(cfg.BackendURL, customHttpClient.GetClient())

	// the terminal reads state back from the controller it observes
	var session *controller.Controller
	terminal := render.NewTerminal(os.Stdout, render.SnapshotFunc(func() sessionModel.Snapshot {
		return session.Snapshot()
	}))
	session = controller.InitController(controller.Config{
		Backend: client,
		Observer: observability.NewMultiObserver(
			terminal,
			observability.NewSlogObserver(logger_i.NewLogger("Events").Slog()),
		),
	})

	var background sync.WaitGroup

	var controlServer *server.Server
	if cfg.ControlAddr != "" {
		middleware.InitRateLimiter(cfg.RateLimit, cfg.RateBurst)
		controlServer = server.CreateServer(cfg.ControlAddr, handlers.NewControlHandler(session))
		background.Add(1)
		go func() {
			defer background.Done()
			if err := controlServer.ListenAndServe(); err != nil {
				stop()
			}
		}()
	}

	if cfg.WatchDir != "" {
		folderWatcher, err := watcher.NewFolderWatcher(cfg.WatchDir, session, config.WatchDebounce)
		if err != nil {
			logger.Error("Could not watch folder", "dir", cfg.WatchDir, "error", err)
		} else {
			background.Add(1)
			go func() {
				defer background.Done()
				if err := folderWatcher.Run(ctx); err != nil {
					logger.Error("Folder watcher stopped", "error", err)
				}
			}()
		}
	}

	if err := console.New(session, terminal, os.Stdin, os.Stdout).Run(ctx); err != nil {
		logger.Error("Console stopped", "error", err)
	}

	stop()
	if controlServer != nil {
		controlServer.Shutdown()
	}
	background.Wait()
	logger.Info("Client stopped")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	if backendURL != "" {
		cfg.BackendURL = strings.TrimRight(backendURL, "/")
	}
	if controlAddr != "" {
		cfg.ControlAddr = controlAddr
	}
	if watchDir != "" {
		cfg.WatchDir = watchDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
