// Command handmade runs the gesture drawing board: it reads frames from a
// camera or video file, tracks the fingertip and draws on a virtual board
// served over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayusman/handmade/internal/app"
	"github.com/ayusman/handmade/internal/board"
	"github.com/ayusman/handmade/internal/capture"
	"github.com/ayusman/handmade/internal/config"
	"github.com/ayusman/handmade/internal/detector"
	"github.com/ayusman/handmade/internal/hook"
	"github.com/ayusman/handmade/internal/logging"
	"github.com/ayusman/handmade/internal/preprocess"
	"github.com/ayusman/handmade/internal/recorder"
	"github.com/ayusman/handmade/internal/server"
	"github.com/ayusman/handmade/internal/store"
	"github.com/ayusman/handmade/internal/tray"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "handmade: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Default()

	fs := flag.NewFlagSet("handmade", flag.ExitOnError)
	flags := config.RegisterFlags(fs, cfg)
	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}

	// Flags first so -store.path picks the database the settings come from.
	if err := flags.Apply(&cfg); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	st, err := store.New(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	// Stored settings, then flags again so the command line wins.
	stored, err := st.Settings().All()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if err := config.ApplySettings(&cfg, stored); err != nil {
		return fmt.Errorf("stored settings: %w", err)
	}
	if err := flags.Apply(&cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var logger zerolog.Logger
	if cfg.Log.Console {
		logger = logging.NewConsole(cfg.Log.Level)
	} else {
		logger = logging.New(os.Stderr, cfg.Log.Level)
	}
	logger.Info().Str("store", cfg.Store.Path).Int("overrides", len(stored)).Msg("HandMade starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pre, err := preprocess.NewSkinSegmenter(cfg.Preprocess, logging.Component(logger, "preprocess"))
	if err != nil {
		return fmt.Errorf("preprocessor: %w", err)
	}
	defer pre.Close()

	det, err := detector.NewContourDetector(cfg.Detector)
	if err != nil {
		return fmt.Errorf("detector: %w", err)
	}
	defer det.Close()

	b := board.New(cfg.Board, board.NewMatCanvas(cfg.Board.Width, cfg.Board.Height))
	defer b.Close()

	rec, err := recorder.New(cfg.Recorder, logging.Component(logger, "recorder"))
	if err != nil {
		return err
	}

	hooks := hook.NewManager(cfg.Hooks.Dir, logging.Component(logger, "hooks"))
	if err := hooks.Discover(); err != nil {
		logger.Warn().Err(err).Str("dir", cfg.Hooks.Dir).Msg("hook discovery failed")
	}
	dispatcher := hook.NewDispatcher(hooks, hook.NewExecutor(cfg.Hooks.Timeout), cfg.Hooks.QueueSize, logging.Component(logger, "hooks"))

	srv := server.New(server.Config{
		StaticDir: cfg.Server.StaticDir,
		Store:     st,
		Board:     b,
		Hooks:     hooks,
		Logger:    logging.Component(logger, "server"),
	})

	loop, err := app.New(app.Config{
		Source:       capture.New(cfg.Capture),
		Preprocessor: pre,
		Detector:     det,
		Board:        b,
		Recorder:     rec,
		Store:        st,
		Hooks:        dispatcher,
		Publisher:    srv,
		Preview:      cfg.Capture.Preview,

		MaxReadFailures: cfg.Capture.MaxReadFailures,

		Logger: logging.Component(logger, "app"),
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg      sync.WaitGroup
		errOnce sync.Once
		runErr  error
	)
	fail := func(err error) {
		if err == nil {
			return
		}
		errOnce.Do(func() { runErr = err })
		cancel()
	}

	wg.Add(3)
	go func() {
		defer wg.Done()
		dispatcher.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		logger.Info().Str("addr", cfg.Server.Addr).Msg("serving API")
		fail(srv.ListenAndServe(ctx, cfg.Server.Addr))
	}()
	go func() {
		defer wg.Done()
		fail(loop.Run(ctx))
		// A finished video keeps the server up until interrupted; a closed
		// preview or a camera failure stops everything.
		if cfg.Capture.VideoFile == "" || cfg.Capture.Preview {
			cancel()
		}
	}()

	if cfg.Tray.Enabled {
		runTray(ctx, cancel, loop, viewerURL(cfg.Server.Addr), logger)
	} else {
		<-ctx.Done()
	}

	wg.Wait()
	logger.Info().Msg("HandMade stopped")

	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

// runTray shows the tray menu on the main goroutine until ctx ends or Quit
// is chosen.
func runTray(ctx context.Context, cancel context.CancelFunc, loop *app.App, url string, logger zerolog.Logger) {
	t := tray.New()
	t.OnToggle(func(enabled bool) {
		loop.Board().SetEnabled(enabled)
		logger.Info().Bool("enabled", enabled).Msg("drawing toggled")
	})
	t.OnClear(loop.Board().Clear)
	t.OnRelearn(loop.Relearn)
	t.OnViewer(func() {
		if err := tray.OpenURL(url); err != nil {
			logger.Warn().Err(err).Str("url", url).Msg("failed to open viewer")
		}
	})
	t.OnQuit(cancel)

	go func() {
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				t.Quit()
				return
			case <-ticker.C:
				stats := loop.Stats()
				if stats.Frames > 0 {
					t.SetLastEvent(stats.LastEvent.String(), stats.LastTips)
				}
			}
		}
	}()

	t.Run()
}

// viewerURL returns the local URL of the API served on addr.
func viewerURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}
