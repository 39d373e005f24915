// Package app runs the HandMade frame loop: capture, preprocess, detect,
// update the board, then record and publish the outcome.
package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ayusman/handmade/internal/board"
	"github.com/ayusman/handmade/internal/capture"
	"github.com/ayusman/handmade/internal/detector"
	"github.com/ayusman/handmade/internal/geometry"
	"github.com/ayusman/handmade/internal/hook"
	"github.com/ayusman/handmade/internal/preprocess"
	"github.com/ayusman/handmade/internal/recorder"
	"github.com/ayusman/handmade/internal/store"
)

// Publisher receives the per-frame outputs for live viewers.
type Publisher interface {
	PublishFrame(jpeg []byte)
	PublishBoard(jpeg []byte)
	PublishTips(msg any)

	// Watching reports whether anyone is connected, so encoding can be
	// skipped otherwise.
	Watching() bool
}

// TipsMessage is published once per processed frame.
type TipsMessage struct {
	Session string          `json:"session"`
	Frame   int             `json:"frame"`
	Event   string          `json:"event"`
	Tips    []image.Point   `json:"tips"`
	Palm    geometry.Circle `json:"palm"`

	// Cursor is the mirrored tip in board coordinates for move and draw
	// events.
	Cursor *image.Point `json:"cursor,omitempty"`

	Timestamp int64 `json:"timestamp"`
}

// Config wires the frame loop. Source, Preprocessor, Detector and Board
// are required; the rest are optional.
type Config struct {
	Source       capture.Source
	Preprocessor preprocess.Preprocessor
	Detector     detector.Detector
	Board        *board.Board

	Recorder  *recorder.Recorder
	Store     *store.Store
	Hooks     *hook.Dispatcher
	Publisher Publisher

	// ReadRetryDelay is the pause after a failed read and MaxReadFailures
	// the number of consecutive failed reads that stops the loop. Zero
	// values select the defaults.
	ReadRetryDelay  time.Duration
	MaxReadFailures int

	// Preview shows the board and the annotated frame in desktop windows.
	// Pressing q stops the loop and b relearns the background.
	Preview bool

	Logger zerolog.Logger
}

// Read failure handling defaults.
const (
	DefaultReadRetryDelay  = 50 * time.Millisecond
	DefaultMaxReadFailures = 40
)

// ErrSourceFailed is returned by Run when the source keeps failing to
// deliver frames.
var ErrSourceFailed = errors.New("app: source keeps failing")

// App is the frame orchestrator.
type App struct {
	cfg    Config
	logger zerolog.Logger

	mu        sync.RWMutex
	running   bool
	session   string
	stored    bool
	frames    int
	skipped   int
	lastEvent board.Event
	lastTips  int
	prevEvent board.Event
	relearn   bool
}

// New validates cfg and creates an App.
func New(cfg Config) (*App, error) {
	switch {
	case cfg.Source == nil:
		return nil, errors.New("app: source is required")
	case cfg.Preprocessor == nil:
		return nil, errors.New("app: preprocessor is required")
	case cfg.Detector == nil:
		return nil, errors.New("app: detector is required")
	case cfg.Board == nil:
		return nil, errors.New("app: board is required")
	}

	if cfg.ReadRetryDelay <= 0 {
		cfg.ReadRetryDelay = DefaultReadRetryDelay
	}
	if cfg.MaxReadFailures <= 0 {
		cfg.MaxReadFailures = DefaultMaxReadFailures
	}

	return &App{cfg: cfg, logger: cfg.Logger}, nil
}

// Stats is a snapshot of the loop counters. Session and the counters
// describe the current run, or the last one once Run has returned.
type Stats struct {
	Session   string
	Frames    int
	Skipped   int
	LastEvent board.Event
	LastTips  int
	Running   bool
}

// Stats returns the current loop counters.
func (a *App) Stats() Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return Stats{
		Session:   a.session,
		Frames:    a.frames,
		Skipped:   a.skipped,
		LastEvent: a.lastEvent,
		LastTips:  a.lastTips,
		Running:   a.running,
	}
}

// Board returns the drawing board.
func (a *App) Board() *board.Board {
	return a.cfg.Board
}

// Relearn asks the preprocessor to rebuild its background model before the
// next frame. Preprocessors without a background ignore it.
func (a *App) Relearn() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.relearn = true
}

// Run processes frames until ctx is cancelled, the source ends, or q is
// pressed in the preview window. Per-frame failures are logged and the
// frame skipped. A failed read is retried after ReadRetryDelay, and
// MaxReadFailures failed reads in a row end the loop with ErrSourceFailed.
func (a *App) Run(ctx context.Context) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return errors.New("app: already running")
	}
	a.running = true
	a.session = ""
	a.stored = false
	a.frames = 0
	a.skipped = 0
	a.prevEvent = board.EventNone
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.running = false
		a.mu.Unlock()
	}()

	src := a.cfg.Source
	if !src.IsOpen() {
		if err := src.Open(); err != nil {
			return fmt.Errorf("open %s: %w", src.Name(), err)
		}
	}
	defer src.Close()

	var view *preview
	if a.cfg.Preview {
		view = newPreview(a.cfg.Board)
		defer view.Close()
	}

	defer a.endSession()

	a.logger.Info().Str("source", src.Name()).Msg("frame loop started")

	failures := 0
	for {
		select {
		case <-ctx.Done():
			a.logger.Info().Msg("frame loop stopped")
			return nil
		default:
		}

		a.applyRelearn()

		frame, err := src.ReadFrame()
		if errors.Is(err, capture.ErrEndOfStream) {
			a.logger.Info().Msg("end of stream")
			return nil
		}
		if errors.Is(err, capture.ErrCameraNotOpen) {
			return err
		}
		if err != nil {
			failures++
			a.countSkipped()
			if failures >= a.cfg.MaxReadFailures {
				return fmt.Errorf("%w: %d reads in a row: %w", ErrSourceFailed, failures, err)
			}
			a.logger.Warn().Err(err).Int("failures", failures).Msg("failed to read frame")

			select {
			case <-ctx.Done():
				a.logger.Info().Msg("frame loop stopped")
				return nil
			case <-time.After(a.cfg.ReadRetryDelay):
			}
			continue
		}
		failures = 0

		out := a.processFrame(*frame)
		frame.Close()

		if view != nil {
			switch view.Show(out) {
			case 'q':
				out.Close()
				a.logger.Info().Msg("quit from preview window")
				return nil
			case 'b':
				a.Relearn()
			}
		}
		out.Close()
	}
}

func (a *App) applyRelearn() {
	a.mu.Lock()
	pending := a.relearn
	a.relearn = false
	a.mu.Unlock()

	if !pending {
		return
	}
	if r, ok := a.cfg.Preprocessor.(interface{ Relearn() }); ok {
		r.Relearn()
		a.logger.Info().Msg("relearning background")
	}
}

func (a *App) countSkipped() {
	a.mu.Lock()
	a.skipped++
	a.mu.Unlock()
}

// ensureSession starts the session on the first processed frame, once the
// frame size is known. It reports whether frames of the session can be
// logged to the store.
func (a *App) ensureSession(size image.Point) (string, bool) {
	a.mu.RLock()
	id, stored := a.session, a.stored
	a.mu.RUnlock()
	if id != "" {
		return id, stored
	}

	id = uuid.New().String()
	if a.cfg.Store != nil {
		sess := &store.Session{
			ID:     id,
			Source: a.cfg.Source.Name(),
			Width:  size.X,
			Height: size.Y,
		}
		if err := a.cfg.Store.Sessions().Create(sess); err != nil {
			a.logger.Error().Err(err).Msg("failed to create session, frames will not be logged")
		} else {
			stored = true
		}
	}

	a.mu.Lock()
	a.session = id
	a.stored = stored
	a.mu.Unlock()

	a.logger.Info().Str("session", id).Bool("stored", stored).Msg("session started")
	return id, stored
}

func (a *App) endSession() {
	a.mu.RLock()
	id, stored := a.session, a.stored
	a.mu.RUnlock()

	if !stored {
		return
	}
	if err := a.cfg.Store.Sessions().End(id, time.Now()); err != nil {
		a.logger.Error().Err(err).Str("session", id).Msg("failed to end session")
		return
	}
	a.logger.Info().Str("session", id).Msg("session ended")
}
