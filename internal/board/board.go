// Package board implements the gesture-driven drawing board: one raised
// finger draws, an open hand erases.
package board

import (
	"fmt"
	"image"
	"math"
	"sync"

	"github.com/ayusman/handmade/internal/geometry"
)

// Event describes what a frame did to the board.
type Event int

const (
	// EventNone means no tips were seen and nothing changed.
	EventNone Event = iota
	// EventMove means the tracked tip moved without drawing.
	EventMove
	// EventDraw means a segment was drawn.
	EventDraw
	// EventErase means an open hand erased a disc.
	EventErase
	// EventLost means tracking was dropped because no tips were seen.
	EventLost
)

var eventNames = map[Event]string{
	EventNone:  "none",
	EventMove:  "move",
	EventDraw:  "draw",
	EventErase: "erase",
	EventLost:  "lost",
}

// String returns the lowercase event name.
func (e Event) String() string {
	if name, ok := eventNames[e]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// Config holds the board parameters.
type Config struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`

	// EraseTipCount is the tip count at which the hand is treated as open.
	EraseTipCount int `mapstructure:"erase_tip_count"`

	// EraseScale is the erase disc radius in palm radii.
	EraseScale float64 `mapstructure:"erase_scale"`

	// MaxStrokeGap is the distance in pixels under which consecutive tips
	// are joined by a segment.
	MaxStrokeGap float64 `mapstructure:"max_stroke_gap"`

	StrokeThickness int `mapstructure:"stroke_thickness"`

	// ResetOnLost drops tracking on frames without tips so the next tip
	// starts a new stroke.
	ResetOnLost bool `mapstructure:"reset_on_lost"`
}

// DefaultConfig returns the reference board parameters.
func DefaultConfig() Config {
	return Config{
		Width:           640,
		Height:          480,
		EraseTipCount:   10,
		EraseScale:      3.5,
		MaxStrokeGap:    200,
		StrokeThickness: 3,
	}
}

// Segment is a drawn line in board coordinates.
type Segment struct {
	From image.Point `json:"from"`
	To   image.Point `json:"to"`
}

// Update is the outcome of one frame.
type Update struct {
	Event Event

	// Tip is the mirrored tip for move and draw events.
	Tip image.Point

	// Segment is set for draw events.
	Segment Segment

	// Erased is the mirrored erase disc for erase events.
	Erased geometry.Circle
}

// Board is the drawing state machine. It is Idle until a tip is seen and
// Tracking afterwards. Board is safe for concurrent use: the frame loop
// updates it while the server and tray clear or snapshot it.
type Board struct {
	cfg    Config
	canvas Canvas

	mu       sync.Mutex
	prev     image.Point
	tracking bool
	enabled  bool
}

// New creates a board drawing onto canvas.
func New(cfg Config, canvas Canvas) *Board {
	return &Board{cfg: cfg, canvas: canvas, enabled: true}
}

// Update applies one frame of fingertips to the board. The tips are taken
// to come from a frame of the board's own size.
func (b *Board) Update(tips []image.Point, palm geometry.Circle) Update {
	return b.UpdateInFrame(tips, palm, image.Pt(b.cfg.Width, b.cfg.Height))
}

// UpdateInFrame applies one frame of fingertips detected in a frame of the
// given size. Points are mirrored inside the frame and then scaled onto the
// board, so frames larger or smaller than the board still land on it.
func (b *Board) UpdateInFrame(tips []image.Point, palm geometry.Circle, frame image.Point) Update {
	b.mu.Lock()
	defer b.mu.Unlock()

	if frame.X <= 0 || frame.Y <= 0 {
		frame = image.Pt(b.cfg.Width, b.cfg.Height)
	}

	switch {
	case len(tips) >= b.cfg.EraseTipCount:
		disc := geometry.Circle{
			Center: b.toBoard(palm.Center, frame),
			Radius: b.cfg.EraseScale * palm.Radius * float64(b.cfg.Width) / float64(frame.X),
		}
		if b.enabled {
			b.canvas.Erase(disc.Center, int(disc.Radius))
		}
		return Update{Event: EventErase, Erased: disc}

	case len(tips) > 0:
		cur := b.toBoard(tips[0], frame)
		up := Update{Event: EventMove, Tip: cur}

		if b.tracking && geometry.Distance(b.prev, cur) < b.cfg.MaxStrokeGap {
			up.Event = EventDraw
			up.Segment = Segment{From: b.prev, To: cur}
			if b.enabled {
				b.canvas.Line(b.prev, cur, b.cfg.StrokeThickness)
			}
		}

		b.prev = cur
		b.tracking = true
		return up

	default:
		if b.cfg.ResetOnLost && b.tracking {
			b.tracking = false
			return Update{Event: EventLost}
		}
		return Update{Event: EventNone}
	}
}

// toBoard mirrors p inside a frame of the given size and scales it to board
// coordinates.
func (b *Board) toBoard(p image.Point, frame image.Point) image.Point {
	m := geometry.MirrorX(p, frame.X)
	if frame.X == b.cfg.Width && frame.Y == b.cfg.Height {
		return m
	}
	return image.Pt(
		int(math.Round(float64(m.X)*float64(b.cfg.Width)/float64(frame.X))),
		int(math.Round(float64(m.Y)*float64(b.cfg.Height)/float64(frame.Y))),
	)
}

// Tracking reports whether a previous tip is held and where it is.
func (b *Board) Tracking() (image.Point, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.prev, b.tracking
}

// SetEnabled toggles canvas mutation. A disabled board still tracks tips
// and reports events but leaves the canvas untouched.
func (b *Board) SetEnabled(enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.enabled = enabled
}

// Enabled reports whether drawing is enabled.
func (b *Board) Enabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.enabled
}

// Clear wipes the canvas and returns to Idle.
func (b *Board) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.canvas.Clear()
	b.tracking = false
}

// EncodeJPEG returns the canvas as JPEG bytes.
func (b *Board) EncodeJPEG() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.canvas.Encode(".jpg")
}

// EncodePNG returns the canvas as PNG bytes.
func (b *Board) EncodePNG() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.canvas.Encode(".png")
}

// WithCanvas runs fn while holding the board lock, for callers that need
// direct access to the raster such as the recorder and preview window.
func (b *Board) WithCanvas(fn func(Canvas)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(b.canvas)
}

// Close releases the canvas.
func (b *Board) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.canvas.Close()
}
