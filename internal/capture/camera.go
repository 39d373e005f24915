// Package capture provides video frame sources using GoCV (OpenCV).
package capture

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Default capture settings
const (
	DefaultFPS    = 15
	DefaultWidth  = 640
	DefaultHeight = 480
)

var (
	// ErrCameraNotOpen is returned when reading from a source that is not open.
	ErrCameraNotOpen = errors.New("camera is not open")

	// ErrEndOfStream is returned when a finite source has no more frames.
	ErrEndOfStream = errors.New("end of stream")
)

// Source defines the interface for frame sources.
type Source interface {
	Open() error
	Close() error

	// ReadFrame returns the next BGR frame. The caller is responsible for
	// closing the returned Mat.
	ReadFrame() (*gocv.Mat, error)
	IsOpen() bool
	Name() string
}

// Config selects and tunes the frame source.
type Config struct {
	// DeviceID is the camera index used when VideoFile is empty.
	DeviceID int `mapstructure:"device_id"`

	// VideoFile replays a recorded video instead of a live camera.
	VideoFile string `mapstructure:"video_file"`

	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
	FPS    int `mapstructure:"fps"`

	// Preview shows the board and annotated frame in desktop windows.
	Preview bool `mapstructure:"preview"`

	// MaxReadFailures is how many failed reads in a row stop the frame
	// loop. Zero keeps the frame loop's default.
	MaxReadFailures int `mapstructure:"max_read_failures"`
}

// DefaultConfig returns the default capture configuration.
func DefaultConfig() Config {
	return Config{
		DeviceID: 0,
		Width:    DefaultWidth,
		Height:   DefaultHeight,
		FPS:      DefaultFPS,
	}
}

// New returns the source described by cfg.
func New(cfg Config) Source {
	if cfg.VideoFile != "" {
		return NewVideoFile(cfg.VideoFile)
	}

	cam := NewCamera(cfg.DeviceID)
	cam.SetSize(cfg.Width, cfg.Height)
	cam.SetFPS(cfg.FPS)
	return cam
}

// Camera manages video capture from a camera device.
type Camera struct {
	deviceID int
	capture  *gocv.VideoCapture
	mu       sync.Mutex
	running  bool
	fps      int
	width    int
	height   int
}

// NewCamera creates a new Camera with the given device ID at 640x480.
func NewCamera(deviceID int) *Camera {
	return &Camera{
		deviceID: deviceID,
		fps:      DefaultFPS,
		width:    DefaultWidth,
		height:   DefaultHeight,
	}
}

// Open opens the camera for capturing frames.
func (c *Camera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	capture, err := gocv.OpenVideoCapture(c.deviceID)
	if err != nil {
		return fmt.Errorf("open camera %d: %w", c.deviceID, err)
	}

	capture.Set(gocv.VideoCaptureFrameWidth, float64(c.width))
	capture.Set(gocv.VideoCaptureFrameHeight, float64(c.height))
	capture.Set(gocv.VideoCaptureFPS, float64(c.fps))

	c.capture = capture
	c.running = true

	return nil
}

// Close closes the camera and releases resources.
func (c *Camera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		c.running = false
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	c.running = false

	return err
}

// ReadFrame reads a single frame from the camera.
// The caller is responsible for closing the returned Mat.
func (c *Camera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok {
		mat.Close()
		return nil, errors.New("failed to read frame from camera")
	}

	if mat.Empty() {
		mat.Close()
		return nil, errors.New("captured frame is empty")
	}

	return &mat, nil
}

// SetFPS sets the frames per second for capture.
// Values less than or equal to 0 are ignored.
func (c *Camera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.fps = fps

	if c.capture != nil {
		c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

// SetSize sets the requested capture resolution. It takes effect on the
// next Open. Non-positive dimensions are ignored.
func (c *Camera) SetSize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.width = width
	c.height = height
}

// FPS returns the current frames per second setting.
func (c *Camera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.fps
}

// Size returns the requested capture resolution.
func (c *Camera) Size() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.width, c.height
}

// IsOpen returns true if the camera is currently open and running.
func (c *Camera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.running
}

// Name identifies the camera in logs and the session record.
func (c *Camera) Name() string {
	return fmt.Sprintf("camera:%d", c.deviceID)
}
