package capture

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockCamera replays a fixed frame sequence. Reads can be made to fail at
// chosen positions to exercise error handling in the frame loop.
type MockCamera struct {
	mu       sync.Mutex
	frames   []*gocv.Mat
	loop     bool
	open     bool
	next     int
	reads    int
	failures map[int]error
}

// NewMockCamera creates a MockCamera over frames. The frames stay owned by
// the caller; ReadFrame hands out clones.
func NewMockCamera(frames []*gocv.Mat, loop bool) *MockCamera {
	return &MockCamera{
		frames:   frames,
		loop:     loop,
		failures: make(map[int]error),
	}
}

// FailRead makes the n-th call to ReadFrame (counting from zero) return err
// without consuming a frame.
func (c *MockCamera) FailRead(n int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures[n] = err
}

// Open rewinds playback.
func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = true
	c.next = 0
	return nil
}

func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
	return nil
}

func (c *MockCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return nil, ErrCameraNotOpen
	}

	n := c.reads
	c.reads++
	if err, ok := c.failures[n]; ok {
		return nil, err
	}

	if c.next >= len(c.frames) {
		if !c.loop || len(c.frames) == 0 {
			return nil, ErrEndOfStream
		}
		c.next = 0
	}

	frame := c.frames[c.next].Clone()
	c.next++
	return &frame, nil
}

func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

func (c *MockCamera) Name() string { return "mock" }

// Reads returns how many times ReadFrame was called while open.
func (c *MockCamera) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}
