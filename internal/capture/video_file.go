package capture

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// VideoFile replays frames from a recorded video. Reading past the last
// frame returns ErrEndOfStream.
type VideoFile struct {
	path    string
	capture *gocv.VideoCapture
	mu      sync.Mutex
	frames  int
}

// NewVideoFile creates a source reading from the video at path.
func NewVideoFile(path string) *VideoFile {
	return &VideoFile{path: path}
}

// Open opens the video file.
func (v *VideoFile) Open() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.capture != nil {
		return nil
	}

	capture, err := gocv.VideoCaptureFile(v.path)
	if err != nil {
		return fmt.Errorf("open video %s: %w", v.path, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return fmt.Errorf("open video %s: not readable", v.path)
	}

	v.capture = capture
	v.frames = 0
	return nil
}

// Close releases the video file.
func (v *VideoFile) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.capture == nil {
		return nil
	}

	err := v.capture.Close()
	v.capture = nil
	return err
}

// ReadFrame returns the next frame of the video.
func (v *VideoFile) ReadFrame() (*gocv.Mat, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := v.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, ErrEndOfStream
	}

	v.frames++
	return &mat, nil
}

// FramesRead returns the number of frames returned since Open.
func (v *VideoFile) FramesRead() int {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.frames
}

// IsOpen reports whether the video is open.
func (v *VideoFile) IsOpen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.capture != nil
}

// Name identifies the source in logs and the session record.
func (v *VideoFile) Name() string {
	return "file:" + v.path
}
