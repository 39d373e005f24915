package detector

import (
	"image"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/handmade/internal/geometry"
)

// MockDetector is a test implementation of the Detector interface.
// It replays a queue of results, then repeats the last configured one.
type MockDetector struct {
	mu     sync.Mutex
	queue  []Result
	result Result
	err    error
	calls  int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetResult sets the result returned once the queue is drained.
func (m *MockDetector) SetResult(res Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.result = res
}

// Enqueue appends results returned in order by successive Detect calls.
func (m *MockDetector) Enqueue(results ...Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, results...)
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect was invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the next queued result, the configured result, or error.
func (m *MockDetector) Detect(mask *gocv.Mat) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return Result{}, m.err
	}

	res := m.result
	if len(m.queue) > 0 {
		res = m.queue[0]
		m.queue = m.queue[1:]
	}
	if mask != nil && !mask.Empty() {
		res.FrameSize = image.Pt(mask.Cols(), mask.Rows())
	}
	return res, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// PointingResult returns a result with a single fingertip at tip and a palm
// of the given radius below it.
func PointingResult(tip image.Point, radius float64) Result {
	return Result{
		Tips: []image.Point{tip},
		Palm: geometry.Circle{Center: tip.Add(image.Pt(0, int(3*radius))), Radius: radius},
	}
}

// OpenHandResult returns a result with n fingertips spread around palm,
// as produced by an open hand when both endpoints of each finger pair.
func OpenHandResult(palm geometry.Circle, n int) Result {
	tips := make([]image.Point, 0, n)
	for i := 0; i < n; i++ {
		tips = append(tips, palm.Center.Add(image.Pt(i*4-2*n, -int(3*palm.Radius))))
	}
	return Result{Tips: tips, Palm: palm}
}
