package board

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
	"golang.org/x/image/colornames"
)

// Canvas is the raster the board draws on.
type Canvas interface {
	Line(from, to image.Point, thickness int)
	Erase(center image.Point, radius int)
	Clear()

	// Encode returns the raster in the format named by ext (".jpg", ".png").
	Encode(ext string) ([]byte, error)
	Close() error
}

// MatCanvas is a Canvas backed by a single-channel GoCV Mat: white ink on
// black.
type MatCanvas struct {
	mat gocv.Mat
}

// NewMatCanvas creates a black canvas of the given size.
func NewMatCanvas(width, height int) *MatCanvas {
	return &MatCanvas{mat: gocv.NewMatWithSize(height, width, gocv.MatTypeCV8U)}
}

// Line draws a white segment.
func (c *MatCanvas) Line(from, to image.Point, thickness int) {
	gocv.Line(&c.mat, from, to, colornames.White, thickness)
}

// Erase paints a filled black disc.
func (c *MatCanvas) Erase(center image.Point, radius int) {
	gocv.Circle(&c.mat, center, radius, colornames.Black, -1)
}

// Clear paints the whole canvas black.
func (c *MatCanvas) Clear() {
	c.mat.SetTo(gocv.NewScalar(0, 0, 0, 0))
}

// Encode implements Canvas.
func (c *MatCanvas) Encode(ext string) ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.FileExt(ext), c.mat)
	if err != nil {
		return nil, fmt.Errorf("encode board %s: %w", ext, err)
	}
	defer buf.Close()

	data := buf.GetBytes()
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Mat exposes the backing raster. It must not be retained past the call
// that received it.
func (c *MatCanvas) Mat() gocv.Mat {
	return c.mat
}

// Close releases the raster.
func (c *MatCanvas) Close() error {
	return c.mat.Close()
}
