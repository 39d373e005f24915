package geometry

import "image"

// Circle is a circle with an integer pixel center, used for the palm
// (maximum inscribed) circle.
type Circle struct {
	Center image.Point `json:"center"`
	Radius float64     `json:"radius"`
}

// NoCircle returns the sentinel circle reported when no palm was found.
func NoCircle() Circle {
	return Circle{Radius: -1}
}

// Found reports whether the circle holds a real measurement rather than the
// NoCircle sentinel.
func (c Circle) Found() bool {
	return c.Radius >= 0
}

// Within reports whether p lies strictly closer to the center than
// scale times the radius.
func (c Circle) Within(p image.Point, scale float64) bool {
	return Distance(p, c.Center) < scale*c.Radius
}

// Mirrored returns the circle with its center mirrored inside a frame of the
// given width.
func (c Circle) Mirrored(width int) Circle {
	return Circle{Center: MirrorX(c.Center, width), Radius: c.Radius}
}

// EnclosingCircle is a circle with a sub-pixel center, as produced by a
// minimum enclosing circle fit.
type EnclosingCircle struct {
	X      float32 `json:"x"`
	Y      float32 `json:"y"`
	Radius float32 `json:"radius"`
}

// Center returns the circle center rounded down to a pixel.
func (c EnclosingCircle) Center() image.Point {
	return image.Point{X: int(c.X), Y: int(c.Y)}
}
