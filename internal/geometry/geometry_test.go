package geometry

import (
	"errors"
	"image"
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		p, q image.Point
		want float64
	}{
		{name: "3-4-5 triangle", p: image.Pt(2, -1), q: image.Pt(-2, 2), want: 5.0},
		{name: "horizontal", p: image.Pt(2, 5), q: image.Pt(-2, 5), want: 4.0},
		{name: "9-12-15 triangle", p: image.Pt(9, -2), q: image.Pt(0, 10), want: 15.0},
		{name: "same point", p: image.Pt(7, 7), q: image.Pt(7, 7), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Distance(tt.p, tt.q); got != tt.want {
				t.Errorf("Distance(%v, %v) = %f, want %f", tt.p, tt.q, got, tt.want)
			}
		})
	}
}

func TestDistance_Symmetric(t *testing.T) {
	points := []image.Point{
		image.Pt(0, 0), image.Pt(3, 4), image.Pt(-5, 12), image.Pt(640, 480), image.Pt(-1, -1),
	}

	for _, p := range points {
		if d := Distance(p, p); d != 0 {
			t.Errorf("Distance(%v, %v) = %f, want 0", p, p, d)
		}
		for _, q := range points {
			if Distance(p, q) != Distance(q, p) {
				t.Errorf("Distance not symmetric for %v and %v", p, q)
			}
		}
	}
}

func TestAngle(t *testing.T) {
	tests := []struct {
		name    string
		a, b, c image.Point
		want    float64
	}{
		{name: "36.87 degrees", a: image.Pt(2, 3), b: image.Pt(3, 4), c: image.Pt(4, 2), want: 36.8699},
		{name: "8.13 degrees", a: image.Pt(2, 4), b: image.Pt(3, 5), c: image.Pt(4, 8), want: 8.1303},
		{name: "7.13 degrees", a: image.Pt(3, 3), b: image.Pt(2, 4), c: image.Pt(8, 2), want: 7.1276},
		{name: "right angle", a: image.Pt(1, 0), b: image.Pt(0, 1), c: image.Pt(0, 0), want: 90},
		{name: "collinear same side", a: image.Pt(1, 0), b: image.Pt(2, 0), c: image.Pt(0, 0), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Angle(tt.a, tt.b, tt.c)
			if err != nil {
				t.Fatalf("Angle() error = %v", err)
			}
			if math.Abs(got-tt.want) > 0.1 {
				t.Errorf("Angle() = %f, want %f (±0.1)", got, tt.want)
			}
		})
	}
}

func TestAngle_DegenerateVertex(t *testing.T) {
	tests := []struct {
		name    string
		a, b, c image.Point
	}{
		{name: "a coincides with c", a: image.Pt(4, 2), b: image.Pt(3, 4), c: image.Pt(4, 2)},
		{name: "b coincides with c", a: image.Pt(2, 3), b: image.Pt(4, 2), c: image.Pt(4, 2)},
		{name: "all coincide", a: image.Pt(1, 1), b: image.Pt(1, 1), c: image.Pt(1, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Angle(tt.a, tt.b, tt.c)
			if !errors.Is(err, ErrInvalidGeometry) {
				t.Errorf("Angle() error = %v, want ErrInvalidGeometry", err)
			}
			if math.IsNaN(got) {
				t.Error("Angle() returned NaN")
			}
		})
	}
}

func TestMidpoint(t *testing.T) {
	tests := []struct {
		p, q image.Point
		want image.Point
	}{
		{p: image.Pt(0, 0), q: image.Pt(10, 20), want: image.Pt(5, 10)},
		{p: image.Pt(100, 100), q: image.Pt(100, 100), want: image.Pt(100, 100)},
		{p: image.Pt(-4, 6), q: image.Pt(4, -6), want: image.Pt(0, 0)},
	}

	for _, tt := range tests {
		if got := Midpoint(tt.p, tt.q); got != tt.want {
			t.Errorf("Midpoint(%v, %v) = %v, want %v", tt.p, tt.q, got, tt.want)
		}
	}
}

func TestMirrorX(t *testing.T) {
	if got := MirrorX(image.Pt(100, 50), 640); got != image.Pt(540, 50) {
		t.Errorf("MirrorX() = %v, want (540,50)", got)
	}

	p := image.Pt(123, 45)
	if got := MirrorX(MirrorX(p, 640), 640); got != p {
		t.Errorf("mirroring twice = %v, want %v", got, p)
	}
}

func TestCircle(t *testing.T) {
	none := NoCircle()
	if none.Found() {
		t.Error("NoCircle().Found() = true, want false")
	}
	if none.Radius >= 0 {
		t.Errorf("NoCircle().Radius = %f, want negative", none.Radius)
	}

	c := Circle{Center: image.Pt(100, 100), Radius: 10}
	if !c.Found() {
		t.Error("Found() = false for a measured circle")
	}
	if !c.Within(image.Pt(134, 100), 3.5) {
		t.Error("point at 34px should be within 3.5 radii")
	}
	if c.Within(image.Pt(135, 100), 3.5) {
		t.Error("point at exactly 35px should not be within 3.5 radii")
	}

	m := c.Mirrored(640)
	if m.Center != image.Pt(540, 100) || m.Radius != 10 {
		t.Errorf("Mirrored() = %+v", m)
	}
}
