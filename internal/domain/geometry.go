package domain

import "math"

// Point is a position in canvas pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Rect is an axis-aligned rectangle with Min <= Max.
type Rect struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

// NewRect builds a normalized rectangle from two opposite corners.
func NewRect(x0, y0, x1, y1 float64) Rect {
	return Rect{
		Min: Point{X: math.Min(x0, x1), Y: math.Min(y0, y1)},
		Max: Point{X: math.Max(x0, x1), Y: math.Max(y0, y1)},
	}
}

// Dx returns the width.
func (r Rect) Dx() float64 { return r.Max.X - r.Min.X }

// Dy returns the height.
func (r Rect) Dy() float64 { return r.Max.Y - r.Min.Y }

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// PageTransform maps canvas pixels (origin top-left, y down) to PDF page
// points (origin bottom-left, y up).
type PageTransform struct {
	PageWidth   float64
	PageHeight  float64
	CanvasWidth float64
}

// Scale returns points per canvas pixel. A missing canvas width maps 1:1.
func (t PageTransform) Scale() float64 {
	if t.CanvasWidth <= 0 {
		return 1
	}
	return t.PageWidth / t.CanvasWidth
}

// X converts a canvas x coordinate to page space.
func (t PageTransform) X(cx float64) float64 {
	return cx * t.Scale()
}

// Y converts a canvas y coordinate to page space.
func (t PageTransform) Y(cy float64) float64 {
	return t.PageHeight - cy*t.Scale()
}

// Length converts a canvas distance to page points.
func (t PageTransform) Length(d float64) float64 {
	return d * t.Scale()
}
