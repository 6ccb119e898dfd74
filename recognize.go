package main

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/simplify"
)

// StrokeMetrics are the closed-path measurements classification runs on.
type StrokeMetrics struct {
	Bounds      Rect
	Area        float64
	Perimeter   float64
	Compactness float64
	AspectRatio float64
	Solidity    float64
}

func toLineString(points []Point) orb.LineString {
	ls := make(orb.LineString, len(points))
	for i, p := range points {
		ls[i] = orb.Point{p.X, p.Y}
	}
	return ls
}

func fromLineString(ls orb.LineString) []Point {
	out := make([]Point, len(ls))
	for i, p := range ls {
		out[i] = Point{p[0], p[1]}
	}
	return out
}

// SimplifyStroke reduces a raw stroke with Douglas-Peucker.
func SimplifyStroke(points []Point, tolerance float64) []Point {
	if len(points) < 3 {
		return append([]Point(nil), points...)
	}
	ls := simplify.DouglasPeucker(tolerance).LineString(toLineString(points))
	return fromLineString(ls)
}

// MeasureStroke closes the path and computes its area, perimeter and the
// ratios derived from them.
func MeasureStroke(points []Point) StrokeMetrics {
	m := StrokeMetrics{Bounds: boundsOf(points)}
	if len(points) < 3 {
		return m
	}
	ring := orb.Ring(toLineString(points))
	if !ring.Closed() {
		ring = append(ring, ring[0])
	}
	m.Area = math.Abs(planar.Area(ring))
	m.Perimeter = planar.Length(ring)
	if m.Perimeter > 0 {
		m.Compactness = 4 * math.Pi * m.Area / (m.Perimeter * m.Perimeter)
	}
	if m.Bounds.H > 0 {
		m.AspectRatio = m.Bounds.W / m.Bounds.H
	}
	if m.Bounds.W > 0 && m.Bounds.H > 0 {
		m.Solidity = m.Area / (m.Bounds.W * m.Bounds.H)
	}
	return m
}

// Classify picks the shape kind for a set of metrics. The second result is
// false when the stroke should stay a freehand drawing.
func Classify(m StrokeMetrics) (ShapeKind, bool) {
	if m.Bounds.W < minStrokeExtent || m.Bounds.H < minStrokeExtent {
		return "", false
	}
	switch {
	case m.Compactness > 0.7 && m.AspectRatio > 0.6 && m.AspectRatio < 1.6:
		return ShapeCircle, true
	case m.Solidity > 0.35 && m.Solidity < 0.65 && m.Compactness > 0.4 && m.Compactness < 0.7:
		return ShapeTriangle, true
	case m.Solidity > 0.6 || m.Compactness > 0.45:
		return ShapeRectangle, true
	}
	return "", false
}

// Recognize turns a stroke into a canonical shape centred on the stroke's
// bounds. It has no side effects; the caller assigns the id.
func Recognize(points []Point, style StrokeStyle) (*Shape, bool) {
	m := MeasureStroke(points)
	kind, ok := Classify(m)
	if !ok {
		return nil, false
	}
	b := m.Bounds
	c := b.Center()
	shape := &Shape{Type: kind, Style: style}
	switch kind {
	case ShapeCircle:
		r := math.Max(math.Max(b.W, b.H)/2, minCircleRadius)
		shape.Rect = Rect{c.X - r, c.Y - r, 2 * r, 2 * r}
	case ShapeTriangle:
		size := math.Max(math.Max(b.W, b.H), minTriangleSize)
		h := size * math.Sqrt(3) / 2
		shape.Rect = Rect{c.X - size/2, c.Y - h/2, size, h}
	case ShapeRectangle:
		w := math.Max(b.W, minRectWidth)
		h := math.Max(b.H, minRectHeight)
		shape.Rect = Rect{c.X - w/2, c.Y - h/2, w, h}
	}
	return shape, true
}

// isDegenerateStroke reports strokes too small to keep even as a drawing.
func isDegenerateStroke(points []Point) bool {
	if len(points) < 2 {
		return true
	}
	b := boundsOf(points)
	return math.Max(b.W, b.H) < minDrawingExtent
}
