package main

import "math"

// ResizeShape derives new geometry for shape from the handle being dragged to
// pointer. initial is the shape's bounds when the drag started and anchor is
// the opposite point, fixed for the whole gesture.
//
// Corner handles, and every handle of a circle, keep the initial aspect
// ratio. Edge handles resize one axis. No axis drops below 30 units.
// Circles come back as a new value carrying the same id and style; other
// kinds are updated in place and returned.
func ResizeShape(shape *Shape, initial Rect, anchor Point, handle HandleName, pointer Point) *Shape {
	isCircle := shape.Type == ShapeCircle
	var w, h, x, y float64

	if isCornerHandle(handle) || isCircle {
		newW := math.Abs(pointer.X - anchor.X)
		newH := math.Abs(pointer.Y - anchor.Y)
		aspect := 1.0
		if initial.W > 0 && initial.H > 0 {
			aspect = initial.W / initial.H
		}
		if newW/newH > aspect {
			h = math.Max(newH, minResizeExtent)
			w = h * aspect
		} else {
			w = math.Max(newW, minResizeExtent)
			h = w / aspect
		}
		x = fixedStart(anchor.X, pointer.X, w)
		y = fixedStart(anchor.Y, pointer.Y, h)
	} else if handle == HandleTopCenter || handle == HandleBottomCenter {
		w = initial.W
		h = math.Max(math.Abs(pointer.Y-anchor.Y), minResizeExtent)
		x = initial.X
		y = fixedStart(anchor.Y, pointer.Y, h)
	} else {
		w = math.Max(math.Abs(pointer.X-anchor.X), minResizeExtent)
		h = initial.H
		x = fixedStart(anchor.X, pointer.X, w)
		y = initial.Y
	}

	if isCircle {
		r := math.Max(w, h) / 2
		c := Point{x + w/2, y + h/2}
		return &Shape{
			ID:    shape.ID,
			Type:  ShapeCircle,
			Rect:  Rect{c.X - r, c.Y - r, 2 * r, 2 * r},
			Style: shape.Style,
		}
	}
	shape.Rect = Rect{x, y, w, h}
	return shape
}

// fixedStart places a span of the given size so it grows away from anchor
// toward the pointer.
func fixedStart(anchor, pointer, size float64) float64 {
	if anchor < pointer {
		return anchor
	}
	return anchor - size
}

type resizeSession struct {
	shapeID string
	handle  HandleName
	initial Rect
	anchor  Point
	changed bool
}

func (e *Editor) beginResize(s *Shape, h HandleName) {
	b := s.Bounds()
	e.resize = resizeSession{
		shapeID: s.ID,
		handle:  h,
		initial: b,
		anchor:  AnchorFor(b, h),
	}
}

// applyResize runs one resize frame and re-syncs everything that depends on
// the shape's geometry.
func (e *Editor) applyResize(pointer Point) {
	s := e.canvas.Shape(e.resize.shapeID)
	if s == nil {
		return
	}
	before := s.Rect
	out := ResizeShape(s, e.resize.initial, e.resize.anchor, e.resize.handle, pointer)
	if out != s {
		e.canvas.Replace(out)
	}
	if out.Rect != before {
		e.resize.changed = true
	}
	e.syncDependents(out)
	e.refreshOverlay()
}

// syncDependents re-routes a shape's connectors and re-centres its text.
func (e *Editor) syncDependents(s *Shape) {
	e.canvas.UpdateConnectorsFor(s.ID)
	for _, t := range e.canvas.AttachedTexts(s.ID) {
		t.Position = s.Center()
	}
}
