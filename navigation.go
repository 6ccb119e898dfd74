package main

import "math"

// View maps between screen units and scene units. Center is the scene point
// shown in the middle of the viewport.
type View struct {
	Zoom   float64
	Center Point
	Size   Point
}

func NewView(width, height float64) *View {
	return &View{
		Zoom:   1,
		Center: Point{width / 2, height / 2},
		Size:   Point{width, height},
	}
}

func (v *View) ToScene(screen Point) Point {
	return v.Center.Add(screen.Sub(v.Size.Mul(0.5)).Mul(1 / v.Zoom))
}

func (v *View) ToScreen(scene Point) Point {
	return scene.Sub(v.Center).Mul(v.Zoom).Add(v.Size.Mul(0.5))
}

// Resize keeps the centre fixed while the viewport changes size.
func (v *View) Resize(width, height float64) {
	v.Size = Point{width, height}
}

func (v *View) SetZoom(z float64) {
	v.Zoom = clamp(z, minZoom, maxZoom)
}

// ZoomAt scales by factor while keeping the scene point under screen fixed.
func (v *View) ZoomAt(screen Point, factor float64) {
	before := v.ToScene(screen)
	v.SetZoom(v.Zoom * factor)
	after := v.ToScene(screen)
	v.Center = v.Center.Add(before.Sub(after))
}

// PanBy moves the content along with a screen-space drag.
func (v *View) PanBy(screenDelta Point) {
	v.Center = v.Center.Sub(screenDelta.Mul(1 / v.Zoom))
}

// Wheel applies one wheel notch toward the pointer.
func (v *View) Wheel(screen Point, deltaY float64) {
	if deltaY < 0 {
		v.ZoomAt(screen, wheelZoomIn)
	} else if deltaY > 0 {
		v.ZoomAt(screen, wheelZoomOut)
	}
}

type FitOptions struct {
	PaddingX      float64
	PaddingTop    float64
	PaddingBottom float64
}

func DefaultFitOptions() FitOptions {
	return FitOptions{PaddingX: fitPadding, PaddingTop: fitPadding, PaddingBottom: fitBottomMargin}
}

// Fit zooms and centres so content fills the padded viewport, never
// magnifying beyond maxFitZoom.
func (v *View) Fit(content Rect, opts FitOptions) bool {
	if content.W <= 0 && content.H <= 0 {
		return false
	}
	availW := v.Size.X - 2*opts.PaddingX
	availH := v.Size.Y - opts.PaddingTop - opts.PaddingBottom
	scale := maxFitZoom
	if content.W > 0 {
		scale = math.Min(scale, availW/content.W)
	}
	if content.H > 0 {
		scale = math.Min(scale, availH/content.H)
	}
	v.SetZoom(scale)
	offsetY := (opts.PaddingBottom - opts.PaddingTop) / 2 / v.Zoom
	v.Center = content.Center().Add(Point{0, offsetY})
	return true
}

// FitToView clears the selection and frames the whole scene.
func (e *Editor) FitToView(opts FitOptions) bool {
	e.clearSelection()
	e.cancelGesture()
	b, ok := e.canvas.ContentBounds()
	if !ok {
		return false
	}
	return e.view.Fit(b, opts)
}

// PanView moves the view by a number of screen units, used by keyboard
// navigation.
func (e *Editor) PanView(dx, dy float64) {
	e.view.PanBy(Point{dx, dy})
}
