package main

import (
	"fmt"
	"math"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func ms(n int) time.Time { return t0.Add(time.Duration(n) * time.Millisecond) }

// newTestEditor returns an 800x600 editor whose screen and scene
// coordinates coincide, with predictable ids.
func newTestEditor(t *testing.T) *Editor {
	t.Helper()
	n := 0
	return NewEditor(EditorOptions{
		Width:  800,
		Height: 600,
		Logger: zaptest.NewLogger(t),
		NewID: func(prefix string) string {
			n++
			return fmt.Sprintf("%s_%d", prefix, n)
		},
		Now: t0,
	})
}

func circleStroke(cx, cy, r float64, n int) []Point {
	pts := make([]Point, 0, n+1)
	for k := 0; k <= n; k++ {
		a := 2 * math.Pi * float64(k) / float64(n)
		pts = append(pts, Point{cx + r*math.Cos(a), cy + r*math.Sin(a)})
	}
	return pts
}

func rectShape(id string, x, y, w, h float64) *Shape {
	return &Shape{ID: id, Type: ShapeRectangle, Rect: Rect{x, y, w, h}, Style: StrokeStyle{Width: 3, Color: "#e2e8f0"}}
}

func seqID(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s_%d", prefix, n)
	}
}

// drawStroke plays a single-pointer stroke through pts, 16ms apart,
// starting at the given millisecond offset. It returns the time of release.
func drawStroke(e *Editor, start int, pts []Point) int {
	at := start
	e.PointerDown(PointerEvent{ID: 1, Pos: pts[0], Time: ms(at)})
	for _, p := range pts[1:] {
		at += 16
		e.PointerMove(PointerEvent{ID: 1, Pos: p, Time: ms(at)})
	}
	e.PointerUp(PointerEvent{ID: 1, Pos: pts[len(pts)-1], Time: ms(at)})
	return at
}

func tap(e *Editor, at int, p Point) {
	e.PointerDown(PointerEvent{ID: 1, Pos: p, Time: ms(at)})
	e.PointerUp(PointerEvent{ID: 1, Pos: p, Time: ms(at + 50)})
}

func line(a, b Point, n int) []Point {
	pts := make([]Point, 0, n+1)
	for k := 0; k <= n; k++ {
		f := float64(k) / float64(n)
		pts = append(pts, Point{a.X + (b.X-a.X)*f, a.Y + (b.Y-a.Y)*f})
	}
	return pts
}
