package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResizeShape(t *testing.T) {
	initial := Rect{0, 0, 100, 50}

	tests := []struct {
		name    string
		handle  HandleName
		pointer Point
		want    Rect
	}{
		{"corner keeps aspect", HandleTopLeft, Point{-100, -20}, Rect{-40, -20, 140, 70}},
		{"corner clamps to minimum", HandleTopLeft, Point{95, 48}, Rect{40, 20, 60, 30}},
		{"right edge only changes width", HandleRightCenter, Point{180, 999}, Rect{0, 0, 180, 50}},
		{"right edge past the anchor flips", HandleRightCenter, Point{-70, 0}, Rect{-70, 0, 70, 50}},
		{"top edge only changes height", HandleTopCenter, Point{0, -30}, Rect{0, -30, 100, 80}},
		{"edge clamps to minimum", HandleBottomCenter, Point{50, 10}, Rect{0, 0, 100, 30}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := rectShape("s1", initial.X, initial.Y, initial.W, initial.H)
			out := ResizeShape(s, initial, AnchorFor(initial, tt.handle), tt.handle, tt.pointer)

			assert.Same(t, s, out)
			assert.Equal(t, tt.want, out.Rect)
		})
	}
}

func TestResizeCircleRebuildsWithSameID(t *testing.T) {
	initial := Rect{0, 0, 100, 100}
	s := &Shape{ID: "c1", Type: ShapeCircle, Rect: initial, Style: StrokeStyle{Width: 2, Color: "#334155"}}

	out := ResizeShape(s, initial, AnchorFor(initial, HandleBottomRight), HandleBottomRight, Point{160, 160})

	assert.NotSame(t, s, out)
	assert.Equal(t, "c1", out.ID)
	assert.Equal(t, ShapeCircle, out.Type)
	assert.Equal(t, s.Style, out.Style)
	assert.Equal(t, Rect{0, 0, 160, 160}, out.Rect)
	assert.Equal(t, initial, s.Rect)
}

func TestResizeZeroSizedInitialUsesSquareAspect(t *testing.T) {
	initial := Rect{10, 10, 0, 0}
	s := rectShape("s1", 10, 10, 0, 0)

	out := ResizeShape(s, initial, Point{10, 10}, HandleBottomRight, Point{60, 90})

	assert.Equal(t, Rect{10, 10, 50, 50}, out.Rect)
}

func TestResizeGestureSyncsDependents(t *testing.T) {
	e := newTestEditor(t)
	c := e.Canvas()
	c.Add(rectShape("s1", 100, 100, 200, 100))
	c.Add(rectShape("s2", 500, 100, 100, 100))
	conn, _ := c.Connect("s1", "s2", StyleBezier, seqID("connector"))

	tap(e, 0, Point{200, 150})
	require.Equal(t, []string{"s1"}, e.Selected())
	c.Add(&Text{ID: "label", Position: Point{200, 150}, Content: "A", AttachedTo: "s1"})
	before := e.History().Len()

	e.PointerDown(PointerEvent{ID: 1, Pos: Point{300, 200}, Time: ms(1000)})
	require.Equal(t, StateResizing, e.State())
	e.PointerMove(PointerEvent{ID: 1, Pos: Point{400, 250}, Time: ms(1016)})

	assert.Equal(t, Rect{100, 100, 300, 150}, c.Shape("s1").Rect)
	assert.Equal(t, Point{400, 175}, conn.From)
	assert.Equal(t, Point{250, 175}, c.Text("label").Position)
	require.NotNil(t, e.Overlay())
	assert.Equal(t, Rect{100, 100, 300, 150}, e.Overlay().Box)

	e.PointerUp(PointerEvent{ID: 1, Pos: Point{400, 250}, Time: ms(1032)})
	assert.Equal(t, StateIdle, e.State())
	assert.True(t, e.SaveDue())
	assert.Equal(t, before, e.History().Len())

	e.Advance(ms(1032 + 299))
	assert.Equal(t, before, e.History().Len())
	e.Advance(ms(1032 + 300))
	assert.Equal(t, before+1, e.History().Len())
	assert.False(t, e.SaveDue())
}

func TestResizeWithoutMovementDoesNotSave(t *testing.T) {
	e := newTestEditor(t)
	e.Canvas().Add(rectShape("s1", 100, 100, 200, 100))
	tap(e, 0, Point{200, 150})
	before := e.History().Len()

	e.PointerDown(PointerEvent{ID: 1, Pos: Point{300, 200}, Time: ms(1000)})
	require.Equal(t, StateResizing, e.State())
	e.PointerUp(PointerEvent{ID: 1, Pos: Point{300, 200}, Time: ms(1100)})
	e.Advance(ms(2000))

	assert.False(t, e.SaveDue())
	assert.Equal(t, before, e.History().Len())
}
