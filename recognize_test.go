package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testStyle = StrokeStyle{Width: 3, Color: "#e2e8f0"}

func TestRecognizeCircle(t *testing.T) {
	stroke := SimplifyStroke(circleStroke(100, 100, 40, 64), simplifyTolerance)

	shape, ok := Recognize(stroke, testStyle)
	require.True(t, ok)
	assert.Equal(t, ShapeCircle, shape.Type)
	assert.InDelta(t, 40, shape.Radius(), 0.5)
	assert.InDelta(t, 100, shape.Center().X, 0.5)
	assert.InDelta(t, 100, shape.Center().Y, 0.5)
	assert.Empty(t, shape.ID)
}

func TestRecognizeIsDeterministic(t *testing.T) {
	stroke := SimplifyStroke(circleStroke(250, 80, 55, 48), simplifyTolerance)

	a, okA := Recognize(stroke, testStyle)
	b, okB := Recognize(stroke, testStyle)
	require.True(t, okA)
	require.True(t, okB)
	assert.Equal(t, a, b)
}

func TestRecognizeTriangle(t *testing.T) {
	h := 50 * math.Sqrt(3)
	stroke := []Point{{0, 100}, {50, 100 - h}, {100, 100}, {0, 100}}

	shape, ok := Recognize(stroke, testStyle)
	require.True(t, ok)
	assert.Equal(t, ShapeTriangle, shape.Type)
	assert.InDelta(t, 100, shape.Rect.W, 1e-9)
	assert.InDelta(t, h, shape.Rect.H, 1e-9)

	outline := shape.Outline()
	require.Len(t, outline, 3)
	assert.InDelta(t, shape.Center().X, outline[0].X, 1e-9)
	assert.InDelta(t, shape.Rect.Top(), outline[0].Y, 1e-9)
}

func TestRecognizeRectangle(t *testing.T) {
	stroke := []Point{{0, 0}, {120, 0}, {120, 60}, {0, 60}, {0, 0}}

	shape, ok := Recognize(stroke, testStyle)
	require.True(t, ok)
	assert.Equal(t, ShapeRectangle, shape.Type)
	assert.Equal(t, Rect{0, 0, 120, 60}, shape.Rect)
}

func TestRecognizeAppliesMinimumSizes(t *testing.T) {
	// 40x25 rectangle grows to the 60x40 floor around the same centre
	stroke := []Point{{0, 0}, {40, 0}, {40, 25}, {0, 25}, {0, 0}}

	shape, ok := Recognize(stroke, testStyle)
	require.True(t, ok)
	assert.Equal(t, ShapeRectangle, shape.Type)
	assert.InDelta(t, minRectWidth, shape.Rect.W, 1e-9)
	assert.InDelta(t, minRectHeight, shape.Rect.H, 1e-9)
	assert.InDelta(t, 20, shape.Center().X, 1e-9)
	assert.InDelta(t, 12.5, shape.Center().Y, 1e-9)
}

func TestRecognizeRejects(t *testing.T) {
	tests := []struct {
		name   string
		stroke []Point
	}{
		{"too small", circleStroke(0, 0, 7, 32)},
		{"flat line", line(Point{0, 0}, Point{200, 0}, 20)},
		{"thin zigzag", []Point{{0, 0}, {100, 5}, {0, 10}, {100, 15}, {0, 20}}},
		{"two points", []Point{{0, 0}, {50, 50}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := Recognize(tt.stroke, testStyle)
			assert.False(t, ok)
		})
	}
}

func TestMeasureStrokeClosesPath(t *testing.T) {
	open := []Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	m := MeasureStroke(open)

	assert.InDelta(t, 100, m.Area, 1e-9)
	assert.InDelta(t, 40, m.Perimeter, 1e-9)
	assert.InDelta(t, 1, m.Solidity, 1e-9)
	assert.InDelta(t, math.Pi/4, m.Compactness, 1e-9)
}

func TestSimplifyStrokeKeepsEndpoints(t *testing.T) {
	raw := line(Point{0, 0}, Point{100, 0}, 50)
	simplified := SimplifyStroke(raw, simplifyTolerance)

	require.Len(t, simplified, 2)
	assert.Equal(t, raw[0], simplified[0])
	assert.Equal(t, raw[len(raw)-1], simplified[1])
}

func TestIsDegenerateStroke(t *testing.T) {
	assert.True(t, isDegenerateStroke(nil))
	assert.True(t, isDegenerateStroke([]Point{{5, 5}}))
	assert.True(t, isDegenerateStroke([]Point{{5, 5}, {6, 5.5}}))
	assert.False(t, isDegenerateStroke([]Point{{5, 5}, {9, 5}}))
}
