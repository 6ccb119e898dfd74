package main

import (
	"math"
	"strings"
)

// maxCellSpan bounds a single rasterized segment. Longer segments only
// happen far off screen at high zoom and are skipped.
const maxCellSpan = 20000

type grid struct {
	cells [][]rune
	cols  int
	rows  int
	view  View
}

func newGrid(cols, rows int, v View) *grid {
	g := &grid{cols: cols, rows: rows, view: v}
	g.cells = make([][]rune, rows)
	for y := range g.cells {
		g.cells[y] = []rune(strings.Repeat(" ", cols))
	}
	return g
}

func (g *grid) cell(p Point) (int, int) {
	s := g.view.ToScreen(p)
	return int(math.Floor(s.X / cellWidth)), int(math.Floor(s.Y / cellHeight))
}

func (g *grid) set(x, y int, ch rune) {
	if x < 0 || y < 0 || x >= g.cols || y >= g.rows {
		return
	}
	g.cells[y][x] = ch
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// slopeRune picks a line character for a segment's direction. Cells are
// twice as tall as they are wide.
func slopeRune(dx, dy int) rune {
	ax, ay := abs(dx), abs(dy)
	switch {
	case ay == 0 || ax > 3*ay:
		return '-'
	case ax == 0 || ay > ax:
		return '|'
	case (dx > 0) == (dy > 0):
		return '\\'
	default:
		return '/'
	}
}

// walk visits the cells of the segment a-b in order.
func (g *grid) walk(a, b Point, fn func(x, y int)) {
	x0, y0 := g.cell(a)
	x1, y1 := g.cell(b)
	dx, dy := abs(x1-x0), -abs(y1-y0)
	if dx > maxCellSpan || -dy > maxCellSpan {
		return
	}
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		fn(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// line draws a-b with ch, or with a slope character when ch is zero.
func (g *grid) line(a, b Point, ch rune) {
	if ch == 0 {
		x0, y0 := g.cell(a)
		x1, y1 := g.cell(b)
		ch = slopeRune(x1-x0, y1-y0)
	}
	g.walk(a, b, func(x, y int) { g.set(x, y, ch) })
}

func (g *grid) polyline(pts []Point, closed bool, ch rune) {
	if len(pts) == 1 {
		x, y := g.cell(pts[0])
		g.set(x, y, ch)
		return
	}
	for i := 1; i < len(pts); i++ {
		g.line(pts[i-1], pts[i], ch)
	}
	if closed && len(pts) > 2 {
		g.line(pts[len(pts)-1], pts[0], ch)
	}
}

func (g *grid) rect(r Rect, ch rune) {
	g.polyline([]Point{
		{r.Left(), r.Top()}, {r.Right(), r.Top()},
		{r.Right(), r.Bottom()}, {r.Left(), r.Bottom()},
	}, true, ch)
}

// text centres each line horizontally on center; the block is centred
// vertically.
func (g *grid) text(center Point, lines []string) {
	top := center.Y - float64(len(lines))*lineHeight/2
	for i, line := range lines {
		x, y := g.cell(Point{center.X, top + float64(i)*lineHeight + lineHeight/2})
		runes := []rune(line)
		x -= len(runes) / 2
		for j, r := range runes {
			g.set(x+j, y, r)
		}
	}
}

func (g *grid) lines() []string {
	out := make([]string, len(g.cells))
	for y, row := range g.cells {
		out[y] = string(row)
	}
	return out
}

func (g *grid) shape(s *Shape) {
	if s.Type == ShapeCircle {
		g.polyline(s.Outline(), true, 'o')
		return
	}
	g.polyline(s.Outline(), true, 0)
	if s.Type == ShapeRectangle {
		for _, p := range s.Outline() {
			x, y := g.cell(p)
			g.set(x, y, '+')
		}
	}
}

// connector draws the path, dashed while one-way. The dash phase follows
// DashOffset, so the dashes crawl toward the target as it animates.
func (g *grid) connector(c *Connector) {
	path := c.Path()
	if len(c.Dash) == 0 {
		g.polyline(path, false, 0)
	} else {
		phase := int(math.Floor(-c.DashOffset / dashFlowPeriod * 3))
		step := 0
		lastX, lastY := math.MinInt, math.MinInt
		for i := 1; i < len(path); i++ {
			x0, y0 := g.cell(path[i-1])
			x1, y1 := g.cell(path[i])
			ch := slopeRune(x1-x0, y1-y0)
			g.walk(path[i-1], path[i], func(x, y int) {
				if x == lastX && y == lastY {
					return
				}
				lastX, lastY = x, y
				if ((step-phase)%3+3)%3 < 2 {
					g.set(x, y, ch)
				}
				step++
			})
		}
	}
	for _, arrow := range [][]Point{c.EndArrow, c.StartArrow} {
		if len(arrow) != 3 {
			continue
		}
		tip := arrow[1]
		dir := tip.Sub(arrow[0].Add(arrow[2]).Mul(0.5))
		x, y := g.cell(tip)
		g.set(x, y, arrowRune(dir))
	}
}

func arrowRune(dir Point) rune {
	if math.Abs(dir.X) >= math.Abs(dir.Y) {
		if dir.X >= 0 {
			return '>'
		}
		return '<'
	}
	if dir.Y >= 0 {
		return 'v'
	}
	return '^'
}

// RenderScene rasterizes the editor's scene into cols x rows cells using
// the current zoom and centre. With ui set it also draws the selection
// overlay, marquee, in-flight stroke and open text edit.
func RenderScene(e *Editor, cols, rows int, ui bool) []string {
	v := *e.view
	v.Size = Point{float64(cols) * cellWidth, float64(rows) * cellHeight}
	g := newGrid(cols, rows, v)

	hidden := ""
	if ui {
		hidden = e.EditingTextID()
	}
	for _, it := range e.canvas.items {
		switch item := it.(type) {
		case *Shape:
			g.shape(item)
		case *Drawing:
			g.polyline(item.Points, false, '.')
		case *Connector:
			g.connector(item)
		case *Text:
			if item.ID != hidden {
				g.text(item.Position, item.Lines())
			}
		}
	}
	if !ui {
		return g.lines()
	}

	if o := e.overlay; o != nil && e.state != StateDragging {
		g.rect(o.Box, ':')
		for _, h := range o.Handles {
			x, y := g.cell(h.Center)
			g.set(x, y, '#')
		}
	}
	if m := e.marquee; m != nil {
		g.rect(m.Rect(), '.')
	}
	if len(e.stroke) > 0 {
		g.polyline(e.stroke, false, '*')
	}
	if t := e.text; t != nil {
		anchor := t.Anchor
		if s := e.canvas.Shape(t.ShapeID); s != nil {
			anchor = s.Center()
		}
		g.text(anchor, strings.Split(t.Content()+"_", "\n"))
	}
	return g.lines()
}
