package main

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point    { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point    { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Mul(f float64) Point  { return Point{p.X * f, p.Y * f} }
func (p Point) Dist(q Point) float64 { return r2.Norm(r2.Sub(p.vec(), q.vec())) }
func (p Point) vec() r2.Vec          { return r2.Vec{X: p.X, Y: p.Y} }
func fromVec(v r2.Vec) Point         { return Point{v.X, v.Y} }
func (p Point) Length() float64      { return r2.Norm(p.vec()) }
func (p Point) Normalize() Point {
	if p.X == 0 && p.Y == 0 {
		return p
	}
	return fromVec(r2.Unit(p.vec()))
}

// Rotate turns p around the origin by deg degrees.
func (p Point) Rotate(deg float64) Point {
	return fromVec(r2.Rotate(p.vec(), deg*math.Pi/180, r2.Vec{}))
}

type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

func RectFromPoints(a, b Point) Rect {
	return Rect{
		X: math.Min(a.X, b.X),
		Y: math.Min(a.Y, b.Y),
		W: math.Abs(a.X - b.X),
		H: math.Abs(a.Y - b.Y),
	}
}

func (r Rect) Left() float64   { return r.X }
func (r Rect) Top() float64    { return r.Y }
func (r Rect) Right() float64  { return r.X + r.W }
func (r Rect) Bottom() float64 { return r.Y + r.H }
func (r Rect) Center() Point   { return Point{r.X + r.W/2, r.Y + r.H/2} }

func (r Rect) Translate(d Point) Rect {
	return Rect{r.X + d.X, r.Y + d.Y, r.W, r.H}
}

func (r Rect) Expand(n float64) Rect {
	return Rect{r.X - n, r.Y - n, r.W + 2*n, r.H + 2*n}
}

func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// Intersects reports strict overlap; rectangles that only share an edge do not intersect.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

func (r Rect) Union(o Rect) Rect {
	x := math.Min(r.X, o.X)
	y := math.Min(r.Y, o.Y)
	return Rect{x, y, math.Max(r.Right(), o.Right()) - x, math.Max(r.Bottom(), o.Bottom()) - y}
}

// Point returns the named handle position on r, or the center for HandleNone.
func (r Rect) Point(h HandleName) Point {
	switch h {
	case HandleTopLeft:
		return Point{r.X, r.Y}
	case HandleTopRight:
		return Point{r.Right(), r.Y}
	case HandleBottomLeft:
		return Point{r.X, r.Bottom()}
	case HandleBottomRight:
		return Point{r.Right(), r.Bottom()}
	case HandleTopCenter:
		return Point{r.X + r.W/2, r.Y}
	case HandleRightCenter:
		return Point{r.Right(), r.Y + r.H/2}
	case HandleBottomCenter:
		return Point{r.X + r.W/2, r.Bottom()}
	case HandleLeftCenter:
		return Point{r.X, r.Y + r.H/2}
	}
	return r.Center()
}

func boundsOf(points []Point) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{minX, minY, maxX - minX, maxY - minY}
}

func distanceToSegment(p, a, b Point) float64 {
	ab := b.Sub(a)
	l2 := ab.X*ab.X + ab.Y*ab.Y
	if l2 == 0 {
		return p.Dist(a)
	}
	t := ((p.X-a.X)*ab.X + (p.Y-a.Y)*ab.Y) / l2
	t = math.Max(0, math.Min(1, t))
	return p.Dist(a.Add(ab.Mul(t)))
}

func distanceToPolyline(p Point, pts []Point, closed bool) float64 {
	if len(pts) == 0 {
		return math.Inf(1)
	}
	if len(pts) == 1 {
		return p.Dist(pts[0])
	}
	best := math.Inf(1)
	for i := 0; i < len(pts)-1; i++ {
		best = math.Min(best, distanceToSegment(p, pts[i], pts[i+1]))
	}
	if closed {
		best = math.Min(best, distanceToSegment(p, pts[len(pts)-1], pts[0]))
	}
	return best
}

// pointInPolygon is the even-odd ray cast.
func pointInPolygon(p Point, poly []Point) bool {
	inside := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) && p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}

// cubicBezier samples the curve p0 -> p3 with control points c1, c2.
func cubicBezier(p0, c1, c2, p3 Point, segments int) []Point {
	out := make([]Point, 0, segments+1)
	for i := 0; i <= segments; i++ {
		t := float64(i) / float64(segments)
		mt := 1 - t
		a := mt * mt * mt
		b := 3 * mt * mt * t
		c := 3 * mt * t * t
		d := t * t * t
		out = append(out, Point{
			X: a*p0.X + b*c1.X + c*c2.X + d*p3.X,
			Y: a*p0.Y + b*c1.Y + c*c2.Y + d*p3.Y,
		})
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
