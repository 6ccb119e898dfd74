package main

import (
	"math"
	"strings"
)

type StrokeStyle struct {
	Width float64 `json:"width"`
	Color string  `json:"color" validate:"omitempty,iscolor"`
}

// Item is one persisted scene element. The concrete types are *Shape,
// *Drawing, *Text and *Connector; callers switch on Kind.
type Item interface {
	ItemID() string
	Kind() ItemKind
	Bounds() Rect
	Translate(d Point)
}

type Shape struct {
	ID    string
	Type  ShapeKind
	Rect  Rect
	Style StrokeStyle
}

func (s *Shape) ItemID() string    { return s.ID }
func (s *Shape) Kind() ItemKind    { return KindShape }
func (s *Shape) Bounds() Rect      { return s.Rect }
func (s *Shape) Center() Point     { return s.Rect.Center() }
func (s *Shape) Translate(d Point) { s.Rect = s.Rect.Translate(d) }

func (s *Shape) Radius() float64 {
	return math.Max(s.Rect.W, s.Rect.H) / 2
}

// Outline returns the closed outline of the shape as a polygon.
func (s *Shape) Outline() []Point {
	r := s.Rect
	switch s.Type {
	case ShapeCircle:
		c, rad := r.Center(), s.Radius()
		pts := make([]Point, 0, 48)
		for i := 0; i < 48; i++ {
			a := 2 * math.Pi * float64(i) / 48
			pts = append(pts, Point{c.X + rad*math.Cos(a), c.Y + rad*math.Sin(a)})
		}
		return pts
	case ShapeTriangle:
		return []Point{
			{r.X + r.W/2, r.Y},
			{r.X, r.Bottom()},
			{r.Right(), r.Bottom()},
		}
	default:
		return []Point{
			{r.X, r.Y},
			{r.Right(), r.Y},
			{r.Right(), r.Bottom()},
			{r.X, r.Bottom()},
		}
	}
}

func (s *Shape) hit(p Point) bool {
	if s.Type == ShapeCircle {
		d := p.Dist(s.Center())
		return d <= s.Radius() || math.Abs(d-s.Radius()) <= strokeTolerance
	}
	outline := s.Outline()
	return pointInPolygon(p, outline) || distanceToPolyline(p, outline, true) <= strokeTolerance
}

type Drawing struct {
	ID     string
	Points []Point
	Style  StrokeStyle
}

func (d *Drawing) ItemID() string { return d.ID }
func (d *Drawing) Kind() ItemKind { return KindDrawing }
func (d *Drawing) Bounds() Rect   { return boundsOf(d.Points) }

func (d *Drawing) Translate(delta Point) {
	for i := range d.Points {
		d.Points[i] = d.Points[i].Add(delta)
	}
}

type Text struct {
	ID         string
	Position   Point // centre of the text block
	Content    string
	Color      string
	AttachedTo string
}

func (t *Text) ItemID() string    { return t.ID }
func (t *Text) Kind() ItemKind    { return KindText }
func (t *Text) Translate(d Point) { t.Position = t.Position.Add(d) }

func (t *Text) Lines() []string {
	return strings.Split(t.Content, "\n")
}

func (t *Text) Bounds() Rect {
	lines := t.Lines()
	longest := 0
	for _, line := range lines {
		if n := len([]rune(line)); n > longest {
			longest = n
		}
	}
	w := float64(longest) * charAdvance
	h := float64(len(lines)) * lineHeight
	return Rect{t.Position.X - w/2, t.Position.Y - h/2, w, h}
}

type Canvas struct {
	items []Item // z-order, bottom first
	byID  map[string]Item
}

func NewCanvas() *Canvas {
	return &Canvas{
		items: make([]Item, 0),
		byID:  make(map[string]Item),
	}
}

func (c *Canvas) Add(item Item) {
	if _, exists := c.byID[item.ItemID()]; exists {
		c.Replace(item)
		return
	}
	c.items = append(c.items, item)
	c.byID[item.ItemID()] = item
}

// Replace swaps the item with the same id in place, keeping its z-order.
func (c *Canvas) Replace(item Item) {
	for i, it := range c.items {
		if it.ItemID() == item.ItemID() {
			c.items[i] = item
			c.byID[item.ItemID()] = item
			return
		}
	}
	c.items = append(c.items, item)
	c.byID[item.ItemID()] = item
}

func (c *Canvas) Remove(id string) bool {
	if _, ok := c.byID[id]; !ok {
		return false
	}
	delete(c.byID, id)
	for i, it := range c.items {
		if it.ItemID() == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			break
		}
	}
	return true
}

func (c *Canvas) Clear() {
	c.items = c.items[:0]
	c.byID = make(map[string]Item)
}

func (c *Canvas) Get(id string) Item { return c.byID[id] }
func (c *Canvas) Len() int           { return len(c.items) }

func (c *Canvas) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Canvas) Shape(id string) *Shape {
	s, _ := c.byID[id].(*Shape)
	return s
}

func (c *Canvas) Text(id string) *Text {
	t, _ := c.byID[id].(*Text)
	return t
}

func (c *Canvas) Connector(id string) *Connector {
	conn, _ := c.byID[id].(*Connector)
	return conn
}

func (c *Canvas) Shapes() []*Shape {
	var out []*Shape
	for _, it := range c.items {
		if s, ok := it.(*Shape); ok {
			out = append(out, s)
		}
	}
	return out
}

func (c *Canvas) Drawings() []*Drawing {
	var out []*Drawing
	for _, it := range c.items {
		if d, ok := it.(*Drawing); ok {
			out = append(out, d)
		}
	}
	return out
}

func (c *Canvas) Texts() []*Text {
	var out []*Text
	for _, it := range c.items {
		if t, ok := it.(*Text); ok {
			out = append(out, t)
		}
	}
	return out
}

func (c *Canvas) Connectors() []*Connector {
	var out []*Connector
	for _, it := range c.items {
		if conn, ok := it.(*Connector); ok {
			out = append(out, conn)
		}
	}
	return out
}

func (c *Canvas) AttachedTexts(shapeID string) []*Text {
	var out []*Text
	for _, t := range c.Texts() {
		if t.AttachedTo == shapeID {
			out = append(out, t)
		}
	}
	return out
}

func (c *Canvas) ConnectorsFor(shapeID string) []*Connector {
	var out []*Connector
	for _, conn := range c.Connectors() {
		if conn.FromShapeID == shapeID || conn.ToShapeID == shapeID {
			out = append(out, conn)
		}
	}
	return out
}

// FindConnector returns the connector running from -> to, if any.
func (c *Canvas) FindConnector(from, to string) *Connector {
	for _, conn := range c.Connectors() {
		if conn.FromShapeID == from && conn.ToShapeID == to {
			return conn
		}
	}
	return nil
}

// DeleteShape removes a shape together with every connector and text that
// references it. It returns the ids removed.
func (c *Canvas) DeleteShape(id string) []string {
	if c.Shape(id) == nil {
		return nil
	}
	removed := []string{id}
	for _, conn := range c.ConnectorsFor(id) {
		removed = append(removed, conn.ID)
	}
	for _, t := range c.AttachedTexts(id) {
		removed = append(removed, t.ID)
	}
	for _, rid := range removed {
		c.Remove(rid)
	}
	return removed
}

// RemoveOrphanTexts drops text whose attached shape no longer exists.
func (c *Canvas) RemoveOrphanTexts() []string {
	var removed []string
	for _, t := range c.Texts() {
		if t.AttachedTo != "" && c.Shape(t.AttachedTo) == nil {
			c.Remove(t.ID)
			removed = append(removed, t.ID)
		}
	}
	return removed
}

// HitTest finds the item under p. Connectors win over text, text over
// shapes and drawings; within each class the topmost item wins.
func (c *Canvas) HitTest(p Point) Item {
	for i := len(c.items) - 1; i >= 0; i-- {
		if conn, ok := c.items[i].(*Connector); ok && conn.DistanceTo(p) <= connectorTolerance {
			return conn
		}
	}
	for i := len(c.items) - 1; i >= 0; i-- {
		if t, ok := c.items[i].(*Text); ok && t.Bounds().Expand(textHitPadding).Contains(p) {
			return t
		}
	}
	for i := len(c.items) - 1; i >= 0; i-- {
		switch it := c.items[i].(type) {
		case *Shape:
			if it.hit(p) {
				return it
			}
		case *Drawing:
			if distanceToPolyline(p, it.Points, false) <= strokeTolerance {
				return it
			}
		}
	}
	return nil
}

// ShapeAt is like HitTest but only considers shapes.
func (c *Canvas) ShapeAt(p Point) *Shape {
	for i := len(c.items) - 1; i >= 0; i-- {
		if s, ok := c.items[i].(*Shape); ok && s.hit(p) {
			return s
		}
	}
	return nil
}

// ContentBounds is the union of every item's bounds.
func (c *Canvas) ContentBounds() (Rect, bool) {
	if len(c.items) == 0 {
		return Rect{}, false
	}
	b := c.items[0].Bounds()
	for _, it := range c.items[1:] {
		b = b.Union(it.Bounds())
	}
	return b, true
}
