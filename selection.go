package main

// Selection is the ordered set of selected item ids. Items are referenced by
// id only, so a rebuilt shape keeps its selected state.
type Selection struct {
	ids []string
}

func (s *Selection) Has(id string) bool {
	for _, v := range s.ids {
		if v == id {
			return true
		}
	}
	return false
}

func (s *Selection) Add(id string) {
	if !s.Has(id) {
		s.ids = append(s.ids, id)
	}
}

func (s *Selection) Remove(id string) {
	for i, v := range s.ids {
		if v == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return
		}
	}
}

// Only replaces the selection with a single item.
func (s *Selection) Only(id string) {
	s.ids = append(s.ids[:0], id)
}

func (s *Selection) Clear()        { s.ids = s.ids[:0] }
func (s *Selection) Len() int      { return len(s.ids) }
func (s *Selection) IDs() []string { return append([]string(nil), s.ids...) }

// Prune drops ids that no longer resolve on the canvas.
func (s *Selection) Prune(c *Canvas) {
	kept := s.ids[:0]
	for _, id := range s.ids {
		if c.Get(id) != nil {
			kept = append(kept, id)
		}
	}
	s.ids = kept
}

type OverlayHandle struct {
	Name   HandleName
	Center Point
}

// SelectionOverlay is the dashed box and eight handles drawn around a single
// selected item. It is derived state and never enters a snapshot.
type SelectionOverlay struct {
	ItemID  string
	Box     Rect
	Handles []OverlayHandle
}

func NewSelectionOverlay(item Item) *SelectionOverlay {
	b := item.Bounds()
	o := &SelectionOverlay{ItemID: item.ItemID(), Box: b}
	for _, name := range handleOrder {
		o.Handles = append(o.Handles, OverlayHandle{Name: name, Center: b.Point(name)})
	}
	return o
}

// HandleAt returns the handle of b within reach of p. The reach is fixed in
// screen units, so it shrinks in scene units as zoom grows.
func HandleAt(b Rect, p Point, zoom float64) HandleName {
	if zoom <= 0 {
		zoom = 1
	}
	reach := handleHitRadius / zoom
	for _, name := range handleOrder {
		if p.Dist(b.Point(name)) < reach {
			return name
		}
	}
	return HandleNone
}

// AnchorFor is the point that stays fixed while the named handle is dragged.
func AnchorFor(b Rect, h HandleName) Point {
	switch h {
	case HandleTopLeft:
		return b.Point(HandleBottomRight)
	case HandleTopRight:
		return b.Point(HandleBottomLeft)
	case HandleBottomLeft:
		return b.Point(HandleTopRight)
	case HandleBottomRight:
		return b.Point(HandleTopLeft)
	case HandleTopCenter:
		return b.Point(HandleBottomCenter)
	case HandleBottomCenter:
		return b.Point(HandleTopCenter)
	case HandleLeftCenter:
		return b.Point(HandleRightCenter)
	case HandleRightCenter:
		return b.Point(HandleLeftCenter)
	}
	return b.Center()
}

func isCornerHandle(h HandleName) bool {
	switch h {
	case HandleTopLeft, HandleTopRight, HandleBottomLeft, HandleBottomRight:
		return true
	}
	return false
}

// Marquee is the rubber-band rectangle of an area selection.
type Marquee struct {
	Start   Point
	Current Point
	moved   bool
}

func (m *Marquee) Update(p Point) {
	m.Current = p
	m.moved = true
}

func (m *Marquee) Rect() Rect { return RectFromPoints(m.Start, m.Current) }

// ItemsInRect returns the shapes, connectors and drawings whose bounds
// intersect r. Text is never picked up by a marquee.
func (c *Canvas) ItemsInRect(r Rect) []Item {
	var out []Item
	for _, it := range c.items {
		if it.Kind() == KindText {
			continue
		}
		if r.Intersects(it.Bounds()) {
			out = append(out, it)
		}
	}
	return out
}

// refreshOverlay rebuilds the overlay from the current selection. It only
// exists while exactly one item is selected.
func (e *Editor) refreshOverlay() {
	e.selection.Prune(e.canvas)
	e.overlay = nil
	if e.selection.Len() != 1 {
		return
	}
	if item := e.canvas.Get(e.selection.ids[0]); item != nil {
		e.overlay = NewSelectionOverlay(item)
	}
}

func (e *Editor) clearSelection() {
	e.selection.Clear()
	e.overlay = nil
}

// selectTarget resolves the item under p for selection purposes: text
// attached to a shape stands in for the shape.
func (e *Editor) selectTarget(p Point) Item {
	item := e.canvas.HitTest(p)
	if t, ok := item.(*Text); ok && t.AttachedTo != "" {
		if s := e.canvas.Shape(t.AttachedTo); s != nil {
			return s
		}
	}
	return item
}

// pick applies click-selection rules: an already selected item keeps the
// group, anything else replaces it.
func (e *Editor) pick(item Item) {
	if !e.selection.Has(item.ItemID()) {
		e.selection.Only(item.ItemID())
	}
	e.refreshOverlay()
}

// resizeHandleAt finds a handle of a selected shape under p.
func (e *Editor) resizeHandleAt(p Point) (*Shape, HandleName) {
	for _, id := range e.selection.ids {
		s := e.canvas.Shape(id)
		if s == nil {
			continue
		}
		if h := HandleAt(s.Bounds(), p, e.view.Zoom); h != HandleNone {
			return s, h
		}
	}
	return nil, HandleNone
}

func (e *Editor) beginMarquee(p Point) {
	e.marquee = &Marquee{Start: p, Current: p}
}

// endMarquee adds everything the rectangle touches to the selection and
// always discards the rectangle.
func (e *Editor) endMarquee(p Point) []string {
	m := e.marquee
	e.marquee = nil
	if m == nil || !m.moved {
		return nil
	}
	m.Current = p
	var added []string
	for _, it := range e.canvas.ItemsInRect(m.Rect()) {
		if !e.selection.Has(it.ItemID()) {
			added = append(added, it.ItemID())
		}
		e.selection.Add(it.ItemID())
	}
	e.refreshOverlay()
	return added
}
