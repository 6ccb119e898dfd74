package main

import "math"

// Connector is a directed edge between two shapes. FromShapeID and
// ToShapeID are plain ids resolved through the Canvas; the geometry below
// them is derived and rebuilt by UpdateConnector.
type Connector struct {
	ID            string
	FromShapeID   string
	ToShapeID     string
	Style         ConnectorStyle
	Bidirectional bool

	From       Point
	To         Point
	FromHandle Point // relative to From
	ToHandle   Point // relative to To
	EndArrow   []Point
	StartArrow []Point
	Dash       []float64
	Width      float64
	Color      string
	ArrowColor string

	DashOffset float64 // animation only, never persisted
}

func (c *Connector) ItemID() string { return c.ID }
func (c *Connector) Kind() ItemKind { return KindConnector }

// Path samples the connector's line, excluding arrowheads.
func (c *Connector) Path() []Point {
	if c.Style == StyleStraight {
		return []Point{c.From, c.To}
	}
	return cubicBezier(c.From, c.From.Add(c.FromHandle), c.To.Add(c.ToHandle), c.To, 32)
}

func (c *Connector) DistanceTo(p Point) float64 {
	return distanceToPolyline(p, c.Path(), false)
}

func (c *Connector) Bounds() Rect {
	pts := c.Path()
	pts = append(pts, c.EndArrow...)
	pts = append(pts, c.StartArrow...)
	return boundsOf(pts)
}

func (c *Connector) Translate(d Point) {
	c.From = c.From.Add(d)
	c.To = c.To.Add(d)
	for i := range c.EndArrow {
		c.EndArrow[i] = c.EndArrow[i].Add(d)
	}
	for i := range c.StartArrow {
		c.StartArrow[i] = c.StartArrow[i].Add(d)
	}
}

// Route is the attachment geometry between two shapes.
type Route struct {
	From, To             Point
	FromHandle, ToHandle Point
	Horizontal           bool
	Delta                Point
}

// EndDir is the unit vector pointing from the target attachment back along
// the connector.
func (r Route) EndDir() Point {
	if r.Horizontal {
		if r.Delta.X >= 0 {
			return Point{-1, 0}
		}
		return Point{1, 0}
	}
	if r.Delta.Y >= 0 {
		return Point{0, -1}
	}
	return Point{0, 1}
}

// StartDir is the unit vector pointing from the source attachment along the
// connector.
func (r Route) StartDir() Point {
	return r.EndDir().Mul(-1)
}

// ComputeRoute attaches on the dominant axis between the two centres, at the
// midpoint of each shape's near edge.
func ComputeRoute(from, to *Shape) Route {
	fb, tb := from.Bounds(), to.Bounds()
	fc, tc := fb.Center(), tb.Center()
	dx, dy := tc.X-fc.X, tc.Y-fc.Y
	r := Route{Delta: Point{dx, dy}}

	if math.Abs(dx) >= math.Abs(dy) {
		r.Horizontal = true
		if dx >= 0 {
			r.From = Point{fb.Right(), fc.Y}
			r.To = Point{tb.Left(), tc.Y}
		} else {
			r.From = Point{fb.Left(), fc.Y}
			r.To = Point{tb.Right(), tc.Y}
		}
		hl := handleLength(dx)
		if dx >= 0 {
			r.FromHandle, r.ToHandle = Point{hl, 0}, Point{-hl, 0}
		} else {
			r.FromHandle, r.ToHandle = Point{-hl, 0}, Point{hl, 0}
		}
		return r
	}

	if dy >= 0 {
		r.From = Point{fc.X, fb.Bottom()}
		r.To = Point{tc.X, tb.Top()}
	} else {
		r.From = Point{fc.X, fb.Top()}
		r.To = Point{tc.X, tb.Bottom()}
	}
	hl := handleLength(dy)
	if dy >= 0 {
		r.FromHandle, r.ToHandle = Point{0, hl}, Point{0, -hl}
	} else {
		r.FromHandle, r.ToHandle = Point{0, -hl}, Point{0, hl}
	}
	return r
}

func handleLength(delta float64) float64 {
	return clamp(math.Abs(delta)*handleLengthFactor, minHandleLength, maxHandleLength)
}

// Arrowhead returns the three points of a filled arrowhead with its apex at
// tip; dir points from the tip back along the line.
func Arrowhead(tip, dir Point) []Point {
	return []Point{
		tip.Add(dir.Rotate(arrowHalfAngleDeg).Mul(arrowSize)),
		tip,
		tip.Add(dir.Rotate(-arrowHalfAngleDeg).Mul(arrowSize)),
	}
}

func (c *Connector) applyRoute(r Route) {
	c.From, c.To = r.From, r.To
	if c.Style == StyleStraight {
		c.FromHandle, c.ToHandle = Point{}, Point{}
	} else {
		c.FromHandle, c.ToHandle = r.FromHandle, r.ToHandle
	}
	c.EndArrow = Arrowhead(r.To, r.EndDir())
	if c.Bidirectional {
		c.StartArrow = Arrowhead(r.From, r.StartDir())
	} else {
		c.StartArrow = nil
	}
}

// ConnectResult tells the caller what Connect did.
type ConnectResult int

const (
	ConnectCreated ConnectResult = iota
	ConnectMerged
	ConnectExisting
	ConnectRejected
)

// Connect links from -> to. When to -> from already exists that connector is
// converted in place into a bidirectional one; at most one connector ever
// joins an unordered pair of shapes.
func (c *Canvas) Connect(fromID, toID string, style ConnectorStyle, newID func() string) (*Connector, ConnectResult) {
	from, to := c.Shape(fromID), c.Shape(toID)
	if from == nil || to == nil || fromID == toID {
		return nil, ConnectRejected
	}
	if reverse := c.FindConnector(toID, fromID); reverse != nil {
		if reverse.Bidirectional {
			return reverse, ConnectExisting
		}
		reverse.Bidirectional = true
		reverse.Dash = nil
		reverse.applyRoute(ComputeRoute(c.Shape(reverse.FromShapeID), c.Shape(reverse.ToShapeID)))
		return reverse, ConnectMerged
	}
	if existing := c.FindConnector(fromID, toID); existing != nil {
		return existing, ConnectExisting
	}

	conn := &Connector{
		ID:          newID(),
		FromShapeID: fromID,
		ToShapeID:   toID,
		Style:       style,
		Dash:        append([]float64(nil), connectorDash...),
		Width:       connectorWidth,
		Color:       connectorLineColor,
		ArrowColor:  connectorArrowColor,
	}
	conn.applyRoute(ComputeRoute(from, to))
	c.AddToBack(conn)
	return conn, ConnectCreated
}

// UpdateConnector re-derives geometry from the current endpoint shapes. It
// removes the connector and returns false when either endpoint is gone.
func (c *Canvas) UpdateConnector(conn *Connector) bool {
	from, to := c.Shape(conn.FromShapeID), c.Shape(conn.ToShapeID)
	if from == nil || to == nil {
		c.Remove(conn.ID)
		return false
	}
	if conn.Style == "" {
		conn.Style = StyleBezier
	}
	conn.applyRoute(ComputeRoute(from, to))
	return true
}

// UpdateConnectorsFor re-routes every connector touching the shape.
func (c *Canvas) UpdateConnectorsFor(shapeID string) {
	for _, conn := range c.ConnectorsFor(shapeID) {
		c.UpdateConnector(conn)
	}
}

// UpdateAllConnectors is the cleanup pass: every connector is re-routed and
// dangling ones are removed. It returns the ids removed.
func (c *Canvas) UpdateAllConnectors() []string {
	var removed []string
	for _, conn := range c.Connectors() {
		if !c.UpdateConnector(conn) {
			removed = append(removed, conn.ID)
		}
	}
	return removed
}

// SetConnectorStyle overwrites the style of every connector and re-routes it.
func (c *Canvas) SetConnectorStyle(style ConnectorStyle) {
	for _, conn := range c.Connectors() {
		conn.Style = style
		c.UpdateConnector(conn)
	}
}

// AnimateDashes advances the dash-flow offset on directed connectors.
func (c *Canvas) AnimateDashes(elapsedSeconds float64) {
	offset := -math.Mod(elapsedSeconds*dashFlowSpeed, dashFlowPeriod)
	for _, conn := range c.Connectors() {
		if !conn.Bidirectional {
			conn.DashOffset = offset
		}
	}
}

// AddToBack inserts the item at the bottom of the z-order.
func (c *Canvas) AddToBack(item Item) {
	if _, exists := c.byID[item.ItemID()]; exists {
		c.Replace(item)
		return
	}
	c.items = append([]Item{item}, c.items...)
	c.byID[item.ItemID()] = item
}
