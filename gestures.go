package main

import (
	"math"
	"sort"
	"time"

	"go.uber.org/zap"
)

type PointerButton int

const (
	ButtonPrimary PointerButton = iota
	ButtonSecondary
	ButtonMiddle
)

// PointerEvent is one raw pointer sample in screen units. Touch contacts and
// mouse buttons both arrive as pointers, told apart by ID.
type PointerEvent struct {
	ID     int
	Pos    Point
	Time   time.Time
	Button PointerButton
	Ctrl   bool
}

type pointerState struct {
	start  Point
	last   Point
	downAt time.Time
	travel float64 // furthest distance from start
}

type tapRecord struct {
	at    time.Time
	pos   Point
	valid bool
}

type twoFingerSession struct {
	startDist     float64
	startMid      Point
	startZoom     float64
	startCenter   Point
	panRecognized bool
}

type dragSession struct {
	moved bool
}

// transition is the only place the gesture state changes. Leaving a state
// throws away whatever it left half built.
func (e *Editor) transition(to GestureState) {
	from := e.state
	if from == to {
		return
	}
	switch from {
	case StateDrawing:
		e.stroke = nil
	case StateMarqueeSelecting:
		e.marquee = nil
	case StateDragging:
		if e.drag.moved {
			e.requestSave(e.clock)
		}
		e.drag = dragSession{}
	case StateResizing:
		if e.resize.changed {
			e.requestSave(e.clock)
		}
		e.resize = resizeSession{}
	case StateTextEditing:
		e.text = nil
	case StateTwoFingerPanning, StatePinching:
		e.two = twoFingerSession{}
	}
	e.state = to
	e.metrics.gestures.WithLabelValues(to.String()).Inc()
	e.logger.Debug("gesture", zap.Stringer("from", from), zap.Stringer("to", to))
}

// cancelGesture drops every pointer and returns to Idle.
func (e *Editor) cancelGesture() {
	e.pressArmed = false
	e.consumed = false
	e.multi = false
	e.pointers = make(map[int]*pointerState)
	e.order = e.order[:0]
	e.transition(StateIdle)
}

func (e *Editor) PointerDown(ev PointerEvent) {
	e.clock = ev.Time
	if _, dup := e.pointers[ev.ID]; dup {
		return
	}
	e.pointers[ev.ID] = &pointerState{start: ev.Pos, last: ev.Pos, downAt: ev.Time}
	e.order = append(e.order, ev.ID)

	switch len(e.pointers) {
	case 1:
		e.primary = ev.ID
		e.singleDown(ev)
	case 2:
		e.beginTwoFinger()
	}
}

func (e *Editor) singleDown(ev PointerEvent) {
	e.consumed = false
	e.pressArmed = false

	if e.state == StateTextEditing {
		// an outside click commits and is not seen by anything else
		e.CommitText()
		e.consumed = true
		return
	}
	if ev.Ctrl || ev.Button == ButtonSecondary {
		e.clearSelection()
		e.transition(StatePanning)
		return
	}

	p := e.view.ToScene(ev.Pos)
	if s, h := e.resizeHandleAt(p); s != nil {
		e.transition(StateResizing)
		e.beginResize(s, h)
		return
	}

	if item := e.selectTarget(p); item != nil {
		e.pick(item)
	} else {
		e.clearSelection()
	}
	e.transition(StateDrawing)
	e.stroke = []Point{p}
	e.strokeStart = p
	e.pressArmed = true
	e.pressDeadline = ev.Time.Add(longPressDuration)
}

func (e *Editor) PointerMove(ev PointerEvent) {
	ps := e.pointers[ev.ID]
	if ps == nil {
		return
	}
	e.checkLongPress(ev.Time)
	e.clock = ev.Time
	prev := ps.last
	ps.last = ev.Pos
	ps.travel = math.Max(ps.travel, ev.Pos.Dist(ps.start))

	if e.multi {
		e.moveTwoFinger()
		return
	}
	if ev.ID != e.primary || e.consumed {
		return
	}
	if ps.travel > tapSlop {
		e.pressArmed = false
	}

	p := e.view.ToScene(ev.Pos)
	switch e.state {
	case StateResizing:
		e.applyResize(p)
	case StateDragging:
		e.dragBy(p.Sub(e.view.ToScene(prev)))
	case StateMarqueeSelecting:
		if e.marquee != nil {
			e.marquee.Update(p)
		}
	case StateDrawing:
		e.stroke = append(e.stroke, p)
	case StatePanning:
		e.view.PanBy(ev.Pos.Sub(prev))
	}
}

func (e *Editor) PointerUp(ev PointerEvent) {
	ps := e.pointers[ev.ID]
	if ps == nil {
		return
	}
	e.checkLongPress(ev.Time)
	e.clock = ev.Time
	ps.last = ev.Pos
	e.removePointer(ev.ID)

	if e.multi {
		if len(e.pointers) == 0 {
			e.multi = false
			e.consumed = false
			e.transition(StateIdle)
		}
		return
	}
	if ev.ID != e.primary {
		return
	}
	e.pressArmed = false
	if e.consumed {
		e.consumed = false
		return
	}

	p := e.view.ToScene(ev.Pos)
	switch e.state {
	case StateResizing:
		// a handle pressed without moving is still a tap
		changed := e.resize.changed
		e.transition(StateIdle)
		if !changed && e.registerTap(ps, ev) {
			return
		}
		e.refreshOverlay()
	case StateDragging:
		e.transition(StateIdle)
		e.refreshOverlay()
	case StateMarqueeSelecting:
		e.endMarquee(p)
		e.transition(StateIdle)
	case StateHolding, StatePanning:
		e.transition(StateIdle)
	case StateDrawing:
		e.finishStroke(ps, ev)
	}
}

// PointerCancel abandons the pointer's gesture without committing a stroke.
func (e *Editor) PointerCancel(ev PointerEvent) {
	if e.pointers[ev.ID] == nil {
		return
	}
	e.clock = ev.Time
	e.removePointer(ev.ID)
	if len(e.pointers) == 0 && e.state != StateTextEditing {
		e.cancelGesture()
	}
}

func (e *Editor) removePointer(id int) {
	delete(e.pointers, id)
	for i, v := range e.order {
		if v == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
}

// Wheel zooms toward the pointer. A real zoom change clears the selection
// and drops an in-flight stroke.
func (e *Editor) Wheel(pos Point, deltaY float64, now time.Time) {
	e.clock = now
	old := e.view.Zoom
	e.view.Wheel(pos, deltaY)
	if math.Abs(e.view.Zoom-old) > 0.01 {
		e.clearSelection()
		if e.state == StateDrawing {
			e.pressArmed = false
			e.consumed = true
			e.transition(StateIdle)
		}
	}
}

// checkLongPress fires a due long-press. It runs from Advance and from
// pointer events so a late frame tick cannot reorder it after a release.
func (e *Editor) checkLongPress(now time.Time) {
	if !e.pressArmed || now.Before(e.pressDeadline) || len(e.pointers) != 1 {
		return
	}
	e.pressArmed = false
	if e.state != StateDrawing {
		return
	}
	ps := e.pointers[e.primary]
	if ps == nil || ps.travel > tapSlop {
		return
	}
	e.clock = e.pressDeadline
	e.longPress(e.view.ToScene(ps.last))
}

// longPress turns a stationary press into a drag of the item underneath, a
// hold on a connector, or a marquee on empty space.
func (e *Editor) longPress(p Point) {
	e.transition(StateIdle)
	e.lastTap = tapRecord{}

	item := e.selectTarget(p)
	if item == nil {
		e.overlay = nil
		e.transition(StateMarqueeSelecting)
		e.beginMarquee(p)
		return
	}
	if !e.selection.Has(item.ItemID()) {
		e.selection.Only(item.ItemID())
	}
	if item.Kind() == KindConnector {
		e.refreshOverlay()
		e.transition(StateHolding)
		return
	}
	e.overlay = nil
	e.transition(StateDragging)
}

// dragBy moves every selected item, then re-syncs the connectors of moved
// shapes and the text attached to them unless that text moved itself.
func (e *Editor) dragBy(delta Point) {
	if delta.X == 0 && delta.Y == 0 {
		return
	}
	var moved []*Shape
	for _, id := range e.selection.ids {
		item := e.canvas.Get(id)
		if item == nil {
			continue
		}
		item.Translate(delta)
		if s, ok := item.(*Shape); ok {
			moved = append(moved, s)
		}
	}
	for _, s := range moved {
		e.canvas.UpdateConnectorsFor(s.ID)
		for _, t := range e.canvas.AttachedTexts(s.ID) {
			if !e.selection.Has(t.ID) {
				t.Position = s.Center()
			}
		}
	}
	e.drag.moved = true
}

// finishStroke resolves a released single-pointer stroke: double-tap opens
// text editing, a stroke between two shapes becomes a connector, anything
// else is recognized as a shape or kept as a drawing.
func (e *Editor) finishStroke(ps *pointerState, ev PointerEvent) {
	stroke := append(e.stroke, e.view.ToScene(ev.Pos))
	start := e.strokeStart
	e.stroke = nil
	e.transition(StateIdle)

	if e.registerTap(ps, ev) {
		return
	}

	end := e.view.ToScene(ev.Pos)
	from, _ := e.selectTarget(start).(*Shape)
	to, _ := e.selectTarget(end).(*Shape)
	if from != nil && to != nil && from.ID != to.ID {
		e.connect(from.ID, to.ID)
		return
	}

	e.metrics.strokePoints.Observe(float64(len(stroke)))
	simplified := SimplifyStroke(stroke, simplifyTolerance)
	if isDegenerateStroke(simplified) {
		return
	}
	style := e.strokeStyle()
	if shape, ok := Recognize(simplified, style); ok {
		shape.ID = e.newID("shape")
		e.canvas.Add(shape)
		e.metrics.shapesRecognized.WithLabelValues(string(shape.Type)).Inc()
		e.logger.Debug("shape recognized", zap.String("id", shape.ID), zap.String("kind", string(shape.Type)))
	} else {
		e.canvas.Add(&Drawing{ID: e.newID("drawing"), Points: simplified, Style: style})
		e.metrics.shapesRecognized.WithLabelValues("none").Inc()
	}
	e.saveNow()
}

// registerTap records a release as a tap when it was short and still. It
// reports whether the tap completed a double-tap, which starts text editing.
func (e *Editor) registerTap(ps *pointerState, ev PointerEvent) bool {
	if ev.Time.Sub(ps.downAt) > tapMaxDuration || ps.travel > tapSlop {
		e.lastTap = tapRecord{}
		return false
	}
	last := e.lastTap
	e.lastTap = tapRecord{at: ev.Time, pos: ev.Pos, valid: true}
	if !last.valid || ev.Time.Sub(last.at) > tapInterval || ev.Pos.Dist(last.pos) > doubleTapDistance {
		return false
	}
	e.lastTap = tapRecord{}
	e.beginTextEditing(e.view.ToScene(ev.Pos))
	return true
}

func (e *Editor) connect(fromID, toID string) {
	conn, result := e.canvas.Connect(fromID, toID, e.settings.ConnectorStyle, func() string { return e.newID("connector") })
	switch result {
	case ConnectCreated:
		e.metrics.connectors.WithLabelValues("created").Inc()
	case ConnectMerged:
		e.metrics.connectors.WithLabelValues("merged").Inc()
	default:
		return
	}
	e.logger.Debug("connector", zap.String("id", conn.ID), zap.Bool("bidirectional", conn.Bidirectional))
	e.saveNow()
}

func (e *Editor) twoPointers() (Point, Point, bool) {
	if len(e.order) < 2 {
		return Point{}, Point{}, false
	}
	ids := append([]int(nil), e.order[:2]...)
	sort.Ints(ids)
	return e.pointers[ids[0]].last, e.pointers[ids[1]].last, true
}

// beginTwoFinger abandons any single-pointer gesture. The view change that
// follows would leave selection and strokes stale.
func (e *Editor) beginTwoFinger() {
	e.pressArmed = false
	e.lastTap = tapRecord{}
	if e.state == StateTextEditing {
		e.CommitText()
	}
	e.transition(StateIdle)
	e.clearSelection()
	e.multi = true
	e.consumed = true
	a, b, _ := e.twoPointers()
	e.two = twoFingerSession{
		startDist:   a.Dist(b),
		startMid:    a.Add(b).Mul(0.5),
		startZoom:   e.view.Zoom,
		startCenter: e.view.Center,
	}
}

// moveTwoFinger applies whichever of pinch and two-finger pan moved more
// this frame. Both are computed from the session start so the one that
// loses a frame catches up when it next wins.
func (e *Editor) moveTwoFinger() {
	a, b, ok := e.twoPointers()
	if !ok {
		return
	}
	dist := a.Dist(b)
	mid := a.Add(b).Mul(0.5)
	spread := math.Abs(dist - e.two.startDist)
	travel := mid.Dist(e.two.startMid)
	if travel >= twoFingerThreshold {
		e.two.panRecognized = true
	}

	session := e.two
	switch {
	case session.startDist > 0 && spread > 0 && spread >= travel:
		e.transition(StatePinching)
		e.two = session
		e.view.SetZoom(session.startZoom * dist / session.startDist)
	case session.panRecognized:
		e.transition(StateTwoFingerPanning)
		e.two = session
		e.view.Center = session.startCenter.Sub(mid.Sub(session.startMid).Mul(1 / e.view.Zoom))
	}
}
