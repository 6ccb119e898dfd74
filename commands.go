package main

import (
	"io"

	"go.uber.org/zap"
)

// Command is a request from outside the canvas (menus, key bindings, the
// config watcher). Commands are queued and applied in order on the editor's
// goroutine.
type Command interface {
	apply(e *Editor)
}

type CommandQueue struct {
	pending []Command
}

func (q *CommandQueue) Post(c Command) { q.pending = append(q.pending, c) }
func (q *CommandQueue) Len() int       { return len(q.pending) }

func (q *CommandQueue) drain() []Command {
	out := q.pending
	q.pending = nil
	return out
}

// Post queues a command for the next ProcessCommands.
func (e *Editor) Post(c Command) { e.commands.Post(c) }

// ProcessCommands applies every queued command and returns how many ran.
func (e *Editor) ProcessCommands() int {
	n := 0
	for e.commands.Len() > 0 {
		for _, c := range e.commands.drain() {
			c.apply(e)
			n++
		}
	}
	return n
}

type FitToView struct{ Options FitOptions }
type DeleteSelection struct{}
type ClearScene struct{}
type SetStrokeWidth struct{ Width float64 }
type SetConnectorStyle struct{ Style ConnectorStyle }
type ThemeChanged struct{ Theme Theme }
type UndoCommand struct{}
type RedoCommand struct{}

// RequestSnapshot asks for the current scene. Reply is called exactly once.
type RequestSnapshot struct {
	Reply func(Snapshot, error)
}

type ExportSVGCommand struct {
	W    io.Writer
	Done func(error)
}

type ExportJSONCommand struct {
	W    io.Writer
	Done func(error)
}

type ExportPNGCommand struct {
	W    io.Writer
	Done func(error)
}

type ImportJSONCommand struct {
	R    io.Reader
	Done func(error)
}

func (c FitToView) apply(e *Editor)         { e.FitToView(c.Options) }
func (DeleteSelection) apply(e *Editor)     { e.DeleteSelection() }
func (ClearScene) apply(e *Editor)          { e.ClearScene() }
func (c SetStrokeWidth) apply(e *Editor)    { e.SetStrokeWidth(c.Width) }
func (c SetConnectorStyle) apply(e *Editor) { e.SetConnectorStyle(c.Style) }
func (c ThemeChanged) apply(e *Editor)      { e.ApplyTheme(c.Theme) }
func (UndoCommand) apply(e *Editor)         { e.Undo() }
func (RedoCommand) apply(e *Editor)         { e.Redo() }

func (c RequestSnapshot) apply(e *Editor) {
	snap, err := EncodeSnapshot(e.canvas)
	if c.Reply != nil {
		c.Reply(snap, err)
	}
}

func (c ExportSVGCommand) apply(e *Editor)  { done(c.Done, e.ExportSVG(c.W)) }
func (c ExportJSONCommand) apply(e *Editor) { done(c.Done, e.ExportJSON(c.W)) }
func (c ExportPNGCommand) apply(e *Editor)  { done(c.Done, e.ExportPNG(c.W)) }
func (c ImportJSONCommand) apply(e *Editor) { done(c.Done, e.ImportJSON(c.R)) }

func done(fn func(error), err error) {
	if fn != nil {
		fn(err)
	}
}

// DeleteSelection removes the selected items. A selected shape takes its
// connectors and attached text with it.
func (e *Editor) DeleteSelection() bool {
	ids := e.selection.IDs()
	if len(ids) == 0 {
		return false
	}
	removed := 0
	for _, id := range ids {
		switch e.canvas.Get(id).(type) {
		case *Shape:
			removed += len(e.canvas.DeleteShape(id))
		case nil:
		default:
			if e.canvas.Remove(id) {
				removed++
			}
		}
	}
	e.clearSelection()
	e.logger.Info("deleted selection", zap.Int("selected", len(ids)), zap.Int("removed", removed))
	e.saveNow()
	return true
}

func (e *Editor) ClearScene() {
	e.cancelGesture()
	e.canvas.Clear()
	e.clearSelection()
	e.saveNow()
}

// SetStrokeWidth becomes the default for new shapes and is applied to every
// existing shape.
func (e *Editor) SetStrokeWidth(w float64) {
	if w <= 0 {
		return
	}
	e.settings.StrokeWidth = w
	for _, s := range e.canvas.Shapes() {
		s.Style.Width = w
		s.Style.Color = shapeColor(e.settings.Theme)
	}
	e.saveIfPopulated()
}

// SetConnectorStyle changes the default for new connectors and rewrites the
// style of every existing one.
func (e *Editor) SetConnectorStyle(style ConnectorStyle) {
	if style != StyleBezier && style != StyleStraight {
		return
	}
	e.settings.ConnectorStyle = style
	e.canvas.SetConnectorStyle(style)
	e.refreshOverlay()
	e.saveIfPopulated()
}

// ApplyTheme recolours shapes, drawings and text for the resolved theme.
func (e *Editor) ApplyTheme(t Theme) {
	if t != ThemeLight {
		t = ThemeDark
	}
	e.settings.Theme = t
	for _, it := range e.canvas.items {
		switch v := it.(type) {
		case *Shape:
			v.Style.Color = shapeColor(t)
		case *Drawing:
			v.Style.Color = shapeColor(t)
		case *Text:
			v.Color = textColor(t)
		}
	}
	e.saveIfPopulated()
}

func (e *Editor) saveIfPopulated() {
	if e.canvas.Len() > 0 {
		e.saveNow()
	}
}
