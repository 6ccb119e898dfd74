package main

import (
	"strings"

	"go.uber.org/zap"
)

// TextSession is an open text edit. The text being edited, if any, stays on
// the canvas but is not drawn until the session ends.
type TextSession struct {
	TextID    string
	EditingID string
	ShapeID   string
	Anchor    Point
	Original  string
	Buffer    []rune
}

func (t *TextSession) Content() string { return string(t.Buffer) }

// beginTextEditing opens an editor on the text at p, on the label of the
// shape at p, or on new free text.
func (e *Editor) beginTextEditing(p Point) {
	e.transition(StateIdle)
	sess := &TextSession{Anchor: p}

	switch hit := e.canvas.HitTest(p).(type) {
	case *Text:
		sess.TextID = hit.ID
		sess.EditingID = hit.ID
		sess.ShapeID = hit.AttachedTo
		sess.Anchor = hit.Position
		sess.Original = hit.Content
	case *Shape:
		sess.ShapeID = hit.ID
		sess.Anchor = hit.Center()
		if labels := e.canvas.AttachedTexts(hit.ID); len(labels) > 0 {
			sess.TextID = labels[0].ID
			sess.EditingID = labels[0].ID
			sess.Original = labels[0].Content
		}
	}
	if sess.TextID == "" {
		sess.TextID = e.newID("text")
	}
	sess.Buffer = []rune(sess.Original)

	e.clearSelection()
	e.transition(StateTextEditing)
	e.text = sess
	e.logger.Debug("text editing", zap.String("text", sess.TextID), zap.String("shape", sess.ShapeID))
}

func (e *Editor) TypeText(s string) {
	if e.state != StateTextEditing || e.text == nil {
		return
	}
	e.text.Buffer = append(e.text.Buffer, []rune(s)...)
}

func (e *Editor) Backspace() {
	if e.state != StateTextEditing || e.text == nil || len(e.text.Buffer) == 0 {
		return
	}
	e.text.Buffer = e.text.Buffer[:len(e.text.Buffer)-1]
}

// Enter commits the edit; with shift it inserts a line break instead.
func (e *Editor) Enter(shift bool) {
	if e.state != StateTextEditing {
		return
	}
	if shift {
		e.TypeText("\n")
		return
	}
	e.CommitText()
}

// CancelText discards the edit and shows the original text again.
func (e *Editor) CancelText() {
	if e.state != StateTextEditing {
		return
	}
	e.transition(StateIdle)
}

// Blur is focus loss, which commits like an outside click.
func (e *Editor) Blur() { e.CommitText() }

// CommitText replaces the edited text, and any other label on the same
// shape, with the buffer contents. Blank content leaves no text behind.
func (e *Editor) CommitText() {
	sess := e.text
	if e.state != StateTextEditing || sess == nil {
		return
	}
	e.transition(StateIdle)

	content := sess.Content()
	if sess.EditingID != "" && content == sess.Original {
		return
	}

	changed := false
	if sess.EditingID != "" && e.canvas.Remove(sess.EditingID) {
		changed = true
	}
	shape := e.canvas.Shape(sess.ShapeID)
	if shape != nil {
		for _, t := range e.canvas.AttachedTexts(shape.ID) {
			e.canvas.Remove(t.ID)
			changed = true
		}
	}

	if strings.TrimSpace(content) != "" {
		text := &Text{
			ID:       sess.TextID,
			Position: sess.Anchor,
			Content:  content,
			Color:    textColor(e.settings.Theme),
		}
		if shape != nil {
			text.Position = shape.Center()
			text.AttachedTo = shape.ID
		}
		e.canvas.Add(text)
		changed = true
	}
	if changed {
		e.saveNow()
	}
}

// EditingTextID is the id of the text hidden behind an open edit, if any.
func (e *Editor) EditingTextID() string {
	if e.text == nil {
		return ""
	}
	return e.text.EditingID
}
