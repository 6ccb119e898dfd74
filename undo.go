package main

import (
	"time"

	"go.uber.org/zap"
)

// Snapshot is a full serialized scene.
type Snapshot []byte

// History is a linear, bounded list of snapshots with a cursor. Saving while
// the cursor is behind the tail drops everything after it.
type History struct {
	entries []Snapshot
	cursor  int
	limit   int
}

func NewHistory(limit int) *History {
	if limit < 1 {
		limit = maxHistory
	}
	return &History{limit: limit, cursor: -1}
}

func (h *History) Save(s Snapshot) {
	h.entries = append(h.entries[:h.cursor+1], s)
	if len(h.entries) > h.limit {
		h.entries = h.entries[len(h.entries)-h.limit:]
	}
	h.cursor = len(h.entries) - 1
}

func (h *History) Undo() (Snapshot, bool) {
	if h.cursor <= 0 {
		return nil, false
	}
	h.cursor--
	return h.entries[h.cursor], true
}

func (h *History) Redo() (Snapshot, bool) {
	if h.cursor >= len(h.entries)-1 {
		return nil, false
	}
	h.cursor++
	return h.entries[h.cursor], true
}

func (h *History) Current() (Snapshot, bool) { return h.Peek(0) }

// Peek returns the entry offset from the cursor without moving it.
func (h *History) Peek(offset int) (Snapshot, bool) {
	i := h.cursor + offset
	if h.cursor < 0 || i < 0 || i >= len(h.entries) {
		return nil, false
	}
	return h.entries[i], true
}

func (h *History) Len() int      { return len(h.entries) }
func (h *History) Cursor() int   { return h.cursor }
func (h *History) CanUndo() bool { return h.cursor > 0 }
func (h *History) CanRedo() bool { return h.cursor < len(h.entries)-1 }

func (h *History) Entries() []Snapshot {
	return append([]Snapshot(nil), h.entries...)
}

// Restore replaces the history wholesale, trimming to the limit and clamping
// the cursor into range.
func (h *History) Restore(entries []Snapshot, cursor int) {
	if len(entries) > h.limit {
		cursor -= len(entries) - h.limit
		entries = entries[len(entries)-h.limit:]
	}
	h.entries = append([]Snapshot(nil), entries...)
	switch {
	case len(h.entries) == 0:
		h.cursor = -1
	case cursor < 0:
		h.cursor = 0
	case cursor >= len(h.entries):
		h.cursor = len(h.entries) - 1
	default:
		h.cursor = cursor
	}
}

// debouncer holds at most one pending deadline; scheduling again replaces it.
type debouncer struct {
	delay    time.Duration
	deadline time.Time
	pending  bool
}

func (d *debouncer) Schedule(now time.Time) {
	d.deadline = now.Add(d.delay)
	d.pending = true
}

func (d *debouncer) Cancel() { d.pending = false }

// Fire reports whether the pending deadline has passed and clears it.
func (d *debouncer) Fire(now time.Time) bool {
	if !d.pending || now.Before(d.deadline) {
		return false
	}
	d.pending = false
	return true
}

// saveNow records the scene immediately, superseding any pending debounced
// save. It is a no-op while a snapshot is being loaded.
func (e *Editor) saveNow() {
	if e.loading {
		return
	}
	e.pendingSave.Cancel()
	e.record("immediate")
}

// requestSave debounces saves from continuous gestures.
func (e *Editor) requestSave(now time.Time) {
	if e.loading {
		return
	}
	e.pendingSave.Schedule(now)
}

func (e *Editor) record(mode string) {
	data, err := EncodeSnapshot(e.canvas)
	if err != nil {
		e.logger.Error("encode snapshot", zap.Error(err))
		return
	}
	e.history.Save(data)
	e.historyVersion++
	e.metrics.historySaves.WithLabelValues(mode).Inc()
	e.logger.Debug("history saved",
		zap.String("mode", mode),
		zap.Int("length", e.history.Len()),
		zap.Int("cursor", e.history.Cursor()))
}

// Undo steps the history back and rebuilds the scene from that snapshot.
func (e *Editor) Undo() bool { return e.step(-1) }

func (e *Editor) Redo() bool { return e.step(1) }

// step moves the cursor only once the target snapshot has loaded, so an
// entry that fails to decode leaves cursor and scene in agreement.
func (e *Editor) step(offset int) bool {
	e.flushPendingSave()
	snap, ok := e.history.Peek(offset)
	if !ok {
		return false
	}
	if err := e.loadSnapshot(snap); err != nil {
		e.logger.Error("load snapshot", zap.Int("offset", offset), zap.Error(err))
		return false
	}
	if offset < 0 {
		e.history.Undo()
	} else {
		e.history.Redo()
	}
	return true
}

// flushPendingSave commits an outstanding debounced save so an undo right
// after a drag steps back over the drag rather than discarding it.
func (e *Editor) flushPendingSave() {
	if e.pendingSave.pending {
		e.pendingSave.Cancel()
		e.record("debounced")
	}
}

// loadSnapshot rebuilds the scene. Saves triggered while loading are
// suppressed so the rebuild never pushes a history entry.
func (e *Editor) loadSnapshot(s Snapshot) error {
	e.loading = true
	defer func() { e.loading = false }()

	c, err := DecodeSnapshot(s)
	if err != nil {
		return err
	}
	e.cancelGesture()
	e.canvas.Load(c)
	e.clearSelection()
	e.historyVersion++
	return nil
}

// Load replaces this canvas's contents with other's.
func (c *Canvas) Load(other *Canvas) {
	c.items = other.items
	c.byID = other.byID
}
