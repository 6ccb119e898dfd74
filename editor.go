package main

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Settings are the scene-wide defaults applied to new items.
type Settings struct {
	StrokeWidth    float64
	ConnectorStyle ConnectorStyle
	Theme          Theme // resolved, never ThemeSystem
}

func DefaultSettings() Settings {
	return Settings{StrokeWidth: defaultStroke, ConnectorStyle: StyleBezier, Theme: ThemeDark}
}

func shapeColor(t Theme) string {
	if t == ThemeLight {
		return "#334155"
	}
	return "#e2e8f0"
}

func textColor(t Theme) string {
	if t == ThemeLight {
		return "#1e293b"
	}
	return "#f1f5f9"
}

func backgroundColor(t Theme) string {
	if t == ThemeLight {
		return "#f8fafc"
	}
	return "#0f0f0f"
}

type EditorOptions struct {
	Width    float64
	Height   float64
	Settings Settings
	Logger   *zap.Logger
	Metrics  *Metrics
	NewID    func(prefix string) string
	// History restores a persisted history; the current entry is loaded.
	History []Snapshot
	Cursor  int
	Now     time.Time
}

// Editor owns one scene and everything that acts on it. All methods run on
// a single goroutine; the caller feeds it pointer events, keys, commands and
// periodic Advance calls.
type Editor struct {
	canvas    *Canvas
	view      *View
	selection *Selection
	overlay   *SelectionOverlay
	marquee   *Marquee
	history   *History
	commands  *CommandQueue
	settings  Settings

	state         GestureState
	pointers      map[int]*pointerState
	order         []int
	primary       int
	multi         bool
	consumed      bool
	pressArmed    bool
	pressDeadline time.Time
	lastTap       tapRecord
	stroke        []Point
	strokeStart   Point
	drag          dragSession
	resize        resizeSession
	two           twoFingerSession
	text          *TextSession

	pendingSave    debouncer
	loading        bool
	historyVersion int
	clock          time.Time
	started        time.Time

	newID   func(prefix string) string
	logger  *zap.Logger
	metrics *Metrics
}

func newUUID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}

func NewEditor(opts EditorOptions) *Editor {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics()
	}
	if opts.NewID == nil {
		opts.NewID = newUUID
	}
	if opts.Settings.StrokeWidth <= 0 {
		opts.Settings.StrokeWidth = defaultStroke
	}
	if opts.Settings.ConnectorStyle == "" {
		opts.Settings.ConnectorStyle = StyleBezier
	}
	if opts.Settings.Theme != ThemeLight {
		opts.Settings.Theme = ThemeDark
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	e := &Editor{
		canvas:      NewCanvas(),
		view:        NewView(opts.Width, opts.Height),
		selection:   &Selection{},
		history:     NewHistory(maxHistory),
		commands:    &CommandQueue{},
		settings:    opts.Settings,
		pointers:    make(map[int]*pointerState),
		pendingSave: debouncer{delay: saveDebounce},
		clock:       opts.Now,
		started:     opts.Now,
		newID:       opts.NewID,
		logger:      opts.Logger,
		metrics:     opts.Metrics,
	}

	if len(opts.History) > 0 {
		e.history.Restore(opts.History, opts.Cursor)
		if snap, ok := e.history.Current(); ok {
			if err := e.loadSnapshot(snap); err != nil {
				e.logger.Error("restore history", zap.Error(err))
			}
		}
	}
	if e.history.Len() == 0 {
		e.saveNow()
	}
	return e
}

// Advance moves time forward: it fires a due long-press, flushes a due
// debounced save and steps the connector dash animation. The animation
// touches only DashOffset, which is never persisted.
func (e *Editor) Advance(now time.Time) {
	e.checkLongPress(now)
	if e.pendingSave.Fire(now) && !e.loading {
		e.record("debounced")
	}
	e.clock = now
	e.canvas.AnimateDashes(now.Sub(e.started).Seconds())
	e.ProcessCommands()
}

func (e *Editor) strokeStyle() StrokeStyle {
	return StrokeStyle{Width: e.settings.StrokeWidth, Color: shapeColor(e.settings.Theme)}
}

func (e *Editor) Canvas() *Canvas            { return e.canvas }
func (e *Editor) View() *View                { return e.view }
func (e *Editor) State() GestureState        { return e.state }
func (e *Editor) Overlay() *SelectionOverlay { return e.overlay }
func (e *Editor) Marquee() *Marquee          { return e.marquee }
func (e *Editor) Stroke() []Point            { return e.stroke }
func (e *Editor) Selected() []string         { return e.selection.IDs() }
func (e *Editor) TextSession() *TextSession  { return e.text }
func (e *Editor) History() *History          { return e.history }
func (e *Editor) HistoryVersion() int        { return e.historyVersion }
func (e *Editor) Settings() Settings         { return e.settings }
func (e *Editor) SaveDue() bool              { return e.pendingSave.pending }
