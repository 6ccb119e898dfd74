package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", defaultConfigPath(), "path to the YAML config file")
	flag.Parse()

	config, cfgErr := loadConfig(*configPath)
	logger, err := newLogger(config.LogFile, config.Debug)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()
	if cfgErr != nil {
		logger.Warn("using default config", zap.Error(cfgErr))
	}

	m := initialModel(config, *configPath, logger, flag.Arg(0))
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if config.WatchConfig {
		watcher, err := NewConfigWatcher(*configPath, logger, func(c *Config) {
			p.Send(configChangedMsg{config: c})
		})
		if err != nil {
			logger.Warn("config watcher disabled", zap.Error(err))
		} else {
			defer watcher.Stop()
		}
	}

	final, err := p.Run()
	if err != nil {
		log.Fatal(err)
	}
	if fm, ok := final.(model); ok {
		fm.shutdown()
	}
}

func initialModel(config *Config, configPath string, logger *zap.Logger, importPath string) model {
	hasDark := lipgloss.HasDarkBackground()
	store := NewStateStore(config.statePath())
	metrics := NewMetrics()

	themePref := config.Theme
	savedTheme, entries, cursor, err := store.Load()
	if err != nil {
		logger.Warn("ignoring saved state", zap.Error(err))
		entries, cursor = nil, -1
	}
	if savedTheme != "" {
		themePref = savedTheme
	}

	settings := config.Settings(hasDark)
	settings.Theme = resolveTheme(themePref, hasDark)

	editor := NewEditor(EditorOptions{
		Width:    80 * cellWidth,
		Height:   23 * cellHeight,
		Settings: settings,
		Logger:   logger,
		Metrics:  metrics,
		History:  entries,
		Cursor:   cursor,
	})

	return model{
		editor:       editor,
		config:       config,
		configPath:   configPath,
		store:        store,
		logger:       logger,
		metrics:      metrics,
		themePref:    themePref,
		hasDark:      hasDark,
		savedVersion: editor.HistoryVersion(),
		savedTheme:   themePref,
		importPath:   importPath,
	}
}

func frameTick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func readImportFile(path string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		return importFileMsg{source: path, data: data, err: err}
	}
}

func (m model) Init() tea.Cmd {
	if m.importPath != "" {
		return tea.Batch(frameTick(), readImportFile(m.importPath))
	}
	return frameTick()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.editor.View().Resize(float64(m.width)*cellWidth, float64(m.canvasRows())*cellHeight)
		return m, nil

	case frameMsg:
		m.editor.Advance(time.Time(msg))
		return m, tea.Batch(frameTick(), m.persistCmd())

	case configChangedMsg:
		m.applyConfig(msg.config)
		return m, m.persistCmd()

	case stateSavedMsg:
		if msg.err != nil {
			m.logger.Warn("state not saved", zap.Error(msg.err))
		}
		return m, nil

	case importFileMsg:
		if msg.err != nil {
			m.errorMessage = fmt.Sprintf("Failed to read %s: %v", msg.source, msg.err)
			return m, nil
		}
		m.importScene(msg.source, msg.data)
		return m, m.persistCmd()

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, m.persistCmd()

	case tea.KeyMsg:
		if m.help {
			switch msg.String() {
			case "esc", "?", "q":
				m.help = false
				m.helpScroll = 0
			case "j", "down":
				m.helpScroll++
			case "k", "up":
				if m.helpScroll > 0 {
					m.helpScroll--
				}
			}
			return m, nil
		}
		if m.editor.State() == StateTextEditing {
			m.handleTextKey(msg)
			return m, m.persistCmd()
		}
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			m.editor.Blur()
			return m, tea.Quit
		}
		m.handleKey(msg)
		return m, m.persistCmd()
	}
	return m, nil
}

func (m *model) canvasRows() int {
	rows := m.height - 1 // status line
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m *model) handleMouse(msg tea.MouseMsg) {
	now := time.Now()
	pos := Point{float64(msg.X)*cellWidth + cellWidth/2, float64(msg.Y)*cellHeight + cellHeight/2}
	m.errorMessage = ""
	m.successMessage = ""

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.editor.Wheel(pos, -1, now)
		return
	case tea.MouseButtonWheelDown:
		m.editor.Wheel(pos, 1, now)
		return
	}

	ev := PointerEvent{ID: 0, Pos: pos, Time: now, Ctrl: msg.Ctrl}
	switch msg.Button {
	case tea.MouseButtonRight:
		ev.Button = ButtonSecondary
	case tea.MouseButtonMiddle:
		ev.Button = ButtonMiddle
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if m.mouseDown {
			// a second press without a release means the release was lost
			m.editor.PointerCancel(ev)
		}
		m.mouseDown = true
		m.editor.PointerDown(ev)
	case tea.MouseActionMotion:
		if m.mouseDown {
			m.editor.PointerMove(ev)
		}
	case tea.MouseActionRelease:
		if m.mouseDown {
			m.mouseDown = false
			m.editor.PointerUp(ev)
		}
	}
}

func (m *model) handleTextKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "esc":
		m.editor.CancelText()
	case "enter":
		m.editor.Enter(false)
	case "alt+enter", "ctrl+j":
		m.editor.Enter(true)
	case "backspace":
		m.editor.Backspace()
	case "ctrl+v":
		text, err := readClipboardText()
		if err != nil {
			m.errorMessage = fmt.Sprintf("Failed to paste: %v", err)
			return
		}
		m.editor.TypeText(cleanClipboardText(text))
	case "ctrl+c":
		m.editor.Blur()
	default:
		switch msg.Type {
		case tea.KeyRunes:
			m.editor.TypeText(string(msg.Runes))
		case tea.KeySpace:
			m.editor.TypeText(" ")
		case tea.KeyTab:
			m.editor.TypeText("\t")
		}
	}
}

func (m *model) handleKey(msg tea.KeyMsg) {
	m.errorMessage = ""
	m.successMessage = ""
	e := m.editor
	step := 4 * cellWidth

	switch key := msg.String(); key {
	case "?":
		m.help = true
	case "u":
		e.Post(UndoCommand{})
	case "U", "ctrl+r":
		e.Post(RedoCommand{})
	case "d", "delete", "backspace":
		e.Post(DeleteSelection{})
	case "c":
		e.Post(ClearScene{})
		m.successMessage = "Cleared (u to undo)"
	case "1", "2", "3", "4":
		e.Post(SetStrokeWidth{Width: strokeWidths[key[0]-'1']})
	case "b":
		style := StyleStraight
		if e.Settings().ConnectorStyle == StyleStraight {
			style = StyleBezier
		}
		e.Post(SetConnectorStyle{Style: style})
		m.successMessage = fmt.Sprintf("Connectors: %s", style)
	case "t":
		next := ThemeLight
		if e.Settings().Theme == ThemeLight {
			next = ThemeDark
		}
		m.themePref = next
		e.Post(ThemeChanged{Theme: next})
	case "f":
		e.Post(FitToView{Options: DefaultFitOptions()})
	case "0":
		e.View().SetZoom(1)
	case "+", "=":
		e.View().ZoomAt(e.View().Size.Mul(0.5), wheelZoomIn)
	case "-":
		e.View().ZoomAt(e.View().Size.Mul(0.5), wheelZoomOut)
	case "left", "h":
		e.PanView(step, 0)
	case "right", "l":
		e.PanView(-step, 0)
	case "up", "k":
		e.PanView(0, step)
	case "down", "j":
		e.PanView(0, -step)
	case "esc":
		e.clearSelection()
	case "s":
		m.exportFile("svg")
	case "S", "P":
		m.exportFile("png")
	case "J":
		m.exportFile("json")
	case "x":
		m.exportFile("txt")
	case "y":
		e.Post(RequestSnapshot{Reply: func(s Snapshot, err error) {
			if err == nil {
				err = writeClipboardText(string(s))
			}
			if err != nil {
				m.errorMessage = fmt.Sprintf("Copy failed: %v", err)
				return
			}
			m.successMessage = "Scene copied to clipboard"
		}})
	case "ctrl+v":
		text, err := readClipboardText()
		if err == nil {
			text, err = snapshotFromClipboardText(text)
		}
		if err != nil {
			m.errorMessage = fmt.Sprintf("Paste failed: %v", err)
			return
		}
		m.importScene("clipboard", []byte(text))
	}
	e.ProcessCommands()
}

// exportFile writes the scene next to the configured save directory.
func (m *model) exportFile(kind string) {
	path := m.config.GetSavePath(exportFileName(kind, time.Now()))
	f, err := os.Create(path)
	if err != nil {
		m.errorMessage = fmt.Sprintf("Failed to create %s: %v", path, err)
		return
	}
	done := func(err error) {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
			m.errorMessage = fmt.Sprintf("Export failed: %v", err)
			return
		}
		m.successMessage = fmt.Sprintf("Exported to %s", path)
	}

	e := m.editor
	switch kind {
	case "svg":
		e.Post(ExportSVGCommand{W: f, Done: done})
	case "png":
		e.Post(ExportPNGCommand{W: f, Done: done})
	case "json":
		e.Post(ExportJSONCommand{W: f, Done: done})
	case "txt":
		done(e.ExportVisualTXT(f, m.width, m.canvasRows()))
		return
	}
	e.ProcessCommands()
}

func (m *model) importScene(source string, data []byte) {
	m.editor.Post(ImportJSONCommand{R: bytes.NewReader(data), Done: func(err error) {
		if err != nil {
			m.errorMessage = fmt.Sprintf("Import from %s failed: %v", source, err)
			return
		}
		m.editor.FitToView(DefaultFitOptions())
		m.successMessage = fmt.Sprintf("Imported %s", source)
	}})
	m.editor.ProcessCommands()
}

func (m *model) applyConfig(c *Config) {
	m.config = c
	m.themePref = c.Theme
	s := c.Settings(m.hasDark)
	e := m.editor
	if s.Theme != e.Settings().Theme {
		e.Post(ThemeChanged{Theme: s.Theme})
	}
	if s.StrokeWidth != e.Settings().StrokeWidth {
		e.Post(SetStrokeWidth{Width: s.StrokeWidth})
	}
	if s.ConnectorStyle != e.Settings().ConnectorStyle {
		e.Post(SetConnectorStyle{Style: s.ConnectorStyle})
	}
	e.ProcessCommands()
	m.successMessage = "Config reloaded"
}

// persistCmd writes the state off the UI goroutine whenever the history or
// the theme preference changed.
func (m *model) persistCmd() tea.Cmd {
	version := m.editor.HistoryVersion()
	if version == m.savedVersion && m.themePref == m.savedTheme {
		return nil
	}
	m.savedVersion = version
	m.savedTheme = m.themePref
	store, theme := m.store, m.themePref
	entries, cursor := m.editor.History().Entries(), m.editor.History().Cursor()
	return func() tea.Msg {
		return stateSavedMsg{err: store.Save(theme, entries, cursor)}
	}
}

func (m model) shutdown() {
	h := m.editor.History()
	if err := m.store.Save(m.themePref, h.Entries(), h.Cursor()); err != nil {
		m.logger.Warn("state not saved", zap.Error(err))
	}
	if err := m.metrics.WriteToFile(m.config.MetricsFile); err != nil {
		m.logger.Warn("metrics not written", zap.Error(err))
	}
}

func (m model) View() string {
	if m.help {
		return m.helpView()
	}
	if m.width < 1 || m.height < 1 {
		return ""
	}
	rows := RenderScene(m.editor, m.width, m.canvasRows(), true)
	return strings.Join(rows, "\n") + "\n" + m.statusLine()
}

var (
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f1f5f9")).Background(lipgloss.Color("#334155"))
	modeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color(selectionColor)).Bold(true).Padding(0, 1)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#f87171"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#86efac"))
)

func (m model) statusLine() string {
	e := m.editor
	h := e.History()
	status := fmt.Sprintf(" Zoom: %d%% | Items: %d | History: %d/%d | Width: %g | %s",
		int(e.View().Zoom*100+0.5), e.Canvas().Len(), h.Cursor()+1, h.Len(),
		e.Settings().StrokeWidth, e.Settings().ConnectorStyle)
	if n := len(e.Selected()); n > 0 {
		status += fmt.Sprintf(" | Selected: %d", n)
	}
	switch {
	case m.errorMessage != "":
		status += " | " + errorStyle.Render("ERROR: "+m.errorMessage)
	case m.successMessage != "":
		status += " | " + okStyle.Render(m.successMessage)
	default:
		status += " | ? for help | q to quit"
	}
	line := modeStyle.Render(m.modeString()) + statusStyle.Render(status)
	return lipgloss.NewStyle().MaxWidth(m.width).Render(line)
}

func (m model) modeString() string {
	return m.editor.State().String()
}

func (m model) helpView() string {
	helpLines := []string{
		"Sketchflow Help",
		"===============",
		"",
		"Drawing:",
		"--------",
		"  Drag             Draw a stroke; circles, triangles and rectangles are recognized",
		"  Drag shape→shape Connect two shapes (drawing back merges into a two-way link)",
		"  Double-click     Edit text on a shape, edit existing text, or add free text",
		"  Hold + drag      Move the item under the pointer (or marquee-select on empty space)",
		"  Drag a handle    Resize the selected shape",
		"  Right-drag       Pan (Ctrl+drag works too)",
		"  Wheel            Zoom toward the pointer",
		"",
		"Text editing:",
		"-------------",
		"  Enter            Commit",
		"  Alt+Enter        New line",
		"  Esc              Cancel",
		"  Ctrl+V           Paste text",
		"",
		"Scene:",
		"------",
		"  u / U            Undo / redo (last 10 steps)",
		"  d                Delete selection",
		"  c                Clear scene",
		"  1-4              Stroke width",
		"  b                Toggle bezier/straight connectors",
		"  t                Toggle light/dark theme",
		"",
		"View:",
		"-----",
		"  f                Fit scene to view",
		"  + / - / 0        Zoom in / out / reset",
		"  h/j/k/l, arrows  Pan",
		"",
		"Files:",
		"------",
		"  s                Export SVG",
		"  S / P            Export PNG",
		"  J                Export JSON",
		"  x                Export as text",
		"  y                Copy scene JSON to clipboard",
		"  Ctrl+V           Import scene JSON from clipboard",
		"",
		"  ?                Toggle this help screen",
		"  q/Ctrl+C         Quit",
	}

	visibleHeight := m.height - 1
	if visibleHeight < 1 {
		visibleHeight = 1
	}
	startLine := m.helpScroll
	if startLine > len(helpLines)-visibleHeight {
		startLine = len(helpLines) - visibleHeight
	}
	if startLine < 0 {
		startLine = 0
	}
	endLine := startLine + visibleHeight
	if endLine > len(helpLines) {
		endLine = len(helpLines)
	}

	result := strings.Join(helpLines[startLine:endLine], "\n")
	result += "\n" + fmt.Sprintf("Help (%d-%d of %d lines) | j/k to scroll, Esc to close",
		startLine+1, endLine, len(helpLines))
	return result
}
