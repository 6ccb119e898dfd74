package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestSnapshotRepliesOnce(t *testing.T) {
	e := newTestEditor(t)
	e.Canvas().Add(rectShape("s1", 0, 0, 100, 60))

	calls := 0
	var got Snapshot
	e.Post(RequestSnapshot{Reply: func(s Snapshot, err error) {
		calls++
		got = s
		assert.NoError(t, err)
	}})
	require.Equal(t, 1, e.ProcessCommands())
	assert.Equal(t, 0, e.ProcessCommands())

	assert.Equal(t, 1, calls)
	decoded, err := DecodeSnapshot(got)
	require.NoError(t, err)
	assert.NotNil(t, decoded.Shape("s1"))
}

func TestCommandsRunInOrder(t *testing.T) {
	e := newTestEditor(t)
	e.Canvas().Add(rectShape("s1", 0, 0, 100, 60))

	var widths []float64
	record := RequestSnapshot{Reply: func(Snapshot, error) {
		widths = append(widths, e.Canvas().Shape("s1").Style.Width)
	}}
	e.Post(record)
	e.Post(SetStrokeWidth{Width: 1})
	e.Post(record)

	assert.Equal(t, 3, e.ProcessCommands())
	assert.Equal(t, []float64{3, 1}, widths)
}

func TestCommandPostedWhileProcessingRunsInSameCall(t *testing.T) {
	e := newTestEditor(t)
	e.Canvas().Add(rectShape("s1", 0, 0, 100, 60))

	e.Post(RequestSnapshot{Reply: func(Snapshot, error) {
		e.Post(ClearScene{})
	}})

	assert.Equal(t, 2, e.ProcessCommands())
	assert.Zero(t, e.Canvas().Len())
}

func TestAdvanceProcessesCommands(t *testing.T) {
	e := newTestEditor(t)
	called := false
	e.Post(RequestSnapshot{Reply: func(Snapshot, error) { called = true }})

	e.Advance(ms(16))

	assert.True(t, called)
}

func TestDeleteSelectionCascades(t *testing.T) {
	e := newTestEditor(t)
	c := e.Canvas()
	c.Load(twoShapeCanvas())
	conn, _ := c.Connect("s1", "s2", StyleBezier, seqID("connector"))
	c.Add(&Text{ID: "label", Position: Point{50, 30}, Content: "A", AttachedTo: "s1"})
	c.Add(&Drawing{ID: "d", Points: []Point{{0, 300}, {100, 350}}})
	e.saveNow()
	before := e.History().Len()

	tap(e, 0, Point{20, 10})
	require.Equal(t, []string{"s1"}, e.Selected())
	e.Post(DeleteSelection{})
	e.ProcessCommands()

	assert.Nil(t, c.Get("s1"))
	assert.Nil(t, c.Get(conn.ID))
	assert.Nil(t, c.Get("label"))
	assert.NotNil(t, c.Get("s2"))
	assert.NotNil(t, c.Get("d"))
	assert.Empty(t, e.Selected())
	assert.Nil(t, e.Overlay())
	assert.Equal(t, before+1, e.History().Len())
}

func TestDeleteSelectionConnectorOnly(t *testing.T) {
	e := newTestEditor(t)
	c := e.Canvas()
	c.Load(twoShapeCanvas())
	conn, _ := c.Connect("s1", "s2", StyleBezier, seqID("connector"))

	tap(e, 0, Point{200, 30})
	require.Equal(t, []string{conn.ID}, e.Selected())
	require.True(t, e.DeleteSelection())

	assert.Nil(t, c.Get(conn.ID))
	assert.Equal(t, 2, c.Len())
}

func TestDeleteWithNothingSelected(t *testing.T) {
	e := newTestEditor(t)
	e.Canvas().Add(rectShape("s1", 0, 0, 100, 60))

	assert.False(t, e.DeleteSelection())
	assert.Equal(t, 1, e.History().Len())
}

func TestClearSceneIsUndoable(t *testing.T) {
	e := newTestEditor(t)
	e.Canvas().Load(twoShapeCanvas())
	e.saveNow()

	e.Post(ClearScene{})
	e.ProcessCommands()
	assert.Zero(t, e.Canvas().Len())

	e.Post(UndoCommand{})
	e.ProcessCommands()
	assert.Equal(t, 2, e.Canvas().Len())

	e.Post(RedoCommand{})
	e.ProcessCommands()
	assert.Zero(t, e.Canvas().Len())
}

func TestThemeChangedRecolours(t *testing.T) {
	e := newTestEditor(t)
	c := e.Canvas()
	c.Load(sampleCanvas())
	before := e.History().Len()

	e.Post(ThemeChanged{Theme: ThemeLight})
	e.ProcessCommands()

	assert.Equal(t, ThemeLight, e.Settings().Theme)
	for _, s := range c.Shapes() {
		assert.Equal(t, shapeColor(ThemeLight), s.Style.Color)
	}
	for _, d := range c.Drawings() {
		assert.Equal(t, shapeColor(ThemeLight), d.Style.Color)
	}
	for _, txt := range c.Texts() {
		assert.Equal(t, textColor(ThemeLight), txt.Color)
	}
	for _, conn := range c.Connectors() {
		assert.Equal(t, connectorLineColor, conn.Color)
	}
	assert.Equal(t, before+1, e.History().Len())

	e.Post(ThemeChanged{Theme: ThemeSystem})
	e.ProcessCommands()
	assert.Equal(t, ThemeDark, e.Settings().Theme, "an unresolved theme falls back to dark")
}

func TestThemeChangeOnEmptySceneDoesNotSave(t *testing.T) {
	e := newTestEditor(t)

	e.ApplyTheme(ThemeLight)

	assert.Equal(t, ThemeLight, e.Settings().Theme)
	assert.Equal(t, 1, e.History().Len())
}

func TestSetStrokeWidth(t *testing.T) {
	e := newTestEditor(t)
	e.Canvas().Add(rectShape("s1", 0, 0, 100, 60))

	e.Post(SetStrokeWidth{Width: 1})
	e.Post(SetStrokeWidth{Width: 0})
	e.ProcessCommands()

	assert.Equal(t, 1.0, e.Settings().StrokeWidth)
	assert.Equal(t, 1.0, e.Canvas().Shape("s1").Style.Width)

	drawStroke(e, 0, circleStroke(400, 300, 40, 64))
	var drawn *Shape
	for _, s := range e.Canvas().Shapes() {
		if s.ID != "s1" {
			drawn = s
		}
	}
	require.NotNil(t, drawn)
	assert.Equal(t, 1.0, drawn.Style.Width)
}

func TestSetConnectorStyleCommand(t *testing.T) {
	e := newTestEditor(t)
	e.Canvas().Load(twoShapeCanvas())
	conn, _ := e.Canvas().Connect("s1", "s2", StyleBezier, seqID("connector"))

	e.Post(SetConnectorStyle{Style: StyleStraight})
	e.Post(SetConnectorStyle{Style: "wavy"})
	e.ProcessCommands()

	assert.Equal(t, StyleStraight, e.Settings().ConnectorStyle)
	assert.Equal(t, StyleStraight, conn.Style)
	assert.Equal(t, Point{}, conn.FromHandle)
}

func TestExportAndImportCommandsReportThroughDone(t *testing.T) {
	e := newTestEditor(t)
	e.Canvas().Add(rectShape("s1", 0, 0, 100, 60))

	var svg bytes.Buffer
	var svgErr, importErr error
	svgDone, importDone := false, false
	e.Post(ExportSVGCommand{W: &svg, Done: func(err error) { svgDone, svgErr = true, err }})
	e.Post(ImportJSONCommand{R: strings.NewReader("not json"), Done: func(err error) { importDone, importErr = true, err }})
	e.Post(ExportPNGCommand{W: &bytes.Buffer{}})
	e.ProcessCommands()

	assert.True(t, svgDone)
	assert.NoError(t, svgErr)
	assert.Contains(t, svg.String(), `id="s1"`)
	assert.True(t, importDone)
	assert.True(t, errors.Is(importErr, ErrInvalidSnapshot))
	assert.NotNil(t, e.Canvas().Shape("s1"))
}

func TestFitToViewCommand(t *testing.T) {
	e := newTestEditor(t)
	e.Canvas().Add(rectShape("s1", 1000, 1000, 400, 200))
	tap(e, 0, Point{400, 300})

	e.Post(FitToView{Options: DefaultFitOptions()})
	e.ProcessCommands()

	assert.InDelta(t, 1.8, e.View().Zoom, 1e-9)
	assert.Empty(t, e.Selected())
}
