package main

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

func num(f float64) string {
	return strconv.FormatFloat(math.Round(f*100)/100, 'f', -1, 64)
}

func pointList(pts []Point) string {
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = num(p.X) + "," + num(p.Y)
	}
	return strings.Join(parts, " ")
}

// attr escapes a value for use inside a double-quoted attribute.
func attr(s string) string {
	return html.EscapeString(s)
}

func dashAttr(dash []float64) string {
	if len(dash) == 0 {
		return ""
	}
	parts := make([]string, len(dash))
	for i, d := range dash {
		parts[i] = num(d)
	}
	return fmt.Sprintf(` stroke-dasharray="%s"`, strings.Join(parts, ","))
}

// exportBounds is the content bounds plus the export margin.
func exportBounds(c *Canvas) Rect {
	b, ok := c.ContentBounds()
	if !ok {
		b = Rect{}
	}
	return b.Expand(exportPadding)
}

// WriteSVG renders the scene over an opaque background in the theme's
// colour. Selection UI is editor state and is never part of the output.
func WriteSVG(w io.Writer, c *Canvas, theme Theme) error {
	b := exportBounds(c)
	var sb strings.Builder

	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="%s %s %s %s">`+"\n",
		num(b.W), num(b.H), num(b.X), num(b.Y), num(b.W), num(b.H))
	fmt.Fprintf(&sb, `  <rect x="%s" y="%s" width="%s" height="%s" fill="%s"/>`+"\n",
		num(b.X), num(b.Y), num(b.W), num(b.H), backgroundColor(theme))

	for _, it := range c.items {
		switch v := it.(type) {
		case *Shape:
			stroke := fmt.Sprintf(`fill="none" stroke="%s" stroke-width="%s"`, attr(v.Style.Color), num(v.Style.Width))
			switch v.Type {
			case ShapeCircle:
				ctr := v.Center()
				fmt.Fprintf(&sb, `  <circle id="%s" cx="%s" cy="%s" r="%s" %s/>`+"\n",
					attr(v.ID), num(ctr.X), num(ctr.Y), num(v.Radius()), stroke)
			case ShapeTriangle:
				fmt.Fprintf(&sb, `  <polygon id="%s" points="%s" %s/>`+"\n", attr(v.ID), pointList(v.Outline()), stroke)
			default:
				r := v.Rect
				fmt.Fprintf(&sb, `  <rect id="%s" x="%s" y="%s" width="%s" height="%s" %s/>`+"\n",
					attr(v.ID), num(r.X), num(r.Y), num(r.W), num(r.H), stroke)
			}
		case *Drawing:
			fmt.Fprintf(&sb, `  <polyline id="%s" points="%s" fill="none" stroke="%s" stroke-width="%s" stroke-linecap="round"/>`+"\n",
				attr(v.ID), pointList(v.Points), attr(v.Style.Color), num(v.Style.Width))
		case *Connector:
			writeConnectorSVG(&sb, v)
		case *Text:
			writeTextSVG(&sb, v)
		}
	}
	sb.WriteString("</svg>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

func writeConnectorSVG(sb *strings.Builder, c *Connector) {
	var d string
	if c.Style == StyleStraight {
		d = fmt.Sprintf("M %s %s L %s %s", num(c.From.X), num(c.From.Y), num(c.To.X), num(c.To.Y))
	} else {
		c1, c2 := c.From.Add(c.FromHandle), c.To.Add(c.ToHandle)
		d = fmt.Sprintf("M %s %s C %s %s %s %s %s %s",
			num(c.From.X), num(c.From.Y), num(c1.X), num(c1.Y), num(c2.X), num(c2.Y), num(c.To.X), num(c.To.Y))
	}
	fmt.Fprintf(sb, `  <g id="%s">`+"\n", attr(c.ID))
	fmt.Fprintf(sb, `    <path d="%s" fill="none" stroke="%s" stroke-width="%s" stroke-linecap="round"%s/>`+"\n",
		d, attr(c.Color), num(c.Width), dashAttr(c.Dash))
	if len(c.EndArrow) == 3 {
		fmt.Fprintf(sb, `    <polygon points="%s" fill="%s"/>`+"\n", pointList(c.EndArrow), attr(c.ArrowColor))
	}
	if len(c.StartArrow) == 3 {
		fmt.Fprintf(sb, `    <polygon points="%s" fill="%s"/>`+"\n", pointList(c.StartArrow), attr(c.ArrowColor))
	}
	sb.WriteString("  </g>\n")
}

func writeTextSVG(sb *strings.Builder, t *Text) {
	lines := t.Lines()
	top := t.Position.Y - float64(len(lines))*lineHeight/2
	fmt.Fprintf(sb, `  <text id="%s" fill="%s" font-family="sans-serif" font-size="%s" text-anchor="middle">`,
		attr(t.ID), attr(t.Color), num(fontSize))
	for i, line := range lines {
		y := top + float64(i)*lineHeight + lineHeight*0.75
		fmt.Fprintf(sb, `<tspan x="%s" y="%s">%s</tspan>`, num(t.Position.X), num(y), html.EscapeString(line))
	}
	sb.WriteString("</text>\n")
}

func (e *Editor) ExportSVG(w io.Writer) error {
	if err := WriteSVG(w, e.canvas, e.settings.Theme); err != nil {
		return fmt.Errorf("export svg: %w", err)
	}
	e.logger.Info("exported svg", zap.Int("items", e.canvas.Len()))
	return nil
}

func (e *Editor) ExportJSON(w io.Writer) error {
	data, err := json.MarshalIndent(toDoc(e.canvas), "", "  ")
	if err != nil {
		return fmt.Errorf("export json: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("export json: %w", err)
	}
	e.logger.Info("exported json", zap.Int("items", e.canvas.Len()))
	return nil
}

// ImportJSON replaces the scene with a snapshot read from r. The payload is
// fully decoded and validated first, so a bad payload leaves the scene as
// it was. Dangling references are cleaned up before the new history entry
// is recorded.
func (e *Editor) ImportJSON(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		e.metrics.imports.WithLabelValues("failed").Inc()
		return fmt.Errorf("import json: %w", err)
	}
	c, err := DecodeSnapshot(data)
	if err != nil {
		e.metrics.imports.WithLabelValues("failed").Inc()
		e.logger.Warn("rejected import", zap.Error(err))
		return fmt.Errorf("import json: %w", err)
	}

	e.cancelGesture()
	e.clearSelection()
	e.canvas.Load(c)
	dropped := e.canvas.UpdateAllConnectors()
	dropped = append(dropped, e.canvas.RemoveOrphanTexts()...)
	e.saveNow()

	e.metrics.imports.WithLabelValues("ok").Inc()
	e.logger.Info("imported json", zap.Int("items", e.canvas.Len()), zap.Strings("dropped", dropped))
	return nil
}

// pngScale is the factor that keeps the longer side of b within
// maxPNGSide pixels.
func pngScale(b Rect) float64 {
	side := math.Max(b.W, b.H)
	if side <= maxPNGSide {
		return 1
	}
	return maxPNGSide / side
}

func pngSide(f float64) int {
	return int(math.Max(1, math.Min(math.Ceil(f), maxPNGSide)))
}

// ExportPNG rasterizes the scene the same way as the SVG export. Scenes
// larger than maxPNGSide are scaled down to fit.
func (e *Editor) ExportPNG(w io.Writer) error {
	if e.canvas.Len() == 0 {
		return ErrEmptyScene
	}
	b := exportBounds(e.canvas)
	scale := pngScale(b)

	dc := gg.NewContext(pngSide(b.W*scale), pngSide(b.H*scale))
	dc.SetHexColor(backgroundColor(e.settings.Theme))
	dc.Clear()
	dc.Scale(scale, scale)
	dc.Translate(-b.X, -b.Y)

	ttfFont, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return fmt.Errorf("failed to parse font: %w", err)
	}
	face := truetype.NewFace(ttfFont, &truetype.Options{
		Size:    fontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	dc.SetFontFace(face)

	for _, it := range e.canvas.items {
		switch v := it.(type) {
		case *Shape:
			drawShapePNG(dc, v)
		case *Drawing:
			drawPolylinePNG(dc, v.Points, v.Style)
		case *Connector:
			drawConnectorPNG(dc, v)
		case *Text:
			drawTextPNG(dc, v)
		}
	}

	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("export png: %w", err)
	}
	e.logger.Info("exported png", zap.Int("width", dc.Width()), zap.Int("height", dc.Height()))
	return nil
}

func drawShapePNG(dc *gg.Context, s *Shape) {
	dc.SetHexColor(s.Style.Color)
	dc.SetLineWidth(s.Style.Width)
	dc.SetDash()
	if s.Type == ShapeCircle {
		c := s.Center()
		dc.DrawCircle(c.X, c.Y, s.Radius())
	} else {
		outline := s.Outline()
		dc.MoveTo(outline[0].X, outline[0].Y)
		for _, p := range outline[1:] {
			dc.LineTo(p.X, p.Y)
		}
		dc.ClosePath()
	}
	dc.Stroke()
}

func drawPolylinePNG(dc *gg.Context, pts []Point, style StrokeStyle) {
	if len(pts) < 2 {
		return
	}
	dc.SetHexColor(style.Color)
	dc.SetLineWidth(style.Width)
	dc.SetLineCap(gg.LineCapRound)
	dc.SetDash()
	dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		dc.LineTo(p.X, p.Y)
	}
	dc.Stroke()
}

func drawConnectorPNG(dc *gg.Context, c *Connector) {
	dc.SetHexColor(c.Color)
	dc.SetLineWidth(c.Width)
	dc.SetLineCap(gg.LineCapRound)
	dc.SetDash(c.Dash...)
	dc.MoveTo(c.From.X, c.From.Y)
	if c.Style == StyleStraight {
		dc.LineTo(c.To.X, c.To.Y)
	} else {
		c1, c2 := c.From.Add(c.FromHandle), c.To.Add(c.ToHandle)
		dc.CubicTo(c1.X, c1.Y, c2.X, c2.Y, c.To.X, c.To.Y)
	}
	dc.Stroke()
	dc.SetDash()

	dc.SetHexColor(c.ArrowColor)
	for _, arrow := range [][]Point{c.EndArrow, c.StartArrow} {
		if len(arrow) != 3 {
			continue
		}
		dc.MoveTo(arrow[0].X, arrow[0].Y)
		dc.LineTo(arrow[1].X, arrow[1].Y)
		dc.LineTo(arrow[2].X, arrow[2].Y)
		dc.ClosePath()
		dc.Fill()
	}
}

func drawTextPNG(dc *gg.Context, t *Text) {
	dc.SetHexColor(t.Color)
	lines := t.Lines()
	top := t.Position.Y - float64(len(lines))*lineHeight/2
	for i, line := range lines {
		dc.DrawStringAnchored(line, t.Position.X, top+float64(i)*lineHeight+lineHeight/2, 0.5, 0.5)
	}
}

// ExportVisualTXT writes the scene as it appears in the terminal, without
// selection UI or the status line.
func (e *Editor) ExportVisualTXT(w io.Writer, cols, rows int) error {
	if cols < 1 {
		cols = 80
	}
	if rows < 1 {
		rows = 24
	}
	for _, line := range RenderScene(e, cols, rows, false) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
