package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"

	"github.com/go-playground/validator/v10"
)

const snapshotVersion = 1

var (
	ErrInvalidSnapshot = errors.New("invalid snapshot")
	ErrEmptyScene      = errors.New("nothing to export")
)

var (
	validate       = newValidator()
	validIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,128}$`)
)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("itemid", func(fl validator.FieldLevel) bool {
		return validIDPattern.MatchString(fl.Field().String())
	})
	return v
}

type snapshotDoc struct {
	Version int       `json:"version" validate:"gte=1"`
	Items   []itemDoc `json:"items" validate:"dive"`
}

type itemDoc struct {
	Type string `json:"type" validate:"required,oneof=shape drawing text connector"`
	ID   string `json:"id" validate:"required,itemid"`

	Shape  ShapeKind    `json:"shape,omitempty" validate:"omitempty,oneof=circle triangle rectangle"`
	Bounds *Rect        `json:"bounds,omitempty"`
	Points []Point      `json:"points,omitempty"`
	Stroke *StrokeStyle `json:"stroke,omitempty"`

	Position   *Point `json:"position,omitempty"`
	Content    string `json:"content,omitempty"`
	Color      string `json:"color,omitempty" validate:"omitempty,iscolor"`
	AttachedTo string `json:"attachedToShapeId,omitempty" validate:"omitempty,itemid"`

	From          string             `json:"fromShapeId,omitempty" validate:"omitempty,itemid"`
	To            string             `json:"toShapeId,omitempty" validate:"omitempty,itemid"`
	Style         ConnectorStyle     `json:"style,omitempty" validate:"omitempty,oneof=bezier straight"`
	Bidirectional bool               `json:"bidirectional,omitempty"`
	Geometry      *connectorGeometry `json:"geometry,omitempty"`
}

type connectorGeometry struct {
	From       Point     `json:"from"`
	To         Point     `json:"to"`
	FromHandle Point     `json:"fromHandle"`
	ToHandle   Point     `json:"toHandle"`
	EndArrow   []Point   `json:"endArrow,omitempty"`
	StartArrow []Point   `json:"startArrow,omitempty"`
	Dash       []float64 `json:"dash,omitempty"`
	Width      float64   `json:"width"`
	Color      string    `json:"color,omitempty" validate:"omitempty,iscolor"`
	ArrowColor string    `json:"arrowColor,omitempty" validate:"omitempty,iscolor"`
}

func toDoc(c *Canvas) snapshotDoc {
	doc := snapshotDoc{Version: snapshotVersion, Items: make([]itemDoc, 0, c.Len())}
	for _, it := range c.items {
		switch v := it.(type) {
		case *Shape:
			b, st := v.Rect, v.Style
			doc.Items = append(doc.Items, itemDoc{Type: "shape", ID: v.ID, Shape: v.Type, Bounds: &b, Stroke: &st})
		case *Drawing:
			st := v.Style
			doc.Items = append(doc.Items, itemDoc{
				Type:   "drawing",
				ID:     v.ID,
				Points: append([]Point(nil), v.Points...),
				Stroke: &st,
			})
		case *Text:
			pos := v.Position
			doc.Items = append(doc.Items, itemDoc{
				Type:       "text",
				ID:         v.ID,
				Position:   &pos,
				Content:    v.Content,
				Color:      v.Color,
				AttachedTo: v.AttachedTo,
			})
		case *Connector:
			doc.Items = append(doc.Items, itemDoc{
				Type:          "connector",
				ID:            v.ID,
				From:          v.FromShapeID,
				To:            v.ToShapeID,
				Style:         v.Style,
				Bidirectional: v.Bidirectional,
				Geometry: &connectorGeometry{
					From:       v.From,
					To:         v.To,
					FromHandle: v.FromHandle,
					ToHandle:   v.ToHandle,
					EndArrow:   append([]Point(nil), v.EndArrow...),
					StartArrow: append([]Point(nil), v.StartArrow...),
					Dash:       append([]float64(nil), v.Dash...),
					Width:      v.Width,
					Color:      v.Color,
					ArrowColor: v.ArrowColor,
				},
			})
		}
	}
	return doc
}

// EncodeSnapshot serializes every persisted item in z-order. Selection
// state lives on the editor, so it never reaches the output.
func EncodeSnapshot(c *Canvas) (Snapshot, error) {
	data, err := json.Marshal(toDoc(c))
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses and validates a snapshot into a fresh canvas. Any
// failure is wrapped in ErrInvalidSnapshot. References between items are not
// checked here; dangling ones are dropped by the next update pass.
func DecodeSnapshot(data []byte) (*Canvas, error) {
	var doc snapshotDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if err := validate.Struct(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	c := NewCanvas()
	for i, d := range doc.Items {
		if c.Get(d.ID) != nil {
			return nil, fmt.Errorf("%w: item %d: duplicate id %q", ErrInvalidSnapshot, i, d.ID)
		}
		item, err := fromDoc(d)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d (%s): %v", ErrInvalidSnapshot, i, d.ID, err)
		}
		c.Add(item)
	}
	return c, nil
}

func fromDoc(d itemDoc) (Item, error) {
	switch d.Type {
	case "shape":
		if d.Shape == "" {
			return nil, errors.New("shape kind missing")
		}
		if d.Bounds == nil || !validRect(*d.Bounds) {
			return nil, errors.New("shape bounds missing or invalid")
		}
		return &Shape{ID: d.ID, Type: d.Shape, Rect: *d.Bounds, Style: strokeOrDefault(d.Stroke)}, nil
	case "drawing":
		if len(d.Points) == 0 {
			return nil, errors.New("drawing has no points")
		}
		for _, p := range d.Points {
			if !finite(p.X) || !finite(p.Y) {
				return nil, errors.New("drawing point is not finite")
			}
		}
		return &Drawing{ID: d.ID, Points: append([]Point(nil), d.Points...), Style: strokeOrDefault(d.Stroke)}, nil
	case "text":
		if d.Position == nil {
			return nil, errors.New("text position missing")
		}
		return &Text{ID: d.ID, Position: *d.Position, Content: d.Content, Color: d.Color, AttachedTo: d.AttachedTo}, nil
	case "connector":
		if d.From == "" || d.To == "" {
			return nil, errors.New("connector endpoints missing")
		}
		conn := &Connector{
			ID:            d.ID,
			FromShapeID:   d.From,
			ToShapeID:     d.To,
			Style:         d.Style,
			Bidirectional: d.Bidirectional,
			Width:         connectorWidth,
			Color:         connectorLineColor,
			ArrowColor:    connectorArrowColor,
		}
		if conn.Style == "" {
			conn.Style = StyleBezier
		}
		if !conn.Bidirectional {
			conn.Dash = append([]float64(nil), connectorDash...)
		}
		if g := d.Geometry; g != nil {
			conn.From, conn.To = g.From, g.To
			conn.FromHandle, conn.ToHandle = g.FromHandle, g.ToHandle
			conn.EndArrow = append([]Point(nil), g.EndArrow...)
			conn.StartArrow = append([]Point(nil), g.StartArrow...)
			conn.Dash = append([]float64(nil), g.Dash...)
			if g.Width > 0 {
				conn.Width = g.Width
			}
			if g.Color != "" {
				conn.Color = g.Color
			}
			if g.ArrowColor != "" {
				conn.ArrowColor = g.ArrowColor
			}
		}
		return conn, nil
	}
	return nil, fmt.Errorf("unknown item type %q", d.Type)
}

func strokeOrDefault(s *StrokeStyle) StrokeStyle {
	if s == nil {
		return StrokeStyle{Width: defaultStroke, Color: shapeColor(ThemeDark)}
	}
	return *s
}

func validRect(r Rect) bool {
	return finite(r.X) && finite(r.Y) && finite(r.W) && finite(r.H) && r.W >= 0 && r.H >= 0
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
