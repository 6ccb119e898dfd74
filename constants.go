package main

import "time"

type GestureState int

const (
	StateIdle GestureState = iota
	StateDrawing
	StateDragging
	StateResizing
	StatePanning
	StateTwoFingerPanning
	StatePinching
	StateMarqueeSelecting
	StateTextEditing
	StateHolding // long-press on a connector: selected, nothing moves
)

func (s GestureState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateDrawing:
		return "DRAW"
	case StateDragging:
		return "DRAG"
	case StateResizing:
		return "RESIZE"
	case StatePanning:
		return "PAN"
	case StateTwoFingerPanning:
		return "PAN2"
	case StatePinching:
		return "PINCH"
	case StateMarqueeSelecting:
		return "MARQUEE"
	case StateTextEditing:
		return "TEXT"
	case StateHolding:
		return "HOLD"
	default:
		return "UNKNOWN"
	}
}

type ItemKind int

const (
	KindShape ItemKind = iota
	KindDrawing
	KindText
	KindConnector
)

func (k ItemKind) String() string {
	switch k {
	case KindShape:
		return "shape"
	case KindDrawing:
		return "drawing"
	case KindText:
		return "text"
	case KindConnector:
		return "connector"
	default:
		return "unknown"
	}
}

type ShapeKind string

const (
	ShapeCircle    ShapeKind = "circle"
	ShapeTriangle  ShapeKind = "triangle"
	ShapeRectangle ShapeKind = "rectangle"
)

type ConnectorStyle string

const (
	StyleBezier   ConnectorStyle = "bezier"
	StyleStraight ConnectorStyle = "straight"
)

type HandleName string

const (
	HandleNone         HandleName = ""
	HandleTopLeft      HandleName = "topLeft"
	HandleTopRight     HandleName = "topRight"
	HandleBottomLeft   HandleName = "bottomLeft"
	HandleBottomRight  HandleName = "bottomRight"
	HandleTopCenter    HandleName = "topCenter"
	HandleRightCenter  HandleName = "rightCenter"
	HandleBottomCenter HandleName = "bottomCenter"
	HandleLeftCenter   HandleName = "leftCenter"
)

// handleOrder is the order handles are laid out and hit-tested in.
var handleOrder = []HandleName{
	HandleTopLeft, HandleTopRight, HandleBottomLeft, HandleBottomRight,
	HandleTopCenter, HandleRightCenter, HandleBottomCenter, HandleLeftCenter,
}

type Theme string

const (
	ThemeDark   Theme = "dark"
	ThemeLight  Theme = "light"
	ThemeSystem Theme = "system"
)

// Recognizer
const (
	minStrokeExtent   = 20.0
	simplifyTolerance = 10.0
	minCircleRadius   = 30.0
	minTriangleSize   = 50.0
	minRectWidth      = 60.0
	minRectHeight     = 40.0
	minDrawingExtent  = 2.0
)

// Connectors
const (
	connectorWidth      = 2.0
	minHandleLength     = 30.0
	maxHandleLength     = 120.0
	handleLengthFactor  = 0.4
	arrowSize           = 10.0
	arrowHalfAngleDeg   = 25.0
	dashFlowSpeed       = 25.0
	dashFlowPeriod      = 12.0
	connectorLineColor  = "#64748b"
	connectorArrowColor = "#6366f1"
)

var connectorDash = []float64{8, 4}

// Selection and hit-testing
const (
	handleHitRadius    = 25.0
	handleSize         = 8.0
	connectorTolerance = 20.0
	textHitPadding     = 10.0
	strokeTolerance    = 15.0
	minResizeExtent    = 30.0
	selectionColor     = "#3b82f6"
)

var selectionDash = []float64{4, 4}

// Gestures
const (
	tapMaxDuration     = 250 * time.Millisecond
	tapInterval        = 300 * time.Millisecond
	tapSlop            = 9.0
	doubleTapDistance  = 50.0
	longPressDuration  = 400 * time.Millisecond
	twoFingerThreshold = 10.0
	wheelZoomIn        = 1.1
	wheelZoomOut       = 0.9
	minZoom            = 0.25
	maxZoom            = 4.0
	maxFitZoom         = 2.0
)

// History
const (
	maxHistory    = 10
	saveDebounce  = 300 * time.Millisecond
	frameInterval = 50 * time.Millisecond
)

// Text
const (
	fontSize        = 14.0
	charAdvance     = fontSize * 0.6
	lineHeight      = fontSize * 1.2
	defaultStroke   = 3.0
	exportPadding   = 40.0
	maxPNGSide      = 4096.0
	fitPadding      = 40.0
	fitBottomMargin = 120.0
)

var strokeWidths = []float64{1, 2, 3, 4}

// Terminal cells, in screen units
const (
	cellWidth  = 8.0
	cellHeight = 16.0
)
